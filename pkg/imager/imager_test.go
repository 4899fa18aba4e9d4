package imager

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/kataras/figma-happyx/pkg/design"
	"github.com/kataras/figma-happyx/pkg/figma"
	"github.com/kataras/figma-happyx/pkg/imagecache"
)

type fakeAPI struct {
	mu        sync.Mutex
	fills     map[string]string // hash -> url
	renders   map[string]string // node id -> url
	blobs     map[string][]byte // url -> bytes
	fillCalls int
	downloads int
}

func (f *fakeAPI) GetImageFills(ctx context.Context, fileKey string) (*figma.ImageFillsResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fillCalls++
	resp := &figma.ImageFillsResponse{Status: 200}
	resp.Meta.Images = f.fills
	return resp, nil
}

func (f *fakeAPI) GetImages(ctx context.Context, fileKey string, nodeIDs []string, format string, scale float64) (*figma.ImagesResponse, error) {
	resp := &figma.ImagesResponse{Images: make(map[string]string)}
	for _, id := range nodeIDs {
		resp.Images[id] = f.renders[id]
	}
	return resp, nil
}

func (f *fakeAPI) Download(ctx context.Context, rawURL string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloads++
	data, ok := f.blobs[rawURL]
	if !ok {
		return nil, errors.Wrap(figma.ErrNotFound, rawURL)
	}
	return data, nil
}

func imageNode(name, hash string, children ...design.Node) *design.Container {
	c := &design.Container{
		Base:     design.Base{ID: name, Name: name, Visible: true},
		Children: children,
	}
	if hash != "" {
		c.Fills = []design.Paint{{Visible: true, ImageHash: hash}}
	}
	return c
}

func TestCollectImageHashes(t *testing.T) {
	hidden := imageNode("Hidden", "hiddenRef")
	hidden.Visible = false

	invisibleFill := imageNode("Faded", "")
	invisibleFill.Fills = []design.Paint{{Visible: false, ImageHash: "fadedRef"}}

	red := design.RGB(1, 0, 0)
	solidAndImage := imageNode("Tinted", "")
	solidAndImage.Fills = []design.Paint{{Visible: true, Color: &red}, {Visible: true, ImageHash: "tintedRef"}}

	stacked := imageNode("Stacked", "")
	stacked.Fills = []design.Paint{
		{Visible: true, ImageHash: "bottomRef"},
		{Visible: true, ImageHash: "topRef"},
		{Visible: false, ImageHash: "hiddenTopRef"},
	}

	mixed := imageNode("Mixed", "mixedRef")
	mixed.FillsMixed = true

	tests := []struct {
		name string
		root design.Node
		want []string
	}{
		{
			name: "no image fills",
			root: imageNode("Frame", ""),
			want: nil,
		},
		{
			name: "single image fill at root",
			root: imageNode("Human Figure", "abc123"),
			want: []string{"abc123"},
		},
		{
			name: "multiple image fills in nested tree, document order",
			root: imageNode("Page", "",
				imageNode("Frame A", "", imageNode("Avatar", "ref1")),
				imageNode("Frame B", "ref2"),
			),
			want: []string{"ref1", "ref2"},
		},
		{
			name: "repeated hash is collected once",
			root: imageNode("Page", "ref1", imageNode("Copy", "ref1"), imageNode("Other", "ref2")),
			want: []string{"ref1", "ref2"},
		},
		{
			name: "solid and image paints - only the image is collected",
			root: solidAndImage,
			want: []string{"tintedRef"},
		},
		{
			name: "stacked image fills - only the topmost visible one",
			root: stacked,
			want: []string{"topRef"},
		},
		{
			name: "mixed fills are not resolved",
			root: mixed,
			want: nil,
		},
		{
			name: "hidden nodes and invisible paints are skipped",
			root: imageNode("Page", "", hidden, invisibleFill),
			want: nil,
		},
		{
			name: "ignored subtree is skipped",
			root: imageNode("Page", "", imageNode("scratch.ignore", "", imageNode("Photo", "ignoredRef"))),
			want: nil,
		},
		{
			name: "instances are not descended into",
			root: imageNode("Page", "", &design.Instance{Container: *imageNode("Card", "cardRef", imageNode("Photo", "innerRef"))}),
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CollectImageHashes(tt.root, ".ignore")
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("CollectImageHashes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCollectAssets_WalksChildren(t *testing.T) {
	logo := imageNode("Logo", "")
	logo.Exported = true
	nestedInstance := &design.Instance{Container: *imageNode("Inner", "")}

	root := imageNode("Frame", "",
		&design.Instance{Container: *imageNode("Icon Button", "", nestedInstance)},
		imageNode("Label", ""),
		imageNode("Nested Group", "", logo),
	)

	got := CollectAssets(root, ".ignore")
	want := []Asset{{NodeID: "Icon Button", Name: "Icon Button"}, {NodeID: "Logo", Name: "Logo"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("CollectAssets() = %v, want %v", got, want)
	}
	if name := got[0].FileName(); name != "Icon Button.png" {
		t.Errorf("FileName() = %q, want %q", name, "Icon Button.png")
	}
}

func TestFetcherResolvesOnce(t *testing.T) {
	api := &fakeAPI{
		fills: map[string]string{"a": "u/a", "b": "u/b"},
		blobs: map[string][]byte{"u/a": []byte("A"), "u/b": []byte("B")},
	}
	f := NewFetcher(api, "KEY")

	for hash, want := range map[string]string{"a": "A", "b": "B"} {
		got, err := f.ImageBytes(context.Background(), hash)
		if err != nil {
			t.Fatalf("ImageBytes(%q) error: %v", hash, err)
		}
		if string(got) != want {
			t.Errorf("ImageBytes(%q) = %q, want %q", hash, got, want)
		}
	}
	if api.fillCalls != 1 {
		t.Errorf("GetImageFills called %d times, want 1", api.fillCalls)
	}
}

func TestFetcherUnknownHash(t *testing.T) {
	f := NewFetcher(&fakeAPI{}, "KEY")
	_, err := f.ImageBytes(context.Background(), "nope")
	if !errors.Is(err, ErrImageNotFound) {
		t.Fatalf("expected ErrImageNotFound, got %v", err)
	}
}

func TestSourceCachesFetchedBytes(t *testing.T) {
	api := &fakeAPI{
		fills: map[string]string{"a": "u/a"},
		blobs: map[string][]byte{"u/a": []byte("A")},
	}
	cache := imagecache.NewMemory()
	src := NewSource(cache, NewFetcher(api, "KEY"))

	for i := 0; i < 3; i++ {
		if _, err := src.ImageBytes(context.Background(), "a"); err != nil {
			t.Fatal(err)
		}
	}
	if api.downloads != 1 {
		t.Errorf("downloaded %d times, want 1", api.downloads)
	}
	if cache.Len() != 1 {
		t.Errorf("cache has %d entries, want 1", cache.Len())
	}
}

func TestSourceWithoutFetcher(t *testing.T) {
	src := NewSource(nil, nil)
	if _, err := src.ImageBytes(context.Background(), "a"); !errors.Is(err, ErrImageNotFound) {
		t.Fatalf("expected ErrImageNotFound, got %v", err)
	}
}

type slowSource struct {
	inFlight, peak atomic.Int32
	fail           string
}

func (s *slowSource) ImageBytes(ctx context.Context, hash string) ([]byte, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if hash == s.fail {
		return nil, errors.New("unavailable")
	}
	time.Sleep(5 * time.Millisecond)
	return []byte(hash), nil
}

func TestPrefetchBoundsConcurrency(t *testing.T) {
	src := &slowSource{}
	hashes := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	if err := Prefetch(context.Background(), src, hashes, 2); err != nil {
		t.Fatal(err)
	}
	if peak := src.peak.Load(); peak > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", peak)
	}
}

func TestPrefetchReturnsFirstFailure(t *testing.T) {
	src := &slowSource{fail: "c"}
	err := Prefetch(context.Background(), src, []string{"a", "b", "c"}, 0)
	if err == nil || err.Error() != "unavailable" {
		t.Fatalf("Prefetch() error = %v, want unavailable", err)
	}
}

func TestExportAssets(t *testing.T) {
	api := &fakeAPI{
		renders: map[string]string{"1:1": "r/1", "1:2": "r/2", "1:3": ""},
		blobs:   map[string][]byte{"r/1": []byte("card"), "r/2": []byte("logo")},
	}
	dir := filepath.Join(t.TempDir(), "assets")

	result, err := ExportAssets(context.Background(), api, "KEY", []Asset{
		{NodeID: "1:1", Name: "Card"},
		{NodeID: "1:2", Name: "Logo"},
		{NodeID: "1:3", Name: "Broken"},
		{NodeID: "1:4", Name: "Card"},
		{NodeID: "1:5", Name: "a/b"},
	}, ExportConfig{OutputDir: dir})
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Assets) != 2 {
		t.Fatalf("exported %d assets, want 2: %+v", len(result.Assets), result.Assets)
	}
	if len(result.Errors) != 2 {
		t.Errorf("got %d non-fatal errors, want 2: %v", len(result.Errors), result.Errors)
	}
	for name, want := range map[string]string{"Card.png": "card", "Logo.png": "logo"} {
		got, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("reading %s: %v", name, err)
		}
		if string(got) != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
}

func TestFetcherAgainstFigmaClient(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/files/KEY/images":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"error":false,"status":200,"meta":{"images":{"abc":"` + srv.URL + `/blob/abc"}}}`))
		case "/blob/abc":
			w.Write([]byte("pixels"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := figma.NewClient("test-token", figma.WithBaseURL(srv.URL))
	src := NewSource(nil, NewFetcher(client, "KEY"))

	if err := Prefetch(context.Background(), src, []string{"abc"}, 1); err != nil {
		t.Fatal(err)
	}
	got, err := src.ImageBytes(context.Background(), "abc")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "pixels" {
		t.Errorf("ImageBytes() = %q, want %q", got, "pixels")
	}
}
