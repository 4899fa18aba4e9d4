// Package imager retrieves the bytes behind image fills and renders the
// instance and export nodes the generated markup refers to by file name.
package imager

import (
	"context"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/kataras/figma-happyx/pkg/compiler"
	"github.com/kataras/figma-happyx/pkg/design"
	"github.com/kataras/figma-happyx/pkg/figma"
	"github.com/kataras/figma-happyx/pkg/imagecache"
)

// ErrImageNotFound is returned when the file has no download URL for an image hash.
var ErrImageNotFound = errors.New("imager: image not found")

// DefaultConcurrency bounds parallel downloads when no limit is given.
const DefaultConcurrency = 5

// API is the part of the Figma client the imager needs.
type API interface {
	GetImageFills(ctx context.Context, fileKey string) (*figma.ImageFillsResponse, error)
	GetImages(ctx context.Context, fileKey string, nodeIDs []string, format string, scale float64) (*figma.ImagesResponse, error)
	Download(ctx context.Context, rawURL string) ([]byte, error)
}

// CollectImageHashes returns the hashes of the image fills the compiler
// will ask for, deduplicated, in document order. It walks the same nodes
// the compiler visits: hidden and ignored subtrees and asset references
// are not descended into.
func CollectImageHashes(root design.Node, ignoreMarker string) []string {
	var hashes []string
	seen := make(map[string]struct{})
	walk(root, ignoreMarker, func(n design.Node) bool {
		b := design.BaseOf(n)
		if isAsset(n) {
			return false
		}
		hash := b.ImageFill()
		if hash == "" {
			return true
		}
		if _, ok := seen[hash]; !ok {
			seen[hash] = struct{}{}
			hashes = append(hashes, hash)
		}
		return true
	})
	return hashes
}

// Asset is a node the markup references as "image <Name>.png".
type Asset struct {
	NodeID string
	Name   string
}

// FileName is the name the markup refers to.
func (a Asset) FileName() string {
	return compiler.AssetName(a.Name)
}

// CollectAssets returns the instance and export nodes reachable by the compiler.
func CollectAssets(root design.Node, ignoreMarker string) []Asset {
	var assets []Asset
	walk(root, ignoreMarker, func(n design.Node) bool {
		if !isAsset(n) {
			return true
		}
		b := design.BaseOf(n)
		assets = append(assets, Asset{NodeID: b.ID, Name: b.Name})
		return false
	})
	return assets
}

func isAsset(n design.Node) bool {
	if _, ok := n.(*design.Instance); ok {
		return true
	}
	return design.BaseOf(n).Exported
}

// walk calls fn for every visible, non-ignored node in pre-order. fn
// returns false to skip the node's children.
func walk(n design.Node, ignoreMarker string, fn func(design.Node) bool) {
	b := design.BaseOf(n)
	if !b.Visible || (ignoreMarker != "" && strings.Contains(b.Name, ignoreMarker)) {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range design.Children(n) {
		walk(c, ignoreMarker, fn)
	}
}

// Fetcher downloads image fills of one file. The hash to URL table is
// requested once, on first use.
type Fetcher struct {
	api     API
	fileKey string

	mu   sync.Mutex
	urls map[string]string
}

// NewFetcher returns a Fetcher for the file fileKey.
func NewFetcher(api API, fileKey string) *Fetcher {
	return &Fetcher{api: api, fileKey: fileKey}
}

func (f *Fetcher) resolve(ctx context.Context) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.urls != nil {
		return f.urls, nil
	}
	resp, err := f.api.GetImageFills(ctx, f.fileKey)
	if err != nil {
		return nil, errors.Wrap(err, "resolve image fills")
	}
	if resp.Error {
		return nil, errors.Newf("resolve image fills: API reported status %d", resp.Status)
	}
	f.urls = resp.Meta.Images
	if f.urls == nil {
		f.urls = make(map[string]string)
	}
	return f.urls, nil
}

// ImageBytes downloads the image with the given hash.
func (f *Fetcher) ImageBytes(ctx context.Context, hash string) ([]byte, error) {
	urls, err := f.resolve(ctx)
	if err != nil {
		return nil, err
	}
	u := urls[hash]
	if u == "" {
		return nil, errors.Wrapf(ErrImageNotFound, "hash %s", hash)
	}
	data, err := f.api.Download(ctx, u)
	if err != nil {
		return nil, errors.Wrapf(err, "download image %s", hash)
	}
	return data, nil
}

// Source serves image bytes from a cache and falls back to a fetcher,
// storing what it fetched. It implements compiler.ImageSource.
type Source struct {
	cache   imagecache.Cache
	fetcher compiler.ImageSource
}

// NewSource returns a Source. A nil cache gets an in-memory one.
func NewSource(cache imagecache.Cache, fetcher compiler.ImageSource) *Source {
	if cache == nil {
		cache = imagecache.NewMemory()
	}
	return &Source{cache: cache, fetcher: fetcher}
}

func (s *Source) ImageBytes(ctx context.Context, hash string) ([]byte, error) {
	data, ok, err := s.cache.Get(ctx, hash)
	if err != nil {
		return nil, errors.Wrapf(err, "image cache lookup %s", hash)
	}
	if ok {
		return data, nil
	}

	if s.fetcher == nil {
		return nil, errors.Wrapf(ErrImageNotFound, "hash %s (no fetcher)", hash)
	}
	data, err = s.fetcher.ImageBytes(ctx, hash)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, hash, data); err != nil {
		return nil, errors.Wrapf(err, "image cache store %s", hash)
	}
	return data, nil
}

// Prefetch retrieves every hash through src with at most limit requests in
// flight, so a later compilation finds them cached. The first failure
// cancels the rest and is returned.
func Prefetch(ctx context.Context, src compiler.ImageSource, hashes []string, limit int) error {
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, hash := range hashes {
		hash := hash
		g.Go(func() error {
			_, err := src.ImageBytes(ctx, hash)
			return err
		})
	}
	return g.Wait()
}
