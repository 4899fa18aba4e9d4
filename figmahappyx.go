package figmahappyx

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/kataras/figma-happyx/pkg/compiler"
	"github.com/kataras/figma-happyx/pkg/design"
	"github.com/kataras/figma-happyx/pkg/extractor"
	"github.com/kataras/figma-happyx/pkg/figma"
	"github.com/kataras/figma-happyx/pkg/formatter"
	"github.com/kataras/figma-happyx/pkg/imagecache"
	"github.com/kataras/figma-happyx/pkg/imager"
)

// Options configures a generation.
type Options struct {
	AccessToken string
	FileURL     string   // Figma file URL, may carry node-id
	NodeIDs     []string // overrides the URL's node IDs; exactly one frame must result
	InputFile   string   // saved /files/:key/nodes or /files/:key JSON; skips the nodes request

	IgnoreMarker     string           // default ".ignore"
	ImageConcurrency int              // parallel image downloads, default 5
	Cache            imagecache.Cache // shared image cache, e.g. Redis; nil = memory only

	ExportAssets bool   // render instance and export nodes to <AssetDir>/<Name>.png
	AssetDir     string // default "."

	ClientOptions []figma.ClientOption
	Logger        Logger // nil = no logging
}

// Logger receives progress messages. A nil Logger means silent operation.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Result contains the generation output.
type Result struct {
	Title string // component name
	Code  string // complete component source

	// Skipped is set when the selection is not a single frame. Nothing was
	// generated and SkipReason says why.
	Skipped    bool
	SkipReason error

	Assets []imager.ExportedAsset
}

func (o *Options) logInfo(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Infof(f, a...)
	}
}

func (o *Options) logWarn(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Warnf(f, a...)
	}
}

// Run fetches the selected frame, compiles it and wraps the markup into a
// component. Image fills are downloaded up front; if any of them cannot be
// retrieved, Run fails and no code is returned.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.IgnoreMarker == "" {
		opts.IgnoreMarker = compiler.DefaultIgnoreMarker
	}
	if opts.ImageConcurrency <= 0 {
		opts.ImageConcurrency = imager.DefaultConcurrency
	}
	if opts.AssetDir == "" {
		opts.AssetDir = "."
	}

	var (
		fileKey string
		client  *figma.Client
		err     error
	)
	if opts.FileURL != "" {
		fileKey, err = figma.ExtractFileKey(opts.FileURL)
		if err != nil {
			return nil, errors.Wrap(err, "extract file key")
		}
		opts.logInfo("File key: %s", fileKey)
	}
	if opts.AccessToken != "" {
		client = figma.NewClient(opts.AccessToken, opts.ClientOptions...)
	}

	nodeIDs := opts.NodeIDs
	if len(nodeIDs) == 0 && opts.FileURL != "" {
		if nodeIDs, err = figma.ExtractNodeIDs(opts.FileURL); err != nil {
			return nil, errors.Wrap(err, "extract node IDs from URL")
		}
	}

	node, err := loadSelection(ctx, &opts, client, fileKey, nodeIDs)
	if err != nil {
		if errors.Is(err, extractor.ErrUnselectable) {
			opts.logWarn("Nothing to generate: %v", err)
			return &Result{Skipped: true, SkipReason: err}, nil
		}
		return nil, err
	}
	opts.logInfo("Frame: %s", node.Name)

	tree := design.FromFigma(node)

	var fetcher compiler.ImageSource
	if client != nil && fileKey != "" {
		fetcher = imager.NewFetcher(client, fileKey)
	}
	cache := imagecache.Cache(imagecache.NewMemory())
	if opts.Cache != nil {
		cache = imagecache.Tiered{cache, opts.Cache}
	}
	images := imager.NewSource(cache, fetcher)

	if hashes := imager.CollectImageHashes(tree, opts.IgnoreMarker); len(hashes) > 0 {
		opts.logInfo("Fetching %d embedded image(s)...", len(hashes))
		if err := imager.Prefetch(ctx, images, hashes, opts.ImageConcurrency); err != nil {
			return nil, errors.Wrap(err, "fetch images")
		}
	}

	opts.logInfo("Compiling %s...", node.Name)
	c := compiler.New(
		compiler.WithImages(images),
		compiler.WithIgnoreMarker(opts.IgnoreMarker),
		compiler.WithIndent(formatter.TemplateDepth),
	)
	markup, err := c.Compile(ctx, tree)
	if err != nil {
		return nil, errors.Wrapf(err, "compile %q", node.Name)
	}

	result := &Result{
		Title: formatter.TitleCase(node.Name),
		Code:  formatter.Component(node.Name, markup),
	}

	if opts.ExportAssets {
		assets, err := exportAssets(ctx, &opts, client, fileKey, tree)
		if err != nil {
			return nil, err
		}
		result.Assets = assets
	}
	return result, nil
}

// loadSelection returns the single frame to compile, from the input file
// when one is given and from the API otherwise.
func loadSelection(ctx context.Context, opts *Options, client *figma.Client, fileKey string, nodeIDs []string) (*figma.Node, error) {
	if opts.InputFile != "" {
		opts.logInfo("Reading %s...", opts.InputFile)
		return selectFromInput(opts.InputFile, nodeIDs)
	}

	if client == nil {
		return nil, errors.WithHint(errors.New("no access token"),
			"pass --token or set FIGMA_TOKEN to a Figma personal access token")
	}
	if fileKey == "" {
		return nil, errors.WithHint(errors.New("no file URL"),
			"pass the Figma URL of the frame with --url")
	}
	if len(nodeIDs) == 0 {
		return nil, extractor.ErrNoSelection
	}

	opts.logInfo("Fetching %d node(s) from Figma...", len(nodeIDs))
	resp, err := client.GetFileNodes(ctx, fileKey, nodeIDs)
	if err != nil {
		return nil, errors.Wrap(err, "fetch nodes")
	}
	return extractor.Select(resp, nodeIDs)
}

func selectFromInput(path string, nodeIDs []string) (*figma.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read input")
	}

	var probe struct {
		Nodes    json.RawMessage `json:"nodes"`
		Document json.RawMessage `json:"document"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}

	switch {
	case probe.Nodes != nil:
		var resp figma.NodesResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, errors.Wrapf(err, "parse %s", path)
		}
		return extractor.Select(&resp, nodeIDs)
	case probe.Document != nil:
		var file figma.FileResponse
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, errors.Wrapf(err, "parse %s", path)
		}
		return extractor.SelectInFile(&file, nodeIDs)
	default:
		return nil, errors.WithHint(errors.Newf("%s is not a Figma API response", path),
			"save the output of GET /v1/files/:key/nodes?ids=...&geometry=paths")
	}
}

func exportAssets(ctx context.Context, opts *Options, client *figma.Client, fileKey string, tree design.Node) ([]imager.ExportedAsset, error) {
	assets := imager.CollectAssets(tree, opts.IgnoreMarker)
	if len(assets) == 0 {
		opts.logInfo("No instance or export nodes to render")
		return nil, nil
	}
	if client == nil || fileKey == "" {
		return nil, errors.WithHint(errors.New("asset export needs API access"),
			"pass both --url and --token")
	}

	opts.logInfo("Rendering %d asset(s) to %s...", len(assets), opts.AssetDir)
	res, err := imager.ExportAssets(ctx, client, fileKey, assets, imager.ExportConfig{
		OutputDir:   opts.AssetDir,
		Concurrency: opts.ImageConcurrency,
	})
	if err != nil {
		return nil, errors.Wrap(err, "export assets")
	}
	for _, e := range res.Errors {
		opts.logWarn("%v", e)
	}
	opts.logInfo("Exported %d asset(s)", len(res.Assets))
	return res.Assets, nil
}

// ParseNodeIDs parses a comma-separated string of node IDs and returns a
// slice. URL-style IDs ("1-2") are converted to API form ("1:2").
func ParseNodeIDs(nodeIDsStr string) []string {
	parts := strings.Split(nodeIDsStr, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		if !strings.Contains(trimmed, ":") {
			trimmed = strings.Replace(trimmed, "-", ":", 1)
		}
		result = append(result, trimmed)
	}

	return result
}
