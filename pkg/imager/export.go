package imager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
)

const maxNodesPerRequest = 100

// ExportConfig holds configuration for asset export.
type ExportConfig struct {
	OutputDir   string // local directory, default "."
	Concurrency int    // parallel downloads, default DefaultConcurrency
}

// ExportedAsset is a rendered asset written to disk.
type ExportedAsset struct {
	NodeID   string
	NodeName string
	FileName string
}

// ExportResult holds the results of an export.
type ExportResult struct {
	Assets []ExportedAsset
	Errors []error // non-fatal per-asset failures
}

// ExportAssets renders assets as PNG through the images API and writes
// each one to <OutputDir>/<Name>.png, the name the markup refers to.
// Assets sharing a name are written once. Render requests are batched;
// downloads run concurrently.
func ExportAssets(ctx context.Context, api API, fileKey string, assets []Asset, config ExportConfig) (*ExportResult, error) {
	if config.OutputDir == "" {
		config.OutputDir = "."
	}
	if config.Concurrency <= 0 {
		config.Concurrency = DefaultConcurrency
	}
	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return nil, errors.Wrapf(err, "failed to create output directory %q", config.OutputDir)
	}

	result := &ExportResult{}
	byID := make(map[string]Asset, len(assets))
	usedNames := make(map[string]bool, len(assets))
	nodeIDs := make([]string, 0, len(assets))

	for _, a := range assets {
		name := a.FileName()
		if strings.ContainsAny(a.Name, `/\`) || a.Name == "" {
			result.Errors = append(result.Errors, fmt.Errorf("asset %s: node name %q is not a usable file name", a.NodeID, a.Name))
			continue
		}
		if usedNames[name] {
			continue
		}
		usedNames[name] = true
		byID[a.NodeID] = a
		nodeIDs = append(nodeIDs, a.NodeID)
	}

	var mu sync.Mutex
	for i := 0; i < len(nodeIDs); i += maxNodesPerRequest {
		batch := nodeIDs[i:min(i+maxNodesPerRequest, len(nodeIDs))]

		imgResp, err := api.GetImages(ctx, fileKey, batch, "png", 1)
		if err != nil {
			return nil, errors.Wrap(err, "failed to render assets")
		}
		if imgResp.Err != "" {
			return nil, errors.Newf("failed to render assets: %s", imgResp.Err)
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(config.Concurrency)

		for _, nodeID := range batch {
			asset := byID[nodeID]
			imageURL := imgResp.Images[nodeID]
			if imageURL == "" {
				mu.Lock()
				result.Errors = append(result.Errors, fmt.Errorf("no image URL returned for node %s (%s)", nodeID, asset.Name))
				mu.Unlock()
				continue
			}

			g.Go(func() error {
				data, err := api.Download(gctx, imageURL)
				if err == nil {
					err = os.WriteFile(filepath.Join(config.OutputDir, asset.FileName()), data, 0644)
				}

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					result.Errors = append(result.Errors, errors.Wrapf(err, "failed to export %s", asset.Name))
					return nil
				}
				result.Assets = append(result.Assets, ExportedAsset{
					NodeID:   asset.NodeID,
					NodeName: asset.Name,
					FileName: asset.FileName(),
				})
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	return result, nil
}
