// Package figmahappyx turns a Figma frame into a HappyX component whose
// template uses Tailwind-style utility classes.
//
// The CLI lives in cmd/figma-happyx; this root package exposes the same
// pipeline as a Go API so that callers can embed generation in their own
// tools without shelling out.
//
// # Import
//
// The module path contains a hyphen but Go package names cannot, so the
// package is named figmahappyx:
//
//	import "github.com/kataras/figma-happyx" // package figmahappyx
//
// # Quick start
//
//	result, err := figmahappyx.Run(ctx, figmahappyx.Options{
//	    AccessToken: os.Getenv("FIGMA_TOKEN"),
//	    FileURL:     "https://www.figma.com/design/ABC123/App?node-id=1-2",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Skipped {
//	    os.WriteFile("login.nim", []byte(result.Code), 0644)
//	}
//
// # Selection
//
// Exactly one node must be selected, through the URL's node-id or
// [Options.NodeIDs], and it must be a FRAME. Any other selection is not an
// error: [Result.Skipped] is set and nothing is generated.
//
// # Images
//
// Image fills are embedded as base64 data URIs. All of them are downloaded
// concurrently before compilation starts; a single failure fails the run
// and no code is returned. Set [Options.Cache] to share downloads between
// runs. Component instances and nodes with export settings are not
// translated: they become a reference to "<Name>.png", which
// [Options.ExportAssets] renders into [Options.AssetDir].
//
// # Logging
//
// Pass a [Logger] implementation in [Options.Logger] to receive progress
// messages. A nil Logger silences all output. A *zap.SugaredLogger
// satisfies the interface as is.
package figmahappyx
