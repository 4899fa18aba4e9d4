package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	figmahappyx "github.com/kataras/figma-happyx"
	"github.com/kataras/figma-happyx/pkg/config"
	"github.com/kataras/figma-happyx/pkg/figma"
	"github.com/kataras/figma-happyx/pkg/imagecache"
	"github.com/kataras/figma-happyx/pkg/server"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = figma.Version

var (
	configFile string
	nodeIDs    string
	inputFile  string
	figmaURL   string

	v   = config.New()
	cfg *config.Config
)

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"token":             "token",
	"output":            "output",
	"ignore-marker":     "ignore_marker",
	"image-concurrency": "images.concurrency",
	"export-assets":     "assets.export",
	"asset-dir":         "assets.dir",
	"redis-addr":        "redis.addr",
	"log-json":          "log.json",
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "figma-happyx",
		Short: "Generate HappyX components from Figma frames",
		Long:  "A tool to turn a single Figma frame into a HappyX component template with Tailwind-style classes",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(v, cmd)
		},
		Run: run,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "Config file (default ./figma-happyx.yaml or ~/.config/figma-happyx/)")
	flags.StringP("token", "t", "", "Figma Personal Access Token (or FIGMA_TOKEN)")
	flags.String("ignore-marker", "", "Skip nodes whose name contains this marker (default \".ignore\")")
	flags.Int("image-concurrency", 0, "Parallel image downloads (default 5)")
	flags.String("redis-addr", "", "Redis address for a shared image cache (optional)")
	flags.Bool("log-json", false, "Log JSON lines instead of colored text")

	rootCmd.Flags().StringVarP(&figmaURL, "url", "u", "", "Figma URL of the frame, with node-id")
	rootCmd.Flags().StringVarP(&nodeIDs, "node-id", "n", "", "Node ID of the frame (overrides the URL's node-id)")
	rootCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Read a saved /files/:key/nodes JSON response instead of calling the API")
	rootCmd.Flags().StringP("output", "o", "", "Output file (default stdout)")
	rootCmd.Flags().Bool("export-assets", false, "Render instance and export nodes to <asset-dir>/<Name>.png")
	rootCmd.Flags().String("asset-dir", "", "Output directory for rendered assets (default \".\")")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve generation over HTTP and WebSocket",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := v.BindPFlag("server.addr", cmd.Flags().Lookup("addr")); err != nil {
				return err
			}
			return loadConfig(v, cmd)
		},
		Run: serve,
	}
	serveCmd.Flags().String("addr", "", "Listen address (default \":8090\")")
	serveCmd.Flags().StringVarP(&figmaURL, "url", "u", "", "Default Figma URL for triggers that carry none")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("figma-happyx version %s\n", version)
		},
	}

	rootCmd.AddCommand(serveCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loadConfig(v *viper.Viper, cmd *cobra.Command) error {
	keys := make(map[string]string)
	for name, key := range flagKeys {
		if cmd.Flags().Lookup(name) != nil {
			keys[name] = key
		}
	}
	if err := config.BindFlags(v, cmd.Flags(), keys); err != nil {
		return err
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	c, err := config.Load(v)
	if err != nil {
		return err
	}
	cfg = c
	return nil
}

// options builds the pipeline options shared by both commands.
func options(logger figmahappyx.Logger) (figmahappyx.Options, func(), error) {
	opts := figmahappyx.Options{
		AccessToken:      cfg.Token,
		FileURL:          figmaURL,
		InputFile:        inputFile,
		IgnoreMarker:     cfg.IgnoreMarker,
		ImageConcurrency: cfg.Images.Concurrency,
		ExportAssets:     cfg.Assets.Export,
		AssetDir:         cfg.Assets.Dir,
		Logger:           logger,
	}
	if nodeIDs != "" {
		opts.NodeIDs = figmahappyx.ParseNodeIDs(nodeIDs)
	}

	cleanup := func() {}
	if cfg.Redis.Addr != "" {
		cache := imagecache.NewRedis(cfg.Redis.Addr,
			imagecache.WithPrefix(cfg.Redis.Prefix),
			imagecache.WithTTL(cfg.Redis.TTL),
		)
		if err := cache.Ping(context.Background()); err != nil {
			cache.Close()
			return opts, cleanup, errors.WithHint(err, "check --redis-addr or unset it to cache in memory only")
		}
		opts.Cache = cache
		cleanup = func() { cache.Close() }
	}
	return opts, cleanup, nil
}

func run(cmd *cobra.Command, args []string) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	cyan := color.New(color.FgCyan)

	logger, sync, err := newLogger(cfg.Log.JSON)
	if err != nil {
		red.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer sync()

	if !cfg.Log.JSON {
		cyan.Fprintln(os.Stderr, "\n🎨 Figma → HappyX")
		cyan.Fprintln(os.Stderr, "==================")
		cyan.Fprintln(os.Stderr)
	}

	opts, cleanup, err := options(logger)
	if err != nil {
		fail(red, err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := figmahappyx.Run(ctx, opts)
	if err != nil {
		cleanup()
		fail(red, err)
	}
	if result.Skipped {
		logger.Warnf("Select exactly one frame (%v)", result.SkipReason)
		return
	}

	if cfg.Output == "" {
		fmt.Print(result.Code)
		return
	}

	green.Fprintf(os.Stderr, "\n💾 Writing to %s... ", cfg.Output)
	if err := os.WriteFile(cfg.Output, []byte(result.Code), 0644); err != nil {
		red.Fprintf(os.Stderr, "✗\n")
		cleanup()
		fail(red, err)
	}
	green.Fprintln(os.Stderr, "✓")

	if len(result.Assets) > 0 {
		fmt.Fprintf(os.Stderr, "  • Rendered assets: %d\n", len(result.Assets))
	}
	green.Fprintf(os.Stderr, "\n✨ Generated component %s in %s\n\n", result.Title, cfg.Output)
}

func serve(cmd *cobra.Command, args []string) {
	red := color.New(color.FgRed)

	zl, err := newZap(cfg.Log.JSON)
	if err != nil {
		red.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger := zl.Sugar()
	defer logger.Sync()

	base, cleanup, err := options(logger)
	if err != nil {
		fail(red, err)
	}
	defer cleanup()

	gen := server.GeneratorFunc(func(ctx context.Context, t server.Trigger) (server.Output, error) {
		opts := base
		if t.URL != "" {
			opts.FileURL = t.URL
		}
		if t.NodeID != "" {
			opts.NodeIDs = figmahappyx.ParseNodeIDs(t.NodeID)
		}

		result, err := figmahappyx.Run(ctx, opts)
		if err != nil {
			return server.Output{}, err
		}
		return server.Output{Title: result.Title, Code: result.Code, Skipped: result.Skipped}, nil
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(gen, server.WithLogger(logger.Named("server")))
	if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
		cleanup()
		fail(red, err)
	}
}

// fail prints err and any hints attached to it, then exits.
func fail(red *color.Color, err error) {
	red.Fprintf(os.Stderr, "Error: %v\n", err)
	if hint := errors.FlattenHints(err); hint != "" {
		color.New(color.FgYellow).Fprintf(os.Stderr, "Hint: %s\n", hint)
	}
	os.Exit(1)
}
