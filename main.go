package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"seo-cluster/internal/app"
	"seo-cluster/internal/config"
	"seo-cluster/internal/handler"
)

type globalFlags struct {
	configPath string
	debug      bool
	location   int
	language   string
	device     string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "seo-cluster",
		Short: "Fetch SERP data from DataForSEO and cluster keywords by URL overlap",
		Long: `seo-cluster caches DataForSEO SERP, search volume, keyword difficulty and
search intent responses, then groups keywords whose top results share URLs.

Clustering only reads the cache; run "fetch" first for new keywords.`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "config file (default ./config.yaml if present)")
	pf.BoolVar(&g.debug, "debug", false, "enable debug logging")
	pf.IntVar(&g.location, "location", 0, "DataForSEO location code override, e.g. 2840")
	pf.StringVar(&g.language, "language", "", "language code override, e.g. en")
	pf.StringVar(&g.device, "device", "", "device override: desktop or mobile")

	root.AddCommand(
		newFetchCmd(g),
		newClusterCmd(g),
		newInspectCmd(g),
		newClearCacheCmd(g),
		newStatusCmd(g),
	)
	return root
}

// open loads the application with the target overrides from the flags.
func (g *globalFlags) open(cmd *cobra.Command, opts ...handler.Option) (*app.App, error) {
	return app.Open(cmd.Context(), app.Options{
		ConfigPath: g.configPath,
		Debug:      g.debug,
		Handler:    opts,
		Override: func(cfg *config.Config) {
			if g.location > 0 {
				cfg.Target.LocationCode = g.location
			}
			if g.language != "" {
				cfg.Target.LanguageCode = g.language
			}
			if g.device != "" {
				cfg.Target.Device = g.device
			}
		},
	})
}

func closeApp(a *app.App) {
	if err := a.Close(); err != nil {
		a.Log.WithError(err).Warn("Failed to close cache cleanly")
	}
}

func printErr(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
}
