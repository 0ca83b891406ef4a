package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"seo-cluster/internal/handler"
	"seo-cluster/internal/service"
	"seo-cluster/pkg/api"
	"seo-cluster/pkg/logger"
	"seo-cluster/pkg/report"
)

func newFetchCmd(g *globalFlags) *cobra.Command {
	var (
		in    keywordInput
		kinds []string
	)
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch missing SERP and keyword metrics into the cache",
		RunE: func(cmd *cobra.Command, _ []string) error {
			keywords, err := in.read(cmd.InOrStdin())
			if err != nil {
				return err
			}

			progress := logger.NewProgressReporter(2 * time.Second)
			a, err := g.open(cmd, handler.WithProgress(progress.Report))
			if err != nil {
				return err
			}
			defer closeApp(a)

			resp, err := a.Controller.Fetch(cmd.Context(), service.FetchRequest{Keywords: keywords, Kinds: kinds})
			if err != nil {
				if errors.Is(err, api.ErrNoCredentials) {
					printErr("Set api.login and api.password in the config, or SEOCLUSTER_API_LOGIN / SEOCLUSTER_API_PASSWORD.\n")
				}
				return err
			}
			printFetchSummary(cmd.OutOrStdout(), resp)
			if !resp.Complete {
				printErr("Some keywords could not be fetched; run fetch again to retry them.\n")
			}
			return nil
		},
	}
	in.bind(cmd)
	cmd.Flags().StringSliceVar(&kinds, "kinds", nil, "data to fetch: serp, volume, kd, intent (default all)")
	return cmd
}

func printFetchSummary(w io.Writer, resp *service.FetchResponse) {
	fmt.Fprintf(w, "%d keywords\n", resp.Keywords)
	for _, s := range resp.Summaries {
		fmt.Fprintf(w, "%-7s cached %d, fetched %d, failed %d, timed out %d (%s)\n",
			s.Kind, len(s.CacheHits), len(s.Fetched), len(s.Failed), len(s.TimedOut), s.Duration)
		if len(s.Failed) > 0 {
			fmt.Fprintf(w, "        failed: %s\n", strings.Join(s.Failed, ", "))
		}
		if len(s.TimedOut) > 0 {
			fmt.Fprintf(w, "        timed out: %s\n", strings.Join(s.TimedOut, ", "))
		}
	}
}

func newClusterCmd(g *globalFlags) *cobra.Command {
	var (
		in           keywordInput
		req          service.ClusterRequest
		minHits      int
		urls         int
		format       string
		out          string
		allowPartial bool
	)
	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Cluster keywords by SERP overlap using cached data only",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			keywords, err := in.read(cmd.InOrStdin())
			if err != nil {
				return err
			}

			a, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer closeApp(a)

			req.Keywords = keywords
			req.AllowPartial = allowPartial
			if cmd.Flags().Changed("min-intersections") {
				req.MinIntersections = &minHits
			}
			if cmd.Flags().Changed("urls") {
				req.URLsToCheck = &urls
			}

			rep, err := a.Controller.Cluster(cmd.Context(), req)
			if err != nil {
				var missing *handler.MissingDataError
				if errors.As(err, &missing) {
					printErr("Data not found in cache for %d keywords. Run \"seo-cluster fetch\" first:\n", len(missing.Keywords))
					for _, kw := range missing.Keywords {
						printErr("  %s\n", kw)
					}
					return handler.ErrMissingData
				}
				return err
			}
			return writeReport(cmd.OutOrStdout(), out, rep, f)
		},
	}
	in.bind(cmd)
	fl := cmd.Flags()
	fl.StringVar(&req.Algorithm, "algorithm", "", "balanced_strict, default, strict or legacy (default from config)")
	fl.StringVar(&req.Strategy, "strategy", "", "main keyword selection: volume or cpc (default from config)")
	fl.IntVar(&minHits, "min-intersections", 3, "shared URLs needed to cluster, 2-10")
	fl.IntVar(&urls, "urls", 10, "top URLs to compare per keyword, 5-20")
	fl.StringVar(&format, "format", "table", "output format: table, csv, json or yaml")
	fl.StringVarP(&out, "out", "o", "", "write the report to a file instead of stdout")
	fl.BoolVar(&allowPartial, "allow-partial", false, "cluster the keywords that have data and list the rest")
	return cmd
}

func writeReport(stdout io.Writer, path string, rep *report.Report, f report.Format) error {
	if path == "" {
		return rep.Write(stdout, f)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := rep.Write(file, f); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	printErr("Wrote %d clusters to %s\n", rep.Stats.Clusters, path)
	return nil
}

func newInspectCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <key>",
		Short: "Print one cached response, e.g. inspect 'serp|running shoes|2840|en|desktop'",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer closeApp(a)

			entry, err := a.Controller.Inspect(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			return printJSON(cmd.OutOrStdout(), entry)
		},
	}
}

func newClearCacheCmd(g *globalFlags) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear-cache",
		Short: "Delete every cached API response",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("refusing to clear the cache without --yes")
			}
			a, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer closeApp(a)

			n, err := a.Controller.ClearCache(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached responses\n", n)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}

func newStatusCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show cache size and configuration health",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer closeApp(a)

			st, err := a.Controller.Status(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), st)
		},
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
