package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/mmwrtab/pkg/config"
	"github.com/ccollicutt/mmwrtab/pkg/fetch"
)

// FetchOptions holds command-line options for the fetch command.
type FetchOptions struct {
	MetricsFile string
	Quiet       bool
}

// NewFetchCommand creates the fetch command.
func NewFetchCommand() *cobra.Command {
	opts := &FetchOptions{}

	cmd := &cobra.Command{
		Use:   "fetch <config-file>",
		Short: "Download weekly MMWR tables from CDC WONDER",
		Long: `Download the weekly tables named by the fetch section of the
configuration file into its output directory.

The start week applies to the first year and the end week to the last; every
year in between is fetched in full, including week 53 where the MMWR year has
one. Without a tables list, the tables published each week are listed from
the site first. Tables that fail to download are reported and skipped.

Requests are rate limited (fetch.rate, fetch.burst).

Exit codes:
  0 - Every table was saved
  1 - One or more tables or week listings failed
  2 - Configuration or runtime error`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no failure list")
	addMetricsFlag(cmd, &opts.MetricsFile)

	return cmd
}

func runFetch(cmd *cobra.Command, args []string, opts *FetchOptions) error {
	r, err := newRun(cmd, args[0])
	if err != nil {
		return err
	}

	if err := config.ValidateFetch(r.cfg); err != nil {
		return err
	}
	fc := r.cfg.Fetch

	client := fetch.NewClient(fc.BaseURL,
		fetch.WithRateLimit(fc.Rate, fc.Burst),
		fetch.WithTimeout(fc.Timeout),
		fetch.WithUserAgent(fc.UserAgent),
		fetch.WithMetrics(r.metrics),
		fetch.WithLogger(r.logger),
	)

	r.logger.InfoContext(r.ctx, "fetching tables",
		"from", fmt.Sprintf("%d week %d", fc.StartYear, fc.StartWeek),
		"to", fmt.Sprintf("%d week %d", fc.EndYear, fc.EndWeek),
		"dir", fc.OutputDir)

	result, err := client.Crawl(r.ctx, fetch.Plan{
		StartYear: fc.StartYear,
		EndYear:   fc.EndYear,
		StartWeek: fc.StartWeek,
		EndWeek:   fc.EndWeek,
		Tables:    fc.Tables,
		OutputDir: fc.OutputDir,
	})
	if result != nil {
		printCrawl(cmd.OutOrStdout(), result, fc.OutputDir, opts.Quiet)
	}
	if err != nil {
		return fmt.Errorf("fetching tables: %w", err)
	}

	if err := r.finish(opts.MetricsFile); err != nil {
		return err
	}

	if len(result.Failures) > 0 {
		ExitCode = 1
	}

	return nil
}

func printCrawl(w io.Writer, result *fetch.CrawlResult, dir string, quiet bool) {
	if !quiet && len(result.Failures) > 0 {
		fmt.Fprintln(w, "Failures:")
		for _, f := range result.Failures {
			fmt.Fprintf(w, "  - %s\n", f.Error())
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Fetch: %d tables saved to %s, %d failed", len(result.Saved), dir, len(result.Failures))
	if result.WeeksListed > 0 {
		fmt.Fprintf(w, ", %d of %d listed weeks had no tables", result.EmptyWeeks, result.WeeksListed)
	}
	fmt.Fprintln(w)
}
