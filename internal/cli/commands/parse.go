package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/mmwrtab/pkg/config"
	"github.com/ccollicutt/mmwrtab/pkg/output"
	"github.com/ccollicutt/mmwrtab/pkg/parser"
	"github.com/ccollicutt/mmwrtab/pkg/webhook"
)

// ParseOptions holds command-line options for the parse command.
type ParseOptions struct {
	Output      string
	Verbose     bool
	Quiet       bool
	FailFast    bool
	MetricsFile string

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	opts := &ParseOptions{}

	cmd := &cobra.Command{
		Use:   "parse <config-file>",
		Short: "Parse MMWR bulletins and report the result",
		Long: `Parse every weekly bulletin named by the configuration file.

Each bulletin is split into header, column names, data rows and footnotes,
its publication date and table identifier are extracted, and its cells are
assembled into a column by row-label table. The report lists every parsed
bulletin and every failure with its kind:

  malformed_file       a section is missing or truncated
  malformed_row        a data row has fewer fields than there are columns
  no_date_found        the header line carries no "Month day, year" date
  malformed_filename   the name is not <year>_wk<week>_table<id>.tab
  ambiguous_column     a column name repeats (only with strict_columns)

Exit codes:
  0 - All bulletins parsed
  1 - One or more bulletins failed
  2 - Configuration or runtime error`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show warnings and run details")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")
	cmd.Flags().BoolVar(&opts.FailFast, "fail-fast", false, "Stop at the first bulletin that fails")
	addMetricsFlag(cmd, &opts.MetricsFile)

	// Webhook flags
	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", "on_failures", "When to fire webhook (on_failures|always|never)")

	return cmd
}

func runParse(cmd *cobra.Command, args []string, opts *ParseOptions) error {
	formatter, err := output.NewFormatter(opts.Output, output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
	})
	if err != nil {
		return err
	}

	r, err := newRun(cmd, args[0])
	if err != nil {
		return err
	}

	files, result, err := r.parseAll(opts.FailFast)
	if err != nil {
		// A fail-fast stop is still a report, not a runtime error
		var fileErr *parser.FileError
		if result == nil || !errors.As(err, &fileErr) {
			return err
		}
	}

	report := r.report(files, result)

	if err := formatter.Format(r.ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	// Webhook failures are logged but don't fail the run
	hooks := collectWebhooks(r.cfg, opts)
	webhook.NewClient().Dispatch(r.ctx, hooks, report, r.logger)

	if err := r.finish(opts.MetricsFile); err != nil {
		return err
	}

	if report.HasFailures() {
		ExitCode = 1
	}

	return nil
}

// collectWebhooks merges config file webhooks with the CLI webhook.
func collectWebhooks(cfg *config.Config, opts *ParseOptions) []config.WebhookConfig {
	webhooks := make([]config.WebhookConfig, 0, len(cfg.Webhooks)+1)
	webhooks = append(webhooks, cfg.Webhooks...)

	if opts.WebhookURL != "" {
		trigger := config.WebhookTrigger(opts.WebhookTrigger)
		if trigger == "" {
			trigger = config.WebhookTriggerOnFailures
		}

		webhooks = append(webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: trigger,
			Timeout: config.DefaultWebhookTimeout,
		})
	}

	return webhooks
}
