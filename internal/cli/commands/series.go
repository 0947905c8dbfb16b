package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/mmwrtab/pkg/output"
	"github.com/ccollicutt/mmwrtab/pkg/query"
)

// SeriesOptions holds command-line options for the series command.
type SeriesOptions struct {
	Column      string
	Row         string
	Default     string
	Output      string
	OutFile     string
	MetricsFile string
}

// NewSeriesCommand creates the series command.
func NewSeriesCommand() *cobra.Command {
	opts := &SeriesOptions{}

	cmd := &cobra.Command{
		Use:   "series <config-file>",
		Short: "Extract one cell across many bulletins as a time series",
		Long: `Parse the configured bulletins and print the value of one cell,
identified by column name and row label, for every bulletin that has the
column. Bulletins without the column are skipped. When the column is present
but the row label is not, the --default value is used.

Column names and row labels are matched exactly. Use "mmwrtab fields" to list
the names seen across a set of bulletins.

Example:
  mmwrtab series syphilis.yaml \
    --column "Syphilis, primary & secondary current week" --row "Oreg."
  mmwrtab series syphilis.yaml -c "..." -r "Oreg." -o xlsx --out oregon.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeries(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Column, "column", "c", "", "Column name (required)")
	cmd.Flags().StringVarP(&opts.Row, "row", "r", "", "Row label, e.g. a reporting area (required)")
	cmd.Flags().StringVar(&opts.Default, "default", "N", "Value used when the row label is missing")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json|csv|xlsx)")
	cmd.Flags().StringVar(&opts.OutFile, "out", "", "Write to this file instead of stdout")
	addMetricsFlag(cmd, &opts.MetricsFile)

	_ = cmd.MarkFlagRequired("column")
	_ = cmd.MarkFlagRequired("row")

	return cmd
}

func runSeries(cmd *cobra.Command, args []string, opts *SeriesOptions) error {
	formatter, err := output.NewSeriesFormatter(opts.Output)
	if err != nil {
		return err
	}

	r, err := newRun(cmd, args[0])
	if err != nil {
		return err
	}

	_, result, err := r.parseAll(false)
	if err != nil {
		return err
	}

	series := &output.Series{
		Column: opts.Column,
		Row:    opts.Row,
		Points: query.Collect(query.TimeSeries(result.Files, opts.Column, opts.Row, opts.Default)),
	}
	if len(series.Points) == 0 {
		r.logger.WarnContext(r.ctx, "no bulletin has the column", "column", opts.Column, "files", len(result.Files))
	}

	if err := writeTo(cmd.OutOrStdout(), opts.OutFile, func(w io.Writer) error {
		return formatter.FormatSeries(r.ctx, series, w)
	}); err != nil {
		return fmt.Errorf("formatting series: %w", err)
	}

	if err := r.finish(opts.MetricsFile); err != nil {
		return err
	}

	if len(result.Failures) > 0 {
		ExitCode = 1
	}

	return nil
}

// writeTo runs write against path, or against stdout when path is empty.
func writeTo(stdout io.Writer, path string, write func(io.Writer) error) (err error) {
	if path == "" {
		return write(stdout)
	}

	f, err := os.Create(path) // #nosec G304 -- user-provided output path is expected
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	return write(f)
}
