package output

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
)

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	fmt.Fprintf(w, "mmwrtab: %d bulletins parsed, %d failed, %d warnings\n",
		report.Summary.FilesParsed,
		report.Summary.FilesFailed,
		report.Summary.Warnings)
	return nil
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	fmt.Fprintln(w, "=== MMWR Bulletin Parse Report ===")
	fmt.Fprintln(w)

	if len(report.Files) > 0 {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "FILE\tDATE\tTABLE\tCOLUMNS\tROWS")
		for _, file := range report.Files {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n",
				file.Filename, file.Date, file.TableID, file.Columns, file.Rows)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	if f.opts.Verbose {
		for _, file := range report.Files {
			for _, warning := range file.Warnings {
				fmt.Fprintf(w, "[WARN] %s\n", warning)
			}
		}
	}

	if len(report.Failures) > 0 {
		fmt.Fprintf(w, "Failures: %d\n", len(report.Failures))
		for _, failure := range report.Failures {
			fmt.Fprintf(w, "  - %s [%s]: %s\n", failure.Filename, failure.Kind, failure.Error)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d bulletins parsed, %d failed, %d warnings\n",
		report.Summary.FilesParsed,
		report.Summary.FilesFailed,
		report.Summary.Warnings)

	if f.opts.Verbose {
		if report.Metadata.RunID != "" {
			fmt.Fprintf(w, "Run: %s\n", report.Metadata.RunID)
		}
		fmt.Fprintf(w, "Duration: %s\n", report.Metadata.Duration.Round(1e6))
	}

	return nil
}

// TextSeriesFormatter writes a series as an aligned table.
type TextSeriesFormatter struct{}

func (f *TextSeriesFormatter) Name() string {
	return "text"
}

func (f *TextSeriesFormatter) FormatSeries(ctx context.Context, series *Series, w io.Writer) error {
	fmt.Fprintf(w, "%s / %s\n", series.Column, series.Row)
	if len(series.Points) == 0 {
		fmt.Fprintln(w, "  No bulletins contain this column")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, p := range series.Points {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", p.Date, p.Value, p.Source)
	}
	return tw.Flush()
}
