package output

import (
	"context"
	"fmt"
	"io"
)

// Formatter renders parse reports in a specific format.
type Formatter interface {
	// Format renders the report to the given writer.
	Format(ctx context.Context, report *Report, w io.Writer) error

	// Name returns the format name (text, json).
	Name() string
}

// SeriesFormatter renders a time series in a specific format.
type SeriesFormatter interface {
	FormatSeries(ctx context.Context, series *Series, w io.Writer) error
	Name() string
}

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	// Verbose adds per-file detail and run metadata.
	Verbose bool

	// Quiet enables minimal summary-only output.
	Quiet bool
}

// NewFormatter returns the report formatter for name.
func NewFormatter(name string, opts FormatOptions) (Formatter, error) {
	switch name {
	case "text", "":
		return NewTextFormatter(opts), nil
	case "json":
		return NewJSONFormatter(opts), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (must be text or json)", name)
	}
}

// NewSeriesFormatter returns the series formatter for name.
func NewSeriesFormatter(name string) (SeriesFormatter, error) {
	switch name {
	case "text", "":
		return &TextSeriesFormatter{}, nil
	case "json":
		return &JSONSeriesFormatter{}, nil
	case "csv":
		return &CSVSeriesFormatter{}, nil
	case "xlsx":
		return &XLSXSeriesFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown series format %q (must be text, json, csv, or xlsx)", name)
	}
}
