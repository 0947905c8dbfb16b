package output

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/jszwec/csvutil"

	"github.com/ccollicutt/mmwrtab/pkg/query"
)

// seriesRow is one CSV/XLSX line of a series.
type seriesRow struct {
	Month  string `csv:"month"`
	Day    string `csv:"day"`
	Year   string `csv:"year"`
	Date   string `csv:"date"`
	Value  string `csv:"value"`
	Source string `csv:"source"`
}

func newSeriesRow(p query.Point) seriesRow {
	row := seriesRow{
		Month:  p.Date.Month,
		Day:    p.Date.Day,
		Year:   p.Date.Year,
		Value:  p.Value,
		Source: p.Source,
	}
	if t, err := p.Date.Time(); err == nil {
		row.Date = t.Format("2006-01-02")
	}
	return row
}

// CSVSeriesFormatter writes a series as CSV with a header line.
type CSVSeriesFormatter struct{}

func (f *CSVSeriesFormatter) Name() string {
	return "csv"
}

func (f *CSVSeriesFormatter) FormatSeries(ctx context.Context, series *Series, w io.Writer) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	rows := make([]seriesRow, 0, len(series.Points))
	for _, p := range series.Points {
		rows = append(rows, newSeriesRow(p))
	}

	var err error
	if len(rows) == 0 {
		err = enc.EncodeHeader(seriesRow{})
	} else {
		err = enc.Encode(rows)
	}
	if err != nil {
		return fmt.Errorf("encoding csv: %w", err)
	}

	cw.Flush()
	return cw.Error()
}
