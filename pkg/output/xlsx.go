package output

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// SeriesSheet is the worksheet holding the exported series.
const SeriesSheet = "series"

var seriesHeader = []any{"month", "day", "year", "date", "value", "source"}

// XLSXSeriesFormatter writes a series as a single-sheet workbook. Numeric
// values are stored as numbers; placeholders such as "-" stay text.
type XLSXSeriesFormatter struct{}

func (f *XLSXSeriesFormatter) Name() string {
	return "xlsx"
}

func (f *XLSXSeriesFormatter) FormatSeries(ctx context.Context, series *Series, w io.Writer) error {
	book := excelize.NewFile()
	defer book.Close()

	if err := book.SetSheetName("Sheet1", SeriesSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	if err := book.SetSheetRow(SeriesSheet, "A1", &seriesHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, p := range series.Points {
		r := newSeriesRow(p)
		var value any = r.Value
		if n, err := strconv.ParseFloat(r.Value, 64); err == nil {
			value = n
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{r.Month, r.Day, r.Year, r.Date, value, r.Source}
		if err := book.SetSheetRow(SeriesSheet, cell, &values); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := book.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
