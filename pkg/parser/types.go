// Package parser reads MMWR weekly tab-delimited bulletins and turns each one
// into a table keyed by column name and row label.
package parser

import "time"

// RawLines is the ordered line content of one bulletin file.
type RawLines []string

// Sections holds the line groups of a bulletin, separated by blank lines.
type Sections struct {
	// Header is line 1 of the file. It carries the publication date.
	Header string

	// ColumnNames are the lines of the column-name block, one label per line.
	ColumnNames []string

	// DataRows are raw tab-separated data lines.
	DataRows []string

	// Footnotes are the lines of the footnote block, unparsed.
	Footnotes []string

	// Trailer holds any lines after the footnote block's closing blank line.
	Trailer []string
}

// Date is the publication date as written in the bulletin header.
type Date struct {
	Month string `json:"month"`
	Day   string `json:"day"`
	Year  string `json:"year"`
}

// FileMetadata describes one bulletin.
type FileMetadata struct {
	// Date is taken from the header line.
	Date Date `json:"date"`

	// Year and Week are taken from the filename, as written.
	Year string `json:"year"`
	Week string `json:"week"`

	// TableID is the bulletin's table code, e.g. "2J".
	TableID string `json:"table_id"`

	// Filename is the base name of the source file.
	Filename string `json:"filename"`
}

// YearWeek returns the (year, week) pair from the filename.
func (m FileMetadata) YearWeek() (string, string) {
	return m.Year, m.Week
}

// TableData maps column name to row label to cell value.
type TableData map[string]map[string]string

// Value looks up one cell.
func (t TableData) Value(column, row string) (string, bool) {
	rows, ok := t[column]
	if !ok {
		return "", false
	}
	v, ok := rows[row]
	return v, ok
}

// HasColumn reports whether the table carries the named column.
func (t TableData) HasColumn(column string) bool {
	_, ok := t[column]
	return ok
}

// ParsedFile is the result of parsing exactly one bulletin.
// It is not modified after Parse returns it.
type ParsedFile struct {
	Sections Sections
	Table    TableData
	Metadata FileMetadata

	// Warnings lists non-fatal problems, such as duplicate column names.
	Warnings []error
}

// Timestamp returns the publication date as a time.Time, or the zero time
// if the header date cannot be interpreted.
func (p *ParsedFile) Timestamp() time.Time {
	t, err := p.Metadata.Date.Time()
	if err != nil {
		return time.Time{}
	}
	return t
}
