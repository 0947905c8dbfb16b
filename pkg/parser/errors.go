package parser

import (
	"errors"
	"fmt"
)

// Sentinel errors for bulletin shape problems. Use errors.Is to test for them.
var (
	// ErrMalformedFile means the file ended before all sections were read,
	// or a section was too short to hold its marker lines.
	ErrMalformedFile = errors.New("malformed file")

	// ErrMalformedRow means a data row had fewer fields than there are columns.
	ErrMalformedRow = errors.New("malformed row")

	// ErrNoDateFound means the header line carries no "Month D, YYYY" date.
	ErrNoDateFound = errors.New("no date found")

	// ErrMalformedFilename means the filename is not <year>_wk<week>_table<id>.tab.
	ErrMalformedFilename = errors.New("malformed filename")

	// ErrAmbiguousColumn means a column name appears more than once in a file.
	ErrAmbiguousColumn = errors.New("ambiguous column")
)

// FileError ties a parse failure to the file it came from.
type FileError struct {
	Filename string
	Err      error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Filename, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// RowError describes a data row that is too short for the column list.
type RowError struct {
	// Index is the 0-based position of the row within the data rows.
	Index  int
	Label  string
	Fields int
	Want   int
}

func (e *RowError) Error() string {
	return fmt.Sprintf("malformed row: data row %d (%q) has %d fields, want at least %d",
		e.Index, e.Label, e.Fields, e.Want)
}

// Is makes errors.Is(err, ErrMalformedRow) match.
func (e *RowError) Is(target error) bool {
	return target == ErrMalformedRow
}

// Error kinds reported by Kind.
const (
	KindMalformedFile     = "malformed_file"
	KindMalformedRow      = "malformed_row"
	KindNoDateFound       = "no_date_found"
	KindMalformedFilename = "malformed_filename"
	KindAmbiguousColumn   = "ambiguous_column"
	KindIO                = "io"
)

// Kind classifies an error into one of the Kind* strings.
// Anything that is not a bulletin shape error is reported as KindIO.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrMalformedRow):
		return KindMalformedRow
	case errors.Is(err, ErrMalformedFile):
		return KindMalformedFile
	case errors.Is(err, ErrNoDateFound):
		return KindNoDateFound
	case errors.Is(err, ErrMalformedFilename):
		return KindMalformedFilename
	case errors.Is(err, ErrAmbiguousColumn):
		return KindAmbiguousColumn
	default:
		return KindIO
	}
}
