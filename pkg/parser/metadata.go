package parser

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"time"
)

var (
	// datePattern matches "May 16, 2009" style dates anywhere in a line.
	datePattern = regexp.MustCompile(
		`(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d+),\s*(\d+)`)

	// filenamePattern matches bulletin names such as 2013_wk21_table2J.tab.
	filenamePattern = regexp.MustCompile(`^(\d+)_wk(\d+)_table(\w+)\.tab$`)
)

// ExtractDate finds the first "Month D, YYYY" date in the header line.
func ExtractDate(header string) (Date, error) {
	matches := datePattern.FindStringSubmatch(header)
	if len(matches) < 4 {
		return Date{}, fmt.Errorf("%w in header %q", ErrNoDateFound, header)
	}
	return Date{Month: matches[1], Day: matches[2], Year: matches[3]}, nil
}

// ParseFilename extracts year, week and table identifier from a bulletin
// filename. Only the base name is matched, so full paths are accepted.
func ParseFilename(filename string) (year, week, tableID string, err error) {
	base := filepath.Base(filename)
	matches := filenamePattern.FindStringSubmatch(base)
	if len(matches) < 4 {
		return "", "", "", fmt.Errorf("%w: %q does not match <year>_wk<week>_table<id>.tab",
			ErrMalformedFilename, base)
	}
	return matches[1], matches[2], matches[3], nil
}

// ExtractMetadata combines the header date and the filename fields.
func ExtractMetadata(header, filename string) (FileMetadata, error) {
	date, err := ExtractDate(header)
	if err != nil {
		return FileMetadata{}, err
	}

	year, week, tableID, err := ParseFilename(filename)
	if err != nil {
		return FileMetadata{}, err
	}

	return FileMetadata{
		Date:     date,
		Year:     year,
		Week:     week,
		TableID:  tableID,
		Filename: filepath.Base(filename),
	}, nil
}

// MonthNumber returns the time.Month for a full English month name.
func MonthNumber(name string) (time.Month, bool) {
	for m := time.January; m <= time.December; m++ {
		if m.String() == name {
			return m, true
		}
	}
	return 0, false
}

// Time converts the date to midnight UTC.
func (d Date) Time() (time.Time, error) {
	month, ok := MonthNumber(d.Month)
	if !ok {
		return time.Time{}, fmt.Errorf("unknown month %q", d.Month)
	}
	day, err := strconv.Atoi(d.Day)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing day %q: %w", d.Day, err)
	}
	year, err := strconv.Atoi(d.Year)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing year %q: %w", d.Year, err)
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), nil
}

// String formats the date as it appears in the header.
func (d Date) String() string {
	if d.Month == "" {
		return ""
	}
	return fmt.Sprintf("%s %s, %s", d.Month, d.Day, d.Year)
}

// IsZero reports whether no date was set.
func (d Date) IsZero() bool {
	return d == Date{}
}
