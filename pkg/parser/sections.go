package parser

import (
	"fmt"
	"slices"
	"strings"
)

// Fixed layout of a bulletin: line 0 and line 2 are boilerplate, line 1 is
// the header, and the column-name block starts at line 3.
const (
	headerLine       = 1
	firstContentLine = 3
)

// Marker lines opening the column-name and data-row blocks. They are not data.
const (
	columnMarkerLines = 1
	rowMarkerLines    = 2
)

// Split divides a bulletin into its header, column-name, data-row and
// footnote blocks. Each block is closed by an empty line; input that ends
// before all three are closed is ErrMalformedFile. The returned groups
// still carry their marker lines; see Postprocess.
func Split(lines RawLines) (Sections, error) {
	if len(lines) < firstContentLine {
		return Sections{}, fmt.Errorf("%w: %d lines, need at least %d before the column block",
			ErrMalformedFile, len(lines), firstContentLine)
	}

	columns, next, err := collectGroup(lines, firstContentLine)
	if err != nil {
		return Sections{}, fmt.Errorf("column names: %w", err)
	}

	rows, next, err := collectGroup(lines, next)
	if err != nil {
		return Sections{}, fmt.Errorf("data rows: %w", err)
	}

	footnotes, next, err := collectGroup(lines, next)
	if err != nil {
		return Sections{}, fmt.Errorf("footnotes: %w", err)
	}

	return Sections{
		Header:      lines[headerLine],
		ColumnNames: columns,
		DataRows:    rows,
		Footnotes:   footnotes,
		Trailer:     append([]string{}, lines[next:]...),
	}, nil
}

// collectGroup gathers lines starting at cursor up to the next blank line.
// It returns the group and the index just past the closing blank line.
func collectGroup(lines RawLines, cursor int) ([]string, int, error) {
	if cursor >= len(lines) {
		return nil, cursor, fmt.Errorf("%w: input ends at line %d before the block starts",
			ErrMalformedFile, cursor)
	}

	group := []string{}
	for i := cursor; i < len(lines); i++ {
		if isBlank(lines[i]) {
			return group, i + 1, nil
		}
		group = append(group, lines[i])
	}

	return nil, len(lines), fmt.Errorf("%w: block starting at line %d has no closing blank line",
		ErrMalformedFile, cursor)
}

// isBlank reports whether line is empty. Tab-only lines are padded data
// rows, not block boundaries.
func isBlank(line string) bool {
	return line == ""
}

// Postprocess drops the marker lines that open the column-name block (one
// line) and the data-row block (a title line and a test line). Footnotes
// are passed through. The input is not modified.
func Postprocess(raw Sections) (Sections, error) {
	if len(raw.ColumnNames) < columnMarkerLines {
		return Sections{}, fmt.Errorf("%w: column block has %d lines, need at least %d",
			ErrMalformedFile, len(raw.ColumnNames), columnMarkerLines)
	}
	if len(raw.DataRows) < rowMarkerLines {
		return Sections{}, fmt.Errorf("%w: data block has %d lines, need at least %d",
			ErrMalformedFile, len(raw.DataRows), rowMarkerLines)
	}

	out := raw
	out.ColumnNames = slices.Clone(raw.ColumnNames[columnMarkerLines:])
	out.DataRows = slices.Clone(raw.DataRows[rowMarkerLines:])
	out.Footnotes = slices.Clone(raw.Footnotes)
	out.Trailer = slices.Clone(raw.Trailer)
	return out, nil
}

// Lines renders the sections in bulletin layout: a blank line, the header,
// a blank line, then each block closed by a blank line, then the trailer.
// Split(s.Lines()) gives s back as long as no block contains a blank line.
func (s Sections) Lines() RawLines {
	n := 3 + len(s.ColumnNames) + len(s.DataRows) + len(s.Footnotes) + len(s.Trailer) + 3
	lines := make(RawLines, 0, n)
	lines = append(lines, "", s.Header, "")
	for _, block := range [][]string{s.ColumnNames, s.DataRows, s.Footnotes} {
		lines = append(lines, block...)
		lines = append(lines, "")
	}
	return append(lines, s.Trailer...)
}

// FootnoteTable reads "code: description" footnote lines into a map keyed
// by lower-cased code. Lines without a ": " separator are skipped.
// Values are never substituted into table cells.
func (s Sections) FootnoteTable() map[string]string {
	table := make(map[string]string)
	for _, line := range s.Footnotes {
		line = strings.Trim(strings.ToLower(strings.TrimSpace(line)), ".")
		code, desc, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		table[strings.TrimSpace(code)] = strings.TrimSpace(desc)
	}
	return table
}
