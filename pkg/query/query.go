// Package query answers questions across many parsed bulletins.
package query

import (
	"iter"
	"maps"
	"slices"

	"github.com/ccollicutt/mmwrtab/pkg/parser"
)

// Point is one value of a time series.
type Point struct {
	Date   parser.Date `json:"date"`
	Value  string      `json:"value"`
	Source string      `json:"source"`
}

// TimeSeries yields one point per file that has the column, in input order.
// Files without the column are skipped. When the column is present but the
// row label is not, the point carries def. The sequence is lazy and may be
// ranged over more than once.
func TimeSeries(files []*parser.ParsedFile, column, row, def string) iter.Seq[Point] {
	return func(yield func(Point) bool) {
		for _, file := range files {
			rows, ok := file.Table[column]
			if !ok {
				continue
			}
			value, ok := rows[row]
			if !ok {
				value = def
			}
			point := Point{
				Date:   file.Metadata.Date,
				Value:  value,
				Source: file.Metadata.Filename,
			}
			if !yield(point) {
				return
			}
		}
	}
}

// Collect drains a series into a slice. An empty series gives an empty,
// non-nil slice.
func Collect(seq iter.Seq[Point]) []Point {
	points := []Point{}
	for p := range seq {
		points = append(points, p)
	}
	return points
}

// Fields lists the distinct column names and row labels seen across files.
type Fields struct {
	Columns []string `json:"columns"`
	Rows    []string `json:"rows"`
}

// UniqueFields collects every column name and row label across files,
// sorted. Row labels are read from every column of every file.
func UniqueFields(files []*parser.ParsedFile) Fields {
	columns := make(map[string]struct{})
	rows := make(map[string]struct{})

	for _, file := range files {
		for column, cells := range file.Table {
			columns[column] = struct{}{}
			for row := range cells {
				rows[row] = struct{}{}
			}
		}
	}

	return Fields{
		Columns: slices.Sorted(maps.Keys(columns)),
		Rows:    slices.Sorted(maps.Keys(rows)),
	}
}
