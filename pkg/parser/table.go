package parser

import "strings"

// Assemble builds the table from postprocessed sections. Field 0 of each
// data row is its row label and field i is the value for column i. Extra
// trailing fields are ignored; a row with fewer fields than columns fails
// with a *RowError and no table is returned.
//
// When a row label repeats, the later row wins. When a column name repeats,
// the later column wins; see DuplicateColumns.
func Assemble(s Sections) (TableData, error) {
	table := make(TableData, len(s.ColumnNames))
	for _, name := range s.ColumnNames {
		table[name] = make(map[string]string, len(s.DataRows))
	}

	for idx, row := range s.DataRows {
		fields := strings.Split(row, "\t")
		if len(fields) < len(s.ColumnNames) {
			return nil, &RowError{
				Index:  idx,
				Label:  fields[0],
				Fields: len(fields),
				Want:   len(s.ColumnNames),
			}
		}

		label := fields[0]
		for i, name := range s.ColumnNames {
			table[name][label] = fields[i]
		}
	}

	return table, nil
}

// DuplicateColumns returns the column names that appear more than once,
// in order of first appearance.
func DuplicateColumns(names []string) []string {
	counts := make(map[string]int, len(names))
	var dups []string
	for _, name := range names {
		counts[name]++
		if counts[name] == 2 {
			dups = append(dups, name)
		}
	}
	return dups
}
