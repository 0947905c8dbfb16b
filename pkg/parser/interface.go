package parser

// SplitFunc splits raw bulletin lines into sections that still carry their
// marker lines. Split is the default.
type SplitFunc func(lines RawLines) (Sections, error)

// AssembleFunc builds the column/row table from postprocessed sections.
// Assemble is the default. An implementation must not return a partial
// table together with an error.
type AssembleFunc func(s Sections) (TableData, error)

var (
	_ SplitFunc    = Split
	_ AssembleFunc = Assemble
)
