// Package output renders parse reports and time series.
package output

import (
	"time"

	"github.com/ccollicutt/mmwrtab/pkg/parser"
	"github.com/ccollicutt/mmwrtab/pkg/query"
)

// Report is the complete outcome of parsing a set of bulletins.
type Report struct {
	// Summary provides aggregate statistics.
	Summary Summary `json:"summary"`

	// Files describes every bulletin that parsed, in input order.
	Files []FileSummary `json:"files"`

	// Failures lists bulletins that could not be parsed.
	Failures []Failure `json:"failures"`

	// Metadata provides context about the run.
	Metadata Metadata `json:"metadata"`
}

// Summary provides aggregate statistics.
type Summary struct {
	FilesParsed int `json:"files_parsed"`
	FilesFailed int `json:"files_failed"`

	// Warnings counts non-fatal problems such as repeated column names.
	Warnings int `json:"warnings"`
}

// FileSummary describes one parsed bulletin.
type FileSummary struct {
	Filename  string   `json:"filename"`
	Date      string   `json:"date"`
	Year      string   `json:"year"`
	Week      string   `json:"week"`
	TableID   string   `json:"table_id"`
	Columns   int      `json:"columns"`
	Rows      int      `json:"rows"`
	Footnotes int      `json:"footnotes"`
	Warnings  []string `json:"warnings,omitempty"`
}

// Failure is one bulletin that could not be parsed.
type Failure struct {
	Filename string `json:"filename"`
	Kind     string `json:"kind"`
	Error    string `json:"error"`
}

// Metadata provides context about the run.
type Metadata struct {
	// ConfigFile is the path to the configuration file used.
	ConfigFile string `json:"config_file"`

	// RunID identifies this run in logs and webhook payloads.
	RunID string `json:"run_id"`

	// Sources lists the bulletin files that were read.
	Sources []string `json:"sources"`

	// ParsedAt is when parsing finished.
	ParsedAt time.Time `json:"parsed_at"`

	// Duration is how long parsing took.
	Duration time.Duration `json:"duration"`
}

// NewReport builds a Report from a batch result.
func NewReport(result *parser.BatchResult, meta Metadata) *Report {
	report := &Report{
		Files:    make([]FileSummary, 0, len(result.Files)),
		Failures: make([]Failure, 0, len(result.Failures)),
		Metadata: meta,
	}

	for _, file := range result.Files {
		summary := summarizeFile(file)
		report.Summary.Warnings += len(summary.Warnings)
		report.Files = append(report.Files, summary)
	}

	for _, fe := range result.Failures {
		failure := Failure{Filename: fe.Filename, Kind: parser.Kind(fe)}
		if fe.Err != nil {
			failure.Error = fe.Err.Error()
		}
		report.Failures = append(report.Failures, failure)
	}

	report.Summary.FilesParsed = len(report.Files)
	report.Summary.FilesFailed = len(report.Failures)
	return report
}

func summarizeFile(file *parser.ParsedFile) FileSummary {
	s := FileSummary{
		Filename:  file.Metadata.Filename,
		Date:      file.Metadata.Date.String(),
		Year:      file.Metadata.Year,
		Week:      file.Metadata.Week,
		TableID:   file.Metadata.TableID,
		Columns:   len(file.Sections.ColumnNames),
		Rows:      len(file.Sections.DataRows),
		Footnotes: len(file.Sections.Footnotes),
	}
	for _, w := range file.Warnings {
		s.Warnings = append(s.Warnings, w.Error())
	}
	return s
}

// HasFailures returns true if any bulletin failed to parse.
func (r *Report) HasFailures() bool {
	return r.Summary.FilesFailed > 0
}

// Series is a time series for one (column, row) cell across bulletins.
type Series struct {
	Column string        `json:"column"`
	Row    string        `json:"row"`
	Points []query.Point `json:"points"`
}
