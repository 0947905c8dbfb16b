package output

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/ccollicutt/mmwrtab/pkg/parser"
)

func createTestReport() *Report {
	good := &parser.ParsedFile{
		Sections: parser.Sections{
			ColumnNames: []string{"Reporting area", "Syphilis"},
			DataRows:    []string{"United States\t120", "Oreg.\t5"},
			Footnotes:   []string{"-: No reported cases."},
		},
		Metadata: parser.FileMetadata{
			Date:     parser.Date{Month: "May", Day: "16", Year: "2009"},
			Year:     "2009",
			Week:     "19",
			TableID:  "2H",
			Filename: "2009_wk19_table2H.tab",
		},
		Warnings: []error{parser.ErrAmbiguousColumn},
	}

	result := &parser.BatchResult{
		Files: []*parser.ParsedFile{good},
		Failures: []*parser.FileError{
			{Filename: "2009_wk20_table2H.tab", Err: &parser.RowError{Index: 3, Label: "Oreg.", Fields: 2, Want: 4}},
		},
	}

	return NewReport(result, Metadata{
		ConfigFile: "mmwrtab.yaml",
		RunID:      "run-1",
		Sources:    []string{"2009_wk19_table2H.tab", "2009_wk20_table2H.tab"},
		ParsedAt:   time.Date(2009, 6, 1, 0, 0, 0, 0, time.UTC),
		Duration:   1500 * time.Millisecond,
	})
}

func TestNewReport(t *testing.T) {
	report := createTestReport()

	if report.Summary.FilesParsed != 1 {
		t.Errorf("FilesParsed = %d, want 1", report.Summary.FilesParsed)
	}
	if report.Summary.FilesFailed != 1 {
		t.Errorf("FilesFailed = %d, want 1", report.Summary.FilesFailed)
	}
	if report.Summary.Warnings != 1 {
		t.Errorf("Warnings = %d, want 1", report.Summary.Warnings)
	}
	if !report.HasFailures() {
		t.Error("HasFailures() = false, want true")
	}

	file := report.Files[0]
	if file.Date != "May 16, 2009" || file.Columns != 2 || file.Rows != 2 || file.Footnotes != 1 {
		t.Errorf("FileSummary = %+v", file)
	}

	failure := report.Failures[0]
	if failure.Kind != parser.KindMalformedRow {
		t.Errorf("Failure.Kind = %q, want %q", failure.Kind, parser.KindMalformedRow)
	}
	if strings.HasPrefix(failure.Error, failure.Filename) {
		t.Errorf("Failure.Error repeats filename: %q", failure.Error)
	}
}

func TestNewReport_Empty(t *testing.T) {
	report := NewReport(&parser.BatchResult{}, Metadata{})
	if report.HasFailures() {
		t.Error("HasFailures() = true for empty result")
	}
	if report.Files == nil || report.Failures == nil {
		t.Error("Files and Failures should be empty, not nil")
	}
}

func TestNewFormatter(t *testing.T) {
	for _, name := range []string{"", "text", "json"} {
		if _, err := NewFormatter(name, FormatOptions{}); err != nil {
			t.Errorf("NewFormatter(%q) error = %v", name, err)
		}
	}
	if _, err := NewFormatter("yaml", FormatOptions{}); err == nil {
		t.Error("NewFormatter(yaml) expected error")
	}
}

func TestTextFormatter_Format(t *testing.T) {
	f := NewTextFormatter(FormatOptions{})
	if f.Name() != "text" {
		t.Errorf("Name() = %q, want %q", f.Name(), "text")
	}

	var buf bytes.Buffer
	if err := f.Format(context.Background(), createTestReport(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"MMWR Bulletin Parse Report",
		"2009_wk19_table2H.tab",
		"May 16, 2009",
		"2009_wk20_table2H.tab [malformed_row]",
		"Summary: 1 bulletins parsed, 1 failed, 1 warnings",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Output missing %q:\n%s", want, output)
		}
	}
	if strings.Contains(output, "Run: run-1") {
		t.Error("Non-verbose output should not include run metadata")
	}
}

func TestTextFormatter_Format_Verbose(t *testing.T) {
	f := NewTextFormatter(FormatOptions{Verbose: true})

	var buf bytes.Buffer
	if err := f.Format(context.Background(), createTestReport(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "[WARN]") {
		t.Error("Verbose output missing warnings")
	}
	if !strings.Contains(output, "Run: run-1") {
		t.Error("Verbose output missing run id")
	}
	if !strings.Contains(output, "Duration: 1.5s") {
		t.Error("Verbose output missing duration")
	}
}

func TestTextFormatter_Format_Quiet(t *testing.T) {
	f := NewTextFormatter(FormatOptions{Quiet: true})

	var buf bytes.Buffer
	if err := f.Format(context.Background(), createTestReport(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Errorf("Quiet output has %d lines, want 1", len(lines))
	}
}

func TestJSONFormatter_Format(t *testing.T) {
	f := NewJSONFormatter(FormatOptions{})
	if f.Name() != "json" {
		t.Errorf("Name() = %q, want %q", f.Name(), "json")
	}

	var buf bytes.Buffer
	if err := f.Format(context.Background(), createTestReport(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var decoded Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if decoded.Metadata.RunID != "run-1" {
		t.Errorf("RunID = %q, want run-1", decoded.Metadata.RunID)
	}
	if len(decoded.Failures) != 1 || decoded.Failures[0].Kind != "malformed_row" {
		t.Errorf("Failures = %+v", decoded.Failures)
	}
}

func TestJSONFormatter_Format_Quiet(t *testing.T) {
	f := NewJSONFormatter(FormatOptions{Quiet: true})

	var buf bytes.Buffer
	if err := f.Format(context.Background(), createTestReport(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var summary Summary
	if err := json.Unmarshal(buf.Bytes(), &summary); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if summary.FilesParsed != 1 || summary.FilesFailed != 1 {
		t.Errorf("Summary = %+v", summary)
	}
	if strings.Contains(buf.String(), "files\"") {
		t.Error("Quiet output should not include file list")
	}
}
