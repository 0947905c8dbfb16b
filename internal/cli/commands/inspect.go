package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/mmwrtab/pkg/parser"
)

// InspectOptions holds command-line options for the inspect command.
type InspectOptions struct {
	Output      string
	Rows        int
	WriteConfig string
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	opts := &InspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect <tab-file>",
		Short: "Show how a single bulletin is split and parsed",
		Long: `Parse one bulletin and show its sections: the header line, the
column-name block, the data rows and the footnotes, along with the metadata
taken from the header and filename.

Useful when a bulletin fails to parse, or to find the exact column names and
row labels to query.

Optionally generates a starter config file with --write-config.

Example:
  mmwrtab inspect tabdatafiles/2009_wk12_table2H.tab
  mmwrtab inspect --rows 20 tabdatafiles/2009_wk12_table2H.tab
  mmwrtab inspect -w mmwrtab.yaml tabdatafiles/2009_wk12_table2H.tab`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVarP(&opts.Rows, "rows", "n", 5, "Number of data rows to show")
	cmd.Flags().StringVarP(&opts.WriteConfig, "write-config", "w", "", "Write starter config to file (will not overwrite)")

	return cmd
}

// Inspection is the result of inspecting one bulletin.
type Inspection struct {
	File        string               `json:"file"`
	Metadata    *parser.FileMetadata `json:"metadata,omitempty"`
	Header      string               `json:"header"`
	ColumnNames []string             `json:"column_names"`
	DataRows    int                  `json:"data_rows"`
	SampleRows  []string             `json:"sample_rows"`
	Footnotes   map[string]string    `json:"footnotes"`
	Trailer     []string             `json:"trailer,omitempty"`
	Warnings    []string             `json:"warnings,omitempty"`
	Error       string               `json:"error,omitempty"`
	ErrorKind   string               `json:"error_kind,omitempty"`
}

func runInspect(cmd *cobra.Command, args []string, opts *InspectOptions) error {
	tabFile := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if _, err := os.Stat(tabFile); os.IsNotExist(err) {
		return fmt.Errorf("bulletin not found: %s", tabFile)
	}

	in, err := inspect(ctx, tabFile, opts.Rows)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()

	if opts.WriteConfig != "" {
		if err := writeStarterConfig(w, in, tabFile, opts.WriteConfig); err != nil {
			return err
		}
	}

	switch opts.Output {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(in); err != nil {
			return err
		}
	default:
		printInspection(w, in)
	}

	if in.Error != "" {
		ExitCode = 1
	}
	return nil
}

// inspect splits and parses one bulletin. A parse failure is part of the
// inspection, not an error; only an unreadable file is.
func inspect(ctx context.Context, path string, rows int) (*Inspection, error) {
	f, err := os.Open(path) // #nosec G304 -- user-provided path is expected
	if err != nil {
		return nil, fmt.Errorf("opening bulletin: %w", err)
	}
	defer f.Close()

	lines, err := parser.ReadLines(f)
	if err != nil {
		return nil, fmt.Errorf("reading bulletin: %w", err)
	}

	in := &Inspection{
		File:      filepath.Base(path),
		Footnotes: map[string]string{},
	}

	raw, err := parser.Split(lines)
	if err == nil {
		raw, err = parser.Postprocess(raw)
	}
	if err != nil {
		in.Error = err.Error()
		in.ErrorKind = parser.Kind(err)
		return in, nil
	}

	in.Header = raw.Header
	in.ColumnNames = raw.ColumnNames
	in.DataRows = len(raw.DataRows)
	in.SampleRows = raw.DataRows[:min(max(rows, 0), len(raw.DataRows))]
	in.Footnotes = raw.FootnoteTable()
	in.Trailer = raw.Trailer

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parsed, err := parser.New().Parse(lines, path)
	if err != nil {
		in.Error = err.Error()
		in.ErrorKind = parser.Kind(err)
		return in, nil
	}

	in.Metadata = &parsed.Metadata
	for _, warn := range parsed.Warnings {
		in.Warnings = append(in.Warnings, warn.Error())
	}
	return in, nil
}

func printInspection(w io.Writer, in *Inspection) {
	fmt.Fprintln(w, "=== Bulletin Inspection ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "File: %s\n", in.File)

	if in.Header != "" {
		fmt.Fprintf(w, "Header: %s\n", in.Header)
	}
	if in.Metadata != nil {
		m := in.Metadata
		fmt.Fprintf(w, "Date: %s\n", m.Date)
		fmt.Fprintf(w, "Year: %s  Week: %s  Table: %s\n", m.Year, m.Week, m.TableID)
	}
	fmt.Fprintln(w)

	if in.Error != "" {
		fmt.Fprintf(w, "Parse failed [%s]: %s\n", in.ErrorKind, in.Error)
		if in.Header == "" {
			return
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Columns (%d):\n", len(in.ColumnNames))
	for i, name := range in.ColumnNames {
		fmt.Fprintf(w, "  %2d. %s\n", i, name)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Data rows: %d\n", in.DataRows)
	for _, row := range in.SampleRows {
		fmt.Fprintf(w, "  %s\n", row)
	}
	if len(in.SampleRows) < in.DataRows {
		fmt.Fprintf(w, "  ... %d more\n", in.DataRows-len(in.SampleRows))
	}
	fmt.Fprintln(w)

	if len(in.Footnotes) > 0 {
		fmt.Fprintln(w, "Footnotes:")
		for _, code := range slices.Sorted(maps.Keys(in.Footnotes)) {
			fmt.Fprintf(w, "  %s: %s\n", code, in.Footnotes[code])
		}
		fmt.Fprintln(w)
	}

	if len(in.Trailer) > 0 {
		fmt.Fprintf(w, "Trailing lines after footnotes: %d\n\n", len(in.Trailer))
	}

	for _, warn := range in.Warnings {
		fmt.Fprintf(w, "WARNING: %s\n", warn)
	}
}

// writeStarterConfig generates a starter config for bulletins like the
// inspected one.
func writeStarterConfig(w io.Writer, in *Inspection, tabFile, configPath string) error {
	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s (will not overwrite)", configPath)
	}

	if in.Metadata == nil {
		return fmt.Errorf("cannot generate config: %s did not parse", in.File)
	}

	content := generateStarterConfig(tabFile, in)

	// #nosec G306 - config file doesn't need restrictive permissions
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(w, "Wrote starter config to: %s\n\n", configPath)
	return nil
}

// generateStarterConfig creates a YAML config template.
func generateStarterConfig(tabFile string, in *Inspection) string {
	dir := filepath.Dir(tabFile)
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	m := in.Metadata

	column := "<column name>"
	if len(in.ColumnNames) > 1 {
		column = in.ColumnNames[1]
	}

	return fmt.Sprintf(`# mmwrtab configuration
# Generated by: mmwrtab inspect %s
# Table %s, %s

sources:
  - %s
  # Add more bulletins or use globs:
  # - %s

# Keep only bulletins mentioning a disease (case-insensitive):
# contains: syphilis

workers: 0
strict_columns: false

logging:
  level: info
  format: text

# Download bulletins with "mmwrtab fetch":
# fetch:
#   output_dir: %s
#   start_year: %s
#   end_year: %s
#   start_week: 1
#   end_week: 52
#   tables: ["%s"]

# Load cells into MySQL with "mmwrtab load":
# store:
#   host: 127.0.0.1
#   port: "3306"
#   user: mmwr
#   password: ${MMWRTAB_STORE_PASSWORD}
#   dbname: mmwr

# Example query:
#   mmwrtab series <this file> --column %q --row "Oreg."
`, in.File, m.TableID, m.Date,
		filepath.Join(dir, fmt.Sprintf("*_table%s.tab", m.TableID)),
		filepath.Join(dir, "*.tab"),
		dir, m.Year, m.Year, m.TableID,
		column)
}
