package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/mmwrtab/pkg/query"
)

// FieldsOptions holds command-line options for the fields command.
type FieldsOptions struct {
	Output string
}

// NewFieldsCommand creates the fields command.
func NewFieldsCommand() *cobra.Command {
	opts := &FieldsOptions{}

	cmd := &cobra.Command{
		Use:   "fields <config-file>",
		Short: "List the column names and row labels across bulletins",
		Long: `Parse the configured bulletins and list every distinct column name and
row label, sorted. Names are not normalized: the same disease or reporting
area can appear under several spellings across years.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFields(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")

	return cmd
}

func runFields(cmd *cobra.Command, args []string, opts *FieldsOptions) error {
	if opts.Output != "text" && opts.Output != "json" {
		return fmt.Errorf("unknown output format %q (must be text or json)", opts.Output)
	}

	r, err := newRun(cmd, args[0])
	if err != nil {
		return err
	}

	_, result, err := r.parseAll(false)
	if err != nil {
		return err
	}

	fields := query.UniqueFields(result.Files)
	w := cmd.OutOrStdout()

	if opts.Output == "json" {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(fields); err != nil {
			return err
		}
	} else {
		printFields(w, fields, len(result.Files))
	}

	if len(result.Failures) > 0 {
		ExitCode = 1
	}

	return nil
}

func printFields(w io.Writer, fields query.Fields, files int) {
	fmt.Fprintf(w, "=== Fields across %d bulletins ===\n\n", files)

	fmt.Fprintf(w, "%d column names\n", len(fields.Columns))
	for _, c := range fields.Columns {
		fmt.Fprintf(w, "  %s\n", c)
	}

	fmt.Fprintf(w, "\n%d row labels\n", len(fields.Rows))
	for _, r := range fields.Rows {
		fmt.Fprintf(w, "  %s\n", r)
	}
}
