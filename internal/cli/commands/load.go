package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/mmwrtab/pkg/config"
	"github.com/ccollicutt/mmwrtab/pkg/parser"
	"github.com/ccollicutt/mmwrtab/pkg/store"
)

// LoadOptions holds command-line options for the load command.
type LoadOptions struct {
	MetricsFile string
}

// NewLoadCommand creates the load command.
func NewLoadCommand() *cobra.Command {
	opts := &LoadOptions{}

	cmd := &cobra.Command{
		Use:   "load <config-file>",
		Short: "Parse bulletins and store their cells in MySQL",
		Long: `Parse the configured bulletins and upsert every cell into the
mmwr_cells table of the database named by the store section. The table is
created if it does not exist. Each bulletin is written in one transaction;
loading the same bulletin again replaces its cells.

The password may reference an environment variable ($VAR or ${VAR}), and
every store setting can be overridden with MMWRTAB_STORE_* variables.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd, args, opts)
		},
	}

	addMetricsFlag(cmd, &opts.MetricsFile)

	return cmd
}

func runLoad(cmd *cobra.Command, args []string, opts *LoadOptions) error {
	r, err := newRun(cmd, args[0])
	if err != nil {
		return err
	}

	if err := config.ValidateStore(r.cfg); err != nil {
		return err
	}

	_, result, err := r.parseAll(false)
	if err != nil {
		return err
	}

	db, err := store.Open(r.ctx, r.cfg.Store)
	if err != nil {
		return err
	}

	cells, err := loadFiles(r, db, result.Files)
	err = errors.Join(err, db.Close())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Load: %d bulletins, %d cells stored, %d bulletins failed to parse\n",
		len(result.Files), cells, len(result.Failures))

	if err := r.finish(opts.MetricsFile); err != nil {
		return err
	}

	if len(result.Failures) > 0 {
		ExitCode = 1
	}

	return nil
}

type fileSaver interface {
	EnsureSchema(ctx context.Context) error
	SaveFile(ctx context.Context, file *parser.ParsedFile) (int, error)
}

// loadFiles saves every file, stopping at the first database error.
func loadFiles(r *run, db fileSaver, files []*parser.ParsedFile) (int, error) {
	if err := db.EnsureSchema(r.ctx); err != nil {
		return 0, err
	}

	total := 0
	for _, file := range files {
		n, err := db.SaveFile(r.ctx, file)
		if err != nil {
			return total, err
		}
		r.metrics.AddCells(n)
		r.logger.DebugContext(r.ctx, "stored bulletin", "file", file.Metadata.Filename, "cells", n)
		total += n
	}

	r.logger.InfoContext(r.ctx, "stored cells", "files", len(files), "cells", total)
	return total, nil
}
