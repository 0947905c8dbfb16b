package commands

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ccollicutt/mmwrtab/pkg/config"
	"github.com/ccollicutt/mmwrtab/pkg/logging"
	"github.com/ccollicutt/mmwrtab/pkg/metrics"
	"github.com/ccollicutt/mmwrtab/pkg/output"
	"github.com/ccollicutt/mmwrtab/pkg/parser"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// run carries what every config-driven command needs.
type run struct {
	ctx        context.Context
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
	metrics    *metrics.Recorder
	runID      string
	started    time.Time
}

// newRun loads the configuration and sets up logging for one invocation.
// Logs go to the command's stderr so reports on stdout stay clean.
func newRun(cmd *cobra.Command, configPath string) (*run, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	id := uuid.NewString()
	logger := logging.New(cmd.ErrOrStderr(), cfg.Logging)

	return &run{
		ctx:        logging.WithRunID(ctx, id),
		configPath: configPath,
		cfg:        cfg,
		logger:     logger,
		metrics:    metrics.New(),
		runID:      id,
		started:    time.Now(),
	}, nil
}

// discover lists the bulletins named by the configuration: glob matches
// plus file_list entries, optionally filtered by content.
func discover(cfg *config.Config) ([]string, error) {
	files, err := parser.ExpandGlobs(cfg.Sources)
	if err != nil {
		return nil, fmt.Errorf("expanding sources: %w", err)
	}

	if cfg.FileList != "" {
		listed, err := parser.ReadFileList(cfg.FileList, cfg.ListDir)
		if err != nil {
			return nil, err
		}
		for _, f := range listed {
			if !slices.Contains(files, f) {
				files = append(files, f)
			}
		}
	}

	if cfg.Contains != "" {
		files, err = parser.FilterContaining(files, cfg.Contains)
		if err != nil {
			return nil, fmt.Errorf("filtering sources: %w", err)
		}
	}

	return files, nil
}

// parseAll discovers and parses every bulletin, recording metrics. Per-file
// failures are in the result; the error is for problems that stop the run.
func (r *run) parseAll(failFast bool) ([]string, *parser.BatchResult, error) {
	files, err := discover(r.cfg)
	if err != nil {
		return nil, nil, err
	}
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("no bulletin files matched sources: %v", r.cfg.Sources)
	}

	r.logger.InfoContext(r.ctx, "parsing bulletins", "files", len(files), "workers", r.cfg.Workers)

	p := parser.New(
		parser.WithStrictColumns(r.cfg.StrictColumns),
		parser.WithLogger(r.logger),
	)

	result, err := parser.ParseFiles(r.ctx, p, files, parser.BatchOptions{
		Workers:  r.cfg.Workers,
		FailFast: failFast,
	})
	if result != nil {
		for range result.Files {
			r.metrics.ObserveParse("")
		}
		for _, fe := range result.Failures {
			r.logger.WarnContext(r.ctx, "bulletin failed", "file", fe.Filename, "kind", parser.Kind(fe), "error", fe.Err)
			r.metrics.ObserveParse(parser.Kind(fe))
		}
	}
	if err != nil {
		return files, result, fmt.Errorf("parsing bulletins: %w", err)
	}

	return files, result, nil
}

// report builds the parse report for result.
func (r *run) report(files []string, result *parser.BatchResult) *output.Report {
	return output.NewReport(result, output.Metadata{
		ConfigFile: r.configPath,
		RunID:      r.runID,
		Sources:    files,
		ParsedAt:   time.Now(),
		Duration:   time.Since(r.started),
	})
}

// finish writes the metrics textfile when one was requested.
func (r *run) finish(metricsFile string) error {
	if metricsFile == "" {
		return nil
	}
	return r.metrics.WriteTextfile(metricsFile)
}

func addMetricsFlag(cmd *cobra.Command, dst *string) {
	cmd.Flags().StringVar(dst, "metrics-file", "", "Write Prometheus metrics to this file (textfile collector format)")
}
