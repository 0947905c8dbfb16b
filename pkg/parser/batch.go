package parser

import (
	"context"
	"errors"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// BatchOptions controls ParseFiles.
type BatchOptions struct {
	// Workers bounds concurrent parses. Zero means GOMAXPROCS.
	Workers int

	// FailFast stops the batch at the first per-file failure.
	FailFast bool
}

// BatchResult holds the outcome of parsing many bulletins.
type BatchResult struct {
	// Files are the successful parses, in input order.
	Files []*ParsedFile

	// Failures are the per-file errors, in input order.
	Failures []*FileError
}

// ParseFiles parses every path with p. Files are independent, so they are
// parsed concurrently; results keep input order. Per-file failures are
// collected in the result. The returned error is only set when the context
// is cancelled or, with FailFast, for the first failure.
func ParseFiles(ctx context.Context, p *Parser, paths []string, opts BatchOptions) (*BatchResult, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	parsed := make([]*ParsedFile, len(paths))
	failed := make([]*FileError, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			file, err := p.ParseFile(gctx, path)
			if err == nil {
				parsed[i] = file
				return nil
			}

			var fileErr *FileError
			if !errors.As(err, &fileErr) {
				// Context cancellation, not a problem with the file.
				return err
			}
			failed[i] = fileErr
			if opts.FailFast {
				return fileErr
			}
			return nil
		})
	}

	waitErr := g.Wait()

	result := &BatchResult{}
	for i := range paths {
		if parsed[i] != nil {
			result.Files = append(result.Files, parsed[i])
		}
		if failed[i] != nil {
			result.Failures = append(result.Failures, failed[i])
		}
	}

	if waitErr != nil {
		return result, waitErr
	}
	return result, ctx.Err()
}
