package parser

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// maxLineSize bounds a single bulletin line.
const maxLineSize = 1024 * 1024

// Parser turns one bulletin into a ParsedFile. The zero value is not usable;
// create one with New. A Parser holds no per-file state and may be shared
// between goroutines.
type Parser struct {
	split         SplitFunc
	assemble      AssembleFunc
	strictColumns bool
	logger        *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithSplitter replaces the section splitter.
func WithSplitter(fn SplitFunc) Option {
	return func(p *Parser) {
		if fn != nil {
			p.split = fn
		}
	}
}

// WithAssembler replaces the table assembler.
func WithAssembler(fn AssembleFunc) Option {
	return func(p *Parser) {
		if fn != nil {
			p.assemble = fn
		}
	}
}

// WithStrictColumns makes duplicate column names fail the file instead of
// being reported as warnings.
func WithStrictColumns(strict bool) Option {
	return func(p *Parser) {
		p.strictColumns = strict
	}
}

// WithLogger sets the logger used for warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a Parser using Split and Assemble unless overridden.
func New(opts ...Option) *Parser {
	p := &Parser{
		split:    Split,
		assemble: Assemble,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses the lines of one bulletin. filename is used for metadata
// and may be a full path. The same input always gives the same output.
// Failures are returned as *FileError; no partial result is returned.
func (p *Parser) Parse(lines RawLines, filename string) (*ParsedFile, error) {
	name := filepath.Base(filename)
	fail := func(err error) (*ParsedFile, error) {
		return nil, &FileError{Filename: name, Err: err}
	}

	raw, err := p.split(lines)
	if err != nil {
		return fail(err)
	}

	sections, err := Postprocess(raw)
	if err != nil {
		return fail(err)
	}

	metadata, err := ExtractMetadata(sections.Header, name)
	if err != nil {
		return fail(err)
	}

	var warnings []error
	for _, dup := range DuplicateColumns(sections.ColumnNames) {
		warn := fmt.Errorf("%w: %q appears more than once, last column wins", ErrAmbiguousColumn, dup)
		if p.strictColumns {
			return fail(warn)
		}
		p.logger.Warn("duplicate column name",
			slog.String("file", name),
			slog.String("column", dup))
		warnings = append(warnings, warn)
	}

	table, err := p.assemble(sections)
	if err != nil {
		return fail(err)
	}

	return &ParsedFile{
		Sections: sections,
		Table:    table,
		Metadata: metadata,
		Warnings: warnings,
	}, nil
}

// ParseFile reads and parses the bulletin at path. The file is closed on
// every return path.
func (p *Parser) ParseFile(ctx context.Context, path string) (*ParsedFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return nil, &FileError{Filename: filepath.Base(path), Err: fmt.Errorf("opening bulletin: %w", err)}
	}
	defer f.Close()

	lines, err := ReadLines(f)
	if err != nil {
		return nil, &FileError{Filename: filepath.Base(path), Err: fmt.Errorf("reading %s: %w", path, err)}
	}

	return p.Parse(lines, path)
}

// ReadLines reads r into lines, dropping line terminators (\n or \r\n).
func ReadLines(r io.Reader) (RawLines, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var lines RawLines
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
