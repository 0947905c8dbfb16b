// Package store loads parsed bulletin cells into MySQL.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"maps"
	"net"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-sql-driver/mysql"

	"github.com/ccollicutt/mmwrtab/pkg/config"
	"github.com/ccollicutt/mmwrtab/pkg/parser"
)

// Schema creates the cell table. One row per (bulletin, column, row label).
const Schema = `CREATE TABLE IF NOT EXISTS mmwr_cells (
  table_id     VARCHAR(32)  NOT NULL,
  mmwr_year    SMALLINT     NOT NULL,
  mmwr_week    TINYINT      NOT NULL,
  week_ending  DATE         NULL,
  column_name  VARCHAR(255) NOT NULL,
  row_label    VARCHAR(255) NOT NULL,
  cell_value   VARCHAR(255) NOT NULL,
  source       VARCHAR(255) NOT NULL,
  PRIMARY KEY (table_id, mmwr_year, mmwr_week, column_name, row_label)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

const insertPrefix = "INSERT INTO mmwr_cells " +
	"(table_id, mmwr_year, mmwr_week, week_ending, column_name, row_label, cell_value, source) VALUES "

const insertSuffix = " ON DUPLICATE KEY UPDATE " +
	"week_ending = VALUES(week_ending), cell_value = VALUES(cell_value), source = VALUES(source)"

const cellPlaceholders = "(?, ?, ?, ?, ?, ?, ?, ?)"

// maxTextLen is the width of the VARCHAR text columns in Schema.
const maxTextLen = 255

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Cell is one stored table value.
type Cell struct {
	TableID    string
	Year       int
	Week       int
	WeekEnding *time.Time
	Column     string
	Row        string
	Value      string
	Source     string
}

// Store writes cells in batches.
type Store struct {
	db        *sql.DB
	batchSize int
}

// DSN builds the driver connection string for cfg.
func DSN(cfg config.StoreConfig) string {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, cfg.Port)
	mc.DBName = cfg.DBName
	mc.ParseTime = true
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

// Open connects to MySQL and checks the connection.
func Open(ctx context.Context, cfg config.StoreConfig) (*Store, error) {
	db, err := sql.Open("mysql", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetConnMaxIdleTime(60 * time.Second)
	db.SetMaxIdleConns(4)
	db.SetMaxOpenConns(16)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s: %w", net.JoinHostPort(cfg.Host, cfg.Port), err)
	}

	return New(db, cfg.BatchSize), nil
}

// New wraps an open database.
func New(db *sql.DB, batchSize int) *Store {
	if batchSize <= 0 {
		batchSize = config.DefaultStoreBatchSize
	}
	return &Store{db: db, batchSize: batchSize}
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the cell table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// SaveFile upserts every cell of file in one transaction and returns the
// number of cells written.
func (s *Store) SaveFile(ctx context.Context, file *parser.ParsedFile) (int, error) {
	cells, err := Cells(file)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}

	if err := InsertCells(ctx, tx, cells, s.batchSize); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("saving %s: %w", file.Metadata.Filename, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing %s: %w", file.Metadata.Filename, err)
	}
	return len(cells), nil
}

// Cells flattens a parsed file in column then row label order.
func Cells(file *parser.ParsedFile) ([]Cell, error) {
	meta := file.Metadata
	year, err := strconv.Atoi(meta.Year)
	if err != nil {
		return nil, fmt.Errorf("year %q: %w", meta.Year, err)
	}
	week, err := strconv.Atoi(meta.Week)
	if err != nil {
		return nil, fmt.Errorf("week %q: %w", meta.Week, err)
	}

	var ending *time.Time
	if t, err := meta.Date.Time(); err == nil {
		ending = &t
	}

	var cells []Cell
	for _, column := range slices.Sorted(maps.Keys(file.Table)) {
		rows := file.Table[column]
		for _, row := range slices.Sorted(maps.Keys(rows)) {
			if err := checkWidth(column, row, rows[row]); err != nil {
				return nil, fmt.Errorf("%s: %w", meta.Filename, err)
			}
			cells = append(cells, Cell{
				TableID:    meta.TableID,
				Year:       year,
				Week:       week,
				WeekEnding: ending,
				Column:     column,
				Row:        row,
				Value:      rows[row],
				Source:     meta.Filename,
			})
		}
	}
	return cells, nil
}

func checkWidth(column, row, value string) error {
	for _, f := range []struct{ name, text string }{
		{"column name", column},
		{"row label", row},
		{"value", value},
	} {
		if n := utf8.RuneCountInString(f.text); n > maxTextLen {
			return fmt.Errorf("%s of cell (%.40q, %.40q) is %d characters, limit %d",
				f.name, column, row, n, maxTextLen)
		}
	}
	return nil
}

// InsertCells writes cells with multi-row upserts of at most batchSize rows.
func InsertCells(ctx context.Context, ex Execer, cells []Cell, batchSize int) error {
	if batchSize < 1 {
		batchSize = config.DefaultStoreBatchSize
	}
	for chunk := range slices.Chunk(cells, batchSize) {
		query, args := upsert(chunk)
		if _, err := ex.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	return nil
}

func upsert(cells []Cell) (string, []any) {
	var b strings.Builder
	b.WriteString(insertPrefix)

	args := make([]any, 0, len(cells)*8)
	for i, c := range cells {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(cellPlaceholders)

		var ending any
		if c.WeekEnding != nil {
			ending = *c.WeekEnding
		}
		args = append(args, c.TableID, c.Year, c.Week, ending, c.Column, c.Row, c.Value, c.Source)
	}

	b.WriteString(insertSuffix)
	return b.String(), args
}
