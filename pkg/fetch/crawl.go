package fetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Filename is the name a downloaded table is saved under. It is the shape
// the bulletin parser reads metadata from.
func Filename(year, week int, table string) string {
	return fmt.Sprintf("%d_wk%02d_table%s.tab", year, week, table)
}

// Plan describes one crawl.
type Plan struct {
	StartYear, EndYear int
	StartWeek, EndWeek int

	// Tables, when set, skips the weekly table listing.
	Tables []string

	OutputDir string
}

// Failure is a table (or a week listing, when Table is empty) that could
// not be fetched.
type Failure struct {
	Year  int    `json:"year"`
	Week  int    `json:"week"`
	Table string `json:"table,omitempty"`
	Err   error  `json:"-"`
}

func (f Failure) Error() string {
	if f.Table == "" {
		return fmt.Sprintf("%d week %02d: listing tables: %v", f.Year, f.Week, f.Err)
	}
	return fmt.Sprintf("%d week %02d table %s: %v", f.Year, f.Week, f.Table, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// CrawlResult summarizes a crawl.
type CrawlResult struct {
	Saved       []string
	Failures    []Failure
	EmptyWeeks  int
	WeeksListed int
}

// Crawl downloads every table in the plan into plan.OutputDir. Individual
// failures are recorded and skipped; only cancellation or an unusable
// output directory stops the crawl.
func (c *Client) Crawl(ctx context.Context, plan Plan) (*CrawlResult, error) {
	if err := os.MkdirAll(plan.OutputDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	result := &CrawlResult{}

	for wk := range Weeks(plan.StartYear, plan.EndYear, plan.StartWeek, plan.EndWeek) {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		tables := plan.Tables
		if len(tables) == 0 {
			listed, err := c.Tables(ctx, wk.Year, wk.Week)
			if err != nil {
				if ctx.Err() != nil {
					return result, ctx.Err()
				}
				c.logger.WarnContext(ctx, "listing tables failed", "year", wk.Year, "week", wk.Week, "error", err)
				result.Failures = append(result.Failures, Failure{Year: wk.Year, Week: wk.Week, Err: err})
				continue
			}
			result.WeeksListed++
			if len(listed) == 0 {
				result.EmptyWeeks++
				continue
			}
			tables = listed
		}

		for _, table := range tables {
			path, err := c.save(ctx, plan.OutputDir, wk, table)
			if err != nil {
				if ctx.Err() != nil {
					return result, ctx.Err()
				}
				c.logger.WarnContext(ctx, "table download failed", "year", wk.Year, "week", wk.Week, "table", table, "error", err)
				result.Failures = append(result.Failures, Failure{Year: wk.Year, Week: wk.Week, Table: table, Err: err})
				continue
			}
			c.logger.InfoContext(ctx, "saved table", "path", path)
			result.Saved = append(result.Saved, path)
		}
	}

	return result, nil
}

func (c *Client) save(ctx context.Context, dir string, wk Week, table string) (string, error) {
	if !validTableID(table) {
		return "", fmt.Errorf("unusable table identifier %q", table)
	}

	body, err := c.Table(ctx, wk.Year, wk.Week, table)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, Filename(wk.Year, wk.Week, table))
	if err := os.WriteFile(path, body, 0o600); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

func validTableID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '_') {
			return false
		}
	}
	return true
}
