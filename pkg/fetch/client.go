// Package fetch downloads weekly MMWR tables from CDC WONDER.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/ccollicutt/mmwrtab/pkg/metrics"
)

const (
	tableListPath = "/mmwr/mmwrmorb2.asp"
	exportPath    = "/mmwr/mmwr_reps.asp"

	// tableSelector finds the table choices on the weekly list page.
	tableSelector = `select[name="mmwr_table"]`
)

// Request kinds used as metric labels.
const (
	KindList   = "list"
	KindExport = "export"
)

// ErrEmptyExport is returned when the site answers an export with no body.
var ErrEmptyExport = errors.New("empty export")

// Client talks to the CDC WONDER MMWR pages.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	metrics *metrics.Recorder
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithRateLimit bounds requests to r per second with the given burst.
func WithRateLimit(r float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(r), burst)
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(d)
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.http.SetHeader("User-Agent", ua)
		}
	}
}

// WithMetrics records every request in m.
func WithMetrics(m *metrics.Recorder) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client for the site at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(30*time.Second).
			SetHeader("User-Agent", "mmwrtab"),
		limiter: rate.NewLimiter(rate.Inf, 1),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func weekParams(year, week int) map[string]string {
	return map[string]string{
		"mmwr_year": strconv.Itoa(year),
		"mmwr_week": fmt.Sprintf("%02d", week),
	}
}

func (c *Client) get(ctx context.Context, kind, path string, params map[string]string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(path)
	if err != nil {
		c.metrics.ObserveFetch(kind, 0)
		return nil, fmt.Errorf("requesting %s: %w", path, err)
	}
	c.metrics.ObserveFetch(kind, resp.StatusCode())

	c.logger.DebugContext(ctx, "fetched", "kind", kind, "status", resp.StatusCode(), "duration", resp.Time())

	if resp.IsError() {
		return nil, fmt.Errorf("requesting %s: %s", path, resp.Status())
	}
	return resp.Body(), nil
}

// Tables lists the table identifiers published for (year, week). A page
// without a table selector means nothing was published that week; the
// result is then empty and not an error.
func (c *Client) Tables(ctx context.Context, year, week int) ([]string, error) {
	body, err := c.get(ctx, KindList, tableListPath, weekParams(year, week))
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing table list for %d week %d: %w", year, week, err)
	}

	var tables []string
	doc.Find(tableSelector).First().Find("option").Each(func(_ int, opt *goquery.Selection) {
		id, ok := opt.Attr("value")
		if !ok {
			id = opt.Text()
		}
		if id = strings.TrimSpace(id); id != "" {
			tables = append(tables, id)
		}
	})
	return tables, nil
}

// Table downloads the tab-delimited export of one table.
func (c *Client) Table(ctx context.Context, year, week int, table string) ([]byte, error) {
	params := weekParams(year, week)
	params["mmwr_table"] = table
	params["request"] = "Export"

	body, err := c.get(ctx, KindExport, exportPath, params)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrEmptyExport
	}
	return body, nil
}
