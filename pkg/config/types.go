// Package config provides configuration loading and validation for mmwrtab.
package config

import "time"

// Config is the root configuration structure loaded from YAML.
type Config struct {
	// Sources are bulletin paths or glob patterns.
	Sources []string `yaml:"sources"`

	// FileList names a plain-text file with one bulletin filename per line.
	FileList string `yaml:"file_list,omitempty"`

	// ListDir is joined to relative FileList entries.
	ListDir string `yaml:"list_dir,omitempty"`

	// Contains keeps only bulletins whose text contains this string (case-insensitive).
	Contains string `yaml:"contains,omitempty"`

	// Workers bounds concurrent parses. Zero means one per CPU.
	Workers int `yaml:"workers,omitempty" validate:"gte=0,lte=256"`

	// StrictColumns fails a bulletin that repeats a column name.
	StrictColumns bool `yaml:"strict_columns,omitempty"`

	Fetch    FetchConfig     `yaml:"fetch"`
	Store    StoreConfig     `yaml:"store"`
	Logging  LoggingConfig   `yaml:"logging"`
	Webhooks []WebhookConfig `yaml:"webhooks,omitempty"`
}

// FetchConfig controls downloading bulletins from CDC WONDER.
type FetchConfig struct {
	BaseURL   string `yaml:"base_url" validate:"required,url"`
	OutputDir string `yaml:"output_dir" validate:"required"`

	// The crawl covers StartWeek of StartYear through EndWeek of EndYear.
	StartYear int `yaml:"start_year" validate:"required,gte=1900"`
	EndYear   int `yaml:"end_year" validate:"required,gtefield=StartYear"`
	StartWeek int `yaml:"start_week" validate:"gte=1,lte=53"`
	EndWeek   int `yaml:"end_week" validate:"gte=1,lte=53"`

	// Tables restricts the crawl to these table identifiers. When empty,
	// the tables published each week are listed from the site.
	Tables []string `yaml:"tables,omitempty" validate:"dive,alphanum"`

	// Rate is the request rate limit in requests per second.
	Rate  float64 `yaml:"rate" validate:"gt=0"`
	Burst int     `yaml:"burst" validate:"gte=1"`

	Timeout   time.Duration `yaml:"timeout" validate:"gt=0"`
	UserAgent string        `yaml:"user_agent,omitempty"`
}

// StoreConfig is the MySQL connection used by the load command.
type StoreConfig struct {
	Host      string `yaml:"host" validate:"required,hostname_rfc1123|ip"`
	Port      string `yaml:"port" validate:"required,numeric"`
	User      string `yaml:"user" validate:"required"`
	Password  string `yaml:"password,omitempty"`
	DBName    string `yaml:"dbname" validate:"required"`
	BatchSize int    `yaml:"batch_size" validate:"gte=1,lte=10000"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnFailures fires only when some bulletins failed (default).
	WebhookTriggerOnFailures WebhookTrigger = "on_failures"
	// WebhookTriggerAlways fires after every run.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint for sending parse reports.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token for authentication.
	Token string `yaml:"token,omitempty"`

	// Trigger determines when the webhook fires.
	// Defaults to "on_failures" if not specified.
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Timeout is the HTTP request timeout.
	// Defaults to 10s if not specified.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}
