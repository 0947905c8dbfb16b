package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Default values for configuration.
const (
	DefaultWebhookTimeout = 10 * time.Second
	DefaultBaseURL        = "https://wonder.cdc.gov"
	DefaultOutputDir      = "tabdatafiles"
	DefaultFetchRate      = 2.0
	DefaultFetchBurst     = 1
	DefaultFetchTimeout   = 30 * time.Second
	DefaultStoreHost      = "127.0.0.1"
	DefaultStorePort      = "3306"
	DefaultStoreBatchSize = 500
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
)

// EnvPrefix prefixes every environment override, e.g. MMWRTAB_SOURCES.
const EnvPrefix = "MMWRTAB"

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Sources: []string{},
		Fetch: FetchConfig{
			BaseURL:   DefaultBaseURL,
			OutputDir: DefaultOutputDir,
			StartWeek: 1,
			EndWeek:   52,
			Rate:      DefaultFetchRate,
			Burst:     DefaultFetchBurst,
			Timeout:   DefaultFetchTimeout,
		},
		Store: StoreConfig{
			Host:      DefaultStoreHost,
			Port:      DefaultStorePort,
			BatchSize: DefaultStoreBatchSize,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// envOverrides lists the settings that may come from the environment.
type envOverrides struct {
	Sources       []string `envconfig:"SOURCES"`
	Workers       int      `envconfig:"WORKERS"`
	LogLevel      string   `envconfig:"LOG_LEVEL"`
	LogFormat     string   `envconfig:"LOG_FORMAT"`
	FetchBaseURL  string   `envconfig:"FETCH_BASE_URL"`
	FetchDir      string   `envconfig:"FETCH_OUTPUT_DIR"`
	StoreHost     string   `envconfig:"STORE_HOST"`
	StorePort     string   `envconfig:"STORE_PORT"`
	StoreUser     string   `envconfig:"STORE_USER"`
	StorePassword string   `envconfig:"STORE_PASSWORD"`
	StoreDBName   string   `envconfig:"STORE_DBNAME"`
}

// applyEnvironmentOverrides applies MMWRTAB_* environment variables on top
// of the file configuration. Unset variables leave the file value alone.
func (c *Config) applyEnvironmentOverrides() error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}

	if len(env.Sources) > 0 {
		c.Sources = env.Sources
	}
	if env.Workers > 0 {
		c.Workers = env.Workers
	}
	setIf(&c.Logging.Level, env.LogLevel)
	setIf(&c.Logging.Format, env.LogFormat)
	setIf(&c.Fetch.BaseURL, env.FetchBaseURL)
	setIf(&c.Fetch.OutputDir, env.FetchDir)
	setIf(&c.Store.Host, env.StoreHost)
	setIf(&c.Store.Port, env.StorePort)
	setIf(&c.Store.User, env.StoreUser)
	setIf(&c.Store.Password, env.StorePassword)
	setIf(&c.Store.DBName, env.StoreDBName)

	return nil
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
