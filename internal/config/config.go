package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for WikiHarvest.
type Config struct {
	HTTP    HTTPConfig    `mapstructure:"http"    yaml:"http"`
	Scraper ScraperConfig `mapstructure:"scraper" yaml:"scraper"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// HTTPConfig controls the shared HTTP client.
type HTTPConfig struct {
	UserAgent         string        `mapstructure:"user_agent"          yaml:"user_agent"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"     yaml:"request_timeout"`
	MaxBodySize       int64         `mapstructure:"max_body_size"       yaml:"max_body_size"`
	MaxRedirects      int           `mapstructure:"max_redirects"       yaml:"max_redirects"`
	IdleConnTimeout   time.Duration `mapstructure:"idle_conn_timeout"   yaml:"idle_conn_timeout"`
	MaxIdleConns      int           `mapstructure:"max_idle_conns"      yaml:"max_idle_conns"`
	TLSInsecure       bool          `mapstructure:"tls_insecure"        yaml:"tls_insecure"`
}

// ScraperConfig controls the per-keyword pipeline.
type ScraperConfig struct {
	SiteRoot         string        `mapstructure:"site_root"          yaml:"site_root"`
	Delay            time.Duration `mapstructure:"delay"              yaml:"delay"`
	RespectRobotsTxt bool          `mapstructure:"respect_robots_txt" yaml:"respect_robots_txt"`
}

// StorageConfig controls output destinations. MongoDB is enabled by setting
// a non-empty URI; file output is always on.
type StorageConfig struct {
	OutputDir       string `mapstructure:"output_dir"       yaml:"output_dir"`
	MongoURI        string `mapstructure:"mongo_uri"        yaml:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database"   yaml:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection" yaml:"mongo_collection"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file"  yaml:"file"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			UserAgent:         "WikiHarvest/" + Version + " (Educational Project; contact@example.com)",
			RequestsPerSecond: 10,
			RequestTimeout:    30 * time.Second,
			MaxBodySize:       10 * 1024 * 1024, // 10MB
			MaxRedirects:      10,
			IdleConnTimeout:   90 * time.Second,
			MaxIdleConns:      100,
		},
		Scraper: ScraperConfig{
			SiteRoot:         "https://en.wikipedia.org",
			Delay:            1 * time.Second,
			RespectRobotsTxt: true,
		},
		Storage: StorageConfig{
			OutputDir:       "output",
			MongoDatabase:   "wikiharvest",
			MongoCollection: "articles",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "wikipedia_scraper.log",
		},
	}
}
