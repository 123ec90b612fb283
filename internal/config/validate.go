package config

import (
	"fmt"
	"net/url"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.HTTP.UserAgent == "" {
		return fmt.Errorf("http.user_agent must not be empty")
	}
	if cfg.HTTP.RequestsPerSecond <= 0 {
		return fmt.Errorf("http.requests_per_second must be > 0")
	}
	if cfg.HTTP.RequestTimeout <= 0 {
		return fmt.Errorf("http.request_timeout must be > 0")
	}
	if cfg.HTTP.MaxBodySize <= 0 {
		return fmt.Errorf("http.max_body_size must be > 0")
	}
	if cfg.HTTP.MaxRedirects < 0 {
		return fmt.Errorf("http.max_redirects must be >= 0")
	}

	u, err := url.Parse(cfg.Scraper.SiteRoot)
	if err != nil {
		return fmt.Errorf("invalid scraper.site_root %q: %w", cfg.Scraper.SiteRoot, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scraper.site_root scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("scraper.site_root must have a host")
	}
	if cfg.Scraper.Delay < 0 {
		return fmt.Errorf("scraper.delay must be >= 0")
	}

	if cfg.Storage.OutputDir == "" {
		return fmt.Errorf("storage.output_dir must not be empty")
	}
	if cfg.Storage.MongoURI != "" {
		if cfg.Storage.MongoDatabase == "" {
			return fmt.Errorf("storage.mongo_database must be set when storage.mongo_uri is set")
		}
		if cfg.Storage.MongoCollection == "" {
			return fmt.Errorf("storage.mongo_collection must be set when storage.mongo_uri is set")
		}
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}

	return nil
}
