package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCatalog()
	c.normalizeMetastore()
	c.normalizeStorage()
	c.normalizeProcessing()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCatalog() {
	c.Catalog.BaseURL = strings.TrimRight(strings.TrimSpace(c.Catalog.BaseURL), "/")
	if c.Catalog.BaseURL == "" {
		c.Catalog.BaseURL = defaultCatalogBaseURL
	}
	if c.Catalog.RequestsPerSec <= 0 {
		c.Catalog.RequestsPerSec = defaultCatalogRate
	}
	if c.Catalog.RequestTimeout <= 0 {
		c.Catalog.RequestTimeout = defaultRequestTimeout
	}
}

func (c *Config) normalizeMetastore() {
	c.Metastore.BaseURL = strings.TrimRight(strings.TrimSpace(c.Metastore.BaseURL), "/")
	c.Metastore.Token = strings.TrimSpace(c.Metastore.Token)
	if c.Metastore.Token == "" {
		if value, ok := os.LookupEnv("BINDERY_METASTORE_TOKEN"); ok {
			c.Metastore.Token = strings.TrimSpace(value)
		}
	}
	if c.Metastore.RequestTimeout <= 0 {
		c.Metastore.RequestTimeout = defaultRequestTimeout
	}
}

func (c *Config) normalizeStorage() {
	c.Storage.Endpoint = strings.TrimRight(strings.TrimSpace(c.Storage.Endpoint), "/")
	c.Storage.Bucket = strings.TrimSpace(c.Storage.Bucket)
	c.Storage.PublicBaseURL = strings.TrimRight(strings.TrimSpace(c.Storage.PublicBaseURL), "/")
	c.Storage.Token = strings.TrimSpace(c.Storage.Token)
	if c.Storage.Token == "" {
		if value, ok := os.LookupEnv("BINDERY_STORAGE_TOKEN"); ok {
			c.Storage.Token = strings.TrimSpace(value)
		}
	}
	if c.Storage.RequestTimeout <= 0 {
		c.Storage.RequestTimeout = defaultRequestTimeout
	}
}

func (c *Config) normalizeProcessing() {
	if c.Processing.JobDelaySeconds < 0 {
		c.Processing.JobDelaySeconds = 0
	}
	if c.Processing.DownloadRetries <= 0 {
		c.Processing.DownloadRetries = defaultDownloadRetries
	}
	if c.Processing.MinQualityScore <= 0 {
		c.Processing.MinQualityScore = defaultMinQualityScore
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
