package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateMetastore(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateProcessing(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if strings.TrimSpace(c.Catalog.BaseURL) == "" {
		return errors.New("catalog.base_url must be set")
	}
	if c.Catalog.RequestsPerSec <= 0 {
		return errors.New("catalog.requests_per_sec must be positive")
	}
	return nil
}

func (c *Config) validateMetastore() error {
	if strings.TrimSpace(c.Metastore.BaseURL) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/bindery/config.toml"
		}
		return fmt.Errorf("metastore.base_url is required. Edit %s (create with 'bindery config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateStorage() error {
	if strings.TrimSpace(c.Storage.Endpoint) == "" {
		return errors.New("storage.endpoint must be set")
	}
	if strings.TrimSpace(c.Storage.Bucket) == "" {
		return errors.New("storage.bucket must be set")
	}
	return nil
}

func (c *Config) validateProcessing() error {
	if c.Processing.MinQualityScore < 0 || c.Processing.MinQualityScore > 100 {
		return errors.New("processing.min_quality_score must be between 0 and 100")
	}
	if c.Processing.DownloadRetries < 1 {
		return errors.New("processing.download_retries must be >= 1")
	}
	return nil
}
