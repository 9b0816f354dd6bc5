package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable. The API key is not required
// here so utility commands work without credentials; the application checks
// it before running.
func (c *Config) Validate() error {
	if err := c.validateEmbedding(); err != nil {
		return err
	}
	if err := c.validateChunking(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateEmbedding() error {
	// Empty selects the public endpoint.
	if base := strings.TrimSpace(c.Embedding.BaseURL); base != "" {
		parsed, err := url.Parse(base)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("embedding.base_url must be an absolute URL, got %q", c.Embedding.BaseURL)
		}
	}
	if err := ensurePositiveMap(map[string]int{
		"embedding.timeout_seconds": c.Embedding.TimeoutSeconds,
		"embedding.max_retries":     c.Embedding.MaxRetries,
	}); err != nil {
		return err
	}
	switch c.Embedding.Tokenizer {
	case TokenizerTiktoken, TokenizerApprox:
	default:
		return fmt.Errorf("embedding.tokenizer: unsupported value %q (use %q or %q)", c.Embedding.Tokenizer, TokenizerTiktoken, TokenizerApprox)
	}
	return nil
}

func (c *Config) validateChunking() error {
	if c.Chunking.MaxTokens <= 0 {
		return errors.New("chunking.max_tokens must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be zero or positive")
	}
	if filepath.Base(c.Logging.FileName) != c.Logging.FileName {
		return fmt.Errorf("logging.file_name must be a bare file name, got %q", c.Logging.FileName)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
