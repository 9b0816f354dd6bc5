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
	c.normalizeEmbedding()
	if err := c.normalizeJob(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir()
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeEmbedding() {
	c.Embedding.APIKey = strings.TrimSpace(c.Embedding.APIKey)
	if c.Embedding.APIKey == "" {
		if value, ok := os.LookupEnv(envAPIKey); ok {
			c.Embedding.APIKey = strings.TrimSpace(value)
		}
	}
	c.Embedding.BaseURL = strings.TrimRight(strings.TrimSpace(c.Embedding.BaseURL), "/")
	if c.Embedding.BaseURL == "" {
		if value, ok := os.LookupEnv(envBaseURL); ok && strings.TrimSpace(value) != "" {
			c.Embedding.BaseURL = strings.TrimRight(strings.TrimSpace(value), "/")
		} else {
			c.Embedding.BaseURL = defaultEmbeddingBaseURL
		}
	}
	c.Embedding.Model = strings.TrimSpace(c.Embedding.Model)
	if c.Embedding.Model == "" {
		c.Embedding.Model = defaultEmbeddingModel
	}
	c.Embedding.Tokenizer = strings.ToLower(strings.TrimSpace(c.Embedding.Tokenizer))
	if c.Embedding.Tokenizer == "" {
		c.Embedding.Tokenizer = defaultTokenizer
	}
}

func (c *Config) normalizeJob() error {
	var err error
	if !c.Job.ReadsStdin() {
		if c.Job.Input, err = expandPath(strings.TrimSpace(c.Job.Input)); err != nil {
			return fmt.Errorf("job.input: %w", err)
		}
	} else {
		c.Job.Input = "-"
	}
	if !c.Job.WritesStdout() {
		if c.Job.Output, err = expandPath(strings.TrimSpace(c.Job.Output)); err != nil {
			return fmt.Errorf("job.output: %w", err)
		}
	} else {
		c.Job.Output = "-"
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.FileName = strings.TrimSpace(c.Logging.FileName)
	if c.Logging.FileName == "" {
		c.Logging.FileName = defaultLogFileName
	}
}
