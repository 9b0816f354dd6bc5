package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	LogDir   string `toml:"log_dir"`
	CacheDir string `toml:"cache_dir"`
}

// Embedding contains connection settings for the embeddings endpoint.
type Embedding struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxRetries     int    `toml:"max_retries"`
	Tokenizer      string `toml:"tokenizer"`
}

// Chunking controls how long documents are split before embedding.
type Chunking struct {
	// MaxTokens is both the single-request threshold and the per-chunk budget.
	MaxTokens int `toml:"max_tokens"`
}

// Job names the document to embed and where the result goes. Empty or "-"
// means stdin/stdout.
type Job struct {
	Input  string `toml:"input"`
	Output string `toml:"output"`
}

// Cache toggles the on-disk embedding cache.
type Cache struct {
	Enabled bool `toml:"enabled"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
	FileName      string `toml:"file_name"`
}

// Config encapsulates all configuration values for nexus.
//
// Configuration sections by subsystem:
//   - Paths: log and cache directories
//   - Embedding: endpoint, credentials, model, retry budget, tokenizer
//   - Chunking: token budget per request
//   - Job: document source and result destination
//   - Cache: embedding cache toggle
//   - Logging: log format, level, retention, file name
type Config struct {
	Paths     Paths     `toml:"paths"`
	Embedding Embedding `toml:"embedding"`
	Chunking  Chunking  `toml:"chunking"`
	Job       Job       `toml:"job"`
	Cache     Cache     `toml:"cache"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. A missing file is not an error; defaults apply.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log and cache directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.CacheDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LogPath returns the log file path inside the log directory.
func (c *Config) LogPath() string {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return ""
	}
	return filepath.Join(c.Paths.LogDir, c.Logging.FileName)
}

// CachePath returns the embedding cache database path.
func (c *Config) CachePath() string {
	return filepath.Join(c.Paths.CacheDir, cacheFileName)
}

// ReadsStdin reports whether the job input is standard input.
func (j Job) ReadsStdin() bool {
	return isStdio(j.Input)
}

// WritesStdout reports whether the job output is standard output.
func (j Job) WritesStdout() bool {
	return isStdio(j.Output)
}

func isStdio(value string) bool {
	value = strings.TrimSpace(value)
	return value == "" || value == "-"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "nexus")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/nexus"
	}
	return filepath.Join(home, ".cache", "nexus")
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// EmbeddingSettings contains the trimmed connection settings for the embeddings client.
type EmbeddingSettings struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
	MaxRetries     int
}

// EmbeddingSettings returns the embeddings connection settings. An empty base
// URL resolves to the public endpoint.
func (c *Config) EmbeddingSettings() EmbeddingSettings {
	baseURL := strings.TrimSpace(c.Embedding.BaseURL)
	if baseURL == "" {
		baseURL = defaultEmbeddingBaseURL
	}
	return EmbeddingSettings{
		APIKey:         strings.TrimSpace(c.Embedding.APIKey),
		BaseURL:        baseURL,
		Model:          strings.TrimSpace(c.Embedding.Model),
		TimeoutSeconds: c.Embedding.TimeoutSeconds,
		MaxRetries:     c.Embedding.MaxRetries,
	}
}
