package testsupport

import (
	"path/filepath"
	"testing"

	"nexus/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The embeddings endpoint points nowhere useful; pair it with
// WithEmbeddingServer for tests that execute the pipeline.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Embedding.APIKey = "test"
	cfgVal.Embedding.BaseURL = "http://127.0.0.1:0/v1"
	cfgVal.Embedding.Model = "test-embed"
	cfgVal.Embedding.Tokenizer = config.TokenizerApprox
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.Job.Input = "-"
	cfgVal.Job.Output = "-"

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithAPIKey sets the embeddings API key on the test config.
func WithAPIKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Embedding.APIKey = key
	}
}

// WithEmbeddingServer points the config at a fake endpoint.
func WithEmbeddingServer(server *EmbeddingServer) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Embedding.BaseURL = server.URL()
	}
}

// WithMaxTokens overrides the chunk budget.
func WithMaxTokens(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Chunking.MaxTokens = n
	}
}

// WithCacheDisabled turns the embedding cache off.
func WithCacheDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Enabled = false
	}
}

// WithInputText writes text to a file under the base directory and makes it
// the job input.
func WithInputText(text string) ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.baseDir, "input", "document.txt")
		WriteText(b.t, path, text)
		b.cfg.Job.Input = path
	}
}

// WithOutputFile makes a file under the base directory the job output.
func WithOutputFile(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Job.Output = filepath.Join(b.baseDir, "out", name)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
