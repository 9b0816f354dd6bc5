package config

const (
	defaultConfigPath          = "~/.config/nexus/config.toml"
	projectConfigName          = "nexus.toml"
	cacheFileName              = "embeddings.db"
	defaultLogDir              = "~/.local/share/nexus/logs"
	defaultLogFileName         = "nexus.log"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultLogRetentionDays    = 30
	defaultEmbeddingBaseURL    = "https://api.openai.com/v1"
	defaultEmbeddingModel      = "text-embedding-3-small"
	defaultEmbeddingTimeout    = 60
	defaultEmbeddingMaxRetries = 5
	defaultTokenizer           = TokenizerTiktoken
	defaultChunkMaxTokens      = 4000
	defaultCacheEnabled        = true
	envAPIKey                  = "OPENAI_API_KEY"
	envBaseURL                 = "OPENAI_BASE_URL"
	TokenizerTiktoken          = "tiktoken"
	TokenizerApprox            = "approx"
)

// Default returns a Config populated with repository defaults. The embedding
// base URL is left empty so normalization can prefer OPENAI_BASE_URL before
// falling back to the public endpoint.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			CacheDir: defaultCacheDir(),
		},
		Embedding: Embedding{
			Model:          defaultEmbeddingModel,
			TimeoutSeconds: defaultEmbeddingTimeout,
			MaxRetries:     defaultEmbeddingMaxRetries,
			Tokenizer:      defaultTokenizer,
		},
		Chunking: Chunking{
			MaxTokens: defaultChunkMaxTokens,
		},
		Cache: Cache{
			Enabled: defaultCacheEnabled,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
			FileName:      defaultLogFileName,
		},
	}
}
