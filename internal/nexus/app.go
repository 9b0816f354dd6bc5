package nexus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"nexus/internal/chunker"
	"nexus/internal/config"
	"nexus/internal/embedcache"
	"nexus/internal/logging"
	"nexus/internal/services"
	"nexus/internal/services/embedding"
	"nexus/internal/textprep"
	"nexus/internal/tokens"
)

const (
	stageRead   = "read"
	stagePrep   = "prepare"
	stageEmbed  = "embed"
	stageWrite  = "write"
	stageVector = "average"
)

// Embedder turns texts into vectors, one per input and in input order.
type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float64, embedding.Usage, error)
	Model() string
}

// Config carries what the pipeline needs from the bootstrap and the config file.
type Config struct {
	Verbose  bool
	Settings *config.Config
}

// Deps are the collaborators the pipeline calls. Cache may be nil to disable
// caching. Stdin and Stdout default to the process streams.
type Deps struct {
	Embedder Embedder
	Counter  tokens.Counter
	Cache    *embedcache.Store
	Logger   *slog.Logger
	Stdin    io.Reader
	Stdout   io.Writer
}

// App is the embedding pipeline.
type App struct {
	cfg      Config
	embedder Embedder
	counter  tokens.Counter
	cache    *embedcache.Store
	logger   *slog.Logger
	stdin    io.Reader
	stdout   io.Writer
	now      func() time.Time
}

// New validates cfg and deps and returns a ready App.
func New(cfg Config, deps Deps) (*App, error) {
	if cfg.Settings == nil {
		return nil, services.Wrap(services.ErrConfiguration, "construct", "", "settings required", nil)
	}
	if deps.Embedder == nil {
		return nil, services.Wrap(services.ErrConfiguration, "construct", "", "embedder required", nil)
	}
	if deps.Counter == nil {
		deps.Counter = tokens.Approx{}
	}
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	return &App{
		cfg:      cfg,
		embedder: deps.Embedder,
		counter:  deps.Counter,
		cache:    deps.Cache,
		logger:   logging.NewComponentLogger(deps.Logger, "pipeline"),
		stdin:    deps.Stdin,
		stdout:   deps.Stdout,
		now:      time.Now,
	}, nil
}

// Open builds an App from cfg.Settings, supplying the production embeddings
// client, tokenizer, and cache for any collaborator deps leaves nil. The
// caller owns the returned App and must Close it.
func Open(cfg Config, deps Deps) (*App, error) {
	if cfg.Settings == nil {
		return nil, services.Wrap(services.ErrConfiguration, "construct", "", "settings required", nil)
	}
	logger := deps.Logger
	settings := cfg.Settings.EmbeddingSettings()

	if deps.Embedder == nil {
		if settings.APIKey == "" {
			return nil, services.Wrap(services.ErrConfiguration, "construct", "embedding", "api key missing (set embedding.api_key or OPENAI_API_KEY)", nil)
		}
		deps.Embedder = embedding.NewClient(embedding.Config{
			APIKey:         settings.APIKey,
			BaseURL:        settings.BaseURL,
			Model:          settings.Model,
			TimeoutSeconds: settings.TimeoutSeconds,
			MaxRetries:     settings.MaxRetries,
		})
	}

	if deps.Counter == nil {
		counter, err := tokens.New(cfg.Settings.Embedding.Tokenizer, settings.Model)
		if err != nil {
			logging.WarnWithContext(logger, "tokenizer unavailable; using approximate counts", "tokenizer_fallback",
				logging.String("tokenizer", cfg.Settings.Embedding.Tokenizer),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "set TIKTOKEN_CACHE_DIR or embedding.tokenizer = \"approx\""),
				logging.String(logging.FieldImpact, "chunk sizes are estimated"),
			)
			counter = tokens.Approx{}
		}
		deps.Counter = counter
	}

	if deps.Cache == nil && cfg.Settings.Cache.Enabled {
		cache, err := embedcache.Open(cfg.Settings.CachePath())
		if err != nil {
			logging.WarnWithContext(logger, "embedding cache unavailable; continuing without it", "cache_open_failed",
				logging.String("path", cfg.Settings.CachePath()),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check paths.cache_dir permissions or run nexus cache clear"),
				logging.String(logging.FieldImpact, "every chunk is sent to the embeddings endpoint"),
			)
		} else {
			deps.Cache = cache
		}
	}

	return New(cfg, deps)
}

// Close releases the cache database.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	return a.cache.Close()
}

// Execute runs the pipeline once.
func (a *App) Execute(ctx context.Context) error {
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, a.logger)
	started := a.now()
	logger.Info("embedding run started",
		logging.String("model", a.embedder.Model()),
		logging.String("source", sourceName(a.cfg.Settings.Job)),
		logging.Bool("verbose", a.cfg.Verbose),
	)

	raw, err := a.readInput(services.WithStage(ctx, stageRead))
	if err != nil {
		return err
	}

	ctx = services.WithStage(ctx, stagePrep)
	text := textprep.Normalize(raw)
	if text == "" {
		return services.Wrap(services.ErrValidation, stagePrep, "normalize", "document has no embeddable text", nil)
	}
	total := a.counter.Count(text)
	logger.Info("text prepared", logging.Int("tokens", total), logging.Int("characters", len(text)))

	maxTokens := a.cfg.Settings.Chunking.MaxTokens
	chunks := []string{text}
	if total > maxTokens {
		chunks = chunker.Split(text, maxTokens, a.counter)
		logger.Info("document split into chunks", logging.Int("chunks", len(chunks)), logging.Int("max_tokens", maxTokens))
	}
	if len(chunks) == 0 {
		return services.Wrap(services.ErrValidation, stagePrep, "split", "document produced no chunks", nil)
	}

	vectors := make([][]float64, 0, len(chunks))
	cached := 0
	for i, chunk := range chunks {
		chunkCtx := services.WithChunk(services.WithStage(ctx, stageEmbed), i+1)
		vector, hit, err := a.embedChunk(chunkCtx, chunk)
		if err != nil {
			logging.ErrorWithContext(logging.WithContext(chunkCtx, a.logger), "chunk embedding failed", "chunk_failed",
				logging.Int("chunk_count", len(chunks)),
				logging.Int("chunk_chars", len(chunk)),
				logging.Int("chunk_tokens", a.counter.Count(chunk)),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, services.ErrorHint(err)),
			)
			return err
		}
		if hit {
			cached++
		}
		vectors = append(vectors, vector)
	}

	mean, err := Average(vectors)
	if err != nil {
		return services.Wrap(services.ErrExternalService, stageVector, "", "combine chunk vectors", err)
	}

	result := Result{
		RunID:      runID,
		Model:      a.embedder.Model(),
		Dimensions: len(mean),
		Chunks:     len(chunks),
		Tokens:     total,
		Source:     sourceName(a.cfg.Settings.Job),
		Embedding:  mean,
	}
	if err := a.writeResult(services.WithStage(ctx, stageWrite), result); err != nil {
		return err
	}

	logger.Info("embedding run completed",
		logging.Int("chunks", len(chunks)),
		logging.Int("cached_chunks", cached),
		logging.Int("dimensions", len(mean)),
		logging.Duration("elapsed", a.now().Sub(started)),
	)
	return nil
}

func (a *App) embedChunk(ctx context.Context, chunk string) ([]float64, bool, error) {
	logger := logging.WithContext(ctx, a.logger)
	model := a.embedder.Model()
	key := embedcache.Key(model, chunk)

	entry, ok, err := a.cache.Lookup(ctx, key)
	if err != nil {
		logging.WarnWithContext(logger, "cache lookup failed; requesting embedding", "cache_lookup_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "chunk is embedded again"),
		)
	}
	if ok {
		logger.Debug("cache hit", logging.String("key", key[:12]))
		return entry.Vector, true, nil
	}

	chunkTokens := a.counter.Count(chunk)
	logger.Debug("requesting embedding", logging.Int("chunk_tokens", chunkTokens))
	vectors, usage, err := a.embedder.Embed(ctx, []string{chunk})
	if err != nil {
		return nil, false, classifyEmbedError(err)
	}
	if len(vectors) != 1 {
		return nil, false, services.Wrap(services.ErrExternalService, stageEmbed, "request", fmt.Sprintf("expected one vector, got %d", len(vectors)), nil)
	}
	if len(vectors[0]) == 0 {
		return nil, false, services.Wrap(services.ErrExternalService, stageEmbed, "request", "endpoint returned an empty vector", nil)
	}
	if usage.TotalTokens > 0 {
		chunkTokens = usage.TotalTokens
	}

	if err := a.cache.Store(ctx, embedcache.Entry{
		Key:       key,
		Model:     model,
		Tokens:    chunkTokens,
		Vector:    vectors[0],
		CreatedAt: a.now(),
	}); err != nil {
		logging.WarnWithContext(logger, "cache store failed", "cache_store_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "chunk is not cached for future runs"),
		)
	}
	return vectors[0], false, nil
}

func classifyEmbedError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	marker := services.ErrExternalService
	switch status := embedding.StatusCode(err); {
	case errors.Is(err, context.DeadlineExceeded), embedding.IsTimeout(err):
		marker = services.ErrTimeout
	case status == http.StatusTooManyRequests, status >= http.StatusInternalServerError:
		marker = services.ErrTransient
	}
	return services.Wrap(marker, stageEmbed, "request", "", err)
}
