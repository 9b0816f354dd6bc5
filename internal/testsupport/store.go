package testsupport

import (
	"testing"

	"nexus/internal/config"
	"nexus/internal/embedcache"
)

// MustOpenCache opens the embedding cache described by cfg and registers cleanup.
func MustOpenCache(t testing.TB, cfg *config.Config) *embedcache.Store {
	t.Helper()
	store, err := embedcache.Open(cfg.CachePath())
	if err != nil {
		t.Fatalf("open embedding cache: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
