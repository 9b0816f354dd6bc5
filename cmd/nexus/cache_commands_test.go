package main

import (
	"context"
	"testing"

	"nexus/internal/embedcache"
	"nexus/internal/testsupport"
)

func TestCacheListAndClear(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	configPath := writeTestConfig(t, cfg)

	out, _, err := runCLI(t, []string{"cache", "list"}, configPath, "")
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}
	requireContains(t, out, "Embedding cache is empty")

	store := testsupport.MustOpenCache(t, cfg)
	entry := embedcache.Entry{
		Key:        embedcache.Key("test-embed", "hello world"),
		Model:      "test-embed",
		Tokens:     2,
		Dimensions: 3,
		Vector:     []float64{1, 2, 3},
	}
	if err := store.Store(context.Background(), entry); err != nil {
		t.Fatalf("store entry: %v", err)
	}

	out, _, err = runCLI(t, []string{"cache", "list"}, configPath, "")
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}
	requireContains(t, out, entry.Key[:12])
	requireContains(t, out, "test-embed")

	out, _, err = runCLI(t, []string{"cache", "clear"}, configPath, "")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "Removed 1 cached embedding(s)")
}

func TestCacheCommandsRequireEnabledCache(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCacheDisabled())
	configPath := writeTestConfig(t, cfg)

	if _, _, err := runCLI(t, []string{"cache", "list"}, configPath, ""); err == nil {
		t.Fatal("expected error when cache is disabled")
	}
}

func TestRootPopulatesCache(t *testing.T) {
	server := testsupport.NewEmbeddingServer(t, 2)
	cfg := testsupport.NewConfig(t, testsupport.WithEmbeddingServer(server))
	configPath := writeTestConfig(t, cfg)

	for i := 0; i < 2; i++ {
		if _, _, err := runCLI(t, nil, configPath, "cached text"); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
	if got := len(server.Inputs()); got != 1 {
		t.Fatalf("expected second run to hit the cache, got %d requests", got)
	}

	out, _, err := runCLI(t, []string{"cache", "list"}, configPath, "")
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}
	requireContains(t, out, "test-embed")
}
