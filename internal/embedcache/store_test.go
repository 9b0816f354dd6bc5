package embedcache_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"nexus/internal/embedcache"
)

func openStore(t *testing.T) *embedcache.Store {
	t.Helper()
	store, err := embedcache.Open(filepath.Join(t.TempDir(), "cache", "embeddings.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	key := embedcache.Key("model-a", "hello world")
	if _, ok, err := store.Lookup(ctx, key); err != nil || ok {
		t.Fatalf("expected miss before store, ok=%v err=%v", ok, err)
	}

	entry := embedcache.Entry{Key: key, Model: "model-a", Tokens: 2, Vector: []float64{0.25, -1.5, 3}}
	if err := store.Store(ctx, entry); err != nil {
		t.Fatalf("Store returned error: %v", err)
	}

	got, ok, err := store.Lookup(ctx, key)
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if got.Model != "model-a" || got.Tokens != 2 || got.Dimensions != 3 {
		t.Fatalf("unexpected entry %+v", got)
	}
	if len(got.Vector) != 3 || got.Vector[1] != -1.5 {
		t.Fatalf("unexpected vector %v", got.Vector)
	}
	if got.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}
}

func TestStoreReplacesExistingKey(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	key := embedcache.Key("m", "text")

	if err := store.Store(ctx, embedcache.Entry{Key: key, Model: "m", Vector: []float64{1}}); err != nil {
		t.Fatalf("first Store: %v", err)
	}
	if err := store.Store(ctx, embedcache.Entry{Key: key, Model: "m", Vector: []float64{2, 3}}); err != nil {
		t.Fatalf("second Store: %v", err)
	}
	got, _, err := store.Lookup(ctx, key)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got.Dimensions != 2 || got.Vector[0] != 2 {
		t.Fatalf("expected replaced entry, got %+v", got)
	}
}

func TestStoreRejectsEmptyVector(t *testing.T) {
	store := openStore(t)
	if err := store.Store(context.Background(), embedcache.Entry{Key: "k"}); err == nil {
		t.Fatal("expected error for empty vector")
	}
}

func TestListAndClear(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, text := range []string{"one", "two", "three"} {
		entry := embedcache.Entry{
			Key:       embedcache.Key("m", text),
			Model:     "m",
			Vector:    []float64{float64(i)},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.Store(ctx, entry); err != nil {
			t.Fatalf("Store %s: %v", text, err)
		}
	}

	entries, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Key != embedcache.Key("m", "three") {
		t.Fatalf("expected newest first, got %+v", entries[0])
	}

	removed, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 removed, got %d", removed)
	}
	if entries, _ := store.List(ctx); len(entries) != 0 {
		t.Fatalf("expected empty cache, got %d", len(entries))
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "embeddings.db")
	ctx := context.Background()
	store, err := embedcache.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	key := embedcache.Key("m", "persist")
	if err := store.Store(ctx, embedcache.Entry{Key: key, Model: "m", Vector: []float64{9}}); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := embedcache.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if _, ok, err := reopened.Lookup(ctx, key); err != nil || !ok {
		t.Fatalf("expected entry after reopen, ok=%v err=%v", ok, err)
	}
}

func TestNilStoreIsDisabledCache(t *testing.T) {
	var store *embedcache.Store
	ctx := context.Background()
	if _, ok, err := store.Lookup(ctx, "k"); ok || err != nil {
		t.Fatalf("expected miss from nil store, ok=%v err=%v", ok, err)
	}
	if err := store.Store(ctx, embedcache.Entry{Key: "k", Vector: []float64{1}}); err != nil {
		t.Fatalf("expected nil store to drop writes, got %v", err)
	}
	if n, err := store.Clear(ctx); n != 0 || err != nil {
		t.Fatalf("unexpected Clear result %d %v", n, err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("unexpected Close error %v", err)
	}
}

func TestKeyDependsOnModelAndText(t *testing.T) {
	a := embedcache.Key("m1", "text")
	if a != embedcache.Key("m1", "text") {
		t.Fatal("expected deterministic key")
	}
	if a == embedcache.Key("m2", "text") || a == embedcache.Key("m1", "other") {
		t.Fatal("expected key to change with model and text")
	}
	if len(a) != 64 {
		t.Fatalf("expected hex sha256, got %q", a)
	}
}
