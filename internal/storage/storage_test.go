package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	apperrors "github.com/unsta/chatbot-go/internal/errors"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestDB_Ready(t *testing.T) {
	db := newTestDB(t)
	if err := db.Ready(context.Background()); err != nil {
		t.Errorf("Ready error: %v", err)
	}
}

func TestEmbeddingCache_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	in := map[string][]CachedPhrase{
		"saludo": {
			{Phrase: "hola", Vector: []float32{0.1, 0.2, 0.3}},
			{Phrase: "buenos dias", Vector: []float32{0.4, 0.5, 0.6}},
		},
		"becas": {
			{Phrase: "como pido una beca", Vector: []float32{0.7, 0.8, 0.9}},
		},
	}

	if err := db.SaveEmbeddings(ctx, "deterministic/fnv-3", in); err != nil {
		t.Fatalf("SaveEmbeddings error: %v", err)
	}

	out, err := db.LoadEmbeddings(ctx, "deterministic/fnv-3")
	if err != nil {
		t.Fatalf("LoadEmbeddings error: %v", err)
	}

	if len(out) != 2 {
		t.Fatalf("got %d intents, want 2", len(out))
	}
	if len(out["saludo"]) != 2 {
		t.Fatalf("saludo has %d phrases, want 2", len(out["saludo"]))
	}
	if out["saludo"][0].Phrase != "hola" {
		t.Errorf("phrase order not preserved: %q", out["saludo"][0].Phrase)
	}
	if got := out["saludo"][1].Vector[2]; got != float32(0.6) {
		t.Errorf("vector value = %v, want 0.6", got)
	}
}

func TestEmbeddingCache_ModelMismatchInvalidates(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	in := map[string][]CachedPhrase{
		"saludo": {{Phrase: "hola", Vector: []float32{1, 0}}},
	}
	if err := db.SaveEmbeddings(ctx, "gemini/gemini-embedding-001", in); err != nil {
		t.Fatalf("SaveEmbeddings error: %v", err)
	}

	_, err := db.LoadEmbeddings(ctx, "openai/text-embedding-3-small")
	if !errors.Is(err, apperrors.ErrCacheInvalid) {
		t.Errorf("expected ErrCacheInvalid on model mismatch, got %v", err)
	}
}

func TestEmbeddingCache_EmptyCacheIsInvalid(t *testing.T) {
	db := newTestDB(t)

	_, err := db.LoadEmbeddings(context.Background(), "any/model")
	if !errors.Is(err, apperrors.ErrCacheInvalid) {
		t.Errorf("expected ErrCacheInvalid on empty cache, got %v", err)
	}
}

func TestEmbeddingCache_SaveReplacesPrevious(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first := map[string][]CachedPhrase{
		"viejo": {{Phrase: "antigua frase", Vector: []float32{1}}},
	}
	if err := db.SaveEmbeddings(ctx, "m", first); err != nil {
		t.Fatal(err)
	}

	second := map[string][]CachedPhrase{
		"nuevo": {{Phrase: "frase nueva", Vector: []float32{2}}},
	}
	if err := db.SaveEmbeddings(ctx, "m", second); err != nil {
		t.Fatal(err)
	}

	out, err := db.LoadEmbeddings(ctx, "m")
	if err != nil {
		t.Fatal(err)
	}
	if _, stale := out["viejo"]; stale {
		t.Error("previous cache contents should be replaced")
	}
	if _, ok := out["nuevo"]; !ok {
		t.Error("new contents missing")
	}
}

func TestVectorCodec(t *testing.T) {
	in := []float32{0, -1.5, 3.25, 1e-9}
	out, err := decodeVector(encodeVector(in))
	if err != nil {
		t.Fatal(err)
	}
	for i := range in {
		if in[i] != out[i] {
			t.Errorf("value %d: %v != %v", i, in[i], out[i])
		}
	}

	if _, err := decodeVector([]byte{1, 2, 3}); err == nil {
		t.Error("odd-length blob should be rejected")
	}
}
