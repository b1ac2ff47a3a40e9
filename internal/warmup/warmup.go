// Package warmup prepares the corpus embeddings before the server
// starts answering: it loads the persisted cache when it matches the
// configured encoder and recomputes it otherwise.
package warmup

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/unsta/chatbot-go/internal/embedding"
	apperrors "github.com/unsta/chatbot-go/internal/errors"
	"github.com/unsta/chatbot-go/internal/faq"
	"github.com/unsta/chatbot-go/internal/logger"
	"github.com/unsta/chatbot-go/internal/storage"
)

// CacheObserver records cache load outcomes. Nil records nothing.
type CacheObserver interface {
	RecordCacheHit(scope string)
	RecordCacheMiss(scope string)
}

// EnsureCorpusEmbeddings returns one vector per example phrase, keyed
// by intent and in phrase order. The persisted cache is used when its
// model identifier and phrase set match the current corpus; otherwise
// every phrase is re-encoded and the cache rewritten.
func EnsureCorpusEmbeddings(
	ctx context.Context,
	log *logger.Logger,
	db *storage.DB,
	encoder embedding.Encoder,
	corpus *faq.Corpus,
	observer CacheObserver,
) (map[string][][]float32, error) {
	if corpus.Len() == 0 {
		return nil, apperrors.ErrCorpusEmpty
	}

	if cached, err := loadFromCache(ctx, db, encoder.Model(), corpus); err == nil {
		if observer != nil {
			observer.RecordCacheHit("corpus")
		}
		log.WithField("intents", len(cached)).Info("corpus embeddings loaded from cache")
		return cached, nil
	} else if !errors.Is(err, apperrors.ErrCacheInvalid) {
		log.WithError(err).Warn("embedding cache unreadable, recomputing")
	}
	if observer != nil {
		observer.RecordCacheMiss("corpus")
	}

	log.WithField("model", encoder.Model()).Info("computing corpus embeddings")

	embedded := make(map[string][]storage.CachedPhrase, corpus.Len())
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, intent := range corpus.Names() {
		g.Go(func() error {
			phrases := corpus.Phrases(intent)
			vectors, err := encoder.EncodeBatch(gctx, phrases)
			if err != nil {
				return fmt.Errorf("embed intent %q: %w", intent, err)
			}

			cached := make([]storage.CachedPhrase, len(phrases))
			for i := range phrases {
				cached[i] = storage.CachedPhrase{Phrase: phrases[i], Vector: vectors[i]}
			}

			mu.Lock()
			embedded[intent] = cached
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := db.SaveEmbeddings(ctx, encoder.Model(), embedded); err != nil {
		// A failed persist costs a recompute on the next start, not
		// the current one.
		log.WithError(err).Warn("failed to persist embedding cache")
	}

	return toVectors(embedded), nil
}

// loadFromCache reads the cache and verifies it still covers the
// current corpus phrases exactly.
func loadFromCache(ctx context.Context, db *storage.DB, model string, corpus *faq.Corpus) (map[string][][]float32, error) {
	cached, err := db.LoadEmbeddings(ctx, model)
	if err != nil {
		return nil, err
	}

	if len(cached) != corpus.Len() {
		return nil, fmt.Errorf("%w: cache has %d intents, corpus has %d",
			apperrors.ErrCacheInvalid, len(cached), corpus.Len())
	}
	for _, intent := range corpus.Names() {
		phrases := corpus.Phrases(intent)
		entries, ok := cached[intent]
		if !ok || len(entries) != len(phrases) {
			return nil, fmt.Errorf("%w: intent %q phrase set changed", apperrors.ErrCacheInvalid, intent)
		}
		for i, phrase := range phrases {
			if entries[i].Phrase != phrase {
				return nil, fmt.Errorf("%w: intent %q phrase %d changed", apperrors.ErrCacheInvalid, intent, i)
			}
		}
	}

	return toVectors(cached), nil
}

func toVectors(cached map[string][]storage.CachedPhrase) map[string][][]float32 {
	out := make(map[string][][]float32, len(cached))
	for intent, entries := range cached {
		vectors := make([][]float32, len(entries))
		for i, e := range entries {
			vectors[i] = e.Vector
		}
		out[intent] = vectors
	}
	return out
}
