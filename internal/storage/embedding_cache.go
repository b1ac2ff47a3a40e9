package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	apperrors "github.com/unsta/chatbot-go/internal/errors"
)

const (
	metaKeyModel     = "model"
	metaKeyDimension = "dimension"
)

// CachedPhrase is one example phrase with its embedding vector.
type CachedPhrase struct {
	Phrase string
	Vector []float32
}

// LoadEmbeddings returns the cached corpus embeddings, keyed by intent
// with phrases in position order. The cache is self-describing: when
// the stored model identifier differs from the requested one the cache
// is stale and ErrCacheInvalid is returned so the caller recomputes.
func (db *DB) LoadEmbeddings(ctx context.Context, model string) (map[string][]CachedPhrase, error) {
	storedModel, err := db.metaValue(ctx, metaKeyModel)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrCacheInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("read cache metadata: %w", err)
	}
	if storedModel != model {
		return nil, fmt.Errorf("%w: cache built with model %q, want %q",
			apperrors.ErrCacheInvalid, storedModel, model)
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT intent, phrase, vector FROM intent_embeddings ORDER BY intent, position`)
	if err != nil {
		return nil, fmt.Errorf("query embeddings: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]CachedPhrase)
	for rows.Next() {
		var intent, phrase string
		var blob []byte
		if err := rows.Scan(&intent, &phrase, &blob); err != nil {
			return nil, fmt.Errorf("scan embedding row: %w", err)
		}
		vec, err := decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("%w: intent %q: %v", apperrors.ErrCacheInvalid, intent, err)
		}
		out[intent] = append(out[intent], CachedPhrase{Phrase: phrase, Vector: vec})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate embeddings: %w", err)
	}

	if len(out) == 0 {
		return nil, apperrors.ErrCacheInvalid
	}
	return out, nil
}

// SaveEmbeddings replaces the cache contents atomically with the given
// corpus embeddings and model identifier.
func (db *DB) SaveEmbeddings(ctx context.Context, model string, embeddings map[string][]CachedPhrase) error {
	dimension := 0
	for _, phrases := range embeddings {
		if len(phrases) > 0 {
			dimension = len(phrases[0].Vector)
		}
		break
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM intent_embeddings`); err != nil {
		return fmt.Errorf("clear embeddings: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM cache_metadata`); err != nil {
		return fmt.Errorf("clear metadata: %w", err)
	}

	insertMeta, err := tx.PrepareContext(ctx,
		`INSERT INTO cache_metadata (key, value) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare metadata insert: %w", err)
	}
	defer insertMeta.Close()

	if _, err := insertMeta.ExecContext(ctx, metaKeyModel, model); err != nil {
		return fmt.Errorf("insert model metadata: %w", err)
	}
	if _, err := insertMeta.ExecContext(ctx, metaKeyDimension, fmt.Sprint(dimension)); err != nil {
		return fmt.Errorf("insert dimension metadata: %w", err)
	}

	insertVec, err := tx.PrepareContext(ctx,
		`INSERT INTO intent_embeddings (intent, position, phrase, vector) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare embedding insert: %w", err)
	}
	defer insertVec.Close()

	for intent, phrases := range embeddings {
		for position, cp := range phrases {
			if _, err := insertVec.ExecContext(ctx, intent, position, cp.Phrase, encodeVector(cp.Vector)); err != nil {
				return fmt.Errorf("insert embedding for %q: %w", intent, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// encodeVector packs float32 values into a little-endian blob.
func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("vector blob length %d not a multiple of 4", len(blob))
	}
	vec := make([]float32, len(blob)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vec, nil
}

func (db *DB) metaValue(ctx context.Context, key string) (string, error) {
	var value string
	err := db.conn.QueryRowContext(ctx,
		`SELECT value FROM cache_metadata WHERE key = ?`, key).Scan(&value)
	return value, err
}
