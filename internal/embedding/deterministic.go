package embedding

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
)

// DeterministicEncoder produces stable hash-derived vectors without any
// network dependency. Texts that share words produce similar vectors,
// which is enough for development and tests.
type DeterministicEncoder struct {
	dimensions int
}

// NewDeterministicEncoder creates an offline encoder with the given
// vector dimensionality.
func NewDeterministicEncoder(dimensions int) *DeterministicEncoder {
	if dimensions <= 0 {
		dimensions = 128
	}
	return &DeterministicEncoder{dimensions: dimensions}
}

// Model implements Encoder.
func (e *DeterministicEncoder) Model() string {
	return fmt.Sprintf("deterministic/fnv-%d", e.dimensions)
}

// Encode hashes each word into vector positions and normalizes the
// result to unit length.
func (e *DeterministicEncoder) Encode(_ context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty or whitespace-only text cannot be embedded")
	}

	vec := make([]float32, e.dimensions)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New64a()
		h.Write([]byte(word))
		sum := h.Sum64()

		// Spread each word across a few positions so overlap between
		// texts shows up as cosine similarity.
		for i := 0; i < 4; i++ {
			pos := int((sum >> (i * 16)) % uint64(e.dimensions))
			sign := float32(1)
			if (sum>>(i*16+15))&1 == 1 {
				sign = -1
			}
			vec[pos] += sign
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		vec[0] = 1
		return vec, nil
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec, nil
}

// EncodeBatch encodes each text in input order.
func (e *DeterministicEncoder) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Encode(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("encode text %d: %w", i, err)
		}
		vectors[i] = vec
	}
	return vectors, nil
}
