// Package matcher scores user queries against the embedded intent
// corpus using cosine similarity.
package matcher

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/unsta/chatbot-go/internal/embedding"
)

// Observer receives match telemetry. A nil Observer records nothing.
type Observer interface {
	RecordMatch(seconds, confidence float64)
}

// intentVectors holds one intent's embedded example phrases.
type intentVectors struct {
	name    string
	vectors [][]float32
}

// Matcher finds the closest intent for a query. The corpus is immutable
// after construction, so Match is safe for concurrent use.
type Matcher struct {
	encoder  embedding.Encoder
	intents  []intentVectors
	observer Observer
}

// New builds a matcher from embedded corpus vectors. Intents are kept
// in sorted name order so tie-breaking is stable across runs.
func New(encoder embedding.Encoder, corpus map[string][][]float32, observer Observer) *Matcher {
	names := make([]string, 0, len(corpus))
	for name := range corpus {
		names = append(names, name)
	}
	sort.Strings(names)

	intents := make([]intentVectors, 0, len(names))
	for _, name := range names {
		intents = append(intents, intentVectors{name: name, vectors: corpus[name]})
	}

	return &Matcher{encoder: encoder, intents: intents, observer: observer}
}

// Match encodes the query and returns the intent whose best example
// phrase is most similar, with that similarity as the confidence.
// An empty corpus yields ("", 0). A strictly greater score is required
// to displace the current best, so the first intent in sorted order
// wins ties.
func (m *Matcher) Match(ctx context.Context, query string) (string, float64, error) {
	start := time.Now()

	if len(m.intents) == 0 {
		return "", 0, nil
	}

	queryVec, err := m.encoder.Encode(ctx, query)
	if err != nil {
		return "", 0, fmt.Errorf("encode query: %w", err)
	}

	bestIntent := ""
	bestScore := 0.0

	for _, intent := range m.intents {
		score := maxSimilarity(queryVec, intent.vectors)
		if score > bestScore {
			bestScore = score
			bestIntent = intent.name
		}
	}

	if m.observer != nil {
		m.observer.RecordMatch(time.Since(start).Seconds(), bestScore)
	}
	return bestIntent, bestScore, nil
}

// maxSimilarity returns the highest cosine similarity between the query
// vector and any of the example vectors.
func maxSimilarity(query []float32, examples [][]float32) float64 {
	best := math.Inf(-1)
	for _, example := range examples {
		if sim := CosineSimilarity(query, example); sim > best {
			best = sim
		}
	}
	if math.IsInf(best, -1) {
		return 0
	}
	return best
}

// CosineSimilarity computes the cosine of the angle between two
// vectors. Mismatched lengths or zero vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
