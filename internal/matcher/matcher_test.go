package matcher

import (
	"context"
	"math"
	"testing"

	"github.com/unsta/chatbot-go/internal/embedding"
)

func buildCorpus(t *testing.T, enc embedding.Encoder, phrases map[string][]string) map[string][][]float32 {
	t.Helper()
	corpus := make(map[string][][]float32)
	for intent, examples := range phrases {
		vectors, err := enc.EncodeBatch(context.Background(), examples)
		if err != nil {
			t.Fatalf("encode corpus for %q: %v", intent, err)
		}
		corpus[intent] = vectors
	}
	return corpus
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"mismatched length", []float32{1, 0}, []float32{1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CosineSimilarity(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatch_FindsClosestIntent(t *testing.T) {
	enc := embedding.NewDeterministicEncoder(256)
	corpus := buildCorpus(t, enc, map[string][]string{
		"horarios": {"cuales son los horarios de la biblioteca", "a que hora abre la biblioteca"},
		"becas":    {"como solicito una beca", "requisitos para becas"},
	})
	m := New(enc, corpus, nil)

	intent, score, err := m.Match(context.Background(), "a que hora abre la biblioteca")
	if err != nil {
		t.Fatalf("Match error: %v", err)
	}
	if intent != "horarios" {
		t.Errorf("intent = %q, want horarios (score %v)", intent, score)
	}
	if score < 0.9 {
		t.Errorf("near-exact phrase should score high, got %v", score)
	}
}

func TestMatch_Deterministic(t *testing.T) {
	enc := embedding.NewDeterministicEncoder(128)
	corpus := buildCorpus(t, enc, map[string][]string{
		"becas":    {"como pido una beca"},
		"horarios": {"horarios de cursada"},
	})
	m := New(enc, corpus, nil)

	firstIntent, firstScore, err := m.Match(context.Background(), "quiero una beca")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		intent, score, err := m.Match(context.Background(), "quiero una beca")
		if err != nil {
			t.Fatal(err)
		}
		if intent != firstIntent || score != firstScore {
			t.Fatalf("match not deterministic: (%q, %v) vs (%q, %v)",
				intent, score, firstIntent, firstScore)
		}
	}
}

func TestMatch_ScoreWithinBounds(t *testing.T) {
	enc := embedding.NewDeterministicEncoder(64)
	corpus := buildCorpus(t, enc, map[string][]string{
		"tramites": {"como hago un tramite"},
	})
	m := New(enc, corpus, nil)

	_, score, err := m.Match(context.Background(), "algo completamente distinto")
	if err != nil {
		t.Fatal(err)
	}
	if score < -1 || score > 1 {
		t.Errorf("score %v outside [-1, 1]", score)
	}
}

func TestMatch_EmptyCorpus(t *testing.T) {
	enc := embedding.NewDeterministicEncoder(64)
	m := New(enc, nil, nil)

	intent, score, err := m.Match(context.Background(), "hola")
	if err != nil {
		t.Fatal(err)
	}
	if intent != "" || score != 0 {
		t.Errorf("empty corpus should yield (\"\", 0), got (%q, %v)", intent, score)
	}
}

func TestMatch_TieBreaksOnSortedOrder(t *testing.T) {
	enc := embedding.NewDeterministicEncoder(128)
	// Both intents share the identical example phrase, so scores tie
	// exactly and the first name in sorted order must win.
	vectors, err := enc.EncodeBatch(context.Background(), []string{"misma frase"})
	if err != nil {
		t.Fatal(err)
	}
	corpus := map[string][][]float32{
		"zeta": vectors,
		"alfa": vectors,
	}
	m := New(enc, corpus, nil)

	intent, _, err := m.Match(context.Background(), "misma frase")
	if err != nil {
		t.Fatal(err)
	}
	if intent != "alfa" {
		t.Errorf("tie should go to the first sorted intent, got %q", intent)
	}
}

type recordingObserver struct {
	calls      int
	confidence float64
}

func (r *recordingObserver) RecordMatch(_, confidence float64) {
	r.calls++
	r.confidence = confidence
}

func TestMatch_ReportsToObserver(t *testing.T) {
	enc := embedding.NewDeterministicEncoder(64)
	corpus := buildCorpus(t, enc, map[string][]string{
		"saludo": {"hola"},
	})
	obs := &recordingObserver{}
	m := New(enc, corpus, obs)

	_, score, err := m.Match(context.Background(), "hola")
	if err != nil {
		t.Fatal(err)
	}
	if obs.calls != 1 {
		t.Errorf("observer calls = %d, want 1", obs.calls)
	}
	if obs.confidence != score {
		t.Errorf("observer confidence = %v, want %v", obs.confidence, score)
	}
}
