package faq

import (
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/unsta/chatbot-go/internal/errors"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestResponseEntry_UnmarshalShapes(t *testing.T) {
	var store map[string]*ResponseEntry
	raw := `{
		"inscripciones": {"short": "breve", "long": "texto largo"},
		"becas": ["opcion a", "opcion b"],
		"horarios": "de 8 a 20"
	}`
	require.NoError(t, json.Unmarshal([]byte(raw), &store))

	assert.Equal(t, KindStructured, store["inscripciones"].Kind)
	assert.Equal(t, KindAlternatives, store["becas"].Kind)
	assert.Len(t, store["becas"].Alternatives, 2)
	assert.Equal(t, KindRaw, store["horarios"].Kind)
	assert.Equal(t, "de 8 a 20", store["horarios"].Raw)
}

func TestResponseEntry_ResolvePrecedence(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	both := &ResponseEntry{Kind: KindStructured, Short: "breve", Long: "largo"}
	assert.Equal(t, "largo", both.Resolve(rng), "long should win over short")

	shortOnly := &ResponseEntry{Kind: KindStructured, Short: "breve"}
	assert.Equal(t, "breve", shortOnly.Resolve(rng))

	empty := &ResponseEntry{Kind: KindStructured}
	assert.Equal(t, FallbackResponse, empty.Resolve(rng))

	var nilEntry *ResponseEntry
	assert.Equal(t, FallbackResponse, nilEntry.Resolve(rng))
}

func TestResponseEntry_ResolveAlternativesSeeded(t *testing.T) {
	entry := &ResponseEntry{
		Kind:         KindAlternatives,
		Alternatives: []string{"a", "b", "c"},
	}

	first := entry.Resolve(rand.New(rand.NewSource(42)))
	second := entry.Resolve(rand.New(rand.NewSource(42)))
	assert.Equal(t, first, second, "same seed should pick the same alternative")
	assert.Contains(t, entry.Alternatives, first)
}

func TestLoadCorpus(t *testing.T) {
	path := writeTempFile(t, "intents.json", `{
		"saludo": ["hola", "buenos dias"],
		"becas": ["como pido una beca"]
	}`)

	corpus, err := LoadCorpus(path)
	require.NoError(t, err)

	assert.Equal(t, 2, corpus.Len())
	assert.Equal(t, []string{"becas", "saludo"}, corpus.Names(), "names should be sorted")
	assert.Len(t, corpus.Phrases("saludo"), 2)
	assert.Nil(t, corpus.Phrases("desconocido"))
}

func TestLoadCorpus_EmptyIntentIsFatal(t *testing.T) {
	path := writeTempFile(t, "intents.json", `{"saludo": []}`)

	_, err := LoadCorpus(path)
	require.Error(t, err)
	var dataErr *apperrors.DataError
	assert.ErrorAs(t, err, &dataErr)
}

func TestLoadCorpus_MissingFileIsFatal(t *testing.T) {
	_, err := LoadCorpus(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	var dataErr *apperrors.DataError
	assert.ErrorAs(t, err, &dataErr)
}

func TestLoadResponses_MalformedIsFatal(t *testing.T) {
	path := writeTempFile(t, "data.json", `{"becas": {`)

	_, err := LoadResponses(path)
	require.Error(t, err)
}

func TestExtras_RepliesForPluralizesIntent(t *testing.T) {
	path := writeTempFile(t, "extras.json", `{
		"saludos": ["¡Hola!", "¡Buenas!"],
		"agradecimientos": ["¡De nada!"],
		"entradas": ["¡Claro!"],
		"salidas": ["Espero haberte ayudado."]
	}`)

	extras, err := LoadExtras(path)
	require.NoError(t, err)

	assert.Len(t, extras.RepliesFor("saludo"), 2)
	assert.Len(t, extras.RepliesFor("agradecimiento"), 1)
	assert.Nil(t, extras.RepliesFor("inexistente"))
	assert.Len(t, extras.List(ExtrasIntros), 1)
}
