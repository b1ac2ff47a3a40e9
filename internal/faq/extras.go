package faq

import (
	"encoding/json"
	"os"

	apperrors "github.com/unsta/chatbot-go/internal/errors"
)

// ExtrasBundle holds the conversational phrase lists: greetings and
// farewells to detect in user input, canned replies per social intent,
// and decorative intro/outro phrases for academic answers. All lists
// are immutable after load.
type ExtrasBundle struct {
	lists map[string][]string
}

// Well-known extras list names.
const (
	ExtrasGreetings = "saludos"
	ExtrasFarewells = "despedidas"
	ExtrasIntros    = "entradas"
	ExtrasOutros    = "salidas"
)

// LoadExtras reads the extras file.
func LoadExtras(path string) (*ExtrasBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewDataError(path, err)
	}

	var lists map[string][]string
	if err := json.Unmarshal(data, &lists); err != nil {
		return nil, apperrors.NewDataError(path, err)
	}

	return &ExtrasBundle{lists: lists}, nil
}

// List returns the named phrase list, or nil when absent.
func (b *ExtrasBundle) List(name string) []string {
	return b.lists[name]
}

// RepliesFor returns the canned replies for a social intent. The list
// key is the intent name pluralized ("saludo" reads "saludos").
func (b *ExtrasBundle) RepliesFor(intent string) []string {
	return b.lists[intent+"s"]
}
