package faq

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	apperrors "github.com/unsta/chatbot-go/internal/errors"
)

// Corpus holds the intent example phrases used for matching. Intents
// iterate in sorted name order so matching is stable.
type Corpus struct {
	intents map[string][]string
	names   []string
}

// LoadCorpus reads the intent corpus file. Every intent must carry at
// least one example phrase; a violation is a fatal data error.
func LoadCorpus(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewDataError(path, err)
	}

	var intents map[string][]string
	if err := json.Unmarshal(data, &intents); err != nil {
		return nil, apperrors.NewDataError(path, err)
	}

	for name, phrases := range intents {
		if len(phrases) == 0 {
			return nil, apperrors.NewDataError(path,
				fmt.Errorf("intent %q has no example phrases", name))
		}
		for i, phrase := range phrases {
			if phrase == "" {
				return nil, apperrors.NewDataError(path,
					fmt.Errorf("intent %q has an empty phrase at index %d", name, i))
			}
		}
	}

	names := make([]string, 0, len(intents))
	for name := range intents {
		names = append(names, name)
	}
	sort.Strings(names)

	return &Corpus{intents: intents, names: names}, nil
}

// Names returns the intent names in sorted order.
func (c *Corpus) Names() []string {
	return c.names
}

// Phrases returns the example phrases for an intent, or nil when the
// intent is unknown.
func (c *Corpus) Phrases(intent string) []string {
	return c.intents[intent]
}

// Len returns the number of intents.
func (c *Corpus) Len() int {
	return len(c.names)
}

// ResponseStore maps intent names to their response entries.
type ResponseStore struct {
	entries map[string]*ResponseEntry
}

// LoadResponses reads the FAQ response store file.
func LoadResponses(path string) (*ResponseStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewDataError(path, err)
	}

	var entries map[string]*ResponseEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, apperrors.NewDataError(path, err)
	}

	return &ResponseStore{entries: entries}, nil
}

// Entry returns the response entry for an intent, or nil when no entry
// is configured. A matched intent without an entry is served the
// fallback text, never an error.
func (s *ResponseStore) Entry(intent string) *ResponseEntry {
	return s.entries[intent]
}
