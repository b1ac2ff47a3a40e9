// Package faq loads the static data files backing the chatbot: the
// intent phrase corpus, the FAQ response store, and the conversational
// extras lists.
package faq

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
)

// EntryKind discriminates the shape of a response entry.
type EntryKind int

const (
	// KindStructured is an object with "short" and/or "long" texts.
	KindStructured EntryKind = iota
	// KindAlternatives is a list of interchangeable full texts.
	KindAlternatives
	// KindRaw is a bare string.
	KindRaw
)

// FallbackResponse is returned when a matched intent has no usable
// response content.
const FallbackResponse = "No hay información disponible."

// ResponseEntry is one intent's answer content. The JSON shape varies
// between an object with short/long variants, an array of alternative
// texts, and a plain string; the variant is fixed at load time.
type ResponseEntry struct {
	Kind         EntryKind
	Short        string
	Long         string
	Alternatives []string
	Raw          string
}

// UnmarshalJSON decodes any of the three supported shapes.
func (e *ResponseEntry) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return fmt.Errorf("empty response entry")
	}

	switch trimmed[0] {
	case '{':
		var obj struct {
			Short string `json:"short"`
			Long  string `json:"long"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return fmt.Errorf("structured entry: %w", err)
		}
		*e = ResponseEntry{Kind: KindStructured, Short: obj.Short, Long: obj.Long}
		return nil
	case '[':
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("alternatives entry: %w", err)
		}
		*e = ResponseEntry{Kind: KindAlternatives, Alternatives: list}
		return nil
	default:
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("raw entry: %w", err)
		}
		*e = ResponseEntry{Kind: KindRaw, Raw: raw}
		return nil
	}
}

// Resolve selects the response text: long wins over short, one
// alternative is picked at random, and a raw value is returned as-is.
// Entries with no usable text resolve to FallbackResponse.
func (e *ResponseEntry) Resolve(rng *rand.Rand) string {
	if e == nil {
		return FallbackResponse
	}

	switch e.Kind {
	case KindStructured:
		if e.Long != "" {
			return e.Long
		}
		if e.Short != "" {
			return e.Short
		}
	case KindAlternatives:
		if len(e.Alternatives) > 0 {
			return e.Alternatives[rng.Intn(len(e.Alternatives))]
		}
	case KindRaw:
		if e.Raw != "" {
			return e.Raw
		}
	}
	return FallbackResponse
}
