// Package responder composes chat replies: it detects greetings and
// farewells, branches on the matched intent category and confidence,
// and assembles the final response payload.
package responder

import (
	"math/rand"
	"strings"

	"github.com/unsta/chatbot-go/internal/faq"
	"github.com/unsta/chatbot-go/internal/textutil"
)

// Extractor detects greeting and farewell phrases inside user input.
type Extractor struct {
	greetings []string
	farewells []string
}

// NewExtractor builds an extractor from the extras phrase lists.
func NewExtractor(extras *faq.ExtrasBundle) *Extractor {
	return &Extractor{
		greetings: extras.List(faq.ExtrasGreetings),
		farewells: extras.List(faq.ExtrasFarewells),
	}
}

// Extract returns a detected greeting and farewell, either of which may
// be empty. A list phrase matches when its normalized form appears as a
// substring of the normalized input; among several matches one is
// picked at random. Substring matching can fire inside unrelated words
// for very short phrases; that looseness is intentional.
func (e *Extractor) Extract(text string, rng *rand.Rand) (greeting, farewell string) {
	normalized := textutil.Normalize(text)
	if normalized == "" {
		return "", ""
	}

	greeting = pickMatching(normalized, e.greetings, rng)
	farewell = pickMatching(normalized, e.farewells, rng)
	return greeting, farewell
}

func pickMatching(normalized string, phrases []string, rng *rand.Rand) string {
	var matches []string
	for _, phrase := range phrases {
		p := textutil.Normalize(phrase)
		if p != "" && strings.Contains(normalized, p) {
			matches = append(matches, phrase)
		}
	}
	if len(matches) == 0 {
		return ""
	}
	return matches[rng.Intn(len(matches))]
}
