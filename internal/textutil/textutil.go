// Package textutil provides Spanish-aware text normalization and
// keyword extraction used by the matcher and the conversation context.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases the text, strips diacritics and punctuation,
// and collapses whitespace. The result is stable: normalizing an
// already normalized string returns it unchanged.
func Normalize(text string) string {
	lowered := strings.ToLower(text)

	stripped, _, err := transform.String(stripAccents, lowered)
	if err != nil {
		stripped = lowered
	}

	var b strings.Builder
	b.Grow(len(stripped))
	lastSpace := true
	for _, r := range stripped {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		default:
			// punctuation and symbols become word boundaries
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// spanishStopwords covers the function words that dominate Spanish
// questions and carry no topical signal.
var spanishStopwords = map[string]struct{}{
	"a": {}, "al": {}, "algo": {}, "como": {}, "con": {}, "cual": {},
	"cuales": {}, "cuando": {}, "cuanto": {}, "de": {}, "del": {},
	"donde": {}, "el": {}, "ella": {}, "ellas": {}, "ellos": {},
	"en": {}, "entre": {}, "era": {}, "es": {}, "esa": {}, "ese": {},
	"eso": {}, "esta": {}, "estan": {}, "este": {}, "esto": {},
	"estoy": {}, "fue": {}, "ha": {}, "hay": {}, "la": {}, "las": {},
	"le": {}, "les": {}, "lo": {}, "los": {}, "mas": {}, "me": {},
	"mi": {}, "mis": {}, "muy": {}, "no": {}, "nos": {}, "o": {},
	"para": {}, "pero": {}, "por": {}, "porque": {}, "puedo": {},
	"que": {}, "quien": {}, "se": {}, "ser": {}, "si": {}, "sin": {},
	"sobre": {}, "son": {}, "soy": {}, "su": {}, "sus": {}, "te": {},
	"tengo": {}, "tiene": {}, "tienen": {}, "tu": {}, "un": {},
	"una": {}, "unas": {}, "uno": {}, "unos": {}, "y": {}, "ya": {},
	"yo": {},
}

// Keywords extracts up to k topical words from the text: the input is
// normalized, split on whitespace, stopwords are dropped, and the first
// k remaining tokens are returned in their original order.
func Keywords(text string, k int) []string {
	if k <= 0 {
		return nil
	}

	var out []string
	for _, word := range strings.Fields(Normalize(text)) {
		if _, stop := spanishStopwords[word]; stop {
			continue
		}
		out = append(out, word)
		if len(out) == k {
			break
		}
	}
	return out
}
