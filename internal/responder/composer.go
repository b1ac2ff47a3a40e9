package responder

import (
	"context"
	"math/rand"
	"strings"
	"sync"

	"github.com/unsta/chatbot-go/internal/faq"
	"github.com/unsta/chatbot-go/internal/textutil"
)

// Canned reply texts.
const (
	EmptyQueryReply    = "Por favor, escribe una pregunta."
	RephraseReply      = "No entendí la pregunta, ¿podés reformularla?"
	DefaultSocialReply = "¡Claro!"
	MetaFallbackReply  = "Soy el asistente virtual de la universidad."
)

// socialIntents are answered with canned replies from the extras lists.
var socialIntents = map[string]struct{}{
	"saludo":         {},
	"despedida":      {},
	"agradecimiento": {},
}

// metaIntents are questions about the assistant itself.
var metaIntents = map[string]struct{}{
	"creacion":       {},
	"funcionamiento": {},
	"capacidades":    {},
}

// Response is the chat reply payload.
type Response struct {
	GreetingText *string  `json:"greeting_text"`
	ResponseText string   `json:"response_text"`
	FarewellText *string  `json:"farewell_text"`
	Confidence   *float64 `json:"confidence,omitempty"`
	Intent       string   `json:"intent,omitempty"`
}

// Outcome labels the branch a request took, for metrics.
type Outcome string

const (
	OutcomeEmpty         Outcome = "empty"
	OutcomeSocial        Outcome = "social"
	OutcomeMeta          Outcome = "meta"
	OutcomeAcademic      Outcome = "academic"
	OutcomeLowConfidence Outcome = "low_confidence"
)

// IntentMatcher scores a query against the intent corpus.
type IntentMatcher interface {
	Match(ctx context.Context, query string) (string, float64, error)
}

// ContextStore carries per-user context keywords across turns.
type ContextStore interface {
	Get(userID string) []string
	Set(userID string, keywords []string)
	Clear(userID string)
}

// Config holds the composer's thresholds.
type Config struct {
	SocialThreshold   float64
	MetaThreshold     float64
	AcademicThreshold float64
	ContextKeywords   int
}

// Composer builds the final reply for a chat turn.
type Composer struct {
	matcher   IntentMatcher
	responses *faq.ResponseStore
	extras    *faq.ExtrasBundle
	extractor *Extractor
	contexts  ContextStore
	config    Config

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New creates a composer. The randomness source is injectable so tests
// can seed it for deterministic replies.
func New(
	matcher IntentMatcher,
	responses *faq.ResponseStore,
	extras *faq.ExtrasBundle,
	contexts ContextStore,
	cfg Config,
	rng *rand.Rand,
) *Composer {
	return &Composer{
		matcher:   matcher,
		responses: responses,
		extras:    extras,
		extractor: NewExtractor(extras),
		contexts:  contexts,
		config:    cfg,
		rng:       rng,
	}
}

// Compose runs the decision chain for one chat turn.
//
// Branches, in order: empty input, confident social intent, confident
// meta intent, context-augmented academic rematch with a low-confidence
// rephrase exit, and finally the FAQ answer wrapped in intro and outro
// phrases. Only the social and meta branches clear the user's context;
// only a served FAQ answer overwrites it.
func (c *Composer) Compose(ctx context.Context, userID, query string) (*Response, Outcome, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return &Response{ResponseText: EmptyQueryReply}, OutcomeEmpty, nil
	}

	greeting, farewell := c.extract(query)
	resp := &Response{
		GreetingText: optional(greeting),
		FarewellText: optional(farewell),
	}

	intent, score, err := c.matcher.Match(ctx, query)
	if err != nil {
		return nil, "", err
	}

	if _, social := socialIntents[intent]; social && score > c.config.SocialThreshold {
		resp.ResponseText = c.socialReply(intent)
		resp.Confidence = &score
		resp.Intent = intent
		c.contexts.Clear(userID)
		return resp, OutcomeSocial, nil
	}

	if _, meta := metaIntents[intent]; meta && score > c.config.MetaThreshold {
		resp.ResponseText = c.metaReply(intent)
		resp.Confidence = &score
		resp.Intent = intent
		c.contexts.Clear(userID)
		return resp, OutcomeMeta, nil
	}

	// Academic path: prior topic keywords bias the rematch.
	if keywords := c.contexts.Get(userID); len(keywords) > 0 {
		augmented := strings.Join(keywords, " ") + " " + textutil.Normalize(query)
		intent, score, err = c.matcher.Match(ctx, augmented)
		if err != nil {
			return nil, "", err
		}
	}

	if score < c.config.AcademicThreshold {
		// Context stays untouched so an unrecognized turn does not
		// contaminate the next match.
		resp.ResponseText = RephraseReply
		resp.Confidence = &score
		return resp, OutcomeLowConfidence, nil
	}

	answer := c.resolve(intent)
	resp.ResponseText = c.wrap(answer)
	resp.Confidence = &score
	resp.Intent = intent

	if answer != faq.FallbackResponse {
		c.contexts.Set(userID, textutil.Keywords(answer, c.config.ContextKeywords))
	}
	return resp, OutcomeAcademic, nil
}

func (c *Composer) extract(query string) (string, string) {
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	return c.extractor.Extract(query, c.rng)
}

func (c *Composer) socialReply(intent string) string {
	replies := c.extras.RepliesFor(intent)
	if len(replies) == 0 {
		return DefaultSocialReply
	}
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	return replies[c.rng.Intn(len(replies))]
}

func (c *Composer) metaReply(intent string) string {
	entry := c.responses.Entry(intent)
	if entry == nil {
		return MetaFallbackReply
	}
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	return entry.Resolve(c.rng)
}

func (c *Composer) resolve(intent string) string {
	entry := c.responses.Entry(intent)
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	return entry.Resolve(c.rng)
}

// wrap surrounds an academic answer with a random intro and outro.
func (c *Composer) wrap(answer string) string {
	c.rngMu.Lock()
	intro := pickOrEmpty(c.extras.List(faq.ExtrasIntros), c.rng)
	outro := pickOrEmpty(c.extras.List(faq.ExtrasOutros), c.rng)
	c.rngMu.Unlock()

	return strings.TrimSpace(intro + " " + answer + " " + outro)
}

func pickOrEmpty(phrases []string, rng *rand.Rand) string {
	if len(phrases) == 0 {
		return ""
	}
	return phrases[rng.Intn(len(phrases))]
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
