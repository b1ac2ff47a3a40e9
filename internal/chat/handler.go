// Package chat exposes the conversational HTTP endpoint.
package chat

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/unsta/chatbot-go/internal/ctxutil"
	apperrors "github.com/unsta/chatbot-go/internal/errors"
	"github.com/unsta/chatbot-go/internal/logger"
	"github.com/unsta/chatbot-go/internal/metrics"
	"github.com/unsta/chatbot-go/internal/ratelimit"
	"github.com/unsta/chatbot-go/internal/responder"
	"github.com/unsta/chatbot-go/internal/sentry"
)

// AnonymousUserID is used when the request does not identify the user.
const AnonymousUserID = "anon"

// Request is the chat endpoint's request body.
type Request struct {
	Query  string `json:"query"`
	UserID string `json:"user_id"`
}

// Handler serves POST /chat.
type Handler struct {
	composer *responder.Composer
	limiter  *ratelimit.KeyedLimiter
	metrics  *metrics.Metrics
	log      *logger.Logger
}

// NewHandler creates a chat handler.
func NewHandler(
	composer *responder.Composer,
	limiter *ratelimit.KeyedLimiter,
	m *metrics.Metrics,
	log *logger.Logger,
) *Handler {
	return &Handler{
		composer: composer,
		limiter:  limiter,
		metrics:  m,
		log:      log.WithModule("chat"),
	}
}

// Handle processes one chat turn.
func (h *Handler) Handle(c *gin.Context) {
	start := time.Now()

	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.WithError(fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)).
			DebugContext(c.Request.Context(), "rejected malformed chat request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = AnonymousUserID
	}

	ctx := ctxutil.WithUserID(c.Request.Context(), userID)

	if h.limiter != nil && !h.limiter.Allow(userID) {
		h.log.WithError(apperrors.ErrRateLimitExceeded).WarnContext(ctx, "chat request rate limited")
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "demasiadas consultas, intentá de nuevo en unos segundos"})
		return
	}

	resp, outcome, err := h.composer.Compose(ctx, userID, req.Query)
	if err != nil {
		h.log.WithError(err).ErrorContext(ctx, "chat composition failed")
		sentry.CaptureException(err)
		outcomeLabel := string(outcome)
		if outcomeLabel == "" {
			outcomeLabel = "unknown"
		}
		h.metrics.RecordChatRequest(outcomeLabel, "error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo procesar la consulta"})
		return
	}

	h.metrics.RecordChatRequest(string(outcome), "success")
	h.metrics.RecordChatDuration(string(outcome), time.Since(start).Seconds())

	logFields := map[string]any{
		"outcome":     string(outcome),
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if resp.Intent != "" {
		logFields["intent"] = resp.Intent
	}
	if resp.Confidence != nil {
		logFields["confidence"] = *resp.Confidence
	}
	h.log.WithFields(logFields).InfoContext(ctx, "chat request served")

	c.JSON(http.StatusOK, resp)
}
