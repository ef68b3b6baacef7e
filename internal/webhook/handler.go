// Package webhook exposes the chat endpoint: one user turn per request,
// serialized per session, rate limited, answered with the bot reply.
package webhook

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/conneqt/leavebot-go/internal/config"
	"github.com/conneqt/leavebot-go/internal/ctxutil"
	apperrors "github.com/conneqt/leavebot-go/internal/errors"
	"github.com/conneqt/leavebot-go/internal/logger"
	"github.com/conneqt/leavebot-go/internal/metrics"
	"github.com/conneqt/leavebot-go/internal/ratelimit"
)

// maxMessageLength bounds one utterance. Anything longer is not a chat
// message.
const maxMessageLength = 2000

// fallbackReply is sent when the engine fails outright. The user never
// sees raw errors.
const fallbackReply = "I'm sorry, something went wrong on my side. Please try that again."

// TurnRequest is one user turn.
type TurnRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	UserID    string `json:"userId" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

// TurnResponse is the bot's reply.
type TurnResponse struct {
	SessionID string `json:"sessionId"`
	Reply     string `json:"reply"`
}

// Engine processes one dialog turn.
type Engine interface {
	Turn(ctx context.Context, sessionID, userID, message string) (string, error)
}

// Handler is the Gin handler for POST /webhook.
type Handler struct {
	engine  Engine
	log     *logger.Logger
	metrics *metrics.Metrics

	global   *ratelimit.Limiter
	sessions *ratelimit.SessionLimiter
	locks    *sessionLocks

	timeout time.Duration
}

// NewHandler creates a Handler with defaults from the central timeout
// and rate limit constants; options override them.
func NewHandler(engine Engine, log *logger.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		engine:  engine,
		log:     log.WithModule("webhook"),
		locks:   newSessionLocks(),
		timeout: config.WebhookProcessing,
	}
	for _, opt := range opts {
		opt(h)
	}

	if h.global == nil {
		h.global = ratelimit.New(10, 10)
	}
	if h.sessions == nil {
		h.sessions = ratelimit.NewSessionLimiter(ratelimit.SessionLimiterConfig{
			Burst:         6,
			RefillRate:    0.2,
			CleanupPeriod: config.RateLimiterCleanupInterval,
		})
	}
	return h
}

// Handle processes one turn request. Turns for the same session are
// serialized: the engine reads state at turn start and writes it once at
// turn end, so overlapping turns would lose updates.
func (h *Handler) Handle(c *gin.Context) {
	var req TurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sessionId, userId and message are required"})
		return
	}
	if len(req.Message) > maxMessageLength {
		h.log.WithError(apperrors.NewValidationError("message", "exceeds maximum length")).
			WithSessionID(req.SessionID).Warn("Rejected webhook request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "message too long"})
		return
	}

	if !h.global.Allow() {
		h.log.Warn("Global rate limit exceeded")
		h.metrics.RecordRateLimitDrop("global")
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
		return
	}
	if !h.sessions.Allow(req.SessionID) {
		h.log.WithSessionID(req.SessionID).Warn("Session rate limit exceeded")
		h.metrics.RecordRateLimitDrop("session")
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests for this session"})
		return
	}

	unlock := h.locks.lock(req.SessionID)
	defer unlock()

	ctx := ctxutil.WithSessionID(c.Request.Context(), req.SessionID)
	ctx = ctxutil.WithUserID(ctx, req.UserID)
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	reply, err := h.engine.Turn(ctx, req.SessionID, req.UserID, req.Message)
	if err != nil {
		h.log.WithError(err).WithSessionID(req.SessionID).Error("Turn processing failed")
		if reply == "" {
			reply = fallbackReply
		}
	}

	c.JSON(http.StatusOK, TurnResponse{SessionID: req.SessionID, Reply: reply})
}

// Close stops the handler's background rate limiter sweep.
func (h *Handler) Close() {
	h.sessions.Stop()
}
