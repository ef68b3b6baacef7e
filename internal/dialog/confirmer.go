package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/conneqt/leavebot-go/internal/catalog"
	apperrors "github.com/conneqt/leavebot-go/internal/errors"
	"github.com/conneqt/leavebot-go/internal/hrms"
	"github.com/conneqt/leavebot-go/internal/llm"
	"github.com/conneqt/leavebot-go/internal/metrics"
	"github.com/conneqt/leavebot-go/internal/sentry"
	"github.com/conneqt/leavebot-go/internal/session"
)

// Outcome is the three-way result of a confirmation reply.
type Outcome string

const (
	OutcomeConfirmed Outcome = "confirmed"
	OutcomeDenied    Outcome = "denied"
	OutcomeUnclear   Outcome = "unclear"
)

// Submitter posts a completed absence record to the HR system.
type Submitter interface {
	Submit(ctx context.Context, payload *hrms.Payload) error
}

// Archiver stores a completed conversation transcript. Implementations
// must be safe to skip: archival is best effort.
type Archiver interface {
	Archive(ctx context.Context, sess *session.Session) error
}

// Confirmer runs the confirmation step: it presents the summary, reads
// the employee's verdict with a dedicated classification call, and on
// approval submits the request and resets the session.
type Confirmer struct {
	classifier llm.Chatter
	submitter  Submitter
	archiver   Archiver
	metrics    *metrics.Metrics
}

// NewConfirmer creates a Confirmer. archiver and metrics may be nil.
func NewConfirmer(classifier llm.Chatter, submitter Submitter, archiver Archiver, m *metrics.Metrics) *Confirmer {
	return &Confirmer{classifier: classifier, submitter: submitter, archiver: archiver, metrics: m}
}

// SummaryMessage renders the request summary that asks for approval.
func (c *Confirmer) SummaryMessage(sess *session.Session) string {
	return buildSummary(sess)
}

// Resolve handles the employee's reply to a pending confirmation.
// Returns the outbound message and whether the session was reset.
func (c *Confirmer) Resolve(ctx context.Context, sess *session.Session, message string) (string, bool) {
	switch c.classify(ctx, sess, message) {
	case OutcomeConfirmed:
		return c.submit(ctx, sess)
	case OutcomeDenied:
		sess.Reset()
		return "No problem, I won't submit it. Let me know if you'd like to start a different request.", true
	default:
		return "Just to double-check: should I submit this leave request? Please reply yes or no.", false
	}
}

// classify reads the verdict with one model call. Classification is
// never substring matching: "yes, but make it Friday" must not submit.
// Failures degrade to unclear, which re-asks.
func (c *Confirmer) classify(ctx context.Context, sess *session.Session, message string) Outcome {
	resp, err := c.classifier.Chat(ctx, llm.ChatRequest{
		Preamble:    confirmationClassifyPreamble,
		History:     chatHistory(sess),
		Message:     message,
		MaxTokens:   10,
		Temperature: 0,
	})
	if err != nil {
		slog.WarnContext(ctx, "confirmation classification failed, treating as unclear",
			"error", err)
		return OutcomeUnclear
	}

	switch Outcome(strings.ToLower(strings.TrimSpace(resp.Text))) {
	case OutcomeConfirmed:
		return OutcomeConfirmed
	case OutcomeDenied:
		return OutcomeDenied
	default:
		return OutcomeUnclear
	}
}

// submit builds the payload and posts it. Failure keeps the session
// intact so the employee never has to re-enter the request.
func (c *Confirmer) submit(ctx context.Context, sess *session.Session) (string, bool) {
	lt, err := lookupLeaveType(sess.State)
	if err != nil {
		slog.ErrorContext(ctx, "confirmed request has no valid leave type", "error", err)
		return "Something went wrong preparing your request. Could we go over it once more? Which type of leave is it?", false
	}

	payload, err := hrms.BuildPayload(sess.Profile, lt, sess.State)
	if err != nil {
		slog.ErrorContext(ctx, "building submission payload failed", "error", err)
		c.metrics.RecordSubmission("build_failed")
		if apperrors.IsInvalidInput(err) {
			return "Some of your request details seem to be missing. Could we double-check the dates?", false
		}
		return "I'm sorry, I couldn't submit your request just now. Your details are saved, please try again in a moment.", false
	}

	if err := c.submitter.Submit(ctx, payload); err != nil {
		slog.ErrorContext(ctx, "leave submission failed",
			"absence_type", payload.AbsenceType,
			"error", err)
		sentry.CaptureExceptionWithContext(ctx, err)
		status := "failure"
		if !apperrors.IsSubmission(err) {
			// Not an HR-system verdict; the turn was cut short.
			status = "aborted"
		}
		c.metrics.RecordSubmission(status)
		if apperrors.IsRateLimitExceeded(err) {
			return "The HR system is busy right now. Your details are saved, please try again shortly.", false
		}
		return "I'm sorry, I couldn't submit your request just now. Your details are saved, please try again in a moment.", false
	}
	c.metrics.RecordSubmission("success")

	if c.archiver != nil {
		if err := c.archiver.Archive(ctx, sess); err != nil {
			slog.WarnContext(ctx, "transcript archival failed", "error", err)
		}
	}

	reply := fmt.Sprintf("Done! Your %s from %s to %s has been submitted for approval.",
		strings.ToLower(lt.Name),
		sess.State.StringValue(catalog.FieldStartDate),
		sess.State.StringValue(catalog.FieldEndDate))
	sess.Reset()
	return reply, true
}
