package dialog

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/conneqt/leavebot-go/internal/errors"
	"github.com/conneqt/leavebot-go/internal/metrics"
	"github.com/conneqt/leavebot-go/internal/sentry"
	"github.com/conneqt/leavebot-go/internal/session"
)

var (
	loadErrors = apperrors.NewWrapper("dialog", "load_session")
	saveErrors = apperrors.NewWrapper("dialog", "save_session")
)

// ProfileFetcher resolves a person number to an employee profile.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, personNumber string) (*session.UserProfile, error)
}

// Engine drives one full user turn: load session, route, act, reply,
// persist. State is read once at turn start and written exactly once at
// turn end; the caller serializes turns per session.
type Engine struct {
	store     session.Store
	router    *Router
	extractor *Extractor
	prompter  *Prompter
	confirmer *Confirmer
	profiles  ProfileFetcher
	metrics   *metrics.Metrics
	now       func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithProfileFetcher enables employee profile bootstrap on the first
// turn of a session.
func WithProfileFetcher(f ProfileFetcher) Option {
	return func(e *Engine) { e.profiles = f }
}

// WithMetrics enables turn instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithClock injects the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine wires an Engine.
func NewEngine(store session.Store, router *Router, extractor *Extractor, prompter *Prompter, confirmer *Confirmer, opts ...Option) *Engine {
	e := &Engine{
		store:     store,
		router:    router,
		extractor: extractor,
		prompter:  prompter,
		confirmer: confirmer,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Turn processes one user message and returns the bot reply. The reply
// is valid even when an error is returned alongside it (e.g. the final
// session write failed); the caller decides whether to surface it.
func (e *Engine) Turn(ctx context.Context, sessionID, userID, message string) (string, error) {
	start := e.now()

	sess, err := e.store.Load(ctx, sessionID)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			return "", loadErrors.Wrap(err, "conversation state could not be read")
		}
		sess = session.New(sessionID, userID)
	}

	e.ensureProfile(ctx, sess)

	sess.History.Append(session.RoleUser, message, e.now())

	action := e.router.Route(ctx, sess, message)
	sess.History.Append(session.RoleSystem, "Routed to "+action.String(), e.now())

	reply, finalAction, reset := e.dispatch(ctx, sess, action, message)

	if !reset {
		sess.History.Append(session.RoleBot, reply, e.now())
		sess.LastPrompt = reply
		sess.PreviousAction = finalAction.String()
	}
	sess.UpdatedAt = e.now()

	saveErr := e.store.Save(ctx, sess)

	outcome := "ok"
	if saveErr != nil {
		outcome = "error"
	}
	e.metrics.RecordTurn(finalAction.String(), outcome, e.now().Sub(start))

	if saveErr != nil {
		sentry.CaptureExceptionWithContext(ctx, saveErr)
		return reply, saveErrors.Wrap(saveErr, "reply sent but conversation state may be stale")
	}
	return reply, nil
}

// dispatch executes the routed action. Returns the reply, the action to
// record as previous, and whether the session was reset.
func (e *Engine) dispatch(ctx context.Context, sess *session.Session, action Action, message string) (string, Action, bool) {
	switch action {
	case ActionCancel:
		reply := e.prompter.CancelAck(ctx)
		sess.Reset()
		return reply, ActionCancel, true

	case ActionInterruption:
		return e.prompter.Interruption(ctx, sess, message), ActionInterruption, false

	case ActionPolicy:
		return e.prompter.Policy(ctx, message), ActionPolicy, false

	case ActionProfileCheck:
		return e.prompter.ProfileAnswer(ctx, sess, message), ActionProfileCheck, false

	case ActionConfirmation:
		if sess.PreviousAction == ActionConfirmation.String() {
			reply, reset := e.confirmer.Resolve(ctx, sess, message)
			return reply, ActionConfirmation, reset
		}
		return e.confirmer.SummaryMessage(sess), ActionConfirmation, false

	case ActionExtraction:
		today := e.now()
		if e.extractor.Extract(ctx, sess, message, today) {
			// A leave type was just selected; one more pass lets its
			// newly-relevant fields surface from the same utterance.
			e.extractor.Extract(ctx, sess, message, today)
		}
		if isComplete(sess.State) {
			return e.confirmer.SummaryMessage(sess), ActionConfirmation, false
		}
		return e.prompter.NextPrompt(ctx, sess), ActionExtraction, false

	default: // ActionPrompt
		if isComplete(sess.State) {
			return e.confirmer.SummaryMessage(sess), ActionConfirmation, false
		}
		return e.prompter.NextPrompt(ctx, sess), ActionPrompt, false
	}
}

// ensureProfile fetches the employee profile on the first turn of a
// session. Lookup failure is not fatal: the turn proceeds and submission
// later reports its own error if the profile is still missing.
func (e *Engine) ensureProfile(ctx context.Context, sess *session.Session) {
	if sess.Profile != nil || e.profiles == nil {
		return
	}

	profile, err := e.profiles.FetchProfile(ctx, sess.UserID)
	if err != nil {
		slog.WarnContext(ctx, "employee profile lookup failed",
			"user_id", sess.UserID,
			"error", err)
		return
	}
	sess.Profile = profile
}
