package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/conneqt/leavebot-go/internal/catalog"
	apperrors "github.com/conneqt/leavebot-go/internal/errors"
	"github.com/conneqt/leavebot-go/internal/llm"
	"github.com/conneqt/leavebot-go/internal/session"
)

// Router classifies each turn into an Action via one model call, then
// applies deterministic overrides on top of the classifier's label.
type Router struct {
	chatter llm.Chatter
}

// NewRouter creates a Router on a classification chatter.
func NewRouter(chatter llm.Chatter) *Router {
	return &Router{chatter: chatter}
}

// Route decides the action for this turn. Classifier failures and
// unrecognized labels degrade to ActionPrompt; they never fail the turn.
func (r *Router) Route(ctx context.Context, sess *session.Session, message string) Action {
	classified := r.classify(ctx, sess, message)
	return applyOverrides(sess, classified)
}

func (r *Router) classify(ctx context.Context, sess *session.Session, message string) Action {
	resp, err := r.chatter.Chat(ctx, llm.ChatRequest{
		Preamble:    routerPreamble,
		History:     chatHistory(sess),
		Message:     classificationContext(sess, message),
		MaxTokens:   10,
		Temperature: 0,
	})
	if err != nil {
		slog.WarnContext(ctx, "intent classification failed, falling back to prompt",
			"error", fmt.Errorf("%w: %w", apperrors.ErrClassification, err))
		return ActionPrompt
	}

	action, ok := ParseAction(resp.Text)
	if !ok {
		slog.WarnContext(ctx, "intent classification returned unrecognized label",
			"label", strings.TrimSpace(resp.Text))
	}
	return action
}

// classificationContext renders the state the classifier needs: the
// message itself, what the assistant last asked, and where the request
// stands.
func classificationContext(sess *session.Session, message string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Employee message: %s\n", message)
	if sess.LastPrompt != "" {
		fmt.Fprintf(&b, "Last assistant message: %s\n", sess.LastPrompt)
	}
	fmt.Fprintf(&b, "Current request fields: %s\n", stateJSON(sess.State))
	if sess.PreviousAction != "" {
		fmt.Fprintf(&b, "Previous action: %s\n", sess.PreviousAction)
	}
	if sess.Profile != nil && sess.Profile.FullName != "" {
		fmt.Fprintf(&b, "Employee: %s\n", sess.Profile.FullName)
	}

	return b.String()
}

// applyOverrides adjusts the classified action with deterministic rules,
// in order:
//
//  1. A complete request forces confirmation, unless the employee is
//     cancelling.
//  2. Two consecutive extraction turns force a prompt so the extractor
//     and router cannot oscillate without ever asking the user anything.
func applyOverrides(sess *session.Session, classified Action) Action {
	action := classified

	if isComplete(sess.State) && action != ActionCancel {
		action = ActionConfirmation
	}

	if action == ActionExtraction && sess.PreviousAction == ActionExtraction.String() {
		action = ActionPrompt
	}

	return action
}

// lookupLeaveType resolves the session's leave type against the catalog.
func lookupLeaveType(st session.State) (*catalog.LeaveType, error) {
	return catalog.Lookup(st.LeaveType())
}
