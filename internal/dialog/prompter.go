package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/conneqt/leavebot-go/internal/catalog"
	"github.com/conneqt/leavebot-go/internal/llm"
	"github.com/conneqt/leavebot-go/internal/session"
)

// Prompter produces every outbound message that is a question or an
// inline answer: the next-missing-field prompt, disambiguation, policy
// and profile answers, interruption recovery, and the cancel
// acknowledgement. Each message has a deterministic template; the
// responder model only rephrases it, and any model failure falls back to
// the template so the turn always yields a reply.
type Prompter struct {
	chatter llm.Chatter
}

// NewPrompter creates a Prompter on a response-generation chatter.
func NewPrompter(chatter llm.Chatter) *Prompter {
	return &Prompter{chatter: chatter}
}

// NextPrompt asks for the highest-priority gap in the request:
//
//  1. no leave type yet
//  2. an ambiguous field needing disambiguation
//  3. the next missing mandatory field, in catalog order
//
// The caller routes complete requests to confirmation instead.
func (p *Prompter) NextPrompt(ctx context.Context, sess *session.Session) string {
	lt, err := lookupLeaveType(sess.State)
	if err != nil {
		return p.askLeaveType(ctx)
	}

	if ambiguous := ambiguousFields(lt, sess.State); len(ambiguous) > 0 {
		field := ambiguous[0]
		candidates := sess.State.Candidates(field)
		fallback := fmt.Sprintf("You mentioned more than one possible %s: %s. Which one did you mean?",
			humanize(field), strings.Join(candidates, ", "))
		return p.render(ctx, responderPersona,
			fmt.Sprintf("The employee gave conflicting values for the %s: %s. Ask which one they meant, naming each candidate.",
				humanize(field), strings.Join(candidates, ", ")),
			fallback)
	}

	if missing := missingMandatory(lt, sess.State); len(missing) > 0 {
		field := missing[0]
		description := humanize(field)
		if param, ok := lt.ParamByName(field); ok && param.Description != "" {
			description = param.Description
		}
		fallback := fmt.Sprintf("Could you tell me the %s for your %s request?", humanize(field), strings.ToLower(lt.Name))
		return p.render(ctx, responderPersona,
			fmt.Sprintf("For a %s request, ask the employee for one thing only: the %s (%s).",
				strings.ToLower(lt.Name), humanize(field), description),
			fallback)
	}

	// Nothing to ask; nudge toward confirmation.
	return p.render(ctx, responderPersona,
		"The leave request looks complete. Tell the employee you have everything and they can confirm it.",
		"I have everything I need for your request. Shall I submit it?")
}

func (p *Prompter) askLeaveType(ctx context.Context) string {
	names := strings.Join(catalog.Names(), ", ")
	fallback := fmt.Sprintf("What type of leave would you like to request? I can help with: %s.", names)
	return p.render(ctx, responderPersona,
		"Ask the employee which type of leave they want to request. The available types are: "+names+".",
		fallback)
}

// Interruption acknowledges a digression and steers back to the request.
func (p *Prompter) Interruption(ctx context.Context, sess *session.Session, message string) string {
	return p.render(ctx, interruptionPreamble,
		fmt.Sprintf("The employee said: %q. Their leave request so far: %s.", message, stateJSON(sess.State)),
		"Happy to chat, but let's finish your leave request first. Where were we?")
}

// Policy answers a leave policy question grounded on the policy documents.
func (p *Prompter) Policy(ctx context.Context, message string) string {
	resp, err := p.chatter.Chat(ctx, llm.ChatRequest{
		Preamble:    policyPreamble,
		Message:     message,
		Documents:   policyDocuments,
		MaxTokens:   250,
		Temperature: 0.3,
	})
	if err != nil || strings.TrimSpace(resp.Text) == "" {
		if err != nil {
			slog.WarnContext(ctx, "policy answer generation failed", "error", err)
		}
		return "I'm not sure about that one. Our HR team can give you a definitive answer."
	}
	return strings.TrimSpace(resp.Text)
}

// ProfileAnswer answers a question about the employee's own record.
func (p *Prompter) ProfileAnswer(ctx context.Context, sess *session.Session, message string) string {
	if sess.Profile == nil {
		return "I couldn't find your employee record right now. Please try again in a moment."
	}

	facts := fmt.Sprintf("Name: %s. Person number: %s. Annual leave balance: %.1f days.",
		sess.Profile.FullName, sess.Profile.PersonNumber, sess.Profile.AnnualLeaveBalance)
	fallback := fmt.Sprintf("You have %.1f days of annual leave remaining.", sess.Profile.AnnualLeaveBalance)

	return p.render(ctx, profilePreamble,
		fmt.Sprintf("Profile facts: %s\nEmployee question: %s", facts, message),
		fallback)
}

// CancelAck acknowledges an abandoned request.
func (p *Prompter) CancelAck(ctx context.Context) string {
	return p.render(ctx, responderPersona,
		"The employee cancelled their leave request. Acknowledge briefly and offer to start a new one anytime.",
		"No problem, I've cancelled that request. Just let me know when you'd like to start a new one.")
}

// render asks the responder model to phrase an instruction in the
// assistant's voice, falling back to the deterministic template.
func (p *Prompter) render(ctx context.Context, preamble, instruction, fallback string) string {
	resp, err := p.chatter.Chat(ctx, llm.ChatRequest{
		Preamble:    preamble,
		Message:     instruction,
		MaxTokens:   150,
		Temperature: 0.3,
	})
	if err != nil || strings.TrimSpace(resp.Text) == "" {
		if err != nil {
			slog.WarnContext(ctx, "response generation failed, using template", "error", err)
		}
		return fallback
	}
	return strings.TrimSpace(resp.Text)
}

// humanize turns a camelCase field name into words: "startDayType"
// becomes "start day type".
func humanize(field string) string {
	var b strings.Builder
	for i, r := range field {
		if unicode.IsUpper(r) && i > 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
