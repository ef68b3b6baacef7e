package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/conneqt/leavebot-go/internal/calendar"
	"github.com/conneqt/leavebot-go/internal/catalog"
	apperrors "github.com/conneqt/leavebot-go/internal/errors"
	"github.com/conneqt/leavebot-go/internal/llm"
	"github.com/conneqt/leavebot-go/internal/metrics"
	"github.com/conneqt/leavebot-go/internal/session"
)

// Extractor pulls structured request fields out of an utterance with one
// model call and merges them into session state conservatively: a known
// value is never regressed to unknown by a turn that did not mention it.
type Extractor struct {
	chatter llm.Chatter
	interp  *calendar.Interpreter
	cal     *calendar.Calendar
	metrics *metrics.Metrics
}

// NewExtractor creates an Extractor. metrics may be nil.
func NewExtractor(chatter llm.Chatter, interp *calendar.Interpreter, cal *calendar.Calendar, m *metrics.Metrics) *Extractor {
	return &Extractor{chatter: chatter, interp: interp, cal: cal, metrics: m}
}

// Extract runs one extraction pass over the message, mutating the
// session. Returns true when catalog defaults were just populated for a
// newly selected leave type, meaning the caller should run one more pass
// so the new type's fields become extractable from the same utterance.
//
// Model failures and unparsable output degrade to an empty extraction.
func (e *Extractor) Extract(ctx context.Context, sess *session.Session, message string, today time.Time) bool {
	interp := e.interpretDates(ctx, message, today)
	extracted := e.callModel(ctx, sess, message)

	e.applyLeaveType(ctx, sess, extracted)
	e.merge(ctx, sess, extracted)
	e.applyDates(sess, interp)
	e.recomputeWorkingDays(sess)

	return e.populateDefaults(sess)
}

// interpretDates resolves date expressions in the message. Failures
// degrade to no dates resolved; the extractor proceeds without them.
func (e *Extractor) interpretDates(ctx context.Context, message string, today time.Time) *calendar.Interpretation {
	interp, err := e.interp.Interpret(ctx, message, today)
	if err != nil {
		slog.WarnContext(ctx, "date interpretation failed, proceeding without dates",
			"error", err)
		return &calendar.Interpretation{}
	}
	return interp
}

// callModel issues the extraction call and decodes its JSON reply.
// Returns an empty map on failure: proceeding with no extracted fields
// beats failing the turn.
func (e *Extractor) callModel(ctx context.Context, sess *session.Session, message string) map[string]any {
	resp, err := e.chatter.Chat(ctx, llm.ChatRequest{
		Preamble:    extractionPreamble(sess.State),
		History:     chatHistory(sess),
		Message:     fmt.Sprintf("Current request fields: %s\nEmployee message: %s", stateJSON(sess.State), message),
		MaxTokens:   300,
		Temperature: 0,
	})
	if err != nil {
		slog.WarnContext(ctx, "field extraction call failed, treating as empty",
			"error", err)
		return map[string]any{}
	}

	var extracted map[string]any
	if err := llm.DecodeJSON(resp.Text, &extracted); err != nil {
		slog.WarnContext(ctx, "field extraction returned unparsable output",
			"response_length", len(resp.Text),
			"error", fmt.Errorf("%w: %w", apperrors.ErrExtractionParse, err))
		e.metrics.RecordExtractionParseFailure()
		return map[string]any{}
	}
	return extracted
}

// applyLeaveType handles a newly stated or changed leave type. On a
// change, only fields common to the old and new catalog entries carry
// forward and defaults must be repopulated. Unknown leave types are
// dropped so the prompter re-asks instead of operating on an
// inconsistent schema.
func (e *Extractor) applyLeaveType(ctx context.Context, sess *session.Session, extracted map[string]any) {
	raw, ok := extracted[catalog.FieldLeaveType].(string)
	if !ok || raw == "" {
		return
	}
	delete(extracted, catalog.FieldLeaveType)

	newType, err := catalog.Lookup(raw)
	if err != nil {
		slog.WarnContext(ctx, "extracted leave type not in catalog, ignoring",
			"leave_type", raw)
		return
	}

	current := sess.State.LeaveType()
	if current == "" {
		sess.State.SetLeaveType(newType.Name)
		sess.ClearNull(catalog.FieldLeaveType)
		return
	}
	if strings.EqualFold(current, newType.Name) {
		return
	}

	oldType, err := catalog.Lookup(current)
	if err != nil {
		// State held a type the catalog no longer knows; start clean.
		sess.State = session.NewState()
		sess.State.SetLeaveType(newType.Name)
		return
	}

	remapped := session.NewState()
	remapped.SetLeaveType(newType.Name)
	for _, field := range catalog.CommonFields(oldType, newType) {
		if v, ok := sess.State.Get(field); ok {
			remapped.Set(field, v)
		}
	}
	sess.State = remapped

	slog.InfoContext(ctx, "leave type changed",
		"from", oldType.Name,
		"to", newType.Name)
}

// merge applies the remaining extracted fields. Non-null values
// overwrite; nulls only mark the field as explicitly unknown and never
// erase a known value. Keys outside the current leave type's schema are
// discarded.
func (e *Extractor) merge(ctx context.Context, sess *session.Session, extracted map[string]any) {
	for key, value := range extracted {
		if !fieldAllowed(sess.State, key) {
			slog.DebugContext(ctx, "dropping extracted field outside schema", "field", key)
			continue
		}
		if value == nil {
			sess.MarkNull(key)
			continue
		}
		sess.State.Set(key, normalizeValue(value))
		sess.ClearNull(key)
	}
}

// applyDates merges interpreter output. Interpreted dates win over
// anything the extraction model produced: dates are always weekday
// adjusted and never left to the extraction model's arithmetic.
// Ambiguous candidates are stored as arrays for the prompter to resolve.
func (e *Extractor) applyDates(sess *session.Session, interp *calendar.Interpretation) {
	if interp.IsEmpty() {
		return
	}

	e.applyDate(sess, catalog.FieldStartDate, interp.Start, interp.StartCandidates)
	e.applyDate(sess, catalog.FieldEndDate, interp.End, interp.EndCandidates)
}

func (e *Extractor) applyDate(sess *session.Session, field, date string, candidates []string) {
	switch {
	case len(candidates) > 1:
		sess.State.Set(field, candidates)
	case len(candidates) == 1:
		// A lone candidate is concrete, just not yet weekday adjusted
		if adjusted, err := e.cal.AdjustToWorkingDay(candidates[0]); err == nil {
			sess.State.Set(field, adjusted)
			sess.ClearNull(field)
		}
	case date != "":
		sess.State.Set(field, date)
		sess.ClearNull(field)
	}
}

// recomputeWorkingDays refreshes the derived count whenever both dates
// are concrete.
func (e *Extractor) recomputeWorkingDays(sess *session.Session) {
	start := sess.State.StringValue(catalog.FieldStartDate)
	end := sess.State.StringValue(catalog.FieldEndDate)
	if start == "" || end == "" {
		return
	}
	if days, err := e.cal.WorkingDaysBetween(start, end); err == nil {
		sess.State.SetWorkingDays(days)
	}
}

// populateDefaults applies catalog defaults once per selected leave
// type: optional parameters get their default unless already set,
// mandatory parameters only when the catalog declares one. Returns true
// when defaults were just applied.
func (e *Extractor) populateDefaults(sess *session.Session) bool {
	if sess.State.LeaveType() == "" || sess.State.ParamsPopulated() {
		return false
	}
	lt, err := lookupLeaveType(sess.State)
	if err != nil {
		return false
	}

	for _, p := range lt.Params() {
		if p.Default == nil || sess.State.Has(p.Name) {
			continue
		}
		sess.State.Set(p.Name, p.Default)
	}
	sess.State.SetParamsPopulated(true)
	return true
}

// fieldAllowed reports whether a key belongs to the current leave type's
// schema, or to the shared date fields when no type is known yet.
func fieldAllowed(st session.State, key string) bool {
	if lt, err := lookupLeaveType(st); err == nil {
		return lt.HasParam(key)
	}
	for _, p := range catalog.CommonParams() {
		if p.Name == key {
			return true
		}
	}
	return false
}

// normalizeValue smooths model output quirks: boolean-looking strings
// become booleans, single-element arrays collapse to their value.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes":
			return true
		case "false", "no":
			return false
		}
		return t
	case []any:
		if len(t) == 1 {
			return normalizeValue(t[0])
		}
		return t
	default:
		return v
	}
}

// extractionPreamble renders the field vocabulary for the current leave
// type. Keys outside the vocabulary are forbidden; values must be stated
// explicitly in the message.
func extractionPreamble(st session.State) string {
	var b strings.Builder
	b.WriteString(`You extract leave request fields from an employee's message.
Respond with ONLY a flat JSON object, no prose, no markdown fences.
Include a key ONLY when the message explicitly states its value. Use null
ONLY when the message explicitly says a value is unknown or undecided.
Never infer, assume, or invent values. Never add keys outside this list:

`)
	fmt.Fprintf(&b, "- leaveType: one of %s\n", strings.Join(catalog.Names(), ", "))

	params := catalog.CommonParams()
	if lt, err := lookupLeaveType(st); err == nil {
		params = lt.Params()
	}
	for _, p := range params {
		fmt.Fprintf(&b, "- %s: %s\n", p.Name, p.Description)
	}

	return b.String()
}
