package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/conneqt/leavebot-go/internal/errors"
	"github.com/conneqt/leavebot-go/internal/llm"
)

// calendarDays is how many upcoming days are rendered into the prompt.
// Two weeks covers "next week" and every weekday reference.
const calendarDays = 14

// Interpretation is the result of one date query. Transient: recomputed
// every turn and never persisted directly.
type Interpretation struct {
	OriginalStart string
	OriginalEnd   string

	// Start/End are the interpreted ISO dates, adjusted to working
	// days. Empty when the query held no usable date.
	Start string
	End   string

	// StartCandidates/EndCandidates carry unresolved ambiguities
	// (multiple plausible dates in one utterance).
	StartCandidates []string
	EndCandidates   []string

	Description  string
	RelativeDate string

	NeedsClarification   bool
	ClarificationMessage string

	// WorkingDays is set when both dates are concrete.
	WorkingDays int
}

// IsEmpty reports whether the interpretation carries no date at all.
func (i *Interpretation) IsEmpty() bool {
	return i.Start == "" && i.End == "" &&
		len(i.StartCandidates) == 0 && len(i.EndCandidates) == 0 &&
		!i.NeedsClarification
}

// Interpreter resolves natural-language date queries with one model call
// grounded on a rendered calendar. Pure with respect to the injected
// "today": the same query and date always yield the same prompt.
type Interpreter struct {
	chatter llm.Chatter
	cal     *Calendar
}

// NewInterpreter creates an Interpreter.
func NewInterpreter(chatter llm.Chatter, cal *Calendar) *Interpreter {
	return &Interpreter{chatter: chatter, cal: cal}
}

// flexDate decodes a JSON value that may be a string, an array of
// strings, or null.
type flexDate struct {
	One  string
	Many []string
}

func (d *flexDate) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		d.One = s
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err == nil {
		d.Many = many
		return nil
	}
	return fmt.Errorf("date value is neither string nor array: %s", b)
}

// rawInterpretation is the model's output contract.
type rawInterpretation struct {
	StartDate            flexDate `json:"startDate"`
	EndDate              flexDate `json:"endDate"`
	Description          string   `json:"description"`
	RelativeDate         string   `json:"relativeDate"`
	NeedsClarification   bool     `json:"needsClarification"`
	ClarificationMessage string   `json:"clarificationMessage"`
}

const interpreterPreamble = `You resolve date expressions in leave requests to concrete dates.
Today is %s (%s).

Use ONLY dates from this calendar:
%s
Respond with ONLY a JSON object, no prose, no markdown fences:
{"startDate": "YYYY-MM-DD" or ["YYYY-MM-DD", ...] or null,
 "endDate": "YYYY-MM-DD" or ["YYYY-MM-DD", ...] or null,
 "description": "short restatement of the dates",
 "relativeDate": "the phrase you resolved, e.g. 'next week'",
 "needsClarification": true or false,
 "clarificationMessage": "question to ask when the dates cannot be resolved"}

Rules:
- Use an array when the text names several conflicting candidates for one field.
- A single day of leave has equal startDate and endDate.
- Set needsClarification true (with a message) when the text has no resolvable date.`

// Interpret resolves a natural-language date query against today.
// Queries without date keywords return an empty interpretation without a
// model call. Model failures return ErrDateInterpretation; callers
// degrade to prompting rather than failing the turn.
func (in *Interpreter) Interpret(ctx context.Context, query string, today time.Time) (*Interpretation, error) {
	if !HasDateKeywords(query) {
		return &Interpretation{}, nil
	}

	preamble := fmt.Sprintf(interpreterPreamble,
		today.Format(ISODate), today.Weekday(), RenderCalendar(today, calendarDays))

	resp, err := in.chatter.Chat(ctx, llm.ChatRequest{
		Preamble:    preamble,
		Message:     query,
		MaxTokens:   300,
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrDateInterpretation, err)
	}

	var raw rawInterpretation
	if err := llm.DecodeJSON(resp.Text, &raw); err != nil {
		slog.WarnContext(ctx, "date interpretation returned unparsable output",
			"response_length", len(resp.Text),
			"error", err)
		return nil, fmt.Errorf("%w: %w", apperrors.ErrDateInterpretation, err)
	}

	out := &Interpretation{
		OriginalStart:        raw.StartDate.One,
		OriginalEnd:          raw.EndDate.One,
		Description:          raw.Description,
		RelativeDate:         raw.RelativeDate,
		NeedsClarification:   raw.NeedsClarification,
		ClarificationMessage: raw.ClarificationMessage,
	}

	// Deterministic post-processing: adjust to working days, keep
	// ambiguity arrays as-is for the prompter to resolve.
	if raw.StartDate.One != "" {
		if adjusted, err := in.cal.AdjustToWorkingDay(raw.StartDate.One); err == nil {
			out.Start = adjusted
		}
	}
	out.StartCandidates = raw.StartDate.Many
	if raw.EndDate.One != "" {
		if adjusted, err := in.cal.AdjustToWorkingDay(raw.EndDate.One); err == nil {
			out.End = adjusted
		}
	}
	out.EndCandidates = raw.EndDate.Many

	if out.End == "" && out.Start != "" && len(out.EndCandidates) == 0 {
		// A single-day request
		out.End = out.Start
	}

	if out.Start != "" && out.End != "" {
		if days, err := in.cal.WorkingDaysBetween(out.Start, out.End); err == nil {
			out.WorkingDays = days
		}
	}

	return out, nil
}
