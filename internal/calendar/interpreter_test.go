package calendar

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/conneqt/leavebot-go/internal/errors"
	"github.com/conneqt/leavebot-go/internal/llm"
)

// scriptedChatter replays a fixed response and records the request.
type scriptedChatter struct {
	response string
	err      error
	lastReq  llm.ChatRequest
	calls    int
}

func (s *scriptedChatter) Chat(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	s.calls++
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &llm.ChatResponse{Text: s.response}, nil
}

func (s *scriptedChatter) Provider() llm.Provider { return llm.ProviderGemini }
func (s *scriptedChatter) Close() error           { return nil }

var monday = time.Date(2024, 10, 14, 0, 0, 0, 0, time.UTC)

func TestInterpretSkipsNonDateQueries(t *testing.T) {
	chatter := &scriptedChatter{}
	in := NewInterpreter(chatter, New(nil))

	got, err := in.Interpret(context.Background(), "I want annual leave", monday)
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
	assert.Equal(t, 0, chatter.calls, "no model call for non-date utterances")
}

func TestInterpretConcreteRange(t *testing.T) {
	chatter := &scriptedChatter{response: `{
		"startDate": "2024-10-21",
		"endDate": "2024-10-25",
		"description": "Monday 21 October through Friday 25 October",
		"relativeDate": "next week",
		"needsClarification": false
	}`}
	in := NewInterpreter(chatter, New(nil))

	got, err := in.Interpret(context.Background(), "leave for next week", monday)
	require.NoError(t, err)
	assert.Equal(t, "2024-10-21", got.Start)
	assert.Equal(t, "2024-10-25", got.End)
	assert.Equal(t, 5, got.WorkingDays)
	assert.False(t, got.NeedsClarification)

	// The prompt must ground the model on a rendered calendar
	assert.Contains(t, chatter.lastReq.Preamble, "Monday: 2024-10-14")
	assert.Contains(t, chatter.lastReq.Preamble, "Today is 2024-10-14")
}

func TestInterpretAdjustsWeekendToWorkingDay(t *testing.T) {
	chatter := &scriptedChatter{response: `{
		"startDate": "2024-10-19",
		"endDate": "2024-10-19",
		"needsClarification": false
	}`}
	in := NewInterpreter(chatter, New(nil))

	got, err := in.Interpret(context.Background(), "leave on saturday", monday)
	require.NoError(t, err)
	// Saturday the 19th advances to Monday the 21st
	assert.Equal(t, "2024-10-21", got.Start)
	assert.Equal(t, "2024-10-21", got.End)
	assert.Equal(t, 1, got.WorkingDays)
}

func TestInterpretSingleDayFillsEnd(t *testing.T) {
	chatter := &scriptedChatter{response: `{
		"startDate": "2024-10-15",
		"endDate": null,
		"needsClarification": false
	}`}
	in := NewInterpreter(chatter, New(nil))

	got, err := in.Interpret(context.Background(), "leave tomorrow", monday)
	require.NoError(t, err)
	assert.Equal(t, "2024-10-15", got.Start)
	assert.Equal(t, "2024-10-15", got.End)
	assert.Equal(t, 1, got.WorkingDays)
}

func TestInterpretAmbiguousCandidates(t *testing.T) {
	chatter := &scriptedChatter{response: `{
		"startDate": ["2024-10-15", "2024-10-16"],
		"endDate": null,
		"needsClarification": false
	}`}
	in := NewInterpreter(chatter, New(nil))

	got, err := in.Interpret(context.Background(), "tomorrow, the 16th", monday)
	require.NoError(t, err)
	assert.Empty(t, got.Start)
	assert.Equal(t, []string{"2024-10-15", "2024-10-16"}, got.StartCandidates)
	assert.Zero(t, got.WorkingDays)
}

func TestInterpretNeedsClarification(t *testing.T) {
	chatter := &scriptedChatter{response: `{
		"startDate": null,
		"endDate": null,
		"needsClarification": true,
		"clarificationMessage": "Which dates would you like to take off?"
	}`}
	in := NewInterpreter(chatter, New(nil))

	got, err := in.Interpret(context.Background(), "sometime next month maybe", monday)
	require.NoError(t, err)
	assert.True(t, got.NeedsClarification)
	assert.Equal(t, "Which dates would you like to take off?", got.ClarificationMessage)
}

func TestInterpretModelFailure(t *testing.T) {
	chatter := &scriptedChatter{err: errors.New("boom")}
	in := NewInterpreter(chatter, New(nil))

	_, err := in.Interpret(context.Background(), "leave next week", monday)
	assert.ErrorIs(t, err, apperrors.ErrDateInterpretation)
}

func TestInterpretUnparsableOutput(t *testing.T) {
	chatter := &scriptedChatter{response: "I think you mean next week!"}
	in := NewInterpreter(chatter, New(nil))

	_, err := in.Interpret(context.Background(), "leave next week", monday)
	assert.ErrorIs(t, err, apperrors.ErrDateInterpretation)
}

func TestInterpretFencedOutput(t *testing.T) {
	chatter := &scriptedChatter{response: "```json\n{\"startDate\": \"2024-10-15\", \"endDate\": \"2024-10-15\"}\n```"}
	in := NewInterpreter(chatter, New(nil))

	got, err := in.Interpret(context.Background(), "leave tomorrow", monday)
	require.NoError(t, err)
	assert.Equal(t, "2024-10-15", got.Start)
}

func TestInterpretPromptIsDeterministic(t *testing.T) {
	c1 := &scriptedChatter{response: `{"startDate":"2024-10-15","endDate":"2024-10-15"}`}
	c2 := &scriptedChatter{response: `{"startDate":"2024-10-15","endDate":"2024-10-15"}`}

	_, err := NewInterpreter(c1, New(nil)).Interpret(context.Background(), "tomorrow", monday)
	require.NoError(t, err)
	_, err = NewInterpreter(c2, New(nil)).Interpret(context.Background(), "tomorrow", monday)
	require.NoError(t, err)

	assert.Equal(t, c1.lastReq, c2.lastReq, "same query and today must build the same prompt")
	assert.True(t, strings.Contains(c1.lastReq.Preamble, "2024-10-27"), "calendar covers two weeks")
}
