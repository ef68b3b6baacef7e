// Package session holds the per-conversation data model and its stores:
// the leave-request state bag, conversation history, and the employee
// profile, persisted as one session record per conversation.
package session

import (
	"time"
)

// State is the leave-request field bag. Keys are camelCase parameter
// names declared by the leave-type catalog, plus leaveType, workingDays
// and paramsPopulated. Values survive a JSON round-trip, so accessors
// tolerate the decoded forms ([]any, float64).
type State map[string]any

// Well-known state keys not declared as catalog parameters.
const (
	keyLeaveType       = "leaveType"
	keyWorkingDays     = "workingDays"
	keyParamsPopulated = "paramsPopulated"
)

// NewState returns an empty state.
func NewState() State {
	return State{}
}

// Get returns the raw value for key.
func (s State) Get(key string) (any, bool) {
	v, ok := s[key]
	return v, ok
}

// Set stores a value. Storing nil is a no-op; null extraction values
// must never overwrite known state.
func (s State) Set(key string, v any) {
	if v == nil {
		return
	}
	s[key] = v
}

// Delete removes a key.
func (s State) Delete(key string) {
	delete(s, key)
}

// Has reports whether key holds a non-nil value.
func (s State) Has(key string) bool {
	v, ok := s[key]
	return ok && v != nil
}

// Keys returns the present keys in no particular order.
func (s State) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	return keys
}

// LeaveType returns the selected leave type, or "" when unset.
func (s State) LeaveType() string {
	v, _ := s[keyLeaveType].(string)
	return v
}

// SetLeaveType stores the canonical leave-type name.
func (s State) SetLeaveType(name string) {
	s[keyLeaveType] = name
}

// StringValue returns the value as a single string. Returns "" when the
// key is absent, non-string, or holds an ambiguity array.
func (s State) StringValue(key string) string {
	v, _ := s[key].(string)
	return v
}

// BoolValue returns the value as a bool with a fallback default.
func (s State) BoolValue(key string, def bool) bool {
	if v, ok := s[key].(bool); ok {
		return v
	}
	return def
}

// Candidates returns the ambiguity candidates for a key: the slice of
// string values when the field holds an unresolved array, or nil when
// the field is concrete or absent. Handles both []string (in-memory)
// and []any (post-JSON) forms.
func (s State) Candidates(key string) []string {
	switch v := s[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if str, ok := e.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}

// IsAmbiguous reports whether the key holds more than one candidate value.
func (s State) IsAmbiguous(key string) bool {
	return len(s.Candidates(key)) > 1
}

// WorkingDays returns the derived working-day count, 0 when unset.
func (s State) WorkingDays() int {
	switch v := s[keyWorkingDays].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

// SetWorkingDays stores the derived working-day count.
func (s State) SetWorkingDays(n int) {
	s[keyWorkingDays] = n
}

// ParamsPopulated reports whether catalog defaults were applied for the
// current leave type.
func (s State) ParamsPopulated() bool {
	v, _ := s[keyParamsPopulated].(bool)
	return v
}

// SetParamsPopulated marks or clears the defaults-applied flag.
func (s State) SetParamsPopulated(v bool) {
	s[keyParamsPopulated] = v
}

// Clone returns a shallow copy. Ambiguity slices are copied so callers
// can mutate the clone independently.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		switch vv := v.(type) {
		case []string:
			out[k] = append([]string(nil), vv...)
		case []any:
			out[k] = append([]any(nil), vv...)
		default:
			out[k] = v
		}
	}
	return out
}

// Role identifies the author of a history entry.
type Role string

const (
	// RoleUser marks an employee message.
	RoleUser Role = "user"
	// RoleBot marks an assistant message.
	RoleBot Role = "bot"
	// RoleSystem marks an internal note (e.g. routing decisions).
	// System entries are kept for transcripts but never sent to a model.
	RoleSystem Role = "system"
)

// Entry is one conversation history message.
type Entry struct {
	Role Role      `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// HistoryWindow is how many trailing history entries are fed to the
// language model. The full history is kept for transcript archival.
const HistoryWindow = 15

// History is the ordered conversation transcript, oldest first.
type History []Entry

// Append adds a message.
func (h *History) Append(role Role, text string, at time.Time) {
	*h = append(*h, Entry{Role: role, Text: text, At: at})
}

// Window returns the last n entries (all of them when fewer exist).
func (h History) Window(n int) History {
	if len(h) <= n {
		return h
	}
	return h[len(h)-n:]
}

// UserProfile is the employee record fetched from the HR system on the
// first turn of a session. Read-only for the dialog.
type UserProfile struct {
	PersonNumber       string  `json:"personNumber"`
	PersonID           string  `json:"personId"`
	FullName           string  `json:"fullName"`
	LegalEntityID      string  `json:"legalEntityId"`
	AnnualLeaveBalance float64 `json:"annualLeaveBalance"`
}

// Session is one conversation with the bot.
type Session struct {
	ID             string          `json:"id"`
	UserID         string          `json:"userId"`
	State          State           `json:"state"`
	NullFields     map[string]bool `json:"nullFields,omitempty"`
	History        History         `json:"history,omitempty"`
	PreviousAction string          `json:"previousAction,omitempty"`
	LastPrompt     string          `json:"lastPrompt,omitempty"`
	Profile        *UserProfile    `json:"profile,omitempty"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// New creates an empty session.
func New(id, userID string) *Session {
	return &Session{
		ID:         id,
		UserID:     userID,
		State:      NewState(),
		NullFields: make(map[string]bool),
	}
}

// MarkNull records that the extractor explicitly returned null for a
// field this conversation. Null markers never shadow a known value.
func (s *Session) MarkNull(field string) {
	if s.State.Has(field) {
		return
	}
	if s.NullFields == nil {
		s.NullFields = make(map[string]bool)
	}
	s.NullFields[field] = true
}

// ClearNull removes a null marker once the field gains a value.
func (s *Session) ClearNull(field string) {
	delete(s.NullFields, field)
}

// Reset clears the leave request after submission, denial, or cancel.
// The profile survives; the conversation starts over.
func (s *Session) Reset() {
	s.State = NewState()
	s.NullFields = make(map[string]bool)
	s.History = nil
	s.PreviousAction = ""
	s.LastPrompt = ""
}
