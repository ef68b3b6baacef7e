package dialog

import (
	"encoding/json"

	"github.com/conneqt/leavebot-go/internal/catalog"
	"github.com/conneqt/leavebot-go/internal/llm"
	"github.com/conneqt/leavebot-go/internal/session"
)

// missingMandatory returns the mandatory parameters of the leave type
// that have no concrete value yet, in catalog-declared order. Ambiguous
// array values do not count as concrete.
func missingMandatory(lt *catalog.LeaveType, st session.State) []string {
	var missing []string
	for _, name := range lt.MandatoryNames() {
		if !st.Has(name) || st.IsAmbiguous(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// ambiguousFields returns the leave type's parameters holding more than
// one candidate value, in catalog-declared order.
func ambiguousFields(lt *catalog.LeaveType, st session.State) []string {
	var ambiguous []string
	for _, p := range lt.Params() {
		if st.IsAmbiguous(p.Name) {
			ambiguous = append(ambiguous, p.Name)
		}
	}
	return ambiguous
}

// isComplete reports whether the request can move to confirmation: a
// known leave type, every mandatory parameter concrete, no unresolved
// ambiguity anywhere.
func isComplete(st session.State) bool {
	name := st.LeaveType()
	if name == "" {
		return false
	}
	lt, err := catalog.Lookup(name)
	if err != nil {
		return false
	}
	for _, p := range lt.Mandatory {
		if !st.Has(p.Name) || st.IsAmbiguous(p.Name) {
			return false
		}
	}
	return len(ambiguousFields(lt, st)) == 0
}

// chatHistory converts the trailing history window into model messages.
// System entries stay in the transcript but are never sent to a model.
func chatHistory(sess *session.Session) []llm.Message {
	window := sess.History.Window(session.HistoryWindow)
	msgs := make([]llm.Message, 0, len(window))
	for _, e := range window {
		switch e.Role {
		case session.RoleUser:
			msgs = append(msgs, llm.Message{Role: llm.RoleUser, Text: e.Text})
		case session.RoleBot:
			msgs = append(msgs, llm.Message{Role: llm.RoleBot, Text: e.Text})
		}
	}
	return msgs
}

// stateJSON renders the accumulated request fields for model context.
func stateJSON(st session.State) string {
	if len(st) == 0 {
		return "{}"
	}
	b, err := json.Marshal(st)
	if err != nil {
		return "{}"
	}
	return string(b)
}
