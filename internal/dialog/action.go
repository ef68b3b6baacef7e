// Package dialog implements the turn-based conversation engine: intent
// routing, field extraction with conservative merging, prompting for
// missing fields, and confirmation-driven submission.
package dialog

import "strings"

// Action is a routing decision for one turn.
type Action string

const (
	// ActionExtraction pulls structured fields out of the utterance.
	ActionExtraction Action = "extraction"
	// ActionPrompt asks for the next missing or ambiguous field.
	ActionPrompt Action = "prompt"
	// ActionConfirmation summarizes and asks for, or resolves, approval.
	ActionConfirmation Action = "confirmation"
	// ActionCancel abandons the in-progress request.
	ActionCancel Action = "cancel"
	// ActionInterruption handles an off-topic digression inline.
	ActionInterruption Action = "interruption"
	// ActionProfileCheck answers questions about the employee profile
	// (name, leave balance) inline.
	ActionProfileCheck Action = "profilecheck"
	// ActionPolicy answers leave policy questions inline.
	ActionPolicy Action = "policy"
)

// actions is the closed label set the classifier may emit.
var actions = map[Action]bool{
	ActionExtraction:   true,
	ActionPrompt:       true,
	ActionConfirmation: true,
	ActionCancel:       true,
	ActionInterruption: true,
	ActionProfileCheck: true,
	ActionPolicy:       true,
}

// ParseAction normalizes a classifier label. Unrecognized labels map to
// ActionPrompt so a drifting model never crashes a turn.
func ParseAction(label string) (Action, bool) {
	a := Action(strings.ToLower(strings.TrimSpace(label)))
	if actions[a] {
		return a, true
	}
	return ActionPrompt, false
}

func (a Action) String() string {
	return string(a)
}
