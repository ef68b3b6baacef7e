package dialog

import (
	"fmt"
	"strings"

	"github.com/conneqt/leavebot-go/internal/catalog"
	"github.com/conneqt/leavebot-go/internal/session"
)

// buildSummary renders the complete request for confirmation. Kept
// deterministic: the values the employee approves must be exactly the
// values that get submitted, so no model call rephrases them.
func buildSummary(sess *session.Session) string {
	lt, err := lookupLeaveType(sess.State)
	if err != nil {
		return "I have your request details ready. Shall I submit it?"
	}

	var b strings.Builder
	b.WriteString("Here's your leave request:\n")
	fmt.Fprintf(&b, "• Leave type: %s\n", lt.Name)
	fmt.Fprintf(&b, "• From: %s (%s)\n",
		sess.State.StringValue(catalog.FieldStartDate),
		dayLabel(sess.State, catalog.FieldStartDayType))
	fmt.Fprintf(&b, "• To: %s (%s)\n",
		sess.State.StringValue(catalog.FieldEndDate),
		dayLabel(sess.State, catalog.FieldEndDayType))
	if days := sess.State.WorkingDays(); days > 0 {
		fmt.Fprintf(&b, "• Working days: %d\n", days)
	}

	for _, p := range lt.Params() {
		switch p.Name {
		case catalog.FieldStartDate, catalog.FieldEndDate,
			catalog.FieldStartDayType, catalog.FieldEndDayType:
			continue
		}
		if v, ok := sess.State.Get(p.Name); ok {
			fmt.Fprintf(&b, "• %s: %s\n", capitalize(humanize(p.Name)), formatValue(v))
		}
	}

	if sess.Profile != nil && lt.Name == "Annual Leave" {
		fmt.Fprintf(&b, "• Annual leave balance: %.1f days\n", sess.Profile.AnnualLeaveBalance)
	}

	b.WriteString("\nShall I submit it?")
	return b.String()
}

func dayLabel(st session.State, field string) string {
	if st.BoolValue(field, true) {
		return "full day"
	}
	return "half day"
}

func formatValue(v any) string {
	switch t := v.(type) {
	case bool:
		if t {
			return "yes"
		}
		return "no"
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
