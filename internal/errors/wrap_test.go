package errors

import (
	"errors"
	"testing"
)

func TestWrapNil(t *testing.T) {
	w := NewWrapper("dialog", "route_turn")
	if w.Wrap(nil, "should be nil") != nil {
		t.Error("wrapping nil must return nil")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	w := NewWrapper("hrms", "submit_leave")
	cause := errors.New("connection refused")
	err := w.Wrap(cause, "we couldn't reach the HR system")

	if !errors.Is(err, cause) {
		t.Error("wrapped error must unwrap to cause")
	}
	if GetUserMessage(err) != "we couldn't reach the HR system" {
		t.Errorf("unexpected user message: %q", GetUserMessage(err))
	}
}

func TestWrapfFormats(t *testing.T) {
	w := NewWrapper("catalog", "lookup")
	err := w.Wrapf(ErrConfiguration, "no catalog entry for %q", "Study Leave")

	if GetUserMessage(err) != `no catalog entry for "Study Leave"` {
		t.Errorf("unexpected user message: %q", GetUserMessage(err))
	}
	if !errors.Is(err, ErrConfiguration) {
		t.Error("must unwrap to ErrConfiguration")
	}
}

func TestGetUserMessageFallback(t *testing.T) {
	if GetUserMessage(nil) != "" {
		t.Error("nil error must yield empty message")
	}
	plain := errors.New("plain")
	if GetUserMessage(plain) != "plain" {
		t.Error("plain error must yield its Error() string")
	}
}
