package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func logLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}
	return entry
}

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		debugOn bool
	}{
		{name: "debug level enables debug", level: "debug", debugOn: true},
		{name: "info level drops debug", level: "info", debugOn: false},
		{name: "warn level drops debug", level: "warn", debugOn: false},
		{name: "invalid level defaults to info", level: "invalid", debugOn: false},
		{name: "empty level defaults to info", level: "", debugOn: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewWithWriter(tt.level, &buf)

			log.Debug("turn details")
			if got := buf.Len() > 0; got != tt.debugOn {
				t.Errorf("NewWithWriter(%q): debug logged = %v, want %v", tt.level, got, tt.debugOn)
			}
		})
	}
}

func TestLogger_WithModule(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.WithModule("dialog").Info("turn routed")

	entry := logLine(t, &buf)
	if module, ok := entry["module"].(string); !ok || module != "dialog" {
		t.Errorf("WithModule() module = %v, want %q", entry["module"], "dialog")
	}
}

func TestLogger_WithRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.WithRequestID("req-123").Info("turn complete")

	entry := logLine(t, &buf)
	if requestID, ok := entry["request_id"].(string); !ok || requestID != "req-123" {
		t.Errorf("WithRequestID() request_id = %v, want %q", entry["request_id"], "req-123")
	}
}

func TestLogger_WithSessionID(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.WithSessionID("sess-42").Info("turn complete")

	entry := logLine(t, &buf)
	if sessionID, ok := entry["session_id"].(string); !ok || sessionID != "sess-42" {
		t.Errorf("WithSessionID() session_id = %v, want %q", entry["session_id"], "sess-42")
	}
}

func TestLogger_WithError(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.WithError(errors.New("submission rejected")).Error("operation failed")

	entry := logLine(t, &buf)
	if errField, ok := entry["error"].(string); !ok || errField != "submission rejected" {
		t.Errorf("WithError() error = %v, want %q", entry["error"], "submission rejected")
	}
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.WithFields(map[string]any{
		"action":       "extraction",
		"working_days": 5,
	}).Info("state merged")

	entry := logLine(t, &buf)
	if entry["action"] != "extraction" {
		t.Errorf("WithFields() action = %v, want %q", entry["action"], "extraction")
	}
	if entry["working_days"] != float64(5) {
		t.Errorf("WithFields() working_days = %v, want 5", entry["working_days"])
	}
}

func TestLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.Info("turn complete")

	entry := logLine(t, &buf)

	requiredFields := []string{"timestamp", "level", "message"}
	for _, field := range requiredFields {
		if _, ok := entry[field]; !ok {
			t.Errorf("JSON log missing required field %q", field)
		}
	}

	if entry["message"] != "turn complete" {
		t.Errorf("message = %v, want %q", entry["message"], "turn complete")
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v, want %q", entry["level"], "info")
	}
}

func TestLogger_WarnLevelRendersAsWarning(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.Warn("rate limit near")

	entry := logLine(t, &buf)
	if entry["level"] != "warning" {
		t.Errorf("level = %v, want %q", entry["level"], "warning")
	}
}
