package llm

import (
	"testing"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare JSON", `{"a":1}`, `{"a":1}`},
		{"fenced with language", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fenced without language", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
		{"plain text unchanged", "hello world", "hello world"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFences(tt.input); got != tt.want {
				t.Errorf("StripCodeFences(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Action string `json:"action"`
	}

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"bare object", `{"action":"prompt"}`, "prompt", false},
		{"fenced object", "```json\n{\"action\":\"extraction\"}\n```", "extraction", false},
		{"prose around object", `Sure! Here is the JSON: {"action":"cancel"} Hope that helps.`, "cancel", false},
		{"no JSON at all", "I could not determine the action.", "", true},
		{"malformed JSON", `{"action": prompt}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p payload
			err := DecodeJSON(tt.input, &p)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Action != tt.want {
				t.Errorf("action = %q, want %q", p.Action, tt.want)
			}
		})
	}
}
