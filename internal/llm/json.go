// Package llm provides the language-model boundary for the dialog engine.
// This file contains helpers for decoding JSON out of model responses.
package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StripCodeFences removes a surrounding markdown code fence from a model
// response, if present. Models frequently wrap JSON in ```json ... ```
// despite instructions not to.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	// Drop a language tag on the opening fence (```json)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		firstLine := strings.TrimSpace(s[:idx])
		if firstLine == "" || !strings.ContainsAny(firstLine, "{[") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// DecodeJSON decodes a model response into v, tolerating markdown code
// fences and leading/trailing prose around the JSON object. Returns an
// error when no JSON object can be found or it fails to parse.
func DecodeJSON(s string, v any) error {
	cleaned := StripCodeFences(s)

	if err := json.Unmarshal([]byte(cleaned), v); err == nil {
		return nil
	}

	// Fall back to the outermost braces; models sometimes preface the
	// JSON with a sentence of prose.
	start := strings.IndexByte(cleaned, '{')
	end := strings.LastIndexByte(cleaned, '}')
	if start < 0 || end <= start {
		return fmt.Errorf("no JSON object in response")
	}
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), v); err != nil {
		return fmt.Errorf("decode response JSON: %w", err)
	}
	return nil
}
