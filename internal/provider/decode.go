package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedResponse indicates a provider returned text from which no valid
// JSON payload could be recovered. Every provider-response consumer decodes
// through this package so the fallback chain exists exactly once.
var ErrMalformedResponse = errors.New("malformed provider response")

// DecodeJSON extracts and unmarshals a JSON object or array from loosely
// formatted model output. Handles markdown-fenced blocks and JSON embedded in
// surrounding prose.
// Parameters:
//   - raw: the provider's text output.
//   - v: destination for json.Unmarshal.
// Returns:
//   - error: wraps ErrMalformedResponse if no valid JSON can be recovered.
func DecodeJSON(raw string, v interface{}) error {
	payload, err := ExtractJSON(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// ExtractJSON returns the first balanced JSON object or array found in raw.
func ExtractJSON(raw string) (string, error) {
	content := stripFences(raw)

	start := -1
	var open, close byte
	for i := 0; i < len(content); i++ {
		if content[i] == '{' || content[i] == '[' {
			start = i
			open = content[i]
			if open == '{' {
				close = '}'
			} else {
				close = ']'
			}
			break
		}
	}
	if start == -1 {
		return "", fmt.Errorf("%w: no JSON found", ErrMalformedResponse)
	}

	// Find the matching closing delimiter, skipping string literals.
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		c := content[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return content[start : i+1], nil
			}
		}
	}

	return "", fmt.Errorf("%w: incomplete JSON", ErrMalformedResponse)
}

// stripFences removes a markdown code fence wrapper if present.
func stripFences(raw string) string {
	content := strings.TrimSpace(raw)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	content = strings.TrimPrefix(content, "```")
	// Drop a language tag like "json" on the fence line
	if idx := strings.Index(content, "\n"); idx != -1 {
		firstLine := strings.TrimSpace(content[:idx])
		if len(firstLine) <= 10 && !strings.ContainsAny(firstLine, "{[") {
			content = content[idx+1:]
		}
	}
	if idx := strings.LastIndex(content, "```"); idx != -1 {
		content = content[:idx]
	}
	return strings.TrimSpace(content)
}
