package provider

import (
	"errors"
	"testing"
)

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{
			name: "clean object",
			raw:  `{"title": "Five Day Launch", "chapters": ["One", "Two"]}`,
		},
		{
			name: "fenced with language tag",
			raw:  "```json\n{\"title\": \"Five Day Launch\"}\n```",
		},
		{
			name: "fenced without language tag",
			raw:  "```\n{\"title\": \"Five Day Launch\"}\n```",
		},
		{
			name: "object embedded in prose",
			raw:  "Here is the outline you asked for:\n{\"title\": \"Five Day Launch\"}\nHope that helps!",
		},
		{
			name: "nested braces in strings",
			raw:  `{"body": "use {curly} braces and a \" quote", "n": 1}`,
		},
		{
			name:    "no JSON at all",
			raw:     "I'm sorry, I can't produce that outline.",
			wantErr: true,
		},
		{
			name:    "truncated object",
			raw:     `{"title": "Five Day Launch", "chapters": ["One"`,
			wantErr: true,
		},
		{
			name:    "empty response",
			raw:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out map[string]interface{}
			err := DecodeJSON(tt.raw, &out)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", out)
				}
				if !errors.Is(err, ErrMalformedResponse) {
					t.Errorf("expected ErrMalformedResponse, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out == nil {
				t.Fatal("expected decoded map, got nil")
			}
		})
	}
}

func TestDecodeJSON_Array(t *testing.T) {
	raw := "```json\n[{\"name\": \"idea one\"}, {\"name\": \"idea two\"}]\n```"

	var out []map[string]interface{}
	if err := DecodeJSON(raw, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(out))
	}
	if out[0]["name"] != "idea one" {
		t.Errorf("unexpected first element: %v", out[0])
	}
}

func TestExtractJSON_PicksFirstPayload(t *testing.T) {
	raw := `first {"a": 1} then {"b": 2}`

	payload, err := ExtractJSON(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload != `{"a": 1}` {
		t.Errorf("expected first object, got %q", payload)
	}
}
