package service

import (
	"fmt"

	"github.com/launchpadhq/launchpad/internal/domain"
)

// inputString reads a string field from a job's input snapshot.
func inputString(input domain.JSONMap, key string) string {
	if v, ok := input[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// inputInt reads an integer field from a job's input snapshot. JSON numbers
// arrive as float64 after the snapshot round-trips through the store.
func inputInt(input domain.JSONMap, key string, fallback int) int {
	v, ok := input[key]
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return fallback
	}
}

// inputStrings reads a string slice field from a job's input snapshot.
func inputStrings(input domain.JSONMap, key string) []string {
	v, ok := input[key]
	if !ok {
		return nil
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// requireInput reads a string field, erroring when absent. Used for fields
// the start endpoint validated; a miss here means the snapshot is corrupt.
func requireInput(input domain.JSONMap, key string) (string, error) {
	s := inputString(input, key)
	if s == "" {
		return "", fmt.Errorf("input field %q missing from job snapshot", key)
	}
	return s, nil
}
