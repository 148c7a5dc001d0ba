package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Decode parses a stored list value. An empty value is an empty list.
func Decode(raw string) ([]Issue, error) {
	if strings.TrimSpace(raw) == "" {
		return []Issue{}, nil
	}
	var issues []Issue
	if err := json.Unmarshal([]byte(raw), &issues); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if issues == nil {
		issues = []Issue{}
	}
	return issues, nil
}

// Encode serializes a list as a bare JSON array.
func Encode(issues []Issue) (string, error) {
	if issues == nil {
		issues = []Issue{}
	}
	b, err := json.Marshal(issues)
	if err != nil {
		return "", fmt.Errorf("json marshal: %w", err)
	}
	return string(b), nil
}
