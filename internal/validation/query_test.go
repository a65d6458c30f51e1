package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		err      string
	}{
		{name: "plain", input: "What drugs?", expected: "What drugs?"},
		{name: "trimmed", input: "  \n What drugs? \n ", expected: "What drugs?"},
		{name: "keeps inner newlines and tabs", input: "line one\n\tline two", expected: "line one\n\tline two"},
		{name: "drops carriage returns", input: "a\r\nb", expected: "a\nb"},
		{name: "drops control characters", input: "a\x00b\x1bc", expected: "abc"},
		{name: "empty", input: "", err: "query cannot be empty"},
		{name: "only whitespace", input: " \t\n ", err: "query cannot be empty"},
		{name: "only control characters", input: "\x00\x01", err: "query cannot be empty"},
		{name: "too long", input: strings.Repeat("a", MaxQueryLength+1), err: "query too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeQuery(tt.input)
			if tt.err != "" {
				if err == nil || !strings.Contains(err.Error(), tt.err) {
					t.Fatalf("Expected error containing %q, got %v", tt.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestNormalizeQueryCountsRunes(t *testing.T) {
	q := strings.Repeat("é", MaxQueryLength)
	if _, err := NormalizeQuery(q); err != nil {
		t.Errorf("Expected %d multibyte runes to be accepted, got %v", MaxQueryLength, err)
	}
}

func TestNormalizeQueryEmptySentinel(t *testing.T) {
	_, err := NormalizeQuery("   ")
	if !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("Expected ErrEmptyQuery, got %v", err)
	}
}
