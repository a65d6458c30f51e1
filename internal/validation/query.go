package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxQueryLength is the longest query, in runes, that will be submitted.
const MaxQueryLength = 8000

var ErrEmptyQuery = errors.New("query cannot be empty")

// NormalizeQuery strips control characters other than newlines and tabs,
// trims surrounding whitespace and enforces the length limit.
func NormalizeQuery(q string) (string, error) {
	q = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r == '\r' || unicode.IsControl(r) {
			return -1
		}
		return r
	}, q)
	q = strings.TrimSpace(q)

	if q == "" {
		return "", ErrEmptyQuery
	}
	if n := utf8.RuneCountInString(q); n > MaxQueryLength {
		return "", fmt.Errorf("query too long (%d characters, max %d)", n, MaxQueryLength)
	}
	return q, nil
}
