// Package validation checks the name a paddler enters after a finished run.
package validation

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Name entry limits
const (
	MaxPlayerNameLen = 32
)

var (
	// ErrEmptyName is returned when no letters were entered.
	ErrEmptyName = errors.New("player name cannot be empty")
	// ErrInvalidScore is returned for a score that cannot be recorded.
	ErrInvalidScore = errors.New("invalid score")
)

// Only lower-case ASCII letters survive name entry.
var validPlayerNameChars = regexp.MustCompile(`^[a-z]+$`)

// ValidatePlayerName trims and lower-cases name and checks it is made of
// letters only.
func ValidatePlayerName(name string) (string, error) {
	if !utf8.ValidString(name) {
		return "", fmt.Errorf("player name contains invalid UTF-8 characters")
	}

	trimmed := strings.ToLower(strings.TrimSpace(name))
	if trimmed == "" {
		return "", ErrEmptyName
	}

	if n := utf8.RuneCountInString(trimmed); n > MaxPlayerNameLen {
		return "", fmt.Errorf("player name too long: %d characters (max %d)", n, MaxPlayerNameLen)
	}

	if !validPlayerNameChars.MatchString(trimmed) {
		return "", fmt.Errorf("player name contains invalid characters (only letters a-z allowed)")
	}

	return trimmed, nil
}

// ValidateScore rejects scores that are negative or not finite.
func ValidateScore(score float64) error {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return fmt.Errorf("%w: %v is not finite", ErrInvalidScore, score)
	}
	if score < 0 {
		return fmt.Errorf("%w: %v is negative", ErrInvalidScore, score)
	}
	return nil
}

// NameBuffer collects a name one key at a time. Letters are lower-cased and
// anything else is ignored.
type NameBuffer struct {
	runes []rune
	max   int
}

// NewNameBuffer creates a buffer holding at most limit letters. A
// non-positive limit uses MaxPlayerNameLen.
func NewNameBuffer(limit int) *NameBuffer {
	if limit <= 0 || limit > MaxPlayerNameLen {
		limit = MaxPlayerNameLen
	}
	return &NameBuffer{max: limit}
}

// Type appends r if it is a letter and the buffer has room, and reports
// whether it was taken.
func (b *NameBuffer) Type(r rune) bool {
	if r >= 'A' && r <= 'Z' {
		r += 'a' - 'A'
	}
	if r < 'a' || r > 'z' || len(b.runes) >= b.max {
		return false
	}
	b.runes = append(b.runes, r)
	return true
}

// Backspace removes the last letter, if any.
func (b *NameBuffer) Backspace() {
	if len(b.runes) > 0 {
		b.runes = b.runes[:len(b.runes)-1]
	}
}

// Reset empties the buffer.
func (b *NameBuffer) Reset() {
	b.runes = b.runes[:0]
}

// Len returns the number of letters typed.
func (b *NameBuffer) Len() int {
	return len(b.runes)
}

// String returns the letters typed so far.
func (b *NameBuffer) String() string {
	return string(b.runes)
}

// Confirm validates the typed name.
func (b *NameBuffer) Confirm() (string, error) {
	return ValidatePlayerName(b.String())
}
