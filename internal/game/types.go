// internal/game/types.go
//
// Core type definitions for the word scramble game.
// Defines:
//   - ErrorKind: why a submission was rejected.
//   - Outcome: accepted, or rejected with a title/message pair.
//   - Round: state of a single play session.
//   - Dictionary: the spell-check capability the pipeline consults.

package game

import (
	"time"

	"golang.org/x/text/language"
)

// ErrorKind names the validation rule a submission failed.
type ErrorKind string

const (
	TooShort     ErrorKind = "too_short"
	IsRootWord   ErrorKind = "is_root_word"
	AlreadyUsed  ErrorKind = "already_used"
	NotDerivable ErrorKind = "not_derivable"
	NotARealWord ErrorKind = "not_a_real_word"
)

// Outcome is the result of validating one submission.
// The zero value means accepted.
type Outcome struct {
	Kind    ErrorKind `json:"kind,omitempty"`
	Title   string    `json:"title,omitempty"`
	Message string    `json:"message,omitempty"`
}

// Accepted reports whether every rule passed.
func (o Outcome) Accepted() bool { return o.Kind == "" }

// Round holds the state of one play session.
type Round struct {
	RootWord  string    // Word all submissions are built from (lowercase).
	UsedWords []string  // Accepted words, most recent first.
	Score     int       // Sum of letter counts of UsedWords.
	StartedAt time.Time // When the round began.
}

// Dictionary reports whether a word is a recognized word in a language.
type Dictionary interface {
	IsRecognizedWord(word string, lang language.Tag) bool
}
