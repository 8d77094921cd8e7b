// internal/game/engine.go
//
// Core game engine for a single word scramble session.
// Responsibilities:
//   - Start rounds from a random root word (words package).
//   - Normalize and validate submissions through an ordered rule set.
//   - Record accepted words and keep the score in step with them.
//
// Validation rules, evaluated in order (first failure wins):
//   1. TooShort     - fewer than four letters.
//   2. IsRootWord   - the root word itself.
//   3. AlreadyUsed  - already accepted this round.
//   4. NotDerivable - needs letters the root word does not have (multiset check).
//   5. NotARealWord - the dictionary does not recognize it.
//
// Notes:
//   - Validation never mutates a Round; only RecordAcceptedWord does.
//   - State is not safe for concurrent use. Callers serialize access.
package game

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/robalobadob/wordscramble/apps/go-server/internal/words"
)

// minLetters is the exclusive lower bound on submission length.
const minLetters = 3

// Normalize lowercases raw for lang and strips surrounding whitespace.
func Normalize(raw string, lang language.Tag) string {
	return strings.TrimSpace(cases.Lower(lang).String(raw))
}

// Letters counts the letters in w.
func Letters(w string) int { return utf8.RuneCountInString(w) }

// Validator runs the rule set against a round.
type Validator struct {
	Dict Dictionary
	Lang language.Tag
}

// Validate checks an already-normalized word against r.
func (v Validator) Validate(word string, r Round) Outcome {
	switch {
	case Letters(word) <= minLetters:
		return reject(TooShort, r)
	case word == r.RootWord:
		return reject(IsRootWord, r)
	case contains(r.UsedWords, word):
		return reject(AlreadyUsed, r)
	case !derivable(word, r.RootWord):
		return reject(NotDerivable, r)
	case v.Dict == nil || !v.Dict.IsRecognizedWord(word, v.Lang):
		return reject(NotARealWord, r)
	}
	return Outcome{}
}

// reject builds the user-facing title/message for kind.
func reject(kind ErrorKind, r Round) Outcome {
	o := Outcome{Kind: kind}
	switch kind {
	case TooShort:
		o.Title, o.Message = "Word too short", "Words must be four characters or more."
	case IsRootWord:
		o.Title, o.Message = "Nice try..", "You can't use the starting word."
	case AlreadyUsed:
		o.Title, o.Message = "Word used already", "Be more original"
	case NotDerivable:
		o.Title, o.Message = "Word not possible", fmt.Sprintf("You can't spell that word from %s!", r.RootWord)
	case NotARealWord:
		o.Title, o.Message = "Word not recognized", "You can't make up words."
	}
	return o
}

// derivable reports whether word's letters are a sub-multiset of root's.
// Each letter of word consumes one occurrence from root.
func derivable(word, root string) bool {
	counts := make(map[rune]int, len(root))
	for _, r := range root {
		counts[r]++
	}
	for _, r := range word {
		if counts[r] == 0 {
			return false
		}
		counts[r]--
	}
	return true
}

// contains is a plain membership test.
func contains(list []string, w string) bool {
	for _, x := range list {
		if x == w {
			return true
		}
	}
	return false
}

// State owns the current round for one player.
type State struct {
	validator Validator
	round     Round
	now       func() time.Time
}

// NewState returns a State with no round started.
// A zero lang defaults to English.
func NewState(dict Dictionary, lang language.Tag) *State {
	if lang == language.Und {
		lang = language.English
	}
	return &State{
		validator: Validator{Dict: dict, Lang: lang},
		now:       time.Now,
	}
}

// StartNewRound replaces the current round with a fresh one rooted at a
// random word from src. It never fails; see words.Pick.
func (s *State) StartNewRound(src words.Source) Round {
	root := Normalize(words.Pick(src), s.validator.Lang)
	if root == "" {
		root = words.DefaultRoot
	}
	s.round = Round{
		RootWord:  root,
		UsedWords: []string{},
		StartedAt: s.now(),
	}
	return s.CurrentRound()
}

// CurrentRound returns a snapshot of the round. The caller may keep it.
func (s *State) CurrentRound() Round {
	r := s.round
	r.UsedWords = append([]string(nil), s.round.UsedWords...)
	return r
}

// RecordAcceptedWord prepends word and adds its letters to the score.
// The caller must already have validated word.
func (s *State) RecordAcceptedWord(word string) {
	s.round.UsedWords = append([]string{word}, s.round.UsedWords...)
	s.round.Score += Letters(word)
}

// Submit normalizes raw, validates it, and records it when accepted.
// The normalized word is returned alongside the outcome.
func (s *State) Submit(raw string) (string, Outcome) {
	word := Normalize(raw, s.validator.Lang)
	out := s.validator.Validate(word, s.round)
	if out.Accepted() {
		s.RecordAcceptedWord(word)
	}
	return word, out
}

// Lang reports the language the state validates against.
func (s *State) Lang() language.Tag { return s.validator.Lang }
