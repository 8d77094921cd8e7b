// Package dictionary provides spell-check oracles for the validation pipeline.
//
// WordList is the default: a set of known words for one language, loaded from
// a file (DICTIONARY_FILE) or the bundled assets/dictionary.txt. Requests are
// matched by base language, so a list tagged "en" also answers "en-GB".
package dictionary

import (
	"fmt"

	"golang.org/x/text/language"

	"github.com/robalobadob/wordscramble/apps/go-server/assets"
	"github.com/robalobadob/wordscramble/apps/go-server/internal/words"
)

// Func adapts a plain function to the game.Dictionary interface.
type Func func(word string, lang language.Tag) bool

// IsRecognizedWord calls f.
func (f Func) IsRecognizedWord(word string, lang language.Tag) bool { return f(word, lang) }

// WordList recognizes a fixed set of words in one language.
type WordList struct {
	lang  language.Base
	words map[string]struct{}
}

// New builds a WordList for lang from an already-normalized list.
func New(lang language.Tag, list []string) *WordList {
	base, _ := lang.Base()
	m := make(map[string]struct{}, len(list))
	for _, w := range list {
		m[w] = struct{}{}
	}
	return &WordList{lang: base, words: m}
}

// Load reads the word list at path, or the bundled list when path is empty.
func Load(lang language.Tag, path string) (*WordList, error) {
	var (
		list []string
		err  error
	)
	if path == "" {
		list, err = embedded()
	} else {
		list, err = words.FileSource{Path: path}.Words()
	}
	if err != nil {
		return nil, fmt.Errorf("dictionary: load %q: %w", pathOrEmbedded(path), err)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("dictionary: %q has no words", pathOrEmbedded(path))
	}
	return New(lang, list), nil
}

func embedded() ([]string, error) {
	f, err := assets.Dictionary()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return words.Parse(f)
}

func pathOrEmbedded(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}

// IsRecognizedWord reports whether word is in the list and lang shares its base language.
func (d *WordList) IsRecognizedWord(word string, lang language.Tag) bool {
	if base, _ := lang.Base(); base != d.lang {
		return false
	}
	_, ok := d.words[word]
	return ok
}

// Len returns the number of known words.
func (d *WordList) Len() int { return len(d.words) }

// ParseLang parses a BCP 47 tag, defaulting to English when s is empty.
func ParseLang(s string) (language.Tag, error) {
	if s == "" {
		return language.English, nil
	}
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und, fmt.Errorf("dictionary: parse language %q: %w", s, err)
	}
	return tag, nil
}
