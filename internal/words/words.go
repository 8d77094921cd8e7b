// internal/words/words.go
//
// Root word sources for new rounds.
//
// Responsibilities:
//   - Read newline-separated word lists from a file or the embedded default.
//   - Pick a root word uniformly at random, falling back to DefaultRoot.
//   - Check a source at startup so an unreadable list aborts boot.
//
// Source selection (FromPath):
//   - START_WORDS_FILE set   → FileSource, re-read on every new round.
//   - START_WORDS_FILE empty → EmbeddedSource (assets/start.txt).
//
// Constraints:
//   • Lines are trimmed and lowercased.
//   • Blank lines and lines starting with '#' are skipped.

package words

import (
	"bufio"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordscramble/apps/go-server/assets"
)

// DefaultRoot is used whenever a source yields no usable word.
const DefaultRoot = "silkworm"

// ErrEmpty is returned by Check when a source reads fine but holds no words.
var ErrEmpty = errors.New("words: list is empty")

// Source supplies candidate root words.
type Source interface {
	Words() ([]string, error)
}

// List is a fixed in-memory Source.
type List []string

// Words returns the list as-is.
func (l List) Words() ([]string, error) { return l, nil }

// FileSource reads one word per line from Path on every call.
type FileSource struct {
	Path string
}

// Words reads and normalizes the file.
func (s FileSource) Words() ([]string, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// EmbeddedSource reads the bundled start list.
type EmbeddedSource struct{}

// Words reads and normalizes assets/start.txt.
func (EmbeddedSource) Words() ([]string, error) {
	f, err := assets.StartWords()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// FromPath returns a FileSource for path, or the embedded list if path is empty.
func FromPath(path string) Source {
	if path == "" {
		return EmbeddedSource{}
	}
	return FileSource{Path: path}
}

// Parse reads one word per line, lowercasing and trimming each.
func Parse(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		w := strings.ToLower(strings.TrimSpace(sc.Text()))
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		out = append(out, w)
	}
	return out, sc.Err()
}

// Random returns a cryptographically random element of list.
// ok is false if list is empty.
func Random(list []string) (w string, ok bool) {
	if len(list) == 0 {
		return "", false
	}
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(len(list))))
	if err != nil {
		return list[0], true
	}
	return list[nBig.Int64()], true
}

// Pick chooses a root word from src. It never fails: read errors and
// empty lists both resolve to DefaultRoot.
func Pick(src Source) string {
	list, err := src.Words()
	if err != nil {
		log.Warn().Err(err).Str("fallback", DefaultRoot).Msg("read start words")
		return DefaultRoot
	}
	w, ok := Random(list)
	if !ok {
		log.Warn().Str("fallback", DefaultRoot).Msg("start words empty")
		return DefaultRoot
	}
	return w
}

// Check reads src once and reports how many words it holds.
// Used at startup: an unreadable source is fatal there.
func Check(src Source) (int, error) {
	list, err := src.Words()
	if err != nil {
		return 0, fmt.Errorf("words: read source: %w", err)
	}
	if len(list) == 0 {
		return 0, ErrEmpty
	}
	return len(list), nil
}
