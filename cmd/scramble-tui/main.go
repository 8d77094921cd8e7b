// Command scramble-tui plays word scramble in the terminal.
//
// It reads the same START_WORDS_FILE / DICTIONARY_FILE / DICTIONARY_LANG
// settings as the server. Logs go to $TMPDIR/scramble-tui.log so they do not
// corrupt the screen.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordscramble/apps/go-server/internal/config"
	"github.com/robalobadob/wordscramble/apps/go-server/internal/dictionary"
	"github.com/robalobadob/wordscramble/apps/go-server/internal/game"
	"github.com/robalobadob/wordscramble/apps/go-server/internal/tui"
	"github.com/robalobadob/wordscramble/apps/go-server/internal/words"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "scramble-tui: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logFile, err := os.OpenFile(filepath.Join(os.TempDir(), "scramble-tui.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logFile.Close()
	log.Logger = zerolog.New(logFile).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(cfg.ZerologLevel())

	lang, err := dictionary.ParseLang(cfg.DictionaryLang)
	if err != nil {
		return err
	}
	src := words.FromPath(cfg.StartWordsFile)
	if _, err := words.Check(src); err != nil && !errors.Is(err, words.ErrEmpty) {
		return fmt.Errorf("start words: %w", err)
	}
	dict, err := dictionary.Load(lang, cfg.DictionaryFile)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	log.Info().Int("dictionary", dict.Len()).Msg("tui started")
	tui.New(screen, game.NewState(dict, lang), src).Run()
	return nil
}
