package main

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordscramble/apps/go-server/assets"
	"github.com/robalobadob/wordscramble/apps/go-server/internal/auth"
	"github.com/robalobadob/wordscramble/apps/go-server/internal/config"
	"github.com/robalobadob/wordscramble/apps/go-server/internal/db"
	"github.com/robalobadob/wordscramble/apps/go-server/internal/dictionary"
	"github.com/robalobadob/wordscramble/apps/go-server/internal/history"
	"github.com/robalobadob/wordscramble/apps/go-server/internal/httpserver"
	"github.com/robalobadob/wordscramble/apps/go-server/internal/store"
	"github.com/robalobadob/wordscramble/apps/go-server/internal/words"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	zerolog.SetGlobalLevel(cfg.ZerologLevel())

	lang, err := dictionary.ParseLang(cfg.DictionaryLang)
	if err != nil {
		log.Fatal().Err(err).Msg("dictionary language")
	}

	// Without a readable word source there is no root word to play.
	src := words.FromPath(cfg.StartWordsFile)
	n, err := words.Check(src)
	switch {
	case errors.Is(err, words.ErrEmpty):
		log.Warn().Str("fallback", words.DefaultRoot).Msg("start word list is empty")
	case err != nil:
		log.Fatal().Err(err).Msg("failed to load start words")
	}

	dict, err := dictionary.Load(lang, cfg.DictionaryFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load dictionary")
	}

	conn, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	defer conn.Close()
	if err := db.Migrate(conn, assets.Migrations()); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	sessions := store.NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go store.RunSweeper(ctx, sessions, cfg.Sessions.SweepInterval, cfg.Sessions.IdleTTL)

	srv := httpserver.New(httpserver.Deps{
		Sessions: sessions,
		Words:    src,
		Dict:     dict,
		Lang:     lang,
		History:  history.NewStore(conn),
		Auth:     auth.NewService(conn, cfg.Auth.JWTSecret, cfg.Auth.JWTExpiresDays),
	}, httpserver.Options{
		ClientOrigin: cfg.ClientOrigin,
		CookieName:   cfg.Auth.CookieName,
		Production:   cfg.Production,
	})

	log.Info().
		Str("port", cfg.Port).
		Int("startWords", n).
		Int("dictionary", dict.Len()).
		Stringer("lang", lang).
		Dur("sessionIdleTTL", cfg.Sessions.IdleTTL).
		Msg("starting go-server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
