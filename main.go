package main

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/reveal/internal/config"
	"github.com/robalobadob/reveal/internal/daily"
	"github.com/robalobadob/reveal/internal/definition"
	"github.com/robalobadob/reveal/internal/httpserver"
	"github.com/robalobadob/reveal/internal/session"
	"github.com/robalobadob/reveal/internal/store"
	"github.com/robalobadob/reveal/internal/words"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	ws, err := words.Load(cfg.WordsFile, cfg.KeyPrefix)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word list")
	}

	clock, err := cfg.Clock(time.Now())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build puzzle clock")
	}

	if err := checkToday(ws, clock, time.Now()); err != nil {
		log.Fatal().Err(err).
			Str("words_file", cfg.WordsFile).
			Str("key_prefix", cfg.KeyPrefix).
			Msg("today's puzzle cannot be decoded; fix WORDS_FILE, REVEAL_KEY_PREFIX or REVEAL_EPOCH")
	}

	kv, closeStore := openStore(cfg)
	defer closeStore()

	srv := httpserver.New(httpserver.Options{
		Deps: session.Deps{
			Clock:   clock,
			Words:   ws,
			KV:      kv,
			Game:    cfg.Game(),
			Definer: definition.New(cfg.DefinitionURL, cfg.DefinitionTimeout),
		},
		PlayerSecret: cfg.PlayerSecret,
		ClientOrigin: cfg.ClientOrigin,
		ShareURL:     cfg.ShareURL,
		Secure:       cfg.SecureCookies,
		Testing:      cfg.Testing,
	})

	log.Info().
		Str("port", cfg.Port).
		Int("words", ws.Len()).
		Int("puzzle", clock.Index(time.Now())).
		Bool("testing", cfg.Testing).
		Msg("starting reveal server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// openStore opens the SQLite store at DB_PATH, or an in-memory one.
func openStore(cfg *config.Config) (store.KV, func()) {
	if cfg.InMemory() {
		log.Warn().Msg("DB_PATH empty or :memory:, progress will not survive a restart")
		return store.NewMemoryStore(), func() {}
	}
	db, err := store.OpenDB(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := store.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}
	return store.NewSQLiteStore(db), func() { _ = db.Close() }
}

// checkToday resolves the puzzle live at now so a broken word list is
// caught at boot instead of on the first request.
func checkToday(ws *words.Store, clock *daily.Clock, now time.Time) error {
	idx := clock.Index(now)
	if _, err := ws.Resolve(idx); err != nil {
		return fmt.Errorf("puzzle %d (slot %d of %d): %w", idx, ws.Slot(idx), ws.Len(), err)
	}
	return nil
}
