// internal/config/config.go
//
// Process configuration, read from the environment (after .env is loaded).

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/robalobadob/reveal/internal/daily"
	"github.com/robalobadob/reveal/internal/game"
)

type Config struct {
	Port     string `env:"PORT" envDefault:"5175"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	DBPath   string `env:"DB_PATH" envDefault:"./data/reveal.db"`

	Testing    bool          `env:"REVEAL_TESTING"`
	TestBucket time.Duration `env:"REVEAL_TEST_BUCKET" envDefault:"1m"`
	Epoch      string        `env:"REVEAL_EPOCH" envDefault:"2025-07-14T00:00:00"`
	Bucket     time.Duration `env:"REVEAL_BUCKET" envDefault:"24h"`

	MaxHints  int `env:"REVEAL_MAX_HINTS" envDefault:"3"`
	MissGrace int `env:"REVEAL_MISS_GRACE" envDefault:"0"`

	KeyPrefix string `env:"REVEAL_KEY_PREFIX" envDefault:"base64"`
	WordsFile string `env:"WORDS_FILE"`

	DefinitionURL     string        `env:"DEFINITION_URL" envDefault:"https://api.dictionaryapi.dev/api/v2/entries/en/"`
	DefinitionTimeout time.Duration `env:"DEFINITION_TIMEOUT" envDefault:"5s"`

	PlayerSecret  string `env:"PLAYER_SECRET" envDefault:"dev_secret_change_me"`
	SecureCookies bool   `env:"SECURE_COOKIES"`
	ClientOrigin string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	ShareURL     string `env:"SHARE_URL"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.MaxHints < 0 || cfg.MissGrace < 0 {
		return nil, errors.New("hint settings must not be negative")
	}
	return &cfg, nil
}

// InMemory reports whether DB_PATH selects the in-memory store.
func (c *Config) InMemory() bool {
	return c.DBPath == "" || c.DBPath == ":memory:"
}

// Game returns the hint policy.
func (c *Config) Game() game.Config {
	return game.Config{MaxHints: c.MaxHints, MissGrace: c.MissGrace}
}

// Clock builds the puzzle clock. In testing mode the epoch is the top of
// the hour containing now and REVEAL_EPOCH/REVEAL_BUCKET are ignored.
func (c *Config) Clock(now time.Time) (*daily.Clock, error) {
	if c.Testing {
		return daily.New(daily.Testing(now, c.TestBucket))
	}
	epoch, err := daily.ParseEpoch(c.Epoch, time.Local)
	if err != nil {
		return nil, fmt.Errorf("REVEAL_EPOCH: %w", err)
	}
	return daily.New(daily.Config{Epoch: epoch, Bucket: c.Bucket})
}
