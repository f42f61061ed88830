package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/reveal/internal/config"
	"github.com/robalobadob/reveal/internal/daily"
	"github.com/robalobadob/reveal/internal/words"
)

func TestDefaultsResolveToday(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	ws, err := words.Load(cfg.WordsFile, cfg.KeyPrefix)
	require.NoError(t, err)

	now := time.Now()
	clock, err := cfg.Clock(now)
	require.NoError(t, err)
	require.NoError(t, checkToday(ws, clock, now))

	// Well past the end of the embedded list.
	for _, later := range []time.Time{
		time.Date(2026, 10, 17, 12, 0, 0, 0, time.Local),
		time.Date(2031, 2, 1, 8, 0, 0, 0, time.Local),
	} {
		assert.NoError(t, checkToday(ws, clock, later), later)
	}
}

func TestCheckTodayReportsBrokenList(t *testing.T) {
	ws, err := words.Load("", "wrong-prefix")
	require.NoError(t, err)
	clock, err := daily.New(daily.Production(time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	err = checkToday(ws, clock, time.Date(2025, 7, 20, 9, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, words.ErrDecode)
	assert.Contains(t, err.Error(), "puzzle 6")
}
