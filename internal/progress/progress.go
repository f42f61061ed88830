// internal/progress/progress.go
//
// Persistence gateway for Reveal.
// Responsibilities:
//   - Save the current round after every move (write-through, last write wins).
//   - Load a saved round only if it belongs to the requested puzzle; a record
//     for any other puzzle is discarded and reported as absent.
//   - Keep lifetime stats (played / solved / streak) under a separate key,
//     updated once per finished puzzle.
//
// Records are JSON strings in a generic KV store, namespaced per player.

package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/reveal/internal/game"
	"github.com/robalobadob/reveal/internal/store"
)

const (
	roundKey = "revealGameSave"
	statsKey = "revealStats"
)

// ErrMismatch marks a saved round that belongs to a different puzzle.
var ErrMismatch = errors.New("progress: saved round is for another puzzle")

// RoundRecord is the stored shape of a round.
type RoundRecord struct {
	PuzzleIndex      int         `json:"puzzleIndex"`
	RevealState      []game.Slot `json:"revealState"`
	HintOrder        []int       `json:"hintOrder"`
	HintCursor       int         `json:"hintCursor"`
	HintsUsed        int         `json:"hintsUsed"`
	Guesses          []string    `json:"guesses"`
	IncorrectGuesses int         `json:"incorrectGuesses"`
	TotalGuesses     int         `json:"totalGuesses"`
	Completion       game.Status `json:"completion"`
	StartedAt        int64       `json:"startedAt"`         // unix ms
	EndedAt          int64       `json:"endedAt,omitempty"` // unix ms, 0 while playing
	DurationSeconds  int         `json:"durationSeconds"`
	Timestamp        int64       `json:"timestamp"` // unix ms of the save
}

// Stats are the lifetime counters for one player.
type Stats struct {
	Played     int  `json:"played"`
	Solved     int  `json:"solved"`
	Streak     int  `json:"streak"`
	MaxStreak  int  `json:"maxStreak"`
	LastPuzzle *int `json:"lastPuzzle,omitempty"`
}

// Gateway reads and writes one player's progress.
type Gateway struct {
	kv  store.KV
	ns  string
	now func() time.Time
}

// New returns a Gateway over kv. namespace separates players sharing a store.
func New(kv store.KV, namespace string) *Gateway {
	return &Gateway{kv: kv, ns: namespace, now: time.Now}
}

func (g *Gateway) key(k string) string {
	if g.ns == "" {
		return k
	}
	return g.ns + ":" + k
}

// SaveRound stores r, replacing any earlier record.
func (g *Gateway) SaveRound(ctx context.Context, r game.Round) error {
	now := g.now()
	rec := RoundRecord{
		PuzzleIndex:      r.PuzzleIndex,
		RevealState:      r.Reveal,
		HintOrder:        r.HintOrder,
		HintCursor:       r.HintCursor,
		HintsUsed:        r.HintsUsed,
		Guesses:          r.Guessed,
		IncorrectGuesses: r.Incorrect,
		TotalGuesses:     r.Total,
		Completion:       r.Status,
		StartedAt:        r.StartedAt.UnixMilli(),
		Timestamp:        now.UnixMilli(),
	}
	end := now
	if !r.EndedAt.IsZero() {
		rec.EndedAt = r.EndedAt.UnixMilli()
		end = r.EndedAt
	}
	if d := end.Sub(r.StartedAt); d > 0 {
		rec.DurationSeconds = int(d / time.Second)
	}

	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode round: %w", err)
	}
	return g.kv.Set(ctx, g.key(roundKey), string(b))
}

// LoadRound returns the saved round for puzzleIndex.
// ok is false when nothing usable is stored: no record, a record for
// another puzzle (which is deleted), or an unreadable record.
// The returned round has no Word; the caller supplies it.
func (g *Gateway) LoadRound(ctx context.Context, puzzleIndex int) (r *game.Round, ok bool, err error) {
	raw, found, err := g.kv.Get(ctx, g.key(roundKey))
	if err != nil || !found {
		return nil, false, err
	}
	r, err = decodeRound(raw, puzzleIndex)
	switch {
	case errors.Is(err, ErrMismatch):
		log.Debug().Int("puzzle", puzzleIndex).Str("ns", g.ns).Msg("discarding saved round for older puzzle")
		if err := g.kv.Delete(ctx, g.key(roundKey)); err != nil {
			log.Warn().Err(err).Msg("delete stale round")
		}
		return nil, false, nil
	case err != nil:
		log.Warn().Err(err).Str("ns", g.ns).Msg("ignoring unreadable saved round")
		return nil, false, nil
	}
	return r, true, nil
}

func decodeRound(raw string, puzzleIndex int) (*game.Round, error) {
	var rec RoundRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("decode round: %w", err)
	}
	if rec.PuzzleIndex != puzzleIndex {
		return nil, fmt.Errorf("%w: have %d, want %d", ErrMismatch, rec.PuzzleIndex, puzzleIndex)
	}
	r := &game.Round{
		PuzzleIndex: rec.PuzzleIndex,
		Reveal:      rec.RevealState,
		HintOrder:   rec.HintOrder,
		HintCursor:  rec.HintCursor,
		HintsUsed:   rec.HintsUsed,
		Guessed:     rec.Guesses,
		Incorrect:   rec.IncorrectGuesses,
		Total:       rec.TotalGuesses,
		Status:      rec.Completion,
		StartedAt:   time.UnixMilli(rec.StartedAt).UTC(),
	}
	if r.Guessed == nil {
		r.Guessed = []string{}
	}
	if rec.EndedAt != 0 {
		r.EndedAt = time.UnixMilli(rec.EndedAt).UTC()
	}
	return r, nil
}

// Stats returns the lifetime counters. An unreadable record counts as empty.
func (g *Gateway) Stats(ctx context.Context) (Stats, error) {
	raw, found, err := g.kv.Get(ctx, g.key(statsKey))
	if err != nil || !found {
		return Stats{}, err
	}
	var st Stats
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		log.Warn().Err(err).Str("ns", g.ns).Msg("resetting unreadable stats")
		return Stats{}, nil
	}
	return st, nil
}

// RecordResult folds a finished round into the stats.
// A repeat of the last recorded puzzle is ignored, so retries and resumed
// rounds never count twice. Earlier indices still count: the index goes
// backwards when the epoch moves (testing mode re-anchors on restart).
func (g *Gateway) RecordResult(ctx context.Context, s game.Summary) error {
	st, err := g.Stats(ctx)
	if err != nil {
		return err
	}
	if st.LastPuzzle != nil && *st.LastPuzzle == s.PuzzleIndex {
		log.Debug().Int("puzzle", s.PuzzleIndex).Msg("result already recorded")
		return nil
	}
	st.Played++
	if s.Solved() {
		st.Solved++
		st.Streak++
		if st.Streak > st.MaxStreak {
			st.MaxStreak = st.Streak
		}
	} else {
		st.Streak = 0
	}
	idx := s.PuzzleIndex
	st.LastPuzzle = &idx

	b, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	return g.kv.Set(ctx, g.key(statsKey), string(b))
}
