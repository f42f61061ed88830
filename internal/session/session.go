// internal/session/session.go
//
// Round lifecycle for one player.
// Responsibilities:
//   - Pick the puzzle for "now" and resolve its word.
//   - Resume the saved round for that puzzle or start a fresh one.
//   - Supersede the round when the clock moves into a new bucket.
//   - Forward guesses to the engine and, once a round ends, fetch a
//     definition in the background without blocking anything.
//
// A Session is safe for concurrent use; inputs are applied one at a time.

package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/reveal/internal/daily"
	"github.com/robalobadob/reveal/internal/game"
	"github.com/robalobadob/reveal/internal/progress"
	"github.com/robalobadob/reveal/internal/store"
	"github.com/robalobadob/reveal/internal/words"
)

// Definer annotates a finished round. It must not fail.
type Definer interface {
	Describe(ctx context.Context, word string) string
}

// Deps are the collaborators shared by all sessions.
type Deps struct {
	Clock   *daily.Clock
	Words   *words.Store
	KV      store.KV
	Game    game.Config
	Definer Definer          // optional
	Now     func() time.Time // optional, defaults to time.Now
}

// State is a read-only view of the active round.
type State struct {
	PuzzleIndex int
	Round       game.Round
	Remaining   time.Duration
	Summary     *game.Summary
	Definition  string // empty until the lookup returns
}

// Session drives the rounds of one player.
type Session struct {
	deps   Deps
	player string
	gw     *progress.Gateway

	mu         sync.Mutex // serializes inputs and rollovers
	index      int
	engine     *game.Engine
	definition string
	lookups    sync.WaitGroup
}

// New creates a Session for player.
func New(deps Deps, player string) *Session {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Session{
		deps:   deps,
		player: player,
		gw:     progress.New(deps.KV, player),
		index:  -1,
	}
}

// Player returns the player id this session belongs to.
func (s *Session) Player() string { return s.player }

// State returns the current round, rolling over first if needed.
func (s *Session) State(ctx context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.deps.Now()
	e, err := s.ensure(ctx, now)
	if err != nil {
		return State{}, err
	}
	st := State{
		PuzzleIndex: s.index,
		Round:       e.Snapshot(),
		Remaining:   s.deps.Clock.Remaining(now),
		Definition:  s.definition,
	}
	if sum, ok := e.Summary(); ok {
		st.Summary = &sum
	}
	return st, nil
}

// Guess applies a letter to the current round.
// Persistence failures are logged and do not undo the move; the only
// errors returned are those that prevent the round from starting.
func (s *Session) Guess(ctx context.Context, letter string) (game.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.ensure(ctx, s.deps.Now())
	if err != nil {
		return game.Outcome{}, err
	}
	wasOver := e.Over()
	out, err := e.Guess(ctx, letter)
	if err != nil {
		log.Error().Err(err).Str("player", s.player).Int("puzzle", s.index).Msg("save round")
	}
	if !wasOver && out.Status.Terminal() {
		s.lookupDefinition(e.Snapshot().Word)
	}
	return out, nil
}

// Stats returns the player's lifetime stats.
func (s *Session) Stats(ctx context.Context) (progress.Stats, error) {
	return s.gw.Stats(ctx)
}

// Share returns the share text for a finished round.
func (s *Session) Share(ctx context.Context, url string) (string, bool, error) {
	st, err := s.State(ctx)
	if err != nil || st.Summary == nil {
		return "", false, err
	}
	return st.Summary.ShareText(url), true, nil
}

// Wait blocks until background lookups started so far have finished.
func (s *Session) Wait() { s.lookups.Wait() }

// ensure returns the engine for the bucket containing now. Caller holds s.mu.
// A fresh round is not written until its first accepted guess.
func (s *Session) ensure(ctx context.Context, now time.Time) (*game.Engine, error) {
	idx := s.deps.Clock.Index(now)
	if s.engine != nil {
		s.flushPending(ctx)
		if idx == s.index {
			return s.engine, nil
		}
	}

	word, err := s.deps.Words.Resolve(idx)
	if err != nil {
		log.Error().Err(err).Int("puzzle", idx).Msg("cannot resolve puzzle word")
		return nil, fmt.Errorf("start puzzle %d: %w", idx, err)
	}

	e, resumed := s.resume(ctx, idx, word)
	if e == nil {
		r, err := game.NewRound(idx, word, now)
		if err != nil {
			return nil, err
		}
		e, err = s.newEngine(r)
		if err != nil {
			return nil, err
		}
	}

	if s.index >= 0 && s.index != idx {
		log.Info().Str("player", s.player).Int("from", s.index).Int("to", idx).Msg("puzzle rolled over")
	}
	s.index, s.engine, s.definition = idx, e, ""

	if resumed && e.Over() {
		s.flushPending(ctx)
		s.lookupDefinition(word)
	}
	return e, nil
}

// flushPending retries a write the engine could not complete earlier.
func (s *Session) flushPending(ctx context.Context) {
	if !s.engine.Pending() {
		return
	}
	if err := s.engine.Flush(ctx); err != nil {
		log.Warn().Err(err).Str("player", s.player).Int("puzzle", s.index).Msg("retry round save")
		return
	}
	log.Info().Str("player", s.player).Int("puzzle", s.index).Msg("pending round save written")
}

// resume rebuilds the saved round for idx, if there is a usable one.
func (s *Session) resume(ctx context.Context, idx int, word string) (*game.Engine, bool) {
	r, ok, err := s.gw.LoadRound(ctx, idx)
	if err != nil {
		log.Warn().Err(err).Str("player", s.player).Msg("load saved round")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	r.Word = word
	if r.HintOrder == nil {
		r.HintOrder = game.HintOrder(word)
	}
	e, err := s.newEngine(r)
	if err != nil {
		log.Warn().Err(err).Str("player", s.player).Int("puzzle", idx).Msg("saved round rejected, starting fresh")
		return nil, false
	}
	log.Debug().Str("player", s.player).Int("puzzle", idx).Msg("resumed round")
	return e, true
}

func (s *Session) newEngine(r *game.Round) (*game.Engine, error) {
	return game.NewEngine(r, s.deps.Game,
		game.WithStore(s.gw),
		game.WithClock(s.deps.Now),
	)
}

// lookupDefinition fetches the definition off the input path.
// Caller holds s.mu.
func (s *Session) lookupDefinition(word string) {
	if s.deps.Definer == nil {
		return
	}
	idx := s.index
	s.lookups.Add(1)
	go func() {
		defer s.lookups.Done()
		def := s.deps.Definer.Describe(context.Background(), word)
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.index == idx {
			s.definition = def
		}
	}()
}
