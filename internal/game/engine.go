// internal/game/engine.go
//
// Round engine for a single Reveal puzzle.
// Responsibilities:
//   - Apply letter guesses: reveal every hidden occurrence, count misses.
//   - Trigger hints automatically once misses exceed the grace count.
//   - Track state transitions: playing → won/lost (terminal, never left).
//   - Write state through to the Store after every accepted move and
//     report the result to lifetime stats once per round.
//
// Inputs are serialized by a mutex: a guess and the hint it may trigger
// are applied as one step before the next input is looked at.

package game

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Store receives write-through updates from the engine.
type Store interface {
	// SaveRound persists the full round state.
	SaveRound(ctx context.Context, r Round) error

	// RecordResult folds a finished round into lifetime stats.
	// Implementations must ignore a puzzle that was already recorded.
	RecordResult(ctx context.Context, s Summary) error
}

// GuessResult classifies a guess.
type GuessResult string

const (
	GuessIgnored GuessResult = "ignored"
	GuessHit     GuessResult = "hit"
	GuessMiss    GuessResult = "miss"
)

// Outcome describes what one guess did.
type Outcome struct {
	Result   GuessResult
	Reason   error  // set when Result is GuessIgnored
	Letter   string // normalized letter
	Revealed []int  // positions revealed by the guess itself
	Hint     int    // position revealed by an automatic hint, or -1
	Status   Status // round status after the guess
}

// Engine owns one round and all transitions on it.
type Engine struct {
	mu       sync.Mutex
	round    *Round
	cfg      Config
	store    Store
	now      func() time.Time
	recorded bool // result handed to Store.RecordResult
	dirty    bool // last persist failed
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithStore attaches a write-through store.
func WithStore(st Store) Option {
	return func(e *Engine) { e.store = st }
}

// NewEngine wraps r. The engine takes ownership of r.
// A playing round with nothing left hidden is settled as won.
func NewEngine(r *Round, cfg Config, opts ...Option) (*Engine, error) {
	if err := r.Validate(cfg); err != nil {
		return nil, err
	}
	e := &Engine{round: r, cfg: cfg, now: time.Now}
	for _, o := range opts {
		o(e)
	}
	if r.Status == StatusPlaying && r.AllRevealed() {
		e.finish(StatusWon)
		e.dirty = true
	}
	return e, nil
}

// Snapshot returns a deep copy of the current round.
func (e *Engine) Snapshot() Round {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.round.Clone()
}

// Over reports whether the round reached won or lost.
func (e *Engine) Over() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.round.Status.Terminal()
}

// Pending reports whether state is waiting to be persisted, either after a
// failed write or because a terminal result has not been recorded yet.
func (e *Engine) Pending() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.store == nil {
		return false
	}
	return e.dirty || (e.round.Status.Terminal() && !e.recorded)
}

// Config returns the hint policy in use.
func (e *Engine) Config() Config { return e.cfg }

// Summary returns the result summary once the round is terminal.
func (e *Engine) Summary() (Summary, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.round.Status.Terminal() {
		return Summary{}, false
	}
	return summarize(e.round), true
}

// Guess applies a single letter guess.
// Invalid, repeated or post-game guesses come back as GuessIgnored with a
// nil error; the error return is reserved for persistence failures, in
// which case the in-memory move still stands.
func (e *Engine) Guess(ctx context.Context, letter string) (Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r := e.round
	out := Outcome{Hint: -1, Status: r.Status}

	if r.Status.Terminal() {
		out.Result, out.Reason = GuessIgnored, ErrRoundOver
		if e.dirty {
			return out, e.persist(ctx)
		}
		return out, nil
	}
	l, ok := normalizeLetter(letter)
	if !ok {
		out.Result, out.Reason = GuessIgnored, ErrInvalidLetter
		return out, nil
	}
	out.Letter = l
	if contains(r.Guessed, l) {
		out.Result, out.Reason = GuessIgnored, ErrAlreadyGuessed
		return out, nil
	}
	if strings.Contains(r.Word, l) && !e.hiddenOccurrence(l[0]) {
		// Every occurrence came from hints; the key is spent.
		out.Result, out.Reason = GuessIgnored, ErrAlreadyRevealed
		return out, nil
	}

	r.Guessed = append(r.Guessed, l)
	r.Total++
	for i := 0; i < len(r.Word); i++ {
		if r.Word[i] == l[0] && r.Reveal[i] == SlotHidden {
			r.Reveal[i] = SlotGuess
			out.Revealed = append(out.Revealed, i)
		}
	}

	if len(out.Revealed) > 0 {
		out.Result = GuessHit
	} else {
		out.Result = GuessMiss
		r.Incorrect++
		if r.Incorrect > e.cfg.MissGrace {
			pos, ok := e.revealHint()
			switch {
			case ok:
				out.Hint = pos
			case !r.Status.Terminal():
				// Budget spent and the miss still needs a hint.
				e.finish(StatusLost)
			}
		}
	}

	if r.Status == StatusPlaying && r.AllRevealed() {
		e.finish(StatusWon)
	}
	out.Status = r.Status
	return out, e.persist(ctx)
}

// RevealHint reveals the next hint position outside of a miss.
// It reports false when the round is over or the budget is spent.
func (e *Engine) RevealHint(ctx context.Context) (int, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.round.Status.Terminal() {
		return -1, false, nil
	}
	pos, ok := e.revealHint()
	if !ok && !e.round.Status.Terminal() {
		return -1, false, nil
	}
	if e.round.Status == StatusPlaying && e.round.AllRevealed() {
		e.finish(StatusWon)
	}
	return pos, ok, e.persist(ctx)
}

// Flush retries any pending persistence. A terminal round whose result has
// not been recorded yet is recorded now.
func (e *Engine) Flush(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.persist(ctx)
}

// revealHint walks the hint order from the cursor and reveals the first
// hidden position. Caller holds e.mu.
func (e *Engine) revealHint() (int, bool) {
	r := e.round
	if r.HintsUsed >= e.cfg.MaxHints {
		return -1, false
	}
	for r.HintCursor < len(r.HintOrder) {
		pos := r.HintOrder[r.HintCursor]
		r.HintCursor++
		if r.Reveal[pos] == SlotHidden {
			r.Reveal[pos] = SlotHint
			r.HintsUsed++
			return pos, true
		}
	}
	log.Error().
		Err(ErrHintInconsistent).
		Int("puzzle", r.PuzzleIndex).
		Int("hintsUsed", r.HintsUsed).
		Str("reveal", r.Masked()).
		Msg("hint order exhausted before the word was revealed; forcing loss")
	e.finish(StatusLost)
	return -1, false
}

// finish moves the round into a terminal state. Caller holds e.mu.
func (e *Engine) finish(s Status) {
	if e.round.Status.Terminal() {
		return
	}
	e.round.Status = s
	e.round.EndedAt = e.now()
	log.Info().
		Int("puzzle", e.round.PuzzleIndex).
		Str("status", string(s)).
		Int("hints", e.round.HintsUsed).
		Int("guesses", e.round.Total).
		Msg("round complete")
}

// persist records the result (once) and then saves the round.
// Stats go first so a saved terminal round always implies recorded stats.
func (e *Engine) persist(ctx context.Context) error {
	if e.store == nil {
		return nil
	}
	e.dirty = true
	if e.round.Status.Terminal() && !e.recorded {
		if err := e.store.RecordResult(ctx, summarize(e.round)); err != nil {
			return err
		}
		e.recorded = true
	}
	if err := e.store.SaveRound(ctx, e.round.Clone()); err != nil {
		return err
	}
	e.dirty = false
	return nil
}

// hiddenOccurrence reports whether letter c still has a hidden position.
func (e *Engine) hiddenOccurrence(c byte) bool {
	r := e.round
	for i := 0; i < len(r.Word); i++ {
		if r.Word[i] == c && r.Reveal[i] == SlotHidden {
			return true
		}
	}
	return false
}

// normalizeLetter uppercases a single ASCII letter.
func normalizeLetter(s string) (string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 1 || s[0] < 'A' || s[0] > 'Z' {
		return "", false
	}
	return s, true
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
