// internal/game/types.go
//
// Core type definitions for the Reveal round engine.
// Defines:
//   - Slot:   per-position reveal state (hidden / guessed / hinted).
//   - Status: round completion state (playing → won | lost).
//   - Round:  all mutable state of a single puzzle round.
//   - Config: hint budget and miss grace.

package game

import (
	"errors"
	"fmt"
	"time"
)

// Slot is the reveal state of one letter position.
type Slot string

const (
	SlotHidden Slot = ""
	SlotGuess  Slot = "guess"
	SlotHint   Slot = "hint"
)

// Status is the completion state of a round.
type Status string

const (
	StatusPlaying Status = "playing"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

// Terminal reports whether no further moves are possible.
func (s Status) Terminal() bool { return s == StatusWon || s == StatusLost }

// Valid reports whether s is one of the known states.
func (s Status) Valid() bool {
	return s == StatusPlaying || s.Terminal()
}

// Config tunes the hint policy.
type Config struct {
	MaxHints  int // hint budget per round
	MissGrace int // misses tolerated before each further miss triggers a hint
}

// DefaultConfig is three hints with every miss triggering one.
func DefaultConfig() Config {
	return Config{MaxHints: 3, MissGrace: 0}
}

// Round holds the state of a single puzzle round.
type Round struct {
	PuzzleIndex int       // bucket this round belongs to
	Word        string    // uppercase answer
	Reveal      []Slot    // one slot per letter of Word
	HintOrder   []int     // permutation of positions hints walk through
	HintCursor  int       // next HintOrder entry to consider
	HintsUsed   int       // hints actually revealed
	Guessed     []string  // letters guessed, in order
	Incorrect   int       // guesses that revealed nothing
	Total       int       // accepted guesses
	Status      Status    // playing, won or lost
	StartedAt   time.Time // first shown to the player
	EndedAt     time.Time // zero until terminal
}

var (
	ErrInvalidLetter    = errors.New("game: not a letter A-Z")
	ErrAlreadyGuessed   = errors.New("game: letter already guessed")
	ErrAlreadyRevealed  = errors.New("game: letter already revealed")
	ErrRoundOver        = errors.New("game: round is over")
	ErrHintInconsistent = errors.New("game: no unrevealed position left in hint order")
)

// NewRound starts a fresh round for word.
func NewRound(puzzleIndex int, word string, startedAt time.Time) (*Round, error) {
	if word == "" || !isUpperAlpha(word) {
		return nil, fmt.Errorf("game: invalid word %q", word)
	}
	return &Round{
		PuzzleIndex: puzzleIndex,
		Word:        word,
		Reveal:      make([]Slot, len(word)),
		HintOrder:   HintOrder(word),
		Guessed:     []string{},
		Status:      StatusPlaying,
		StartedAt:   startedAt,
	}, nil
}

// Validate checks the structural invariants of a restored round.
func (r *Round) Validate(cfg Config) error {
	n := len(r.Word)
	switch {
	case n == 0 || !isUpperAlpha(r.Word):
		return fmt.Errorf("game: invalid word")
	case len(r.Reveal) != n:
		return fmt.Errorf("game: reveal state has %d slots, want %d", len(r.Reveal), n)
	case !isPermutation(r.HintOrder, n):
		return fmt.Errorf("game: hint order is not a permutation of %d positions", n)
	case r.HintCursor < 0 || r.HintCursor > n:
		return fmt.Errorf("game: hint cursor %d out of range", r.HintCursor)
	case r.HintsUsed < 0 || r.HintsUsed > cfg.MaxHints:
		return fmt.Errorf("game: hints used %d outside 0..%d", r.HintsUsed, cfg.MaxHints)
	case !r.Status.Valid():
		return fmt.Errorf("game: unknown status %q", r.Status)
	case r.Incorrect < 0 || r.Total < r.Incorrect || r.Total != len(r.Guessed):
		return fmt.Errorf("game: guess counters inconsistent")
	}
	for i, s := range r.Reveal {
		if s != SlotHidden && s != SlotGuess && s != SlotHint {
			return fmt.Errorf("game: slot %d has unknown state %q", i, s)
		}
	}
	seen := make(map[string]bool, len(r.Guessed))
	for _, g := range r.Guessed {
		if len(g) != 1 || !isUpperAlpha(g) || seen[g] {
			return fmt.Errorf("game: bad guess log entry %q", g)
		}
		seen[g] = true
	}
	return nil
}

// Clone returns a deep copy.
func (r *Round) Clone() Round {
	c := *r
	c.Reveal = append([]Slot(nil), r.Reveal...)
	c.HintOrder = append([]int(nil), r.HintOrder...)
	c.Guessed = append([]string{}, r.Guessed...)
	return c
}

// AllRevealed reports whether no slot is hidden.
func (r *Round) AllRevealed() bool {
	for _, s := range r.Reveal {
		if s == SlotHidden {
			return false
		}
	}
	return true
}

// Count returns how many slots are in state s.
func (r *Round) Count(s Slot) int {
	n := 0
	for _, x := range r.Reveal {
		if x == s {
			n++
		}
	}
	return n
}

// Masked renders the word with hidden positions as '_'.
func (r *Round) Masked() string {
	b := []byte(r.Word)
	for i, s := range r.Reveal {
		if s == SlotHidden {
			b[i] = '_'
		}
	}
	return string(b)
}

func isUpperAlpha(s string) bool {
	for _, c := range s {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

func isPermutation(p []int, n int) bool {
	if len(p) != n {
		return false
	}
	seen := make([]bool, n)
	for _, v := range p {
		if v < 0 || v >= n || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}
