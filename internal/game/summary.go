package game

import (
	"fmt"
	"strings"
	"time"
)

// Summary is the frozen result of a finished round.
type Summary struct {
	PuzzleIndex    int           `json:"puzzleIndex"`
	Word           string        `json:"word"`
	Status         Status        `json:"status"`
	CorrectLetters int           `json:"correctLetters"`
	HintLetters    int           `json:"hintLetters"`
	Guesses        int           `json:"guesses"`
	Misses         int           `json:"misses"`
	Duration       time.Duration `json:"-"`
	Seconds        int           `json:"durationSeconds"`
}

// Solved reports a won round.
func (s Summary) Solved() bool { return s.Status == StatusWon }

func summarize(r *Round) Summary {
	d := r.EndedAt.Sub(r.StartedAt)
	if d < 0 {
		d = 0
	}
	return Summary{
		PuzzleIndex:    r.PuzzleIndex,
		Word:           r.Word,
		Status:         r.Status,
		CorrectLetters: r.Count(SlotGuess),
		HintLetters:    r.Count(SlotHint),
		Guesses:        r.Total,
		Misses:         r.Incorrect,
		Duration:       d,
		Seconds:        int(d / time.Second),
	}
}

// ShareText renders the copy-and-paste result line.
// The answer itself is never included.
func (s Summary) ShareText(url string) string {
	outcome := "Fail"
	if s.Solved() {
		outcome = "Solved"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Reveal Puzzle #%d - %s\n", s.PuzzleIndex, outcome)
	fmt.Fprintf(&b, "Correct letters: %d, Hints used: %d, Time: %ds", s.CorrectLetters, s.HintLetters, s.Seconds)
	if url != "" {
		fmt.Fprintf(&b, "\nTry it yourself at: %s", url)
	}
	return b.String()
}
