// internal/words/words.go
//
// Word store for the daily puzzle.
//
// Responsibilities:
//   - Hold the ordered list of encrypted entries (embedded or from WORDS_FILE).
//   - Resolve a puzzle index to its plaintext word.
//
// Selection rule:
//   entry = entries[index mod len(entries)]
//   key   = prefix + decimal(index)
//
// The key uses the unwrapped puzzle index, so an entry re-authored for a
// later cycle (cmd/wordlist -start) decodes under its own key. A wrapped
// index whose entry was authored for an earlier cycle falls back to the
// key of its first-cycle slot, so the shipped list keeps resolving after
// the calendar runs past its end. An entry that decodes under neither
// key is a DecodeFailure, never an empty word.

package words

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/robalobadob/reveal/assets"
)

// DefaultKeyPrefix is prepended to the puzzle index to form a passphrase.
const DefaultKeyPrefix = "base64"

// Store resolves puzzle indices to words.
type Store struct {
	entries []string
	prefix  string
}

// New builds a Store over entries. An empty prefix selects DefaultKeyPrefix.
func New(entries []string, prefix string) (*Store, error) {
	if len(entries) == 0 {
		return nil, errors.New("words: entry list is empty")
	}
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Store{entries: append([]string(nil), entries...), prefix: prefix}, nil
}

// Load reads entries from path, or from the embedded list when path is empty.
func Load(path, prefix string) (*Store, error) {
	var (
		entries []string
		err     error
	)
	if path == "" {
		entries, err = assets.WordEntries()
	} else {
		entries, err = readEntryFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("load word list: %w", err)
	}
	return New(entries, prefix)
}

func readEntryFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return assets.ReadEntries(f)
}

// Len reports how many entries the list holds.
func (s *Store) Len() int { return len(s.entries) }

// Key returns the passphrase for puzzle index idx.
func (s *Store) Key(idx int) string {
	return s.prefix + strconv.Itoa(idx)
}

// Slot returns the list position used for puzzle index idx.
func (s *Store) Slot(idx int) int {
	return idx % len(s.entries)
}

// Resolve returns the uppercase word for puzzle index idx.
func (s *Store) Resolve(idx int) (string, error) {
	if idx < 0 {
		return "", fmt.Errorf("%w: negative index %d", ErrDecode, idx)
	}
	slot := s.Slot(idx)
	word, err := s.decodeWord(slot, s.Key(idx))
	if err != nil && slot != idx {
		word, err = s.decodeWord(slot, s.Key(slot))
	}
	if err != nil {
		return "", fmt.Errorf("puzzle %d: %w", idx, err)
	}
	return word, nil
}

func (s *Store) decodeWord(slot int, key string) (string, error) {
	plain, err := Decode(s.entries[slot], key)
	if err != nil {
		return "", err
	}
	word := strings.ToUpper(strings.TrimSpace(plain))
	if word == "" || !isAlpha(word) {
		return "", fmt.Errorf("%w: plaintext is not a word", ErrDecode)
	}
	return word, nil
}

// isAlpha reports whether s is all uppercase ASCII letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
