// internal/definition/definition.go
//
// Dictionary lookup for finished rounds.
// Fetches the first definition of a word from a dictionaryapi.dev-style
// endpoint. Lookups are advisory: every failure collapses into Placeholder
// and nothing here ever touches round state.
//
// Concurrent lookups of the same word share one request (singleflight).

package definition

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultBaseURL is the free dictionary API entries endpoint.
	DefaultBaseURL = "https://api.dictionaryapi.dev/api/v2/entries/en/"

	// Placeholder is shown whenever no definition can be produced.
	Placeholder = "(no definition found)"
)

// ErrNotFound reports a response without any definition.
var ErrNotFound = errors.New("definition: not found")

// Client looks words up over HTTP.
type Client struct {
	base    string
	http    *http.Client
	timeout time.Duration
	group   singleflight.Group
}

// New returns a Client. Empty base selects DefaultBaseURL; timeout <= 0 means 5s.
func New(base string, timeout time.Duration) *Client {
	if base == "" {
		base = DefaultBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{base: base, http: &http.Client{}, timeout: timeout}
}

type entry struct {
	Meanings []struct {
		Definitions []struct {
			Definition string `json:"definition"`
		} `json:"definitions"`
	} `json:"meanings"`
}

// Lookup returns the first definition of word.
func (c *Client) Lookup(ctx context.Context, word string) (string, error) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return "", ErrNotFound
	}
	v, err, _ := c.group.Do(word, func() (any, error) {
		return c.fetch(ctx, word)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) fetch(ctx context.Context, word string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+url.PathEscape(word), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	res, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("definition request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return "", ErrNotFound
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("definition request: status %d", res.StatusCode)
	}

	var entries []entry
	if err := json.NewDecoder(res.Body).Decode(&entries); err != nil {
		return "", fmt.Errorf("decode definition: %w", err)
	}
	for _, e := range entries {
		for _, m := range e.Meanings {
			for _, d := range m.Definitions {
				if s := strings.TrimSpace(d.Definition); s != "" {
					return s, nil
				}
			}
		}
	}
	return "", ErrNotFound
}

// Describe formats "Word: definition." and never fails.
func (c *Client) Describe(ctx context.Context, word string) string {
	def, err := c.Lookup(ctx, word)
	if err != nil {
		log.Debug().Err(err).Str("word", word).Msg("definition lookup failed")
		def = Placeholder
	}
	return fmt.Sprintf("%s: %s", capitalize(word), strings.TrimSuffix(def, ".")+".")
}

func capitalize(w string) string {
	w = strings.ToLower(strings.TrimSpace(w))
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}
