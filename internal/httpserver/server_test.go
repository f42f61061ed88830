package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/reveal/internal/daily"
	"github.com/robalobadob/reveal/internal/game"
	"github.com/robalobadob/reveal/internal/session"
	"github.com/robalobadob/reveal/internal/store"
	"github.com/robalobadob/reveal/internal/words"
)

var epoch = time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC)

type staticDefiner struct{}

func (staticDefiner) Describe(_ context.Context, word string) string { return word + ": test." }

func newTestServer(t *testing.T, prefix string, plain ...string) *Server {
	t.Helper()
	entries := make([]string, len(plain))
	for i, w := range plain {
		enc, err := words.Encode(w, words.DefaultKeyPrefix+strconv.Itoa(i))
		require.NoError(t, err)
		entries[i] = enc
	}
	ws, err := words.New(entries, prefix)
	require.NoError(t, err)
	clock, err := daily.New(daily.Production(epoch))
	require.NoError(t, err)

	return New(Options{
		Deps: session.Deps{
			Clock:   clock,
			Words:   ws,
			KV:      store.NewMemoryStore(),
			Game:    game.DefaultConfig(),
			Definer: staticDefiner{},
			Now:     func() time.Time { return epoch.Add(time.Hour) },
		},
		PlayerSecret: "test-secret",
		ShareURL:     "https://reveal.example",
	})
}

func do(t *testing.T, s *Server, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func playerCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == playerCookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", playerCookieName)
	return nil
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, "", "AB")
	rec := do(t, s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestRoundFlow(t *testing.T) {
	s := newTestServer(t, "", "AB")

	rec := do(t, s, http.MethodGet, "/round", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cookie := playerCookie(t, rec)
	v := decode[roundView](t, rec)
	assert.Equal(t, 0, v.PuzzleIndex)
	assert.Equal(t, 2, v.Length)
	assert.Equal(t, []string{"", ""}, v.Letters)
	assert.Empty(t, v.Word, "word must stay hidden while playing")
	assert.Equal(t, game.StatusPlaying, v.Status)
	assert.Equal(t, 3, v.MaxHints)
	assert.Equal(t, 23*3600, v.RemainingSeconds)
	assert.False(t, v.Testing)
	assert.Equal(t, 24*3600, v.BucketSeconds)

	rec = do(t, s, http.MethodGet, "/round/share", "", cookie)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, s, http.MethodPost, "/round/guess", `{"letter":"a"}`, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	g := decode[guessRes](t, rec)
	assert.Equal(t, game.GuessHit, g.Result)
	assert.Equal(t, "A", g.Letter)
	assert.Equal(t, []int{0}, g.Revealed)
	assert.Nil(t, g.Hint)
	assert.Equal(t, []string{"A", ""}, g.Round.Letters)

	rec = do(t, s, http.MethodPost, "/round/guess", `{"letter":"7"}`, cookie)
	g = decode[guessRes](t, rec)
	assert.Equal(t, game.GuessIgnored, g.Result)
	assert.Equal(t, "invalid_letter", g.Reason)

	rec = do(t, s, http.MethodPost, "/round/guess", `{"letter":"B"}`, cookie)
	g = decode[guessRes](t, rec)
	assert.Equal(t, game.StatusWon, g.Round.Status)
	assert.Equal(t, "AB", g.Round.Word)
	require.NotNil(t, g.Round.Summary)
	assert.Equal(t, 2, g.Round.Summary.CorrectLetters)

	rec = do(t, s, http.MethodGet, "/round/share", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	share := decode[map[string]string](t, rec)
	assert.Contains(t, share["text"], "Reveal Puzzle #0 - Solved")
	assert.Contains(t, share["text"], "https://reveal.example")

	rec = do(t, s, http.MethodGet, "/stats", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"played":1,"solved":1,"streak":1,"maxStreak":1,"lastPuzzle":0}`, rec.Body.String())

	rec = do(t, s, http.MethodPost, "/round/guess", `{"letter":"C"}`, cookie)
	g = decode[guessRes](t, rec)
	assert.Equal(t, "round_over", g.Reason)
}

func TestMissTriggersHint(t *testing.T) {
	s := newTestServer(t, "", "AB")
	rec := do(t, s, http.MethodPost, "/round/guess", `{"letter":"Z"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	g := decode[guessRes](t, rec)
	assert.Equal(t, game.GuessMiss, g.Result)
	require.NotNil(t, g.Hint)
	// HintOrder("AB") is [1, 0].
	assert.Equal(t, 1, *g.Hint)
	assert.Equal(t, []string{"", "B"}, g.Round.Letters)
	assert.Equal(t, 1, g.Round.HintsUsed)
}

func TestInvalidCookieGetsNewPlayer(t *testing.T) {
	s := newTestServer(t, "", "AB")

	rec := do(t, s, http.MethodPost, "/round/guess", `{"letter":"A"}`, nil)
	first := playerCookie(t, rec)

	// Same player keeps the guess.
	rec = do(t, s, http.MethodGet, "/round", "", first)
	assert.Empty(t, rec.Result().Cookies())
	assert.Equal(t, []string{"A"}, decode[roundView](t, rec).Guessed)

	forged := &http.Cookie{Name: playerCookieName, Value: first.Value + "x"}
	rec = do(t, s, http.MethodGet, "/round", "", forged)
	fresh := playerCookie(t, rec)
	assert.NotEqual(t, first.Value, fresh.Value)
	assert.Empty(t, decode[roundView](t, rec).Guessed)
}

func TestSignedWithOtherSecretRejected(t *testing.T) {
	s := newTestServer(t, "", "AB")
	other := newTestServer(t, "", "AB")
	other.opts.PlayerSecret = "another-secret"

	tok, exp, err := other.signPlayer("intruder", time.Now())
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	req := httptest.NewRequest(http.MethodGet, "/round", nil)
	req.AddCookie(&http.Cookie{Name: playerCookieName, Value: tok})
	assert.Empty(t, s.parsePlayer(req))

	tok, _, err = s.signPlayer("me", time.Now())
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/round", nil)
	req.AddCookie(&http.Cookie{Name: playerCookieName, Value: tok})
	assert.Equal(t, "me", s.parsePlayer(req))
}

func TestDecodeFailureBlocks(t *testing.T) {
	s := newTestServer(t, "wrongprefix", "AB")

	rec := do(t, s, http.MethodGet, "/round", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"decode_failed"`)

	rec = do(t, s, http.MethodPost, "/round/guess", `{"letter":"A"}`, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestBadJSON(t *testing.T) {
	s := newTestServer(t, "", "AB")
	rec := do(t, s, http.MethodPost, "/round/guess", `{`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotFoundAndCORS(t *testing.T) {
	s := newTestServer(t, "", "AB")
	rec := do(t, s, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodOptions, "/round/guess", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestTestingModeReported(t *testing.T) {
	s := newTestServer(t, "", "AB")
	s.opts.Testing = true
	rec := do(t, s, http.MethodGet, "/round", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[roundView](t, rec).Testing)
}

func TestCookielessRequestsLeaveNoTrace(t *testing.T) {
	s := newTestServer(t, "", "AB")
	now := epoch.Add(time.Hour)
	s.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		rec := do(t, s, http.MethodGet, "/round", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Len(t, s.sessions, 3)

	// Viewing a round writes nothing for the player.
	for id := range s.sessions {
		_, found, err := s.opts.Deps.KV.Get(context.Background(), id+":revealGameSave")
		require.NoError(t, err)
		assert.False(t, found)
	}

	// Two hours later every session is idle and swept.
	rec := do(t, s, http.MethodPost, "/round/guess", `{"letter":"A"}`, nil)
	keep := playerCookie(t, rec)
	now = now.Add(2 * time.Hour)
	rec = do(t, s, http.MethodGet, "/round", "", keep)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, s.sessions, 1)

	// The returning player resumes from the store.
	assert.Equal(t, []string{"A"}, decode[roundView](t, rec).Guessed)
}
