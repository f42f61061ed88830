// internal/httpserver/routes_round.go
//
// HTTP routes for the daily round.
//   - GET  /round        → current round view (resumes or starts it)
//   - POST /round/guess  → submit one letter
//   - GET  /round/share  → share text once the round is over
//   - GET  /stats        → lifetime stats for the player
//
// The word is only sent once the round is won or lost. A word list entry
// that cannot be decoded blocks play with 503 decode_failed.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/reveal/internal/game"
	"github.com/robalobadob/reveal/internal/session"
	"github.com/robalobadob/reveal/internal/words"
)

// mountRound registers the round and stats routes.
func (s *Server) mountRound(r chi.Router) {
	r.Route("/round", func(r chi.Router) {
		r.Get("/", s.handleRound)
		r.Post("/guess", s.handleGuess)
		r.Get("/share", s.handleShare)
	})
	r.Get("/stats", s.handleStats)
}

// roundView is the client-facing shape of a round.
type roundView struct {
	PuzzleIndex      int           `json:"puzzleIndex"`
	Length           int           `json:"length"`
	Letters          []string      `json:"letters"` // "" for hidden positions
	Slots            []game.Slot   `json:"slots"`
	Guessed          []string      `json:"guessed"`
	HintsUsed        int           `json:"hintsUsed"`
	MaxHints         int           `json:"maxHints"`
	Incorrect        int           `json:"incorrectGuesses"`
	Total            int           `json:"totalGuesses"`
	Status           game.Status   `json:"status"`
	RemainingSeconds int           `json:"remainingSeconds"`
	Testing          bool          `json:"testing"`
	BucketSeconds    int           `json:"bucketSeconds"`
	Word             string        `json:"word,omitempty"`
	Summary          *game.Summary `json:"summary,omitempty"`
	Definition       string        `json:"definition,omitempty"`
}

func (s *Server) view(st session.State) roundView {
	rd := st.Round
	v := roundView{
		PuzzleIndex:      st.PuzzleIndex,
		Length:           len(rd.Word),
		Letters:          make([]string, len(rd.Word)),
		Slots:            rd.Reveal,
		Guessed:          rd.Guessed,
		HintsUsed:        rd.HintsUsed,
		MaxHints:         s.opts.Deps.Game.MaxHints,
		Incorrect:        rd.Incorrect,
		Total:            rd.Total,
		Status:           rd.Status,
		RemainingSeconds: int(st.Remaining.Seconds()),
		Testing:          s.opts.Testing,
		BucketSeconds:    int(s.opts.Deps.Clock.Config().Bucket.Seconds()),
		Summary:          st.Summary,
		Definition:       st.Definition,
	}
	over := rd.Status.Terminal()
	for i := range rd.Word {
		if over || rd.Reveal[i] != game.SlotHidden {
			v.Letters[i] = rd.Word[i : i+1]
		}
	}
	if over {
		v.Word = rd.Word
	}
	return v
}

// handleRound returns the player's current round.
func (s *Server) handleRound(w http.ResponseWriter, r *http.Request) {
	sess := s.session(playerFrom(r.Context()))
	st, err := sess.State(r.Context())
	if err != nil {
		writeRoundError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(s.view(st))
}

// guessReq/Res payloads for POST /round/guess.
type guessReq struct {
	Letter string `json:"letter"`
}
type guessRes struct {
	Result   game.GuessResult `json:"result"`
	Reason   string           `json:"reason,omitempty"`
	Letter   string           `json:"letter,omitempty"`
	Revealed []int            `json:"revealed"`
	Hint     *int             `json:"hint,omitempty"`
	Round    roundView        `json:"round"`
}

// handleGuess applies one letter. Ignored guesses are still 200 responses;
// the reason says why nothing changed.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	sess := s.session(playerFrom(r.Context()))
	out, err := sess.Guess(r.Context(), req.Letter)
	if err != nil {
		writeRoundError(w, err)
		return
	}
	st, err := sess.State(r.Context())
	if err != nil {
		writeRoundError(w, err)
		return
	}

	res := guessRes{
		Result:   out.Result,
		Letter:   out.Letter,
		Revealed: out.Revealed,
		Round:    s.view(st),
	}
	if res.Revealed == nil {
		res.Revealed = []int{}
	}
	if out.Reason != nil {
		res.Reason = reasonCode(out.Reason)
	}
	if out.Hint >= 0 {
		h := out.Hint
		res.Hint = &h
	}
	_ = json.NewEncoder(w).Encode(res)
}

// handleShare returns the share text for a finished round.
func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	sess := s.session(playerFrom(r.Context()))
	text, ok, err := sess.Share(r.Context(), s.opts.ShareURL)
	if err != nil {
		writeRoundError(w, err)
		return
	}
	if !ok {
		http.Error(w, `{"error":"round_in_progress"}`, http.StatusConflict)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"text": text})
}

// handleStats returns the player's lifetime stats.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	sess := s.session(playerFrom(r.Context()))
	st, err := sess.Stats(r.Context())
	if err != nil {
		log.Error().Err(err).Str("player", sess.Player()).Msg("load stats")
		http.Error(w, `{"error":"stats_unavailable"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(st)
}

// writeRoundError maps session errors onto HTTP responses.
func writeRoundError(w http.ResponseWriter, err error) {
	if errors.Is(err, words.ErrDecode) {
		http.Error(w, `{"error":"decode_failed","message":"Today's word could not be loaded."}`, http.StatusServiceUnavailable)
		return
	}
	log.Error().Err(err).Msg("round request failed")
	http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
}

// reasonCode turns an ignored-guess reason into a stable string.
func reasonCode(err error) string {
	switch {
	case errors.Is(err, game.ErrInvalidLetter):
		return "invalid_letter"
	case errors.Is(err, game.ErrAlreadyGuessed):
		return "already_guessed"
	case errors.Is(err, game.ErrAlreadyRevealed):
		return "already_revealed"
	case errors.Is(err, game.ErrRoundOver):
		return "round_over"
	default:
		return "ignored"
	}
}
