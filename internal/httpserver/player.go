// internal/httpserver/player.go
//
// Anonymous player identity.
// Each browser gets a random player id carried in an HS256 JWT cookie.
// A missing, expired or tampered cookie gets a fresh id; the old progress
// is then simply unreachable.

package httpserver

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

const (
	playerCookieName = "reveal_player"
	playerTTL        = 365 * 24 * time.Hour
)

// ctxPlayerKey is the context key type for the player id.
type ctxPlayerKey struct{}

// playerFrom returns the player id placed by withPlayer.
func playerFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxPlayerKey{}).(string)
	return id
}

// withPlayer resolves the player cookie, issuing one when needed.
func (s *Server) withPlayer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := s.parsePlayer(r)
		if id == "" {
			id = genID()
			tok, exp, err := s.signPlayer(id, time.Now())
			if err != nil {
				log.Error().Err(err).Msg("sign player cookie")
				http.Error(w, `{"error":"sign_failed"}`, http.StatusInternalServerError)
				return
			}
			s.setPlayerCookie(w, tok, exp)
			log.Debug().Str("player", id).Msg("issued player id")
		}
		ctx := context.WithValue(r.Context(), ctxPlayerKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// parsePlayer returns the verified player id, or "" if there is none.
func (s *Server) parsePlayer(r *http.Request) string {
	c, err := r.Cookie(playerCookieName)
	if err != nil || c.Value == "" {
		return ""
	}
	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(c.Value, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.opts.PlayerSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid {
		log.Debug().Err(err).Msg("rejecting player cookie")
		return ""
	}
	return claims.Subject
}

// signPlayer creates an HS256 JWT whose subject is the player id.
func (s *Server) signPlayer(id string, now time.Time) (string, time.Time, error) {
	exp := now.Add(playerTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	ss, err := t.SignedString([]byte(s.opts.PlayerSecret))
	return ss, exp, err
}

// setPlayerCookie writes the player cookie with appropriate security attributes.
func (s *Server) setPlayerCookie(w http.ResponseWriter, token string, exp time.Time) {
	sameSite := http.SameSiteLaxMode
	if s.opts.Secure {
		sameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// genID creates a 22-char URL-safe, crypto-random identifier (no padding).
func genID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
