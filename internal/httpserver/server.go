// internal/httpserver/server.go
//
// HTTP server wiring for the Reveal backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health".
//   - Round endpoints: GET /round, POST /round/guess, GET /round/share.
//   - Lifetime stats: GET /stats.
//   - Anonymous player identity via a signed cookie (see player.go).
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Every request is mapped to one player session; sessions are created
//     lazily and resume from the store on first use.

package httpserver

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/reveal/internal/session"
)

// Options configure a Server.
type Options struct {
	Deps         session.Deps
	PlayerSecret string
	ClientOrigin string
	ShareURL     string
	Secure       bool // mark cookies Secure + SameSite=None
	Testing      bool // rapid-rotation clock; reported to clients
}

const (
	// sessionIdleTTL is how long an untouched session stays in memory.
	// Evicted players resume from the store on their next request.
	sessionIdleTTL = time.Hour
	sweepEvery     = time.Minute
)

// liveSession is a session plus the last time a request used it.
type liveSession struct {
	sess     *session.Session
	lastSeen time.Time
}

// Server bundles the router and the live player sessions.
type Server struct {
	r    *chi.Mux
	opts Options
	now  func() time.Time

	mu        sync.Mutex // guards sessions, lastSweep
	sessions  map[string]*liveSession
	lastSweep time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(opts Options) *Server {
	if opts.PlayerSecret == "" {
		opts.PlayerSecret = "dev_secret_change_me"
	}
	if opts.ClientOrigin == "" {
		opts.ClientOrigin = "http://localhost:5173"
	}
	s := &Server{
		r:        chi.NewRouter(),
		opts:     opts,
		now:      time.Now,
		sessions: make(map[string]*liveSession),
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(cors(opts.ClientOrigin))         // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"reveal-go","endpoints":["/health","GET /round","POST /round/guess","GET /round/share","GET /stats"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.mountRound(s.r.With(s.withPlayer))

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// session returns the live session for player, creating it on first use.
func (s *Server) session(player string) *session.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweep(now)
	if ls, ok := s.sessions[player]; ok {
		ls.lastSeen = now
		return ls.sess
	}
	ls := &liveSession{sess: session.New(s.opts.Deps, player), lastSeen: now}
	s.sessions[player] = ls
	return ls.sess
}

// sweep drops sessions idle longer than sessionIdleTTL. Caller holds s.mu.
func (s *Server) sweep(now time.Time) {
	if now.Sub(s.lastSweep) < sweepEvery {
		return
	}
	s.lastSweep = now
	dropped := 0
	for id, ls := range s.sessions {
		if now.Sub(ls.lastSeen) > sessionIdleTTL {
			delete(s.sessions, id)
			dropped++
		}
	}
	if dropped > 0 {
		log.Debug().Int("dropped", dropped).Int("live", len(s.sessions)).Msg("swept idle sessions")
	}
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
