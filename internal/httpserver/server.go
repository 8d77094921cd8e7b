// internal/httpserver/server.go
//
// HTTP server wiring for the Word Scramble backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs,
//     zerolog access logging).
//   - Public endpoints: "/", "/health".
//   - Round endpoints (optional auth): mounted by mountRounds.
//   - Auth + history endpoints: mounted by mountAuth.
//   - Session cookie: every client gets one; it keys the in-memory game state
//     and doubles as the anonymous owner id for round history.

package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"

	"github.com/robalobadob/wordscramble/apps/go-server/internal/auth"
	"github.com/robalobadob/wordscramble/apps/go-server/internal/game"
	"github.com/robalobadob/wordscramble/apps/go-server/internal/history"
	"github.com/robalobadob/wordscramble/apps/go-server/internal/store"
	"github.com/robalobadob/wordscramble/apps/go-server/internal/words"
)

// Deps are the collaborators the server drives.
type Deps struct {
	Sessions store.Store
	Words    words.Source
	Dict     game.Dictionary
	Lang     language.Tag
	History  *history.Store
	Auth     *auth.Service
}

// Options control cookies and CORS.
type Options struct {
	ClientOrigin string
	CookieName   string // auth cookie
	Production   bool   // Secure cookies, SameSite=None
}

// Server bundles router, session store and persistence.
type Server struct {
	r    *chi.Mux
	deps Deps
	opts Options
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps, o Options) *Server {
	if o.CookieName == "" {
		o.CookieName = "scramble_token"
	}
	if o.ClientOrigin == "" {
		o.ClientOrigin = "http://localhost:5173"
	}
	s := &Server{r: chi.NewRouter(), deps: d, opts: o}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(hlog.NewHandler(log.Logger))
	s.r.Use(hlog.AccessHandler(accessLog))
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(s.cors)

	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":"scramble-go","endpoints":["/health","GET /round","POST /round/new","POST /round/words","GET /leaderboard","/auth/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.mountRounds(s.r.With(s.withOptionalAuth))
	if d.Auth != nil {
		s.mountAuth()
	}

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})
	return s
}

// Handler exposes the router (for http.Server and tests).
func (s *Server) Handler() http.Handler { return s.r }

// Start serves HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// accessLog writes one line per request through the request-scoped logger.
func accessLog(r *http.Request, status, size int, d time.Duration) {
	hlog.FromRequest(r).Info().
		Str("req_id", chimw.GetReqID(r.Context())).
		Str("method", r.Method).
		Stringer("url", r.URL).
		Int("status", status).
		Int("size", size).
		Dur("duration", d).
		Msg("request")
}

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", s.opts.ClientOrigin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------- cookies -----------------------------------

const sessionCookieName = "scramble_session"

func (s *Server) sameSite() http.SameSite {
	if s.opts.Production {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

// sessionID returns the client's session cookie, setting a new one if absent.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := auth.GenID()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.Production,
		SameSite: s.sameSite(),
		Expires:  time.Now().Add(180 * 24 * time.Hour),
	})
	return id
}

func (s *Server) setAuthCookie(w http.ResponseWriter, token string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.Production,
		SameSite: s.sameSite(),
		Expires:  exp,
	})
}

func (s *Server) clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.Production,
		SameSite: s.sameSite(),
		MaxAge:   -1,
	})
}
