// internal/httpserver/routes_auth.go
//
// Account routes and auth middleware:
//   - POST /auth/signup, /auth/login, /auth/logout
//   - GET  /auth/me, /rounds/mine (require auth)
//
// Tokens come from "Authorization: Bearer <jwt>" or the auth cookie.
// Signing up or logging in claims the session's anonymous round history.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordscramble/apps/go-server/internal/auth"
	"github.com/robalobadob/wordscramble/apps/go-server/internal/history"
)

// authUser is placed into request context by auth middleware.
type authUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// ctxUserKey is the context key type for storing authUser.
type ctxUserKey struct{}

func currentUser(r *http.Request) *authUser {
	u, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	return u
}

func (s *Server) mountAuth() {
	s.r.Post("/auth/signup", s.handleSignup)
	s.r.Post("/auth/login", s.handleLogin)
	s.r.Post("/auth/logout", s.handleLogout)

	s.r.With(s.requireAuth).Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, currentUser(r))
	})
	s.r.With(s.requireAuth).Get("/rounds/mine", s.handleMyRounds)
}

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleSignup creates a user, sets the auth cookie, and claims session history.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_json"})
		return
	}
	u, err := s.deps.Auth.Signup(r.Context(), body.Username, body.Password)
	switch {
	case errors.Is(err, auth.ErrUsernameTaken):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "Username taken"})
		return
	case err != nil:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if !s.issueToken(w, u) {
		return
	}
	s.claimSession(w, r, u.ID)
	writeJSON(w, http.StatusOK, u)
}

// handleLogin authenticates, sets the auth cookie, and claims session history.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_json"})
		return
	}
	u, err := s.deps.Auth.Login(r.Context(), body.Username, body.Password)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			log.Error().Err(err).Msg("login")
		}
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid username or password"})
		return
	}
	if !s.issueToken(w, u) {
		return
	}
	s.claimSession(w, r, u.ID)
	writeJSON(w, http.StatusOK, map[string]string{"id": u.ID, "username": u.Username})
}

// handleLogout clears the auth cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearAuthCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleMyRounds lists the signed-in user's recent finished rounds.
func (s *Server) handleMyRounds(w http.ResponseWriter, r *http.Request) {
	if s.deps.History == nil {
		writeJSON(w, http.StatusOK, []history.Entry{})
		return
	}
	rows, err := s.deps.History.ForUser(r.Context(), currentUser(r).ID, 50)
	if err != nil {
		log.Error().Err(err).Msg("list rounds")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "db_error"})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) issueToken(w http.ResponseWriter, u *auth.User) bool {
	tok, exp, err := s.deps.Auth.SignToken(u)
	if err != nil {
		log.Error().Err(err).Msg("sign token")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "sign_failed"})
		return false
	}
	s.setAuthCookie(w, tok, exp)
	return true
}

// claimSession attaches the session's anonymous history to userID.
func (s *Server) claimSession(w http.ResponseWriter, r *http.Request, userID string) {
	if s.deps.History == nil {
		return
	}
	n, err := s.deps.History.ClaimAnonymous(r.Context(), s.sessionID(w, r), userID)
	if err != nil {
		log.Warn().Err(err).Str("user", userID).Msg("claim anonymous rounds")
		return
	}
	if n > 0 {
		log.Info().Str("user", userID).Int64("rounds", n).Msg("claimed anonymous rounds")
	}
}

// userFromRequest resolves the token on r to an existing user, or nil.
func (s *Server) userFromRequest(r *http.Request) *authUser {
	if s.deps.Auth == nil {
		return nil
	}
	tok := s.bearerOrCookie(r)
	if tok == "" {
		return nil
	}
	id, _, err := s.deps.Auth.ParseToken(tok)
	if err != nil {
		return nil
	}
	u, err := s.deps.Auth.FindByID(r.Context(), id)
	if err != nil {
		return nil
	}
	return &authUser{ID: u.ID, Username: u.Username}
}

// withOptionalAuth decorates requests with the user if a valid token is present.
// It never 401s; used for routes where guests are allowed.
func (s *Server) withOptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u := s.userFromRequest(r); u != nil {
			r = r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, u))
		}
		next.ServeHTTP(w, r)
	})
}

// requireAuth enforces a valid token for an existing user.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.bearerOrCookie(r) == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			return
		}
		u := s.userFromRequest(r)
		if u == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid token"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, u)))
	})
}

// bearerOrCookie extracts a token from the Authorization header or auth cookie.
func (s *Server) bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.opts.CookieName); err == nil {
		return c.Value
	}
	return ""
}
