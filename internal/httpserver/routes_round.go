// internal/httpserver/routes_round.go
//
// HTTP routes for playing a round:
//   - GET  /round        → current round (started on first visit)
//   - POST /round/new    → archive the current round, start a new one
//   - POST /round/words  → submit a word
//   - GET  /leaderboard  → best finished rounds
//
// Word rejections are not HTTP errors: /round/words answers 200 with
// accepted=false and the rejection's kind/title/message.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordscramble/apps/go-server/internal/game"
	"github.com/robalobadob/wordscramble/apps/go-server/internal/history"
	"github.com/robalobadob/wordscramble/apps/go-server/internal/store"
)

func (s *Server) mountRounds(r chi.Router) {
	r.Get("/round", s.handleRound)
	r.Post("/round/new", s.handleNewRound)
	r.Post("/round/words", s.handleSubmit)
	r.Get("/leaderboard", s.handleLeaderboard)
}

// wordRow is one accepted word with its letter count.
type wordRow struct {
	Word    string `json:"word"`
	Letters int    `json:"letters"`
}

// roundRes is the JSON view of a game.Round.
type roundRes struct {
	RootWord  string    `json:"rootWord"`
	UsedWords []wordRow `json:"usedWords"`
	Score     int       `json:"score"`
	StartedAt time.Time `json:"startedAt"`
}

func toRoundRes(r game.Round) roundRes {
	rows := make([]wordRow, 0, len(r.UsedWords))
	for _, w := range r.UsedWords {
		rows = append(rows, wordRow{Word: w, Letters: game.Letters(w)})
	}
	return roundRes{RootWord: r.RootWord, UsedWords: rows, Score: r.Score, StartedAt: r.StartedAt}
}

func (s *Server) newState() *game.State {
	return game.NewState(s.deps.Dict, s.deps.Lang)
}

// ensureRound starts a round if the state has never had one.
func (s *Server) ensureRound(st *game.State) {
	if st.CurrentRound().RootWord == "" {
		st.StartNewRound(s.deps.Words)
	}
}

// handleRound returns the session's current round, starting one for new sessions.
func (s *Server) handleRound(w http.ResponseWriter, r *http.Request) {
	sid := s.sessionID(w, r)
	snap, err := s.deps.Sessions.Get(r.Context(), sid)
	if errors.Is(err, store.ErrNotFound) {
		err = s.deps.Sessions.Update(r.Context(), sid, s.newState, func(st *game.State) error {
			s.ensureRound(st)
			snap = st.CurrentRound()
			return nil
		})
	}
	if err != nil {
		log.Error().Err(err).Msg("load round")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "session_failed"})
		return
	}
	writeJSON(w, http.StatusOK, toRoundRes(snap))
}

// handleNewRound replaces the session's round and archives the old one.
func (s *Server) handleNewRound(w http.ResponseWriter, r *http.Request) {
	sid := s.sessionID(w, r)
	var prev, next game.Round
	err := s.deps.Sessions.Update(r.Context(), sid, s.newState, func(st *game.State) error {
		prev = st.CurrentRound()
		next = st.StartNewRound(s.deps.Words)
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("new round")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "session_failed"})
		return
	}
	s.archive(r, sid, prev)
	log.Debug().Str("session", sid).Str("root", next.RootWord).Msg("round started")
	writeJSON(w, http.StatusOK, toRoundRes(next))
}

// archive records prev in history if anything was accepted. Best effort.
func (s *Server) archive(r *http.Request, sid string, prev game.Round) {
	if s.deps.History == nil || prev.RootWord == "" || len(prev.UsedWords) == 0 {
		return
	}
	e := history.Entry{
		RootWord:   prev.RootWord,
		Words:      len(prev.UsedWords),
		Score:      prev.Score,
		StartedAt:  prev.StartedAt,
		FinishedAt: time.Now(),
	}
	if me := currentUser(r); me != nil {
		e.UserID = me.ID
	} else {
		e.AnonymousID = sid
	}
	if err := s.deps.History.Record(r.Context(), e); err != nil {
		log.Warn().Err(err).Str("session", sid).Msg("archive round")
	}
}

type submitReq struct {
	Word string `json:"word"`
}

type submitRes struct {
	Accepted bool          `json:"accepted"`
	Word     string        `json:"word"`
	Error    *game.Outcome `json:"error,omitempty"`
	Round    roundRes      `json:"round"`
}

// handleSubmit runs a word through the validation pipeline.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_json"})
		return
	}
	sid := s.sessionID(w, r)

	var (
		word string
		out  game.Outcome
		snap game.Round
	)
	err := s.deps.Sessions.Update(r.Context(), sid, s.newState, func(st *game.State) error {
		s.ensureRound(st)
		word, out = st.Submit(req.Word)
		snap = st.CurrentRound()
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("submit word")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "session_failed"})
		return
	}

	res := submitRes{Accepted: out.Accepted(), Word: word, Round: toRoundRes(snap)}
	if !out.Accepted() {
		res.Error = &out
		log.Debug().Str("session", sid).Str("word", word).Str("kind", string(out.Kind)).Msg("word rejected")
	}
	writeJSON(w, http.StatusOK, res)
}

type lbRes struct {
	Top []history.LBRow `json:"top"`
}

// handleLeaderboard returns the top finished rounds (?limit=N, default 20).
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.deps.History == nil {
		writeJSON(w, http.StatusOK, lbRes{Top: []history.LBRow{}})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.deps.History.Top(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("leaderboard")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "db_error"})
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Top: rows})
}

// writeJSON writes v with status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
