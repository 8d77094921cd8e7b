// internal/history/store.go
//
// Finished-round history and the leaderboard.
// A round is archived when its session starts a new one, provided at least
// one word was accepted. Rows are owned by a user id or an anonymous id.

package history

import (
	"context"
	"database/sql"
	"time"
)

// Entry is one finished round.
type Entry struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"-"`
	AnonymousID string    `json:"-"`
	RootWord    string    `json:"rootWord"`
	Words       int       `json:"words"`
	Score       int       `json:"score"`
	StartedAt   time.Time `json:"startedAt"`
	FinishedAt  time.Time `json:"finishedAt"`
}

// LBRow is a leaderboard line.
type LBRow struct {
	Player     string    `json:"player"`
	RootWord   string    `json:"rootWord"`
	Words      int       `json:"words"`
	Score      int       `json:"score"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Store reads and writes the rounds table.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Record inserts a finished round. Exactly one of UserID/AnonymousID should be set.
func (s *Store) Record(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO rounds(user_id, anonymous_id, root_word, words, score, started_at, finished_at)
		 VALUES(?,?,?,?,?,?,?)`,
		nullable(e.UserID), nullable(e.AnonymousID), e.RootWord, e.Words, e.Score,
		formatTime(e.StartedAt), formatTime(e.FinishedAt),
	)
	return err
}

// Top returns the highest-scoring rounds; earlier finishes win ties.
func (s *Store) Top(ctx context.Context, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT COALESCE(u.username, 'guest'), r.root_word, r.words, r.score, r.finished_at
		 FROM rounds r LEFT JOIN users u ON u.id = r.user_id
		 ORDER BY r.score DESC, r.finished_at ASC, r.id ASC
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]LBRow, 0, limit)
	for rows.Next() {
		var r LBRow
		var finished string
		if err := rows.Scan(&r.Player, &r.RootWord, &r.Words, &r.Score, &finished); err != nil {
			return nil, err
		}
		r.FinishedAt = parseTime(finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

// ForUser returns a user's most recent rounds.
func (s *Store) ForUser(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, root_word, words, score, started_at, finished_at
		 FROM rounds WHERE user_id=?
		 ORDER BY finished_at DESC, id DESC
		 LIMIT ?`, userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Entry{}
	for rows.Next() {
		e := Entry{UserID: userID}
		var started, finished string
		if err := rows.Scan(&e.ID, &e.RootWord, &e.Words, &e.Score, &started, &finished); err != nil {
			return nil, err
		}
		e.StartedAt, e.FinishedAt = parseTime(started), parseTime(finished)
		out = append(out, e)
	}
	return out, rows.Err()
}

// ClaimAnonymous moves rounds played under anonID to userID.
func (s *Store) ClaimAnonymous(ctx context.Context, anonID, userID string) (int64, error) {
	if anonID == "" || userID == "" {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE rounds SET user_id=?, anonymous_id=NULL WHERE anonymous_id=?`, userID, anonID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }

// parseTime parses RFC3339 timestamps; on error returns zero time.
func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
