// internal/auth/auth.go
//
// Optional player accounts.
// Responsibilities:
//   - Sign-up and login against the users table (bcrypt password hashes).
//   - HS256 JWT issue/verify; the subject is the user id.
//
// Accounts only attribute round history to a name; play never requires one.

package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUsernameTaken      = errors.New("username taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")
)

// User matches the users table shape.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Service handles users and tokens.
type Service struct {
	db     *sql.DB
	secret []byte
	ttl    time.Duration
	cost   int
}

// NewService returns a Service signing with secret; tokens live expiresDays.
func NewService(db *sql.DB, secret string, expiresDays int) *Service {
	if expiresDays <= 0 {
		expiresDays = 14
	}
	return &Service{
		db:     db,
		secret: []byte(secret),
		ttl:    time.Duration(expiresDays) * 24 * time.Hour,
		cost:   bcrypt.DefaultCost,
	}
}

// Signup validates input, hashes the password and inserts a new user.
func (s *Service) Signup(ctx context.Context, username, pw string) (*User, error) {
	username = strings.TrimSpace(username)
	if err := ValidateSignup(username, pw); err != nil {
		return nil, err
	}
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE lower(username)=lower(?)`, username).Scan(&exists)
	if err == nil {
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lookup username: %w", err)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), s.cost)
	if err != nil {
		return nil, err
	}
	u := &User{
		ID:           GenID(),
		Username:     username,
		PasswordHash: string(h),
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, created_at) VALUES (?,?,?,?)`,
		u.ID, u.Username, u.PasswordHash, u.CreatedAt.Format(time.RFC3339)); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// Login checks credentials. Unknown users and wrong passwords both yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, pw string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE lower(username)=lower(?)`,
		strings.TrimSpace(username))
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(pw)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// FindByID loads a user.
func (s *Service) FindByID(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE id=?`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	var created string
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &created); err != nil {
		return nil, err
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &u, nil
}

// claims carries the username alongside the registered claims.
type claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// SignToken issues a token for u and returns it with its expiry.
func (s *Service) SignToken(u *User) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.ttl)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	ss, err := t.SignedString(s.secret)
	return ss, exp, err
}

// ParseToken verifies tok and returns the user id and username it carries.
func (s *Service) ParseToken(tok string) (id, username string, err error) {
	var c claims
	t, err := jwt.ParseWithClaims(tok, &c, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !t.Valid || c.Subject == "" || c.Username == "" {
		return "", "", ErrInvalidToken
	}
	return c.Subject, c.Username, nil
}

// ValidateSignup enforces basic username/password rules.
func ValidateSignup(u, p string) error {
	if len(u) < 3 || len(u) > 24 {
		return errors.New("username must be 3–24 chars")
	}
	for _, r := range u {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return errors.New("username: letters, numbers, underscore only")
		}
	}
	if len(p) < 8 || len(p) > 100 {
		return errors.New("password must be 8–100 chars")
	}
	return nil
}

// GenID creates a 22-char URL-safe, crypto-random identifier.
func GenID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
