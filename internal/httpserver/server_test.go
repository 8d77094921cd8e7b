package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/robalobadob/wordscramble/apps/go-server/assets"
	"github.com/robalobadob/wordscramble/apps/go-server/internal/auth"
	"github.com/robalobadob/wordscramble/apps/go-server/internal/db"
	"github.com/robalobadob/wordscramble/apps/go-server/internal/dictionary"
	"github.com/robalobadob/wordscramble/apps/go-server/internal/history"
	"github.com/robalobadob/wordscramble/apps/go-server/internal/store"
	"github.com/robalobadob/wordscramble/apps/go-server/internal/words"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	return newTestServerWith(t, store.NewMemoryStore())
}

func newTestServerWith(t *testing.T, sessions store.Store) http.Handler {
	t.Helper()
	conn, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	if err := db.Migrate(conn, assets.Migrations()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	srv := New(Deps{
		Sessions: sessions,
		Words:    words.List{"mountain"},
		Dict:     dictionary.New(language.English, []string{"mount", "nation", "unit"}),
		Lang:     language.English,
		History:  history.NewStore(conn),
		Auth:     auth.NewService(conn, "test-secret", 1),
	}, Options{ClientOrigin: "http://example.test"})
	return srv.Handler()
}

// client carries cookies between requests like a browser would.
type client struct {
	t       *testing.T
	h       http.Handler
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T, h http.Handler) *client {
	return &client{t: t, h: h, cookies: map[string]*http.Cookie{}}
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			c.t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	rec := newClient(t, newTestServer(t)).do(http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != `{"ok":true}` {
		t.Fatalf("health = %d %q", rec.Code, rec.Body.String())
	}
}

func TestRoundFlow(t *testing.T) {
	c := newClient(t, newTestServer(t))

	rec := c.do(http.MethodGet, "/round", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /round = %d", rec.Code)
	}
	round := decode[roundRes](t, rec)
	if round.RootWord != "mountain" || round.Score != 0 || len(round.UsedWords) != 0 {
		t.Fatalf("round = %+v", round)
	}
	if c.cookies[sessionCookieName] == nil {
		t.Fatal("session cookie not set")
	}

	res := decode[submitRes](t, c.do(http.MethodPost, "/round/words", submitReq{Word: " Mount\n"}))
	if !res.Accepted || res.Word != "mount" || res.Error != nil {
		t.Fatalf("mount = %+v", res)
	}
	if res.Round.Score != 5 || len(res.Round.UsedWords) != 1 || res.Round.UsedWords[0] != (wordRow{Word: "mount", Letters: 5}) {
		t.Fatalf("round after mount = %+v", res.Round)
	}

	rejections := []struct {
		word string
		kind string
	}{
		{"mnt", "too_short"},
		{"mountain", "is_root_word"},
		{"mount", "already_used"},
		{"zebra", "not_derivable"},
		{"amount", "not_a_real_word"},
	}
	for _, tc := range rejections {
		rec := c.do(http.MethodPost, "/round/words", submitReq{Word: tc.word})
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d", tc.word, rec.Code)
		}
		res := decode[submitRes](t, rec)
		if res.Accepted || res.Error == nil || string(res.Error.Kind) != tc.kind {
			t.Fatalf("%s: %+v", tc.word, res)
		}
		if res.Error.Title == "" || res.Error.Message == "" {
			t.Fatalf("%s: missing title/message", tc.word)
		}
		if res.Round.Score != 5 {
			t.Fatalf("%s: score changed to %d", tc.word, res.Round.Score)
		}
	}

	next := decode[roundRes](t, c.do(http.MethodPost, "/round/new", nil))
	if next.Score != 0 || len(next.UsedWords) != 0 || next.RootWord != "mountain" {
		t.Fatalf("new round = %+v", next)
	}

	lb := decode[lbRes](t, c.do(http.MethodGet, "/leaderboard", nil))
	if len(lb.Top) != 1 || lb.Top[0].Score != 5 || lb.Top[0].Player != "guest" || lb.Top[0].Words != 1 {
		t.Fatalf("leaderboard = %+v", lb.Top)
	}

	// An empty round is not archived.
	c.do(http.MethodPost, "/round/new", nil)
	if lb := decode[lbRes](t, c.do(http.MethodGet, "/leaderboard", nil)); len(lb.Top) != 1 {
		t.Fatalf("empty round archived: %+v", lb.Top)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	h := newTestServer(t)
	a, b := newClient(t, h), newClient(t, h)

	a.do(http.MethodPost, "/round/words", submitReq{Word: "mount"})
	res := decode[submitRes](t, b.do(http.MethodPost, "/round/words", submitReq{Word: "mount"}))
	if !res.Accepted {
		t.Fatalf("second session saw first session's words: %+v", res)
	}
}

func TestSubmitBadJSON(t *testing.T) {
	rec := newClient(t, newTestServer(t)).do(http.MethodPost, "/round/words", "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	assertJSONError(t, rec, "bad_json")
}

func assertJSONError(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("content type = %q", ct)
	}
	body := decode[map[string]string](t, rec)
	if body["error"] != want {
		t.Fatalf("error = %q, want %q", body["error"], want)
	}
}

func TestErrorResponsesAreJSON(t *testing.T) {
	c := newClient(t, newTestServer(t))
	assertJSONError(t, c.do(http.MethodPost, "/auth/login", "{"), "invalid_json")
	assertJSONError(t, c.do(http.MethodPost, "/auth/signup", "nope"), "invalid_json")
	assertJSONError(t, c.do(http.MethodPost, "/auth/login", credentialsReq{Username: "ghost", Password: "password1"}), "Invalid username or password")
	assertJSONError(t, c.do(http.MethodGet, "/auth/me", nil), "Unauthorized")
	assertJSONError(t, c.do(http.MethodGet, "/rounds/mine", nil), "Unauthorized")

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	assertJSONError(t, rec, "Invalid token")
}

func TestIdleSessionsAreSwept(t *testing.T) {
	sessions := store.NewMemoryStore()
	h := newTestServerWith(t, sessions)

	for i := 0; i < 200; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/round", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("GET /round = %d", rec.Code)
		}
	}
	player := newClient(t, h)
	player.do(http.MethodPost, "/round/words", submitReq{Word: "mount"})

	time.Sleep(60 * time.Millisecond)
	ctx := context.Background()
	sid := player.cookies[sessionCookieName].Value
	if _, err := sessions.Get(ctx, sid); err != nil {
		t.Fatalf("player session: %v", err)
	}
	n, err := sessions.Sweep(ctx, 30*time.Millisecond)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 200 {
		t.Fatalf("evicted %d cookieless sessions, want 200", n)
	}

	// The active player keeps their round.
	if round := decode[roundRes](t, player.do(http.MethodGet, "/round", nil)); round.Score != 5 {
		t.Fatalf("player round lost: %+v", round)
	}

	// An evicted session starts over on its next visit.
	time.Sleep(60 * time.Millisecond)
	if n, _ := sessions.Sweep(ctx, 30*time.Millisecond); n != 1 {
		t.Fatalf("evicted %d, want 1", n)
	}
	if round := decode[roundRes](t, player.do(http.MethodGet, "/round", nil)); round.Score != 0 || round.RootWord == "" {
		t.Fatalf("round after eviction = %+v", round)
	}
}

func TestAuthAndHistory(t *testing.T) {
	c := newClient(t, newTestServer(t))

	if rec := c.do(http.MethodGet, "/auth/me", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous /auth/me = %d", rec.Code)
	}

	// Play one round as a guest, then sign up: the round is claimed.
	c.do(http.MethodPost, "/round/words", submitReq{Word: "nation"})
	c.do(http.MethodPost, "/round/new", nil)

	rec := c.do(http.MethodPost, "/auth/signup", credentialsReq{Username: "alice", Password: "correct horse"})
	if rec.Code != http.StatusOK {
		t.Fatalf("signup = %d %s", rec.Code, rec.Body.String())
	}
	if c.cookies["scramble_token"] == nil {
		t.Fatal("auth cookie not set")
	}
	if rec := c.do(http.MethodPost, "/auth/signup", credentialsReq{Username: "alice", Password: "correct horse"}); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate signup = %d", rec.Code)
	}

	me := decode[authUser](t, c.do(http.MethodGet, "/auth/me", nil))
	if me.Username != "alice" {
		t.Fatalf("me = %+v", me)
	}

	// A round finished while signed in is attributed to the user.
	c.do(http.MethodPost, "/round/words", submitReq{Word: "unit"})
	c.do(http.MethodPost, "/round/new", nil)

	mine := decode[[]history.Entry](t, c.do(http.MethodGet, "/rounds/mine", nil))
	if len(mine) != 2 {
		t.Fatalf("rounds/mine = %+v", mine)
	}
	lb := decode[lbRes](t, c.do(http.MethodGet, "/leaderboard", nil))
	for _, row := range lb.Top {
		if row.Player != "alice" {
			t.Fatalf("leaderboard row not attributed: %+v", row)
		}
	}

	c.do(http.MethodPost, "/auth/logout", nil)
	if rec := c.do(http.MethodGet, "/auth/me", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("/auth/me after logout = %d", rec.Code)
	}

	if rec := c.do(http.MethodPost, "/auth/login", credentialsReq{Username: "alice", Password: "wrong password"}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login = %d", rec.Code)
	}
	if rec := c.do(http.MethodPost, "/auth/login", credentialsReq{Username: "ALICE", Password: "correct horse"}); rec.Code != http.StatusOK {
		t.Fatalf("login = %d", rec.Code)
	}
}

func TestBearerToken(t *testing.T) {
	h := newTestServer(t)
	c := newClient(t, h)
	c.do(http.MethodPost, "/auth/signup", credentialsReq{Username: "bob_1", Password: "password1"})
	tok := c.cookies["scramble_token"].Value

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("bearer /auth/me = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad bearer = %d", rec.Code)
	}
}

func TestCORSAndNotFound(t *testing.T) {
	c := newClient(t, newTestServer(t))
	rec := c.do(http.MethodOptions, "/round", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://example.test" {
		t.Fatalf("allow origin = %q", got)
	}

	rec = c.do(http.MethodGet, "/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("404 = %d", rec.Code)
	}
	body := decode[map[string]string](t, rec)
	if body["error"] != "not_found" || body["path"] != "/nope" {
		t.Fatalf("404 body = %v", body)
	}
}
