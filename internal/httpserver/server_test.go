package httpserver

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/verba-game/go-server/internal/catalog"
	"github.com/verba-game/go-server/internal/game"
	"github.com/verba-game/go-server/internal/service"
	"github.com/verba-game/go-server/internal/store"
	"github.com/verba-game/go-server/internal/wiki"
)

var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

type stubWiki struct {
	defs []wiki.Definition
	err  error
}

func (s *stubWiki) Definitions(ctx context.Context, word string) ([]wiki.Definition, error) {
	return s.defs, s.err
}

type testEnv struct {
	srv    *httptest.Server
	store  *store.SQLite
	wordID int64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	schema, err := os.ReadFile(filepath.Join("..", "..", "sql", "001_init.sql"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		t.Fatal(err)
	}

	st := store.NewSQLite(db)
	ctx := context.Background()
	for _, name := range []string{"reds", "blues"} {
		if err := st.InsertTeam(ctx, name); err != nil {
			t.Fatal(err)
		}
	}
	if err := st.InsertVoc(ctx, "разг.", "разговорное"); err != nil {
		t.Fatal(err)
	}
	wordID, err := st.InsertWord(ctx, catalog.Word{
		Body: "дом", Status: catalog.WordDraft, LoadStatus: catalog.NotLoaded, Timestamp: 100,
	})
	if err != nil {
		t.Fatal(err)
	}
	hash, err := service.HashPassword("s3cret-pass")
	if err != nil {
		t.Fatal(err)
	}
	if err := st.InsertUser(ctx, "admin@example.com", hash, testNow); err != nil {
		t.Fatal(err)
	}

	secret := []byte("test-secret")
	games := &service.Games{
		Store:    st,
		Now:      func() time.Time { return testNow },
		NewToken: func() string { return "tok-1" },
	}
	words := &service.Words{
		Store: st,
		Wiki: &stubWiki{defs: []wiki.Definition{
			{Labels: []string{"разг."}, Text: "жилое здание, строение"},
		}},
		Now: func() time.Time { return testNow },
	}
	users := service.NewUsers(st, secret, 30)

	s := New(st, games, words, users, secret)
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, store: st, wordID: wordID}
}

type env struct {
	Code    int             `json:"code"`
	Message *string         `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) (int, env) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var out env
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("decode envelope: %v", err)
		}
	}
	return resp.StatusCode, out
}

func TestPing(t *testing.T) {
	e := newTestEnv(t)
	status, out := e.do(t, http.MethodGet, "/api/v1/ping", nil, "")
	if status != http.StatusOK || out.Code != 0 {
		t.Fatalf("status=%d envelope=%+v", status, out)
	}
	var pong string
	if err := json.Unmarshal(out.Data, &pong); err != nil || pong != "pong" {
		t.Fatalf("data = %s", out.Data)
	}
}

func TestGameFlow(t *testing.T) {
	e := newTestEnv(t)

	status, out := e.do(t, http.MethodPost, "/api/v1/games", service.CreateGameRequest{
		Penalty:   false,
		RoundTime: 60,
		TeamIDs:   []int64{1, 2},
		WordCount: 1,
	}, "")
	if status != http.StatusOK || out.Code != 0 {
		t.Fatalf("create: status=%d envelope=%+v", status, out)
	}
	var created game.GameView
	if err := json.Unmarshal(out.Data, &created); err != nil {
		t.Fatal(err)
	}
	if created.State != "active" || created.Token != "tok-1" || len(created.TeamResults) != 2 {
		t.Fatalf("created view: %+v", created)
	}

	// Wrong token is a business error, still HTTP 200.
	status, out = e.do(t, http.MethodPut, "/api/v1/games", service.CompleteRoundRequest{
		ID:          created.ID,
		Token:       "wrong",
		WordResults: []service.WordOutcome{{Result: true, WordID: e.wordID}},
	}, "")
	if status != http.StatusOK || out.Code != 8 {
		t.Fatalf("wrong token: status=%d envelope=%+v", status, out)
	}

	status, out = e.do(t, http.MethodPut, "/api/v1/games", service.CompleteRoundRequest{
		ID:          created.ID,
		Token:       "tok-1",
		WordResults: []service.WordOutcome{{Result: true, WordID: e.wordID}},
	}, "")
	if status != http.StatusOK || out.Code != 0 {
		t.Fatalf("complete: status=%d envelope=%+v", status, out)
	}
	var ended game.GameView
	if err := json.Unmarshal(out.Data, &ended); err != nil {
		t.Fatal(err)
	}
	if ended.State != "ended" || ended.Winner == nil {
		t.Fatalf("ended view: %+v", ended)
	}
	if ended.Winner.Score != 1 || ended.Winner.WordResults[0].Word.Body != "дом" {
		t.Fatalf("winner: %+v", ended.Winner)
	}

	status, out = e.do(t, http.MethodGet, fmt.Sprintf("/api/v1/games/%d", created.ID), nil, "")
	if status != http.StatusOK || out.Code != 0 {
		t.Fatalf("view: status=%d envelope=%+v", status, out)
	}
}

func TestGameViewErrors(t *testing.T) {
	e := newTestEnv(t)

	status, out := e.do(t, http.MethodGet, "/api/v1/games/999", nil, "")
	if status != http.StatusOK || out.Code != 3 {
		t.Fatalf("missing game: status=%d envelope=%+v", status, out)
	}
	if out.Message == nil {
		t.Fatal("error envelope has no message")
	}

	status, out = e.do(t, http.MethodGet, "/api/v1/games/abc", nil, "")
	if status != http.StatusOK || out.Code != 4 {
		t.Fatalf("bad id: status=%d envelope=%+v", status, out)
	}
}

func TestBadJSONIsBadRequest(t *testing.T) {
	e := newTestEnv(t)
	resp, err := http.Post(e.srv.URL+"/api/v1/games", "application/json", bytes.NewBufferString("{nope"))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestAdminGuard(t *testing.T) {
	e := newTestEnv(t)

	status, _ := e.do(t, http.MethodGet, "/api/v1/admin/words/stats", nil, "")
	if status != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d", status)
	}

	status, _ = e.do(t, http.MethodGet, "/api/v1/admin/words/stats", nil, "garbage")
	if status != http.StatusUnauthorized {
		t.Fatalf("bad token: status = %d", status)
	}
}

func TestAdminFlow(t *testing.T) {
	e := newTestEnv(t)

	// Wrong password is a business error inside the envelope.
	status, out := e.do(t, http.MethodPost, "/api/v1/admin/users/sign_in",
		map[string]string{"email": "admin@example.com", "password": "nope"}, "")
	if status != http.StatusOK || out.Code != 9 {
		t.Fatalf("bad login: status=%d envelope=%+v", status, out)
	}

	status, out = e.do(t, http.MethodPost, "/api/v1/admin/users/sign_in",
		map[string]string{"email": "admin@example.com", "password": "s3cret-pass"}, "")
	if status != http.StatusOK || out.Code != 0 {
		t.Fatalf("login: status=%d envelope=%+v", status, out)
	}
	var login service.LoginResponse
	if err := json.Unmarshal(out.Data, &login); err != nil {
		t.Fatal(err)
	}
	if login.Token == "" {
		t.Fatal("empty token")
	}

	status, out = e.do(t, http.MethodPut, "/api/v1/admin/words/load_definitions",
		service.LoadDefinitionsRequest{ID: e.wordID, Timestamp: 100}, login.Token)
	if status != http.StatusOK || out.Code != 0 {
		t.Fatalf("load definitions: status=%d envelope=%+v", status, out)
	}

	status, out = e.do(t, http.MethodPost, "/api/v1/admin/words/search", service.SearchWordsRequest{
		Text:       "до",
		FieldOrder: service.FieldOrder{FieldMatch: "body", IsAsc: true},
	}, login.Token)
	if status != http.StatusOK || out.Code != 0 {
		t.Fatalf("search: status=%d envelope=%+v", status, out)
	}
	var views []service.WordView
	if err := json.Unmarshal(out.Data, &views); err != nil {
		t.Fatal(err)
	}
	if len(views) != 1 || views[0].LoadStatus != "loaded" {
		t.Fatalf("search views: %+v", views)
	}
	if len(views[0].Definitions) != 1 || views[0].Definitions[0].Voc == nil {
		t.Fatalf("definitions: %+v", views[0].Definitions)
	}

	vocID := views[0].Definitions[0].Voc.ID
	status, out = e.do(t, http.MethodPut, "/api/v1/admin/words", service.UpdateWordRequest{
		ID:         e.wordID,
		Status:     "active",
		Difficulty: 1,
		Timestamp:  views[0].Timestamp,
		Definitions: []service.DefinitionEditRequest{
			{Definition: "жилое здание, строение", Status: "active", VocID: &vocID},
		},
	}, login.Token)
	if status != http.StatusOK || out.Code != 0 {
		t.Fatalf("update: status=%d envelope=%+v", status, out)
	}

	status, out = e.do(t, http.MethodGet, "/api/v1/admin/words/stats", nil, login.Token)
	if status != http.StatusOK || out.Code != 0 {
		t.Fatalf("stats: status=%d envelope=%+v", status, out)
	}
	var stats service.WordStatsView
	if err := json.Unmarshal(out.Data, &stats); err != nil {
		t.Fatal(err)
	}
	if stats.Total != 1 || stats.Status.Active != 1 {
		t.Fatalf("stats: %+v", stats)
	}
}
