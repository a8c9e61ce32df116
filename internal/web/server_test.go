package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/csheth/edugenius/internal/auth"
	"github.com/csheth/edugenius/internal/history"
	"github.com/csheth/edugenius/internal/llm"
	"github.com/csheth/edugenius/internal/settings"
)

type fakeLLM struct {
	content string
	err     error
	started chan llm.Request
	release chan struct{}
}

func (f *fakeLLM) Assist(ctx context.Context, req llm.Request) (llm.Response, error) {
	if f.started != nil {
		f.started <- req
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return llm.Response{}, ctx.Err()
		}
	}
	if f.err != nil {
		return llm.Response{}, f.err
	}
	return llm.Response{Title: llm.ResponseTitle(req.Subject), Content: f.content}, nil
}

func (*fakeLLM) Name() string { return "fake" }

type wireBlock struct {
	Kind  string `json:"kind"`
	Level int    `json:"level"`
	Text  string `json:"text"`
}

type wireAnswer struct {
	Title   string         `json:"title"`
	Content string         `json:"content"`
	Blocks  []wireBlock    `json:"blocks"`
	Outline []outlineEntry `json:"outline"`
	HTML    string      `json:"html"`
	Error   string      `json:"error"`
}

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv
}

func newTestAuth(t *testing.T) *auth.Authenticator {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("letmein"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	authn, err := auth.New(auth.Config{Emails: []string{"admin@example.com"}, PasswordHash: string(hash)})
	if err != nil {
		t.Fatalf("new authenticator: %v", err)
	}
	return authn
}

func newRequest(t *testing.T, method, path string, body any, headers map[string]string) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func do(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	return serve(h, newRequest(t, method, path, body, headers))
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealthAndIndex(t *testing.T) {
	srv := newTestServer(t, Config{})

	rec := do(t, srv, http.MethodGet, "/healthz", nil, nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected health response %d %q", rec.Code, rec.Body.String())
	}
	rec = do(t, srv, http.MethodGet, "/", nil, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "EduGenius") {
		t.Fatalf("unexpected index response %d", rec.Code)
	}
}

func TestCatalogListsSelections(t *testing.T) {
	srv := newTestServer(t, Config{LLM: &fakeLLM{}})
	rec := do(t, srv, http.MethodGet, "/api/catalog", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	got := decode[catalogResponse](t, rec)
	if len(got.Subjects) == 0 || got.Subjects[0].ID != "Mathematics" {
		t.Fatalf("unexpected subjects %+v", got.Subjects)
	}
	if len(got.Modes) != 4 || got.Modes[0].Label != "Problem Solver" {
		t.Fatalf("unexpected modes %+v", got.Modes)
	}
	if len(got.Languages) != 4 || got.Provider != "fake" || !got.Ads.Banner.Active {
		t.Fatalf("unexpected catalog %+v", got)
	}
}

func TestAskReturnsRenderedAnswer(t *testing.T) {
	log := history.Open(filepath.Join(t.TempDir(), "history.json"))
	srv := newTestServer(t, Config{
		LLM:     &fakeLLM{content: "# Kinematics\n- **v** = u + at\n<script>x</script>"},
		History: log,
	})

	rec := do(t, srv, http.MethodPost, "/api/ask", askRequest{Subject: "Physics", Mode: "notes", Language: "hindi", Query: "equations of motion"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if _, err := uuid.Parse(rec.Header().Get(ClientHeader)); err != nil {
		t.Fatalf("expected an issued client id, got %q", rec.Header().Get(ClientHeader))
	}
	got := decode[wireAnswer](t, rec)
	if got.Title != "Physics - Global Academy" {
		t.Fatalf("unexpected title %q", got.Title)
	}
	if len(got.Blocks) != 3 || got.Blocks[0].Kind != "heading" || got.Blocks[1].Kind != "bullet" {
		t.Fatalf("unexpected blocks %+v", got.Blocks)
	}
	if !strings.Contains(got.HTML, "<h1") || strings.Contains(got.HTML, "<script>") {
		t.Fatalf("unexpected html %q", got.HTML)
	}
	if len(got.Outline) != 1 || got.Outline[0] != (outlineEntry{Line: 0, Level: 1, Text: "Kinematics"}) {
		t.Fatalf("unexpected outline %+v", got.Outline)
	}

	entries, err := log.Load()
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one recorded entry, got %d (%v)", len(entries), err)
	}
	if entries[0].Mode != "NOTES" || entries[0].Language != "Hindi" {
		t.Fatalf("unexpected entry %+v", entries[0])
	}
}

func TestAskStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		body   any
		status int
	}{
		{name: "empty query", cfg: Config{LLM: &fakeLLM{}}, body: askRequest{Query: "   "}, status: http.StatusBadRequest},
		{name: "unknown subject", cfg: Config{LLM: &fakeLLM{}}, body: askRequest{Subject: "Alchemy", Query: "q"}, status: http.StatusBadRequest},
		{name: "unknown mode", cfg: Config{LLM: &fakeLLM{}}, body: askRequest{Mode: "essay", Query: "q"}, status: http.StatusBadRequest},
		{name: "unknown field", cfg: Config{LLM: &fakeLLM{}}, body: map[string]string{"question": "q"}, status: http.StatusBadRequest},
		{name: "no provider", cfg: Config{}, body: askRequest{Query: "q"}, status: http.StatusServiceUnavailable},
		{name: "collaborator failure", cfg: Config{LLM: &fakeLLM{err: errors.New("boom")}}, body: askRequest{Query: "q"}, status: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.cfg)
			rec := do(t, srv, http.MethodPost, "/api/ask", tt.body, nil)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
		})
	}
}

func TestAskFailureUsesUniformMessage(t *testing.T) {
	srv := newTestServer(t, Config{LLM: &fakeLLM{err: errors.New("dial tcp: refused")}})
	rec := do(t, srv, http.MethodPost, "/api/ask", askRequest{Query: "q"}, nil)
	got := decode[wireAnswer](t, rec)
	if got.Error != llm.ConnectionErrorMessage {
		t.Fatalf("unexpected error %q", got.Error)
	}
}

func TestAskRejectsSecondRequestFromSameClient(t *testing.T) {
	fake := &fakeLLM{content: "done", started: make(chan llm.Request, 1), release: make(chan struct{})}
	srv := newTestServer(t, Config{LLM: fake})
	client := uuid.NewString()
	headers := map[string]string{ClientHeader: client}

	firstReq := newRequest(t, http.MethodPost, "/api/ask", askRequest{Query: "first"}, headers)
	first := make(chan int, 1)
	go func() { first <- serve(srv, firstReq).Code }()
	select {
	case <-fake.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first request never reached the model")
	}

	if rec := do(t, srv, http.MethodPost, "/api/ask", askRequest{Query: "second"}, headers); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 while outstanding, got %d", rec.Code)
	}

	otherReq := newRequest(t, http.MethodPost, "/api/ask", askRequest{Query: "other"}, map[string]string{ClientHeader: uuid.NewString()})
	other := make(chan int, 1)
	go func() { other <- serve(srv, otherReq).Code }()
	select {
	case <-fake.started:
	case <-time.After(2 * time.Second):
		t.Fatal("a different client should not be blocked")
	}

	close(fake.release)
	if code := <-first; code != http.StatusOK {
		t.Fatalf("first request finished with %d", code)
	}
	if code := <-other; code != http.StatusOK {
		t.Fatalf("other client finished with %d", code)
	}
}

func TestRenderEndpoint(t *testing.T) {
	srv := newTestServer(t, Config{})
	rec := do(t, srv, http.MethodPost, "/api/render", renderRequest{Text: "### Title\n\n3. Third point"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var got struct {
		Blocks  []wireBlock    `json:"blocks"`
		Outline []outlineEntry `json:"outline"`
		HTML    string         `json:"html"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []string{"heading", "spacer", "ordered"}
	if len(got.Blocks) != len(want) {
		t.Fatalf("unexpected blocks %+v", got.Blocks)
	}
	for i, kind := range want {
		if got.Blocks[i].Kind != kind {
			t.Fatalf("block %d kind = %q, want %q", i, got.Blocks[i].Kind, kind)
		}
	}
	if got.Blocks[0].Level != 3 || got.Blocks[0].Text != "Title" {
		t.Fatalf("unexpected heading %+v", got.Blocks[0])
	}
	if !strings.Contains(got.HTML, "<h3") {
		t.Fatalf("unexpected html %q", got.HTML)
	}
	if len(got.Outline) != 1 || got.Outline[0] != (outlineEntry{Line: 0, Level: 3, Text: "Title"}) {
		t.Fatalf("unexpected outline %+v", got.Outline)
	}
}

func TestRenderOutlineListsHeadingsInOrder(t *testing.T) {
	srv := newTestServer(t, Config{})
	rec := do(t, srv, http.MethodPost, "/api/render", renderRequest{Text: "# Forces\nbody\n## Newton\n- inertia\n#### not a heading\n### Friction"}, nil)
	got := decode[wireAnswer](t, rec)
	want := []outlineEntry{
		{Line: 0, Level: 1, Text: "Forces"},
		{Line: 2, Level: 2, Text: "Newton"},
		{Line: 5, Level: 3, Text: "Friction"},
	}
	if len(got.Outline) != len(want) {
		t.Fatalf("unexpected outline %+v", got.Outline)
	}
	for i := range want {
		if got.Outline[i] != want[i] {
			t.Fatalf("outline[%d] = %+v, want %+v", i, got.Outline[i], want[i])
		}
	}

	rec = do(t, srv, http.MethodPost, "/api/render", renderRequest{Text: "plain text"}, nil)
	if !strings.Contains(rec.Body.String(), `"outline":[]`) {
		t.Fatalf("outline should be an empty list, got %s", rec.Body.String())
	}
}

func TestHistoryEndpoint(t *testing.T) {
	log := history.Open(filepath.Join(t.TempDir(), "history.json"))
	for _, q := range []string{"one", "two", "three"} {
		if err := log.Record(llm.Request{Subject: "Physics", Query: q}, llm.Response{Content: q}, time.Second); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	srv := newTestServer(t, Config{History: log})

	rec := do(t, srv, http.MethodGet, "/api/history?limit=2", nil, nil)
	got := decode[historyResponse](t, rec)
	if len(got.Entries) != 2 || got.Entries[0].Query != "three" {
		t.Fatalf("unexpected entries %+v", got.Entries)
	}
	if rec := do(t, srv, http.MethodGet, "/api/history?limit=zero", nil, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", rec.Code)
	}

	empty := newTestServer(t, Config{})
	rec = do(t, empty, http.MethodGet, "/api/history", nil, nil)
	if !strings.Contains(rec.Body.String(), `"entries":[]`) {
		t.Fatalf("unexpected empty history %q", rec.Body.String())
	}
}

func signIn(t *testing.T, srv *Server) map[string]string {
	t.Helper()
	rec := do(t, srv, http.MethodPost, "/api/admin/login", loginRequest{Email: "Admin@Example.com", Password: "letmein"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed %d: %s", rec.Code, rec.Body.String())
	}
	session := decode[auth.Session](t, rec)
	return map[string]string{"Authorization": "Bearer " + session.Token}
}

func TestAdminLogin(t *testing.T) {
	srv := newTestServer(t, Config{Auth: newTestAuth(t)})

	rec := do(t, srv, http.MethodPost, "/api/admin/login", loginRequest{Email: "admin@example.com", Password: "wrong"}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", rec.Code)
	}
	headers := signIn(t, srv)
	if rec := do(t, srv, http.MethodGet, "/api/admin/settings", nil, headers); rec.Code != http.StatusOK {
		t.Fatalf("expected settings with session, got %d", rec.Code)
	}
}

func TestAdminRoutesRequireSession(t *testing.T) {
	srv := newTestServer(t, Config{Auth: newTestAuth(t)})
	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/admin/settings"},
		{http.MethodPut, "/api/admin/settings"},
		{http.MethodPost, "/api/admin/subjects"},
		{http.MethodDelete, "/api/admin/subjects/Physics"},
		{http.MethodPost, "/api/admin/ads/banner/toggle"},
		{http.MethodPost, "/api/admin/logout"},
	}
	for _, route := range routes {
		rec := do(t, srv, route.method, route.path, nil, map[string]string{"Authorization": "Bearer " + uuid.NewString()})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s = %d, want 401", route.method, route.path, rec.Code)
		}
	}
}

func TestAdminEditsSettings(t *testing.T) {
	store, err := settings.Open(filepath.Join(t.TempDir(), "settings.json"))
	if err != nil {
		t.Fatalf("open settings: %v", err)
	}
	srv := newTestServer(t, Config{Auth: newTestAuth(t), Settings: store})
	headers := signIn(t, srv)

	rec := do(t, srv, http.MethodPost, "/api/admin/ads/interstitial/toggle", nil, headers)
	if rec.Code != http.StatusOK || !store.Current().Ads.AdMob.InterstitialActive {
		t.Fatalf("toggle failed %d", rec.Code)
	}
	if rec := do(t, srv, http.MethodPost, "/api/admin/ads/popup/toggle", nil, headers); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown slot, got %d", rec.Code)
	}

	rec = do(t, srv, http.MethodPost, "/api/admin/subjects", subjectRequest{Name: "  Astronomy "}, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("add subject failed %d: %s", rec.Code, rec.Body.String())
	}
	added, ok := store.Current().Subject("Astronomy")
	if !ok || added.Icon == "" || added.Color == "" {
		t.Fatalf("subject not stored with defaults: %+v", added)
	}
	if rec := do(t, srv, http.MethodPost, "/api/admin/subjects", subjectRequest{Name: "Astronomy"}, headers); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate, got %d", rec.Code)
	}
	if rec := do(t, srv, http.MethodPost, "/api/admin/subjects", subjectRequest{Name: " "}, headers); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank name, got %d", rec.Code)
	}

	if rec := do(t, srv, http.MethodDelete, "/api/admin/subjects/Physics", nil, headers); rec.Code != http.StatusOK {
		t.Fatalf("remove subject failed %d", rec.Code)
	}
	if _, ok := store.Current().Subject("Physics"); ok {
		t.Fatal("Physics should be removed")
	}
	if rec := do(t, srv, http.MethodDelete, "/api/admin/subjects/Physics", nil, headers); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 removing twice, got %d", rec.Code)
	}

	ads := settings.DefaultAds()
	ads.Banner.Text = "Scholarship week"
	rec = do(t, srv, http.MethodPut, "/api/admin/settings", settings.Settings{Ads: ads}, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("put settings failed %d: %s", rec.Code, rec.Body.String())
	}
	current := store.Current()
	if current.Ads.Banner.Text != "Scholarship week" {
		t.Fatalf("banner not replaced: %+v", current.Ads.Banner)
	}
	if _, ok := current.Subject("Astronomy"); !ok {
		t.Fatal("replacing ads must keep subjects")
	}

	reopened, err := settings.Open(store.Path())
	if err != nil {
		t.Fatalf("reopen settings: %v", err)
	}
	if reopened.Current().Ads.Banner.Text != "Scholarship week" {
		t.Fatal("settings were not persisted")
	}
}

func TestAdminLogoutEndsSession(t *testing.T) {
	srv := newTestServer(t, Config{Auth: newTestAuth(t)})
	headers := signIn(t, srv)

	if rec := do(t, srv, http.MethodPost, "/api/admin/logout", nil, headers); rec.Code != http.StatusNoContent {
		t.Fatalf("logout failed %d", rec.Code)
	}
	if rec := do(t, srv, http.MethodGet, "/api/admin/settings", nil, headers); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", rec.Code)
	}
}
