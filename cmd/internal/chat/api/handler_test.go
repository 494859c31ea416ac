package chatapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	authapi "raven/cmd/internal/auth/api"
	"raven/cmd/internal/chat"
)

func testHandler(t *testing.T) (*Handler, *chat.InMemoryStore) {
	t.Helper()
	store := chat.NewInMemoryStore()
	h, err := NewHandler(nil, chat.NewService(nil, store))
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	return h, store
}

func doJSON(t *testing.T, h *Handler, userID, method, path string, body any) (*httptest.ResponseRecorder, authapi.Envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req = req.WithContext(authapi.ContextWithSubject(req.Context(), userID))
	}

	mux := http.NewServeMux()
	h.Register(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var env authapi.Envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode envelope: %v (body %q)", err, rec.Body.String())
		}
	}
	return rec, env
}

func createSession(t *testing.T, h *Handler, userID, title string) string {
	t.Helper()
	rec, env := doJSON(t, h, userID, http.MethodPost, "/sessions/create", map[string]any{"title": title})
	if rec.Code != http.StatusOK || !env.Success {
		t.Fatalf("create: status %d, envelope %+v", rec.Code, env)
	}
	data, ok := env.Data.(map[string]any)
	if !ok {
		t.Fatalf("create data = %T, want object", env.Data)
	}
	id, _ := data["session_id"].(string)
	if id == "" {
		t.Fatalf("create returned empty session_id")
	}
	return id
}

func TestCreateAndList(t *testing.T) {
	h, _ := testHandler(t)

	createSession(t, h, "user-1", "first")
	createSession(t, h, "user-1", "")

	rec, env := doJSON(t, h, "user-1", http.MethodGet, "/sessions/list", nil)
	if rec.Code != http.StatusOK || !env.Success {
		t.Fatalf("list: status %d, envelope %+v", rec.Code, env)
	}
	items, ok := env.Data.([]any)
	if !ok || len(items) != 2 {
		t.Fatalf("list data = %+v, want 2 sessions", env.Data)
	}
	first := items[0].(map[string]any)
	second := items[1].(map[string]any)
	if first["ordinal"].(float64) != 1 || second["ordinal"].(float64) != 2 {
		t.Fatalf("ordinals = %v, %v, want 1, 2", first["ordinal"], second["ordinal"])
	}
	if first["title"] != "first" {
		t.Fatalf("first title = %v", first["title"])
	}
	if second["title"] != "Conversation 2" {
		t.Fatalf("default title = %v, want Conversation 2", second["title"])
	}
}

func TestMove(t *testing.T) {
	h, _ := testHandler(t)

	ids := make([]string, 0, 4)
	for i := 0; i < 4; i++ {
		ids = append(ids, createSession(t, h, "user-1", ""))
	}

	rec, env := doJSON(t, h, "user-1", http.MethodPost, "/sessions/move",
		map[string]any{"session_id": ids[3], "new_ordinal": 2})
	if rec.Code != http.StatusOK || !env.Success {
		t.Fatalf("move: status %d, envelope %+v", rec.Code, env)
	}

	_, listEnv := doJSON(t, h, "user-1", http.MethodGet, "/sessions/list", nil)
	items := listEnv.Data.([]any)
	got := make([]string, 0, len(items))
	for _, it := range items {
		got = append(got, it.(map[string]any)["session_id"].(string))
	}
	want := []string{ids[0], ids[3], ids[1], ids[2]}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order after move = %v, want %v", got, want)
		}
	}
}

func TestMoveOutOfRange(t *testing.T) {
	h, _ := testHandler(t)
	id := createSession(t, h, "user-1", "")

	for _, ord := range []int{0, 2, -1} {
		rec, env := doJSON(t, h, "user-1", http.MethodPost, "/sessions/move",
			map[string]any{"session_id": id, "new_ordinal": ord})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("move to %d: status %d, want 400", ord, rec.Code)
		}
		if env.Message != "invalid position" {
			t.Fatalf("move to %d: message %q", ord, env.Message)
		}
	}
}

func TestMoveUnknownSession(t *testing.T) {
	h, _ := testHandler(t)
	createSession(t, h, "user-1", "")

	rec, env := doJSON(t, h, "user-1", http.MethodPost, "/sessions/move",
		map[string]any{"session_id": "ghost", "new_ordinal": 1})
	if rec.Code != http.StatusNotFound || env.Message != "session not found" {
		t.Fatalf("status %d, envelope %+v", rec.Code, env)
	}
}

func TestRenameAndDelete(t *testing.T) {
	h, _ := testHandler(t)
	createSession(t, h, "user-1", "a")
	b := createSession(t, h, "user-1", "b")
	c := createSession(t, h, "user-1", "c")

	rec, _ := doJSON(t, h, "user-1", http.MethodPost, "/sessions/rename",
		map[string]any{"session_id": b, "title": "renamed"})
	if rec.Code != http.StatusOK {
		t.Fatalf("rename: status %d", rec.Code)
	}

	rec, _ = doJSON(t, h, "user-1", http.MethodPost, "/sessions/delete",
		map[string]any{"session_id": b})
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: status %d", rec.Code)
	}

	_, listEnv := doJSON(t, h, "user-1", http.MethodGet, "/sessions/list", nil)
	items := listEnv.Data.([]any)
	if len(items) != 2 {
		t.Fatalf("sessions after delete = %d, want 2", len(items))
	}
	last := items[1].(map[string]any)
	if last["session_id"] != c || last["ordinal"].(float64) != 2 {
		t.Fatalf("ordinals not compacted: %+v", last)
	}
}

func TestRecords(t *testing.T) {
	h, _ := testHandler(t)
	id := createSession(t, h, "user-1", "")

	rec, env := doJSON(t, h, "user-1", http.MethodPost, "/sessions/records", map[string]any{
		"session_id":   id,
		"message_type": "user",
		"content":      "hello",
	})
	if rec.Code != http.StatusOK || !env.Success {
		t.Fatalf("append: status %d, envelope %+v", rec.Code, env)
	}

	rec, env = doJSON(t, h, "user-1", http.MethodGet, "/sessions/records?session_id="+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list records: status %d", rec.Code)
	}
	items := env.Data.([]any)
	if len(items) != 1 {
		t.Fatalf("records = %d, want 1", len(items))
	}
	got := items[0].(map[string]any)
	if got["content"] != "hello" || got["message_type"] != "user" {
		t.Fatalf("record = %+v", got)
	}
}

func TestRecordsScopedToOwner(t *testing.T) {
	h, _ := testHandler(t)
	id := createSession(t, h, "alice", "")

	rec, env := doJSON(t, h, "alice", http.MethodPost, "/sessions/records", map[string]any{
		"session_id":   id,
		"message_type": "user",
		"content":      "alice's secret",
	})
	if rec.Code != http.StatusOK || !env.Success {
		t.Fatalf("owner append: status %d, envelope %+v", rec.Code, env)
	}

	rec, env = doJSON(t, h, "mallory", http.MethodGet, "/sessions/records?session_id="+id, nil)
	if rec.Code != http.StatusNotFound || env.Success {
		t.Fatalf("read of another user's session: status %d, envelope %+v", rec.Code, env)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("alice's secret")) {
		t.Fatalf("another user's content leaked: %s", rec.Body.String())
	}

	rec, _ = doJSON(t, h, "mallory", http.MethodPost, "/sessions/records", map[string]any{
		"session_id":   id,
		"message_type": "user",
		"content":      "injected",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("write to another user's session: status %d, want 404", rec.Code)
	}

	_, env = doJSON(t, h, "alice", http.MethodGet, "/sessions/records?session_id="+id, nil)
	items := env.Data.([]any)
	if len(items) != 1 {
		t.Fatalf("owner records = %d, want the single original record", len(items))
	}
	if items[0].(map[string]any)["content"] != "alice's secret" {
		t.Fatalf("record = %+v", items[0])
	}
}

func TestRequiresSubject(t *testing.T) {
	h, _ := testHandler(t)

	rec, env := doJSON(t, h, "", http.MethodPost, "/sessions/create", map[string]any{"title": "x"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", rec.Code)
	}
	if env.Message != "Invalid authentication credentials" {
		t.Fatalf("message %q", env.Message)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h, _ := testHandler(t)

	rec, _ := doJSON(t, h, "user-1", http.MethodGet, "/sessions/create", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET create: status %d, want 405", rec.Code)
	}
	rec, _ = doJSON(t, h, "user-1", http.MethodPost, "/sessions/list", map[string]any{})
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST list: status %d, want 405", rec.Code)
	}
}
