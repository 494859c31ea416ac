package authapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"raven/cmd/identity"
	"raven/cmd/security/password"
	"raven/cmd/security/token"
)

func testHandler(t *testing.T) (*Handler, identity.Store) {
	t.Helper()

	users := identity.NewInMemoryStore()
	hasher := password.Params{
		MemoryKiB:   8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
	h, err := NewHandler(nil, users, hasher, Config{
		Secret:   "test-secret",
		TokenTTL: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	return h, users
}

func doJSON(t *testing.T, h http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func register(t *testing.T, h *Handler, username, email, pw string) Envelope {
	t.Helper()
	rr := doJSON(t, h.handleRegister, "/auth/register", registerRequest{
		Username: username,
		Email:    email,
		Password: pw,
	})
	return decodeEnvelope(t, rr)
}

func TestRegister_OK(t *testing.T) {
	h, _ := testHandler(t)

	env := register(t, h, "alice", "alice@example.com", "a sufficiently good password")
	if !env.Success {
		t.Fatalf("expected success, got %+v", env)
	}

	data, ok := env.Data.(map[string]any)
	if !ok || data["user_id"] == "" || data["username"] != "alice" {
		t.Fatalf("unexpected data: %v", env.Data)
	}
}

func TestRegister_DuplicateAndBadInput(t *testing.T) {
	h, _ := testHandler(t)

	if env := register(t, h, "alice", "alice@example.com", "a sufficiently good password"); !env.Success {
		t.Fatalf("first registration must succeed: %+v", env)
	}
	if env := register(t, h, "alice", "other@example.com", "a sufficiently good password"); env.Success {
		t.Fatalf("duplicate username must fail")
	}
	if env := register(t, h, "bob", "not-an-email", "a sufficiently good password"); env.Success {
		t.Fatalf("bad email must fail")
	}
	if env := register(t, h, "carol", "carol@example.com", ""); env.Success {
		t.Fatalf("empty password must fail")
	}
}

func TestLogin_OKIssuesVerifiableToken(t *testing.T) {
	h, _ := testHandler(t)
	register(t, h, "alice", "alice@example.com", "a sufficiently good password")

	rr := doJSON(t, h.handleLogin, "/auth/login", loginRequest{
		Username: "alice",
		Password: "a sufficiently good password",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d want 200: %s", rr.Code, rr.Body.String())
	}

	env := decodeEnvelope(t, rr)
	if !env.Success {
		t.Fatalf("expected success: %+v", env)
	}
	data := env.Data.(map[string]any)
	tok, _ := data["access_token"].(string)
	if tok == "" {
		t.Fatalf("missing access token")
	}

	claims, err := token.Verify([]byte("test-secret"), tok, time.Now().UTC())
	if err != nil {
		t.Fatalf("issued token must verify: %v", err)
	}
	if claims.Subject() != data["user_id"] {
		t.Fatalf("token subject %q != user id %v", claims.Subject(), data["user_id"])
	}
}

func TestLogin_FailureIsUniform(t *testing.T) {
	h, users := testHandler(t)
	register(t, h, "alice", "alice@example.com", "a sufficiently good password")

	env := register(t, h, "dave", "dave@example.com", "a sufficiently good password")
	daveID := env.Data.(map[string]any)["user_id"].(string)
	if err := users.SetActive(t.Context(), daveID, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}

	cases := map[string]loginRequest{
		"unknown user":     {Username: "nobody", Password: "whatever password"},
		"wrong password":   {Username: "alice", Password: "wrong password entirely"},
		"empty password":   {Username: "alice", Password: ""},
		"inactive account": {Username: "dave", Password: "a sufficiently good password"},
	}
	for name, req := range cases {
		rr := doJSON(t, h.handleLogin, "/auth/login", req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s: got status %d want 401", name, rr.Code)
		}
		env := decodeEnvelope(t, rr)
		if env.Success || env.Message != "invalid username or password" {
			t.Fatalf("%s: failure must be uniform, got %+v", name, env)
		}
	}
}

func TestLogin_TouchesLastLogin(t *testing.T) {
	h, users := testHandler(t)
	env := register(t, h, "alice", "alice@example.com", "a sufficiently good password")
	userID := env.Data.(map[string]any)["user_id"].(string)

	doJSON(t, h.handleLogin, "/auth/login", loginRequest{
		Username: "alice",
		Password: "a sufficiently good password",
	})

	u, err := users.GetByID(t.Context(), userID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if u.LastLogin == nil {
		t.Fatalf("last login not recorded")
	}
}

func TestHandlers_MethodNotAllowed(t *testing.T) {
	h, _ := testHandler(t)

	for _, fn := range []http.HandlerFunc{h.handleLogin, h.handleRegister} {
		rr := httptest.NewRecorder()
		fn(rr, httptest.NewRequest(http.MethodGet, "/auth/x", nil))
		if rr.Code != http.StatusMethodNotAllowed {
			t.Fatalf("got status %d want 405", rr.Code)
		}
	}
}
