package authapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"raven/cmd/security/token"
)

func testGate(t *testing.T) *Gate {
	t.Helper()
	return NewGate(nil, Config{
		Secret:      "test-secret",
		ExemptPaths: []string{"/auth/login", "/auth/register", "/healthz"},
	})
}

func issueToken(t *testing.T, secret string, ttl time.Duration) string {
	t.Helper()
	tok, err := token.Encode([]byte(secret), token.NewAccessClaims("user-1", time.Now(), ttl))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return tok
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rr.Body.String())
	}
	return env
}

func TestGate_ExemptPathPassesThrough(t *testing.T) {
	called := false
	h := testGate(t).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	// No Authorization header at all.
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/auth/login", nil))

	if !called {
		t.Fatalf("exempt path must reach the next handler")
	}
	if rr.Code == http.StatusUnauthorized {
		t.Fatalf("exempt path must not 401")
	}
}

func TestGate_ExemptMatchIsPrefixBased(t *testing.T) {
	called := false
	h := testGate(t).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz/deep", nil))

	if !called {
		t.Fatalf("prefix match must admit /healthz/deep")
	}
}

func TestGate_MissingToken(t *testing.T) {
	h := testGate(t).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run")
	}))

	for _, header := range []string{"", "Basic dXNlcg==", "bearer-without-scheme"} {
		req := httptest.NewRequest(http.MethodGet, "/sessions/list", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: got status %d want 401", header, rr.Code)
		}
		env := decodeEnvelope(t, rr)
		if env.Success || env.Message != "Invalid authentication credentials" || env.Data != nil {
			t.Fatalf("unexpected envelope: %+v", env)
		}
	}
}

func TestGate_InvalidTokenSameMessageAsMissing(t *testing.T) {
	h := testGate(t).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run")
	}))

	for name, tok := range map[string]string{
		"wrong secret": issueToken(t, "other-secret", time.Hour),
		"expired":      issueToken(t, "test-secret", -time.Hour),
		"garbage":      "not.a.token",
	} {
		req := httptest.NewRequest(http.MethodGet, "/sessions/list", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s: got status %d want 401", name, rr.Code)
		}
		env := decodeEnvelope(t, rr)
		if env.Message != "Invalid authentication credentials" {
			t.Fatalf("%s: rejection message must not vary, got %q", name, env.Message)
		}
	}
}

func TestGate_AdmitsValidTokenAndSetsSubject(t *testing.T) {
	var subject string
	h := testGate(t).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, _ = SubjectFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/sessions/list", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, "test-secret", time.Hour))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d want 200", rr.Code)
	}
	if subject != "user-1" {
		t.Fatalf("subject not propagated: got %q", subject)
	}
}

func TestGate_FailsClosedOnPanic(t *testing.T) {
	h := testGate(t).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("verification exploded")
	}))

	req := httptest.NewRequest(http.MethodGet, "/sessions/list", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, "test-secret", time.Hour))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("got status %d want 500", rr.Code)
	}
	env := decodeEnvelope(t, rr)
	if env.Success {
		t.Fatalf("panic must never admit the request")
	}
}

func TestParseExemptPaths(t *testing.T) {
	got := ParseExemptPaths(" /auth/login , /auth/register,,/healthz ")
	want := []string{"/auth/login", "/auth/register", "/healthz"}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}
