package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	a := New([]byte("test-secret"))

	want := Identity{UserID: "user_1", Username: "alice"}
	token, err := a.Issue(want)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	got, err := a.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if got != want {
		t.Fatalf("identity mismatch: got %+v, want %+v", got, want)
	}
}

func TestVerifyTamperedSignature(t *testing.T) {
	a := New([]byte("test-secret"))

	token, err := a.Issue(Identity{UserID: "user_1", Username: "alice"})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// Flip a character in the signature segment
	i := strings.LastIndex(token, ".")
	sig := []byte(token[i+1:])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := token[:i+1] + string(sig)

	if _, err := a.Verify(tampered); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for tampered signature, got %v", err)
	}
}

func TestVerifyWrongKey(t *testing.T) {
	issuer := New([]byte("key-one"))
	verifier := New([]byte("key-two"))

	token, err := issuer.Issue(Identity{UserID: "user_1", Username: "alice"})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := verifier.Verify(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for wrong key, got %v", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	a := New([]byte("test-secret"))

	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := a.Verify(tok); err != ErrInvalidToken {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", tok, err)
		}
	}
}

func TestMiddlewareRejectsMissingHeader(t *testing.T) {
	a := New([]byte("test-secret"))

	called := false
	h := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	for _, header := range []string{"", "Bearer", "Basic abc", "Bearer bad.token.here"} {
		req := httptest.NewRequest(http.MethodGet, "/user/tweets/feed", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, rec.Code)
		}
	}
	if called {
		t.Fatalf("handler ran despite failed authentication")
	}
}

func TestMiddlewarePassesIdentity(t *testing.T) {
	a := New([]byte("test-secret"))

	want := Identity{UserID: "user_7", Username: "bob"}
	token, err := a.Issue(want)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	var got Identity
	var ok bool
	h := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = IdentityFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/user/tweets/feed", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !ok || got != want {
		t.Fatalf("identity not propagated: got %+v ok=%v", got, ok)
	}
}
