package netlocation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"attendance-core/models"
)

func TestResolve_JSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ip":"203.0.113.5"}`))
	}))
	defer srv.Close()

	got := NewResolver(srv.URL).Resolve(context.Background())
	if got != "203.0.113.5" {
		t.Errorf("expected 203.0.113.5, got %q", got)
	}
}

func TestResolve_PlainTextBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("203.0.113.9\n"))
	}))
	defer srv.Close()

	got := NewResolver(srv.URL).Resolve(context.Background())
	if got != "203.0.113.9" {
		t.Errorf("expected 203.0.113.9, got %q", got)
	}
}

func TestResolve_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if got := NewResolver(srv.URL).Resolve(context.Background()); got != IdentityUnknown {
		t.Errorf("expected sentinel on server error, got %q", got)
	}
}

func TestResolve_Unreachable(t *testing.T) {
	if got := NewResolver("http://127.0.0.1:1").Resolve(context.Background()); got != IdentityUnknown {
		t.Errorf("expected sentinel on unreachable resolver, got %q", got)
	}
}

func TestIsAuthorized_UnrestrictedCenter(t *testing.T) {
	center := &models.Center{}
	for _, identity := range []string{"203.0.113.5", IdentityUnknown, "", "anything"} {
		if !IsAuthorized(center, identity) {
			t.Errorf("unrestricted center rejected identity %q", identity)
		}
	}
}

func TestIsAuthorized_RestrictedCenter(t *testing.T) {
	center := &models.Center{AuthorizedNetworkID: "203.0.113.5"}

	if !IsAuthorized(center, "203.0.113.5") {
		t.Error("matching identity rejected")
	}
	if IsAuthorized(center, "203.0.113.9") {
		t.Error("non-matching identity accepted")
	}
	if IsAuthorized(center, IdentityUnknown) {
		t.Error("unknown identity must never match an allow-list")
	}
}
