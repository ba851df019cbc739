package oauth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"pixelsmith.org/internal/identity"
)

func fakeIDToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	payload, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("marshal claims: %v", err)
	}
	seg := base64.RawURLEncoding.EncodeToString
	return seg([]byte(`{"alg":"RS256"}`)) + "." + seg(payload) + "." + seg([]byte("sig"))
}

func TestExchangeSuccess(t *testing.T) {
	var gotForm map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		gotForm = map[string]string{
			"code":       r.PostFormValue("code"),
			"grant_type": r.PostFormValue("grant_type"),
		}
		idToken := fakeIDToken(t, map[string]any{
			"aud":            "client-1",
			"email":          "dev@example.com",
			"email_verified": true,
			"name":           "Dev One",
			"picture":        "https://img.example.com/p.png",
		})
		_ = json.NewEncoder(w).Encode(map[string]string{"id_token": idToken})
	}))
	defer srv.Close()

	g := NewGoogle("client-1", "secret", "https://app/callback", WithEndpoint(srv.URL))
	ident, err := g.Exchange(context.Background(), "authcode")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if ident.Email != "dev@example.com" || !ident.EmailVerified {
		t.Fatalf("unexpected identity: %+v", ident)
	}
	if gotForm["code"] != "authcode" || gotForm["grant_type"] != "authorization_code" {
		t.Fatalf("unexpected form: %v", gotForm)
	}
}

func TestExchangeRejectedCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
	}))
	defer srv.Close()

	g := NewGoogle("client-1", "secret", "https://app/callback", WithEndpoint(srv.URL))
	_, err := g.Exchange(context.Background(), "expired-code")
	if !errors.Is(err, identity.ErrProviderRejected) {
		t.Fatalf("want ErrProviderRejected, got %v", err)
	}
}

func TestExchangeAudienceMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		idToken := fakeIDToken(t, map[string]any{"aud": "someone-else", "email": "dev@example.com"})
		_ = json.NewEncoder(w).Encode(map[string]string{"id_token": idToken})
	}))
	defer srv.Close()

	g := NewGoogle("client-1", "secret", "https://app/callback", WithEndpoint(srv.URL))
	_, err := g.Exchange(context.Background(), "authcode")
	if !errors.Is(err, identity.ErrProviderRejected) {
		t.Fatalf("want ErrProviderRejected, got %v", err)
	}
}

func TestExchangeServerFaultIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	g := NewGoogle("client-1", "secret", "https://app/callback", WithEndpoint(srv.URL))
	_, err := g.Exchange(context.Background(), "authcode")
	if err == nil || errors.Is(err, identity.ErrProviderRejected) {
		t.Fatalf("want plain transport error, got %v", err)
	}
}

func TestExchangeEmptyCode(t *testing.T) {
	g := NewGoogle("client-1", "secret", "https://app/callback")
	_, err := g.Exchange(context.Background(), "  ")
	if !errors.Is(err, identity.ErrProviderRejected) {
		t.Fatalf("want ErrProviderRejected, got %v", err)
	}
}
