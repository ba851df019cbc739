package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"pixelsmith.org/internal/auth"
)

type guardCredStore struct {
	users map[string]auth.UserRecord
	err   error
}

func (s *guardCredStore) FindByID(_ context.Context, id string) (auth.UserRecord, error) {
	if s.err != nil {
		return auth.UserRecord{}, s.err
	}
	u, ok := s.users[id]
	if !ok {
		return auth.UserRecord{}, auth.ErrNotFound
	}
	return u, nil
}

func (s *guardCredStore) FindByEmail(_ context.Context, email string) (auth.UserRecord, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return auth.UserRecord{}, auth.ErrNotFound
}

func newGuardFixture(t *testing.T, store *guardCredStore, trustTokenRoles bool) (*Guard, *auth.Codec) {
	t.Helper()
	codec, err := auth.NewCodec([]byte("guard-test-secret"), "pixelsmith")
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	if store == nil {
		store = &guardCredStore{users: map[string]auth.UserRecord{}}
	}
	extractor := auth.NewExtractor(codec, store, "session")
	return NewGuard(codec, extractor, "session", "/auth/sign-in", "/dashboard", trustTokenRoles), codec
}

func issueCookie(t *testing.T, codec *auth.Codec, subject string, roles ...auth.Role) *http.Cookie {
	t.Helper()
	token, _, err := codec.Issue(subject, roles)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return &http.Cookie{Name: "session", Value: token}
}

func runGuard(g *Guard, path string, cookie *http.Cookie) (*httptest.ResponseRecorder, bool) {
	var passed bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		passed = true
		w.WriteHeader(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	g.Middleware(next).ServeHTTP(rr, req)
	return rr, passed
}

func TestGuardNoCookieAdminPageRedirectsToSignIn(t *testing.T) {
	g, _ := newGuardFixture(t, nil, true)

	rr, passed := runGuard(g, "/admin/users", nil)
	if passed {
		t.Fatal("handler must not run")
	}
	if rr.Code != http.StatusFound {
		t.Fatalf("status = %d, want redirect", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/auth/sign-in" {
		t.Fatalf("location = %q", loc)
	}
}

func TestGuardNoCookieDashboardRedirectsToSignIn(t *testing.T) {
	g, _ := newGuardFixture(t, nil, true)

	rr, _ := runGuard(g, "/dashboard", nil)
	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/auth/sign-in" {
		t.Fatalf("status = %d, location = %q", rr.Code, rr.Header().Get("Location"))
	}
}

func TestGuardGarbageCookieIsAnonymous(t *testing.T) {
	g, _ := newGuardFixture(t, nil, true)

	rr, passed := runGuard(g, "/dashboard", &http.Cookie{Name: "session", Value: "not-a-token"})
	if passed {
		t.Fatal("handler must not run")
	}
	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/auth/sign-in" {
		t.Fatalf("garbage cookie should redirect like no cookie, got %d", rr.Code)
	}
}

func TestGuardMemberOnAdminPageForbidden(t *testing.T) {
	g, codec := newGuardFixture(t, nil, true)
	cookie := issueCookie(t, codec, "u1", auth.RoleGuest, auth.RoleMember)

	rr, passed := runGuard(g, "/admin", cookie)
	if passed {
		t.Fatal("handler must not run")
	}
	if rr.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 not redirect", rr.Code)
	}
}

func TestGuardAdminOnAdminPagePasses(t *testing.T) {
	g, codec := newGuardFixture(t, nil, true)
	cookie := issueCookie(t, codec, "u1", auth.RoleMember, auth.RoleAdmin)

	rr, passed := runGuard(g, "/admin/users", cookie)
	if !passed || rr.Code != http.StatusOK {
		t.Fatalf("want pass-through, got %d (passed=%v)", rr.Code, passed)
	}
}

func TestGuardAuthenticatedOnAuthPageRedirectsToDashboard(t *testing.T) {
	g, codec := newGuardFixture(t, nil, true)
	cookie := issueCookie(t, codec, "u1", auth.RoleGuest)

	rr, passed := runGuard(g, "/auth/sign-in", cookie)
	if passed {
		t.Fatal("auth page must never render for a signed-in user")
	}
	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/dashboard" {
		t.Fatalf("status = %d, location = %q", rr.Code, rr.Header().Get("Location"))
	}
}

func TestGuardAnonymousOnAuthPagePasses(t *testing.T) {
	g, _ := newGuardFixture(t, nil, true)

	rr, passed := runGuard(g, "/auth/sign-up", nil)
	if !passed || rr.Code != http.StatusOK {
		t.Fatalf("want pass-through, got %d", rr.Code)
	}
}

func TestGuardGuestOnlyOnMemberPageForbidden(t *testing.T) {
	g, codec := newGuardFixture(t, nil, true)
	cookie := issueCookie(t, codec, "u1", auth.RoleGuest)

	rr, _ := runGuard(g, "/dashboard/settings", cookie)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rr.Code)
	}
}

func TestGuardPublicPathIgnoresCookie(t *testing.T) {
	g, _ := newGuardFixture(t, nil, true)

	rr, passed := runGuard(g, "/v1/blogs", &http.Cookie{Name: "session", Value: "garbage"})
	if !passed || rr.Code != http.StatusOK {
		t.Fatalf("public path must pass through, got %d", rr.Code)
	}
}

func TestGuardTrustedTokenRolesIgnoreStoreDowngrade(t *testing.T) {
	// Store says GUEST only, but the token still carries MEMBER. The
	// trusting guard honors the token until re-issuance.
	store := &guardCredStore{users: map[string]auth.UserRecord{
		"u1": {ID: "u1", Email: "dev@example.com", Roles: []auth.Role{auth.RoleGuest}},
	}}
	g, codec := newGuardFixture(t, store, true)
	cookie := issueCookie(t, codec, "u1", auth.RoleGuest, auth.RoleMember)

	rr, passed := runGuard(g, "/dashboard", cookie)
	if !passed || rr.Code != http.StatusOK {
		t.Fatalf("trusting guard should honor token roles, got %d", rr.Code)
	}
}

func TestGuardStoreRolesApplyWhenNotTrustingToken(t *testing.T) {
	store := &guardCredStore{users: map[string]auth.UserRecord{
		"u1": {ID: "u1", Email: "dev@example.com", Roles: []auth.Role{auth.RoleGuest}},
	}}
	g, codec := newGuardFixture(t, store, false)
	cookie := issueCookie(t, codec, "u1", auth.RoleGuest, auth.RoleMember)

	rr, passed := runGuard(g, "/dashboard", cookie)
	if passed {
		t.Fatal("handler must not run")
	}
	if rr.Code != http.StatusForbidden {
		t.Fatalf("store-backed guard should see the downgrade, got %d", rr.Code)
	}
}

func TestGuardDeletedUserNotTrustingToken(t *testing.T) {
	g, codec := newGuardFixture(t, &guardCredStore{users: map[string]auth.UserRecord{}}, false)
	cookie := issueCookie(t, codec, "gone", auth.RoleMember)

	rr, _ := runGuard(g, "/dashboard", cookie)
	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/auth/sign-in" {
		t.Fatalf("stale subject should be anonymous, got %d", rr.Code)
	}
}

func TestGuardStoreFaultIsFatal(t *testing.T) {
	store := &guardCredStore{err: errors.New("db down")}
	g, codec := newGuardFixture(t, store, false)
	cookie := issueCookie(t, codec, "u1", auth.RoleMember)

	rr, passed := runGuard(g, "/dashboard", cookie)
	if passed {
		t.Fatal("handler must not run")
	}
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
}

func TestClassifyPage(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"/", pagePublic},
		{"/v1/blogs", pagePublic},
		{"/auth", pageAuth},
		{"/auth/sign-in", pageAuth},
		{"/authx", pagePublic},
		{"/dashboard", pageMember},
		{"/dashboard/profile", pageMember},
		{"/admin", pageAdmin},
		{"/admin/users", pageAdmin},
		{"/administrator", pagePublic},
	}
	for _, tc := range cases {
		if got := classifyPage(tc.path); got != tc.want {
			t.Errorf("classifyPage(%q) = %s, want %s", tc.path, got, tc.want)
		}
	}
}
