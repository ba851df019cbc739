package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pixelsmith.org/internal/auth"
	"pixelsmith.org/internal/content"
	"pixelsmith.org/internal/directory"
	"pixelsmith.org/internal/identity"
	"pixelsmith.org/internal/mail"
)

type memUsers struct {
	byID map[string]*directory.User
}

func (m *memUsers) Create(_ context.Context, u *directory.User) error {
	m.byID[u.ID] = u
	return nil
}

func (m *memUsers) FindByID(_ context.Context, id string) (*directory.User, error) {
	if u, ok := m.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, auth.ErrNotFound
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*directory.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (m *memUsers) List(_ context.Context, page, limit int) ([]directory.UserSummary, int, error) {
	var res []directory.UserSummary
	for _, u := range m.byID {
		res = append(res, directory.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Roles: u.Roles})
	}
	return res, len(m.byID), nil
}

func (m *memUsers) UpdateProfile(_ context.Context, id string, upd directory.ProfileUpdate) error {
	u, ok := m.byID[id]
	if !ok {
		return auth.ErrNotFound
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	return nil
}

func (m *memUsers) SetPasswordHash(_ context.Context, id string, hash string) error {
	u, ok := m.byID[id]
	if !ok {
		return auth.ErrNotFound
	}
	u.PasswordHash = &hash
	return nil
}

func (m *memUsers) SetTeam(_ context.Context, id string, teamID *string) error {
	u, ok := m.byID[id]
	if !ok {
		return auth.ErrNotFound
	}
	u.TeamID = teamID
	return nil
}

func (m *memUsers) SetAssignment(_ context.Context, id string, roles []auth.Role, designation auth.Designation) error {
	u, ok := m.byID[id]
	if !ok {
		return auth.ErrNotFound
	}
	u.Roles = roles
	u.Designation = designation
	return nil
}

func (m *memUsers) Delete(_ context.Context, id string) error {
	delete(m.byID, id)
	return nil
}

type memTeams struct {
	byID map[string]*directory.Team
}

func (m *memTeams) Create(_ context.Context, t *directory.Team) error {
	m.byID[t.ID] = t
	return nil
}

func (m *memTeams) FindByID(_ context.Context, id string) (*directory.Team, error) {
	if t, ok := m.byID[id]; ok {
		return t, nil
	}
	return nil, auth.ErrNotFound
}

func (m *memTeams) List(_ context.Context) ([]directory.Team, error) {
	var res []directory.Team
	for _, t := range m.byID {
		res = append(res, *t)
	}
	return res, nil
}

func (m *memTeams) Members(_ context.Context, teamID string) ([]directory.MemberSummary, error) {
	return nil, nil
}

func (m *memTeams) Update(_ context.Context, id string, upd directory.TeamUpdate) error { return nil }
func (m *memTeams) Delete(_ context.Context, id string) error {
	delete(m.byID, id)
	return nil
}

type memSignups struct {
	byEmail map[string]*identity.SignUpRequest
}

func (m *memSignups) Upsert(_ context.Context, req *identity.SignUpRequest) error {
	m.byEmail[req.Email] = req
	return nil
}

func (m *memSignups) FindByEmail(_ context.Context, email string) (*identity.SignUpRequest, error) {
	if req, ok := m.byEmail[email]; ok {
		return req, nil
	}
	return nil, auth.ErrNotFound
}

func (m *memSignups) Delete(_ context.Context, id string) error {
	for email, req := range m.byEmail {
		if req.ID == id {
			delete(m.byEmail, email)
		}
	}
	return nil
}

func newTestAPI(t *testing.T) (*API, *memUsers) {
	t.Helper()
	codec, err := auth.NewCodec([]byte("api-test-secret"), "pixelsmith")
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	users := &memUsers{byID: map[string]*directory.User{}}
	teams := &memTeams{byID: map[string]*directory.Team{}}
	signups := &memSignups{byEmail: map[string]*identity.SignUpRequest{}}

	extractor := auth.NewExtractor(codec, directory.CredentialAdapter{Users: users}, "session")
	guard := NewGuard(codec, extractor, "session", "/auth/sign-in", "/dashboard", true)

	api := New(Deps{
		Codec:     codec,
		Extractor: extractor,
		Guard:     guard,
		Identity:  identity.NewService(codec, users, teams, signups, mail.LogMailer{}, nil),
		Directory: directory.NewService(users, teams),
		Content:   content.NewService(nil, nil, nil),
		Version:   "test",
	})
	return api, users
}

func seedUser(t *testing.T, users *memUsers, id, email, password string, roles ...auth.Role) {
	t.Helper()
	hash, err := auth.HashSecret(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	users.byID[id] = &directory.User{
		ID:           id,
		Name:         "Test User",
		Email:        email,
		PasswordHash: &hash,
		Roles:        roles,
	}
}

func postJSON(t *testing.T, handler http.Handler, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestSignInSetsSessionCookie(t *testing.T) {
	api, users := newTestAPI(t)
	seedUser(t, users, "u1", "dev@example.com", "password123", auth.RoleGuest, auth.RoleMember)
	handler := api.Handler()

	rr := postJSON(t, handler, "/v1/auth/sign-in", map[string]string{
		"email":    "dev@example.com",
		"password": "password123",
	}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var sessionCookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == "session" {
			sessionCookie = c
		}
	}
	if sessionCookie == nil || sessionCookie.Value == "" {
		t.Fatal("expected session cookie")
	}
	if !sessionCookie.HttpOnly {
		t.Fatal("session cookie must be httpOnly")
	}

	// the cookie now authenticates /v1/auth/me
	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	req.AddCookie(sessionCookie)
	rr2 := httptest.NewRecorder()
	handler.ServeHTTP(rr2, req)
	if rr2.Code != http.StatusOK {
		t.Fatalf("me status = %d, body = %s", rr2.Code, rr2.Body.String())
	}
	if !strings.Contains(rr2.Body.String(), "dev@example.com") {
		t.Fatalf("me body = %s", rr2.Body.String())
	}
}

func TestSignInWrongPassword(t *testing.T) {
	api, users := newTestAPI(t)
	seedUser(t, users, "u1", "dev@example.com", "password123", auth.RoleGuest)
	handler := api.Handler()

	rr := postJSON(t, handler, "/v1/auth/sign-in", map[string]string{
		"email":    "dev@example.com",
		"password": "wrong",
	}, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rr.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error_code"] != "INVALID_CREDENTIALS" {
		t.Fatalf("error_code = %v", body["error_code"])
	}
}

func TestSignInUnknownEmail(t *testing.T) {
	api, _ := newTestAPI(t)

	rr := postJSON(t, api.Handler(), "/v1/auth/sign-in", map[string]string{
		"email":    "ghost@example.com",
		"password": "whatever",
	}, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "USER_NOT_FOUND") {
		t.Fatalf("body = %s", rr.Body.String())
	}
}

func TestGuardIntegrationMemberBlockedFromAdmin(t *testing.T) {
	api, users := newTestAPI(t)
	seedUser(t, users, "u1", "dev@example.com", "password123", auth.RoleGuest, auth.RoleMember)
	handler := api.Handler()

	rr := postJSON(t, handler, "/v1/auth/sign-in", map[string]string{
		"email":    "dev@example.com",
		"password": "password123",
	}, nil)
	cookies := rr.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected session cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	req.AddCookie(cookies[0])
	rr2 := httptest.NewRecorder()
	handler.ServeHTTP(rr2, req)
	if rr2.Code != http.StatusForbidden {
		t.Fatalf("admin page for member = %d, want 403", rr2.Code)
	}

	// dashboard is fine for a member
	req3 := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req3.AddCookie(cookies[0])
	rr3 := httptest.NewRecorder()
	handler.ServeHTTP(rr3, req3)
	if rr3.Code != http.StatusOK {
		t.Fatalf("dashboard for member = %d", rr3.Code)
	}
}

func TestSignOutClearsCookie(t *testing.T) {
	api, _ := newTestAPI(t)

	rr := postJSON(t, api.Handler(), "/v1/auth/sign-out", map[string]string{}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Fatalf("expected expiring cookie, got %+v", cookies)
	}
}

func TestAdminListUsersRequiresAdmin(t *testing.T) {
	api, users := newTestAPI(t)
	seedUser(t, users, "u1", "member@example.com", "password123", auth.RoleMember)
	seedUser(t, users, "u2", "admin@example.com", "password123", auth.RoleMember, auth.RoleAdmin)
	handler := api.Handler()

	signIn := func(email string) *http.Cookie {
		rr := postJSON(t, handler, "/v1/auth/sign-in", map[string]string{
			"email":    email,
			"password": "password123",
		}, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("sign-in %s: %d", email, rr.Code)
		}
		return rr.Result().Cookies()[0]
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
	req.AddCookie(signIn("member@example.com"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("member listing users = %d, want 403", rr.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
	req2.AddCookie(signIn("admin@example.com"))
	rr2 := httptest.NewRecorder()
	handler.ServeHTTP(rr2, req2)
	if rr2.Code != http.StatusOK {
		t.Fatalf("admin listing users = %d, body = %s", rr2.Code, rr2.Body.String())
	}
}
