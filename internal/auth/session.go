package auth

import (
	"context"
	"errors"
	"net/http"
)

// DefaultSessionCookie is the fixed cookie name carrying the session token.
const DefaultSessionCookie = "session"

// UserRecord is the minimal view of a stored user the session layer needs.
type UserRecord struct {
	ID    string
	Email string
	Roles []Role
}

// CredentialStore is the read-side adapter onto the user store. Lookups
// return ErrNotFound for missing users; any other error is an
// infrastructure fault and propagates.
type CredentialStore interface {
	FindByID(ctx context.Context, id string) (UserRecord, error)
	FindByEmail(ctx context.Context, email string) (UserRecord, error)
}

// Session is the server-materialized, request-scoped view of the caller.
// Roles are re-read from the store at extraction time, so role changes take
// effect without waiting for token re-issuance. It is never persisted.
type Session struct {
	UserID    string
	UserEmail string
	UserRoles []Role
}

// IsMember reports whether the session's live role set includes MEMBER.
func (s *Session) IsMember() bool { return s != nil && HasRole(s.UserRoles, RoleMember) }

// IsAdmin reports whether the session's live role set includes ADMIN.
func (s *Session) IsAdmin() bool { return s != nil && HasRole(s.UserRoles, RoleAdmin) }

// Extractor resolves inbound requests into sessions.
type Extractor struct {
	codec      *Codec
	store      CredentialStore
	cookieName string
}

// NewExtractor constructs an Extractor. cookieName falls back to
// DefaultSessionCookie when empty.
func NewExtractor(codec *Codec, store CredentialStore, cookieName string) *Extractor {
	if cookieName == "" {
		cookieName = DefaultSessionCookie
	}
	return &Extractor{codec: codec, store: store, cookieName: cookieName}
}

// CookieName reports the cookie the extractor reads.
func (e *Extractor) CookieName() string { return e.cookieName }

// Extract turns a request into a live session, or nil for anonymous.
//
// Anonymous is a valid state, not an error: a missing cookie, a token that
// fails verification, and a subject deleted after issuance all yield
// (nil, nil). The only error returned is a store fault, which the caller
// treats as a fatal condition distinct from "no session". At most one store
// lookup is performed.
func (e *Extractor) Extract(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(e.cookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}
	return e.FromToken(r.Context(), cookie.Value)
}

// FromToken materializes a session from a raw token string. The returned
// session carries the store's current roles, not the token's embedded claims.
func (e *Extractor) FromToken(ctx context.Context, token string) (*Session, error) {
	claims, err := e.codec.Verify(token)
	if err != nil {
		return nil, nil
	}
	user, err := e.store.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Stale subject: token outlived the user record.
			return nil, nil
		}
		return nil, err
	}
	return &Session{
		UserID:    user.ID,
		UserEmail: user.Email,
		UserRoles: user.Roles,
	}, nil
}
