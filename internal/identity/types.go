// Package identity owns account lifecycle: sign-in, the OTP sign-up flow,
// Google OAuth provisioning and password changes.
package identity

import (
	"context"
	"errors"
	"time"

	"pixelsmith.org/internal/directory"
)

// SignUpRequest is a pending registration awaiting OTP verification. The
// plaintext password never persists; only its bcrypt hash does, alongside
// the hashed one-time code.
type SignUpRequest struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	OTPHash      string
	ExpiresAt    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SignUpStore persists pending registrations.
type SignUpStore interface {
	Upsert(ctx context.Context, req *SignUpRequest) error
	FindByEmail(ctx context.Context, email string) (*SignUpRequest, error)
	Delete(ctx context.Context, id string) error
}

// OTPMailer delivers one-time codes. Email transport is an external
// collaborator; the service only depends on this contract.
type OTPMailer interface {
	SendOTP(ctx context.Context, email, code string) error
}

// Identity is the provider-asserted external identity.
type Identity struct {
	Email         string
	Name          string
	Picture       string
	EmailVerified bool
}

// ErrProviderRejected marks an OAuth exchange the provider refused
// (bad code, unverified account). Transport faults are returned as plain
// errors and treated as fatal.
var ErrProviderRejected = errors.New("identity: provider rejected exchange")

// Provider exchanges an authorization code for a verified identity.
type Provider interface {
	Exchange(ctx context.Context, code string) (Identity, error)
}

// Profile is the "me" projection: the user plus their resolved team.
type Profile struct {
	User directory.User `json:"user"`
	Team ProfileTeam    `json:"team"`
}

// ProfileTeam is the team slot on a profile; ID is nil for teamless users.
type ProfileTeam struct {
	ID   *string `json:"id"`
	Name string  `json:"name"`
}
