package directory

import (
	"context"

	"pixelsmith.org/internal/auth"
)

// UserStore is the persistence contract for user records. Lookups return
// auth.ErrNotFound for missing rows; any other error is an infrastructure
// fault.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, page, limit int) ([]UserSummary, int, error)
	UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) error
	SetPasswordHash(ctx context.Context, id string, hash string) error
	SetTeam(ctx context.Context, id string, teamID *string) error
	SetAssignment(ctx context.Context, id string, roles []auth.Role, designation auth.Designation) error
	Delete(ctx context.Context, id string) error
}

// TeamStore is the persistence contract for teams.
type TeamStore interface {
	Create(ctx context.Context, t *Team) error
	FindByID(ctx context.Context, id string) (*Team, error)
	List(ctx context.Context) ([]Team, error)
	Members(ctx context.Context, teamID string) ([]MemberSummary, error)
	Update(ctx context.Context, id string, upd TeamUpdate) error
	Delete(ctx context.Context, id string) error
}

// CredentialAdapter narrows a UserStore to the session layer's read-only
// contract so internal/auth stays a leaf package.
type CredentialAdapter struct {
	Users UserStore
}

var _ auth.CredentialStore = CredentialAdapter{}

func (a CredentialAdapter) FindByID(ctx context.Context, id string) (auth.UserRecord, error) {
	u, err := a.Users.FindByID(ctx, id)
	if err != nil {
		return auth.UserRecord{}, err
	}
	return auth.UserRecord{ID: u.ID, Email: u.Email, Roles: u.Roles}, nil
}

func (a CredentialAdapter) FindByEmail(ctx context.Context, email string) (auth.UserRecord, error) {
	u, err := a.Users.FindByEmail(ctx, email)
	if err != nil {
		return auth.UserRecord{}, err
	}
	return auth.UserRecord{ID: u.ID, Email: u.Email, Roles: u.Roles}, nil
}
