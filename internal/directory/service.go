package directory

import (
	"context"
	"errors"
	"strings"
	"time"

	"pixelsmith.org/internal/auth"
	"pixelsmith.org/internal/ids"
)

// Service implements directory operations. Every mutating method takes the
// materialized session and re-checks the permission it needs itself: the
// route guard only gates by path, and admin operations are reachable from
// endpoints members also use.
type Service struct {
	users UserStore
	teams TeamStore
	now   func() time.Time
}

// NewService constructs a directory service.
func NewService(users UserStore, teams TeamStore) *Service {
	return &Service{users: users, teams: teams, now: time.Now}
}

// ListUsers returns the admin console's paginated user table.
func (s *Service) ListUsers(ctx context.Context, session *auth.Session, page, limit int) (*UserPage, error) {
	if session == nil {
		return nil, auth.Deny(auth.CodeUnauthorized, "Must be signed-in.")
	}
	if !session.IsAdmin() {
		return nil, auth.Deny(auth.CodeForbidden, "Only Admin can view aggregated user data.")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	users, total, err := s.users.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}
	return &UserPage{
		Users:      users,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// UpdateProfile lets a user edit their own profile fields.
func (s *Service) UpdateProfile(ctx context.Context, session *auth.Session, upd ProfileUpdate) error {
	if session == nil {
		return auth.Deny(auth.CodeUnauthorized, "Must be signed-in.")
	}
	if _, err := s.users.FindByID(ctx, session.UserID); err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return auth.Deny(auth.CodeUserNotFound, "User not found.")
		}
		return err
	}
	return s.users.UpdateProfile(ctx, session.UserID, upd)
}

// AssignTeam moves a user between teams. nil teamID removes the user from
// their current team.
func (s *Service) AssignTeam(ctx context.Context, session *auth.Session, userID string, teamID *string) error {
	if session == nil {
		return auth.Deny(auth.CodeUnauthorized, "Must be signed-in.")
	}
	if !session.IsAdmin() {
		return auth.Deny(auth.CodeForbidden, "Only Admin can modify user's team.")
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return auth.Deny(auth.CodeUserNotFound, "User not found.")
		}
		return err
	}
	if teamID != nil {
		if _, err := s.teams.FindByID(ctx, *teamID); err != nil {
			if errors.Is(err, auth.ErrNotFound) {
				return auth.Deny(auth.CodeTeamNotFound, "Team not found.")
			}
			return err
		}
	}
	return s.users.SetTeam(ctx, userID, teamID)
}

// UpdateAssignment sets another user's roles and designation.
func (s *Service) UpdateAssignment(ctx context.Context, session *auth.Session, userID string, roles []auth.Role, designation auth.Designation) error {
	if session == nil {
		return auth.Deny(auth.CodeUnauthorized, "Must be signed-in.")
	}
	if !session.IsAdmin() {
		return auth.Deny(auth.CodeForbidden, "Only Admin can modify user assignment.")
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return auth.Deny(auth.CodeUserNotFound, "User not found.")
		}
		return err
	}
	return s.users.SetAssignment(ctx, userID, roles, designation)
}

// RemoveUser deletes a user record.
func (s *Service) RemoveUser(ctx context.Context, session *auth.Session, userID string) error {
	if session == nil {
		return auth.Deny(auth.CodeUnauthorized, "Must be signed-in.")
	}
	if !session.IsAdmin() {
		return auth.Deny(auth.CodeForbidden, "Only Admin can remove a user.")
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return auth.Deny(auth.CodeUserNotFound, "User not found.")
		}
		return err
	}
	return s.users.Delete(ctx, userID)
}

// ListTeams is the public team index.
func (s *Service) ListTeams(ctx context.Context) ([]Team, error) {
	return s.teams.List(ctx)
}

// GetTeam resolves a team and its member summaries. Public.
func (s *Service) GetTeam(ctx context.Context, teamID string) (*TeamDetail, error) {
	team, err := s.teams.FindByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return nil, auth.Deny(auth.CodeTeamNotFound, "Team not found.")
		}
		return nil, err
	}
	members, err := s.teams.Members(ctx, teamID)
	if err != nil {
		return nil, err
	}
	return &TeamDetail{Team: *team, Members: members}, nil
}

// CreateTeam adds a new team. Admin only.
func (s *Service) CreateTeam(ctx context.Context, session *auth.Session, name, description string) (*Team, error) {
	if session == nil {
		return nil, auth.Deny(auth.CodeUnauthorized, "Must be signed-in.")
	}
	if !session.IsAdmin() {
		return nil, auth.Deny(auth.CodeForbidden, "Only Admin can create a team.")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, auth.ErrInvalidInput
	}
	now := s.now().UTC()
	team := &Team{
		ID:          ids.New(),
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.teams.Create(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

// UpdateTeam edits team metadata. Admin only.
func (s *Service) UpdateTeam(ctx context.Context, session *auth.Session, teamID string, upd TeamUpdate) error {
	if session == nil {
		return auth.Deny(auth.CodeUnauthorized, "Must be signed-in.")
	}
	if !session.IsAdmin() {
		return auth.Deny(auth.CodeForbidden, "Only Admin can update a team.")
	}
	if _, err := s.teams.FindByID(ctx, teamID); err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return auth.Deny(auth.CodeTeamNotFound, "Team not found.")
		}
		return err
	}
	return s.teams.Update(ctx, teamID, upd)
}

// DeleteTeam removes a team; members fall back to having no team.
func (s *Service) DeleteTeam(ctx context.Context, session *auth.Session, teamID string) error {
	if session == nil {
		return auth.Deny(auth.CodeUnauthorized, "Must be signed-in.")
	}
	if !session.IsAdmin() {
		return auth.Deny(auth.CodeForbidden, "Only Admin can delete a team.")
	}
	if _, err := s.teams.FindByID(ctx, teamID); err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return auth.Deny(auth.CodeTeamNotFound, "Team not found.")
		}
		return err
	}
	return s.teams.Delete(ctx, teamID)
}
