// Package directory manages the studio's user and team records.
package directory

import (
	"time"

	"pixelsmith.org/internal/auth"
)

// Link is a labelled external URL shown on profiles and team pages.
type Link struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// User is a studio account. PasswordHash is nil for OAuth-provisioned
// accounts that never set a password.
type User struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Email         string           `json:"email"`
	PasswordHash  *string          `json:"-"`
	ProfileImgKey *string          `json:"profile_img_key"`
	PhoneNumber   *string          `json:"phone_number,omitempty"`
	Links         []Link           `json:"links"`
	TeamID        *string          `json:"team_id"`
	Designation   auth.Designation `json:"designation"`
	Roles         []auth.Role      `json:"roles"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// Team groups users. Membership is derived from users.team_id.
type Team struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CoverImgKey *string   `json:"cover_img_key"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MemberSummary is the public projection of a team member.
type MemberSummary struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Links         []Link           `json:"links"`
	ProfileImgKey *string          `json:"profile_img_key"`
	Designation   auth.Designation `json:"designation"`
}

// TeamDetail is a team with its resolved members.
type TeamDetail struct {
	Team
	Members []MemberSummary `json:"members"`
}

// UserSummary is the admin console's list row.
type UserSummary struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Email       string           `json:"email"`
	Roles       []auth.Role      `json:"roles"`
	Designation auth.Designation `json:"designation"`
	TeamID      *string          `json:"team_id"`
}

// UserPage is a paginated slice of user summaries.
type UserPage struct {
	Users      []UserSummary `json:"users"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int           `json:"total_pages"`
}

// ProfileUpdate carries the self-service profile fields. Nil means "leave
// unchanged".
type ProfileUpdate struct {
	Name          *string
	PhoneNumber   *string
	Links         []Link
	ProfileImgKey *string
}

// TeamUpdate carries admin-editable team fields.
type TeamUpdate struct {
	Name        *string
	Description *string
	CoverImgKey *string
}
