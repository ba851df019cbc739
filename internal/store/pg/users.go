package pg

import (
	"context"
	"database/sql"
	"errors"

	"pixelsmith.org/internal/auth"
	"pixelsmith.org/internal/directory"
)

// Users implements directory.UserStore.
type Users struct {
	db *sql.DB
}

var _ directory.UserStore = (*Users)(nil)

const userColumns = `id, name, email, password_hash, profile_img_key, phone_number, links, team_id, designation, roles, created_at, updated_at`

func (s *Users) Create(ctx context.Context, u *directory.User) error {
	links, err := encodeJSON(emptyIfNil(u.Links))
	if err != nil {
		return err
	}
	roles, err := encodeJSON(auth.RoleStrings(u.Roles))
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		insert into users (`+userColumns+`)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, u.ID, u.Name, u.Email, u.PasswordHash, u.ProfileImgKey, u.PhoneNumber,
		links, u.TeamID, string(u.Designation), roles, u.CreatedAt, u.UpdatedAt)
	return err
}

func (s *Users) FindByID(ctx context.Context, id string) (*directory.User, error) {
	return s.findOne(ctx, `select `+userColumns+` from users where id=$1`, id)
}

func (s *Users) FindByEmail(ctx context.Context, email string) (*directory.User, error) {
	return s.findOne(ctx, `select `+userColumns+` from users where email=$1`, email)
}

func (s *Users) findOne(ctx context.Context, query string, arg any) (*directory.User, error) {
	var (
		u           directory.User
		links       []byte
		roles       []byte
		designation string
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.ProfileImgKey, &u.PhoneNumber,
		&links, &u.TeamID, &designation, &roles, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := decodeJSON(links, &u.Links); err != nil {
		return nil, err
	}
	var rawRoles []string
	if err := decodeJSON(roles, &rawRoles); err != nil {
		return nil, err
	}
	u.Roles = auth.NormalizeRoles(rawRoles)
	u.Designation = parseDesignation(designation)
	return &u, nil
}

func (s *Users) List(ctx context.Context, page, limit int) ([]directory.UserSummary, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `select count(*) from users`).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	rows, err := s.db.QueryContext(ctx, `
		select id, name, email, roles, designation, team_id
		from users
		order by created_at asc, id asc
		limit $1 offset $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var res []directory.UserSummary
	for rows.Next() {
		var (
			u           directory.UserSummary
			roles       []byte
			designation string
		)
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &roles, &designation, &u.TeamID); err != nil {
			return nil, 0, err
		}
		var rawRoles []string
		if err := decodeJSON(roles, &rawRoles); err != nil {
			return nil, 0, err
		}
		u.Roles = auth.NormalizeRoles(rawRoles)
		u.Designation = parseDesignation(designation)
		res = append(res, u)
	}
	return res, total, rows.Err()
}

func (s *Users) UpdateProfile(ctx context.Context, id string, upd directory.ProfileUpdate) error {
	var links any
	if upd.Links != nil {
		b, err := encodeJSON(upd.Links)
		if err != nil {
			return err
		}
		links = b
	}
	res, err := s.db.ExecContext(ctx, `
		update users set
			name            = coalesce($2, name),
			phone_number    = coalesce($3, phone_number),
			links           = coalesce($4, links),
			profile_img_key = coalesce($5, profile_img_key),
			updated_at      = now()
		where id=$1
	`, id, upd.Name, upd.PhoneNumber, links, upd.ProfileImgKey)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Users) SetPasswordHash(ctx context.Context, id string, hash string) error {
	res, err := s.db.ExecContext(ctx, `
		update users set password_hash=$2, updated_at=now() where id=$1
	`, id, hash)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Users) SetTeam(ctx context.Context, id string, teamID *string) error {
	res, err := s.db.ExecContext(ctx, `
		update users set team_id=$2, updated_at=now() where id=$1
	`, id, teamID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Users) SetAssignment(ctx context.Context, id string, roles []auth.Role, designation auth.Designation) error {
	encoded, err := encodeJSON(auth.RoleStrings(roles))
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		update users set roles=$2, designation=$3, updated_at=now() where id=$1
	`, id, encoded, string(designation))
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Users) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from users where id=$1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return auth.ErrNotFound
	}
	return nil
}

func emptyIfNil(links []directory.Link) []directory.Link {
	if links == nil {
		return []directory.Link{}
	}
	return links
}

func parseDesignation(raw string) auth.Designation {
	if d, ok := auth.ParseDesignation(raw); ok {
		return d
	}
	return auth.DesignationNone
}
