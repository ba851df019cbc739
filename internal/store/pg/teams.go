package pg

import (
	"context"
	"database/sql"
	"errors"

	"pixelsmith.org/internal/auth"
	"pixelsmith.org/internal/directory"
)

// Teams implements directory.TeamStore. Membership is derived from
// users.team_id; deleting a team nulls the column via the FK.
type Teams struct {
	db *sql.DB
}

var _ directory.TeamStore = (*Teams)(nil)

func (s *Teams) Create(ctx context.Context, t *directory.Team) error {
	_, err := s.db.ExecContext(ctx, `
		insert into teams (id, name, description, cover_img_key, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6)
	`, t.ID, t.Name, t.Description, t.CoverImgKey, t.CreatedAt, t.UpdatedAt)
	return err
}

func (s *Teams) FindByID(ctx context.Context, id string) (*directory.Team, error) {
	var t directory.Team
	err := s.db.QueryRowContext(ctx, `
		select id, name, description, cover_img_key, created_at, updated_at
		from teams where id=$1
	`, id).Scan(&t.ID, &t.Name, &t.Description, &t.CoverImgKey, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Teams) List(ctx context.Context) ([]directory.Team, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, name, description, cover_img_key, created_at, updated_at
		from teams order by name asc
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []directory.Team
	for rows.Next() {
		var t directory.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.CoverImgKey, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

func (s *Teams) Members(ctx context.Context, teamID string) ([]directory.MemberSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, name, links, profile_img_key, designation
		from users where team_id=$1
		order by name asc
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []directory.MemberSummary
	for rows.Next() {
		var (
			m           directory.MemberSummary
			links       []byte
			designation string
		)
		if err := rows.Scan(&m.ID, &m.Name, &links, &m.ProfileImgKey, &designation); err != nil {
			return nil, err
		}
		if err := decodeJSON(links, &m.Links); err != nil {
			return nil, err
		}
		m.Designation = parseDesignation(designation)
		res = append(res, m)
	}
	return res, rows.Err()
}

func (s *Teams) Update(ctx context.Context, id string, upd directory.TeamUpdate) error {
	res, err := s.db.ExecContext(ctx, `
		update teams set
			name          = coalesce($2, name),
			description   = coalesce($3, description),
			cover_img_key = coalesce($4, cover_img_key),
			updated_at    = now()
		where id=$1
	`, id, upd.Name, upd.Description, upd.CoverImgKey)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Teams) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from teams where id=$1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
