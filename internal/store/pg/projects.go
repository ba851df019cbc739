package pg

import (
	"context"
	"database/sql"

	"pixelsmith.org/internal/auth"
	"pixelsmith.org/internal/content"
)

// Projects implements content.ProjectStore.
type Projects struct {
	db *sql.DB
}

var _ content.ProjectStore = (*Projects)(nil)

const projectColumns = `id, portfolio, title, description, tags, author_id, collaborators, links, cover_img_key, created_at, updated_at`

func (s *Projects) Create(ctx context.Context, p *content.Project) error {
	tags, err := encodeJSON(emptyStrings(p.Tags))
	if err != nil {
		return err
	}
	collaborators, err := encodeJSON(emptyStrings(p.Collaborators))
	if err != nil {
		return err
	}
	links, err := encodeJSON(emptyIfNil(p.Links))
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		insert into projects (`+projectColumns+`)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, p.ID, string(p.Portfolio), p.Title, p.Description, tags, p.AuthorID,
		collaborators, links, p.CoverImgKey, p.CreatedAt, p.UpdatedAt)
	return err
}

func (s *Projects) FindByID(ctx context.Context, id string) (*content.Project, error) {
	rows, err := s.list(ctx, `select `+projectColumns+` from projects where id=$1`, id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, auth.ErrNotFound
	}
	return &rows[0], nil
}

func (s *Projects) List(ctx context.Context, portfolio content.Portfolio) ([]content.Project, error) {
	if portfolio == "" {
		return s.list(ctx, `select `+projectColumns+` from projects order by created_at desc`)
	}
	return s.list(ctx, `
		select `+projectColumns+` from projects where portfolio=$1 order by created_at desc
	`, string(portfolio))
}

func (s *Projects) ListByAuthor(ctx context.Context, authorID string) ([]content.Project, error) {
	return s.list(ctx, `
		select `+projectColumns+` from projects where author_id=$1 order by created_at desc
	`, authorID)
}

func (s *Projects) list(ctx context.Context, query string, args ...any) ([]content.Project, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []content.Project
	for rows.Next() {
		var (
			p             content.Project
			portfolio     string
			tags          []byte
			collaborators []byte
			links         []byte
		)
		if err := rows.Scan(&p.ID, &portfolio, &p.Title, &p.Description, &tags,
			&p.AuthorID, &collaborators, &links, &p.CoverImgKey, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.Portfolio = content.Portfolio(portfolio)
		if err := decodeJSON(tags, &p.Tags); err != nil {
			return nil, err
		}
		if err := decodeJSON(collaborators, &p.Collaborators); err != nil {
			return nil, err
		}
		if err := decodeJSON(links, &p.Links); err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

func (s *Projects) Update(ctx context.Context, id string, upd content.ProjectUpdate) error {
	var tags, links any
	if upd.Tags != nil {
		b, err := encodeJSON(upd.Tags)
		if err != nil {
			return err
		}
		tags = b
	}
	if upd.Links != nil {
		b, err := encodeJSON(upd.Links)
		if err != nil {
			return err
		}
		links = b
	}
	res, err := s.db.ExecContext(ctx, `
		update projects set
			title         = coalesce($2, title),
			description   = coalesce($3, description),
			tags          = coalesce($4, tags),
			links         = coalesce($5, links),
			cover_img_key = coalesce($6, cover_img_key),
			updated_at    = now()
		where id=$1
	`, id, upd.Title, upd.Description, tags, links, upd.CoverImgKey)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Projects) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from projects where id=$1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
