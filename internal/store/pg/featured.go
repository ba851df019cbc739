package pg

import (
	"context"
	"database/sql"

	"pixelsmith.org/internal/content"
)

// Featured implements content.FeaturedStore.
type Featured struct {
	db *sql.DB
}

var _ content.FeaturedStore = (*Featured)(nil)

func (s *Featured) Add(ctx context.Context, f *content.Featured) error {
	_, err := s.db.ExecContext(ctx, `
		insert into featured (id, content_type, content_id, is_highlight, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6)
	`, f.ID, string(f.ContentType), f.ContentID, f.IsHighlight, f.CreatedAt, f.UpdatedAt)
	return err
}

func (s *Featured) Remove(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from featured where id=$1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Featured) List(ctx context.Context) ([]content.Featured, error) {
	return s.list(ctx, `
		select id, content_type, content_id, is_highlight, created_at, updated_at
		from featured order by created_at desc
	`)
}

func (s *Featured) Highlights(ctx context.Context) ([]content.Featured, error) {
	return s.list(ctx, `
		select id, content_type, content_id, is_highlight, created_at, updated_at
		from featured where is_highlight order by created_at desc
	`)
}

func (s *Featured) list(ctx context.Context, query string) ([]content.Featured, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []content.Featured
	for rows.Next() {
		var (
			f           content.Featured
			contentType string
		)
		if err := rows.Scan(&f.ID, &contentType, &f.ContentID, &f.IsHighlight, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		f.ContentType = content.FeaturedType(contentType)
		res = append(res, f)
	}
	return res, rows.Err()
}
