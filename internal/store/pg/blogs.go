package pg

import (
	"context"
	"database/sql"
	"errors"

	"pixelsmith.org/internal/auth"
	"pixelsmith.org/internal/content"
)

// Blogs implements content.BlogStore.
type Blogs struct {
	db *sql.DB
}

var _ content.BlogStore = (*Blogs)(nil)

const blogColumns = `id, title, slug, content, tags, author_id, collaborators, cover_img_key, created_at, updated_at`

func (s *Blogs) Create(ctx context.Context, b *content.Blog) error {
	tags, err := encodeJSON(emptyStrings(b.Tags))
	if err != nil {
		return err
	}
	collaborators, err := encodeJSON(emptyStrings(b.Collaborators))
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		insert into blogs (`+blogColumns+`)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, b.ID, b.Title, b.Slug, b.Content, tags, b.AuthorID, collaborators,
		b.CoverImgKey, b.CreatedAt, b.UpdatedAt)
	return err
}

func (s *Blogs) FindByID(ctx context.Context, id string) (*content.Blog, error) {
	return s.findOne(ctx, `select `+blogColumns+` from blogs where id=$1`, id)
}

func (s *Blogs) FindBySlug(ctx context.Context, slug string) (*content.Blog, error) {
	return s.findOne(ctx, `select `+blogColumns+` from blogs where slug=$1`, slug)
}

func (s *Blogs) findOne(ctx context.Context, query string, arg any) (*content.Blog, error) {
	var (
		b             content.Blog
		tags          []byte
		collaborators []byte
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&b.ID, &b.Title, &b.Slug, &b.Content, &tags, &b.AuthorID, &collaborators,
		&b.CoverImgKey, &b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := decodeJSON(tags, &b.Tags); err != nil {
		return nil, err
	}
	if err := decodeJSON(collaborators, &b.Collaborators); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Blogs) List(ctx context.Context) ([]content.Blog, error) {
	// Index view: bodies stay out of the payload.
	return s.list(ctx, `
		select id, title, slug, '', tags, author_id, collaborators, cover_img_key, created_at, updated_at
		from blogs order by created_at desc
	`)
}

func (s *Blogs) ListByAuthor(ctx context.Context, authorID string) ([]content.Blog, error) {
	return s.list(ctx, `
		select id, title, slug, '', tags, author_id, collaborators, cover_img_key, created_at, updated_at
		from blogs where author_id=$1 order by created_at desc
	`, authorID)
}

func (s *Blogs) list(ctx context.Context, query string, args ...any) ([]content.Blog, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []content.Blog
	for rows.Next() {
		var (
			b             content.Blog
			tags          []byte
			collaborators []byte
		)
		if err := rows.Scan(&b.ID, &b.Title, &b.Slug, &b.Content, &tags, &b.AuthorID,
			&collaborators, &b.CoverImgKey, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		if err := decodeJSON(tags, &b.Tags); err != nil {
			return nil, err
		}
		if err := decodeJSON(collaborators, &b.Collaborators); err != nil {
			return nil, err
		}
		res = append(res, b)
	}
	return res, rows.Err()
}

func (s *Blogs) Update(ctx context.Context, id string, upd content.BlogUpdate) error {
	var tags any
	if upd.Tags != nil {
		b, err := encodeJSON(upd.Tags)
		if err != nil {
			return err
		}
		tags = b
	}
	res, err := s.db.ExecContext(ctx, `
		update blogs set
			title         = coalesce($2, title),
			content       = coalesce($3, content),
			tags          = coalesce($4, tags),
			cover_img_key = coalesce($5, cover_img_key),
			updated_at    = now()
		where id=$1
	`, id, upd.Title, upd.Content, tags, upd.CoverImgKey)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Blogs) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from blogs where id=$1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func emptyStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
