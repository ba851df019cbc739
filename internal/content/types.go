// Package content manages the public site's blogs, portfolio projects and
// featured highlights.
package content

import (
	"context"
	"time"

	"pixelsmith.org/internal/directory"
)

// Portfolio buckets a project on the public site.
type Portfolio string

const (
	PortfolioGame     Portfolio = "GAME"
	PortfolioGraphics Portfolio = "GRAPHICS"
	PortfolioRnD      Portfolio = "RND"
)

// KnownPortfolio reports whether p is a recognized bucket.
func KnownPortfolio(p Portfolio) bool {
	switch p {
	case PortfolioGame, PortfolioGraphics, PortfolioRnD:
		return true
	}
	return false
}

// Blog is a long-form post addressed by slug.
type Blog struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Content       string    `json:"content,omitempty"`
	Tags          []string  `json:"tags"`
	AuthorID      string    `json:"author_id"`
	Collaborators []string  `json:"collaborators"`
	CoverImgKey   *string   `json:"cover_img_key"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Project is a portfolio entry.
type Project struct {
	ID            string           `json:"id"`
	Portfolio     Portfolio        `json:"portfolio"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Tags          []string         `json:"tags"`
	AuthorID      string           `json:"author_id"`
	Collaborators []string         `json:"collaborators"`
	Links         []directory.Link `json:"links"`
	CoverImgKey   *string          `json:"cover_img_key"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// FeaturedType names the content family a featured entry points at.
type FeaturedType string

const (
	FeaturedBlog     FeaturedType = "BLOG"
	FeaturedGame     FeaturedType = "GAME"
	FeaturedGraphics FeaturedType = "GRAPHICS"
	FeaturedRnD      FeaturedType = "RND"
)

// KnownFeaturedType reports whether t is a recognized content family.
func KnownFeaturedType(t FeaturedType) bool {
	switch t {
	case FeaturedBlog, FeaturedGame, FeaturedGraphics, FeaturedRnD:
		return true
	}
	return false
}

// Featured pins a piece of content on the landing page.
type Featured struct {
	ID          string       `json:"id"`
	ContentType FeaturedType `json:"content_type"`
	ContentID   string       `json:"content_id"`
	IsHighlight bool         `json:"is_highlight"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// FeaturedItem is a featured entry with its content title resolved.
type FeaturedItem struct {
	Featured
	ContentTitle string `json:"content_title"`
}

// BlogUpdate carries editable blog fields; nil leaves a field unchanged.
type BlogUpdate struct {
	Title       *string
	Content     *string
	Tags        []string
	CoverImgKey *string
}

// ProjectUpdate carries editable project fields.
type ProjectUpdate struct {
	Title       *string
	Description *string
	Tags        []string
	Links       []directory.Link
	CoverImgKey *string
}

// BlogStore is the persistence contract for blogs.
type BlogStore interface {
	Create(ctx context.Context, b *Blog) error
	FindByID(ctx context.Context, id string) (*Blog, error)
	FindBySlug(ctx context.Context, slug string) (*Blog, error)
	List(ctx context.Context) ([]Blog, error)
	ListByAuthor(ctx context.Context, authorID string) ([]Blog, error)
	Update(ctx context.Context, id string, upd BlogUpdate) error
	Delete(ctx context.Context, id string) error
}

// ProjectStore is the persistence contract for projects.
type ProjectStore interface {
	Create(ctx context.Context, p *Project) error
	FindByID(ctx context.Context, id string) (*Project, error)
	List(ctx context.Context, portfolio Portfolio) ([]Project, error)
	ListByAuthor(ctx context.Context, authorID string) ([]Project, error)
	Update(ctx context.Context, id string, upd ProjectUpdate) error
	Delete(ctx context.Context, id string) error
}

// FeaturedStore is the persistence contract for featured entries.
type FeaturedStore interface {
	Add(ctx context.Context, f *Featured) error
	Remove(ctx context.Context, id string) error
	List(ctx context.Context) ([]Featured, error)
	Highlights(ctx context.Context) ([]Featured, error)
}
