package content

import (
	"context"
	"errors"
	"strings"
	"time"

	"pixelsmith.org/internal/auth"
	"pixelsmith.org/internal/ids"
)

// Service implements content operations. Reads are public; mutations take
// the materialized session and re-derive the permission per operation from
// the resource's ownership data — the path alone cannot tell a member
// editing their own post from an admin editing anyone's.
type Service struct {
	blogs    BlogStore
	projects ProjectStore
	featured FeaturedStore
	now      func() time.Time
}

// NewService constructs a content service.
func NewService(blogs BlogStore, projects ProjectStore, featured FeaturedStore) *Service {
	return &Service{blogs: blogs, projects: projects, featured: featured, now: time.Now}
}

// ListBlogs is the public blog index; content bodies are omitted upstream.
func (s *Service) ListBlogs(ctx context.Context) ([]Blog, error) {
	return s.blogs.List(ctx)
}

// MyBlogs lists the caller's own posts.
func (s *Service) MyBlogs(ctx context.Context, session *auth.Session) ([]Blog, error) {
	if session == nil {
		return nil, auth.Deny(auth.CodeUnauthorized, "Must be signed-in to see your blogs.")
	}
	return s.blogs.ListByAuthor(ctx, session.UserID)
}

// BlogBySlug resolves one post for the public reader.
func (s *Service) BlogBySlug(ctx context.Context, slug string) (*Blog, error) {
	blog, err := s.blogs.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return nil, auth.Deny(auth.CodeSlugNotFound, "Couldn't find this slug.")
		}
		return nil, err
	}
	return blog, nil
}

// CreateBlog publishes a new post under a unique slug. Member only.
func (s *Service) CreateBlog(ctx context.Context, session *auth.Session, title, slug, body string, tags []string) (*Blog, error) {
	if session == nil {
		return nil, auth.Deny(auth.CodeUnauthorized, "Must be signed-in.")
	}
	if !session.IsMember() {
		return nil, auth.Deny(auth.CodeForbidden, "Only members can create a new blog.")
	}
	slug = strings.TrimSpace(strings.ToLower(slug))
	if slug == "" || strings.TrimSpace(title) == "" {
		return nil, auth.ErrInvalidInput
	}
	if _, err := s.blogs.FindBySlug(ctx, slug); err == nil {
		return nil, auth.Deny(auth.CodeSlugAlreadyInUse, "Blog with the same slug already exists. Use another slug.")
	} else if !errors.Is(err, auth.ErrNotFound) {
		return nil, err
	}
	now := s.now().UTC()
	blog := &Blog{
		ID:        ids.New(),
		Title:     strings.TrimSpace(title),
		Slug:      slug,
		Content:   body,
		Tags:      tags,
		AuthorID:  session.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.blogs.Create(ctx, blog); err != nil {
		return nil, err
	}
	return blog, nil
}

// UpdateBlog edits a post. Author or admin.
func (s *Service) UpdateBlog(ctx context.Context, session *auth.Session, blogID string, upd BlogUpdate) error {
	if session == nil {
		return auth.Deny(auth.CodeUnauthorized, "Must be signed-in.")
	}
	blog, err := s.blogs.FindByID(ctx, blogID)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return auth.Deny(auth.CodeBlogNotFound, "Blog not found.")
		}
		return err
	}
	if !session.IsAdmin() && blog.AuthorID != session.UserID {
		return auth.Deny(auth.CodeForbidden, "Only admin or author can update a blog.")
	}
	return s.blogs.Update(ctx, blogID, upd)
}

// RemoveBlog deletes a post. Author or admin.
func (s *Service) RemoveBlog(ctx context.Context, session *auth.Session, blogID string) error {
	if session == nil {
		return auth.Deny(auth.CodeUnauthorized, "Must be signed-in.")
	}
	blog, err := s.blogs.FindByID(ctx, blogID)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return auth.Deny(auth.CodeBlogNotFound, "Blog not found.")
		}
		return err
	}
	if !session.IsAdmin() && blog.AuthorID != session.UserID {
		return auth.Deny(auth.CodeForbidden, "Only admin or author can remove a blog.")
	}
	return s.blogs.Delete(ctx, blogID)
}

// ListProjects is the public portfolio, optionally filtered by bucket.
func (s *Service) ListProjects(ctx context.Context, portfolio Portfolio) ([]Project, error) {
	if portfolio != "" && !KnownPortfolio(portfolio) {
		return nil, auth.ErrInvalidInput
	}
	return s.projects.List(ctx, portfolio)
}

// MyProjects lists the caller's own portfolio entries.
func (s *Service) MyProjects(ctx context.Context, session *auth.Session) ([]Project, error) {
	if session == nil {
		return nil, auth.Deny(auth.CodeUnauthorized, "Must be signed-in to see your projects.")
	}
	return s.projects.ListByAuthor(ctx, session.UserID)
}

// CreateProject adds a portfolio entry. Member only.
func (s *Service) CreateProject(ctx context.Context, session *auth.Session, p Project) (*Project, error) {
	if session == nil {
		return nil, auth.Deny(auth.CodeUnauthorized, "Must be signed-in.")
	}
	if !session.IsMember() {
		return nil, auth.Deny(auth.CodeForbidden, "Only members can create a new project.")
	}
	if !KnownPortfolio(p.Portfolio) || strings.TrimSpace(p.Title) == "" {
		return nil, auth.ErrInvalidInput
	}
	now := s.now().UTC()
	p.ID = ids.New()
	p.Title = strings.TrimSpace(p.Title)
	p.AuthorID = session.UserID
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := s.projects.Create(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProject edits an entry. Author or admin.
func (s *Service) UpdateProject(ctx context.Context, session *auth.Session, projectID string, upd ProjectUpdate) error {
	if session == nil {
		return auth.Deny(auth.CodeUnauthorized, "Must be signed-in.")
	}
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return auth.Deny(auth.CodeProjectNotFound, "Project not found.")
		}
		return err
	}
	if !session.IsAdmin() && project.AuthorID != session.UserID {
		return auth.Deny(auth.CodeForbidden, "Only admin or author can update a project.")
	}
	return s.projects.Update(ctx, projectID, upd)
}

// RemoveProject deletes an entry. Author or admin.
func (s *Service) RemoveProject(ctx context.Context, session *auth.Session, projectID string) error {
	if session == nil {
		return auth.Deny(auth.CodeUnauthorized, "Must be signed-in.")
	}
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return auth.Deny(auth.CodeProjectNotFound, "Project not found.")
		}
		return err
	}
	if !session.IsAdmin() && project.AuthorID != session.UserID {
		return auth.Deny(auth.CodeForbidden, "Only admin or author can remove a project.")
	}
	return s.projects.Delete(ctx, projectID)
}

// Highlights is the public landing-page feed with resolved titles. Entries
// whose content has since been deleted are skipped, not errored.
func (s *Service) Highlights(ctx context.Context) ([]FeaturedItem, error) {
	entries, err := s.featured.Highlights(ctx)
	if err != nil {
		return nil, err
	}
	return s.resolveTitles(ctx, entries)
}

// ListFeatured is the admin curation table. Admin only.
func (s *Service) ListFeatured(ctx context.Context, session *auth.Session) ([]FeaturedItem, error) {
	if session == nil {
		return nil, auth.Deny(auth.CodeUnauthorized, "Must be signed-in.")
	}
	if !session.IsAdmin() {
		return nil, auth.Deny(auth.CodeForbidden, "Only Admin can manage featured content.")
	}
	entries, err := s.featured.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.resolveTitles(ctx, entries)
}

// Feature pins content on the landing page. Admin only.
func (s *Service) Feature(ctx context.Context, session *auth.Session, contentType FeaturedType, contentID string, highlight bool) (*Featured, error) {
	if session == nil {
		return nil, auth.Deny(auth.CodeUnauthorized, "Must be signed-in.")
	}
	if !session.IsAdmin() {
		return nil, auth.Deny(auth.CodeForbidden, "Only Admin can manage featured content.")
	}
	if !KnownFeaturedType(contentType) {
		return nil, auth.ErrInvalidInput
	}
	if _, err := s.lookupContent(ctx, contentType, contentID); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	entry := &Featured{
		ID:          ids.New(),
		ContentType: contentType,
		ContentID:   contentID,
		IsHighlight: highlight,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.featured.Add(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Unfeature removes a featured entry. Admin only.
func (s *Service) Unfeature(ctx context.Context, session *auth.Session, id string) error {
	if session == nil {
		return auth.Deny(auth.CodeUnauthorized, "Must be signed-in.")
	}
	if !session.IsAdmin() {
		return auth.Deny(auth.CodeForbidden, "Only Admin can manage featured content.")
	}
	return s.featured.Remove(ctx, id)
}

func (s *Service) resolveTitles(ctx context.Context, entries []Featured) ([]FeaturedItem, error) {
	items := make([]FeaturedItem, 0, len(entries))
	for _, entry := range entries {
		title, err := s.lookupTitle(ctx, entry.ContentType, entry.ContentID)
		if err != nil {
			if errors.Is(err, auth.ErrNotFound) {
				continue
			}
			return nil, err
		}
		items = append(items, FeaturedItem{Featured: entry, ContentTitle: title})
	}
	return items, nil
}

func (s *Service) lookupTitle(ctx context.Context, t FeaturedType, id string) (string, error) {
	switch t {
	case FeaturedBlog:
		blog, err := s.blogs.FindByID(ctx, id)
		if err != nil {
			return "", err
		}
		return blog.Title, nil
	default:
		project, err := s.projects.FindByID(ctx, id)
		if err != nil {
			return "", err
		}
		return project.Title, nil
	}
}

func (s *Service) lookupContent(ctx context.Context, t FeaturedType, id string) (string, error) {
	title, err := s.lookupTitle(ctx, t, id)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			if t == FeaturedBlog {
				return "", auth.Deny(auth.CodeBlogNotFound, "Blog not found.")
			}
			return "", auth.Deny(auth.CodeProjectNotFound, "Project not found.")
		}
		return "", err
	}
	return title, nil
}
