package httpapi

import (
	"net/http"
	"strings"

	"pixelsmith.org/internal/audit"
	"pixelsmith.org/internal/content"
	"pixelsmith.org/internal/directory"
)

type createBlogRequest struct {
	Title   string   `json:"title"`
	Slug    string   `json:"slug"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

type blogUpdateRequest struct {
	Title       *string  `json:"title"`
	Content     *string  `json:"content"`
	Tags        []string `json:"tags"`
	CoverImgKey *string  `json:"cover_img_key"`
}

type createProjectRequest struct {
	Portfolio   string           `json:"portfolio"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Tags        []string         `json:"tags"`
	Links       []directory.Link `json:"links"`
	CoverImgKey *string          `json:"cover_img_key"`
}

type projectUpdateRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Tags        []string         `json:"tags"`
	Links       []directory.Link `json:"links"`
	CoverImgKey *string          `json:"cover_img_key"`
}

type featureRequest struct {
	ContentType string `json:"content_type"`
	ContentID   string `json:"content_id"`
	IsHighlight bool   `json:"is_highlight"`
}

func (a *API) handleBlogsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		blogs, err := a.content.ListBlogs(r.Context())
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, blogs)
	case http.MethodPost:
		a.createBlog(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleBlogResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/blogs/")
	switch {
	case path == "me":
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		blogs, err := a.content.MyBlogs(r.Context(), sessionFrom(r))
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, blogs)
	case strings.HasPrefix(path, "slug/"):
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		slug := strings.TrimPrefix(path, "slug/")
		blog, err := a.content.BlogBySlug(r.Context(), slug)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, blog)
	case path == "" || strings.Contains(path, "/"):
		writeError(w, r, http.StatusNotFound, "resource not found")
	default:
		switch r.Method {
		case http.MethodPatch:
			a.updateBlog(w, r, path)
		case http.MethodDelete:
			a.removeBlog(w, r, path)
		default:
			methodNotAllowed(w, r, http.MethodPatch, http.MethodDelete)
		}
	}
}

func (a *API) createBlog(w http.ResponseWriter, r *http.Request) {
	var req createBlogRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	blog, err := a.content.CreateBlog(r.Context(), sessionFrom(r), req.Title, req.Slug, req.Content, req.Tags)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, blog)
}

func (a *API) updateBlog(w http.ResponseWriter, r *http.Request, id string) {
	var req blogUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	upd := content.BlogUpdate{
		Title:       req.Title,
		Content:     req.Content,
		Tags:        req.Tags,
		CoverImgKey: req.CoverImgKey,
	}
	if err := a.content.UpdateBlog(r.Context(), sessionFrom(r), id, upd); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"message": "Blog updated."})
}

func (a *API) removeBlog(w http.ResponseWriter, r *http.Request, id string) {
	if err := a.content.RemoveBlog(r.Context(), sessionFrom(r), id); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"message": "Blog removed."})
}

func (a *API) handleProjectsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		portfolio := content.Portfolio(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("portfolio"))))
		projects, err := a.content.ListProjects(r.Context(), portfolio)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, projects)
	case http.MethodPost:
		a.createProject(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleProjectResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/projects/")
	switch {
	case path == "me":
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		projects, err := a.content.MyProjects(r.Context(), sessionFrom(r))
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, projects)
	case path == "" || strings.Contains(path, "/"):
		writeError(w, r, http.StatusNotFound, "resource not found")
	default:
		switch r.Method {
		case http.MethodPatch:
			a.updateProject(w, r, path)
		case http.MethodDelete:
			a.removeProject(w, r, path)
		default:
			methodNotAllowed(w, r, http.MethodPatch, http.MethodDelete)
		}
	}
}

func (a *API) createProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	project, err := a.content.CreateProject(r.Context(), sessionFrom(r), content.Project{
		Portfolio:   content.Portfolio(strings.ToUpper(strings.TrimSpace(req.Portfolio))),
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		Links:       req.Links,
		CoverImgKey: req.CoverImgKey,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, project)
}

func (a *API) updateProject(w http.ResponseWriter, r *http.Request, id string) {
	var req projectUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	upd := content.ProjectUpdate{
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		Links:       req.Links,
		CoverImgKey: req.CoverImgKey,
	}
	if err := a.content.UpdateProject(r.Context(), sessionFrom(r), id, upd); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"message": "Project updated."})
}

func (a *API) removeProject(w http.ResponseWriter, r *http.Request, id string) {
	if err := a.content.RemoveProject(r.Context(), sessionFrom(r), id); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"message": "Project removed."})
}

func (a *API) handleFeaturedCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		items, err := a.content.ListFeatured(r.Context(), sessionFrom(r))
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, items)
	case http.MethodPost:
		a.feature(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleFeaturedResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/featured/")
	if path == "highlights" {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		items, err := a.content.Highlights(r.Context())
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, items)
		return
	}
	if path == "" || strings.Contains(path, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodDelete:
		if err := a.content.Unfeature(r.Context(), sessionFrom(r), path); err != nil {
			handleServiceError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "content.featured.removed", map[string]any{
			"featured_id": path,
		})
		writeData(w, http.StatusOK, map[string]any{"message": "Featured entry removed."})
	default:
		methodNotAllowed(w, r, http.MethodDelete)
	}
}

func (a *API) feature(w http.ResponseWriter, r *http.Request) {
	var req featureRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	contentType := content.FeaturedType(strings.ToUpper(strings.TrimSpace(req.ContentType)))
	entry, err := a.content.Feature(r.Context(), sessionFrom(r), contentType, req.ContentID, req.IsHighlight)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "content.featured.added", map[string]any{
		"featured_id":  entry.ID,
		"content_type": string(entry.ContentType),
		"content_id":   entry.ContentID,
	})
	writeData(w, http.StatusCreated, entry)
}
