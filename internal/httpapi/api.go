// Package httpapi is the HTTP layer: routing, middleware, the route guard
// and the JSON handlers over the domain services.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"

	"pixelsmith.org/internal/auth"
	"pixelsmith.org/internal/content"
	"pixelsmith.org/internal/directory"
	"pixelsmith.org/internal/identity"
	"pixelsmith.org/internal/obs"
)

// ReadyProbe reports whether downstream dependencies answer.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Deps carries everything the HTTP layer is wired with.
type Deps struct {
	Codec     *auth.Codec
	Extractor *auth.Extractor
	Guard     *Guard
	Identity  *identity.Service
	Directory *directory.Service
	Content   *content.Service

	// Pages serves the guarded page routes (/auth, /dashboard, /admin).
	// Defaults to a minimal shell when nil.
	Pages http.Handler

	ReadyProbe    ReadyProbe
	Version       string
	SecureCookies bool

	RateLimitBurst     int
	RateLimitPerSecond int
	MaxBodyBytes       int64
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	codec      *auth.Codec
	extractor  *auth.Extractor
	guard      *Guard
	identity   *identity.Service
	directory  *directory.Service
	content    *content.Service
	readyProbe ReadyProbe
	version    string
	secure     bool

	rateBurst     int
	ratePerSecond int
	maxBodyBytes  int64
}

func New(d Deps) *API {
	a := &API{
		mux:           http.NewServeMux(),
		codec:         d.Codec,
		extractor:     d.Extractor,
		guard:         d.Guard,
		identity:      d.Identity,
		directory:     d.Directory,
		content:       d.Content,
		readyProbe:    d.ReadyProbe,
		version:       d.Version,
		secure:        d.SecureCookies,
		rateBurst:     d.RateLimitBurst,
		ratePerSecond: d.RateLimitPerSecond,
		maxBodyBytes:  d.MaxBodyBytes,
	}
	if a.rateBurst <= 0 {
		a.rateBurst = 60
	}
	if a.ratePerSecond <= 0 {
		a.ratePerSecond = 20
	}
	if a.maxBodyBytes <= 0 {
		a.maxBodyBytes = 1 << 20
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// account lifecycle
	a.mux.HandleFunc("/v1/auth/sign-in", a.handleSignIn)
	a.mux.HandleFunc("/v1/auth/sign-up", a.handleSignUp)
	a.mux.HandleFunc("/v1/auth/sign-up/verify", a.handleVerifySignUp)
	a.mux.HandleFunc("/v1/auth/sign-up/resend", a.handleResendOTP)
	a.mux.HandleFunc("/v1/auth/google", a.handleGoogleSignIn)
	a.mux.HandleFunc("/v1/auth/sign-out", a.handleSignOut)
	a.mux.HandleFunc("/v1/auth/me", a.handleMe)
	a.mux.HandleFunc("/v1/auth/password", a.handleChangePassword)

	// directory
	a.mux.HandleFunc("/v1/users", a.handleUsersCollection)
	a.mux.HandleFunc("/v1/users/", a.handleUserResource)
	a.mux.HandleFunc("/v1/teams", a.handleTeamsCollection)
	a.mux.HandleFunc("/v1/teams/", a.handleTeamResource)

	// content
	a.mux.HandleFunc("/v1/blogs", a.handleBlogsCollection)
	a.mux.HandleFunc("/v1/blogs/", a.handleBlogResource)
	a.mux.HandleFunc("/v1/projects", a.handleProjectsCollection)
	a.mux.HandleFunc("/v1/projects/", a.handleProjectResource)
	a.mux.HandleFunc("/v1/featured", a.handleFeaturedCollection)
	a.mux.HandleFunc("/v1/featured/", a.handleFeaturedResource)

	// guarded page routes; the guard decides before these run
	pages := d.Pages
	if pages == nil {
		pages = http.HandlerFunc(a.pageShell)
	}
	for _, p := range []string{"/auth", "/auth/", "/dashboard", "/dashboard/", "/admin", "/admin/"} {
		a.mux.Handle(p, pages)
	}

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler assembles the middleware chain around the mux.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withSession(h)
	if a.guard != nil {
		h = a.guard.Middleware(h)
	}
	h = RateLimit(h, a.rateBurst, a.ratePerSecond)
	h = MaxBodyBytes(h, a.maxBodyBytes)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

// withSession materializes the caller's session once per request and stashes
// it in the context. Anonymous stays anonymous; only a store fault aborts.
func (a *API) withSession(next http.Handler) http.Handler {
	if a.extractor == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := a.extractor.Extract(r)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		if session != nil {
			r = r.WithContext(auth.ContextWithSession(r.Context(), session))
		}
		next.ServeHTTP(w, r)
	})
}

func sessionFrom(r *http.Request) *auth.Session {
	if s, ok := auth.SessionFromContext(r.Context()); ok {
		return s
	}
	return nil
}

// pageShell is the placeholder page response used when no frontend handler
// is wired in. Reaching it at all means the guard allowed the request.
func (a *API) pageShell(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, map[string]any{
		"page": r.URL.Path,
	})
}
