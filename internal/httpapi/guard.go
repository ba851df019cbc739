package httpapi

import (
	"net/http"
	"strings"

	"pixelsmith.org/internal/auth"
	"pixelsmith.org/internal/obs"
)

// Page classes for the route guard, also the metric label values.
const (
	pagePublic = "public"
	pageAuth   = "auth"
	pageMember = "member"
	pageAdmin  = "admin"
)

// Guard decides allow/redirect/deny for page routes before any handler runs.
//
// It runs on every request with an attacker-supplied cookie, so the whole
// decision is decode-only by default: token verification plus a prefix match,
// no store lookup. That means the roles it sees are the roles at token
// issuance. The extractor's store-backed path (trustTokenRoles=false) closes
// that staleness window at the cost of a store hit per guarded request.
// Service-level checks never rely on this guard either way.
type Guard struct {
	codec           *auth.Codec
	extractor       *auth.Extractor
	cookieName      string
	signInPath      string
	dashboardPath   string
	trustTokenRoles bool
}

// NewGuard constructs a Guard. Paths fall back to the standard targets when
// empty.
func NewGuard(codec *auth.Codec, extractor *auth.Extractor, cookieName, signInPath, dashboardPath string, trustTokenRoles bool) *Guard {
	if cookieName == "" {
		cookieName = auth.DefaultSessionCookie
	}
	if signInPath == "" {
		signInPath = "/auth/sign-in"
	}
	if dashboardPath == "" {
		dashboardPath = "/dashboard"
	}
	return &Guard{
		codec:           codec,
		extractor:       extractor,
		cookieName:      cookieName,
		signInPath:      signInPath,
		dashboardPath:   dashboardPath,
		trustTokenRoles: trustTokenRoles,
	}
}

// classifyPage buckets a request path by longest matching protected prefix.
func classifyPage(path string) string {
	switch {
	case matchesPrefix(path, "/auth"):
		return pageAuth
	case matchesPrefix(path, "/admin"):
		return pageAdmin
	case matchesPrefix(path, "/dashboard"):
		return pageMember
	default:
		return pagePublic
	}
}

func matchesPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// Middleware evaluates the transition table once per request, first match
// wins:
//
//  1. not authenticated, member or admin page  -> redirect to sign-in
//  2. authenticated, auth page                 -> redirect to dashboard
//  3. member or admin page, not MEMBER         -> 403
//  4. admin page, not ADMIN                    -> 403
//  5. otherwise                                -> pass through
//
// Stateless and idempotent: the same (path, cookie) pair always yields the
// same decision.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := classifyPage(r.URL.Path)
		if page == pagePublic {
			next.ServeHTTP(w, r)
			return
		}

		roles, authenticated, err := g.roleClaims(r)
		if err != nil {
			// Store fault on the non-trusting path; never a token problem.
			handleServiceError(w, r, err)
			return
		}
		isMember := auth.HasRole(roles, auth.RoleMember)
		isAdmin := auth.HasRole(roles, auth.RoleAdmin)

		switch {
		case !authenticated && (page == pageMember || page == pageAdmin):
			obs.GuardDecision(page, "redirect_sign_in")
			http.Redirect(w, r, g.signInPath, http.StatusFound)
		case authenticated && page == pageAuth:
			obs.GuardDecision(page, "redirect_dashboard")
			http.Redirect(w, r, g.dashboardPath, http.StatusFound)
		case (page == pageMember || page == pageAdmin) && !isMember:
			obs.GuardDecision(page, "forbidden")
			writeError(w, r, http.StatusForbidden,
				"You don't have permission to access this page. Contact an administrator.")
		case page == pageAdmin && !isAdmin:
			obs.GuardDecision(page, "forbidden")
			writeError(w, r, http.StatusForbidden,
				"You don't have permission to access this page. Contact an administrator.")
		default:
			obs.GuardDecision(page, "allow")
			next.ServeHTTP(w, r)
		}
	})
}

// roleClaims derives the guard's inputs from the session cookie. With
// trustTokenRoles it reads the token's embedded roles; otherwise it
// materializes a session to get the store's current roles.
func (g *Guard) roleClaims(r *http.Request) (roles []auth.Role, authenticated bool, err error) {
	cookie, cerr := r.Cookie(g.cookieName)
	if cerr != nil || cookie.Value == "" {
		return nil, false, nil
	}
	if g.trustTokenRoles {
		roles, ok := g.codec.RoleClaims(cookie.Value)
		return roles, ok, nil
	}
	session, err := g.extractor.FromToken(r.Context(), cookie.Value)
	if err != nil {
		return nil, false, err
	}
	if session == nil {
		return nil, false, nil
	}
	return session.UserRoles, true, nil
}
