package auth

import "strings"

// Role is a coarse access level. A user holds a set of roles, not a single
// one: checks are always set-membership ("includes ADMIN"), never equality.
type Role string

const (
	RoleGuest  Role = "GUEST"
	RoleMember Role = "MEMBER"
	RoleAdmin  Role = "ADMIN"
	RoleRoot   Role = "ROOT"
)

// displayRank orders roles for presentation only. Authorization decisions
// never consult this ranking.
var displayRank = map[Role]int{
	RoleGuest:  0,
	RoleMember: 1,
	RoleAdmin:  2,
	RoleRoot:   3,
}

// ParseRole normalizes raw input to a known role.
func ParseRole(raw string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := displayRank[r]; !ok {
		return "", false
	}
	return r, true
}

// NormalizeRoles drops unknown and duplicate entries, preserving order.
func NormalizeRoles(raw []string) []Role {
	if len(raw) == 0 {
		return nil
	}
	seen := make(map[Role]struct{}, len(raw))
	var out []Role
	for _, s := range raw {
		r, ok := ParseRole(s)
		if !ok {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

// HasRole reports whether the set includes the given role.
func HasRole(roles []Role, want Role) bool {
	for _, r := range roles {
		if r == want {
			return true
		}
	}
	return false
}

// HighestRole returns the display-rank maximum of the set, defaulting to
// GUEST for an empty set. Used for badges and sorting, never for gating.
func HighestRole(roles []Role) Role {
	best := RoleGuest
	for _, r := range roles {
		if displayRank[r] > displayRank[best] {
			best = r
		}
	}
	return best
}

// RoleStrings converts a role set back to its wire representation.
func RoleStrings(roles []Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}

// Designation is an organizational title carried on the user record. It has
// no bearing on authorization; it only rides along in assignment updates.
type Designation string

const (
	DesignationNone      Designation = "NONE"
	DesignationJunior    Designation = "JUNIOR"
	DesignationSenior    Designation = "SENIOR"
	DesignationExecutive Designation = "EXECUTIVE"
	DesignationHead      Designation = "HEAD"
	DesignationAdvisor   Designation = "ADVISOR"
)

var knownDesignations = map[Designation]struct{}{
	DesignationNone:      {},
	DesignationJunior:    {},
	DesignationSenior:    {},
	DesignationExecutive: {},
	DesignationHead:      {},
	DesignationAdvisor:   {},
}

// ParseDesignation normalizes raw input to a known designation.
func ParseDesignation(raw string) (Designation, bool) {
	d := Designation(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := knownDesignations[d]; !ok {
		return "", false
	}
	return d, true
}
