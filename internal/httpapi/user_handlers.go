package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"pixelsmith.org/internal/audit"
	"pixelsmith.org/internal/auth"
	"pixelsmith.org/internal/directory"
)

type profileUpdateRequest struct {
	Name          *string          `json:"name"`
	PhoneNumber   *string          `json:"phone_number"`
	Links         []directory.Link `json:"links"`
	ProfileImgKey *string          `json:"profile_img_key"`
}

type teamAssignRequest struct {
	TeamID *string `json:"team_id"`
}

type assignmentRequest struct {
	Roles       []string `json:"roles"`
	Designation string   `json:"designation"`
}

func (a *API) handleUsersCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 20)

	users, err := a.directory.ListUsers(r.Context(), sessionFrom(r), page, limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, users)
}

func (a *API) handleUserResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/users/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	if path == "me" {
		if r.Method != http.MethodPatch {
			methodNotAllowed(w, r, http.MethodPatch)
			return
		}
		a.updateProfile(w, r)
		return
	}

	if id, ok := strings.CutSuffix(path, "/team"); ok {
		if r.Method != http.MethodPatch {
			methodNotAllowed(w, r, http.MethodPatch)
			return
		}
		a.assignTeam(w, r, id)
		return
	}
	if id, ok := strings.CutSuffix(path, "/assignment"); ok {
		if r.Method != http.MethodPatch {
			methodNotAllowed(w, r, http.MethodPatch)
			return
		}
		a.updateAssignment(w, r, id)
		return
	}
	if strings.Contains(path, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodDelete:
		a.removeUser(w, r, path)
	default:
		methodNotAllowed(w, r, http.MethodDelete)
	}
}

func (a *API) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	upd := directory.ProfileUpdate{
		Name:          req.Name,
		PhoneNumber:   req.PhoneNumber,
		Links:         req.Links,
		ProfileImgKey: req.ProfileImgKey,
	}
	if err := a.directory.UpdateProfile(r.Context(), sessionFrom(r), upd); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"message": "Profile updated."})
}

func (a *API) assignTeam(w http.ResponseWriter, r *http.Request, userID string) {
	var req teamAssignRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.directory.AssignTeam(r.Context(), sessionFrom(r), userID, req.TeamID); err != nil {
		handleServiceError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "directory.user.team_changed", map[string]any{
		"target_user_id": userID,
	})
	writeData(w, http.StatusOK, map[string]any{"message": "Team updated."})
}

func (a *API) updateAssignment(w http.ResponseWriter, r *http.Request, userID string) {
	var req assignmentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	roles := auth.NormalizeRoles(req.Roles)
	if len(roles) == 0 {
		writeError(w, r, http.StatusBadRequest, "at least one valid role is required")
		return
	}
	designation, ok := auth.ParseDesignation(req.Designation)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "unknown designation")
		return
	}
	if err := a.directory.UpdateAssignment(r.Context(), sessionFrom(r), userID, roles, designation); err != nil {
		handleServiceError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "directory.user.assignment_changed", map[string]any{
		"target_user_id": userID,
		"roles":          auth.RoleStrings(roles),
		"designation":    string(designation),
	})
	writeData(w, http.StatusOK, map[string]any{"message": "Assignment updated."})
}

func (a *API) removeUser(w http.ResponseWriter, r *http.Request, userID string) {
	if err := a.directory.RemoveUser(r.Context(), sessionFrom(r), userID); err != nil {
		handleServiceError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "directory.user.removed", map[string]any{
		"target_user_id": userID,
	})
	writeData(w, http.StatusOK, map[string]any{"message": "User removed."})
}

func queryInt(r *http.Request, key string, def int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}
