package httpapi

import (
	"net/http"
	"strings"

	"pixelsmith.org/internal/audit"
	"pixelsmith.org/internal/directory"
)

type createTeamRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type teamUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	CoverImgKey *string `json:"cover_img_key"`
}

func (a *API) handleTeamsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		teams, err := a.directory.ListTeams(r.Context())
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, teams)
	case http.MethodPost:
		a.createTeam(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleTeamResource(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/teams/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		team, err := a.directory.GetTeam(r.Context(), id)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, team)
	case http.MethodPatch:
		a.updateTeam(w, r, id)
	case http.MethodDelete:
		a.deleteTeam(w, r, id)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPatch, http.MethodDelete)
	}
}

func (a *API) createTeam(w http.ResponseWriter, r *http.Request) {
	var req createTeamRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	team, err := a.directory.CreateTeam(r.Context(), sessionFrom(r), req.Name, req.Description)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "directory.team.created", map[string]any{
		"team_id": team.ID,
	})
	writeData(w, http.StatusCreated, team)
}

func (a *API) updateTeam(w http.ResponseWriter, r *http.Request, id string) {
	var req teamUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	upd := directory.TeamUpdate{
		Name:        req.Name,
		Description: req.Description,
		CoverImgKey: req.CoverImgKey,
	}
	if err := a.directory.UpdateTeam(r.Context(), sessionFrom(r), id, upd); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"message": "Team updated."})
}

func (a *API) deleteTeam(w http.ResponseWriter, r *http.Request, id string) {
	if err := a.directory.DeleteTeam(r.Context(), sessionFrom(r), id); err != nil {
		handleServiceError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "directory.team.deleted", map[string]any{
		"team_id": id,
	})
	writeData(w, http.StatusOK, map[string]any{"message": "Team deleted."})
}
