package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/allichat/server/internal/service"
)

type subteamRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

type addMemberRequest struct {
	Member string `json:"member"`
}

func ListSubteams(subteams *service.SubteamService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teams, err := subteams.ListFor(r.Context(), callerName(r))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, teams)
	}
}

func CreateSubteam(subteams *service.SubteamService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req subteamRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		team, err := subteams.Create(r.Context(), callerName(r), req.Name, req.Description, req.Color)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, team)
	}
}

func UpdateSubteam(subteams *service.SubteamService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req subteamRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		id := mux.Vars(r)["id"]
		if err := subteams.Update(r.Context(), callerName(r), id, req.Name, req.Description, req.Color); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
	}
}

func AddSubteamMember(subteams *service.SubteamService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addMemberRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		id := mux.Vars(r)["id"]
		if err := subteams.AddMember(r.Context(), callerName(r), id, req.Member); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "added"})
	}
}

func DeleteSubteam(subteams *service.SubteamService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := subteams.Delete(r.Context(), callerName(r), mux.Vars(r)["id"]); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}
