package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/allichat/server/internal/service"
)

type setFlagRequest struct {
	Value bool `json:"value"`
}

type sudoSendRequest struct {
	AsUser  string `json:"as_user"`
	RoomID  string `json:"room_id"`
	Content string `json:"content"`
}

func SetUserMuted(admin *service.AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req setFlagRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		target := mux.Vars(r)["name"]
		if err := admin.SetMuted(r.Context(), callerName(r), target, req.Value); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"muted": req.Value})
	}
}

func SetUserBanned(admin *service.AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req setFlagRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		target := mux.Vars(r)["name"]
		if err := admin.SetBanned(r.Context(), callerName(r), target, req.Value); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"banned": req.Value})
	}
}

func SudoSend(admin *service.AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sudoSendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		msg, err := admin.SudoSend(r.Context(), callerName(r), req.AsUser, req.RoomID, req.Content)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, msg)
	}
}
