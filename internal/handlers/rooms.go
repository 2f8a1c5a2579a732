package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/allichat/server/internal/service"
)

type createGroupRequest struct {
	Name     string `json:"name"`
	Emoji    string `json:"emoji"`
	IsPublic bool   `json:"is_public"`
}

type startDirectRequest struct {
	Recipient string `json:"recipient"`
}

func ListRooms(rooms *service.RoomService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		visible, err := rooms.VisibleTo(r.Context(), callerName(r))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, visible)
	}
}

func DiscoverRooms(rooms *service.RoomService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		public, err := rooms.DiscoverPublic(r.Context(), callerName(r))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, public)
	}
}

func CreateGroup(rooms *service.RoomService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createGroupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		room, err := rooms.CreateGroup(r.Context(), callerName(r), req.Name, req.Emoji, req.IsPublic)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, room)
	}
}

func StartDirect(rooms *service.RoomService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req startDirectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		room, err := rooms.StartDirect(r.Context(), callerName(r), req.Recipient)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, room)
	}
}

func JoinRoom(rooms *service.RoomService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := mux.Vars(r)["id"]
		if err := rooms.Join(r.Context(), callerName(r), roomID); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "joined"})
	}
}

func LeaveRoom(rooms *service.RoomService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := mux.Vars(r)["id"]
		deleted, err := rooms.Leave(r.Context(), callerName(r), roomID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
	}
}
