package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/allichat/server/internal/service"
)

// RoomMessages serves the message history for one room, optionally
// filtered by the q parameter (matched against content and sender).
// Live updates arrive over the WebSocket; this is the initial load.
func RoomMessages(messages *service.MessageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := mux.Vars(r)["id"]
		msgs, err := messages.SearchByRoom(r.Context(), roomID, r.URL.Query().Get("q"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, msgs)
	}
}
