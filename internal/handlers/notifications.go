package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/allichat/server/internal/service"
)

func ListNotifications(notifications *service.NotificationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		notes, err := notifications.UnreadFor(r.Context(), callerName(r))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, notes)
	}
}

func MarkNotificationRead(notifications *service.NotificationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := notifications.MarkRead(r.Context(), mux.Vars(r)["id"]); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
	}
}
