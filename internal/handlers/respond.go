// Package handlers holds the REST surface. Live updates flow over the
// WebSocket; these endpoints cover login-adjacent reads and the
// mutations that do not need a socket.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/allichat/server/internal/auth"
	"github.com/allichat/server/internal/service"
	"github.com/allichat/server/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps service errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrNotSender),
		errors.Is(err, service.ErrNotCreator),
		errors.Is(err, service.ErrNotParticipant),
		errors.Is(err, service.ErrMuted),
		errors.Is(err, service.ErrBanned):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrEmptyContent),
		errors.Is(err, service.ErrEmptyName),
		errors.Is(err, service.ErrNotImage),
		errors.Is(err, service.ErrImageTooLarge):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func callerName(r *http.Request) string {
	name, _ := r.Context().Value(auth.NameKey).(string)
	return name
}
