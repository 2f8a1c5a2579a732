package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/allichat/server/internal/redisc"
	"github.com/allichat/server/internal/store"
)

type loginRequest struct {
	Name       string `json:"name"`
	SecretCode string `json:"secret_code"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  interface{} `json:"user"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// LoginHandler checks the display name and secret code against the
// user document and issues a session token. Users are provisioned via
// the import utility; there is no self-serve registration.
func LoginHandler(users store.UserStore, rdb *redis.Client, jwtSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" || req.SecretCode == "" {
			writeError(w, http.StatusBadRequest, "name and secret code are required")
			return
		}

		user, err := users.Get(r.Context(), req.Name)
		if err != nil {
			slog.Error("failed to get user", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if user == nil {
			writeError(w, http.StatusUnauthorized, "invalid name or secret code")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.SecretHash), []byte(req.SecretCode)); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid name or secret code")
			return
		}

		if err := users.SetOnline(r.Context(), user.DisplayName, true); err != nil {
			slog.Error("failed to set online flag", "error", err)
		}
		if rdb != nil {
			if err := redisc.SetOnline(rdb, user.DisplayName); err != nil {
				slog.Error("failed to update presence", "error", err)
			}
		}

		token, err := GenerateToken(user.DisplayName, user.Role, jwtSecret)
		if err != nil {
			slog.Error("failed to generate token", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		user.IsOnline = true
		writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
	}
}

func LogoutHandler(users store.UserStore, rdb *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.Context().Value(NameKey).(string)

		if err := users.SetOnline(r.Context(), name, false); err != nil {
			slog.Error("failed to clear online flag", "error", err)
		}
		if err := users.UpdateLastSeen(r.Context(), name, time.Now()); err != nil {
			slog.Error("failed to update last seen", "error", err)
		}
		if rdb != nil {
			if err := redisc.SetOffline(rdb, name); err != nil {
				slog.Error("failed to update presence", "error", err)
			}
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
	}
}

func MeHandler(users store.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.Context().Value(NameKey).(string)
		user, err := users.Get(r.Context(), name)
		if err != nil || user == nil {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}
