package handlers

import (
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/allichat/server/internal/redisc"
	"github.com/allichat/server/internal/store"
)

func ListUsers(users store.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := users.List(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, all)
	}
}

// OnlineUsers reads the presence set from Redis rather than the user
// rows; it reflects live connections, not the persisted online flag.
func OnlineUsers(rdb *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names, err := redisc.GetOnlineUsers(rdb)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if names == nil {
			names = []string{}
		}
		writeJSON(w, http.StatusOK, names)
	}
}
