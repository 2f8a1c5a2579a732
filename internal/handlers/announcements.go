package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/allichat/server/internal/service"
	"github.com/allichat/server/internal/store"
)

type createAnnouncementRequest struct {
	Content  string `json:"content"`
	Link     string `json:"link"`
	LinkText string `json:"link_text"`
	FontSize int    `json:"font_size"`
}

func ListAnnouncements(announcements store.AnnouncementStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := announcements.List(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, all)
	}
}

func CreateAnnouncement(admin *service.AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createAnnouncementRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		a, err := admin.CreateAnnouncement(r.Context(), callerName(r), service.AnnouncementInput{
			Content:  req.Content,
			Link:     req.Link,
			LinkText: req.LinkText,
			FontSize: req.FontSize,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, a)
	}
}

func DeleteAnnouncement(admin *service.AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := admin.DeleteAnnouncement(r.Context(), callerName(r), mux.Vars(r)["id"]); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}
