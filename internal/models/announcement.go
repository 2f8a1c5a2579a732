package models

import "time"

type Announcement struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Link      string    `json:"link,omitempty"`
	LinkText  string    `json:"link_text,omitempty"`
	FontSize  int       `json:"font_size"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}
