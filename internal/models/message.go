package models

import "time"

const (
	StatusSent      = "sent"
	StatusDelivered = "delivered"
	StatusRead      = "read"
)

// ReplyRef is a denormalized copy of the quoted message taken at send
// time. It is never re-synced when the original is edited or deleted.
type ReplyRef struct {
	ID      string `json:"id"`
	Sender  string `json:"sender"`
	Content string `json:"content"`
}

type Message struct {
	ID        string              `json:"id"`
	RoomID    string              `json:"room_id"`
	Sender    string              `json:"sender"`
	Content   string              `json:"content"`
	Image     string              `json:"image,omitempty"`
	IsImage   bool                `json:"is_image,omitempty"`
	ReplyTo   *ReplyRef           `json:"reply_to,omitempty"`
	Reactions map[string][]string `json:"reactions,omitempty"`
	Status    string              `json:"status"`
	Edited    bool                `json:"edited,omitempty"`
	EditedAt  *time.Time          `json:"edited_at,omitempty"`
	IsSudo    bool                `json:"is_sudo,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}
