package models

import "time"

const (
	RoomTypeGroup  = "group"
	RoomTypeDirect = "direct"
)

type Room struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	Participants []string  `json:"participants"`
	CreatedBy    string    `json:"created_by"`
	IsPublic     bool      `json:"is_public"`
	Emoji        string    `json:"emoji,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (r *Room) HasParticipant(name string) bool {
	for _, p := range r.Participants {
		if p == name {
			return true
		}
	}
	return false
}
