package models

import "time"

// Subteam is a named affiliation group, independent of room membership.
type Subteam struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color,omitempty"`
	Members     []string  `json:"members"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s *Subteam) HasMember(name string) bool {
	for _, m := range s.Members {
		if m == name {
			return true
		}
	}
	return false
}
