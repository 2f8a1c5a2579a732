package models

import "time"

const NotificationSubteamInvite = "subteam_invite"

type Notification struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	SubteamID   string    `json:"subteam_id,omitempty"`
	SubteamName string    `json:"subteam_name,omitempty"`
	FromUser    string    `json:"from_user"`
	ToUser      string    `json:"to_user"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}
