package models

import "time"

// Profile est la fiche compte liée à l'identité authentifiée (id = sub du JWT).
type Profile struct {
	ID          string    `json:"id"`
	Email       string    `json:"email,omitempty"`
	DisplayName string    `json:"display_name"`
	AvatarURL   *string   `json:"avatar_url"`
	AvatarPath  *string   `json:"-"`
	IsAdmin     bool      `json:"is_admin"`
	UpdatedAt   time.Time `json:"updated_at"`
}
