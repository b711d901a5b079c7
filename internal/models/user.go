package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents user role in the platform.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
)

// User represents a platform user. GoogleAccessToken is the calendar
// credential stored after the user connects Google Calendar; empty until then.
type User struct {
	ID                uuid.UUID `json:"id"`
	Email             string    `json:"email"`
	Password          string    `json:"-"`
	FullName          string    `json:"full_name"`
	AvatarURL         string    `json:"avatar_url,omitempty"`
	Role              Role      `json:"role"`
	GoogleAccessToken string    `json:"-"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// UserPublic is User without sensitive fields for API responses.
type UserPublic struct {
	ID                uuid.UUID `json:"id"`
	Email             string    `json:"email"`
	FullName          string    `json:"full_name"`
	AvatarURL         string    `json:"avatar_url,omitempty"`
	Role              Role      `json:"role"`
	CalendarConnected bool      `json:"calendar_connected"`
	CreatedAt         time.Time `json:"created_at"`
}

// ToPublic converts User to UserPublic.
func (u *User) ToPublic() UserPublic {
	return UserPublic{
		ID:                u.ID,
		Email:             u.Email,
		FullName:          u.FullName,
		AvatarURL:         u.AvatarURL,
		Role:              u.Role,
		CalendarConnected: u.GoogleAccessToken != "",
		CreatedAt:         u.CreatedAt,
	}
}
