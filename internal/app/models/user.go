package models

import (
	"time"
)

// User is an account known to the campus backend
type User struct {
	ID          int64      `json:"id" example:"1"`
	Email       string     `json:"email" example:"student@fe-swd.com"`
	Username    string     `json:"username" example:"student"`
	FullName    string     `json:"fullName" example:"Nguyen Van A"`
	Role        string     `json:"role" example:"Student"` // Raw role as issued by the backend
	Major       string     `json:"major,omitempty" example:"Software Engineering"`
	IsActive    bool       `json:"isActive" example:"true"`
	CreatedAt   time.Time  `json:"createdAt" example:"2024-01-01T10:00:00Z"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// Profile is the identity snapshot the portal keeps for the signed-in user
type Profile struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	Role      Role   `json:"role"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}
