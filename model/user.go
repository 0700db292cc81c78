package model

import "time"

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	StreamID     *string   `json:"stream_id,omitempty"`
	CourseID     *string   `json:"course_id,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`

	// Joined for the profile view.
	StreamName *string `json:"stream,omitempty"`
	CourseName *string `json:"branch,omitempty"`
}

// RegisterReq represents user registration payload
// swagger:model RegisterReq
type RegisterReq struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=admin faculty student"`
	StreamID string `json:"stream" validate:"required"`
	CourseID string `json:"branch" validate:"required"`
}

// LoginReq represents login payload
// swagger:model LoginReq
type LoginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=admin faculty student"`
}

// UpdateProfileReq carries optional profile fields; a password change needs
// the current password alongside the new one.
type UpdateProfileReq struct {
	Name            string `json:"name"`
	Email           string `json:"email" validate:"omitempty,email"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password" validate:"omitempty,min=6"`
}
