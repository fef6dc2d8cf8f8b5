package models

import (
	"time"
)

// Roles a member account can hold.
const (
	RoleAdmin   = "ADMIN"
	RoleDefault = "DEFAULT"
)

// AdminName is the display name reserved for the seeded administrator.
const AdminName = "admin"

// User is a registered member. Email is unique across the table.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserType     string    `json:"user_type" gorm:"column:user_type;not null;default:'DEFAULT'"`
	Name         string    `json:"name" gorm:"not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"column:password;not null"`
	Phone        string    `json:"phone_no" gorm:"column:phone_no"`
	ImageName    string    `json:"image_name"`
	ImageData    []byte    `json:"-" gorm:"column:image_data"`
	ImageType    string    `json:"image_type"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user holds the ADMIN role.
func (u *User) IsAdmin() bool {
	return u.UserType == RoleAdmin
}

// ValidRole reports whether role is one of the known user types.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleDefault
}
