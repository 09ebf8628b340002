package models

import (
	"gorm.io/gorm"
)

// User roles
const (
	RoleConsultant = "consultant"
	RoleFranchisee = "franchisee"
	RoleAdmin      = "admin"
)

// User represents a staff account in the system
type User struct {
	gorm.Model

	// Authentication fields
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`

	// Google OAuth fields
	GoogleID       *string `gorm:"uniqueIndex" json:"google_id,omitempty"`
	GoogleImageURL *string `json:"google_image_url,omitempty"`

	// Profile information
	FullName string `gorm:"not null" json:"full_name"`
	Role     string `gorm:"not null;default:'consultant'" json:"role"` // consultant, franchisee, admin

	// Account status
	IsActive bool `gorm:"default:true" json:"is_active"`
	// Provisioned accounts start with a default password they have to replace
	MustChangePassword bool `gorm:"default:false" json:"must_change_password"`

	// Bumped on password change to invalidate outstanding tokens
	TokenVersion int `gorm:"default:0" json:"-"`

	// Relations
	UnitUsers []UnitUser `gorm:"foreignKey:UserID" json:"unit_users,omitempty"`
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
