package models

import (
	"gorm.io/gorm"
)

// Unit is a tenant/organizational scope. Every lead, activity and enrollment
// belongs to exactly one unit and is never visible outside it.
type Unit struct {
	gorm.Model

	Name string `gorm:"not null" json:"name"`

	// Address
	Street       string `json:"street"`
	Number       string `json:"number"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`

	Phone string `json:"phone"`
	Email string `json:"email"`

	Active    bool `gorm:"default:true;index" json:"active"`
	CreatedBy uint `gorm:"index" json:"created_by"`

	// Relations
	UnitUsers []UnitUser `gorm:"foreignKey:UnitID" json:"unit_users,omitempty"`
	Leads     []Lead     `gorm:"foreignKey:UnitID" json:"leads,omitempty"`
}

// UnitUser grants a user access to a unit's data.
type UnitUser struct {
	gorm.Model
	UnitID uint `gorm:"not null;index" json:"unit_id"`
	UserID uint `gorm:"not null;index" json:"user_id"`
	Active bool `gorm:"default:true" json:"active"`
}
