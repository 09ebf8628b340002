package models

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment is the student record created when an attendance ends with the
// enrolled outcome. It keeps a link back to the originating lead.
type Enrollment struct {
	gorm.Model
	UnitID uint `gorm:"not null;index" json:"unit_id"`
	LeadID uint `gorm:"not null;index" json:"lead_id"`

	FullName  string     `gorm:"not null" json:"full_name"`
	BirthDate *time.Time `json:"birth_date,omitempty"`

	Active    bool `gorm:"default:true;index" json:"active"`
	CreatedBy uint `gorm:"index" json:"created_by"`

	Lead Lead `json:"lead,omitempty"`
}

// Sale records the commercial side of an enrollment.
type Sale struct {
	gorm.Model
	UnitID uint `gorm:"not null;index" json:"unit_id"`
	LeadID uint `gorm:"not null;index" json:"lead_id"`

	StudentName string `gorm:"not null" json:"student_name"`

	Active    bool `gorm:"default:true;index" json:"active"`
	CreatedBy uint `gorm:"index" json:"created_by"`

	Lead Lead `json:"lead,omitempty"`
}
