package models

import (
	"time"

	"gorm.io/gorm"
)

// Stage is the lead's current position in the sales pipeline.
type Stage string

const (
	StageNewRegistration  Stage = "new_registration"
	StageContactAttempt   Stage = "contact_attempt"
	StageEffectiveContact Stage = "effective_contact"
	StageVisitScheduled   Stage = "visit_scheduled"
	StageVisitCompleted   Stage = "visit_completed"

	// Terminal outcomes set by the attendance operation.
	StageEnrolled      Stage = "enrolled"
	StageInNegotiation Stage = "in_negotiation"
	StageLost          Stage = "lost"
)

// ActivityType identifies the kind of interaction recorded against a lead.
type ActivityType string

const (
	ActivityContactAttempt   ActivityType = "contact_attempt"
	ActivityEffectiveContact ActivityType = "effective_contact"
	ActivityScheduling       ActivityType = "scheduling"
	ActivityAttendance       ActivityType = "attendance"
	ActivityEnrollment       ActivityType = "enrollment"
)

// ContactChannel is how the consultant reached (or tried to reach) the lead.
type ContactChannel string

const (
	ChannelPhone        ContactChannel = "phone"
	ChannelWhatsApp     ContactChannel = "whatsapp"
	ChannelWhatsAppCall ContactChannel = "whatsapp_call"
	ChannelInPerson     ContactChannel = "in_person"
)

// AttendanceOutcome is the result of a completed visit.
type AttendanceOutcome string

const (
	OutcomeEnrolled      AttendanceOutcome = "enrolled"
	OutcomeInNegotiation AttendanceOutcome = "in_negotiation"
	OutcomeLost          AttendanceOutcome = "lost"
)

// Lead represents a prospective client tracked through the pipeline
type Lead struct {
	gorm.Model
	UnitID uint `gorm:"not null;index" json:"unit_id"`

	Name        string `gorm:"not null" json:"name"`
	PhoneNumber string `gorm:"not null" json:"phone_number"`
	Email       string `json:"email"`
	LeadSource  string `json:"lead_source"` // site, referral, instagram, facebook, google_ads, etc.

	Status        Stage      `gorm:"not null;default:'new_registration';index" json:"status"`
	Observations  string     `gorm:"type:text" json:"observations"`
	QualityScore  *int       `json:"lead_quality_score,omitempty"` // 1-5, set on attendance
	NextContactAt *time.Time `json:"next_contact_at,omitempty"`

	// Leads are never deleted, only deactivated
	Active    bool `gorm:"default:true;index" json:"active"`
	CreatedBy uint `gorm:"index" json:"created_by"`

	// Relations
	Activities  []Activity   `gorm:"foreignKey:LeadID" json:"activities,omitempty"`
	LossReasons []LossReason `gorm:"foreignKey:LeadID" json:"loss_reasons,omitempty"`
}

// Activity is an append-only interaction record tied to a lead. "Deleting" an
// activity flips Active to false, never removes the row.
type Activity struct {
	gorm.Model
	LeadID uint `gorm:"not null;index" json:"lead_id"`
	UnitID uint `gorm:"not null;index" json:"unit_id"`

	ActivityType   ActivityType   `gorm:"not null" json:"activity_type"`
	ContactChannel ContactChannel `gorm:"not null" json:"contact_channel"`
	Notes          string         `gorm:"type:text" json:"notes"`

	NextContactAt *time.Time `json:"next_contact_at,omitempty"`
	ScheduledAt   *time.Time `json:"scheduled_at,omitempty"` // visit slot, scheduling activities only

	Active    bool `gorm:"default:true;index" json:"active"`
	CreatedBy uint `gorm:"index" json:"created_by"`

	Lead Lead `json:"-"`
}

// LossReasonOption is a catalog entry consultants pick from when a lead is lost.
type LossReasonOption struct {
	gorm.Model
	Name   string `gorm:"not null;uniqueIndex" json:"name"`
	Active bool   `gorm:"default:true" json:"active"`
}

// LossReason associates one catalog reason with a lost lead.
type LossReason struct {
	gorm.Model
	LeadID       uint   `gorm:"not null;index" json:"lead_id"`
	ReasonID     uint   `gorm:"not null;index" json:"reason_id"`
	Observations string `gorm:"type:text" json:"observations"`

	Reason LossReasonOption `gorm:"foreignKey:ReasonID" json:"reason,omitempty"`
}
