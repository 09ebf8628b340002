// Package pipeline holds the lead pipeline rules: which activities are valid
// from which stage, what each operation changes on the lead, and the per-lead
// submission guard. Operations validate everything up front and only mutate
// the lead in memory; persisting the returned activity together with the lead
// update in one transaction is the caller's job.
package pipeline

import (
	"time"

	"leadboard/models"
)

// AttemptInput describes a contact attempt submission.
type AttemptInput struct {
	Channel       models.ContactChannel
	NextContactAt time.Time
	Notes         string
	CreatedBy     uint
}

// EffectiveContactInput describes an effective contact submission.
type EffectiveContactInput struct {
	Channel   models.ContactChannel
	Notes     string
	CreatedBy uint
}

// SchedulingInput describes a visit scheduling submission.
type SchedulingInput struct {
	ScheduledAt time.Time
	Channel     models.ContactChannel
	Notes       string
	CreatedBy   uint
}

// AttendanceInput describes the result of a completed visit.
type AttendanceInput struct {
	Outcome       models.AttendanceOutcome
	QualityScore  *int
	LossReasonIDs []uint
	Observations  string
	NextContactAt *time.Time
	StudentName   string
	CreatedBy     uint
}

// AttendanceResult carries everything a successful attendance produces. All of
// it must be committed atomically with the lead update.
type AttendanceResult struct {
	Activities  []models.Activity
	LossReasons []models.LossReason
}

// RecordAttempt validates and applies a contact attempt. Valid from the new
// registration and contact attempt stages; the next contact slot must be in
// the future. On success the lead is moved to the contact attempt stage and
// the new activity is returned for persistence.
func RecordAttempt(lead *models.Lead, in AttemptInput) (*models.Activity, error) {
	if !CanRecord(lead.Status, models.ActivityContactAttempt) {
		return nil, ErrInvalidTransition
	}
	if !validChannel(in.Channel) {
		return nil, invalidField("contact_channel", "unknown channel")
	}
	if !in.NextContactAt.After(time.Now()) {
		return nil, invalidField("next_contact_at", "must be in the future")
	}

	next := in.NextContactAt
	activity := models.Activity{
		LeadID:         lead.ID,
		UnitID:         lead.UnitID,
		ActivityType:   models.ActivityContactAttempt,
		ContactChannel: in.Channel,
		Notes:          in.Notes,
		NextContactAt:  &next,
		Active:         true,
		CreatedBy:      in.CreatedBy,
	}

	lead.Status = models.StageContactAttempt
	lead.NextContactAt = &next
	return &activity, nil
}

// RecordEffectiveContact validates and applies an effective contact. Only
// valid while the lead is in the contact attempt stage.
func RecordEffectiveContact(lead *models.Lead, in EffectiveContactInput) (*models.Activity, error) {
	if !CanRecord(lead.Status, models.ActivityEffectiveContact) {
		return nil, ErrInvalidTransition
	}
	if !validChannel(in.Channel) {
		return nil, invalidField("contact_channel", "unknown channel")
	}

	activity := models.Activity{
		LeadID:         lead.ID,
		UnitID:         lead.UnitID,
		ActivityType:   models.ActivityEffectiveContact,
		ContactChannel: in.Channel,
		Notes:          in.Notes,
		Active:         true,
		CreatedBy:      in.CreatedBy,
	}

	lead.Status = models.StageEffectiveContact
	return &activity, nil
}

// RecordScheduling validates and applies a visit scheduling. Only valid from
// the effective contact stage; the visit slot must be in the future.
func RecordScheduling(lead *models.Lead, in SchedulingInput) (*models.Activity, error) {
	if !CanRecord(lead.Status, models.ActivityScheduling) {
		return nil, ErrInvalidTransition
	}
	if !validChannel(in.Channel) {
		return nil, invalidField("contact_channel", "unknown channel")
	}
	if !in.ScheduledAt.After(time.Now()) {
		return nil, invalidField("scheduled_at", "must be in the future")
	}

	scheduled := in.ScheduledAt
	activity := models.Activity{
		LeadID:         lead.ID,
		UnitID:         lead.UnitID,
		ActivityType:   models.ActivityScheduling,
		ContactChannel: in.Channel,
		Notes:          in.Notes,
		ScheduledAt:    &scheduled,
		Active:         true,
		CreatedBy:      in.CreatedBy,
	}

	lead.Status = models.StageVisitScheduled
	lead.NextContactAt = &scheduled
	return &activity, nil
}

// RecordAttendance validates and applies a visit outcome. Only valid from the
// visit scheduled stage. An enrolled outcome appends a synthetic enrollment
// activity alongside the attendance one; a lost outcome requires at least one
// loss reason. The lead ends in the terminal stage matching the outcome.
func RecordAttendance(lead *models.Lead, in AttendanceInput) (*AttendanceResult, error) {
	if !CanRecord(lead.Status, models.ActivityAttendance) {
		return nil, ErrInvalidTransition
	}
	stage, ok := OutcomeStage(in.Outcome)
	if !ok {
		return nil, invalidField("outcome", "unknown outcome")
	}
	if in.Outcome == models.OutcomeLost && len(in.LossReasonIDs) == 0 {
		return nil, ErrMissingLossReason
	}
	if in.QualityScore != nil && (*in.QualityScore < 1 || *in.QualityScore > 5) {
		return nil, invalidField("lead_quality_score", "must be between 1 and 5")
	}
	if in.NextContactAt != nil && !in.NextContactAt.After(time.Now()) {
		return nil, invalidField("next_contact_at", "must be in the future")
	}

	result := &AttendanceResult{}
	result.Activities = append(result.Activities, models.Activity{
		LeadID:         lead.ID,
		UnitID:         lead.UnitID,
		ActivityType:   models.ActivityAttendance,
		ContactChannel: models.ChannelInPerson,
		Notes:          in.Observations,
		NextContactAt:  in.NextContactAt,
		Active:         true,
		CreatedBy:      in.CreatedBy,
	})

	if in.Outcome == models.OutcomeEnrolled {
		result.Activities = append(result.Activities, models.Activity{
			LeadID:         lead.ID,
			UnitID:         lead.UnitID,
			ActivityType:   models.ActivityEnrollment,
			ContactChannel: models.ChannelInPerson,
			Active:         true,
			CreatedBy:      in.CreatedBy,
		})
	}

	for _, reasonID := range in.LossReasonIDs {
		result.LossReasons = append(result.LossReasons, models.LossReason{
			LeadID:       lead.ID,
			ReasonID:     reasonID,
			Observations: in.Observations,
		})
	}

	lead.Status = stage
	lead.QualityScore = in.QualityScore
	lead.Observations = in.Observations
	lead.NextContactAt = in.NextContactAt
	return result, nil
}
