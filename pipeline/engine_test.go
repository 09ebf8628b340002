package pipeline

import (
	"errors"
	"testing"
	"time"

	"leadboard/models"
)

func newLead() *models.Lead {
	lead := &models.Lead{
		UnitID:      1,
		Name:        "Joana Silva",
		PhoneNumber: "5511999999999",
		LeadSource:  "site",
		Status:      models.StageNewRegistration,
		Active:      true,
	}
	lead.ID = 42
	return lead
}

func TestFullPipelineToEnrollment(t *testing.T) {
	lead := newLead()
	future := time.Now().Add(24 * time.Hour)

	attempt, err := RecordAttempt(lead, AttemptInput{
		Channel:       models.ChannelWhatsApp,
		NextContactAt: future,
		CreatedBy:     7,
	})
	if err != nil {
		t.Fatalf("RecordAttempt: %v", err)
	}
	if lead.Status != models.StageContactAttempt {
		t.Fatalf("after attempt, status = %q, want %q", lead.Status, models.StageContactAttempt)
	}
	if attempt.ActivityType != models.ActivityContactAttempt {
		t.Errorf("attempt type = %q", attempt.ActivityType)
	}
	if attempt.LeadID != lead.ID || attempt.UnitID != lead.UnitID {
		t.Errorf("attempt not bound to lead/unit: lead=%d unit=%d", attempt.LeadID, attempt.UnitID)
	}
	if lead.NextContactAt == nil || !lead.NextContactAt.Equal(future) {
		t.Errorf("next contact not set on lead")
	}

	effective, err := RecordEffectiveContact(lead, EffectiveContactInput{
		Channel: models.ChannelPhone,
		Notes:   "interested, wants a visit",
	})
	if err != nil {
		t.Fatalf("RecordEffectiveContact: %v", err)
	}
	if lead.Status != models.StageEffectiveContact {
		t.Fatalf("after effective contact, status = %q", lead.Status)
	}
	if effective.ActivityType != models.ActivityEffectiveContact {
		t.Errorf("effective type = %q", effective.ActivityType)
	}

	visit := time.Now().Add(48 * time.Hour)
	scheduling, err := RecordScheduling(lead, SchedulingInput{
		ScheduledAt: visit,
		Channel:     models.ChannelPhone,
	})
	if err != nil {
		t.Fatalf("RecordScheduling: %v", err)
	}
	if lead.Status != models.StageVisitScheduled {
		t.Fatalf("after scheduling, status = %q", lead.Status)
	}
	if scheduling.ScheduledAt == nil || !scheduling.ScheduledAt.Equal(visit) {
		t.Errorf("scheduled slot not stored on activity")
	}

	result, err := RecordAttendance(lead, AttendanceInput{
		Outcome:     models.OutcomeEnrolled,
		StudentName: "Joana Silva",
	})
	if err != nil {
		t.Fatalf("RecordAttendance: %v", err)
	}
	if lead.Status != models.StageEnrolled {
		t.Fatalf("after attendance, status = %q, want %q", lead.Status, models.StageEnrolled)
	}

	// Enrolled attendance produces the attendance activity plus the
	// synthetic enrollment activity
	if len(result.Activities) != 2 {
		t.Fatalf("attendance produced %d activities, want 2", len(result.Activities))
	}
	if result.Activities[0].ActivityType != models.ActivityAttendance {
		t.Errorf("first activity = %q, want attendance", result.Activities[0].ActivityType)
	}
	if result.Activities[1].ActivityType != models.ActivityEnrollment {
		t.Errorf("second activity = %q, want enrollment", result.Activities[1].ActivityType)
	}
	if len(result.LossReasons) != 0 {
		t.Errorf("enrolled outcome produced %d loss reasons", len(result.LossReasons))
	}
}

func TestEffectiveContactBeforeAttemptRejected(t *testing.T) {
	lead := newLead()

	activity, err := RecordEffectiveContact(lead, EffectiveContactInput{Channel: models.ChannelPhone})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
	if activity != nil {
		t.Errorf("activity returned despite invalid transition")
	}
	if lead.Status != models.StageNewRegistration {
		t.Errorf("lead moved to %q on a rejected submission", lead.Status)
	}
}

func TestAttemptFromTerminalStageRejected(t *testing.T) {
	for _, stage := range []models.Stage{models.StageEnrolled, models.StageInNegotiation, models.StageLost} {
		lead := newLead()
		lead.Status = stage

		_, err := RecordAttempt(lead, AttemptInput{
			Channel:       models.ChannelPhone,
			NextContactAt: time.Now().Add(time.Hour),
		})
		if !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("stage %q: err = %v, want ErrInvalidTransition", stage, err)
		}
	}
}

func TestRepeatedAttemptAllowed(t *testing.T) {
	lead := newLead()
	lead.Status = models.StageContactAttempt

	if _, err := RecordAttempt(lead, AttemptInput{
		Channel:       models.ChannelWhatsAppCall,
		NextContactAt: time.Now().Add(time.Hour),
	}); err != nil {
		t.Fatalf("second attempt from contact_attempt stage: %v", err)
	}
	if lead.Status != models.StageContactAttempt {
		t.Errorf("status = %q after repeated attempt", lead.Status)
	}
}

func TestAttemptValidation(t *testing.T) {
	var validationErr *ValidationError

	lead := newLead()
	_, err := RecordAttempt(lead, AttemptInput{
		Channel:       models.ChannelPhone,
		NextContactAt: time.Now().Add(-time.Minute),
	})
	if !errors.As(err, &validationErr) {
		t.Fatalf("past next contact: err = %v, want ValidationError", err)
	}
	if lead.Status != models.StageNewRegistration {
		t.Errorf("lead mutated on rejected input")
	}

	_, err = RecordAttempt(lead, AttemptInput{
		Channel:       models.ContactChannel("carrier_pigeon"),
		NextContactAt: time.Now().Add(time.Hour),
	})
	if !errors.As(err, &validationErr) {
		t.Fatalf("bad channel: err = %v, want ValidationError", err)
	}
}

func TestSchedulingRequiresFutureSlot(t *testing.T) {
	lead := newLead()
	lead.Status = models.StageEffectiveContact

	var validationErr *ValidationError
	_, err := RecordScheduling(lead, SchedulingInput{
		ScheduledAt: time.Now().Add(-time.Hour),
		Channel:     models.ChannelPhone,
	})
	if !errors.As(err, &validationErr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestLostWithoutReasonsRejected(t *testing.T) {
	lead := newLead()
	lead.Status = models.StageVisitScheduled

	_, err := RecordAttendance(lead, AttendanceInput{Outcome: models.OutcomeLost})
	if !errors.Is(err, ErrMissingLossReason) {
		t.Fatalf("err = %v, want ErrMissingLossReason", err)
	}
	if lead.Status != models.StageVisitScheduled {
		t.Errorf("lead moved to %q on rejected attendance", lead.Status)
	}
}

func TestLostStoresOneRowPerReason(t *testing.T) {
	lead := newLead()
	lead.Status = models.StageVisitScheduled

	result, err := RecordAttendance(lead, AttendanceInput{
		Outcome:       models.OutcomeLost,
		LossReasonIDs: []uint{3, 5},
		Observations:  "chose a school closer to home",
	})
	if err != nil {
		t.Fatalf("RecordAttendance: %v", err)
	}
	if lead.Status != models.StageLost {
		t.Errorf("status = %q, want %q", lead.Status, models.StageLost)
	}
	if len(result.Activities) != 1 {
		t.Errorf("lost outcome produced %d activities, want 1", len(result.Activities))
	}
	if len(result.LossReasons) != 2 {
		t.Fatalf("got %d loss reason rows, want 2", len(result.LossReasons))
	}
	for i, want := range []uint{3, 5} {
		if result.LossReasons[i].ReasonID != want {
			t.Errorf("reason[%d] = %d, want %d", i, result.LossReasons[i].ReasonID, want)
		}
		if result.LossReasons[i].LeadID != lead.ID {
			t.Errorf("reason[%d] not bound to lead", i)
		}
	}
}

func TestAttendanceQualityScoreBounds(t *testing.T) {
	var validationErr *ValidationError
	for _, score := range []int{0, 6} {
		lead := newLead()
		lead.Status = models.StageVisitScheduled

		s := score
		_, err := RecordAttendance(lead, AttendanceInput{
			Outcome:      models.OutcomeInNegotiation,
			QualityScore: &s,
		})
		if !errors.As(err, &validationErr) {
			t.Errorf("score %d: err = %v, want ValidationError", score, err)
		}
	}
}

func TestAttendanceUnknownOutcomeRejected(t *testing.T) {
	lead := newLead()
	lead.Status = models.StageVisitScheduled

	var validationErr *ValidationError
	_, err := RecordAttendance(lead, AttendanceInput{Outcome: models.AttendanceOutcome("maybe")})
	if !errors.As(err, &validationErr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}
