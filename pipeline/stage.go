package pipeline

import (
	"leadboard/models"
)

// Allowed activity types per stage. Terminal stages accept nothing; recovering
// a lost or enrolled lead means registering a new one.
var transitions = map[models.Stage]map[models.ActivityType]bool{
	models.StageNewRegistration: {
		models.ActivityContactAttempt: true,
	},
	models.StageContactAttempt: {
		models.ActivityContactAttempt:   true,
		models.ActivityEffectiveContact: true,
	},
	models.StageEffectiveContact: {
		models.ActivityScheduling: true,
	},
	models.StageVisitScheduled: {
		models.ActivityAttendance: true,
	},
	models.StageVisitCompleted: {},
	models.StageEnrolled:       {},
	models.StageInNegotiation:  {},
	models.StageLost:           {},
}

// CanRecord reports whether an activity of the given type may be recorded
// against a lead currently in the given stage.
func CanRecord(current models.Stage, activityType models.ActivityType) bool {
	allowed, ok := transitions[current]
	if !ok {
		return false
	}
	return allowed[activityType]
}

// IsTerminal reports whether the stage is a pipeline outcome.
func IsTerminal(stage models.Stage) bool {
	switch stage {
	case models.StageEnrolled, models.StageInNegotiation, models.StageLost:
		return true
	}
	return false
}

// OutcomeStage maps an attendance outcome onto the terminal stage it produces.
func OutcomeStage(outcome models.AttendanceOutcome) (models.Stage, bool) {
	switch outcome {
	case models.OutcomeEnrolled:
		return models.StageEnrolled, true
	case models.OutcomeInNegotiation:
		return models.StageInNegotiation, true
	case models.OutcomeLost:
		return models.StageLost, true
	}
	return "", false
}

func validChannel(channel models.ContactChannel) bool {
	switch channel {
	case models.ChannelPhone, models.ChannelWhatsApp, models.ChannelWhatsAppCall, models.ChannelInPerson:
		return true
	}
	return false
}
