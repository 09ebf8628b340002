package pipeline

import (
	"sort"

	"leadboard/models"
)

// BoardStages are the kanban columns, in display order. Terminal stages do
// not appear on the board.
var BoardStages = []models.Stage{
	models.StageNewRegistration,
	models.StageContactAttempt,
	models.StageEffectiveContact,
	models.StageVisitScheduled,
	models.StageVisitCompleted,
}

var stageTitles = map[models.Stage]string{
	models.StageNewRegistration:  "New Registration",
	models.StageContactAttempt:   "Attempting Contact",
	models.StageEffectiveContact: "Effective Contact",
	models.StageVisitScheduled:   "Visit Scheduled",
	models.StageVisitCompleted:   "Visit Completed",
}

// Column is one kanban column.
type Column struct {
	ID    models.Stage `json:"id"`
	Title string       `json:"title"`
	Cards []Card       `json:"cards"`
}

// Card is a lead as shown on the board, with its active activities ordered by
// creation time.
type Card struct {
	ID            uint              `json:"id"`
	ClientName    string            `json:"client_name"`
	LeadSource    string            `json:"lead_source"`
	PhoneNumber   string            `json:"phone_number"`
	Observations  string            `json:"observations,omitempty"`
	Activities    []models.Activity `json:"activities"`
	LastActivity  *models.Activity  `json:"last_activity,omitempty"`
}

// PartitionByStage groups leads into board columns by their current stage.
// Inactive leads and leads in terminal stages are skipped. Soft-deleted
// activities are filtered out of every card.
func PartitionByStage(leads []models.Lead) []Column {
	columns := make([]Column, 0, len(BoardStages))
	byStage := make(map[models.Stage][]Card)

	for _, lead := range leads {
		if !lead.Active || IsTerminal(lead.Status) {
			continue
		}
		card := Card{
			ID:           lead.ID,
			ClientName:   lead.Name,
			LeadSource:   lead.LeadSource,
			PhoneNumber:  lead.PhoneNumber,
			Observations: lead.Observations,
			Activities:   ActiveActivities(lead.Activities),
		}
		card.LastActivity = LastActivity(card.Activities)
		byStage[lead.Status] = append(byStage[lead.Status], card)
	}

	for _, stage := range BoardStages {
		cards := byStage[stage]
		if cards == nil {
			cards = []Card{}
		}
		columns = append(columns, Column{
			ID:    stage,
			Title: stageTitles[stage],
			Cards: cards,
		})
	}
	return columns
}

// ActiveActivities filters out soft-deleted entries and orders the rest by
// creation time, oldest first.
func ActiveActivities(activities []models.Activity) []models.Activity {
	active := make([]models.Activity, 0, len(activities))
	for _, a := range activities {
		if a.Active {
			active = append(active, a)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].CreatedAt.Before(active[j].CreatedAt)
	})
	return active
}

// LastActivity returns the most recent active activity, or nil.
func LastActivity(activities []models.Activity) *models.Activity {
	var last *models.Activity
	for i := range activities {
		if !activities[i].Active {
			continue
		}
		if last == nil || activities[i].CreatedAt.After(last.CreatedAt) {
			last = &activities[i]
		}
	}
	return last
}
