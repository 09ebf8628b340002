package pipeline

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"leadboard/models"
)

func boardLead(id uint, name string, stage models.Stage, active bool) models.Lead {
	lead := models.Lead{
		Name:   name,
		Status: stage,
		Active: active,
	}
	lead.ID = id
	return lead
}

func activityAt(id uint, kind models.ActivityType, createdAt time.Time, active bool) models.Activity {
	return models.Activity{
		Model:        gorm.Model{ID: id, CreatedAt: createdAt},
		ActivityType: kind,
		Active:       active,
	}
}

func TestPartitionByStage(t *testing.T) {
	leads := []models.Lead{
		boardLead(1, "Ana", models.StageNewRegistration, true),
		boardLead(2, "Bruno", models.StageNewRegistration, true),
		boardLead(3, "Carla", models.StageVisitScheduled, true),
		boardLead(4, "Davi", models.StageContactAttempt, false), // deactivated
		boardLead(5, "Elisa", models.StageEnrolled, true),       // terminal
		boardLead(6, "Fabio", models.StageLost, true),           // terminal
	}

	columns := PartitionByStage(leads)

	if len(columns) != len(BoardStages) {
		t.Fatalf("got %d columns, want %d", len(columns), len(BoardStages))
	}
	for i, stage := range BoardStages {
		if columns[i].ID != stage {
			t.Errorf("column %d = %q, want %q", i, columns[i].ID, stage)
		}
		if columns[i].Cards == nil {
			t.Errorf("column %q has nil cards, want empty slice", stage)
		}
	}

	counts := map[models.Stage]int{}
	for _, col := range columns {
		counts[col.ID] = len(col.Cards)
	}
	if counts[models.StageNewRegistration] != 2 {
		t.Errorf("new registration column has %d cards, want 2", counts[models.StageNewRegistration])
	}
	if counts[models.StageVisitScheduled] != 1 {
		t.Errorf("visit scheduled column has %d cards, want 1", counts[models.StageVisitScheduled])
	}
	if counts[models.StageContactAttempt] != 0 {
		t.Errorf("deactivated lead shown on board")
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	if total != 3 {
		t.Errorf("board shows %d cards, want 3 (terminal and inactive skipped)", total)
	}
}

func TestCardActivitiesFilteredAndOrdered(t *testing.T) {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	lead := boardLead(1, "Ana", models.StageContactAttempt, true)
	lead.Activities = []models.Activity{
		activityAt(3, models.ActivityEffectiveContact, base.Add(2*time.Hour), true),
		activityAt(1, models.ActivityContactAttempt, base, true),
		activityAt(2, models.ActivityContactAttempt, base.Add(time.Hour), false), // soft-deleted
	}

	columns := PartitionByStage([]models.Lead{lead})
	var card *Card
	for i := range columns {
		if columns[i].ID == models.StageContactAttempt {
			card = &columns[i].Cards[0]
		}
	}
	if card == nil {
		t.Fatal("card not found")
	}

	if len(card.Activities) != 2 {
		t.Fatalf("card has %d activities, want 2", len(card.Activities))
	}
	if card.Activities[0].ID != 1 || card.Activities[1].ID != 3 {
		t.Errorf("activities out of order: %d, %d", card.Activities[0].ID, card.Activities[1].ID)
	}
	if card.LastActivity == nil || card.LastActivity.ID != 3 {
		t.Errorf("last activity wrong")
	}
}

func TestLastActivityIgnoresDeleted(t *testing.T) {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	activities := []models.Activity{
		activityAt(1, models.ActivityContactAttempt, base, true),
		activityAt(2, models.ActivityEffectiveContact, base.Add(time.Hour), false),
	}

	last := LastActivity(activities)
	if last == nil || last.ID != 1 {
		t.Fatalf("last = %+v, want activity 1", last)
	}

	if got := LastActivity(nil); got != nil {
		t.Errorf("last of empty = %+v, want nil", got)
	}
}
