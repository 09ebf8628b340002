package worker

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"
	"leadboard/models"
	"leadboard/utils"
)

// FollowupWorker periodically scans for leads whose next-contact time has
// passed and notifies the lead's unit so the board can surface them.
type FollowupWorker struct {
	DB       *gorm.DB
	Hub      *utils.EventHub
	Logger   *log.Logger
	Interval time.Duration

	// Already-notified lead ids, reset when the next contact moves
	notified map[uint]time.Time
}

func NewFollowupWorker(db *gorm.DB, hub *utils.EventHub, logger *log.Logger, interval time.Duration) *FollowupWorker {
	return &FollowupWorker{
		DB:       db,
		Hub:      hub,
		Logger:   logger,
		Interval: interval,
		notified: make(map[uint]time.Time),
	}
}

func (fw *FollowupWorker) Start(ctx context.Context) {
	// Initial delay to let the server start up
	time.Sleep(10 * time.Second)

	fw.Logger.Println("Follow-up worker started")

	ticker := time.NewTicker(fw.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			fw.Logger.Println("Follow-up worker shutting down...")
			return
		case <-ticker.C:
			fw.processOverdueContacts()
		}
	}
}

func (fw *FollowupWorker) processOverdueContacts() {
	var overdue []models.Lead
	if err := fw.DB.
		Where("active = ? AND next_contact_at IS NOT NULL AND next_contact_at < ?", true, time.Now()).
		Where("status IN ?", []models.Stage{
			models.StageNewRegistration,
			models.StageContactAttempt,
			models.StageEffectiveContact,
			models.StageVisitScheduled,
		}).
		Find(&overdue).Error; err != nil {
		fw.Logger.Printf("Error fetching overdue contacts: %v", err)
		return
	}

	for _, lead := range overdue {
		if at, seen := fw.notified[lead.ID]; seen && lead.NextContactAt != nil && at.Equal(*lead.NextContactAt) {
			continue
		}
		fw.Hub.Publish(utils.Event{
			UnitID:   lead.UnitID,
			Entity:   "lead",
			EntityID: lead.ID,
			Action:   "followup_due",
		})
		if lead.NextContactAt != nil {
			fw.notified[lead.ID] = *lead.NextContactAt
		}
		fw.Logger.Printf("Follow-up due for lead %d (unit %d)", lead.ID, lead.UnitID)
	}
}
