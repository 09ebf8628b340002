package models

import "gorm.io/gorm"

// CreateDefaultLossReasons seeds the loss-reason catalog on first boot.
func CreateDefaultLossReasons(db *gorm.DB) error {
	defaultReasons := []LossReasonOption{
		{Name: "price", Active: true},
		{Name: "distance", Active: true},
		{Name: "schedule_conflict", Active: true},
		{Name: "chose_competitor", Active: true},
		{Name: "no_interest", Active: true},
		{Name: "unreachable", Active: true},
		{Name: "other", Active: true},
	}
	for _, reason := range defaultReasons {
		if err := db.FirstOrCreate(&reason, "name = ?", reason.Name).Error; err != nil {
			return err
		}
	}
	return nil
}
