package controller

import (
	"leadboard/models"

	"gorm.io/gorm"
)

// userUnitIDs returns the units the user may read and mutate. Admins see
// every active unit; everyone else only the units they are a member of.
func userUnitIDs(db *gorm.DB, user *models.User) ([]uint, error) {
	var ids []uint
	if user.IsAdmin() {
		err := db.Model(&models.Unit{}).Where("active = ?", true).Pluck("id", &ids).Error
		return ids, err
	}
	err := db.Model(&models.UnitUser{}).
		Where("user_id = ? AND active = ?", user.ID, true).
		Pluck("unit_id", &ids).Error
	return ids, err
}

// userHasUnit reports whether the user may act on the given unit.
func userHasUnit(db *gorm.DB, user *models.User, unitID uint) (bool, error) {
	if user.IsAdmin() {
		return true, nil
	}
	var count int64
	err := db.Model(&models.UnitUser{}).
		Where("user_id = ? AND unit_id = ? AND active = ?", user.ID, unitID, true).
		Count(&count).Error
	return count > 0, err
}
