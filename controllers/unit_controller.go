package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"leadboard/models"
	"leadboard/utils"
)

type UnitController struct {
	DB     *gorm.DB
	Logger *log.Logger
	Hub    *utils.EventHub
}

func NewUnitController(db *gorm.DB, logger *log.Logger, hub *utils.EventHub) *UnitController {
	return &UnitController{
		DB:     db,
		Logger: logger,
		Hub:    hub,
	}
}

// CreateUnit creates a unit and links the creator to it in one transaction.
func (uc *UnitController) CreateUnit(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Name         string `json:"name" validate:"required,max=200"`
		Street       string `json:"street" validate:"omitempty,max=200"`
		Number       string `json:"number" validate:"omitempty,max=20"`
		Neighborhood string `json:"neighborhood" validate:"omitempty,max=100"`
		City         string `json:"city" validate:"omitempty,max=100"`
		State        string `json:"state" validate:"omitempty,len=2"`
		PostalCode   string `json:"postal_code" validate:"omitempty,max=20"`
		Phone        string `json:"phone" validate:"omitempty,max=20"`
		Email        string `json:"email" validate:"omitempty,email"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	unit := models.Unit{
		Name:         input.Name,
		Street:       input.Street,
		Number:       input.Number,
		Neighborhood: input.Neighborhood,
		City:         input.City,
		State:        input.State,
		PostalCode:   input.PostalCode,
		Phone:        input.Phone,
		Email:        input.Email,
		Active:       true,
		CreatedBy:    user.ID,
	}

	err := uc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&unit).Error; err != nil {
			return err
		}
		membership := models.UnitUser{
			UnitID: unit.ID,
			UserID: user.ID,
			Active: true,
		}
		return tx.Create(&membership).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create unit", err)
	}

	uc.Hub.Publish(utils.Event{
		UnitID:   unit.ID,
		Entity:   "unit",
		EntityID: unit.ID,
		Action:   "created",
	})

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(unit))
}

// GetUnits lists active units visible to the caller, ordered by name.
func (uc *UnitController) GetUnits(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	unitIDs, err := userUnitIDs(uc.DB, user)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve units", err)
	}

	var units []models.Unit
	if err := uc.DB.Where("id IN ? AND active = ?", unitIDs, true).
		Order("name").
		Find(&units).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch units", err)
	}

	return c.JSON(utils.SuccessResponse(units))
}

// UpdateUnit updates unit details.
func (uc *UnitController) UpdateUnit(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	unitID := utils.ParseUint(c.Params("id"))

	ok, err := userHasUnit(uc.DB, user, unitID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve units", err)
	}
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "No access to this unit", nil)
	}

	var unit models.Unit
	if err := uc.DB.Where("id = ? AND active = ?", unitID, true).First(&unit).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Unit not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch unit", err)
	}

	var input struct {
		Name         string `json:"name" validate:"omitempty,max=200"`
		Street       string `json:"street" validate:"omitempty,max=200"`
		Number       string `json:"number" validate:"omitempty,max=20"`
		Neighborhood string `json:"neighborhood" validate:"omitempty,max=100"`
		City         string `json:"city" validate:"omitempty,max=100"`
		State        string `json:"state" validate:"omitempty,len=2"`
		PostalCode   string `json:"postal_code" validate:"omitempty,max=20"`
		Phone        string `json:"phone" validate:"omitempty,max=20"`
		Email        string `json:"email" validate:"omitempty,email"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if input.Name != "" {
		unit.Name = input.Name
	}
	if input.Street != "" {
		unit.Street = input.Street
	}
	if input.Number != "" {
		unit.Number = input.Number
	}
	if input.Neighborhood != "" {
		unit.Neighborhood = input.Neighborhood
	}
	if input.City != "" {
		unit.City = input.City
	}
	if input.State != "" {
		unit.State = input.State
	}
	if input.PostalCode != "" {
		unit.PostalCode = input.PostalCode
	}
	if input.Phone != "" {
		unit.Phone = input.Phone
	}
	if input.Email != "" {
		unit.Email = input.Email
	}

	if err := uc.DB.Save(&unit).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update unit", err)
	}

	uc.Hub.Publish(utils.Event{
		UnitID:   unit.ID,
		Entity:   "unit",
		EntityID: unit.ID,
		Action:   "updated",
	})

	return c.JSON(utils.SuccessResponse(unit))
}

// DeleteUnit deactivates a unit. Admin only; rows stay put.
func (uc *UnitController) DeleteUnit(c *fiber.Ctx) error {
	unitID := utils.ParseUint(c.Params("id"))

	var unit models.Unit
	if err := uc.DB.First(&unit, unitID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Unit not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch unit", err)
	}

	if err := uc.DB.Model(&unit).Update("active", false).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to deactivate unit", err)
	}

	uc.Hub.Publish(utils.Event{
		UnitID:   unit.ID,
		Entity:   "unit",
		EntityID: unit.ID,
		Action:   "deactivated",
	})

	return c.JSON(utils.SuccessResponse(unit))
}
