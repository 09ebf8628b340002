package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"leadboard/models"
	"leadboard/utils"
)

type EnrollmentController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewEnrollmentController(db *gorm.DB, logger *log.Logger) *EnrollmentController {
	return &EnrollmentController{
		DB:     db,
		Logger: logger,
	}
}

// GetEnrollments lists active enrollments of one unit, newest first, with the
// originating lead's source and phone number.
func (ec *EnrollmentController) GetEnrollments(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	unitID := utils.ParseUint(c.Query("unit_id"))
	if unitID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "unit_id is required", nil)
	}
	ok, err := userHasUnit(ec.DB, user, unitID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve units", err)
	}
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "No access to this unit", nil)
	}

	var enrollments []models.Enrollment
	if err := ec.DB.Where("unit_id = ? AND active = ?", unitID, true).
		Preload("Lead").
		Order("created_at DESC").
		Find(&enrollments).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch enrollments", err)
	}

	return c.JSON(utils.SuccessResponse(enrollments))
}

// GetSales lists active sales of one unit, newest first.
func (ec *EnrollmentController) GetSales(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	unitID := utils.ParseUint(c.Query("unit_id"))
	if unitID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "unit_id is required", nil)
	}
	ok, err := userHasUnit(ec.DB, user, unitID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve units", err)
	}
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "No access to this unit", nil)
	}

	var sales []models.Sale
	if err := ec.DB.Where("unit_id = ? AND active = ?", unitID, true).
		Preload("Lead").
		Order("created_at DESC").
		Find(&sales).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch sales", err)
	}

	return c.JSON(utils.SuccessResponse(sales))
}
