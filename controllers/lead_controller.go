package controller

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"leadboard/models"
	"leadboard/pipeline"
	"leadboard/utils"
)

type LeadController struct {
	DB     *gorm.DB
	Logger *log.Logger
	Hub    *utils.EventHub
}

func NewLeadController(db *gorm.DB, logger *log.Logger, hub *utils.EventHub) *LeadController {
	return &LeadController{
		DB:     db,
		Logger: logger,
		Hub:    hub,
	}
}

// CreateLead registers a new lead in the new registration stage.
func (lc *LeadController) CreateLead(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		UnitID       uint   `json:"unit_id" validate:"required"`
		Name         string `json:"name" validate:"required,max=200"`
		PhoneNumber  string `json:"phone_number" validate:"required,max=20"`
		Email        string `json:"email" validate:"omitempty,email"`
		LeadSource   string `json:"lead_source" validate:"omitempty,max=100"`
		Observations string `json:"observations" validate:"omitempty,max=2000"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	ok, err := userHasUnit(lc.DB, user, input.UnitID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve units", err)
	}
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "No access to this unit", nil)
	}

	lead := models.Lead{
		UnitID:       input.UnitID,
		Name:         input.Name,
		PhoneNumber:  input.PhoneNumber,
		Email:        input.Email,
		LeadSource:   input.LeadSource,
		Observations: input.Observations,
		Status:       models.StageNewRegistration,
		Active:       true,
		CreatedBy:    user.ID,
	}

	if err := lc.DB.Create(&lead).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create lead", err)
	}

	lc.Hub.Publish(utils.Event{
		UnitID:   lead.UnitID,
		Entity:   "lead",
		EntityID: lead.ID,
		Action:   "created",
	})

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(lead))
}

// GetBoard returns the kanban view: active leads of one unit partitioned into
// stage columns, each card carrying its active activities in order.
func (lc *LeadController) GetBoard(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	unitID := utils.ParseUint(c.Query("unit_id"))
	if unitID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "unit_id is required", nil)
	}

	ok, err := userHasUnit(lc.DB, user, unitID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve units", err)
	}
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "No access to this unit", nil)
	}

	var leads []models.Lead
	if err := lc.DB.Where("unit_id = ? AND active = ?", unitID, true).
		Preload("Activities", "active = ?", true).
		Order("created_at DESC").
		Find(&leads).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch leads", err)
	}

	return c.JSON(utils.SuccessResponse(pipeline.PartitionByStage(leads)))
}

// GetLeads returns a paginated flat list of leads with filters.
func (lc *LeadController) GetLeads(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	unitIDs, err := userUnitIDs(lc.DB, user)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve units", err)
	}

	// Pagination
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if limit > 100 {
		limit = 100
	}
	offset := (page - 1) * limit

	query := lc.DB.Where("unit_id IN ? AND active = ?", unitIDs, true)

	if unitID := c.Query("unit_id"); unitID != "" {
		query = query.Where("unit_id = ?", utils.ParseUint(unitID))
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if name := c.Query("name"); name != "" {
		query = query.Where("name ILIKE ?", "%"+name+"%")
	}
	if source := c.Query("lead_source"); source != "" {
		query = query.Where("lead_source = ?", source)
	}

	var leads []models.Lead
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&leads).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch leads", err)
	}

	var total int64
	query.Model(&models.Lead{}).Count(&total)

	return c.JSON(utils.PaginatedResponse{
		Data:  leads,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// GetLead returns a single lead with activities and loss reasons.
func (lc *LeadController) GetLead(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	leadID := c.Params("id")

	unitIDs, err := userUnitIDs(lc.DB, user)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve units", err)
	}

	var lead models.Lead
	if err := lc.DB.Where("id = ? AND unit_id IN ?", leadID, unitIDs).
		Preload("Activities", "active = ?", true).
		Preload("LossReasons.Reason").
		First(&lead).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch lead", err)
	}

	return c.JSON(utils.SuccessResponse(lead))
}

// UpdateLead updates contact details. Pipeline stage is never touched here;
// only activity submissions move a lead.
func (lc *LeadController) UpdateLead(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	leadID := c.Params("id")

	var input struct {
		Name         string `json:"name" validate:"omitempty,max=200"`
		PhoneNumber  string `json:"phone_number" validate:"omitempty,max=20"`
		Email        string `json:"email" validate:"omitempty,email"`
		LeadSource   string `json:"lead_source" validate:"omitempty,max=100"`
		Observations string `json:"observations" validate:"omitempty,max=2000"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	unitIDs, err := userUnitIDs(lc.DB, user)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve units", err)
	}

	var lead models.Lead
	if err := lc.DB.Where("id = ? AND unit_id IN ?", leadID, unitIDs).First(&lead).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch lead", err)
	}

	if input.Name != "" {
		lead.Name = input.Name
	}
	if input.PhoneNumber != "" {
		lead.PhoneNumber = input.PhoneNumber
	}
	if input.Email != "" {
		lead.Email = input.Email
	}
	if input.LeadSource != "" {
		lead.LeadSource = input.LeadSource
	}
	if input.Observations != "" {
		lead.Observations = input.Observations
	}

	if err := lc.DB.Save(&lead).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update lead", err)
	}

	lc.Hub.Publish(utils.Event{
		UnitID:   lead.UnitID,
		Entity:   "lead",
		EntityID: lead.ID,
		Action:   "updated",
	})

	return c.JSON(utils.SuccessResponse(lead))
}

// DeleteLead deactivates a lead. Rows are never removed.
func (lc *LeadController) DeleteLead(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	leadID := c.Params("id")

	unitIDs, err := userUnitIDs(lc.DB, user)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve units", err)
	}

	var lead models.Lead
	if err := lc.DB.Where("id = ? AND unit_id IN ?", leadID, unitIDs).First(&lead).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch lead", err)
	}

	if err := lc.DB.Model(&lead).Update("active", false).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to deactivate lead", err)
	}

	lc.Hub.Publish(utils.Event{
		UnitID:   lead.UnitID,
		Entity:   "lead",
		EntityID: lead.ID,
		Action:   "deactivated",
	})

	return c.JSON(utils.SuccessResponse(lead))
}
