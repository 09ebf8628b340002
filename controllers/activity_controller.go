package controller

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"leadboard/models"
	"leadboard/pipeline"
	"leadboard/utils"
)

// ActivityController handles the pipeline operations: every handler loads the
// lead under the per-lead submission guard, runs the pipeline rules, and
// commits the new activity together with the lead update in one transaction.
type ActivityController struct {
	DB     *gorm.DB
	Logger *log.Logger
	Guard  *pipeline.SubmissionGuard
	Hub    *utils.EventHub
}

func NewActivityController(db *gorm.DB, logger *log.Logger, hub *utils.EventHub) *ActivityController {
	return &ActivityController{
		DB:     db,
		Logger: logger,
		Guard:  pipeline.NewSubmissionGuard(),
		Hub:    hub,
	}
}

// RecordAttempt registers a contact attempt for a lead.
func (ac *ActivityController) RecordAttempt(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	leadID := utils.ParseUint(c.Params("id"))

	var input struct {
		ContactChannel string    `json:"contact_channel" validate:"required,oneof=phone whatsapp whatsapp_call in_person"`
		NextContactAt  time.Time `json:"next_contact_at" validate:"required"`
		Notes          string    `json:"notes" validate:"omitempty,max=2000"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	return ac.submit(c, user, leadID, "contact_attempt", func(tx *gorm.DB, lead *models.Lead) error {
		activity, err := pipeline.RecordAttempt(lead, pipeline.AttemptInput{
			Channel:       models.ContactChannel(input.ContactChannel),
			NextContactAt: input.NextContactAt,
			Notes:         input.Notes,
			CreatedBy:     user.ID,
		})
		if err != nil {
			return err
		}
		if err := tx.Create(activity).Error; err != nil {
			return err
		}
		return tx.Save(lead).Error
	})
}

// RecordEffectiveContact registers an effective contact for a lead.
func (ac *ActivityController) RecordEffectiveContact(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	leadID := utils.ParseUint(c.Params("id"))

	var input struct {
		ContactChannel string `json:"contact_channel" validate:"required,oneof=phone whatsapp whatsapp_call in_person"`
		Notes          string `json:"notes" validate:"omitempty,max=2000"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	return ac.submit(c, user, leadID, "effective_contact", func(tx *gorm.DB, lead *models.Lead) error {
		activity, err := pipeline.RecordEffectiveContact(lead, pipeline.EffectiveContactInput{
			Channel:   models.ContactChannel(input.ContactChannel),
			Notes:     input.Notes,
			CreatedBy: user.ID,
		})
		if err != nil {
			return err
		}
		if err := tx.Create(activity).Error; err != nil {
			return err
		}
		return tx.Save(lead).Error
	})
}

// RecordScheduling registers a visit scheduling for a lead.
func (ac *ActivityController) RecordScheduling(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	leadID := utils.ParseUint(c.Params("id"))

	var input struct {
		ScheduledAt    time.Time `json:"scheduled_at" validate:"required"`
		ContactChannel string    `json:"contact_channel" validate:"required,oneof=phone whatsapp whatsapp_call in_person"`
		Notes          string    `json:"notes" validate:"omitempty,max=2000"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	return ac.submit(c, user, leadID, "scheduling", func(tx *gorm.DB, lead *models.Lead) error {
		activity, err := pipeline.RecordScheduling(lead, pipeline.SchedulingInput{
			ScheduledAt: input.ScheduledAt,
			Channel:     models.ContactChannel(input.ContactChannel),
			Notes:       input.Notes,
			CreatedBy:   user.ID,
		})
		if err != nil {
			return err
		}
		if err := tx.Create(activity).Error; err != nil {
			return err
		}
		return tx.Save(lead).Error
	})
}

// RecordAttendance registers the outcome of a completed visit. An enrolled
// outcome also creates the enrollment and sale records; a lost outcome stores
// one loss-reason row per selected reason. Everything lands in one
// transaction with the lead update.
func (ac *ActivityController) RecordAttendance(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	leadID := utils.ParseUint(c.Params("id"))

	var input struct {
		Outcome       string     `json:"outcome" validate:"required,oneof=enrolled in_negotiation lost"`
		QualityScore  *int       `json:"lead_quality_score" validate:"omitempty,min=1,max=5"`
		LossReasonIDs []uint     `json:"loss_reason_ids"`
		Observations  string     `json:"observations" validate:"omitempty,max=2000"`
		NextContactAt *time.Time `json:"next_contact_at"`
		StudentName   string     `json:"student_name" validate:"omitempty,max=200"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	return ac.submit(c, user, leadID, "attendance", func(tx *gorm.DB, lead *models.Lead) error {
		result, err := pipeline.RecordAttendance(lead, pipeline.AttendanceInput{
			Outcome:       models.AttendanceOutcome(input.Outcome),
			QualityScore:  input.QualityScore,
			LossReasonIDs: input.LossReasonIDs,
			Observations:  input.Observations,
			NextContactAt: input.NextContactAt,
			StudentName:   input.StudentName,
			CreatedBy:     user.ID,
		})
		if err != nil {
			return err
		}

		for i := range result.Activities {
			if err := tx.Create(&result.Activities[i]).Error; err != nil {
				return err
			}
		}
		for i := range result.LossReasons {
			if err := tx.Create(&result.LossReasons[i]).Error; err != nil {
				return err
			}
		}

		if models.AttendanceOutcome(input.Outcome) == models.OutcomeEnrolled {
			studentName := input.StudentName
			if studentName == "" {
				studentName = lead.Name
			}
			enrollment := models.Enrollment{
				UnitID:    lead.UnitID,
				LeadID:    lead.ID,
				FullName:  studentName,
				Active:    true,
				CreatedBy: user.ID,
			}
			if err := tx.Create(&enrollment).Error; err != nil {
				return err
			}
			sale := models.Sale{
				UnitID:      lead.UnitID,
				LeadID:      lead.ID,
				StudentName: studentName,
				Active:      true,
				CreatedBy:   user.ID,
			}
			if err := tx.Create(&sale).Error; err != nil {
				return err
			}
		}

		return tx.Save(lead).Error
	})
}

// DeleteActivity soft-deletes an activity: the active flag flips, the row
// stays. The lead's stage is not re-derived.
func (ac *ActivityController) DeleteActivity(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	activityID := c.Params("id")

	unitIDs, err := userUnitIDs(ac.DB, user)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve units", err)
	}

	var activity models.Activity
	if err := ac.DB.Where("id = ? AND unit_id IN ?", activityID, unitIDs).First(&activity).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Activity not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch activity", err)
	}

	if err := ac.DB.Model(&activity).Update("active", false).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to deactivate activity", err)
	}

	ac.Hub.Publish(utils.Event{
		UnitID:   activity.UnitID,
		Entity:   "activity",
		EntityID: activity.ID,
		Action:   "deactivated",
	})

	return c.JSON(utils.SuccessResponse(activity))
}

// submit runs one pipeline submission: acquire the lead's single-flight slot,
// load the lead fresh inside a transaction, apply fn, commit. Validation and
// transition failures roll back before anything is written.
func (ac *ActivityController) submit(c *fiber.Ctx, user *models.User, leadID uint, operation string, fn func(tx *gorm.DB, lead *models.Lead) error) error {
	submissionID := uuid.New().String()

	unitIDs, err := userUnitIDs(ac.DB, user)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve units", err)
	}

	var lead models.Lead
	err = ac.Guard.Do(leadID, func() error {
		return ac.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("id = ? AND unit_id IN ? AND active = ?", leadID, unitIDs, true).
				First(&lead).Error; err != nil {
				return err
			}
			return fn(tx, &lead)
		})
	})

	if err != nil {
		return ac.submissionError(c, err, submissionID, operation, leadID, user.ID)
	}

	ac.Logger.Printf("[%s] %s recorded for lead %d", submissionID, operation, leadID)
	ac.Hub.Publish(utils.Event{
		UnitID:   lead.UnitID,
		Entity:   "lead",
		EntityID: lead.ID,
		Action:   "updated",
	})

	return c.JSON(utils.SuccessResponse(lead))
}

func (ac *ActivityController) submissionError(c *fiber.Ctx, err error, submissionID, operation string, leadID, userID uint) error {
	var validationErr *pipeline.ValidationError
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
	case errors.Is(err, pipeline.ErrInvalidTransition):
		return utils.ErrorResponse(c, fiber.StatusConflict, "Activity not allowed from the lead's current stage", err)
	case errors.Is(err, pipeline.ErrMissingLossReason):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "At least one loss reason is required", err)
	case errors.Is(err, pipeline.ErrSubmissionInFlight):
		return utils.ErrorResponse(c, fiber.StatusConflict, "Another submission for this lead is being processed", err)
	case errors.As(err, &validationErr):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	LogError("submission_failed", err, map[string]interface{}{
		"submission_id": submissionID,
		"operation":     operation,
		"lead_id":       leadID,
		"user_id":       userID,
	})
	return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to record activity", err)
}
