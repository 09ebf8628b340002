package controller

import (
	"log"

	"github.com/badoux/checkmail"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"leadboard/config"
	"leadboard/models"
	"leadboard/utils"
)

type UserController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewUserController(db *gorm.DB, logger *log.Logger) *UserController {
	return &UserController{
		DB:     db,
		Logger: logger,
	}
}

// CreateUser provisions a staff account with the default password and links
// it to a unit. Admin only; the new user must change the password on first
// login.
func (uc *UserController) CreateUser(c *fiber.Ctx) error {
	admin := c.Locals("user").(*models.User)

	var input struct {
		Email    string `json:"email" validate:"required,email"`
		FullName string `json:"full_name" validate:"required,max=200"`
		Role     string `json:"role" validate:"required,oneof=consultant franchisee admin"`
		UnitID   uint   `json:"unit_id" validate:"required"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	if err := checkmail.ValidateFormat(input.Email); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid email address", err)
	}

	var unit models.Unit
	if err := uc.DB.Where("id = ? AND active = ?", input.UnitID, true).First(&unit).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Unit not found", nil)
	}

	var existing models.User
	if err := uc.DB.Where("email = ?", input.Email).First(&existing).Error; err == nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "User with this email already exists", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(config.AppConfig.DefaultUserPassword), bcrypt.DefaultCost)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to hash password", err)
	}

	user := models.User{
		Email:              input.Email,
		PasswordHash:       string(hash),
		FullName:           input.FullName,
		Role:               input.Role,
		IsActive:           true,
		MustChangePassword: true,
	}

	err = uc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		membership := models.UnitUser{
			UnitID: input.UnitID,
			UserID: user.ID,
			Active: true,
		}
		return tx.Create(&membership).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create user", err)
	}

	if err := utils.SendInvitationEmail(user.Email, user.FullName, config.AppConfig.DefaultUserPassword); err != nil {
		// Account exists either way; the admin can resend credentials manually
		uc.Logger.Printf("Failed to send invitation email to %s: %v", user.Email, err)
	}

	LogEvent("user_provisioned", map[string]interface{}{
		"admin_id": admin.ID,
		"user_id":  user.ID,
		"unit_id":  input.UnitID,
		"role":     input.Role,
	})

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(user))
}

// GetUsers lists accounts visible to the caller, with their unit memberships.
func (uc *UserController) GetUsers(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	query := uc.DB.Preload("UnitUsers")
	if !user.IsAdmin() {
		unitIDs, err := userUnitIDs(uc.DB, user)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve units", err)
		}
		query = query.Joins("JOIN unit_users ON unit_users.user_id = users.id").
			Where("unit_users.unit_id IN ? AND unit_users.active = ?", unitIDs, true).
			Distinct("users.*")
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch users", err)
	}

	return c.JSON(utils.SuccessResponse(users))
}

// DeactivateUser disables an account. Admin only; soft state, no deletion.
func (uc *UserController) DeactivateUser(c *fiber.Ctx) error {
	userID := c.Params("id")

	var target models.User
	if err := uc.DB.First(&target, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "User not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch user", err)
	}

	updates := map[string]interface{}{
		"is_active":     false,
		"token_version": target.TokenVersion + 1,
	}
	if err := uc.DB.Model(&target).Updates(updates).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to deactivate user", err)
	}

	return c.JSON(utils.SuccessResponse(target))
}
