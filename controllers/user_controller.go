package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"writedesk/models"
	"writedesk/utils"
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

// GetUsers returns users, optionally filtered by role or availability.
// Team leads and sales use the role filter to find assignable writers.
func (uc *UserController) GetUsers(c *fiber.Ctx) error {
	query := uc.DB.Model(&models.User{})

	if role := c.Query("role"); role != "" {
		if !models.Role(role).Valid() {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown role", nil)
		}
		query = query.Where("role = ?", role)
	}
	if availability := c.Query("availability"); availability != "" {
		query = query.Where("availability = ?", availability)
	}

	var users []models.User
	if err := query.Order("name asc").Find(&users).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch users", err)
	}

	return c.JSON(utils.SuccessResponse(users))
}

// CreateUser lets a super admin provision an account with any role.
func (uc *UserController) CreateUser(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
		Name     string `json:"name" validate:"required,max=100"`
		Role     string `json:"role" validate:"required"`
		TeamID   *uint  `json:"team_id"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	if !models.Role(input.Role).Valid() {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown role", nil)
	}

	var existing models.User
	if err := uc.DB.Where("email = ?", input.Email).First(&existing).Error; err == nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Email already registered", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to hash password", err)
	}

	user := models.User{
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Name:         input.Name,
		Role:         models.Role(input.Role),
		TeamID:       input.TeamID,
		Availability: models.AvailabilityAvailable,
		IsActive:     true,
	}

	if err := uc.DB.Create(&user).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create user", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(user))
}

func (uc *UserController) GetUser(c *fiber.Ctx) error {
	var user models.User
	if err := uc.DB.First(&user, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "User not found", nil)
	}
	return c.JSON(utils.SuccessResponse(user))
}

// UpdateUser lets a super admin change profile, role, team and status.
func (uc *UserController) UpdateUser(c *fiber.Ctx) error {
	var user models.User
	if err := uc.DB.First(&user, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "User not found", nil)
	}

	var input struct {
		Name     *string `json:"name"`
		Role     *string `json:"role"`
		TeamID   *uint   `json:"team_id"`
		IsActive *bool   `json:"is_active"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Role != nil {
		if !models.Role(*input.Role).Valid() {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown role", nil)
		}
		updates["role"] = *input.Role
	}
	if input.TeamID != nil {
		updates["team_id"] = *input.TeamID
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if len(updates) > 0 {
		if err := uc.DB.Model(&user).Updates(updates).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update user", err)
		}
	}

	return c.JSON(utils.SuccessResponse(user))
}

// UpdateAvailability lets the signed-in user report their own state.
func (uc *UserController) UpdateAvailability(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Availability string `json:"availability" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if !models.ValidAvailability(input.Availability) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown availability state", nil)
	}

	if err := uc.DB.Model(user).Update("availability", input.Availability).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update availability", err)
	}

	return c.JSON(utils.SuccessResponse(user))
}

func (uc *UserController) DeleteUser(c *fiber.Ctx) error {
	actor := c.Locals("user").(*models.User)
	id := utils.ParseUint(c.Params("id"))

	if actor.ID == id {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Cannot delete your own account", nil)
	}

	var user models.User
	if err := uc.DB.First(&user, id).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "User not found", nil)
	}

	if err := uc.DB.Delete(&user).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete user", err)
	}

	return c.JSON(fiber.Map{"message": "User deleted"})
}
