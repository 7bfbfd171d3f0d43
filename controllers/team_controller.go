package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"writedesk/models"
	"writedesk/utils"
)

type TeamController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewTeamController(db *gorm.DB, logger *log.Logger) *TeamController {
	return &TeamController{
		DB:     db,
		Logger: logger,
	}
}

func (tc *TeamController) CreateTeam(c *fiber.Ctx) error {
	var input struct {
		Name        string `json:"name" validate:"required,max=100"`
		Description string `json:"description" validate:"omitempty,max=500"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var existing models.Team
	if err := tc.DB.Where("name = ?", input.Name).First(&existing).Error; err == nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Team name already in use", nil)
	}

	team := models.Team{
		Name:        input.Name,
		Description: input.Description,
	}
	if err := tc.DB.Create(&team).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create team", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(team))
}

func (tc *TeamController) GetTeams(c *fiber.Ctx) error {
	var teams []models.Team
	if err := tc.DB.Preload("TeamLead").Preload("Members").Find(&teams).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch teams", err)
	}
	return c.JSON(utils.SuccessResponse(teams))
}

func (tc *TeamController) GetTeam(c *fiber.Ctx) error {
	var team models.Team
	err := tc.DB.Preload("TeamLead").Preload("Members").
		First(&team, utils.ParseUint(c.Params("id"))).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Team not found", nil)
	}
	return c.JSON(utils.SuccessResponse(team))
}

func (tc *TeamController) UpdateTeam(c *fiber.Ctx) error {
	var team models.Team
	if err := tc.DB.First(&team, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Team not found", nil)
	}

	var input struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}

	if len(updates) > 0 {
		if err := tc.DB.Model(&team).Updates(updates).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update team", err)
		}
	}

	return c.JSON(utils.SuccessResponse(team))
}

func (tc *TeamController) DeleteTeam(c *fiber.Ctx) error {
	var team models.Team
	if err := tc.DB.First(&team, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Team not found", nil)
	}

	// Detach members before removing the team
	if err := tc.DB.Model(&models.User{}).Where("team_id = ?", team.ID).
		Update("team_id", nil).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to detach members", err)
	}

	if err := tc.DB.Delete(&team).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete team", err)
	}

	return c.JSON(fiber.Map{"message": "Team deleted"})
}

// SetTeamLead points the team at its lead. A team has at most one lead;
// setting a new one replaces the old. The lead must hold the team_lead role
// and is attached to the team as a member too.
func (tc *TeamController) SetTeamLead(c *fiber.Ctx) error {
	var team models.Team
	if err := tc.DB.First(&team, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Team not found", nil)
	}

	var input struct {
		UserID uint `json:"user_id" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	var lead models.User
	if err := tc.DB.First(&lead, input.UserID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "User not found", nil)
	}
	if lead.Role != models.RoleTeamLead {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "User does not hold the team lead role", nil)
	}

	if err := tc.DB.Model(&team).Update("team_lead_id", lead.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to set team lead", err)
	}
	if err := tc.DB.Model(&lead).Update("team_id", team.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to attach lead to team", err)
	}

	return c.JSON(utils.SuccessResponse(team))
}

func (tc *TeamController) AddMember(c *fiber.Ctx) error {
	var team models.Team
	if err := tc.DB.First(&team, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Team not found", nil)
	}

	var input struct {
		UserID uint `json:"user_id" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	var member models.User
	if err := tc.DB.First(&member, input.UserID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "User not found", nil)
	}

	if err := tc.DB.Model(&member).Update("team_id", team.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to add member", err)
	}

	return c.JSON(utils.SuccessResponse(member))
}

func (tc *TeamController) RemoveMember(c *fiber.Ctx) error {
	teamID := utils.ParseUint(c.Params("id"))
	userID := utils.ParseUint(c.Params("userId"))

	var member models.User
	if err := tc.DB.Where("id = ? AND team_id = ?", userID, teamID).First(&member).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Member not found in this team", nil)
	}

	if err := tc.DB.Model(&member).Update("team_id", nil).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to remove member", err)
	}

	// Dropping the lead clears the team's lead pointer as well
	var team models.Team
	if err := tc.DB.First(&team, teamID).Error; err == nil {
		if team.TeamLeadID != nil && *team.TeamLeadID == userID {
			tc.DB.Model(&team).Update("team_lead_id", nil)
		}
	}

	return c.JSON(fiber.Map{"message": "Member removed"})
}
