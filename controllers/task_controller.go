package controller

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"writedesk/models"
	"writedesk/notify"
	"writedesk/utils"
)

type TaskController struct {
	DB       *gorm.DB
	Logger   *log.Logger
	Notifier *notify.Dispatcher
}

func NewTaskController(db *gorm.DB, notifier *notify.Dispatcher, logger *log.Logger) *TaskController {
	return &TaskController{
		DB:       db,
		Logger:   logger,
		Notifier: notifier,
	}
}

// CreateTask opens a new task. Only sales and super admins reach this
// handler (role guard on the route). Assignment happens separately.
func (tc *TaskController) CreateTask(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Title       string     `json:"title" validate:"required,max=200"`
		Description string     `json:"description" validate:"omitempty,max=5000"`
		WordCount   *int       `json:"word_count" validate:"omitempty,gt=0"`
		ClientName  string     `json:"client_name" validate:"omitempty,max=200"`
		Budget      *float64   `json:"budget" validate:"omitempty,gt=0"`
		Deadline    *time.Time `json:"deadline"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	task := models.Task{
		Title:        input.Title,
		Description:  input.Description,
		WordCount:    input.WordCount,
		ClientName:   input.ClientName,
		Budget:       input.Budget,
		Deadline:     input.Deadline,
		Status:       models.TaskStatusNew,
		AssignedByID: &user.ID,
	}

	if err := tc.DB.Create(&task).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create task", err)
	}

	tc.recordActivity(task.ID, user.ID, models.ActivityTaskCreated,
		fmt.Sprintf("%s created the task %q", user.Name, task.Title))

	// Notification failures never fail the create
	tc.dispatch(notify.EventTaskCreated, &task, user.ID, "")

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(task))
}

// GetTasks lists tasks scoped by the caller's role: writers and
// proofreaders see work assigned to them, team leads see their team's
// tasks, sales see tasks they opened, super admins see everything.
func (tc *TaskController) GetTasks(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if limit > 100 {
		limit = 100
	}
	offset := (page - 1) * limit

	query := tc.DB.Model(&models.Task{})

	switch user.Role {
	case models.RoleSuperAdmin:
		// no scoping
	case models.RoleSales:
		query = query.Where("assigned_by_id = ?", user.ID)
	case models.RoleTeamLead:
		query = query.Where(
			"assigned_to_id IN (?) OR assigned_by_id = ?",
			tc.DB.Model(&models.User{}).Select("id").Where("team_id = ?", user.TeamID),
			user.ID,
		)
	case models.RoleWriter, models.RoleProofreader:
		query = query.Where("assigned_to_id = ? OR proofreader_id = ?", user.ID, user.ID)
	}

	if status := c.Query("status"); status != "" {
		if !models.ValidTaskStatus(status) {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown task status", nil)
		}
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)

	var tasks []models.Task
	err := query.Preload("AssignedTo").Preload("AssignedBy").
		Order("created_at desc").Offset(offset).Limit(limit).Find(&tasks).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch tasks", err)
	}

	return c.JSON(utils.PaginatedResponse{
		Data:  tasks,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

func (tc *TaskController) GetTask(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var task models.Task
	err := tc.DB.Preload("AssignedTo").Preload("AssignedBy").Preload("Proofreader").
		First(&task, utils.ParseUint(c.Params("id"))).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
	}

	if !canViewTask(user, &task) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Not allowed to view this task", nil)
	}

	return c.JSON(utils.SuccessResponse(task))
}

// UpdateTask edits the descriptive fields. Workflow moves (status,
// assignment) have their own endpoints and notifications.
func (tc *TaskController) UpdateTask(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var task models.Task
	if err := tc.DB.First(&task, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
	}
	if !canEditTask(user, &task) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Not allowed to edit this task", nil)
	}

	var input struct {
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		WordCount   *int       `json:"word_count"`
		ClientName  *string    `json:"client_name"`
		Budget      *float64   `json:"budget"`
		Deadline    *time.Time `json:"deadline"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.WordCount != nil {
		updates["word_count"] = *input.WordCount
	}
	if input.ClientName != nil {
		updates["client_name"] = *input.ClientName
	}
	if input.Budget != nil {
		updates["budget"] = *input.Budget
	}
	if input.Deadline != nil {
		// A moved deadline re-arms the reminder
		updates["deadline"] = *input.Deadline
		updates["deadline_notified_at"] = nil
	}

	if len(updates) > 0 {
		if err := tc.DB.Model(&task).Updates(updates).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update task", err)
		}
		tc.recordActivity(task.ID, user.ID, models.ActivityTaskUpdated,
			fmt.Sprintf("%s updated the task %q", user.Name, task.Title))
	}

	return c.JSON(utils.SuccessResponse(task))
}

// UpdateStatus moves a task to another status. Values are validated for
// membership in the closed set; there is no transition table, so any
// permitted actor may set any status.
func (tc *TaskController) UpdateStatus(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var task models.Task
	if err := tc.DB.First(&task, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
	}
	if !canViewTask(user, &task) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Not allowed to change this task", nil)
	}

	var input struct {
		Status string `json:"status" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if !models.ValidTaskStatus(input.Status) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown task status", nil)
	}

	updates := map[string]interface{}{"status": input.Status}
	if input.Status == models.TaskStatusSubmitted && task.SubmittedAt == nil {
		updates["submitted_at"] = time.Now()
	}

	if err := tc.DB.Model(&task).Updates(updates).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update status", err)
	}

	tc.recordActivity(task.ID, user.ID, models.ActivityStatusChanged,
		fmt.Sprintf("%s moved the task %q to %s", user.Name, task.Title, input.Status))

	tc.dispatch(notify.EventStatusChanged, &task, user.ID, input.Status)

	return c.JSON(utils.SuccessResponse(task))
}

// AssignTask sets the writer (and optionally a proofreader) on a task.
// The assignee's role must permit assignment; this is enforced here, not
// just in UI filtering.
func (tc *TaskController) AssignTask(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var task models.Task
	if err := tc.DB.First(&task, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
	}

	var input struct {
		AssignedToID  uint  `json:"assigned_to_id" validate:"required"`
		ProofreaderID *uint `json:"proofreader_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var assignee models.User
	if err := tc.DB.First(&assignee, input.AssignedToID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Assignee not found", nil)
	}
	if !assignee.Role.Assignable() {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "User's role does not permit assignment", nil)
	}

	updates := map[string]interface{}{
		"assigned_to_id": assignee.ID,
	}
	if input.ProofreaderID != nil {
		var proofreader models.User
		if err := tc.DB.First(&proofreader, *input.ProofreaderID).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Proofreader not found", nil)
		}
		if proofreader.Role != models.RoleProofreader {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "User does not hold the proofreader role", nil)
		}
		updates["proofreader_id"] = proofreader.ID
	}
	if task.Status == models.TaskStatusNew {
		updates["status"] = models.TaskStatusInProgress
	}

	if err := tc.DB.Model(&task).Updates(updates).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to assign task", err)
	}

	tc.recordActivity(task.ID, user.ID, models.ActivityTaskAssigned,
		fmt.Sprintf("%s assigned the task %q to %s", user.Name, task.Title, assignee.Name))

	tc.dispatch(notify.EventTaskAssigned, &task, user.ID, "")

	if err := utils.SendTaskAssignedEmail(assignee.Email, task.Title, task.Deadline); err != nil {
		utils.LogError("assignment_email", err, map[string]interface{}{
			"task_id":     task.ID,
			"assignee_id": assignee.ID,
		})
	}

	return c.JSON(utils.SuccessResponse(task))
}

func (tc *TaskController) DeleteTask(c *fiber.Ctx) error {
	var task models.Task
	if err := tc.DB.First(&task, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
	}

	if err := tc.DB.Delete(&task).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete task", err)
	}

	return c.JSON(fiber.Map{"message": "Task deleted"})
}

// GetTaskActivities returns the audit trail for one task, newest first.
func (tc *TaskController) GetTaskActivities(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var task models.Task
	if err := tc.DB.First(&task, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
	}
	if !canViewTask(user, &task) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Not allowed to view this task", nil)
	}

	var activities []models.Activity
	err := tc.DB.Where("task_id = ?", task.ID).Order("created_at desc").Find(&activities).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch activities", err)
	}

	return c.JSON(utils.SuccessResponse(activities))
}

// canViewTask is the shared visibility rule for a task and everything
// hanging off it (activities, comments, files).
func canViewTask(user *models.User, task *models.Task) bool {
	switch user.Role {
	case models.RoleSuperAdmin, models.RoleTeamLead:
		return true
	case models.RoleSales:
		return task.AssignedByID != nil && *task.AssignedByID == user.ID
	case models.RoleWriter, models.RoleProofreader:
		if task.AssignedToID != nil && *task.AssignedToID == user.ID {
			return true
		}
		return task.ProofreaderID != nil && *task.ProofreaderID == user.ID
	}
	return false
}

func canEditTask(user *models.User, task *models.Task) bool {
	switch user.Role {
	case models.RoleSuperAdmin, models.RoleTeamLead:
		return true
	case models.RoleSales:
		return task.AssignedByID != nil && *task.AssignedByID == user.ID
	case models.RoleWriter, models.RoleProofreader:
		return false
	}
	return false
}

func (tc *TaskController) recordActivity(taskID, userID uint, action, description string) {
	activity := models.Activity{
		TaskID:      taskID,
		UserID:      userID,
		Action:      action,
		Description: description,
	}
	if err := tc.DB.Create(&activity).Error; err != nil {
		tc.Logger.Printf("Failed to record activity for task %d: %v", taskID, err)
	}
}

// dispatch fans out a notification without letting a failure surface to
// the request: the primary mutation already committed.
func (tc *TaskController) dispatch(event notify.Event, task *models.Task, actorID uint, detail string) {
	result := tc.Notifier.Dispatch(event, task, actorID, detail)
	if result.Failed() {
		utils.LogError("notification_dispatch", result.Err(), map[string]interface{}{
			"event":      string(event),
			"task_id":    task.ID,
			"recipients": result.Recipients,
			"written":    result.Written,
		})
	}
}
