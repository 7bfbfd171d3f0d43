package controller

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"writedesk/models"
	"writedesk/notify"
	"writedesk/utils"
)

type CommentController struct {
	DB       *gorm.DB
	Logger   *log.Logger
	Notifier *notify.Dispatcher
}

func NewCommentController(db *gorm.DB, notifier *notify.Dispatcher, logger *log.Logger) *CommentController {
	return &CommentController{
		DB:       db,
		Logger:   logger,
		Notifier: notifier,
	}
}

// CreateComment appends a comment to a task. Comments have no edit or
// delete operations.
func (cc *CommentController) CreateComment(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var task models.Task
	if err := cc.DB.First(&task, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
	}
	if !canViewTask(user, &task) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Not allowed to view this task", nil)
	}

	var input struct {
		Content string `json:"content" validate:"required,max=5000"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	comment := models.Comment{
		TaskID:  task.ID,
		UserID:  user.ID,
		Content: input.Content,
	}
	if err := cc.DB.Create(&comment).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create comment", err)
	}

	activity := models.Activity{
		TaskID:      task.ID,
		UserID:      user.ID,
		Action:      models.ActivityCommentAdded,
		Description: fmt.Sprintf("%s commented on the task %q", user.Name, task.Title),
	}
	if err := cc.DB.Create(&activity).Error; err != nil {
		cc.Logger.Printf("Failed to record comment activity for task %d: %v", task.ID, err)
	}

	result := cc.Notifier.Dispatch(notify.EventCommentAdded, &task, user.ID, "")
	if result.Failed() {
		utils.LogError("notification_dispatch", result.Err(), map[string]interface{}{
			"event":   string(notify.EventCommentAdded),
			"task_id": task.ID,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(comment))
}

func (cc *CommentController) GetComments(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var task models.Task
	if err := cc.DB.First(&task, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
	}
	if !canViewTask(user, &task) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Not allowed to view this task", nil)
	}

	var comments []models.Comment
	err := cc.DB.Where("task_id = ?", task.ID).Order("created_at asc").Find(&comments).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch comments", err)
	}

	return c.JSON(utils.SuccessResponse(comments))
}
