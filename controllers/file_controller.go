package controller

import (
	"encoding/base64"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"writedesk/models"
	"writedesk/notify"
	"writedesk/utils"
)

// maxFileSize caps inline file content at 10 MB decoded.
const maxFileSize = 10 << 20

type FileController struct {
	DB       *gorm.DB
	Logger   *log.Logger
	Notifier *notify.Dispatcher
}

func NewFileController(db *gorm.DB, notifier *notify.Dispatcher, logger *log.Logger) *FileController {
	return &FileController{
		DB:       db,
		Logger:   logger,
		Notifier: notifier,
	}
}

// UploadFile attaches a file to a task. Content arrives base64-encoded and
// is stored inline in the row.
func (fc *FileController) UploadFile(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var task models.Task
	if err := fc.DB.First(&task, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
	}
	if !canViewTask(user, &task) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Not allowed to view this task", nil)
	}

	var input struct {
		Name        string `json:"name" validate:"required,max=255"`
		Category    string `json:"category" validate:"required"`
		ContentType string `json:"content_type" validate:"omitempty,max=100"`
		Content     string `json:"content" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	if !models.ValidFileCategory(input.Category) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown file category", nil)
	}

	content, err := base64.StdEncoding.DecodeString(input.Content)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Content must be base64 encoded", err)
	}
	if len(content) > maxFileSize {
		return utils.ErrorResponse(c, fiber.StatusRequestEntityTooLarge, "File exceeds the 10MB limit", nil)
	}

	file := models.TaskFile{
		TaskID:       task.ID,
		UploadedByID: user.ID,
		Name:         input.Name,
		Category:     input.Category,
		ContentType:  input.ContentType,
		Size:         len(content),
		Content:      content,
	}
	if err := fc.DB.Create(&file).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to store file", err)
	}

	activity := models.Activity{
		TaskID:      task.ID,
		UserID:      user.ID,
		Action:      models.ActivityFileUploaded,
		Description: fmt.Sprintf("%s uploaded %s to the task %q", user.Name, file.Name, task.Title),
	}
	if err := fc.DB.Create(&activity).Error; err != nil {
		fc.Logger.Printf("Failed to record upload activity for task %d: %v", task.ID, err)
	}

	result := fc.Notifier.Dispatch(notify.EventFileUploaded, &task, user.ID, file.Name)
	if result.Failed() {
		utils.LogError("notification_dispatch", result.Err(), map[string]interface{}{
			"event":   string(notify.EventFileUploaded),
			"task_id": task.ID,
			"file_id": file.ID,
		})
	}

	// Strip content from the response body
	file.Content = nil
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(file))
}

// GetFiles lists a task's files without their content.
func (fc *FileController) GetFiles(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var task models.Task
	if err := fc.DB.First(&task, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
	}
	if !canViewTask(user, &task) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Not allowed to view this task", nil)
	}

	var files []models.TaskFile
	err := fc.DB.Select("id", "created_at", "updated_at", "task_id", "uploaded_by_id",
		"name", "category", "content_type", "size").
		Where("task_id = ?", task.ID).Order("created_at desc").Find(&files).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch files", err)
	}

	return c.JSON(utils.SuccessResponse(files))
}

// DownloadFile streams one file's content back to the client. Visibility
// follows the owning task.
func (fc *FileController) DownloadFile(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var file models.TaskFile
	if err := fc.DB.First(&file, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "File not found", nil)
	}

	var task models.Task
	if err := fc.DB.First(&task, file.TaskID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "File not found", nil)
	}
	if !canViewTask(user, &task) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Not allowed to view this task", nil)
	}

	if file.ContentType != "" {
		c.Set(fiber.HeaderContentType, file.ContentType)
	}
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Name))
	return c.Send(file.Content)
}
