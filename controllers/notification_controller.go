package controller

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"writedesk/models"
	"writedesk/utils"
)

type NotificationController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewNotificationController(db *gorm.DB, logger *log.Logger) *NotificationController {
	return &NotificationController{
		DB:     db,
		Logger: logger,
	}
}

// GetNotifications returns the caller's notifications, newest first.
func (nc *NotificationController) GetNotifications(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if limit > 200 {
		limit = 200
	}
	offset := (page - 1) * limit

	query := nc.DB.Model(&models.Notification{}).Where("user_id = ?", user.ID)

	if unread := c.Query("unread"); unread == "true" {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	query.Count(&total)

	var notifications []models.Notification
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&notifications).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch notifications", err)
	}

	return c.JSON(utils.PaginatedResponse{
		Data:  notifications,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// GetUnreadCount returns how many unread notifications the caller has.
func (nc *NotificationController) GetUnreadCount(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var count int64
	err := nc.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).Count(&count).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count notifications", err)
	}

	return c.JSON(fiber.Map{"count": count})
}

// MarkRead marks one notification read. 404 when the row does not exist
// or belongs to someone else; ownership is never disclosed.
func (nc *NotificationController) MarkRead(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	id := utils.ParseUint(c.Params("id"))

	result := nc.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, user.ID).
		Update("is_read", true)
	if result.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to mark notification read", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Notification not found", nil)
	}

	return c.JSON(fiber.Map{"message": "Notification marked read"})
}

// MarkAllRead marks every unread notification of the caller read.
// Idempotent: a second call affects zero rows and still succeeds.
func (nc *NotificationController) MarkAllRead(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	result := nc.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).
		Update("is_read", true)
	if result.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to mark notifications read", result.Error)
	}

	return c.JSON(fiber.Map{
		"message": "All notifications marked read",
		"updated": result.RowsAffected,
	})
}
