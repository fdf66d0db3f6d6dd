package handlers

import (
	"strconv"

	"rapidaid/internal/middleware"
	"rapidaid/internal/services"
	"rapidaid/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationHandler struct {
	notificationService services.NotificationService
}

func NewNotificationHandler(notificationService services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// List returns the actor's notifications, newest first.
func (h *NotificationHandler) List(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	limit := int64(utils.NotificationListLimit)
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			limit = parsed
		}
	}

	notifications, err := h.notificationService.List(c.Request.Context(), actor, limit)
	if err != nil {
		utils.DomainErrorResponse(c, err, "notifications")
		return
	}

	utils.SuccessResponseWithMeta(c, "Notifications retrieved", notifications, &utils.Meta{Count: len(notifications)})
}

// MarkRead marks one notification as read. Repeating the call is harmless.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	notificationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid notification ID")
		return
	}

	actor := middleware.ActorFromContext(c)
	if err := h.notificationService.MarkRead(c.Request.Context(), actor, notificationID); err != nil {
		utils.DomainErrorResponse(c, err, "notification")
		return
	}

	utils.SuccessResponse(c, "Notification marked read", nil)
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	count, err := h.notificationService.CountUnread(c.Request.Context(), actor)
	if err != nil {
		utils.DomainErrorResponse(c, err, "notifications")
		return
	}

	utils.SuccessResponse(c, "Unread count retrieved", gin.H{"unread": count})
}
