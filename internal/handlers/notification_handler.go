package handlers

import (
	"net/http"

	"github.com/forumkit/lottery-draw-backend/internal/models"
	"github.com/forumkit/lottery-draw-backend/internal/repositories"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationHandler exposes the winner-notification delivery records, so an
// operator can find failed deliveries and re-announce by hand
type NotificationHandler struct {
	notificationRepo repositories.NotificationRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationRepo repositories.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{
		notificationRepo: notificationRepo,
	}
}

// GetNotificationsByLottery handles GET /notifications/lottery/:id
func (h *NotificationHandler) GetNotificationsByLottery(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	notifications, err := h.notificationRepo.FindByLotteryID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notifications: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, notifications)
}

// GetNotificationsByStatus handles GET /notifications/status/:status
func (h *NotificationHandler) GetNotificationsByStatus(c *gin.Context) {
	status := c.Param("status")
	switch status {
	case models.NotificationStatusPending, models.NotificationStatusSent, models.NotificationStatusFailed:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status (PENDING, SENT or FAILED)"})
		return
	}

	notifications, err := h.notificationRepo.FindByStatus(c.Request.Context(), status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notifications: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, notifications)
}
