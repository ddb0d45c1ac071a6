package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/forumkit/lottery-draw-backend/internal/models"
	"github.com/forumkit/lottery-draw-backend/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// LotteryHandler handles lottery-related HTTP requests
type LotteryHandler struct {
	creationService services.CreationService
	lotteryService  services.LotteryService
	drawService     services.DrawService
	scheduler       *services.Scheduler
}

// NewLotteryHandler creates a new LotteryHandler
func NewLotteryHandler(
	creationService services.CreationService,
	lotteryService services.LotteryService,
	drawService services.DrawService,
	scheduler *services.Scheduler,
) *LotteryHandler {
	return &LotteryHandler{
		creationService: creationService,
		lotteryService:  lotteryService,
		drawService:     drawService,
		scheduler:       scheduler,
	}
}

// ThreadEventRequest is the payload of the platform's thread/post webhooks
type ThreadEventRequest struct {
	ThreadID int64 `json:"thread_id" binding:"required"`
}

// ThreadCreated handles POST /events/thread-created
func (h *LotteryHandler) ThreadCreated(c *gin.Context) {
	var request ThreadEventRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Creation never fails the webhook: malformed templates and transient
	// errors are logged server-side.
	h.creationService.HandleThreadCreated(c.Request.Context(), request.ThreadID)
	c.JSON(http.StatusAccepted, gin.H{"message": "Thread event accepted"})
}

// PostCreated handles POST /events/post-created
func (h *LotteryHandler) PostCreated(c *gin.Context) {
	var request ThreadEventRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.scheduler.InvalidateThread(request.ThreadID)
	c.JSON(http.StatusAccepted, gin.H{"message": "Post event accepted"})
}

// GetLotteryByID handles GET /lotteries/:id
func (h *LotteryHandler) GetLotteryByID(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	lottery, err := h.lotteryService.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Lottery not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve lottery: " + err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, lottery)
}

// GetLotteryByThread handles GET /lotteries/thread/:threadId
func (h *LotteryHandler) GetLotteryByThread(c *gin.Context) {
	threadID, err := strconv.ParseInt(c.Param("threadId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid thread ID"})
		return
	}

	lottery, err := h.lotteryService.GetByThreadID(c.Request.Context(), threadID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No lottery for this thread"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve lottery: " + err.Error()})
		}
		return
	}

	response := gin.H{"lottery": lottery}
	if lottery.Status == models.LotteryStatusRunning {
		if count, err := h.lotteryService.ParticipatingUserCount(c.Request.Context(), lottery); err == nil {
			response["participating_users"] = count
		}
	}
	c.JSON(http.StatusOK, response)
}

// GetLotteries handles GET /lotteries
func (h *LotteryHandler) GetLotteries(c *gin.Context) {
	lotteries, err := h.lotteryService.GetAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve lotteries: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, lotteries)
}

// GetLotteriesByStatus handles GET /lotteries/status/:status
func (h *LotteryHandler) GetLotteriesByStatus(c *gin.Context) {
	status := models.LotteryStatus(c.Param("status"))
	switch status {
	case models.LotteryStatusRunning, models.LotteryStatusFinished, models.LotteryStatusCancelled:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status (running, finished or cancelled)"})
		return
	}

	lotteries, err := h.lotteryService.GetByStatus(c.Request.Context(), status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve lotteries: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, lotteries)
}

// TriggerDraw handles POST /lotteries/:id/draw
func (h *LotteryHandler) TriggerDraw(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	lottery, err := h.lotteryService.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Lottery not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve lottery: " + err.Error()})
		}
		return
	}
	if lottery.Status != models.LotteryStatusRunning {
		c.JSON(http.StatusConflict, gin.H{"error": "Lottery is not running", "status": lottery.Status})
		return
	}

	if err := h.drawService.PerformDraw(c.Request.Context(), lottery); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to perform draw: " + err.Error()})
		return
	}

	updated, err := h.lotteryService.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Draw performed but failed to reload lottery: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Draw performed", "lottery": updated})
}
