package routes

import (
	"github.com/forumkit/lottery-draw-backend/internal/config"
	"github.com/forumkit/lottery-draw-backend/internal/handlers"
	"github.com/forumkit/lottery-draw-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// SetupRouter sets up the router
func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	lotteryHandler *handlers.LotteryHandler,
	notificationHandler *handlers.NotificationHandler,
) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status": "ok",
			})
		})

		auth := public.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
		}

		// Platform webhooks
		events := public.Group("/events")
		{
			events.POST("/thread-created", lotteryHandler.ThreadCreated)
			events.POST("/post-created", lotteryHandler.PostCreated)
		}

		public.GET("/lotteries/thread/:threadId", lotteryHandler.GetLotteryByThread)
	}

	// Protected routes
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(cfg))
	{
		lotteries := protected.Group("/lotteries")
		{
			lotteries.GET("", lotteryHandler.GetLotteries)
			lotteries.GET("/:id", lotteryHandler.GetLotteryByID)
			lotteries.GET("/status/:status", lotteryHandler.GetLotteriesByStatus)
			lotteries.POST("/:id/draw", lotteryHandler.TriggerDraw)
		}

		notifications := protected.Group("/notifications")
		{
			notifications.GET("/lottery/:id", notificationHandler.GetNotificationsByLottery)
			notifications.GET("/status/:status", notificationHandler.GetNotificationsByStatus)
		}
	}

	return router
}
