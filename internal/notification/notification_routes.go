package notification

import (
	"go-payroll/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	logger *zap.Logger,
) {
	notifications := r.Group("/notifications")
	notifications.Use(middleware.ContextLogger(logger))
	{
		notifications.POST("/dispatch",
			middleware.RateLimitByIP(0.5, 2),
			handler.Dispatch,
		)

		notifications.GET("/employee/:email",
			middleware.RateLimitByIP(3, 10),
			handler.GetByEmployee,
		)
	}
}
