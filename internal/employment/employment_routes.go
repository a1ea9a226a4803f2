package employment

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
	employments := r.Group("/employments")
	employments.Use(middleware.ContextLogger(logger))
	{
		employments.GET("",
			middleware.RateLimitByIP(3, 10),
			handler.GetAll,
		)

		employments.GET("/active",
			middleware.RateLimitByIP(3, 10),
			handler.GetActive,
		)

		employments.GET("/:code",
			middleware.RateLimitByIP(3, 10),
			handler.GetByCode,
		)

		employments.GET("/employee/:email",
			middleware.RateLimitByIP(3, 10),
			handler.GetByEmployeeEmail,
		)

		employments.POST("",
			middleware.RateLimitByIP(0.5, 2),
			handler.Create,
		)

		employments.PUT("/:code",
			middleware.RateLimitByIP(0.5, 2),
			handler.Update,
		)

		employments.PATCH("/:code/status",
			middleware.RateLimitByIP(0.5, 2),
			handler.SetStatus,
		)
	}
}
