package deduction

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
	deductions := r.Group("/deductions")
	deductions.Use(middleware.ContextLogger(logger))
	{
		deductions.GET("",
			middleware.RateLimitByIP(3, 10),
			handler.GetAll,
		)

		deductions.GET("/:code",
			middleware.RateLimitByIP(3, 10),
			handler.GetByCode,
		)

		deductions.GET("/name/:name",
			middleware.RateLimitByIP(3, 10),
			handler.GetByName,
		)

		deductions.POST("",
			middleware.RateLimitByIP(0.5, 2),
			handler.Create,
		)

		deductions.POST("/initialize",
			middleware.RateLimitByIP(0.2, 1),
			handler.Initialize,
		)

		deductions.PUT("/:code",
			middleware.RateLimitByIP(0.5, 2),
			handler.Update,
		)

		deductions.DELETE("/:code",
			middleware.RateLimitByIP(0.2, 1),
			handler.Delete,
		)
	}
}
