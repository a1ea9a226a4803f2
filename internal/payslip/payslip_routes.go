package payslip

import (
	"go-payroll/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rdb *redis.Client,
	logger *zap.Logger,
) {
	payroll := r.Group("/payroll")
	payroll.Use(middleware.ContextLogger(logger))
	{
		payroll.POST("/generate",
			middleware.RateLimitByIP(0.5, 2),
			middleware.Idempotency(rdb),
			handler.Generate,
		)

		payroll.GET("/period/:month/:year",
			middleware.RateLimitByIP(3, 10),
			handler.GetByPeriod,
		)

		payroll.GET("/employee/:email",
			middleware.RateLimitByIP(3, 10),
			handler.GetByEmployee,
		)

		payroll.GET("/employee/:email/:month/:year",
			middleware.RateLimitByIP(3, 10),
			handler.GetByEmployeeAndPeriod,
		)

		payroll.PATCH("/slips/:id/approve",
			middleware.RateLimitByIP(0.5, 2),
			handler.ApproveOne,
		)

		payroll.PATCH("/approve/:month/:year",
			middleware.RateLimitByIP(0.5, 2),
			handler.ApproveAll,
		)
	}
}
