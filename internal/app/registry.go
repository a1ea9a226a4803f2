package app

import (
	"go-payroll/internal/deduction"
	"go-payroll/internal/employee"
	"go-payroll/internal/employment"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/notification"
	"go-payroll/internal/payslip"
	"go-payroll/internal/shared/counter"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	logger := zap.L()

	// --- Repositories ---
	counterRepo := counter.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	deductionRepo := deduction.NewRepository(gormDB)
	employmentRepo := employment.NewRepository(gormDB)
	payslipRepo := payslip.NewRepository(gormDB)
	messageRepo := notification.NewRepository(gormDB)

	// --- Services ---
	deductionService := deduction.NewService(gormDB, deductionRepo, counterRepo)
	employmentService := employment.NewServiceWithOutbox(gormDB, employmentRepo, employeeRepo, counterRepo, outboxRepo)
	notificationService := notification.NewService(gormDB, messageRepo, employeeRepo, notification.NewSMTPMailerFromEnv())
	payslipService := payslip.NewService(gormDB, payslipRepo, employmentRepo, employeeRepo, deductionService, outboxRepo, rdb)

	// --- Handlers ---
	deductionHandler := deduction.NewHandler(deductionService)
	employmentHandler := employment.NewHandler(employmentService)
	notificationHandler := notification.NewHandler(notificationService)
	payslipHandler := payslip.NewHandler(payslipService, notificationService, rdb)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		deduction.RegisterRoutes(api, deductionHandler, logger)
		employment.RegisterRoutes(api, employmentHandler, logger)
		payslip.RegisterRoutes(api, payslipHandler, rdb, logger)
		notification.RegisterRoutes(api, notificationHandler, logger)
	}

	return nil
}
