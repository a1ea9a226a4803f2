package app

import (
	"os"

	"go-payroll/internal/deduction"
	"go-payroll/internal/employee"
	"go-payroll/internal/employment"
	"go-payroll/internal/notification"
	"go-payroll/internal/payslip"
	"go-payroll/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func BuildApp(router *gin.Engine) error {
	logger := zap.L().Named("app")

	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}
	logger.Info("database connection established")

	if err := migrate(gormDB); err != nil {
		return err
	}

	redisClient, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}
	logger.Info("redis connection established")

	return registerModules(router, gormDB, redisClient)
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&employee.Employee{},
		&deduction.Deduction{},
		&employment.Employment{},
		&payslip.PaySlip{},
		&notification.Message{},
	); err != nil {
		return err
	}

	// Tables driven by raw SQL repositories
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS system_counters (
			counter_type VARCHAR(50) PRIMARY KEY,
			last_value BIGINT NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS outbox_events (
			id UUID PRIMARY KEY,
			request_id VARCHAR(100),
			aggregate_type VARCHAR(50) NOT NULL,
			aggregate_id UUID NOT NULL,
			event_type VARCHAR(100) NOT NULL,
			topic VARCHAR(200) NOT NULL,
			payload JSONB NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			retry_count INT NOT NULL DEFAULT 0,
			error_message VARCHAR(500),
			next_retry_at TIMESTAMPTZ,
			processed_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outbox_events_status_created
			ON outbox_events (status, created_at)`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}

	return nil
}
