package notification

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go-payroll/internal/employee"
	notificationerrors "go-payroll/internal/notification/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const messageTemplate = "Dear %s, Your salary of %s/%d from %s %.2f has been credited to your %s account successfully."

//go:generate mockgen -source=notification_service.go -destination=mock/notification_service_mock.go -package=mock
type Service interface {
	// GenerateMessages writes one PENDING message per paid payslip of
	// the period and returns how many were written. Every invocation
	// writes fresh rows; repeated bulk approvals therefore queue
	// repeated notifications for the same slip.
	GenerateMessages(ctx context.Context, month, year int) (int, error)

	// SendPending attempts delivery of every pending message once. A
	// failed send is counted and left PENDING for the next sweep; it
	// never aborts the rest of the batch.
	SendPending(ctx context.Context) (sent, failed int, err error)

	GetByEmployeeEmail(ctx context.Context, email string) ([]MessageResponse, error)
}

type service struct {
	db          *gorm.DB
	repo        Repository
	employees   employee.Repository
	mailer      Mailer
	institution string
	logger      *zap.Logger
}

func NewService(
	db *gorm.DB,
	repo Repository,
	employeeRepo employee.Repository,
	mailer Mailer,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("notification.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.service")
	}

	institution := os.Getenv("INSTITUTION_NAME")
	if institution == "" {
		institution = "RCA"
	}

	return &service{
		db:          db,
		repo:        repo,
		employees:   employeeRepo,
		mailer:      mailer,
		institution: institution,
		logger:      l,
	}
}

func (s *service) GenerateMessages(ctx context.Context, month, year int) (int, error) {
	s.logger.Debug("generate messages requested",
		zap.Int("month", month),
		zap.Int("year", year),
	)

	var count int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		slips, err := qtx.FindPaidPaySlips(ctx, month, year)
		if err != nil {
			return err
		}

		for _, slip := range slips {
			msg := Message{
				ID:         uuid.New(),
				EmployeeID: slip.EmployeeID,
				Content:    s.buildContent(slip),
				Month:      slip.Month,
				Year:       slip.Year,
				Status:     StatusPending,
			}
			if err := qtx.Create(ctx, &msg); err != nil {
				s.logger.Error("generate messages persist failed",
					zap.String("employee_id", slip.EmployeeID.String()),
					zap.Error(err),
				)
				return err
			}
			count++
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("generate messages success",
		zap.Int("month", month),
		zap.Int("year", year),
		zap.Int("count", count),
	)
	return count, nil
}

func (s *service) SendPending(ctx context.Context) (int, int, error) {
	msgs, err := s.repo.FindPending(ctx)
	if err != nil {
		s.logger.Error("load pending messages failed", zap.Error(err))
		return 0, 0, err
	}

	var sent, failed int
	for i := range msgs {
		msg := &msgs[i]

		if msg.Employee == nil {
			s.logger.Warn("pending message without employee",
				zap.String("message_id", msg.ID.String()),
			)
			failed++
			continue
		}

		if err := s.mailer.Send(msg.Employee.Email, msg.Employee.FullName(), msg.Content); err != nil {
			s.logger.Warn("message delivery failed",
				zap.String("message_id", msg.ID.String()),
				zap.String("employee_email", msg.Employee.Email),
				zap.Error(err),
			)
			failed++
			continue
		}

		msg.Status = StatusSent
		if err := s.repo.Update(ctx, msg); err != nil {
			// Delivered but not recorded; the next sweep re-sends
			s.logger.Error("mark message sent failed",
				zap.String("message_id", msg.ID.String()),
				zap.Error(err),
			)
			failed++
			continue
		}

		sent++
	}

	s.logger.Info("pending messages dispatched",
		zap.Int("sent", sent),
		zap.Int("failed", failed),
	)
	return sent, failed, nil
}

func (s *service) GetByEmployeeEmail(ctx context.Context, email string) ([]MessageResponse, error) {
	empl, err := s.employees.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notificationerrors.EmployeeNotFound(email)
		}
		return nil, err
	}

	msgs, err := s.repo.FindByEmployeeID(ctx, empl.ID.String())
	if err != nil {
		s.logger.Error("get messages by employee failed",
			zap.String("employee_email", email),
			zap.Error(err),
		)
		return nil, err
	}

	return mapToListResponse(msgs), nil
}

func (s *service) buildContent(slip PaidPaySlip) string {
	firstName := ""
	if slip.Employee != nil {
		firstName = slip.Employee.FirstName
	}

	monthName := strings.ToUpper(time.Month(slip.Month).String())

	return fmt.Sprintf(messageTemplate,
		firstName,
		monthName,
		slip.Year,
		s.institution,
		slip.NetSalary,
		slip.EmployeeID.String(),
	)
}

func mapToResponse(msg Message) MessageResponse {
	resp := MessageResponse{
		ID:        msg.ID.String(),
		Content:   msg.Content,
		Month:     msg.Month,
		Year:      msg.Year,
		Status:    string(msg.Status),
		CreatedAt: msg.CreatedAt.UTC().Format(time.RFC3339),
	}
	if msg.Employee != nil {
		resp.EmployeeEmail = msg.Employee.Email
		resp.EmployeeName = msg.Employee.FullName()
	}
	return resp
}

func mapToListResponse(msgs []Message) []MessageResponse {
	resp := make([]MessageResponse, len(msgs))
	for i, m := range msgs {
		resp[i] = mapToResponse(m)
	}
	return resp
}
