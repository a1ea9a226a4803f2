package employment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go-payroll/internal/employee"
	employmenterrors "go-payroll/internal/employment/errors"
	"go-payroll/internal/events"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/contextutil"
	"go-payroll/internal/shared/counter"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=employment_service.go -destination=mock/employment_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateEmploymentRequest) (EmploymentResponse, error)
	GetAll(ctx context.Context) ([]EmploymentResponse, error)
	GetActive(ctx context.Context) ([]EmploymentResponse, error)
	GetByCode(ctx context.Context, code string) (EmploymentResponse, error)
	GetByEmployeeEmail(ctx context.Context, email string) (EmploymentResponse, error)
	Update(ctx context.Context, code string, req UpdateEmploymentRequest) (EmploymentResponse, error)
	SetStatus(ctx context.Context, code string, active bool) (EmploymentResponse, error)
}

type service struct {
	db        *gorm.DB
	repo      Repository
	employees employee.Repository
	counter   counter.Repository
	outbox    kafka.OutboxRepository
	logger    *zap.Logger
}

func NewService(
	db *gorm.DB,
	repo Repository,
	employeeRepo employee.Repository,
	counterRepo counter.Repository,
	logger ...*zap.Logger,
) Service {
	return NewServiceWithOutbox(db, repo, employeeRepo, counterRepo, nil, logger...)
}

func NewServiceWithOutbox(
	db *gorm.DB,
	repo Repository,
	employeeRepo employee.Repository,
	counterRepo counter.Repository,
	outboxRepo kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("employment.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employment.service")
	}
	return &service{
		db:        db,
		repo:      repo,
		employees: employeeRepo,
		counter:   counterRepo,
		outbox:    outboxRepo,
		logger:    l,
	}
}

func (s *service) Create(ctx context.Context, req CreateEmploymentRequest) (EmploymentResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create employment requested",
		zap.String("request_id", rid),
		zap.String("employee_email", req.EmployeeEmail),
	)

	joiningDate, err := parseDate(req.JoiningDate)
	if err != nil {
		s.logger.Warn("create employment invalid joining_date",
			zap.String("joining_date", req.JoiningDate),
			zap.Error(err),
		)
		return EmploymentResponse{}, err
	}

	var created Employment
	err = s.db.Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		empl, err := s.employees.FindByEmail(ctx, req.EmployeeEmail)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				s.logger.Warn("create employment employee not found",
					zap.String("employee_email", req.EmployeeEmail),
				)
				return employmenterrors.EmployeeNotFound(req.EmployeeEmail)
			}
			return err
		}

		exists, err := qtx.ExistsByEmployeeID(ctx, empl.ID.String())
		if err != nil {
			return err
		}
		if exists {
			s.logger.Warn("create employment already employed",
				zap.String("employee_email", req.EmployeeEmail),
			)
			return employmenterrors.AlreadyEmployed(req.EmployeeEmail)
		}

		nextVal, err := s.counter.GetNextValue(ctx, "employment_code")
		if err != nil {
			s.logger.Error("create employment generate code failed", zap.Error(err))
			return err
		}

		created = Employment{
			ID:          uuid.New(),
			Code:        fmt.Sprintf("EMP-%06d", nextVal),
			EmployeeID:  empl.ID,
			Employee:    empl,
			Department:  req.Department,
			Position:    req.Position,
			BaseSalary:  req.BaseSalary,
			JoiningDate: joiningDate,
			Status:      StatusActive,
		}
		if err := qtx.Create(ctx, &created); err != nil {
			s.logger.Error("create employment persist failed", zap.Error(err))
			return mapRepositoryError(err, req.EmployeeEmail)
		}

		if s.outbox != nil {
			event := events.EmploymentCreatedEvent{
				EventType:      "employment_created",
				RequestID:      rid,
				EmploymentCode: created.Code,
				EmployeeID:     created.EmployeeID.String(),
				OccurredAt:     time.Now().UTC(),
			}
			payload, err := json.Marshal(event)
			if err != nil {
				return err
			}

			if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
				ID:            uuid.NewString(),
				RequestID:     rid,
				AggregateType: "employment",
				AggregateID:   created.ID.String(),
				EventType:     event.EventType,
				Topic:         events.EmploymentCreatedTopic,
				Payload:       payload,
				Status:        kafka.OutboxStatusPending,
			}); err != nil {
				s.logger.Error("create employment outbox persist failed",
					zap.String("employment_code", created.Code),
					zap.Error(err),
				)
				return err
			}
		}

		return nil
	})
	if err != nil {
		return EmploymentResponse{}, err
	}

	s.logger.Info("create employment success",
		zap.String("request_id", rid),
		zap.String("employment_code", created.Code),
	)

	return mapToResponse(created), nil
}

func (s *service) GetAll(ctx context.Context) ([]EmploymentResponse, error) {
	empls, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("get all employments failed", zap.Error(err))
		return nil, err
	}

	return mapToListResponse(empls), nil
}

func (s *service) GetActive(ctx context.Context) ([]EmploymentResponse, error) {
	empls, err := s.repo.FindActive(ctx)
	if err != nil {
		s.logger.Error("get active employments failed", zap.Error(err))
		return nil, err
	}

	return mapToListResponse(empls), nil
}

func (s *service) GetByCode(ctx context.Context, code string) (EmploymentResponse, error) {
	empl, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EmploymentResponse{}, employmenterrors.NotFoundByCode(code)
		}
		return EmploymentResponse{}, err
	}

	return mapToResponse(*empl), nil
}

func (s *service) GetByEmployeeEmail(ctx context.Context, email string) (EmploymentResponse, error) {
	empl, err := s.employees.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EmploymentResponse{}, employmenterrors.EmployeeNotFound(email)
		}
		return EmploymentResponse{}, err
	}

	record, err := s.repo.FindByEmployeeID(ctx, empl.ID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EmploymentResponse{}, employmenterrors.NotFoundByEmail(email)
		}
		return EmploymentResponse{}, err
	}

	return mapToResponse(*record), nil
}

func (s *service) Update(ctx context.Context, code string, req UpdateEmploymentRequest) (EmploymentResponse, error) {
	s.logger.Debug("update employment requested", zap.String("employment_code", code))

	joiningDate, err := parseDate(req.JoiningDate)
	if err != nil {
		return EmploymentResponse{}, err
	}

	var updated Employment
	err = s.db.Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		empl, err := qtx.FindByCode(ctx, code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return employmenterrors.NotFoundByCode(code)
			}
			return err
		}

		empl.Department = req.Department
		empl.Position = req.Position
		empl.BaseSalary = req.BaseSalary
		empl.JoiningDate = joiningDate

		if err := qtx.Update(ctx, empl); err != nil {
			s.logger.Error("update employment persist failed", zap.Error(err))
			return mapRepositoryError(err, "")
		}

		updated = *empl
		return nil
	})
	if err != nil {
		return EmploymentResponse{}, err
	}

	s.logger.Info("update employment success", zap.String("employment_code", code))
	return mapToResponse(updated), nil
}

func (s *service) SetStatus(ctx context.Context, code string, active bool) (EmploymentResponse, error) {
	s.logger.Debug("set employment status requested",
		zap.String("employment_code", code),
		zap.Bool("active", active),
	)

	var updated Employment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		empl, err := qtx.FindByCode(ctx, code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return employmenterrors.NotFoundByCode(code)
			}
			return err
		}

		if active {
			empl.Status = StatusActive
		} else {
			empl.Status = StatusDisabled
		}

		if err := qtx.Update(ctx, empl); err != nil {
			return err
		}

		updated = *empl
		return nil
	})
	if err != nil {
		return EmploymentResponse{}, err
	}

	s.logger.Info("set employment status success",
		zap.String("employment_code", code),
		zap.String("status", string(updated.Status)),
	)
	return mapToResponse(updated), nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, apperror.New(
			apperror.CodeInvalidInput,
			"invalid date format, expected YYYY-MM-DD",
			http.StatusBadRequest,
		)
	}
	return t, nil
}

func mapToResponse(empl Employment) EmploymentResponse {
	resp := EmploymentResponse{
		ID:          empl.ID.String(),
		Code:        empl.Code,
		Department:  empl.Department,
		Position:    empl.Position,
		BaseSalary:  empl.BaseSalary,
		JoiningDate: empl.JoiningDate.Format("2006-01-02"),
		Status:      string(empl.Status),
	}
	if empl.Employee != nil {
		resp.EmployeeEmail = empl.Employee.Email
		resp.EmployeeName = empl.Employee.FullName()
	}
	return resp
}

func mapToListResponse(empls []Employment) []EmploymentResponse {
	resp := make([]EmploymentResponse, len(empls))
	for i, e := range empls {
		resp[i] = mapToResponse(e)
	}
	return resp
}
