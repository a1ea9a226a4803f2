package payslip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-payroll/internal/deduction"
	"go-payroll/internal/employee"
	"go-payroll/internal/employment"
	"go-payroll/internal/events"
	"go-payroll/internal/messaging/kafka"
	paysliperrors "go-payroll/internal/payslip/errors"
	"go-payroll/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const periodCacheTTL = 5 * time.Minute

//go:generate mockgen -source=payslip_service.go -destination=mock/payslip_service_mock.go -package=mock
type Service interface {
	// Generate produces one PENDING payslip per active employment for
	// the period. Employees already covered for the period are skipped,
	// so replays and concurrent runs converge on the same final state.
	Generate(ctx context.Context, month, year int) ([]PaySlipResponse, error)

	GetByPeriod(ctx context.Context, month, year int) ([]PaySlipResponse, error)
	GetByEmployeeEmail(ctx context.Context, email string) ([]PaySlipResponse, error)
	GetByEmployeeAndPeriod(ctx context.Context, email string, month, year int) (PaySlipResponse, error)

	ApproveOne(ctx context.Context, id string) (PaySlipResponse, error)
	ApproveAll(ctx context.Context, month, year int) ([]PaySlipResponse, error)
}

type service struct {
	db          *gorm.DB
	repo        Repository
	employments employment.Repository
	employees   employee.Repository
	rules       deduction.Service
	outbox      kafka.OutboxRepository
	rdb         *redis.Client
	group       singleflight.Group
	logger      *zap.Logger
}

func NewService(
	db *gorm.DB,
	repo Repository,
	employmentRepo employment.Repository,
	employeeRepo employee.Repository,
	rules deduction.Service,
	outboxRepo kafka.OutboxRepository,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("payslip.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payslip.service")
	}
	return &service{
		db:          db,
		repo:        repo,
		employments: employmentRepo,
		employees:   employeeRepo,
		rules:       rules,
		outbox:      outboxRepo,
		rdb:         rdb,
		logger:      l,
	}
}

func (s *service) Generate(ctx context.Context, month, year int) ([]PaySlipResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("generate payslips requested",
		zap.String("request_id", rid),
		zap.Int("month", month),
		zap.Int("year", year),
	)

	if err := s.rules.EnsureDefaults(ctx); err != nil {
		s.logger.Error("generate payslips bootstrap rules failed", zap.Error(err))
		return nil, err
	}

	empls, err := s.employments.FindActive(ctx)
	if err != nil {
		s.logger.Error("generate payslips load employments failed", zap.Error(err))
		return nil, err
	}
	if len(empls) == 0 {
		s.logger.Warn("generate payslips no active employments",
			zap.Int("month", month),
			zap.Int("year", year),
		)
		return []PaySlipResponse{}, nil
	}

	// The snapshot both freezes the percentages for the whole run and
	// rejects the run before any write when a required rule is missing.
	rules, err := s.rules.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	var created []PaySlip
	err = s.db.Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		for _, empl := range empls {
			exists, err := qtx.ExistsForPeriod(ctx, empl.EmployeeID.String(), month, year)
			if err != nil {
				return err
			}
			if exists {
				s.logger.Warn("generate payslips skipping existing",
					zap.String("employee_id", empl.EmployeeID.String()),
					zap.Int("month", month),
					zap.Int("year", year),
				)
				continue
			}

			slip := buildPaySlip(empl, rules, month, year)
			if err := qtx.Create(ctx, &slip); err != nil {
				// A concurrent run inserted the same period between our
				// existence check and this insert; their row wins.
				if isDuplicatePeriod(err) {
					s.logger.Warn("generate payslips lost insert race",
						zap.String("employee_id", empl.EmployeeID.String()),
					)
					continue
				}
				s.logger.Error("generate payslips persist failed",
					zap.String("employee_id", empl.EmployeeID.String()),
					zap.Error(err),
				)
				return err
			}
			created = append(created, slip)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidatePeriod(ctx, month, year)

	s.logger.Info("generate payslips success",
		zap.String("request_id", rid),
		zap.Int("month", month),
		zap.Int("year", year),
		zap.Int("generated", len(created)),
		zap.Int("skipped", len(empls)-len(created)),
	)
	return mapToListResponse(created), nil
}

func (s *service) GetByPeriod(ctx context.Context, month, year int) ([]PaySlipResponse, error) {
	key := periodCacheKey(month, year)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, key).Result(); err == nil {
			var resp []PaySlipResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				return resp, nil
			}
		}
	}

	// Collapse a stampede of identical period reads into one query
	v, err, _ := s.group.Do(key, func() (any, error) {
		slips, err := s.repo.FindByPeriod(ctx, month, year)
		if err != nil {
			return nil, err
		}
		return mapToListResponse(slips), nil
	})
	if err != nil {
		s.logger.Error("get payslips by period failed",
			zap.Int("month", month),
			zap.Int("year", year),
			zap.Error(err),
		)
		return nil, err
	}

	resp := v.([]PaySlipResponse)

	if s.rdb != nil {
		if payload, err := json.Marshal(resp); err == nil {
			s.rdb.Set(ctx, key, payload, periodCacheTTL)
		}
	}

	return resp, nil
}

func (s *service) GetByEmployeeEmail(ctx context.Context, email string) ([]PaySlipResponse, error) {
	empl, err := s.employees.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, paysliperrors.EmployeeNotFound(email)
		}
		return nil, err
	}

	slips, err := s.repo.FindByEmployeeID(ctx, empl.ID.String())
	if err != nil {
		s.logger.Error("get payslips by employee failed",
			zap.String("employee_email", email),
			zap.Error(err),
		)
		return nil, err
	}

	return mapToListResponse(slips), nil
}

func (s *service) GetByEmployeeAndPeriod(ctx context.Context, email string, month, year int) (PaySlipResponse, error) {
	empl, err := s.employees.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PaySlipResponse{}, paysliperrors.EmployeeNotFound(email)
		}
		return PaySlipResponse{}, err
	}

	slip, err := s.repo.FindByEmployeeAndPeriod(ctx, empl.ID.String(), month, year)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PaySlipResponse{}, paysliperrors.NotFoundForPeriod(email, month, year)
		}
		return PaySlipResponse{}, err
	}

	return mapToResponse(*slip), nil
}

func (s *service) ApproveOne(ctx context.Context, id string) (PaySlipResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("approve payslip requested",
		zap.String("request_id", rid),
		zap.String("payslip_id", id),
	)

	var approved PaySlip
	err := s.db.Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		slip, err := qtx.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return paysliperrors.NotFoundByID(id)
			}
			return err
		}

		// Approving a paid slip is a no-op, not an error
		if slip.Status == StatusPaid {
			approved = *slip
			return nil
		}

		slip.Status = StatusPaid
		if err := qtx.Update(ctx, slip); err != nil {
			s.logger.Error("approve payslip persist failed",
				zap.String("payslip_id", id),
				zap.Error(err),
			)
			return err
		}

		if err := s.recordApproval(ctx, tx, rid, *slip); err != nil {
			return err
		}

		approved = *slip
		return nil
	})
	if err != nil {
		return PaySlipResponse{}, err
	}

	s.invalidatePeriod(ctx, approved.Month, approved.Year)

	s.logger.Info("approve payslip success",
		zap.String("request_id", rid),
		zap.String("payslip_id", id),
	)
	return mapToResponse(approved), nil
}

func (s *service) ApproveAll(ctx context.Context, month, year int) ([]PaySlipResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("approve all payslips requested",
		zap.String("request_id", rid),
		zap.Int("month", month),
		zap.Int("year", year),
	)

	var slips []PaySlip
	err := s.db.Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		var err error
		slips, err = qtx.FindByPeriod(ctx, month, year)
		if err != nil {
			return err
		}

		for i := range slips {
			if slips[i].Status == StatusPaid {
				continue
			}

			slips[i].Status = StatusPaid
			if err := qtx.Update(ctx, &slips[i]); err != nil {
				s.logger.Error("approve all persist failed",
					zap.String("payslip_id", slips[i].ID.String()),
					zap.Error(err),
				)
				return err
			}

			if err := s.recordApproval(ctx, tx, rid, slips[i]); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidatePeriod(ctx, month, year)

	s.logger.Info("approve all payslips success",
		zap.String("request_id", rid),
		zap.Int("month", month),
		zap.Int("year", year),
		zap.Int("count", len(slips)),
	)
	return mapToListResponse(slips), nil
}

// recordApproval stages the approval event in the outbox inside the
// approving transaction; the producer worker publishes it later.
func (s *service) recordApproval(ctx context.Context, tx *gorm.DB, rid string, slip PaySlip) error {
	if s.outbox == nil {
		return nil
	}

	event := events.PaySlipApprovedEvent{
		EventType:  "payslip_approved",
		RequestID:  rid,
		PaySlipID:  slip.ID.String(),
		EmployeeID: slip.EmployeeID.String(),
		Month:      slip.Month,
		Year:       slip.Year,
		NetSalary:  slip.NetSalary,
		OccurredAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "payslip",
		AggregateID:   slip.ID.String(),
		EventType:     event.EventType,
		Topic:         events.PaySlipApprovedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("approve payslip outbox persist failed",
			zap.String("payslip_id", slip.ID.String()),
			zap.Error(err),
		)
		return err
	}

	return nil
}

func (s *service) invalidatePeriod(ctx context.Context, month, year int) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, periodCacheKey(month, year)).Err(); err != nil {
		s.logger.Warn("period cache invalidation failed",
			zap.Int("month", month),
			zap.Int("year", year),
			zap.Error(err),
		)
	}
}

func periodCacheKey(month, year int) string {
	return fmt.Sprintf("payslips:period:%d:%d", month, year)
}

// buildPaySlip applies the rule snapshot to one employment. Every
// percentage is taken on the raw base salary; additions never feed
// into the deduction base.
func buildPaySlip(empl employment.Employment, rules deduction.RuleSet, month, year int) PaySlip {
	base := empl.BaseSalary

	housing := base * rules.Percent("Housing") / 100
	transport := base * rules.Percent("Transport") / 100
	gross := base + housing + transport

	tax := base * rules.Percent("EmployeeTax") / 100
	pension := base * rules.Percent("Pension") / 100
	medical := base * rules.Percent("MedicalInsurance") / 100
	other := base * rules.Percent("Others") / 100

	return PaySlip{
		ID:                     uuid.New(),
		EmployeeID:             empl.EmployeeID,
		Employee:               empl.Employee,
		HousingAmount:          housing,
		TransportAmount:        transport,
		EmployeeTaxAmount:      tax,
		PensionAmount:          pension,
		MedicalInsuranceAmount: medical,
		OtherTaxAmount:         other,
		GrossSalary:            gross,
		NetSalary:              gross - (tax + pension + medical + other),
		Month:                  month,
		Year:                   year,
		Status:                 StatusPending,
	}
}

func mapToResponse(slip PaySlip) PaySlipResponse {
	resp := PaySlipResponse{
		ID:                     slip.ID.String(),
		HousingAmount:          slip.HousingAmount,
		TransportAmount:        slip.TransportAmount,
		EmployeeTaxAmount:      slip.EmployeeTaxAmount,
		PensionAmount:          slip.PensionAmount,
		MedicalInsuranceAmount: slip.MedicalInsuranceAmount,
		OtherTaxAmount:         slip.OtherTaxAmount,
		GrossSalary:            slip.GrossSalary,
		NetSalary:              slip.NetSalary,
		Month:                  slip.Month,
		Year:                   slip.Year,
		Status:                 string(slip.Status),
	}
	if slip.Employee != nil {
		resp.EmployeeEmail = slip.Employee.Email
		resp.EmployeeName = slip.Employee.FullName()
	}
	return resp
}

func mapToListResponse(slips []PaySlip) []PaySlipResponse {
	resp := make([]PaySlipResponse, len(slips))
	for i, s := range slips {
		resp[i] = mapToResponse(s)
	}
	return resp
}
