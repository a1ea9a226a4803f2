package payslip_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-payroll/internal/deduction"
	"go-payroll/internal/employee"
	employeeMock "go-payroll/internal/employee/mock"
	"go-payroll/internal/employment"
	employmentMock "go-payroll/internal/employment/mock"
	kafkaMock "go-payroll/internal/messaging/kafka/mock"
	"go-payroll/internal/payslip"
	payslipMock "go-payroll/internal/payslip/mock"
	"go-payroll/internal/shared/apperror"

	deductionerrors "go-payroll/internal/deduction/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type fakeRuleService struct {
	EnsureDefaultsFn func(ctx context.Context) error
	SnapshotFn       func(ctx context.Context) (deduction.RuleSet, error)
}

func (f *fakeRuleService) Create(ctx context.Context, req deduction.DeductionRequest) (deduction.DeductionResponse, error) {
	return deduction.DeductionResponse{}, nil
}
func (f *fakeRuleService) GetAll(ctx context.Context) ([]deduction.DeductionResponse, error) {
	return nil, nil
}
func (f *fakeRuleService) GetByCode(ctx context.Context, code string) (deduction.DeductionResponse, error) {
	return deduction.DeductionResponse{}, nil
}
func (f *fakeRuleService) GetByName(ctx context.Context, name string) (deduction.DeductionResponse, error) {
	return deduction.DeductionResponse{}, nil
}
func (f *fakeRuleService) Update(ctx context.Context, code string, req deduction.DeductionRequest) (deduction.DeductionResponse, error) {
	return deduction.DeductionResponse{}, nil
}
func (f *fakeRuleService) Delete(ctx context.Context, code string) error {
	return nil
}
func (f *fakeRuleService) EnsureDefaults(ctx context.Context) error {
	if f.EnsureDefaultsFn != nil {
		return f.EnsureDefaultsFn(ctx)
	}
	return nil
}
func (f *fakeRuleService) Snapshot(ctx context.Context) (deduction.RuleSet, error) {
	if f.SnapshotFn != nil {
		return f.SnapshotFn(ctx)
	}
	return defaultRules(), nil
}

func defaultRules() deduction.RuleSet {
	rules := make(deduction.RuleSet, len(deduction.RequiredNames))
	for _, name := range deduction.RequiredNames {
		rules[name] = deduction.Deduction{Name: name, Percentage: deduction.DefaultPercentages[name]}
	}
	return rules
}

type serviceDeps struct {
	sqlMock     sqlmock.Sqlmock
	service     payslip.Service
	repo        *payslipMock.MockRepository
	employments *employmentMock.MockRepository
	employees   *employeeMock.MockRepository
	rules       *fakeRuleService
	outbox      *kafkaMock.MockOutboxRepository
	redisMock   redismock.ClientMock
}

func setupServiceTest(t *testing.T, withRedis bool) *serviceDeps {
	t.Helper()

	ctrl := gomock.NewController(t)

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	assert.NoError(t, err)

	repo := payslipMock.NewMockRepository(ctrl)
	employmentRepo := employmentMock.NewMockRepository(ctrl)
	employeeRepo := employeeMock.NewMockRepository(ctrl)
	rules := &fakeRuleService{}
	outboxRepo := kafkaMock.NewMockOutboxRepository(ctrl)

	var rdb *redis.Client
	var redisMock redismock.ClientMock
	if withRedis {
		rdb, redisMock = redismock.NewClientMock()
	}

	svc := payslip.NewService(gdb, repo, employmentRepo, employeeRepo, rules, outboxRepo, rdb)

	return &serviceDeps{
		sqlMock:     sqlMock,
		service:     svc,
		repo:        repo,
		employments: employmentRepo,
		employees:   employeeRepo,
		rules:       rules,
		outbox:      outboxRepo,
		redisMock:   redisMock,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func activeEmployment(baseSalary float64) employment.Employment {
	employeeID := uuid.New()
	return employment.Employment{
		ID:         uuid.New(),
		Code:       "EMP-000001",
		EmployeeID: employeeID,
		Employee: &employee.Employee{
			ID:        employeeID,
			FirstName: "Alice",
			LastName:  "Uwase",
			Email:     "alice@example.com",
		},
		Department: "Finance",
		Position:   "Accountant",
		BaseSalary: baseSalary,
		Status:     employment.StatusActive,
	}
}

func TestPayslipService_Generate_ComputesAmounts(t *testing.T) {
	ctx := context.Background()
	deps := setupServiceTest(t, false)

	defaultsEnsured := false
	deps.rules.EnsureDefaultsFn = func(ctx context.Context) error {
		defaultsEnsured = true
		return nil
	}

	empl := activeEmployment(1_000_000)
	deps.employments.EXPECT().FindActive(ctx).Return([]employment.Employment{empl}, nil)

	expectTx(t, deps.sqlMock, true)
	deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
	deps.repo.EXPECT().ExistsForPeriod(ctx, empl.EmployeeID.String(), 3, 2026).Return(false, nil)
	deps.repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, slip *payslip.PaySlip) error {
			assert.Equal(t, 140_000.0, slip.HousingAmount)
			assert.Equal(t, 140_000.0, slip.TransportAmount)
			assert.Equal(t, 1_280_000.0, slip.GrossSalary)
			assert.Equal(t, 300_000.0, slip.EmployeeTaxAmount)
			assert.Equal(t, 60_000.0, slip.PensionAmount)
			assert.Equal(t, 50_000.0, slip.MedicalInsuranceAmount)
			assert.Equal(t, 50_000.0, slip.OtherTaxAmount)
			assert.Equal(t, 820_000.0, slip.NetSalary)
			assert.Equal(t, payslip.StatusPending, slip.Status)
			return nil
		})

	resp, err := deps.service.Generate(ctx, 3, 2026)

	assert.NoError(t, err)
	assert.True(t, defaultsEnsured)
	assert.Len(t, resp, 1)
	assert.Equal(t, "alice@example.com", resp[0].EmployeeEmail)
	assert.Equal(t, 820_000.0, resp[0].NetSalary)
	assert.Equal(t, string(payslip.StatusPending), resp[0].Status)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestPayslipService_Generate_SkipsCoveredEmployees(t *testing.T) {
	ctx := context.Background()
	deps := setupServiceTest(t, false)

	covered := activeEmployment(500_000)
	fresh := activeEmployment(800_000)
	deps.employments.EXPECT().FindActive(ctx).Return([]employment.Employment{covered, fresh}, nil)

	expectTx(t, deps.sqlMock, true)
	deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
	deps.repo.EXPECT().ExistsForPeriod(ctx, covered.EmployeeID.String(), 3, 2026).Return(true, nil)
	deps.repo.EXPECT().ExistsForPeriod(ctx, fresh.EmployeeID.String(), 3, 2026).Return(false, nil)
	deps.repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, slip *payslip.PaySlip) error {
			assert.Equal(t, fresh.EmployeeID, slip.EmployeeID)
			return nil
		})

	resp, err := deps.service.Generate(ctx, 3, 2026)

	assert.NoError(t, err)
	assert.Len(t, resp, 1)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestPayslipService_Generate_MissingRuleWritesNothing(t *testing.T) {
	ctx := context.Background()
	deps := setupServiceTest(t, false)

	empl := activeEmployment(1_000_000)
	deps.employments.EXPECT().FindActive(ctx).Return([]employment.Employment{empl}, nil)

	deps.rules.SnapshotFn = func(ctx context.Context) (deduction.RuleSet, error) {
		return nil, deductionerrors.MissingRule("EmployeeTax")
	}

	_, err := deps.service.Generate(ctx, 3, 2026)

	var appErr *apperror.AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.CodeInvalidState, appErr.Code)
	assert.Contains(t, appErr.Message, "EmployeeTax")
	// No transaction was opened, so nothing could have been written
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestPayslipService_Generate_LostInsertRace(t *testing.T) {
	ctx := context.Background()
	deps := setupServiceTest(t, false)

	empl := activeEmployment(400_000)
	deps.employments.EXPECT().FindActive(ctx).Return([]employment.Employment{empl}, nil)

	expectTx(t, deps.sqlMock, true)
	deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
	deps.repo.EXPECT().ExistsForPeriod(ctx, empl.EmployeeID.String(), 3, 2026).Return(false, nil)
	deps.repo.EXPECT().Create(ctx, gomock.Any()).Return(&pgconn.PgError{
		Code:           "23505",
		ConstraintName: "uq_payslip_employee_period",
	})

	resp, err := deps.service.Generate(ctx, 3, 2026)

	assert.NoError(t, err)
	assert.Empty(t, resp)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestPayslipService_Generate_NoActiveEmployments(t *testing.T) {
	ctx := context.Background()
	deps := setupServiceTest(t, false)

	deps.employments.EXPECT().FindActive(ctx).Return(nil, nil)

	resp, err := deps.service.Generate(ctx, 3, 2026)

	assert.NoError(t, err)
	assert.Empty(t, resp)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestPayslipService_ApproveOne(t *testing.T) {
	ctx := context.Background()

	t.Run("pending becomes paid and stages event", func(t *testing.T) {
		deps := setupServiceTest(t, false)

		slipID := uuid.New()
		pending := &payslip.PaySlip{
			ID:         slipID,
			EmployeeID: uuid.New(),
			NetSalary:  820_000,
			Month:      3,
			Year:       2026,
			Status:     payslip.StatusPending,
		}

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, slipID.String()).Return(pending, nil)
		deps.repo.EXPECT().Update(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, slip *payslip.PaySlip) error {
				assert.Equal(t, payslip.StatusPaid, slip.Status)
				return nil
			})

		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(ctx, gomock.Any()).Return(nil)

		resp, err := deps.service.ApproveOne(ctx, slipID.String())

		assert.NoError(t, err)
		assert.Equal(t, string(payslip.StatusPaid), resp.Status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("already paid is a no-op", func(t *testing.T) {
		deps := setupServiceTest(t, false)

		slipID := uuid.New()
		paid := &payslip.PaySlip{
			ID:     slipID,
			Month:  3,
			Year:   2026,
			Status: payslip.StatusPaid,
		}

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, slipID.String()).Return(paid, nil)
		// No Update and no outbox expectations

		resp, err := deps.service.ApproveOne(ctx, slipID.String())

		assert.NoError(t, err)
		assert.Equal(t, string(payslip.StatusPaid), resp.Status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupServiceTest(t, false)

		slipID := uuid.New().String()
		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, slipID).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.ApproveOne(ctx, slipID)

		var appErr *apperror.AppError
		assert.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperror.CodeNotFound, appErr.Code)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestPayslipService_ApproveAll(t *testing.T) {
	ctx := context.Background()

	t.Run("approves pending and leaves paid untouched", func(t *testing.T) {
		deps := setupServiceTest(t, false)

		pending := payslip.PaySlip{ID: uuid.New(), EmployeeID: uuid.New(), Month: 3, Year: 2026, Status: payslip.StatusPending}
		paid := payslip.PaySlip{ID: uuid.New(), EmployeeID: uuid.New(), Month: 3, Year: 2026, Status: payslip.StatusPaid}

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByPeriod(ctx, 3, 2026).Return([]payslip.PaySlip{pending, paid}, nil)

		var updated []uuid.UUID
		deps.repo.EXPECT().Update(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, slip *payslip.PaySlip) error {
				assert.Equal(t, payslip.StatusPaid, slip.Status)
				updated = append(updated, slip.ID)
				return nil
			})

		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(ctx, gomock.Any()).Return(nil)

		resp, err := deps.service.ApproveAll(ctx, 3, 2026)

		assert.NoError(t, err)
		assert.Len(t, resp, 2)
		assert.Equal(t, []uuid.UUID{pending.ID}, updated)
		for _, r := range resp {
			assert.Equal(t, string(payslip.StatusPaid), r.Status)
		}
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("empty period", func(t *testing.T) {
		deps := setupServiceTest(t, false)

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByPeriod(ctx, 7, 2026).Return(nil, nil)

		resp, err := deps.service.ApproveAll(ctx, 7, 2026)

		assert.NoError(t, err)
		assert.Empty(t, resp)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestPayslipService_GetByEmployeeAndPeriod_NotFound(t *testing.T) {
	ctx := context.Background()
	deps := setupServiceTest(t, false)

	empl := &employee.Employee{ID: uuid.New(), Email: "bob@example.com"}
	deps.employees.EXPECT().FindByEmail(ctx, "bob@example.com").Return(empl, nil)
	deps.repo.EXPECT().FindByEmployeeAndPeriod(ctx, empl.ID.String(), 3, 2026).
		Return(nil, gorm.ErrRecordNotFound)

	_, err := deps.service.GetByEmployeeAndPeriod(ctx, "bob@example.com", 3, 2026)

	var appErr *apperror.AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.CodeNotFound, appErr.Code)
	assert.Contains(t, appErr.Message, "bob@example.com")
}

func TestPayslipService_GetByPeriod_CachesResult(t *testing.T) {
	ctx := context.Background()
	deps := setupServiceTest(t, true)

	slip := payslip.PaySlip{ID: uuid.New(), EmployeeID: uuid.New(), NetSalary: 820_000, Month: 3, Year: 2026, Status: payslip.StatusPaid}
	deps.repo.EXPECT().FindByPeriod(ctx, 3, 2026).Return([]payslip.PaySlip{slip}, nil)

	expected := []payslip.PaySlipResponse{{
		ID:        slip.ID.String(),
		NetSalary: 820_000,
		Month:     3,
		Year:      2026,
		Status:    string(payslip.StatusPaid),
	}}
	payload, err := json.Marshal(expected)
	assert.NoError(t, err)

	deps.redisMock.ExpectGet("payslips:period:3:2026").RedisNil()
	deps.redisMock.ExpectSet("payslips:period:3:2026", payload, 5*time.Minute).SetVal("OK")

	resp, err := deps.service.GetByPeriod(ctx, 3, 2026)

	assert.NoError(t, err)
	assert.Equal(t, expected, resp)
	assert.NoError(t, deps.redisMock.ExpectationsWereMet())
}
