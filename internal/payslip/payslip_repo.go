package payslip

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=payslip_repo.go -destination=mock/payslip_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, slip *PaySlip) error
	ExistsForPeriod(ctx context.Context, employeeID string, month, year int) (bool, error)
	FindByID(ctx context.Context, id string) (*PaySlip, error)
	FindByPeriod(ctx context.Context, month, year int) ([]PaySlip, error)
	FindByEmployeeID(ctx context.Context, employeeID string) ([]PaySlip, error)
	FindByEmployeeAndPeriod(ctx context.Context, employeeID string, month, year int) (*PaySlip, error)
	Update(ctx context.Context, slip *PaySlip) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, slip *PaySlip) error {
	return r.db.WithContext(ctx).Create(slip).Error
}

func (r *repository) ExistsForPeriod(ctx context.Context, employeeID string, month, year int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&PaySlip{}).
		Where("employee_id = ?", employeeID).
		Where("month = ?", month).
		Where("year = ?", year).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*PaySlip, error) {
	var slip PaySlip
	err := r.db.WithContext(ctx).
		Preload("Employee").
		First(&slip, "id = ?", id).Error
	return &slip, err
}

func (r *repository) FindByPeriod(ctx context.Context, month, year int) ([]PaySlip, error) {
	var slips []PaySlip
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Where("month = ?", month).
		Where("year = ?", year).
		Order("created_at ASC").
		Find(&slips).Error
	return slips, err
}

func (r *repository) FindByEmployeeID(ctx context.Context, employeeID string) ([]PaySlip, error) {
	var slips []PaySlip
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Where("employee_id = ?", employeeID).
		Order("year ASC, month ASC").
		Find(&slips).Error
	return slips, err
}

func (r *repository) FindByEmployeeAndPeriod(ctx context.Context, employeeID string, month, year int) (*PaySlip, error) {
	var slip PaySlip
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Where("employee_id = ?", employeeID).
		Where("month = ?", month).
		Where("year = ?", year).
		First(&slip).Error
	return &slip, err
}

func (r *repository) Update(ctx context.Context, slip *PaySlip) error {
	return r.db.WithContext(ctx).Save(slip).Error
}
