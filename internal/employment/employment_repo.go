package employment

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=employment_repo.go -destination=mock/employment_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, empl *Employment) error
	FindAll(ctx context.Context) ([]Employment, error)
	// FindActive returns ACTIVE employments with their employee
	// preloaded, ordered by code so generation output is stable.
	FindActive(ctx context.Context) ([]Employment, error)
	FindByCode(ctx context.Context, code string) (*Employment, error)
	FindByEmployeeID(ctx context.Context, employeeID string) (*Employment, error)
	ExistsByEmployeeID(ctx context.Context, employeeID string) (bool, error)
	Update(ctx context.Context, empl *Employment) error
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

func (r *repository) Create(ctx context.Context, empl *Employment) error {
	return r.db.WithContext(ctx).Create(empl).Error
}

func (r *repository) FindAll(ctx context.Context) ([]Employment, error) {
	var empls []Employment
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Order("code ASC").
		Find(&empls).Error
	return empls, err
}

func (r *repository) FindActive(ctx context.Context) ([]Employment, error) {
	var empls []Employment
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Where("status = ?", StatusActive).
		Order("code ASC").
		Find(&empls).Error
	return empls, err
}

func (r *repository) FindByCode(ctx context.Context, code string) (*Employment, error) {
	var empl Employment
	err := r.db.WithContext(ctx).
		Preload("Employee").
		First(&empl, "code = ?", code).Error
	return &empl, err
}

func (r *repository) FindByEmployeeID(ctx context.Context, employeeID string) (*Employment, error) {
	var empl Employment
	err := r.db.WithContext(ctx).
		Preload("Employee").
		First(&empl, "employee_id = ?", employeeID).Error
	return &empl, err
}

func (r *repository) ExistsByEmployeeID(ctx context.Context, employeeID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Employment{}).
		Where("employee_id = ?", employeeID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) Update(ctx context.Context, empl *Employment) error {
	return r.db.WithContext(ctx).Save(empl).Error
}
