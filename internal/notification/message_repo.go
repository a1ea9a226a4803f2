package notification

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=message_repo.go -destination=mock/message_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, msg *Message) error
	FindPending(ctx context.Context) ([]Message, error)
	FindByEmployeeID(ctx context.Context, employeeID string) ([]Message, error)
	Update(ctx context.Context, msg *Message) error
	FindPaidPaySlips(ctx context.Context, month, year int) ([]PaidPaySlip, error)
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

func (r *repository) Create(ctx context.Context, msg *Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *repository) FindPending(ctx context.Context) ([]Message, error) {
	var msgs []Message
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Where("status = ?", StatusPending).
		Order("created_at ASC").
		Find(&msgs).Error
	return msgs, err
}

func (r *repository) FindByEmployeeID(ctx context.Context, employeeID string) ([]Message, error) {
	var msgs []Message
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Where("employee_id = ?", employeeID).
		Order("created_at ASC").
		Find(&msgs).Error
	return msgs, err
}

func (r *repository) Update(ctx context.Context, msg *Message) error {
	return r.db.WithContext(ctx).Save(msg).Error
}

func (r *repository) FindPaidPaySlips(ctx context.Context, month, year int) ([]PaidPaySlip, error) {
	var slips []PaidPaySlip
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Where("month = ?", month).
		Where("year = ?", year).
		Where("status = ?", "PAID").
		Order("created_at ASC").
		Find(&slips).Error
	return slips, err
}
