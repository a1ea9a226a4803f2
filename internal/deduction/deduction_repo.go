package deduction

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=deduction_repo.go -destination=mock/deduction_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, ded *Deduction) error
	FindAll(ctx context.Context) ([]Deduction, error)
	FindByCode(ctx context.Context, code string) (*Deduction, error)
	FindByName(ctx context.Context, name string) (*Deduction, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Update(ctx context.Context, ded *Deduction) error
	Delete(ctx context.Context, code string) error
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

func (r *repository) Create(ctx context.Context, ded *Deduction) error {
	return r.db.WithContext(ctx).Create(ded).Error
}

func (r *repository) FindAll(ctx context.Context) ([]Deduction, error) {
	var deds []Deduction
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&deds).Error
	return deds, err
}

func (r *repository) FindByCode(ctx context.Context, code string) (*Deduction, error) {
	var ded Deduction
	err := r.db.WithContext(ctx).
		First(&ded, "code = ?", code).Error
	return &ded, err
}

func (r *repository) FindByName(ctx context.Context, name string) (*Deduction, error) {
	var ded Deduction
	err := r.db.WithContext(ctx).
		First(&ded, "name = ?", name).Error
	return &ded, err
}

func (r *repository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Deduction{}).
		Where("name = ?", name).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) Update(ctx context.Context, ded *Deduction) error {
	return r.db.WithContext(ctx).Save(ded).Error
}

func (r *repository) Delete(ctx context.Context, code string) error {
	return r.db.WithContext(ctx).
		Delete(&Deduction{}, "code = ?", code).Error
}
