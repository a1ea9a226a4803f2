package employment

import (
	"time"

	"go-payroll/internal/employee"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusDisabled Status = "DISABLED"
)

type Employment struct {
	ID         uuid.UUID          `gorm:"type:uuid;primaryKey"`
	Code       string             `gorm:"uniqueIndex:uq_employment_code;not null"`
	EmployeeID uuid.UUID          `gorm:"type:uuid;uniqueIndex:uq_employment_employee;not null"`
	Employee   *employee.Employee `gorm:"foreignKey:EmployeeID;references:ID"`

	Department string    `gorm:"not null"`
	Position   string    `gorm:"not null"`
	BaseSalary float64   `gorm:"not null"`
	JoiningDate time.Time `gorm:"type:date;not null"`

	// Contracts are disabled, never deleted
	Status Status `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
