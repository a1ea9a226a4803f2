package payslip

import (
	"time"

	"go-payroll/internal/employee"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending Status = "PENDING"
	StatusPaid    Status = "PAID"
)

type PaySlip struct {
	ID         uuid.UUID          `gorm:"type:uuid;primaryKey"`
	EmployeeID uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:uq_payslip_employee_period"`
	Employee   *employee.Employee `gorm:"foreignKey:EmployeeID;references:ID"`

	// Additions and deductions are all computed from the raw base
	// salary; they never compound on each other.
	HousingAmount          float64 `gorm:"not null"`
	TransportAmount        float64 `gorm:"not null"`
	EmployeeTaxAmount      float64 `gorm:"not null"`
	PensionAmount          float64 `gorm:"not null"`
	MedicalInsuranceAmount float64 `gorm:"not null"`
	OtherTaxAmount         float64 `gorm:"not null"`
	GrossSalary            float64 `gorm:"not null"`
	NetSalary              float64 `gorm:"not null"`

	// The unique index over (employee, month, year) is the idempotency
	// key for generation; the store, not the application, enforces it.
	Month int `gorm:"not null;uniqueIndex:uq_payslip_employee_period"`
	Year  int `gorm:"not null;uniqueIndex:uq_payslip_employee_period"`

	Status Status `gorm:"type:varchar(20);not null;default:'PENDING';index"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
