package notification

import (
	"time"

	"go-payroll/internal/employee"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending Status = "PENDING"
	StatusSent    Status = "SENT"
)

// Message is the durable ledger of salary notifications. A row is
// written before any delivery attempt; delivery flips it to SENT.
type Message struct {
	ID         uuid.UUID          `gorm:"type:uuid;primaryKey"`
	EmployeeID uuid.UUID          `gorm:"type:uuid;not null;index"`
	Employee   *employee.Employee `gorm:"foreignKey:EmployeeID;references:ID"`

	Content string `gorm:"type:varchar(1000);not null"`
	Month   int    `gorm:"not null"`
	Year    int    `gorm:"not null"`

	Status Status `gorm:"type:varchar(20);not null;default:'PENDING';index"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Message) TableName() string {
	return "messages"
}

// PaidPaySlip is a read-only projection over the payslip table with
// just the columns message generation needs.
type PaidPaySlip struct {
	ID         uuid.UUID
	EmployeeID uuid.UUID
	Employee   *employee.Employee `gorm:"foreignKey:EmployeeID;references:ID"`
	NetSalary  float64
	Month      int
	Year       int
}

func (PaidPaySlip) TableName() string {
	return "pay_slips"
}
