package deduction

import (
	"time"

	"github.com/google/uuid"
)

type Deduction struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code       string    `gorm:"uniqueIndex:uq_deduction_code;not null"`
	Name       string    `gorm:"uniqueIndex:uq_deduction_name;not null"`
	Percentage float64   `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RequiredNames lists the rules payslip generation cannot run without,
// in the order they are checked and bootstrapped.
var RequiredNames = []string{
	"EmployeeTax",
	"Pension",
	"MedicalInsurance",
	"Others",
	"Housing",
	"Transport",
}

// DefaultPercentages is the versioned bootstrap contract for the
// required rules. EnsureDefaults never overwrites an existing rule.
var DefaultPercentages = map[string]float64{
	"EmployeeTax":      30,
	"Pension":          6,
	"MedicalInsurance": 5,
	"Others":           5,
	"Housing":          14,
	"Transport":        14,
}

// RuleSet is an immutable name-keyed snapshot of the rule table, taken
// once per generation run so the six lookups can never tear.
type RuleSet map[string]Deduction

func (rs RuleSet) Percent(name string) float64 {
	return rs[name].Percentage
}
