package payslip

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// isDuplicatePeriod reports whether err is the unique violation raised
// when two generation runs race to insert the same (employee, month,
// year) row. The loser treats it as an ordinary skip.
func isDuplicatePeriod(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" &&
			strings.Contains(pgErr.ConstraintName, "uq_payslip_employee_period")
	}
	return false
}
