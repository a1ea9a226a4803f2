package deduction

import (
	"errors"
	"strings"

	deductionerrors "go-payroll/internal/deduction/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error, name string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return deductionerrors.ErrDeductionNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" && pgErr.ConstraintName == "uq_deduction_name" {
			return deductionerrors.NameTaken(name)
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_deduction_name") {
		return deductionerrors.NameTaken(name)
	}

	return err
}
