package employmenterrors

import (
	"fmt"
	"go-payroll/internal/shared/apperror"
	"net/http"
)

var ErrEmploymentNotFound = apperror.New(
	apperror.CodeNotFound,
	"Employment record not found",
	http.StatusNotFound,
)

func NotFoundByCode(code string) *apperror.AppError {
	return apperror.New(
		apperror.CodeNotFound,
		fmt.Sprintf("Employment record not found with code: %s", code),
		http.StatusNotFound,
	)
}

func NotFoundByEmail(email string) *apperror.AppError {
	return apperror.New(
		apperror.CodeNotFound,
		fmt.Sprintf("Employment record not found for employee with email: %s", email),
		http.StatusNotFound,
	)
}

func EmployeeNotFound(email string) *apperror.AppError {
	return apperror.New(
		apperror.CodeNotFound,
		fmt.Sprintf("Employee not found with email: %s", email),
		http.StatusNotFound,
	)
}

// AlreadyEmployed guards the one-employment-per-employee invariant.
func AlreadyEmployed(email string) *apperror.AppError {
	return apperror.New(
		apperror.CodeConflict,
		fmt.Sprintf("Employment record already exists for employee with email: %s", email),
		http.StatusConflict,
	)
}
