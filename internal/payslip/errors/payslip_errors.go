package paysliperrors

import (
	"fmt"
	"go-payroll/internal/shared/apperror"
	"net/http"
)

var ErrPaySlipNotFound = apperror.New(
	apperror.CodeNotFound,
	"Pay slip not found",
	http.StatusNotFound,
)

func NotFoundByID(id string) *apperror.AppError {
	return apperror.New(
		apperror.CodeNotFound,
		fmt.Sprintf("Pay slip not found with id: %s", id),
		http.StatusNotFound,
	)
}

func NotFoundForPeriod(email string, month, year int) *apperror.AppError {
	return apperror.New(
		apperror.CodeNotFound,
		fmt.Sprintf("Pay slip not found for employee: %s, month: %d, year: %d", email, month, year),
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
