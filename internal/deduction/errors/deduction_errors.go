package deductionerrors

import (
	"fmt"
	"go-payroll/internal/shared/apperror"
	"net/http"
)

var ErrDeductionNotFound = apperror.New(
	apperror.CodeNotFound,
	"Deduction not found",
	http.StatusNotFound,
)

func NotFoundByCode(code string) *apperror.AppError {
	return apperror.New(
		apperror.CodeNotFound,
		fmt.Sprintf("Deduction not found with code: %s", code),
		http.StatusNotFound,
	)
}

func NotFoundByName(name string) *apperror.AppError {
	return apperror.New(
		apperror.CodeNotFound,
		fmt.Sprintf("Deduction not found with name: %s", name),
		http.StatusNotFound,
	)
}

func NameTaken(name string) *apperror.AppError {
	return apperror.New(
		apperror.CodeConflict,
		fmt.Sprintf("Deduction already exists with name: %s", name),
		http.StatusConflict,
	)
}

// MissingRule is the generation precondition failure: a required rule
// is absent from the store.
func MissingRule(name string) *apperror.AppError {
	return apperror.New(
		apperror.CodeInvalidState,
		fmt.Sprintf("Required deduction not found: %s", name),
		http.StatusConflict,
	)
}
