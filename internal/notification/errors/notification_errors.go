package notificationerrors

import (
	"fmt"
	"go-payroll/internal/shared/apperror"
	"net/http"
)

func EmployeeNotFound(email string) *apperror.AppError {
	return apperror.New(
		apperror.CodeNotFound,
		fmt.Sprintf("Employee not found with email: %s", email),
		http.StatusNotFound,
	)
}
