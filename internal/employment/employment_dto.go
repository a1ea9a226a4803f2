package employment

type CreateEmploymentRequest struct {
	EmployeeEmail string  `json:"employee_email" binding:"required,email"`
	Department    string  `json:"department" binding:"required"`
	Position      string  `json:"position" binding:"required"`
	BaseSalary    float64 `json:"base_salary" binding:"required,gt=0"`
	JoiningDate   string  `json:"joining_date" binding:"required"`
}

type UpdateEmploymentRequest struct {
	Department  string  `json:"department" binding:"required"`
	Position    string  `json:"position" binding:"required"`
	BaseSalary  float64 `json:"base_salary" binding:"required,gt=0"`
	JoiningDate string  `json:"joining_date" binding:"required"`
}

type EmploymentResponse struct {
	ID            string  `json:"id"`
	Code          string  `json:"code"`
	EmployeeEmail string  `json:"employee_email"`
	EmployeeName  string  `json:"employee_name"`
	Department    string  `json:"department"`
	Position      string  `json:"position"`
	BaseSalary    float64 `json:"base_salary"`
	JoiningDate   string  `json:"joining_date"`
	Status        string  `json:"status"`
}
