package payslip

type GeneratePaySlipsRequest struct {
	Month int `json:"month" binding:"required,min=1,max=12"`
	Year  int `json:"year" binding:"required,min=2000"`
}

type PaySlipResponse struct {
	ID                     string  `json:"id"`
	EmployeeEmail          string  `json:"employee_email,omitempty"`
	EmployeeName           string  `json:"employee_name,omitempty"`
	HousingAmount          float64 `json:"housing_amount"`
	TransportAmount        float64 `json:"transport_amount"`
	EmployeeTaxAmount      float64 `json:"employee_tax_amount"`
	PensionAmount          float64 `json:"pension_amount"`
	MedicalInsuranceAmount float64 `json:"medical_insurance_amount"`
	OtherTaxAmount         float64 `json:"other_tax_amount"`
	GrossSalary            float64 `json:"gross_salary"`
	NetSalary              float64 `json:"net_salary"`
	Month                  int     `json:"month"`
	Year                   int     `json:"year"`
	Status                 string  `json:"status"`
}
