package notification

type MessageResponse struct {
	ID            string `json:"id"`
	EmployeeEmail string `json:"employee_email,omitempty"`
	EmployeeName  string `json:"employee_name,omitempty"`
	Content       string `json:"content"`
	Month         int    `json:"month"`
	Year          int    `json:"year"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
}

// DispatchReport summarizes one delivery sweep over pending messages.
type DispatchReport struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}
