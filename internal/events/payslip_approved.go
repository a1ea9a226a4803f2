package events

import "time"

const PaySlipApprovedTopic = "payroll.payslip.approved.v1"

type PaySlipApprovedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	PaySlipID  string    `json:"payslip_id"`
	EmployeeID string    `json:"employee_id"`
	Month      int       `json:"month"`
	Year       int       `json:"year"`
	NetSalary  float64   `json:"net_salary"`
	OccurredAt time.Time `json:"occurred_at"`
}
