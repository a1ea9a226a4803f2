package events

import "time"

const EmploymentCreatedTopic = "payroll.employment.lifecycle.v1"

type EmploymentCreatedEvent struct {
	EventType      string    `json:"event_type"`
	RequestID      string    `json:"request_id,omitempty"`
	EmploymentCode string    `json:"employment_code"`
	EmployeeID     string    `json:"employee_id"`
	OccurredAt     time.Time `json:"occurred_at"`
}
