package models

// Severity of a mileage alert.
type Severity string

const (
	SeverityDueSoon Severity = "due-soon"
	SeverityOverdue Severity = "overdue"
)

// Alert is a derived, never-persisted mileage reminder for one record.
type Alert struct {
	RecordID    string   `json:"record_id"`
	ServiceType string   `json:"service_type"`
	Severity    Severity `json:"severity"`
	Miles       int      `json:"miles"` // remaining for due-soon, past due for overdue
	NextDue     int      `json:"next_due"`
}
