package models

import "time"

// ReminderStatus is the per-record state of a mileage reminder. It lives next
// to the records on the vehicle, never inside a record.
type ReminderStatus string

const (
	ReminderArmed     ReminderStatus = "armed"
	ReminderDismissed ReminderStatus = "dismissed"
)

// IsValidReminderStatus checks if a status is one of the known values
func IsValidReminderStatus(s ReminderStatus) bool {
	switch s {
	case ReminderArmed, ReminderDismissed:
		return true
	default:
		return false
	}
}

// ReminderTransition records a single status change for audit logging.
type ReminderTransition struct {
	RecordID string         `json:"record_id"`
	From     ReminderStatus `json:"from"`
	To       ReminderStatus `json:"to"`
	At       time.Time      `json:"at"`
}
