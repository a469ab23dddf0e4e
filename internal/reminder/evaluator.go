// Package reminder evaluates mileage-based service reminders against a new
// odometer reading and tracks which reminders the owner has dismissed.
package reminder

import (
	"github.com/ukydev/garage-logbook/internal/models"
)

// DueSoonWindow is how many miles ahead of the next-due mileage a record
// starts alerting.
const DueSoonWindow = 800

// StatusLookup resolves the reminder status of a record. Records with no
// entry are armed.
type StatusLookup interface {
	Status(recordID string) models.ReminderStatus
}

// Evaluate returns the alerts raised by newMileage across records, in record
// order. Only armed records with a mileage interval take part.
func Evaluate(records []models.MaintenanceRecord, statuses StatusLookup, newMileage int) []models.Alert {
	var alerts []models.Alert
	for i := range records {
		r := &records[i]
		if !r.HasMileageReminder() {
			continue
		}
		if statuses != nil && statuses.Status(r.ID) == models.ReminderDismissed {
			continue
		}
		if alert, ok := check(r, newMileage); ok {
			alerts = append(alerts, alert)
		}
	}
	return alerts
}

func check(r *models.MaintenanceRecord, newMileage int) (models.Alert, bool) {
	nextDue := r.NextDueMileage()
	delta := nextDue - newMileage
	alert := models.Alert{
		RecordID:    r.ID,
		ServiceType: r.ServiceType,
		NextDue:     nextDue,
	}
	switch {
	case delta > DueSoonWindow:
		return models.Alert{}, false
	case delta > 0:
		alert.Severity = models.SeverityDueSoon
		alert.Miles = delta
	default:
		// reaching the due mileage exactly counts as overdue
		alert.Severity = models.SeverityOverdue
		alert.Miles = -delta
	}
	return alert, true
}
