// Package notify delivers time-based service reminders and mileage alert
// batches to the owner.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/garage-logbook/internal/models"
)

// ReminderTitle heads every time-based reminder.
const ReminderTitle = "Vehicle Maintenance Reminder"

// Reminder is a message due at a wall-clock time. ID is the record id, so a
// record has at most one pending reminder.
type Reminder struct {
	ID        string    `json:"id"`
	VehicleID string    `json:"vehicle_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	At        time.Time `json:"at"`
}

// NewReminder builds the reminder for a record on a vehicle.
func NewReminder(vehicle *models.Vehicle, record *models.MaintenanceRecord, at time.Time) Reminder {
	return Reminder{
		ID:        record.ID,
		VehicleID: vehicle.ID.Hex(),
		Title:     ReminderTitle,
		Body:      fmt.Sprintf("Time for %s on your %s", record.ServiceType, vehicle.DisplayName()),
		At:        at,
	}
}

// Notifier delivers a reminder that has come due.
type Notifier interface {
	Notify(ctx context.Context, r Reminder) error
}

// AlertPublisher pushes a vehicle's mileage alert batch out to listeners.
type AlertPublisher interface {
	PublishAlerts(ctx context.Context, vehicleID string, alerts []models.Alert) error
}

// LogNotifier writes reminders and alerts to the log.
type LogNotifier struct {
	Logger log.FieldLogger
}

func (n LogNotifier) logger() log.FieldLogger {
	if n.Logger == nil {
		return log.StandardLogger()
	}
	return n.Logger
}

// Notify logs the reminder.
func (n LogNotifier) Notify(_ context.Context, r Reminder) error {
	n.logger().WithFields(log.Fields{
		"vehicle_id": r.VehicleID,
		"record_id":  r.ID,
		"due":        r.At,
	}).Info(r.Title + ": " + r.Body)
	return nil
}

// PublishAlerts logs each alert of the batch.
func (n LogNotifier) PublishAlerts(_ context.Context, vehicleID string, alerts []models.Alert) error {
	for _, a := range alerts {
		n.logger().WithFields(log.Fields{
			"vehicle_id": vehicleID,
			"record_id":  a.RecordID,
			"severity":   a.Severity,
			"miles":      a.Miles,
		}).Info("Mileage alert: " + a.ServiceType)
	}
	return nil
}

// Fanout hands reminders and alerts to every configured sink. A failing sink
// does not stop the others; the errors are joined.
type Fanout struct {
	Notifiers  []Notifier
	Publishers []AlertPublisher
}

// Notify delivers r to every notifier.
func (f *Fanout) Notify(ctx context.Context, r Reminder) error {
	var errs []error
	for _, n := range f.Notifiers {
		if err := n.Notify(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PublishAlerts delivers the batch to every publisher.
func (f *Fanout) PublishAlerts(ctx context.Context, vehicleID string, alerts []models.Alert) error {
	var errs []error
	for _, p := range f.Publishers {
		if err := p.PublishAlerts(ctx, vehicleID, alerts); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
