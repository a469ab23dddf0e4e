package models

import (
	"time"
)

// MaintenanceRecord represents one service event logged against a vehicle.
type MaintenanceRecord struct {
	ID              string     `json:"id" bson:"id"`
	CreatedAt       time.Time  `json:"created_at" bson:"created_at"` // date of entry, not service date
	Mileage         int        `json:"mileage" bson:"mileage"`       // odometer at service, in miles
	ServiceType     string     `json:"service_type" bson:"service_type"`
	ProductUsed     string     `json:"product_used,omitempty" bson:"product_used,omitempty"`
	Notes           string     `json:"notes,omitempty" bson:"notes,omitempty"`
	ReminderDate    *time.Time `json:"reminder_date,omitempty" bson:"reminder_date,omitempty"`
	MileageInterval *int       `json:"mileage_interval,omitempty" bson:"mileage_interval,omitempty"` // every N miles
}

// HasMileageReminder reports whether the record carries an "every N miles" reminder.
func (r *MaintenanceRecord) HasMileageReminder() bool {
	return r.MileageInterval != nil && *r.MileageInterval > 0
}

// NextDueMileage is the service mileage plus the reminder interval. It is
// only meaningful when HasMileageReminder is true.
func (r *MaintenanceRecord) NextDueMileage() int {
	if !r.HasMileageReminder() {
		return 0
	}
	return r.Mileage + *r.MileageInterval
}
