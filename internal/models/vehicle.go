package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vehicle represents a vehicle kept in the garage along with its service history.
type Vehicle struct {
	ID                 primitive.ObjectID        `bson:"_id,omitempty" json:"id"`
	VIN                string                    `bson:"vin" json:"vin"`
	Year               string                    `bson:"year" json:"year"`
	Make               string                    `bson:"make" json:"make"`
	Model              string                    `bson:"model" json:"model"`
	CurrentMileage     int                       `bson:"current_mileage" json:"current_mileage"`
	MaintenanceRecords []MaintenanceRecord       `bson:"maintenance_records" json:"maintenance_records"`
	Reminders          map[string]ReminderStatus `bson:"reminders,omitempty" json:"reminders,omitempty"` // record id -> status
	CreatedAt          time.Time                 `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time                 `bson:"updated_at" json:"updated_at"`
}

// DisplayName returns the "year make model" label shown in the garage.
func (v *Vehicle) DisplayName() string {
	return v.Year + " " + v.Make + " " + v.Model
}

// FindRecord returns the index of the record with the given id, or -1.
func (v *Vehicle) FindRecord(recordID string) int {
	for i := range v.MaintenanceRecords {
		if v.MaintenanceRecords[i].ID == recordID {
			return i
		}
	}
	return -1
}
