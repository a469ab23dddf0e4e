// Package garage hosts the logbook: vehicles, their maintenance records and
// the mileage reminders raised when new odometer readings are logged.
package garage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/garage-logbook/internal/capture"
	"github.com/ukydev/garage-logbook/internal/db"
	"github.com/ukydev/garage-logbook/internal/models"
	"github.com/ukydev/garage-logbook/internal/notify"
	"github.com/ukydev/garage-logbook/internal/reminder"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrRecordNotFound = errors.New("maintenance record not found")

// ReminderScheduler queues time-based reminders.
type ReminderScheduler interface {
	Schedule(r notify.Reminder) error
	Cancel(id string)
}

// VehicleInput is the body of an add-vehicle request. Values arrive as
// strings from the form and are validated here.
type VehicleInput struct {
	VIN            string `json:"vin"`
	Year           string `json:"year"`
	Make           string `json:"make"`
	Model          string `json:"model"`
	CurrentMileage string `json:"current_mileage"`
}

// RecordInput is the body of an add-record request.
type RecordInput struct {
	Mileage         string `json:"mileage"`
	ServiceType     string `json:"service_type"`
	ProductUsed     string `json:"product_used"`
	Notes           string `json:"notes"`
	ReminderDate    string `json:"reminder_date"`
	MileageInterval string `json:"mileage_interval"`
}

// RecordEdit changes the fields that are set. An empty ReminderDate or
// MileageInterval clears that reminder.
type RecordEdit struct {
	Mileage         *string `json:"mileage,omitempty"`
	ServiceType     *string `json:"service_type,omitempty"`
	ProductUsed     *string `json:"product_used,omitempty"`
	Notes           *string `json:"notes,omitempty"`
	ReminderDate    *string `json:"reminder_date,omitempty"`
	MileageInterval *string `json:"mileage_interval,omitempty"`
}

// RecordResult is returned after a record is committed, with the alerts the
// new odometer reading raised against the earlier history.
type RecordResult struct {
	Vehicle models.Vehicle           `json:"vehicle"`
	Record  models.MaintenanceRecord `json:"record"`
	Alerts  []models.Alert           `json:"alerts"`
}

// Service implements the logbook operations on top of the vehicle store.
type Service struct {
	vehicles  db.VehicleCollection
	owners    db.OwnerCollection
	scanner   capture.Scanner
	scheduler ReminderScheduler
	alerts    notify.AlertPublisher
	now       func() time.Time

	locks *vehicleLocks

	mu      sync.Mutex
	batches map[string]*reminder.Batch
}

// NewService wires the logbook. scheduler and alerts may be nil.
func NewService(vehicles db.VehicleCollection, owners db.OwnerCollection, scanner capture.Scanner, scheduler ReminderScheduler, alerts notify.AlertPublisher) *Service {
	return &Service{
		vehicles:  vehicles,
		owners:    owners,
		scanner:   scanner,
		scheduler: scheduler,
		alerts:    alerts,
		now:       time.Now,
		locks:     newVehicleLocks(),
		batches:   make(map[string]*reminder.Batch),
	}
}

// Garage returns the garage name, the default one until the owner renames it.
func (s *Service) Garage(ctx context.Context) (string, error) {
	owner, err := s.owners.FindOwner(ctx)
	if errors.Is(err, db.ErrNotFound) {
		return models.DefaultGarageName, nil
	}
	if err != nil {
		return "", fmt.Errorf("find owner: %w", err)
	}
	if owner.GarageName == "" {
		return models.DefaultGarageName, nil
	}
	return owner.GarageName, nil
}

// RenameGarage sets the garage name.
func (s *Service) RenameGarage(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("garage name is required")
	}
	if err := s.owners.UpdateGarageName(ctx, name); err != nil {
		return "", fmt.Errorf("rename garage: %w", err)
	}
	return name, nil
}

// AddVehicle validates the input and stores a new vehicle with an empty
// service history.
func (s *Service) AddVehicle(ctx context.Context, in VehicleInput) (*models.Vehicle, error) {
	fields := map[string]string{"vin": in.VIN, "year": in.Year, "make": in.Make, "model": in.Model}
	for _, name := range []string{"vin", "year", "make", "model"} {
		if strings.TrimSpace(fields[name]) == "" {
			return nil, invalid("%s is required", name)
		}
	}
	mileage, err := ParseMileage("current_mileage", in.CurrentMileage)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	v := models.Vehicle{
		ID:                 primitive.NewObjectID(),
		VIN:                strings.ToUpper(strings.TrimSpace(in.VIN)),
		Year:               strings.TrimSpace(in.Year),
		Make:               strings.TrimSpace(in.Make),
		Model:              strings.TrimSpace(in.Model),
		CurrentMileage:     mileage,
		MaintenanceRecords: []models.MaintenanceRecord{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.vehicles.InsertVehicle(ctx, v); err != nil {
		return nil, fmt.Errorf("insert vehicle: %w", err)
	}
	log.WithFields(log.Fields{"vehicle_id": v.ID.Hex(), "vehicle": v.DisplayName()}).Info("Vehicle added")
	return &v, nil
}

// ListVehicles returns every vehicle in the garage, oldest first.
func (s *Service) ListVehicles(ctx context.Context) ([]models.Vehicle, error) {
	cursor, err := s.vehicles.FindVehicles(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find vehicles: %w", err)
	}
	defer cursor.Close(ctx)

	var vehicles []models.Vehicle
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, fmt.Errorf("decode vehicles: %w", err)
	}
	if vehicles == nil {
		vehicles = []models.Vehicle{}
	}
	return vehicles, nil
}

// GetVehicle returns one vehicle with its full history.
func (s *Service) GetVehicle(ctx context.Context, vehicleID string) (*models.Vehicle, error) {
	vehicleID = vehicleKey(vehicleID)
	return s.vehicles.FindVehicleByID(ctx, vehicleID)
}

// DeleteVehicle removes a vehicle, its pending alerts and its time reminders.
func (s *Service) DeleteVehicle(ctx context.Context, vehicleID string) error {
	vehicleID = vehicleKey(vehicleID)
	unlock := s.locks.Lock(vehicleID)
	defer unlock()

	v, err := s.vehicles.FindVehicleByID(ctx, vehicleID)
	if err != nil {
		return err
	}
	if err := s.vehicles.DeleteVehicle(ctx, vehicleID); err != nil {
		return fmt.Errorf("delete vehicle: %w", err)
	}
	for i := range v.MaintenanceRecords {
		s.cancelReminder(v.MaintenanceRecords[i].ID)
	}
	s.mu.Lock()
	delete(s.batches, vehicleID)
	s.mu.Unlock()
	log.WithField("vehicle_id", vehicleID).Info("Vehicle deleted")
	return nil
}

// AddRecord commits a maintenance record. The new mileage is evaluated against
// the history as it stood before this record, the record is appended, and the
// resulting alerts replace the vehicle's pending batch.
func (s *Service) AddRecord(ctx context.Context, vehicleID string, in RecordInput) (*RecordResult, error) {
	vehicleID = vehicleKey(vehicleID)
	mileage, err := ParseMileage("mileage", in.Mileage)
	if err != nil {
		return nil, err
	}
	serviceType := strings.TrimSpace(in.ServiceType)
	if serviceType == "" {
		return nil, invalid("service_type is required")
	}
	interval, err := ParseInterval(in.MileageInterval)
	if err != nil {
		return nil, err
	}
	date, err := ParseReminderDate(in.ReminderDate)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(vehicleID)
	defer unlock()

	v, err := s.vehicles.FindVehicleByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	alerts := reminder.Evaluate(v.MaintenanceRecords, reminder.Statuses(v.Reminders), mileage)
	if alerts == nil {
		alerts = []models.Alert{}
	}

	record := models.MaintenanceRecord{
		ID:              uuid.NewString(),
		CreatedAt:       s.now().UTC(),
		Mileage:         mileage,
		ServiceType:     serviceType,
		ProductUsed:     strings.TrimSpace(in.ProductUsed),
		Notes:           strings.TrimSpace(in.Notes),
		ReminderDate:    date,
		MileageInterval: interval,
	}
	v.MaintenanceRecords = append(v.MaintenanceRecords, record)
	v.CurrentMileage = mileage
	v.UpdatedAt = s.now().UTC()

	if err := s.vehicles.UpdateVehicle(ctx, vehicleID, *v); err != nil {
		return nil, fmt.Errorf("save record: %w", err)
	}

	s.setBatch(vehicleID, alerts)
	s.publish(ctx, vehicleID, alerts)
	s.scheduleReminder(v, &record)

	log.WithFields(log.Fields{
		"vehicle_id": vehicleID,
		"record_id":  record.ID,
		"mileage":    mileage,
		"alerts":     len(alerts),
	}).Info("Maintenance record added")

	return &RecordResult{Vehicle: *v, Record: record, Alerts: alerts}, nil
}

// EditRecord updates a record in place. Changing its mileage or interval
// re-arms a dismissed mileage reminder.
func (s *Service) EditRecord(ctx context.Context, vehicleID, recordID string, edit RecordEdit) (*models.MaintenanceRecord, error) {
	vehicleID = vehicleKey(vehicleID)
	unlock := s.locks.Lock(vehicleID)
	defer unlock()

	v, err := s.vehicles.FindVehicleByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	idx := v.FindRecord(recordID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, recordID)
	}
	record := v.MaintenanceRecords[idx]

	rearm := false
	if edit.Mileage != nil {
		m, err := ParseMileage("mileage", *edit.Mileage)
		if err != nil {
			return nil, err
		}
		rearm = rearm || m != record.Mileage
		record.Mileage = m
	}
	if edit.MileageInterval != nil {
		interval, err := ParseInterval(*edit.MileageInterval)
		if err != nil {
			return nil, err
		}
		rearm = rearm || !sameInterval(interval, record.MileageInterval)
		record.MileageInterval = interval
	}
	if edit.ServiceType != nil {
		st := strings.TrimSpace(*edit.ServiceType)
		if st == "" {
			return nil, invalid("service_type is required")
		}
		record.ServiceType = st
	}
	if edit.ProductUsed != nil {
		record.ProductUsed = strings.TrimSpace(*edit.ProductUsed)
	}
	if edit.Notes != nil {
		record.Notes = strings.TrimSpace(*edit.Notes)
	}
	dateChanged := false
	if edit.ReminderDate != nil {
		date, err := ParseReminderDate(*edit.ReminderDate)
		if err != nil {
			return nil, err
		}
		record.ReminderDate = date
		dateChanged = true
	}

	v.MaintenanceRecords[idx] = record
	if rearm {
		statuses, tr, err := reminder.Rearm(reminder.Statuses(v.Reminders), recordID)
		if err != nil {
			return nil, err
		}
		v.Reminders = statuses
		logTransition(vehicleID, tr)
	}
	v.UpdatedAt = s.now().UTC()

	if err := s.vehicles.UpdateVehicle(ctx, vehicleID, *v); err != nil {
		return nil, fmt.Errorf("save record: %w", err)
	}

	if rearm {
		// The pending alert was computed from the old values.
		s.removeFromBatch(vehicleID, recordID)
	}
	if dateChanged {
		s.cancelReminder(recordID)
		s.scheduleReminder(v, &record)
	}
	log.WithFields(log.Fields{"vehicle_id": vehicleID, "record_id": recordID}).Info("Maintenance record updated")
	return &record, nil
}

// DeleteRecord removes a record along with its reminder status.
func (s *Service) DeleteRecord(ctx context.Context, vehicleID, recordID string) error {
	vehicleID = vehicleKey(vehicleID)
	unlock := s.locks.Lock(vehicleID)
	defer unlock()

	v, err := s.vehicles.FindVehicleByID(ctx, vehicleID)
	if err != nil {
		return err
	}
	idx := v.FindRecord(recordID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, recordID)
	}
	v.MaintenanceRecords = append(v.MaintenanceRecords[:idx], v.MaintenanceRecords[idx+1:]...)
	v.Reminders = reminder.Forget(reminder.Statuses(v.Reminders), recordID)
	v.UpdatedAt = s.now().UTC()

	if err := s.vehicles.UpdateVehicle(ctx, vehicleID, *v); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	s.removeFromBatch(vehicleID, recordID)
	s.cancelReminder(recordID)
	log.WithFields(log.Fields{"vehicle_id": vehicleID, "record_id": recordID}).Info("Maintenance record deleted")
	return nil
}

// PendingAlerts returns the undismissed alerts from the vehicle's latest
// evaluation.
func (s *Service) PendingAlerts(ctx context.Context, vehicleID string) ([]models.Alert, error) {
	vehicleID = vehicleKey(vehicleID)
	if _, err := s.vehicles.FindVehicleByID(ctx, vehicleID); err != nil {
		return nil, err
	}
	return s.batchAlerts(vehicleID), nil
}

// DismissAlert silences a record's mileage reminder until the record is
// edited and returns what is left of the pending batch.
func (s *Service) DismissAlert(ctx context.Context, vehicleID, recordID string) ([]models.Alert, error) {
	vehicleID = vehicleKey(vehicleID)
	unlock := s.locks.Lock(vehicleID)
	defer unlock()

	v, err := s.vehicles.FindVehicleByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	statuses, tr, err := reminder.Dismiss(v.MaintenanceRecords, reminder.Statuses(v.Reminders), recordID)
	if errors.Is(err, reminder.ErrUnknownRecord) {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, recordID)
	}
	if err != nil {
		return nil, err
	}
	if tr != nil {
		v.Reminders = statuses
		v.UpdatedAt = s.now().UTC()
		if err := s.vehicles.UpdateVehicle(ctx, vehicleID, *v); err != nil {
			return nil, fmt.Errorf("save reminder status: %w", err)
		}
		logTransition(vehicleID, tr)
	}

	s.removeFromBatch(vehicleID, recordID)
	remaining := s.batchAlerts(vehicleID)
	s.publish(ctx, vehicleID, remaining)
	return remaining, nil
}

// ScanVIN reads and decodes a VIN through the capture device.
func (s *Service) ScanVIN(ctx context.Context) (capture.VINScan, error) {
	return s.scanner.ScanVIN(ctx)
}

// ScanOdometer reads the odometer through the capture device.
func (s *Service) ScanOdometer(ctx context.Context) (int, error) {
	return s.scanner.ScanOdometer(ctx)
}

// RestoreReminders reschedules the future reminder dates of every record.
// Pending reminders live in memory, so this runs at startup.
func (s *Service) RestoreReminders(ctx context.Context) (int, error) {
	if s.scheduler == nil {
		return 0, nil
	}
	vehicles, err := s.ListVehicles(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for i := range vehicles {
		v := &vehicles[i]
		for j := range v.MaintenanceRecords {
			if s.scheduleReminder(v, &v.MaintenanceRecords[j]) {
				count++
			}
		}
	}
	log.WithField("count", count).Info("Time reminders restored")
	return count, nil
}

func (s *Service) scheduleReminder(v *models.Vehicle, record *models.MaintenanceRecord) bool {
	if s.scheduler == nil || record.ReminderDate == nil {
		return false
	}
	err := s.scheduler.Schedule(notify.NewReminder(v, record, *record.ReminderDate))
	if errors.Is(err, notify.ErrNotInFuture) {
		log.WithField("record_id", record.ID).Debug("Reminder date already passed, not scheduling")
		return false
	}
	if err != nil {
		log.WithError(err).WithField("record_id", record.ID).Warn("Failed to schedule reminder")
		return false
	}
	return true
}

func (s *Service) cancelReminder(recordID string) {
	if s.scheduler != nil {
		s.scheduler.Cancel(recordID)
	}
}

func (s *Service) publish(ctx context.Context, vehicleID string, alerts []models.Alert) {
	if s.alerts == nil {
		return
	}
	if err := s.alerts.PublishAlerts(ctx, vehicleID, alerts); err != nil {
		log.WithError(err).WithField("vehicle_id", vehicleID).Warn("Failed to publish alerts")
	}
}

func (s *Service) setBatch(vehicleID string, alerts []models.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(alerts) == 0 {
		delete(s.batches, vehicleID)
		return
	}
	s.batches[vehicleID] = reminder.NewBatch(alerts)
}

func (s *Service) removeFromBatch(vehicleID, recordID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.batches[vehicleID]
	if !ok {
		return
	}
	b.Remove(recordID)
	if b.Empty() {
		delete(s.batches, vehicleID)
	}
}

func (s *Service) batchAlerts(vehicleID string) []models.Alert {
	s.mu.Lock()
	b, ok := s.batches[vehicleID]
	s.mu.Unlock()
	if !ok {
		return []models.Alert{}
	}
	return b.Alerts()
}

func logTransition(vehicleID string, tr *models.ReminderTransition) {
	if tr == nil {
		return
	}
	log.WithFields(log.Fields{
		"vehicle_id": vehicleID,
		"record_id":  tr.RecordID,
		"from":       tr.From,
		"to":         tr.To,
		"at":         tr.At,
	}).Info("Reminder status changed")
}

// vehicleKey canonicalizes an ObjectID in any hex case, so every spelling of
// one vehicle shares its lock, alert batch and published id.
func vehicleKey(id string) string {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid.Hex()
	}
	return id
}

func sameInterval(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
