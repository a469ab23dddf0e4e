package garage

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/garage-logbook/internal/capture"
	"github.com/ukydev/garage-logbook/internal/db"
	"github.com/ukydev/garage-logbook/internal/models"
	"github.com/ukydev/garage-logbook/internal/notify"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// memVehicles is an in-memory VehicleCollection. Values are copied in and out
// so the service cannot mutate stored state without UpdateVehicle. Ids match
// in any hex case, as they do against Mongo.
type memVehicles struct {
	mu       sync.Mutex
	vehicles map[string]models.Vehicle
	order    []string
}

func newMemVehicles() *memVehicles {
	return &memVehicles{vehicles: make(map[string]models.Vehicle)}
}

func cloneVehicle(v models.Vehicle) models.Vehicle {
	out := v
	out.MaintenanceRecords = append([]models.MaintenanceRecord{}, v.MaintenanceRecords...)
	if v.Reminders != nil {
		out.Reminders = make(map[string]models.ReminderStatus, len(v.Reminders))
		for k, s := range v.Reminders {
			out.Reminders[k] = s
		}
	}
	return out
}

func (m *memVehicles) InsertVehicle(_ context.Context, v models.Vehicle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := v.ID.Hex()
	m.vehicles[id] = cloneVehicle(v)
	m.order = append(m.order, id)
	return nil
}

func (m *memVehicles) FindVehicles(_ context.Context, _ interface{}, _ ...*options.FindOptions) (db.VehicleCursor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Vehicle
	for _, id := range m.order {
		if v, ok := m.vehicles[id]; ok {
			out = append(out, cloneVehicle(v))
		}
	}
	return &memCursor{vehicles: out}, nil
}

func (m *memVehicles) FindVehicleByID(_ context.Context, id string) (*models.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vehicles[strings.ToLower(id)]
	if !ok {
		return nil, db.ErrNotFound
	}
	c := cloneVehicle(v)
	return &c, nil
}

func (m *memVehicles) UpdateVehicle(_ context.Context, id string, v models.Vehicle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id = strings.ToLower(id)
	if _, ok := m.vehicles[id]; !ok {
		return db.ErrNotFound
	}
	m.vehicles[id] = cloneVehicle(v)
	return nil
}

func (m *memVehicles) DeleteVehicle(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id = strings.ToLower(id)
	if _, ok := m.vehicles[id]; !ok {
		return db.ErrNotFound
	}
	delete(m.vehicles, id)
	return nil
}

func (m *memVehicles) stored(t *testing.T, id string) models.Vehicle {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vehicles[id]
	require.True(t, ok, "vehicle %s not stored", id)
	return cloneVehicle(v)
}

type memCursor struct {
	vehicles []models.Vehicle
}

func (c *memCursor) All(_ context.Context, out interface{}) error {
	dst, ok := out.(*[]models.Vehicle)
	if !ok {
		return fmt.Errorf("unexpected cursor target %T", out)
	}
	*dst = c.vehicles
	return nil
}

func (c *memCursor) Close(context.Context) error { return nil }

// MockOwnerCollection is a mock implementation of db.OwnerCollection.
type MockOwnerCollection struct {
	mock.Mock
}

func (m *MockOwnerCollection) FindOwner(ctx context.Context) (*models.Owner, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Owner), args.Error(1)
}

func (m *MockOwnerCollection) InsertOwner(ctx context.Context, owner models.Owner) error {
	return m.Called(ctx, owner).Error(0)
}

func (m *MockOwnerCollection) UpdateGarageName(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func (m *MockOwnerCollection) UpdateLastLogin(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type fakeScheduler struct {
	mu      sync.Mutex
	now     time.Time
	pending map[string]notify.Reminder
}

func newFakeScheduler(now time.Time) *fakeScheduler {
	return &fakeScheduler{now: now, pending: make(map[string]notify.Reminder)}
}

func (f *fakeScheduler) Schedule(r notify.Reminder) error {
	if !r.At.After(f.now) {
		return fmt.Errorf("schedule %s: %w", r.ID, notify.ErrNotInFuture)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending[r.ID] = r
	return nil
}

func (f *fakeScheduler) Cancel(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.pending, id)
}

func (f *fakeScheduler) get(id string) (notify.Reminder, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.pending[id]
	return r, ok
}

type publishedBatch struct {
	vehicleID string
	alerts    []models.Alert
}

type recordingPublisher struct {
	mu      sync.Mutex
	batches []publishedBatch
}

func (p *recordingPublisher) PublishAlerts(_ context.Context, vehicleID string, alerts []models.Alert) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.batches = append(p.batches, publishedBatch{vehicleID: vehicleID, alerts: alerts})
	return nil
}

func (p *recordingPublisher) last() publishedBatch {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.batches[len(p.batches)-1]
}

var testNow = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc       *Service
	vehicles  *memVehicles
	owners    *MockOwnerCollection
	scheduler *fakeScheduler
	publisher *recordingPublisher
}

func newFixture() *fixture {
	f := &fixture{
		vehicles:  newMemVehicles(),
		owners:    new(MockOwnerCollection),
		scheduler: newFakeScheduler(testNow),
		publisher: &recordingPublisher{},
	}
	f.svc = NewService(f.vehicles, f.owners, capture.NewMockScanner(), f.scheduler, f.publisher)
	f.svc.now = func() time.Time { return testNow }
	return f
}

func (f *fixture) addVehicle(t *testing.T) string {
	t.Helper()
	v, err := f.svc.AddVehicle(context.Background(), VehicleInput{
		VIN: "1hgcm82633a123456", Year: "2023", Make: "Honda", Model: "Accord", CurrentMileage: "48000",
	})
	require.NoError(t, err)
	return v.ID.Hex()
}

func (f *fixture) addRecord(t *testing.T, vehicleID string, in RecordInput) *RecordResult {
	t.Helper()
	res, err := f.svc.AddRecord(context.Background(), vehicleID, in)
	require.NoError(t, err)
	return res
}

func TestAddVehicle(t *testing.T) {
	f := newFixture()
	id := f.addVehicle(t)

	v := f.vehicles.stored(t, id)
	assert.Equal(t, "1HGCM82633A123456", v.VIN)
	assert.Equal(t, "2023 Honda Accord", v.DisplayName())
	assert.Equal(t, 48000, v.CurrentMileage)
	assert.Empty(t, v.MaintenanceRecords)
}

func TestAddVehicle_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   VehicleInput
	}{
		{"missing vin", VehicleInput{Year: "2023", Make: "Honda", Model: "Accord", CurrentMileage: "1"}},
		{"missing model", VehicleInput{VIN: "X", Year: "2023", Make: "Honda", CurrentMileage: "1"}},
		{"missing mileage", VehicleInput{VIN: "X", Year: "2023", Make: "Honda", Model: "Accord"}},
		{"negative mileage", VehicleInput{VIN: "X", Year: "2023", Make: "Honda", Model: "Accord", CurrentMileage: "-5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.svc.AddVehicle(context.Background(), tt.in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestListVehicles(t *testing.T) {
	f := newFixture()
	vehicles, err := f.svc.ListVehicles(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, vehicles)
	assert.Empty(t, vehicles)

	first := f.addVehicle(t)
	second := f.addVehicle(t)
	vehicles, err = f.svc.ListVehicles(context.Background())
	require.NoError(t, err)
	require.Len(t, vehicles, 2)
	assert.Equal(t, first, vehicles[0].ID.Hex())
	assert.Equal(t, second, vehicles[1].ID.Hex())
}

func TestAddRecord_EvaluatesPriorHistory(t *testing.T) {
	f := newFixture()
	id := f.addVehicle(t)

	oil := f.addRecord(t, id, RecordInput{Mileage: "50000", ServiceType: "Oil Change", MileageInterval: "5000"})
	assert.Empty(t, oil.Alerts)
	assert.NotNil(t, oil.Alerts)
	assert.NotEmpty(t, oil.Record.ID)

	res := f.addRecord(t, id, RecordInput{Mileage: "54300", ServiceType: "Tire Rotation"})
	require.Len(t, res.Alerts, 1)
	assert.Equal(t, models.Alert{
		RecordID:    oil.Record.ID,
		ServiceType: "Oil Change",
		Severity:    models.SeverityDueSoon,
		Miles:       700,
		NextDue:     55000,
	}, res.Alerts[0])

	res = f.addRecord(t, id, RecordInput{Mileage: "55000", ServiceType: "Air Filter"})
	require.Len(t, res.Alerts, 1)
	assert.Equal(t, models.SeverityOverdue, res.Alerts[0].Severity)
	assert.Equal(t, 0, res.Alerts[0].Miles)

	v := f.vehicles.stored(t, id)
	assert.Len(t, v.MaintenanceRecords, 3)
	assert.Equal(t, 55000, v.CurrentMileage)
	assert.Equal(t, 55000, res.Vehicle.CurrentMileage)

	last := f.publisher.last()
	assert.Equal(t, id, last.vehicleID)
	assert.Equal(t, res.Alerts, last.alerts)
}

func TestAddRecord_NewRecordDoesNotAlertOnItself(t *testing.T) {
	f := newFixture()
	id := f.addVehicle(t)

	// Interval shorter than the due-soon window: the record would alert
	// against its own mileage if it were evaluated after insertion.
	res := f.addRecord(t, id, RecordInput{Mileage: "50000", ServiceType: "Oil Change", MileageInterval: "500"})
	assert.Empty(t, res.Alerts)
}

func TestAddRecord_Validation(t *testing.T) {
	f := newFixture()
	id := f.addVehicle(t)

	tests := []struct {
		name string
		in   RecordInput
	}{
		{"missing mileage", RecordInput{ServiceType: "Oil Change"}},
		{"non numeric mileage", RecordInput{Mileage: "12k", ServiceType: "Oil Change"}},
		{"missing service", RecordInput{Mileage: "100"}},
		{"zero interval", RecordInput{Mileage: "100", ServiceType: "Oil Change", MileageInterval: "0"}},
		{"bad date", RecordInput{Mileage: "100", ServiceType: "Oil Change", ReminderDate: "03/10/2024"}},
		{"mileage past odometer range", RecordInput{Mileage: "9223372036854775797", ServiceType: "Oil Change", MileageInterval: "5000"}},
		{"interval past odometer range", RecordInput{Mileage: "100", ServiceType: "Oil Change", MileageInterval: "9223372036854775807"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.AddRecord(context.Background(), id, tt.in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	assert.Empty(t, f.vehicles.stored(t, id).MaintenanceRecords)
}

func TestAddRecord_UnknownVehicle(t *testing.T) {
	f := newFixture()
	_, err := f.svc.AddRecord(context.Background(), "missing", RecordInput{Mileage: "1", ServiceType: "Oil Change"})
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestAddRecord_SchedulesFutureReminderDate(t *testing.T) {
	f := newFixture()
	id := f.addVehicle(t)

	future := f.addRecord(t, id, RecordInput{Mileage: "50000", ServiceType: "Coolant Flush", ReminderDate: "2024-06-10"})
	r, ok := f.scheduler.get(future.Record.ID)
	require.True(t, ok)
	assert.Equal(t, notify.ReminderTitle, r.Title)
	assert.Equal(t, "Time for Coolant Flush on your 2023 Honda Accord", r.Body)
	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), r.At)

	past := f.addRecord(t, id, RecordInput{Mileage: "50100", ServiceType: "Spark Plugs", ReminderDate: "2024-01-01"})
	_, ok = f.scheduler.get(past.Record.ID)
	assert.False(t, ok)
	require.NotNil(t, past.Record.ReminderDate)
}

func TestDismissAlert_IsPermanentUntilEdit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.addVehicle(t)

	oil := f.addRecord(t, id, RecordInput{Mileage: "50000", ServiceType: "Oil Change", MileageInterval: "5000"})
	res := f.addRecord(t, id, RecordInput{Mileage: "55000", ServiceType: "Car Wash"})
	require.Len(t, res.Alerts, 1)

	remaining, err := f.svc.DismissAlert(ctx, id, oil.Record.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
	assert.Equal(t, models.ReminderDismissed, f.vehicles.stored(t, id).Reminders[oil.Record.ID])

	// further past due, then a lower reading: still silent
	assert.Empty(t, f.addRecord(t, id, RecordInput{Mileage: "56000", ServiceType: "Car Wash"}).Alerts)
	assert.Empty(t, f.addRecord(t, id, RecordInput{Mileage: "54500", ServiceType: "Car Wash"}).Alerts)

	// dismissing again is a no-op
	_, err = f.svc.DismissAlert(ctx, id, oil.Record.ID)
	require.NoError(t, err)

	interval := "6000"
	_, err = f.svc.EditRecord(ctx, id, oil.Record.ID, RecordEdit{MileageInterval: &interval})
	require.NoError(t, err)
	_, dismissed := f.vehicles.stored(t, id).Reminders[oil.Record.ID]
	assert.False(t, dismissed)

	res = f.addRecord(t, id, RecordInput{Mileage: "56000", ServiceType: "Car Wash"})
	require.Len(t, res.Alerts, 1)
	assert.Equal(t, oil.Record.ID, res.Alerts[0].RecordID)
	assert.Equal(t, models.SeverityOverdue, res.Alerts[0].Severity)
	assert.Equal(t, 56000, res.Alerts[0].NextDue)
}

func TestDismissAlert_PerRecord(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.addVehicle(t)

	oil := f.addRecord(t, id, RecordInput{Mileage: "10000", ServiceType: "Oil Change", MileageInterval: "3000"})
	tires := f.addRecord(t, id, RecordInput{Mileage: "10500", ServiceType: "Tire Rotation", MileageInterval: "3000"})
	res := f.addRecord(t, id, RecordInput{Mileage: "13000", ServiceType: "Car Wash"})
	require.Len(t, res.Alerts, 2)

	pending, err := f.svc.PendingAlerts(ctx, id)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	remaining, err := f.svc.DismissAlert(ctx, id, oil.Record.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, tires.Record.ID, remaining[0].RecordID)
	assert.Equal(t, remaining, f.publisher.last().alerts)

	// the other record keeps alerting on later readings
	res = f.addRecord(t, id, RecordInput{Mileage: "13200", ServiceType: "Car Wash"})
	require.Len(t, res.Alerts, 1)
	assert.Equal(t, tires.Record.ID, res.Alerts[0].RecordID)
}

func TestDismissAlert_Unknown(t *testing.T) {
	f := newFixture()
	id := f.addVehicle(t)

	_, err := f.svc.DismissAlert(context.Background(), id, "nope")
	assert.ErrorIs(t, err, ErrRecordNotFound)

	_, err = f.svc.DismissAlert(context.Background(), "missing", "nope")
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestPendingAlerts_EmptyWhenNoBatch(t *testing.T) {
	f := newFixture()
	id := f.addVehicle(t)

	alerts, err := f.svc.PendingAlerts(context.Background(), id)
	require.NoError(t, err)
	assert.NotNil(t, alerts)
	assert.Empty(t, alerts)

	_, err = f.svc.PendingAlerts(context.Background(), "missing")
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestEditRecord(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.addVehicle(t)
	rec := f.addRecord(t, id, RecordInput{Mileage: "20000", ServiceType: "Oil Change", ReminderDate: "2024-05-01"})

	notes, product, date := "synthetic", "Mobil 1", "2024-07-01"
	edited, err := f.svc.EditRecord(ctx, id, rec.Record.ID, RecordEdit{Notes: &notes, ProductUsed: &product, ReminderDate: &date})
	require.NoError(t, err)
	assert.Equal(t, "synthetic", edited.Notes)
	assert.Equal(t, "Mobil 1", edited.ProductUsed)

	r, ok := f.scheduler.get(rec.Record.ID)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), r.At)

	none := ""
	_, err = f.svc.EditRecord(ctx, id, rec.Record.ID, RecordEdit{ReminderDate: &none})
	require.NoError(t, err)
	_, ok = f.scheduler.get(rec.Record.ID)
	assert.False(t, ok)

	empty := " "
	_, err = f.svc.EditRecord(ctx, id, rec.Record.ID, RecordEdit{ServiceType: &empty})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.EditRecord(ctx, id, "nope", RecordEdit{Notes: &notes})
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestEditRecord_NonReminderFieldsKeepDismissal(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.addVehicle(t)

	oil := f.addRecord(t, id, RecordInput{Mileage: "50000", ServiceType: "Oil Change", MileageInterval: "5000"})
	f.addRecord(t, id, RecordInput{Mileage: "55000", ServiceType: "Car Wash"})
	_, err := f.svc.DismissAlert(ctx, id, oil.Record.ID)
	require.NoError(t, err)

	notes := "changed my mind"
	same := "5000"
	_, err = f.svc.EditRecord(ctx, id, oil.Record.ID, RecordEdit{Notes: &notes, MileageInterval: &same})
	require.NoError(t, err)
	assert.Equal(t, models.ReminderDismissed, f.vehicles.stored(t, id).Reminders[oil.Record.ID])
}

func TestDeleteRecord(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.addVehicle(t)

	oil := f.addRecord(t, id, RecordInput{Mileage: "50000", ServiceType: "Oil Change", MileageInterval: "5000", ReminderDate: "2024-09-01"})
	f.addRecord(t, id, RecordInput{Mileage: "55000", ServiceType: "Car Wash"})
	_, err := f.svc.DismissAlert(ctx, id, oil.Record.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteRecord(ctx, id, oil.Record.ID))
	v := f.vehicles.stored(t, id)
	assert.Len(t, v.MaintenanceRecords, 1)
	assert.NotContains(t, v.Reminders, oil.Record.ID)
	_, ok := f.scheduler.get(oil.Record.ID)
	assert.False(t, ok)

	assert.ErrorIs(t, f.svc.DeleteRecord(ctx, id, oil.Record.ID), ErrRecordNotFound)
}

func TestDeleteVehicle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.addVehicle(t)
	rec := f.addRecord(t, id, RecordInput{Mileage: "100", ServiceType: "Brake Fluid", ReminderDate: "2024-12-01"})

	require.NoError(t, f.svc.DeleteVehicle(ctx, id))
	_, ok := f.scheduler.get(rec.Record.ID)
	assert.False(t, ok)

	_, err := f.svc.GetVehicle(ctx, id)
	assert.ErrorIs(t, err, db.ErrNotFound)
	assert.ErrorIs(t, f.svc.DeleteVehicle(ctx, id), db.ErrNotFound)
}

func TestRestoreReminders(t *testing.T) {
	f := newFixture()
	id := f.addVehicle(t)
	future := f.addRecord(t, id, RecordInput{Mileage: "100", ServiceType: "Brake Fluid", ReminderDate: "2024-12-01"})
	f.addRecord(t, id, RecordInput{Mileage: "200", ServiceType: "Spark Plugs", ReminderDate: "2023-12-01"})
	f.addRecord(t, id, RecordInput{Mileage: "300", ServiceType: "Car Wash"})

	// a fresh process has nothing pending
	f.scheduler = newFakeScheduler(testNow)
	f.svc.scheduler = f.scheduler

	n, err := f.svc.RestoreReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, ok := f.scheduler.get(future.Record.ID)
	assert.True(t, ok)
}

func TestAddRecord_ConcurrentWritesAreSerialized(t *testing.T) {
	f := newFixture()
	id := f.addVehicle(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.AddRecord(context.Background(), id, RecordInput{
				Mileage:     fmt.Sprintf("%d", 1000+i),
				ServiceType: "Car Wash",
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Len(t, f.vehicles.stored(t, id).MaintenanceRecords, 20)
}

func TestVehicleID_CaseInsensitive(t *testing.T) {
	f := newFixture()
	id := f.addVehicle(t)
	upper := strings.ToUpper(id)
	require.NotEqual(t, id, upper)

	f.addRecord(t, upper, RecordInput{Mileage: "50000", ServiceType: "Oil Change", MileageInterval: "5000"})
	res := f.addRecord(t, upper, RecordInput{Mileage: "54300", ServiceType: "Tire Rotation"})
	require.Len(t, res.Alerts, 1)
	assert.Equal(t, id, f.publisher.last().vehicleID)

	alerts, err := f.svc.PendingAlerts(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, alerts, 1)

	remaining, err := f.svc.DismissAlert(context.Background(), id, res.Alerts[0].RecordID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
	alerts, err = f.svc.PendingAlerts(context.Background(), upper)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestAddRecord_MixedCaseWritesAreSerialized(t *testing.T) {
	f := newFixture()
	id := f.addVehicle(t)
	spellings := []string{id, strings.ToUpper(id)}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.AddRecord(context.Background(), spellings[i%2], RecordInput{
				Mileage:     fmt.Sprintf("%d", 1000+i),
				ServiceType: "Car Wash",
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Len(t, f.vehicles.stored(t, id).MaintenanceRecords, 20)
}

func TestGarageName(t *testing.T) {
	ctx := context.Background()

	f := newFixture()
	f.owners.On("FindOwner", ctx).Return(nil, db.ErrNotFound).Once()
	name, err := f.svc.Garage(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultGarageName, name)

	f.owners.On("FindOwner", ctx).Return(&models.Owner{GarageName: "Bay 2"}, nil).Once()
	name, err = f.svc.Garage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bay 2", name)

	f.owners.On("UpdateGarageName", ctx, "Weekend Shop").Return(nil).Once()
	name, err = f.svc.RenameGarage(ctx, "  Weekend Shop ")
	require.NoError(t, err)
	assert.Equal(t, "Weekend Shop", name)

	_, err = f.svc.RenameGarage(ctx, "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	f.owners.AssertExpectations(t)
}

func TestScan(t *testing.T) {
	f := newFixture()
	scan, err := f.svc.ScanVIN(context.Background())
	require.NoError(t, err)
	assert.Equal(t, capture.MockVIN, scan.VIN)

	miles, err := f.svc.ScanOdometer(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, miles, 10000)

	f.svc.scanner = &capture.MockScanner{Unavailable: true}
	_, err = f.svc.ScanVIN(context.Background())
	assert.ErrorIs(t, err, capture.ErrCameraUnavailable)
}
