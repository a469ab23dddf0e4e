package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/garage-logbook/internal/config"
	"github.com/ukydev/garage-logbook/internal/db"
	"github.com/ukydev/garage-logbook/internal/garage"
	"github.com/ukydev/garage-logbook/internal/models"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type stubVehicles struct{}

func (stubVehicles) InsertVehicle(context.Context, models.Vehicle) error { return nil }
func (stubVehicles) FindVehicles(context.Context, interface{}, ...*options.FindOptions) (db.VehicleCursor, error) {
	return nil, db.ErrNilCollection
}
func (stubVehicles) FindVehicleByID(_ context.Context, id string) (*models.Vehicle, error) {
	if id != "v1" {
		return nil, db.ErrNotFound
	}
	interval := 5000
	return &models.Vehicle{
		Year: "2023", Make: "Honda", Model: "Accord",
		MaintenanceRecords: []models.MaintenanceRecord{
			{ID: "oil", Mileage: 50000, ServiceType: "Oil Change", MileageInterval: &interval},
		},
	}, nil
}
func (stubVehicles) UpdateVehicle(context.Context, string, models.Vehicle) error { return nil }
func (stubVehicles) DeleteVehicle(context.Context, string) error                 { return db.ErrNotFound }

type stubOwners struct {
	owner *models.Owner
}

func (s *stubOwners) FindOwner(context.Context) (*models.Owner, error) {
	if s.owner == nil {
		return nil, db.ErrNotFound
	}
	return s.owner, nil
}
func (s *stubOwners) InsertOwner(_ context.Context, o models.Owner) error {
	s.owner = &o
	return nil
}
func (s *stubOwners) UpdateGarageName(context.Context, string) error { return nil }
func (s *stubOwners) UpdateLastLogin(context.Context, string) error  { return nil }

type noopToken struct{ mqtt.Token }

func (noopToken) WaitTimeout(time.Duration) bool { return true }
func (noopToken) Error() error                   { return nil }

type countingBroker struct{ published int }

func (b *countingBroker) Publish(string, byte, bool, interface{}) mqtt.Token {
	b.published++
	return noopToken{}
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:     "test-secret",
		JWTExpiry:     time.Hour,
		RateLimit:     100,
		MQTTTopic:     "garage/reminders",
		ReminderSweep: time.Minute,
	}
}

func TestNewApp_SetupLoginAndAuthenticatedRoute(t *testing.T) {
	a, err := newApp(testConfig(), stubVehicles{}, &stubOwners{}, nil)
	require.NoError(t, err)
	srv := httptest.NewServer(a.router)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/service-types")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	body, _ := json.Marshal(models.LoginRequest{Passphrase: "correct horse"})
	resp, err = http.Post(srv.URL+"/api/auth/setup", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	var login models.LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&login))
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/vehicles/abc", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNewApp_RejectsEmptySecret(t *testing.T) {
	cfg := testConfig()
	cfg.JWTSecret = ""
	_, err := newApp(cfg, stubVehicles{}, &stubOwners{}, nil)
	assert.Error(t, err)
}

func TestNewApp_WithBroker(t *testing.T) {
	broker := &countingBroker{}
	a, err := newApp(testConfig(), stubVehicles{}, &stubOwners{}, broker)
	require.NoError(t, err)

	res, err := a.garage.AddRecord(context.Background(), "v1", garage.RecordInput{Mileage: "55000", ServiceType: "Car Wash"})
	require.NoError(t, err)
	require.Len(t, res.Alerts, 1)
	assert.Equal(t, 1, broker.published)
}
