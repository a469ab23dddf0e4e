package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

// Vehicle is the add-vehicle request body.
type Vehicle struct {
	VIN            string `json:"vin"`
	Year           string `json:"year"`
	Make           string `json:"make"`
	Model          string `json:"model"`
	CurrentMileage string `json:"current_mileage"`
}

// Record is the add-record request body.
type Record struct {
	Mileage         string `json:"mileage"`
	ServiceType     string `json:"service_type"`
	ProductUsed     string `json:"product_used,omitempty"`
	MileageInterval string `json:"mileage_interval,omitempty"`
}

// Alert is a mileage alert returned by the server.
type Alert struct {
	RecordID    string `json:"record_id"`
	ServiceType string `json:"service_type"`
	Severity    string `json:"severity"`
	Miles       int    `json:"miles"`
	NextDue     int    `json:"next_due"`
}

// RecordResult is the add-record response.
type RecordResult struct {
	Record struct {
		ID string `json:"id"`
	} `json:"record"`
	Alerts []Alert `json:"alerts"`
}

// service items the driver logs, with their usual intervals in miles
var serviceSchedule = []struct {
	Service  string
	Product  string
	Interval int
}{
	{"Oil Change", "5W-30 synthetic", 5000},
	{"Tire Rotation", "", 7500},
	{"Air Filter", "OEM filter", 15000},
	{"Brake Fluid", "DOT 4", 30000},
	{"Coolant Flush", "", 30000},
	{"Spark Plugs", "Iridium", 60000},
}

// vehicles the driver can register; the VINs decode on the server's mock table
var garageVehicles = []Vehicle{
	{VIN: "1HGCM82633A123456", Year: "2023", Make: "Honda", Model: "Accord"},
	{VIN: "1FTFW1ET5DFC12345", Year: "2022", Make: "Ford", Model: "F-150"},
	{VIN: "1G1YY22G965123456", Year: "2021", Make: "Chevrolet", Model: "Camaro"},
}

var errUnexpectedStatus = errors.New("unexpected status")

// APIClient talks to the logbook API.
type APIClient struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func newAPIClient(baseURL, token string) *APIClient {
	return &APIClient{BaseURL: baseURL, Token: token, HTTP: &http.Client{Timeout: 10 * time.Second}}
}

func (c *APIClient) do(method, path string, body, out interface{}, want int) (int, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return 0, fmt.Errorf("failed to marshal request: %w", err)
		}
	}
	req, err := http.NewRequest(method, c.BaseURL+path, &buf)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return resp.StatusCode, fmt.Errorf("%s %s: %w %d", method, path, errUnexpectedStatus, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// Login sets the garage up on first use and logs in afterwards.
func (c *APIClient) Login(passphrase string) error {
	req := map[string]string{"passphrase": passphrase, "garage_name": "Simulator Garage"}
	var resp struct {
		Token string `json:"token"`
	}
	status, err := c.do(http.MethodPost, "/auth/setup", req, &resp, http.StatusCreated)
	if status == http.StatusConflict {
		_, err = c.do(http.MethodPost, "/auth/login", req, &resp, http.StatusOK)
	}
	if err != nil {
		return err
	}
	c.Token = resp.Token
	return nil
}

// CreateVehicle registers v and returns its id.
func (c *APIClient) CreateVehicle(v Vehicle) (string, error) {
	var created struct {
		ID string `json:"id"`
	}
	if _, err := c.do(http.MethodPost, "/vehicles", v, &created, http.StatusCreated); err != nil {
		return "", fmt.Errorf("failed to create vehicle: %w", err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("invalid vehicle ID in response")
	}
	log.WithFields(log.Fields{
		"vehicle_id": created.ID,
		"make":       v.Make,
		"model":      v.Model,
		"mileage":    v.CurrentMileage,
	}).Info("Created vehicle")
	return created.ID, nil
}

// AddRecord logs a maintenance record and returns the alerts it raised.
func (c *APIClient) AddRecord(vehicleID string, r Record) (*RecordResult, error) {
	var res RecordResult
	if _, err := c.do(http.MethodPost, "/vehicles/"+vehicleID+"/records", r, &res, http.StatusCreated); err != nil {
		return nil, fmt.Errorf("failed to add record: %w", err)
	}
	return &res, nil
}

// Dismiss silences one record's mileage alert.
func (c *APIClient) Dismiss(vehicleID, recordID string) error {
	_, err := c.do(http.MethodPost, "/vehicles/"+vehicleID+"/alerts/"+recordID+"/dismiss", nil, nil, http.StatusOK)
	return err
}

// DriverState tracks one simulated vehicle.
type DriverState struct {
	VehicleID string
	Mileage   int
	Logged    int
}

// drive advances the odometer by a day or two of driving.
func drive(s *DriverState, rnd *rand.Rand) {
	s.Mileage += 150 + rnd.Intn(450)
}

// nextRecord picks a service to log at the current mileage.
func nextRecord(s *DriverState, rnd *rand.Rand) Record {
	item := serviceSchedule[rnd.Intn(len(serviceSchedule))]
	return Record{
		Mileage:         strconv.Itoa(s.Mileage),
		ServiceType:     item.Service,
		ProductUsed:     item.Product,
		MileageInterval: strconv.Itoa(item.Interval),
	}
}

// handleAlerts logs every alert and dismisses the overdue ones, the way an
// owner acknowledges a service they already know about.
func handleAlerts(c *APIClient, s *DriverState, alerts []Alert) {
	for _, a := range alerts {
		entry := log.WithFields(log.Fields{
			"vehicle_id": s.VehicleID,
			"service":    a.ServiceType,
			"severity":   a.Severity,
			"miles":      a.Miles,
			"next_due":   a.NextDue,
		})
		entry.Warn("Maintenance alert")
		if a.Severity != "overdue" {
			continue
		}
		if err := c.Dismiss(s.VehicleID, a.RecordID); err != nil {
			entry.WithError(err).Error("Failed to dismiss alert")
			continue
		}
		entry.Info("Dismissed alert")
	}
}

// step drives, logs one record and handles the alerts it raised.
func step(c *APIClient, s *DriverState, rnd *rand.Rand) error {
	drive(s, rnd)
	rec := nextRecord(s, rnd)
	res, err := c.AddRecord(s.VehicleID, rec)
	if err != nil {
		return err
	}
	s.Logged++
	log.WithFields(log.Fields{
		"vehicle_id": s.VehicleID,
		"service":    rec.ServiceType,
		"mileage":    s.Mileage,
		"alerts":     len(res.Alerts),
	}).Info("Logged service")
	handleAlerts(c, s, res.Alerts)
	return nil
}

func simulateVehicle(c *APIClient, s *DriverState, interval time.Duration, records int, done chan<- struct{}) {
	defer func() { done <- struct{}{} }()
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for range tick.C {
		if err := step(c, s, rnd); err != nil {
			log.WithError(err).WithField("vehicle_id", s.VehicleID).Error("Failed to log service")
		}
		if records > 0 && s.Logged >= records {
			return
		}
	}
}

func envInt(key string, def, floor int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= floor {
			return n
		}
	}
	return def
}

func main() {
	apiURL := os.Getenv("API_BASE_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080/api"
	}
	passphrase := os.Getenv("SIM_PASSPHRASE")
	if passphrase == "" {
		passphrase = "garage-simulator"
	}
	interval := time.Duration(envInt("SIM_TICK_SECONDS", 2, 1)) * time.Second
	records := envInt("SIM_RECORDS", 20, 0)

	log.WithFields(log.Fields{
		"api_url":  apiURL,
		"interval": interval,
		"records":  records,
	}).Info("Starting garage simulation")

	c := newAPIClient(apiURL, os.Getenv("SIM_AUTH_TOKEN"))
	if c.Token == "" {
		if err := c.Login(passphrase); err != nil {
			log.WithError(err).Fatal("Failed to log in")
		}
	}

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	states := make([]*DriverState, 0, len(garageVehicles))
	for _, v := range garageVehicles {
		start := 10000 + rnd.Intn(40000)
		v.CurrentMileage = strconv.Itoa(start)
		id, err := c.CreateVehicle(v)
		if err != nil {
			log.WithError(err).Error("Failed to create vehicle")
			continue
		}
		states = append(states, &DriverState{VehicleID: id, Mileage: start})
	}

	log.WithField("created_vehicles", len(states)).Info("Vehicle creation completed")
	if len(states) == 0 {
		log.Error("No vehicles created. Ensure the API is reachable and the passphrase is right. Exiting.")
		return
	}

	done := make(chan struct{}, len(states))
	for _, s := range states {
		go simulateVehicle(c, s, interval, records, done)
	}
	for range states {
		<-done
	}
	log.Info("Garage simulation finished")
}
