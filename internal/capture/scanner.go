// Package capture stands in for the camera: it "reads" a VIN barcode or an
// odometer and returns canned values.
package capture

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"
)

var (
	ErrCameraUnavailable = errors.New("unable to access camera, enter information manually")
	ErrUnknownVIN        = errors.New("vin not recognised")
)

// MockVIN is what every VIN scan reads.
const MockVIN = "1HGCM82633A123456"

const (
	minOdometer  = 10000
	odometerSpan = 100000
)

// VINScan is the result of a VIN capture.
type VINScan struct {
	VIN   string `json:"vin"`
	Year  string `json:"year,omitempty"`
	Make  string `json:"make,omitempty"`
	Model string `json:"model,omitempty"`
}

// Scanner captures values from the camera.
type Scanner interface {
	ScanVIN(ctx context.Context) (VINScan, error)
	ScanOdometer(ctx context.Context) (int, error)
}

// MockScanner returns hard-coded VIN data and a random odometer reading.
type MockScanner struct {
	// Unavailable simulates a denied or missing camera.
	Unavailable bool

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewMockScanner creates a scanner seeded from the clock.
func NewMockScanner() *MockScanner {
	return &MockScanner{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// ScanVIN reads MockVIN and fills in year, make and model from DecodeVIN.
func (s *MockScanner) ScanVIN(ctx context.Context) (VINScan, error) {
	if err := s.ready(ctx); err != nil {
		return VINScan{}, err
	}
	info, err := DecodeVIN(MockVIN)
	if err != nil {
		return VINScan{}, err
	}
	return VINScan{VIN: MockVIN, Year: info.Year, Make: info.Make, Model: info.Model}, nil
}

// ScanOdometer returns a reading in [10000, 110000).
func (s *MockScanner) ScanOdometer(ctx context.Context) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rnd == nil {
		s.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return minOdometer + s.rnd.Intn(odometerSpan), nil
}

func (s *MockScanner) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.Unavailable {
		return ErrCameraUnavailable
	}
	return nil
}
