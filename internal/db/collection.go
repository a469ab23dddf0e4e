package db

import (
	"context"
	"errors"

	"github.com/ukydev/garage-logbook/internal/models"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrNilCollection = errors.New("mongo collection is nil")
)

// VehicleCollection defines the interface for vehicle data operations.
// Maintenance records and reminder statuses are embedded in the vehicle.
type VehicleCollection interface {
	InsertVehicle(ctx context.Context, vehicle models.Vehicle) error
	FindVehicles(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (VehicleCursor, error)
	FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error)
	UpdateVehicle(ctx context.Context, id string, vehicle models.Vehicle) error
	DeleteVehicle(ctx context.Context, id string) error
}

// VehicleCursor defines the interface for vehicle cursor operations.
type VehicleCursor interface {
	All(ctx context.Context, out interface{}) error
	Close(ctx context.Context) error
}

// OwnerCollection defines the interface for the garage owner document.
type OwnerCollection interface {
	FindOwner(ctx context.Context) (*models.Owner, error)
	InsertOwner(ctx context.Context, owner models.Owner) error
	UpdateGarageName(ctx context.Context, name string) error
	UpdateLastLogin(ctx context.Context, id string) error
}
