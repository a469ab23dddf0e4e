package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ukydev/garage-logbook/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectMongo connects to MongoDB at uri and verifies the connection.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// MongoVehicleCollection implements VehicleCollection for MongoDB.
type MongoVehicleCollection struct {
	Collection *mongo.Collection
}

// mongoVehicleCursor wraps a MongoDB cursor for vehicle queries.
type mongoVehicleCursor struct {
	cursor *mongo.Cursor
}

// All retrieves all results from the cursor.
func (m *mongoVehicleCursor) All(ctx context.Context, out interface{}) error {
	return m.cursor.All(ctx, out)
}

// Close closes the cursor.
func (m *mongoVehicleCursor) Close(ctx context.Context) error {
	return m.cursor.Close(ctx)
}

// InsertVehicle inserts a vehicle document.
func (c *MongoVehicleCollection) InsertVehicle(ctx context.Context, vehicle models.Vehicle) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	now := time.Now()
	vehicle.CreatedAt = now
	vehicle.UpdatedAt = now
	if vehicle.MaintenanceRecords == nil {
		vehicle.MaintenanceRecords = []models.MaintenanceRecord{}
	}
	_, err := c.Collection.InsertOne(ctx, vehicle)
	return err
}

// FindVehicles queries vehicle documents, oldest first unless opts say otherwise.
func (c *MongoVehicleCollection) FindVehicles(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (VehicleCursor, error) {
	if c.Collection == nil {
		return nil, ErrNilCollection
	}
	if filter == nil {
		filter = bson.M{}
	}
	if len(opts) == 0 {
		opts = append(opts, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	}

	cursor, err := c.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	return &mongoVehicleCursor{cursor: cursor}, nil
}

// FindVehicleByID finds a vehicle by its ID.
func (c *MongoVehicleCollection) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	if c.Collection == nil {
		return nil, ErrNilCollection
	}

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("vehicle %q: %w", id, ErrNotFound)
	}

	var vehicle models.Vehicle
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&vehicle)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("vehicle %s: %w", id, ErrNotFound)
		}
		return nil, err
	}

	return &vehicle, nil
}

// UpdateVehicle replaces a vehicle document, records and reminder statuses included.
func (c *MongoVehicleCollection) UpdateVehicle(ctx context.Context, id string, vehicle models.Vehicle) error {
	if c.Collection == nil {
		return ErrNilCollection
	}

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("vehicle %q: %w", id, ErrNotFound)
	}

	vehicle.ID = objectID
	vehicle.UpdatedAt = time.Now()
	result, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": objectID}, vehicle)
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("vehicle %s: %w", id, ErrNotFound)
	}

	return nil
}

// DeleteVehicle deletes a vehicle by its ID.
func (c *MongoVehicleCollection) DeleteVehicle(ctx context.Context, id string) error {
	if c.Collection == nil {
		return ErrNilCollection
	}

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("vehicle %q: %w", id, ErrNotFound)
	}

	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}

	if result.DeletedCount == 0 {
		return fmt.Errorf("vehicle %s: %w", id, ErrNotFound)
	}

	return nil
}
