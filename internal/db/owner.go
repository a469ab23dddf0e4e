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
)

// MongoOwnerCollection implements OwnerCollection for MongoDB. The collection
// holds at most one document.
type MongoOwnerCollection struct {
	Collection *mongo.Collection
}

// FindOwner returns the garage owner, or ErrNotFound before setup.
func (c *MongoOwnerCollection) FindOwner(ctx context.Context) (*models.Owner, error) {
	if c.Collection == nil {
		return nil, ErrNilCollection
	}
	var owner models.Owner
	err := c.Collection.FindOne(ctx, bson.M{}).Decode(&owner)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("owner: %w", ErrNotFound)
		}
		return nil, err
	}
	return &owner, nil
}

// InsertOwner stores the garage owner
func (c *MongoOwnerCollection) InsertOwner(ctx context.Context, owner models.Owner) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	now := time.Now()
	owner.CreatedAt = now
	owner.UpdatedAt = now
	if owner.GarageName == "" {
		owner.GarageName = models.DefaultGarageName
	}
	_, err := c.Collection.InsertOne(ctx, owner)
	return err
}

// UpdateGarageName renames the garage
func (c *MongoOwnerCollection) UpdateGarageName(ctx context.Context, name string) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	result, err := c.Collection.UpdateOne(
		ctx,
		bson.M{},
		bson.M{"$set": bson.M{"garage_name": name, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("owner: %w", ErrNotFound)
	}
	return nil
}

// UpdateLastLogin updates the last login time of the owner
func (c *MongoOwnerCollection) UpdateLastLogin(ctx context.Context, id string) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	now := time.Now()
	_, err = c.Collection.UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"last_login": now, "updated_at": now}},
	)
	return err
}
