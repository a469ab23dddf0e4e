package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultGarageName is used until the owner renames the garage.
const DefaultGarageName = "My Garage"

// Owner is the single garage owner. The passphrase guards the API.
type Owner struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GarageName     string             `bson:"garage_name" json:"garage_name"`
	PassphraseHash string             `bson:"passphrase_hash" json:"-"`
	LastLogin      *time.Time         `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// LoginRequest represents a login or setup request
type LoginRequest struct {
	Passphrase string `json:"passphrase"`
	GarageName string `json:"garage_name,omitempty"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	Token string `json:"token"`
	Owner Owner  `json:"owner"`
}

// Claims represents JWT claims
type Claims struct {
	OwnerID string `json:"owner_id"`
	Exp     int64  `json:"exp"`
}
