package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/garage-logbook/internal/auth"
	"github.com/ukydev/garage-logbook/internal/db"
	"github.com/ukydev/garage-logbook/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthHandler handles owner setup and login requests
type AuthHandler struct {
	authService     *auth.Service
	ownerCollection db.OwnerCollection
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service, ownerCollection db.OwnerCollection) *AuthHandler {
	return &AuthHandler{
		authService:     authService,
		ownerCollection: ownerCollection,
	}
}

func readLoginRequest(w http.ResponseWriter, r *http.Request) (*models.LoginRequest, bool) {
	body, ok := readBody(w, r)
	if !ok {
		return nil, false
	}

	var req models.LoginRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return nil, false
	}

	if req.Passphrase == "" {
		http.Error(w, "Passphrase is required", http.StatusBadRequest)
		return nil, false
	}
	return &req, true
}

// Setup creates the garage owner. It only succeeds once.
func (h *AuthHandler) Setup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, ok := readLoginRequest(w, r)
	if !ok {
		return
	}

	if err := h.authService.ValidatePassphrase(req.Passphrase); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	_, err := h.ownerCollection.FindOwner(r.Context())
	if err == nil {
		http.Error(w, "Garage already set up", http.StatusConflict)
		return
	}
	if !errors.Is(err, db.ErrNotFound) {
		http.Error(w, "Failed to look up owner", http.StatusInternalServerError)
		return
	}

	hash, err := h.authService.HashPassphrase(req.Passphrase)
	if err != nil {
		http.Error(w, "Failed to hash passphrase", http.StatusInternalServerError)
		return
	}

	garageName := strings.TrimSpace(req.GarageName)
	if garageName == "" {
		garageName = models.DefaultGarageName
	}
	now := time.Now()
	owner := models.Owner{
		ID:             primitive.NewObjectID(),
		GarageName:     garageName,
		PassphraseHash: hash,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := h.ownerCollection.InsertOwner(r.Context(), owner); err != nil {
		http.Error(w, "Failed to create owner", http.StatusInternalServerError)
		return
	}

	token, err := h.authService.GenerateToken(&owner)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	log.WithField("garage", garageName).Info("Garage owner created")
	writeJSON(w, http.StatusCreated, models.LoginResponse{Token: token, Owner: owner})
}

// Login exchanges the owner passphrase for a token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, ok := readLoginRequest(w, r)
	if !ok {
		return
	}

	owner, err := h.ownerCollection.FindOwner(r.Context())
	if err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	if !h.authService.CheckPassphrase(req.Passphrase, owner.PassphraseHash) {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.authService.GenerateToken(owner)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	if err := h.ownerCollection.UpdateLastLogin(r.Context(), owner.ID.Hex()); err != nil {
		// not fatal for the login
		log.WithError(err).Warn("Failed to update last login")
	}

	writeJSON(w, http.StatusOK, models.LoginResponse{Token: token, Owner: *owner})
}
