package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/garage-logbook/internal/capture"
	"github.com/ukydev/garage-logbook/internal/db"
	"github.com/ukydev/garage-logbook/internal/garage"
	"github.com/ukydev/garage-logbook/internal/models"
)

// GarageHandler serves vehicles, maintenance records and mileage alerts
type GarageHandler struct {
	service *garage.Service
	now     func() time.Time
}

// NewGarageHandler creates a new garage handler
func NewGarageHandler(service *garage.Service) *GarageHandler {
	return &GarageHandler{service: service, now: time.Now}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

// writeError maps service errors onto status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, garage.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, db.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, garage.ErrRecordNotFound):
		http.Error(w, "Maintenance record not found", http.StatusNotFound)
	case errors.Is(err, capture.ErrCameraUnavailable):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		log.WithError(err).Error("Request failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// readBody reads at most maxBodyBytes of the request body, answering 413 when
// it is larger.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return nil, false
		}
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return nil, false
	}
	return body, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body, ok := readBody(w, r)
	if !ok {
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return false
	}
	return true
}

// GetGarage returns the garage name
func (h *GarageHandler) GetGarage(w http.ResponseWriter, r *http.Request) {
	name, err := h.service.Garage(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"garage_name": name})
}

// RenameGarage updates the garage name
func (h *GarageHandler) RenameGarage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GarageName string `json:"garage_name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	name, err := h.service.RenameGarage(r.Context(), req.GarageName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"garage_name": name})
}

// ListVehicles returns every vehicle in the garage
func (h *GarageHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.service.ListVehicles(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicles)
}

// AddVehicle creates a vehicle
func (h *GarageHandler) AddVehicle(w http.ResponseWriter, r *http.Request) {
	var in garage.VehicleInput
	if !decodeBody(w, r, &in) {
		return
	}
	v, err := h.service.AddVehicle(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// GetVehicle returns one vehicle with its maintenance history
func (h *GarageHandler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.GetVehicle(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// DeleteVehicle removes a vehicle
func (h *GarageHandler) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteVehicle(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddRecord logs a maintenance record and returns the mileage alerts it raised
func (h *GarageHandler) AddRecord(w http.ResponseWriter, r *http.Request) {
	var in garage.RecordInput
	if !decodeBody(w, r, &in) {
		return
	}
	res, err := h.service.AddRecord(r.Context(), mux.Vars(r)["id"], in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// EditRecord updates a maintenance record
func (h *GarageHandler) EditRecord(w http.ResponseWriter, r *http.Request) {
	var edit garage.RecordEdit
	if !decodeBody(w, r, &edit) {
		return
	}
	vars := mux.Vars(r)
	record, err := h.service.EditRecord(r.Context(), vars["id"], vars["recordID"], edit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// DeleteRecord removes a maintenance record
func (h *GarageHandler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.service.DeleteRecord(r.Context(), vars["id"], vars["recordID"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PendingAlerts returns the alerts still awaiting dismissal
func (h *GarageHandler) PendingAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.service.PendingAlerts(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

// DismissAlert silences one record's mileage reminder
func (h *GarageHandler) DismissAlert(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	remaining, err := h.service.DismissAlert(r.Context(), vars["id"], vars["recordID"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, remaining)
}

// ServiceTypes returns the service catalog
func (h *GarageHandler) ServiceTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.ServiceTypes)
}

// ReminderDate suggests a reminder date some months from today
func (h *GarageHandler) ReminderDate(w http.ResponseWriter, r *http.Request) {
	months := garage.DefaultReminderMonths
	if raw := r.URL.Query().Get("months"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "months must be a number", http.StatusBadRequest)
			return
		}
		months = n
	}
	date, err := garage.ReminderDate(h.now(), months)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"months": months, "reminder_date": date})
}

// ScanVIN reads the VIN through the capture device
func (h *GarageHandler) ScanVIN(w http.ResponseWriter, r *http.Request) {
	scan, err := h.service.ScanVIN(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scan)
}

// ScanOdometer reads the odometer through the capture device
func (h *GarageHandler) ScanOdometer(w http.ResponseWriter, r *http.Request) {
	miles, err := h.service.ScanOdometer(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"mileage": miles})
}
