package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter registers every API route. ws serves the live alert feed and may
// be nil. Middlewares wrap every route in the order given.
func NewRouter(authH *AuthHandler, garageH *GarageHandler, ws http.HandlerFunc, mws ...mux.MiddlewareFunc) *mux.Router {
	r := mux.NewRouter()
	for _, mw := range mws {
		r.Use(mw)
	}

	r.HandleFunc("/health", Health).Methods(http.MethodGet)

	r.HandleFunc("/api/auth/setup", authH.Setup).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", authH.Login).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/garage", garageH.GetGarage).Methods(http.MethodGet)
	api.HandleFunc("/garage", garageH.RenameGarage).Methods(http.MethodPut)

	api.HandleFunc("/vehicles", garageH.ListVehicles).Methods(http.MethodGet)
	api.HandleFunc("/vehicles", garageH.AddVehicle).Methods(http.MethodPost)
	api.HandleFunc("/vehicles/{id}", garageH.GetVehicle).Methods(http.MethodGet)
	api.HandleFunc("/vehicles/{id}", garageH.DeleteVehicle).Methods(http.MethodDelete)

	api.HandleFunc("/vehicles/{id}/records", garageH.AddRecord).Methods(http.MethodPost)
	api.HandleFunc("/vehicles/{id}/records/{recordID}", garageH.EditRecord).Methods(http.MethodPut)
	api.HandleFunc("/vehicles/{id}/records/{recordID}", garageH.DeleteRecord).Methods(http.MethodDelete)

	api.HandleFunc("/vehicles/{id}/alerts", garageH.PendingAlerts).Methods(http.MethodGet)
	api.HandleFunc("/vehicles/{id}/alerts/{recordID}/dismiss", garageH.DismissAlert).Methods(http.MethodPost)

	api.HandleFunc("/service-types", garageH.ServiceTypes).Methods(http.MethodGet)
	api.HandleFunc("/reminder-date", garageH.ReminderDate).Methods(http.MethodGet)

	api.HandleFunc("/capture/vin", garageH.ScanVIN).Methods(http.MethodPost)
	api.HandleFunc("/capture/odometer", garageH.ScanOdometer).Methods(http.MethodPost)

	if ws != nil {
		r.HandleFunc("/ws", ws).Methods(http.MethodGet)
	}
	return r
}

// Health reports liveness
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
