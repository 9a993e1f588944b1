package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"TrafficTally/internal/engine/aggregator"
	"TrafficTally/internal/engine/parser"
	"TrafficTally/internal/engine/query"
	"TrafficTally/internal/model"
)

// Server is the HTTP gateway over the aggregation engine. It decodes sensor
// submissions into registry calls and encodes query reports back to JSON; all
// counting semantics live in the engine packages.
type Server struct {
	registry    *aggregator.Registry
	coordinator *query.Coordinator
	router      *mux.Router
}

// NewServer creates the gateway and registers its routes.
func NewServer(registry *aggregator.Registry, coordinator *query.Coordinator) *Server {
	s := &Server{
		registry:    registry,
		coordinator: coordinator,
		router:      mux.NewRouter(),
	}
	s.routes()
	return s
}

// Router returns the configured HTTP handler.
func (s *Server) Router() *mux.Router {
	return s.router
}

func (s *Server) routes() {
	s.router.HandleFunc("/sensorapi/data", s.handleIngest).Methods("POST")
	s.router.HandleFunc("/api/locations", s.handleLocations).Methods("GET")
	s.router.HandleFunc("/api/data", s.handleData).Methods("GET")
}

// handleIngest accepts one sensor batch. The batch is parsed and applied
// synchronously; by the time the 202 goes out the counts are visible to
// queries. Unknown vehicle labels never reject a batch.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var batch model.SensorBatch
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		http.Error(w, fmt.Sprintf("failed to decode sensor batch: %v", err), http.StatusBadRequest)
		return
	}
	if batch.Location == "" {
		http.Error(w, "sensor batch is missing a location", http.StatusBadRequest)
		return
	}

	counts := parser.Parse(batch.Data)
	s.registry.GetOrCreate(batch.Location).ApplyBatch(counts)

	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleLocations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.registry.Locations())
}

// handleData runs one fan-out query and applies the optional location and
// vehicle filters, in that order.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	vehicle := r.URL.Query().Get("vehicle")
	if vehicle != "" && !model.Known(model.VehicleType(vehicle)) {
		http.Error(w, fmt.Sprintf("unknown vehicle type: %q", vehicle), http.StatusBadRequest)
		return
	}

	report, err := s.coordinator.Collect(r.Context())
	if err != nil {
		if errors.Is(err, query.ErrTimeout) {
			http.Error(w, "query timed out collecting location snapshots", http.StatusGatewayTimeout)
			return
		}
		http.Error(w, fmt.Sprintf("query failed: %v", err), http.StatusInternalServerError)
		return
	}

	if location := r.URL.Query().Get("location"); location != "" {
		report = query.FilterByLocation(report, location)
	}
	if vehicle != "" {
		report = query.FilterByVehicle(report, model.VehicleType(vehicle))
	}

	writeJSON(w, report)
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
