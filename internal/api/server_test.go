package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrafficTally/internal/engine/aggregator"
	"TrafficTally/internal/engine/query"
	"TrafficTally/internal/model"
)

func newTestServer(t *testing.T) (*Server, *aggregator.Registry) {
	t.Helper()
	registry := aggregator.NewRegistry()
	coordinator := query.NewCoordinator(query.FromRegistry(registry), time.Second)
	return NewServer(registry, coordinator), registry
}

func postBatch(t *testing.T, server *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/sensorapi/data", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	return rec
}

func getJSON(t *testing.T, server *Server, url string, out interface{}) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	if out != nil && rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

func TestIngestAcceptsBatch(t *testing.T) {
	server, registry := newTestServer(t)

	rec := postBatch(t, server, `{"location": "west-seattle-bridge", "data": ["car", "motorcycle", "car", "car", "bus"]}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	counts := registry.GetOrCreate("west-seattle-bridge").Snapshot()
	assert.Equal(t, uint64(3), counts[model.Car])
	assert.Equal(t, uint64(1), counts[model.Motorcycle])
	assert.Equal(t, uint64(1), counts[model.Bus])
}

func TestIngestToleratesUnknownLabels(t *testing.T) {
	server, registry := newTestServer(t)

	rec := postBatch(t, server, `{"location": "i-5", "data": ["car", "unicycle"]}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	counts := registry.GetOrCreate("i-5").Snapshot()
	assert.Equal(t, uint64(1), counts[model.Car])
	assert.Equal(t, uint64(0), counts[model.Motorcycle])
}

func TestIngestRejectsMalformedJSON(t *testing.T) {
	server, _ := newTestServer(t)

	rec := postBatch(t, server, `{"location": "i-5", "data": [`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIngestRejectsMissingLocation(t *testing.T) {
	server, _ := newTestServer(t)

	rec := postBatch(t, server, `{"data": ["car"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLocationsEndpoint(t *testing.T) {
	server, _ := newTestServer(t)
	postBatch(t, server, `{"location": "northgate", "data": ["car"]}`)
	postBatch(t, server, `{"location": "ballard", "data": ["bus"]}`)

	var locations []string
	rec := getJSON(t, server, "/api/locations", &locations)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"ballard", "northgate"}, locations)
}

func TestDataEndpointUnfiltered(t *testing.T) {
	server, _ := newTestServer(t)
	postBatch(t, server, `{"location": "ballard", "data": ["car", "car", "car", "car", "bus", "bus"]}`)
	postBatch(t, server, `{"location": "northgate", "data": ["car", "motorcycle"]}`)

	var report model.Report
	rec := getJSON(t, server, "/api/data", &report)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, report, 2)
	assert.Equal(t, "ballard", report[0].Location)
	assert.Equal(t, uint64(4), report[0].Data[model.Car])
	assert.Equal(t, uint64(2), report[0].Data[model.Bus])
	assert.Equal(t, "northgate", report[1].Location)
}

func TestDataEndpointFilters(t *testing.T) {
	server, _ := newTestServer(t)
	postBatch(t, server, `{"location": "ballard", "data": ["car", "car", "car", "car", "bus", "bus"]}`)
	postBatch(t, server, `{"location": "northgate", "data": ["car", "motorcycle"]}`)

	var report model.Report
	rec := getJSON(t, server, "/api/data?location=ballard", &report)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, report, 1)
	assert.Equal(t, "ballard", report[0].Location)

	report = nil
	rec = getJSON(t, server, "/api/data?vehicle=car", &report)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, report, 2)
	for _, entry := range report {
		assert.Len(t, entry.Data, 1)
	}
	assert.Equal(t, uint64(4), report[0].Data[model.Car])
	assert.Equal(t, uint64(1), report[1].Data[model.Car])

	report = nil
	rec = getJSON(t, server, "/api/data?location=northgate&vehicle=motorcycle", &report)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, report, 1)
	assert.Equal(t, uint64(1), report[0].Data[model.Motorcycle])
}

func TestDataEndpointRejectsUnknownVehicleFilter(t *testing.T) {
	server, _ := newTestServer(t)

	rec := getJSON(t, server, "/api/data?vehicle=tractor", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type stalledSource struct{}

func (stalledSource) Location() string { return "stalled" }
func (stalledSource) Snapshot() model.CountMap {
	time.Sleep(time.Second)
	return model.NewCountMap()
}

func TestDataEndpointSurfacesTimeout(t *testing.T) {
	registry := aggregator.NewRegistry()
	coordinator := query.NewCoordinator(func() []query.Source {
		return []query.Source{stalledSource{}}
	}, 20*time.Millisecond)
	server := NewServer(registry, coordinator)

	rec := getJSON(t, server, "/api/data", nil)
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestDataEndpointEmptyRegistry(t *testing.T) {
	server, _ := newTestServer(t)

	var report model.Report
	rec := getJSON(t, server, "/api/data", &report)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, report)
	assert.Equal(t, "[]\n", rec.Body.String())
}
