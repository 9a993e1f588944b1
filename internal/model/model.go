package model

// VehicleType enumerates the vehicle classes a roadside sensor can report.
type VehicleType string

const (
	Car        VehicleType = "car"
	Motorcycle VehicleType = "motorcycle"
	Bus        VehicleType = "bus"
)

// Types lists every known vehicle type in report order.
func Types() []VehicleType {
	return []VehicleType{Car, Motorcycle, Bus}
}

// Known reports whether vt is one of the recognized vehicle types.
func Known(vt VehicleType) bool {
	switch vt {
	case Car, Motorcycle, Bus:
		return true
	}
	return false
}

// CountMap maps a vehicle type to a cumulative count. Every CountMap built
// through NewCountMap carries all known types, zero-filled, so downstream
// consumers never have to distinguish "absent" from "zero".
type CountMap map[VehicleType]uint64

// NewCountMap returns a CountMap with every known type present at zero.
func NewCountMap() CountMap {
	counts := make(CountMap, len(Types()))
	for _, vt := range Types() {
		counts[vt] = 0
	}
	return counts
}

// Add accumulates every count from other into c.
func (c CountMap) Add(other CountMap) {
	for vt, n := range other {
		c[vt] += n
	}
}

// Clone returns an independent copy of c.
func (c CountMap) Clone() CountMap {
	counts := make(CountMap, len(c))
	for vt, n := range c {
		counts[vt] = n
	}
	return counts
}

// Total returns the sum of all counts in c.
func (c CountMap) Total() uint64 {
	var total uint64
	for _, n := range c {
		total += n
	}
	return total
}

// SensorBatch is one sensor submission of raw vehicle labels for one location.
type SensorBatch struct {
	Location string   `json:"location"`
	Data     []string `json:"data"`
}

// LocationCounts holds the cumulative counts for a single location, one entry
// of a Report.
type LocationCounts struct {
	Location string   `json:"location"`
	Data     CountMap `json:"data"`
}

// Report is the combined cross-location query result, ordered by location name.
type Report []LocationCounts
