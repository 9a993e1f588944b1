package parser

import (
	"log"

	"TrafficTally/internal/model"
)

// Parse counts the occurrences of each recognized vehicle label in a raw
// sensor batch. Unrecognized labels are dropped and logged; they never fail
// the batch. The returned CountMap always carries all known types, so an
// empty batch yields an all-zero map.
func Parse(labels []string) model.CountMap {
	counts := model.NewCountMap()
	unknown := 0
	for _, label := range labels {
		vt := model.VehicleType(label)
		if _, ok := counts[vt]; ok {
			counts[vt]++
		} else {
			unknown++
		}
	}
	if unknown > 0 {
		log.Printf("Dropped %d unrecognized vehicle labels from batch of %d", unknown, len(labels))
	}
	return counts
}
