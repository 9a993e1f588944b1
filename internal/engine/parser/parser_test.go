package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"TrafficTally/internal/model"
)

func TestParseCountsRecognizedLabels(t *testing.T) {
	counts := Parse([]string{"car", "motorcycle", "car", "car", "bus"})

	assert.Equal(t, model.CountMap{
		model.Car:        3,
		model.Motorcycle: 1,
		model.Bus:        1,
	}, counts)
}

func TestParseDropsUnknownLabels(t *testing.T) {
	counts := Parse([]string{"car", "unicycle"})

	assert.Equal(t, model.CountMap{
		model.Car:        1,
		model.Motorcycle: 0,
		model.Bus:        0,
	}, counts)
}

func TestParseEmptyBatch(t *testing.T) {
	counts := Parse(nil)

	assert.Len(t, counts, len(model.Types()))
	for _, vt := range model.Types() {
		assert.Zero(t, counts[vt])
	}
}
