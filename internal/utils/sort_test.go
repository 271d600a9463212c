package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetSortedKeys(t *testing.T) {
	d1 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)
	d3 := d1.AddDate(0, 0, 2)
	type series map[time.Time]float64
	s := series{d3: 1, d1: 2, d2: 3}

	assert.Equal(t, []time.Time{d1, d2, d3}, GetSortedKeys(s, true))
	assert.Equal(t, []time.Time{d3, d2, d1}, GetSortedKeys(s, false))
	assert.Empty(t, GetSortedKeys(series{}, true))
}
