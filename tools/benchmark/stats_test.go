package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPercentile(t *testing.T) {
	samples := []time.Duration{
		5 * time.Millisecond,
		1 * time.Millisecond,
		3 * time.Millisecond,
		2 * time.Millisecond,
		4 * time.Millisecond,
	}

	assert.Equal(t, 3*time.Millisecond, Percentile(samples, 50))
	assert.Equal(t, 5*time.Millisecond, Percentile(samples, 99))
	assert.Equal(t, 1*time.Millisecond, Percentile(samples, 0))
	assert.Equal(t, 5*time.Millisecond, Percentile(samples, 100))

	// Input order must be preserved
	assert.Equal(t, 5*time.Millisecond, samples[0])
}

func TestPercentileEmpty(t *testing.T) {
	assert.Equal(t, time.Duration(0), Percentile(nil, 50))
}
