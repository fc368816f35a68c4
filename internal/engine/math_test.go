package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinearToDecibelsFloor(t *testing.T) {
	assert.Equal(t, -1000.0, linearToDecibels(0))
	assert.Equal(t, -1000.0, linearToDecibels(-1))
}

func TestDecibelsToLinearRoundTrip(t *testing.T) {
	for _, db := range []float64{-40, -20, -6, 0, 6, 20} {
		linear := decibelsToLinear(db)
		back := linearToDecibels(linear)
		assert.InDelta(t, db, back, 1e-6)
	}
}

func TestWarpRoundTrip(t *testing.T) {
	for x := 0.0; x <= 1.0; x += 0.05 {
		got := warpSin(warpAsin(x))
		assert.InDelta(t, x, got, 1e-6)
	}
}

func TestIsBad(t *testing.T) {
	assert.False(t, isBad(0))
	assert.False(t, isBad(1.0))
	assert.False(t, isBad(-1.0))
	assert.True(t, isBad(math.NaN()))
	assert.True(t, isBad(math.Inf(1)))
	assert.True(t, isBad(math.Inf(-1)))
	assert.True(t, isBad(math.SmallestNonzeroFloat64))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, 1.0, sanitize(math.NaN(), 1.0))
	assert.Equal(t, 2.5, sanitize(2.5, 1.0))
}

func TestNegTwoDBConstant(t *testing.T) {
	assert.InDelta(t, negTwoDB, decibelsToLinear(-2), 1e-9)
}
