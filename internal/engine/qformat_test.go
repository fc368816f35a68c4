package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestQFormatRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		f float64
		n uint
	}{
		{0.5, 30}, {-0.5, 30}, {1.0, 24}, {0.125, 20}, {0.99999, 12},
	} {
		q := floatToQ(tc.f, tc.n)
		back := qToFloat(q, tc.n)
		assert.InDelta(t, tc.f, back, 1.0/float64(int64(1)<<tc.n))
	}
}

// TestQFormatRoundTripProperty checks invariant 7 from §8: q_to_float(float_to_q(f,
// n), n) ≈ f within 2^-n, for any in-range fraction value and bit width.
func TestQFormatRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.UintRange(1, 30).Draw(rt, "n")
		f := rapid.Float64Range(-1, 1).Draw(rt, "f")

		q := floatToQ(f, n)
		back := qToFloat(q, n)
		tolerance := 1.0/float64(int64(1)<<n) + 1e-9
		assert.InDelta(t, f, back, tolerance)
	})
}

func TestFloatToQSaturates(t *testing.T) {
	assert.Equal(t, Q(math.MaxInt32), floatToQ(1e10, 0))
	assert.Equal(t, Q(math.MinInt32), floatToQ(-1e10, 0))
}
