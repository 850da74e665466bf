package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAmountScore(t *testing.T) {
	tests := []struct {
		name string
		a    float64
		b    float64
		want float64
	}{
		{
			name: "exact match",
			a:    100.00,
			b:    100.00,
			want: 1.0,
		},
		{
			name: "exact match ignores sign",
			a:    -50.00,
			b:    50.00,
			want: 1.0,
		},
		{
			name: "zero amounts match",
			a:    0,
			b:    0,
			want: 1.0,
		},
		{
			name: "beyond tolerance scores zero",
			a:    100.00,
			b:    110.00,
			want: 0,
		},
		{
			name: "just beyond the dollar floor",
			a:    10.00,
			b:    11.01,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, AmountScore(tt.a, tt.b), 1e-9)
		})
	}
}

func TestAmountScore_WithinTolerance(t *testing.T) {
	// $0.50 apart on a $100 transaction: inside the $1.00 floor tolerance,
	// so the score decays but stays in the accepted band.
	score := AmountScore(100.00, 100.50)
	assert.Greater(t, score, 0.0)
	assert.GreaterOrEqual(t, score, 0.8)
	assert.Less(t, score, 1.0)

	// Large amounts widen the tolerance to 0.5%: $10 apart on $10,000 passes.
	score = AmountScore(10000.00, 10010.00)
	assert.GreaterOrEqual(t, score, 0.8)
}

func TestAmountScore_NeverBelowFloorInsideTolerance(t *testing.T) {
	// Right at the tolerance edge the raw exponential would dip under 0.8;
	// the floor keeps it in range.
	tolerance := AmountTolerance(200.00, 200.00)
	score := AmountScore(200.00, 200.00+tolerance)
	assert.GreaterOrEqual(t, score, 0.8)
	assert.LessOrEqual(t, score, 1.0)
}

func TestAmountTolerance(t *testing.T) {
	tests := []struct {
		name string
		a    float64
		b    float64
		want float64
	}{
		{name: "dollar floor on small amounts", a: 10.00, b: 10.00, want: 1.00},
		{name: "half percent on large amounts", a: 10000.00, b: 9000.00, want: 50.00},
		{name: "uses the larger magnitude", a: -5000.00, b: 100.00, want: 25.00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, AmountTolerance(tt.a, tt.b), 1e-9)
		})
	}
}
