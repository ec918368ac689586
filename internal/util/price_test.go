package util

import (
	"math"
	"testing"
)

func TestRoundToTick(t *testing.T) {
	tests := []struct {
		name     string
		x        float64
		tick     float64
		expected float64
	}{
		{
			name:     "basic rounding down",
			x:        1.2345,
			tick:     0.01,
			expected: 1.23,
		},
		{
			name:     "tie rounds away from zero",
			x:        1.235,
			tick:     0.01,
			expected: 1.24,
		},
		{
			name:     "negative tie rounds away from zero",
			x:        -1.235,
			tick:     0.01,
			expected: -1.24,
		},
		{
			name:     "larger tick size",
			x:        1.27,
			tick:     0.05,
			expected: 1.25,
		},
		{
			name:     "exact multiple",
			x:        1.25,
			tick:     0.05,
			expected: 1.25,
		},
		{
			name:     "display tick",
			x:        -0.44444444,
			tick:     0.0001,
			expected: -0.4444,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RoundToTick(tt.x, tt.tick)
			if math.Abs(result-tt.expected) > 1e-10 {
				t.Errorf("RoundToTick(%v, %v) = %v, expected %v", tt.x, tt.tick, result, tt.expected)
			}
		})
	}

	t.Run("non-positive tick returns input", func(t *testing.T) {
		input := 1.2345
		if result := RoundToTick(input, 0); result != input {
			t.Errorf("RoundToTick(%v, 0) = %v, expected %v", input, result, input)
		}
		if result := RoundToTick(input, -0.01); result != input {
			t.Errorf("RoundToTick(%v, -0.01) = %v, expected %v", input, result, input)
		}
	})
}

func TestMid(t *testing.T) {
	tests := []struct {
		name     string
		bid      float64
		ask      float64
		expected float64
	}{
		{name: "symmetric spread", bid: 10, ask: 12, expected: 11},
		{name: "tight spread", bid: 0.0001, ask: 0.0003, expected: 0.0002},
		{name: "locked market", bid: 5, ask: 5, expected: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Mid(tt.bid, tt.ask)
			if math.Abs(result-tt.expected) > 1e-12 {
				t.Errorf("Mid(%v, %v) = %v, expected %v", tt.bid, tt.ask, result, tt.expected)
			}
		})
	}
}
