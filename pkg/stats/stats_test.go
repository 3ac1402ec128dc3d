package stats

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMean(t *testing.T) {
	tests := []struct {
		name string
		data []float64
		want float64
	}{
		{"Empty", nil, 0},
		{"Single", []float64{5}, 5},
		{"Several", []float64{2, 4, 6}, 4},
		{"CancelsOut", []float64{-2, 2}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Mean(tt.data); !almostEqual(got, tt.want) {
				t.Errorf("Mean(%v) = %v, want %v", tt.data, got, tt.want)
			}
		})
	}
}

func TestStdDev(t *testing.T) {
	tests := []struct {
		name string
		data []float64
		want float64
	}{
		{"Empty", nil, 0},
		{"Single", []float64{3.5}, 0},
		{"Constant", []float64{5, 5, 5, 5}, 0},
		// Desvio padrão amostral (denominador n-1): sqrt(8/2) = 2
		{"Sample", []float64{2, 4, 6}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StdDev(tt.data); !almostEqual(got, tt.want) {
				t.Errorf("StdDev(%v) = %v, want %v", tt.data, got, tt.want)
			}
		})
	}
}

func TestReturns(t *testing.T) {
	t.Run("TooShort", func(t *testing.T) {
		if got := Returns([]float64{100}); got != nil {
			t.Errorf("Returns([100]) = %v, want nil", got)
		}
	})

	t.Run("PercentReturns", func(t *testing.T) {
		got := Returns([]float64{100, 102, 101, 105})
		want := []float64{2, -0.9803921568627451, 3.9603960396039604}

		if len(got) != len(want) {
			t.Fatalf("len = %d, want %d", len(got), len(want))
		}
		for i := range want {
			if !almostEqual(got[i], want[i]) {
				t.Errorf("Returns[%d] = %v, want %v", i, got[i], want[i])
			}
		}
	})

	t.Run("SkipsZeroPrevious", func(t *testing.T) {
		got := Returns([]float64{100, 0, 50})
		if len(got) != 1 || !almostEqual(got[0], -100) {
			t.Errorf("Returns([100 0 50]) = %v, want [-100]", got)
		}
	})

	t.Run("LeadingZero", func(t *testing.T) {
		if got := Returns([]float64{0, 10}); len(got) != 0 {
			t.Errorf("Returns([0 10]) = %v, want empty", got)
		}
	})
}
