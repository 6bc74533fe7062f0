// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestInt16ToFloat32(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input int16
		want  float32
	}{
		{name: "zero", input: 0, want: 0},
		{name: "min", input: math.MinInt16, want: -1},
		{name: "half", input: 16384, want: 0.5},
		{name: "negative half", input: -16384, want: -0.5},
		{name: "max", input: math.MaxInt16, want: 32767.0 / 32768.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Int16ToFloat32(tt.input); got != tt.want {
				t.Errorf("Int16ToFloat32(%d) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// TestInt16RoundTrip verifies every 16-bit value survives int16 -> float32 -> int16.
func TestInt16RoundTrip(t *testing.T) {
	t.Parallel()

	for v := math.MinInt16; v <= math.MaxInt16; v++ {
		got := Float32ToInt16(Int16ToFloat32(int16(v)))
		if int(got) != v {
			t.Fatalf("round trip of %d = %d", v, got)
		}
	}
}
