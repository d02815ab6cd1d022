//go:build amd64 && !purego

package avx2

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-eq/dsp/filter/biquad/internal/arch/generic"
	"github.com/cwbudde/algo-eq/dsp/filter/biquad/internal/arch/registry"
)

func TestProcessBlock_MatchesGeneric(t *testing.T) {
	c := registry.Coefficients{B0: 0.2, B1: -0.1, B2: 0.05, A1: -0.9, A2: 0.3}
	// Lengths around the unroll width exercise the tail loop.
	for n := 0; n <= 9; n++ {
		in := make([]float32, n)
		for i := range in {
			in[i] = float32(math.Sin(float64(i) * 0.7))
		}
		got := append([]float32(nil), in...)
		want := append([]float32(nil), in...)

		d0g, d1g := processBlock(c, 0.1, -0.05, got)
		d0w, d1w := generic.ProcessBlock(c, 0.1, -0.05, want)

		if math.Abs(d0g-d0w) > 1e-12 || math.Abs(d1g-d1w) > 1e-12 {
			t.Fatalf("n=%d state mismatch: got (%g,%g), want (%g,%g)", n, d0g, d1g, d0w, d1w)
		}
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("n=%d sample %d mismatch: got %.9f, want %.9f", n, i, got[i], want[i])
			}
		}
	}
}
