package goocio

import (
	"math"
	"testing"
)

func TestHalfRoundTripExactValues(t *testing.T) {
	for _, v := range []float32{0, 0.5, 1, -1, 0.25, 2048, 65504, -65504} {
		got := halfToFloat(floatToHalf(v))
		if got != v {
			t.Errorf("round trip of %g gave %g", v, got)
		}
	}
}

func TestHalfAllBitPatternsStable(t *testing.T) {
	// Converting a half to float and back must reproduce the bits for every
	// finite pattern.
	for i := 0; i < 65536; i++ {
		h := uint16(i)
		f := halfToFloat(h)
		if math.IsNaN(float64(f)) {
			continue
		}
		if got := floatToHalf(f); got != h {
			t.Errorf("pattern %#04x came back as %#04x (value %g)", h, got, f)
		}
	}
}

func TestHalfSpecials(t *testing.T) {
	if !math.IsInf(float64(halfToFloat(0x7c00)), 1) {
		t.Error("0x7c00 should be +inf")
	}
	if !math.IsInf(float64(halfToFloat(0xfc00)), -1) {
		t.Error("0xfc00 should be -inf")
	}
	if !math.IsNaN(float64(halfToFloat(0x7e00))) {
		t.Error("0x7e00 should be NaN")
	}
	if h := floatToHalf(float32(math.NaN())); h&0x7c00 != 0x7c00 || h&0x03ff == 0 {
		t.Errorf("NaN should map to a half NaN, got %#04x", h)
	}
	if floatToHalf(1e6) != 0x7c00 {
		t.Error("overflow should saturate to +inf")
	}
}

func TestHalfSubnormals(t *testing.T) {
	smallest := halfToFloat(0x0001)
	if math.Abs(float64(smallest)-math.Pow(2, -24)) > 1e-12 {
		t.Errorf("smallest subnormal should be 2^-24, got %g", smallest)
	}
	if floatToHalf(smallest) != 0x0001 {
		t.Error("smallest subnormal should round trip")
	}
}
