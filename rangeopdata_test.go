package goocio

import (
	"math"
	"testing"
)

func TestRangeClampsAndMapsNaNToLowerBound(t *testing.T) {
	d := NewRangeOpData(0, 1, 0, 1)
	nan := float32(math.NaN())
	pix := []float32{nan, -0.5, 1.5, 1.0}
	d.Apply(pix, 1)
	if pix[0] != 0 {
		t.Errorf("NaN should clamp to the lower bound, got %g", pix[0])
	}
	if pix[1] != 0 || pix[2] != 1 {
		t.Errorf("clamp failed: got %g %g", pix[1], pix[2])
	}
}

func TestRangeScaleAndOffset(t *testing.T) {
	d := NewRangeOpData(0, 1, 0.1, 0.9)
	pix := []float32{0.5, 0, 1, 1}
	d.Apply(pix, 1)
	if math.Abs(float64(pix[0])-0.5) > 1e-6 {
		t.Errorf("midpoint should map to 0.5, got %g", pix[0])
	}
	if math.Abs(float64(pix[1])-0.1) > 1e-6 || math.Abs(float64(pix[2])-0.9) > 1e-6 {
		t.Errorf("endpoints should map to 0.1 and 0.9, got %g %g", pix[1], pix[2])
	}
}

func TestRangeValidatePairedBounds(t *testing.T) {
	d := NewRangeOpData(0, RangeEmptyValue, RangeEmptyValue, RangeEmptyValue)
	if err := d.Validate(); err == nil {
		t.Error("a low input bound without a low output bound must not validate")
	}
	ordered := NewRangeOpData(1, 0, 0, 1)
	if err := ordered.Validate(); err == nil {
		t.Error("a high input bound below the low input bound must not validate")
	}
	lowOnly := NewRangeOpData(0, RangeEmptyValue, 0, RangeEmptyValue)
	if err := lowOnly.Validate(); err != nil {
		t.Errorf("a matched low-bound pair alone should validate: %v", err)
	}
}

func TestRangeInverseRoundTrip(t *testing.T) {
	d := NewRangeOpData(0, 1, 0.2, 0.8)
	inv, err := d.Inverse()
	if err != nil {
		t.Fatal(err)
	}
	pix := []float32{0.4, 0.5, 0.6, 1}
	want := append([]float32(nil), pix...)
	d.Apply(pix, 1)
	inv.Apply(pix, 1)
	for i := 0; i < 3; i++ {
		if math.Abs(float64(pix[i]-want[i])) > 1e-6 {
			t.Errorf("channel %d: round trip %g, want %g", i, pix[i], want[i])
		}
	}
}
