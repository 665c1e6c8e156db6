package goocio

import (
	"math"
	"strings"
	"testing"
)

func TestRec2100SurroundParamBounds(t *testing.T) {
	high := NewFixedFunctionOpData(FixedFunctionRec2100Surround, []float64{120})
	err := high.Validate()
	if err == nil || !strings.Contains(err.Error(), "parameter 120 is greater than upper bound 100") {
		t.Errorf("expected upper bound rejection, got %v", err)
	}

	low := NewFixedFunctionOpData(FixedFunctionRec2100Surround, []float64{1e-5})
	err = low.Validate()
	if err == nil || !strings.Contains(err.Error(), "parameter 1e-05 is less than lower bound 0.001") {
		t.Errorf("expected lower bound rejection, got %v", err)
	}
}

func TestRec2100SurroundParamArity(t *testing.T) {
	d := NewFixedFunctionOpData(FixedFunctionRec2100Surround, []float64{1, 2})
	err := d.Validate()
	if err == nil || !strings.Contains(err.Error(), "must have one parameter but 2 found") {
		t.Errorf("expected arity rejection, got %v", err)
	}

	dark := NewFixedFunctionOpData(FixedFunctionAcesDarkToDim10Fwd, []float64{1})
	if err := dark.Validate(); err == nil {
		t.Error("DarkToDim styles take no parameters")
	}
}

func TestRec2100SurroundIdentity(t *testing.T) {
	d := NewFixedFunctionOpData(FixedFunctionRec2100Surround, []float64{1})
	if !d.IsIdentity() {
		t.Error("gamma 1 surround should be an identity")
	}
	d2 := NewFixedFunctionOpData(FixedFunctionRec2100Surround, []float64{0.8})
	if d2.IsIdentity() {
		t.Error("gamma 0.8 surround is not an identity")
	}
}

func TestRec2100SurroundGainFollowsLuma(t *testing.T) {
	d := NewFixedFunctionOpData(FixedFunctionRec2100Surround, []float64{0.8})
	pix := []float32{0.5, 0.5, 0.5, 1}
	d.Apply(pix, 1)
	want := 0.5 * math.Pow(0.5, 0.8-1.0)
	for i := 0; i < 3; i++ {
		if math.Abs(float64(pix[i])-want) > 1e-5 {
			t.Errorf("channel %d: got %g, want %g", i, pix[i], want)
		}
	}
}

func TestDarkToDimRoundTrip(t *testing.T) {
	fwd := NewFixedFunctionOpData(FixedFunctionAcesDarkToDim10Fwd, nil)
	inv, err := fwd.Inverse()
	if err != nil {
		t.Fatal(err)
	}
	pix := []float32{0.1, 0.4, 0.7, 1}
	want := append([]float32(nil), pix...)
	fwd.Apply(pix, 1)
	inv.Apply(pix, 1)
	for i := 0; i < 3; i++ {
		if math.Abs(float64(pix[i]-want[i])) > 1e-5 {
			t.Errorf("channel %d: round trip %g, want %g", i, pix[i], want[i])
		}
	}
	if !fwd.IsInverse(inv) {
		t.Error("IsInverse should accept the style-flipped op")
	}
}
