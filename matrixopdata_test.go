package goocio

import (
	"math"
	"testing"
)

func TestMatrixInverseRoundTrip(t *testing.T) {
	d := NewScaleOpData([4]float64{2, 4, 8, 1})
	d.SetArrayValue(1, 0.5) // off-diagonal term
	d.SetOffsetValue(0, 0.25)

	inv, err := d.Inverse()
	if err != nil {
		t.Fatal(err)
	}

	pix := []float32{0.3, 0.7, 0.2, 1.0}
	want := append([]float32(nil), pix...)
	d.Apply(pix, 1)
	inv.Apply(pix, 1)
	for i := range pix {
		if math.Abs(float64(pix[i]-want[i])) > 1e-6 {
			t.Errorf("channel %d: round trip %g, want %g", i, pix[i], want[i])
		}
	}
	if !d.IsInverse(inv) {
		t.Error("IsInverse should accept the computed inverse")
	}
}

func TestMatrixComposeMatchesSequentialApply(t *testing.T) {
	a := NewScaleOpData([4]float64{1.5, 0.5, 2, 1})
	a.SetOffsetValue(1, 0.1)
	b := NewScaleOpData([4]float64{0.8, 1.2, 0.4, 1})
	b.SetOffsetValue(0, -0.05)

	var combined OpVec
	if err := a.Compose(b, &combined); err != nil {
		t.Fatal(err)
	}
	if len(combined) != 1 {
		t.Fatalf("expected 1 combined op, got %d", len(combined))
	}

	pix := []float32{0.25, 0.5, 0.75, 1.0}
	want := append([]float32(nil), pix...)
	a.Apply(want, 1)
	b.Apply(want, 1)
	combined.Apply(pix, 1)
	for i := range pix {
		if math.Abs(float64(pix[i]-want[i])) > 2e-5 {
			t.Errorf("channel %d: composed %g, sequential %g", i, pix[i], want[i])
		}
	}
}

func TestMatrixComposeCancelsToIdentity(t *testing.T) {
	a := NewScaleOpData([4]float64{2, 2, 2, 1})
	inv, err := a.Inverse()
	if err != nil {
		t.Fatal(err)
	}
	var combined OpVec
	if err := a.Compose(inv.(*MatrixOpData), &combined); err != nil {
		t.Fatal(err)
	}
	if len(combined) != 0 {
		t.Errorf("identity composition should produce no ops, got %d", len(combined))
	}
}

func TestMatrixIdentityAndCrosstalk(t *testing.T) {
	d := NewMatrixOpData()
	if !d.IsIdentity() || !d.IsNoOp() {
		t.Error("fresh matrix should be an identity no-op")
	}
	if d.HasChannelCrosstalk() {
		t.Error("diagonal matrix has no crosstalk")
	}
	d.SetArrayValue(1, 0.3)
	if !d.HasChannelCrosstalk() {
		t.Error("off-diagonal term must report crosstalk")
	}
}
