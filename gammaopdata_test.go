package goocio

import (
	"math"
	"strings"
	"testing"
)

func TestGammaValidateBounds(t *testing.T) {
	low := NewGammaOpData(GammaStyleBasicFwd, [4]float64{0.001, 1, 1, 1}, [4]float64{})
	if err := low.Validate(); err == nil {
		t.Error("exponent below the lower bound must be rejected")
	}
	high := NewGammaOpData(GammaStyleBasicFwd, [4]float64{1, 200, 1, 1}, [4]float64{})
	if err := high.Validate(); err == nil {
		t.Error("exponent above the upper bound must be rejected")
	}
	ok := NewGammaOpData(GammaStyleBasicFwd, [4]float64{2.4, 2.4, 2.4, 1}, [4]float64{})
	if err := ok.Validate(); err != nil {
		t.Errorf("2.4 should validate: %v", err)
	}
}

func TestGammaBasicRoundTrip(t *testing.T) {
	fwd := NewGammaOpData(GammaStyleBasicFwd, [4]float64{2.2, 2.2, 2.2, 1}, [4]float64{})
	inv, err := fwd.Inverse()
	if err != nil {
		t.Fatal(err)
	}
	pix := []float32{0.1, 0.5, 0.9, 1}
	want := append([]float32(nil), pix...)
	fwd.Apply(pix, 1)
	inv.Apply(pix, 1)
	for i := 0; i < 3; i++ {
		if math.Abs(float64(pix[i]-want[i])) > 1e-5 {
			t.Errorf("channel %d: round trip %g, want %g", i, pix[i], want[i])
		}
	}
}

func TestGammaMoncurveRoundTrip(t *testing.T) {
	// sRGB-like parameters.
	fwd := NewGammaOpData(GammaStyleMoncurveFwd,
		[4]float64{2.4, 2.4, 2.4, 1},
		[4]float64{0.055, 0.055, 0.055, 0})
	inv, err := fwd.Inverse()
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range []float32{0.0, 0.002, 0.04, 0.5, 1.0} {
		pix := []float32{v, v, v, 1}
		fwd.Apply(pix, 1)
		inv.Apply(pix, 1)
		if math.Abs(float64(pix[0])-float64(v)) > 1e-5 {
			t.Errorf("sample %g: round trip %g", v, pix[0])
		}
	}
}

func TestGammaComposeMultipliesExponents(t *testing.T) {
	a := NewGammaOpData(GammaStyleBasicFwd, [4]float64{2, 2, 2, 1}, [4]float64{})
	b := NewGammaOpData(GammaStyleBasicFwd, [4]float64{1.5, 1.5, 1.5, 1}, [4]float64{})
	var out OpVec
	if err := a.Compose(b, &out); err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 composed op, got %d", len(out))
	}
	g := out[0].Data().(*GammaOpData)
	if math.Abs(g.gamma[0]-3.0) > 1e-9 {
		t.Errorf("expected exponent 3, got %g", g.gamma[0])
	}
}

func TestGammaMoncurveDoesNotCompose(t *testing.T) {
	a := NewGammaOpData(GammaStyleMoncurveFwd,
		[4]float64{2.4, 2.4, 2.4, 1}, [4]float64{0.055, 0.055, 0.055, 0})
	b := NewGammaOpData(GammaStyleBasicFwd, [4]float64{2, 2, 2, 1}, [4]float64{})
	if a.MayCompose(b) {
		t.Error("moncurve styles must not compose")
	}
	var out OpVec
	err := a.Compose(b, &out)
	if err == nil || !strings.Contains(err.Error(), "cannot compose") {
		t.Errorf("expected compose rejection, got %v", err)
	}
}
