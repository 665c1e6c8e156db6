package goocio

import (
	"math"
	"testing"

	"github.com/yzigangirova/ocio-go/mem"
)

func TestSharedExposureHandleDrivesEveryOp(t *testing.T) {
	mm := mem.NewManager()
	var ops OpVec
	for i := 0; i < 2; i++ {
		ec := NewExposureContrastOpData()
		ec.GetExposureProperty().MakeDynamic()
		if err := CreateExposureContrastOp(&ops, ec, TransformDirForward); err != nil {
			t.Fatal(err)
		}
	}

	proc := NewCPUProcessor(mm)
	if err := proc.Finalize(ops, BitDepthF32, OptimizationDefault); err != nil {
		t.Fatal(err)
	}
	prop, err := proc.GetDynamicProperty(DynamicPropertyExposure)
	if err != nil {
		t.Fatal(err)
	}

	prop.SetValue(1)
	pix := []float32{0.18, 0.18, 0.18, 1}
	if err := proc.Apply(pix, 1); err != nil {
		t.Fatal(err)
	}
	// Both ops share the handle, so one stop each doubles twice.
	if math.Abs(float64(pix[0])-0.72) > 1e-5 {
		t.Errorf("expected 0.72 after two shared +1 stops, got %g", pix[0])
	}
}

func TestDynamicPropertyLookupMiss(t *testing.T) {
	mm := mem.NewManager()
	var ops OpVec
	ec := NewExposureContrastOpData()
	ec.GetExposureProperty().MakeDynamic()
	if err := CreateExposureContrastOp(&ops, ec, TransformDirForward); err != nil {
		t.Fatal(err)
	}

	proc := NewCPUProcessor(mm)
	if err := proc.Finalize(ops, BitDepthF32, OptimizationDefault); err != nil {
		t.Fatal(err)
	}
	if _, err := proc.GetDynamicProperty(DynamicPropertyContrast); err == nil {
		t.Error("a property no op exposes must be a lookup error")
	}
}

func TestExposureContrastApplyPivot(t *testing.T) {
	d := NewExposureContrastOpData()
	d.SetContrast(1.2)
	pix := []float32{0.18, 0.18, 0.18, 1}
	d.Apply(pix, 1)
	// At the pivot the contrast curve is a fixed point.
	if math.Abs(float64(pix[0])-0.18) > 1e-5 {
		t.Errorf("pivot value should be unchanged, got %g", pix[0])
	}
}

func TestExposureContrastInverseWhenStatic(t *testing.T) {
	d := NewExposureContrastOpData()
	d.SetExposure(0.5)
	d.SetContrast(1.1)
	inv, err := d.Inverse()
	if err != nil {
		t.Fatal(err)
	}
	pix := []float32{0.3, 0.3, 0.3, 1}
	d.Apply(pix, 1)
	inv.Apply(pix, 1)
	if math.Abs(float64(pix[0])-0.3) > 1e-5 {
		t.Errorf("round trip should restore 0.3, got %g", pix[0])
	}

	dyn := NewExposureContrastOpData()
	dyn.GetExposureProperty().MakeDynamic()
	if _, err := dyn.Inverse(); err == nil {
		t.Error("a dynamic op has no fixed inverse")
	}
}
