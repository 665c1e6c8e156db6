package goocio

import (
	"math"
	"strings"
	"testing"

	"github.com/yzigangirova/ocio-go/mem"
)

func TestCPUProcessorFinalizeAndApply(t *testing.T) {
	mm := mem.NewManager()
	var ops OpVec
	if err := CreateScaleOp(&ops, [4]float64{2, 2, 2, 1}, TransformDirForward); err != nil {
		t.Fatal(err)
	}

	proc := NewCPUProcessor(mm)
	if err := proc.Finalize(ops, BitDepthF32, OptimizationDefault); err != nil {
		t.Fatal(err)
	}
	pix := []float32{0.25, 0.5, 0.1, 1}
	if err := proc.Apply(pix, 1); err != nil {
		t.Fatal(err)
	}
	if math.Abs(float64(pix[0])-0.5) > 1e-6 {
		t.Errorf("expected 0.5, got %g", pix[0])
	}

	id, err := proc.GetCacheID()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(id, "<CPUProcessor") {
		t.Errorf("unexpected cache id %q", id)
	}
}

func TestCPUProcessorRequiresFinalize(t *testing.T) {
	proc := NewCPUProcessor(mem.NewManager())
	if err := proc.Apply([]float32{0, 0, 0, 1}, 1); err == nil {
		t.Error("apply before finalize must fail")
	}
	if _, err := proc.GetCacheID(); err == nil {
		t.Error("cache id before finalize must fail")
	}
}

func TestCPUProcessorFinalizeOnce(t *testing.T) {
	mm := mem.NewManager()
	var ops OpVec
	if err := CreateScaleOp(&ops, [4]float64{2, 2, 2, 1}, TransformDirForward); err != nil {
		t.Fatal(err)
	}

	proc := NewCPUProcessor(mm)
	if err := proc.Finalize(ops, BitDepthF32, OptimizationDefault); err != nil {
		t.Fatal(err)
	}
	first, _ := proc.GetCacheID()

	var other OpVec
	if err := CreateScaleOp(&other, [4]float64{3, 3, 3, 1}, TransformDirForward); err != nil {
		t.Fatal(err)
	}
	if err := proc.Finalize(other, BitDepthF32, OptimizationDefault); err != nil {
		t.Fatal(err)
	}
	second, _ := proc.GetCacheID()
	if first != second {
		t.Error("a second finalize must not change the processor")
	}
}

func TestCPUProcessorCancelledPipelineIsNoOp(t *testing.T) {
	mm := mem.NewManager()
	var ops OpVec
	if err := CreateScaleOp(&ops, [4]float64{2, 2, 2, 1}, TransformDirForward); err != nil {
		t.Fatal(err)
	}
	if err := CreateScaleOp(&ops, [4]float64{2, 2, 2, 1}, TransformDirInverse); err != nil {
		t.Fatal(err)
	}

	proc := NewCPUProcessor(mm)
	if err := proc.Finalize(ops, BitDepthF32, OptimizationDefault); err != nil {
		t.Fatal(err)
	}
	if !proc.IsNoOp() {
		t.Error("a fully cancelled pipeline should report no-op")
	}
	pix := []float32{0.3, 0.6, 0.9, 1}
	if err := proc.Apply(pix, 1); err != nil {
		t.Fatal(err)
	}
	if pix[0] != 0.3 || pix[1] != 0.6 || pix[2] != 0.9 {
		t.Errorf("empty pipeline changed pixels: %v", pix[:3])
	}
}

func TestCPUProcessorInvalidOpRejected(t *testing.T) {
	mm := mem.NewManager()
	var ops OpVec
	ff := NewFixedFunctionOpData(FixedFunctionRec2100Surround, []float64{120})
	if err := CreateFixedFunctionOp(&ops, ff, TransformDirForward); err != nil {
		t.Fatal(err)
	}
	proc := NewCPUProcessor(mm)
	if err := proc.Finalize(ops, BitDepthF32, OptimizationDefault); err == nil {
		t.Error("an out-of-bound parameter must fail finalization")
	}
}
