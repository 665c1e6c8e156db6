package goocio

import (
	"math"
	"testing"

	"github.com/yzigangirova/ocio-go/mem"
)

func TestOptimizeInversePairCancels(t *testing.T) {
	mm := mem.NewManager()
	var ops OpVec
	if err := CreateScaleOp(&ops, [4]float64{2, 2, 2, 1}, TransformDirForward); err != nil {
		t.Fatal(err)
	}
	if err := CreateScaleOp(&ops, [4]float64{2, 2, 2, 1}, TransformDirInverse); err != nil {
		t.Fatal(err)
	}
	if err := OptimizeOpVec(mm, &ops, BitDepthF32, OptimizationNone); err != nil {
		t.Fatal(err)
	}
	if len(ops) != 0 {
		t.Errorf("expected empty sequence, got %d ops", len(ops))
	}
}

func TestNestedInversePairsCancelInOnePass(t *testing.T) {
	var ops OpVec
	gamma := NewGammaOpData(GammaStyleBasicFwd,
		[4]float64{2.2, 2.2, 2.2, 1}, [4]float64{})
	if err := CreateScaleOp(&ops, [4]float64{2, 2, 2, 1}, TransformDirForward); err != nil {
		t.Fatal(err)
	}
	if err := CreateGammaOp(&ops, gamma, TransformDirForward); err != nil {
		t.Fatal(err)
	}
	if err := CreateGammaOp(&ops, gamma.Clone().(*GammaOpData), TransformDirInverse); err != nil {
		t.Fatal(err)
	}
	if err := CreateScaleOp(&ops, [4]float64{2, 2, 2, 1}, TransformDirInverse); err != nil {
		t.Fatal(err)
	}

	// A single sweep must collapse the nested pattern thanks to the
	// cursor re-anchoring after each deletion.
	removed := RemoveInverseOps(&ops)
	if removed != 4 || len(ops) != 0 {
		t.Errorf("expected 4 removed and empty sequence, got removed=%d len=%d",
			removed, len(ops))
	}
}

func TestCombineScaleMatrices(t *testing.T) {
	mm := mem.NewManager()
	scales := [][4]float64{
		{2, 0.5, 1.5, 1},
		{0.25, 3, 0.8, 1},
		{1.1, 1.2, 1.3, 1},
	}

	var ops OpVec
	for _, s := range scales {
		if err := CreateScaleOp(&ops, s, TransformDirForward); err != nil {
			t.Fatal(err)
		}
	}
	reference := ops.Clone()

	if err := OptimizeOpVec(mm, &ops, BitDepthF32, OptimizationNone); err != nil {
		t.Fatal(err)
	}
	if len(ops) != 1 {
		t.Fatalf("expected 1 combined op, got %d", len(ops))
	}

	pix := []float32{0.1, 0.6, 0.9, 1.0, -0.3, 0.0, 2.5, 0.5}
	want := append([]float32(nil), pix...)
	reference.Apply(want, 2)
	ops.Apply(pix, 2)
	for i := range pix {
		if math.Abs(float64(pix[i]-want[i])) > 2e-5 {
			t.Errorf("channel %d: combined %g, individual %g", i, pix[i], want[i])
		}
	}
}

func TestSeparablePrefixBakedAt8Bit(t *testing.T) {
	mm := mem.NewManager()
	var ops OpVec
	gamma := NewGammaOpData(GammaStyleBasicFwd,
		[4]float64{2.2, 2.2, 2.2, 1}, [4]float64{})
	if err := CreateGammaOp(&ops, gamma, TransformDirForward); err != nil {
		t.Fatal(err)
	}
	if err := CreateScaleOp(&ops, [4]float64{0.9, 0.9, 0.9, 1}, TransformDirForward); err != nil {
		t.Fatal(err)
	}
	reference := ops.Clone()

	if err := OptimizeOpVec(mm, &ops, BitDepthUint8, OptimizationDefault); err != nil {
		t.Fatal(err)
	}
	if len(ops) != 1 || ops[0].Data().GetType() != OpTypeLut1D {
		t.Fatalf("expected a single baked Lut1D, got %s", SerializeOpVec(ops, 0))
	}

	// Interior and boundary samples on exact table positions.
	for _, v := range []float32{0, 1.0 / 255, 128.0 / 255, 254.0 / 255, 1} {
		pix := []float32{v, v, v, 1}
		want := []float32{v, v, v, 1}
		reference.Apply(want, 1)
		ops.Apply(pix, 1)
		for c := 0; c < 3; c++ {
			if math.Abs(float64(pix[c]-want[c])) > 2e-5 {
				t.Errorf("sample %g channel %d: baked %g, direct %g", v, c, pix[c], want[c])
			}
		}
	}
}

func TestNoPrefixBakingAtF32(t *testing.T) {
	mm := mem.NewManager()
	var ops OpVec
	gamma := NewGammaOpData(GammaStyleBasicFwd,
		[4]float64{2.2, 2.2, 2.2, 1}, [4]float64{})
	if err := CreateGammaOp(&ops, gamma, TransformDirForward); err != nil {
		t.Fatal(err)
	}
	if err := OptimizeOpVec(mm, &ops, BitDepthF32, OptimizationDefault); err != nil {
		t.Fatal(err)
	}
	if len(ops) != 1 || ops[0].Data().GetType() != OpTypeGamma {
		t.Errorf("float depth must not bake a table, got %s", SerializeOpVec(ops, 0))
	}
}

func TestSingleForwardLutPrefixNotRebaked(t *testing.T) {
	var ops OpVec
	lut := NewLut1DOpData(33)
	if err := CreateLut1DOp(&ops, lut, TransformDirForward); err != nil {
		t.Fatal(err)
	}
	if n := FindSeparablePrefix(ops); n != 0 {
		t.Errorf("a lone forward Lut1D gains nothing from baking, got prefix %d", n)
	}
}

func TestCheapOnlyPrefixNotBaked(t *testing.T) {
	var ops OpVec
	if err := CreateScaleOp(&ops, [4]float64{2, 2, 2, 1}, TransformDirForward); err != nil {
		t.Fatal(err)
	}
	rng := NewRangeOpData(0, 1, 0, 1)
	if err := CreateRangeOp(&ops, rng, TransformDirForward); err != nil {
		t.Fatal(err)
	}
	if n := FindSeparablePrefix(ops); n != 0 {
		t.Errorf("matrix and range ops alone must not trigger baking, got prefix %d", n)
	}
}

func TestOptimizeIdempotent(t *testing.T) {
	mm := mem.NewManager()
	var ops OpVec
	if err := CreateScaleOp(&ops, [4]float64{2, 0.5, 1.5, 1}, TransformDirForward); err != nil {
		t.Fatal(err)
	}
	cdl := NewCDLOpData(CDLStyleV12Fwd)
	if err := cdl.SetSaturation(1.2); err != nil {
		t.Fatal(err)
	}
	if err := CreateCDLOp(&ops, cdl, TransformDirForward); err != nil {
		t.Fatal(err)
	}

	if err := OptimizeOpVec(mm, &ops, BitDepthF32, OptimizationDefault); err != nil {
		t.Fatal(err)
	}
	first := SerializeOpVec(ops, 0)
	if err := OptimizeOpVec(mm, &ops, BitDepthF32, OptimizationDefault); err != nil {
		t.Fatal(err)
	}
	if second := SerializeOpVec(ops, 0); second != first {
		t.Errorf("re-optimizing changed the sequence:\n%s\nvs\n%s", first, second)
	}
}

func TestBookkeepingOpsRemoved(t *testing.T) {
	mm := mem.NewManager()
	var ops OpVec
	CreateNoOp(&ops)
	if err := CreateScaleOp(&ops, [4]float64{2, 2, 2, 1}, TransformDirForward); err != nil {
		t.Fatal(err)
	}
	CreateAllocationOp(&ops, NewAllocationData(AllocationLg2, []float64{-8, 8}))

	if err := OptimizeOpVec(mm, &ops, BitDepthF32, OptimizationNone); err != nil {
		t.Fatal(err)
	}
	if len(ops) != 1 || ops[0].Data().GetType() != OpTypeMatrix {
		t.Errorf("expected only the matrix to survive, got %s", SerializeOpVec(ops, 0))
	}
}
