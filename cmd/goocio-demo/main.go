package main

import (
	"fmt"
	"os"

	ocio "github.com/yzigangirova/ocio-go"
	"github.com/yzigangirova/ocio-go/mem"
)

func main() {
	must(exampleCPUPipeline())
	must(exampleDynamicExposure())
	must(exampleLegacyShader())
	fmt.Println("\nAll examples finished.")
}

func must(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// exampleCPUPipeline builds a small grading chain, optimizes it for an
// 8-bit source, and runs a few pixels through it.
func exampleCPUPipeline() error {
	mm := mem.NewManager()

	var ops ocio.OpVec
	if err := ocio.CreateScaleOp(&ops, [4]float64{1.2, 1.1, 0.95, 1.0}, ocio.TransformDirForward); err != nil {
		return err
	}
	cdl := ocio.NewCDLOpData(ocio.CDLStyleV12Fwd)
	if err := cdl.SetSlope([3]float64{1.05, 1.0, 0.98}); err != nil {
		return err
	}
	if err := cdl.SetOffset([3]float64{0.01, 0.0, -0.01}); err != nil {
		return err
	}
	if err := cdl.SetPower([3]float64{1.1, 1.0, 0.9}); err != nil {
		return err
	}
	if err := cdl.SetSaturation(1.15); err != nil {
		return err
	}
	if err := ocio.CreateCDLOp(&ops, cdl, ocio.TransformDirForward); err != nil {
		return err
	}
	rng := ocio.NewRangeOpData(0.0, 1.0, 0.0, 1.0)
	if err := ocio.CreateRangeOp(&ops, rng, ocio.TransformDirForward); err != nil {
		return err
	}

	proc := ocio.NewCPUProcessor(mm)
	if err := proc.Finalize(ops, ocio.BitDepthUint8, ocio.OptimizationDefault); err != nil {
		return err
	}

	pixels := []float32{
		0.18, 0.18, 0.18, 1.0,
		0.9, 0.5, 0.1, 1.0,
	}
	if err := proc.Apply(pixels, 2); err != nil {
		return err
	}
	id, err := proc.GetCacheID()
	if err != nil {
		return err
	}
	fmt.Println("CPU pipeline:", id)
	fmt.Printf("  grey  -> %.4f %.4f %.4f\n", pixels[0], pixels[1], pixels[2])
	fmt.Printf("  amber -> %.4f %.4f %.4f\n", pixels[4], pixels[5], pixels[6])
	return nil
}

// exampleDynamicExposure adjusts a shared exposure handle after
// finalization and shows the output following it.
func exampleDynamicExposure() error {
	mm := mem.NewManager()

	var ops ocio.OpVec
	ec := ocio.NewExposureContrastOpData()
	ec.GetExposureProperty().MakeDynamic()
	if err := ocio.CreateExposureContrastOp(&ops, ec, ocio.TransformDirForward); err != nil {
		return err
	}

	proc := ocio.NewCPUProcessor(mm)
	if err := proc.Finalize(ops, ocio.BitDepthF32, ocio.OptimizationDefault); err != nil {
		return err
	}
	prop, err := proc.GetDynamicProperty(ocio.DynamicPropertyExposure)
	if err != nil {
		return err
	}

	for _, stops := range []float64{0.0, 1.0, -1.0} {
		prop.SetValue(stops)
		px := []float32{0.18, 0.18, 0.18, 1.0}
		if err := proc.Apply(px, 1); err != nil {
			return err
		}
		fmt.Printf("exposure %+.1f stop: grey -> %.4f\n", stops, px[0])
	}
	return nil
}

// exampleLegacyShader extracts GLSL for a constrained target whose only
// lookup resource is one 32^3 3D texture.
func exampleLegacyShader() error {
	mm := mem.NewManager()

	var ops ocio.OpVec
	if err := ocio.CreateScaleOp(&ops, [4]float64{1.1, 1.1, 1.1, 1.0}, ocio.TransformDirForward); err != nil {
		return err
	}
	lut := ocio.NewLut1DOpData(17)
	tbl := lut.GetTable()
	for i := 0; i < 17; i++ {
		v := float32(i) / 16.0
		g := v * v
		tbl[3*i+0] = g
		tbl[3*i+1] = g
		tbl[3*i+2] = g
	}
	if err := ocio.CreateLut1DOp(&ops, lut, ocio.TransformDirForward); err != nil {
		return err
	}

	proc := ocio.NewGPUProcessor(mm)
	if err := proc.Finalize(ops, ocio.OptimizationDefault); err != nil {
		return err
	}
	desc := ocio.NewLegacyGpuShaderDesc(ocio.GpuLanguageGLSL13, 32)
	if err := proc.ExtractGpuShaderInfo(desc); err != nil {
		return err
	}
	fmt.Println("legacy shader with", len(desc.GetTextures()), "texture(s):")
	fmt.Println(desc.GetShaderText())
	return nil
}
