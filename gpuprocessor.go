package goocio

import (
	"fmt"
	"strings"
	"sync"

	"github.com/yzigangirova/ocio-go/mem"
)

// GPUProcessor owns a finalized op sequence and turns it into shader source
// for a target description. As with the CPU side, Finalize runs once under
// the mutex and everything after it is read-only.
type GPUProcessor struct {
	mu        sync.Mutex
	finalized bool

	mm      mem.Manager
	ops     OpVec
	cacheID string
}

// NewGPUProcessor returns an empty processor using the given allocator for
// lattice and scratch buffers.
func NewGPUProcessor(mm mem.Manager) *GPUProcessor {
	return &GPUProcessor{mm: mm}
}

// Finalize optimizes and finalizes rawOps for shader extraction. Shader
// work runs at 32-bit float depth, so no lookup table is baked here; any
// baking is decided per target in ExtractGpuShaderInfo.
func (p *GPUProcessor) Finalize(rawOps OpVec, oFlags OptimizationFlags) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.finalized {
		return nil
	}

	ops := rawOps.Clone()
	for _, op := range ops {
		if err := op.Data().Validate(); err != nil {
			return err
		}
	}
	if err := OptimizeOpVec(p.mm, &ops, BitDepthF32, oFlags); err != nil {
		return err
	}
	if err := FinalizeOpVec(ops); err != nil {
		return err
	}
	UnifyDynamicProperties(ops)

	var sb strings.Builder
	sb.WriteString("<GPUProcessor")
	for _, op := range ops {
		fmt.Fprintf(&sb, " %s", op.GetCacheID())
	}
	sb.WriteString(">")

	p.ops = ops
	p.cacheID = sb.String()
	p.finalized = true
	return nil
}

// GetCacheID returns the identity fixed by Finalize.
func (p *GPUProcessor) GetCacheID() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.finalized {
		return "", throwf("the processor must be finalized before use")
	}
	return p.cacheID, nil
}

// partitionGPUOps splits the sequence into prefix, interior, suffix where
// the interior is the minimal contiguous span covering every op the target
// cannot express inline. When several minimal spans would do, the leftmost
// one is chosen.
func partitionGPUOps(ops OpVec, shaderDesc *GpuShaderDesc) (prefix, interior, suffix OpVec) {
	lo, hi := -1, -1
	for i, op := range ops {
		if !op.supportsGpuShader(shaderDesc) {
			if lo < 0 {
				lo = i
			}
			hi = i
		}
	}
	if lo < 0 {
		return ops, nil, nil
	}
	return ops[:lo], ops[lo : hi+1], ops[hi+1:]
}

// Create3DLut bakes the given ops into a 3D LUT of the given edge length by
// running them over an identity lattice and keeping the RGB result.
func Create3DLut(mm mem.Manager, ops OpVec, edgeLen int) (*Lut3DOpData, error) {
	if err := FinalizeOpVec(ops); err != nil {
		return nil, err
	}
	img := GenerateIdentityLut3D(mm, edgeLen)
	numPixels := edgeLen * edgeLen * edgeLen
	ops.Apply(img, numPixels)

	lut := NewLut3DOpData(edgeLen)
	for i := 0; i < numPixels; i++ {
		lut.lattice[3*i+0] = img[4*i+0]
		lut.lattice[3*i+1] = img[4*i+1]
		lut.lattice[3*i+2] = img[4*i+2]
	}
	mem.Recycle(mm, img)
	return lut, nil
}

// ExtractGpuShaderInfo generates the complete shader program for the target
// description. A target that cannot inline every op kind gets the
// non-inlinable interior baked into a single 3D LUT first, and the spliced
// sequence is re-optimized as fresh input before code generation.
func (p *GPUProcessor) ExtractGpuShaderInfo(shaderDesc *GpuShaderDesc) error {
	p.mu.Lock()
	finalized := p.finalized
	p.mu.Unlock()
	if !finalized {
		return throwf("the processor must be finalized before use")
	}

	ops := p.ops
	prefix, interior, suffix := partitionGPUOps(ops, shaderDesc)
	if len(interior) > 0 {
		lut, err := Create3DLut(p.mm, interior.Clone(), shaderDesc.GetEdgeLen())
		if err != nil {
			return err
		}
		spliced := append(OpVec{}, prefix...)
		if err := CreateLut3DOp(&spliced, lut, TransformDirForward); err != nil {
			return err
		}
		spliced = append(spliced, suffix...)
		if err := OptimizeOpVec(p.mm, &spliced, BitDepthF32, OptimizationDefault); err != nil {
			return err
		}
		if err := FinalizeOpVec(spliced); err != nil {
			return err
		}
		ops = spliced
	}

	writeShaderHeader(shaderDesc)
	for _, op := range ops {
		if err := op.ExtractGpuShaderInfo(shaderDesc); err != nil {
			return err
		}
	}
	writeShaderFooter(shaderDesc)
	shaderDesc.Finalize()

	if IsDebugLoggingEnabled() {
		LogDebug("GPU shader program:\n%s", shaderDesc.GetShaderText())
	}
	return nil
}

// writeShaderHeader opens the processing function and declares the local
// pixel variable from the function argument.
func writeShaderHeader(shaderDesc *GpuShaderDesc) {
	ss := NewGpuShaderText(shaderDesc.GetLanguage())
	ss.NewLine("")
	ss.NewLine("// Declaration of the OCIO shader function")
	ss.NewLine("")
	ss.NewLine("%s %s(in %s inPixel)", ss.Vec4fKeyword(),
		shaderDesc.GetFunctionName(), ss.Vec4fKeyword())
	ss.NewLine("{")
	ss.Indent()
	ss.NewLine("%s %s = inPixel;", ss.Vec4fKeyword(), shaderDesc.GetPixelName())
	shaderDesc.AddToFunctionShaderCode(ss.String())
}

// writeShaderFooter returns the local pixel variable and closes the
// function.
func writeShaderFooter(shaderDesc *GpuShaderDesc) {
	ss := NewGpuShaderText(shaderDesc.GetLanguage())
	ss.Indent()
	ss.NewLine("")
	ss.NewLine("return %s;", shaderDesc.GetPixelName())
	ss.Dedent()
	ss.NewLine("}")
	shaderDesc.AddToFunctionShaderCode(ss.String())
}
