package goocio

import (
	"fmt"
	"strings"
	"sync"

	"github.com/yzigangirova/ocio-go/mem"
)

// CPUProcessor owns a finalized op sequence. Finalize runs once under the
// mutex; after it returns, the sequence and cache id are read-only and Apply
// is safe from any number of goroutines. Dynamic property values remain the
// caller's concurrency problem since they are shared by reference.
type CPUProcessor struct {
	mu        sync.Mutex
	finalized bool

	mm      mem.Manager
	ops     OpVec
	cacheID string
}

// NewCPUProcessor returns an empty processor using the given allocator for
// optimization scratch buffers.
func NewCPUProcessor(mm mem.Manager) *CPUProcessor {
	return &CPUProcessor{mm: mm}
}

// Finalize optimizes and finalizes rawOps into this processor. It runs the
// pipeline once; later calls return without touching the sequence, so the
// first caller wins when several threads race to finalize.
func (p *CPUProcessor) Finalize(rawOps OpVec, in BitDepth, oFlags OptimizationFlags) error {
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
	if err := OptimizeOpVec(p.mm, &ops, in, oFlags); err != nil {
		return err
	}
	if err := FinalizeOpVec(ops); err != nil {
		return err
	}
	UnifyDynamicProperties(ops)

	var sb strings.Builder
	sb.WriteString("<CPUProcessor")
	for _, op := range ops {
		fmt.Fprintf(&sb, " %s", op.GetCacheID())
	}
	sb.WriteString(">")

	p.ops = ops
	p.cacheID = sb.String()
	p.finalized = true
	return nil
}

func (p *CPUProcessor) ensureFinalized() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.finalized {
		return throwf("the processor must be finalized before use")
	}
	return nil
}

// Apply runs the finalized sequence over numPixels RGBA float32 pixels in
// place.
func (p *CPUProcessor) Apply(rgba []float32, numPixels int) error {
	if err := p.ensureFinalized(); err != nil {
		return err
	}
	p.ops.Apply(rgba, numPixels)
	return nil
}

// GetDynamicProperty returns the shared handle of the first op exposing the
// given property kind. A kind no op exposes is an error; no default value is
// substituted.
func (p *CPUProcessor) GetDynamicProperty(ptype DynamicPropertyType) (*DynamicProperty, error) {
	if err := p.ensureFinalized(); err != nil {
		return nil, err
	}
	for _, op := range p.ops {
		if op.HasDynamicProperty(ptype) {
			return op.GetDynamicProperty(ptype)
		}
	}
	return nil, throwf("cannot find dynamic property of type %s", ptype)
}

// IsNoOp reports whether the finalized sequence is empty.
func (p *CPUProcessor) IsNoOp() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.finalized && len(p.ops) == 0
}

// HasChannelCrosstalk reports whether any op mixes channels.
func (p *CPUProcessor) HasChannelCrosstalk() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, op := range p.ops {
		if op.HasChannelCrosstalk() {
			return true
		}
	}
	return false
}

// GetCacheID returns the identity fixed by Finalize.
func (p *CPUProcessor) GetCacheID() (string, error) {
	if err := p.ensureFinalized(); err != nil {
		return "", err
	}
	return p.cacheID, nil
}

// GetOps exposes the finalized sequence for shader extraction.
func (p *CPUProcessor) GetOps() OpVec { return p.ops }
