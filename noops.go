package goocio

import "fmt"

// NoOpData is a pure bookkeeping stage; it never touches the buffer.
type NoOpData struct {
	cacheID string
}

func NewNoOpData() *NoOpData { return &NoOpData{} }

func (d *NoOpData) GetType() OpType               { return OpTypeNoOp }
func (d *NoOpData) Validate() error               { return nil }
func (d *NoOpData) IsIdentity() bool              { return true }
func (d *NoOpData) IsNoOp() bool                  { return true }
func (d *NoOpData) HasChannelCrosstalk() bool     { return false }
func (d *NoOpData) IsInverse(other OpData) bool   { _, ok := other.(*NoOpData); return ok }
func (d *NoOpData) Inverse() (OpData, error) { return d.Clone(), nil }
func (d *NoOpData) Clone() OpData                 { return &NoOpData{} }
func (d *NoOpData) Apply(rgba []float32, n int) {}
func (d *NoOpData) GetCacheID() string            { return d.cacheID }

func (d *NoOpData) Finalize() error {
	d.cacheID = "NoOp"
	return nil
}

func (d *NoOpData) ExtractGpuShader(shaderDesc *GpuShaderDesc) error { return nil }

// AllocationKind hints how a float image should be quantized or compressed
// when handed to a constrained target.
type AllocationKind int

const (
	AllocationUniform AllocationKind = iota
	AllocationLg2
)

// AllocationData carries an allocation hint through the pipeline. It does
// no processing itself; GPU front ends may consult it when choosing a LUT
// sampling domain.
type AllocationData struct {
	allocation AllocationKind
	vars       []float64
	cacheID    string
}

func NewAllocationData(allocation AllocationKind, vars []float64) *AllocationData {
	d := &AllocationData{allocation: allocation}
	d.vars = append(d.vars, vars...)
	return d
}

func (d *AllocationData) GetType() OpType { return OpTypeAllocation }

func (d *AllocationData) GetAllocation() AllocationKind { return d.allocation }
func (d *AllocationData) GetVars() []float64            { return d.vars }

func (d *AllocationData) Validate() error {
	if d.allocation == AllocationLg2 && len(d.vars) != 2 && len(d.vars) != 3 {
		return fmt.Errorf("lg2 allocation must have 2 or 3 vars but %d found", len(d.vars))
	}
	return nil
}

func (d *AllocationData) IsIdentity() bool          { return true }
func (d *AllocationData) IsNoOp() bool              { return true }
func (d *AllocationData) HasChannelCrosstalk() bool { return false }

func (d *AllocationData) IsInverse(other OpData) bool {
	_, ok := other.(*AllocationData)
	return ok
}

func (d *AllocationData) Inverse() (OpData, error) { return d.Clone(), nil }

func (d *AllocationData) Clone() OpData {
	c := &AllocationData{allocation: d.allocation}
	c.vars = append(c.vars, d.vars...)
	return c
}

func (d *AllocationData) Finalize() error {
	if err := d.Validate(); err != nil {
		return err
	}
	d.cacheID = fmt.Sprintf("Allocation %d %.17g", d.allocation, d.vars)
	return nil
}

func (d *AllocationData) GetCacheID() string          { return d.cacheID }
func (d *AllocationData) Apply(rgba []float32, n int) {}

func (d *AllocationData) ExtractGpuShader(shaderDesc *GpuShaderDesc) error { return nil }

// CreateNoOp appends a bookkeeping no-op.
func CreateNoOp(ops *OpVec) {
	*ops = append(*ops, NewOp(NewNoOpData()))
}

// CreateAllocationOp appends an allocation hint op.
func CreateAllocationOp(ops *OpVec, alloc *AllocationData) {
	*ops = append(*ops, NewOp(alloc))
}
