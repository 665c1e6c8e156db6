package goocio

import (
	"fmt"
	"strings"
)

// OpType identifies the closed set of op kinds. The set is known ahead of
// time; run-time extension is deliberately unsupported.
type OpType int

const (
	OpTypeMatrix OpType = iota
	OpTypeRange
	OpTypeCDL
	OpTypeGamma
	OpTypeFixedFunction
	OpTypeExposureContrast
	OpTypeLut1D
	OpTypeLut3D
	OpTypeAllocation
	OpTypeNoOp
)

func (t OpType) String() string {
	switch t {
	case OpTypeMatrix:
		return "Matrix"
	case OpTypeRange:
		return "Range"
	case OpTypeCDL:
		return "CDL"
	case OpTypeGamma:
		return "Gamma"
	case OpTypeFixedFunction:
		return "FixedFunction"
	case OpTypeExposureContrast:
		return "ExposureContrast"
	case OpTypeLut1D:
		return "Lut1D"
	case OpTypeLut3D:
		return "Lut3D"
	case OpTypeAllocation:
		return "Allocation"
	case OpTypeNoOp:
		return "NoOp"
	}
	return "Unknown"
}

// OpData is the immutable, validated parameter payload of one op kind.
// Implementations validate their own parameter domain on construction and
// after every mutating setter; Finalize validates once more and caches a
// deterministic identity string over type, parameters and style.
type OpData interface {
	GetType() OpType

	Validate() error
	Finalize() error
	GetCacheID() string

	// IsIdentity reports whether the parameters produce a no-effect
	// transform. IsNoOp additionally requires that no clamping is implied;
	// a clamping-style identity still alters out-of-range pixels.
	IsIdentity() bool
	IsNoOp() bool

	// HasChannelCrosstalk reports whether R, G and B are mixed. Separable
	// ops (no crosstalk) qualify for the prefix LUT baking.
	HasChannelCrosstalk() bool

	IsInverse(other OpData) bool
	Inverse() (OpData, error)
	Clone() OpData

	// Apply processes numPixels RGBA float32 pixels in place. Channel
	// independent kinds leave alpha untouched unless defined otherwise.
	Apply(rgba []float32, numPixels int)

	// ExtractGpuShader appends this op's shader code to the description.
	ExtractGpuShader(shaderDesc *GpuShaderDesc) error
}

// dynamicOpData is implemented by kinds that expose runtime-mutable values.
type dynamicOpData interface {
	IsDynamic() bool
	HasDynamicProperty(ptype DynamicPropertyType) bool
	GetDynamicProperty(ptype DynamicPropertyType) (*DynamicProperty, error)
	ReplaceDynamicProperty(ptype DynamicPropertyType, prop *DynamicProperty) bool
}

// Op is one pipeline stage: an OpData plus processing direction and declared
// bit-depth context. Ops are mutable until Finalize; afterwards the cache id
// is fixed and the op must be treated as read-only.
type Op struct {
	data      OpData
	dir       TransformDirection
	inDepth   BitDepth
	outDepth  BitDepth
	cacheID   string
	finalized bool
}

// NewOp wraps data in a forward op at F32 depth. Kind constructors
// (CreateMatrixOp etc.) fold an inverse direction into the data whenever the
// kind has an algebraic inverse; only the LUT kinds keep a direction.
func NewOp(data OpData) *Op {
	return &Op{data: data, inDepth: BitDepthF32, outDepth: BitDepthF32}
}

func (o *Op) Data() OpData { return o.data }

func (o *Op) GetDirection() TransformDirection { return o.dir }

func (o *Op) GetInputBitDepth() BitDepth  { return o.inDepth }
func (o *Op) GetOutputBitDepth() BitDepth { return o.outDepth }

func (o *Op) SetInputBitDepth(in BitDepth)   { o.inDepth = in }
func (o *Op) SetOutputBitDepth(out BitDepth) { o.outDepth = out }

func (o *Op) IsNoOp() bool { return o.data.IsNoOp() }

func (o *Op) IsSameType(other *Op) bool {
	return o.data.GetType() == other.data.GetType()
}

func (o *Op) HasChannelCrosstalk() bool { return o.data.HasChannelCrosstalk() }

// IsDynamic reports whether the op references a runtime-mutable property.
func (o *Op) IsDynamic() bool {
	if d, ok := o.data.(dynamicOpData); ok {
		return d.IsDynamic()
	}
	return false
}

func (o *Op) HasDynamicProperty(ptype DynamicPropertyType) bool {
	if d, ok := o.data.(dynamicOpData); ok {
		return d.HasDynamicProperty(ptype)
	}
	return false
}

func (o *Op) GetDynamicProperty(ptype DynamicPropertyType) (*DynamicProperty, error) {
	if d, ok := o.data.(dynamicOpData); ok {
		return d.GetDynamicProperty(ptype)
	}
	return nil, throwf("op %s exposes no dynamic properties", o.data.GetType())
}

// Apply processes numPixels RGBA pixels in place.
func (o *Op) Apply(rgba []float32, numPixels int) {
	if o.dir == TransformDirInverse {
		// Only the LUT kinds carry a direction; everything else had the
		// inversion folded into its data at creation.
		switch d := o.data.(type) {
		case *Lut1DOpData:
			d.ApplyInverse(rgba, numPixels)
			return
		}
	}
	o.data.Apply(rgba, numPixels)
}

// IsInverse reports whether applying other right after o is an exact
// identity. Both ops must be the same type; the caller checks that first.
func (o *Op) IsInverse(other *Op) bool {
	if !o.IsSameType(other) {
		return false
	}
	switch d := o.data.(type) {
	case *Lut1DOpData:
		return o.dir != other.dir && d.HasSameArray(other.data.(*Lut1DOpData))
	case *Lut3DOpData:
		return false // a sampled lattice has no exact inverse
	default:
		_ = d
	}
	return o.data.IsInverse(other.data)
}

// CanCombineWith reports whether o and second may be replaced by the result
// of CombineWith.
func (o *Op) CanCombineWith(second *Op) bool {
	switch d := o.data.(type) {
	case *MatrixOpData:
		_, ok := second.data.(*MatrixOpData)
		return ok
	case *GammaOpData:
		g2, ok := second.data.(*GammaOpData)
		return ok && d.MayCompose(g2)
	}
	return false
}

// CombineWith appends 0..n replacement ops for the pair (o, second) to out.
// Zero ops signals that the combination cancelled to an identity. Calling
// this without checking CanCombineWith is a programming error.
func (o *Op) CombineWith(second *Op, out *OpVec) error {
	if !o.CanCombineWith(second) {
		return throwf("cannot combine %s op with %s op",
			o.data.GetType(), second.data.GetType())
	}
	switch d := o.data.(type) {
	case *MatrixOpData:
		return d.Compose(second.data.(*MatrixOpData), out)
	case *GammaOpData:
		return d.Compose(second.data.(*GammaOpData), out)
	}
	return throwf("no combine rule for %s op", o.data.GetType())
}

// Clone deep-copies the op; the clone is unfinalized.
func (o *Op) Clone() *Op {
	return &Op{
		data:     o.data.Clone(),
		dir:      o.dir,
		inDepth:  o.inDepth,
		outDepth: o.outDepth,
	}
}

// Finalize validates the op data, fixes its cache id and freezes the op.
func (o *Op) Finalize() error {
	if o.finalized {
		return nil
	}
	if err := o.data.Finalize(); err != nil {
		return err
	}
	o.cacheID = fmt.Sprintf("<Op %s %s in=%d out=%d>",
		o.data.GetCacheID(), o.dir, o.inDepth, o.outDepth)
	o.finalized = true
	return nil
}

// GetCacheID returns the identity fixed by Finalize.
func (o *Op) GetCacheID() string { return o.cacheID }

// supportsGpuShader reports whether the op can be expressed inline for the
// given description. A legacy target owns a single lookup texture, so every
// sampled LUT stage must be baked into it instead of emitted directly. An
// inverse-direction LUT has no inline generator on any target.
func (o *Op) supportsGpuShader(shaderDesc *GpuShaderDesc) bool {
	t := o.data.GetType()
	if shaderDesc.IsLegacy() && (t == OpTypeLut1D || t == OpTypeLut3D) {
		return false
	}
	if o.dir == TransformDirInverse && (t == OpTypeLut1D || t == OpTypeLut3D) {
		return false
	}
	return true
}

// ExtractGpuShaderInfo appends this op's shader code to the description.
func (o *Op) ExtractGpuShaderInfo(shaderDesc *GpuShaderDesc) error {
	if o.dir == TransformDirInverse {
		switch o.data.GetType() {
		case OpTypeLut1D, OpTypeLut3D:
			return throwf("no GPU code generator for inverse %s op", o.data.GetType())
		}
	}
	return o.data.ExtractGpuShader(shaderDesc)
}

// OpVec is the ordered op sequence; composition order equals application
// order. A mutable sequence is owned by exactly one processor.
type OpVec []*Op

// Apply runs every op over the buffer in order.
func (ops OpVec) Apply(rgba []float32, numPixels int) {
	for _, op := range ops {
		op.Apply(rgba, numPixels)
	}
}

// Clone deep-copies the sequence.
func (ops OpVec) Clone() OpVec {
	out := make(OpVec, 0, len(ops))
	for _, op := range ops {
		out = append(out, op.Clone())
	}
	return out
}

// FinalizeOpVec finalizes every op in the sequence.
func FinalizeOpVec(ops OpVec) error {
	for _, op := range ops {
		if err := op.Finalize(); err != nil {
			return err
		}
	}
	return nil
}

// UnifyDynamicProperties re-points dynamic handles so that all ops exposing
// the same property type share the first op's handle. Handle identity is
// what groups ops when a value changes at run time.
func UnifyDynamicProperties(ops OpVec) {
	firstByType := map[DynamicPropertyType]*DynamicProperty{}
	for _, op := range ops {
		d, ok := op.data.(dynamicOpData)
		if !ok || !d.IsDynamic() {
			continue
		}
		for _, ptype := range []DynamicPropertyType{DynamicPropertyExposure, DynamicPropertyContrast} {
			if !d.HasDynamicProperty(ptype) {
				continue
			}
			if first, seen := firstByType[ptype]; seen {
				d.ReplaceDynamicProperty(ptype, first)
			} else {
				prop, err := d.GetDynamicProperty(ptype)
				if err == nil {
					firstByType[ptype] = prop
				}
			}
		}
	}
}

// SerializeOpVec renders the sequence for debug logging.
func SerializeOpVec(ops OpVec, indent int) string {
	var sb strings.Builder
	pad := strings.Repeat(" ", indent)
	for i, op := range ops {
		fmt.Fprintf(&sb, "%s%d: %s %s", pad, i, op.data.GetType(), op.dir)
		if op.data.IsIdentity() {
			sb.WriteString(" (identity)")
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
