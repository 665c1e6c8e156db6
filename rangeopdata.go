package goocio

import (
	"fmt"
	"math"
)

// RangeEmptyValue marks an unset bound.
const RangeEmptyValue = math.MaxFloat64

// RangeOpData scales and offsets so that [minIn, maxIn] maps onto
// [minOut, maxOut], clamping to the output bounds that are present.
// NaN input is mapped to the lower bound when one is set.
type RangeOpData struct {
	minIn   float64
	maxIn   float64
	minOut  float64
	maxOut  float64
	cacheID string
}

// NewRangeOpData builds a range op; pass RangeEmptyValue for unset bounds.
func NewRangeOpData(minIn, maxIn, minOut, maxOut float64) *RangeOpData {
	return &RangeOpData{minIn: minIn, maxIn: maxIn, minOut: minOut, maxOut: maxOut}
}

func (d *RangeOpData) GetType() OpType { return OpTypeRange }

func (d *RangeOpData) MinIsEmpty() bool { return d.minIn == RangeEmptyValue }
func (d *RangeOpData) MaxIsEmpty() bool { return d.maxIn == RangeEmptyValue }

func (d *RangeOpData) GetMinInValue() float64  { return d.minIn }
func (d *RangeOpData) GetMaxInValue() float64  { return d.maxIn }
func (d *RangeOpData) GetMinOutValue() float64 { return d.minOut }
func (d *RangeOpData) GetMaxOutValue() float64 { return d.maxOut }

func (d *RangeOpData) Validate() error {
	if (d.minIn == RangeEmptyValue) != (d.minOut == RangeEmptyValue) {
		return fmt.Errorf("range op must have both or neither of the low bounds")
	}
	if (d.maxIn == RangeEmptyValue) != (d.maxOut == RangeEmptyValue) {
		return fmt.Errorf("range op must have both or neither of the high bounds")
	}
	if !d.MinIsEmpty() && !d.MaxIsEmpty() {
		if d.maxIn <= d.minIn {
			return fmt.Errorf("range op high input bound %g must exceed low input bound %g",
				d.maxIn, d.minIn)
		}
		if d.maxOut <= d.minOut {
			return fmt.Errorf("range op high output bound %g must exceed low output bound %g",
				d.maxOut, d.minOut)
		}
	}
	return nil
}

// GetScale returns the slope of the affine part.
func (d *RangeOpData) GetScale() float64 {
	if !d.MinIsEmpty() && !d.MaxIsEmpty() {
		return (d.maxOut - d.minOut) / (d.maxIn - d.minIn)
	}
	return 1.0
}

// GetOffset returns the intercept of the affine part.
func (d *RangeOpData) GetOffset() float64 {
	switch {
	case !d.MinIsEmpty():
		return d.minOut - d.GetScale()*d.minIn
	case !d.MaxIsEmpty():
		return d.maxOut - d.maxIn
	}
	return 0.0
}

// Scales reports whether the affine part is not a pass-through.
func (d *RangeOpData) Scales() bool {
	return !closeEnough(d.GetScale(), 1.0) || !closeEnough(d.GetOffset(), 0.0)
}

func (d *RangeOpData) IsIdentity() bool {
	return d.MinIsEmpty() && d.MaxIsEmpty() && !d.Scales()
}

// A range without bounds never clamps, so identity implies no-op.
func (d *RangeOpData) IsNoOp() bool { return d.IsIdentity() }

func (d *RangeOpData) HasChannelCrosstalk() bool { return false }

func (d *RangeOpData) IsInverse(other OpData) bool {
	o, ok := other.(*RangeOpData)
	if !ok {
		return false
	}
	return o.minIn == d.minOut && o.minOut == d.minIn &&
		o.maxIn == d.maxOut && o.maxOut == d.maxIn
}

// Inverse swaps the input and output bounds.
func (d *RangeOpData) Inverse() (OpData, error) {
	if d.MinIsEmpty() && d.MaxIsEmpty() && d.Scales() {
		return nil, throwf("unbounded scaling range op cannot be inverted")
	}
	return NewRangeOpData(d.minOut, d.maxOut, d.minIn, d.maxIn), nil
}

func (d *RangeOpData) Clone() OpData {
	c := *d
	c.cacheID = ""
	return &c
}

func (d *RangeOpData) Finalize() error {
	if err := d.Validate(); err != nil {
		return err
	}
	d.cacheID = fmt.Sprintf("Range %.17g %.17g %.17g %.17g",
		d.minIn, d.maxIn, d.minOut, d.maxOut)
	return nil
}

func (d *RangeOpData) GetCacheID() string { return d.cacheID }

func (d *RangeOpData) Apply(rgba []float32, numPixels int) {
	scale := float32(d.GetScale())
	offset := float32(d.GetOffset())
	hasMin := !d.MinIsEmpty()
	hasMax := !d.MaxIsEmpty()
	lower := float32(d.minOut)
	upper := float32(d.maxOut)

	for idx := 0; idx < numPixels; idx++ {
		p := rgba[idx*4 : idx*4+3]
		for c := 0; c < 3; c++ {
			t := p[c]*scale + offset
			if hasMin {
				// NaNs become the lower bound.
				if !(t >= lower) {
					t = lower
				}
			}
			if hasMax && t > upper {
				t = upper
			}
			p[c] = t
		}
	}
}

func (d *RangeOpData) ExtractGpuShader(shaderDesc *GpuShaderDesc) error {
	ss := NewGpuShaderText(shaderDesc.GetLanguage())
	ss.Indent()
	ss.NewLine("")
	ss.NewLine("// Add a Range processing")
	ss.NewLine("")

	pix := shaderDesc.GetPixelName()
	if d.Scales() {
		scale := d.GetScale()
		offset := d.GetOffset()
		ss.NewLine("%s.rgb = %s.rgb * %s + %s;", pix, pix,
			ss.Vec3fConst(scale, scale, scale),
			ss.Vec3fConst(offset, offset, offset))
	}
	if !d.MinIsEmpty() {
		ss.NewLine("%s.rgb = max(%s, %s.rgb);", pix,
			ss.Vec3fConst(d.minOut, d.minOut, d.minOut), pix)
	}
	if !d.MaxIsEmpty() {
		ss.NewLine("%s.rgb = min(%s, %s.rgb);", pix,
			ss.Vec3fConst(d.maxOut, d.maxOut, d.maxOut), pix)
	}
	shaderDesc.AddToFunctionShaderCode(ss.String())
	return nil
}

// CreateRangeOp appends a range op to ops, folding an inverse direction into
// the bounds.
func CreateRangeOp(ops *OpVec, rng *RangeOpData, dir TransformDirection) error {
	data := rng
	if dir == TransformDirInverse {
		inv, err := rng.Inverse()
		if err != nil {
			return err
		}
		data = inv.(*RangeOpData)
	}
	*ops = append(*ops, NewOp(data))
	return nil
}
