package goocio

import (
	"fmt"
	"math"

	"github.com/yzigangirova/ocio-go/mem"
)

// Lut1DOpData holds a sampled per-channel lookup table of length entries,
// RGB interleaved. A half-domain table has one entry per 16-bit float
// pattern and is indexed by the half bits of the input instead of by a
// normalized [0,1] position.
type Lut1DOpData struct {
	table      []float32 // 3 * length
	length     int
	halfDomain bool
	cacheID    string
}

// NewLut1DOpData returns an identity ramp of the given length.
func NewLut1DOpData(length int) *Lut1DOpData {
	d := &Lut1DOpData{
		table:  make([]float32, 3*length),
		length: length,
	}
	for i := 0; i < length; i++ {
		v := float32(i) / float32(length-1)
		d.table[3*i+0] = v
		d.table[3*i+1] = v
		d.table[3*i+2] = v
	}
	return d
}

func (d *Lut1DOpData) GetType() OpType { return OpTypeLut1D }

func (d *Lut1DOpData) GetLength() int      { return d.length }
func (d *Lut1DOpData) IsHalfDomain() bool  { return d.halfDomain }
func (d *Lut1DOpData) GetTable() []float32 { return d.table }

func (d *Lut1DOpData) Validate() error {
	if d.length < 2 {
		return fmt.Errorf("1D LUT length %d is too small", d.length)
	}
	if len(d.table) != 3*d.length {
		return fmt.Errorf("1D LUT table size %d does not match length %d", len(d.table), d.length)
	}
	if d.halfDomain && d.length != 65536 {
		return fmt.Errorf("half-domain 1D LUT must have 65536 entries, found %d", d.length)
	}
	return nil
}

func (d *Lut1DOpData) IsIdentity() bool {
	if d.halfDomain {
		for i := 0; i < d.length; i++ {
			v := halfToFloat(uint16(i))
			if math.IsNaN(float64(v)) {
				continue
			}
			for c := 0; c < 3; c++ {
				if d.table[3*i+c] != v {
					return false
				}
			}
		}
		return true
	}
	for i := 0; i < d.length; i++ {
		want := float64(i) / float64(d.length-1)
		for c := 0; c < 3; c++ {
			if math.Abs(float64(d.table[3*i+c])-want) > 1e-6 {
				return false
			}
		}
	}
	return true
}

// A normal-domain lookup clamps its input to [0,1], so even an identity
// ramp is not a true no-op; a half-domain identity covers every value.
func (d *Lut1DOpData) IsNoOp() bool {
	return d.halfDomain && d.IsIdentity()
}

func (d *Lut1DOpData) HasChannelCrosstalk() bool { return false }

// HasSameArray reports whether two tables hold identical samples.
func (d *Lut1DOpData) HasSameArray(other *Lut1DOpData) bool {
	if d.length != other.length || d.halfDomain != other.halfDomain {
		return false
	}
	for i := range d.table {
		if d.table[i] != other.table[i] {
			return false
		}
	}
	return true
}

// IsInverse at the data level is always false; a sampled table only cancels
// against the same table applied in the opposite direction, which the op
// layer checks via HasSameArray.
func (d *Lut1DOpData) IsInverse(other OpData) bool { return false }

func (d *Lut1DOpData) Inverse() (OpData, error) {
	return nil, throwf("a sampled 1D LUT has no algebraic inverse; use an inverse-direction op")
}

func (d *Lut1DOpData) Clone() OpData {
	c := &Lut1DOpData{
		table:      make([]float32, len(d.table)),
		length:     d.length,
		halfDomain: d.halfDomain,
	}
	copy(c.table, d.table)
	return c
}

func (d *Lut1DOpData) Finalize() error {
	if err := d.Validate(); err != nil {
		return err
	}
	// Hash-free identity: length, domain kind and a sparse sample of the
	// content plus a full sum keep the id deterministic and cheap.
	var sum float64
	for _, v := range d.table {
		sum += float64(v)
	}
	d.cacheID = fmt.Sprintf("Lut1D len=%d half=%t sum=%.17g v0=%g vn=%g",
		d.length, d.halfDomain, sum, d.table[0], d.table[len(d.table)-1])
	return nil
}

func (d *Lut1DOpData) GetCacheID() string { return d.cacheID }

// lookup evaluates one channel of the table at v with linear interpolation.
func (d *Lut1DOpData) lookup(v float32, ch int) float32 {
	if d.halfDomain {
		return d.table[3*int(floatToHalf(v))+ch]
	}
	// NaNs index the first entry.
	if !(v > 0.0) {
		return d.table[ch]
	}
	if v >= 1.0 {
		return d.table[3*(d.length-1)+ch]
	}
	pos := float64(v) * float64(d.length-1)
	idx := int(pos)
	frac := float32(pos - float64(idx))
	lo := d.table[3*idx+ch]
	hi := d.table[3*(idx+1)+ch]
	return lo + (hi-lo)*frac
}

func (d *Lut1DOpData) Apply(rgba []float32, numPixels int) {
	for idx := 0; idx < numPixels; idx++ {
		p := rgba[idx*4 : idx*4+3]
		p[0] = d.lookup(p[0], 0)
		p[1] = d.lookup(p[1], 1)
		p[2] = d.lookup(p[2], 2)
	}
}

// ApplyInverse evaluates the inverse of a monotonically non-decreasing
// table by binary search over each channel.
func (d *Lut1DOpData) ApplyInverse(rgba []float32, numPixels int) {
	for idx := 0; idx < numPixels; idx++ {
		p := rgba[idx*4 : idx*4+3]
		for c := 0; c < 3; c++ {
			p[c] = d.lookupInverse(p[c], c)
		}
	}
}

func (d *Lut1DOpData) lookupInverse(v float32, ch int) float32 {
	n := d.length
	if math.IsNaN(float64(v)) || v <= d.table[ch] {
		return 0.0
	}
	if v >= d.table[3*(n-1)+ch] {
		return 1.0
	}
	lo, hi := 0, n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if d.table[3*mid+ch] <= v {
			lo = mid
		} else {
			hi = mid
		}
	}
	a := d.table[3*lo+ch]
	b := d.table[3*hi+ch]
	t := float32(0.0)
	if b > a {
		t = (v - a) / (b - a)
	}
	return (float32(lo) + t) / float32(n-1)
}

// MakeLookupDomain builds the 1D domain sized for the input bit depth: a
// full-range ramp for the integer depths and a half-domain table for F16.
func MakeLookupDomain(mm mem.Manager, in BitDepth) *Lut1DOpData {
	if in == BitDepthF16 {
		d := &Lut1DOpData{
			table:      mem.MakeSlice[float32](mm, 3*65536),
			length:     65536,
			halfDomain: true,
		}
		for i := 0; i < 65536; i++ {
			v := halfToFloat(uint16(i))
			d.table[3*i+0] = v
			d.table[3*i+1] = v
			d.table[3*i+2] = v
		}
		return d
	}
	length := int(GetBitDepthMaxValue(in)) + 1
	d := &Lut1DOpData{
		table:  mem.MakeSlice[float32](mm, 3*length),
		length: length,
	}
	for i := 0; i < length; i++ {
		v := float32(i) / float32(length-1)
		d.table[3*i+0] = v
		d.table[3*i+1] = v
		d.table[3*i+2] = v
	}
	return d
}

// ComposeVec sends the domain through the given ops in order, leaving their
// composition sampled in the domain's table.
func ComposeVec(mm mem.Manager, domain *Lut1DOpData, ops OpVec) {
	buf := mem.Pixels(mm, domain.length)
	for i := 0; i < domain.length; i++ {
		buf[4*i+0] = domain.table[3*i+0]
		buf[4*i+1] = domain.table[3*i+1]
		buf[4*i+2] = domain.table[3*i+2]
		buf[4*i+3] = 1.0
	}
	ops.Apply(buf, domain.length)
	for i := 0; i < domain.length; i++ {
		domain.table[3*i+0] = buf[4*i+0]
		domain.table[3*i+1] = buf[4*i+1]
		domain.table[3*i+2] = buf[4*i+2]
	}
	mem.Recycle(mm, buf)
}

func (d *Lut1DOpData) ExtractGpuShader(shaderDesc *GpuShaderDesc) error {
	name, err := shaderDesc.AddTexture1D(d.length, d.table)
	if err != nil {
		return err
	}
	ss := NewGpuShaderText(shaderDesc.GetLanguage())
	ss.Indent()
	ss.NewLine("")
	ss.NewLine("// Add a Lut1D processing")
	ss.NewLine("")

	pix := shaderDesc.GetPixelName()
	scale := float64(d.length-1) / float64(d.length)
	offset := 0.5 / float64(d.length)
	for _, swz := range []string{"r", "g", "b"} {
		ss.NewLine("%s.%s = %s(%s, %s.%s * %s + %s).%s;",
			pix, swz, ss.Tex1DFunc(), name, pix, swz,
			ss.FloatConst(scale), ss.FloatConst(offset), swz)
	}
	shaderDesc.AddToFunctionShaderCode(ss.String())
	return nil
}

// CreateLut1DOp appends a 1D LUT op; the direction stays on the op since a
// sampled table has no algebraic inverse.
func CreateLut1DOp(ops *OpVec, lut *Lut1DOpData, dir TransformDirection) error {
	op := NewOp(lut)
	op.dir = dir
	*ops = append(*ops, op)
	return nil
}
