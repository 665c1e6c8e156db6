package goocio

import (
	"fmt"
	"math"
	"strings"
)

// MatrixOpData holds a 4x4 coefficient matrix plus 4 offsets, applied as
// out = M * in + offset over RGBA pixels.
type MatrixOpData struct {
	m44     [16]float64
	offsets [4]float64
	cacheID string
}

// NewMatrixOpData returns an identity matrix op data.
func NewMatrixOpData() *MatrixOpData {
	d := &MatrixOpData{}
	d.m44[0] = 1.0
	d.m44[5] = 1.0
	d.m44[10] = 1.0
	d.m44[15] = 1.0
	return d
}

// NewScaleOpData returns a diagonal matrix scaling R, G, B and A.
func NewScaleOpData(scale4 [4]float64) *MatrixOpData {
	d := NewMatrixOpData()
	d.m44[0] = scale4[0]
	d.m44[5] = scale4[1]
	d.m44[10] = scale4[2]
	d.m44[15] = scale4[3]
	return d
}

func (d *MatrixOpData) GetType() OpType { return OpTypeMatrix }

func (d *MatrixOpData) GetArray() [16]float64   { return d.m44 }
func (d *MatrixOpData) GetOffsets() [4]float64  { return d.offsets }
func (d *MatrixOpData) SetArrayValue(i int, v float64)  { d.m44[i] = v }
func (d *MatrixOpData) SetOffsetValue(i int, v float64) { d.offsets[i] = v }

func (d *MatrixOpData) Validate() error { return nil }

const matrixCloseEnough = 1e-5

func closeEnough(a, b float64) bool {
	return math.Abs(b-a) < matrixCloseEnough
}

// isMatrixIdentity generalizes the 3x3 identity check used by pipeline
// optimizers to the 4x4 case.
func isMatrixIdentity(m *[16]float64) bool {
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if !closeEnough(m[i*4+j], want) {
				return false
			}
		}
	}
	return true
}

func (d *MatrixOpData) IsIdentity() bool {
	for _, off := range d.offsets {
		if !closeEnough(off, 0.0) {
			return false
		}
	}
	return isMatrixIdentity(&d.m44)
}

// A matrix never clamps, so identity implies a true no-op.
func (d *MatrixOpData) IsNoOp() bool { return d.IsIdentity() }

func (d *MatrixOpData) HasChannelCrosstalk() bool {
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if i != j && d.m44[i*4+j] != 0.0 {
				return true
			}
		}
	}
	return false
}

// IsInverse checks whether composing the two matrices yields an identity.
func (d *MatrixOpData) IsInverse(other OpData) bool {
	o, ok := other.(*MatrixOpData)
	if !ok {
		return false
	}
	composed := composeMatrices(d, o)
	return composed.IsIdentity()
}

// Inverse computes the algebraic inverse by Gauss-Jordan elimination.
func (d *MatrixOpData) Inverse() (OpData, error) {
	// Augment [M | I] and reduce.
	var a [4][8]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			a[i][j] = d.m44[i*4+j]
		}
		a[i][4+i] = 1.0
	}
	for col := 0; col < 4; col++ {
		pivot := col
		for row := col + 1; row < 4; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return nil, throwf("singular matrix cannot be inverted")
		}
		a[col], a[pivot] = a[pivot], a[col]
		p := a[col][col]
		for j := 0; j < 8; j++ {
			a[col][j] /= p
		}
		for row := 0; row < 4; row++ {
			if row == col {
				continue
			}
			f := a[row][col]
			for j := 0; j < 8; j++ {
				a[row][j] -= f * a[col][j]
			}
		}
	}
	inv := NewMatrixOpData()
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			inv.m44[i*4+j] = a[i][4+j]
		}
	}
	// out = M*in + b  =>  in = Minv*out - Minv*b
	for i := 0; i < 4; i++ {
		s := 0.0
		for j := 0; j < 4; j++ {
			s += inv.m44[i*4+j] * d.offsets[j]
		}
		inv.offsets[i] = -s
	}
	return inv, nil
}

// composeMatrices returns the matrix equivalent to applying first, then
// second: M = M2*M1, offset = M2*b1 + b2.
func composeMatrices(first, second *MatrixOpData) *MatrixOpData {
	out := &MatrixOpData{}
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			s := 0.0
			for k := 0; k < 4; k++ {
				s += second.m44[i*4+k] * first.m44[k*4+j]
			}
			out.m44[i*4+j] = s
		}
		s := second.offsets[i]
		for k := 0; k < 4; k++ {
			s += second.m44[i*4+k] * first.offsets[k]
		}
		out.offsets[i] = s
	}
	return out
}

// Compose appends the combination of d followed by second to out, or
// nothing at all when the product reduces to an identity.
func (d *MatrixOpData) Compose(second *MatrixOpData, out *OpVec) error {
	composed := composeMatrices(d, second)
	if composed.IsIdentity() {
		return nil
	}
	*out = append(*out, NewOp(composed))
	return nil
}

func (d *MatrixOpData) Clone() OpData {
	c := *d
	c.cacheID = ""
	return &c
}

func (d *MatrixOpData) Finalize() error {
	if err := d.Validate(); err != nil {
		return err
	}
	var sb strings.Builder
	sb.WriteString("Matrix ")
	for _, v := range d.m44 {
		fmt.Fprintf(&sb, "%.17g ", v)
	}
	for _, v := range d.offsets {
		fmt.Fprintf(&sb, "%.17g ", v)
	}
	d.cacheID = sb.String()
	return nil
}

func (d *MatrixOpData) GetCacheID() string { return d.cacheID }

func (d *MatrixOpData) Apply(rgba []float32, numPixels int) {
	m := &d.m44
	off := &d.offsets
	for idx := 0; idx < numPixels; idx++ {
		p := rgba[idx*4 : idx*4+4]
		r := float64(p[0])
		g := float64(p[1])
		b := float64(p[2])
		a := float64(p[3])
		p[0] = float32(m[0]*r + m[1]*g + m[2]*b + m[3]*a + off[0])
		p[1] = float32(m[4]*r + m[5]*g + m[6]*b + m[7]*a + off[1])
		p[2] = float32(m[8]*r + m[9]*g + m[10]*b + m[11]*a + off[2])
		p[3] = float32(m[12]*r + m[13]*g + m[14]*b + m[15]*a + off[3])
	}
}

func (d *MatrixOpData) ExtractGpuShader(shaderDesc *GpuShaderDesc) error {
	ss := NewGpuShaderText(shaderDesc.GetLanguage())
	ss.Indent()
	ss.NewLine("")
	ss.NewLine("// Add a Matrix processing")
	ss.NewLine("")

	pix := shaderDesc.GetPixelName()
	if d.HasChannelCrosstalk() {
		ss.NewLine("%s = %s(%s, %s, %s, %s);", pix, ss.Vec4fKeyword(),
			ss.Dot4(pix, d.m44[0], d.m44[1], d.m44[2], d.m44[3]),
			ss.Dot4(pix, d.m44[4], d.m44[5], d.m44[6], d.m44[7]),
			ss.Dot4(pix, d.m44[8], d.m44[9], d.m44[10], d.m44[11]),
			ss.Dot4(pix, d.m44[12], d.m44[13], d.m44[14], d.m44[15]))
	} else {
		ss.NewLine("%s = %s * %s;", pix, pix,
			ss.Vec4fConst(d.m44[0], d.m44[5], d.m44[10], d.m44[15]))
	}
	hasOffset := false
	for _, o := range d.offsets {
		if o != 0.0 {
			hasOffset = true
		}
	}
	if hasOffset {
		ss.NewLine("%s = %s + %s;", pix, pix,
			ss.Vec4fConst(d.offsets[0], d.offsets[1], d.offsets[2], d.offsets[3]))
	}
	shaderDesc.AddToFunctionShaderCode(ss.String())
	return nil
}

// CreateMatrixOp appends a matrix op to ops, folding an inverse direction
// into the coefficients.
func CreateMatrixOp(ops *OpVec, mtx *MatrixOpData, dir TransformDirection) error {
	data := mtx
	if dir == TransformDirInverse {
		inv, err := mtx.Inverse()
		if err != nil {
			return err
		}
		data = inv.(*MatrixOpData)
	}
	*ops = append(*ops, NewOp(data))
	return nil
}

// CreateScaleOp appends a diagonal scale matrix op.
func CreateScaleOp(ops *OpVec, scale4 [4]float64, dir TransformDirection) error {
	return CreateMatrixOp(ops, NewScaleOpData(scale4), dir)
}
