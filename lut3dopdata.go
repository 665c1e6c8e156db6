package goocio

import (
	"fmt"

	"github.com/yzigangirova/ocio-go/mem"
)

// Lut3DOpData holds an edgeLen^3 RGB lattice with the blue axis varying
// fastest: index(r,g,b) = b + edgeLen*(g + edgeLen*r).
type Lut3DOpData struct {
	lattice []float32 // 3 * edgeLen^3
	edgeLen int
	cacheID string
}

// NewLut3DOpData returns an identity lattice of the given edge length.
func NewLut3DOpData(edgeLen int) *Lut3DOpData {
	d := &Lut3DOpData{
		lattice: make([]float32, 3*edgeLen*edgeLen*edgeLen),
		edgeLen: edgeLen,
	}
	i := 0
	for r := 0; r < edgeLen; r++ {
		for g := 0; g < edgeLen; g++ {
			for b := 0; b < edgeLen; b++ {
				d.lattice[3*i+0] = float32(r) / float32(edgeLen-1)
				d.lattice[3*i+1] = float32(g) / float32(edgeLen-1)
				d.lattice[3*i+2] = float32(b) / float32(edgeLen-1)
				i++
			}
		}
	}
	return d
}

func (d *Lut3DOpData) GetType() OpType { return OpTypeLut3D }

func (d *Lut3DOpData) GetEdgeLen() int      { return d.edgeLen }
func (d *Lut3DOpData) GetLattice() []float32 { return d.lattice }

func (d *Lut3DOpData) Validate() error {
	if d.edgeLen < 2 {
		return fmt.Errorf("3D LUT edge length %d is too small", d.edgeLen)
	}
	if len(d.lattice) != 3*d.edgeLen*d.edgeLen*d.edgeLen {
		return fmt.Errorf("3D LUT lattice size %d does not match edge length %d",
			len(d.lattice), d.edgeLen)
	}
	return nil
}

func (d *Lut3DOpData) IsIdentity() bool {
	e := d.edgeLen
	i := 0
	for r := 0; r < e; r++ {
		for g := 0; g < e; g++ {
			for b := 0; b < e; b++ {
				if d.lattice[3*i+0] != float32(r)/float32(e-1) ||
					d.lattice[3*i+1] != float32(g)/float32(e-1) ||
					d.lattice[3*i+2] != float32(b)/float32(e-1) {
					return false
				}
				i++
			}
		}
	}
	return true
}

// Lattice sampling clamps the input domain, so identity is not a no-op.
func (d *Lut3DOpData) IsNoOp() bool { return false }

func (d *Lut3DOpData) HasChannelCrosstalk() bool { return true }

func (d *Lut3DOpData) IsInverse(other OpData) bool { return false }

func (d *Lut3DOpData) Inverse() (OpData, error) {
	return nil, throwf("a sampled 3D LUT cannot be inverted")
}

func (d *Lut3DOpData) Clone() OpData {
	c := &Lut3DOpData{
		lattice: make([]float32, len(d.lattice)),
		edgeLen: d.edgeLen,
	}
	copy(c.lattice, d.lattice)
	return c
}

func (d *Lut3DOpData) Finalize() error {
	if err := d.Validate(); err != nil {
		return err
	}
	var sum float64
	for _, v := range d.lattice {
		sum += float64(v)
	}
	d.cacheID = fmt.Sprintf("Lut3D edge=%d sum=%.17g", d.edgeLen, sum)
	return nil
}

func (d *Lut3DOpData) GetCacheID() string { return d.cacheID }

func clampUnit(v float32) float32 {
	// NaNs become 0.
	if !(v > 0.0) {
		return 0.0
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}

// Apply samples the lattice with trilinear interpolation.
func (d *Lut3DOpData) Apply(rgba []float32, numPixels int) {
	e := d.edgeLen
	maxIdx := e - 1
	for idx := 0; idx < numPixels; idx++ {
		p := rgba[idx*4 : idx*4+3]

		fr := clampUnit(p[0]) * float32(maxIdx)
		fg := clampUnit(p[1]) * float32(maxIdx)
		fb := clampUnit(p[2]) * float32(maxIdx)

		r0 := int(fr)
		g0 := int(fg)
		b0 := int(fb)
		if r0 > maxIdx-1 {
			r0 = maxIdx - 1
		}
		if g0 > maxIdx-1 {
			g0 = maxIdx - 1
		}
		if b0 > maxIdx-1 {
			b0 = maxIdx - 1
		}
		dr := fr - float32(r0)
		dg := fg - float32(g0)
		db := fb - float32(b0)

		node := func(r, g, b, c int) float32 {
			return d.lattice[3*(b+e*(g+e*r))+c]
		}
		for c := 0; c < 3; c++ {
			c000 := node(r0, g0, b0, c)
			c001 := node(r0, g0, b0+1, c)
			c010 := node(r0, g0+1, b0, c)
			c011 := node(r0, g0+1, b0+1, c)
			c100 := node(r0+1, g0, b0, c)
			c101 := node(r0+1, g0, b0+1, c)
			c110 := node(r0+1, g0+1, b0, c)
			c111 := node(r0+1, g0+1, b0+1, c)

			c00 := c000 + (c100-c000)*dr
			c01 := c001 + (c101-c001)*dr
			c10 := c010 + (c110-c010)*dr
			c11 := c011 + (c111-c011)*dr
			c0v := c00 + (c10-c00)*dg
			c1v := c01 + (c11-c01)*dg
			p[c] = c0v + (c1v-c0v)*db
		}
	}
}

func (d *Lut3DOpData) ExtractGpuShader(shaderDesc *GpuShaderDesc) error {
	name, err := shaderDesc.AddTexture3D(d.edgeLen, d.lattice)
	if err != nil {
		return err
	}
	ss := NewGpuShaderText(shaderDesc.GetLanguage())
	ss.Indent()
	ss.NewLine("")
	ss.NewLine("// Add a Lut3D processing")
	ss.NewLine("")

	pix := shaderDesc.GetPixelName()
	scale := float64(d.edgeLen-1) / float64(d.edgeLen)
	offset := 0.5 / float64(d.edgeLen)
	ss.NewLine("%s.rgb = %s(%s, %s.rgb * %s + %s).rgb;",
		pix, ss.Tex3DFunc(), name, pix,
		ss.FloatConst(scale), ss.FloatConst(offset))
	shaderDesc.AddToFunctionShaderCode(ss.String())
	return nil
}

// GenerateIdentityLut3D fills an RGBA image with the identity lattice,
// blue axis varying fastest.
func GenerateIdentityLut3D(mm mem.Manager, edgeLen int) []float32 {
	img := mem.Pixels(mm, edgeLen*edgeLen*edgeLen)
	i := 0
	for r := 0; r < edgeLen; r++ {
		for g := 0; g < edgeLen; g++ {
			for b := 0; b < edgeLen; b++ {
				img[4*i+0] = float32(r) / float32(edgeLen-1)
				img[4*i+1] = float32(g) / float32(edgeLen-1)
				img[4*i+2] = float32(b) / float32(edgeLen-1)
				img[4*i+3] = 1.0
				i++
			}
		}
	}
	return img
}

// CreateLut3DOp appends a 3D LUT op; only the forward direction exists.
func CreateLut3DOp(ops *OpVec, lut *Lut3DOpData, dir TransformDirection) error {
	if dir == TransformDirInverse {
		return throwf("a sampled 3D LUT cannot be inverted")
	}
	*ops = append(*ops, NewOp(lut))
	return nil
}
