package goocio

import (
	"fmt"
	"math"
)

// FixedFunctionStyle selects one of the closed-form transforms whose shape
// is fixed and whose parameter vector arity depends on the style.
type FixedFunctionStyle int

const (
	FixedFunctionAcesDarkToDim10Fwd FixedFunctionStyle = iota
	FixedFunctionAcesDarkToDim10Rev
	FixedFunctionRec2100Surround
)

func (s FixedFunctionStyle) String() string {
	switch s {
	case FixedFunctionAcesDarkToDim10Fwd:
		return "ACES_DarkToDim10 (Forward)"
	case FixedFunctionAcesDarkToDim10Rev:
		return "ACES_DarkToDim10 (Inverse)"
	case FixedFunctionRec2100Surround:
		return "REC2100_Surround"
	}
	return "unknown"
}

// FixedFunctionOpData applies a luminance-dependent gain; every style mixes
// the channels through the luminance term.
type FixedFunctionOpData struct {
	style   FixedFunctionStyle
	params  []float64
	cacheID string
}

func NewFixedFunctionOpData(style FixedFunctionStyle, params []float64) *FixedFunctionOpData {
	d := &FixedFunctionOpData{style: style}
	d.params = append(d.params, params...)
	return d
}

func (d *FixedFunctionOpData) GetType() OpType { return OpTypeFixedFunction }

func (d *FixedFunctionOpData) GetStyle() FixedFunctionStyle { return d.style }

func (d *FixedFunctionOpData) GetParams() []float64 {
	out := make([]float64, len(d.params))
	copy(out, d.params)
	return out
}

func (d *FixedFunctionOpData) SetParams(params []float64) {
	d.params = append(d.params[:0], params...)
}

const (
	rec2100SurroundLowBound = 0.001
	rec2100SurroundHiBound  = 100.0
)

func (d *FixedFunctionOpData) Validate() error {
	if d.style == FixedFunctionRec2100Surround {
		if len(d.params) != 1 {
			return fmt.Errorf("the style '%s' must have one parameter but %d found",
				d.style, len(d.params))
		}
		p := d.params[0]
		if p < rec2100SurroundLowBound {
			return fmt.Errorf("parameter %g is less than lower bound %g",
				p, rec2100SurroundLowBound)
		}
		if p > rec2100SurroundHiBound {
			return fmt.Errorf("parameter %g is greater than upper bound %g",
				p, rec2100SurroundHiBound)
		}
		return nil
	}
	if len(d.params) != 0 {
		return fmt.Errorf("the style '%s' must have zero parameters but %d found",
			d.style, len(d.params))
	}
	return nil
}

func (d *FixedFunctionOpData) IsIdentity() bool {
	// A surround gamma of exactly 1 leaves the gain at 1 everywhere.
	return d.style == FixedFunctionRec2100Surround &&
		len(d.params) == 1 && d.params[0] == 1.0
}

func (d *FixedFunctionOpData) IsNoOp() bool { return d.IsIdentity() }

func (d *FixedFunctionOpData) HasChannelCrosstalk() bool { return true }

// Inverse flips the style; Rec2100Surround inverts its gamma parameter.
func (d *FixedFunctionOpData) Inverse() (OpData, error) {
	c := d.Clone().(*FixedFunctionOpData)
	switch d.style {
	case FixedFunctionAcesDarkToDim10Fwd:
		c.style = FixedFunctionAcesDarkToDim10Rev
	case FixedFunctionAcesDarkToDim10Rev:
		c.style = FixedFunctionAcesDarkToDim10Fwd
	case FixedFunctionRec2100Surround:
		c.params[0] = 1.0 / c.params[0]
	}
	return c, nil
}

func (d *FixedFunctionOpData) IsInverse(other OpData) bool {
	o, ok := other.(*FixedFunctionOpData)
	if !ok {
		return false
	}
	inv, err := d.Inverse()
	if err != nil {
		return false
	}
	i := inv.(*FixedFunctionOpData)
	if o.style != i.style || len(o.params) != len(i.params) {
		return false
	}
	for k := range o.params {
		if o.params[k] != i.params[k] {
			return false
		}
	}
	return true
}

func (d *FixedFunctionOpData) Clone() OpData {
	c := &FixedFunctionOpData{style: d.style}
	c.params = append(c.params, d.params...)
	return c
}

func (d *FixedFunctionOpData) Finalize() error {
	if err := d.Validate(); err != nil {
		return err
	}
	id := fmt.Sprintf("FixedFunction %s", d.style)
	for _, p := range d.params {
		id += fmt.Sprintf(" %.17g", p)
	}
	d.cacheID = id
	return nil
}

func (d *FixedFunctionOpData) GetCacheID() string { return d.cacheID }

// Rec.2100 RGB luminance weights.
const (
	rec2100LumaR = 0.2627
	rec2100LumaG = 0.6780
	rec2100LumaB = 0.0593
)

// darkToDimGamma is the ACES dim-surround luminance exponent.
const darkToDimGamma = 0.9811

// surroundGain returns the Y^(gamma-1) luminance gain. The luminance floor
// prevents extreme gain in the darks without distorting the curve shape.
func surroundGain(r, g, b float64, gammaMinusOne float64) float64 {
	const minLum = 1e-4
	y := rec2100LumaR*r + rec2100LumaG*g + rec2100LumaB*b
	if y < minLum {
		y = minLum
	}
	return math.Pow(y, gammaMinusOne)
}

func (d *FixedFunctionOpData) gammaMinusOne() float64 {
	switch d.style {
	case FixedFunctionAcesDarkToDim10Fwd:
		return darkToDimGamma - 1.0
	case FixedFunctionAcesDarkToDim10Rev:
		return 1.0/darkToDimGamma - 1.0
	default:
		return d.params[0] - 1.0
	}
}

func (d *FixedFunctionOpData) Apply(rgba []float32, numPixels int) {
	gm1 := d.gammaMinusOne()
	for idx := 0; idx < numPixels; idx++ {
		p := rgba[idx*4 : idx*4+3]
		r := float64(p[0])
		g := float64(p[1])
		b := float64(p[2])
		gain := surroundGain(r, g, b, gm1)
		p[0] = float32(r * gain)
		p[1] = float32(g * gain)
		p[2] = float32(b * gain)
	}
}

func (d *FixedFunctionOpData) ExtractGpuShader(shaderDesc *GpuShaderDesc) error {
	ss := NewGpuShaderText(shaderDesc.GetLanguage())
	ss.Indent()
	ss.NewLine("")
	ss.NewLine("// Add a FixedFunction processing (%s)", d.style)
	ss.NewLine("")

	pix := shaderDesc.GetPixelName()
	ss.NewLine("float Y = max(1e-4, dot(%s.rgb, %s));", pix,
		ss.Vec3fConst(rec2100LumaR, rec2100LumaG, rec2100LumaB))
	ss.NewLine("%s.rgb = %s.rgb * pow(Y, %s);", pix, pix,
		ss.FloatConst(d.gammaMinusOne()))
	shaderDesc.AddToFunctionShaderCode(ss.String())
	return nil
}

// CreateFixedFunctionOp appends a fixed-function op, folding an inverse
// direction into the style.
func CreateFixedFunctionOp(ops *OpVec, ff *FixedFunctionOpData, dir TransformDirection) error {
	data := ff
	if dir == TransformDirInverse {
		inv, err := ff.Inverse()
		if err != nil {
			return err
		}
		data = inv.(*FixedFunctionOpData)
	}
	*ops = append(*ops, NewOp(data))
	return nil
}
