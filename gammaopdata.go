package goocio

import (
	"fmt"
	"math"
)

// GammaStyle selects the power-function variant. Basic is a pure power on
// clamped-to-zero input; moncurve has a linear segment near black that meets
// the power segment where value and slope match.
type GammaStyle int

const (
	GammaStyleBasicFwd GammaStyle = iota
	GammaStyleBasicRev
	GammaStyleMoncurveFwd
	GammaStyleMoncurveRev
)

func (s GammaStyle) String() string {
	switch s {
	case GammaStyleBasicFwd:
		return "basicFwd"
	case GammaStyleBasicRev:
		return "basicRev"
	case GammaStyleMoncurveFwd:
		return "moncurveFwd"
	case GammaStyleMoncurveRev:
		return "moncurveRev"
	}
	return "unknown"
}

const (
	gammaLowerBound  = 0.01
	gammaUpperBound  = 100.0
	offsetLowerBound = 0.0
	offsetUpperBound = 0.9
)

// GammaOpData holds per-channel (R, G, B, A) gamma values, plus per-channel
// offsets for the moncurve styles.
type GammaOpData struct {
	style   GammaStyle
	gamma   [4]float64
	offset  [4]float64
	cacheID string
}

// NewGammaOpData builds a gamma op; offsets are ignored by the basic styles.
func NewGammaOpData(style GammaStyle, gamma [4]float64, offset [4]float64) *GammaOpData {
	return &GammaOpData{style: style, gamma: gamma, offset: offset}
}

func (d *GammaOpData) GetType() OpType { return OpTypeGamma }

func (d *GammaOpData) GetStyle() GammaStyle { return d.style }
func (d *GammaOpData) GetGamma() [4]float64 { return d.gamma }
func (d *GammaOpData) GetOffset() [4]float64 { return d.offset }

func (d *GammaOpData) isMoncurve() bool {
	return d.style == GammaStyleMoncurveFwd || d.style == GammaStyleMoncurveRev
}

func (d *GammaOpData) Validate() error {
	for i := 0; i < 4; i++ {
		if d.gamma[i] < gammaLowerBound {
			return fmt.Errorf("gamma parameter %g is less than lower bound %g",
				d.gamma[i], gammaLowerBound)
		}
		if d.gamma[i] > gammaUpperBound {
			return fmt.Errorf("gamma parameter %g is greater than upper bound %g",
				d.gamma[i], gammaUpperBound)
		}
		if d.isMoncurve() {
			if d.offset[i] < offsetLowerBound {
				return fmt.Errorf("gamma offset %g is less than lower bound %g",
					d.offset[i], offsetLowerBound)
			}
			if d.offset[i] > offsetUpperBound {
				return fmt.Errorf("gamma offset %g is greater than upper bound %g",
					d.offset[i], offsetUpperBound)
			}
		}
	}
	return nil
}

func (d *GammaOpData) IsIdentity() bool {
	if d.gamma != [4]float64{1, 1, 1, 1} {
		return false
	}
	if d.isMoncurve() {
		return d.offset == [4]float64{0, 0, 0, 0}
	}
	return true
}

// The basic styles clamp negatives before the power function, so a basic
// identity is still not a true no-op; the moncurve identity is linear
// everywhere and is.
func (d *GammaOpData) IsNoOp() bool {
	return d.IsIdentity() && d.isMoncurve()
}

func (d *GammaOpData) HasChannelCrosstalk() bool { return false }

func inverseGammaStyle(s GammaStyle) GammaStyle {
	switch s {
	case GammaStyleBasicFwd:
		return GammaStyleBasicRev
	case GammaStyleBasicRev:
		return GammaStyleBasicFwd
	case GammaStyleMoncurveFwd:
		return GammaStyleMoncurveRev
	default:
		return GammaStyleMoncurveFwd
	}
}

// Inverse flips the style; parameters are left unchanged.
func (d *GammaOpData) Inverse() (OpData, error) {
	c := d.Clone().(*GammaOpData)
	c.style = inverseGammaStyle(d.style)
	return c, nil
}

func (d *GammaOpData) IsInverse(other OpData) bool {
	o, ok := other.(*GammaOpData)
	if !ok {
		return false
	}
	return o.style == inverseGammaStyle(d.style) &&
		o.gamma == d.gamma && o.offset == d.offset
}

// effectiveExponent folds the style direction into the exponent of a basic
// style.
func (d *GammaOpData) effectiveExponent(ch int) float64 {
	if d.style == GammaStyleBasicRev {
		return 1.0 / d.gamma[ch]
	}
	return d.gamma[ch]
}

// MayCompose reports whether two gamma ops can be replaced by one. Only the
// basic styles compose exactly (the exponents multiply).
func (d *GammaOpData) MayCompose(other *GammaOpData) bool {
	return !d.isMoncurve() && !other.isMoncurve()
}

// Compose appends the basic-style combination of d followed by second, or
// nothing when the exponents cancel to an identity.
func (d *GammaOpData) Compose(second *GammaOpData, out *OpVec) error {
	if !d.MayCompose(second) {
		return throwf("cannot compose %s gamma with %s gamma", d.style, second.style)
	}
	var gamma [4]float64
	identity := true
	for i := 0; i < 4; i++ {
		gamma[i] = d.effectiveExponent(i) * second.effectiveExponent(i)
		if !closeEnough(gamma[i], 1.0) {
			identity = false
		}
	}
	if identity {
		return nil
	}
	*out = append(*out, NewOp(NewGammaOpData(GammaStyleBasicFwd, gamma, [4]float64{})))
	return nil
}

func (d *GammaOpData) Clone() OpData {
	c := *d
	c.cacheID = ""
	return &c
}

func (d *GammaOpData) Finalize() error {
	if err := d.Validate(); err != nil {
		return err
	}
	d.cacheID = fmt.Sprintf("Gamma %s %.17g %.17g", d.style, d.gamma, d.offset)
	return nil
}

func (d *GammaOpData) GetCacheID() string { return d.cacheID }

// moncurveParams holds the derived render parameters of one channel. The
// break point and slope of the linear segment are implied by gamma and
// offset; gain 1 / offset 0 is nudged by eps to avoid a division by zero.
type moncurveParams struct {
	gamma    float64
	offset   float64
	breakPnt float64
	slope    float64
	scale    float64
}

const moncurveEps = 1e-6

func computeMoncurveFwd(gamma, offset float64) moncurveParams {
	g := math.Max(gamma, 1.0+moncurveEps)
	off := math.Max(offset, moncurveEps)
	a := (g - 1.0) / off
	b := off * g / ((g - 1.0) * (1.0 + off))
	return moncurveParams{
		gamma:    g,
		offset:   off / (1.0 + off),
		breakPnt: off / (g - 1.0),
		slope:    a * math.Pow(b, g),
		scale:    1.0 / (1.0 + off),
	}
}

func computeMoncurveRev(gamma, offset float64) moncurveParams {
	g := math.Max(gamma, 1.0+moncurveEps)
	off := math.Max(offset, moncurveEps)
	a := off * g
	b := (g - 1.0) * (1.0 + off)
	sa := (g - 1.0) / off
	sb := (1.0 + off) / g
	return moncurveParams{
		gamma:    1.0 / g,
		offset:   off,
		breakPnt: math.Pow(a/b, g),
		slope:    math.Pow(sa, g-1.0) * math.Pow(sb, g),
		scale:    1.0 + off,
	}
}

func (d *GammaOpData) Apply(rgba []float32, numPixels int) {
	switch d.style {
	case GammaStyleBasicFwd, GammaStyleBasicRev:
		var exp [4]float64
		for i := 0; i < 4; i++ {
			exp[i] = d.effectiveExponent(i)
		}
		for idx := 0; idx < numPixels; idx++ {
			p := rgba[idx*4 : idx*4+4]
			for c := 0; c < 4; c++ {
				v := math.Max(0.0, float64(p[c]))
				p[c] = float32(math.Pow(v, exp[c]))
			}
		}
	case GammaStyleMoncurveFwd:
		var mp [4]moncurveParams
		for i := 0; i < 4; i++ {
			mp[i] = computeMoncurveFwd(d.gamma[i], d.offset[i])
		}
		for idx := 0; idx < numPixels; idx++ {
			p := rgba[idx*4 : idx*4+4]
			for c := 0; c < 4; c++ {
				v := float64(p[c])
				if v <= mp[c].breakPnt {
					p[c] = float32(v * mp[c].slope)
				} else {
					p[c] = float32(math.Pow(v*mp[c].scale+mp[c].offset, mp[c].gamma))
				}
			}
		}
	case GammaStyleMoncurveRev:
		var mp [4]moncurveParams
		for i := 0; i < 4; i++ {
			mp[i] = computeMoncurveRev(d.gamma[i], d.offset[i])
		}
		for idx := 0; idx < numPixels; idx++ {
			p := rgba[idx*4 : idx*4+4]
			for c := 0; c < 4; c++ {
				v := float64(p[c])
				if v <= mp[c].breakPnt {
					p[c] = float32(v * mp[c].slope)
				} else {
					p[c] = float32(math.Pow(v, mp[c].gamma)*mp[c].scale - mp[c].offset)
				}
			}
		}
	}
}

func (d *GammaOpData) ExtractGpuShader(shaderDesc *GpuShaderDesc) error {
	ss := NewGpuShaderText(shaderDesc.GetLanguage())
	ss.Indent()
	ss.NewLine("")
	ss.NewLine("// Add a Gamma processing (%s)", d.style)
	ss.NewLine("")

	pix := shaderDesc.GetPixelName()
	switch d.style {
	case GammaStyleBasicFwd, GammaStyleBasicRev:
		var exp [4]float64
		for i := 0; i < 4; i++ {
			exp[i] = d.effectiveExponent(i)
		}
		ss.NewLine("%s = pow(max(%s, %s), %s);", pix,
			ss.Vec4fConst(0, 0, 0, 0), pix,
			ss.Vec4fConst(exp[0], exp[1], exp[2], exp[3]))
	default:
		return throwf("no GPU code generator for gamma style %s", d.style)
	}
	shaderDesc.AddToFunctionShaderCode(ss.String())
	return nil
}

// CreateGammaOp appends a gamma op to ops, folding an inverse direction into
// the style.
func CreateGammaOp(ops *OpVec, gamma *GammaOpData, dir TransformDirection) error {
	data := gamma
	if dir == TransformDirInverse {
		inv, err := gamma.Inverse()
		if err != nil {
			return err
		}
		data = inv.(*GammaOpData)
	}
	*ops = append(*ops, NewOp(data))
	return nil
}
