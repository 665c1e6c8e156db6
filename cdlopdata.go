package goocio

import (
	"fmt"
	"math"
)

// CDLStyle selects the ASC CDL variant. The v1.2 styles clamp to [0,1]
// around the power and saturation stages; the no-clamp styles do not.
type CDLStyle int

const (
	CDLStyleV12Fwd CDLStyle = iota
	CDLStyleV12Rev
	CDLStyleNoClampFwd
	CDLStyleNoClampRev
)

func (s CDLStyle) String() string {
	switch s {
	case CDLStyleV12Fwd:
		return "v1.2_Fwd"
	case CDLStyleV12Rev:
		return "v1.2_Rev"
	case CDLStyleNoClampFwd:
		return "noClampFwd"
	case CDLStyleNoClampRev:
		return "noClampRev"
	}
	return "unknown"
}

// Rec.709 luma weights used by the saturation stage.
const (
	cdlLumaR = 0.2126
	cdlLumaG = 0.7152
	cdlLumaB = 0.0722
)

// CDLOpData holds per-channel slope, offset and power plus a saturation.
type CDLOpData struct {
	style      CDLStyle
	slope      [3]float64
	offset     [3]float64
	power      [3]float64
	saturation float64
	cacheID    string
}

// NewCDLOpData returns an identity CDL of the given style.
func NewCDLOpData(style CDLStyle) *CDLOpData {
	return &CDLOpData{
		style:      style,
		slope:      [3]float64{1, 1, 1},
		power:      [3]float64{1, 1, 1},
		saturation: 1,
	}
}

func (d *CDLOpData) GetType() OpType { return OpTypeCDL }

func (d *CDLOpData) GetStyle() CDLStyle         { return d.style }
func (d *CDLOpData) GetSlope() [3]float64       { return d.slope }
func (d *CDLOpData) GetOffset() [3]float64      { return d.offset }
func (d *CDLOpData) GetPower() [3]float64       { return d.power }
func (d *CDLOpData) GetSaturation() float64     { return d.saturation }

func (d *CDLOpData) SetSlope(s [3]float64) error {
	d.slope = s
	return d.Validate()
}

func (d *CDLOpData) SetOffset(o [3]float64) error {
	d.offset = o
	return d.Validate()
}

func (d *CDLOpData) SetPower(p [3]float64) error {
	d.power = p
	return d.Validate()
}

func (d *CDLOpData) SetSaturation(sat float64) error {
	d.saturation = sat
	return d.Validate()
}

func (d *CDLOpData) Validate() error {
	for i := 0; i < 3; i++ {
		if d.slope[i] < 0.0 {
			return fmt.Errorf("CDL slope %g should be greater than or equal to 0", d.slope[i])
		}
		if d.power[i] <= 0.0 {
			return fmt.Errorf("CDL power %g should be greater than 0", d.power[i])
		}
	}
	if d.saturation < 0.0 {
		return fmt.Errorf("CDL saturation %g should be greater than or equal to 0", d.saturation)
	}
	return nil
}

func (d *CDLOpData) isClamping() bool {
	return d.style == CDLStyleV12Fwd || d.style == CDLStyleV12Rev
}

func (d *CDLOpData) IsIdentity() bool {
	return d.slope == [3]float64{1, 1, 1} &&
		d.offset == [3]float64{0, 0, 0} &&
		d.power == [3]float64{1, 1, 1} &&
		d.saturation == 1.0
}

// A clamping-style identity still clamps out-of-range pixels, so only the
// no-clamp identity is a true no-op.
func (d *CDLOpData) IsNoOp() bool {
	return d.IsIdentity() && !d.isClamping()
}

func (d *CDLOpData) HasChannelCrosstalk() bool { return d.saturation != 1.0 }

func inverseCDLStyle(s CDLStyle) CDLStyle {
	switch s {
	case CDLStyleV12Fwd:
		return CDLStyleV12Rev
	case CDLStyleV12Rev:
		return CDLStyleV12Fwd
	case CDLStyleNoClampFwd:
		return CDLStyleNoClampRev
	default:
		return CDLStyleNoClampFwd
	}
}

// Inverse flips the style; parameters are left unchanged.
func (d *CDLOpData) Inverse() (OpData, error) {
	c := d.Clone().(*CDLOpData)
	c.style = inverseCDLStyle(d.style)
	return c, nil
}

func (d *CDLOpData) IsInverse(other OpData) bool {
	o, ok := other.(*CDLOpData)
	if !ok {
		return false
	}
	return o.style == inverseCDLStyle(d.style) &&
		o.slope == d.slope && o.offset == d.offset &&
		o.power == d.power && o.saturation == d.saturation
}

func (d *CDLOpData) Clone() OpData {
	c := *d
	c.cacheID = ""
	return &c
}

func (d *CDLOpData) Finalize() error {
	if err := d.Validate(); err != nil {
		return err
	}
	d.cacheID = fmt.Sprintf("CDL %s %.17g %.17g %.17g %.17g",
		d.style, d.slope, d.offset, d.power, d.saturation)
	return nil
}

func (d *CDLOpData) GetCacheID() string { return d.cacheID }

func clamp01(v float64) float64 {
	// NaNs become 0.
	if !(v >= 0.0) {
		return 0.0
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}

// powSafe skips the power function for non-positive bases, matching the
// no-clamp CDL styles.
func powSafe(v, p float64) float64 {
	if v <= 0.0 {
		return v
	}
	return math.Pow(v, p)
}

func (d *CDLOpData) Apply(rgba []float32, numPixels int) {
	clamping := d.isClamping()
	forward := d.style == CDLStyleV12Fwd || d.style == CDLStyleNoClampFwd
	for idx := 0; idx < numPixels; idx++ {
		p := rgba[idx*4 : idx*4+3]
		var t [3]float64
		for c := 0; c < 3; c++ {
			t[c] = float64(p[c])
		}
		if forward {
			for c := 0; c < 3; c++ {
				t[c] = t[c]*d.slope[c] + d.offset[c]
				if clamping {
					t[c] = clamp01(t[c])
					t[c] = math.Pow(t[c], d.power[c])
				} else {
					t[c] = powSafe(t[c], d.power[c])
				}
			}
			luma := cdlLumaR*t[0] + cdlLumaG*t[1] + cdlLumaB*t[2]
			for c := 0; c < 3; c++ {
				t[c] = luma + d.saturation*(t[c]-luma)
				if clamping {
					t[c] = clamp01(t[c])
				}
			}
		} else {
			if clamping {
				for c := 0; c < 3; c++ {
					t[c] = clamp01(t[c])
				}
			}
			invSat := 0.0
			if d.saturation != 0.0 {
				invSat = 1.0 / d.saturation
			}
			luma := cdlLumaR*t[0] + cdlLumaG*t[1] + cdlLumaB*t[2]
			for c := 0; c < 3; c++ {
				t[c] = luma + invSat*(t[c]-luma)
				if clamping {
					t[c] = clamp01(t[c])
					t[c] = math.Pow(t[c], 1.0/d.power[c])
				} else {
					t[c] = powSafe(t[c], 1.0/d.power[c])
				}
				if d.slope[c] != 0.0 {
					t[c] = (t[c] - d.offset[c]) / d.slope[c]
				} else {
					t[c] = 0.0
				}
				if clamping {
					t[c] = clamp01(t[c])
				}
			}
		}
		for c := 0; c < 3; c++ {
			p[c] = float32(t[c])
		}
	}
}

func (d *CDLOpData) ExtractGpuShader(shaderDesc *GpuShaderDesc) error {
	ss := NewGpuShaderText(shaderDesc.GetLanguage())
	ss.Indent()
	ss.NewLine("")
	ss.NewLine("// Add a CDL processing (%s)", d.style)
	ss.NewLine("")

	if d.style == CDLStyleV12Rev || d.style == CDLStyleNoClampRev {
		return throwf("no GPU code generator for reverse CDL style %s", d.style)
	}

	pix := shaderDesc.GetPixelName()
	clamping := d.isClamping()

	ss.NewLine("%s.rgb = %s.rgb * %s + %s;", pix, pix,
		ss.Vec3fConst(d.slope[0], d.slope[1], d.slope[2]),
		ss.Vec3fConst(d.offset[0], d.offset[1], d.offset[2]))
	if clamping {
		ss.NewLine("%s.rgb = clamp(%s.rgb, 0.0, 1.0);", pix, pix)
		ss.NewLine("%s.rgb = pow(%s.rgb, %s);", pix, pix,
			ss.Vec3fConst(d.power[0], d.power[1], d.power[2]))
	} else {
		// Apply the power only where the base is positive.
		ss.NewLine("%s.rgb = mix(%s.rgb, pow(max(%s.rgb, %s), %s), %s(greaterThan(%s.rgb, %s)));",
			pix, pix, pix, ss.Vec3fConst(0, 0, 0),
			ss.Vec3fConst(d.power[0], d.power[1], d.power[2]),
			ss.Vec3fKeyword(), pix, ss.Vec3fConst(0, 0, 0))
	}
	ss.NewLine("float luma = dot(%s.rgb, %s);", pix,
		ss.Vec3fConst(cdlLumaR, cdlLumaG, cdlLumaB))
	ss.NewLine("%s.rgb = luma + %s * (%s.rgb - luma);", pix,
		ss.FloatConst(d.saturation), pix)
	if clamping {
		ss.NewLine("%s.rgb = clamp(%s.rgb, 0.0, 1.0);", pix, pix)
	}
	shaderDesc.AddToFunctionShaderCode(ss.String())
	return nil
}

// CreateCDLOp appends a CDL op to ops, folding an inverse direction into the
// style.
func CreateCDLOp(ops *OpVec, cdl *CDLOpData, dir TransformDirection) error {
	data := cdl
	if dir == TransformDirInverse {
		inv, err := cdl.Inverse()
		if err != nil {
			return err
		}
		data = inv.(*CDLOpData)
	}
	*ops = append(*ops, NewOp(data))
	return nil
}
