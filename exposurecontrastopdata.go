package goocio

import (
	"fmt"
	"math"
)

// ExposureContrastOpData applies out = (in * 2^exposure / pivot)^contrast * pivot
// per channel. Exposure and contrast may be made dynamic, in which case the
// op shares runtime-mutable property cells with its siblings and is excluded
// from prefix LUT baking.
type ExposureContrastOpData struct {
	exposure *DynamicProperty
	contrast *DynamicProperty
	pivot    float64
	cacheID  string
}

func NewExposureContrastOpData() *ExposureContrastOpData {
	return &ExposureContrastOpData{
		exposure: NewDynamicProperty(DynamicPropertyExposure, 0.0),
		contrast: NewDynamicProperty(DynamicPropertyContrast, 1.0),
		pivot:    0.18,
	}
}

func (d *ExposureContrastOpData) GetType() OpType { return OpTypeExposureContrast }

func (d *ExposureContrastOpData) GetExposure() float64 { return d.exposure.GetValue() }
func (d *ExposureContrastOpData) GetContrast() float64 { return d.contrast.GetValue() }
func (d *ExposureContrastOpData) GetPivot() float64    { return d.pivot }

func (d *ExposureContrastOpData) SetExposure(v float64) { d.exposure.SetValue(v) }
func (d *ExposureContrastOpData) SetContrast(v float64) { d.contrast.SetValue(v) }
func (d *ExposureContrastOpData) SetPivot(v float64) error {
	d.pivot = v
	return d.Validate()
}

// GetExposureProperty returns the shared exposure handle.
func (d *ExposureContrastOpData) GetExposureProperty() *DynamicProperty { return d.exposure }

// GetContrastProperty returns the shared contrast handle.
func (d *ExposureContrastOpData) GetContrastProperty() *DynamicProperty { return d.contrast }

func (d *ExposureContrastOpData) Validate() error {
	if d.pivot <= 0.0 {
		return fmt.Errorf("exposure-contrast pivot %g should be greater than 0", d.pivot)
	}
	return nil
}

func (d *ExposureContrastOpData) IsDynamic() bool {
	return d.exposure.IsDynamic() || d.contrast.IsDynamic()
}

func (d *ExposureContrastOpData) HasDynamicProperty(ptype DynamicPropertyType) bool {
	switch ptype {
	case DynamicPropertyExposure:
		return d.exposure.IsDynamic()
	case DynamicPropertyContrast:
		return d.contrast.IsDynamic()
	}
	return false
}

func (d *ExposureContrastOpData) GetDynamicProperty(ptype DynamicPropertyType) (*DynamicProperty, error) {
	switch ptype {
	case DynamicPropertyExposure:
		if d.exposure.IsDynamic() {
			return d.exposure, nil
		}
	case DynamicPropertyContrast:
		if d.contrast.IsDynamic() {
			return d.contrast, nil
		}
	}
	return nil, throwf("property %s is not dynamic on this op", ptype)
}

// ReplaceDynamicProperty re-points the handle so several ops share one cell.
func (d *ExposureContrastOpData) ReplaceDynamicProperty(ptype DynamicPropertyType, prop *DynamicProperty) bool {
	switch ptype {
	case DynamicPropertyExposure:
		if d.exposure.IsDynamic() && prop.GetType() == DynamicPropertyExposure {
			d.exposure = prop
			return true
		}
	case DynamicPropertyContrast:
		if d.contrast.IsDynamic() && prop.GetType() == DynamicPropertyContrast {
			d.contrast = prop
			return true
		}
	}
	return false
}

func (d *ExposureContrastOpData) IsIdentity() bool {
	return !d.IsDynamic() &&
		d.GetExposure() == 0.0 && d.GetContrast() == 1.0
}

func (d *ExposureContrastOpData) IsNoOp() bool { return d.IsIdentity() }

func (d *ExposureContrastOpData) HasChannelCrosstalk() bool { return false }

func (d *ExposureContrastOpData) Inverse() (OpData, error) {
	if d.IsDynamic() {
		return nil, throwf("cannot invert a dynamic exposure-contrast op")
	}
	if d.GetContrast() == 0.0 {
		return nil, throwf("cannot invert exposure-contrast with zero contrast")
	}
	c := d.Clone().(*ExposureContrastOpData)
	// The gain is applied before the power stage, so undoing it afterwards
	// needs the exposure scaled by the forward contrast.
	c.SetExposure(-d.GetExposure() * d.GetContrast())
	c.SetContrast(1.0 / d.GetContrast())
	return c, nil
}

func (d *ExposureContrastOpData) IsInverse(other OpData) bool {
	o, ok := other.(*ExposureContrastOpData)
	if !ok || d.IsDynamic() || o.IsDynamic() {
		return false
	}
	return d.GetContrast() != 0.0 &&
		o.GetExposure() == -d.GetExposure()*d.GetContrast() &&
		o.GetContrast() == 1.0/d.GetContrast() &&
		o.pivot == d.pivot
}

// Clone deep-copies, giving the clone its own property cells.
func (d *ExposureContrastOpData) Clone() OpData {
	c := NewExposureContrastOpData()
	c.exposure.SetValue(d.GetExposure())
	c.contrast.SetValue(d.GetContrast())
	if d.exposure.IsDynamic() {
		c.exposure.MakeDynamic()
	}
	if d.contrast.IsDynamic() {
		c.contrast.MakeDynamic()
	}
	c.pivot = d.pivot
	return c
}

func (d *ExposureContrastOpData) Finalize() error {
	if err := d.Validate(); err != nil {
		return err
	}
	// Dynamic values are left out of the identity on purpose: they may
	// change after finalization without invalidating the processor.
	id := fmt.Sprintf("ExposureContrast pivot=%.17g", d.pivot)
	if d.exposure.IsDynamic() {
		id += " exposure=dynamic"
	} else {
		id += fmt.Sprintf(" exposure=%.17g", d.GetExposure())
	}
	if d.contrast.IsDynamic() {
		id += " contrast=dynamic"
	} else {
		id += fmt.Sprintf(" contrast=%.17g", d.GetContrast())
	}
	d.cacheID = id
	return nil
}

func (d *ExposureContrastOpData) GetCacheID() string { return d.cacheID }

func (d *ExposureContrastOpData) Apply(rgba []float32, numPixels int) {
	gain := math.Exp2(d.GetExposure()) / d.pivot
	contrast := d.GetContrast()
	pivot := d.pivot
	for idx := 0; idx < numPixels; idx++ {
		p := rgba[idx*4 : idx*4+3]
		for c := 0; c < 3; c++ {
			v := float64(p[c]) * gain
			if v <= 0.0 {
				// negatives stay linear through the contrast stage
				p[c] = float32(v * pivot)
				continue
			}
			p[c] = float32(math.Pow(v, contrast) * pivot)
		}
	}
}

func (d *ExposureContrastOpData) ExtractGpuShader(shaderDesc *GpuShaderDesc) error {
	ss := NewGpuShaderText(shaderDesc.GetLanguage())
	ss.Indent()
	ss.NewLine("")
	ss.NewLine("// Add an ExposureContrast processing")
	ss.NewLine("")

	pix := shaderDesc.GetPixelName()
	gain := math.Exp2(d.GetExposure()) / d.pivot
	ss.NewLine("%s.rgb = %s.rgb * %s;", pix, pix, ss.FloatConst(gain))
	ss.NewLine("%s.rgb = pow(max(%s, %s.rgb), %s) * %s;", pix,
		ss.Vec3fConst(0, 0, 0), pix,
		ss.Vec3fConst(d.GetContrast(), d.GetContrast(), d.GetContrast()),
		ss.FloatConst(d.pivot))
	shaderDesc.AddToFunctionShaderCode(ss.String())
	return nil
}

// CreateExposureContrastOp appends an exposure-contrast op, folding an
// inverse direction into the values.
func CreateExposureContrastOp(ops *OpVec, ec *ExposureContrastOpData, dir TransformDirection) error {
	data := ec
	if dir == TransformDirInverse {
		inv, err := ec.Inverse()
		if err != nil {
			return err
		}
		data = inv.(*ExposureContrastOpData)
	}
	*ops = append(*ops, NewOp(data))
	return nil
}
