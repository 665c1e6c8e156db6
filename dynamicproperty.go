package goocio

// DynamicPropertyType names a runtime-mutable value an op may expose.
type DynamicPropertyType int

const (
	DynamicPropertyExposure DynamicPropertyType = iota
	DynamicPropertyContrast
)

func (t DynamicPropertyType) String() string {
	switch t {
	case DynamicPropertyExposure:
		return "exposure"
	case DynamicPropertyContrast:
		return "contrast"
	}
	return "unknown"
}

// DynamicProperty is a shared-by-reference cell. Ops holding the same
// *DynamicProperty move together when the value changes after finalization;
// identity of the handle, not of its value, is what groups them.
// Concurrent mutation safety is the caller's responsibility.
type DynamicProperty struct {
	ptype   DynamicPropertyType
	value   float64
	dynamic bool
}

// NewDynamicProperty returns a non-dynamic cell holding value.
func NewDynamicProperty(ptype DynamicPropertyType, value float64) *DynamicProperty {
	return &DynamicProperty{ptype: ptype, value: value}
}

func (p *DynamicProperty) GetType() DynamicPropertyType { return p.ptype }

func (p *DynamicProperty) GetValue() float64 { return p.value }

// SetValue updates the shared cell; every op referencing the handle sees it.
func (p *DynamicProperty) SetValue(v float64) { p.value = v }

// IsDynamic reports whether the cell was marked runtime-mutable.
func (p *DynamicProperty) IsDynamic() bool { return p.dynamic }

// MakeDynamic marks the cell runtime-mutable. A dynamic op is excluded from
// the separable-prefix LUT baking since its output may change later.
func (p *DynamicProperty) MakeDynamic() { p.dynamic = true }
