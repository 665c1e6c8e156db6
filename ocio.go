// Package goocio implements the core of a color-transform pipeline compiler:
// an ordered list of elementary ops, an algebraic optimizer that reduces the
// list to a fixed point, a CPU evaluation path and a GPU shader extraction
// stage. File-format readers and API transform objects construct the op list;
// this package is agnostic to their provenance.
package goocio

import "fmt"

// TransformDirection selects forward or inverse evaluation of an op.
type TransformDirection int

const (
	TransformDirForward TransformDirection = iota
	TransformDirInverse
)

func (d TransformDirection) String() string {
	if d == TransformDirInverse {
		return "inverse"
	}
	return "forward"
}

// BitDepth describes the pixel encoding a processed buffer was scaled for.
type BitDepth int

const (
	BitDepthUint8 BitDepth = iota
	BitDepthUint10
	BitDepthUint12
	BitDepthUint16
	BitDepthUint32
	BitDepthF16
	BitDepthF32
)

// GetBitDepthMaxValue returns the normalization ceiling of an integer depth,
// or 1.0 for the float depths.
func GetBitDepthMaxValue(in BitDepth) float64 {
	switch in {
	case BitDepthUint8:
		return 255.0
	case BitDepthUint10:
		return 1023.0
	case BitDepthUint12:
		return 4095.0
	case BitDepthUint16:
		return 65535.0
	case BitDepthUint32:
		return 4294967295.0
	default:
		return 1.0
	}
}

// IsFloatBitDepth reports whether the depth is a floating-point encoding.
func IsFloatBitDepth(in BitDepth) bool {
	return in == BitDepthF16 || in == BitDepthF32
}

// OptimizationFlags is the bit set steering OptimizeOpVec.
type OptimizationFlags uint32

const (
	OptimizationNone                OptimizationFlags = 0
	OptimizationCompSeparablePrefix OptimizationFlags = 1 << 0

	OptimizationDefault = OptimizationCompSeparablePrefix
)

// Exception marks a broken internal invariant (wrong-type combine, missing
// code generator, dynamic-property miss). It is never used for bad user
// parameters; those come back as plain validation errors.
type Exception struct {
	msg string
}

func (e *Exception) Error() string { return e.msg }

func throwf(format string, args ...any) error {
	return &Exception{msg: fmt.Sprintf(format, args...)}
}
