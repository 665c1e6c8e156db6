package goocio

import "math"

// IEEE 754 half-precision conversion, used by the half-domain Lut1D path.
// A half-domain table has one entry per possible 16-bit float pattern, so
// the conversion has to be exact on NaN and the infinities as well.

// halfToFloat expands a 16-bit half pattern to float32.
func halfToFloat(h uint16) float32 {
	sign := uint32(h>>15) & 1
	exp := uint32(h>>10) & 0x1f
	mant := uint32(h) & 0x3ff

	var bits uint32
	switch {
	case exp == 0 && mant == 0:
		// signed zero
		bits = sign << 31
	case exp == 0:
		// subnormal: renormalize
		for mant&0x400 == 0 {
			mant <<= 1
			exp--
		}
		exp++
		mant &= 0x3ff
		bits = sign<<31 | (exp+112)<<23 | mant<<13
	case exp == 0x1f && mant == 0:
		// infinity
		bits = sign<<31 | 0xff<<23
	case exp == 0x1f:
		// NaN, keep the payload
		bits = sign<<31 | 0xff<<23 | mant<<13
	default:
		bits = sign<<31 | (exp+112)<<23 | mant<<13
	}
	return math.Float32frombits(bits)
}

// floatToHalf rounds a float32 to the nearest 16-bit half pattern.
func floatToHalf(f float32) uint16 {
	bits := math.Float32bits(f)
	sign := uint16(bits>>16) & 0x8000
	exp := int32(bits>>23) & 0xff
	mant := bits & 0x7fffff

	switch {
	case exp == 0xff && mant != 0:
		// NaN; force a non-zero mantissa
		m := uint16(mant >> 13)
		if m == 0 {
			m = 1
		}
		return sign | 0x7c00 | m
	case exp == 0xff:
		return sign | 0x7c00
	}

	exp = exp - 127 + 15
	if exp >= 0x1f {
		// overflow to infinity
		return sign | 0x7c00
	}
	if exp <= 0 {
		if exp < -10 {
			return sign // underflow to zero
		}
		// subnormal half
		mant |= 0x800000
		shift := uint32(14 - exp)
		m := mant >> shift
		if mant>>(shift-1)&1 != 0 {
			m++ // round to nearest
		}
		return sign | uint16(m)
	}

	m := mant >> 13
	if mant&0x1000 != 0 {
		m++ // round to nearest; may carry into the exponent, which is fine
	}
	return sign | uint16(exp)<<10 | uint16(m)
}
