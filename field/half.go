package field

import "math"

// HalfSnapshot packs the current heights as IEEE 754 binary16 values, the
// layout half-float height textures expect.
func (f *Field) HalfSnapshot(dst []uint16) []uint16 {
	if cap(dst) < len(f.curr) {
		dst = make([]uint16, len(f.curr))
	}
	dst = dst[:len(f.curr)]
	for i, h := range f.curr {
		dst[i] = halfBits(h)
	}
	return dst
}

// halfBits converts f to binary16, rounding to nearest even.
func halfBits(f float32) uint16 {
	b := math.Float32bits(f)
	sign := uint16(b>>16) & 0x8000
	if b&0x7fffffff > 0x7f800000 {
		return sign | 0x7e00
	}
	exp := int32(b>>23&0xff) - 127 + 15
	mant := b & 0x7fffff
	switch {
	case exp >= 0x1f:
		return sign | 0x7c00
	case exp <= 0:
		if exp < -10 {
			return sign
		}
		full := mant | 0x800000
		shift := uint32(14 - exp)
		half := uint16(full >> shift)
		rem := full & (1<<shift - 1)
		mid := uint32(1) << (shift - 1)
		if rem > mid || (rem == mid && half&1 == 1) {
			half++
		}
		return sign | half
	}
	half := uint16(exp)<<10 | uint16(mant>>13)
	rem := mant & 0x1fff
	if rem > 0x1000 || (rem == 0x1000 && half&1 == 1) {
		// a carry out of the mantissa bumps the exponent, up to infinity
		half++
	}
	return sign | half
}
