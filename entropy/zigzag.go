package entropy

// BitsPerSample is the fixed width every AIRSPACE sample is normalized to
// before entropy coding; the preprocessors always hand the encoder a 16-bit
// residual regardless of the source flavor.
const BitsPerSample = 16

// signExtend widens value, whose meaningful bits are the low nBits, to the
// full width of int32, preserving its sign.
func signExtend(value int32, nBits uint) int32 {
	shift := 32 - nBits
	return (value << shift) >> shift
}

// ZigZag maps a signed residual to an unsigned value so Golomb coding, which
// only works on unsigned magnitudes, can encode it: 0->0, -1->1, 1->2,
// -2->3, ..., so small-magnitude values of either sign map to small unsigned
// codes.
func ZigZag(value int16) uint16 {
	v := signExtend(int32(value), BitsPerSample)
	return uint16((uint32(v) << 1) ^ uint32(v>>(BitsPerSample-1)))
}

// UnZigZag inverts ZigZag.
func UnZigZag(mapped uint16) int16 {
	v := uint32(mapped)
	return int16((v >> 1) ^ -(v & 1))
}
