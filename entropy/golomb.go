package entropy

import (
	"math/bits"

	"github.com/airspace/airspace/bitstream"
)

const (
	// MinGolombParam and MaxGolombParam bound the accepted Golomb parameter
	// m (encoder_param in the header).
	MinGolombParam uint32 = 1
	MaxGolombParam uint32 = 65535

	// maxCodewordBits is the longest codeword golombEncode may ever emit;
	// golombUpperBound finds the first value that would exceed it.
	maxCodewordBits = 32

	// maxBitsPerSample bounds a single sample's worst-case encoding: a
	// full-length Golomb escape plus the raw residual bits that follow it.
	maxBitsPerSample = maxCodewordBits + BitsPerSample
)

// ilog2 returns floor(log2(x)). Mirrors the source's ilog2, built on clz;
// math/bits.Len32 is the idiomatic Go equivalent of __builtin_clz here, so
// there's no case for pulling in a bit-twiddling dependency for this.
func ilog2(x uint32) int {
	if x == 0 {
		return -1
	}

	return bits.Len32(x) - 1
}

// golombUpperBound returns the first value golombEncode cannot represent
// without exceeding maxCodewordBits, for the given Golomb parameter and
// encoder type, or 0 if the parameters are invalid.
func golombUpperBound(gPar uint32, encoderType Type, nBits uint) uint32 {
	if gPar < MinGolombParam || gPar > MaxGolombParam {
		return 0
	}
	if nBits > BitsPerSample {
		return 0
	}

	cutoff := (2 << uint(ilog2(gPar))) - gPar
	firstInvalidGroup := uint32(maxCodewordBits + 1 - (ilog2(gPar) + 2))
	firstInvalidValue := cutoff + firstInvalidGroup*gPar

	if encoderType == GolombMulti {
		numEscapeSymbols := (uint32(nBits) + 1) / 2
		if firstInvalidValue > numEscapeSymbols {
			firstInvalidValue -= numEscapeSymbols
		} else {
			return 0
		}
	}

	return firstInvalidValue
}

// golombOptimalOutlierZero returns the smallest mapped value from which the
// zero-escape mechanism becomes cheaper than a plain Golomb codeword, for the
// GOLOMB_ZERO encoder type.
func golombOptimalOutlierZero(gPar uint32, nBits uint) uint32 {
	if gPar < MinGolombParam || gPar > MaxGolombParam {
		return 0
	}
	if nBits < 1 || nBits > maxCodewordBits {
		return 0
	}

	cutoff := uint64(2<<uint(ilog2(gPar))) - uint64(gPar)
	outlier := cutoff + uint64(nBits)*uint64(gPar) - 1

	if outlier > 0xFFFFFFFF {
		return 0xFFFFFFFF
	}

	return uint32(outlier)
}

// golombEncode writes value as a truncated Golomb codeword with parameter
// gPar (gParLog2 precomputed as ilog2(gPar)).
func golombEncode(w *bitstream.Writer, value, gPar, gParLog2 uint32) error {
	cutoff := (2 << gParLog2) - gPar

	if value < cutoff {
		return w.AddBits32(value, uint(gParLog2+1))
	}

	groupNum := (value - cutoff) / gPar
	remainder := (value - cutoff) - groupNum*gPar
	unaryCode := (uint32(1) << groupNum) - 1
	baseCodeword := cutoff << 1
	length := gParLog2 + 1
	codeword := unaryCode<<(length+1) + baseCodeword + remainder
	length += 1 + groupNum

	return w.AddBits32(codeword, uint(length))
}
