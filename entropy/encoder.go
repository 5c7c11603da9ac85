// Package entropy implements AIRSPACE's three entropy coders for 16-bit
// residual streams: UNCOMPRESSED passthrough and two truncated-Golomb
// variants distinguished by how they escape outliers, GOLOMB_ZERO and
// GOLOMB_MULTI.
package entropy

import (
	"github.com/airspace/airspace/bitstream"
	"github.com/airspace/airspace/errs"
)

// Type identifies which entropy coder a pass uses.
type Type uint8

const (
	Uncompressed Type = iota
	GolombZero
	GolombMulti
)

func (t Type) String() string {
	switch t {
	case Uncompressed:
		return "UNCOMPRESSED"
	case GolombZero:
		return "GOLOMB_ZERO"
	case GolombMulti:
		return "GOLOMB_MULTI"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether t is one of the three defined types.
func (t Type) Valid() bool { return t <= GolombMulti }

// Encoder is an initialised entropy coder bound to a Golomb parameter (only
// meaningful for the two Golomb variants) and an outlier threshold.
type Encoder struct {
	typ      Type
	gPar     uint32
	gParLog2 uint32
	outlier  uint32
}

// NewEncoder validates encoderParam/outlier for typ and derives the
// effective outlier threshold, mirroring cmp_encoder_init: GOLOMB_ZERO always
// derives its own optimal threshold, GOLOMB_MULTI takes the caller's, and
// both are clamped to golombUpperBound so no codeword can ever overflow.
func NewEncoder(typ Type, encoderParam, outlier uint32) (*Encoder, error) {
	enc := &Encoder{typ: typ}

	switch typ {
	case Uncompressed:
		return enc, nil

	case GolombZero, GolombMulti:
		if encoderParam < MinGolombParam || encoderParam > MaxGolombParam {
			return nil, errs.ErrParamsInvalid
		}

		enc.gPar = encoderParam
		enc.gParLog2 = uint32(ilog2(encoderParam))

		if typ == GolombZero {
			enc.outlier = golombOptimalOutlierZero(enc.gPar, BitsPerSample)
		} else {
			enc.outlier = outlier
		}

		bound := golombUpperBound(enc.gPar, typ, BitsPerSample)
		if bound < enc.outlier {
			enc.outlier = bound
		}
		if enc.outlier == 0 {
			return nil, errs.ErrParamsInvalid
		}

		return enc, nil

	default:
		return nil, errs.ErrParamsInvalid
	}
}

// Outlier returns the effective outlier threshold selected by NewEncoder:
// the caller's value for GOLOMB_MULTI, or the derived optimum for
// GOLOMB_ZERO, both already clamped to golombUpperBound.
func (e *Encoder) Outlier() uint32 { return e.outlier }

// EncodeSample writes one signed 16-bit residual through w using the
// encoder's configured scheme.
func (e *Encoder) EncodeSample(value int16, w *bitstream.Writer) error {
	switch e.typ {
	case Uncompressed:
		return w.AddBits32(uint32(uint16(value)), BitsPerSample)

	case GolombZero:
		mapped := uint32(ZigZag(value))

		if mapped < e.outlier {
			return golombEncode(w, mapped+1, e.gPar, e.gParLog2)
		}

		if err := golombEncode(w, 0, e.gPar, e.gParLog2); err != nil {
			return err
		}

		return w.AddBits32(mapped, BitsPerSample)

	case GolombMulti:
		mapped := uint32(ZigZag(value))

		if mapped < e.outlier {
			return golombEncode(w, mapped, e.gPar, e.gParLog2)
		}

		diff := mapped - e.outlier

		var level uint32
		if diff >= 4 {
			level = uint32(ilog2(diff)) / 2
		}

		if err := golombEncode(w, e.outlier+level, e.gPar, e.gParLog2); err != nil {
			return err
		}

		return w.AddBits32(diff, uint((level+1)*2))

	default:
		return errs.ErrParamsInvalid
	}
}

// MaxCompressedSize returns the worst-case entropy-coded payload size in
// bytes for srcBytes bytes of 16-bit samples, under any entropy type. It
// covers the payload only: no frame header and no checksum trailer.
func MaxCompressedSize(srcBytes int) int {
	nSamples := (srcBytes*8 + BitsPerSample - 1) / BitsPerSample
	bits := nSamples * maxBitsPerSample

	return (bits + 7) / 8
}
