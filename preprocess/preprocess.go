// Package preprocess implements the four pluggable sample-preprocessing
// transforms AIRSPACE supports: NONE, DIFF, IWT and MODEL. Each is a small
// value implementing Processor, dispatched through a tagged sum (Kind) the
// way the original C source dispatches through a function-pointer vtable.
package preprocess

import "encoding/binary"

// Reader yields the normalized signed 16-bit sample at index i. The three
// compress flavors (u16, i16, i16-in-i32) differ only in how this closure is
// built; everything downstream of it is flavor-agnostic.
type Reader func(i int) int16

// Kind identifies which transform a pass uses.
type Kind uint8

const (
	None Kind = iota
	Diff
	IWT
	Model
)

func (k Kind) String() string {
	switch k {
	case None:
		return "NONE"
	case Diff:
		return "DIFF"
	case IWT:
		return "IWT"
	case Model:
		return "MODEL"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether k is one of the four defined kinds.
func (k Kind) Valid() bool { return k <= Model }

// MaxModelRate is the highest accepted model_rate (§3).
const MaxModelRate = 16

// Processor is one preprocessing transform.
type Processor interface {
	// WorkBufSize returns the minimum work buffer size in bytes this
	// transform needs for a source of srcBytes bytes, or 0 if it needs
	// none.
	WorkBufSize(srcBytes int) int

	// Init prepares the transform for n samples, reading them through
	// read where the transform needs to see the whole sequence up
	// front (IWT). modelRate is only meaningful for MODEL.
	Init(read Reader, n int, workBuf []byte, modelRate int) error

	// Process returns the signed 16-bit residual for sample index i.
	Process(i int, read Reader, workBuf []byte) int16
}

// For returns the Processor implementing kind.
func For(kind Kind) Processor {
	switch kind {
	case Diff:
		return diffProcessor{}
	case IWT:
		return iwtProcessor{}
	case Model:
		return &modelProcessor{}
	default:
		return noneProcessor{}
	}
}

// RoundUpToEven rounds n up to the nearest even number.
func RoundUpToEven(n int) int {
	if n%2 != 0 {
		return n + 1
	}

	return n
}

func getInt16(buf []byte, i int) int16 {
	return int16(binary.BigEndian.Uint16(buf[2*i : 2*i+2]))
}

func putInt16(buf []byte, i int, v int16) {
	binary.BigEndian.PutUint16(buf[2*i:2*i+2], uint16(v))
}

// SeedModel copies the raw samples yielded by read into workBuf, interpreted
// as a uint16 model array. Per the Design Notes' equivalent-and-cleaner
// reformulation of the source's lazy first-pass seeding, the context calls
// this when transitioning into a primary pass whose secondary preprocessing
// is MODEL, so every later secondary pass always operates on a populated
// model.
func SeedModel(workBuf []byte, read Reader, n int) {
	for i := 0; i < n; i++ {
		putInt16(workBuf, i, read(i))
	}
}
