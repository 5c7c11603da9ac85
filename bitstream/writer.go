// Package bitstream implements a big-endian, MSB-first bit sink over a
// caller-supplied byte buffer, with a 64-bit write cache and sticky error
// semantics: once any write fails, every subsequent operation is a no-op
// that returns the same error.
package bitstream

import (
	"encoding/binary"
	"unsafe"

	"github.com/airspace/airspace/errs"
)

// Writer packs bits MSB-first into a destination buffer it does not own.
// The zero value is not usable; call Init first.
type Writer struct {
	dst     []byte
	bytePos int
	cache   uint64
	bitCap  uint // free bits remaining in cache, 0..64
	err     error
}

// Init binds w to dst, starting a fresh bit stream at offset 0. dst must be
// non-nil and 8-byte aligned.
func (w *Writer) Init(dst []byte) error {
	if dst == nil {
		w.err = errs.ErrDstNull
		return w.err
	}
	if !isAligned8(dst) {
		w.err = errs.ErrDstUnaligned
		return w.err
	}

	w.dst = dst
	w.bytePos = 0
	w.cache = 0
	w.bitCap = 64
	w.err = nil

	return nil
}

// Err returns the sticky error set by a previous operation, if any.
func (w *Writer) Err() error { return w.err }

// AddBits32 appends the low n bits of value (n <= 32), MSB-first. value must
// have no significant bits above bit n; violating that is reported as
// errs.ErrIntBitstream.
func (w *Writer) AddBits32(value uint32, n uint) error {
	if w.err != nil {
		return w.err
	}
	if n == 0 {
		return nil
	}
	if n < 32 && value>>n != 0 {
		w.err = errs.ErrIntBitstream
		return w.err
	}

	if n <= w.bitCap {
		w.cache |= uint64(value) << (w.bitCap - n)
		w.bitCap -= n

		return nil
	}

	// Slow path: fill the remaining capacity with the top bits of value,
	// emit the now-full cache, then seed the new cache with the rest.
	leftover := n - w.bitCap
	top := value >> leftover
	w.cache |= uint64(top)

	if err := w.emit8(); err != nil {
		return err
	}

	mask := uint32(1)<<leftover - 1
	rem := value & mask
	w.cache = uint64(rem) << (64 - leftover)
	w.bitCap = 64 - leftover

	return nil
}

// AddBits64 appends the low n bits of value (n <= 64), MSB-first, splitting
// the write into at most two AddBits32 calls.
func (w *Writer) AddBits64(value uint64, n uint) error {
	if w.err != nil {
		return w.err
	}

	if n > 32 {
		hi := uint32(value >> 32)
		if err := w.AddBits32(hi, n-32); err != nil {
			return err
		}

		lo := uint32(value)

		return w.AddBits32(lo, 32)
	}

	return w.AddBits32(uint32(value), n)
}

// emit8 writes the full 64-bit cache to dst as 8 big-endian bytes and resets
// it to empty. It does not check w.bitCap; callers only call it once the
// cache is full.
func (w *Writer) emit8() error {
	if w.bytePos+8 > len(w.dst) {
		w.err = errs.ErrDstTooSmall
		return w.err
	}

	binary.BigEndian.PutUint64(w.dst[w.bytePos:w.bytePos+8], w.cache)
	w.bytePos += 8
	w.cache = 0
	w.bitCap = 64

	return nil
}

// Flush emits any partial bytes still held in the cache, MSB-first, padding
// the final byte with zero bits on the LSB side, and returns the total
// number of bytes written to dst since Init or Rewind.
func (w *Writer) Flush() (int, error) {
	if w.err != nil {
		return 0, w.err
	}

	used := 64 - w.bitCap
	if used > 0 {
		nBytes := int((used + 7) / 8)
		if w.bytePos+nBytes > len(w.dst) {
			w.err = errs.ErrDstTooSmall
			return 0, w.err
		}

		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], w.cache)
		copy(w.dst[w.bytePos:w.bytePos+nBytes], buf[:nBytes])
		w.bytePos += nBytes
		w.cache = 0
		w.bitCap = 64
	}

	return w.bytePos, nil
}

// Rewind flushes any pending bits, then re-initializes the writer to the
// start of the same destination buffer. It is used to back-patch a header
// once the frame's total size is known: after Rewind, writing exactly the
// header's bit width overwrites the header region in place, leaving bytes
// beyond it (the already-written payload) untouched.
func (w *Writer) Rewind() error {
	if _, err := w.Flush(); err != nil {
		return err
	}

	return w.Init(w.dst)
}

func isAligned8(p []byte) bool {
	if len(p) == 0 {
		return true
	}

	return uintptr(unsafe.Pointer(&p[0]))%8 == 0
}
