// Package checksum implements the seeded 32-bit xxHash variant used to
// verify a compressed frame's sample stream, normalized to a big-endian
// 16-bit byte sequence before hashing regardless of host byte order.
package checksum

import "github.com/airspace/airspace/endian"

// Seed is the fixed seed AIRSPACE frames use for their checksum trailer.
const Seed uint32 = 419764627

const (
	prime1 uint32 = 2654435761
	prime2 uint32 = 2246822519
	prime3 uint32 = 3266489917
	prime4 uint32 = 668265263
	prime5 uint32 = 374761393
)

// Hasher is a streaming xxHash32 accumulator. The zero value is not usable;
// call Reset (or use New) before Write.
type Hasher struct {
	seed        uint32
	v1, v2, v3, v4 uint32
	total       uint64
	buf         [16]byte
	bufLen      int
}

// New returns a Hasher seeded with seed.
func New(seed uint32) *Hasher {
	h := &Hasher{seed: seed}
	h.Reset()

	return h
}

// Reset restores the hasher to its just-seeded state.
func (h *Hasher) Reset() {
	h.v1 = h.seed + prime1 + prime2
	h.v2 = h.seed + prime2
	h.v3 = h.seed
	h.v4 = h.seed - prime1
	h.total = 0
	h.bufLen = 0
}

// Write folds p into the running hash. It never returns an error.
func (h *Hasher) Write(p []byte) {
	h.total += uint64(len(p))

	if h.bufLen > 0 {
		n := copy(h.buf[h.bufLen:16], p)
		h.bufLen += n
		p = p[n:]

		if h.bufLen == 16 {
			h.consume(h.buf[:16])
			h.bufLen = 0
		}
	}

	for len(p) >= 16 {
		h.consume(p[:16])
		p = p[16:]
	}

	if len(p) > 0 {
		h.bufLen = copy(h.buf[:], p)
	}
}

// WriteSample folds the big-endian two-byte representation of a single
// 16-bit sample into the running hash without allocating.
func (h *Hasher) WriteSample(bits uint16) {
	var b [2]byte
	endian.GetBigEndianEngine().PutUint16(b[:], bits)
	h.Write(b[:])
}

func (h *Hasher) consume(block []byte) {
	h.v1 = round(h.v1, le32(block[0:4]))
	h.v2 = round(h.v2, le32(block[4:8]))
	h.v3 = round(h.v3, le32(block[8:12]))
	h.v4 = round(h.v4, le32(block[12:16]))
}

// Sum32 returns the current hash value. It does not mutate the hasher's
// accumulated v1-v4 state, but does consume a copy of the trailing partial
// block, so it may be called mid-stream.
func (h *Hasher) Sum32() uint32 {
	var acc uint32
	if h.total >= 16 {
		acc = rotl(h.v1, 1) + rotl(h.v2, 7) + rotl(h.v3, 12) + rotl(h.v4, 18)
	} else {
		acc = h.seed + prime5
	}

	acc += uint32(h.total)

	p := h.buf[:h.bufLen]
	for len(p) >= 4 {
		acc += le32(p[:4]) * prime3
		acc = rotl(acc, 17) * prime4
		p = p[4:]
	}
	for len(p) > 0 {
		acc += uint32(p[0]) * prime5
		acc = rotl(acc, 11) * prime1
		p = p[1:]
	}

	acc ^= acc >> 15
	acc *= prime2
	acc ^= acc >> 13
	acc *= prime3
	acc ^= acc >> 16

	return acc
}

func round(acc, input uint32) uint32 {
	acc += input * prime2
	acc = rotl(acc, 13)
	acc *= prime1

	return acc
}

func rotl(x uint32, r uint) uint32 { return (x << r) | (x >> (32 - r)) }

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// Samples hashes a sequence of 16-bit sample bit patterns as a big-endian
// byte stream, seeded with Seed. This is the checksum trailer's definition
// (§4.C): samples are endian-normalized to big-endian before hashing,
// independent of host byte order.
func Samples(samples []uint16) uint32 {
	h := New(Seed)
	for _, s := range samples {
		h.WriteSample(s)
	}

	return h.Sum32()
}
