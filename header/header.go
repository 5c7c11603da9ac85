// Package header implements AIRSPACE's bit-packed frame header: serializing
// and parsing the fixed 16-byte base header and its optional 6-byte
// extension, mirroring original_source's cmp_hdr_serialize/deserialize.
package header

import (
	"github.com/airspace/airspace/bitstream"
	"github.com/airspace/airspace/entropy"
	"github.com/airspace/airspace/errs"
	"github.com/airspace/airspace/preprocess"
)

const (
	// BaseSize is the fixed width of every frame's header: version(16) +
	// compressed_size(24) + original_size(24) + identifier(48) +
	// sequence_number(8) + method(8), all in bits, summing to 128 bits.
	BaseSize = 16

	// ExtSize is the width of the optional extended header: model_rate(8) +
	// encoder_param(16) + encoder_outlier(24), summing to 48 bits.
	ExtSize = 6

	// MaxSize is the largest a header can be, base plus extension.
	MaxSize = BaseSize + ExtSize

	maxCompressedSize = 1<<24 - 1
	maxOriginalSize   = 1<<24 - 1
	maxIdentifier     = 1<<48 - 1
)

// Header is the decoded form of a frame header; Serialize/Deserialize
// convert it to and from the bit-packed wire layout.
type Header struct {
	VersionFlag    bool
	VersionID      uint16 // 15 bits
	CompressedSize uint32 // 24 bits
	OriginalSize   uint32 // 24 bits
	Identifier     uint64 // 48 bits
	SequenceNumber uint8

	Preprocessing   preprocess.Kind
	ChecksumEnabled bool
	EncoderType     entropy.Type

	// Extended fields; only meaningful, and only serialized, when
	// HasExtended reports true for this combination of fields.
	ModelRate      uint8
	EncoderParam   uint16
	EncoderOutlier uint32 // 24 bits
}

// HasExtended reports whether h needs the extended header: present iff the
// preprocessing is non-trivial or the encoder is not UNCOMPRESSED, i.e. the
// frame is anything other than the fully-default NONE/UNCOMPRESSED case.
func (h *Header) HasExtended() bool {
	return h.Preprocessing != preprocess.None || h.EncoderType != entropy.Uncompressed
}

// Size returns the serialized size of h in bytes: BaseSize, plus ExtSize if
// HasExtended.
func (h *Header) Size() int {
	if h.HasExtended() {
		return MaxSize
	}

	return BaseSize
}

// Serialize writes h's bit-packed wire form through w, which must already be
// initialized (the header shares its bitstream writer with the frame payload
// so the two stay byte-contiguous).
func (h *Header) Serialize(w *bitstream.Writer) error {
	if h.CompressedSize > maxCompressedSize {
		return errs.ErrHdrCmpSizeTooLarge
	}
	if h.OriginalSize > maxOriginalSize {
		return errs.ErrHdrOriginalTooLarge
	}
	if h.Identifier > maxIdentifier {
		return errs.ErrIntHeader
	}
	if !h.Preprocessing.Valid() || !h.EncoderType.Valid() {
		return errs.ErrIntHeader
	}

	versionFlag := uint32(0)
	if h.VersionFlag {
		versionFlag = 1
	}
	if err := w.AddBits32(versionFlag, 1); err != nil {
		return err
	}
	if err := w.AddBits32(uint32(h.VersionID), 15); err != nil {
		return err
	}
	if err := w.AddBits32(h.CompressedSize, 24); err != nil {
		return err
	}
	if err := w.AddBits32(h.OriginalSize, 24); err != nil {
		return err
	}
	if err := w.AddBits64(h.Identifier, 48); err != nil {
		return err
	}
	if err := w.AddBits32(uint32(h.SequenceNumber), 8); err != nil {
		return err
	}
	if err := w.AddBits32(uint32(h.Preprocessing), 4); err != nil {
		return err
	}
	checksumEnabled := uint32(0)
	if h.ChecksumEnabled {
		checksumEnabled = 1
	}
	if err := w.AddBits32(checksumEnabled, 1); err != nil {
		return err
	}
	if err := w.AddBits32(uint32(h.EncoderType), 3); err != nil {
		return err
	}

	if !h.HasExtended() {
		return nil
	}

	if h.EncoderOutlier > 1<<24-1 {
		return errs.ErrIntHeader
	}

	if err := w.AddBits32(uint32(h.ModelRate), 8); err != nil {
		return err
	}
	if err := w.AddBits32(uint32(h.EncoderParam), 16); err != nil {
		return err
	}

	return w.AddBits32(h.EncoderOutlier, 24)
}

// Deserialize parses a frame header from the front of src, which must be at
// least BaseSize bytes, extending the read to MaxSize when the base header's
// method fields indicate an extended header follows.
func Deserialize(src []byte) (*Header, int, error) {
	if len(src) < BaseSize {
		return nil, 0, errs.ErrIntHeader
	}

	r := newBitReader(src)

	h := &Header{}
	h.VersionFlag = r.bits(1) != 0
	h.VersionID = uint16(r.bits(15))
	h.CompressedSize = r.bits(24)
	h.OriginalSize = r.bits(24)
	h.Identifier = r.bits64(48)
	h.SequenceNumber = uint8(r.bits(8))
	h.Preprocessing = preprocess.Kind(r.bits(4))
	h.ChecksumEnabled = r.bits(1) != 0
	h.EncoderType = entropy.Type(r.bits(3))

	if err := r.err(); err != nil {
		return nil, 0, err
	}
	if !h.Preprocessing.Valid() || !h.EncoderType.Valid() {
		return nil, 0, errs.ErrIntHeader
	}

	if !h.HasExtended() {
		return h, BaseSize, nil
	}

	if len(src) < MaxSize {
		return nil, 0, errs.ErrIntHeader
	}

	h.ModelRate = uint8(r.bits(8))
	h.EncoderParam = uint16(r.bits(16))
	h.EncoderOutlier = r.bits(24)

	if err := r.err(); err != nil {
		return nil, 0, err
	}

	return h, MaxSize, nil
}
