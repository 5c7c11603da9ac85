// Package airspace implements the compression core of AIRSPACE: an
// embedded, deterministic lossless/near-lossless codec for 16-bit scientific
// sample streams. A Context drives repeated Compress* calls over
// equally-sized buffers, cycling through a primary pass and a configurable
// run of secondary passes, each built from a pluggable preprocessing
// transform (preprocess) feeding a pluggable entropy coder (entropy) into a
// bit-packed, checksummed frame (bitstream, header, checksum).
package airspace

import (
	"unsafe"

	"github.com/airspace/airspace/bitstream"
	"github.com/airspace/airspace/checksum"
	"github.com/airspace/airspace/entropy"
	"github.com/airspace/airspace/errs"
	"github.com/airspace/airspace/header"
	"github.com/airspace/airspace/preprocess"
	"github.com/airspace/airspace/timestamp"
)

// Params configures one context's compression behavior. The zero value
// selects NONE/UNCOMPRESSED for both passes with secondary disabled, matching
// the source's "all fields 0 means NONE/UNCOMPRESSED/disabled" convention.
type Params struct {
	PrimaryPreprocessing  preprocess.Kind
	PrimaryEncoderType    entropy.Type
	PrimaryEncoderParam   uint32
	PrimaryEncoderOutlier uint32

	// SecondaryIterations is how many consecutive passes after the first
	// use the secondary parameters; 0 disables the secondary stage.
	SecondaryIterations     uint8
	SecondaryPreprocessing  preprocess.Kind
	SecondaryEncoderType    entropy.Type
	SecondaryEncoderParam   uint32
	SecondaryEncoderOutlier uint32

	// ModelRate is the exponential blend rate for MODEL preprocessing, 0-16.
	ModelRate uint8

	ChecksumEnabled             bool
	UncompressedFallbackEnabled bool
}

const magic uint32 = 0x41495253 // "AIRS"

// Context is the opaque, caller-owned compression state one producer drives
// through repeated Compress calls. The zero value is not usable; call
// Initialise first.
type Context struct {
	magic   uint32
	params  Params
	workBuf []byte

	modelSize      int // sample count recorded by the current primary pass
	identifier     uint64
	sequenceNumber uint8
}

func requiredWorkBufSize(primary, secondary preprocess.Kind, secondaryIterations uint8, srcBytes int) int {
	size := preprocess.For(primary).WorkBufSize(srcBytes)
	if secondaryIterations > 0 {
		if s := preprocess.For(secondary).WorkBufSize(srcBytes); s > size {
			size = s
		}
	}

	return size
}

// WorkBufSize returns the minimum work buffer size params needs for a
// source of srcBytes bytes, or 0 if neither pass requires one.
func WorkBufSize(params Params, srcBytes int) (int, error) {
	if err := validateParams(params); err != nil {
		return 0, err
	}

	return requiredWorkBufSize(params.PrimaryPreprocessing, params.SecondaryPreprocessing,
		params.SecondaryIterations, srcBytes), nil
}

// worstBitsPerSample is the Golomb escape codeword's 32-bit ceiling plus the
// 16 raw bits that can follow it.
const worstBitsPerSample = 32 + 16

// CompressBound returns the worst-case compressed size in bytes for any
// valid parameters compressing srcBytes bytes.
func CompressBound(srcBytes int) (int, error) {
	if srcBytes >= 1<<24 {
		return 0, errs.ErrHdrOriginalTooLarge
	}

	samples := srcBytes / 2
	payloadBits := samples * worstBitsPerSample
	payloadBytes := (payloadBits + 7) / 8

	return header.MaxSize + payloadBytes + 4, nil
}

// UncompressedBound returns the worst-case frame size when no compression is
// achieved: header plus the raw bytes plus an optional checksum trailer.
func UncompressedBound(srcBytes int) (int, error) {
	if srcBytes >= 1<<24 {
		return 0, errs.ErrHdrOriginalTooLarge
	}

	return header.MaxSize + srcBytes + 4, nil
}

func validateParams(p Params) error {
	if p.PrimaryPreprocessing == preprocess.Model {
		return errs.ErrParamsInvalid
	}
	if !p.PrimaryPreprocessing.Valid() || !p.SecondaryPreprocessing.Valid() {
		return errs.ErrParamsInvalid
	}
	if !p.PrimaryEncoderType.Valid() || !p.SecondaryEncoderType.Valid() {
		return errs.ErrParamsInvalid
	}
	if p.ModelRate > preprocess.MaxModelRate {
		return errs.ErrParamsInvalid
	}

	if p.PrimaryEncoderType != entropy.Uncompressed {
		if p.PrimaryEncoderParam < 1 || p.PrimaryEncoderParam > uint32(entropy.MaxGolombParam) {
			return errs.ErrParamsInvalid
		}
	}
	if p.SecondaryIterations > 0 && p.SecondaryEncoderType != entropy.Uncompressed {
		if p.SecondaryEncoderParam < 1 || p.SecondaryEncoderParam > uint32(entropy.MaxGolombParam) {
			return errs.ErrParamsInvalid
		}
	}

	return nil
}

// Initialise validates params and work_buf, and prepares ctx for repeated
// Compress calls against work_buf, which must remain valid for the whole
// context lifetime.
func (ctx *Context) Initialise(params Params, workBuf []byte) error {
	if err := validateParams(params); err != nil {
		return err
	}

	needsWorkBuf := params.PrimaryPreprocessing == preprocess.IWT ||
		(params.SecondaryIterations > 0 &&
			(params.SecondaryPreprocessing == preprocess.IWT || params.SecondaryPreprocessing == preprocess.Model))

	if needsWorkBuf {
		if workBuf == nil {
			return errs.ErrWorkBufNull
		}
		if !isAligned8(workBuf) {
			return errs.ErrWorkBufUnaligned
		}
	}

	stamp := timestamp.Stamp()
	if stamp >= 1<<48 {
		return errs.ErrTimestampInvalid
	}

	ctx.params = params
	ctx.workBuf = workBuf
	ctx.modelSize = 0
	ctx.identifier = stamp
	ctx.sequenceNumber = 0
	ctx.magic = magic

	return nil
}

// Reset restarts ctx's pass cycle: sequence_number returns to 0 and a fresh
// identifier is fetched.
func (ctx *Context) Reset() error {
	if ctx.magic != magic {
		return errs.ErrContextInvalid
	}

	stamp := timestamp.Stamp()
	if stamp >= 1<<48 {
		return errs.ErrTimestampInvalid
	}

	ctx.sequenceNumber = 0
	ctx.identifier = stamp
	ctx.modelSize = 0

	return nil
}

// Deinitialise invalidates ctx; any further Compress/Reset call fails with
// CONTEXT_INVALID.
func (ctx *Context) Deinitialise() {
	*ctx = Context{}
}

func isAligned8(p []byte) bool {
	if len(p) == 0 {
		return true
	}

	return uintptr(unsafe.Pointer(&p[0]))%8 == 0
}

// passParams is the fully-resolved set of preprocessing/encoder choices for
// one pass, after primary/secondary selection.
type passParams struct {
	preprocessing  preprocess.Kind
	encoderType    entropy.Type
	encoderParam   uint32
	encoderOutlier uint32
}

// CompressU16 compresses n unsigned 16-bit samples, reinterpreting each bit
// pattern as int16 for preprocessing and encoding purposes.
func (ctx *Context) CompressU16(dst []byte, src []uint16) (int, error) {
	read := func(i int) int16 { return int16(src[i]) }
	return ctx.compress(dst, read, len(src), len(src)*2)
}

// CompressI16 compresses n signed 16-bit samples.
func (ctx *Context) CompressI16(dst []byte, src []int16) (int, error) {
	read := func(i int) int16 { return src[i] }
	return ctx.compress(dst, read, len(src), len(src)*2)
}

// CompressI16InI32 compresses n samples carried in the low 16 bits of each
// int32 element; the header's original_size reports the packed 16-bit byte
// count (2*n), not the 4*n input byte count, per the source's final
// revision (§9's resolved open question).
func (ctx *Context) CompressI16InI32(dst []byte, src []int32) (int, error) {
	read := func(i int) int16 { return int16(src[i]) }
	return ctx.compress(dst, read, len(src), len(src)*2)
}

func (ctx *Context) compress(dst []byte, read preprocess.Reader, n, originalBytes int) (int, error) {
	if ctx.magic != magic {
		return 0, errs.ErrContextInvalid
	}
	if n == 0 || originalBytes%2 != 0 {
		return 0, errs.ErrSrcSizeWrong
	}
	if originalBytes >= 1<<24 {
		return 0, errs.ErrHdrOriginalTooLarge
	}

	isPrimary := ctx.sequenceNumber == 0 || int(ctx.sequenceNumber) > int(ctx.params.SecondaryIterations)

	var pp passParams
	if isPrimary {
		stamp := timestamp.Stamp()
		if stamp >= 1<<48 {
			return 0, errs.ErrTimestampInvalid
		}

		ctx.sequenceNumber = 0
		ctx.identifier = stamp
		ctx.modelSize = n

		if ctx.params.SecondaryIterations > 0 && ctx.params.SecondaryPreprocessing == preprocess.Model {
			preprocess.SeedModel(ctx.workBuf, read, n)
		}

		pp = passParams{
			preprocessing:  ctx.params.PrimaryPreprocessing,
			encoderType:    ctx.params.PrimaryEncoderType,
			encoderParam:   ctx.params.PrimaryEncoderParam,
			encoderOutlier: ctx.params.PrimaryEncoderOutlier,
		}
	} else {
		if ctx.params.SecondaryPreprocessing == preprocess.Model && n != ctx.modelSize {
			return 0, errs.ErrSrcSizeMismatch
		}

		pp = passParams{
			preprocessing:  ctx.params.SecondaryPreprocessing,
			encoderType:    ctx.params.SecondaryEncoderType,
			encoderParam:   ctx.params.SecondaryEncoderParam,
			encoderOutlier: ctx.params.SecondaryEncoderOutlier,
		}
	}

	if pp.preprocessing == preprocess.IWT || pp.preprocessing == preprocess.Model {
		need := preprocess.For(pp.preprocessing).WorkBufSize(originalBytes)
		if len(ctx.workBuf) < need {
			return 0, errs.ErrWorkBufTooSmall
		}
	}

	size, err := ctx.encodeOnce(dst, read, n, originalBytes, pp, int(ctx.params.ModelRate))
	if err != nil {
		return 0, err
	}

	if ctx.params.UncompressedFallbackEnabled {
		bound, err := UncompressedBound(originalBytes)
		if err != nil {
			return 0, err
		}
		if !ctx.params.ChecksumEnabled {
			bound -= 4
		}

		if size >= bound {
			fallback := passParams{preprocessing: preprocess.None, encoderType: entropy.Uncompressed}

			size, err = ctx.encodeOnce(dst, read, n, originalBytes, fallback, 0)
			if err != nil {
				return 0, err
			}
		}
	}

	ctx.sequenceNumber++

	return size, nil
}

// encodeOnce runs one complete header+payload(+checksum) encode of n samples
// under pp into dst, returning the total frame size. It never mutates
// sequence/identifier bookkeeping; callers own the pass-class decision.
func (ctx *Context) encodeOnce(dst []byte, read preprocess.Reader, n, originalBytes int, pp passParams, modelRate int) (int, error) {
	var w bitstream.Writer
	if err := w.Init(dst); err != nil {
		return 0, err
	}

	hdr := &header.Header{
		VersionFlag:     true,
		OriginalSize:    uint32(originalBytes),
		Identifier:      ctx.identifier,
		SequenceNumber:  ctx.sequenceNumber,
		Preprocessing:   pp.preprocessing,
		ChecksumEnabled: ctx.params.ChecksumEnabled,
		EncoderType:     pp.encoderType,
		ModelRate:       uint8(modelRate),
		EncoderParam:    uint16(pp.encoderParam),
		EncoderOutlier:  pp.encoderOutlier,
	}

	if err := hdr.Serialize(&w); err != nil {
		return 0, err
	}

	enc, err := entropy.NewEncoder(pp.encoderType, pp.encoderParam, pp.encoderOutlier)
	if err != nil {
		return 0, err
	}
	hdr.EncoderOutlier = enc.Outlier()

	proc := preprocess.For(pp.preprocessing)
	if err := proc.Init(read, n, ctx.workBuf, modelRate); err != nil {
		return 0, err
	}

	for i := 0; i < n; i++ {
		v := proc.Process(i, read, ctx.workBuf)
		if err := enc.EncodeSample(v, &w); err != nil {
			return 0, err
		}
	}

	frameBytes, err := w.Flush()
	if err != nil {
		return 0, err
	}

	total := frameBytes
	if ctx.params.ChecksumEnabled {
		total += 4
		if total > len(dst) {
			return 0, errs.ErrDstTooSmall
		}

		sum := sampleChecksum(read, n)
		dst[frameBytes] = byte(sum >> 24)
		dst[frameBytes+1] = byte(sum >> 16)
		dst[frameBytes+2] = byte(sum >> 8)
		dst[frameBytes+3] = byte(sum)
	}

	hdr.CompressedSize = uint32(total)

	if err := w.Rewind(); err != nil {
		return 0, err
	}
	if err := hdr.Serialize(&w); err != nil {
		return 0, err
	}
	if _, err := w.Flush(); err != nil {
		return 0, err
	}

	return total, nil
}

func sampleChecksum(read preprocess.Reader, n int) uint32 {
	h := checksum.New(checksum.Seed)
	for i := 0; i < n; i++ {
		h.WriteSample(uint16(read(i)))
	}

	return h.Sum32()
}
