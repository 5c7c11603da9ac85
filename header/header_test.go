package header_test

import (
	"testing"

	"github.com/airspace/airspace/bitstream"
	"github.com/airspace/airspace/entropy"
	"github.com/airspace/airspace/errs"
	"github.com/airspace/airspace/header"
	"github.com/airspace/airspace/preprocess"
	"github.com/stretchr/testify/require"
)

func TestHasExtendedIsFalseOnlyForFullyDefault(t *testing.T) {
	h := &header.Header{Preprocessing: preprocess.None, EncoderType: entropy.Uncompressed}
	require.False(t, h.HasExtended())
	require.Equal(t, header.BaseSize, h.Size())

	h2 := &header.Header{Preprocessing: preprocess.Diff, EncoderType: entropy.Uncompressed}
	require.True(t, h2.HasExtended())
	require.Equal(t, header.MaxSize, h2.Size())

	h3 := &header.Header{Preprocessing: preprocess.None, EncoderType: entropy.GolombZero}
	require.True(t, h3.HasExtended())
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	h := &header.Header{
		VersionID:       1,
		CompressedSize:  header.BaseSize + 4,
		OriginalSize:    4,
		Identifier:      0x0102030405,
		SequenceNumber:  3,
		Preprocessing:   preprocess.Diff,
		ChecksumEnabled: true,
		EncoderType:     entropy.GolombMulti,
		ModelRate:       8,
		EncoderParam:    5,
		EncoderOutlier:  12345,
	}

	dst := make([]byte, header.MaxSize)
	var w bitstream.Writer
	require.NoError(t, w.Init(dst))
	require.NoError(t, h.Serialize(&w))
	_, err := w.Flush()
	require.NoError(t, err)

	got, n, err := header.Deserialize(dst)
	require.NoError(t, err)
	require.Equal(t, header.MaxSize, n)
	require.Equal(t, h, got)
}

// TestScenarioS1Header mirrors S1: all-zero params, NONE/UNCOMPRESSED, no
// extended header, compressed_size=CMP_HDR_SIZE+4.
func TestScenarioS1Header(t *testing.T) {
	h := &header.Header{
		CompressedSize: header.BaseSize + 4,
		OriginalSize:   4,
		Preprocessing:  preprocess.None,
		EncoderType:    entropy.Uncompressed,
		SequenceNumber: 0,
	}

	require.False(t, h.HasExtended())
	require.Equal(t, header.BaseSize, h.Size())

	dst := make([]byte, header.BaseSize)
	var w bitstream.Writer
	require.NoError(t, w.Init(dst))
	require.NoError(t, h.Serialize(&w))
	n, err := w.Flush()
	require.NoError(t, err)
	require.Equal(t, header.BaseSize, n)

	got, size, err := header.Deserialize(dst)
	require.NoError(t, err)
	require.Equal(t, header.BaseSize, size)
	require.Equal(t, uint32(header.BaseSize+4), got.CompressedSize)
	require.Equal(t, uint32(4), got.OriginalSize)
}

// TestScenarioS2Header mirrors S2: DIFF + UNCOMPRESSED, extended header
// present with encoder_param=0, encoder_outlier=0, model_rate=0.
func TestScenarioS2Header(t *testing.T) {
	h := &header.Header{
		Preprocessing:  preprocess.Diff,
		EncoderType:    entropy.Uncompressed,
		ModelRate:      0,
		EncoderParam:   0,
		EncoderOutlier: 0,
	}

	require.True(t, h.HasExtended())

	dst := make([]byte, header.MaxSize)
	var w bitstream.Writer
	require.NoError(t, w.Init(dst))
	require.NoError(t, h.Serialize(&w))
	_, err := w.Flush()
	require.NoError(t, err)

	got, size, err := header.Deserialize(dst)
	require.NoError(t, err)
	require.Equal(t, header.MaxSize, size)
	require.Equal(t, preprocess.Diff, got.Preprocessing)
	require.Equal(t, entropy.Uncompressed, got.EncoderType)
	require.Equal(t, uint8(0), got.ModelRate)
	require.Equal(t, uint16(0), got.EncoderParam)
	require.Equal(t, uint32(0), got.EncoderOutlier)
}

// TestScenarioS3HeaderOutlier mirrors S3's GOLOMB_ZERO m=1,
// encoder_outlier=16.
func TestScenarioS3HeaderOutlier(t *testing.T) {
	h := &header.Header{
		Preprocessing:  preprocess.None,
		EncoderType:    entropy.GolombZero,
		EncoderParam:   1,
		EncoderOutlier: 16,
	}

	dst := make([]byte, header.MaxSize)
	var w bitstream.Writer
	require.NoError(t, w.Init(dst))
	require.NoError(t, h.Serialize(&w))
	_, err := w.Flush()
	require.NoError(t, err)

	got, _, err := header.Deserialize(dst)
	require.NoError(t, err)
	require.Equal(t, uint32(16), got.EncoderOutlier)
	require.Equal(t, uint16(1), got.EncoderParam)
}

// TestScenarioS4HeaderOutlier mirrors S4's GOLOMB_MULTI m=1, outlier=5.
func TestScenarioS4HeaderOutlier(t *testing.T) {
	h := &header.Header{
		Preprocessing:  preprocess.None,
		EncoderType:    entropy.GolombMulti,
		EncoderParam:   1,
		EncoderOutlier: 5,
	}

	dst := make([]byte, header.MaxSize)
	var w bitstream.Writer
	require.NoError(t, w.Init(dst))
	require.NoError(t, h.Serialize(&w))
	_, err := w.Flush()
	require.NoError(t, err)

	got, _, err := header.Deserialize(dst)
	require.NoError(t, err)
	require.Equal(t, uint32(5), got.EncoderOutlier)
}

// TestScenarioS6Header mirrors S6: uncompressed fallback reports
// preprocessing=NONE, encoder_type=UNCOMPRESSED, no extended header,
// compressed_size=CMP_HDR_SIZE+6.
func TestScenarioS6Header(t *testing.T) {
	h := &header.Header{
		CompressedSize: header.BaseSize + 6,
		OriginalSize:   6,
		Preprocessing:  preprocess.None,
		EncoderType:    entropy.Uncompressed,
	}

	require.False(t, h.HasExtended())
	require.Equal(t, header.BaseSize, h.Size())
}

func TestSerializeRejectsOversizedFields(t *testing.T) {
	dst := make([]byte, header.MaxSize)
	var w bitstream.Writer
	require.NoError(t, w.Init(dst))

	h := &header.Header{CompressedSize: 1 << 24}
	require.Error(t, h.Serialize(&w))
}

func TestDeserializeRejectsTruncatedSource(t *testing.T) {
	_, _, err := header.Deserialize(make([]byte, header.BaseSize-1))
	require.ErrorIs(t, err, errs.ErrIntHeader)
}

func TestDeserializeRejectsTruncatedExtendedSource(t *testing.T) {
	h := &header.Header{Preprocessing: preprocess.Diff, EncoderType: entropy.Uncompressed}

	dst := make([]byte, header.MaxSize)
	var w bitstream.Writer
	require.NoError(t, w.Init(dst))
	require.NoError(t, h.Serialize(&w))
	_, err := w.Flush()
	require.NoError(t, err)

	_, _, err = header.Deserialize(dst[:header.BaseSize])
	require.ErrorIs(t, err, errs.ErrIntHeader)
}
