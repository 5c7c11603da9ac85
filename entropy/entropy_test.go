package entropy_test

import (
	"testing"

	"github.com/airspace/airspace/bitstream"
	"github.com/airspace/airspace/entropy"
	"github.com/stretchr/testify/require"
)

func TestZigZagRoundTrip(t *testing.T) {
	for _, v := range []int16{0, 1, -1, 2, -2, 32767, -32768, 100, -100} {
		mapped := entropy.ZigZag(v)
		require.Equal(t, v, entropy.UnZigZag(mapped))
	}
}

func TestZigZagKnownValues(t *testing.T) {
	require.Equal(t, uint16(0), entropy.ZigZag(0))
	require.Equal(t, uint16(1), entropy.ZigZag(-1))
	require.Equal(t, uint16(2), entropy.ZigZag(1))
	require.Equal(t, uint16(15), entropy.ZigZag(-8))
	require.Equal(t, uint16(14), entropy.ZigZag(7))
}

func TestEncoderUncompressedRoundTripsThroughWriter(t *testing.T) {
	enc, err := entropy.NewEncoder(entropy.Uncompressed, 0, 0)
	require.NoError(t, err)

	dst := make([]byte, 16)
	var w bitstream.Writer
	require.NoError(t, w.Init(dst))

	require.NoError(t, enc.EncodeSample(-1, &w))
	require.NoError(t, enc.EncodeSample(1234, &w))

	n, err := w.Flush()
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, []byte{0xFF, 0xFF, 0x04, 0xD2}, dst[:4])
}

func TestEncoderRejectsBadGolombParam(t *testing.T) {
	_, err := entropy.NewEncoder(entropy.GolombZero, 0, 0)
	require.Error(t, err)

	_, err = entropy.NewEncoder(entropy.GolombMulti, entropy.MaxGolombParam+1, 1)
	require.Error(t, err)
}

// TestGolombZeroScenario mirrors the specification's literal GOLOMB_ZERO
// m=1 worked example: residuals -8, 7, -1, 0 with encoder_outlier=16 encode
// to the payload bytes FF FF 7F FF 68.
func TestGolombZeroScenario(t *testing.T) {
	enc, err := entropy.NewEncoder(entropy.GolombZero, 1, 0)
	require.NoError(t, err)

	dst := make([]byte, 16)
	var w bitstream.Writer
	require.NoError(t, w.Init(dst))

	for _, v := range []int16{-8, 7, -1, 0} {
		require.NoError(t, enc.EncodeSample(v, &w))
	}

	n, err := w.Flush()
	require.NoError(t, err)
	require.Equal(t, []byte{0xFF, 0xFF, 0x7F, 0xFF, 0x68}, dst[:n])
}

// TestGolombMultiScenario mirrors the specification's literal GOLOMB_MULTI
// m=1, outlier=5 worked example: residuals 0, 2 encode to payload byte 78.
func TestGolombMultiScenario(t *testing.T) {
	enc, err := entropy.NewEncoder(entropy.GolombMulti, 1, 5)
	require.NoError(t, err)

	dst := make([]byte, 16)
	var w bitstream.Writer
	require.NoError(t, w.Init(dst))

	for _, v := range []int16{0, 2} {
		require.NoError(t, enc.EncodeSample(v, &w))
	}

	n, err := w.Flush()
	require.NoError(t, err)
	require.Equal(t, []byte{0x78}, dst[:n])
}

func TestTypeString(t *testing.T) {
	require.Equal(t, "UNCOMPRESSED", entropy.Uncompressed.String())
	require.Equal(t, "GOLOMB_ZERO", entropy.GolombZero.String())
	require.Equal(t, "GOLOMB_MULTI", entropy.GolombMulti.String())
	require.Equal(t, "UNKNOWN", entropy.Type(99).String())
}
