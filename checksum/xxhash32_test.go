package checksum_test

import (
	"testing"

	"github.com/airspace/airspace/checksum"
	"github.com/stretchr/testify/require"
)

func TestEmptyInputSeedZero(t *testing.T) {
	h := checksum.New(0)
	require.Equal(t, uint32(0x02CC5D05), h.Sum32())
}

func TestChunkingIsConsistent(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog, twice over")

	whole := checksum.New(checksum.Seed)
	whole.Write(data)

	chunked := checksum.New(checksum.Seed)
	for i := 0; i < len(data); i += 3 {
		end := i + 3
		if end > len(data) {
			end = len(data)
		}
		chunked.Write(data[i:end])
	}

	require.Equal(t, whole.Sum32(), chunked.Sum32())
}

func TestSamplesDeterministic(t *testing.T) {
	samples := []uint16{0x0001, 0x0203, 0xFFFF, 0x8000}

	require.Equal(t, checksum.Samples(samples), checksum.Samples(samples))
}

func TestSamplesDifferOnContent(t *testing.T) {
	a := []uint16{0x0001, 0x0002}
	b := []uint16{0x0001, 0x0003}

	require.NotEqual(t, checksum.Samples(a), checksum.Samples(b))
}

func TestSeedChangesHash(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04}

	h1 := checksum.New(1)
	h1.Write(data)

	h2 := checksum.New(2)
	h2.Write(data)

	require.NotEqual(t, h1.Sum32(), h2.Sum32())
}

func TestWriteSampleMatchesWrite(t *testing.T) {
	var viaSample, viaWrite checksum.Hasher
	viaSample = *checksum.New(checksum.Seed)
	viaWrite = *checksum.New(checksum.Seed)

	viaSample.WriteSample(0x1234)
	viaWrite.Write([]byte{0x12, 0x34})

	require.Equal(t, viaWrite.Sum32(), viaSample.Sum32())
}
