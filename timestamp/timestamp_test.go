package timestamp_test

import (
	"testing"

	"github.com/airspace/airspace/timestamp"
	"github.com/stretchr/testify/require"
)

func TestFallbackStaysUnder48Bits(t *testing.T) {
	timestamp.SetProvider(nil)

	for i := 0; i < 100; i++ {
		require.Less(t, timestamp.Stamp(), uint64(1)<<48)
	}
}

func TestFallbackStrictlyIncreases(t *testing.T) {
	timestamp.SetProvider(nil)

	a := timestamp.Stamp()
	b := timestamp.Stamp()
	require.Less(t, a, b)
}

func TestInstalledProviderIsUsed(t *testing.T) {
	timestamp.SetProvider(func() (uint32, uint16) { return 0x01020304, 0x0506 })
	defer timestamp.SetProvider(nil)

	require.Equal(t, uint64(0x010203040506), timestamp.Stamp())
}

func TestSetProviderNilRestoresFallback(t *testing.T) {
	timestamp.SetProvider(func() (uint32, uint16) { return 1, 2 })
	timestamp.SetProvider(nil)

	require.Less(t, timestamp.Stamp(), uint64(1)<<48)
}
