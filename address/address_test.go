package address

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blockberries/bquery"
)

func testBytes(n byte) []byte {
	return bytes.Repeat([]byte{n}, Length)
}

func TestEncodeDecode(t *testing.T) {
	raw := testBytes(0x42)
	addr, err := Encode("cosmos", raw)
	require.NoError(t, err)
	require.Contains(t, addr, "cosmos1")

	got, err := Decode(addr, "cosmos")
	require.NoError(t, err)
	require.Equal(t, raw, got)

	// No prefix constraint.
	got, err = Decode(addr, "")
	require.NoError(t, err)
	require.Equal(t, raw, got)
}

func TestDecodeRejectsBadChecksum(t *testing.T) {
	addr := MustEncode("cosmos", testBytes(0x01))
	last := addr[len(addr)-1]
	flipped := byte('q')
	if last == 'q' {
		flipped = 'p'
	}
	bad := addr[:len(addr)-1] + string(flipped)

	_, err := Decode(bad, "cosmos")
	_, ok := bquery.IsInvalidAddress(err)
	require.True(t, ok, "expected InvalidAddressError, got %v", err)
}

func TestDecodeRejectsWrongPrefix(t *testing.T) {
	addr := MustEncode("wasm", testBytes(0x01))
	_, err := Decode(addr, "cosmos")
	e, ok := bquery.IsInvalidAddress(err)
	require.True(t, ok)
	require.Equal(t, addr, e.Address)
}

func TestDecodeRejectsWrongLength(t *testing.T) {
	addr := MustEncode("cosmos", []byte{1, 2, 3})
	_, err := Decode(addr, "cosmos")
	_, ok := bquery.IsInvalidAddress(err)
	require.True(t, ok)
}
