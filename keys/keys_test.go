package keys

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blockberries/bquery"
	"github.com/blockberries/bquery/address"
)

func TestAccountKey(t *testing.T) {
	addr := bytes.Repeat([]byte{0xaa}, address.Length)
	key := AccountKey(addr)
	require.Len(t, key, 1+address.Length)
	require.Equal(t, byte(0x01), key[0])
	require.Equal(t, addr, key[1:])
}

func TestBalanceKeyLayout(t *testing.T) {
	addr := bytes.Repeat([]byte{0xbb}, address.Length)
	key := BalanceKey(addr, "ucosm")

	want := append([]byte("balances"), addr...)
	want = append(want, "ucosm"...)
	require.Equal(t, want, key)
}

func TestBalanceKeyDeterministic(t *testing.T) {
	for _, denom := range []string{"", "u", "ucosm", "ibc/27394FB092D2ECCD56123C74F36E4C1F926001CEADA9CA97EA622B25F41E5EB2"} {
		for n := byte(0); n < 4; n++ {
			addr := bytes.Repeat([]byte{n}, address.Length)
			first := BalanceKey(addr, denom)
			second := BalanceKey(append([]byte(nil), addr...), denom)
			require.Equal(t, first, second, "denom %q", denom)
		}
	}
}

// Writing into the returned key must not alias the caller's address.
func TestKeysDoNotAliasInput(t *testing.T) {
	addr := bytes.Repeat([]byte{0x01}, address.Length)
	key := AccountKey(addr)
	key[1] = 0xff
	require.Equal(t, byte(0x01), addr[0])
}

func TestFromBech32(t *testing.T) {
	raw := bytes.Repeat([]byte{0x07}, address.Length)
	addr := address.MustEncode("cosmos", raw)

	key, err := BalanceKeyFromBech32(addr, "cosmos", "ustake")
	require.NoError(t, err)
	require.Equal(t, BalanceKey(raw, "ustake"), key)

	key, err = AccountKeyFromBech32(addr, "cosmos")
	require.NoError(t, err)
	require.Equal(t, AccountKey(raw), key)

	_, err = AccountKeyFromBech32("cosmos1invalid", "cosmos")
	_, ok := bquery.IsInvalidAddress(err)
	require.True(t, ok)
}
