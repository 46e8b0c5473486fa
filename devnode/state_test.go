package devnode

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blockberries/bquery/address"
	"github.com/blockberries/bquery/types"
)

func TestSetPubKey_CommitsNewState(t *testing.T) {
	raw := make([]byte, address.Length)
	raw[0] = 9
	addr := address.MustEncode("cosmos", raw)

	n := New("devnet-1")
	require.NoError(t, n.Fund(addr, types.Coin{Denom: "ucosm", Amount: "1"}))

	before := n.current
	pk := types.PublicKey{Type: types.KeyTypeSecp256k1, Data: []byte{0x03, 0x01}}
	require.NoError(t, n.SetPubKey(addr, pk))

	require.NotSame(t, before, n.current)
	require.Nil(t, before.accounts[string(raw)].PubKey)
	require.Equal(t, pk, *n.current.accounts[string(raw)].PubKey)
}

func TestSetPubKey_UnknownAccountLeavesState(t *testing.T) {
	raw := make([]byte, address.Length)
	raw[0] = 10
	n := New("devnet-1")
	before := n.current

	require.Error(t, n.SetPubKey(address.MustEncode("cosmos", raw), types.PublicKey{}))
	require.Same(t, before, n.current)
}
