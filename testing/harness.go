package bquerytest

import (
	"context"
	"testing"

	"github.com/blockberries/bquery"
	"github.com/blockberries/bquery/address"
	"github.com/blockberries/bquery/client"
	"github.com/blockberries/bquery/codec"
	"github.com/blockberries/bquery/local"
	"github.com/blockberries/bquery/search"
	"github.com/blockberries/bquery/types"
)

// DefaultPrefix is the bech32 prefix of addresses built by Address.
const DefaultPrefix = "cosmos"

// Harness drives a client over an in-process connection and fails
// the test on any error.
type Harness struct {
	t      *testing.T
	conn   *local.Connection
	client *client.Client
}

// NewHarness creates a harness whose client talks to node.
func NewHarness(t *testing.T, node bquery.Node, opts ...client.Option) *Harness {
	t.Helper()
	conn := local.NewConnection(node)
	c := client.New(conn, opts...)
	t.Cleanup(func() { _ = c.Close() })
	return &Harness{t: t, conn: conn, client: c}
}

// Client returns the underlying client for direct access.
func (h *Harness) Client() *client.Client {
	return h.client
}

// Account returns the account at addr, or nil.
func (h *Harness) Account(addr string) *types.Account {
	h.t.Helper()
	acct, err := h.client.GetAccount(context.Background(), addr)
	if err != nil {
		h.t.Fatalf("GetAccount(%s) failed: %v", addr, err)
	}
	return acct
}

// Balance returns addr's balance of denom, or nil.
func (h *Harness) Balance(addr, denom string) *types.Coin {
	h.t.Helper()
	coin, err := h.client.GetBalance(context.Background(), addr, denom)
	if err != nil {
		h.t.Fatalf("GetBalance(%s, %s) failed: %v", addr, denom, err)
	}
	return coin
}

// Height returns the latest height.
func (h *Harness) Height() uint64 {
	h.t.Helper()
	height, err := h.client.GetHeight(context.Background())
	if err != nil {
		h.t.Fatalf("GetHeight failed: %v", err)
	}
	return height
}

// Broadcast submits tx and returns the classified result.
func (h *Harness) Broadcast(tx types.StdTx) types.BroadcastResult {
	h.t.Helper()
	result, err := h.client.BroadcastTx(context.Background(), tx)
	if err != nil {
		h.t.Fatalf("BroadcastTx failed: %v", err)
	}
	return result
}

// Send broadcasts a bank transfer and fails the test unless the node
// accepts it. It returns the transaction hash.
func (h *Harness) Send(from, to string, coins ...types.Coin) string {
	h.t.Helper()
	result := h.Broadcast(SendTx(from, to, coins...))
	if f, failed := types.IsBroadcastFailure(result); failed {
		h.t.Fatalf("send %s -> %s failed with code %d: %s", from, to, f.Code, f.RawLog)
	}
	return result.TransactionHash()
}

// Search runs a transaction search.
func (h *Harness) Search(q search.Query, filter search.Filter) []types.IndexedTx {
	h.t.Helper()
	txs, err := h.client.SearchTx(context.Background(), q, filter)
	if err != nil {
		h.t.Fatalf("SearchTx(%T) failed: %v", q, err)
	}
	return txs
}

// SendTx builds an unsigned bank transfer transaction.
func SendTx(from, to string, coins ...types.Coin) types.StdTx {
	msg, err := codec.Marshal(&types.MsgSend{FromAddress: from, ToAddress: to, Amount: coins})
	if err != nil {
		panic(err)
	}
	return types.StdTx{
		Msgs: []types.Msg{{TypeURL: types.MsgSendTypeURL, Value: msg}},
		Fee:  types.StdFee{Amount: []types.Coin{{Denom: "ucosm", Amount: "5000"}}, Gas: 200000},
	}
}

// Address creates a deterministic test address from an index.
func Address(n byte) string {
	var raw [address.Length]byte
	raw[0] = n
	raw[address.Length-1] = n
	return address.MustEncode(DefaultPrefix, raw[:])
}

// Coins is shorthand for a single-denomination coin list.
func Coins(amount, denom string) []types.Coin {
	return []types.Coin{{Denom: denom, Amount: amount}}
}
