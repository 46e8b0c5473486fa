package client_test

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/blockberries/bquery"
	"github.com/blockberries/bquery/address"
	"github.com/blockberries/bquery/client"
	"github.com/blockberries/bquery/codec"
	"github.com/blockberries/bquery/config"
	"github.com/blockberries/bquery/devnode"
	bquerygrpc "github.com/blockberries/bquery/grpc"
	"github.com/blockberries/bquery/keys"
	"github.com/blockberries/bquery/local"
	"github.com/blockberries/bquery/search"
	bquerytest "github.com/blockberries/bquery/testing"
	"github.com/blockberries/bquery/types"
)

var (
	alice = bquerytest.Address(1)
	bob   = bquerytest.Address(2)
)

const validHash = "4A8D2B5BD7F0AA2EBCEB1C1E44E8CBEB4F11DB0A1B3C2D08B1A8A3B6A7E0F0C1"

func newClient(node bquery.Node, opts ...client.Option) *client.Client {
	return client.New(local.NewConnection(node), opts...)
}

func accountRecord(t *testing.T, typeURL string, rec types.BaseAccount) []byte {
	t.Helper()
	data, err := codec.EncodeAny(typeURL, &rec)
	require.NoError(t, err)
	return data
}

func accountKey(t *testing.T, addr string) string {
	t.Helper()
	key, err := keys.AccountKeyFromBech32(addr, "")
	require.NoError(t, err)
	return string(key)
}

func TestGetAccount_EmptyAddressIsAbsent(t *testing.T) {
	mock := &bquerytest.MockNode{QueryFn: bquerytest.StoreFn(map[string][]byte{
		accountKey(t, alice): accountRecord(t, types.BaseAccountTypeURL, types.BaseAccount{}),
	})}
	c := newClient(mock)

	acct, err := c.GetAccount(context.Background(), alice)
	require.NoError(t, err)
	require.Nil(t, acct)

	_, err = c.GetNonce(context.Background(), alice)
	notFound, ok := bquery.IsAccountNotFound(err)
	require.True(t, ok, "expected AccountNotFoundError, got %v", err)
	require.Equal(t, alice, notFound.Address)
}

func TestGetAccount_MissingRecord(t *testing.T) {
	mock := &bquerytest.MockNode{QueryFn: bquerytest.StoreFn(nil)}
	c := newClient(mock)

	acct, err := c.GetAccount(context.Background(), alice)
	require.NoError(t, err)
	require.Nil(t, acct)
}

func TestGetAccount_UnsupportedType(t *testing.T) {
	mock := &bquerytest.MockNode{QueryFn: bquerytest.StoreFn(map[string][]byte{
		accountKey(t, alice): accountRecord(t, "/bquery.vesting.ContinuousAccount", types.BaseAccount{Address: alice}),
	})}

	_, err := newClient(mock).GetAccount(context.Background(), alice)
	unsupported, ok := bquery.IsUnsupportedType(err)
	require.True(t, ok, "expected UnsupportedTypeError, got %v", err)
	require.Equal(t, "/bquery.vesting.ContinuousAccount", unsupported.TypeURL)
}

func TestGetAccount_KeyMismatch(t *testing.T) {
	mock := &bquerytest.MockNode{
		QueryFn: func(context.Context, types.StateQuery) (types.StateQueryResult, error) {
			return types.StateQueryResult{Key: []byte("some other key"), Value: []byte("x")}, nil
		},
	}

	_, err := newClient(mock).GetAccount(context.Background(), alice)
	_, ok := bquery.IsKeyMismatch(err)
	require.True(t, ok, "expected KeyMismatchError, got %v", err)
}

func TestGetAccount_InvalidAddress(t *testing.T) {
	mock := &bquerytest.MockNode{}
	c := newClient(mock, client.WithAddressPrefix("cosmos"))

	for _, addr := range []string{"", "cosmos1invalid", "bogus"} {
		_, err := c.GetAccount(context.Background(), addr)
		_, ok := bquery.IsInvalidAddress(err)
		require.True(t, ok, "%q: expected InvalidAddressError, got %v", addr, err)
	}
	require.Zero(t, mock.QueryCalls.Load())
}

func TestGetAccount_WrongPrefix(t *testing.T) {
	c := newClient(&bquerytest.MockNode{}, client.WithAddressPrefix("wasm"))
	_, err := c.GetAccount(context.Background(), alice)
	_, ok := bquery.IsInvalidAddress(err)
	require.True(t, ok, "expected InvalidAddressError, got %v", err)
}

func TestGetHeight_UsesHintAfterAccountLookup(t *testing.T) {
	node := devnode.New("devnet-1")
	require.NoError(t, node.Fund(alice, types.Coin{Denom: "ucosm", Amount: "1"}))
	mock := &bquerytest.MockNode{QueryFn: node.Query}
	c := newClient(mock)

	height, err := c.GetHeight(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(1), height)
	queries := mock.Queries()
	require.Equal(t, types.QueryPath(client.BlocksPath), queries[len(queries)-1].Path)

	acct, err := c.GetAccount(context.Background(), alice)
	require.NoError(t, err)
	require.NotNil(t, acct)

	node.AdvanceBlock()
	height, err = c.GetHeight(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(2), height)
	queries = mock.Queries()
	last := queries[len(queries)-1]
	require.Equal(t, types.QueryPath("/store/acc/key"), last.Path)
	require.True(t, last.Prove)
}

// foreignAccountNode serves account records whose address carries a
// different bech32 prefix than the client expects, and can be told to
// start failing store lookups.
func foreignAccountNode(t *testing.T, node *devnode.Node, storeDown *atomic.Bool) *bquerytest.MockNode {
	t.Helper()
	foreign := address.MustEncode("wasm", make([]byte, address.Length))
	record := accountRecord(t, types.BaseAccountTypeURL, types.BaseAccount{Address: foreign, AccountNumber: 3})
	return &bquerytest.MockNode{
		QueryFn: func(ctx context.Context, req types.StateQuery) (types.StateQueryResult, error) {
			if req.Path != "/store/acc/key" {
				return node.Query(ctx, req)
			}
			if storeDown.Load() {
				return types.StateQueryResult{Code: 1, Info: "store unavailable"}, nil
			}
			return types.StateQueryResult{Key: req.Data, Value: record, Height: node.Height()}, nil
		},
	}
}

func TestGetHeight_HintIsRequestedAddress(t *testing.T) {
	node := devnode.New("devnet-1")
	var storeDown atomic.Bool
	mock := foreignAccountNode(t, node, &storeDown)
	c := newClient(mock, client.WithAddressPrefix("cosmos"))

	acct, err := c.GetAccount(context.Background(), alice)
	require.NoError(t, err)
	require.NotNil(t, acct)

	node.AdvanceBlock()
	height, err := c.GetHeight(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(2), height)
	queries := mock.Queries()
	require.Equal(t, types.QueryPath("/store/acc/key"), queries[len(queries)-1].Path)
}

func TestGetHeight_FailingHintFallsBackToBlock(t *testing.T) {
	node := devnode.New("devnet-1")
	var storeDown atomic.Bool
	mock := foreignAccountNode(t, node, &storeDown)
	c := newClient(mock)

	_, err := c.GetAccount(context.Background(), alice)
	require.NoError(t, err)

	storeDown.Store(true)
	node.AdvanceBlock()
	height, err := c.GetHeight(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(2), height)
	queries := mock.Queries()
	require.Equal(t, types.QueryPath(client.BlocksPath), queries[len(queries)-1].Path)

	// The failed hint is dropped: the next call reads the block directly.
	before := mock.QueryCalls.Load()
	height, err = c.GetHeight(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(2), height)
	require.Equal(t, before+1, mock.QueryCalls.Load())
}

func TestGetChainID_Cached(t *testing.T) {
	mock := &bquerytest.MockNode{
		QueryFn: func(_ context.Context, req types.StateQuery) (types.StateQueryResult, error) {
			data, err := codec.Marshal(&types.NodeInfo{ChainID: "testing"})
			return types.StateQueryResult{Value: data}, err
		},
	}
	c := newClient(mock)

	for i := 0; i < 3; i++ {
		id, err := c.GetChainID(context.Background())
		require.NoError(t, err)
		require.Equal(t, "testing", id)
	}
	require.Equal(t, int64(1), mock.QueryCalls.Load())
}

func TestGetChainID_Empty(t *testing.T) {
	mock := &bquerytest.MockNode{
		QueryFn: func(context.Context, types.StateQuery) (types.StateQueryResult, error) {
			data, err := codec.Marshal(&types.NodeInfo{})
			return types.StateQueryResult{Value: data}, err
		},
	}
	_, err := newClient(mock).GetChainID(context.Background())
	require.ErrorIs(t, err, client.ErrEmptyChainID)
}

func TestGetBalance(t *testing.T) {
	node := devnode.New("devnet-1")
	require.NoError(t, node.Fund(alice, types.Coin{Denom: "ucosm", Amount: "1234"}))
	c := newClient(node)

	coin, err := c.GetBalance(context.Background(), alice, "ucosm")
	require.NoError(t, err)
	require.Equal(t, &types.Coin{Denom: "ucosm", Amount: "1234"}, coin)

	coin, err = c.GetBalance(context.Background(), alice, "ustake")
	require.NoError(t, err)
	require.Nil(t, coin)
}

func TestGetBalance_MalformedAmount(t *testing.T) {
	key, err := keys.BalanceKeyFromBech32(alice, "", "ucosm")
	require.NoError(t, err)
	bad, err := codec.Marshal(&types.Coin{Denom: "ucosm", Amount: "12abc"})
	require.NoError(t, err)
	mock := &bquerytest.MockNode{QueryFn: bquerytest.StoreFn(map[string][]byte{string(key): bad})}

	_, err = newClient(mock).GetBalance(context.Background(), alice, "ucosm")
	_, ok := bquery.IsFormatError(err)
	require.True(t, ok, "expected FormatError, got %v", err)
}

func broadcastMock(resp types.BroadcastResponse, err error) *bquerytest.MockNode {
	return &bquerytest.MockNode{
		BroadcastTxFn: func(context.Context, types.Tx) (types.BroadcastResponse, error) { return resp, err },
	}
}

func TestBroadcastTx_Classification(t *testing.T) {
	tx := bquerytest.SendTx(alice, bob, bquerytest.Coins("1", "ucosm")...)
	zero, five := uint32(0), uint32(5)

	r, err := newClient(broadcastMock(types.BroadcastResponse{TxHash: validHash}, nil)).BroadcastTx(context.Background(), tx)
	require.NoError(t, err)
	require.IsType(t, types.BroadcastSuccess{}, r)

	r, err = newClient(broadcastMock(types.BroadcastResponse{TxHash: validHash, Code: &zero}, nil)).BroadcastTx(context.Background(), tx)
	require.NoError(t, err)
	require.IsType(t, types.BroadcastSuccess{}, r)

	r, err = newClient(broadcastMock(types.BroadcastResponse{TxHash: validHash, Code: &five, Height: "8"}, nil)).BroadcastTx(context.Background(), tx)
	require.NoError(t, err)
	f, failed := types.IsBroadcastFailure(r)
	require.True(t, failed)
	require.Equal(t, uint32(5), f.Code)
	require.Equal(t, uint64(8), f.Height)

	_, err = newClient(broadcastMock(types.BroadcastResponse{TxHash: "not-hex"}, nil)).BroadcastTx(context.Background(), tx)
	_, ok := bquery.IsFormatError(err)
	require.True(t, ok, "expected FormatError, got %v", err)

	boom := errors.New("connection reset")
	_, err = newClient(broadcastMock(types.BroadcastResponse{}, boom)).BroadcastTx(context.Background(), tx)
	require.ErrorIs(t, err, boom)
}

func TestGetIdentifier_LocalMatchesRemote(t *testing.T) {
	node := devnode.New("devnet-1")
	tx := bquerytest.SendTx(alice, bob, bquerytest.Coins("1", "ucosm")...)

	localID, err := newClient(node).GetIdentifier(context.Background(), tx)
	require.NoError(t, err)
	remoteID, err := newClient(node, client.WithRemoteEncoding()).GetIdentifier(context.Background(), tx)
	require.NoError(t, err)

	require.Len(t, localID, 64)
	require.Equal(t, localID, remoteID)
}

func TestSearchTx(t *testing.T) {
	node := devnode.New("devnet-1")
	require.NoError(t, node.Fund(alice, types.Coin{Denom: "ucosm", Amount: "100"}))
	h := bquerytest.NewHarness(t, node)
	hash := h.Send(alice, bob, bquerytest.Coins("1", "ucosm")...)

	txs, err := h.Client().SearchTx(context.Background(), search.ByID{ID: hash}, search.Filter{})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, uint64(2), txs[0].Height)
	require.NotNil(t, txs[0].GasWanted)
	require.Equal(t, uint64(200000), *txs[0].GasWanted)
}

func TestConnect(t *testing.T) {
	node := devnode.New("devnet-1")
	require.NoError(t, node.Fund(alice, types.Coin{Denom: "ucosm", Amount: "100"}))

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := bquerygrpc.NewGRPCServer(node, zerolog.Nop()).NewServer()
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.GracefulStop)

	cfg := config.Default()
	cfg.Endpoint = lis.Addr().String()
	cfg.DialTimeout = 5 * time.Second
	cfg.RequireProof = true
	cfg.Encoder = config.EncoderRemote

	c, err := client.Connect(context.Background(), cfg)
	require.NoError(t, err)
	defer c.Close()

	id, err := c.GetChainID(context.Background())
	require.NoError(t, err)
	require.Equal(t, "devnet-1", id)

	acct, err := c.GetAccount(context.Background(), alice)
	require.NoError(t, err)
	require.NotNil(t, acct)
	require.Equal(t, []types.Coin{{Denom: "ucosm", Amount: "100"}}, acct.Balances)
}

func TestConnect_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Endpoint = ""
	_, err := client.Connect(context.Background(), cfg)
	require.Error(t, err)
}
