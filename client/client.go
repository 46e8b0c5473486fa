// Package client exposes the query layer's operations: accounts,
// nonces, balances, blocks, heights, chain ID, transaction search,
// broadcasting and transaction identifiers.
//
// A Client caches the chain ID and remembers the last valid account
// address it saw, so one Client should be used per backend for the
// lifetime of the application.
package client

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/blockberries/bquery"
	"github.com/blockberries/bquery/address"
	"github.com/blockberries/bquery/codec"
	"github.com/blockberries/bquery/config"
	bquerygrpc "github.com/blockberries/bquery/grpc"
	"github.com/blockberries/bquery/keys"
	"github.com/blockberries/bquery/normalize"
	"github.com/blockberries/bquery/query"
	"github.com/blockberries/bquery/search"
	"github.com/blockberries/bquery/txid"
	"github.com/blockberries/bquery/types"
)

// Node methods used by the client besides raw store lookups.
const (
	AllBalancesPath types.QueryPath = "/bank/all_balances"
	BlocksPath      types.QueryPath = "/blocks"
	NodeInfoPath    types.QueryPath = "/node_info"
)

// ErrEmptyChainID is returned when the node reports no chain ID.
var ErrEmptyChainID = errors.New("chain ID must not be empty")

// Client is a query client bound to one node connection.
type Client struct {
	conn    bquery.Connection
	gateway *query.Gateway
	search  *search.Engine
	ids     txid.Calculator
	prefix  string
	log     zerolog.Logger

	// Any address the node considers valid. Used to read the height
	// cheaply; best effort.
	heightHint atomic.Pointer[string]
	chainID    atomic.Pointer[string]
}

// New creates a client over conn.
func New(conn bquery.Connection, opts ...Option) *Client {
	o := options{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	gw := query.New(conn,
		query.WithVerifier(o.verifier),
		query.WithLogger(o.log),
		query.WithMetrics(o.metrics),
	)

	enc := o.encoder
	switch {
	case enc != nil:
	case o.remoteEncoding:
		enc = txid.RemoteEncoder{Gateway: gw}
	default:
		enc = txid.LocalEncoder{}
	}

	return &Client{
		conn:    conn,
		gateway: gw,
		search: search.New(gw,
			search.WithPageLimit(o.pageLimit),
			search.WithLogger(o.log),
			search.WithMetrics(o.metrics),
		),
		ids:    txid.Calculator{Encoder: enc},
		prefix: o.prefix,
		log:    o.log,
	}
}

// Connect dials the node described by cfg over gRPC. Options in opts
// take precedence over those derived from cfg.
func Connect(ctx context.Context, cfg config.Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	creds := credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	if cfg.Insecure {
		creds = insecure.NewCredentials()
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	conn, err := bquerygrpc.Dial(ctx, cfg.Endpoint, grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, err
	}

	base := []Option{
		WithAddressPrefix(cfg.AddressPrefix),
		WithPageLimit(cfg.PageLimit),
	}
	if cfg.RequireProof {
		base = append(base, WithProofVerifier(query.RequireProof{}))
	}
	if cfg.Encoder == config.EncoderRemote {
		base = append(base, WithRemoteEncoding())
	}
	return New(conn, append(base, opts...)...), nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// GetChainID returns the node's chain ID. The first successful answer
// is cached for the lifetime of the client.
func (c *Client) GetChainID(ctx context.Context) (string, error) {
	if id := c.chainID.Load(); id != nil {
		return *id, nil
	}
	data, err := c.gateway.QueryUnverified(ctx, NodeInfoPath, nil)
	if err != nil {
		return "", err
	}
	var info types.NodeInfo
	if err := codec.Unmarshal(data, &info); err != nil {
		return "", fmt.Errorf("decode node info: %w", err)
	}
	if info.ChainID == "" {
		return "", ErrEmptyChainID
	}
	c.chainID.Store(&info.ChainID)
	return info.ChainID, nil
}

// GetHeight returns the latest height. When an account address has
// been seen it reads the height of a verified account query, which is
// cheaper than fetching the latest block. A failing hint is dropped
// and the latest block is read instead.
func (c *Client) GetHeight(ctx context.Context) (uint64, error) {
	if hint := c.heightHint.Load(); hint != nil {
		height, err := c.hintedHeight(ctx, *hint)
		if err == nil {
			return height, nil
		}
		c.log.Debug().Err(err).Str("address", *hint).Msg("height hint failed, reading latest block")
		c.heightHint.CompareAndSwap(hint, nil)
	}

	block, err := c.GetBlock(ctx, nil)
	if err != nil {
		return 0, err
	}
	return block.Header.Height, nil
}

func (c *Client) hintedHeight(ctx context.Context, addr string) (uint64, error) {
	key, err := keys.AccountKeyFromBech32(addr, c.prefix)
	if err != nil {
		return 0, err
	}
	res, err := c.gateway.QueryVerifiedResult(ctx, keys.StoreAuth, key)
	if err != nil {
		return 0, err
	}
	return res.Height, nil
}

// GetIdentifier returns the identifier of tx: the uppercase hex
// SHA-256 of its canonical encoding.
func (c *Client) GetIdentifier(ctx context.Context, tx types.StdTx) (string, error) {
	return c.ids.Identifier(ctx, tx)
}

// GetNonce returns the account number and sequence of addr. It fails
// with a *bquery.AccountNotFoundError if the account does not exist.
func (c *Client) GetNonce(ctx context.Context, addr string) (types.Nonce, error) {
	acct, err := c.GetAccount(ctx, addr)
	if err != nil {
		return types.Nonce{}, err
	}
	if acct == nil {
		return types.Nonce{}, &bquery.AccountNotFoundError{Address: addr}
	}
	return types.Nonce{AccountNumber: acct.AccountNumber, Sequence: acct.Sequence}, nil
}

// GetAccount returns the account at addr, or nil if it does not
// exist. The account's balances are filled in.
func (c *Client) GetAccount(ctx context.Context, addr string) (*types.Account, error) {
	key, err := keys.AccountKeyFromBech32(addr, c.prefix)
	if err != nil {
		return nil, err
	}
	value, err := c.gateway.QueryVerified(ctx, keys.StoreAuth, key)
	if err != nil {
		return nil, err
	}
	if len(value) == 0 {
		return nil, nil
	}

	typeURL, inner, err := codec.DecodeAny(value)
	if err != nil {
		return nil, fmt.Errorf("decode account envelope: %w", err)
	}
	if typeURL != types.BaseAccountTypeURL {
		return nil, &bquery.UnsupportedTypeError{TypeURL: typeURL}
	}
	var rec types.BaseAccount
	if err := codec.Unmarshal(inner, &rec); err != nil {
		return nil, fmt.Errorf("decode account: %w", err)
	}

	acct := normalize.Account(rec)
	if acct == nil {
		return nil, nil
	}
	c.heightHint.Store(&addr)

	balances, err := c.GetAllBalances(ctx, addr)
	if err != nil {
		return nil, err
	}
	acct.Balances = balances
	return acct, nil
}

// GetBalance returns the balance of one denomination held by addr, or
// nil if there is none.
func (c *Client) GetBalance(ctx context.Context, addr, denom string) (*types.Coin, error) {
	key, err := keys.BalanceKeyFromBech32(addr, c.prefix, denom)
	if err != nil {
		return nil, err
	}
	value, err := c.gateway.QueryVerified(ctx, keys.StoreBank, key)
	if err != nil {
		return nil, err
	}
	if len(value) == 0 {
		return nil, nil
	}
	var coin types.Coin
	if err := codec.Unmarshal(value, &coin); err != nil {
		return nil, fmt.Errorf("decode balance: %w", err)
	}
	return normalize.Balance(coin)
}

// GetAllBalances returns every balance held by addr. The values are
// not proved.
func (c *Client) GetAllBalances(ctx context.Context, addr string) ([]types.Coin, error) {
	raw, err := address.Decode(addr, c.prefix)
	if err != nil {
		return nil, err
	}
	req, err := codec.Marshal(&types.AllBalancesRequest{Address: raw})
	if err != nil {
		return nil, err
	}
	data, err := c.gateway.QueryUnverified(ctx, AllBalancesPath, req)
	if err != nil {
		return nil, err
	}
	var resp types.AllBalancesResponse
	if err := codec.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode balances: %w", err)
	}
	return normalize.Coins(resp.Balances)
}

// GetBlock returns the block at height, or the latest block if height
// is nil.
func (c *Client) GetBlock(ctx context.Context, height *uint64) (types.Block, error) {
	req, err := codec.Marshal(&types.BlockRequest{Height: height})
	if err != nil {
		return types.Block{}, err
	}
	data, err := c.gateway.QueryUnverified(ctx, BlocksPath, req)
	if err != nil {
		return types.Block{}, err
	}
	var resp types.BlockResponse
	if err := codec.Unmarshal(data, &resp); err != nil {
		return types.Block{}, fmt.Errorf("decode block: %w", err)
	}
	return normalize.Block(resp)
}

// SearchTx returns the transactions matching q within filter.
func (c *Client) SearchTx(ctx context.Context, q search.Query, filter search.Filter) ([]types.IndexedTx, error) {
	return c.search.Search(ctx, q, filter)
}

// BroadcastTx submits tx in its canonical encoding and classifies the
// node's reply. A transaction the node rejects is a
// types.BroadcastFailure, not an error.
func (c *Client) BroadcastTx(ctx context.Context, tx types.StdTx) (types.BroadcastResult, error) {
	encoded, err := codec.Marshal(&tx)
	if err != nil {
		return nil, err
	}
	resp, err := c.conn.BroadcastTx(ctx, encoded)
	if err != nil {
		return nil, fmt.Errorf("broadcast tx: %w", err)
	}
	result, err := normalize.BroadcastResult(resp)
	if err != nil {
		return nil, err
	}
	if f, failed := types.IsBroadcastFailure(result); failed {
		c.log.Info().Str("hash", f.Hash).Uint32("code", f.Code).Msg("transaction failed")
	} else {
		c.log.Debug().Str("hash", result.TransactionHash()).Msg("transaction accepted")
	}
	return result, nil
}
