// Package devnode implements an in-memory node serving the query
// paths the client uses: raw store lookups in the auth and bank
// stores, all-balances, blocks, node info, transaction encoding and a
// transaction index with tag search.
//
// Every broadcast transaction is executed immediately in a block of
// its own, so a broadcast is observable by the next query. Bank sends
// are the only supported message.
package devnode

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/holiman/uint256"
	"github.com/rs/zerolog"

	"github.com/blockberries/bquery"
	"github.com/blockberries/bquery/address"
	"github.com/blockberries/bquery/codec"
	"github.com/blockberries/bquery/keys"
	"github.com/blockberries/bquery/txid"
	"github.com/blockberries/bquery/types"
)

// Version is reported in node info.
const Version = "devnode/1"

// ProofOpType tags the single proof operation devnode attaches to
// proved queries.
const ProofOpType = "devnode:sha256"

// Compile-time interface checks.
var (
	_ bquery.Node          = (*Node)(nil)
	_ bquery.ProofVerifier = Verifier{}
)

// Node is an in-memory node. It is safe for concurrent use.
type Node struct {
	chainID string
	prefix  string
	now     func() time.Time
	log     zerolog.Logger

	mu      sync.RWMutex
	current *state
	blocks  []types.BlockResponse
	index   []indexedTx
}

// Option configures a Node.
type Option func(*Node)

// WithClock sets the source of block times.
func WithClock(now func() time.Time) Option {
	return func(n *Node) { n.now = now }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(n *Node) { n.log = log }
}

// WithAddressPrefix sets the bech32 prefix accepted in messages. The
// default is "cosmos".
func WithAddressPrefix(prefix string) Option {
	return func(n *Node) { n.prefix = prefix }
}

// New creates a node for chainID holding an empty genesis block at
// height 1.
func New(chainID string, opts ...Option) *Node {
	n := &Node{
		chainID: chainID,
		prefix:  "cosmos",
		now:     time.Now,
		log:     zerolog.Nop(),
		current: newState(),
	}
	for _, opt := range opts {
		opt(n)
	}
	n.commitBlock(nil)
	return n
}

// Fund credits coins to addr outside of any transaction, creating the
// account if needed. It is meant for genesis allocations.
func (n *Node) Fund(addr string, coins ...types.Coin) error {
	raw, err := address.Decode(addr, n.prefix)
	if err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	s := n.current.clone()
	s.ensureAccount(raw, addr)
	for _, c := range coins {
		amount, err := uint256.FromDecimal(c.Amount)
		if err != nil || c.Denom == "" {
			return fmt.Errorf("invalid coin %s%s", c.Amount, c.Denom)
		}
		total, overflow := new(uint256.Int).AddOverflow(s.balance(raw, c.Denom), amount)
		if overflow {
			return fmt.Errorf("balance overflow for %s", c.Denom)
		}
		s.setBalance(raw, c.Denom, total)
	}
	n.current = s
	return nil
}

// SetPubKey records the public key of an existing account.
func (n *Node) SetPubKey(addr string, pk types.PublicKey) error {
	raw, err := address.Decode(addr, n.prefix)
	if err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	s := n.current.clone()
	acct, ok := s.accounts[string(raw)]
	if !ok {
		return fmt.Errorf("account %s does not exist", addr)
	}
	acct.PubKey = &pk
	n.current = s
	return nil
}

// AdvanceBlock commits an empty block and returns its height.
func (n *Node) AdvanceBlock() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.commitBlock(nil)
}

// Height returns the latest block height.
func (n *Node) Height() uint64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return uint64(len(n.blocks))
}

// BroadcastTx executes tx in a new block. Transactions that fail are
// still included and indexed with their code; their state changes are
// discarded.
func (n *Node) BroadcastTx(_ context.Context, tx types.Tx) (types.BroadcastResponse, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	hash := txid.Compute(tx)
	staged := n.current.clone()
	out := executeTx(staged, n.prefix, tx)
	if out.code == CodeOK {
		n.current = staged
	}

	height := n.commitBlock([]types.Tx{tx})
	n.index = append(n.index, indexedTx{
		height:    height,
		hash:      hash,
		raw:       tx,
		outcome:   out,
		timestamp: n.blocks[height-1].Header.Time,
	})

	n.log.Debug().
		Str("hash", hash).
		Uint64("height", height).
		Uint32("code", out.code).
		Msg("executed transaction")

	resp := types.BroadcastResponse{
		Height: strconv.FormatUint(height, 10),
		TxHash: hash,
		RawLog: out.rawLog,
		Logs:   out.logs,
	}
	if out.code != CodeOK {
		code := out.code
		resp.Code = &code
	}
	return resp, nil
}

// commitBlock appends a block with txs. Callers hold mu.
func (n *Node) commitBlock(txs []types.Tx) uint64 {
	height := uint64(len(n.blocks)) + 1
	header := types.WireBlockHeader{
		VersionBlock: "10",
		VersionApp:   "0",
		Height:       strconv.FormatUint(height, 10),
		ChainID:      n.chainID,
		Time:         n.now().UTC().Format(time.RFC3339Nano),
	}
	data, _ := codec.Marshal(&header) // fixed-shape struct of strings
	sum := sha256.Sum256(data)

	raw := make([][]byte, 0, len(txs))
	for _, tx := range txs {
		raw = append(raw, tx)
	}
	n.blocks = append(n.blocks, types.BlockResponse{
		BlockID: strings.ToUpper(hex.EncodeToString(sum[:])),
		Header:  header,
		Txs:     raw,
	})
	return height
}

// Query serves a state query. Unknown paths and malformed requests
// are answered with a non-zero code, never an error.
func (n *Node) Query(_ context.Context, req types.StateQuery) (types.StateQueryResult, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	height := uint64(len(n.blocks))
	if req.Height != nil && *req.Height != height {
		return failure(height, "historical queries are not supported (latest %d, requested %d)", height, *req.Height), nil
	}

	path := string(req.Path)
	if store, ok := storeName(path); ok {
		return n.queryStore(store, req.Data, req.Prove, height), nil
	}

	var (
		value []byte
		err   error
	)
	switch path {
	case "/bank/all_balances":
		value, err = n.queryAllBalances(req.Data)
	case "/blocks":
		value, err = n.queryBlock(req.Data)
	case "/node_info":
		value, err = codec.Marshal(&types.NodeInfo{ChainID: n.chainID, Moniker: "devnode", Version: Version})
	case txid.EncodeTxPath:
		value, err = queryEncodeTx(req.Data)
	case "/txs/search":
		value, err = n.querySearch(req.Data)
	default:
		return failure(height, "unknown query path %s", path), nil
	}
	if err != nil {
		return failure(height, "%v", err), nil
	}
	return types.StateQueryResult{Value: value, Height: height}, nil
}

func failure(height uint64, format string, args ...any) types.StateQueryResult {
	return types.StateQueryResult{Code: 1, Info: fmt.Sprintf(format, args...), Height: height}
}

func storeName(path string) (string, bool) {
	if !strings.HasPrefix(path, "/store/") || !strings.HasSuffix(path, "/key") {
		return "", false
	}
	name := strings.TrimSuffix(strings.TrimPrefix(path, "/store/"), "/key")
	return name, name != "" && !strings.Contains(name, "/")
}

func (n *Node) queryStore(store string, key []byte, prove bool, height uint64) types.StateQueryResult {
	var (
		value []byte
		err   error
	)
	switch store {
	case keys.StoreAuth:
		value, err = n.lookupAccount(key)
	case keys.StoreBank:
		value, err = n.lookupBalance(key)
	default:
		return failure(height, "no such store: %s", store)
	}
	if err != nil {
		return failure(height, "%v", err)
	}

	res := types.StateQueryResult{Key: key, Value: value, Height: height}
	if prove {
		res.Proof = &types.MerkleProof{Ops: []types.ProofOp{{
			Type: ProofOpType,
			Key:  key,
			Data: proofDigest(key, value),
		}}}
	}
	return res
}

func (n *Node) lookupAccount(key []byte) ([]byte, error) {
	if len(key) != 1+address.Length || key[0] != keys.AccountPrefix {
		return nil, fmt.Errorf("invalid account key %X", key)
	}
	acct, ok := n.current.accounts[string(key[1:])]
	if !ok {
		return nil, nil
	}
	return codec.EncodeAny(types.BaseAccountTypeURL, acct)
}

func (n *Node) lookupBalance(key []byte) ([]byte, error) {
	rest, ok := bytes.CutPrefix(key, []byte(keys.BalancesPrefix))
	if !ok || len(rest) <= address.Length {
		return nil, fmt.Errorf("invalid balance key %X", key)
	}
	raw, denom := rest[:address.Length], string(rest[address.Length:])
	amount, ok := n.current.balances[string(raw)][denom]
	if !ok {
		return nil, nil
	}
	return codec.Marshal(&types.Coin{Denom: denom, Amount: amount.Dec()})
}

func (n *Node) queryAllBalances(data []byte) ([]byte, error) {
	var req types.AllBalancesRequest
	if err := codec.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	if len(req.Address) != address.Length {
		return nil, fmt.Errorf("invalid address length %d", len(req.Address))
	}
	return codec.Marshal(&types.AllBalancesResponse{Balances: n.current.allBalances(req.Address)})
}

func (n *Node) queryBlock(data []byte) ([]byte, error) {
	var req types.BlockRequest
	if err := codec.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	height := uint64(len(n.blocks))
	if req.Height != nil {
		height = *req.Height
	}
	if height == 0 || height > uint64(len(n.blocks)) {
		return nil, fmt.Errorf("block %d not found", height)
	}
	return codec.Marshal(&n.blocks[height-1])
}

func queryEncodeTx(data []byte) ([]byte, error) {
	var req types.EncodeTxRequest
	if err := codec.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	encoded, err := codec.Marshal(&req.Tx)
	if err != nil {
		return nil, err
	}
	return codec.Marshal(&types.EncodeTxResponse{Tx: encoded})
}

func (n *Node) querySearch(data []byte) ([]byte, error) {
	var req types.TxSearchRequest
	if err := codec.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	resp, err := search(n.index, req)
	if err != nil {
		return nil, err
	}
	return codec.Marshal(&resp)
}

func proofDigest(key, value []byte) []byte {
	h := sha256.New()
	h.Write(key)
	h.Write(value)
	return h.Sum(nil)
}

var errBadProof = errors.New("proof does not match key and value")

// Verifier checks the proofs devnode attaches to proved queries.
type Verifier struct{}

func (Verifier) VerifyProof(_ context.Context, req bquery.ProofRequest) error {
	if req.Proof == nil || len(req.Proof.Ops) != 1 {
		return errBadProof
	}
	op := req.Proof.Ops[0]
	if op.Type != ProofOpType || !bytes.Equal(op.Key, req.Key) ||
		!bytes.Equal(op.Data, proofDigest(req.Key, req.Value)) {
		return errBadProof
	}
	return nil
}
