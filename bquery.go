// Package bquery is a client-side query layer for a remote
// state-machine replication node.
//
// It turns high-level requests (get account, get balance, search
// transactions) into store-key lookups or structured queries against
// the node, and turns the node's wire responses back into typed
// results. The transport, the node and any proof verification are
// collaborators described by the interfaces in this package; the
// client package ties them together.
package bquery

import (
	"context"

	"github.com/blockberries/bquery/types"
)

// Querier is the single capability the query layer needs from a
// transport: send a state query, receive the raw result envelope.
//
// A non-zero Code in the result is NOT an error at this level. The
// query gateway inspects it. An error return means the call itself
// failed (network, encoding, cancelled context).
type Querier interface {
	Query(ctx context.Context, req types.StateQuery) (types.StateQueryResult, error)
}

// Broadcaster submits canonically encoded transactions to the node.
type Broadcaster interface {
	BroadcastTx(ctx context.Context, tx types.Tx) (types.BroadcastResponse, error)
}

// Node is everything a remote node serves to this client. Transports
// expose a Node on the server side; in-memory nodes implement it
// directly.
//
// Both methods MUST be safe for concurrent use.
type Node interface {
	Querier
	Broadcaster
}

// Connection is a transport-agnostic handle on a remote node. Both
// the gRPC client and the in-process adapter implement it.
type Connection interface {
	Node

	// Close terminates the connection.
	Close() error
}

// ProofRequest is what a ProofVerifier is asked to check: that Value
// is stored under Key in Store at Height, according to Proof.
type ProofRequest struct {
	Store  string
	Key    []byte
	Value  []byte
	Height uint64
	// Nil when the node returned no proof.
	Proof *types.MerkleProof
}

// ProofVerifier checks a verified query's proof before its value is
// trusted.
//
// No cryptographic implementation ships with this module. The
// default verifier trusts the node, so values returned by verified
// queries are node-trusted, not trustless, until a real verifier
// (one that checks Proof against a trusted state root for Height) is
// plugged in.
type ProofVerifier interface {
	VerifyProof(ctx context.Context, req ProofRequest) error
}
