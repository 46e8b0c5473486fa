// Package types defines the wire records exchanged with a remote
// node and the typed results handed back to callers.
//
// Wire records are plain Go structs with cramberry struct tags for
// deterministic binary serialization. Result types (Account,
// IndexedTx, Block, BroadcastResult) carry no tags; they are produced
// by the normalize package and never sent over the wire.
package types

// Tx is the canonical encoding of a transaction as accepted by the node.
type Tx []byte

// QueryPath is a structured key for state queries
// (e.g., "/store/bank/key", "/txs/search").
type QueryPath string

// Any is a type-tagged envelope around an encoded record.
type Any struct {
	TypeURL string `cramberry:"1"`
	Value   []byte `cramberry:"2"`
}
