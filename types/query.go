package types

// StateQuery is a request to read remote application state.
type StateQuery struct {
	Path QueryPath `cramberry:"1"`
	Data []byte    `cramberry:"2"`
	// Height to query at. Nil = latest committed state.
	Height *uint64 `cramberry:"3"`
	// If true, the node should include a Merkle proof in the result.
	Prove bool `cramberry:"4"`
}

// StateQueryResult is the node's response to a state query.
type StateQueryResult struct {
	Code  uint32 `cramberry:"1"`
	Key   []byte `cramberry:"2"`
	Value []byte `cramberry:"3"`
	// Height the query was answered at.
	Height uint64       `cramberry:"4"`
	Proof  *MerkleProof `cramberry:"5"`
	// Backend log text. Set when Code is non-zero.
	Info string `cramberry:"6"`
}

// OK returns true if the node answered the query successfully.
func (r StateQueryResult) OK() bool { return r.Code == 0 }

// MerkleProof is an inclusion/exclusion proof against the
// app state root.
type MerkleProof struct {
	Ops []ProofOp `cramberry:"1"`
}

// ProofOp is a single operation in a Merkle proof.
type ProofOp struct {
	Type string `cramberry:"1"`
	Key  []byte `cramberry:"2"`
	Data []byte `cramberry:"3"`
}

// AllBalancesRequest is the request body of the unverified
// all-balances query.
type AllBalancesRequest struct {
	Address []byte `cramberry:"1"`
}

// AllBalancesResponse lists every balance held by an address.
type AllBalancesResponse struct {
	Balances []Coin `cramberry:"1"`
}

// NodeInfo describes the node answering queries.
type NodeInfo struct {
	ChainID string `cramberry:"1"`
	Moniker string `cramberry:"2"`
	Version string `cramberry:"3"`
}
