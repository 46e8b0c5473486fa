package types

// BroadcastResponse is the node's reply to a submitted transaction.
type BroadcastResponse struct {
	Height string `cramberry:"1"`
	TxHash string `cramberry:"2"`
	// Nil when the node did not report a code.
	Code   *uint32   `cramberry:"3"`
	RawLog string    `cramberry:"4"`
	Logs   []WireLog `cramberry:"5"`
	// Hex encoded result data.
	Data string `cramberry:"6"`
}

// BroadcastResult is either a BroadcastSuccess or a BroadcastFailure.
type BroadcastResult interface {
	// TransactionHash is non-empty upper-case hex in both variants.
	TransactionHash() string
	isBroadcastResult()
}

// BroadcastSuccess is a transaction the node accepted.
type BroadcastSuccess struct {
	Logs   []Log
	RawLog string
	Hash   string
	Data   []byte
}

// BroadcastFailure is a transaction the node rejected or failed to execute.
type BroadcastFailure struct {
	Hash   string
	Height uint64
	Code   uint32
	RawLog string
}

func (r BroadcastSuccess) TransactionHash() string { return r.Hash }
func (r BroadcastFailure) TransactionHash() string { return r.Hash }

func (BroadcastSuccess) isBroadcastResult() {}
func (BroadcastFailure) isBroadcastResult() {}

// IsBroadcastFailure reports whether r is a failure and returns it.
func IsBroadcastFailure(r BroadcastResult) (BroadcastFailure, bool) {
	f, ok := r.(BroadcastFailure)
	return f, ok
}
