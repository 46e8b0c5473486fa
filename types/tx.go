package types

// MsgSendTypeURL tags a bank transfer message.
const MsgSendTypeURL = "/bquery.bank.MsgSend"

// Msg is a single type-tagged message inside a transaction.
type Msg = Any

// MsgSend moves coins between two accounts.
type MsgSend struct {
	FromAddress string `cramberry:"1"`
	ToAddress   string `cramberry:"2"`
	Amount      []Coin `cramberry:"3"`
}

// StdFee is the fee paid for a transaction.
type StdFee struct {
	Amount []Coin `cramberry:"1"`
	Gas    uint64 `cramberry:"2"`
}

// StdSignature is a signature over the transaction's sign bytes.
type StdSignature struct {
	PubKey    PublicKey `cramberry:"1"`
	Signature []byte    `cramberry:"2"`
}

// StdTx is a signed transaction prior to canonical encoding.
type StdTx struct {
	Msgs       []Msg          `cramberry:"1"`
	Fee        StdFee         `cramberry:"2"`
	Signatures []StdSignature `cramberry:"3"`
	Memo       string         `cramberry:"4"`
}

// EncodeTxRequest asks the node for the canonical bytes of a transaction.
type EncodeTxRequest struct {
	Tx StdTx `cramberry:"1"`
}

// EncodeTxResponse carries the node's canonical encoding.
type EncodeTxResponse struct {
	Tx Tx `cramberry:"1"`
}

// IndexedTx is a transaction that is indexed as part of the
// transaction history.
type IndexedTx struct {
	Height uint64
	// Transaction hash (might be used as transaction ID). Guaranteed to
	// be non-empty upper-case hex.
	Hash string
	// Transaction execution error code. 0 on success.
	Code   uint32
	RawLog string
	Logs   []Log
	// The transaction record as returned by the node.
	Tx []byte
	// The gas limit as set by the user.
	GasWanted *uint64
	// The gas used by the execution.
	GasUsed *uint64
	// An RFC 3339 time string like e.g. '2020-02-15T10:39:10.4696305Z'.
	Timestamp string
}
