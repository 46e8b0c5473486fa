package types

// BlockRequest selects a block. Nil Height = latest.
type BlockRequest struct {
	Height *uint64 `cramberry:"1"`
}

// BlockResponse is a block as reported by the node. Heights are
// decimal strings and the ID is uppercase hex.
type BlockResponse struct {
	BlockID string          `cramberry:"1"`
	Header  WireBlockHeader `cramberry:"2"`
	Txs     [][]byte        `cramberry:"3"`
}

// WireBlockHeader is the header portion of a BlockResponse.
type WireBlockHeader struct {
	VersionBlock string `cramberry:"1"`
	VersionApp   string `cramberry:"2"`
	Height       string `cramberry:"3"`
	ChainID      string `cramberry:"4"`
	// RFC 3339 time string.
	Time string `cramberry:"5"`
}

// BlockVersion holds the protocol versions a block was produced under.
type BlockVersion struct {
	Block string
	App   string
}

// BlockHeader is the normalized header of a Block.
type BlockHeader struct {
	Version BlockVersion
	Height  uint64
	ChainID string
	// An RFC 3339 time string like e.g. '2020-02-15T10:39:10.4696305Z'.
	Time string
}

// Block is a block header plus its raw transactions.
type Block struct {
	// The ID is a hash of the block header (uppercase hex).
	ID     string
	Header BlockHeader
	Txs    [][]byte
}
