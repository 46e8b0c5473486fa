package types

import (
	"fmt"
	"strings"
)

// TagCondition is a single key=value filter understood by the node's
// transaction indexer.
type TagCondition struct {
	Key   string `cramberry:"1"`
	Value string `cramberry:"2"`
}

func (c TagCondition) String() string { return c.Key + "=" + c.Value }

// TxSearchRequest is the body of a transaction index query. All
// conditions are ANDed.
type TxSearchRequest struct {
	Conditions []TagCondition `cramberry:"1"`
	Page       uint32         `cramberry:"2"`
	Limit      uint32         `cramberry:"3"`
}

// String renders the request in the indexer's query-string form,
// e.g. "message.sender=x&tx.minheight=0&limit=100".
func (r TxSearchRequest) String() string {
	parts := make([]string, 0, len(r.Conditions)+1)
	for _, c := range r.Conditions {
		parts = append(parts, c.String())
	}
	if r.Page > 1 {
		parts = append(parts, fmt.Sprintf("page=%d", r.Page))
	}
	if r.Limit > 0 {
		parts = append(parts, fmt.Sprintf("limit=%d", r.Limit))
	}
	return strings.Join(parts, "&")
}

// TxSearchItem is one indexed transaction as reported by the node.
// Numeric fields that the indexer renders as decimal strings stay
// strings here; normalize parses them.
type TxSearchItem struct {
	Height    string    `cramberry:"1"`
	TxHash    string    `cramberry:"2"`
	Code      *uint32   `cramberry:"3"`
	RawLog    string    `cramberry:"4"`
	Logs      []WireLog `cramberry:"5"`
	Tx        []byte    `cramberry:"6"`
	GasWanted string    `cramberry:"7"`
	GasUsed   string    `cramberry:"8"`
	Timestamp string    `cramberry:"9"`
}

// TxSearchResponse is one page of search results.
type TxSearchResponse struct {
	TotalCount string         `cramberry:"1"`
	Count      string         `cramberry:"2"`
	PageNumber string         `cramberry:"3"`
	PageTotal  string         `cramberry:"4"`
	Limit      string         `cramberry:"5"`
	Txs        []TxSearchItem `cramberry:"6"`
}
