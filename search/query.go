package search

import (
	"math"

	"github.com/blockberries/bquery/types"
)

// MaxHeight is the largest height a filter can express. It is the
// maximum of a signed 64-bit integer so ranges stay representable by
// indexers that store heights as int64.
const MaxHeight uint64 = math.MaxInt64

// Query is one of ByID, ByHeight, BySentFromOrTo or ByTags.
type Query interface {
	variant() string
}

// ByID finds the transaction with the given hash.
type ByID struct {
	ID string
}

// ByHeight finds all transactions included at Height.
type ByHeight struct {
	Height uint64
}

// BySentFromOrTo finds bank transfers sent from or received by
// Address.
type BySentFromOrTo struct {
	Address string
}

// ByTags finds transactions matching all of Tags.
type ByTags struct {
	Tags []types.TagCondition
}

func (ByID) variant() string           { return "by_id" }
func (ByHeight) variant() string       { return "by_height" }
func (BySentFromOrTo) variant() string { return "by_sent_from_or_to" }
func (ByTags) variant() string         { return "by_tags" }

// Filter restricts results to an inclusive height range. A zero
// MaxHeight means no upper bound.
type Filter struct {
	MinHeight uint64
	MaxHeight uint64
}

// Bounds resolves the filter's defaults.
func (f Filter) Bounds() (minHeight, maxHeight uint64) {
	maxHeight = f.MaxHeight
	if maxHeight == 0 {
		maxHeight = MaxHeight
	}
	return f.MinHeight, maxHeight
}

// FilterHeight keeps the transactions with minHeight <= Height <=
// maxHeight, preserving order. Applying it twice gives the same
// result as applying it once.
func FilterHeight(txs []types.IndexedTx, minHeight, maxHeight uint64) []types.IndexedTx {
	out := make([]types.IndexedTx, 0, len(txs))
	for _, tx := range txs {
		if tx.Height >= minHeight && tx.Height <= maxHeight {
			out = append(out, tx)
		}
	}
	return out
}
