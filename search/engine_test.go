package search_test

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/blockberries/bquery"
	"github.com/blockberries/bquery/codec"
	"github.com/blockberries/bquery/metrics"
	"github.com/blockberries/bquery/search"
	"github.com/blockberries/bquery/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeIndex answers search requests by matching the rendered request
// against registered substrings.
type fakeIndex struct {
	mu        sync.Mutex
	responses map[string]types.TxSearchResponse
	requests  []types.TxSearchRequest
	err       error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{responses: make(map[string]types.TxSearchResponse)}
}

func (f *fakeIndex) on(match string, txs ...types.TxSearchItem) {
	f.responses[match] = types.TxSearchResponse{
		TotalCount: strconv.Itoa(len(txs)),
		Count:      strconv.Itoa(len(txs)),
		PageNumber: "1",
		PageTotal:  "1",
		Limit:      "100",
		Txs:        txs,
	}
}

func (f *fakeIndex) QueryUnverified(_ context.Context, path types.QueryPath, data []byte) ([]byte, error) {
	if path != search.TxSearchPath {
		return nil, errors.New("unexpected path " + string(path))
	}
	var req types.TxSearchRequest
	if err := codec.Unmarshal(data, &req); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	rendered := req.String()
	for match, resp := range f.responses {
		if strings.Contains(rendered, match) {
			return codec.Marshal(&resp)
		}
	}
	return codec.Marshal(&types.TxSearchResponse{TotalCount: "0", PageNumber: "1", PageTotal: "1", Limit: "100"})
}

func (f *fakeIndex) calls() []types.TxSearchRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]types.TxSearchRequest(nil), f.requests...)
}

func item(hash, height string) types.TxSearchItem {
	return types.TxSearchItem{Height: height, TxHash: hash, RawLog: "[]"}
}

func hashes(txs []types.IndexedTx) []string {
	out := make([]string, 0, len(txs))
	for _, tx := range txs {
		out = append(out, tx.Hash)
	}
	return out
}

func TestSearch_ByID(t *testing.T) {
	idx := newFakeIndex()
	idx.on("tx.hash=AABB", item("AABB", "5"))

	txs, err := search.New(idx).Search(context.Background(), search.ByID{ID: "AABB"}, search.Filter{})
	require.NoError(t, err)
	require.Equal(t, []string{"AABB"}, hashes(txs))

	calls := idx.calls()
	require.Len(t, calls, 1)
	require.Equal(t, "tx.hash=AABB&limit=100", calls[0].String())
}

func TestSearch_ByIDOutsideFilter(t *testing.T) {
	idx := newFakeIndex()
	idx.on("tx.hash=AABB", item("AABB", "5"))

	txs, err := search.New(idx).Search(context.Background(), search.ByID{ID: "AABB"}, search.Filter{MinHeight: 6})
	require.NoError(t, err)
	require.Empty(t, txs)
}

func TestSearch_ByHeight(t *testing.T) {
	idx := newFakeIndex()
	idx.on("tx.height=7", item("01", "7"), item("02", "7"))

	txs, err := search.New(idx).Search(context.Background(), search.ByHeight{Height: 7}, search.Filter{})
	require.NoError(t, err)
	require.Equal(t, []string{"01", "02"}, hashes(txs))
}

func TestSearch_ByHeightFastPath(t *testing.T) {
	idx := newFakeIndex()
	e := search.New(idx)

	txs, err := e.Search(context.Background(), search.ByHeight{Height: 3}, search.Filter{MinHeight: 5, MaxHeight: 10})
	require.NoError(t, err)
	require.Empty(t, txs)

	txs, err = e.Search(context.Background(), search.ByHeight{Height: 11}, search.Filter{MinHeight: 5, MaxHeight: 10})
	require.NoError(t, err)
	require.Empty(t, txs)

	require.Empty(t, idx.calls(), "out-of-range height must not reach the node")
}

func TestSearch_EmptyRange(t *testing.T) {
	idx := newFakeIndex()
	e := search.New(idx)

	queries := []search.Query{
		search.ByID{ID: "AA"},
		search.ByHeight{Height: 5},
		search.BySentFromOrTo{Address: "cosmos1a"},
		search.ByTags{Tags: []types.TagCondition{{Key: "message.action", Value: "send"}}},
	}
	for _, q := range queries {
		txs, err := e.Search(context.Background(), q, search.Filter{MinHeight: 10, MaxHeight: 9})
		require.NoError(t, err)
		require.Empty(t, txs)
	}
	require.Empty(t, idx.calls())
}

func TestSearch_SentFromOrToMerge(t *testing.T) {
	idx := newFakeIndex()
	idx.on("message.sender=cosmos1a", item("A1", "1"), item("A2", "2"))
	idx.on("transfer.recipient=cosmos1a", item("A2", "2"), item("A3", "3"))

	txs, err := search.New(idx).Search(context.Background(), search.BySentFromOrTo{Address: "cosmos1a"}, search.Filter{})
	require.NoError(t, err)
	require.Equal(t, []string{"A1", "A2", "A3"}, hashes(txs))

	calls := idx.calls()
	require.Len(t, calls, 2)
	var rendered []string
	for _, c := range calls {
		rendered = append(rendered, c.String())
	}
	require.ElementsMatch(t, []string{
		"message.module=bank&message.sender=cosmos1a&tx.minheight=0&tx.maxheight=9223372036854775807&limit=100",
		"message.module=bank&transfer.recipient=cosmos1a&tx.minheight=0&tx.maxheight=9223372036854775807&limit=100",
	}, rendered)
}

func TestSearch_SentFromOrToError(t *testing.T) {
	idx := newFakeIndex()
	idx.err = errors.New("index offline")

	_, err := search.New(idx).Search(context.Background(), search.BySentFromOrTo{Address: "cosmos1a"}, search.Filter{})
	require.ErrorIs(t, err, idx.err)
}

func TestSearch_ByTags(t *testing.T) {
	idx := newFakeIndex()
	idx.on("message.action=send", item("B1", "4"), item("B2", "12"))

	tags := []types.TagCondition{{Key: "message.action", Value: "send"}}
	txs, err := search.New(idx).Search(context.Background(), search.ByTags{Tags: tags}, search.Filter{MinHeight: 2, MaxHeight: 10})
	require.NoError(t, err)
	require.Equal(t, []string{"B1"}, hashes(txs), "post-filter must drop results the node returned out of range")

	calls := idx.calls()
	require.Len(t, calls, 1)
	require.Equal(t, "message.action=send&tx.minheight=2&tx.maxheight=10&limit=100", calls[0].String())
}

func TestSearch_ResultSetTooLarge(t *testing.T) {
	queries := []search.Query{
		search.ByID{ID: "AA"},
		search.ByHeight{Height: 5},
		search.BySentFromOrTo{Address: "cosmos1a"},
		search.ByTags{Tags: []types.TagCondition{{Key: "message.action", Value: "send"}}},
	}
	for _, q := range queries {
		idx := newFakeIndex()
		idx.responses[""] = types.TxSearchResponse{TotalCount: "150", PageNumber: "1", PageTotal: "2", Limit: "100"}

		_, err := search.New(idx).Search(context.Background(), q, search.Filter{})
		tooLarge, ok := bquery.IsResultSetTooLarge(err)
		require.True(t, ok, "%T: expected ResultSetTooLargeError, got %v", q, err)
		require.Equal(t, uint64(150), tooLarge.Total)
		require.Equal(t, uint32(100), tooLarge.Limit)
	}
}

func TestSearch_PageLimitOption(t *testing.T) {
	idx := newFakeIndex()
	_, err := search.New(idx, search.WithPageLimit(25)).Search(context.Background(), search.ByID{ID: "AA"}, search.Filter{})
	require.NoError(t, err)
	require.Equal(t, uint32(25), idx.calls()[0].Limit)
}

func TestSearch_MalformedPageTotal(t *testing.T) {
	idx := newFakeIndex()
	idx.responses[""] = types.TxSearchResponse{PageTotal: "many"}

	_, err := search.New(idx).Search(context.Background(), search.ByID{ID: "AA"}, search.Filter{})
	_, ok := bquery.IsFormatError(err)
	require.True(t, ok, "expected FormatError, got %v", err)
}

func TestSearch_MalformedHeight(t *testing.T) {
	idx := newFakeIndex()
	idx.on("tx.hash=AA", item("AA", "twelve"))

	_, err := search.New(idx).Search(context.Background(), search.ByID{ID: "AA"}, search.Filter{})
	_, ok := bquery.IsFormatError(err)
	require.True(t, ok, "expected FormatError, got %v", err)
}

func TestFilterHeight_Idempotent(t *testing.T) {
	txs := []types.IndexedTx{{Hash: "A", Height: 1}, {Hash: "B", Height: 5}, {Hash: "C", Height: 9}, {Hash: "D", Height: 5}}

	once := search.FilterHeight(txs, 2, 8)
	twice := search.FilterHeight(once, 2, 8)
	require.Equal(t, once, twice)
	require.Equal(t, []string{"B", "D"}, hashes(once))
}

func TestFilter_Bounds(t *testing.T) {
	minHeight, maxHeight := search.Filter{}.Bounds()
	require.Equal(t, uint64(0), minHeight)
	require.Equal(t, search.MaxHeight, maxHeight)

	minHeight, maxHeight = search.Filter{MinHeight: 3, MaxHeight: 4}.Bounds()
	require.Equal(t, uint64(3), minHeight)
	require.Equal(t, uint64(4), maxHeight)
}

func TestSearch_NilQuery(t *testing.T) {
	idx := newFakeIndex()
	reg := prometheus.NewRegistry()

	txs, err := search.New(idx, search.WithMetrics(metrics.New(reg))).Search(context.Background(), nil, search.Filter{})
	require.ErrorIs(t, err, search.ErrNoQuery)
	require.Nil(t, txs)
	require.Empty(t, idx.calls())
}

func TestSearch_EmptyHashRejected(t *testing.T) {
	idx := newFakeIndex()
	idx.on("message.sender=cosmos1a", item("", "1"))
	idx.on("transfer.recipient=cosmos1a", item("", "2"))

	_, err := search.New(idx).Search(context.Background(), search.BySentFromOrTo{Address: "cosmos1a"}, search.Filter{})
	_, ok := bquery.IsFormatError(err)
	require.True(t, ok, "expected FormatError, got %v", err)
}
