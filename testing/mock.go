// Package bquerytest provides test utilities for code built on the
// query layer: a configurable mock node, a client harness over an
// in-process connection, and a compliance suite for node
// implementations.
package bquerytest

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/blockberries/bquery"
	"github.com/blockberries/bquery/types"
)

// Compile-time interface check.
var _ bquery.Node = (*MockNode)(nil)

// MockNode is a configurable mock node. All methods are configurable
// via function fields. Unconfigured methods return zero-value
// defaults: a query answers code 0 with no key and no value.
type MockNode struct {
	// Configurable handlers. If nil, defaults are used.
	QueryFn       func(context.Context, types.StateQuery) (types.StateQueryResult, error)
	BroadcastTxFn func(context.Context, types.Tx) (types.BroadcastResponse, error)

	// Call counters (atomic for concurrent access).
	QueryCalls       atomic.Int64
	BroadcastTxCalls atomic.Int64

	mu      sync.Mutex
	queries []types.StateQuery
}

func (m *MockNode) Query(ctx context.Context, req types.StateQuery) (types.StateQueryResult, error) {
	m.QueryCalls.Add(1)
	m.mu.Lock()
	m.queries = append(m.queries, req)
	m.mu.Unlock()
	if m.QueryFn != nil {
		return m.QueryFn(ctx, req)
	}
	return types.StateQueryResult{}, nil
}

func (m *MockNode) BroadcastTx(ctx context.Context, tx types.Tx) (types.BroadcastResponse, error) {
	m.BroadcastTxCalls.Add(1)
	if m.BroadcastTxFn != nil {
		return m.BroadcastTxFn(ctx, tx)
	}
	return types.BroadcastResponse{}, nil
}

// Queries returns the queries received so far, in arrival order.
func (m *MockNode) Queries() []types.StateQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.StateQuery(nil), m.queries...)
}

// StoreFn returns a QueryFn that serves verified store lookups from
// values (keyed by string(key)) and echoes the requested key. Missing
// keys answer with an empty value. Any other path answers code 1.
func StoreFn(values map[string][]byte) func(context.Context, types.StateQuery) (types.StateQueryResult, error) {
	return func(_ context.Context, req types.StateQuery) (types.StateQueryResult, error) {
		if !req.Prove {
			return types.StateQueryResult{Code: 1, Info: "unexpected unverified query " + string(req.Path)}, nil
		}
		return types.StateQueryResult{Key: req.Data, Value: values[string(req.Data)], Height: 1}, nil
	}
}
