// Package local provides an in-process node connection.
//
// For nodes compiled into the same binary as the client (tests, the
// CLI's demo mode), this adapter hands requests straight to the node
// with no serialization overhead.
package local

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/blockberries/bquery"
	"github.com/blockberries/bquery/types"
)

// Compile-time interface check.
var _ bquery.Connection = (*Connection)(nil)

// ErrClosed is returned by calls made after Close.
var ErrClosed = errors.New("local connection closed")

// Connection wraps a local Node.
type Connection struct {
	node   bquery.Node
	closed atomic.Bool
}

// NewConnection creates an in-process connection to node.
func NewConnection(node bquery.Node) *Connection {
	return &Connection{node: node}
}

func (c *Connection) Query(ctx context.Context, req types.StateQuery) (types.StateQueryResult, error) {
	if c.closed.Load() {
		return types.StateQueryResult{}, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return types.StateQueryResult{}, err
	}
	return c.node.Query(ctx, req)
}

func (c *Connection) BroadcastTx(ctx context.Context, tx types.Tx) (types.BroadcastResponse, error) {
	if c.closed.Load() {
		return types.BroadcastResponse{}, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return types.BroadcastResponse{}, err
	}
	return c.node.BroadcastTx(ctx, tx)
}

func (c *Connection) Close() error {
	c.closed.Store(true)
	return nil
}

// Node returns the wrapped node.
func (c *Connection) Node() bquery.Node {
	return c.node
}
