package bquerygrpc

import "github.com/blockberries/bquery/types"

// BroadcastTxRequest wraps the parameter of Broadcaster.BroadcastTx.
type BroadcastTxRequest struct {
	Tx types.Tx `cramberry:"1"`
}
