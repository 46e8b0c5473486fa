package bquerygrpc

import (
	"context"
	"fmt"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"

	"github.com/blockberries/bquery"
	"github.com/blockberries/bquery/types"
)

// Compile-time interface check.
var _ bquery.Connection = (*Client)(nil)

// Client implements bquery.Connection for remote nodes over gRPC
// using cramberry serialization.
type Client struct {
	cc *grpc.ClientConn
}

// Dial connects to a remote node. Calls are traced with OpenTelemetry.
func Dial(ctx context.Context, addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append(opts,
		grpc.WithDefaultCallOptions(grpc.ForceCodec(CramberryCodec{})),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	)
	cc, err := grpc.DialContext(ctx, addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("bquery client: dial %s: %w", addr, err)
	}
	return &Client{cc: cc}, nil
}

func (c *Client) Close() error {
	return c.cc.Close()
}

func (c *Client) Query(ctx context.Context, req types.StateQuery) (types.StateQueryResult, error) {
	resp := new(types.StateQueryResult)
	if err := c.cc.Invoke(ctx, fullMethod("Query"), &req, resp); err != nil {
		return types.StateQueryResult{}, err
	}
	return *resp, nil
}

func (c *Client) BroadcastTx(ctx context.Context, tx types.Tx) (types.BroadcastResponse, error) {
	req := &BroadcastTxRequest{Tx: tx}
	resp := new(types.BroadcastResponse)
	if err := c.cc.Invoke(ctx, fullMethod("BroadcastTx"), req, resp); err != nil {
		return types.BroadcastResponse{}, err
	}
	return *resp, nil
}
