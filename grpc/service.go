package bquerygrpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"

	"github.com/blockberries/bquery/types"
)

const serviceName = "github.com/blockberries/bquery.v1.NodeService"

// NodeServiceServer is the server-side interface of the node service.
type NodeServiceServer interface {
	Query(context.Context, *types.StateQuery) (*types.StateQueryResult, error)
	BroadcastTx(context.Context, *BroadcastTxRequest) (*types.BroadcastResponse, error)
}

// RegisterNodeServiceServer registers srv on a gRPC server.
func RegisterNodeServiceServer(s *grpc.Server, srv NodeServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

// --- Handler functions ---

func handlerQuery(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(types.StateQuery)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NodeServiceServer).Query(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("Query")}
	return interceptor(ctx, req, info, func(ctx context.Context, req any) (any, error) {
		return srv.(NodeServiceServer).Query(ctx, req.(*types.StateQuery))
	})
}

func handlerBroadcastTx(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(BroadcastTxRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NodeServiceServer).BroadcastTx(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("BroadcastTx")}
	return interceptor(ctx, req, info, func(ctx context.Context, req any) (any, error) {
		return srv.(NodeServiceServer).BroadcastTx(ctx, req.(*BroadcastTxRequest))
	})
}

// fullMethod builds the full gRPC method path.
func fullMethod(method string) string {
	return fmt.Sprintf("/%s/%s", serviceName, method)
}

// serviceDesc is the manual gRPC service descriptor for the node
// service.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*NodeServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Query", Handler: handlerQuery},
		{MethodName: "BroadcastTx", Handler: handlerBroadcastTx},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "github.com/blockberries/bquery/v1/service.cram",
}
