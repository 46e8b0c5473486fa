package bquerygrpc

import (
	"context"
	"net"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/blockberries/bquery"
	"github.com/blockberries/bquery/types"
)

// Compile-time interface check.
var _ NodeServiceServer = (*GRPCServer)(nil)

// GRPCServer exposes a node over gRPC. Records are serialized
// directly via cramberry with no conversion layer.
type GRPCServer struct {
	node bquery.Node
	log  zerolog.Logger
}

// NewGRPCServer creates a gRPC server wrapping node.
func NewGRPCServer(node bquery.Node, log zerolog.Logger) *GRPCServer {
	return &GRPCServer{node: node, log: log}
}

// Register adds the node service to a gRPC server.
func (s *GRPCServer) Register(gs *grpc.Server) {
	RegisterNodeServiceServer(gs, s)
}

// NewServer creates a gRPC server with tracing enabled and the node
// service registered.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{grpc.StatsHandler(otelgrpc.NewServerHandler())}, opts...)
	gs := grpc.NewServer(opts...)
	s.Register(gs)
	return gs
}

// Serve starts a gRPC server on the given listener. It blocks until
// the server stops.
func (s *GRPCServer) Serve(lis net.Listener, opts ...grpc.ServerOption) error {
	s.log.Info().Str("addr", lis.Addr().String()).Msg("serving node")
	return s.NewServer(opts...).Serve(lis)
}

func (s *GRPCServer) Query(ctx context.Context, req *types.StateQuery) (*types.StateQueryResult, error) {
	if req.Path == "" {
		return nil, status.Error(codes.InvalidArgument, "query path is required")
	}
	res, err := s.node.Query(ctx, *req)
	if err != nil {
		s.log.Error().Err(err).Str("path", string(req.Path)).Msg("query failed")
		return nil, err
	}
	return &res, nil
}

func (s *GRPCServer) BroadcastTx(ctx context.Context, req *BroadcastTxRequest) (*types.BroadcastResponse, error) {
	if len(req.Tx) == 0 {
		return nil, status.Error(codes.InvalidArgument, "empty transaction")
	}
	resp, err := s.node.BroadcastTx(ctx, req.Tx)
	if err != nil {
		s.log.Error().Err(err).Msg("broadcast failed")
		return nil, err
	}
	return &resp, nil
}
