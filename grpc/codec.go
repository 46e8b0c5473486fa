// Package bquerygrpc is the gRPC transport between the query client
// and a node, using cramberry for serialization.
//
// No protobuf code generation is required. Records from
// bquery/types are serialized directly via cramberry struct tags.
package bquerygrpc

import (
	"google.golang.org/grpc/encoding"

	"github.com/blockberries/bquery/codec"
)

const codecName = "cramberry"

// CramberryCodec implements grpc/encoding.Codec on top of the
// module's codec package.
type CramberryCodec struct{}

func (CramberryCodec) Marshal(v any) ([]byte, error) { return codec.Marshal(v) }

func (CramberryCodec) Unmarshal(data []byte, v any) error { return codec.Unmarshal(data, v) }

func (CramberryCodec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(CramberryCodec{})
}
