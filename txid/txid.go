// Package txid computes transaction identifiers: the uppercase hex
// SHA-256 of a transaction's canonical encoding.
package txid

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/blockberries/bquery/codec"
	"github.com/blockberries/bquery/types"
)

// EncodeTxPath is the node method returning a transaction's canonical
// bytes.
const EncodeTxPath types.QueryPath = "/txs/encode"

// Compute returns the identifier of an encoded transaction. The
// result is always 64 uppercase hex characters.
func Compute(encoded []byte) string {
	sum := sha256.Sum256(encoded)
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// Encoder produces the canonical bytes the node hashes to identify a
// transaction.
type Encoder interface {
	EncodeTx(ctx context.Context, tx types.StdTx) ([]byte, error)
}

// LocalEncoder encodes transactions with the node's own codec,
// without a round trip.
type LocalEncoder struct{}

func (LocalEncoder) EncodeTx(_ context.Context, tx types.StdTx) ([]byte, error) {
	return codec.Marshal(&tx)
}

// UnverifiedQuerier is the subset of query.Gateway the remote
// encoder needs.
type UnverifiedQuerier interface {
	QueryUnverified(ctx context.Context, path types.QueryPath, request []byte) ([]byte, error)
}

// RemoteEncoder asks the node for the canonical bytes. Use it when
// the local codec may lag the node's.
type RemoteEncoder struct {
	Gateway UnverifiedQuerier
}

func (e RemoteEncoder) EncodeTx(ctx context.Context, tx types.StdTx) ([]byte, error) {
	req, err := codec.Marshal(&types.EncodeTxRequest{Tx: tx})
	if err != nil {
		return nil, err
	}
	data, err := e.Gateway.QueryUnverified(ctx, EncodeTxPath, req)
	if err != nil {
		return nil, err
	}
	var resp types.EncodeTxResponse
	if err := codec.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode encode-tx response: %w", err)
	}
	return resp.Tx, nil
}

// Calculator derives identifiers using an Encoder.
type Calculator struct {
	Encoder Encoder
}

// Identifier returns the identifier of tx as the node would compute
// it.
func (c Calculator) Identifier(ctx context.Context, tx types.StdTx) (string, error) {
	enc := c.Encoder
	if enc == nil {
		enc = LocalEncoder{}
	}
	encoded, err := enc.EncodeTx(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("encode tx: %w", err)
	}
	return Compute(encoded), nil
}
