package query

import (
	"context"
	"errors"

	"github.com/blockberries/bquery"
)

// Compile-time interface checks.
var (
	_ bquery.ProofVerifier = TrustNode{}
	_ bquery.ProofVerifier = RequireProof{}
)

// TrustNode accepts every result without looking at the proof. Values
// obtained under it are exactly as trustworthy as the node.
type TrustNode struct{}

func (TrustNode) VerifyProof(context.Context, bquery.ProofRequest) error { return nil }

// RequireProof rejects results that arrive without proof operations.
// It does not check the proof cryptographically; it only ensures a
// node that was asked for a proof actually sent one.
type RequireProof struct{}

var errNoProof = errors.New("node returned no proof")

func (RequireProof) VerifyProof(_ context.Context, req bquery.ProofRequest) error {
	if req.Proof == nil || len(req.Proof.Ops) == 0 {
		return errNoProof
	}
	return nil
}
