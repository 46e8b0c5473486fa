// Package query issues single logical queries against a node and
// enforces the response contract: a non-zero code is an error, and a
// verified query's echoed key must equal the requested key.
package query

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/blockberries/bquery"
	"github.com/blockberries/bquery/metrics"
	"github.com/blockberries/bquery/types"
)

const (
	modeVerified   = "verified"
	modeUnverified = "unverified"
)

// Gateway sends queries through a Querier and checks the results.
type Gateway struct {
	querier  bquery.Querier
	verifier bquery.ProofVerifier
	log      zerolog.Logger
	metrics  *metrics.Metrics
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithVerifier sets the proof verifier applied to verified queries.
// The default is TrustNode.
func WithVerifier(v bquery.ProofVerifier) Option {
	return func(g *Gateway) {
		if v != nil {
			g.verifier = v
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(g *Gateway) { g.log = log }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gateway) { g.metrics = m }
}

// New creates a Gateway over q.
func New(q bquery.Querier, opts ...Option) *Gateway {
	g := &Gateway{
		querier:  q,
		verifier: TrustNode{},
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// StorePath is the query path of a raw key lookup in the named store.
// Stores are addressed by their store key, not the module name.
func StorePath(store string) types.QueryPath {
	return types.QueryPath("/store/" + store + "/key")
}

// QueryVerified looks up key in store with a proof requested and
// returns the stored value. See QueryVerifiedResult.
func (g *Gateway) QueryVerified(ctx context.Context, store string, key []byte) ([]byte, error) {
	res, err := g.QueryVerifiedResult(ctx, store, key)
	if err != nil {
		return nil, err
	}
	return res.Value, nil
}

// QueryVerifiedResult looks up key in store with a proof requested
// and returns the whole checked result.
//
// It fails with a *bquery.QueryError when the node reports a non-zero
// code, a *bquery.KeyMismatchError when the node answers for a
// different key (regardless of the code), and a *bquery.ProofError
// when the configured verifier rejects the proof.
func (g *Gateway) QueryVerifiedResult(ctx context.Context, store string, key []byte) (types.StateQueryResult, error) {
	path := StorePath(store)
	start := time.Now()

	res, err := g.querier.Query(ctx, types.StateQuery{Path: path, Data: key, Prove: true})
	if err != nil {
		g.observe(modeVerified, path, metrics.OutcomeTransport, start, err)
		return types.StateQueryResult{}, fmt.Errorf("query %s: %w", path, err)
	}

	if !res.OK() {
		err := &bquery.QueryError{Path: string(path), Code: res.Code, Log: res.Info}
		g.observe(modeVerified, path, metrics.OutcomeQueryError, start, err)
		return types.StateQueryResult{}, err
	}

	if !bytes.Equal(res.Key, key) {
		err := &bquery.KeyMismatchError{Store: store, Want: key, Got: res.Key}
		g.observe(modeVerified, path, metrics.OutcomeKeyMismatch, start, err)
		return types.StateQueryResult{}, err
	}

	err = g.verifier.VerifyProof(ctx, bquery.ProofRequest{
		Store:  store,
		Key:    key,
		Value:  res.Value,
		Height: res.Height,
		Proof:  res.Proof,
	})
	if err != nil {
		perr, ok := bquery.IsProofError(err)
		if !ok {
			perr = &bquery.ProofError{Store: store, Key: key, Height: res.Height, Reason: err.Error()}
		}
		g.observe(modeVerified, path, metrics.OutcomeProofError, start, perr)
		return types.StateQueryResult{}, perr
	}

	g.observe(modeVerified, path, metrics.OutcomeOK, start, nil)
	return res, nil
}

// QueryUnverified sends request to the RPC method at path without
// asking for a proof. No key matching is done since path is a method
// name, not a store key. A non-zero code fails with a
// *bquery.QueryError.
func (g *Gateway) QueryUnverified(ctx context.Context, path types.QueryPath, request []byte) ([]byte, error) {
	start := time.Now()

	res, err := g.querier.Query(ctx, types.StateQuery{Path: path, Data: request, Prove: false})
	if err != nil {
		g.observe(modeUnverified, path, metrics.OutcomeTransport, start, err)
		return nil, fmt.Errorf("query %s: %w", path, err)
	}

	if !res.OK() {
		err := &bquery.QueryError{Path: string(path), Code: res.Code, Log: res.Info}
		g.observe(modeUnverified, path, metrics.OutcomeQueryError, start, err)
		return nil, err
	}

	g.observe(modeUnverified, path, metrics.OutcomeOK, start, nil)
	return res.Value, nil
}

func (g *Gateway) observe(mode string, path types.QueryPath, outcome string, start time.Time, err error) {
	elapsed := time.Since(start)
	g.metrics.ObserveQuery(mode, outcome, elapsed)

	ev := g.log.Debug()
	if err != nil {
		ev = g.log.Warn().Err(err)
	}
	ev.Str("mode", mode).
		Str("path", string(path)).
		Str("outcome", outcome).
		Dur("elapsed", elapsed).
		Msg("node query")
}
