package client

import (
	"github.com/rs/zerolog"

	"github.com/blockberries/bquery"
	"github.com/blockberries/bquery/metrics"
	"github.com/blockberries/bquery/txid"
)

type options struct {
	verifier       bquery.ProofVerifier
	encoder        txid.Encoder
	remoteEncoding bool
	log            zerolog.Logger
	pageLimit      uint32
	prefix         string
	metrics        *metrics.Metrics
}

// Option configures a Client.
type Option func(*options)

// WithProofVerifier sets the verifier applied to every verified
// query. The default trusts the node.
func WithProofVerifier(v bquery.ProofVerifier) Option {
	return func(o *options) { o.verifier = v }
}

// WithEncoder sets how transactions are encoded for identifier
// computation. The default encodes locally.
func WithEncoder(e txid.Encoder) Option {
	return func(o *options) { o.encoder = e }
}

// WithRemoteEncoding makes identifier computation ask the node for
// the canonical encoding.
func WithRemoteEncoding() Option {
	return func(o *options) { o.remoteEncoding = true }
}

// WithLogger sets the logger shared by the client's components.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithPageLimit sets the per-call limit of transaction searches.
func WithPageLimit(limit uint32) Option {
	return func(o *options) { o.pageLimit = limit }
}

// WithAddressPrefix sets the bech32 prefix addresses must carry.
// Empty accepts any prefix.
func WithAddressPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}
