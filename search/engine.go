// Package search turns transaction search queries into indexer
// requests against the node and merges the results.
package search

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/blockberries/bquery"
	"github.com/blockberries/bquery/codec"
	"github.com/blockberries/bquery/metrics"
	"github.com/blockberries/bquery/normalize"
	"github.com/blockberries/bquery/types"
)

// TxSearchPath is the node method serving the transaction index.
const TxSearchPath types.QueryPath = "/txs/search"

// PageLimit is the default number of results requested per call.
// Result sets spanning more than one page are rejected.
const PageLimit uint32 = 100

// UnverifiedQuerier is the subset of query.Gateway the engine needs.
type UnverifiedQuerier interface {
	QueryUnverified(ctx context.Context, path types.QueryPath, request []byte) ([]byte, error)
}

// Engine executes searches.
type Engine struct {
	gateway   UnverifiedQuerier
	pageLimit uint32
	log       zerolog.Logger
	metrics   *metrics.Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithPageLimit sets the per-call result limit.
func WithPageLimit(limit uint32) Option {
	return func(e *Engine) {
		if limit > 0 {
			e.pageLimit = limit
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// New creates an Engine that queries through gateway.
func New(gateway UnverifiedQuerier, opts ...Option) *Engine {
	e := &Engine{
		gateway:   gateway,
		pageLimit: PageLimit,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ErrNoQuery is returned by Search when called with a nil query.
var ErrNoQuery = errors.New("search query is required")

// Search returns the transactions matching q within filter's height
// range, ordered as the node returned them.
func (e *Engine) Search(ctx context.Context, q Query, filter Filter) ([]types.IndexedTx, error) {
	if q == nil {
		return nil, ErrNoQuery
	}
	txs, err := e.search(ctx, q, filter)
	e.metrics.ObserveSearch(q.variant(), err, len(txs))
	if err != nil {
		e.log.Warn().Err(err).Str("variant", q.variant()).Msg("transaction search failed")
		return nil, err
	}
	e.log.Debug().Str("variant", q.variant()).Int("results", len(txs)).Msg("transaction search")
	return txs, nil
}

func (e *Engine) search(ctx context.Context, q Query, filter Filter) ([]types.IndexedTx, error) {
	minHeight, maxHeight := filter.Bounds()
	if maxHeight < minHeight {
		return []types.IndexedTx{}, nil
	}

	heightRange := []types.TagCondition{
		{Key: "tx.minheight", Value: strconv.FormatUint(minHeight, 10)},
		{Key: "tx.maxheight", Value: strconv.FormatUint(maxHeight, 10)},
	}

	var (
		txs []types.IndexedTx
		err error
	)
	switch q := q.(type) {
	case ByID:
		txs, err = e.fetch(ctx, []types.TagCondition{{Key: "tx.hash", Value: q.ID}})

	case ByHeight:
		if q.Height < minHeight || q.Height > maxHeight {
			return []types.IndexedTx{}, nil
		}
		txs, err = e.fetch(ctx, []types.TagCondition{{Key: "tx.height", Value: strconv.FormatUint(q.Height, 10)}})

	case BySentFromOrTo:
		txs, err = e.sentFromOrTo(ctx, q.Address, heightRange)

	case ByTags:
		conds := make([]types.TagCondition, 0, len(q.Tags)+len(heightRange))
		conds = append(conds, q.Tags...)
		conds = append(conds, heightRange...)
		txs, err = e.fetch(ctx, conds)

	default:
		return nil, fmt.Errorf("unknown search query %T", q)
	}
	if err != nil {
		return nil, err
	}

	return FilterHeight(txs, minHeight, maxHeight), nil
}

// sentFromOrTo runs the sent and received searches concurrently and
// merges them: every sent transaction, then every received one not
// already present.
func (e *Engine) sentFromOrTo(ctx context.Context, addr string, heightRange []types.TagCondition) ([]types.IndexedTx, error) {
	sentQuery := append([]types.TagCondition{
		{Key: "message.module", Value: "bank"},
		{Key: "message.sender", Value: addr},
	}, heightRange...)
	receivedQuery := append([]types.TagCondition{
		{Key: "message.module", Value: "bank"},
		{Key: "transfer.recipient", Value: addr},
	}, heightRange...)

	var sent, received []types.IndexedTx
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		sent, err = e.fetch(gctx, sentQuery)
		return err
	})
	g.Go(func() (err error) {
		received, err = e.fetch(gctx, receivedQuery)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(sent))
	for _, tx := range sent {
		seen[tx.Hash] = struct{}{}
	}
	merged := make([]types.IndexedTx, 0, len(sent)+len(received))
	merged = append(merged, sent...)
	for _, tx := range received {
		if _, dup := seen[tx.Hash]; !dup {
			merged = append(merged, tx)
		}
	}
	return merged, nil
}

// fetch issues one indexer request and normalizes its results.
func (e *Engine) fetch(ctx context.Context, conds []types.TagCondition) ([]types.IndexedTx, error) {
	req := types.TxSearchRequest{Conditions: conds, Limit: e.pageLimit}
	data, err := codec.Marshal(&req)
	if err != nil {
		return nil, err
	}

	e.log.Debug().Str("query", req.String()).Msg("searching transaction index")
	raw, err := e.gateway.QueryUnverified(ctx, TxSearchPath, data)
	if err != nil {
		return nil, err
	}

	var resp types.TxSearchResponse
	if err := codec.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	pageTotal, err := normalize.Uint("page_total", resp.PageTotal)
	if err != nil {
		return nil, err
	}
	if pageTotal > 1 {
		total, err := normalize.Uint("total_count", resp.TotalCount)
		if err != nil {
			return nil, err
		}
		return nil, &bquery.ResultSetTooLargeError{Total: total, Limit: e.pageLimit}
	}

	txs := make([]types.IndexedTx, 0, len(resp.Txs))
	for _, item := range resp.Txs {
		tx, err := normalize.IndexedTx(item)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, nil
}
