package sprout

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/vecna"
)

// QueryOptions holds the parameters applied to every query.
type QueryOptions struct {
	TopK            int
	IncludeValues   bool
	IncludeMetadata bool
	Namespace       string
}

// Searcher embeds query text and runs it against a vector index.
// Results are returned exactly as the index ranked them.
type Searcher struct {
	embedder Embedder
	vectors  VectorSearcher
	opts     QueryOptions
	filter   *vecna.Filter
	timeout  time.Duration
}

// NewSearcher creates a Searcher issuing queries with opts.
func NewSearcher(embedder Embedder, vectors VectorSearcher, opts QueryOptions, so ...SearchOption) *Searcher {
	s := &Searcher{
		embedder: embedder,
		vectors:  vectors,
		opts:     opts,
	}
	for _, opt := range so {
		opt(s)
	}
	return s
}

// Options returns the query parameters.
func (s *Searcher) Options() QueryOptions {
	return s.opts
}

// Query embeds text and returns the top matches from the index.
func (s *Searcher) Query(ctx context.Context, text string) (*QueryResult, error) {
	start := time.Now()

	vector, err := embedText(ctx, s.embedder, s.timeout, "", text)
	if err != nil {
		s.fail(ctx, text, err, start)
		return nil, err
	}

	req := QueryRequest{
		Vector:          vector,
		TopK:            s.opts.TopK,
		IncludeValues:   s.opts.IncludeValues,
		IncludeMetadata: s.opts.IncludeMetadata,
		Namespace:       s.opts.Namespace,
		Filter:          s.filter,
	}

	cctx, cancel := callContext(ctx, s.timeout)
	defer cancel()

	result, err := s.vectors.Query(cctx, req)
	if err != nil {
		s.fail(ctx, text, err, start)
		return nil, err
	}

	capitan.Emit(ctx, QueryCompleted,
		FieldQuery.Field(text),
		FieldNamespace.Field(s.opts.Namespace),
		FieldTopK.Field(s.opts.TopK),
		FieldCount.Field(len(result.Matches)),
		FieldDuration.Field(time.Since(start)),
	)

	return result, nil
}

func (s *Searcher) fail(ctx context.Context, text string, err error, start time.Time) {
	capitan.Emit(ctx, QueryFailed,
		FieldQuery.Field(text),
		FieldNamespace.Field(s.opts.Namespace),
		FieldError.Field(err),
		FieldDuration.Field(time.Since(start)),
	)
}
