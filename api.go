// Package sprout embeds text records with a hosted embedding model, stores the
// vectors in a managed vector index, and queries them by similarity.
// Embedding and similarity search are delegated to providers; sprout only
// sequences the calls.
package sprout

import (
	"context"

	"github.com/zoobzio/sprout/internal/shared"
)

// Semantic errors (re-exported from internal/shared).
var (
	ErrAuthentication  = shared.ErrAuthentication
	ErrInvalidInput    = shared.ErrInvalidInput
	ErrConflict        = shared.ErrConflict
	ErrNotFound        = shared.ErrNotFound
	ErrRemoteService   = shared.ErrRemoteService
	ErrInvalidArgument = shared.ErrInvalidArgument
)

// TextField is the record field holding the text to embed.
const TextField = shared.TextField

// Record is re-exported from internal/shared for the public API.
type Record = shared.Record

// Metric is re-exported from internal/shared for the public API.
type Metric = shared.Metric

// Similarity metric constants.
const (
	MetricCosine     = shared.MetricCosine
	MetricDotProduct = shared.MetricDotProduct
	MetricEuclidean  = shared.MetricEuclidean
)

// IndexDescriptor is re-exported from internal/shared for the public API.
type IndexDescriptor = shared.IndexDescriptor

// StoredVector is re-exported from internal/shared for the public API.
type StoredVector = shared.StoredVector

// QueryRequest is re-exported from internal/shared for the public API.
type QueryRequest = shared.QueryRequest

// Match is re-exported from internal/shared for the public API.
type Match = shared.Match

// QueryResult is re-exported from internal/shared for the public API.
type QueryResult = shared.QueryResult

// Embedder converts text into a fixed-length vector.
// Implementations (openai, bedrock) satisfy this interface.
type Embedder interface {
	// Embed returns the embedding of text.
	// Returns ErrInvalidInput for empty text. Every call reaches the remote
	// model; results are not cached.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Model returns the model identifier used for embedding.
	Model() string
}

// IndexAdmin defines index lifecycle operations on a vector service.
type IndexAdmin interface {
	// ListIndexNames returns the names of indexes visible to the caller.
	ListIndexNames(ctx context.Context) ([]string, error)

	// CreateIndex provisions a new index.
	// Returns ErrConflict if an index with that name already exists.
	CreateIndex(ctx context.Context, desc IndexDescriptor) error

	// DeleteIndex removes an index.
	// Returns ErrNotFound if the index does not exist.
	DeleteIndex(ctx context.Context, name string) error

	// IndexReady reports whether the named index accepts reads and writes.
	IndexReady(ctx context.Context, name string) (bool, error)
}

// VectorWriter stores vectors in an index namespace.
type VectorWriter interface {
	// Upsert inserts or overwrites vectors by ID.
	// Partial failure semantics are whatever the remote service provides.
	Upsert(ctx context.Context, vectors []StoredVector) error
}

// VectorSearcher runs similarity searches against an index namespace.
type VectorSearcher interface {
	// Query runs a similarity search. Ranking and scoring are computed remotely.
	// Returns ErrNotFound if the index does not exist.
	Query(ctx context.Context, req QueryRequest) (*QueryResult, error)
}

// VectorStore defines every operation on one index and namespace.
// Implementations (pinecone) satisfy this interface.
type VectorStore interface {
	IndexAdmin
	VectorWriter
	VectorSearcher
}
