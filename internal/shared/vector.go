// Package shared contains canonical type definitions shared across sprout.
package shared //nolint:revive // internal shared package is intentional

import (
	"fmt"

	"github.com/zoobzio/vecna"
)

// TextField is the record field holding the text to embed.
const TextField = "textToEmbed"

// Record is a descriptive document. TextField holds the text to embed;
// every other field is stored verbatim as metadata.
type Record map[string]any

// Text returns the record's text to embed.
// Returns ErrInvalidInput if the field is missing, not a string, or empty.
func (r Record) Text() (string, error) {
	v, ok := r[TextField]
	if !ok {
		return "", fmt.Errorf("%w: record has no %q field", ErrInvalidInput, TextField)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q must be a string, got %T", ErrInvalidInput, TextField, v)
	}
	if s == "" {
		return "", fmt.Errorf("%w: %q is empty", ErrInvalidInput, TextField)
	}
	return s, nil
}

// Metric defines the similarity function of an index.
type Metric string

const (
	// MetricCosine represents cosine similarity.
	MetricCosine Metric = "cosine"

	// MetricDotProduct represents dot product similarity.
	MetricDotProduct Metric = "dotproduct"

	// MetricEuclidean represents Euclidean distance.
	MetricEuclidean Metric = "euclidean"
)

// Valid reports whether m is a supported metric.
func (m Metric) Valid() bool {
	switch m {
	case MetricCosine, MetricDotProduct, MetricEuclidean:
		return true
	}
	return false
}

// IndexDescriptor identifies a remote vector index and how to provision it.
type IndexDescriptor struct {
	Name               string
	Dimension          int
	Metric             Metric
	Cloud              string
	Region             string
	DeletionProtection bool
}

// StoredVector is a vector with its identifier and metadata.
type StoredVector struct {
	ID       string
	Values   []float32
	Metadata Record
}

// QueryRequest describes a similarity search.
type QueryRequest struct {
	Vector          []float32
	TopK            int
	IncludeValues   bool
	IncludeMetadata bool
	Namespace       string

	// Filter is optional metadata filtering applied by the remote index.
	Filter *vecna.Filter
}

// Match is a single ranked search hit.
type Match struct {
	ID       string
	Score    float32
	Values   []float32
	Metadata Record
}

// QueryResult holds matches in the order returned by the remote index.
type QueryResult struct {
	Namespace string
	Matches   []Match
}
