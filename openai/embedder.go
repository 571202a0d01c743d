// Package openai provides a sprout.Embedder backed by the OpenAI embeddings API.
package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"github.com/zoobzio/sprout"
	"github.com/zoobzio/sprout/internal/shared"
)

// DefaultModel is the embedding model used when none is configured.
const DefaultModel = string(openai.AdaEmbeddingV2)

// nativeDimensions is the full output size of each known model.
var nativeDimensions = map[string]int{
	string(openai.AdaEmbeddingV2):  1536,
	string(openai.SmallEmbedding3): 1536,
	string(openai.LargeEmbedding3): 3072,
}

// NativeDimensions returns the full output size of model and whether the model is known.
func NativeDimensions(model string) (int, bool) {
	n, ok := nativeDimensions[model]
	return n, ok
}

// SupportsDimensions reports whether model accepts a shortened output size.
func SupportsDimensions(model string) bool {
	return model == string(openai.SmallEmbedding3) || model == string(openai.LargeEmbedding3)
}

// Option configures an Embedder.
type Option func(*settings)

type settings struct {
	model      string
	baseURL    string
	dimensions int
}

// WithModel sets the embedding model identifier.
func WithModel(model string) Option {
	return func(s *settings) {
		if model != "" {
			s.model = model
		}
	}
}

// WithBaseURL points the client at an alternative API endpoint.
func WithBaseURL(url string) Option {
	return func(s *settings) {
		s.baseURL = url
	}
}

// WithDimensions requests shortened embeddings from models that support it.
func WithDimensions(n int) Option {
	return func(s *settings) {
		s.dimensions = n
	}
}

// Embedder implements sprout.Embedder for OpenAI.
type Embedder struct {
	client     *openai.Client
	model      string
	dimensions int
}

// New creates an Embedder authenticated with apiKey.
func New(apiKey string, opts ...Option) (*Embedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: openai api key is required", sprout.ErrAuthentication)
	}

	s := settings{model: DefaultModel}
	for _, opt := range opts {
		opt(&s)
	}

	cfg := openai.DefaultConfig(apiKey)
	if s.baseURL != "" {
		cfg.BaseURL = s.baseURL
	}

	return &Embedder{
		client:     openai.NewClientWithConfig(cfg),
		model:      s.model,
		dimensions: s.dimensions,
	}, nil
}

// Embed requests the embedding of text. Every call reaches the API.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty text", sprout.ErrInvalidInput)
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      openai.EmbeddingModel(e.model),
		Dimensions: e.dimensions,
	})
	if err != nil {
		return nil, classify(err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding response", sprout.ErrRemoteService)
	}
	return resp.Data[0].Embedding, nil
}

// Model returns the configured model identifier.
func (e *Embedder) Model() string {
	return e.model
}

// Dimensions returns the requested output size, or 0 for the model default.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", sprout.ErrRemoteService, err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return fmt.Errorf("%w: %w", shared.ErrorForStatus(apiErr.HTTPStatusCode), err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return fmt.Errorf("%w: %w", shared.ErrorForStatus(reqErr.HTTPStatusCode), err)
	}

	return fmt.Errorf("%w: %w", sprout.ErrRemoteService, err)
}

// Ensure Embedder implements sprout.Embedder.
var _ sprout.Embedder = (*Embedder)(nil)
