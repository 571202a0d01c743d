// Package bedrock provides a sprout.Embedder backed by Amazon Bedrock Titan
// text embedding models.
package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/smithy-go"
	"github.com/zoobzio/sprout"
	"github.com/zoobzio/sprout/internal/shared"
)

// DefaultModel is the Titan model used when none is configured.
const DefaultModel = "amazon.titan-embed-text-v2:0"

// modelDimensions lists the output sizes each known Titan model can produce.
var modelDimensions = map[string][]int{
	DefaultModel:                 {256, 512, 1024},
	"amazon.titan-embed-text-v1": {1536},
}

// SupportedDimensions returns the output sizes model can produce.
// It returns nil for models it does not know.
func SupportedDimensions(model string) []int {
	return modelDimensions[model]
}

// Invoker is the subset of the Bedrock runtime client used by Embedder.
type Invoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Option configures an Embedder.
type Option func(*Embedder)

// WithModel sets the Bedrock model identifier.
func WithModel(model string) Option {
	return func(e *Embedder) {
		if model != "" {
			e.model = model
		}
	}
}

// WithDimensions requests a specific output size (Titan v2 accepts 256, 512 or 1024).
func WithDimensions(n int) Option {
	return func(e *Embedder) {
		e.dimensions = n
	}
}

// Embedder implements sprout.Embedder for Bedrock.
type Embedder struct {
	client     Invoker
	model      string
	dimensions int
}

// New creates an Embedder using the given runtime client.
func New(client Invoker, opts ...Option) *Embedder {
	e := &Embedder{client: client, model: DefaultModel}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewFromRegion loads the default AWS credential chain for region.
func NewFromRegion(ctx context.Context, region string, opts ...Option) (*Embedder, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("%w: load aws config: %w", sprout.ErrAuthentication, err)
	}
	return New(bedrockruntime.NewFromConfig(cfg), opts...), nil
}

type titanRequest struct {
	InputText  string `json:"inputText"`
	Dimensions int    `json:"dimensions,omitempty"`
}

type titanResponse struct {
	Embedding           []float32 `json:"embedding"`
	InputTextTokenCount int       `json:"inputTextTokenCount"`
}

// Embed invokes the model once for text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty text", sprout.ErrInvalidInput)
	}

	body, err := json.Marshal(titanRequest{InputText: text, Dimensions: e.dimensions})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", sprout.ErrInvalidInput, err)
	}

	out, err := e.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(e.model),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, classify(err)
	}

	var resp titanResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode titan response: %w", sprout.ErrRemoteService, err)
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding response", sprout.ErrRemoteService)
	}
	return resp.Embedding, nil
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

	var status interface{ HTTPStatusCode() int }
	if errors.As(err, &status) && status.HTTPStatusCode() != 0 {
		return fmt.Errorf("%w: %w", shared.ErrorForStatus(status.HTTPStatusCode()), err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %w", errorForCode(apiErr.ErrorCode()), err)
	}

	return fmt.Errorf("%w: %w", sprout.ErrRemoteService, err)
}

func errorForCode(code string) error {
	switch code {
	case "AccessDeniedException", "UnrecognizedClientException", "ExpiredTokenException":
		return sprout.ErrAuthentication
	case "ValidationException":
		return sprout.ErrInvalidInput
	case "ResourceNotFoundException":
		return sprout.ErrNotFound
	case "ConflictException":
		return sprout.ErrConflict
	default:
		return sprout.ErrRemoteService
	}
}

// Ensure Embedder implements sprout.Embedder.
var _ sprout.Embedder = (*Embedder)(nil)
