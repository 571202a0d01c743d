package testing

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"unicode"

	"github.com/zoobzio/sprout"
)

// MockEmbedder is a deterministic bag-of-words embedder for testing.
// Each distinct lowercase token owns one dimension, so texts sharing more
// words score higher under cosine similarity and identical texts score 1.
type MockEmbedder struct {
	dimension int
	vocab     map[string]int
	calls     []string
	errs      map[string]error
	mu        sync.Mutex
}

// NewMockEmbedder creates an embedder producing vectors of the given dimension.
func NewMockEmbedder(dimension int) *MockEmbedder {
	return &MockEmbedder{
		dimension: dimension,
		vocab:     make(map[string]int),
		errs:      make(map[string]error),
	}
}

// FailOn makes Embed return err whenever it is called with text.
func (m *MockEmbedder) FailOn(text string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[text] = err
}

// Embed returns the normalised token-count vector of text.
func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", sprout.ErrRemoteService, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, text)
	if err, ok := m.errs[text]; ok {
		return nil, err
	}
	if text == "" {
		return nil, fmt.Errorf("%w: empty text", sprout.ErrInvalidInput)
	}

	vector := make([]float32, m.dimension)
	for _, tok := range tokenize(text) {
		pos, ok := m.vocab[tok]
		if !ok {
			pos = len(m.vocab) % m.dimension
			m.vocab[tok] = pos
		}
		vector[pos]++
	}

	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vector {
			vector[i] *= scale
		}
	}
	return vector, nil
}

// Model returns the mock model identifier.
func (m *MockEmbedder) Model() string {
	return "mock-bag-of-words"
}

// Calls returns a copy of every text passed to Embed, in call order.
func (m *MockEmbedder) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

// Ensure MockEmbedder implements sprout.Embedder.
var _ sprout.Embedder = (*MockEmbedder)(nil)
