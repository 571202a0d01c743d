package main

import (
	"context"
	"testing"

	"github.com/zoobzio/sprout/bedrock"
	"github.com/zoobzio/sprout/config"
	"github.com/zoobzio/sprout/openai"
)

func embedderConfig(provider, model string, dimension int) *config.Config {
	cfg := &config.Config{}
	cfg.Embedding.Provider = provider
	cfg.Embedding.Model = model
	cfg.Index.Dimension = dimension
	cfg.Credentials.OpenAIKey = "sk-test"
	return cfg
}

func TestBedrockOptions_Dimensions(t *testing.T) {
	tests := []struct {
		name      string
		model     string
		dimension int
		wantModel string
		wantDims  int
	}{
		{"default model swapped", openai.DefaultModel, 1024, bedrock.DefaultModel, 1024},
		{"titan v2 shortened", bedrock.DefaultModel, 256, bedrock.DefaultModel, 256},
		{"titan v1 fixed size", "amazon.titan-embed-text-v1", 1536, "amazon.titan-embed-text-v1", 0},
		{"unknown model", "cohere.embed-english-v3", 1024, "cohere.embed-english-v3", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := bedrock.New(nil, bedrockOptions(embedderConfig(config.ProviderBedrock, tt.model, tt.dimension))...)
			if e.Model() != tt.wantModel {
				t.Errorf("expected model %q, got %q", tt.wantModel, e.Model())
			}
			if e.Dimensions() != tt.wantDims {
				t.Errorf("expected dimensions %d, got %d", tt.wantDims, e.Dimensions())
			}
		})
	}
}

func TestOpenAIOptions_Dimensions(t *testing.T) {
	tests := []struct {
		name      string
		model     string
		dimension int
		wantDims  int
	}{
		{"ada fixed size", "text-embedding-ada-002", 1536, 0},
		{"small shortened", "text-embedding-3-small", 512, 512},
		{"large native", "text-embedding-3-large", 3072, 3072},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := openai.New("sk-test", openaiOptions(embedderConfig(config.ProviderOpenAI, tt.model, tt.dimension))...)
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			if e.Model() != tt.model {
				t.Errorf("expected model %q, got %q", tt.model, e.Model())
			}
			if e.Dimensions() != tt.wantDims {
				t.Errorf("expected dimensions %d, got %d", tt.wantDims, e.Dimensions())
			}
		})
	}
}

func TestNewEmbedder_OpenAI(t *testing.T) {
	e, err := newEmbedder(context.Background(), embedderConfig(config.ProviderOpenAI, "text-embedding-3-small", 768))
	if err != nil {
		t.Fatalf("newEmbedder failed: %v", err)
	}
	oe, ok := e.(*openai.Embedder)
	if !ok {
		t.Fatalf("expected *openai.Embedder, got %T", e)
	}
	if oe.Dimensions() != 768 {
		t.Errorf("expected dimensions 768, got %d", oe.Dimensions())
	}
}
