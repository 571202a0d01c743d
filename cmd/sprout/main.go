// Command sprout embeds two sample pet records, stores them in a Pinecone
// index and runs one similarity query against them.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/zoobzio/sprout"
	"github.com/zoobzio/sprout/bedrock"
	"github.com/zoobzio/sprout/config"
	"github.com/zoobzio/sprout/openai"
	"github.com/zoobzio/sprout/pinecone"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// records are the sample documents stored on every run.
var records = []sprout.Record{
	{
		sprout.TextField:      "My dog's name is Steve.",
		"favouriteActivities": []any{"playing fetch", "running in the park"},
		"born":                "July 19, 2023",
	},
	{
		sprout.TextField:      "My cat's name is Sandy.",
		"favouriteActivities": []any{"napping", "chasing laser pointers"},
		"born":                "August 7, 2019",
	},
}

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (default: sprout.yaml in . or ./configs)")
	teardown := flag.Bool("teardown", false, "delete the index after the query")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, *configPath, *teardown)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "sprout: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, teardown bool) error {
	var opts []config.Option
	if configPath != "" {
		opts = append(opts, config.WithFile(configPath))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		return err
	}

	log := newLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	defer log.Close(context.Background())

	embedder, err := newEmbedder(ctx, cfg)
	if err != nil {
		return err
	}

	store, err := newVectorStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	lifecycle := sprout.NewLifecycle(store, cfg.Descriptor(), cfg.LifecycleOptions()...)
	writer := sprout.NewStore(embedder, store, cfg.Embedding.IDPrefix, cfg.StoreOptions()...)
	searcher := sprout.NewSearcher(embedder, store, cfg.QueryOptions(), cfg.SearchOptions()...)
	pipeline := sprout.NewPipeline(lifecycle, writer, searcher)

	result, err := pipeline.Run(ctx, records, cfg.Query.Text)
	if err != nil {
		return err
	}

	// Flush pending log lines so the table follows them.
	log.Drain(ctx)
	if err := printResult(os.Stdout, cfg.Query.Text, result); err != nil {
		return err
	}

	if teardown {
		return pipeline.Teardown(ctx)
	}
	return nil
}

func newEmbedder(ctx context.Context, cfg *config.Config) (sprout.Embedder, error) {
	switch cfg.Embedding.Provider {
	case config.ProviderBedrock:
		return bedrock.NewFromRegion(ctx, cfg.Embedding.Region, bedrockOptions(cfg)...)
	default:
		return openai.New(cfg.Credentials.OpenAIKey, openaiOptions(cfg)...)
	}
}

// bedrockOptions requests the index dimension from models with a choice of output size.
func bedrockOptions(cfg *config.Config) []bedrock.Option {
	model := cfg.EmbeddingModel()
	opts := []bedrock.Option{bedrock.WithModel(model)}
	if len(bedrock.SupportedDimensions(model)) > 1 {
		opts = append(opts, bedrock.WithDimensions(cfg.Index.Dimension))
	}
	return opts
}

// openaiOptions requests the index dimension from models that accept shortened output.
func openaiOptions(cfg *config.Config) []openai.Option {
	model := cfg.EmbeddingModel()
	opts := []openai.Option{openai.WithModel(model)}
	if openai.SupportsDimensions(model) {
		opts = append(opts, openai.WithDimensions(cfg.Index.Dimension))
	}
	return opts
}

func newVectorStore(cfg *config.Config) (*pinecone.Provider, error) {
	pcfg := pinecone.Config{
		Index:     cfg.Index.Name,
		Namespace: cfg.Index.Namespace,
		IndexHost: cfg.Credentials.PineconeIndexHost,
	}

	// A custom control plane host means the local emulator, which serves plaintext gRPC.
	if cfg.Credentials.PineconeHost != "" {
		pcfg.DialOptions = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}

	return pinecone.NewFromAPIKey(cfg.Credentials.PineconeKey, cfg.Credentials.PineconeHost, pcfg)
}
