// Package config loads sprout run configuration from defaults, an optional
// YAML file, a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/zoobzio/sprout"
	"github.com/zoobzio/sprout/bedrock"
	"github.com/zoobzio/sprout/openai"
)

// Embedding providers.
const (
	ProviderOpenAI  = "openai"
	ProviderBedrock = "bedrock"
)

// Log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config represents the complete configuration for a sprout run.
type Config struct {
	Index          IndexConfig       `mapstructure:"index"`
	Embedding      EmbeddingConfig   `mapstructure:"embedding"`
	Query          QueryConfig       `mapstructure:"query"`
	Store          StoreConfig       `mapstructure:"store"`
	RequestTimeout time.Duration     `mapstructure:"request_timeout"`
	LogLevel       string            `mapstructure:"log_level"`
	LogFormat      string            `mapstructure:"log_format"`
	Credentials    CredentialsConfig `mapstructure:"credentials"`
}

// IndexConfig describes the managed vector index.
type IndexConfig struct {
	Name               string        `mapstructure:"name"`
	Namespace          string        `mapstructure:"namespace"`
	Dimension          int           `mapstructure:"dimension"`
	Metric             string        `mapstructure:"metric"`
	Cloud              string        `mapstructure:"cloud"`
	Region             string        `mapstructure:"region"`
	DeletionProtection bool          `mapstructure:"deletion_protection"`
	WaitReady          bool          `mapstructure:"wait_ready"`
	ReadyTimeout       time.Duration `mapstructure:"ready_timeout"`
	ReadyPoll          time.Duration `mapstructure:"ready_poll"`
}

// EmbeddingConfig selects the embedding model.
type EmbeddingConfig struct {
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`
	IDPrefix string `mapstructure:"id_prefix"`
	Region   string `mapstructure:"region"`
}

// QueryConfig is the template applied to every query.
type QueryConfig struct {
	Text            string `mapstructure:"text"`
	TopK            int    `mapstructure:"top_k"`
	IncludeValues   bool   `mapstructure:"include_values"`
	IncludeMetadata bool   `mapstructure:"include_metadata"`
}

// StoreConfig controls how records are written.
type StoreConfig struct {
	Mode string `mapstructure:"mode"`
}

// CredentialsConfig holds secrets read from the environment.
type CredentialsConfig struct {
	OpenAIKey    string `mapstructure:"openai_api_key"`
	PineconeKey  string `mapstructure:"pinecone_api_key"`
	PineconeHost string `mapstructure:"pinecone_host"`

	// PineconeIndexHost is the data plane address, set only for the local emulator.
	PineconeIndexHost string `mapstructure:"pinecone_index_host"`
}

// Option configures Load.
type Option func(*loader)

type loader struct {
	file    string
	envFile string
	paths   []string
}

// WithFile reads configuration from an explicit YAML file.
// Unlike the search path, a missing explicit file is an error.
func WithFile(path string) Option {
	return func(l *loader) {
		l.file = path
	}
}

// WithEnvFile merges path instead of ./.env. An empty path disables the merge.
func WithEnvFile(path string) Option {
	return func(l *loader) {
		l.envFile = path
	}
}

// WithSearchPath replaces the directories searched for sprout.yaml.
func WithSearchPath(paths ...string) Option {
	return func(l *loader) {
		l.paths = paths
	}
}

// Load builds a validated Config.
// Precedence, lowest first: defaults, YAML file, environment.
func Load(opts ...Option) (*Config, error) {
	l := loader{envFile: ".env", paths: []string{".", "./configs"}}
	for _, opt := range opts {
		opt(&l)
	}

	if l.envFile != "" {
		// Existing variables win over .env entries.
		if err := godotenv.Load(l.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	v := viper.New()
	setDefaults(v)
	bindEnvVars(v)

	if l.file != "" {
		v.SetConfigFile(l.file)
	} else {
		v.SetConfigName("sprout")
		v.SetConfigType("yaml")
		for _, p := range l.paths {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if l.file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("index.name", "your-index-name")
	v.SetDefault("index.namespace", "your-namespace")
	v.SetDefault("index.dimension", 1536)
	v.SetDefault("index.metric", string(sprout.MetricCosine))
	v.SetDefault("index.cloud", "aws")
	v.SetDefault("index.region", "us-west-2")
	v.SetDefault("index.deletion_protection", false)
	v.SetDefault("index.wait_ready", false)
	v.SetDefault("index.ready_timeout", "2m")
	v.SetDefault("index.ready_poll", "1s")

	v.SetDefault("embedding.provider", ProviderOpenAI)
	v.SetDefault("embedding.model", openai.DefaultModel)
	v.SetDefault("embedding.id_prefix", "your-embedding-id")
	v.SetDefault("embedding.region", "us-east-1")

	v.SetDefault("query.text", "What is my dog's name?")
	v.SetDefault("query.top_k", 1)
	v.SetDefault("query.include_values", false)
	v.SetDefault("query.include_metadata", true)

	v.SetDefault("store.mode", string(sprout.StoreConcurrent))

	v.SetDefault("request_timeout", "0s")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", FormatText)

	v.SetDefault("credentials.openai_api_key", "")
	v.SetDefault("credentials.pinecone_api_key", "")
	v.SetDefault("credentials.pinecone_host", "")
	v.SetDefault("credentials.pinecone_index_host", "")
}

func bindEnvVars(v *viper.Viper) {
	v.SetEnvPrefix("SPROUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// API keys use the names the hosted services document.
	_ = v.BindEnv("credentials.openai_api_key", "SPROUT_CREDENTIALS_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("credentials.pinecone_api_key", "SPROUT_CREDENTIALS_PINECONE_API_KEY", "PINECONE_API_KEY")
	_ = v.BindEnv("credentials.pinecone_host", "SPROUT_CREDENTIALS_PINECONE_HOST", "PINECONE_HOST")
	_ = v.BindEnv("credentials.pinecone_index_host", "SPROUT_CREDENTIALS_PINECONE_INDEX_HOST", "PINECONE_INDEX_HOST")
}

// Validate checks the configuration for values the run cannot use.
func (c *Config) Validate() error {
	var errs []error

	if c.Index.Name == "" {
		errs = append(errs, errors.New("index.name is required"))
	}
	if c.Index.Dimension < 1 {
		errs = append(errs, fmt.Errorf("index.dimension must be positive, got %d", c.Index.Dimension))
	} else if err := c.checkDimension(); err != nil {
		errs = append(errs, err)
	}
	if !sprout.Metric(c.Index.Metric).Valid() {
		errs = append(errs, fmt.Errorf("index.metric %q is not one of cosine, dotproduct, euclidean", c.Index.Metric))
	}
	if c.Query.TopK < 1 {
		errs = append(errs, fmt.Errorf("query.top_k must be positive, got %d", c.Query.TopK))
	}
	if !sprout.StoreMode(c.Store.Mode).Valid() {
		errs = append(errs, fmt.Errorf("store.mode %q is not one of concurrent, two_phase", c.Store.Mode))
	}
	if c.RequestTimeout < 0 {
		errs = append(errs, errors.New("request_timeout must not be negative"))
	}

	switch c.Embedding.Provider {
	case ProviderOpenAI:
		if c.Credentials.OpenAIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required for the openai provider"))
		}
	case ProviderBedrock:
	default:
		errs = append(errs, fmt.Errorf("embedding.provider %q is not one of openai, bedrock", c.Embedding.Provider))
	}

	if c.Credentials.PineconeKey == "" {
		errs = append(errs, errors.New("PINECONE_API_KEY is required"))
	}

	switch c.LogFormat {
	case FormatText, FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("log_format %q is not one of text, json", c.LogFormat))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: invalid configuration: %w", sprout.ErrInvalidArgument, errors.Join(errs...))
	}
	return nil
}

// EmbeddingModel returns the model the configured provider runs.
// Under the bedrock provider the openai default is replaced by the Titan default.
func (c *Config) EmbeddingModel() string {
	model := c.Embedding.Model
	if c.Embedding.Provider == ProviderBedrock {
		if model == "" || model == openai.DefaultModel {
			return bedrock.DefaultModel
		}
		return model
	}
	if model == "" {
		return openai.DefaultModel
	}
	return model
}

// checkDimension rejects an index dimension the embedding model cannot produce.
// Unknown models are accepted.
func (c *Config) checkDimension() error {
	model := c.EmbeddingModel()
	n := c.Index.Dimension

	switch c.Embedding.Provider {
	case ProviderBedrock:
		if dims := bedrock.SupportedDimensions(model); dims != nil && !slices.Contains(dims, n) {
			return fmt.Errorf("index.dimension %d is not an output size of %s %v", n, model, dims)
		}
	case ProviderOpenAI:
		native, ok := openai.NativeDimensions(model)
		if !ok {
			return nil
		}
		if openai.SupportsDimensions(model) {
			if n > native {
				return fmt.Errorf("index.dimension %d exceeds the %d maximum of %s", n, native, model)
			}
			return nil
		}
		if n != native {
			return fmt.Errorf("index.dimension %d does not match the %d output of %s", n, native, model)
		}
	}
	return nil
}

// Descriptor returns the index the run manages.
func (c *Config) Descriptor() sprout.IndexDescriptor {
	return sprout.IndexDescriptor{
		Name:               c.Index.Name,
		Dimension:          c.Index.Dimension,
		Metric:             sprout.Metric(c.Index.Metric),
		Cloud:              c.Index.Cloud,
		Region:             c.Index.Region,
		DeletionProtection: c.Index.DeletionProtection,
	}
}

// QueryOptions returns the query template.
func (c *Config) QueryOptions() sprout.QueryOptions {
	return sprout.QueryOptions{
		TopK:            c.Query.TopK,
		IncludeValues:   c.Query.IncludeValues,
		IncludeMetadata: c.Query.IncludeMetadata,
		Namespace:       c.Index.Namespace,
	}
}

// LifecycleOptions returns the lifecycle settings as options.
func (c *Config) LifecycleOptions() []sprout.LifecycleOption {
	opts := []sprout.LifecycleOption{sprout.WithLifecycleTimeout(c.RequestTimeout)}
	if c.Index.WaitReady {
		opts = append(opts, sprout.WithReadyWait(c.Index.ReadyTimeout, c.Index.ReadyPoll))
	}
	return opts
}

// StoreOptions returns the store settings as options.
func (c *Config) StoreOptions() []sprout.StoreOption {
	return []sprout.StoreOption{
		sprout.WithMode(sprout.StoreMode(c.Store.Mode)),
		sprout.WithStoreTimeout(c.RequestTimeout),
	}
}

// SearchOptions returns the searcher settings as options.
func (c *Config) SearchOptions() []sprout.SearchOption {
	return []sprout.SearchOption{sprout.WithSearchTimeout(c.RequestTimeout)}
}
