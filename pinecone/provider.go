// Package pinecone provides a sprout VectorStore implementation for Pinecone.
package pinecone

import (
	"context"
	"fmt"
	"sync"

	"github.com/pinecone-io/go-pinecone/v2/pinecone"
	"github.com/zoobzio/sprout"
	"google.golang.org/grpc"
)

// Config holds configuration for the Pinecone provider.
type Config struct {
	// Index is the index name vector operations target.
	Index string

	// Namespace is the default namespace for vector operations.
	// A QueryRequest with a non-empty Namespace overrides it.
	Namespace string

	// IndexHost skips the DescribeIndex host lookup when set.
	// Useful for the local emulator, whose data plane is port-mapped.
	IndexHost string

	// DialOptions are passed to every index connection.
	DialOptions []grpc.DialOption
}

// controlPlane is the subset of *pinecone.Client used for index management.
type controlPlane interface {
	ListIndexes(ctx context.Context) ([]*pinecone.Index, error)
	CreateServerlessIndex(ctx context.Context, in *pinecone.CreateServerlessIndexRequest) (*pinecone.Index, error)
	DeleteIndex(ctx context.Context, idxName string) error
	DescribeIndex(ctx context.Context, idxName string) (*pinecone.Index, error)
}

// dataPlane is the subset of *pinecone.IndexConnection used for vectors.
type dataPlane interface {
	UpsertVectors(ctx context.Context, in []*pinecone.Vector) (uint32, error)
	QueryByVectorValues(ctx context.Context, in *pinecone.QueryByVectorValuesRequest) (*pinecone.QueryVectorsResponse, error)
	Close() error
}

// connectFunc opens a data plane connection to host scoped to namespace.
type connectFunc func(host, namespace string) (dataPlane, error)

// Provider implements sprout.VectorStore for Pinecone.
type Provider struct {
	control controlPlane
	connect connectFunc
	config  Config

	mu    sync.Mutex
	host  string
	conns map[string]dataPlane
}

// New creates a Pinecone provider with the given client and config.
func New(client *pinecone.Client, config Config) *Provider {
	connect := func(host, namespace string) (dataPlane, error) {
		return client.Index(pinecone.NewIndexConnParams{
			Host:      host,
			Namespace: namespace,
		}, config.DialOptions...)
	}
	return newProvider(client, connect, config)
}

// NewFromAPIKey creates a Pinecone client and wraps it in a provider.
// host overrides the control plane URL and may be empty.
func NewFromAPIKey(apiKey, host string, config Config) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: pinecone API key is required", sprout.ErrAuthentication)
	}
	client, err := pinecone.NewClient(pinecone.NewClientParams{
		ApiKey: apiKey,
		Host:   host,
	})
	if err != nil {
		return nil, classify(err)
	}
	return New(client, config), nil
}

func newProvider(control controlPlane, connect connectFunc, config Config) *Provider {
	return &Provider{
		control: control,
		connect: connect,
		config:  config,
		host:    config.IndexHost,
		conns:   make(map[string]dataPlane),
	}
}

// ListIndexNames returns the names of all indexes in the project.
func (p *Provider) ListIndexNames(ctx context.Context) ([]string, error) {
	indexes, err := p.control.ListIndexes(ctx)
	if err != nil {
		return nil, classify(err)
	}
	names := make([]string, 0, len(indexes))
	for _, idx := range indexes {
		if idx != nil {
			names = append(names, idx.Name)
		}
	}
	return names, nil
}

// CreateIndex provisions a serverless index.
// Returns ErrConflict if the name is taken.
func (p *Provider) CreateIndex(ctx context.Context, desc sprout.IndexDescriptor) error {
	if !desc.Metric.Valid() {
		return fmt.Errorf("%w: metric %q", sprout.ErrInvalidArgument, desc.Metric)
	}

	req := &pinecone.CreateServerlessIndexRequest{
		Name:      desc.Name,
		Dimension: int32(desc.Dimension), //nolint:gosec // dimension is validated positive and small
		Metric:    pinecone.IndexMetric(desc.Metric),
		Cloud:     pinecone.Cloud(desc.Cloud),
		Region:    desc.Region,
	}
	if desc.DeletionProtection {
		req.DeletionProtection = pinecone.DeletionProtectionEnabled
	}

	_, err := p.control.CreateServerlessIndex(ctx, req)
	return classify(err)
}

// DeleteIndex removes an index and drops any cached connections to it.
// Returns ErrNotFound if the index does not exist.
func (p *Provider) DeleteIndex(ctx context.Context, name string) error {
	if err := p.control.DeleteIndex(ctx, name); err != nil {
		return classify(err)
	}
	if name == p.config.Index {
		p.reset()
	}
	return nil
}

// IndexReady reports whether the index has finished provisioning.
func (p *Provider) IndexReady(ctx context.Context, name string) (bool, error) {
	idx, err := p.control.DescribeIndex(ctx, name)
	if err != nil {
		return false, classify(err)
	}
	return idx != nil && idx.Status != nil && idx.Status.Ready, nil
}

// Upsert stores or replaces vectors in the default namespace.
func (p *Provider) Upsert(ctx context.Context, vectors []sprout.StoredVector) error {
	if len(vectors) == 0 {
		return nil
	}

	pcVectors := make([]*pinecone.Vector, len(vectors))
	for i, v := range vectors {
		meta, err := toMetadata(v.Metadata)
		if err != nil {
			return err
		}
		pcVectors[i] = &pinecone.Vector{
			Id:       v.ID,
			Values:   v.Values,
			Metadata: meta,
		}
	}

	conn, err := p.conn(ctx, p.config.Namespace)
	if err != nil {
		return err
	}
	_, err = conn.UpsertVectors(ctx, pcVectors)
	return classify(err)
}

// Query performs similarity search and returns matches in Pinecone's order.
func (p *Provider) Query(ctx context.Context, req sprout.QueryRequest) (*sprout.QueryResult, error) {
	if req.TopK < 1 {
		return nil, fmt.Errorf("%w: topK must be positive, got %d", sprout.ErrInvalidArgument, req.TopK)
	}

	pcReq := &pinecone.QueryByVectorValuesRequest{
		Vector:          req.Vector,
		TopK:            uint32(req.TopK), //nolint:gosec // checked positive above
		IncludeValues:   req.IncludeValues,
		IncludeMetadata: req.IncludeMetadata,
	}
	if req.Filter != nil {
		filter, err := translateFilter(req.Filter)
		if err != nil {
			return nil, err
		}
		pcReq.MetadataFilter = filter
	}

	namespace := req.Namespace
	if namespace == "" {
		namespace = p.config.Namespace
	}

	conn, err := p.conn(ctx, namespace)
	if err != nil {
		return nil, err
	}
	resp, err := conn.QueryByVectorValues(ctx, pcReq)
	if err != nil {
		return nil, classify(err)
	}

	result := &sprout.QueryResult{
		Namespace: namespace,
		Matches:   make([]sprout.Match, 0, len(resp.Matches)),
	}
	for _, m := range resp.Matches {
		if m == nil || m.Vector == nil {
			continue
		}
		result.Matches = append(result.Matches, sprout.Match{
			ID:       m.Vector.Id,
			Score:    m.Score,
			Values:   m.Vector.Values,
			Metadata: fromMetadata(m.Vector.Metadata),
		})
	}
	return result, nil
}

// Close releases every cached index connection.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var first error
	for ns, c := range p.conns {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
		delete(p.conns, ns)
	}
	return first
}

// conn returns the cached connection for namespace, opening it on first use.
// The index host is resolved once via DescribeIndex.
func (p *Provider) conn(ctx context.Context, namespace string) (dataPlane, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.conns[namespace]; ok {
		return c, nil
	}

	if p.host == "" {
		idx, err := p.control.DescribeIndex(ctx, p.config.Index)
		if err != nil {
			return nil, classify(err)
		}
		if idx == nil || idx.Host == "" {
			return nil, fmt.Errorf("%w: index %q has no host", sprout.ErrRemoteService, p.config.Index)
		}
		p.host = idx.Host
	}

	c, err := p.connect(p.host, namespace)
	if err != nil {
		return nil, classify(err)
	}
	p.conns[namespace] = c
	return c, nil
}

// reset closes cached connections and forgets the resolved host.
func (p *Provider) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for ns, c := range p.conns {
		_ = c.Close()
		delete(p.conns, ns)
	}
	if p.config.IndexHost == "" {
		p.host = ""
	}
}

// Ensure Provider implements sprout.VectorStore.
var _ sprout.VectorStore = (*Provider)(nil)
