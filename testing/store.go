package testing

import (
	"context"
	"fmt"
	"maps"
	"math"
	"slices"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/zoobzio/sprout"
)

// MockVectorStore is an in-memory sprout.VectorStore for testing.
// It scopes vector operations to one index and namespace like the real
// providers, computes similarity locally, and counts every remote-style call.
type MockVectorStore struct {
	index     string
	namespace string

	indexes map[string]sprout.IndexDescriptor
	vectors map[string]map[string]sprout.StoredVector // namespace -> id -> vector
	mu      sync.RWMutex

	// NotReadyPolls is how many IndexReady calls report false after a create.
	NotReadyPolls int
	pendingReady  int

	ListErr   error
	CreateErr error
	DeleteErr error
	UpsertErr error
	QueryErr  error

	// UpsertErrFor fails Upsert for batches containing the given ID.
	UpsertErrFor map[string]error

	listCalls   atomic.Int64
	createCalls atomic.Int64
	deleteCalls atomic.Int64
	readyCalls  atomic.Int64
	upsertCalls atomic.Int64
	queryCalls  atomic.Int64
}

// NewMockVectorStore creates a store whose vector operations target index and namespace.
func NewMockVectorStore(index, namespace string) *MockVectorStore {
	return &MockVectorStore{
		index:        index,
		namespace:    namespace,
		indexes:      make(map[string]sprout.IndexDescriptor),
		vectors:      make(map[string]map[string]sprout.StoredVector),
		UpsertErrFor: make(map[string]error),
	}
}

// AddIndex registers an existing index without counting a create call.
func (m *MockVectorStore) AddIndex(desc sprout.IndexDescriptor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.indexes[desc.Name] = desc
}

// ListIndexNames returns registered index names.
func (m *MockVectorStore) ListIndexNames(_ context.Context) ([]string, error) {
	m.listCalls.Add(1)
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := slices.Collect(maps.Keys(m.indexes))
	sort.Strings(names)
	return names, nil
}

// CreateIndex registers desc. Returns ErrConflict if the name exists.
func (m *MockVectorStore) CreateIndex(_ context.Context, desc sprout.IndexDescriptor) error {
	m.createCalls.Add(1)
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.indexes[desc.Name]; ok {
		return fmt.Errorf("%w: index %q exists", sprout.ErrConflict, desc.Name)
	}
	m.indexes[desc.Name] = desc
	m.pendingReady = m.NotReadyPolls
	return nil
}

// DeleteIndex removes an index and its vectors. Returns ErrNotFound if absent.
func (m *MockVectorStore) DeleteIndex(_ context.Context, name string) error {
	m.deleteCalls.Add(1)
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.indexes[name]; !ok {
		return fmt.Errorf("%w: index %q", sprout.ErrNotFound, name)
	}
	delete(m.indexes, name)
	if name == m.index {
		m.vectors = make(map[string]map[string]sprout.StoredVector)
	}
	return nil
}

// IndexReady reports false for the first NotReadyPolls calls after a create.
func (m *MockVectorStore) IndexReady(_ context.Context, name string) (bool, error) {
	m.readyCalls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.indexes[name]; !ok {
		return false, fmt.Errorf("%w: index %q", sprout.ErrNotFound, name)
	}
	if m.pendingReady > 0 {
		m.pendingReady--
		return false, nil
	}
	return true, nil
}

// Upsert stores copies of vectors in the default namespace.
// A vector whose length differs from the index dimension fails with an error
// matching both ErrNotFound and ErrInvalidInput, like the Pinecone provider.
func (m *MockVectorStore) Upsert(ctx context.Context, vectors []sprout.StoredVector) error {
	m.upsertCalls.Add(1)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", sprout.ErrRemoteService, err)
	}
	if m.UpsertErr != nil {
		return m.UpsertErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, v := range vectors {
		if err, ok := m.UpsertErrFor[v.ID]; ok {
			return err
		}
	}

	desc, ok := m.indexes[m.index]
	if !ok {
		return fmt.Errorf("%w: index %q", sprout.ErrNotFound, m.index)
	}
	for _, v := range vectors {
		if desc.Dimension > 0 && len(v.Values) != desc.Dimension {
			return fmt.Errorf("%w: %w: vector %q has dimension %d, index expects %d", sprout.ErrNotFound, sprout.ErrInvalidInput, v.ID, len(v.Values), desc.Dimension)
		}
	}

	ns, ok := m.vectors[m.namespace]
	if !ok {
		ns = make(map[string]sprout.StoredVector)
		m.vectors[m.namespace] = ns
	}
	for _, v := range vectors {
		ns[v.ID] = sprout.StoredVector{
			ID:       v.ID,
			Values:   slices.Clone(v.Values),
			Metadata: maps.Clone(v.Metadata),
		}
	}
	return nil
}

// Query ranks stored vectors by the index metric and returns the top K.
func (m *MockVectorStore) Query(_ context.Context, req sprout.QueryRequest) (*sprout.QueryResult, error) {
	m.queryCalls.Add(1)
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	if req.TopK < 1 {
		return nil, fmt.Errorf("%w: topK must be positive", sprout.ErrInvalidArgument)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	desc, ok := m.indexes[m.index]
	if !ok {
		return nil, fmt.Errorf("%w: index %q", sprout.ErrNotFound, m.index)
	}

	namespace := req.Namespace
	if namespace == "" {
		namespace = m.namespace
	}

	matches := make([]sprout.Match, 0, len(m.vectors[namespace]))
	for _, v := range m.vectors[namespace] {
		match := sprout.Match{ID: v.ID, Score: score(desc.Metric, req.Vector, v.Values)}
		if req.IncludeValues {
			match.Values = slices.Clone(v.Values)
		}
		if req.IncludeMetadata {
			match.Metadata = maps.Clone(v.Metadata)
		}
		matches = append(matches, match)
	}

	ascending := desc.Metric == sprout.MetricEuclidean
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score == matches[j].Score {
			return matches[i].ID < matches[j].ID
		}
		if ascending {
			return matches[i].Score < matches[j].Score
		}
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > req.TopK {
		matches = matches[:req.TopK]
	}

	return &sprout.QueryResult{Namespace: namespace, Matches: matches}, nil
}

// Vector returns a stored vector from the default namespace.
func (m *MockVectorStore) Vector(id string) (sprout.StoredVector, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vectors[m.namespace][id]
	return v, ok
}

// Len returns the number of vectors in the default namespace.
func (m *MockVectorStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.vectors[m.namespace])
}

// CallCounts reports how many times each operation was invoked.
type CallCounts struct {
	List   int64
	Create int64
	Delete int64
	Ready  int64
	Upsert int64
	Query  int64
}

// Total returns the sum of all calls.
func (c CallCounts) Total() int64 {
	return c.List + c.Create + c.Delete + c.Ready + c.Upsert + c.Query
}

// Calls returns the current call counts.
func (m *MockVectorStore) Calls() CallCounts {
	return CallCounts{
		List:   m.listCalls.Load(),
		Create: m.createCalls.Load(),
		Delete: m.deleteCalls.Load(),
		Ready:  m.readyCalls.Load(),
		Upsert: m.upsertCalls.Load(),
		Query:  m.queryCalls.Load(),
	}
}

func score(metric sprout.Metric, a, b []float32) float32 {
	n := min(len(a), len(b))
	switch metric {
	case sprout.MetricEuclidean:
		var sum float64
		for i := 0; i < n; i++ {
			d := float64(a[i]) - float64(b[i])
			sum += d * d
		}
		return float32(sum)
	case sprout.MetricDotProduct:
		var dot float64
		for i := 0; i < n; i++ {
			dot += float64(a[i]) * float64(b[i])
		}
		return float32(dot)
	default:
		var dot, na, nb float64
		for i := 0; i < n; i++ {
			dot += float64(a[i]) * float64(b[i])
			na += float64(a[i]) * float64(a[i])
			nb += float64(b[i]) * float64(b[i])
		}
		if na == 0 || nb == 0 {
			return 0
		}
		return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
	}
}

// Ensure MockVectorStore implements sprout.VectorStore.
var _ sprout.VectorStore = (*MockVectorStore)(nil)
