package sprout

import "context"

// Pipeline sequences index creation, storage, and a query for one run.
type Pipeline struct {
	lifecycle *Lifecycle
	store     *Store
	searcher  *Searcher
}

// NewPipeline creates a Pipeline from its three stages.
func NewPipeline(lifecycle *Lifecycle, store *Store, searcher *Searcher) *Pipeline {
	return &Pipeline{
		lifecycle: lifecycle,
		store:     store,
		searcher:  searcher,
	}
}

// Run creates the index if absent, stores records, then queries text.
// Each step completes before the next begins; the first error aborts the run.
func (p *Pipeline) Run(ctx context.Context, records []Record, text string) (*QueryResult, error) {
	if err := p.lifecycle.Manage(ctx, ActionCreate); err != nil {
		return nil, err
	}
	if _, err := p.store.StoreAll(ctx, records); err != nil {
		return nil, err
	}
	return p.searcher.Query(ctx, text)
}

// Teardown deletes the index if present. Run never calls it.
func (p *Pipeline) Teardown(ctx context.Context) error {
	return p.lifecycle.Manage(ctx, ActionDelete)
}
