package sprout

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/zoobzio/capitan"
	"golang.org/x/sync/errgroup"
)

// StoreMode selects how StoreAll sequences embedding and upsert.
type StoreMode string

const (
	// StoreConcurrent embeds and upserts every record independently.
	// A failure leaves the upserts of sibling records in place.
	StoreConcurrent StoreMode = "concurrent"

	// StoreTwoPhase embeds every record first and upserts only if all
	// embeddings succeed, as a single batch.
	StoreTwoPhase StoreMode = "two_phase"
)

// Valid reports whether m is a supported mode.
func (m StoreMode) Valid() bool {
	return m == StoreConcurrent || m == StoreTwoPhase
}

// VectorID returns the identifier of the record at 0-based position.
func VectorID(prefix string, position int) string {
	return fmt.Sprintf("%s-%d", prefix, position+1)
}

// Store embeds records and upserts them with their fields as metadata.
type Store struct {
	embedder Embedder
	vectors  VectorWriter
	prefix   string
	mode     StoreMode
	timeout  time.Duration
}

// NewStore creates a Store generating IDs from prefix.
func NewStore(embedder Embedder, vectors VectorWriter, prefix string, opts ...StoreOption) *Store {
	s := &Store{
		embedder: embedder,
		vectors:  vectors,
		prefix:   prefix,
		mode:     StoreConcurrent,
	}
	for _, opt := range opts {
		opt(s)
	}
	if !s.mode.Valid() {
		s.mode = StoreConcurrent
	}
	return s
}

// StoreAll embeds each record and upserts it under VectorID(prefix, i).
// Returns the IDs in record order. The first error encountered is returned;
// tasks already in flight are not cancelled and no upsert is rolled back.
func (s *Store) StoreAll(ctx context.Context, records []Record) ([]string, error) {
	start := time.Now()

	ids := make([]string, len(records))
	for i := range records {
		ids[i] = VectorID(s.prefix, i)
	}
	if len(records) == 0 {
		return ids, nil
	}

	var err error
	if s.mode == StoreTwoPhase {
		err = s.storeTwoPhase(ctx, records, ids)
	} else {
		err = s.storeConcurrent(ctx, records, ids)
	}
	if err != nil {
		return nil, err
	}

	capitan.Emit(ctx, StoreCompleted,
		FieldCount.Field(len(records)),
		FieldDuration.Field(time.Since(start)),
	)

	return ids, nil
}

func (s *Store) storeConcurrent(ctx context.Context, records []Record, ids []string) error {
	// Zero-value group: a failing task does not cancel its siblings.
	var g errgroup.Group
	for i, rec := range records {
		g.Go(func() error {
			vec, err := s.build(ctx, ids[i], rec)
			if err != nil {
				return err
			}
			return s.upsert(ctx, []StoredVector{vec})
		})
	}
	return g.Wait()
}

func (s *Store) storeTwoPhase(ctx context.Context, records []Record, ids []string) error {
	vectors := make([]StoredVector, len(records))

	g, gctx := errgroup.WithContext(ctx)
	for i, rec := range records {
		g.Go(func() error {
			vec, err := s.build(gctx, ids[i], rec)
			if err != nil {
				return err
			}
			vectors[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return s.upsert(ctx, vectors)
}

// build embeds one record into a StoredVector carrying the full record as metadata.
func (s *Store) build(ctx context.Context, id string, rec Record) (StoredVector, error) {
	text, err := rec.Text()
	if err != nil {
		capitan.Emit(ctx, EmbedFailed, FieldID.Field(id), FieldError.Field(err))
		return StoredVector{}, err
	}

	values, err := embedText(ctx, s.embedder, s.timeout, id, text)
	if err != nil {
		return StoredVector{}, err
	}

	return StoredVector{
		ID:       id,
		Values:   values,
		Metadata: maps.Clone(rec),
	}, nil
}

func (s *Store) upsert(ctx context.Context, vectors []StoredVector) error {
	start := time.Now()

	cctx, cancel := callContext(ctx, s.timeout)
	defer cancel()

	if err := s.vectors.Upsert(cctx, vectors); err != nil {
		for _, v := range vectors {
			capitan.Emit(ctx, VectorFailed,
				FieldID.Field(v.ID),
				FieldError.Field(err),
				FieldDuration.Field(time.Since(start)),
			)
		}
		return err
	}

	for _, v := range vectors {
		capitan.Emit(ctx, VectorStored,
			FieldID.Field(v.ID),
			FieldDuration.Field(time.Since(start)),
		)
	}
	return nil
}
