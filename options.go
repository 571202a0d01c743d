package sprout

import (
	"context"
	"time"

	"github.com/zoobzio/vecna"
)

// LifecycleOption configures a Lifecycle.
type LifecycleOption func(*Lifecycle)

// WithReadyWait makes create block until the new index reports ready.
// A timeout of 0 waits until ctx is done; poll defaults to one second.
func WithReadyWait(timeout, poll time.Duration) LifecycleOption {
	return func(l *Lifecycle) {
		l.waitReady = true
		l.readyTimeout = timeout
		if poll > 0 {
			l.readyPoll = poll
		}
	}
}

// WithLifecycleTimeout bounds each remote index call.
// Zero leaves calls bounded only by ctx and the provider's defaults.
func WithLifecycleTimeout(d time.Duration) LifecycleOption {
	return func(l *Lifecycle) {
		l.timeout = d
	}
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithMode sets how StoreAll sequences embedding and upsert.
// If not specified, StoreConcurrent is used.
func WithMode(m StoreMode) StoreOption {
	return func(s *Store) {
		s.mode = m
	}
}

// WithStoreTimeout bounds each embedding and upsert call.
func WithStoreTimeout(d time.Duration) StoreOption {
	return func(s *Store) {
		s.timeout = d
	}
}

// SearchOption configures a Searcher.
type SearchOption func(*Searcher)

// WithFilter restricts queries to vectors whose metadata matches f.
// The filter is evaluated by the remote index.
func WithFilter(f *vecna.Filter) SearchOption {
	return func(s *Searcher) {
		s.filter = f
	}
}

// WithSearchTimeout bounds the embedding call and the query call.
func WithSearchTimeout(d time.Duration) SearchOption {
	return func(s *Searcher) {
		s.timeout = d
	}
}

// callContext derives a per-call context. A non-positive timeout returns ctx unchanged.
func callContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
