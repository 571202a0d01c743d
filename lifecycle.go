package sprout

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/zoobzio/capitan"
)

// Action names an index lifecycle operation.
type Action string

// Lifecycle actions.
const (
	ActionCreate Action = "create"
	ActionDelete Action = "delete"
)

const defaultReadyPoll = time.Second

// Lifecycle creates or deletes the configured index according to whether it
// currently exists.
//
// The existence check and the create/delete call are separate remote calls.
// A concurrent run, or anyone else mutating the same index name in between,
// can make the subsequent call fail with ErrConflict or ErrNotFound.
type Lifecycle struct {
	admin        IndexAdmin
	desc         IndexDescriptor
	timeout      time.Duration
	waitReady    bool
	readyTimeout time.Duration
	readyPoll    time.Duration
}

// NewLifecycle creates a Lifecycle managing the index described by desc.
func NewLifecycle(admin IndexAdmin, desc IndexDescriptor, opts ...LifecycleOption) *Lifecycle {
	l := &Lifecycle{
		admin:     admin,
		desc:      desc,
		readyPoll: defaultReadyPoll,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Descriptor returns the managed index descriptor.
func (l *Lifecycle) Descriptor() IndexDescriptor {
	return l.desc
}

// Manage applies action to the managed index.
// Create is a no-op when the index exists; delete is a no-op when it does not.
// Any other action returns ErrInvalidArgument without contacting the service.
func (l *Lifecycle) Manage(ctx context.Context, action Action) error {
	switch action {
	case ActionCreate, ActionDelete:
	default:
		err := fmt.Errorf("%w: index action %q, use %q or %q", ErrInvalidArgument, action, ActionCreate, ActionDelete)
		capitan.Emit(ctx, IndexActionInvalid,
			FieldIndex.Field(l.desc.Name),
			FieldAction.Field(string(action)),
			FieldError.Field(err),
		)
		return err
	}

	exists, err := l.exists(ctx)
	if err != nil {
		l.fail(ctx, action, err)
		return err
	}

	if action == ActionCreate {
		return l.create(ctx, exists)
	}
	return l.delete(ctx, exists)
}

func (l *Lifecycle) exists(ctx context.Context) (bool, error) {
	cctx, cancel := callContext(ctx, l.timeout)
	defer cancel()

	names, err := l.admin.ListIndexNames(cctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(names, l.desc.Name), nil
}

func (l *Lifecycle) create(ctx context.Context, exists bool) error {
	if exists {
		capitan.Emit(ctx, IndexExists, FieldIndex.Field(l.desc.Name))
		return nil
	}

	start := time.Now()
	cctx, cancel := callContext(ctx, l.timeout)
	err := l.admin.CreateIndex(cctx, l.desc)
	cancel()
	if err != nil {
		l.fail(ctx, ActionCreate, err)
		return err
	}

	capitan.Emit(ctx, IndexCreated,
		FieldIndex.Field(l.desc.Name),
		FieldDuration.Field(time.Since(start)),
	)

	if l.waitReady {
		if err := l.awaitReady(ctx); err != nil {
			l.fail(ctx, ActionCreate, err)
			return err
		}
	}
	return nil
}

func (l *Lifecycle) delete(ctx context.Context, exists bool) error {
	if !exists {
		capitan.Emit(ctx, IndexAbsent, FieldIndex.Field(l.desc.Name))
		return nil
	}

	start := time.Now()
	cctx, cancel := callContext(ctx, l.timeout)
	defer cancel()

	if err := l.admin.DeleteIndex(cctx, l.desc.Name); err != nil {
		l.fail(ctx, ActionDelete, err)
		return err
	}

	capitan.Emit(ctx, IndexDeleted,
		FieldIndex.Field(l.desc.Name),
		FieldDuration.Field(time.Since(start)),
	)
	return nil
}

// awaitReady polls the index until it reports ready or the wait expires.
func (l *Lifecycle) awaitReady(ctx context.Context) error {
	start := time.Now()

	wctx, cancel := callContext(ctx, l.readyTimeout)
	defer cancel()

	ticker := time.NewTicker(l.readyPoll)
	defer ticker.Stop()

	for {
		ready, err := l.admin.IndexReady(wctx, l.desc.Name)
		if err != nil {
			return err
		}
		if ready {
			capitan.Emit(ctx, IndexReady,
				FieldIndex.Field(l.desc.Name),
				FieldDuration.Field(time.Since(start)),
			)
			return nil
		}

		select {
		case <-wctx.Done():
			return fmt.Errorf("%w: index %q not ready: %w", ErrRemoteService, l.desc.Name, wctx.Err())
		case <-ticker.C:
		}
	}
}

func (l *Lifecycle) fail(ctx context.Context, action Action, err error) {
	capitan.Emit(ctx, IndexFailed,
		FieldIndex.Field(l.desc.Name),
		FieldAction.Field(string(action)),
		FieldError.Field(err),
	)
}
