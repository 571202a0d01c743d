package sprout_test

import (
	"errors"
	"reflect"
	"sort"
	"testing"

	"github.com/zoobzio/sprout"
)

func TestStore_StoreAll(t *testing.T) {
	h := newHarness(t).withIndex()
	store := sprout.NewStore(h.embedder, h.store, testPrefix)
	records := petRecords()

	ids, err := store.StoreAll(h.ctx, records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"pet-1", "pet-2"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}

	for i, id := range ids {
		v, ok := h.store.Vector(id)
		if !ok {
			t.Fatalf("vector %s not stored", id)
		}
		if !reflect.DeepEqual(v.Metadata, records[i]) {
			t.Errorf("%s metadata = %v, want %v", id, v.Metadata, records[i])
		}
		if len(v.Values) != testDimension {
			t.Errorf("%s has %d values, want %d", id, len(v.Values), testDimension)
		}
	}

	// Concurrent mode upserts one vector per record.
	if got := h.store.Calls().Upsert; got != 2 {
		t.Errorf("expected 2 upsert calls, got %d", got)
	}
	if got := len(h.embedder.Calls()); got != 2 {
		t.Errorf("expected 2 embed calls, got %d", got)
	}

	h.events.Drain(h.ctx)
	stored := h.events.IDs(sprout.VectorStored)
	sort.Strings(stored)
	if !reflect.DeepEqual(stored, want) {
		t.Errorf("VectorStored ids = %v, want %v", stored, want)
	}
	if n := len(h.signals(sprout.StoreCompleted)); n != 1 {
		t.Errorf("expected 1 StoreCompleted event, got %d", n)
	}
}

func TestStore_DoesNotMutateRecords(t *testing.T) {
	h := newHarness(t).withIndex()
	store := sprout.NewStore(h.embedder, h.store, testPrefix)
	records := petRecords()

	if _, err := store.StoreAll(h.ctx, records); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(records, petRecords()) {
		t.Error("records were modified")
	}
}

func TestStore_RerunOverwrites(t *testing.T) {
	h := newHarness(t).withIndex()
	store := sprout.NewStore(h.embedder, h.store, testPrefix)

	first, err := store.StoreAll(h.ctx, petRecords())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := store.StoreAll(h.ctx, petRecords())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("ids differ between runs: %v vs %v", first, second)
	}
	if got := h.store.Len(); got != 2 {
		t.Errorf("expected 2 vectors after rerun, got %d", got)
	}
}

func TestStore_Empty(t *testing.T) {
	h := newHarness(t).withIndex()
	store := sprout.NewStore(h.embedder, h.store, testPrefix)

	ids, err := store.StoreAll(h.ctx, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected no ids, got %v", ids)
	}
	if total := h.store.Calls().Total(); total != 0 {
		t.Errorf("expected zero store calls, got %d", total)
	}
	if got := len(h.embedder.Calls()); got != 0 {
		t.Errorf("expected zero embed calls, got %d", got)
	}
}

func TestStore_EmptyText(t *testing.T) {
	h := newHarness(t).withIndex()
	store := sprout.NewStore(h.embedder, h.store, testPrefix)

	records := []sprout.Record{{sprout.TextField: "", "born": "today"}}
	_, err := store.StoreAll(h.ctx, records)
	if !errors.Is(err, sprout.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if got := len(h.embedder.Calls()); got != 0 {
		t.Errorf("expected no embed call for empty text, got %d", got)
	}
	if got := h.store.Calls().Upsert; got != 0 {
		t.Errorf("expected no upsert, got %d", got)
	}
	if n := len(h.signals(sprout.EmbedFailed)); n != 1 {
		t.Errorf("expected 1 EmbedFailed event, got %d", n)
	}
}

func TestStore_ConcurrentSiblingsComplete(t *testing.T) {
	h := newHarness(t).withIndex()
	h.embedder.FailOn("My cat's name is Sandy.", sprout.ErrRemoteService)
	store := sprout.NewStore(h.embedder, h.store, testPrefix)

	_, err := store.StoreAll(h.ctx, petRecords())
	if !errors.Is(err, sprout.ErrRemoteService) {
		t.Fatalf("expected ErrRemoteService, got %v", err)
	}

	// The failing record does not cancel the other one.
	if _, ok := h.store.Vector("pet-1"); !ok {
		t.Error("expected pet-1 to be stored despite sibling failure")
	}
	if _, ok := h.store.Vector("pet-2"); ok {
		t.Error("expected pet-2 not to be stored")
	}
	if n := len(h.signals(sprout.StoreCompleted)); n != 0 {
		t.Errorf("expected no StoreCompleted event, got %d", n)
	}
}

func TestStore_UpsertError(t *testing.T) {
	h := newHarness(t).withIndex()
	h.store.UpsertErrFor["pet-2"] = sprout.ErrInvalidInput
	store := sprout.NewStore(h.embedder, h.store, testPrefix)

	_, err := store.StoreAll(h.ctx, petRecords())
	if !errors.Is(err, sprout.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	h.events.Drain(h.ctx)
	if ids := h.events.IDs(sprout.VectorFailed); !reflect.DeepEqual(ids, []string{"pet-2"}) {
		t.Errorf("VectorFailed ids = %v, want [pet-2]", ids)
	}
}

func TestStore_MissingIndex(t *testing.T) {
	h := newHarness(t)
	store := sprout.NewStore(h.embedder, h.store, testPrefix)

	_, err := store.StoreAll(h.ctx, petRecords())
	if !errors.Is(err, sprout.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_DimensionMismatch(t *testing.T) {
	h := newHarness(t)
	desc := descriptor()
	desc.Dimension = testDimension * 2
	h.store.AddIndex(desc)
	store := sprout.NewStore(h.embedder, h.store, testPrefix)

	_, err := store.StoreAll(h.ctx, petRecords())
	if !errors.Is(err, sprout.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput from the index, got %v", err)
	}
}

func TestStore_TwoPhase(t *testing.T) {
	h := newHarness(t).withIndex()
	store := sprout.NewStore(h.embedder, h.store, testPrefix, sprout.WithMode(sprout.StoreTwoPhase))

	ids, err := store.StoreAll(h.ctx, petRecords())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %v", ids)
	}
	if got := h.store.Calls().Upsert; got != 1 {
		t.Errorf("expected a single batched upsert, got %d", got)
	}
	if got := h.store.Len(); got != 2 {
		t.Errorf("expected 2 vectors, got %d", got)
	}
}

func TestStore_TwoPhaseAbortsBeforeUpsert(t *testing.T) {
	h := newHarness(t).withIndex()
	h.embedder.FailOn("My cat's name is Sandy.", sprout.ErrAuthentication)
	store := sprout.NewStore(h.embedder, h.store, testPrefix, sprout.WithMode(sprout.StoreTwoPhase))

	_, err := store.StoreAll(h.ctx, petRecords())
	if !errors.Is(err, sprout.ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}
	if got := h.store.Calls().Upsert; got != 0 {
		t.Errorf("expected no upsert after embed failure, got %d", got)
	}
	if got := h.store.Len(); got != 0 {
		t.Errorf("expected nothing stored, got %d", got)
	}
}

func TestStore_InvalidModeFallsBack(t *testing.T) {
	h := newHarness(t).withIndex()
	store := sprout.NewStore(h.embedder, h.store, testPrefix, sprout.WithMode("serial"))

	if _, err := store.StoreAll(h.ctx, petRecords()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := h.store.Calls().Upsert; got != 2 {
		t.Errorf("expected concurrent per-record upserts, got %d", got)
	}
}
