package sprout_test

import (
	"context"
	"testing"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/sprout"
	sprouttest "github.com/zoobzio/sprout/testing"
)

const (
	testIndex     = "pets"
	testNamespace = "pets-ns"
	testPrefix    = "pet"
	testDimension = 16
)

// harness wires a mock embedder and store with an event capture that is
// drained when the test ends, so no queued event leaks into the next test.
type harness struct {
	ctx      context.Context
	embedder *sprouttest.MockEmbedder
	store    *sprouttest.MockVectorStore
	events   *sprouttest.EventCapture
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		ctx:      context.Background(),
		embedder: sprouttest.NewMockEmbedder(testDimension),
		store:    sprouttest.NewMockVectorStore(testIndex, testNamespace),
		events:   sprouttest.NewEventCapture().Listen(),
	}
	t.Cleanup(func() { h.events.Close(context.Background()) })
	return h
}

func descriptor() sprout.IndexDescriptor {
	return sprout.IndexDescriptor{
		Name:      testIndex,
		Dimension: testDimension,
		Metric:    sprout.MetricCosine,
		Cloud:     "aws",
		Region:    "us-west-2",
	}
}

// withIndex registers the test index as already present.
func (h *harness) withIndex() *harness {
	h.store.AddIndex(descriptor())
	return h
}

// signals drains pending events and returns those emitted for sig.
func (h *harness) signals(sig capitan.Signal) []sprouttest.CapturedEvent {
	h.events.Drain(h.ctx)
	return h.events.EventsBySignal(sig)
}

func petRecords() []sprout.Record {
	return []sprout.Record{
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
}
