package sprout

import (
	"errors"
	"testing"

	"github.com/zoobzio/sprout/internal/shared"
)

func TestErrorsReexported(t *testing.T) {
	// Verify that public errors are correctly re-exported from internal/shared.
	tests := []struct {
		name   string
		public error
		shared error
	}{
		{"ErrAuthentication", ErrAuthentication, shared.ErrAuthentication},
		{"ErrInvalidInput", ErrInvalidInput, shared.ErrInvalidInput},
		{"ErrConflict", ErrConflict, shared.ErrConflict},
		{"ErrNotFound", ErrNotFound, shared.ErrNotFound},
		{"ErrRemoteService", ErrRemoteService, shared.ErrRemoteService},
		{"ErrInvalidArgument", ErrInvalidArgument, shared.ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Verify public and shared errors are the same instance.
			if !errors.Is(tt.public, tt.shared) {
				t.Errorf("%s: errors.Is(public, shared) failed", tt.name)
			}
			if !errors.Is(tt.shared, tt.public) {
				t.Errorf("%s: errors.Is(shared, public) failed", tt.name)
			}
		})
	}
}

func TestErrorsDistinct(t *testing.T) {
	errs := []error{
		ErrAuthentication,
		ErrInvalidInput,
		ErrConflict,
		ErrNotFound,
		ErrRemoteService,
		ErrInvalidArgument,
	}

	for i, a := range errs {
		if a == nil {
			t.Fatal("expected non-nil error")
		}
		for j, b := range errs {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v should not match %v", a, b)
			}
		}
	}
}

func TestMetricValid(t *testing.T) {
	for _, m := range []Metric{MetricCosine, MetricDotProduct, MetricEuclidean} {
		if !m.Valid() {
			t.Errorf("expected %q to be valid", m)
		}
	}
	for _, m := range []Metric{"", "manhattan", "Cosine"} {
		if m.Valid() {
			t.Errorf("expected %q to be invalid", m)
		}
	}
}

func TestStoreModeValid(t *testing.T) {
	if !StoreConcurrent.Valid() || !StoreTwoPhase.Valid() {
		t.Error("expected enumerated modes to be valid")
	}
	if StoreMode("serial").Valid() {
		t.Error("expected unknown mode to be invalid")
	}
}

func TestVectorID(t *testing.T) {
	tests := []struct {
		prefix string
		pos    int
		want   string
	}{
		{"your-embedding-id", 0, "your-embedding-id-1"},
		{"your-embedding-id", 1, "your-embedding-id-2"},
		{"pet", 9, "pet-10"},
		{"", 0, "-1"},
	}
	for _, tt := range tests {
		if got := VectorID(tt.prefix, tt.pos); got != tt.want {
			t.Errorf("VectorID(%q, %d) = %q, want %q", tt.prefix, tt.pos, got, tt.want)
		}
	}
}
