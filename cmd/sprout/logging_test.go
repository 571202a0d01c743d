package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/sprout"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestLogger_Text(t *testing.T) {
	var out syncBuffer
	log := newLogger(&out, "info", "text")
	ctx := context.Background()

	capitan.Emit(ctx, sprout.IndexCreated, sprout.FieldIndex.Field("pets"))
	capitan.Emit(ctx, sprout.VectorStored, sprout.FieldID.Field("pet-1"), sprout.FieldNamespace.Field("ns"))
	capitan.Emit(ctx, sprout.EmbedCompleted, sprout.FieldID.Field("pet-1"))
	log.Close(ctx)

	got := out.String()
	if !strings.Contains(got, "Index 'pets' created") {
		t.Errorf("missing index line in %q", got)
	}
	if !strings.Contains(got, "Embedding pet-1 stored") {
		t.Errorf("missing stored line in %q", got)
	}
	if !strings.Contains(got, "namespace=ns") {
		t.Errorf("missing namespace attribute in %q", got)
	}
	if strings.Contains(got, "computed") {
		t.Errorf("debug event logged at info level: %q", got)
	}
}

func TestLogger_JSON(t *testing.T) {
	var out syncBuffer
	log := newLogger(&out, "debug", "json")
	ctx := context.Background()

	capitan.Emit(ctx, sprout.QueryFailed,
		sprout.FieldQuery.Field("q"),
		sprout.FieldError.Field(errors.New("boom")),
	)
	log.Close(ctx)

	line := strings.TrimSpace(out.String())
	var rec map[string]any
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		t.Fatalf("expected one json record, got %q: %v", line, err)
	}
	if rec["msg"] != "Query failed" {
		t.Errorf("unexpected msg: %v", rec["msg"])
	}
	if rec["level"] != "ERROR" {
		t.Errorf("unexpected level: %v", rec["level"])
	}
	if rec["error"] != "boom" {
		t.Errorf("unexpected error attribute: %v", rec["error"])
	}
	if rec["query"] != "q" {
		t.Errorf("unexpected query attribute: %v", rec["query"])
	}
}

func TestLogger_CoversEverySignal(t *testing.T) {
	signals := []capitan.Signal{
		sprout.IndexExists, sprout.IndexCreated, sprout.IndexReady,
		sprout.IndexAbsent, sprout.IndexDeleted, sprout.IndexActionInvalid,
		sprout.IndexFailed, sprout.EmbedCompleted, sprout.EmbedFailed,
		sprout.VectorStored, sprout.VectorFailed, sprout.StoreCompleted,
		sprout.QueryCompleted, sprout.QueryFailed,
	}
	for _, sig := range signals {
		if _, ok := messages[sig]; !ok {
			t.Errorf("no log message for %v", sig)
		}
	}
}

func TestEmbedMsg(t *testing.T) {
	render := messages[sprout.EmbedCompleted].render

	got := render([]capitan.Field{sprout.FieldID.Field("pet-1")})
	if got != "Embedding pet-1 computed" {
		t.Errorf("unexpected record message %q", got)
	}

	got = render([]capitan.Field{sprout.FieldQuery.Field("What is my dog's name?")})
	if got != "Query embedding computed for 'What is my dog's name?'" {
		t.Errorf("unexpected query message %q", got)
	}

	got = messages[sprout.EmbedFailed].render([]capitan.Field{sprout.FieldQuery.Field("q")})
	if got != "Query embedding failed for 'q'" {
		t.Errorf("unexpected failure message %q", got)
	}
}
