package sprout

import "github.com/zoobzio/capitan"

// Signals for index lifecycle events.
var (
	IndexExists        = capitan.NewSignal("sprout.index.exists", "Index already present, create skipped")
	IndexCreated       = capitan.NewSignal("sprout.index.created", "Index created")
	IndexReady         = capitan.NewSignal("sprout.index.ready", "Index accepting requests")
	IndexAbsent        = capitan.NewSignal("sprout.index.absent", "Index not present, delete skipped")
	IndexDeleted       = capitan.NewSignal("sprout.index.deleted", "Index deleted")
	IndexActionInvalid = capitan.NewSignal("sprout.index.invalid", "Unrecognised index action")
	IndexFailed        = capitan.NewSignal("sprout.index.failed", "Index operation failed")
)

// Signals for embedding and storage events.
var (
	EmbedCompleted = capitan.NewSignal("sprout.embed.completed", "Embedding computed")
	EmbedFailed    = capitan.NewSignal("sprout.embed.failed", "Embedding failed")
	VectorStored   = capitan.NewSignal("sprout.vector.stored", "Vector upserted")
	VectorFailed   = capitan.NewSignal("sprout.vector.failed", "Vector upsert failed")
	StoreCompleted = capitan.NewSignal("sprout.store.completed", "All records stored")
	QueryCompleted = capitan.NewSignal("sprout.query.completed", "Similarity query succeeded")
	QueryFailed    = capitan.NewSignal("sprout.query.failed", "Similarity query failed")
)

// Field keys for event extraction.
var (
	FieldIndex     = capitan.NewStringKey("index")
	FieldNamespace = capitan.NewStringKey("namespace")
	FieldID        = capitan.NewStringKey("id")
	FieldAction    = capitan.NewStringKey("action")
	FieldQuery     = capitan.NewStringKey("query")
	FieldModel     = capitan.NewStringKey("model")
	FieldCount     = capitan.NewIntKey("count")
	FieldTopK      = capitan.NewIntKey("top_k")
	FieldDuration  = capitan.NewDurationKey("duration")
	FieldError     = capitan.NewErrorKey("error")
)
