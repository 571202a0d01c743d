package sprout

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// embedText runs one embedding call and emits its outcome.
// id identifies the vector being built and is empty for query text,
// in which case the text itself is attached to the event.
func embedText(ctx context.Context, e Embedder, timeout time.Duration, id, text string) ([]float32, error) {
	start := time.Now()

	subject := FieldID.Field(id)
	if id == "" {
		subject = FieldQuery.Field(text)
	}

	cctx, cancel := callContext(ctx, timeout)
	defer cancel()

	vector, err := e.Embed(cctx, text)
	if err != nil {
		capitan.Emit(ctx, EmbedFailed,
			subject,
			FieldModel.Field(e.Model()),
			FieldError.Field(err),
			FieldDuration.Field(time.Since(start)),
		)
		return nil, err
	}

	capitan.Emit(ctx, EmbedCompleted,
		subject,
		FieldModel.Field(e.Model()),
		FieldCount.Field(len(vector)),
		FieldDuration.Field(time.Since(start)),
	)

	return vector, nil
}
