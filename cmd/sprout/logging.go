package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/sprout"
)

// logger writes one slog record per sprout signal.
type logger struct {
	log    *slog.Logger
	drains []func(context.Context)
	closes []func()
}

// newLogger hooks every sprout signal into a slog handler writing to w.
func newLogger(w io.Writer, level, format string) *logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	l := &logger{log: slog.New(handler)}
	for sig, msg := range messages {
		ls := capitan.Hook(sig, l.handler(msg))
		l.drains = append(l.drains, func(ctx context.Context) { _ = ls.Drain(ctx) })
		l.closes = append(l.closes, func() { ls.Close() })
	}
	return l
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// message renders the human-readable line for one event.
type message struct {
	level  slog.Level
	render func(fields []capitan.Field) string
}

func indexMsg(format string) func([]capitan.Field) string {
	return func(f []capitan.Field) string {
		return fmt.Sprintf(format, sprout.FieldIndex.ExtractFromFields(f))
	}
}

func idMsg(format string) func([]capitan.Field) string {
	return func(f []capitan.Field) string {
		return fmt.Sprintf(format, sprout.FieldID.ExtractFromFields(f))
	}
}

// embedMsg names the vector when there is one and the query text otherwise.
func embedMsg(format, queryFormat string) func([]capitan.Field) string {
	return func(f []capitan.Field) string {
		if id := sprout.FieldID.ExtractFromFields(f); id != "" {
			return fmt.Sprintf(format, id)
		}
		return fmt.Sprintf(queryFormat, sprout.FieldQuery.ExtractFromFields(f))
	}
}

func static(s string) func([]capitan.Field) string {
	return func([]capitan.Field) string { return s }
}

var messages = map[capitan.Signal]message{
	sprout.IndexExists:        {slog.LevelInfo, indexMsg("Index '%s' already exists")},
	sprout.IndexCreated:       {slog.LevelInfo, indexMsg("Index '%s' created")},
	sprout.IndexReady:         {slog.LevelInfo, indexMsg("Index '%s' is ready")},
	sprout.IndexAbsent:        {slog.LevelInfo, indexMsg("Index '%s' does not exist")},
	sprout.IndexDeleted:       {slog.LevelInfo, indexMsg("Index '%s' deleted")},
	sprout.IndexActionInvalid: {slog.LevelWarn, static("Invalid action")},
	sprout.IndexFailed:        {slog.LevelError, indexMsg("Index '%s' operation failed")},
	sprout.EmbedCompleted:     {slog.LevelDebug, embedMsg("Embedding %s computed", "Query embedding computed for '%s'")},
	sprout.EmbedFailed:        {slog.LevelError, embedMsg("Embedding %s failed", "Query embedding failed for '%s'")},
	sprout.VectorStored:       {slog.LevelInfo, idMsg("Embedding %s stored")},
	sprout.VectorFailed:       {slog.LevelError, idMsg("Embedding %s not stored")},
	sprout.StoreCompleted:     {slog.LevelInfo, static("All embeddings stored")},
	sprout.QueryCompleted:     {slog.LevelInfo, static("Query completed")},
	sprout.QueryFailed:        {slog.LevelError, static("Query failed")},
}

func (l *logger) handler(m message) capitan.EventCallback {
	return func(ctx context.Context, e *capitan.Event) {
		fields := e.Fields()
		l.log.LogAttrs(ctx, m.level, m.render(fields), attrs(e.Signal(), fields)...)
	}
}

// attrs converts the populated sprout fields of an event to slog attributes.
func attrs(sig capitan.Signal, fields []capitan.Field) []slog.Attr {
	out := []slog.Attr{slog.String("signal", sig.Name())}
	for _, f := range []struct {
		name string
		key  capitan.StringKey
	}{
		{"index", sprout.FieldIndex},
		{"namespace", sprout.FieldNamespace},
		{"id", sprout.FieldID},
		{"action", sprout.FieldAction},
		{"query", sprout.FieldQuery},
		{"model", sprout.FieldModel},
	} {
		if v := f.key.ExtractFromFields(fields); v != "" {
			out = append(out, slog.String(f.name, v))
		}
	}
	if n := sprout.FieldCount.ExtractFromFields(fields); n != 0 {
		out = append(out, slog.Int("count", n))
	}
	if k := sprout.FieldTopK.ExtractFromFields(fields); k != 0 {
		out = append(out, slog.Int("top_k", k))
	}
	if d := sprout.FieldDuration.ExtractFromFields(fields); d != 0 {
		out = append(out, slog.Duration("duration", d))
	}
	if err := sprout.FieldError.ExtractFromFields(fields); err != nil {
		out = append(out, slog.String("error", err.Error()))
	}
	return out
}

// Drain blocks until queued events have been logged.
func (l *logger) Drain(ctx context.Context) {
	for _, drain := range l.drains {
		drain(ctx)
	}
}

// Close drains and detaches every listener.
func (l *logger) Close(ctx context.Context) {
	l.Drain(ctx)
	for _, closeFn := range l.closes {
		closeFn()
	}
}
