package pinecone

import (
	"encoding/json"
	"fmt"

	"github.com/pinecone-io/go-pinecone/v2/pinecone"
	"github.com/zoobzio/sprout"
	"github.com/zoobzio/vecna"
	"google.golang.org/protobuf/types/known/structpb"
)

// translateFilter converts a vecna.Filter to a Pinecone metadata filter.
// Note: Pinecone does not support Gt, Gte, Lt, Lte, Like, or Contains operators.
func translateFilter(f *vecna.Filter) (*pinecone.MetadataFilter, error) {
	if f == nil {
		return nil, nil
	}

	if err := f.Err(); err != nil {
		return nil, fmt.Errorf("%w: invalid filter: %w", sprout.ErrInvalidArgument, err)
	}

	filterMap, err := translateNode(f)
	if err != nil {
		return nil, err
	}

	return toStruct(filterMap)
}

// translateNode recursively translates a filter node to a Pinecone filter map.
func translateNode(f *vecna.Filter) (map[string]any, error) {
	switch f.Op() {
	case vecna.And:
		return translateGroup("$and", f.Children())
	case vecna.Or:
		return translateGroup("$or", f.Children())
	case vecna.Not:
		return translateNot(f.Children())
	default:
		return translateCondition(f)
	}
}

// translateGroup translates an AND or OR filter.
func translateGroup(op string, children []*vecna.Filter) (map[string]any, error) {
	clauses := make([]any, 0, len(children))
	for _, child := range children {
		clause, err := translateNode(child)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, clause)
	}
	return map[string]any{op: clauses}, nil
}

// translateNot translates a NOT filter.
func translateNot(children []*vecna.Filter) (map[string]any, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("%w: NOT requires exactly one child", sprout.ErrInvalidArgument)
	}

	// Pinecone has no $not; only negatable leaf operators are accepted.
	child := children[0]
	switch child.Op() {
	case vecna.Eq:
		return map[string]any{child.Field(): map[string]any{"$ne": child.Value()}}, nil
	case vecna.In:
		return map[string]any{child.Field(): map[string]any{"$nin": child.Value()}}, nil
	default:
		return nil, fmt.Errorf("%w: Pinecone does not support NOT with %s operator", sprout.ErrInvalidArgument, child.Op())
	}
}

// translateCondition translates a field condition.
func translateCondition(f *vecna.Filter) (map[string]any, error) {
	field := f.Field()
	value := f.Value()

	switch f.Op() {
	case vecna.Eq:
		return map[string]any{field: map[string]any{"$eq": value}}, nil
	case vecna.Ne:
		return map[string]any{field: map[string]any{"$ne": value}}, nil
	case vecna.In:
		return map[string]any{field: map[string]any{"$in": value}}, nil
	case vecna.Nin:
		return map[string]any{field: map[string]any{"$nin": value}}, nil
	case vecna.Gt:
		return map[string]any{field: map[string]any{"$gt": value}}, nil
	case vecna.Gte:
		return map[string]any{field: map[string]any{"$gte": value}}, nil
	case vecna.Lt:
		return map[string]any{field: map[string]any{"$lt": value}}, nil
	case vecna.Lte:
		return map[string]any{field: map[string]any{"$lte": value}}, nil
	default:
		return nil, fmt.Errorf("%w: Pinecone does not support %s operator", sprout.ErrInvalidArgument, f.Op())
	}
}

// toStruct converts map[string]any to a protobuf struct.
// Values are normalised through JSON so typed slices and structs are accepted.
func toStruct(m map[string]any) (*structpb.Struct, error) {
	if m == nil {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", sprout.ErrInvalidInput, err)
	}
	var normalised map[string]any
	if err := json.Unmarshal(data, &normalised); err != nil {
		return nil, fmt.Errorf("%w: %w", sprout.ErrInvalidInput, err)
	}
	s, err := structpb.NewStruct(normalised)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", sprout.ErrInvalidInput, err)
	}
	return s, nil
}

// toMetadata converts a record to Pinecone metadata.
func toMetadata(r sprout.Record) (*pinecone.Metadata, error) {
	if r == nil {
		return nil, nil
	}
	return toStruct(r)
}

// fromMetadata converts Pinecone metadata back to a record.
func fromMetadata(m *pinecone.Metadata) sprout.Record {
	if m == nil {
		return nil
	}
	return sprout.Record(m.AsMap())
}
