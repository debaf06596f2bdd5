package sync

import (
	"context"
	"fmt"

	"github.com/kerkhofftech/autotask-sync/internal/logging"
	"github.com/kerkhofftech/autotask-sync/internal/rest"

	aterrors "github.com/kerkhofftech/autotask-sync/internal/errors"
)

// FieldMapping binds one remote field name to the function that assigns its
// coerced value onto the local record.
type FieldMapping[T any] struct {
	Remote string
	Assign func(dst T, rec rest.Raw)
}

// FieldMap is an entity's ordered attribute mapping.
type FieldMap[T any] []FieldMapping[T]

// Validate rejects malformed maps: duplicate remote names and nil
// assigners. It runs once at construction, not per record.
func (m FieldMap[T]) Validate() error {
	names := make(map[string]bool, len(m))
	for i, f := range m {
		if f.Remote == "" {
			return fmt.Errorf("field mapping %d has no remote name", i)
		}
		if names[f.Remote] {
			return fmt.Errorf("duplicate field mapping for %q", f.Remote)
		}
		if f.Assign == nil {
			return fmt.Errorf("field mapping for %q has no assign func", f.Remote)
		}
		names[f.Remote] = true
	}
	return nil
}

// Relation binds a remote foreign-key field to the local table it must
// resolve against. Required relations reject the whole record when they
// cannot be resolved; optional ones degrade to a nil FK.
type Relation[T any] struct {
	Remote   string
	Table    string
	Required bool
	Assign   func(dst T, id *int64)
}

// RefLookup answers whether a referenced local row exists.
type RefLookup interface {
	Exists(ctx context.Context, table string, id int64) (bool, error)
}

// RecordMapper maps raw remote records onto typed local records through a
// declarative field map and relation descriptors.
type RecordMapper[T any] struct {
	entity    string
	factory   func(id int64) T
	fields    FieldMap[T]
	relations []Relation[T]
	refs      RefLookup
}

// NewRecordMapper validates and assembles a mapper for one entity.
func NewRecordMapper[T any](entity string, factory func(id int64) T, fields FieldMap[T], relations []Relation[T], refs RefLookup) (*RecordMapper[T], error) {
	if factory == nil {
		return nil, fmt.Errorf("%s mapper has no factory", entity)
	}
	if err := fields.Validate(); err != nil {
		return nil, fmt.Errorf("%s field map: %w", entity, err)
	}
	for i, r := range relations {
		if r.Remote == "" || r.Table == "" || r.Assign == nil {
			return nil, fmt.Errorf("%s relation %d is incomplete", entity, i)
		}
	}
	return &RecordMapper[T]{
		entity:    entity,
		factory:   factory,
		fields:    fields,
		relations: relations,
		refs:      refs,
	}, nil
}

// New returns a fresh record carrying only the remote primary key.
func (m *RecordMapper[T]) New(id int64) T {
	return m.factory(id)
}

// Apply maps the raw record onto dst: plain attributes first, then
// relations. An optional relation pointing at a row the local schema does
// not hold yet degrades to a nil FK with a warning; a required relation in
// that state rejects the record.
func (m *RecordMapper[T]) Apply(ctx context.Context, rec rest.Raw, dst T) error {
	for _, f := range m.fields {
		f.Assign(dst, rec)
	}

	logger := logging.FromContext(ctx)
	for _, rel := range m.relations {
		id := Int64Ptr(rec, rel.Remote)
		if id != nil {
			exists, err := m.refs.Exists(ctx, rel.Table, *id)
			if err != nil {
				return err
			}
			if !exists {
				logger.Warn().
					Str("entity", m.entity).
					Str("field", rel.Remote).
					Int64("ref", *id).
					Msg("referenced row not synchronized yet, clearing relation")
				id = nil
			}
		}
		if id == nil && rel.Required {
			remoteID, _ := rec.RemoteID()
			return aterrors.NewInvalidObjectError(m.entity, remoteID,
				fmt.Sprintf("required relation %s unresolved", rel.Remote), nil)
		}
		rel.Assign(dst, id)
	}
	return nil
}
