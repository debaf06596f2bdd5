package sync

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/kerkhofftech/autotask-sync/internal/logging"
	"github.com/kerkhofftech/autotask-sync/internal/rest"
)

// Querier issues paged entity queries.
type Querier interface {
	Query(ctx context.Context, entity string, q rest.Query, emit func(rest.Raw) error) error
}

// PicklistReader fetches a picklist field's enumeration values.
type PicklistReader interface {
	PicklistField(ctx context.Context, entity, field string) ([]rest.PicklistValue, error)
}

// Condition contributes an extra filter to a windowed fetch, evaluated at
// fetch time so time-relative cutoffs stay fresh.
type Condition func(now time.Time) rest.Filter

// QueryFetcher streams an entity's records through the query endpoint.
// With a window it fetches only records active since that time, using the
// entity's activity timestamp field.
type QueryFetcher struct {
	Client       Querier
	Entity       string
	UpdatedField string
	Conditions   []Condition
}

// Fetch implements Fetcher.
func (f *QueryFetcher) Fetch(ctx context.Context, window *time.Time, emit func(rest.Raw) error) error {
	var q rest.Query
	if window != nil && f.UpdatedField != "" {
		q.Filter = append(q.Filter, rest.Gte(f.UpdatedField, window.UTC().Format(time.RFC3339)))
	}
	now := time.Now().UTC()
	for _, cond := range f.Conditions {
		q.Filter = append(q.Filter, cond(now))
	}
	return f.Client.Query(ctx, f.Entity, q, emit)
}

// BatchFetcher queries an entity in chunks of parent IDs using "in"
// filters, for entities the API only serves efficiently when scoped to
// their parents. The ID source runs at fetch time so it reflects the rows
// earlier syncs just wrote.
type BatchFetcher struct {
	Client       Querier
	Entity       string
	ParentField  string
	UpdatedField string
	BatchSize    int
	ParentIDs    func(ctx context.Context) ([]int64, error)
	Conditions   []Condition
}

// Fetch implements Fetcher.
func (f *BatchFetcher) Fetch(ctx context.Context, window *time.Time, emit func(rest.Raw) error) error {
	ids, err := f.ParentIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve %s parent ids: %w", f.Entity, err)
	}
	if len(ids) == 0 {
		return nil
	}

	now := time.Now().UTC()
	for _, chunk := range Partition(ids, f.BatchSize) {
		var q rest.Query
		q.Filter = append(q.Filter, rest.In(f.ParentField, chunk))
		if window != nil && f.UpdatedField != "" {
			q.Filter = append(q.Filter, rest.Gte(f.UpdatedField, window.UTC().Format(time.RFC3339)))
		}
		for _, cond := range f.Conditions {
			q.Filter = append(q.Filter, cond(now))
		}
		if err := f.Client.Query(ctx, f.Entity, q, emit); err != nil {
			return err
		}
	}
	return nil
}

// Partition splits ids into chunks of at most size elements, preserving
// order. A non-positive size yields a single chunk.
func Partition(ids []int64, size int) [][]int64 {
	if len(ids) == 0 {
		return nil
	}
	if size <= 0 {
		return [][]int64{ids}
	}
	chunks := make([][]int64, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

// MultiFetcher runs several fetchers in sequence under one sync run, used
// when an entity is reached through more than one parent kind.
type MultiFetcher []Fetcher

// Fetch implements Fetcher.
func (m MultiFetcher) Fetch(ctx context.Context, window *time.Time, emit func(rest.Raw) error) error {
	for _, f := range m {
		if err := f.Fetch(ctx, window, emit); err != nil {
			return err
		}
	}
	return nil
}

// PicklistFetcher streams a picklist field's enumeration as records keyed
// by the remote picklist value. The metadata endpoint always returns the
// complete enumeration, so the window is ignored.
type PicklistFetcher struct {
	Client PicklistReader
	Entity string
	Field  string
}

// Fetch implements Fetcher.
func (f *PicklistFetcher) Fetch(ctx context.Context, _ *time.Time, emit func(rest.Raw) error) error {
	values, err := f.Client.PicklistField(ctx, f.Entity, f.Field)
	if err != nil {
		return err
	}

	logger := logging.FromContext(ctx)
	for _, v := range values {
		id, err := strconv.ParseInt(v.Value, 10, 64)
		if err != nil {
			logger.Warn().
				Str("entity", f.Entity).
				Str("field", f.Field).
				Str("value", v.Value).
				Msg("picklist value is not numeric, skipping")
			continue
		}
		rec := rest.Raw{
			"id":             id,
			"label":          v.Label,
			"isDefaultValue": v.IsDefaultValue,
			"sortOrder":      float64(v.SortOrder),
			"isActive":       v.IsActive,
			"isSystem":       v.IsSystem,
		}
		if err := emit(rec); err != nil {
			return err
		}
	}
	return nil
}
