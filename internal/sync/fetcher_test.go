package sync

import (
	"context"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerkhofftech/autotask-sync/internal/rest"
)

func TestPartition(t *testing.T) {
	t.Run("splits with remainder", func(t *testing.T) {
		chunks := Partition([]int64{1, 2, 3, 4, 5}, 2)
		assert.Equal(t, [][]int64{{1, 2}, {3, 4}, {5}}, chunks)
	})

	t.Run("empty input yields nothing", func(t *testing.T) {
		assert.Nil(t, Partition(nil, 400))
	})

	t.Run("non-positive size yields one chunk", func(t *testing.T) {
		chunks := Partition([]int64{1, 2, 3}, 0)
		assert.Equal(t, [][]int64{{1, 2, 3}}, chunks)
	})
}

func TestPartitionProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	idsGen := gen.SliceOf(gen.Int64())
	sizeGen := gen.IntRange(1, 500)

	properties.Property("chunks cover the input in order", prop.ForAll(
		func(ids []int64, size int) bool {
			var flattened []int64
			for _, chunk := range Partition(ids, size) {
				flattened = append(flattened, chunk...)
			}
			if len(flattened) != len(ids) {
				return false
			}
			for i := range ids {
				if flattened[i] != ids[i] {
					return false
				}
			}
			return true
		},
		idsGen,
		sizeGen,
	))

	properties.Property("no chunk exceeds the size bound", prop.ForAll(
		func(ids []int64, size int) bool {
			for _, chunk := range Partition(ids, size) {
				if len(chunk) > size {
					return false
				}
			}
			return true
		},
		idsGen,
		sizeGen,
	))

	properties.Property("only the last chunk may be short", prop.ForAll(
		func(ids []int64, size int) bool {
			chunks := Partition(ids, size)
			for i, chunk := range chunks {
				if i < len(chunks)-1 && len(chunk) != size {
					return false
				}
			}
			return true
		},
		idsGen,
		sizeGen,
	))

	properties.TestingRun(t)
}

type recordingQuerier struct {
	queries []rest.Query
	recs    []rest.Raw
}

func (q *recordingQuerier) Query(_ context.Context, _ string, query rest.Query, emit func(rest.Raw) error) error {
	q.queries = append(q.queries, query)
	for _, rec := range q.recs {
		if err := emit(rec); err != nil {
			return err
		}
	}
	return nil
}

func TestQueryFetcher(t *testing.T) {
	t.Run("no window means no filter", func(t *testing.T) {
		client := &recordingQuerier{}
		f := &QueryFetcher{Client: client, Entity: EntityCompanies, UpdatedField: "lastActivityDate"}

		require.NoError(t, f.Fetch(context.Background(), nil, func(rest.Raw) error { return nil }))
		require.Len(t, client.queries, 1)
		assert.Empty(t, client.queries[0].Filter)
	})

	t.Run("window becomes gte filter on the activity field", func(t *testing.T) {
		client := &recordingQuerier{}
		f := &QueryFetcher{Client: client, Entity: EntityCompanies, UpdatedField: "lastActivityDate"}
		window := time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC)

		require.NoError(t, f.Fetch(context.Background(), &window, func(rest.Raw) error { return nil }))
		require.Len(t, client.queries, 1)
		require.Len(t, client.queries[0].Filter, 1)
		filter := client.queries[0].Filter[0]
		assert.Equal(t, "gte", filter.Op)
		assert.Equal(t, "lastActivityDate", filter.Field)
		assert.Equal(t, "2026-08-30T06:00:00Z", filter.Value)
	})

	t.Run("conditions are appended", func(t *testing.T) {
		client := &recordingQuerier{}
		f := &QueryFetcher{
			Client:     client,
			Entity:     EntityTickets,
			Conditions: []Condition{CompletedWindow("status", "completedDate", 8*time.Hour)},
		}

		require.NoError(t, f.Fetch(context.Background(), nil, func(rest.Raw) error { return nil }))
		require.Len(t, client.queries, 1)
		require.Len(t, client.queries[0].Filter, 1)
		filter := client.queries[0].Filter[0]
		assert.Equal(t, "or", filter.Op)
		require.Len(t, filter.Items, 2)
		assert.Equal(t, "noteq", filter.Items[0].Op)
		assert.Equal(t, "status", filter.Items[0].Field)
		assert.Equal(t, "gte", filter.Items[1].Op)
		assert.Equal(t, "completedDate", filter.Items[1].Field)
	})
}

func TestBatchFetcher(t *testing.T) {
	t.Run("chunks parent ids into in filters", func(t *testing.T) {
		client := &recordingQuerier{}
		f := &BatchFetcher{
			Client:      client,
			Entity:      EntityTimeEntries,
			ParentField: "ticketID",
			BatchSize:   2,
			ParentIDs: func(context.Context) ([]int64, error) {
				return []int64{10, 20, 30}, nil
			},
		}

		require.NoError(t, f.Fetch(context.Background(), nil, func(rest.Raw) error { return nil }))
		require.Len(t, client.queries, 2)
		assert.Equal(t, []int64{10, 20}, client.queries[0].Filter[0].Value)
		assert.Equal(t, []int64{30}, client.queries[1].Filter[0].Value)
		assert.Equal(t, "in", client.queries[0].Filter[0].Op)
		assert.Equal(t, "ticketID", client.queries[0].Filter[0].Field)
	})

	t.Run("no parents means no queries", func(t *testing.T) {
		client := &recordingQuerier{}
		f := &BatchFetcher{
			Client:      client,
			Entity:      EntityTimeEntries,
			ParentField: "ticketID",
			BatchSize:   400,
			ParentIDs:   func(context.Context) ([]int64, error) { return nil, nil },
		}

		require.NoError(t, f.Fetch(context.Background(), nil, func(rest.Raw) error { return nil }))
		assert.Empty(t, client.queries)
	})

	t.Run("window applies to every chunk", func(t *testing.T) {
		client := &recordingQuerier{}
		f := &BatchFetcher{
			Client:       client,
			Entity:       EntityTimeEntries,
			ParentField:  "ticketID",
			UpdatedField: "lastModifiedDateTime",
			BatchSize:    1,
			ParentIDs: func(context.Context) ([]int64, error) {
				return []int64{1, 2}, nil
			},
		}
		window := time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC)

		require.NoError(t, f.Fetch(context.Background(), &window, func(rest.Raw) error { return nil }))
		require.Len(t, client.queries, 2)
		for _, q := range client.queries {
			require.Len(t, q.Filter, 2)
			assert.Equal(t, "lastModifiedDateTime", q.Filter[1].Field)
		}
	})
}

func TestMultiFetcher(t *testing.T) {
	a := &sliceFetcher{recs: []rest.Raw{{"id": float64(1)}}}
	b := &sliceFetcher{recs: []rest.Raw{{"id": float64(2)}}}

	var ids []int64
	err := MultiFetcher{a, b}.Fetch(context.Background(), nil, func(rec rest.Raw) error {
		id, _ := rec.RemoteID()
		ids = append(ids, id)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)
}

type fakePicklistReader struct {
	values []rest.PicklistValue
}

func (f *fakePicklistReader) PicklistField(_ context.Context, _, _ string) ([]rest.PicklistValue, error) {
	return f.values, nil
}

func TestPicklistFetcher(t *testing.T) {
	f := &PicklistFetcher{
		Client: &fakePicklistReader{values: []rest.PicklistValue{
			{Value: "1", Label: "New", IsDefaultValue: true, SortOrder: 1, IsActive: true, IsSystem: true},
			{Value: "bogus", Label: "Broken"},
			{Value: "5", Label: "Complete", SortOrder: 2, IsActive: true, IsSystem: true},
		}},
		Entity: EntityTickets,
		Field:  "status",
	}

	var recs []rest.Raw
	err := f.Fetch(context.Background(), nil, func(rec rest.Raw) error {
		recs = append(recs, rec)
		return nil
	})
	require.NoError(t, err)

	// The non-numeric value is dropped.
	require.Len(t, recs, 2)
	id, ok := recs[0].RemoteID()
	require.True(t, ok)
	assert.Equal(t, int64(1), id)
	assert.Equal(t, "New", recs[0]["label"])
	assert.Equal(t, true, recs[0]["isDefaultValue"])
	id, _ = recs[1].RemoteID()
	assert.Equal(t, int64(5), id)
}
