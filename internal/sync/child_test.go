package sync

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerkhofftech/autotask-sync/internal/models"
	"github.com/kerkhofftech/autotask-sync/internal/rest"
)

type memNoteStore struct {
	rows map[int64]*models.TicketNote
}

func newMemNoteStore(rows ...*models.TicketNote) *memNoteStore {
	s := &memNoteStore{rows: make(map[int64]*models.TicketNote)}
	for _, r := range rows {
		s.rows[r.ID] = r
	}
	return s
}

func (s *memNoteStore) Get(_ context.Context, id int64) (*models.TicketNote, bool, error) {
	n, ok := s.rows[id]
	if !ok {
		return nil, false, nil
	}
	copied := *n
	return &copied, true, nil
}

func (s *memNoteStore) Create(_ context.Context, n *models.TicketNote) error {
	s.rows[n.ID] = n
	return nil
}

func (s *memNoteStore) Update(_ context.Context, n *models.TicketNote) error {
	s.rows[n.ID] = n
	return nil
}

func (s *memNoteStore) ListIDs(_ context.Context) ([]int64, error) {
	ids := make([]int64, 0, len(s.rows))
	for id := range s.rows {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *memNoteStore) ListIDsByParent(_ context.Context, parentID int64) ([]int64, error) {
	var ids []int64
	for id, n := range s.rows {
		if n.TicketID != nil && *n.TicketID == parentID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *memNoteStore) Delete(_ context.Context, ids []int64) (int64, error) {
	var n int64
	for _, id := range ids {
		if _, ok := s.rows[id]; ok {
			delete(s.rows, id)
			n++
		}
	}
	return n, nil
}

// parentQuerier serves canned notes per parent filter value.
type parentQuerier struct {
	byParent map[int64][]rest.Raw
}

func (q *parentQuerier) Query(_ context.Context, _ string, query rest.Query, emit func(rest.Raw) error) error {
	if len(query.Filter) != 1 || query.Filter[0].Op != "eq" {
		return fmt.Errorf("unexpected filter %+v", query.Filter)
	}
	parentID, ok := query.Filter[0].Value.(int64)
	if !ok {
		return fmt.Errorf("unexpected filter value %v", query.Filter[0].Value)
	}
	for _, rec := range q.byParent[parentID] {
		if err := emit(rec); err != nil {
			return err
		}
	}
	return nil
}

func rawNote(id, ticketID int64, title string) rest.Raw {
	return rest.Raw{"id": float64(id), "title": title, "ticketID": float64(ticketID)}
}

func noteRow(id, ticketID int64, title string) *models.TicketNote {
	return &models.TicketNote{ID: id, Title: title, TicketID: &ticketID}
}

func noteSyncer(t *testing.T, store ChildStore[*models.TicketNote], client Querier, parents []int64, ledger Ledger) *ChildSynchronizer[*models.TicketNote] {
	t.Helper()
	mapper, err := TicketNoteMapper(&fakeRefs{rows: map[string]map[int64]bool{
		"tickets": {100: true, 200: true},
	}})
	require.NoError(t, err)
	return NewChild(ChildConfig[*models.TicketNote]{
		Name:        "ticket_notes",
		Entity:      EntityTicketNotes,
		ParentField: "ticketID",
		ParentIDs:   func(context.Context) ([]int64, error) { return parents, nil },
		Client:      client,
		Store:       store,
		Mapper:      mapper,
		Jobs:        ledger,
	})
}

func TestChildSynchronizer(t *testing.T) {
	t.Run("reconciles every parent scope", func(t *testing.T) {
		store := newMemNoteStore()
		client := &parentQuerier{byParent: map[int64][]rest.Raw{
			100: {rawNote(1, 100, "first"), rawNote(2, 100, "second")},
			200: {rawNote(3, 200, "third")},
		}}
		s := noteSyncer(t, store, client, []int64{100, 200}, &memLedger{})

		res, err := s.Sync(context.Background(), false)
		require.NoError(t, err)
		assert.Equal(t, 3, res.Created)
		assert.Len(t, store.rows, 3)
	})

	t.Run("prunes within the parent scope even in partial mode", func(t *testing.T) {
		store := newMemNoteStore(
			noteRow(1, 100, "keep"),
			noteRow(2, 100, "gone upstream"),
			noteRow(3, 200, "other parent, untouched"),
		)
		client := &parentQuerier{byParent: map[int64][]rest.Raw{
			100: {rawNote(1, 100, "keep")},
		}}
		s := noteSyncer(t, store, client, []int64{100}, &memLedger{})

		res, err := s.Sync(context.Background(), false)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Deleted)
		_, ok := store.rows[2]
		assert.False(t, ok)
		_, ok = store.rows[3]
		assert.True(t, ok)
	})

	t.Run("one ledger row spans all parents", func(t *testing.T) {
		ledger := &memLedger{}
		client := &parentQuerier{byParent: map[int64][]rest.Raw{
			100: {rawNote(1, 100, "a")},
			200: {rawNote(2, 200, "b")},
		}}
		s := noteSyncer(t, newMemNoteStore(), client, []int64{100, 200}, ledger)

		_, err := s.Sync(context.Background(), true)
		require.NoError(t, err)
		assert.Equal(t, []string{"ticket_notes/full"}, ledger.begun)
		require.Len(t, ledger.finalized, 1)
		assert.Equal(t, 2, ledger.finalized[0].created)
	})

	t.Run("sync parent reconciles a single scope without the ledger", func(t *testing.T) {
		store := newMemNoteStore(noteRow(9, 100, "stale"))
		client := &parentQuerier{byParent: map[int64][]rest.Raw{
			100: {rawNote(1, 100, "fresh")},
		}}
		s := noteSyncer(t, store, client, nil, nil)

		res, err := s.SyncParent(context.Background(), 100)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Created)
		assert.Equal(t, 1, res.Deleted)
		_, ok := store.rows[9]
		assert.False(t, ok)
	})
}
