package sync

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerkhofftech/autotask-sync/internal/models"
	"github.com/kerkhofftech/autotask-sync/internal/rest"
	"github.com/kerkhofftech/autotask-sync/internal/storage"

	aterrors "github.com/kerkhofftech/autotask-sync/internal/errors"
)

type memTicketStore struct {
	rows        map[int64]*models.Ticket
	dupOnCreate bool
}

func newMemTicketStore(rows ...*models.Ticket) *memTicketStore {
	s := &memTicketStore{rows: make(map[int64]*models.Ticket)}
	for _, r := range rows {
		s.rows[r.ID] = r
	}
	return s
}

func (s *memTicketStore) Get(_ context.Context, id int64) (*models.Ticket, bool, error) {
	t, ok := s.rows[id]
	if !ok {
		return nil, false, nil
	}
	copied := *t
	return &copied, true, nil
}

func (s *memTicketStore) Create(_ context.Context, t *models.Ticket) error {
	if s.dupOnCreate {
		return fmt.Errorf("ticket %d: %w", t.ID, storage.ErrDuplicate)
	}
	s.rows[t.ID] = t
	return nil
}

func (s *memTicketStore) Update(_ context.Context, t *models.Ticket) error {
	if _, ok := s.rows[t.ID]; !ok {
		return fmt.Errorf("ticket %d not found", t.ID)
	}
	s.rows[t.ID] = t
	return nil
}

func (s *memTicketStore) ListIDs(_ context.Context) ([]int64, error) {
	ids := make([]int64, 0, len(s.rows))
	for id := range s.rows {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *memTicketStore) Delete(_ context.Context, ids []int64) (int64, error) {
	var n int64
	for _, id := range ids {
		if _, ok := s.rows[id]; ok {
			delete(s.rows, id)
			n++
		}
	}
	return n, nil
}

type finalizeCall struct {
	created, updated, skipped, deleted int
	success                            bool
	message                            string
}

type memLedger struct {
	last      *time.Time
	begun     []string
	finalized []finalizeCall
}

func (l *memLedger) Begin(_ context.Context, entityName, mode string) (*models.SyncJob, error) {
	l.begun = append(l.begun, entityName+"/"+mode)
	return &models.SyncJob{ID: uuid.New(), EntityName: entityName, Mode: mode, StartTime: time.Now().UTC()}, nil
}

func (l *memLedger) Finalize(_ context.Context, job *models.SyncJob, created, updated, skipped, deleted int, success bool, message string) error {
	l.finalized = append(l.finalized, finalizeCall{created, updated, skipped, deleted, success, message})
	return nil
}

func (l *memLedger) LastSuccessfulStart(_ context.Context, _ string) (*time.Time, error) {
	return l.last, nil
}

type sliceFetcher struct {
	recs    []rest.Raw
	err     error
	windows []*time.Time
}

func (f *sliceFetcher) Fetch(_ context.Context, window *time.Time, emit func(rest.Raw) error) error {
	f.windows = append(f.windows, window)
	if f.err != nil {
		return f.err
	}
	for _, rec := range f.recs {
		if err := emit(rec); err != nil {
			return err
		}
	}
	return nil
}

func ticketSyncer(t *testing.T, store Store[*models.Ticket], fetcher Fetcher, ledger Ledger) *Synchronizer[*models.Ticket] {
	t.Helper()
	mapper, err := TicketMapper(&fakeRefs{rows: map[string]map[int64]bool{
		"statuses": {1: true, 5: true},
	}})
	require.NoError(t, err)
	return New(Config[*models.Ticket]{
		Name:    "tickets",
		Entity:  EntityTickets,
		Fetcher: fetcher,
		Store:   store,
		Mapper:  mapper,
		Jobs:    ledger,
	})
}

func rawTicket(id int64, title string) rest.Raw {
	return rest.Raw{"id": float64(id), "title": title, "ticketNumber": fmt.Sprintf("T%d", id), "status": float64(1)}
}

func TestSynchronizerSync(t *testing.T) {
	t.Run("creates new records", func(t *testing.T) {
		store := newMemTicketStore()
		ledger := &memLedger{}
		s := ticketSyncer(t, store, &sliceFetcher{recs: []rest.Raw{rawTicket(1, "a"), rawTicket(2, "b")}}, ledger)

		res, err := s.Sync(context.Background(), false)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Created)
		assert.Zero(t, res.Updated)
		assert.Zero(t, res.Deleted)
		assert.Len(t, store.rows, 2)
	})

	t.Run("second identical run skips everything", func(t *testing.T) {
		store := newMemTicketStore()
		ledger := &memLedger{}
		fetcher := &sliceFetcher{recs: []rest.Raw{rawTicket(1, "a"), rawTicket(2, "b")}}
		s := ticketSyncer(t, store, fetcher, ledger)

		_, err := s.Sync(context.Background(), false)
		require.NoError(t, err)

		res, err := s.Sync(context.Background(), false)
		require.NoError(t, err)
		assert.Zero(t, res.Created)
		assert.Zero(t, res.Updated)
		assert.Equal(t, 2, res.Skipped)
	})

	t.Run("changed record is updated in place", func(t *testing.T) {
		existing := &models.Ticket{ID: 7688, Title: "Monthy Services Checkup*", TicketNumber: "T7688"}
		one := int64(1)
		existing.StatusID = &one
		store := newMemTicketStore(existing)
		ledger := &memLedger{}
		s := ticketSyncer(t, store, &sliceFetcher{recs: []rest.Raw{rawTicket(7688, "Updated")}}, ledger)

		res, err := s.Sync(context.Background(), false)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Updated)
		assert.Zero(t, res.Created)
		assert.Equal(t, "Updated", store.rows[7688].Title)
		assert.Equal(t, int64(7688), store.rows[7688].ID)
		assert.Len(t, store.rows, 1)
	})

	t.Run("full run prunes stale rows", func(t *testing.T) {
		one := int64(1)
		store := newMemTicketStore(
			&models.Ticket{ID: 1, Title: "a", TicketNumber: "T1", StatusID: &one},
			&models.Ticket{ID: 2, Title: "b", TicketNumber: "T2", StatusID: &one},
		)
		ledger := &memLedger{}
		s := ticketSyncer(t, store, &sliceFetcher{recs: []rest.Raw{rawTicket(1, "a")}}, ledger)

		res, err := s.Sync(context.Background(), true)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Deleted)
		_, ok := store.rows[2]
		assert.False(t, ok)
		_, ok = store.rows[1]
		assert.True(t, ok)
	})

	t.Run("partial run never deletes", func(t *testing.T) {
		one := int64(1)
		store := newMemTicketStore(
			&models.Ticket{ID: 1, Title: "a", TicketNumber: "T1", StatusID: &one},
			&models.Ticket{ID: 2, Title: "b", TicketNumber: "T2", StatusID: &one},
		)
		ledger := &memLedger{}
		s := ticketSyncer(t, store, &sliceFetcher{recs: []rest.Raw{rawTicket(1, "a")}}, ledger)

		res, err := s.Sync(context.Background(), false)
		require.NoError(t, err)
		assert.Zero(t, res.Deleted)
		assert.Len(t, store.rows, 2)
	})

	t.Run("partial run passes last successful start as window", func(t *testing.T) {
		last := time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC)
		ledger := &memLedger{last: &last}
		fetcher := &sliceFetcher{}
		s := ticketSyncer(t, newMemTicketStore(), fetcher, ledger)

		_, err := s.Sync(context.Background(), false)
		require.NoError(t, err)
		require.Len(t, fetcher.windows, 1)
		require.NotNil(t, fetcher.windows[0])
		assert.Equal(t, last, *fetcher.windows[0])
	})

	t.Run("full run ignores the window", func(t *testing.T) {
		last := time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC)
		ledger := &memLedger{last: &last}
		fetcher := &sliceFetcher{}
		s := ticketSyncer(t, newMemTicketStore(), fetcher, ledger)

		_, err := s.Sync(context.Background(), true)
		require.NoError(t, err)
		require.Len(t, fetcher.windows, 1)
		assert.Nil(t, fetcher.windows[0])
	})

	t.Run("invalid record is skipped and run continues", func(t *testing.T) {
		store := newMemTicketStore()
		ledger := &memLedger{}
		// status 99 is not a known picklist row, but status is optional on
		// tickets, so instead use a record with no id at all plus a good one.
		recs := []rest.Raw{{"title": "no id"}, rawTicket(1, "a")}
		s := ticketSyncer(t, store, &sliceFetcher{recs: recs}, ledger)

		res, err := s.Sync(context.Background(), false)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Created)
		assert.Equal(t, 1, res.Skipped)
	})

	t.Run("duplicate insert race is skipped", func(t *testing.T) {
		store := newMemTicketStore()
		store.dupOnCreate = true
		ledger := &memLedger{}
		s := ticketSyncer(t, store, &sliceFetcher{recs: []rest.Raw{rawTicket(1, "a")}}, ledger)

		res, err := s.Sync(context.Background(), false)
		require.NoError(t, err)
		assert.Zero(t, res.Created)
		assert.Equal(t, 1, res.Skipped)
	})

	t.Run("failed run still finalizes the ledger row", func(t *testing.T) {
		ledger := &memLedger{}
		fetchErr := errors.New("zone lookup failed")
		s := ticketSyncer(t, newMemTicketStore(), &sliceFetcher{err: fetchErr}, ledger)

		_, err := s.Sync(context.Background(), false)
		require.Error(t, err)

		require.Len(t, ledger.finalized, 1)
		fin := ledger.finalized[0]
		assert.False(t, fin.success)
		assert.Contains(t, fin.message, "zone lookup failed")
	})

	t.Run("successful run finalizes with counts", func(t *testing.T) {
		ledger := &memLedger{}
		s := ticketSyncer(t, newMemTicketStore(), &sliceFetcher{recs: []rest.Raw{rawTicket(1, "a")}}, ledger)

		_, err := s.Sync(context.Background(), true)
		require.NoError(t, err)

		assert.Equal(t, []string{"tickets/full"}, ledger.begun)
		require.Len(t, ledger.finalized, 1)
		fin := ledger.finalized[0]
		assert.True(t, fin.success)
		assert.Equal(t, 1, fin.created)
		assert.Empty(t, fin.message)
	})
}

type fakeGetter struct {
	rec rest.Raw
	err error
}

func (g *fakeGetter) Get(_ context.Context, _ string, _ int64) (rest.Raw, error) {
	return g.rec, g.err
}

func TestSynchronizerSyncOne(t *testing.T) {
	newSyncer := func(t *testing.T, store Store[*models.Ticket], getter Getter) *Synchronizer[*models.Ticket] {
		mapper, err := TicketMapper(&fakeRefs{rows: map[string]map[int64]bool{"statuses": {1: true, 5: true}}})
		require.NoError(t, err)
		return New(Config[*models.Ticket]{
			Name:   "tickets",
			Entity: EntityTickets,
			Getter: getter,
			Store:  store,
			Mapper: mapper,
			Jobs:   &memLedger{},
		})
	}

	t.Run("upserts the fetched record", func(t *testing.T) {
		store := newMemTicketStore()
		s := newSyncer(t, store, &fakeGetter{rec: rawTicket(10, "hot ticket")})

		ticket, err := s.SyncOne(context.Background(), 10)
		require.NoError(t, err)
		require.NotNil(t, ticket)
		assert.Equal(t, "hot ticket", ticket.Title)
		assert.Len(t, store.rows, 1)
	})

	t.Run("remote 404 deletes the local row", func(t *testing.T) {
		one := int64(1)
		store := newMemTicketStore(&models.Ticket{ID: 10, Title: "stale", StatusID: &one})
		s := newSyncer(t, store, &fakeGetter{err: aterrors.NewHTTPError(http.StatusNotFound, "")})

		ticket, err := s.SyncOne(context.Background(), 10)
		require.NoError(t, err)
		assert.Nil(t, ticket)
		assert.Empty(t, store.rows)
	})

	t.Run("without getter it refuses", func(t *testing.T) {
		s := New(Config[*models.Ticket]{Name: "tickets", Store: newMemTicketStore(), Jobs: &memLedger{}})
		_, err := s.SyncOne(context.Background(), 1)
		assert.Error(t, err)
	})
}
