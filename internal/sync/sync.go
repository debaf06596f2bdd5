// Package sync implements the reconciliation engine that mirrors remote
// PSA records into the local schema. A Synchronizer is composed from
// strategy values (a fetcher, a store, a mapper and the job ledger) rather
// than built by embedding, so every entity's behavior is visible at its
// construction site.
package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kerkhofftech/autotask-sync/internal/logging"
	"github.com/kerkhofftech/autotask-sync/internal/models"
	"github.com/kerkhofftech/autotask-sync/internal/rest"
	"github.com/kerkhofftech/autotask-sync/internal/storage"

	aterrors "github.com/kerkhofftech/autotask-sync/internal/errors"
)

// Entity is the constraint for locally mirrored records: a pointer type
// carrying the remote primary key and value comparison.
type Entity[T any] interface {
	RemoteID() int64
	Equal(other T) bool
}

// Store is the persistence boundary for one entity table.
type Store[T any] interface {
	Get(ctx context.Context, id int64) (T, bool, error)
	Create(ctx context.Context, record T) error
	Update(ctx context.Context, record T) error
	ListIDs(ctx context.Context) ([]int64, error)
	Delete(ctx context.Context, ids []int64) (int64, error)
}

// ChildStore additionally scopes ID listing to a parent record, enabling
// pruning within exactly one parent's children.
type ChildStore[T any] interface {
	Store[T]
	ListIDsByParent(ctx context.Context, parentID int64) ([]int64, error)
}

// Mapper turns one raw remote record into a typed local record.
type Mapper[T any] interface {
	// New returns a fresh record carrying only the remote primary key.
	New(id int64) T
	// Apply maps the raw record's attributes onto dst. A record that
	// cannot be mapped returns an InvalidObjectError.
	Apply(ctx context.Context, rec rest.Raw, dst T) error
}

// Fetcher streams raw remote records. A non-nil window restricts the fetch
// to records active since that time.
type Fetcher interface {
	Fetch(ctx context.Context, window *time.Time, emit func(rest.Raw) error) error
}

// Getter fetches a single remote record by ID.
type Getter interface {
	Get(ctx context.Context, entity string, id int64) (rest.Raw, error)
}

// Ledger is the durable record of sync runs.
type Ledger interface {
	Begin(ctx context.Context, entityName, mode string) (*models.SyncJob, error)
	Finalize(ctx context.Context, job *models.SyncJob, created, updated, skipped, deleted int, success bool, message string) error
	LastSuccessfulStart(ctx context.Context, entityName string) (*time.Time, error)
}

// Result tallies the outcome of one sync run.
type Result struct {
	Entity  string
	Created int
	Updated int
	Skipped int
	Deleted int
}

func (r Result) String() string {
	return fmt.Sprintf("%s: created=%d updated=%d skipped=%d deleted=%d",
		r.Entity, r.Created, r.Updated, r.Skipped, r.Deleted)
}

// EntitySyncer is what the orchestrator drives: one registered entity.
type EntitySyncer interface {
	Name() string
	Sync(ctx context.Context, full bool) (Result, error)
}

// Config assembles a Synchronizer from its strategy values.
type Config[T Entity[T]] struct {
	// Name is the ledger entity name, e.g. "tickets".
	Name string
	// Entity is the remote endpoint name, e.g. "Tickets".
	Entity  string
	Fetcher Fetcher
	// Getter is optional; it enables single-record resync.
	Getter Getter
	Store  Store[T]
	Mapper Mapper[T]
	Jobs   Ledger
}

// Synchronizer reconciles one remote entity into its local table.
type Synchronizer[T Entity[T]] struct {
	name    string
	entity  string
	fetcher Fetcher
	getter  Getter
	store   Store[T]
	mapper  Mapper[T]
	jobs    Ledger
}

// New builds a Synchronizer from its configuration.
func New[T Entity[T]](cfg Config[T]) *Synchronizer[T] {
	return &Synchronizer[T]{
		name:    cfg.Name,
		entity:  cfg.Entity,
		fetcher: cfg.Fetcher,
		getter:  cfg.Getter,
		store:   cfg.Store,
		mapper:  cfg.Mapper,
		jobs:    cfg.Jobs,
	}
}

// Name returns the ledger entity name.
func (s *Synchronizer[T]) Name() string { return s.name }

// Sync runs one reconciliation pass. In full mode every remote record is
// fetched and local rows no longer present remotely are pruned; in partial
// mode the fetch is restricted to records active since the last successful
// run and nothing is ever deleted.
func (s *Synchronizer[T]) Sync(ctx context.Context, full bool) (res Result, err error) {
	logger := logging.Component(ctx, "sync."+s.name)
	ctx = logging.WithLogger(ctx, logger)
	res.Entity = s.name

	mode := models.SyncModePartial
	if full {
		mode = models.SyncModeFull
	}

	job, err := s.jobs.Begin(ctx, s.name, mode)
	if err != nil {
		return res, fmt.Errorf("failed to begin %s sync: %w", s.name, err)
	}
	// The ledger row is closed on every exit path so a crash-free failed
	// run still leaves an auditable record.
	defer func() {
		message := ""
		if err != nil {
			message = err.Error()
		}
		if finErr := s.jobs.Finalize(ctx, job, res.Created, res.Updated, res.Skipped, res.Deleted, err == nil, message); finErr != nil {
			logger.Error().Err(finErr).Str("job", job.ID.String()).Msg("failed to finalize sync job")
			if err == nil {
				err = finErr
			}
		}
	}()

	var window *time.Time
	if !full {
		window, err = s.jobs.LastSuccessfulStart(ctx, s.name)
		if err != nil {
			return res, err
		}
	}

	var preRun map[int64]struct{}
	if full {
		ids, listErr := s.store.ListIDs(ctx)
		if listErr != nil {
			err = listErr
			return res, err
		}
		preRun = make(map[int64]struct{}, len(ids))
		for _, id := range ids {
			preRun[id] = struct{}{}
		}
	}

	seen := make(map[int64]struct{})
	err = s.fetcher.Fetch(ctx, window, func(rec rest.Raw) error {
		return s.reconcile(ctx, rec, seen, &res)
	})
	if err != nil {
		return res, err
	}

	if full {
		var stale []int64
		for id := range preRun {
			if _, ok := seen[id]; !ok {
				stale = append(stale, id)
			}
		}
		deleted, delErr := s.store.Delete(ctx, stale)
		if delErr != nil {
			err = delErr
			return res, err
		}
		res.Deleted = int(deleted)
	}

	logger.Info().
		Str("mode", mode).
		Int("created", res.Created).
		Int("updated", res.Updated).
		Int("skipped", res.Skipped).
		Int("deleted", res.Deleted).
		Msg("sync complete")
	return res, nil
}

// reconcile upserts one raw remote record. Record-level failures are
// logged and counted as skips; only infrastructure errors abort the run.
func (s *Synchronizer[T]) reconcile(ctx context.Context, rec rest.Raw, seen map[int64]struct{}, res *Result) error {
	logger := logging.FromContext(ctx)

	id, ok := rec.RemoteID()
	if !ok {
		logger.Warn().Msg("remote record carries no id, skipping")
		res.Skipped++
		return nil
	}

	mapped := s.mapper.New(id)
	if err := s.mapper.Apply(ctx, rec, mapped); err != nil {
		if aterrors.IsInvalidObject(err) {
			// Only this record is dropped; it stays unseen so a full run
			// will not treat it as confirmed present.
			logger.Warn().Err(err).Int64("id", id).Msg("skipping invalid record")
			res.Skipped++
			return nil
		}
		return err
	}
	seen[id] = struct{}{}

	existing, found, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}

	if !found {
		if err := s.store.Create(ctx, mapped); err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				// A concurrent run of the same entity won the insert race.
				logger.Warn().Int64("id", id).Msg("record created concurrently, skipping")
				res.Skipped++
				return nil
			}
			return err
		}
		res.Created++
		return nil
	}

	if existing.Equal(mapped) {
		res.Skipped++
		return nil
	}

	if err := s.store.Update(ctx, mapped); err != nil {
		return err
	}
	res.Updated++
	return nil
}

// SyncOne fetches a single remote record by ID and upserts it outside the
// windowed flow, typically on a webhook callback. A remote 404 deletes the
// local row. The returned record is nil when the record no longer exists
// remotely or was invalid.
func (s *Synchronizer[T]) SyncOne(ctx context.Context, id int64) (T, error) {
	var zero T
	if s.getter == nil {
		return zero, fmt.Errorf("%s does not support single-record sync", s.name)
	}
	logger := logging.Component(ctx, "sync."+s.name)
	ctx = logging.WithLogger(ctx, logger)

	rec, err := s.getter.Get(ctx, s.entity, id)
	if err != nil {
		if aterrors.IsNotFound(err) {
			if _, delErr := s.store.Delete(ctx, []int64{id}); delErr != nil {
				return zero, delErr
			}
			logger.Info().Int64("id", id).Msg("record gone upstream, deleted locally")
			return zero, nil
		}
		return zero, err
	}

	seen := make(map[int64]struct{})
	var res Result
	if err := s.reconcile(ctx, rec, seen, &res); err != nil {
		return zero, err
	}
	if _, ok := seen[id]; !ok {
		return zero, nil
	}

	record, found, err := s.store.Get(ctx, id)
	if err != nil {
		return zero, err
	}
	if !found {
		return zero, nil
	}
	return record, nil
}
