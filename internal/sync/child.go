package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/kerkhofftech/autotask-sync/internal/logging"
	"github.com/kerkhofftech/autotask-sync/internal/models"
	"github.com/kerkhofftech/autotask-sync/internal/rest"
	"github.com/kerkhofftech/autotask-sync/internal/storage"

	aterrors "github.com/kerkhofftech/autotask-sync/internal/errors"
)

// ChildConfig assembles a ChildSynchronizer.
type ChildConfig[T Entity[T]] struct {
	// Name is the ledger entity name, e.g. "ticket_notes".
	Name string
	// Entity is the remote endpoint name, e.g. "TicketNotes".
	Entity string
	// ParentField is the remote filter field scoping a fetch to one parent.
	ParentField string
	// ParentIDs lists the local parent rows to walk during a full pass.
	ParentIDs func(ctx context.Context) ([]int64, error)
	Client    Querier
	Store     ChildStore[T]
	Mapper    Mapper[T]
	Jobs      Ledger
}

// ChildSynchronizer reconciles records that only exist inside a parent
// scope. Every parent fetch sees that parent's complete child set, so the
// scope is always pruned, independent of the full/partial mode of the
// surrounding run.
type ChildSynchronizer[T Entity[T]] struct {
	name        string
	entity      string
	parentField string
	parentIDs   func(ctx context.Context) ([]int64, error)
	client      Querier
	store       ChildStore[T]
	mapper      Mapper[T]
	jobs        Ledger
}

// NewChild builds a ChildSynchronizer from its configuration.
func NewChild[T Entity[T]](cfg ChildConfig[T]) *ChildSynchronizer[T] {
	return &ChildSynchronizer[T]{
		name:        cfg.Name,
		entity:      cfg.Entity,
		parentField: cfg.ParentField,
		parentIDs:   cfg.ParentIDs,
		client:      cfg.Client,
		store:       cfg.Store,
		mapper:      cfg.Mapper,
		jobs:        cfg.Jobs,
	}
}

// Name returns the ledger entity name.
func (s *ChildSynchronizer[T]) Name() string { return s.name }

// Sync walks every local parent and reconciles its children. One ledger
// row spans the whole pass. The full flag selects the ledger mode only;
// per-parent pruning happens either way.
func (s *ChildSynchronizer[T]) Sync(ctx context.Context, full bool) (res Result, err error) {
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

	parents, err := s.parentIDs(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to resolve %s parents: %w", s.name, err)
	}

	for _, parentID := range parents {
		parentRes, parentErr := s.syncParent(ctx, parentID)
		res.Created += parentRes.Created
		res.Updated += parentRes.Updated
		res.Skipped += parentRes.Skipped
		res.Deleted += parentRes.Deleted
		if parentErr != nil {
			err = parentErr
			return res, err
		}
	}

	logger.Info().
		Str("mode", mode).
		Int("parents", len(parents)).
		Int("created", res.Created).
		Int("updated", res.Updated).
		Int("skipped", res.Skipped).
		Int("deleted", res.Deleted).
		Msg("child sync complete")
	return res, nil
}

// SyncParent reconciles one parent's children: fetch the parent's complete
// remote child set, upsert each record, then prune local children the
// remote no longer holds. Used directly by single-record resync cascades.
func (s *ChildSynchronizer[T]) SyncParent(ctx context.Context, parentID int64) (Result, error) {
	logger := logging.Component(ctx, "sync."+s.name)
	ctx = logging.WithLogger(ctx, logger)
	return s.syncParent(ctx, parentID)
}

func (s *ChildSynchronizer[T]) syncParent(ctx context.Context, parentID int64) (Result, error) {
	res := Result{Entity: s.name}
	logger := logging.FromContext(ctx)

	pre, err := s.store.ListIDsByParent(ctx, parentID)
	if err != nil {
		return res, err
	}
	preRun := make(map[int64]struct{}, len(pre))
	for _, id := range pre {
		preRun[id] = struct{}{}
	}

	seen := make(map[int64]struct{})
	q := rest.Query{Filter: []rest.Filter{rest.Eq(s.parentField, parentID)}}
	err = s.client.Query(ctx, s.entity, q, func(rec rest.Raw) error {
		return s.reconcile(ctx, rec, seen, &res)
	})
	if err != nil {
		return res, err
	}

	var stale []int64
	for id := range preRun {
		if _, ok := seen[id]; !ok {
			stale = append(stale, id)
		}
	}
	deleted, err := s.store.Delete(ctx, stale)
	if err != nil {
		return res, err
	}
	res.Deleted += int(deleted)

	logger.Debug().
		Int64("parent", parentID).
		Int("created", res.Created).
		Int("updated", res.Updated).
		Int("deleted", res.Deleted).
		Msg("parent scope reconciled")
	return res, nil
}

func (s *ChildSynchronizer[T]) reconcile(ctx context.Context, rec rest.Raw, seen map[int64]struct{}, res *Result) error {
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
