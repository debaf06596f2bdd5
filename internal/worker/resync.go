package worker

import (
	"context"

	"github.com/kerkhofftech/autotask-sync/internal/logging"
	"github.com/kerkhofftech/autotask-sync/internal/models"
	"github.com/kerkhofftech/autotask-sync/internal/storage"
	"github.com/kerkhofftech/autotask-sync/internal/sync"
)

// newTimeEntryResync builds the ticket-scoped time entry reconciler used
// only by resync cascades; bulk time entry syncing goes through the
// batched syncer.
func newTimeEntryResync(client sync.Client, repo *storage.TimeEntryRepository, refs sync.RefLookup) (*sync.ChildSynchronizer[*models.TimeEntry], error) {
	mapper, err := sync.TimeEntryMapper(refs)
	if err != nil {
		return nil, err
	}
	return sync.NewChild(sync.ChildConfig[*models.TimeEntry]{
		Name:        "time_entries",
		Entity:      sync.EntityTimeEntries,
		ParentField: "ticketID",
		Client:      client,
		Store:       repo,
		Mapper:      mapper,
	}), nil
}

// ResyncTicket refreshes one ticket from the remote system, typically on a
// webhook callback. A ticket that disappeared upstream is deleted locally.
// Children (notes and ticket-scoped time entries) are cascaded unless the
// ticket landed in the terminal complete status, where child churn no
// longer matters.
func (o *Orchestrator) ResyncTicket(ctx context.Context, id int64) error {
	logger := logging.Component(ctx, "worker.resync")
	ctx = logging.WithLogger(ctx, logger)

	ticket, err := o.tickets.SyncOne(ctx, id)
	if err != nil {
		return err
	}
	if ticket == nil {
		logger.Info().Int64("ticket", id).Msg("ticket absent after resync, no cascade")
		return nil
	}
	if ticket.Complete() {
		logger.Debug().Int64("ticket", id).Msg("ticket complete, skipping child cascade")
		return nil
	}

	if _, err := o.noteResync.SyncParent(ctx, id); err != nil {
		return err
	}
	if _, err := o.timeEntryResync.SyncParent(ctx, id); err != nil {
		return err
	}

	logger.Info().Int64("ticket", id).Msg("ticket resynced")
	return nil
}
