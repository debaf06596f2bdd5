// Package worker drives full and partial sync runs across all registered
// entities and serves single-record resyncs triggered by webhooks.
package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kerkhofftech/autotask-sync/internal/config"
	"github.com/kerkhofftech/autotask-sync/internal/logging"
	"github.com/kerkhofftech/autotask-sync/internal/models"
	"github.com/kerkhofftech/autotask-sync/internal/storage"
	"github.com/kerkhofftech/autotask-sync/internal/sync"
)

// ReportEntry is one entity's outcome within a run.
type ReportEntry struct {
	Entity string
	Result sync.Result
	Err    error
}

// Report aggregates a run across entities.
type Report struct {
	Entries []ReportEntry
}

// Failed returns the names of entities whose sync failed.
func (r Report) Failed() []string {
	var failed []string
	for _, e := range r.Entries {
		if e.Err != nil {
			failed = append(failed, e.Entity)
		}
	}
	return failed
}

// Orchestrator holds the entity registry in dependency order: picklists
// first, then parents before children, so relation lookups during mapping
// resolve against rows the same run already wrote.
type Orchestrator struct {
	order   []string
	syncers map[string]sync.EntitySyncer

	tickets         *sync.Synchronizer[*models.Ticket]
	noteResync      *sync.ChildSynchronizer[*models.TicketNote]
	timeEntryResync *sync.ChildSynchronizer[*models.TimeEntry]
}

// NewOrchestrator wires every entity syncer against the remote client and
// the local schema.
func NewOrchestrator(client sync.Client, db *storage.PostgresDB, cfg config.SyncConfig) (*Orchestrator, error) {
	refs := storage.NewRefChecker(db)
	jobs := storage.NewSyncJobRepository(db)

	companyRepo := storage.NewCompanyRepository(db)
	resourceRepo := storage.NewResourceRepository(db)
	contractRepo := storage.NewContractRepository(db)
	projectRepo := storage.NewProjectRepository(db)
	ticketRepo := storage.NewTicketRepository(db)
	taskRepo := storage.NewTaskRepository(db)
	timeEntryRepo := storage.NewTimeEntryRepository(db)
	serviceCallRepo := storage.NewServiceCallRepository(db)
	ticketNoteRepo := storage.NewTicketNoteRepository(db)

	o := &Orchestrator{syncers: make(map[string]sync.EntitySyncer)}

	for _, src := range sync.PicklistSources {
		picklistRepo, err := storage.NewPicklistRepository(db, src.Name)
		if err != nil {
			return nil, err
		}
		syncer, err := sync.NewPicklistSyncer(client, picklistRepo, jobs, src)
		if err != nil {
			return nil, err
		}
		o.register(syncer)
	}

	companies, err := sync.NewCompanySyncer(client, companyRepo, jobs)
	if err != nil {
		return nil, err
	}
	o.register(companies)

	resources, err := sync.NewResourceSyncer(client, resourceRepo, jobs)
	if err != nil {
		return nil, err
	}
	o.register(resources)

	contracts, err := sync.NewContractSyncer(client, contractRepo, refs, jobs)
	if err != nil {
		return nil, err
	}
	o.register(contracts)

	projects, err := sync.NewProjectSyncer(client, projectRepo, refs, jobs)
	if err != nil {
		return nil, err
	}
	o.register(projects)

	tickets, err := sync.NewTicketSyncer(client, ticketRepo, refs, jobs, cfg.CompletedWindow)
	if err != nil {
		return nil, err
	}
	o.register(tickets)
	o.tickets = tickets

	notes, err := sync.NewTicketNoteSyncer(client, ticketNoteRepo, refs, jobs, ticketRepo.ListIDs)
	if err != nil {
		return nil, err
	}
	o.register(notes)
	o.noteResync = notes

	serviceCalls, err := sync.NewServiceCallSyncer(client, serviceCallRepo, refs, jobs)
	if err != nil {
		return nil, err
	}
	o.register(serviceCalls)

	tasks, err := sync.NewTaskSyncer(client, taskRepo, refs, jobs, projectRepo.ActiveIDs, cfg.BatchQuerySize, cfg.CompletedWindow)
	if err != nil {
		return nil, err
	}
	o.register(tasks)

	timeEntries, err := sync.NewTimeEntrySyncer(client, timeEntryRepo, refs, jobs, ticketRepo.ListIDs, taskRepo.ListIDs, cfg.BatchQuerySize)
	if err != nil {
		return nil, err
	}
	o.register(timeEntries)

	o.timeEntryResync, err = newTimeEntryResync(client, timeEntryRepo, refs)
	if err != nil {
		return nil, err
	}

	return o, nil
}

func (o *Orchestrator) register(s sync.EntitySyncer) {
	o.order = append(o.order, s.Name())
	o.syncers[s.Name()] = s
}

// Entities returns the registered entity names in dependency order.
func (o *Orchestrator) Entities() []string {
	out := make([]string, len(o.order))
	copy(out, o.order)
	return out
}

// Run syncs the named entities, or every registered entity when names is
// empty, sequentially in dependency order. A failed entity is recorded and
// the run continues; the combined error lists every failure.
func (o *Orchestrator) Run(ctx context.Context, names []string, full bool) (Report, error) {
	logger := logging.Component(ctx, "worker")
	ctx = logging.WithLogger(ctx, logger)

	selected, err := o.resolve(names)
	if err != nil {
		return Report{}, err
	}

	var report Report
	var errs []error
	for _, name := range selected {
		result, syncErr := o.syncers[name].Sync(ctx, full)
		report.Entries = append(report.Entries, ReportEntry{Entity: name, Result: result, Err: syncErr})
		if syncErr != nil {
			logger.Error().Err(syncErr).Str("entity", name).Msg("entity sync failed")
			errs = append(errs, fmt.Errorf("%s: %w", name, syncErr))
		}
	}

	if len(errs) > 0 {
		return report, fmt.Errorf("%d of %d entities failed: %w",
			len(errs), len(selected), errors.Join(errs...))
	}
	return report, nil
}

// resolve maps the requested entity names onto the registry, preserving
// dependency order regardless of the order requested.
func (o *Orchestrator) resolve(names []string) ([]string, error) {
	if len(names) == 0 {
		return o.Entities(), nil
	}

	requested := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if _, ok := o.syncers[name]; !ok {
			return nil, fmt.Errorf("unknown entity %q (known: %s)", name, strings.Join(o.order, ", "))
		}
		requested[name] = true
	}

	var selected []string
	for _, name := range o.order {
		if requested[name] {
			selected = append(selected, name)
		}
	}
	return selected, nil
}
