package sync

import (
	"context"
	"time"

	"github.com/kerkhofftech/autotask-sync/internal/models"
	"github.com/kerkhofftech/autotask-sync/internal/rest"
)

// Remote endpoint names. The API is case-sensitive about these, so they
// live in one place instead of being spelled at call sites.
const (
	EntityCompanies    = "Companies"
	EntityResources    = "Resources"
	EntityContracts    = "Contracts"
	EntityProjects     = "Projects"
	EntityTickets      = "Tickets"
	EntityTasks        = "Tasks"
	EntityTimeEntries  = "TimeEntries"
	EntityServiceCalls = "ServiceCalls"
	EntityTicketNotes  = "TicketNotes"
)

// Client is the remote API surface the syncers consume.
type Client interface {
	Querier
	Getter
	PicklistReader
}

// NewCompanySyncer mirrors the Companies endpoint.
func NewCompanySyncer(client Client, store Store[*models.Company], jobs Ledger) (*Synchronizer[*models.Company], error) {
	mapper, err := NewRecordMapper(EntityCompanies,
		func(id int64) *models.Company { return &models.Company{ID: id} },
		FieldMap[*models.Company]{
			{Remote: "companyName", Assign: func(c *models.Company, r rest.Raw) { c.Name = TruncatedString(r, "companyName", models.TitleMaxLen) }},
			{Remote: "companyNumber", Assign: func(c *models.Company, r rest.Raw) { c.CompanyNumber = String(r, "companyNumber") }},
			{Remote: "phone", Assign: func(c *models.Company, r rest.Raw) { c.Phone = String(r, "phone") }},
			{Remote: "isActive", Assign: func(c *models.Company, r rest.Raw) { c.Active = Bool(r, "isActive") }},
			{Remote: "lastActivityDate", Assign: func(c *models.Company, r rest.Raw) { c.LastActivityDate = TimePtr(r, "lastActivityDate") }},
			{Remote: "createDate", Assign: func(c *models.Company, r rest.Raw) { c.CreateDate = TimePtr(r, "createDate") }},
		}, nil, nil)
	if err != nil {
		return nil, err
	}
	return New(Config[*models.Company]{
		Name:    "companies",
		Entity:  EntityCompanies,
		Fetcher: &QueryFetcher{Client: client, Entity: EntityCompanies, UpdatedField: "lastActivityDate"},
		Getter:  client,
		Store:   store,
		Mapper:  mapper,
		Jobs:    jobs,
	}), nil
}

// NewResourceSyncer mirrors the Resources endpoint. Resources carry no
// activity timestamp, so every run fetches the complete set.
func NewResourceSyncer(client Client, store Store[*models.Resource], jobs Ledger) (*Synchronizer[*models.Resource], error) {
	mapper, err := NewRecordMapper(EntityResources,
		func(id int64) *models.Resource { return &models.Resource{ID: id} },
		FieldMap[*models.Resource]{
			{Remote: "userName", Assign: func(res *models.Resource, r rest.Raw) { res.UserName = String(r, "userName") }},
			{Remote: "email", Assign: func(res *models.Resource, r rest.Raw) { res.Email = String(r, "email") }},
			{Remote: "firstName", Assign: func(res *models.Resource, r rest.Raw) { res.FirstName = String(r, "firstName") }},
			{Remote: "lastName", Assign: func(res *models.Resource, r rest.Raw) { res.LastName = String(r, "lastName") }},
			{Remote: "isActive", Assign: func(res *models.Resource, r rest.Raw) { res.Active = Bool(r, "isActive") }},
		}, nil, nil)
	if err != nil {
		return nil, err
	}
	return New(Config[*models.Resource]{
		Name:    "resources",
		Entity:  EntityResources,
		Fetcher: &QueryFetcher{Client: client, Entity: EntityResources},
		Getter:  client,
		Store:   store,
		Mapper:  mapper,
		Jobs:    jobs,
	}), nil
}

// NewContractSyncer mirrors the Contracts endpoint.
func NewContractSyncer(client Client, store Store[*models.Contract], refs RefLookup, jobs Ledger) (*Synchronizer[*models.Contract], error) {
	mapper, err := NewRecordMapper(EntityContracts,
		func(id int64) *models.Contract { return &models.Contract{ID: id} },
		FieldMap[*models.Contract]{
			{Remote: "contractName", Assign: func(c *models.Contract, r rest.Raw) { c.Name = TruncatedString(r, "contractName", models.TitleMaxLen) }},
			{Remote: "contractNumber", Assign: func(c *models.Contract, r rest.Raw) { c.ContractNumber = String(r, "contractNumber") }},
			{Remote: "status", Assign: func(c *models.Contract, r rest.Raw) { c.Status = Int64(r, "status") }},
			{Remote: "setupFee", Assign: func(c *models.Contract, r rest.Raw) { c.SetupFee = Decimal2(r, "setupFee") }},
			{Remote: "startDate", Assign: func(c *models.Contract, r rest.Raw) { c.StartDate = TimePtr(r, "startDate") }},
			{Remote: "endDate", Assign: func(c *models.Contract, r rest.Raw) { c.EndDate = TimePtr(r, "endDate") }},
		},
		[]Relation[*models.Contract]{
			{Remote: "companyID", Table: "companies", Assign: func(c *models.Contract, id *int64) { c.CompanyID = id }},
		}, refs)
	if err != nil {
		return nil, err
	}
	return New(Config[*models.Contract]{
		Name:    "contracts",
		Entity:  EntityContracts,
		Fetcher: &QueryFetcher{Client: client, Entity: EntityContracts},
		Getter:  client,
		Store:   store,
		Mapper:  mapper,
		Jobs:    jobs,
	}), nil
}

// NewProjectSyncer mirrors the Projects endpoint.
func NewProjectSyncer(client Client, store Store[*models.Project], refs RefLookup, jobs Ledger) (*Synchronizer[*models.Project], error) {
	mapper, err := NewRecordMapper(EntityProjects,
		func(id int64) *models.Project { return &models.Project{ID: id} },
		FieldMap[*models.Project]{
			{Remote: "projectName", Assign: func(p *models.Project, r rest.Raw) { p.Name = TruncatedString(r, "projectName", models.TitleMaxLen) }},
			{Remote: "projectNumber", Assign: func(p *models.Project, r rest.Raw) { p.ProjectNumber = String(r, "projectNumber") }},
			{Remote: "description", Assign: func(p *models.Project, r rest.Raw) { p.Description = TruncatedString(r, "description", models.DescriptionMaxLen) }},
			{Remote: "estimatedTime", Assign: func(p *models.Project, r rest.Raw) { p.EstimatedTime = Decimal2(r, "estimatedTime") }},
			{Remote: "startDateTime", Assign: func(p *models.Project, r rest.Raw) { p.StartDateTime = TimePtr(r, "startDateTime") }},
			{Remote: "endDateTime", Assign: func(p *models.Project, r rest.Raw) { p.EndDateTime = TimePtr(r, "endDateTime") }},
			{Remote: "completedDateTime", Assign: func(p *models.Project, r rest.Raw) { p.CompletedDate = TimePtr(r, "completedDateTime") }},
			{Remote: "lastActivityDateTime", Assign: func(p *models.Project, r rest.Raw) { p.LastActivity = TimePtr(r, "lastActivityDateTime") }},
		},
		[]Relation[*models.Project]{
			{Remote: "status", Table: "project_statuses", Assign: func(p *models.Project, id *int64) { p.StatusID = id }},
			{Remote: "companyID", Table: "companies", Assign: func(p *models.Project, id *int64) { p.CompanyID = id }},
			{Remote: "projectLeadResourceID", Table: "resources", Assign: func(p *models.Project, id *int64) { p.ProjectLeadID = id }},
			{Remote: "contractID", Table: "contracts", Assign: func(p *models.Project, id *int64) { p.ContractID = id }},
		}, refs)
	if err != nil {
		return nil, err
	}
	return New(Config[*models.Project]{
		Name:    "projects",
		Entity:  EntityProjects,
		Fetcher: &QueryFetcher{Client: client, Entity: EntityProjects, UpdatedField: "lastActivityDateTime"},
		Getter:  client,
		Store:   store,
		Mapper:  mapper,
		Jobs:    jobs,
	}), nil
}

// NewTicketSyncer mirrors the Tickets endpoint. Tickets in the terminal
// complete status are excluded unless they completed within the trailing
// window.
func NewTicketSyncer(client Client, store Store[*models.Ticket], refs RefLookup, jobs Ledger, completedWindow time.Duration) (*Synchronizer[*models.Ticket], error) {
	mapper, err := TicketMapper(refs)
	if err != nil {
		return nil, err
	}
	return New(Config[*models.Ticket]{
		Name:   "tickets",
		Entity: EntityTickets,
		Fetcher: &QueryFetcher{
			Client:       client,
			Entity:       EntityTickets,
			UpdatedField: "lastActivityDate",
			Conditions:   []Condition{CompletedWindow("status", "completedDate", completedWindow)},
		},
		Getter: client,
		Store:  store,
		Mapper: mapper,
		Jobs:   jobs,
	}), nil
}

// TicketMapper builds the ticket record mapper. It is shared by the bulk
// syncer and the webhook resync path.
func TicketMapper(refs RefLookup) (*RecordMapper[*models.Ticket], error) {
	return NewRecordMapper(EntityTickets,
		func(id int64) *models.Ticket { return &models.Ticket{ID: id} },
		FieldMap[*models.Ticket]{
			{Remote: "title", Assign: func(t *models.Ticket, r rest.Raw) { t.Title = TruncatedString(r, "title", models.TitleMaxLen) }},
			{Remote: "ticketNumber", Assign: func(t *models.Ticket, r rest.Raw) { t.TicketNumber = String(r, "ticketNumber") }},
			{Remote: "description", Assign: func(t *models.Ticket, r rest.Raw) { t.Description = TruncatedString(r, "description", models.DescriptionMaxLen) }},
			{Remote: "estimatedHours", Assign: func(t *models.Ticket, r rest.Raw) { t.EstimatedHours = Decimal2(r, "estimatedHours") }},
			{Remote: "createDate", Assign: func(t *models.Ticket, r rest.Raw) { t.CreateDate = TimePtr(r, "createDate") }},
			{Remote: "dueDateTime", Assign: func(t *models.Ticket, r rest.Raw) { t.DueDateTime = TimePtr(r, "dueDateTime") }},
			{Remote: "completedDate", Assign: func(t *models.Ticket, r rest.Raw) { t.CompletedDate = TimePtr(r, "completedDate") }},
			{Remote: "lastActivityDate", Assign: func(t *models.Ticket, r rest.Raw) { t.LastActivityDate = TimePtr(r, "lastActivityDate") }},
		},
		[]Relation[*models.Ticket]{
			{Remote: "status", Table: "statuses", Assign: func(t *models.Ticket, id *int64) { t.StatusID = id }},
			{Remote: "priority", Table: "priorities", Assign: func(t *models.Ticket, id *int64) { t.PriorityID = id }},
			{Remote: "queueID", Table: "queues", Assign: func(t *models.Ticket, id *int64) { t.QueueID = id }},
			{Remote: "source", Table: "sources", Assign: func(t *models.Ticket, id *int64) { t.SourceID = id }},
			{Remote: "companyID", Table: "companies", Assign: func(t *models.Ticket, id *int64) { t.CompanyID = id }},
			{Remote: "projectID", Table: "projects", Assign: func(t *models.Ticket, id *int64) { t.ProjectID = id }},
			{Remote: "contractID", Table: "contracts", Assign: func(t *models.Ticket, id *int64) { t.ContractID = id }},
			{Remote: "assignedResourceID", Table: "resources", Assign: func(t *models.Ticket, id *int64) { t.AssignedResourceID = id }},
		}, refs)
}

// NewTaskSyncer mirrors the Tasks endpoint. Tasks are fetched in batches
// scoped to active projects and filtered by the completed window.
func NewTaskSyncer(client Client, store Store[*models.Task], refs RefLookup, jobs Ledger,
	activeProjectIDs func(ctx context.Context) ([]int64, error), batchSize int, completedWindow time.Duration) (*Synchronizer[*models.Task], error) {
	mapper, err := NewRecordMapper(EntityTasks,
		func(id int64) *models.Task { return &models.Task{ID: id} },
		FieldMap[*models.Task]{
			{Remote: "title", Assign: func(t *models.Task, r rest.Raw) { t.Title = TruncatedString(r, "title", models.TitleMaxLen) }},
			{Remote: "taskNumber", Assign: func(t *models.Task, r rest.Raw) { t.TaskNumber = String(r, "taskNumber") }},
			{Remote: "description", Assign: func(t *models.Task, r rest.Raw) { t.Description = TruncatedString(r, "description", models.DescriptionMaxLen) }},
			{Remote: "estimatedHours", Assign: func(t *models.Task, r rest.Raw) { t.EstimatedHours = Decimal2(r, "estimatedHours") }},
			{Remote: "remainingHours", Assign: func(t *models.Task, r rest.Raw) { t.RemainingHours = Decimal2(r, "remainingHours") }},
			{Remote: "startDateTime", Assign: func(t *models.Task, r rest.Raw) { t.StartDateTime = TimePtr(r, "startDateTime") }},
			{Remote: "endDateTime", Assign: func(t *models.Task, r rest.Raw) { t.EndDateTime = TimePtr(r, "endDateTime") }},
			{Remote: "completedDateTime", Assign: func(t *models.Task, r rest.Raw) { t.CompletedDate = TimePtr(r, "completedDateTime") }},
			{Remote: "lastActivityDateTime", Assign: func(t *models.Task, r rest.Raw) { t.LastActivityDate = TimePtr(r, "lastActivityDateTime") }},
		},
		[]Relation[*models.Task]{
			{Remote: "status", Table: "statuses", Assign: func(t *models.Task, id *int64) { t.StatusID = id }},
			{Remote: "projectID", Table: "projects", Required: true, Assign: func(t *models.Task, id *int64) { t.ProjectID = id }},
			{Remote: "assignedResourceID", Table: "resources", Assign: func(t *models.Task, id *int64) { t.AssignedResourceID = id }},
		}, refs)
	if err != nil {
		return nil, err
	}
	return New(Config[*models.Task]{
		Name:   "tasks",
		Entity: EntityTasks,
		Fetcher: &BatchFetcher{
			Client:       client,
			Entity:       EntityTasks,
			ParentField:  "projectID",
			UpdatedField: "lastActivityDateTime",
			BatchSize:    batchSize,
			ParentIDs:    activeProjectIDs,
			Conditions:   []Condition{CompletedWindow("status", "completedDateTime", completedWindow)},
		},
		Getter: client,
		Store:  store,
		Mapper: mapper,
		Jobs:   jobs,
	}), nil
}

// NewTimeEntrySyncer mirrors the TimeEntries endpoint. Entries are reached
// through both parent kinds: batches over locally known ticket IDs, then
// over locally known task IDs.
func NewTimeEntrySyncer(client Client, store Store[*models.TimeEntry], refs RefLookup, jobs Ledger,
	ticketIDs, taskIDs func(ctx context.Context) ([]int64, error), batchSize int) (*Synchronizer[*models.TimeEntry], error) {
	mapper, err := TimeEntryMapper(refs)
	if err != nil {
		return nil, err
	}
	return New(Config[*models.TimeEntry]{
		Name:   "time_entries",
		Entity: EntityTimeEntries,
		Fetcher: MultiFetcher{
			&BatchFetcher{
				Client:       client,
				Entity:       EntityTimeEntries,
				ParentField:  "ticketID",
				UpdatedField: "lastModifiedDateTime",
				BatchSize:    batchSize,
				ParentIDs:    ticketIDs,
			},
			&BatchFetcher{
				Client:       client,
				Entity:       EntityTimeEntries,
				ParentField:  "taskID",
				UpdatedField: "lastModifiedDateTime",
				BatchSize:    batchSize,
				ParentIDs:    taskIDs,
			},
		},
		Getter: client,
		Store:  store,
		Mapper: mapper,
		Jobs:   jobs,
	}), nil
}

// TimeEntryMapper builds the time entry record mapper, shared by the bulk
// syncer and the resync cascade.
func TimeEntryMapper(refs RefLookup) (*RecordMapper[*models.TimeEntry], error) {
	return NewRecordMapper(EntityTimeEntries,
		func(id int64) *models.TimeEntry { return &models.TimeEntry{ID: id} },
		FieldMap[*models.TimeEntry]{
			{Remote: "summaryNotes", Assign: func(e *models.TimeEntry, r rest.Raw) { e.SummaryNotes = TruncatedString(r, "summaryNotes", models.NoteMaxLen) }},
			{Remote: "hoursWorked", Assign: func(e *models.TimeEntry, r rest.Raw) { e.HoursWorked = Decimal2(r, "hoursWorked") }},
			{Remote: "hoursToBill", Assign: func(e *models.TimeEntry, r rest.Raw) { e.HoursToBill = Decimal2(r, "hoursToBill") }},
			{Remote: "dateWorked", Assign: func(e *models.TimeEntry, r rest.Raw) { e.DateWorked = TimePtr(r, "dateWorked") }},
			{Remote: "startDateTime", Assign: func(e *models.TimeEntry, r rest.Raw) { e.StartDateTime = TimePtr(r, "startDateTime") }},
			{Remote: "endDateTime", Assign: func(e *models.TimeEntry, r rest.Raw) { e.EndDateTime = TimePtr(r, "endDateTime") }},
		},
		[]Relation[*models.TimeEntry]{
			{Remote: "resourceID", Table: "resources", Assign: func(e *models.TimeEntry, id *int64) { e.ResourceID = id }},
			{Remote: "ticketID", Table: "tickets", Assign: func(e *models.TimeEntry, id *int64) { e.TicketID = id }},
			{Remote: "taskID", Table: "tasks", Assign: func(e *models.TimeEntry, id *int64) { e.TaskID = id }},
		}, refs)
}

// NewServiceCallSyncer mirrors the ServiceCalls endpoint.
func NewServiceCallSyncer(client Client, store Store[*models.ServiceCall], refs RefLookup, jobs Ledger) (*Synchronizer[*models.ServiceCall], error) {
	mapper, err := NewRecordMapper(EntityServiceCalls,
		func(id int64) *models.ServiceCall { return &models.ServiceCall{ID: id} },
		FieldMap[*models.ServiceCall]{
			{Remote: "description", Assign: func(s *models.ServiceCall, r rest.Raw) { s.Description = TruncatedString(r, "description", models.DescriptionMaxLen) }},
			{Remote: "duration", Assign: func(s *models.ServiceCall, r rest.Raw) { s.Duration = Decimal2(r, "duration") }},
			{Remote: "isComplete", Assign: func(s *models.ServiceCall, r rest.Raw) { s.Complete = Bool(r, "isComplete") }},
			{Remote: "canceledDateTime", Assign: func(s *models.ServiceCall, r rest.Raw) { s.Canceled = TimePtr(r, "canceledDateTime") != nil }},
			{Remote: "startDateTime", Assign: func(s *models.ServiceCall, r rest.Raw) { s.StartDateTime = TimePtr(r, "startDateTime") }},
			{Remote: "endDateTime", Assign: func(s *models.ServiceCall, r rest.Raw) { s.EndDateTime = TimePtr(r, "endDateTime") }},
		},
		[]Relation[*models.ServiceCall]{
			{Remote: "companyID", Table: "companies", Assign: func(s *models.ServiceCall, id *int64) { s.CompanyID = id }},
		}, refs)
	if err != nil {
		return nil, err
	}
	return New(Config[*models.ServiceCall]{
		Name:    "service_calls",
		Entity:  EntityServiceCalls,
		Fetcher: &QueryFetcher{Client: client, Entity: EntityServiceCalls, UpdatedField: "lastModifiedDateTime"},
		Getter:  client,
		Store:   store,
		Mapper:  mapper,
		Jobs:    jobs,
	}), nil
}

// NewTicketNoteSyncer mirrors the TicketNotes endpoint. Notes only exist
// inside a ticket, so they are reconciled parent by parent with scoped
// pruning.
func NewTicketNoteSyncer(client Client, store ChildStore[*models.TicketNote], refs RefLookup, jobs Ledger,
	ticketIDs func(ctx context.Context) ([]int64, error)) (*ChildSynchronizer[*models.TicketNote], error) {
	mapper, err := TicketNoteMapper(refs)
	if err != nil {
		return nil, err
	}
	return NewChild(ChildConfig[*models.TicketNote]{
		Name:        "ticket_notes",
		Entity:      EntityTicketNotes,
		ParentField: "ticketID",
		ParentIDs:   ticketIDs,
		Client:      client,
		Store:       store,
		Mapper:      mapper,
		Jobs:        jobs,
	}), nil
}

// TicketNoteMapper builds the ticket note record mapper, shared by the
// bulk syncer and the resync cascade.
func TicketNoteMapper(refs RefLookup) (*RecordMapper[*models.TicketNote], error) {
	return NewRecordMapper(EntityTicketNotes,
		func(id int64) *models.TicketNote { return &models.TicketNote{ID: id} },
		FieldMap[*models.TicketNote]{
			{Remote: "title", Assign: func(n *models.TicketNote, r rest.Raw) { n.Title = TruncatedString(r, "title", models.TitleMaxLen) }},
			{Remote: "description", Assign: func(n *models.TicketNote, r rest.Raw) { n.Description = TruncatedString(r, "description", models.NoteMaxLen) }},
			{Remote: "createDateTime", Assign: func(n *models.TicketNote, r rest.Raw) { n.CreateDateTime = TimePtr(r, "createDateTime") }},
			{Remote: "lastActivityDate", Assign: func(n *models.TicketNote, r rest.Raw) { n.LastActivityDate = TimePtr(r, "lastActivityDate") }},
		},
		[]Relation[*models.TicketNote]{
			{Remote: "ticketID", Table: "tickets", Required: true, Assign: func(n *models.TicketNote, id *int64) { n.TicketID = id }},
			{Remote: "noteType", Table: "note_types", Assign: func(n *models.TicketNote, id *int64) { n.NoteTypeID = id }},
			{Remote: "creatorResourceID", Table: "resources", Assign: func(n *models.TicketNote, id *int64) { n.CreatorResourceID = id }},
		}, refs)
}

// PicklistSource names one remote picklist enumeration and the local table
// mirroring it.
type PicklistSource struct {
	// Name is both the ledger entity name and the local table.
	Name   string
	Entity string
	Field  string
}

// PicklistSources are the picklist enumerations kept locally. Statuses and
// priorities are shared by tickets and tasks; the ticket entity's
// enumeration is the canonical one.
var PicklistSources = []PicklistSource{
	{Name: "statuses", Entity: EntityTickets, Field: "status"},
	{Name: "priorities", Entity: EntityTickets, Field: "priority"},
	{Name: "queues", Entity: EntityTickets, Field: "queueID"},
	{Name: "sources", Entity: EntityTickets, Field: "source"},
	{Name: "project_statuses", Entity: EntityProjects, Field: "status"},
	{Name: "note_types", Entity: EntityTicketNotes, Field: "noteType"},
}

// NewPicklistSyncer mirrors one picklist enumeration into its local table.
func NewPicklistSyncer(client Client, store Store[*models.PicklistItem], jobs Ledger, src PicklistSource) (*Synchronizer[*models.PicklistItem], error) {
	mapper, err := NewRecordMapper(src.Name,
		func(id int64) *models.PicklistItem { return &models.PicklistItem{ID: id} },
		FieldMap[*models.PicklistItem]{
			{Remote: "label", Assign: func(p *models.PicklistItem, r rest.Raw) { p.Label = String(r, "label") }},
			{Remote: "isDefaultValue", Assign: func(p *models.PicklistItem, r rest.Raw) { p.IsDefaultValue = Bool(r, "isDefaultValue") }},
			{Remote: "sortOrder", Assign: func(p *models.PicklistItem, r rest.Raw) { p.SortOrder = int(Int64(r, "sortOrder")) }},
			{Remote: "isActive", Assign: func(p *models.PicklistItem, r rest.Raw) { p.IsActive = Bool(r, "isActive") }},
			{Remote: "isSystem", Assign: func(p *models.PicklistItem, r rest.Raw) { p.IsSystem = Bool(r, "isSystem") }},
		}, nil, nil)
	if err != nil {
		return nil, err
	}
	return New(Config[*models.PicklistItem]{
		Name:    src.Name,
		Entity:  src.Entity,
		Fetcher: &PicklistFetcher{Client: client, Entity: src.Entity, Field: src.Field},
		Store:   store,
		Mapper:  mapper,
		Jobs:    jobs,
	}), nil
}
