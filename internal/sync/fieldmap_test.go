package sync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerkhofftech/autotask-sync/internal/models"
	"github.com/kerkhofftech/autotask-sync/internal/rest"

	aterrors "github.com/kerkhofftech/autotask-sync/internal/errors"
)

type fakeRefs struct {
	rows map[string]map[int64]bool
}

func (f *fakeRefs) Exists(_ context.Context, table string, id int64) (bool, error) {
	return f.rows[table][id], nil
}

func TestFieldMapValidate(t *testing.T) {
	assign := func(*models.Company, rest.Raw) {}

	t.Run("accepts well formed map", func(t *testing.T) {
		m := FieldMap[*models.Company]{
			{Remote: "companyName", Assign: assign},
			{Remote: "phone", Assign: assign},
		}
		assert.NoError(t, m.Validate())
	})

	t.Run("rejects duplicate remote names", func(t *testing.T) {
		m := FieldMap[*models.Company]{
			{Remote: "companyName", Assign: assign},
			{Remote: "companyName", Assign: assign},
		}
		assert.ErrorContains(t, m.Validate(), "duplicate")
	})

	t.Run("rejects nil assigner", func(t *testing.T) {
		m := FieldMap[*models.Company]{{Remote: "companyName"}}
		assert.ErrorContains(t, m.Validate(), "assign")
	})

	t.Run("rejects empty remote name", func(t *testing.T) {
		m := FieldMap[*models.Company]{{Assign: assign}}
		assert.Error(t, m.Validate())
	})
}

func TestRecordMapperApply(t *testing.T) {
	refs := &fakeRefs{rows: map[string]map[int64]bool{
		"tickets":   {100: true},
		"resources": {7: true},
	}}

	mapper, err := TicketNoteMapper(refs)
	require.NoError(t, err)

	t.Run("maps attributes and relations", func(t *testing.T) {
		note := mapper.New(1)
		err := mapper.Apply(context.Background(), rest.Raw{
			"id":                float64(1),
			"title":             "Restart requested",
			"description":       "Customer asked for a service restart.",
			"ticketID":          float64(100),
			"creatorResourceID": float64(7),
		}, note)
		require.NoError(t, err)

		assert.Equal(t, "Restart requested", note.Title)
		require.NotNil(t, note.TicketID)
		assert.Equal(t, int64(100), *note.TicketID)
		require.NotNil(t, note.CreatorResourceID)
		assert.Equal(t, int64(7), *note.CreatorResourceID)
		assert.Nil(t, note.NoteTypeID)
	})

	t.Run("unresolved optional relation degrades to nil", func(t *testing.T) {
		note := mapper.New(2)
		err := mapper.Apply(context.Background(), rest.Raw{
			"id":                float64(2),
			"ticketID":          float64(100),
			"creatorResourceID": float64(999),
		}, note)
		require.NoError(t, err)
		assert.Nil(t, note.CreatorResourceID)
	})

	t.Run("unresolved required relation rejects the record", func(t *testing.T) {
		note := mapper.New(3)
		err := mapper.Apply(context.Background(), rest.Raw{
			"id":       float64(3),
			"ticketID": float64(555),
		}, note)
		require.Error(t, err)
		assert.True(t, aterrors.IsInvalidObject(err))
	})

	t.Run("absent required relation rejects the record", func(t *testing.T) {
		note := mapper.New(4)
		err := mapper.Apply(context.Background(), rest.Raw{"id": float64(4)}, note)
		require.Error(t, err)
		assert.True(t, aterrors.IsInvalidObject(err))
	})
}

func TestNewRecordMapper(t *testing.T) {
	t.Run("rejects incomplete relation", func(t *testing.T) {
		_, err := NewRecordMapper("Tickets",
			func(id int64) *models.Ticket { return &models.Ticket{ID: id} },
			nil,
			[]Relation[*models.Ticket]{{Remote: "companyID"}},
			&fakeRefs{})
		assert.Error(t, err)
	})

	t.Run("rejects nil factory", func(t *testing.T) {
		_, err := NewRecordMapper[*models.Ticket]("Tickets", nil, nil, nil, &fakeRefs{})
		assert.Error(t, err)
	})
}
