package sync

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerkhofftech/autotask-sync/internal/rest"
)

func TestTruncatedString(t *testing.T) {
	t.Run("short value passes through", func(t *testing.T) {
		rec := rest.Raw{"description": "short"}
		assert.Equal(t, "short", TruncatedString(rec, "description", 2000))
	})

	t.Run("overlong value is cut", func(t *testing.T) {
		rec := rest.Raw{"description": strings.Repeat("x", 2100)}
		assert.Len(t, TruncatedString(rec, "description", 2000), 2000)
	})

	t.Run("truncation counts runes", func(t *testing.T) {
		rec := rest.Raw{"title": "héllo wörld"}
		assert.Equal(t, "héllo", TruncatedString(rec, "title", 5))
	})

	t.Run("absent field is empty", func(t *testing.T) {
		assert.Empty(t, TruncatedString(rest.Raw{}, "description", 2000))
	})
}

func TestDecimal2(t *testing.T) {
	t.Run("rounds to two places", func(t *testing.T) {
		rec := rest.Raw{"hoursWorked": 1.256}
		assert.True(t, Decimal2(rec, "hoursWorked").Equal(decimal.RequireFromString("1.26")))
	})

	t.Run("accepts string numbers", func(t *testing.T) {
		rec := rest.Raw{"setupFee": "199.999"}
		assert.True(t, Decimal2(rec, "setupFee").Equal(decimal.RequireFromString("200.00")))
	})

	t.Run("absent and null are zero", func(t *testing.T) {
		assert.True(t, Decimal2(rest.Raw{}, "fee").IsZero())
		assert.True(t, Decimal2(rest.Raw{"fee": nil}, "fee").IsZero())
	})
}

func TestTimePtr(t *testing.T) {
	t.Run("parses rfc3339", func(t *testing.T) {
		rec := rest.Raw{"createDate": "2026-08-14T09:30:00Z"}
		got := TimePtr(rec, "createDate")
		require.NotNil(t, got)
		assert.Equal(t, time.Date(2026, 8, 14, 9, 30, 0, 0, time.UTC), *got)
	})

	t.Run("zone-less values are utc", func(t *testing.T) {
		rec := rest.Raw{"dueDateTime": "2026-08-14T09:30:00"}
		got := TimePtr(rec, "dueDateTime")
		require.NotNil(t, got)
		assert.Equal(t, time.Date(2026, 8, 14, 9, 30, 0, 0, time.UTC), *got)
	})

	t.Run("offsets normalize to utc", func(t *testing.T) {
		rec := rest.Raw{"createDate": "2026-08-14T11:30:00+02:00"}
		got := TimePtr(rec, "createDate")
		require.NotNil(t, got)
		assert.Equal(t, time.Date(2026, 8, 14, 9, 30, 0, 0, time.UTC), *got)
	})

	t.Run("absent empty and garbage are nil", func(t *testing.T) {
		assert.Nil(t, TimePtr(rest.Raw{}, "createDate"))
		assert.Nil(t, TimePtr(rest.Raw{"createDate": ""}, "createDate"))
		assert.Nil(t, TimePtr(rest.Raw{"createDate": "not a date"}, "createDate"))
	})
}

func TestInt64Ptr(t *testing.T) {
	t.Run("json numbers decode as float64", func(t *testing.T) {
		got := Int64Ptr(rest.Raw{"companyID": float64(42)}, "companyID")
		require.NotNil(t, got)
		assert.Equal(t, int64(42), *got)
	})

	t.Run("absent and null are nil", func(t *testing.T) {
		assert.Nil(t, Int64Ptr(rest.Raw{}, "companyID"))
		assert.Nil(t, Int64Ptr(rest.Raw{"companyID": nil}, "companyID"))
	})
}

func TestBool(t *testing.T) {
	assert.True(t, Bool(rest.Raw{"isActive": true}, "isActive"))
	assert.True(t, Bool(rest.Raw{"isActive": float64(1)}, "isActive"))
	assert.False(t, Bool(rest.Raw{"isActive": float64(0)}, "isActive"))
	assert.False(t, Bool(rest.Raw{}, "isActive"))
}
