package sync

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kerkhofftech/autotask-sync/internal/rest"
)

// Timestamp layouts observed in API payloads. Zone-less values are treated
// as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// String returns the record's field as a string, or "" when absent.
func String(rec rest.Raw, field string) string {
	v, ok := rec[field]
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// TruncatedString returns the record's field as a string truncated to max
// runes. The API documents per-field ceilings but observed payloads
// occasionally exceed them.
func TruncatedString(rec rest.Raw, field string, max int) string {
	s := String(rec, field)
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// Int64 returns the record's field as an int64, or 0 when absent.
func Int64(rec rest.Raw, field string) int64 {
	p := Int64Ptr(rec, field)
	if p == nil {
		return 0
	}
	return *p
}

// Int64Ptr returns the record's field as an int64, or nil when the field
// is absent or null.
func Int64Ptr(rec rest.Raw, field string) *int64 {
	v, ok := rec[field]
	if !ok || v == nil {
		return nil
	}
	var n int64
	switch t := v.(type) {
	case float64:
		n = int64(t)
	case int64:
		n = t
	case int:
		n = int64(t)
	case json.Number:
		parsed, err := t.Int64()
		if err != nil {
			return nil
		}
		n = parsed
	case string:
		parsed, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return nil
		}
		n = parsed
	default:
		return nil
	}
	return &n
}

// Bool returns the record's field as a bool. The API encodes flags both as
// JSON booleans and as 0/1 numbers.
func Bool(rec rest.Raw, field string) bool {
	v, ok := rec[field]
	if !ok || v == nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return strings.EqualFold(t, "true")
	default:
		return false
	}
}

// Decimal2 returns the record's field as a decimal rounded to two places,
// or zero when absent. Money and hour fields never carry more precision.
func Decimal2(rec rest.Raw, field string) decimal.Decimal {
	v, ok := rec[field]
	if !ok || v == nil {
		return decimal.Zero
	}
	var d decimal.Decimal
	switch t := v.(type) {
	case float64:
		d = decimal.NewFromFloat(t)
	case string:
		parsed, err := decimal.NewFromString(t)
		if err != nil {
			return decimal.Zero
		}
		d = parsed
	case json.Number:
		parsed, err := decimal.NewFromString(t.String())
		if err != nil {
			return decimal.Zero
		}
		d = parsed
	default:
		return decimal.Zero
	}
	return d.Round(2)
}

// TimePtr returns the record's field as a UTC timestamp, or nil when the
// field is absent, null, empty or unparseable.
func TimePtr(rec rest.Raw, field string) *time.Time {
	s := String(rec, field)
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}
