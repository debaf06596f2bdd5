// Package models defines the locally mirrored PSA entities. Every entity
// row is keyed by the remote system's integer identifier; re-syncing the
// same remote record always resolves to the same local row.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Text length ceilings documented by the remote API. Observed payloads
// occasionally exceed them, so mapped values are truncated.
const (
	DescriptionMaxLen = 2000
	NoteMaxLen        = 3200
	TitleMaxLen       = 255
)

// CompleteStatusID is the remote system's canonical "complete" status
// value, shared by tickets and tasks.
const CompleteStatusID int64 = 5

func eqInt64Ptr(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func eqDecimal(a, b decimal.Decimal) bool {
	return a.Equal(b)
}
