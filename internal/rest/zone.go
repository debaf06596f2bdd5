package rest

import (
	"strings"
	"sync"
)

// ZoneCache holds the resolved API base URL for a credential set. The zone
// assigned to an account does not change within a credential's lifetime, so
// the cache is populated on the first successful lookup and read thereafter.
// Invalidate is an explicit operator action; there is no automatic expiry.
type ZoneCache struct {
	mu  sync.Mutex
	url string
}

// NewZoneCache returns an empty, unresolved zone cache.
func NewZoneCache() *ZoneCache {
	return &ZoneCache{}
}

// Get returns the cached API base URL, or "" when unresolved.
func (z *ZoneCache) Get() string {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.url
}

// Set stores a resolved API base URL.
func (z *ZoneCache) Set(url string) {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.url = strings.TrimRight(url, "/")
}

// Invalidate clears the cached zone so the next request performs a fresh
// lookup.
func (z *ZoneCache) Invalidate() {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.url = ""
}

// DefaultZoneCache is the process-wide zone cache shared by clients that do
// not supply their own.
var DefaultZoneCache = &ZoneCache{}
