package barcode

import (
	"fmt"
	"sync"
	"time"

	"github.com/smallbiznis/stocktake/internal/clock"
)

// Spotlight is the transient highlight applied to a scan match. Filter is the
// item's display name, used to narrow the visible list to the matched row.
// It carries no ledger or persisted effect; letting it lapse changes nothing.
type Spotlight struct {
	ItemID    string    `json:"item_id"`
	Filter    string    `json:"filter"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Tracker holds the current spotlight per (org, room). Expiry is evaluated
// against the clock on read, so tests can drive it with a fake clock.
type Tracker struct {
	mu     sync.Mutex
	clock  clock.Clock
	ttl    time.Duration
	active map[string]Spotlight
}

func NewTracker(clk clock.Clock, ttl time.Duration) *Tracker {
	if ttl <= 0 {
		ttl = 3 * time.Second
	}
	return &Tracker{
		clock:  clk,
		ttl:    ttl,
		active: make(map[string]Spotlight),
	}
}

// Set spotlights an item, replacing any previous spotlight for the room.
func (t *Tracker) Set(orgID, roomID int64, itemID, filter string) Spotlight {
	t.mu.Lock()
	defer t.mu.Unlock()

	spot := Spotlight{
		ItemID:    itemID,
		Filter:    filter,
		ExpiresAt: t.clock.Now().Add(t.ttl),
	}
	t.active[key(orgID, roomID)] = spot
	return spot
}

// Active returns the room's spotlight if it has not lapsed.
func (t *Tracker) Active(orgID, roomID int64) (Spotlight, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	k := key(orgID, roomID)
	spot, ok := t.active[k]
	if !ok {
		return Spotlight{}, false
	}
	if !t.clock.Now().Before(spot.ExpiresAt) {
		delete(t.active, k)
		return Spotlight{}, false
	}
	return spot, true
}

// Clear drops the room's spotlight early.
func (t *Tracker) Clear(orgID, roomID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.active, key(orgID, roomID))
}

func key(orgID, roomID int64) string {
	return fmt.Sprintf("%d/%d", orgID, roomID)
}
