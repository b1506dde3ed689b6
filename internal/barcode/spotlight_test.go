package barcode

import (
	"testing"
	"time"

	"github.com/smallbiznis/stocktake/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpotlightExpiresAfterTTL(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
	tracker := NewTracker(clk, 3*time.Second)

	tracker.Set(1, 10, "item-1", "Ketel One")

	spot, ok := tracker.Active(1, 10)
	require.True(t, ok)
	assert.Equal(t, "item-1", spot.ItemID)
	assert.Equal(t, "Ketel One", spot.Filter)

	clk.Advance(2 * time.Second)
	_, ok = tracker.Active(1, 10)
	assert.True(t, ok)

	// The spotlight lapses exactly at the deadline, not after it.
	clk.Advance(1 * time.Second)
	_, ok = tracker.Active(1, 10)
	assert.False(t, ok)
}

func TestSpotlightReplacedByNewScan(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
	tracker := NewTracker(clk, 3*time.Second)

	tracker.Set(1, 10, "item-1", "Ketel One")
	clk.Advance(2 * time.Second)
	tracker.Set(1, 10, "item-2", "Campari")

	// The replacement carries its own full TTL.
	clk.Advance(2 * time.Second)
	spot, ok := tracker.Active(1, 10)
	require.True(t, ok)
	assert.Equal(t, "item-2", spot.ItemID)
}

func TestSpotlightScopedPerRoom(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
	tracker := NewTracker(clk, 3*time.Second)

	tracker.Set(1, 10, "item-1", "Ketel One")

	_, ok := tracker.Active(1, 20)
	assert.False(t, ok)
	_, ok = tracker.Active(2, 10)
	assert.False(t, ok)
}

func TestSpotlightClear(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
	tracker := NewTracker(clk, 3*time.Second)

	tracker.Set(1, 10, "item-1", "Ketel One")
	tracker.Clear(1, 10)

	_, ok := tracker.Active(1, 10)
	assert.False(t, ok)
}

func TestTrackerDefaultTTL(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
	tracker := NewTracker(clk, 0)

	spot := tracker.Set(1, 10, "item-1", "Ketel One")
	assert.Equal(t, clk.Now().Add(3*time.Second), spot.ExpiresAt)
}
