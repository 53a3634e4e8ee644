package admission

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock returns a clock function backed by a mutable instant.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)}
}

func TestStoreCountSince(t *testing.T) {
	clock := newFakeClock()
	store := NewStoreWithClock(clock.Now)

	store.Record("1.2.3.4", "/extract", true, false)
	store.Record("1.2.3.4", "/extract", true, false)
	store.Record("5.6.7.8", "/extract", true, false)

	require.Equal(t, 2, store.CountSince("1.2.3.4", time.Minute, false))
	require.Equal(t, 1, store.CountSince("5.6.7.8", time.Minute, false))
	require.Equal(t, 0, store.CountSince("9.9.9.9", time.Minute, false))
}

func TestStoreCountSinceWindowExpiry(t *testing.T) {
	clock := newFakeClock()
	store := NewStoreWithClock(clock.Now)

	store.Record("1.2.3.4", "/extract", true, false)
	clock.Advance(59 * time.Second)
	require.Equal(t, 1, store.CountSince("1.2.3.4", time.Minute, false))

	clock.Advance(2 * time.Second)
	require.Equal(t, 0, store.CountSince("1.2.3.4", time.Minute, false))
	// Still visible in the hourly window.
	require.Equal(t, 1, store.CountSince("1.2.3.4", time.Hour, false))
}

func TestStoreAICountsSeparate(t *testing.T) {
	clock := newFakeClock()
	store := NewStoreWithClock(clock.Now)

	store.Record("1.2.3.4", "/extract", true, false)
	store.Record("1.2.3.4", "/extract", true, true)

	require.Equal(t, 2, store.CountSince("1.2.3.4", time.Hour, false))
	require.Equal(t, 1, store.CountSince("1.2.3.4", time.Hour, true))
}

func TestStoreCountFailedSince(t *testing.T) {
	clock := newFakeClock()
	store := NewStoreWithClock(clock.Now)

	store.Record("1.2.3.4", "/extract", false, false)
	store.Record("1.2.3.4", "/extract", true, false)
	store.Record("1.2.3.4", "/extract", false, false)

	require.Equal(t, 2, store.CountFailedSince("1.2.3.4", time.Hour))
}

func TestStoreRetentionBound(t *testing.T) {
	clock := newFakeClock()
	store := NewStoreWithClock(clock.Now)

	store.Record("1.2.3.4", "/extract", true, false)
	clock.Advance(25 * time.Hour)

	// Entries past retention never count, even for large windows.
	require.Equal(t, 0, store.CountSince("1.2.3.4", 48*time.Hour, false))
}

func TestStoreReset(t *testing.T) {
	clock := newFakeClock()
	store := NewStoreWithClock(clock.Now)

	store.Record("1.2.3.4", "/extract", true, true)
	store.Reset("1.2.3.4")

	require.Equal(t, 0, store.CountSince("1.2.3.4", time.Hour, false))
	require.Equal(t, 0, store.CountSince("1.2.3.4", time.Hour, true))
}

func TestStoreCounters(t *testing.T) {
	clock := newFakeClock()
	store := NewStoreWithClock(clock.Now)

	store.Record("1.2.3.4", "/extract", true, true)
	store.Record("1.2.3.4", "/extract", false, false)

	counters := store.Counters("1.2.3.4")
	require.Equal(t, "1.2.3.4", counters.ClientID)
	require.Equal(t, 2, counters.RequestsMinute)
	require.Equal(t, 2, counters.RequestsHour)
	require.Equal(t, 2, counters.RequestsDay)
	require.Equal(t, 1, counters.AIRequestsHour)
	require.Equal(t, 1, counters.AIRequestsDay)
	require.Equal(t, 1, counters.FailedRequestsHour)
}

func TestStoreSweepRemovesIdleClients(t *testing.T) {
	clock := newFakeClock()
	store := NewStoreWithClock(clock.Now)

	store.Record("1.2.3.4", "/extract", true, false)
	clock.Advance(1 * time.Hour)
	store.Record("5.6.7.8", "/extract", true, false)
	clock.Advance(23*time.Hour + time.Minute)

	// First client fully expired, second still within retention.
	store.Sweep()
	require.Equal(t, 1, store.ClientCount())
	require.Equal(t, 0, store.CountSince("1.2.3.4", 48*time.Hour, false))
}
