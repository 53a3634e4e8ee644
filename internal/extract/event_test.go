package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)

func TestHasMeaningfulContent(t *testing.T) {
	require.True(t, Event{Title: "Team Sync"}.HasMeaningfulContent())
	require.True(t, Event{Date: "2026-08-28"}.HasMeaningfulContent())
	require.False(t, Event{StartTime: "14:00", Location: "Room 4"}.HasMeaningfulContent())
	require.False(t, Event{Title: "  "}.HasMeaningfulContent())
}

func TestApplyDefaultsFillsEmptyFields(t *testing.T) {
	event := Event{Title: "Team Sync"}.ApplyDefaults(testNow, DefaultTimezone)

	require.Equal(t, "Team Sync", event.Title)
	require.Equal(t, "2026-08-28", event.Date)
	require.Equal(t, "09:00", event.StartTime)
	require.Equal(t, "10:00", event.EndTime)
	require.Equal(t, "America/New_York", event.Timezone)
	require.Empty(t, event.Location)
	require.Empty(t, event.Description)
}

func TestApplyDefaultsKeepsExtractedValues(t *testing.T) {
	in := Event{
		Title:     "Team Sync",
		Date:      "2024-03-15",
		StartTime: "14:00",
		EndTime:   "15:00",
		Timezone:  "Europe/Paris",
	}
	out := in.ApplyDefaults(testNow, DefaultTimezone)
	require.Equal(t, in, out)
}

func TestApplyDefaultsIdempotent(t *testing.T) {
	once := Event{Title: "Team Sync"}.ApplyDefaults(testNow, DefaultTimezone)
	twice := once.ApplyDefaults(testNow, DefaultTimezone)
	require.Equal(t, once, twice)
}
