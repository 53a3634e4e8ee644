package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractEventFullAnnouncement(t *testing.T) {
	event := ExtractEvent("Team Sync — 2024-03-15, 14:00 to 15:00 EST at 123 Main St")

	require.Contains(t, event.Title, "Team Sync")
	require.Equal(t, "2024-03-15", event.Date)
	require.Equal(t, "14:00", event.StartTime)
	require.Equal(t, "15:00", event.EndTime)
	require.Equal(t, "America/New_York", event.Timezone)
	require.NotEmpty(t, event.Location)
}

func TestExtractEventNoDateNoTitle(t *testing.T) {
	// A plain sentence: no date pattern matches and the only candidate
	// title line is sentence-cased, so neither field fills.
	event := ExtractEvent("Meeting tomorrow at 2pm in the conference room")

	require.Empty(t, event.Title)
	require.Empty(t, event.Date)
	require.False(t, event.HasMeaningfulContent())
}

func TestTitleLabelRule(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"Title: Quarterly Planning\nMore text here", "Quarterly Planning"},
		{"Event: Board Review", "Board Review"},
		{"Event name: Annual Gala", "Annual Gala"},
		{"Subject: Budget Discussion.", "Budget Discussion"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, applyRules(titleRules, tc.text), "text: %s", tc.text)
	}
}

func TestTitleKeywordLineRule(t *testing.T) {
	title := applyRules(titleRules, "some intro\nQ3 Planning Meeting\nWhen: later")
	require.Equal(t, "Q3 Planning Meeting", title)
}

func TestTitleMeetupRule(t *testing.T) {
	title := applyRules(titleRules, "Join us for the spring gathering downtown")
	require.Equal(t, "Join us for the spring gathering downtown", title)
}

func TestTitleHeadingRule(t *testing.T) {
	require.Equal(t, "Annual Science Fair", applyRules(titleRules, "Annual Science Fair\nDoors open early."))

	// Sentence-cased lines are not headings.
	require.Empty(t, applyRules(titleRules, "Please arrive before the doors close"))
}

func TestTitleRejectsTooShort(t *testing.T) {
	require.Empty(t, applyRules(titleRules, "Title: ab"))
}

func TestDateFormats(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"on 2024-03-15", "2024-03-15"},
		{"on 2024-3-5", "2024-03-05"},
		{"on 03/15/2024", "2024-03-15"},
		{"on 3-15-2024", "2024-03-15"},
		{"on March 15, 2024", "2024-03-15"},
		{"on March 15th, 2024", "2024-03-15"},
		{"on Mar 15 2024", "2024-03-15"},
		{"on 15 March 2024", "2024-03-15"},
		{"on 15th of March 2024", "2024-03-15"},
		{"on Dec 1, 2025", "2025-12-01"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, applyRules(dateRules, tc.text), "text: %s", tc.text)
	}
}

func TestDateRejectsImpossible(t *testing.T) {
	require.Empty(t, applyRules(dateRules, "on 2024-02-30"))
	require.Empty(t, applyRules(dateRules, "on 13/45/2024"))
}

func TestExtractTimes(t *testing.T) {
	cases := []struct {
		text  string
		start string
		end   string
	}{
		{"from 14:00 to 15:00", "14:00", "15:00"},
		{"at 2pm", "14:00", "14:00"},
		{"at 2 PM until 4 PM", "14:00", "16:00"},
		{"9:30am - 11:00am", "09:30", "11:00"},
		{"doors at 12am", "00:00", "00:00"},
		{"lunch at 12pm", "12:00", "12:00"},
		{"at 11:05 pm", "23:05", "23:05"},
		{"no times here", "", ""},
	}
	for _, tc := range cases {
		start, end := extractTimes(tc.text)
		require.Equal(t, tc.start, start, "text: %s", tc.text)
		require.Equal(t, tc.end, end, "text: %s", tc.text)
	}
}

func TestExtractTimesDedupes(t *testing.T) {
	start, end := extractTimes("2pm, also written 14:00, ending 3pm")
	require.Equal(t, "14:00", start)
	require.Equal(t, "15:00", end)
}

func TestLocationRules(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"Location: Room 204, Building A", "Room 204, Building A"},
		{"Venue: The Grand Hall", "The Grand Hall"},
		{"The ceremony will be held at Riverside Park", "Riverside Park"},
		{"taking place at the Downtown Library", "the Downtown Library"},
		{"Meet at 123 Main Street tomorrow", "123 Main Street"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, applyRules(locationRules, tc.text), "text: %s", tc.text)
	}
}

func TestLocationStripsDangerousChars(t *testing.T) {
	got := applyRules(locationRules, "Location: Room <b>204</b> {main}")
	require.Equal(t, "Room b204/b main", got)
}

func TestLocationRejectsTooLong(t *testing.T) {
	require.Empty(t, applyRules(locationRules, "Location: "+strings.Repeat("x", 220)))
}

func TestExtractDescriptionLabel(t *testing.T) {
	got := extractDescription("Description: Bring your own laptop and notes.\nWhen: later")
	require.Equal(t, "Bring your own laptop and notes.", got)
}

func TestExtractDescriptionFirstSentence(t *testing.T) {
	got := extractDescription("We will review the quarterly numbers together. Snacks provided.")
	require.Equal(t, "We will review the quarterly numbers together", got)
}

func TestExtractDescriptionTruncates(t *testing.T) {
	got := extractDescription(strings.Repeat("w", 300) + ". next")
	require.Len(t, got, 200)
}

func TestExtractDescriptionEmpty(t *testing.T) {
	require.Empty(t, extractDescription("short. tiny. no"))
}
