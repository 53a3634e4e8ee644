package extract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveTimezoneAbbreviations(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"2pm EST sharp", "America/New_York"},
		{"2pm PDT", "America/Los_Angeles"},
		{"14:00 UTC", "UTC"},
		{"noon GMT", "UTC"},
		{"9am JST", "Asia/Tokyo"},
		{"call at 5 AEST", "Australia/Sydney"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, ResolveTimezone(tc.text), "text: %s", tc.text)
	}
}

func TestResolveTimezoneIgnoresLowercaseTokens(t *testing.T) {
	// "est" inside ordinary words must not resolve as an abbreviation.
	require.Equal(t, DefaultTimezone, ResolveTimezone("the best restaurant nearby"))
}

func TestResolveTimezoneOffsets(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"starts UTC+9", "Asia/Tokyo"},
		{"starts GMT-5", "America/New_York"},
		{"starts UTC+05:30", "Asia/Kolkata"},
		{"starts utc + 1", "Europe/Paris"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, ResolveTimezone(tc.text), "text: %s", tc.text)
	}
}

func TestResolveTimezoneCities(t *testing.T) {
	require.Equal(t, "Europe/Paris", ResolveTimezone("dinner in Paris next week"))
	require.Equal(t, "America/Los_Angeles", ResolveTimezone("meetup in san francisco"))
	require.Equal(t, "Asia/Singapore", ResolveTimezone("Singapore office all-hands"))
}

func TestResolveTimezoneCountries(t *testing.T) {
	require.Equal(t, "Asia/Tokyo", ResolveTimezone("our partners in Japan"))
	require.Equal(t, "Europe/Berlin", ResolveTimezone("shipping to Germany"))
}

func TestResolveTimezoneAbbreviationWinsOverCity(t *testing.T) {
	require.Equal(t, "America/Chicago", ResolveTimezone("3pm CST, dial in from Tokyo"))
}

func TestResolveTimezoneDefault(t *testing.T) {
	require.Equal(t, "America/New_York", ResolveTimezone("lunch at noon with the team"))
}
