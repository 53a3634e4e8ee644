package extract

import (
	"strings"
	"time"
)

// Default values substituted for fields neither extraction path could fill.
const (
	DefaultTitle     = "Untitled Event"
	DefaultStartTime = "09:00"
	DefaultEndTime   = "10:00"
)

// Event is the structured calendar event produced by the extraction
// pipeline. All fields are plain strings in their wire form: date is an
// ISO 8601 calendar date, start/end times are 24-hour HH:MM, timezone is
// an IANA identifier.
type Event struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Timezone    string `json:"timezone"`
}

// HasMeaningfulContent reports whether the event carries enough extracted
// signal to be worth returning. It must be evaluated before ApplyDefaults,
// otherwise the defaults paper over a fully failed extraction.
func (e Event) HasMeaningfulContent() bool {
	return strings.TrimSpace(e.Title) != "" || strings.TrimSpace(e.Date) != ""
}

// ApplyDefaults fills every empty field with its fixed default. Applying it
// to an already-defaulted event is a no-op.
func (e Event) ApplyDefaults(now time.Time, defaultTimezone string) Event {
	if strings.TrimSpace(e.Title) == "" {
		e.Title = DefaultTitle
	}
	if strings.TrimSpace(e.Date) == "" {
		e.Date = now.Format("2006-01-02")
	}
	if strings.TrimSpace(e.StartTime) == "" {
		e.StartTime = DefaultStartTime
	}
	if strings.TrimSpace(e.EndTime) == "" {
		e.EndTime = DefaultEndTime
	}
	if strings.TrimSpace(e.Timezone) == "" {
		e.Timezone = defaultTimezone
	}
	return e
}
