// Package ics renders a structured event as an iCalendar file. It is a
// pure formatting layer over the extraction pipeline's output.
package ics

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/clipcal/clipcal/internal/extract"
)

const prodID = "-//clipcal//clipcal//EN"

// Render serializes the event to iCalendar text. The event's date and
// times are interpreted in its timezone; an invalid timezone or
// unparseable date/time fails rather than silently shifting the event.
func Render(event extract.Event) (string, error) {
	loc, err := time.LoadLocation(event.Timezone)
	if err != nil {
		return "", fmt.Errorf("invalid timezone %q: %w", event.Timezone, err)
	}

	start, err := parseLocal(event.Date, event.StartTime, loc)
	if err != nil {
		return "", fmt.Errorf("invalid start: %w", err)
	}
	end, err := parseLocal(event.Date, event.EndTime, loc)
	if err != nil {
		return "", fmt.Errorf("invalid end: %w", err)
	}
	if !end.After(start) {
		// Events ending at or before their start get an hour by
		// convention, matching the defaulted 09:00-10:00 window.
		end = start.Add(time.Hour)
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(prodID)

	ev := cal.AddEvent(uuid.New().String() + "@clipcal")
	ev.SetCreatedTime(time.Now().UTC())
	ev.SetDtStampTime(time.Now().UTC())
	ev.SetStartAt(start.UTC())
	ev.SetEndAt(end.UTC())
	ev.SetSummary(event.Title)
	if event.Location != "" {
		ev.SetLocation(event.Location)
	}
	if event.Description != "" {
		ev.SetDescription(event.Description)
	}

	var buf bytes.Buffer
	if err := cal.SerializeTo(&buf); err != nil {
		return "", fmt.Errorf("serialize calendar: %w", err)
	}
	return buf.String(), nil
}

func parseLocal(date, clock string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", date+" "+clock, loc)
}

var unsafeFilename = regexp.MustCompile(`[^a-z0-9]+`)

// Filename derives a download filename from the event title.
func Filename(title string) string {
	name := unsafeFilename.ReplaceAllString(strings.ToLower(title), "_")
	name = strings.Trim(name, "_")
	if name == "" {
		name = "event"
	}
	return name + ".ics"
}
