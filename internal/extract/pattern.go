// Package extract implements the deterministic event extraction pipeline:
// a pattern-table fallback extractor, a timezone resolver, and the
// orchestrator that prefers the AI path and falls back to them.
package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// fieldRule is one entry in a per-field pattern table. Rules are evaluated
// in order; the first match whose normalized value passes validate wins.
// normalize receives the regexp submatches and may return "" to reject a
// candidate (e.g. an unparseable date) without stopping the scan.
type fieldRule struct {
	pattern   *regexp.Regexp
	normalize func(m []string) string
	validate  func(s string) bool
}

func applyRules(rules []fieldRule, text string) string {
	for _, rule := range rules {
		for _, m := range rule.pattern.FindAllStringSubmatch(text, -1) {
			value := strings.TrimSpace(m[len(m)-1])
			if rule.normalize != nil {
				value = rule.normalize(m)
			}
			if value == "" {
				continue
			}
			if rule.validate != nil && !rule.validate(value) {
				continue
			}
			return value
		}
	}
	return ""
}

// ExtractEvent runs the pattern tables against sanitized input text and
// returns whatever fields matched. Missing fields stay empty; defaults are
// the orchestrator's job.
func ExtractEvent(text string) Event {
	start, end := extractTimes(text)
	return Event{
		Title:       applyRules(titleRules, text),
		Date:        applyRules(dateRules, text),
		StartTime:   start,
		EndTime:     end,
		Location:    applyRules(locationRules, text),
		Description: extractDescription(text),
		Timezone:    ResolveTimezone(text),
	}
}

// --- Title ---

var titleRules = []fieldRule{
	{
		pattern:   regexp.MustCompile(`(?im)^[ \t]*(?:title|event(?:[ \t]+name)?|subject)[ \t]*[:\-][ \t]*(.+)$`),
		normalize: cleanTitle,
		validate:  titleLength,
	},
	{
		pattern:   regexp.MustCompile(`(?im)^[ \t]*(.{2,70}\b(?:meeting|conference|party|dinner|lunch|workshop|seminar|webinar|session|sync|standup|call|appointment|celebration|ceremony|concert|reception|interview))[ \t]*$`),
		normalize: cleanTitle,
		validate:  titleLength,
	},
	{
		pattern:   regexp.MustCompile(`(?im)^[ \t]*(.*\b(?:join us|meetup|gathering|get[ \-]together|hangout).*)$`),
		normalize: cleanTitle,
		validate:  titleLength,
	},
	{
		pattern:   regexp.MustCompile(`(?m)^[ \t]*([A-Z][^\n]{9,79})[ \t]*$`),
		normalize: cleanTitle,
		validate: func(s string) bool {
			return titleLength(s) && isTitleCased(s)
		},
	},
}

// isTitleCased distinguishes a heading-style line ("Team Sync Kickoff")
// from an ordinary sentence that happens to start with a capital. Short
// connective words are ignored.
func isTitleCased(s string) bool {
	for _, word := range strings.Fields(s) {
		word = strings.Trim(word, `"'(),.:;!?`)
		if len(word) <= 3 {
			continue
		}
		r := rune(word[0])
		if r >= 'a' && r <= 'z' {
			return false
		}
	}
	return true
}

func cleanTitle(m []string) string {
	s := strings.TrimSpace(m[len(m)-1])
	s = strings.Trim(s, `"'*#`)
	s = strings.TrimRight(s, " .,;:-")
	return strings.TrimSpace(s)
}

func titleLength(s string) bool {
	return len(s) >= 4 && len(s) < 100
}

// --- Date ---

var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

const monthAlternation = `january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept|sep|oct|nov|dec`

var dateRules = []fieldRule{
	{
		pattern:   regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`),
		normalize: func(m []string) string { return normalizeDate(m[1], m[2], m[3]) },
	},
	{
		pattern:   regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`),
		normalize: func(m []string) string { return normalizeDate(m[3], m[1], m[2]) },
	},
	{
		pattern:   regexp.MustCompile(`\b(\d{1,2})-(\d{1,2})-(\d{4})\b`),
		normalize: func(m []string) string { return normalizeDate(m[3], m[1], m[2]) },
	},
	{
		pattern: regexp.MustCompile(`(?i)\b(` + monthAlternation + `)\.?\s+(\d{1,2})(?:st|nd|rd|th)?(?:,)?\s+(\d{4})\b`),
		normalize: func(m []string) string {
			month, ok := monthNames[strings.ToLower(m[1])]
			if !ok {
				return ""
			}
			return normalizeDate(m[3], strconv.Itoa(int(month)), m[2])
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?(` + monthAlternation + `)\.?(?:,)?\s+(\d{4})\b`),
		normalize: func(m []string) string {
			month, ok := monthNames[strings.ToLower(m[2])]
			if !ok {
				return ""
			}
			return normalizeDate(m[3], strconv.Itoa(int(month)), m[1])
		},
	},
}

// normalizeDate parses year/month/day number strings and returns the ISO
// form, or "" when they do not form a real calendar date.
func normalizeDate(year, month, day string) string {
	y, err := strconv.Atoi(year)
	if err != nil {
		return ""
	}
	mo, err := strconv.Atoi(month)
	if err != nil {
		return ""
	}
	d, err := strconv.Atoi(day)
	if err != nil {
		return ""
	}
	candidate := fmt.Sprintf("%04d-%02d-%02d", y, mo, d)
	if _, err := time.Parse("2006-01-02", candidate); err != nil {
		return ""
	}
	return candidate
}

// --- Times ---

var (
	clockPattern = regexp.MustCompile(`(?i)\b(\d{1,2}):(\d{2})(?:\s*([ap])\.?m\.?)?\b`)
	// Bare "3 PM" form. The leading class keeps it from re-matching the
	// minutes of a H:MM occurrence.
	meridiemPattern = regexp.MustCompile(`(?i)(?:^|[^:\d])(\d{1,2})\s*([ap])\.?m\.?\b`)
)

// extractTimes collects every time-of-day mention, converts to 24-hour
// HH:MM, dedupes and sorts. The earliest becomes the start; the second
// earliest the end, repeating the start when only one time appears.
func extractTimes(text string) (start, end string) {
	seen := make(map[string]bool)
	var times []string

	add := func(hour, minute int, meridiem string) {
		switch strings.ToLower(meridiem) {
		case "a":
			if hour == 12 {
				hour = 0
			}
		case "p":
			if hour != 12 {
				hour += 12
			}
		}
		if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
			return
		}
		value := fmt.Sprintf("%02d:%02d", hour, minute)
		if !seen[value] {
			seen[value] = true
			times = append(times, value)
		}
	}

	for _, m := range clockPattern.FindAllStringSubmatch(text, -1) {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		add(hour, minute, m[3])
	}
	for _, m := range meridiemPattern.FindAllStringSubmatch(text, -1) {
		hour, _ := strconv.Atoi(m[1])
		add(hour, 0, m[2])
	}

	if len(times) == 0 {
		return "", ""
	}
	sort.Strings(times)
	if len(times) == 1 {
		return times[0], times[0]
	}
	return times[0], times[1]
}

// --- Location ---

var locationRules = []fieldRule{
	{
		pattern:   regexp.MustCompile(`(?im)^[ \t]*(?:location|venue|where|place|address)[ \t]*[:\-][ \t]*(.+)$`),
		normalize: cleanLocation,
		validate:  locationLength,
	},
	{
		pattern:   regexp.MustCompile(`(?i)\b(?:held at|taking place at|takes place at|located at|will be (?:held )?at|happening at)\s+([^\n.;]+)`),
		normalize: cleanLocation,
		validate:  locationLength,
	},
	{
		pattern:   regexp.MustCompile(`(?i)\b(\d{1,5}\s+[A-Za-z][A-Za-z' ]*\s(?:street|st|avenue|ave|road|rd|boulevard|blvd|lane|ln|drive|dr|court|ct|way|plaza|square|sq)\b\.?)`),
		normalize: cleanLocation,
		validate:  locationLength,
	},
}

func cleanLocation(m []string) string {
	s := strings.TrimSpace(m[len(m)-1])
	s = strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', '{', '}', '[', ']', '|', '\\':
			return -1
		}
		return r
	}, s)
	return strings.Trim(strings.TrimSpace(s), ",.")
}

func locationLength(s string) bool {
	return len(s) >= 4 && len(s) < 200
}

// --- Description ---

var (
	descriptionLabel    = regexp.MustCompile(`(?im)^[ \t]*(?:description|details|notes|about|info)[ \t]*[:\-][ \t]*(.+)$`)
	sentenceTerminators = regexp.MustCompile(`[.!?]`)
)

func extractDescription(text string) string {
	for _, m := range descriptionLabel.FindAllStringSubmatch(text, -1) {
		value := strings.TrimSpace(m[1])
		if len(value) >= 10 && len(value) < 500 {
			return value
		}
	}

	// No label: fall back to the first sentence of any substance.
	for _, sentence := range sentenceTerminators.Split(text, -1) {
		sentence = strings.TrimSpace(strings.ReplaceAll(sentence, "\n", " "))
		if len(sentence) > 20 {
			if len(sentence) > 200 {
				sentence = sentence[:200]
			}
			return sentence
		}
	}
	return ""
}
