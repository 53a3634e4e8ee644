package extract

import (
	"regexp"
	"strings"
)

// DefaultTimezone is returned when no timezone signal is found in the text.
const DefaultTimezone = "America/New_York"

// abbreviationZones maps explicit timezone abbreviation tokens to IANA
// identifiers. US zones first, then UTC/GMT, then the common international
// abbreviations.
var abbreviationZones = map[string]string{
	"EST":  "America/New_York",
	"EDT":  "America/New_York",
	"CST":  "America/Chicago",
	"CDT":  "America/Chicago",
	"MST":  "America/Denver",
	"MDT":  "America/Denver",
	"PST":  "America/Los_Angeles",
	"PDT":  "America/Los_Angeles",
	"AKST": "America/Anchorage",
	"AKDT": "America/Anchorage",
	"HST":  "Pacific/Honolulu",
	"UTC":  "UTC",
	"GMT":  "UTC",
	"BST":  "Europe/London",
	"CET":  "Europe/Paris",
	"CEST": "Europe/Paris",
	"EET":  "Europe/Athens",
	"EEST": "Europe/Athens",
	"MSK":  "Europe/Moscow",
	"IST":  "Asia/Kolkata",
	"JST":  "Asia/Tokyo",
	"KST":  "Asia/Seoul",
	"SGT":  "Asia/Singapore",
	"HKT":  "Asia/Hong_Kong",
	"AEST": "Australia/Sydney",
	"AEDT": "Australia/Sydney",
	"NZST": "Pacific/Auckland",
	"NZDT": "Pacific/Auckland",
}

// offsetZones maps GMT/UTC numeric offsets to a representative IANA zone.
var offsetZones = map[string]string{
	"-11:00": "Pacific/Midway",
	"-10:00": "Pacific/Honolulu",
	"-09:00": "America/Anchorage",
	"-08:00": "America/Los_Angeles",
	"-07:00": "America/Denver",
	"-06:00": "America/Chicago",
	"-05:00": "America/New_York",
	"-04:00": "America/Caracas",
	"-03:00": "America/Sao_Paulo",
	"-02:00": "Atlantic/South_Georgia",
	"-01:00": "Atlantic/Azores",
	"+00:00": "UTC",
	"+01:00": "Europe/Paris",
	"+02:00": "Europe/Athens",
	"+03:00": "Europe/Moscow",
	"+04:00": "Asia/Dubai",
	"+05:00": "Asia/Karachi",
	"+05:30": "Asia/Kolkata",
	"+06:00": "Asia/Dhaka",
	"+07:00": "Asia/Bangkok",
	"+08:00": "Asia/Singapore",
	"+09:00": "Asia/Tokyo",
	"+10:00": "Australia/Sydney",
	"+12:00": "Pacific/Auckland",
}

// locationZones is matched as a case-insensitive substring against the text,
// covering city names and common colloquial forms.
var locationZones = []struct {
	Name string
	Zone string
}{
	{"new york", "America/New_York"},
	{"nyc", "America/New_York"},
	{"boston", "America/New_York"},
	{"chicago", "America/Chicago"},
	{"dallas", "America/Chicago"},
	{"denver", "America/Denver"},
	{"phoenix", "America/Phoenix"},
	{"los angeles", "America/Los_Angeles"},
	{"san francisco", "America/Los_Angeles"},
	{"seattle", "America/Los_Angeles"},
	{"anchorage", "America/Anchorage"},
	{"honolulu", "Pacific/Honolulu"},
	{"hawaii", "Pacific/Honolulu"},
	{"london", "Europe/London"},
	{"paris", "Europe/Paris"},
	{"berlin", "Europe/Berlin"},
	{"rome", "Europe/Rome"},
	{"athens", "Europe/Athens"},
	{"helsinki", "Europe/Helsinki"},
	{"cairo", "Africa/Cairo"},
	{"moscow", "Europe/Moscow"},
	{"dubai", "Asia/Dubai"},
	{"karachi", "Asia/Karachi"},
	{"mumbai", "Asia/Kolkata"},
	{"delhi", "Asia/Kolkata"},
	{"dhaka", "Asia/Dhaka"},
	{"bangkok", "Asia/Bangkok"},
	{"singapore", "Asia/Singapore"},
	{"shanghai", "Asia/Shanghai"},
	{"beijing", "Asia/Shanghai"},
	{"hong kong", "Asia/Hong_Kong"},
	{"taipei", "Asia/Taipei"},
	{"manila", "Asia/Manila"},
	{"tokyo", "Asia/Tokyo"},
	{"seoul", "Asia/Seoul"},
	{"sydney", "Australia/Sydney"},
	{"melbourne", "Australia/Melbourne"},
	{"auckland", "Pacific/Auckland"},
	{"fiji", "Pacific/Fiji"},
	{"sao paulo", "America/Sao_Paulo"},
	{"caracas", "America/Caracas"},
	{"toronto", "America/Toronto"},
	{"vancouver", "America/Vancouver"},
	{"mexico city", "America/Mexico_City"},
}

// countryZones matches country-name keywords when no city hit.
var countryZones = []struct {
	Name string
	Zone string
}{
	{"japan", "Asia/Tokyo"},
	{"south korea", "Asia/Seoul"},
	{"korea", "Asia/Seoul"},
	{"china", "Asia/Shanghai"},
	{"taiwan", "Asia/Taipei"},
	{"philippines", "Asia/Manila"},
	{"thailand", "Asia/Bangkok"},
	{"bangladesh", "Asia/Dhaka"},
	{"india", "Asia/Kolkata"},
	{"pakistan", "Asia/Karachi"},
	{"germany", "Europe/Berlin"},
	{"france", "Europe/Paris"},
	{"italy", "Europe/Rome"},
	{"greece", "Europe/Athens"},
	{"finland", "Europe/Helsinki"},
	{"egypt", "Africa/Cairo"},
	{"russia", "Europe/Moscow"},
	{"england", "Europe/London"},
	{"united kingdom", "Europe/London"},
	{"australia", "Australia/Sydney"},
	{"new zealand", "Pacific/Auckland"},
	{"brazil", "America/Sao_Paulo"},
	{"venezuela", "America/Caracas"},
	{"canada", "America/Toronto"},
	{"mexico", "America/Mexico_City"},
}

var (
	abbreviationToken = regexp.MustCompile(`\b([A-Z]{2,4})\b`)
	utcOffsetPattern  = regexp.MustCompile(`(?i)\b(?:GMT|UTC)\s*([+-])\s*(\d{1,2})(?::(\d{2}))?`)
)

// ResolveTimezone infers an IANA timezone identifier from free-form text.
// Resolution order, first hit wins: explicit abbreviation, numeric UTC
// offset, city name, country name. A UTC/GMT token that carries an offset
// ("UTC+9") is not treated as the bare abbreviation. It never returns an
// empty string.
func ResolveTimezone(text string) string {
	offsetSpans := utcOffsetPattern.FindAllStringIndex(text, -1)

	for _, loc := range abbreviationToken.FindAllStringIndex(text, -1) {
		if withinSpans(loc, offsetSpans) {
			continue
		}
		if zone, ok := abbreviationZones[text[loc[0]:loc[1]]]; ok {
			return zone
		}
	}

	if m := utcOffsetPattern.FindStringSubmatch(text); m != nil {
		if zone, ok := offsetZones[normalizeOffset(m[1], m[2], m[3])]; ok {
			return zone
		}
	}

	lower := strings.ToLower(text)
	for _, entry := range locationZones {
		if strings.Contains(lower, entry.Name) {
			return entry.Zone
		}
	}
	for _, entry := range countryZones {
		if strings.Contains(lower, entry.Name) {
			return entry.Zone
		}
	}

	return DefaultTimezone
}

func withinSpans(loc []int, spans [][]int) bool {
	for _, s := range spans {
		if loc[0] >= s[0] && loc[1] <= s[1] {
			return true
		}
	}
	return false
}

func normalizeOffset(sign, hours, minutes string) string {
	if len(hours) == 1 {
		hours = "0" + hours
	}
	if minutes == "" {
		minutes = "00"
	}
	if hours == "00" && minutes == "00" {
		// GMT-0 and GMT+0 are the same zone.
		sign = "+"
	}
	return sign + hours + ":" + minutes
}
