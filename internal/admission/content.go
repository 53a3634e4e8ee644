package admission

import (
	"strings"
	"unicode/utf8"
)

// Content screen bounds.
const (
	MaxContentLength = 50000
	maxLineLength    = 1000
	maxLines         = 1000

	// Repeated-block detection: a block of at least minRepeatUnit
	// characters appearing at least minRepeatCount times contiguously
	// (the block plus five repeats).
	minRepeatUnit  = 1000
	minRepeatCount = 6

	// A run of this many consecutive non-ASCII characters is rejected.
	maxNonASCIIRun = 1000
)

// injectionMarkers are script/URI-injection fragments that disqualify
// content outright.
var injectionMarkers = []string{"<script", "javascript:", "data:", "vbscript:"}

// ScreenContent validates and sanitizes request content. It returns the
// sanitized text and an empty reason on success, or a non-empty denial
// reason.
func ScreenContent(content string) (sanitized, reason string) {
	if content == "" {
		return "", "Content must be a non-empty string"
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return "", "Content too long. Maximum 50000 characters allowed"
	}

	lower := strings.ToLower(content)
	for _, marker := range injectionMarkers {
		if strings.Contains(lower, marker) {
			return "", "Content contains suspicious patterns"
		}
	}
	if hasLongNonASCIIRun(content, maxNonASCIIRun) {
		return "", "Content contains suspicious patterns"
	}
	if hasRepeatedBlock(content, minRepeatUnit, minRepeatCount) {
		return "", "Content contains suspicious patterns"
	}

	sanitized = strings.TrimSpace(stripControlChars(content))

	lines := strings.Split(sanitized, "\n")
	if len(lines) > maxLines {
		return "", "Content has too many lines (max 1000)"
	}
	for i, line := range lines {
		if utf8.RuneCountInString(line) > maxLineLength {
			runes := []rune(line)
			lines[i] = string(runes[:maxLineLength]) + "..."
		}
	}

	return strings.Join(lines, "\n"), ""
}

// stripControlChars removes ASCII control characters while keeping tab,
// newline and carriage return.
func stripControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			return r
		case r < 0x20 || r == 0x7F:
			return -1
		}
		return r
	}, s)
}

// hasLongNonASCIIRun reports whether the text contains at least limit
// consecutive non-ASCII characters.
func hasLongNonASCIIRun(s string, limit int) bool {
	run := 0
	for _, r := range s {
		if r > 0x7F {
			run++
			if run >= limit {
				return true
			}
		} else {
			run = 0
		}
	}
	return false
}

// hasRepeatedBlock detects a block of at least unit bytes appearing at
// least count times contiguously. A substring repeats with period p over
// count blocks exactly when bytes match their p-shifted counterparts for
// a run of (count-1)*p positions, so one shifted comparison pass per
// period suffices. Input length is already capped by MaxContentLength.
func hasRepeatedBlock(s string, unit, count int) bool {
	n := len(s)
	maxPeriod := n / count
	for p := unit; p <= maxPeriod; p++ {
		need := (count - 1) * p
		run := 0
		for i := 0; i+p < n; i++ {
			if s[i] == s[i+p] {
				run++
				if run >= need {
					return true
				}
			} else {
				run = 0
			}
		}
	}
	return false
}
