package admission

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScreenContentAcceptsNormalText(t *testing.T) {
	sanitized, reason := ScreenContent("Team Sync on 2024-03-15 at 2pm in Room 4")
	require.Empty(t, reason)
	require.Equal(t, "Team Sync on 2024-03-15 at 2pm in Room 4", sanitized)
}

func TestScreenContentRejectsEmpty(t *testing.T) {
	_, reason := ScreenContent("")
	require.Equal(t, "Content must be a non-empty string", reason)
}

func TestScreenContentLengthBoundary(t *testing.T) {
	_, reason := ScreenContent(strings.Repeat("a", 50000))
	require.Empty(t, reason)

	_, reason = ScreenContent(strings.Repeat("a", 50001))
	require.Equal(t, "Content too long. Maximum 50000 characters allowed", reason)
}

func TestScreenContentRejectsInjectionMarkers(t *testing.T) {
	cases := []string{
		"see <script>alert(1)</script>",
		"click javascript:alert(1)",
		"img src data:text/html;base64,xyz",
		"old school vbscript:msgbox",
		"mixed case <SCRIPT>alert(1)</SCRIPT>",
	}
	for _, content := range cases {
		_, reason := ScreenContent(content)
		require.Equal(t, "Content contains suspicious patterns", reason, "content: %s", content)
	}
}

func TestScreenContentStripsControlChars(t *testing.T) {
	sanitized, reason := ScreenContent("Team\x00 meeting\x1b at\ttwo\nMore details")
	require.Empty(t, reason)
	require.Equal(t, "Team meeting at\ttwo\nMore details", sanitized)
}

func TestScreenContentTruncatesLongLines(t *testing.T) {
	long := strings.Repeat("x", 1500)
	sanitized, reason := ScreenContent("intro\n" + long)
	require.Empty(t, reason)

	lines := strings.Split(sanitized, "\n")
	require.Len(t, lines, 2)
	require.Equal(t, strings.Repeat("x", 1000)+"...", lines[1])
}

func TestScreenContentRejectsTooManyLines(t *testing.T) {
	_, reason := ScreenContent(strings.Repeat("line\n", 1001))
	require.Equal(t, "Content has too many lines (max 1000)", reason)
}

func TestScreenContentRejectsLongNonASCIIRun(t *testing.T) {
	_, reason := ScreenContent("meeting " + strings.Repeat("é", 1000))
	require.Equal(t, "Content contains suspicious patterns", reason)

	_, reason = ScreenContent("café meeting at two")
	require.Empty(t, reason)
}

func TestScreenContentRejectsRepeatedBlocks(t *testing.T) {
	block := strings.Repeat("abcde fghij ", 100) // 1200 chars
	_, reason := ScreenContent(strings.Repeat(block, 6)[:7200])
	require.Equal(t, "Content contains suspicious patterns", reason)
}

func TestScreenContentAllowsFiveCopies(t *testing.T) {
	// The threshold is the block plus five repeats; five copies total
	// stay under it.
	block := strings.Repeat("z", 500) + strings.Repeat("y", 500)
	_, reason := ScreenContent(strings.Repeat(block, 5))
	require.Empty(t, reason)
}

func TestHasRepeatedBlock(t *testing.T) {
	block := strings.Repeat("z", 500) + strings.Repeat("y", 500)
	require.True(t, hasRepeatedBlock(strings.Repeat(block, 6), 1000, 6))
	require.False(t, hasRepeatedBlock(strings.Repeat(block, 5), 1000, 6))
	require.False(t, hasRepeatedBlock(strings.Repeat("short ", 100), 1000, 6))
}
