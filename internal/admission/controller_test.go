package admission

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestController(clock *fakeClock) *Controller {
	return NewController(NewStoreWithClock(clock.Now), DefaultLimits)
}

func TestCheckRateBurstLimit(t *testing.T) {
	clock := newFakeClock()
	c := newTestController(clock)

	for i := 0; i < 5; i++ {
		d := c.CheckRate("1.2.3.4", false)
		require.True(t, d.Allowed, "request %d should be allowed", i+1)
		c.RecordOutcome("1.2.3.4", "/extract", true, false)
	}

	d := c.CheckRate("1.2.3.4", false)
	require.False(t, d.Allowed)
	require.Equal(t, "Too many rapid requests detected", d.Reason)
	require.Equal(t, 60, d.RetryAfter)
}

func TestCheckRateBurstWindowSlides(t *testing.T) {
	clock := newFakeClock()
	c := newTestController(clock)

	for i := 0; i < 5; i++ {
		c.RecordOutcome("1.2.3.4", "/extract", true, false)
	}
	require.False(t, c.CheckRate("1.2.3.4", false).Allowed)

	clock.Advance(11 * time.Second)
	require.True(t, c.CheckRate("1.2.3.4", false).Allowed)
}

func TestCheckRateMinuteLimit(t *testing.T) {
	clock := newFakeClock()
	c := newTestController(clock)

	// Spread records beyond the burst window so only the minute
	// threshold trips.
	for i := 0; i < 10; i++ {
		c.RecordOutcome("1.2.3.4", "/extract", true, false)
		clock.Advance(5 * time.Second)
	}

	d := c.CheckRate("1.2.3.4", false)
	require.False(t, d.Allowed)
	require.Equal(t, "Rate limit exceeded: too many requests per minute", d.Reason)
	require.Equal(t, 60, d.RetryAfter)
}

func TestCheckRateAIHourLimit(t *testing.T) {
	clock := newFakeClock()
	c := newTestController(clock)

	for i := 0; i < 20; i++ {
		c.RecordOutcome("1.2.3.4", "/extract", true, true)
		clock.Advance(2 * time.Minute)
	}

	// General limits still have headroom but the AI hour budget is spent.
	d := c.CheckRate("1.2.3.4", true)
	require.False(t, d.Allowed)
	require.Equal(t, "AI rate limit exceeded: too many AI requests per hour", d.Reason)
	require.Equal(t, 3600, d.RetryAfter)

	require.True(t, c.CheckRate("1.2.3.4", false).Allowed)
}

func TestCheckRateFailureGateAppliesToAIOnly(t *testing.T) {
	clock := newFakeClock()
	c := newTestController(clock)

	for i := 0; i < 10; i++ {
		c.RecordOutcome("1.2.3.4", "/extract", false, false)
		clock.Advance(2 * time.Minute)
	}

	d := c.CheckRate("1.2.3.4", true)
	require.False(t, d.Allowed)
	require.Equal(t, "Too many failed requests detected", d.Reason)
	require.Equal(t, 3600, d.RetryAfter)

	require.True(t, c.CheckRate("1.2.3.4", false).Allowed)
}

func TestCheckRateClientsAreIndependent(t *testing.T) {
	clock := newFakeClock()
	c := newTestController(clock)

	for i := 0; i < 5; i++ {
		c.RecordOutcome("1.2.3.4", "/extract", true, false)
	}

	require.False(t, c.CheckRate("1.2.3.4", false).Allowed)
	require.True(t, c.CheckRate("5.6.7.8", false).Allowed)
}

func TestNewControllerDefaultsZeroLimits(t *testing.T) {
	c := NewController(NewStore(), Limits{})
	require.Equal(t, DefaultLimits, c.Limits())
}

func TestAdmitRecordsDenials(t *testing.T) {
	clock := newFakeClock()
	store := NewStoreWithClock(clock.Now)
	c := NewController(store, DefaultLimits)

	req := Request{
		ClientID:   "1.2.3.4",
		Endpoint:   "/extract",
		AIRequest:  true,
		Content:    "Team meeting tomorrow",
		HasContent: true,
		UserAgent:  "Mozilla/5.0",
	}

	for i := 0; i < 5; i++ {
		result := c.Admit(req)
		require.True(t, result.Allowed)
		c.RecordOutcome(req.ClientID, req.Endpoint, true, true)
	}

	result := c.Admit(req)
	require.False(t, result.Allowed)

	// The denial itself was recorded and counts toward the windows.
	require.Equal(t, 6, store.CountSince("1.2.3.4", time.Minute, false))
}

func TestAdmitSuspiciousOrigin(t *testing.T) {
	clock := newFakeClock()
	c := newTestController(clock)

	result := c.Admit(Request{
		ClientID:   "1.2.3.4",
		Endpoint:   "/extract",
		Content:    "Team meeting tomorrow",
		HasContent: true,
		UserAgent:  "curl/8.4.0",
	})

	require.False(t, result.Allowed)
	require.True(t, result.Suspicious)
	require.Equal(t, 0, result.RetryAfter)
}

func TestAdmitSanitizesContent(t *testing.T) {
	clock := newFakeClock()
	c := newTestController(clock)

	result := c.Admit(Request{
		ClientID:   "1.2.3.4",
		Endpoint:   "/extract",
		Content:    "Team meeting\x00 tomorrow",
		HasContent: true,
		UserAgent:  "Mozilla/5.0",
	})

	require.True(t, result.Allowed)
	require.Equal(t, "Team meeting tomorrow", result.Sanitized)
}

func TestAdmitRejectsInvalidContent(t *testing.T) {
	clock := newFakeClock()
	c := newTestController(clock)

	result := c.Admit(Request{
		ClientID:   "1.2.3.4",
		Endpoint:   "/extract",
		Content:    "see <script>alert(1)</script>",
		HasContent: true,
		UserAgent:  "Mozilla/5.0",
	})

	require.False(t, result.Allowed)
	require.False(t, result.Suspicious)
	require.Equal(t, 0, result.RetryAfter)
}
