package admission

import (
	"time"

	"github.com/clipcal/clipcal/internal/metrics"
)

// Limits holds the admission thresholds. Values are counts; a request is
// denied when the existing count has already reached the threshold.
type Limits struct {
	BurstRequests   int           `json:"burstRequests" mapstructure:"burst_requests"`
	BurstWindow     time.Duration `json:"-" mapstructure:"burst_window"`
	PerMinute       int           `json:"perMinute" mapstructure:"per_minute"`
	PerHour         int           `json:"perHour" mapstructure:"per_hour"`
	PerDay          int           `json:"perDay" mapstructure:"per_day"`
	AIPerHour       int           `json:"aiPerHour" mapstructure:"ai_per_hour"`
	AIPerDay        int           `json:"aiPerDay" mapstructure:"ai_per_day"`
	FailuresPerHour int           `json:"failuresPerHour" mapstructure:"failures_per_hour"`
}

// DefaultLimits are the reference thresholds.
var DefaultLimits = Limits{
	BurstRequests:   5,
	BurstWindow:     10 * time.Second,
	PerMinute:       10,
	PerHour:         50,
	PerDay:          200,
	AIPerHour:       20,
	AIPerDay:        100,
	FailuresPerHour: 10,
}

// Decision is the per-request admission outcome. RetryAfter is in
// seconds and only set on rate-limit denials.
type Decision struct {
	Allowed    bool
	Reason     string
	RetryAfter int
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string, retryAfter int) Decision {
	return Decision{Reason: reason, RetryAfter: retryAfter}
}

// Controller composes the counter store, the abuse heuristics, and the
// content and origin screens into one allow/deny decision per request.
type Controller struct {
	store  *Store
	limits Limits
}

// NewController builds a controller over the given store. Zero-valued
// limit fields fall back to the defaults.
func NewController(store *Store, limits Limits) *Controller {
	if limits.BurstRequests <= 0 {
		limits.BurstRequests = DefaultLimits.BurstRequests
	}
	if limits.BurstWindow <= 0 {
		limits.BurstWindow = DefaultLimits.BurstWindow
	}
	if limits.PerMinute <= 0 {
		limits.PerMinute = DefaultLimits.PerMinute
	}
	if limits.PerHour <= 0 {
		limits.PerHour = DefaultLimits.PerHour
	}
	if limits.PerDay <= 0 {
		limits.PerDay = DefaultLimits.PerDay
	}
	if limits.AIPerHour <= 0 {
		limits.AIPerHour = DefaultLimits.AIPerHour
	}
	if limits.AIPerDay <= 0 {
		limits.AIPerDay = DefaultLimits.AIPerDay
	}
	if limits.FailuresPerHour <= 0 {
		limits.FailuresPerHour = DefaultLimits.FailuresPerHour
	}
	return &Controller{store: store, limits: limits}
}

// Limits returns the active thresholds.
func (c *Controller) Limits() Limits {
	return c.limits
}

// Store returns the underlying counter store.
func (c *Controller) Store() *Store {
	return c.store
}

// CheckRate applies the rate-limit and abuse checks in order,
// short-circuiting on the first failure. It does not record the request;
// callers record the final outcome via RecordOutcome.
func (c *Controller) CheckRate(clientID string, aiRequest bool) Decision {
	if c.store.CountSince(clientID, c.limits.BurstWindow, false) >= c.limits.BurstRequests {
		return deny("Too many rapid requests detected", 60)
	}
	if c.store.CountSince(clientID, time.Minute, false) >= c.limits.PerMinute {
		return deny("Rate limit exceeded: too many requests per minute", 60)
	}
	if c.store.CountSince(clientID, time.Hour, false) >= c.limits.PerHour {
		return deny("Rate limit exceeded: too many requests per hour", 3600)
	}
	if c.store.CountSince(clientID, retention, false) >= c.limits.PerDay {
		return deny("Rate limit exceeded: daily limit reached", 86400)
	}

	if aiRequest {
		if c.store.CountSince(clientID, time.Hour, true) >= c.limits.AIPerHour {
			return deny("AI rate limit exceeded: too many AI requests per hour", 3600)
		}
		if c.store.CountSince(clientID, retention, true) >= c.limits.AIPerDay {
			return deny("AI rate limit exceeded: daily AI limit reached", 86400)
		}
		// Repeated general failures gate further AI work. The coupling
		// is deliberate: a client that keeps failing cheap requests does
		// not get to spend expensive ones.
		if c.store.CountFailedSince(clientID, time.Hour) >= c.limits.FailuresPerHour {
			return deny("Too many failed requests detected", 3600)
		}
	}

	return allow()
}

// Request carries everything the admission layer inspects.
type Request struct {
	ClientID  string
	Endpoint  string
	AIRequest bool
	Content   string
	// HasContent distinguishes content-bearing requests from ones where
	// the content screen does not apply.
	HasContent bool
	UserAgent  string
	Referer    string
	Host       string
}

// Result is the outcome of a full admission pass.
type Result struct {
	Decision
	// Sanitized is the screened and sanitized content, valid only when
	// the request was allowed and carried content.
	Sanitized string
	// Suspicious marks origin-screen rejections, which are surfaced as
	// forbidden rather than rate-limited.
	Suspicious bool
}

// Admit runs the full admission pass: rate limits and abuse checks,
// the suspicious-origin screen, then the content screen. Denied attempts
// are recorded immediately so they count toward the abuse thresholds;
// allowed requests are recorded by the caller once the final outcome is
// known (see RecordOutcome).
func (c *Controller) Admit(req Request) Result {
	if d := c.CheckRate(req.ClientID, req.AIRequest); !d.Allowed {
		c.RecordOutcome(req.ClientID, req.Endpoint, false, req.AIRequest)
		metrics.RecordAdmission(metrics.AdmissionRateLimited)
		return Result{Decision: d}
	}

	if suspicious, reason := ScreenOrigin(req.UserAgent, req.Referer, req.Host); suspicious {
		c.RecordOutcome(req.ClientID, req.Endpoint, false, req.AIRequest)
		metrics.RecordAdmission(metrics.AdmissionSuspicious)
		return Result{Decision: deny(reason, 0), Suspicious: true}
	}

	var sanitized string
	if req.HasContent {
		clean, reason := ScreenContent(req.Content)
		if reason != "" {
			c.RecordOutcome(req.ClientID, req.Endpoint, false, req.AIRequest)
			metrics.RecordAdmission(metrics.AdmissionInvalidContent)
			return Result{Decision: deny(reason, 0)}
		}
		sanitized = clean
	}

	metrics.RecordAdmission(metrics.AdmissionAllowed)
	return Result{Decision: allow(), Sanitized: sanitized}
}

// RecordOutcome records a request's final outcome into the counter store.
func (c *Controller) RecordOutcome(clientID, endpoint string, success, aiRequest bool) {
	c.store.Record(clientID, endpoint, success, aiRequest)
}
