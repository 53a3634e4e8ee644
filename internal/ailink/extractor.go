// Package ailink wraps a remote structured-completion provider behind a
// fixed prompt contract for event extraction, with bounded retry on
// transient failures and best-effort repair of the returned JSON.
package ailink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/clipcal/clipcal/internal/ailink/driver"
	"github.com/clipcal/clipcal/internal/ailink/driver/openai"
	"github.com/clipcal/clipcal/internal/extract"
	"github.com/clipcal/clipcal/internal/observability"
)

// systemPrompt is the fixed contract: the model must answer with a single
// JSON object holding exactly the six event fields, empty strings for
// anything it cannot infer, and the default zone when no timezone signal
// exists in the text.
const systemPrompt = `You are an assistant that extracts calendar event information from text.
Extract the following if available:
- Event title
- Date (in YYYY-MM-DD format)
- Start time (in 24-hour HH:MM format)
- End time (in 24-hour HH:MM format)
- Location
- Description
- Timezone (an IANA identifier inferred from the text)

Respond with only a JSON object using these exact keys:
{
  "title": "string",
  "date": "YYYY-MM-DD",
  "startTime": "HH:MM",
  "endTime": "HH:MM",
  "location": "string",
  "description": "string",
  "timezone": "IANA identifier"
}

Use an empty string for any field you cannot determine, except timezone:
when the text gives no timezone signal, use "` + extract.DefaultTimezone + `".`

// Extractor asks a completion provider to structure raw text into an
// event. It satisfies the orchestrator's AIClient contract.
type Extractor struct {
	driver driver.Driver
	cfg    Config

	// sleep is swapped in tests to avoid real backoff delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewExtractor builds an extractor for the configured provider. Only the
// openai-compatible driver is currently wired; unknown providers fall
// through to it since most hosted APIs speak the same shape.
func NewExtractor(cfg Config) *Extractor {
	cfg = cfg.withDefaults()
	client := openai.NewClient(cfg.BaseURL, cfg.APIKey)
	return &Extractor{
		driver: client,
		cfg:    cfg,
		sleep:  sleepContext,
	}
}

// NewExtractorWithDriver builds an extractor around an explicit driver.
func NewExtractorWithDriver(d driver.Driver, cfg Config) *Extractor {
	return &Extractor{
		driver: d,
		cfg:    cfg.withDefaults(),
		sleep:  sleepContext,
	}
}

// Extract sends the text to the provider and returns the structured event.
// Transient failures are retried up to cfg.MaxRetries additional attempts
// with backoff proportional to the attempt number. The whole call is
// bounded by cfg.Timeout.
func (e *Extractor) Extract(ctx context.Context, text string) (extract.Event, error) {
	if e == nil || e.driver == nil {
		return extract.Event{}, errors.New("extraction driver not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	temperature := e.cfg.Temperature
	maxTokens := e.cfg.MaxTokens
	req := &driver.Request{
		Model: e.cfg.Model,
		Messages: []driver.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: text},
		},
		ResponseFormat: &driver.ResponseFormat{Type: "json_object"},
		Temperature:    &temperature,
		MaxTokens:      &maxTokens,
	}

	attempts := e.cfg.MaxRetries + 1
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := e.driver.Complete(ctx, req)
		if err == nil {
			event, perr := parseEventResponse(resp.Content)
			if perr == nil {
				return event, nil
			}
			// Unusable model output is not transient; retrying the same
			// prompt against the same model rarely changes the shape.
			return extract.Event{}, perr
		}

		lastErr = err
		if !IsTransient(err) || attempt == attempts {
			break
		}

		delay := e.cfg.RetryBaseDelay * time.Duration(attempt)
		logger := observability.ServerLogger
		if logger != nil {
			logger.Warn("AI extraction attempt failed, retrying",
				zap.String("provider", e.driver.Name()),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", delay),
				zap.Error(err))
		}
		if err := e.sleep(ctx, delay); err != nil {
			return extract.Event{}, err
		}
	}

	return extract.Event{}, fmt.Errorf("ai extraction failed: %w", lastErr)
}

// IsTransient classifies an error as worth retrying: connection errors,
// timeouts, provider rate limiting or provider internal errors.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var perr *driver.ProviderError
	if errors.As(err, &perr) {
		return perr.Transient()
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"fetch failed", "timeout", "network"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// parseEventResponse parses the model output as JSON, falling back to the
// first balanced {...} substring when the model wrapped the object in
// prose or code fences.
func parseEventResponse(content string) (extract.Event, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return extract.Event{}, errors.New("empty response content")
	}

	var event extract.Event
	if err := json.Unmarshal([]byte(content), &event); err == nil {
		return coerceEvent(event), nil
	}

	candidate, ok := firstJSONObject(content)
	if !ok {
		return extract.Event{}, errors.New("response contains no JSON object")
	}
	if err := json.Unmarshal([]byte(candidate), &event); err != nil {
		return extract.Event{}, fmt.Errorf("parse response JSON: %w", err)
	}
	return coerceEvent(event), nil
}

// coerceEvent trims whitespace the model tends to leave around values.
func coerceEvent(event extract.Event) extract.Event {
	event.Title = strings.TrimSpace(event.Title)
	event.Date = strings.TrimSpace(event.Date)
	event.StartTime = strings.TrimSpace(event.StartTime)
	event.EndTime = strings.TrimSpace(event.EndTime)
	event.Location = strings.TrimSpace(event.Location)
	event.Description = strings.TrimSpace(event.Description)
	event.Timezone = strings.TrimSpace(event.Timezone)
	return event
}

// firstJSONObject scans for the first balanced-brace substring, skipping
// braces inside JSON strings.
func firstJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
