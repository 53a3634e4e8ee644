package extract

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/clipcal/clipcal/internal/metrics"
	"github.com/clipcal/clipcal/internal/observability"
)

// ErrNoUsableContent is returned when neither extraction path produced a
// title or a date. Callers surface it as an invalid-input error; it is the
// only extraction failure a caller ever sees.
var ErrNoUsableContent = errors.New("no usable event information found in content")

// AIClient is the slice of the AI extraction client the orchestrator needs.
type AIClient interface {
	Extract(ctx context.Context, text string) (Event, error)
}

// Orchestrator tries the AI client first and falls back to the pattern
// extractor on any AI failure. Defaults are applied exactly once, after
// whichever path produced the result.
type Orchestrator struct {
	AI    AIClient
	Clock func() time.Time
}

// NewOrchestrator builds an orchestrator; ai may be nil, in which case
// every request takes the pattern-extraction path.
func NewOrchestrator(ai AIClient) *Orchestrator {
	return &Orchestrator{AI: ai, Clock: time.Now}
}

// Process turns sanitized input text into a defaulted event.
//
// AI failures of every kind — network, timeout, provider rate limit,
// malformed output — are absorbed here and never propagate to the caller.
func (o *Orchestrator) Process(ctx context.Context, text string) (Event, error) {
	start := time.Now()
	event, path := o.extract(ctx, text)
	metrics.RecordExtraction(path, event.HasMeaningfulContent())
	metrics.RecordExtractionDuration(path, time.Since(start))

	// Meaningful-content check runs before defaulting so that defaults
	// cannot paper over a fully failed extraction.
	if !event.HasMeaningfulContent() {
		return Event{}, ErrNoUsableContent
	}

	return event.ApplyDefaults(o.now(), DefaultTimezone), nil
}

func (o *Orchestrator) extract(ctx context.Context, text string) (Event, string) {
	if o.AI != nil {
		event, err := o.AI.Extract(ctx, text)
		if err == nil && event.HasMeaningfulContent() {
			return event, metrics.ExtractionPathAI
		}
		logger := observability.ServerLogger
		if logger != nil {
			if err != nil {
				logger.Warn("AI extraction failed, using pattern fallback", zap.Error(err))
			} else {
				logger.Warn("AI extraction returned no usable fields, using pattern fallback")
			}
		}
	}
	return ExtractEvent(text), metrics.ExtractionPathFallback
}

func (o *Orchestrator) now() time.Time {
	if o.Clock != nil {
		return o.Clock()
	}
	return time.Now()
}
