package ailink

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clipcal/clipcal/internal/ailink/driver"
)

// scriptedDriver returns canned responses/errors in sequence.
type scriptedDriver struct {
	responses []*driver.Response
	errs      []error
	calls     int
}

func (d *scriptedDriver) Complete(ctx context.Context, req *driver.Request) (*driver.Response, error) {
	i := d.calls
	d.calls++
	if i < len(d.errs) && d.errs[i] != nil {
		return nil, d.errs[i]
	}
	if i < len(d.responses) {
		return d.responses[i], nil
	}
	return nil, errors.New("no scripted response")
}

func (d *scriptedDriver) Name() string { return "scripted" }

func newTestExtractor(d driver.Driver) *Extractor {
	e := NewExtractorWithDriver(d, Config{MaxRetries: 2, RetryBaseDelay: time.Second})
	e.sleep = func(ctx context.Context, dur time.Duration) error { return nil }
	return e
}

const goodResponse = `{"title":"Team Sync","date":"2024-03-15","startTime":"14:00","endTime":"15:00","location":"Room 4","description":"Weekly sync","timezone":"America/New_York"}`

func TestExtractParsesResponse(t *testing.T) {
	d := &scriptedDriver{responses: []*driver.Response{{Content: goodResponse}}}
	e := newTestExtractor(d)

	event, err := e.Extract(context.Background(), "some text")
	require.NoError(t, err)
	require.Equal(t, "Team Sync", event.Title)
	require.Equal(t, "2024-03-15", event.Date)
	require.Equal(t, "14:00", event.StartTime)
	require.Equal(t, "America/New_York", event.Timezone)
	require.Equal(t, 1, d.calls)
}

func TestExtractRetriesTransientErrors(t *testing.T) {
	d := &scriptedDriver{
		errs:      []error{&driver.ProviderError{Provider: "scripted", StatusCode: 429}, &driver.ProviderError{Provider: "scripted", StatusCode: 503}},
		responses: []*driver.Response{nil, nil, {Content: goodResponse}},
	}
	e := newTestExtractor(d)

	event, err := e.Extract(context.Background(), "some text")
	require.NoError(t, err)
	require.Equal(t, "Team Sync", event.Title)
	require.Equal(t, 3, d.calls)
}

func TestExtractGivesUpAfterMaxRetries(t *testing.T) {
	transient := &driver.ProviderError{Provider: "scripted", StatusCode: 500}
	d := &scriptedDriver{errs: []error{transient, transient, transient, transient}}
	e := newTestExtractor(d)

	_, err := e.Extract(context.Background(), "some text")
	require.Error(t, err)
	// MaxRetries=2 means three attempts total.
	require.Equal(t, 3, d.calls)
}

func TestExtractDoesNotRetryClientErrors(t *testing.T) {
	d := &scriptedDriver{errs: []error{&driver.ProviderError{Provider: "scripted", StatusCode: 401}}}
	e := newTestExtractor(d)

	_, err := e.Extract(context.Background(), "some text")
	require.Error(t, err)
	require.Equal(t, 1, d.calls)
}

func TestExtractParsesJSONWrappedInProse(t *testing.T) {
	content := "Here is the event:\n```json\n" + goodResponse + "\n```\nLet me know if you need anything else."
	d := &scriptedDriver{responses: []*driver.Response{{Content: content}}}
	e := newTestExtractor(d)

	event, err := e.Extract(context.Background(), "some text")
	require.NoError(t, err)
	require.Equal(t, "Team Sync", event.Title)
}

func TestExtractRejectsMalformedOutput(t *testing.T) {
	d := &scriptedDriver{responses: []*driver.Response{{Content: "sure, the event is on the 15th"}}}
	e := newTestExtractor(d)

	_, err := e.Extract(context.Background(), "some text")
	require.Error(t, err)
	// Malformed output is not retried.
	require.Equal(t, 1, d.calls)
}

func TestIsTransient(t *testing.T) {
	require.True(t, IsTransient(&driver.ProviderError{StatusCode: 429}))
	require.True(t, IsTransient(&driver.ProviderError{StatusCode: 502}))
	require.False(t, IsTransient(&driver.ProviderError{StatusCode: 400}))
	require.True(t, IsTransient(context.DeadlineExceeded))
	require.True(t, IsTransient(errors.New("fetch failed")))
	require.True(t, IsTransient(errors.New("connection timeout")))
	require.False(t, IsTransient(errors.New("invalid api key")))
	require.False(t, IsTransient(nil))
}

func TestCoerceEventTrimsWhitespace(t *testing.T) {
	d := &scriptedDriver{responses: []*driver.Response{{Content: `{"title":"  Team Sync  ","date":" 2024-03-15 "}`}}}
	e := newTestExtractor(d)

	event, err := e.Extract(context.Background(), "some text")
	require.NoError(t, err)
	require.Equal(t, "Team Sync", event.Title)
	require.Equal(t, "2024-03-15", event.Date)
}
