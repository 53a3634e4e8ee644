// Package admission implements the request-admission layer: a
// sliding-window counter store keyed by client identifier, rate-limit and
// abuse checks, a content screen, and a suspicious-origin screen.
package admission

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/clipcal/clipcal/internal/metrics"
	"github.com/clipcal/clipcal/internal/observability"
)

// retention is the hard bound on entry age. No entry is ever counted
// across more than this window, regardless of the sweep schedule.
const retention = 24 * time.Hour

// sweepSchedule removes idle client records every five minutes so memory
// stays bounded independent of read traffic.
const sweepSchedule = "@every 5m"

type requestEntry struct {
	at       time.Time
	endpoint string
	success  bool
}

type aiEntry struct {
	at      time.Time
	success bool
}

// clientRecord holds one client's recent activity. The embedded mutex
// serializes append-and-prune for that client; the store's map lock is
// never held during entry mutation.
type clientRecord struct {
	mu         sync.Mutex
	requests   []requestEntry
	aiRequests []aiEntry
}

// Store is an in-process sliding-window counter store. It is constructed
// by the composition root and passed by handle to the admission
// controller; state resets on process restart by design.
type Store struct {
	mu      sync.RWMutex
	clients map[string]*clientRecord

	clock   func() time.Time
	sweeper *cron.Cron
}

// NewStore returns a store using the real clock. The periodic sweep is
// not started until StartSweep is called.
func NewStore() *Store {
	return NewStoreWithClock(time.Now)
}

// NewStoreWithClock returns a store with an injected clock for tests.
func NewStoreWithClock(clock func() time.Time) *Store {
	return &Store{
		clients: make(map[string]*clientRecord),
		clock:   clock,
	}
}

// StartSweep schedules the periodic removal of expired client records.
func (s *Store) StartSweep() {
	if s.sweeper != nil {
		return
	}
	s.sweeper = cron.New()
	_, _ = s.sweeper.AddFunc(sweepSchedule, s.Sweep)
	s.sweeper.Start()
}

// Close stops the periodic sweep.
func (s *Store) Close() {
	if s.sweeper != nil {
		s.sweeper.Stop()
		s.sweeper = nil
	}
}

// Record appends an activity entry for the client. AI-consuming requests
// are tracked in a second sequence with its own limits.
func (s *Store) Record(clientID, endpoint string, success, aiRequest bool) {
	now := s.clock()
	rec := s.record(clientID)

	rec.mu.Lock()
	defer rec.mu.Unlock()

	rec.prune(now)
	rec.requests = append(rec.requests, requestEntry{at: now, endpoint: endpoint, success: success})
	if aiRequest {
		rec.aiRequests = append(rec.aiRequests, aiEntry{at: now, success: success})
	}
}

// CountSince returns the number of entries within the trailing window.
// With onlyAI set it counts the AI-specific sequence instead. Expired
// entries are pruned before counting, so 1-minute, 1-hour and 1-day
// window counts are always mutually consistent.
func (s *Store) CountSince(clientID string, window time.Duration, onlyAI bool) int {
	now := s.clock()
	rec := s.record(clientID)

	rec.mu.Lock()
	defer rec.mu.Unlock()

	rec.prune(now)
	cutoff := now.Add(-window)

	count := 0
	if onlyAI {
		for _, e := range rec.aiRequests {
			if e.at.After(cutoff) {
				count++
			}
		}
		return count
	}
	for _, e := range rec.requests {
		if e.at.After(cutoff) {
			count++
		}
	}
	return count
}

// CountFailedSince returns the number of failed general requests within
// the trailing window. This deliberately counts general failures, not AI
// failures, when gating further AI requests.
func (s *Store) CountFailedSince(clientID string, window time.Duration) int {
	now := s.clock()
	rec := s.record(clientID)

	rec.mu.Lock()
	defer rec.mu.Unlock()

	rec.prune(now)
	cutoff := now.Add(-window)

	count := 0
	for _, e := range rec.requests {
		if e.at.After(cutoff) && !e.success {
			count++
		}
	}
	return count
}

// ClientCounters is a point-in-time view of one client's activity,
// exposed by the operator stats endpoint.
type ClientCounters struct {
	ClientID           string `json:"clientId"`
	RequestsMinute     int    `json:"requestsLastMinute"`
	RequestsHour       int    `json:"requestsLastHour"`
	RequestsDay        int    `json:"requestsLastDay"`
	AIRequestsHour     int    `json:"aiRequestsLastHour"`
	AIRequestsDay      int    `json:"aiRequestsLastDay"`
	FailedRequestsHour int    `json:"failedRequestsLastHour"`
}

// Counters returns the client's current windowed counts.
func (s *Store) Counters(clientID string) ClientCounters {
	return ClientCounters{
		ClientID:           clientID,
		RequestsMinute:     s.CountSince(clientID, time.Minute, false),
		RequestsHour:       s.CountSince(clientID, time.Hour, false),
		RequestsDay:        s.CountSince(clientID, retention, false),
		AIRequestsHour:     s.CountSince(clientID, time.Hour, true),
		AIRequestsDay:      s.CountSince(clientID, retention, true),
		FailedRequestsHour: s.CountFailedSince(clientID, time.Hour),
	}
}

// Reset discards all activity for a client. Operator emergency use.
func (s *Store) Reset(clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, clientID)
}

// Sweep removes client records whose sequences are fully expired. It is
// safe to run concurrently with per-request reads and writes: it only
// ever deletes data that is already outside the retention window.
func (s *Store) Sweep() {
	now := s.clock()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, rec := range s.clients {
		rec.mu.Lock()
		rec.prune(now)
		empty := len(rec.requests) == 0 && len(rec.aiRequests) == 0
		rec.mu.Unlock()
		if empty {
			delete(s.clients, id)
			removed++
		}
	}

	metrics.SetTrackedClients(int64(len(s.clients)))

	logger := observability.ServerLogger
	if logger != nil && removed > 0 {
		logger.Debug("Swept expired client records",
			zap.Int("removed", removed),
			zap.Int("remaining", len(s.clients)))
	}
}

// ClientCount returns the number of tracked clients.
func (s *Store) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Store) record(clientID string) *clientRecord {
	s.mu.RLock()
	rec, ok := s.clients[clientID]
	s.mu.RUnlock()
	if ok {
		return rec
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok = s.clients[clientID]; ok {
		return rec
	}
	rec = &clientRecord{}
	s.clients[clientID] = rec
	return rec
}

// prune drops entries older than the retention window. Callers must hold
// the record mutex.
func (r *clientRecord) prune(now time.Time) {
	cutoff := now.Add(-retention)

	kept := r.requests[:0]
	for _, e := range r.requests {
		if e.at.After(cutoff) {
			kept = append(kept, e)
		}
	}
	r.requests = kept

	keptAI := r.aiRequests[:0]
	for _, e := range r.aiRequests {
		if e.at.After(cutoff) {
			keptAI = append(keptAI, e)
		}
	}
	r.aiRequests = keptAI
}
