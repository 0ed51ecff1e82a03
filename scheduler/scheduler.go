// scheduler/scheduler.go
package scheduler

import (
	"container/heap"
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	grantd_errors "github.com/accesskit/grantd/errors"
	logger "github.com/accesskit/grantd/logging"
	"github.com/accesskit/grantd/model"
)

// Expirer is implemented by the grant service; the scheduler drives it
// when a grant's lifetime elapses.
type Expirer interface {
	Expire(ctx context.Context, grantID string) error
}

// ScheduledExpiry is one pending revocation deadline
type ScheduledExpiry struct {
	GrantID string
	DueAt   time.Time

	seq      uint64 // insertion order, breaks DueAt ties
	canceled bool
	index    int
}

type expiryHeap []*ScheduledExpiry

func (h expiryHeap) Len() int { return len(h) }

func (h expiryHeap) Less(i, j int) bool {
	if h[i].DueAt.Equal(h[j].DueAt) {
		return h[i].seq < h[j].seq
	}
	return h[i].DueAt.Before(h[j].DueAt)
}

func (h expiryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *expiryHeap) Push(x interface{}) {
	entry := x.(*ScheduledExpiry)
	entry.index = len(*h)
	*h = append(*h, entry)
}

func (h *expiryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	entry := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return entry
}

// ExpiryScheduler is a time-ordered queue of pending grant expiries. The
// tick entry point is driven by an external timer (or Run's ticker); the
// scheduler itself never consults the wall clock except in Run.
type ExpiryScheduler struct {
	mu      sync.Mutex
	heap    expiryHeap
	pending map[string]*ScheduledExpiry
	seq     uint64
	expirer Expirer
}

// NewExpiryScheduler creates an empty scheduler driving the given expirer
func NewExpiryScheduler(expirer Expirer) *ExpiryScheduler {
	return &ExpiryScheduler{
		pending: make(map[string]*ScheduledExpiry),
		expirer: expirer,
	}
}

// Enqueue schedules an expiry for grantID at dueAt. A pending entry for
// the same grant is replaced.
func (s *ExpiryScheduler) Enqueue(grantID string, dueAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.pending[grantID]; ok {
		existing.canceled = true
	}

	s.seq++
	entry := &ScheduledExpiry{GrantID: grantID, DueAt: dueAt, seq: s.seq}
	heap.Push(&s.heap, entry)
	s.pending[grantID] = entry

	logger.Debug("Scheduled grant expiry",
		zap.String("grantID", grantID),
		zap.Time("dueAt", dueAt))
}

// Cancel removes the pending expiry for grantID, if any. It returns
// synchronously; once it does, no tick will fire for that entry.
func (s *ExpiryScheduler) Cancel(grantID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.pending[grantID]; ok {
		entry.canceled = true
		delete(s.pending, grantID)
		logger.Debug("Canceled scheduled expiry", zap.String("grantID", grantID))
	}
}

// Len returns the number of pending (non-canceled) entries
func (s *ExpiryScheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Tick pops every entry due at or before now, in due order, and drives
// the expirer for each. A grant that is already terminal is settled; any
// other failure re-enqueues the entry so the next tick retries it, and
// never aborts the rest of the tick.
func (s *ExpiryScheduler) Tick(ctx context.Context, now time.Time) {
	due := s.popDue(now)

	for _, entry := range due {
		err := s.expirer.Expire(ctx, entry.GrantID)
		if err == nil {
			continue
		}
		if errors.Is(err, grantd_errors.ErrInvalidTransition) {
			// Grant reached a terminal state some other way (revoked,
			// or a duplicate fire after restart). Nothing to retry.
			logger.Debug("Scheduled expiry settled without transition",
				zap.String("grantID", entry.GrantID))
			continue
		}
		logger.Error("Failed to expire grant, will retry on next tick",
			zap.String("grantID", entry.GrantID),
			zap.Time("dueAt", entry.DueAt),
			zap.Error(err))
		s.Enqueue(entry.GrantID, entry.DueAt)
	}
}

func (s *ExpiryScheduler) popDue(now time.Time) []*ScheduledExpiry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []*ScheduledExpiry
	for s.heap.Len() > 0 {
		next := s.heap[0]
		if next.canceled {
			heap.Pop(&s.heap)
			continue
		}
		if next.DueAt.After(now) {
			break
		}
		heap.Pop(&s.heap)
		delete(s.pending, next.GrantID)
		due = append(due, next)
	}
	return due
}

// Rehydrate rebuilds the queue from persisted grants after a restart.
// Only active grants with a finite expiry are enqueued; entries already
// past due fire on the next tick.
func (s *ExpiryScheduler) Rehydrate(ctx context.Context, grants []*model.Grant) {
	count := 0
	for _, grant := range grants {
		if grant.State != model.StateActive || grant.ExpiresAt == nil {
			continue
		}
		s.Enqueue(grant.ID, *grant.ExpiresAt)
		count++
	}
	logger.Info("Rehydrated expiry scheduler",
		zap.Int("scheduled", count),
		zap.Int("seen", len(grants)))
}

// Run drives Tick on a fixed cadence until ctx is canceled. Deployments
// with an external cron collaborator can call Tick directly instead.
func (s *ExpiryScheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("Expiry scheduler running", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			logger.Info("Expiry scheduler stopped")
			return
		case now := <-ticker.C:
			s.Tick(ctx, now)
		}
	}
}
