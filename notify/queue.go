// Package notify is the in-process badge notification queue: multiple
// producers, one consumer, strict FIFO, dedup on badge identity, one
// visible notification at a time.
package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/cristianccgg/letranido-backend/logging"
	"github.com/cristianccgg/letranido-backend/storage"
)

const (
	// DedupWindow collapses the same badge id enqueued twice in quick
	// succession, even when the two producers stamped slightly different
	// earn times.
	DedupWindow = time.Second
	// DismissCooldown is the pacing gap between dismissing one
	// notification and showing the next. UX only, no correctness role.
	DismissCooldown = 500 * time.Millisecond
)

// Entry is ephemeral and never persisted.
type Entry struct {
	ID         string        `json:"id"`
	Badge      storage.Badge `json:"badge"`
	EnqueuedAt time.Time     `json:"enqueuedAt"`
}

type Queue struct {
	mu            sync.Mutex
	pending       []*Entry
	current       *Entry
	cooldownUntil time.Time
	lastByBadge   map[string]time.Time

	dedupWindow time.Duration
	cooldown    time.Duration
	now         func() time.Time
}

func NewQueue() *Queue {
	return &Queue{
		lastByBadge: make(map[string]time.Time),
		dedupWindow: DedupWindow,
		cooldown:    DismissCooldown,
		now:         time.Now,
	}
}

// Enqueue accepts a badge-earned event. It reports false when the event
// was dropped as a duplicate: same (badge id, earned at) already queued,
// or same badge id seen within the dedup window.
func (q *Queue) Enqueue(badge storage.Badge) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	key := dedupKey(badge)

	if q.current != nil && dedupKey(q.current.Badge) == key {
		logging.Log.Infof("NOTIFY: dropped duplicate of visible badge %s", badge.ID)
		return false
	}
	for _, e := range q.pending {
		if dedupKey(e.Badge) == key {
			logging.Log.Infof("NOTIFY: dropped duplicate badge %s already queued", badge.ID)
			return false
		}
	}
	if last, ok := q.lastByBadge[badge.ID]; ok && now.Sub(last) < q.dedupWindow {
		logging.Log.Infof("NOTIFY: dropped badge %s enqueued %v ago, inside dedup window", badge.ID, now.Sub(last))
		return false
	}

	entry := &Entry{
		ID:         fmt.Sprintf("%s:%d:%d", badge.ID, badge.EarnedAt.UnixMilli(), now.UnixMilli()),
		Badge:      badge,
		EnqueuedAt: now,
	}
	q.pending = append(q.pending, entry)
	q.lastByBadge[badge.ID] = now
	logging.Log.Infof("NOTIFY: enqueued badge %s, queue depth %d", badge.ID, len(q.pending))

	q.promote(now)
	return true
}

// Current returns the entry being displayed, promoting the queue head
// first when the promotion condition holds. Promotion is level-triggered:
// the condition is re-evaluated on every enqueue, dismiss and read rather
// than on a scheduled tick.
func (q *Queue) Current() *Entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.promote(q.now())
	return q.current
}

// Dismiss clears the visible notification. The next promotion is held
// back until the cooldown elapses.
func (q *Queue) Dismiss() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.current == nil {
		return
	}
	logging.Log.Infof("NOTIFY: dismissed %s", q.current.ID)
	q.current = nil
	q.cooldownUntil = q.now().Add(q.cooldown)
}

// IsProcessing holds from promotion until the post-dismiss cooldown has
// fully elapsed.
func (q *Queue) IsProcessing() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.current != nil || q.now().Before(q.cooldownUntil)
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *Queue) promote(now time.Time) {
	if q.current != nil || len(q.pending) == 0 || now.Before(q.cooldownUntil) {
		return
	}
	q.current = q.pending[0]
	q.pending = q.pending[1:]
	logging.Log.Infof("NOTIFY: showing %s", q.current.ID)
}

func dedupKey(b storage.Badge) string {
	return fmt.Sprintf("%s|%d", b.ID, b.EarnedAt.UnixMilli())
}
