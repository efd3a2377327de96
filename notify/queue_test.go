package notify

import (
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianccgg/letranido-backend/logging"
	"github.com/cristianccgg/letranido-backend/storage"
)

// fakeClock drives the queue deterministically.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func setupTestQueue(t *testing.T) (*Queue, *fakeClock) {
	t.Helper()
	logging.Log = logrus.New()

	clock := &fakeClock{t: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	q := NewQueue()
	q.now = clock.now
	return q, clock
}

func badge(id string, earnedAt time.Time) storage.Badge {
	return storage.Badge{
		ID:       id,
		Name:     id,
		Rarity:   storage.RarityCommon,
		EarnedAt: earnedAt,
	}
}

func TestEnqueueAndPromotion(t *testing.T) {
	q, clock := setupTestQueue(t)

	assert.Nil(t, q.Current())
	assert.False(t, q.IsProcessing())

	require.True(t, q.Enqueue(badge("contest_winner", clock.t)))

	current := q.Current()
	require.NotNil(t, current, "head promotes as soon as nothing is displayed")
	assert.Equal(t, "contest_winner", current.Badge.ID)
	assert.True(t, q.IsProcessing())
	assert.Equal(t, 0, q.Len())
}

func TestDedupSameBadgeAndTimestamp(t *testing.T) {
	q, clock := setupTestQueue(t)
	earned := clock.t

	require.True(t, q.Enqueue(badge("founder", earned)))
	clock.advance(2 * time.Second) // well outside the id window
	assert.False(t, q.Enqueue(badge("founder", earned)), "same (id, earnedAt) is a duplicate even later")

	// One entry total: it is already promoted, the queue itself is empty.
	assert.NotNil(t, q.Current())
	assert.Equal(t, 0, q.Len())
}

func TestDedupWindowSameBadgeDifferentTimestamps(t *testing.T) {
	q, clock := setupTestQueue(t)

	require.True(t, q.Enqueue(badge("first_story", clock.t)))
	clock.advance(300 * time.Millisecond)
	// Independent producer read the clock a beat later.
	assert.False(t, q.Enqueue(badge("first_story", clock.t)), "same badge id inside 1s collapses")

	clock.advance(DedupWindow)
	assert.True(t, q.Enqueue(badge("first_story", clock.t)), "outside the window a same-id badge is a fresh event")
}

func TestStrictFIFOAndSingleDisplay(t *testing.T) {
	q, clock := setupTestQueue(t)

	for i := 0; i < 3; i++ {
		require.True(t, q.Enqueue(badge(fmt.Sprintf("badge-%d", i), clock.t)))
		clock.advance(2 * time.Second)
	}

	seen := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		current := q.Current()
		require.NotNil(t, current)
		// Re-reading does not advance the queue.
		assert.Equal(t, current.ID, q.Current().ID)
		seen = append(seen, current.Badge.ID)

		q.Dismiss()
		assert.Nil(t, q.current, "nothing is displayed during cooldown")
		clock.advance(DismissCooldown + time.Millisecond)
	}

	assert.Equal(t, []string{"badge-0", "badge-1", "badge-2"}, seen)
	assert.Nil(t, q.Current())
	assert.Equal(t, 0, q.Len())
}

func TestDismissCooldownGatesNextPromotion(t *testing.T) {
	q, clock := setupTestQueue(t)

	require.True(t, q.Enqueue(badge("badge-a", clock.t)))
	clock.advance(2 * time.Second)
	require.True(t, q.Enqueue(badge("badge-b", clock.t)))

	require.NotNil(t, q.Current())
	q.Dismiss()

	assert.Nil(t, q.Current(), "next entry must wait out the cooldown")
	assert.True(t, q.IsProcessing(), "cooldown still counts as processing")

	clock.advance(DismissCooldown / 2)
	assert.Nil(t, q.Current())

	clock.advance(DismissCooldown)
	next := q.Current()
	require.NotNil(t, next)
	assert.Equal(t, "badge-b", next.Badge.ID)
}

func TestDismissThenEnqueueNeverDoubleDisplays(t *testing.T) {
	q, clock := setupTestQueue(t)

	require.True(t, q.Enqueue(badge("badge-a", clock.t)))
	require.NotNil(t, q.Current())
	q.Dismiss()

	// A new event arriving right after dismissal queues behind the
	// cooldown instead of flashing immediately.
	clock.advance(10 * time.Millisecond)
	require.True(t, q.Enqueue(badge("badge-b", clock.t)))
	assert.Nil(t, q.Current())

	clock.advance(DismissCooldown)
	current := q.Current()
	require.NotNil(t, current)
	assert.Equal(t, "badge-b", current.Badge.ID)
}

func TestEntryIDIsComposite(t *testing.T) {
	q, clock := setupTestQueue(t)
	earned := clock.t.Add(-time.Minute)

	require.True(t, q.Enqueue(badge("contest_third", earned)))
	current := q.Current()
	require.NotNil(t, current)
	assert.Equal(t,
		fmt.Sprintf("contest_third:%d:%d", earned.UnixMilli(), clock.t.UnixMilli()),
		current.ID)
}

func TestDismissWithoutCurrentIsNoop(t *testing.T) {
	q, clock := setupTestQueue(t)
	q.Dismiss()
	assert.False(t, q.IsProcessing())

	require.True(t, q.Enqueue(badge("badge-a", clock.t)))
	assert.NotNil(t, q.Current(), "stray dismiss must not start a cooldown")
}
