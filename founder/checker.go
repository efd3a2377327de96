// Package founder implements the one-time launch-window founder badge
// grant. The per-user idle/checking/done state machine lives here, owned
// by the checker, so correctness never depends on caller lifetime.
package founder

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cristianccgg/letranido-backend/awards"
	"github.com/cristianccgg/letranido-backend/badges"
	"github.com/cristianccgg/letranido-backend/logging"
	"github.com/cristianccgg/letranido-backend/storage"
)

// Window is how long after launch new users still qualify as founders.
const Window = 30 * 24 * time.Hour

type state int

const (
	stateIdle state = iota
	stateChecking
	stateDone
)

type Awarder interface {
	Award(ctx context.Context, badgeID, userID string, extra map[string]string) (*awards.Result, error)
}

type Checker struct {
	users      storage.UserStorage
	awarder    Awarder
	launchDate time.Time
	now        func() time.Time

	mu          sync.Mutex
	states      map[string]state
	celebration bool
}

func NewChecker(users storage.UserStorage, awarder Awarder, launchDate time.Time) *Checker {
	return &Checker{
		users:      users,
		awarder:    awarder,
		launchDate: launchDate,
		now:        time.Now,
		states:     make(map[string]state),
	}
}

// Check grants founder status to the user when inside the launch window.
// The call is a no-op once the user has been processed, when the window
// has expired, or when the user already holds the badge. Only the first
// transition into founder status raises the celebration flag; a legacy
// founder missing the badge gets a silent backfill.
func (c *Checker) Check(ctx context.Context, userID string) error {
	if !c.begin(userID) {
		return nil
	}

	done := false
	defer func() {
		c.finish(userID, done)
	}()

	if c.now().After(c.launchDate.Add(Window)) {
		logging.Log.Infof("FOUNDER: window closed, skipping user %s", userID)
		done = true
		return nil
	}

	profile, err := c.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			logging.Log.Warnf("FOUNDER: user %s not found", userID)
			done = true
		}
		return err
	}

	if profile.IsFounder && profile.HasBadge(badges.Founder) {
		done = true
		return nil
	}

	if profile.IsFounder {
		// Legacy founder from before the badge existed: backfill without
		// celebrating.
		_, err := c.awarder.Award(ctx, badges.Founder, userID, founderContext(profile))
		if err != nil {
			logging.Log.Errorf("FOUNDER: backfill failed for user %s: %v", userID, err)
			return err
		}
		logging.Log.Infof("FOUNDER: backfilled badge for legacy founder %s", userID)
		done = true
		return nil
	}

	since := c.now().UTC()
	if err := c.users.SetFounder(ctx, userID, since); err != nil {
		logging.Log.Errorf("FOUNDER: failed to mark user %s as founder: %v", userID, err)
		return err
	}

	res, err := c.awarder.Award(ctx, badges.Founder, userID, founderContext(profile))
	if err != nil {
		logging.Log.Errorf("FOUNDER: badge award failed for new founder %s: %v", userID, err)
		return err
	}

	if res.IsNew {
		c.mu.Lock()
		c.celebration = true
		c.mu.Unlock()
		logging.Log.Infof("FOUNDER: user %s became a founder", userID)
	}
	done = true
	return nil
}

// ShowCelebration reports whether the celebratory presentation is due.
// It is intentionally separate from the notification queue: the founder
// reveal has its own display path and dismiss rules.
func (c *Checker) ShowCelebration() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.celebration
}

func (c *Checker) DismissCelebration() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.celebration = false
}

// begin moves the user idle -> checking. A user already checking or done
// is refused, which is what makes Check single-flight per user.
func (c *Checker) begin(userID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.states[userID] != stateIdle {
		return false
	}
	c.states[userID] = stateChecking
	return true
}

// finish moves checking -> done on success, or back to idle so a failed
// check can be retried later.
func (c *Checker) finish(userID string, done bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if done {
		c.states[userID] = stateDone
	} else {
		c.states[userID] = stateIdle
	}
}

func founderContext(profile *storage.UserProfile) map[string]string {
	return map[string]string{
		"display_name": profile.DisplayName,
	}
}
