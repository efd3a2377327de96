// Package awards implements the idempotent badge award protocol: a
// read-modify-write of the full badge list with bounded retries and a
// post-write verification read. The backing store has no atomic
// add-if-absent primitive, so all duplicate protection lives here.
package awards

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cristianccgg/letranido-backend/badges"
	"github.com/cristianccgg/letranido-backend/logging"
	"github.com/cristianccgg/letranido-backend/retry"
	"github.com/cristianccgg/letranido-backend/storage"
)

const maxAttempts = 3

var ErrVerificationFailed = errors.New("badge missing after apparently successful write")

var errConcurrentModification = errors.New("badge list changed concurrently, zero rows affected")

// Result describes the outcome of a single award call. AlreadyExists is a
// success: awarding the same badge twice is a no-op, never an error.
type Result struct {
	Success       bool           `json:"success"`
	IsNew         bool           `json:"isNew"`
	AlreadyExists bool           `json:"alreadyExists,omitempty"`
	Badge         *storage.Badge `json:"badge,omitempty"`
}

type Service struct {
	users   storage.UserStorage
	backoff func(attempt int) time.Duration
	now     func() time.Time
}

func NewService(users storage.UserStorage) *Service {
	return &Service{
		users:   users,
		backoff: retry.Linear(time.Second),
		now:     time.Now,
	}
}

// Award grants the badge with the given definition id to the user.
// Calling it any number of times leaves exactly one badge with that id on
// the profile; every call after the first reports AlreadyExists.
func (s *Service) Award(ctx context.Context, badgeID, userID string, extra map[string]string) (*Result, error) {
	def, ok := badges.Lookup(badgeID)
	if !ok {
		return nil, fmt.Errorf("unknown badge id: %s", badgeID)
	}

	// Existence gate: never start the write protocol against a missing
	// user, and never retry a NotFound.
	profile, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			logging.Log.Warnf("AWARD: user %s not found for badge %s", userID, badgeID)
		}
		return nil, err
	}

	if existing := findBadge(profile.Badges, badgeID); existing != nil {
		logging.Log.Infof("AWARD: user %s already holds badge %s, no-op", userID, badgeID)
		return &Result{Success: true, AlreadyExists: true, Badge: existing}, nil
	}

	newBadge := def.Earned(s.now(), extra)

	var alreadyExists *storage.Badge
	err = retry.Do(ctx, maxAttempts, s.backoff, func(attempt int) error {
		// Re-read every attempt: a zero-rows write means the list (and
		// its version) moved underneath us.
		if attempt > 1 {
			profile, err = s.users.Get(ctx, userID)
			if err != nil {
				return err
			}
			if existing := findBadge(profile.Badges, badgeID); existing != nil {
				alreadyExists = existing
				return nil
			}
		}

		newList := make([]storage.Badge, 0, len(profile.Badges)+1)
		newList = append(newList, profile.Badges...)
		newList = append(newList, newBadge)

		rows, err := s.users.UpdateBadges(ctx, userID, newList, profile.BadgeVersion)
		if err != nil {
			logging.Log.Errorf("AWARD: write failed for user %s badge %s attempt %d: %v", userID, badgeID, attempt, err)
			return err
		}
		if rows == 0 {
			logging.Log.Warnf("AWARD: zero rows affected for user %s badge %s attempt %d", userID, badgeID, attempt)
			return errConcurrentModification
		}
		return nil
	})
	if err != nil {
		logging.Log.Errorf("AWARD: giving up on badge %s for user %s after %d attempts: %v", badgeID, userID, maxAttempts, err)
		return nil, err
	}

	if alreadyExists != nil {
		return &Result{Success: true, AlreadyExists: true, Badge: alreadyExists}, nil
	}

	// The store may acknowledge before durability; only a read-back of the
	// badge counts as success.
	current, err := s.users.GetBadges(ctx, userID)
	if err != nil {
		logging.Log.Errorf("AWARD: verification read failed for user %s badge %s: %v", userID, badgeID, err)
		return nil, err
	}
	if findBadge(current, badgeID) == nil {
		logging.Log.Errorf("AWARD: verification failed, badge %s missing for user %s after write", badgeID, userID)
		return nil, ErrVerificationFailed
	}

	logging.Log.Infof("AWARD: badge %s awarded to user %s", badgeID, userID)
	return &Result{Success: true, IsNew: true, Badge: &newBadge}, nil
}

func findBadge(list []storage.Badge, badgeID string) *storage.Badge {
	for i := range list {
		if list[i].ID == badgeID {
			return &list[i]
		}
	}
	return nil
}
