package awards

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianccgg/letranido-backend/badges"
	"github.com/cristianccgg/letranido-backend/logging"
	"github.com/cristianccgg/letranido-backend/storage"
	"github.com/cristianccgg/letranido-backend/storage/storagetest"
)

func setupTestAwardService(t *testing.T) (*Service, *storagetest.FakeUserStorage) {
	t.Helper()
	logging.Log = logrus.New()

	users := storagetest.NewFakeUserStorage()
	users.Users["writer-1"] = &storage.UserProfile{
		UserID:      "writer-1",
		DisplayName: "Maria",
	}

	service := NewService(users)
	service.backoff = func(int) time.Duration { return 0 }
	return service, users
}

func TestAward(t *testing.T) {
	t.Run("Happy path - new badge lands and is returned", func(t *testing.T) {
		service, users := setupTestAwardService(t)

		res, err := service.Award(context.Background(), badges.ContestWinner, "writer-1", map[string]string{"contest_id": "c1"})

		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.True(t, res.IsNew)
		assert.False(t, res.AlreadyExists)
		require.NotNil(t, res.Badge)
		assert.Equal(t, badges.ContestWinner, res.Badge.ID)
		assert.Equal(t, "c1", res.Badge.Context["contest_id"])

		stored, err := users.GetBadges(context.Background(), "writer-1")
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, badges.ContestWinner, stored[0].ID)
	})

	t.Run("Unhappy path - unknown badge id", func(t *testing.T) {
		service, _ := setupTestAwardService(t)

		_, err := service.Award(context.Background(), "no_such_badge", "writer-1", nil)
		assert.Error(t, err)
	})

	t.Run("Unhappy path - user not found, no write attempted", func(t *testing.T) {
		service, users := setupTestAwardService(t)

		_, err := service.Award(context.Background(), badges.ContestWinner, "ghost", nil)

		assert.ErrorIs(t, err, storage.ErrUserNotFound)
		assert.Equal(t, 0, users.UpdateCalls)
	})
}

func TestAwardIdempotency(t *testing.T) {
	service, users := setupTestAwardService(t)

	first, err := service.Award(context.Background(), badges.ContestSecond, "writer-1", nil)
	require.NoError(t, err)
	assert.True(t, first.IsNew)

	for i := 0; i < 3; i++ {
		res, err := service.Award(context.Background(), badges.ContestSecond, "writer-1", nil)
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.True(t, res.AlreadyExists)
		assert.False(t, res.IsNew)
	}

	stored, err := users.GetBadges(context.Background(), "writer-1")
	require.NoError(t, err)
	assert.Len(t, stored, 1, "repeat awards must never duplicate the badge")
}

func TestAwardRetryThenSuccess(t *testing.T) {
	service, users := setupTestAwardService(t)
	users.FailWrites = 1 // the first write reports zero rows affected

	res, err := service.Award(context.Background(), badges.ContestThird, "writer-1", nil)

	require.NoError(t, err, "caller must not observe the intermediate failure")
	assert.True(t, res.Success)
	assert.True(t, res.IsNew)
	assert.Equal(t, 2, users.UpdateCalls)

	stored, err := users.GetBadges(context.Background(), "writer-1")
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestAwardExhaustedRetries(t *testing.T) {
	service, users := setupTestAwardService(t)
	users.FailWrites = 5 // more conflicts than the retry budget

	_, err := service.Award(context.Background(), badges.ContestWinner, "writer-1", nil)

	assert.Error(t, err)
	assert.Equal(t, 3, users.UpdateCalls, "exactly three attempts")
}

func TestAwardConcurrentWinnerDetectedOnRetry(t *testing.T) {
	service, users := setupTestAwardService(t)
	users.FailWrites = 1

	// Another session lands the same badge between our first write losing
	// the race and the retry re-reading the profile.
	users.ConflictHook = func() {
		def, _ := badges.Lookup(badges.ContestWinner)
		existing := def.Earned(time.Now(), nil)
		users.Users["writer-1"].Badges = []storage.Badge{existing}
		users.Users["writer-1"].BadgeVersion = 1
	}

	res, err := service.Award(context.Background(), badges.ContestWinner, "writer-1", nil)

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.AlreadyExists)
	assert.False(t, res.IsNew)
}

func TestAwardVerificationFailure(t *testing.T) {
	service, users := setupTestAwardService(t)
	users.DropWrites = true // the store acknowledges but never persists

	_, err := service.Award(context.Background(), badges.ContestWinner, "writer-1", nil)

	assert.ErrorIs(t, err, ErrVerificationFailed)
}
