package controllers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testutils "github.com/cristianccgg/letranido-backend/api/controllers/testing"
	"github.com/cristianccgg/letranido-backend/api/models"
	"github.com/cristianccgg/letranido-backend/badges"
	"github.com/cristianccgg/letranido-backend/storage"
)

func earnedBadge(id string) storage.Badge {
	def, ok := badges.Lookup(id)
	if !ok {
		panic("unknown badge in test: " + id)
	}
	return def.Earned(time.Now(), nil)
}

func TestNotificationEndpoints(t *testing.T) {
	t.Run("Happy path - empty queue", func(t *testing.T) {
		fx := setupTestControllers(t)

		res := testutils.PerformRequest(fx.router, http.MethodGet, "/api/notifications/current", nil, nil)
		require.Equal(t, http.StatusOK, res.Code)

		var resp models.CurrentNotificationResponse
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &resp))
		assert.Nil(t, resp.Notification)
		assert.Equal(t, 0, resp.QueueDepth)
	})

	t.Run("Happy path - current then dismiss", func(t *testing.T) {
		fx := setupTestControllers(t)
		fx.queue.Enqueue(earnedBadge(badges.ContestWinner))
		fx.queue.Enqueue(earnedBadge(badges.ContestSecond))

		res := testutils.PerformRequest(fx.router, http.MethodGet, "/api/notifications/current", nil, nil)
		require.Equal(t, http.StatusOK, res.Code)

		var resp models.CurrentNotificationResponse
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &resp))
		require.NotNil(t, resp.Notification)
		assert.Equal(t, badges.ContestWinner, resp.Notification.Badge.ID)

		dismiss := testutils.PerformRequest(fx.router, http.MethodPost, "/api/notifications/dismiss", nil, nil)
		require.Equal(t, http.StatusOK, dismiss.Code)

		after := testutils.PerformRequest(fx.router, http.MethodGet, "/api/notifications/current", nil, nil)
		require.Equal(t, http.StatusOK, after.Code)
		require.NoError(t, json.Unmarshal(after.Body.Bytes(), &resp))
		assert.Nil(t, resp.Notification, "cooldown holds the next entry back")
	})
}

func TestFounderEndpoints(t *testing.T) {
	t.Run("Happy path - check grants badge and celebration", func(t *testing.T) {
		fx := setupTestControllers(t)
		fx.users.Users["u-a"] = &storage.UserProfile{UserID: "u-a", DisplayName: "Ana"}

		res := testutils.PerformRequest(fx.router, http.MethodPost, "/api/founder/check/u-a", nil, nil)
		require.Equal(t, http.StatusOK, res.Code)

		var resp models.FounderCelebrationResponse
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &resp))
		assert.True(t, resp.Show)

		status := testutils.PerformRequest(fx.router, http.MethodGet, "/api/founder/celebration", nil, nil)
		require.Equal(t, http.StatusOK, status.Code)
		require.NoError(t, json.Unmarshal(status.Body.Bytes(), &resp))
		assert.True(t, resp.Show)

		dismiss := testutils.PerformRequest(fx.router, http.MethodPost, "/api/founder/celebration/dismiss", nil, nil)
		require.Equal(t, http.StatusOK, dismiss.Code)

		status = testutils.PerformRequest(fx.router, http.MethodGet, "/api/founder/celebration", nil, nil)
		require.NoError(t, json.Unmarshal(status.Body.Bytes(), &resp))
		assert.False(t, resp.Show)
	})

	t.Run("Unhappy path - unknown user", func(t *testing.T) {
		fx := setupTestControllers(t)

		res := testutils.PerformRequest(fx.router, http.MethodPost, "/api/founder/check/ghost", nil, nil)
		assert.Equal(t, http.StatusNotFound, res.Code)
	})
}
