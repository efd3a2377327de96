package controllers

import (
	"errors"
	"net/http"

	"github.com/cristianccgg/letranido-backend/api/models"
	"github.com/cristianccgg/letranido-backend/api/transport"
	"github.com/cristianccgg/letranido-backend/contest"
	"github.com/cristianccgg/letranido-backend/logging"
	"github.com/cristianccgg/letranido-backend/storage"
	"github.com/gin-gonic/gin"
)

type BadgeController struct {
	users   storage.UserStorage
	awarder contest.Awarder
	checker storage.BadgeChecker
	queue   contest.Notifier
}

func NewBadgeController(users storage.UserStorage, awarder contest.Awarder, checker storage.BadgeChecker, queue contest.Notifier) *BadgeController {
	return &BadgeController{
		users:   users,
		awarder: awarder,
		checker: checker,
		queue:   queue,
	}
}

func (c *BadgeController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api")

	group.GET("/badges/:userId", c.getUserBadges)
	group.POST("/badges/check/:userId", c.checkBadges)

	admin := engine.Group("/api/admin", transport.AdminAuthMiddleware())
	admin.POST("/badges/award", c.awardBadge)
}

// getUserBadges godoc
// @Summary List the badges a user has earned
// @Tags badges
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} models.UserBadgesResponse
// @Failure 404 {object} models.ErrorResponse "User not found"
// @Failure 500 {object} models.ErrorResponse
// @Router /api/badges/{userId} [get]
func (c *BadgeController) getUserBadges(g *gin.Context) {
	userID := g.Param("userId")
	if userID == "" {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "user id is required"})
		return
	}

	badgeList, err := c.users.GetBadges(g.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "user not found"})
			return
		}
		logging.Log.Errorf("BADGE: failed to load badges for user %s: %v", userID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load badges"})
		return
	}

	g.JSON(http.StatusOK, models.UserBadgesResponse{UserID: userID, Badges: badgeList})
}

// checkBadges godoc
// @Summary Run the server-side badge sweep for a user
// @Description Invokes the badge check function and enqueues any newly earned badges for display
// @Tags badges
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} models.BadgeCheckResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/badges/check/{userId} [post]
func (c *BadgeController) checkBadges(g *gin.Context) {
	userID := g.Param("userId")
	if userID == "" {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "user id is required"})
		return
	}

	earned, err := c.checker.CheckBadges(g.Request.Context(), userID)
	if err != nil {
		logging.Log.Errorf("BADGE: sweep failed for user %s: %v", userID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "badge check failed"})
		return
	}

	// The queue's dedup window absorbs sweeps racing other producers.
	enqueued := 0
	for _, b := range earned {
		if c.queue.Enqueue(b) {
			enqueued++
		}
	}

	logging.Log.Infof("BADGE: sweep for user %s returned %d badges, %d enqueued", userID, len(earned), enqueued)
	g.JSON(http.StatusOK, models.BadgeCheckResponse{UserID: userID, Badges: earned, Enqueued: enqueued})
}

// @Security AdminToken
// awardBadge godoc
// @Summary Manually award a badge to a user
// @Description Idempotent replay path for awards that failed during finalization
// @Tags badges
// @Accept json
// @Produce json
// @Param request body models.AwardBadgeRequest true "Award Request"
// @Success 200 {object} awards.Result
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse "User not found"
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/badges/award [post]
func (c *BadgeController) awardBadge(g *gin.Context) {
	var req models.AwardBadgeRequest
	if err := g.ShouldBindJSON(&req); err != nil || req.UserID == "" || req.BadgeID == "" {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request, missing userId or badgeId"})
		return
	}

	res, err := c.awarder.Award(g.Request.Context(), req.BadgeID, req.UserID, req.Extra)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "user not found"})
			return
		}
		logging.Log.Errorf("BADGE: manual award of %s to user %s failed: %v", req.BadgeID, req.UserID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not award badge"})
		return
	}

	if res.IsNew {
		c.queue.Enqueue(*res.Badge)
	}
	g.JSON(http.StatusOK, res)
}
