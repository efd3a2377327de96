package controllers

import (
	"errors"
	"net/http"

	"github.com/cristianccgg/letranido-backend/api/models"
	"github.com/cristianccgg/letranido-backend/founder"
	"github.com/cristianccgg/letranido-backend/logging"
	"github.com/cristianccgg/letranido-backend/storage"
	"github.com/gin-gonic/gin"
)

type FounderController struct {
	checker *founder.Checker
}

func NewFounderController(checker *founder.Checker) *FounderController {
	return &FounderController{
		checker: checker,
	}
}

func (c *FounderController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api/founder")

	group.POST("/check/:userId", c.checkFounderStatus)
	group.GET("/celebration", c.celebrationStatus)
	group.POST("/celebration/dismiss", c.dismissCelebration)
}

// checkFounderStatus godoc
// @Summary Run the one-time founder badge check for a user
// @Description No-op outside the launch window or for already-processed users
// @Tags founder
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} models.FounderCelebrationResponse
// @Failure 404 {object} models.ErrorResponse "User not found"
// @Failure 500 {object} models.ErrorResponse
// @Router /api/founder/check/{userId} [post]
func (c *FounderController) checkFounderStatus(g *gin.Context) {
	userID := g.Param("userId")
	if userID == "" {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "user id is required"})
		return
	}

	if err := c.checker.Check(g.Request.Context(), userID); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "user not found"})
			return
		}
		logging.Log.Errorf("FOUNDER: check failed for user %s: %v", userID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "founder check failed"})
		return
	}

	g.JSON(http.StatusOK, models.FounderCelebrationResponse{Show: c.checker.ShowCelebration()})
}

// celebrationStatus godoc
// @Summary Report whether the founder celebration should be shown
// @Tags founder
// @Produce json
// @Success 200 {object} models.FounderCelebrationResponse
// @Router /api/founder/celebration [get]
func (c *FounderController) celebrationStatus(g *gin.Context) {
	g.JSON(http.StatusOK, models.FounderCelebrationResponse{Show: c.checker.ShowCelebration()})
}

// dismissCelebration godoc
// @Summary Dismiss the founder celebration
// @Tags founder
// @Produce json
// @Success 200 {object} map[string]string
// @Router /api/founder/celebration/dismiss [post]
func (c *FounderController) dismissCelebration(g *gin.Context) {
	c.checker.DismissCelebration()
	g.JSON(http.StatusOK, gin.H{"message": "dismissed"})
}
