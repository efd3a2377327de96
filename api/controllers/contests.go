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

type ContestController struct {
	finalizer *contest.Finalizer
}

func NewContestController(finalizer *contest.Finalizer) *ContestController {
	return &ContestController{
		finalizer: finalizer,
	}
}

func (c *ContestController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api/admin", transport.AdminAuthMiddleware())

	group.POST("/contests/:id/finalize", c.finalizeContest)
	group.GET("/contests/:id/preview", c.previewWinners)
	group.GET("/finalize/last", c.lastFinalization)
}

// @Security AdminToken
// finalizeContest godoc
// @Summary Finalize a contest and award placement badges
// @Description Ranks the contest stories, transitions the contest into results and awards the placement badges
// @Tags contests
// @Produce json
// @Param id path string true "Contest ID"
// @Success 200 {object} contest.FinalizationResult
// @Failure 404 {object} models.ErrorResponse "Contest not found"
// @Failure 409 {object} contest.FinalizationResult "Already finalized or no participants"
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/contests/{id}/finalize [post]
func (c *ContestController) finalizeContest(g *gin.Context) {
	contestID := g.Param("id")
	if contestID == "" {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "contest id is required"})
		return
	}

	result, err := c.finalizer.Finalize(g.Request.Context(), contestID)
	if err != nil {
		if errors.Is(err, storage.ErrContestNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "contest not found"})
			return
		}
		logging.Log.Errorf("CONTEST: finalize failed for %s: %v", contestID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not finalize contest"})
		return
	}

	if !result.Success {
		g.JSON(http.StatusConflict, result)
		return
	}
	g.JSON(http.StatusOK, result)
}

// @Security AdminToken
// previewWinners godoc
// @Summary Preview the contest ranking without finalizing
// @Description Read-only ranking, identical to what a later finalize will commit given unchanged data
// @Tags contests
// @Produce json
// @Param id path string true "Contest ID"
// @Success 200 {object} models.PreviewWinnersResponse
// @Failure 404 {object} models.ErrorResponse "Contest not found"
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/contests/{id}/preview [get]
func (c *ContestController) previewWinners(g *gin.Context) {
	contestID := g.Param("id")
	if contestID == "" {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "contest id is required"})
		return
	}

	ranked, names, err := c.finalizer.PreviewWinners(g.Request.Context(), contestID)
	if err != nil {
		if errors.Is(err, storage.ErrContestNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "contest not found"})
			return
		}
		logging.Log.Errorf("CONTEST: preview failed for %s: %v", contestID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not preview winners"})
		return
	}

	g.JSON(http.StatusOK, models.TransformPreviewToResponse(ranked, names))
}

// @Security AdminToken
// lastFinalization godoc
// @Summary Return the most recent finalization result
// @Tags contests
// @Produce json
// @Success 200 {object} contest.FinalizationResult
// @Failure 404 {object} models.ErrorResponse "No finalization has run yet"
// @Router /api/admin/finalize/last [get]
func (c *ContestController) lastFinalization(g *gin.Context) {
	result := c.finalizer.LastResult()
	if result == nil {
		g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "no finalization has run in this session"})
		return
	}
	g.JSON(http.StatusOK, result)
}
