package controllers

import (
	"net/http"

	"github.com/cristianccgg/letranido-backend/api/models"
	"github.com/cristianccgg/letranido-backend/notify"
	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	queue *notify.Queue
}

func NewNotificationController(queue *notify.Queue) *NotificationController {
	return &NotificationController{
		queue: queue,
	}
}

func (c *NotificationController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api")

	group.GET("/notifications/current", c.currentNotification)
	group.POST("/notifications/dismiss", c.dismissNotification)
}

// currentNotification godoc
// @Summary Return the notification currently due for display
// @Description At most one notification is current at a time; polling this endpoint also drives queue promotion
// @Tags notifications
// @Produce json
// @Success 200 {object} models.CurrentNotificationResponse
// @Router /api/notifications/current [get]
func (c *NotificationController) currentNotification(g *gin.Context) {
	g.JSON(http.StatusOK, models.CurrentNotificationResponse{
		Notification: c.queue.Current(),
		QueueDepth:   c.queue.Len(),
	})
}

// dismissNotification godoc
// @Summary Dismiss the currently displayed notification
// @Tags notifications
// @Produce json
// @Success 200 {object} map[string]string
// @Router /api/notifications/dismiss [post]
func (c *NotificationController) dismissNotification(g *gin.Context) {
	c.queue.Dismiss()
	g.JSON(http.StatusOK, gin.H{"message": "dismissed"})
}
