package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/virginiacakes/storefront-backend/internal/middleware"
	ws "github.com/virginiacakes/storefront-backend/internal/websocket"
)

// FeedController upgrades admin dashboards to the live event feed
type FeedController struct {
	hub            *ws.Hub
	allowedOrigins []string
}

func NewFeedController(hub *ws.Hub, allowedOrigins []string) *FeedController {
	return &FeedController{
		hub:            hub,
		allowedOrigins: allowedOrigins,
	}
}

// Connect registers the admin as a feed client
// GET /api/admin/ws
func (ctrl *FeedController) Connect(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	conn, err := ws.Upgrade(c.Writer, c.Request, ctrl.allowedOrigins)
	if err != nil {
		// the upgrader has already written the HTTP error
		log.Warn("Failed to upgrade admin feed", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		return
	}

	client := ws.NewClient(ctrl.hub, conn, userID)
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	log.Info("Admin feed connected", map[string]interface{}{
		"user_id":   userID,
		"connected": ctrl.hub.ConnectedAdmins(),
	})
}
