package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"resto-ops/kds"
	"resto-ops/middlewares"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type KDSController struct {
	Hub *kds.Hub
}

func NewKDSController(hub *kds.Hub) *KDSController {
	return &KDSController{Hub: hub}
}

// Stream -> endpoint WebSocket untuk chef/staff/admin/cleaner
func (kc *KDSController) Stream(c *gin.Context) {
	role := c.GetString("role")
	switch role {
	case "chef", "staff", "admin", "cleaner":
	default:
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	kc.Hub.Register(ws, role, middlewares.TenantID(c))

	// Drain sampai client disconnect; server tidak mengharapkan pesan masuk.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	kc.Hub.Unregister(ws)
}
