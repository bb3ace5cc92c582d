package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resto-ops/cache"
	"resto-ops/kds"
	"resto-ops/utils"
)

type SystemController struct {
	Cache cache.Store
	Hub   *kds.Hub
}

func NewSystemController(store cache.Store, hub *kds.Hub) *SystemController {
	return &SystemController{Cache: store, Hub: hub}
}

// GetCacheStats -> visibilitas operasional cache (bukan data correctness)
func (sc *SystemController) GetCacheStats(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Cache stats", sc.Cache.Stats())
}

// GetRealtimeStats -> jumlah koneksi websocket aktif
func (sc *SystemController) GetRealtimeStats(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Realtime stats", gin.H{
		"connected_clients": sc.Hub.ClientCount(),
	})
}
