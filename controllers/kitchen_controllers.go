package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resto-ops/middlewares"
	"resto-ops/services"
	"resto-ops/utils"
)

type KitchenController struct {
	Kitchen *services.KitchenService
	Orders  *services.OrderService
}

func NewKitchenController(kitchen *services.KitchenService, orders *services.OrderService) *KitchenController {
	return &KitchenController{Kitchen: kitchen, Orders: orders}
}

// CreateOrder -> order baru untuk satu meja
func (kc *KitchenController) CreateOrder(c *gin.Context) {
	var body struct {
		TableID uint `json:"table_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := kc.Orders.CreateOrder(middlewares.TenantID(c), body.TableID)
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// UpdateOrderStatus -> transisi status order
func (kc *KitchenController) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := parseID(c, "order_id")
	if !ok {
		return
	}

	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := kc.Orders.UpdateOrderStatus(middlewares.TenantID(c), orderID, body.Status)
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}

// GetActiveOrders -> order yang masih hidup
func (kc *KitchenController) GetActiveOrders(c *gin.Context) {
	orders, err := kc.Orders.ListActiveOrders(middlewares.TenantID(c))
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Active orders", orders)
}

// CreateDisplay -> daftarkan station untuk satu order
func (kc *KitchenController) CreateDisplay(c *gin.Context) {
	var req services.CreateDisplayInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	display, err := kc.Kitchen.CreateDisplay(middlewares.TenantID(c), req)
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Kitchen display created", display)
}

// UpdateDisplayStatus -> chef memajukan status satu station
func (kc *KitchenController) UpdateDisplayStatus(c *gin.Context) {
	displayID, ok := parseID(c, "display_id")
	if !ok {
		return
	}

	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	display, err := kc.Kitchen.UpdateDisplayStatus(middlewares.TenantID(c), displayID, body.Status)
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Kitchen display updated", display)
}

// GetKitchenQueue -> antrian dapur aktif (opsional per station)
func (kc *KitchenController) GetKitchenQueue(c *gin.Context) {
	displays, err := kc.Kitchen.ListDisplays(middlewares.TenantID(c), c.Query("station"))
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Kitchen queue", displays)
}

// DeleteOrderDisplays -> hapus tracking dapur setelah order terminal
func (kc *KitchenController) DeleteOrderDisplays(c *gin.Context) {
	orderID, ok := parseID(c, "order_id")
	if !ok {
		return
	}

	if err := kc.Kitchen.DeleteDisplaysForOrder(middlewares.TenantID(c), orderID); err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Kitchen displays removed", gin.H{"order_id": orderID})
}

// GetKitchenAnalytics -> metrik prep time / on-time / workload
func (kc *KitchenController) GetKitchenAnalytics(c *gin.Context) {
	analytics, err := kc.Kitchen.Analytics(middlewares.TenantID(c), c.Query("station"))
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Kitchen analytics", analytics)
}
