package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"resto-ops/cache"
	"resto-ops/controllers"
	"resto-ops/kds"
	"resto-ops/middlewares"
	"resto-ops/services"
)

// SetupRouter merakit service + controller dan memetakan seluruh endpoint.
func SetupRouter(db *gorm.DB, store cache.Store, hub *kds.Hub, events kds.Publisher) *gin.Engine {
	r := gin.Default()

	tableSvc := services.NewTableService(db, store, events)
	reservationSvc := services.NewReservationService(db, store, events)
	kitchenSvc := services.NewKitchenService(db, store, events)
	orderSvc := services.NewOrderService(db, store, events)
	bulkSvc := services.NewBulkService(db, store, events, tableSvc, reservationSvc)

	authCtrl := controllers.NewAuthController(db)
	tableCtrl := controllers.NewTableController(tableSvc)
	reservationCtrl := controllers.NewReservationController(reservationSvc)
	kitchenCtrl := controllers.NewKitchenController(kitchenSvc, orderSvc)
	bulkCtrl := controllers.NewBulkController(bulkSvc)
	kdsCtrl := controllers.NewKDSController(hub)
	systemCtrl := controllers.NewSystemController(store, hub)

	r.POST("/login", authCtrl.Login)

	api := r.Group("/")
	api.Use(middlewares.AuthMiddleware())
	{
		tables := api.Group("/tables")
		{
			tables.GET("", tableCtrl.GetAllTables)
			tables.POST("", middlewares.RequireRoles("admin", "staff"), tableCtrl.CreateTable)
			tables.GET("/stats", tableCtrl.GetDashboardStats)
			tables.GET("/:table_id", tableCtrl.GetTableByID)
			tables.PATCH("/:table_id", middlewares.RequireRoles("admin", "staff"), tableCtrl.UpdateTable)
			tables.PATCH("/:table_id/status", tableCtrl.UpdateTableStatus)
			tables.POST("/:table_id/clean", middlewares.RequireRoles("cleaner", "staff", "admin"), tableCtrl.MarkTableClean)
			tables.GET("/:table_id/history", tableCtrl.GetStatusHistory)
			tables.DELETE("/:table_id", middlewares.RequireRoles("admin"), tableCtrl.DeleteTable)
		}

		reservations := api.Group("/reservations")
		{
			reservations.GET("", reservationCtrl.GetAllReservations)
			reservations.POST("", middlewares.RequireRoles("admin", "staff"), reservationCtrl.CreateReservation)
			reservations.PATCH("/:reservation_id", middlewares.RequireRoles("admin", "staff"), reservationCtrl.UpdateReservation)
			reservations.POST("/:reservation_id/cancel", reservationCtrl.CancelReservation)
			reservations.POST("/:reservation_id/complete", reservationCtrl.CompleteReservation)
			reservations.POST("/:reservation_id/no-show", reservationCtrl.MarkNoShow)
		}

		orders := api.Group("/orders")
		{
			orders.GET("", kitchenCtrl.GetActiveOrders)
			orders.POST("", middlewares.RequireRoles("admin", "staff"), kitchenCtrl.CreateOrder)
			orders.PATCH("/:order_id/status", kitchenCtrl.UpdateOrderStatus)
			orders.DELETE("/:order_id/displays", middlewares.RequireRoles("admin", "chef"), kitchenCtrl.DeleteOrderDisplays)
		}

		kitchen := api.Group("/kitchen")
		kitchen.Use(middlewares.RequireRoles("chef", "staff", "admin"))
		{
			kitchen.GET("/queue", kitchenCtrl.GetKitchenQueue)
			kitchen.POST("/displays", kitchenCtrl.CreateDisplay)
			kitchen.PATCH("/displays/:display_id/status", kitchenCtrl.UpdateDisplayStatus)
			kitchen.GET("/analytics", kitchenCtrl.GetKitchenAnalytics)
		}

		bulk := api.Group("/bulk")
		bulk.Use(middlewares.RequireRoles("admin", "staff"))
		{
			bulk.POST("/tables/status", bulkCtrl.BulkUpdateTableStatus)
			bulk.POST("/tables/import", bulkCtrl.ImportTables)
			bulk.POST("/tables/generate", bulkCtrl.GenerateTables)
			bulk.POST("/reservations", bulkCtrl.BulkCreateReservations)
		}

		admin := api.Group("/admin")
		admin.Use(middlewares.RequireRoles("admin"))
		{
			admin.GET("/cache/stats", systemCtrl.GetCacheStats)
			admin.GET("/realtime/stats", systemCtrl.GetRealtimeStats)
		}

		api.GET("/ws", kdsCtrl.Stream)
	}

	return r
}
