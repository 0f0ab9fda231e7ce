package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/garcom-app/cart"
	"github.com/yeremiapane/garcom-app/config"
	"github.com/yeremiapane/garcom-app/controllers"
	"github.com/yeremiapane/garcom-app/live"
	"github.com/yeremiapane/garcom-app/middlewares"
	"github.com/yeremiapane/garcom-app/services"
)

// SetupRouter wires services and controllers over db. Change notifications
// go to hub.
func SetupRouter(db *gorm.DB, hub *live.Hub, cfg config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(cfg.AllowedOrigin))
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.NewRateLimiter(cfg.RateLimit).RateLimit())

	carts := cart.NewStore()
	tableSvc := services.NewTableService(db, hub)
	itemSvc := services.NewItemService(db, hub)
	orderSvc := services.NewOrderService(db, hub)
	catalogSvc := services.NewCatalogService(db, hub)

	tableCtrl := controllers.NewTableController(tableSvc, itemSvc, carts)
	orderCtrl := controllers.NewOrderController(tableSvc, catalogSvc, orderSvc, carts)
	itemCtrl := controllers.NewItemController(itemSvc)
	historyCtrl := controllers.NewHistoryController(tableSvc, itemSvc)
	productCtrl := controllers.NewProductController(catalogSvc)
	liveCtrl := controllers.NewLiveController(hub, tableCtrl, cfg.AllowedOrigin)

	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": false, "message": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  true,
			"message": "ok",
			"data":    gin.H{"live_clients": hub.Clients()},
		})
	})

	r.GET("/ws", liveCtrl.Events)
	r.GET("/ws/tables", liveCtrl.OpenTablesFeed)

	api := r.Group("/api")
	{
		tables := api.Group("/tables")
		tables.GET("", tableCtrl.GetOpenTables)
		tables.POST("", tableCtrl.OpenTable)
		tables.GET("/:table_id", tableCtrl.GetTable)
		tables.GET("/:table_id/items", tableCtrl.GetTableItems)
		tables.PATCH("/:table_id/finalizing", tableCtrl.MarkFinalizing)
		tables.POST("/:table_id/close", tableCtrl.CloseTable)
		tables.PUT("/:table_id/launch-status", tableCtrl.ForceLaunchStatus)
		tables.POST("/:table_id/launch-status/recompute", tableCtrl.RecomputeLaunchStatus)

		// cart of the table being served
		tables.GET("/:table_id/cart", orderCtrl.GetCart)
		tables.DELETE("/:table_id/cart", orderCtrl.ClearCart)
		tables.POST("/:table_id/cart/items", orderCtrl.AddCartItem)
		tables.DELETE("/:table_id/cart/products/:product_id", orderCtrl.RemoveCartProduct)
		tables.PUT("/:table_id/cart/notes/:product_id", orderCtrl.SetCartNote)
		tables.POST("/:table_id/cart/commit", orderCtrl.CommitCart)

		items := api.Group("/items")
		items.GET("/:item_id", itemCtrl.GetItem)
		items.PATCH("/:item_id", itemCtrl.EditItem)
		items.POST("/:item_id/toggle-delivered", itemCtrl.ToggleDelivered)
		items.POST("/:item_id/toggle-launched", itemCtrl.ToggleLaunched)
		items.POST("/:item_id/toggle-cancelled", itemCtrl.ToggleCancelled)

		api.GET("/history", historyCtrl.GetHistory)
		api.DELETE("/history", historyCtrl.PurgeHistory)

		products := api.Group("/products")
		products.GET("", productCtrl.GetProducts)
		products.POST("", productCtrl.CreateProduct)
		products.GET("/:product_id", productCtrl.GetProduct)
		products.PUT("/:product_id", productCtrl.UpdateProduct)
		products.DELETE("/:product_id", productCtrl.DeleteProduct)
		products.GET("/:product_id/options", productCtrl.GetProductOptions)

		api.GET("/catalog/export", productCtrl.ExportCatalog)
		api.POST("/catalog/import", productCtrl.ImportCatalog)
	}

	return r
}
