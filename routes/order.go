package routes

import (
	"github.com/gin-gonic/gin"
	orderControllers "github.com/junaidrashid-git/aurelia-api/controllers/order"
)

func SetupOrderRoutes(r *gin.Engine, deps Deps) {
	orders := r.Group("/orders", requireUser(deps))
	{
		// Checkout the caller's cart
		orders.POST("/", orderControllers.PlaceOrderHandler(deps.DB, deps.Feed, deps.Metrics))

		orders.GET("/", orderControllers.ListMyOrders(deps.DB))
		orders.GET("/:id", orderControllers.GetMyOrder(deps.DB))
	}

	admin := r.Group("/orders/admin", requireAdmin(deps)...)
	{
		admin.GET("/all", orderControllers.ListAllOrders(deps.DB))
		admin.PATCH("/:id/status", orderControllers.UpdateOrderStatusHandler(deps.DB, deps.Feed))

		// websocket endpoint for real-time order updates
		admin.GET("/feed", orderControllers.FeedHandler(deps.Feed))
	}
}
