package routes

import (
	"github.com/gin-gonic/gin"
	cartControllers "github.com/junaidrashid-git/aurelia-api/controllers/cart"
	reviewControllers "github.com/junaidrashid-git/aurelia-api/controllers/review"
)

// SetupUserRoutes registers the customer-facing "/cart/*" and "/reviews/*"
// endpoints.
func SetupUserRoutes(r *gin.Engine, deps Deps) {
	// ──────────────── Shopping Cart ────────────────
	cartGroup := r.Group("/cart", requireUser(deps))
	{
		cartGroup.GET("/", cartControllers.GetUserCart(deps.DB))
		cartGroup.POST("/", cartControllers.AddCartItem(deps.DB))
		cartGroup.DELETE("/", cartControllers.ClearUserCart(deps.DB))
		cartGroup.PUT("/:item_id", cartControllers.UpdateCartItem(deps.DB))
		cartGroup.DELETE("/:item_id", cartControllers.DeleteCartItem(deps.DB))
	}

	// ──────────────── Reviews ────────────────
	reviewGroup := r.Group("/reviews")
	{
		reviewGroup.GET("/product/:product_id", reviewControllers.GetProductReviews(deps.DB))
		reviewGroup.POST("/product/:product_id", requireUser(deps), reviewControllers.CreateReview(deps.DB))
		reviewGroup.DELETE("/:id", requireUser(deps), reviewControllers.DeleteReview(deps.DB))
	}
}
