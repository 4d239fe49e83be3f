package routes

import (
	"github.com/gin-gonic/gin"
	productcontroller "github.com/junaidrashid-git/aurelia-api/controllers/product"
	userControllers "github.com/junaidrashid-git/aurelia-api/controllers/user"
)

// SetupProductRoutes registers the public catalog reads.
func SetupProductRoutes(r *gin.Engine, deps Deps) {
	products := r.Group("/products")
	{
		products.GET("/", productcontroller.GetProducts(deps.DB))
		products.GET("/search", productcontroller.SearchProducts(deps.DB))
		products.GET("/categories", productcontroller.GetAllCategories(deps.DB))
		products.GET("/category/:category", productcontroller.GetProductsByCategory(deps.DB))
		products.GET("/:id", productcontroller.GetProductByID(deps.DB))
	}
}

// SetupAdminRoutes registers every admin-only endpoint. Requires an admin
// bearer token.
func SetupAdminRoutes(r *gin.Engine, deps Deps) {
	// ─────────── Product Management ───────────
	productAdmin := r.Group("/products", requireAdmin(deps)...)
	{
		productAdmin.POST("/", productcontroller.CreateProduct(deps.DB))
		productAdmin.PUT("/:id", productcontroller.ReplaceProduct(deps.DB))
		productAdmin.PATCH("/:id", productcontroller.UpdateProduct(deps.DB))
		productAdmin.DELETE("/:id", productcontroller.DeleteProduct(deps.DB))
		productAdmin.POST("/:id/images", productcontroller.UploadProductImage(deps.DB, deps.Images))
		productAdmin.DELETE("/:id/images", productcontroller.DeleteProductImage(deps.DB, deps.Images))
		productAdmin.GET("/admin/export", productcontroller.ExportProductsToExcel(deps.DB))
		productAdmin.POST("/admin/import", productcontroller.ImportProductsFromExcel(deps.DB))
	}

	// ─────────── User Management ───────────
	adminGroup := r.Group("/admin", requireAdmin(deps)...)
	{
		adminGroup.GET("/users", userControllers.GetAllUsers(deps.DB))
		adminGroup.PATCH("/users/:id/role", userControllers.UpdateUserRole(deps.DB))
	}
}
