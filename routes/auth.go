package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/aurelia-api/auth"
	userControllers "github.com/junaidrashid-git/aurelia-api/controllers/user"
)

// SetupAuthRoutes registers all "/auth/*" endpoints.
func SetupAuthRoutes(r *gin.Engine, deps Deps) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", auth.Register(deps.DB, deps.Tokens))
		authGroup.POST("/login", auth.Login(deps.DB, deps.Tokens))

		authGroup.GET("/me", requireUser(deps), auth.Me(deps.DB))
		authGroup.PUT("/me", requireUser(deps), userControllers.UpdateUser(deps.DB))
	}
}
