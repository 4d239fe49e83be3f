package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/aurelia-api/auth"
	"github.com/junaidrashid-git/aurelia-api/config"
	orderControllers "github.com/junaidrashid-git/aurelia-api/controllers/order"
	productcontroller "github.com/junaidrashid-git/aurelia-api/controllers/product"
	"github.com/junaidrashid-git/aurelia-api/metrics"
	"github.com/junaidrashid-git/aurelia-api/middleware"
	"github.com/junaidrashid-git/aurelia-api/models"
	"gorm.io/gorm"
)

// Deps are the long-lived collaborators every route group draws from.
type Deps struct {
	DB      *gorm.DB
	Tokens  *auth.TokenManager
	Feed    *orderControllers.Feed
	Metrics *metrics.ServerMetrics
	Images  *productcontroller.ImageStore
}

// NewRouter builds the gin engine with CORS, recovery, request logging and
// metrics, then mounts every route group.
func NewRouter(cfg *config.Config, deps Deps, logger *slog.Logger) *gin.Engine {
	r := gin.New()

	// Workbook and image uploads.
	r.MaxMultipartMemory = 32 << 20

	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RequestLogger(logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	if deps.Images != nil {
		r.Static(deps.Images.PublicPath, deps.Images.Dir)
	}

	SetupRoutes(r, deps)
	return r
}

// SetupRoutes is the single entry-point that wires up every route group.
func SetupRoutes(r *gin.Engine, deps Deps) {
	health := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	r.GET("/", health)
	r.GET("/health", health)

	SetupAuthRoutes(r, deps)
	SetupProductRoutes(r, deps)
	SetupUserRoutes(r, deps)
	SetupOrderRoutes(r, deps)
	SetupAdminRoutes(r, deps)
}

func requireUser(deps Deps) gin.HandlerFunc {
	return middleware.RequireUser(deps.DB, deps.Tokens)
}

func requireAdmin(deps Deps) []gin.HandlerFunc {
	return []gin.HandlerFunc{requireUser(deps), middleware.RequireRole(models.RoleAdmin)}
}
