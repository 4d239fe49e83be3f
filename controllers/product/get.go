package productcontroller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/aurelia-api/apierror"
	"github.com/junaidrashid-git/aurelia-api/controllers"
	"github.com/junaidrashid-git/aurelia-api/models"
	"gorm.io/gorm"
)

// GetProductByID returns a single product.
// URL param: /products/:id
func GetProductByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := controllers.ParseID(c, "id")
		if err != nil {
			apierror.Respond(c, err)
			return
		}

		var product models.Product
		if err := db.WithContext(c.Request.Context()).First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apierror.Respond(c, apierror.NotFound("product not found"))
				return
			}
			apierror.Respond(c, apierror.Storage("failed to retrieve product", err))
			return
		}
		c.JSON(http.StatusOK, product)
	}
}
