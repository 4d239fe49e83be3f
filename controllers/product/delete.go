package productcontroller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/aurelia-api/apierror"
	"github.com/junaidrashid-git/aurelia-api/controllers"
	"github.com/junaidrashid-git/aurelia-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DELETE /products/:id
//
// Soft-deletes the product and drops the cart lines that point at it, in one
// transaction. Order snapshots are untouched.
func DeleteProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := controllers.ParseID(c, "id")
		if err != nil {
			apierror.Respond(c, err)
			return
		}

		err = db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			var product models.Product
			if err := lockProduct(tx, id, &product); err != nil {
				return err
			}
			if err := tx.Where("product_id = ?", product.ID).Delete(&models.CartItem{}).Error; err != nil {
				return apierror.Storage("failed to clear cart lines", err)
			}
			if err := tx.Delete(&product).Error; err != nil {
				return apierror.Storage("failed to delete product", err)
			}
			return nil
		})
		if err != nil {
			apierror.Respond(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func lockProduct(tx *gorm.DB, id uint, product *models.Product) error {
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("product not found")
		}
		return apierror.Storage("failed to load product", err)
	}
	return nil
}
