package productcontroller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/aurelia-api/apierror"
	"github.com/junaidrashid-git/aurelia-api/controllers"
	"github.com/junaidrashid-git/aurelia-api/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductPatch only changes the fields that are present.
type ProductPatch struct {
	Name          *string          `json:"name"`
	Price         *decimal.Decimal `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price"`
	Discount      *float64         `json:"discount"`
	Category      *string          `json:"category"`
	Sub           *string          `json:"sub"`
	Description   *string          `json:"description"`
	Image         *string          `json:"image"`
	Images        *[]string        `json:"images"`
	Highlights    *[]string        `json:"highlights"`
	Features      *[]string        `json:"features"`
	Rating        *float64         `json:"rating"`
	ReviewCount   *int             `json:"review_count"`
	StockQuantity *int             `json:"stock_quantity"`
	IsFeatured    *bool            `json:"is_featured"`
}

func (in ProductPatch) validate() error {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return apierror.Validation("name must not be empty")
	}
	return validateNumbers(in.Price, in.OriginalPrice, in.StockQuantity, in.Rating)
}

func (in ProductPatch) apply(p *models.Product) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.OriginalPrice != nil {
		p.OriginalPrice = in.OriginalPrice
	}
	if in.Discount != nil {
		p.Discount = in.Discount
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.Sub != nil {
		p.Sub = *in.Sub
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Image != nil {
		p.Image = *in.Image
	}
	if in.Images != nil {
		p.Images = *in.Images
	}
	if in.Highlights != nil {
		p.Highlights = *in.Highlights
	}
	if in.Features != nil {
		p.Features = *in.Features
	}
	if in.Rating != nil {
		p.Rating = *in.Rating
	}
	if in.ReviewCount != nil {
		p.ReviewCount = *in.ReviewCount
	}
	if in.StockQuantity != nil {
		p.StockQuantity = *in.StockQuantity
	}
	if in.IsFeatured != nil {
		p.IsFeatured = *in.IsFeatured
	}
}

// PUT /products/:id
func ReplaceProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ProductInput
		if err := apierror.Bind(c, &input); err != nil {
			apierror.Respond(c, err)
			return
		}
		if err := input.validate(); err != nil {
			apierror.Respond(c, err)
			return
		}
		updateProduct(c, db, input.apply)
	}
}

// PATCH /products/:id
func UpdateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ProductPatch
		if err := apierror.Bind(c, &input); err != nil {
			apierror.Respond(c, err)
			return
		}
		if err := input.validate(); err != nil {
			apierror.Respond(c, err)
			return
		}
		updateProduct(c, db, input.apply)
	}
}

// updateProduct loads, mutates and saves the product under a row lock so an
// admin edit cannot interleave with a checkout's stock decrement.
func updateProduct(c *gin.Context, db *gorm.DB, mutate func(*models.Product)) {
	id, err := controllers.ParseID(c, "id")
	if err != nil {
		apierror.Respond(c, err)
		return
	}

	var product models.Product
	err = db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := lockProduct(tx, id, &product); err != nil {
			return err
		}
		mutate(&product)
		if err := tx.Save(&product).Error; err != nil {
			return apierror.Storage("failed to update product", err)
		}
		return nil
	})
	if err != nil {
		apierror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}
