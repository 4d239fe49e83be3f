package productcontroller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/aurelia-api/apierror"
	"github.com/junaidrashid-git/aurelia-api/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductInput is the full product body used by create and replace.
type ProductInput struct {
	Name          string           `json:"name"`
	Price         *decimal.Decimal `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price"`
	Discount      *float64         `json:"discount"`
	Category      string           `json:"category"`
	Sub           string           `json:"sub"`
	Description   string           `json:"description"`
	Image         string           `json:"image"`
	Images        []string         `json:"images"`
	Highlights    []string         `json:"highlights"`
	Features      []string         `json:"features"`
	Rating        float64          `json:"rating"`
	ReviewCount   int              `json:"review_count"`
	StockQuantity int              `json:"stock_quantity"`
	IsFeatured    bool             `json:"is_featured"`
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return apierror.Validation("name is required")
	}
	if in.Price == nil {
		return apierror.Validation("price is required")
	}
	return validateNumbers(in.Price, in.OriginalPrice, &in.StockQuantity, &in.Rating)
}

func (in ProductInput) apply(p *models.Product) {
	p.Name = strings.TrimSpace(in.Name)
	p.Price = *in.Price
	p.OriginalPrice = in.OriginalPrice
	p.Discount = in.Discount
	p.Category = in.Category
	p.Sub = in.Sub
	p.Description = in.Description
	p.Image = in.Image
	p.Images = in.Images
	p.Highlights = in.Highlights
	p.Features = in.Features
	p.Rating = in.Rating
	p.ReviewCount = in.ReviewCount
	p.StockQuantity = in.StockQuantity
	p.IsFeatured = in.IsFeatured
}

func validateNumbers(price, originalPrice *decimal.Decimal, stock *int, rating *float64) error {
	if price != nil && !price.IsPositive() {
		return apierror.Validation("price must be greater than zero")
	}
	if originalPrice != nil && originalPrice.IsNegative() {
		return apierror.Validation("original_price must not be negative")
	}
	if stock != nil && *stock < 0 {
		return apierror.Validation("stock_quantity must not be negative")
	}
	if rating != nil && (*rating < 0 || *rating > 5) {
		return apierror.Validation("rating must be between 0 and 5")
	}
	return nil
}

// POST /products/
func CreateProduct(db *gorm.DB) gin.HandlerFunc {
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

		var product models.Product
		input.apply(&product)
		if err := db.WithContext(c.Request.Context()).Create(&product).Error; err != nil {
			apierror.Respond(c, apierror.Storage("failed to create product", err))
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}
