package cartControllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/aurelia-api/apierror"
	"github.com/junaidrashid-git/aurelia-api/auth"
	"github.com/junaidrashid-git/aurelia-api/controllers"
	"github.com/junaidrashid-git/aurelia-api/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxQuantity caps a single cart line, including merged adds.
const MaxQuantity = 999

type CartItemInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1,max=999"`
}

// SetQuantityInput allows zero or negative values, which remove the line.
type SetQuantityInput struct {
	Quantity *int `json:"quantity" binding:"required,max=999"`
}

type ProductSummary struct {
	ID      uint            `json:"id"`
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
	Image   string          `json:"image"`
	InStock bool            `json:"in_stock"`
}

type CartLine struct {
	models.CartItem
	Product *ProductSummary `json:"product"`
}

// AddToCart merges quantity into the (user, product) line, creating it if
// needed. Stock and product existence are checked at checkout, not here.
func AddToCart(db *gorm.DB, userID, productID uint, quantity int) (*models.CartItem, error) {
	if quantity < 1 || quantity > MaxQuantity {
		return nil, apierror.Validation(fmt.Sprintf("quantity must be between 1 and %d", MaxQuantity))
	}

	var item models.CartItem
	err := db.Transaction(func(tx *gorm.DB) error {
		var existing models.CartItem
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND product_id = ?", userID, productID).
			Limit(1).Find(&existing).Error
		if err != nil {
			return err
		}
		if existing.Quantity+quantity > MaxQuantity {
			return apierror.Validation(fmt.Sprintf("a cart line may hold at most %d units", MaxQuantity))
		}

		upsert := models.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
				"updated_at": gorm.Expr("excluded.updated_at"),
			}),
		}).Create(&upsert).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error
	})
	if err != nil {
		var apiErr *apierror.Error
		if errors.As(err, &apiErr) {
			return nil, apiErr
		}
		return nil, apierror.Storage("failed to add item to cart", err)
	}
	return &item, nil
}

// POST /cart/
func AddCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := auth.CurrentIdentity(c)

		var input CartItemInput
		if err := apierror.Bind(c, &input); err != nil {
			apierror.Respond(c, err)
			return
		}

		item, err := AddToCart(db.WithContext(c.Request.Context()), id.UserID, input.ProductID, input.Quantity)
		if err != nil {
			apierror.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, item)
	}
}

// PUT /cart/:item_id
func UpdateCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := auth.CurrentIdentity(c)
		itemID, err := controllers.ParseID(c, "item_id")
		if err != nil {
			apierror.Respond(c, err)
			return
		}
		var input SetQuantityInput
		if err := apierror.Bind(c, &input); err != nil {
			apierror.Respond(c, err)
			return
		}

		tx := db.WithContext(c.Request.Context())
		item, err := findOwnItem(tx, id.UserID, itemID)
		if err != nil {
			apierror.Respond(c, err)
			return
		}

		if *input.Quantity <= 0 {
			if err := tx.Delete(item).Error; err != nil {
				apierror.Respond(c, apierror.Storage("failed to delete item", err))
				return
			}
			c.Status(http.StatusNoContent)
			return
		}

		item.Quantity = *input.Quantity
		if err := tx.Save(item).Error; err != nil {
			apierror.Respond(c, apierror.Storage("failed to update cart item", err))
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// DELETE /cart/:item_id
func DeleteCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := auth.CurrentIdentity(c)
		itemID, err := controllers.ParseID(c, "item_id")
		if err != nil {
			apierror.Respond(c, err)
			return
		}

		result := db.WithContext(c.Request.Context()).
			Where("id = ? AND user_id = ?", itemID, id.UserID).
			Delete(&models.CartItem{})
		if result.Error != nil {
			apierror.Respond(c, apierror.Storage("failed to delete item", result.Error))
			return
		}
		if result.RowsAffected == 0 {
			apierror.Respond(c, apierror.NotFound("cart item not found"))
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// DELETE /cart/
func ClearUserCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := auth.CurrentIdentity(c)
		if err := db.WithContext(c.Request.Context()).
			Where("user_id = ?", id.UserID).
			Delete(&models.CartItem{}).Error; err != nil {
			apierror.Respond(c, apierror.Storage("failed to clear cart", err))
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// GET /cart/
func GetUserCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := auth.CurrentIdentity(c)
		tx := db.WithContext(c.Request.Context())

		var items []models.CartItem
		if err := tx.Where("user_id = ?", id.UserID).Order("id").Find(&items).Error; err != nil {
			apierror.Respond(c, apierror.Storage("failed to fetch cart", err))
			return
		}

		lines, err := enrich(tx, items)
		if err != nil {
			apierror.Respond(c, apierror.Storage("failed to fetch cart products", err))
			return
		}
		c.JSON(http.StatusOK, lines)
	}
}

// enrich attaches a product summary to each line; deleted products give nil.
func enrich(tx *gorm.DB, items []models.CartItem) ([]CartLine, error) {
	lines := make([]CartLine, 0, len(items))
	if len(items) == 0 {
		return lines, nil
	}

	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	var products []models.Product
	if err := tx.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, it := range items {
		line := CartLine{CartItem: it}
		if p, ok := byID[it.ProductID]; ok {
			line.Product = &ProductSummary{ID: p.ID, Name: p.Name, Price: p.Price, Image: p.Image, InStock: p.InStock}
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func findOwnItem(tx *gorm.DB, userID, itemID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := tx.Where("id = ? AND user_id = ?", itemID, userID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("cart item not found")
		}
		return nil, apierror.Storage("failed to fetch cart item", err)
	}
	return &item, nil
}
