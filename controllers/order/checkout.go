package orderControllers

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/junaidrashid-git/aurelia-api/apierror"
	"github.com/junaidrashid-git/aurelia-api/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CheckoutInput struct {
	ShippingAddress *string `json:"shipping_address"`
}

// StockShortage identifies a cart line that cannot be fulfilled.
type StockShortage struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
}

// MissingProducts is the detail body when cart lines point at deleted products.
type MissingProducts struct {
	ProductIDs []uint `json:"product_ids"`
}

// Checkout turns the user's cart into a pending order in one transaction:
// lock cart and product rows, verify stock for every line, snapshot prices,
// insert the order, decrement stock, clear the cart. Any failure rolls back
// everything, so a rejected checkout leaves cart, stock and orders untouched.
func Checkout(ctx context.Context, db *gorm.DB, userID uint, input CheckoutInput) (*models.Order, error) {
	var order models.Order

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Locking the cart rows serializes concurrent checkouts by one user.
		var lines []models.CartItem
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			Order("id").
			Find(&lines).Error; err != nil {
			return apierror.Storage("failed to load cart", err)
		}
		if len(lines) == 0 {
			return apierror.BadRequest("cart is empty")
		}

		products, err := lockProducts(tx, lines)
		if err != nil {
			return err
		}
		if err := verifyLines(lines, products); err != nil {
			return err
		}

		order = models.Order{
			OrderRef:        newOrderRef(),
			UserID:          userID,
			Status:          models.OrderStatusPending,
			ShippingAddress: input.ShippingAddress,
		}
		total := decimal.Zero
		for _, line := range lines {
			p := products[line.ProductID]
			subtotal := p.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			total = total.Add(subtotal)
			order.Items = append(order.Items, models.OrderItem{
				ProductID:   p.ID,
				ProductName: p.Name,
				UnitPrice:   p.Price,
				Quantity:    line.Quantity,
				Subtotal:    subtotal,
			})
		}
		order.Total = total

		if err := tx.Create(&order).Error; err != nil {
			return apierror.Storage("failed to create order", err)
		}

		for _, line := range lines {
			if err := decrementStock(tx, products[line.ProductID], line.Quantity); err != nil {
				return err
			}
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
			return apierror.Storage("failed to clear cart", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// lockProducts reads and row-locks every product referenced by the cart, in
// id order so concurrent checkouts acquire locks in the same sequence.
func lockProducts(tx *gorm.DB, lines []models.CartItem) (map[uint]models.Product, error) {
	ids := make([]uint, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var rows []models.Product
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, apierror.Storage("failed to load products", err)
	}

	products := make(map[uint]models.Product, len(rows))
	for _, p := range rows {
		products[p.ID] = p
	}
	return products, nil
}

// verifyLines rejects the whole cart if any product is gone or short.
func verifyLines(lines []models.CartItem, products map[uint]models.Product) error {
	var missing []uint
	var short []StockShortage
	for _, line := range lines {
		p, ok := products[line.ProductID]
		if !ok {
			missing = append(missing, line.ProductID)
			continue
		}
		if p.StockQuantity < line.Quantity {
			short = append(short, StockShortage{
				ProductID:   p.ID,
				ProductName: p.Name,
				Requested:   line.Quantity,
				Available:   p.StockQuantity,
			})
		}
	}

	if len(missing) > 0 {
		return &apierror.Error{
			Kind:    apierror.KindNotFound,
			Message: "cart contains products that no longer exist",
			Details: MissingProducts{ProductIDs: missing},
		}
	}
	if len(short) > 0 {
		return apierror.Conflict("insufficient stock", short)
	}
	return nil
}

// decrementStock is guarded on the current stock so it can never go negative,
// even if the row lock were unavailable.
func decrementStock(tx *gorm.DB, p models.Product, qty int) error {
	res := tx.Model(&models.Product{}).
		Where("id = ? AND stock_quantity >= ?", p.ID, qty).
		UpdateColumns(map[string]any{
			"stock_quantity": gorm.Expr("stock_quantity - ?", qty),
			"in_stock":       gorm.Expr("stock_quantity > ?", qty),
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return apierror.Storage("failed to update stock", res.Error)
	}
	if res.RowsAffected != 1 {
		return apierror.Conflict("insufficient stock", []StockShortage{{
			ProductID:   p.ID,
			ProductName: p.Name,
			Requested:   qty,
			Available:   p.StockQuantity,
		}})
	}
	return nil
}

// newOrderRef looks like 20250908130500-<uuid4>.
func newOrderRef() string {
	return time.Now().UTC().Format("20060102150405") + "-" + uuid.NewString()
}
