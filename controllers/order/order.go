package orderControllers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/aurelia-api/apierror"
	"github.com/junaidrashid-git/aurelia-api/auth"
	"github.com/junaidrashid-git/aurelia-api/controllers"
	"github.com/junaidrashid-git/aurelia-api/metrics"
	"github.com/junaidrashid-git/aurelia-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// POST /orders/
func PlaceOrderHandler(db *gorm.DB, feed *Feed, m *metrics.ServerMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := auth.CurrentIdentity(c)

		// The body is optional; an empty one means no shipping address.
		var input CheckoutInput
		if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
			m.ObserveCheckout("invalid")
			apierror.Respond(c, apierror.BadRequest("malformed request body: "+err.Error()))
			return
		}

		order, err := Checkout(c.Request.Context(), db, id.UserID, input)
		if err != nil {
			m.ObserveCheckout(checkoutOutcome(err))
			apierror.Respond(c, err)
			return
		}

		m.ObserveCheckout("success")
		slog.InfoContext(c.Request.Context(), "order placed",
			slog.Uint64("order_id", uint64(order.ID)),
			slog.String("order_ref", order.OrderRef),
			slog.Uint64("user_id", uint64(id.UserID)),
			slog.String("total", order.Total.StringFixed(2)),
		)
		feed.Publish(FeedEvent{Type: EventOrderCreated, Order: order})
		c.JSON(http.StatusCreated, order)
	}
}

// GET /orders/
func ListMyOrders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := auth.CurrentIdentity(c)

		var orders []models.Order
		if err := db.WithContext(c.Request.Context()).
			Preload("Items", itemsInCartOrder).
			Where("user_id = ?", id.UserID).
			Order("created_at DESC, id DESC").
			Find(&orders).Error; err != nil {
			apierror.Respond(c, apierror.Storage("failed to fetch orders", err))
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /orders/:id
func GetMyOrder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := auth.CurrentIdentity(c)
		orderID, err := controllers.ParseID(c, "id")
		if err != nil {
			apierror.Respond(c, err)
			return
		}

		var order models.Order
		err = db.WithContext(c.Request.Context()).
			Preload("Items", itemsInCartOrder).
			Where("id = ? AND user_id = ?", orderID, id.UserID).
			First(&order).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apierror.Respond(c, apierror.NotFound("order not found"))
				return
			}
			apierror.Respond(c, apierror.Storage("failed to fetch order", err))
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// GET /orders/admin/all
func ListAllOrders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var orders []models.Order
		if err := db.WithContext(c.Request.Context()).
			Preload("Items", itemsInCartOrder).
			Order("created_at DESC, id DESC").
			Find(&orders).Error; err != nil {
			apierror.Respond(c, apierror.Storage("failed to fetch orders", err))
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// PATCH /orders/admin/:id/status
func UpdateOrderStatusHandler(db *gorm.DB, feed *Feed) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := controllers.ParseID(c, "id")
		if err != nil {
			apierror.Respond(c, err)
			return
		}
		var req UpdateOrderStatusRequest
		if err := apierror.Bind(c, &req); err != nil {
			apierror.Respond(c, err)
			return
		}
		next, ok := models.ParseOrderStatus(req.Status)
		if !ok {
			apierror.Respond(c, apierror.Validation("invalid status. Must be one of: "+statusList()))
			return
		}

		order, changed, err := UpdateOrderStatus(c.Request.Context(), db, orderID, next)
		if err != nil {
			apierror.Respond(c, err)
			return
		}
		if changed {
			feed.Publish(FeedEvent{Type: EventOrderStatus, Order: order})
		}
		c.JSON(http.StatusOK, order)
	}
}

// UpdateOrderStatus moves an order to next if the lifecycle allows it.
// Setting the current status again is a no-op.
func UpdateOrderStatus(ctx context.Context, db *gorm.DB, orderID uint, next models.OrderStatus) (*models.Order, bool, error) {
	var order models.Order
	changed := false

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("order not found")
			}
			return apierror.Storage("failed to load order", err)
		}
		if order.Status == next {
			return loadItems(tx, &order)
		}
		if !order.Status.CanTransition(next) {
			return apierror.Conflict(
				"cannot change order status from "+string(order.Status)+" to "+string(next), nil)
		}
		if err := tx.Model(&order).Update("status", next).Error; err != nil {
			return apierror.Storage("failed to update order status", err)
		}
		order.Status = next
		changed = true
		return loadItems(tx, &order)
	})
	if err != nil {
		return nil, false, err
	}
	return &order, changed, nil
}

// Items are inserted in cart order, so id order is cart order.
func itemsInCartOrder(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

func loadItems(tx *gorm.DB, order *models.Order) error {
	if err := tx.Where("order_id = ?", order.ID).Order("id").Find(&order.Items).Error; err != nil {
		return apierror.Storage("failed to load order items", err)
	}
	return nil
}

func checkoutOutcome(err error) string {
	var apiErr *apierror.Error
	if !errors.As(err, &apiErr) {
		return "error"
	}
	switch apiErr.Kind {
	case apierror.KindConflict:
		return "insufficient_stock"
	case apierror.KindBadRequest:
		return "empty_cart"
	case apierror.KindNotFound:
		return "missing_product"
	}
	return "error"
}

func statusList() string {
	names := make([]string, len(models.OrderStatuses))
	for i, s := range models.OrderStatuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
