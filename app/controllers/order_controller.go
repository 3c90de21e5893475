package controllers

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/bazaar/app/jobs"
	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/pkg/ctx"
	"github.com/shashiranjanraj/bazaar/pkg/event"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"github.com/shashiranjanraj/bazaar/pkg/metrics"
	"github.com/shashiranjanraj/bazaar/pkg/middleware"
	"github.com/shashiranjanraj/bazaar/pkg/queue"
)

// OrderController serves order placement and lifecycle. Placed orders and
// status changes are fired on the event bus; the server bridges them to
// the websocket stream.
type OrderController struct {
	orders *repositories.OrderRepository
}

func NewOrderController(orders *repositories.OrderRepository) *OrderController {
	return &OrderController{orders: orders}
}

// OrderInput is the checkout payload.
type OrderInput struct {
	Items           []repositories.OrderLine `json:"items" validate:"required"`
	ShippingAddress models.Address           `json:"shipping_address" validate:"required"`
	BillingAddress  *models.Address          `json:"billing_address"`
	Notes           string                   `json:"notes" validate:"nullable,max=2000"`
}

type statusInput struct {
	Status         string `json:"status" validate:"required"`
	TrackingNumber string `json:"tracking_number" validate:"nullable,max=100"`
}

// OrderEvent is the payload fired on the bus and relayed to the websocket
// stream.
type OrderEvent struct {
	Event  string  `json:"event"`
	ID     uint    `json:"id"`
	Status string  `json:"status"`
	Total  float64 `json:"total_amount,omitempty"`
}

func fireOrderEvent(name string, order models.Order) {
	event.FireAsync(name, OrderEvent{
		Event:  name,
		ID:     order.ID,
		Status: order.Status,
		Total:  order.TotalAmount,
	})
}

// Create places an order for the authenticated buyer. Stock is reserved
// atomically; an out-of-stock line fails the whole order.
func (o *OrderController) Create(c *ctx.Context) {
	var input OrderInput
	if !c.BindJSON(&input) {
		return
	}

	buyerID := middleware.UserIDFromCtx(c.Context())
	order, err := o.orders.Create(buyerID, input.Items, input.ShippingAddress, input.BillingAddress, input.Notes)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrEmptyOrder):
			c.BadRequest("Order has no items")
		case errors.Is(err, repositories.ErrProductUnavailable):
			c.BadRequest("One or more products are unavailable")
		case errors.Is(err, repositories.ErrInsufficientStock):
			c.Conflict("Insufficient stock for one or more products")
		default:
			logger.WithCtx(c.Context()).Error("order create failed", "error", err, "buyer_id", buyerID)
			c.Internal()
		}
		return
	}

	metrics.OrdersPlaced.Inc()
	metrics.OrderValue.Observe(order.TotalAmount)
	fireOrderEvent("order.created", order)

	if err := queue.Dispatch(&jobs.OrderConfirmation{OrderID: order.ID, BuyerID: buyerID}); err != nil {
		logger.Warn("order confirmation dispatch failed", "error", err, "order_id", order.ID)
	}

	c.Created(map[string]any{"order": order})
}

// List returns the caller's purchases, newest first.
func (o *OrderController) List(c *ctx.Context) {
	orders, page, err := o.orders.ByBuyer(middleware.UserIDFromCtx(c.Context()), orderFilter(c))
	if err != nil {
		logger.WithCtx(c.Context()).Error("order list failed", "error", err)
		c.Internal()
		return
	}
	c.Success(map[string]any{"orders": orders, "pagination": page})
}

// Selling returns orders containing the authenticated seller's items.
func (o *OrderController) Selling(c *ctx.Context) {
	orders, page, err := o.orders.BySeller(middleware.UserIDFromCtx(c.Context()), orderFilter(c))
	if err != nil {
		logger.WithCtx(c.Context()).Error("selling orders failed", "error", err)
		c.Internal()
		return
	}
	c.Success(map[string]any{"orders": orders, "pagination": page})
}

func orderFilter(c *ctx.Context) repositories.OrderFilter {
	return repositories.OrderFilter{
		Status: c.Query("status"),
		From:   queryDate(c, "start_date"),
		To:     queryDate(c, "end_date"),
		Page:   c.QueryInt("page", 1),
		Limit:  c.QueryInt("limit", 20),
	}
}

// queryDate reads a YYYY-MM-DD query param. Malformed values are treated
// as absent.
func queryDate(c *ctx.Context, key string) time.Time {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}
	}
	ts, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// Show returns one order with items. Ownership is enforced by middleware.
func (o *OrderController) Show(c *ctx.Context) {
	id, err := c.ParamUint("id")
	if err != nil {
		c.BadRequest("Invalid order id")
		return
	}

	order, err := o.orders.ByID(id)
	if err != nil {
		c.NotFound("Order not found")
		return
	}
	c.Success(map[string]any{"order": order})
}

// Cancel cancels the caller's own order and restores the reserved stock.
func (o *OrderController) Cancel(c *ctx.Context) {
	id, err := c.ParamUint("id")
	if err != nil {
		c.BadRequest("Invalid order id")
		return
	}

	order, err := o.orders.Cancel(id, middleware.UserIDFromCtx(c.Context()))
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.NotFound("Order not found")
		case errors.Is(err, repositories.ErrCannotCancel):
			c.Conflict("Order can no longer be cancelled")
		default:
			logger.WithCtx(c.Context()).Error("order cancel failed", "error", err, "order_id", id)
			c.Internal()
		}
		return
	}

	fireOrderEvent("order.status_changed", order)
	c.Success(map[string]any{"order": order})
}

// UpdateStatus moves an order through its lifecycle. Ownership is
// enforced by middleware; admins bypass it.
func (o *OrderController) UpdateStatus(c *ctx.Context) {
	id, err := c.ParamUint("id")
	if err != nil {
		c.BadRequest("Invalid order id")
		return
	}
	var input statusInput
	if !c.BindJSON(&input) {
		return
	}

	order, err := o.orders.UpdateStatus(id, input.Status, input.TrackingNumber)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrInvalidStatus):
			c.BadRequest("Unknown order status")
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.NotFound("Order not found")
		default:
			logger.WithCtx(c.Context()).Error("order status update failed", "error", err, "order_id", id)
			c.Internal()
		}
		return
	}

	fireOrderEvent("order.status_changed", order)
	c.Success(map[string]any{"order": order})
}

// Stats returns the caller's order history summary.
func (o *OrderController) Stats(c *ctx.Context) {
	stats, err := o.orders.Stats(middleware.UserIDFromCtx(c.Context()))
	if err != nil {
		logger.WithCtx(c.Context()).Error("order stats failed", "error", err)
		c.Internal()
		return
	}
	c.Success(map[string]any{"stats": stats})
}
