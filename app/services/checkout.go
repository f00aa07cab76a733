// Package services holds the business rules between HTTP handlers and
// the repositories.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vastrahub/vastra/app/models"
	"github.com/vastrahub/vastra/pkg/audit"
	"github.com/vastrahub/vastra/pkg/event"
	"github.com/vastrahub/vastra/pkg/logger"
	"github.com/vastrahub/vastra/pkg/metrics"
)

// ErrProductNotFound is returned when a checkout line references a
// product that does not exist (or was deleted mid-checkout).
type ErrProductNotFound struct {
	ProductID string
}

func (e ErrProductNotFound) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// ErrInsufficientStock is returned when a line cannot be fulfilled.
// Available is the stock remaining at the time of the check.
type ErrInsufficientStock struct {
	Name      string
	Size      string
	Available int
}

func (e ErrInsufficientStock) Error() string {
	if e.Size == "" {
		return fmt.Sprintf("insufficient stock for %s: %d available", e.Name, e.Available)
	}
	return fmt.Sprintf("insufficient stock for %s (size %s): %d available", e.Name, e.Size, e.Available)
}

// ErrInvalidCheckout flags a malformed request (empty cart, bad
// quantity, unknown size code, malformed product id).
type ErrInvalidCheckout struct {
	Reason string
}

func (e ErrInvalidCheckout) Error() string { return e.Reason }

// CheckoutProductStore is what the checkout needs from product storage.
type CheckoutProductStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	ReserveStock(ctx context.Context, id primitive.ObjectID, size string, qty int) (bool, error)
	RestoreStock(ctx context.Context, id primitive.ObjectID, size string, qty int) error
}

// CheckoutOrderStore is what the checkout needs from order storage.
type CheckoutOrderStore interface {
	Create(ctx context.Context, o *models.Order) error
}

// CheckoutItem is one requested cart line. Name and Price echo what
// the storefront displayed; totals always use the stored price. Size
// is optional for products sold without sizes.
type CheckoutItem struct {
	ProductID string   `json:"productId" validate:"required"`
	Name      string   `json:"name" validate:"required"`
	Price     *float64 `json:"price" validate:"required"`
	Size      string   `json:"size" validate:"nullable"`
	Quantity  int      `json:"quantity" validate:"required,gte=1"`
}

// CheckoutInput is a complete checkout request.
type CheckoutInput struct {
	Customer models.CustomerInfo
	Items    []CheckoutItem
	UserID   *primitive.ObjectID
}

// CheckoutService turns a cart into a stored order. Prices come from
// the stored products, never from the client.
type CheckoutService struct {
	products CheckoutProductStore
	orders   CheckoutOrderStore
	trail    *audit.Trail
}

// NewCheckoutService wires the checkout. trail may be nil.
func NewCheckoutService(products CheckoutProductStore, orders CheckoutOrderStore, trail *audit.Trail) *CheckoutService {
	return &CheckoutService{products: products, orders: orders, trail: trail}
}

// line is a validated, merged cart line bound to its stored product.
type line struct {
	product  *models.Product
	id       primitive.ObjectID
	size     string
	quantity int
}

// PlaceOrder validates the cart, reserves stock atomically per line and
// inserts the order. On any failure every decrement already applied is
// rolled back, so a rejected checkout leaves stock untouched.
func (s *CheckoutService) PlaceOrder(ctx context.Context, in CheckoutInput) (*models.Order, error) {
	lines, err := s.resolveLines(ctx, in.Items)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	items := make([]models.OrderItem, 0, len(lines))
	for _, l := range lines {
		price := decimal.NewFromFloat(l.product.Price)
		total = total.Add(price.Mul(decimal.NewFromInt(int64(l.quantity))))

		image := ""
		if len(l.product.Images) > 0 {
			image = l.product.Images[0].URL
		}
		items = append(items, models.OrderItem{
			ProductID: l.id,
			Name:      l.product.Name,
			Price:     l.product.Price,
			Size:      l.size,
			Quantity:  l.quantity,
			Image:     image,
		})
	}

	reserved, err := s.reserveAll(ctx, lines)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		UserID:   in.UserID,
		Customer: in.Customer,
		Items:    items,
		Total:    round2(total),
		Status:   models.StatusPending,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		s.release(ctx, reserved)
		metrics.CheckoutRejected.WithLabelValues("internal").Inc()
		return nil, err
	}

	metrics.OrdersCreated.Inc()
	event.FireAsync(event.OrderCreated, order)
	if s.trail != nil {
		s.trail.Record(audit.Entry{
			Action:  "order.created",
			OrderID: order.ID.Hex(),
			ActorID: actorID(in.UserID),
			Detail:  map[string]interface{}{"total": order.Total, "items": len(order.Items)},
		})
	}
	return order, nil
}

// resolveLines validates every requested line, merges duplicates of the
// same product and size, and binds each line to its stored product.
func (s *CheckoutService) resolveLines(ctx context.Context, items []CheckoutItem) ([]line, error) {
	if len(items) == 0 {
		metrics.CheckoutRejected.WithLabelValues("validation").Inc()
		return nil, ErrInvalidCheckout{Reason: "cart is empty"}
	}

	type key struct {
		id   primitive.ObjectID
		size string
	}
	merged := map[key]int{}
	order := []key{}

	for _, item := range items {
		oid, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			metrics.CheckoutRejected.WithLabelValues("validation").Inc()
			return nil, ErrInvalidCheckout{Reason: fmt.Sprintf("invalid product id %q", item.ProductID)}
		}
		if strings.TrimSpace(item.Name) == "" {
			metrics.CheckoutRejected.WithLabelValues("validation").Inc()
			return nil, ErrInvalidCheckout{Reason: "item name is required"}
		}
		if item.Price == nil {
			metrics.CheckoutRejected.WithLabelValues("validation").Inc()
			return nil, ErrInvalidCheckout{Reason: "item price must be a number"}
		}
		if item.Quantity < 1 {
			metrics.CheckoutRejected.WithLabelValues("validation").Inc()
			return nil, ErrInvalidCheckout{Reason: "quantity must be at least 1"}
		}
		if item.Size != "" && !models.ValidSize(item.Size) {
			metrics.CheckoutRejected.WithLabelValues("validation").Inc()
			return nil, ErrInvalidCheckout{Reason: fmt.Sprintf("unknown size %q", item.Size)}
		}
		k := key{id: oid, size: item.Size}
		if _, seen := merged[k]; !seen {
			order = append(order, k)
		}
		merged[k] += item.Quantity
	}

	lines := make([]line, 0, len(order))
	for _, k := range order {
		p, err := s.products.FindByID(ctx, k.id)
		if err != nil {
			metrics.CheckoutRejected.WithLabelValues("internal").Inc()
			return nil, err
		}
		if p == nil {
			metrics.CheckoutRejected.WithLabelValues("not_found").Inc()
			return nil, ErrProductNotFound{ProductID: k.id.Hex()}
		}
		// A product without a sizes list is sold from its flat stock;
		// any requested size collapses to the flat reservation key.
		size := k.size
		if len(p.Sizes) == 0 {
			size = ""
		}
		if avail := p.StockFor(size); avail < merged[k] {
			metrics.CheckoutRejected.WithLabelValues("insufficient_stock").Inc()
			return nil, ErrInsufficientStock{Name: p.Name, Size: size, Available: avail}
		}
		lines = append(lines, line{product: p, id: k.id, size: size, quantity: merged[k]})
	}
	return lines, nil
}

// reserveAll decrements stock line by line with a conditional update.
// If any line loses the race, every decrement already applied is
// compensated before the error is returned.
func (s *CheckoutService) reserveAll(ctx context.Context, lines []line) ([]line, error) {
	applied := make([]line, 0, len(lines))
	for _, l := range lines {
		ok, err := s.products.ReserveStock(ctx, l.id, l.size, l.quantity)
		if err != nil {
			s.release(ctx, applied)
			metrics.CheckoutRejected.WithLabelValues("internal").Inc()
			return nil, err
		}
		if !ok {
			s.release(ctx, applied)
			metrics.StockConflicts.Inc()
			metrics.CheckoutRejected.WithLabelValues("insufficient_stock").Inc()

			// Re-read so the error reports current availability.
			available := 0
			name := l.product.Name
			if p, ferr := s.products.FindByID(ctx, l.id); ferr == nil && p != nil {
				available = p.StockFor(l.size)
				name = p.Name
			}
			return nil, ErrInsufficientStock{Name: name, Size: l.size, Available: available}
		}
		applied = append(applied, l)
	}
	return applied, nil
}

// release puts already-reserved stock back after a failed checkout.
func (s *CheckoutService) release(ctx context.Context, applied []line) {
	for _, l := range applied {
		if err := s.products.RestoreStock(ctx, l.id, l.size, l.quantity); err != nil {
			logger.Error("checkout: stock release failed",
				"product", l.id.Hex(), "size", l.size, "qty", l.quantity, "error", err)
		}
	}
}

func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

func actorID(userID *primitive.ObjectID) string {
	if userID == nil {
		return "guest"
	}
	return userID.Hex()
}

// IsCheckoutRejection reports whether err is one of the typed checkout
// rejections (as opposed to an infrastructure failure).
func IsCheckoutRejection(err error) bool {
	var nf ErrProductNotFound
	var is ErrInsufficientStock
	var iv ErrInvalidCheckout
	return errors.As(err, &nf) || errors.As(err, &is) || errors.As(err, &iv)
}
