package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vastrahub/vastra/app/models"
	"github.com/vastrahub/vastra/config"
	"github.com/vastrahub/vastra/pkg/audit"
	"github.com/vastrahub/vastra/pkg/event"
	"github.com/vastrahub/vastra/pkg/logger"
)

// ErrOrderNotFound is returned when the order id does not exist.
type ErrOrderNotFound struct {
	OrderID string
}

func (e ErrOrderNotFound) Error() string {
	return fmt.Sprintf("order %s not found", e.OrderID)
}

// ErrInvalidTransition is returned when a status change is not allowed
// by the order lifecycle.
type ErrInvalidTransition struct {
	From string
	To   string
}

func (e ErrInvalidTransition) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}

// ErrUnknownStatus is returned for a status outside the lifecycle.
type ErrUnknownStatus struct {
	Status string
}

func (e ErrUnknownStatus) Error() string {
	return fmt.Sprintf("unknown order status %q", e.Status)
}

// OrderManagementStore is what order management needs from storage.
type OrderManagementStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	List(ctx context.Context, status string, userID *primitive.ObjectID, page, limit int) ([]models.Order, int64, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// StockRestorer puts reserved stock back when orders are cancelled.
type StockRestorer interface {
	RestoreStock(ctx context.Context, id primitive.ObjectID, size string, qty int) error
}

// OrderService manages orders after checkout.
type OrderService struct {
	orders   OrderManagementStore
	products StockRestorer
	trail    *audit.Trail
}

// NewOrderService wires order management. trail may be nil.
func NewOrderService(orders OrderManagementStore, products StockRestorer, trail *audit.Trail) *OrderService {
	return &OrderService{orders: orders, products: products, trail: trail}
}

// List pages orders, optionally narrowed by status.
func (s *OrderService) List(ctx context.Context, status string, page, limit int) ([]models.Order, int64, error) {
	if status != "" && !models.ValidStatus(status) {
		return nil, 0, ErrUnknownStatus{Status: status}
	}
	return s.orders.List(ctx, status, nil, page, limit)
}

// ListForUser pages the orders placed by one account.
func (s *OrderService) ListForUser(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]models.Order, int64, error) {
	return s.orders.List(ctx, "", &userID, page, limit)
}

// Get returns a single order.
func (s *OrderService) Get(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound{OrderID: id.Hex()}
	}
	return o, nil
}

// UpdateStatus moves an order through its lifecycle. Cancelling an
// order that has not shipped restores its stock when the restore
// policy is enabled.
func (s *OrderService) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string, actor string) (*models.Order, error) {
	if !models.ValidStatus(status) {
		return nil, ErrUnknownStatus{Status: status}
	}
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(o.Status, status) {
		return nil, ErrInvalidTransition{From: o.Status, To: status}
	}

	restorable := o.StockRestorable()
	if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	if status == models.StatusCancelled && restorable {
		s.restoreStock(ctx, o)
	}

	prev := o.Status
	o.Status = status
	event.FireAsync(event.OrderStatusChanged, o)
	if s.trail != nil {
		s.trail.Record(audit.Entry{
			Action:  "order.status_changed",
			OrderID: id.Hex(),
			ActorID: actor,
			Detail:  map[string]interface{}{"from": prev, "to": status},
		})
	}
	return o, nil
}

// Delete removes an order. Deleting an unshipped order restores its
// stock when the restore policy is enabled.
func (s *OrderService) Delete(ctx context.Context, id primitive.ObjectID, actor string) error {
	o, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.orders.Delete(ctx, id); err != nil {
		return err
	}

	if o.StockRestorable() {
		s.restoreStock(ctx, o)
	}

	event.FireAsync(event.OrderDeleted, o)
	if s.trail != nil {
		s.trail.Record(audit.Entry{
			Action:  "order.deleted",
			OrderID: id.Hex(),
			ActorID: actor,
			Detail:  map[string]interface{}{"status": o.Status, "total": o.Total},
		})
	}
	return nil
}

// restoreStock puts each line's quantity back. Failures are logged but
// do not fail the operation: the status change already happened.
func (s *OrderService) restoreStock(ctx context.Context, o *models.Order) {
	if !config.StockRestore() {
		return
	}
	for _, item := range o.Items {
		if err := s.products.RestoreStock(ctx, item.ProductID, item.Size, item.Quantity); err != nil {
			logger.Error("orders: stock restore failed",
				"order", o.ID.Hex(), "product", item.ProductID.Hex(),
				"size", item.Size, "qty", item.Quantity, "error", err)
		}
	}
}
