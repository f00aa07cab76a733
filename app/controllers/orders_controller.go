package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vastrahub/vastra/app/models"
	"github.com/vastrahub/vastra/app/services"
	"github.com/vastrahub/vastra/pkg/bind"
	"github.com/vastrahub/vastra/pkg/logger"
	"github.com/vastrahub/vastra/pkg/middleware"
	"github.com/vastrahub/vastra/pkg/response"
)

// OrderController serves checkout and order management.
type OrderController struct {
	checkout *services.CheckoutService
	orders   *services.OrderService
}

// NewOrderController wires the controller.
func NewOrderController(checkout *services.CheckoutService, orders *services.OrderService) *OrderController {
	return &OrderController{checkout: checkout, orders: orders}
}

// placeOrderRequest requires only the customer's name, phone and
// address; everything else is optional but validated when present.
type placeOrderRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" validate:"nullable,email"`
	Phone   string `json:"phone" validate:"required,min=7,max=15"`
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"nullable"`
	Pincode string `json:"pincode" validate:"nullable,min=4,max=10"`

	Items []services.CheckoutItem `json:"items" validate:"required"`
}

// Store handles POST /api/orders. Works for guests and signed-in
// customers alike; a valid token attaches the order to the account.
func (c *OrderController) Store(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if errs, err := bind.JSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	} else if errs != nil {
		response.ValidationFail(w, errs)
		return
	}

	in := services.CheckoutInput{
		Customer: models.CustomerInfo{
			Name:    req.Name,
			Email:   req.Email,
			Phone:   req.Phone,
			Address: req.Address,
			City:    req.City,
			Pincode: req.Pincode,
		},
		Items: req.Items,
	}
	if identity, ok := middleware.FromCtx(r.Context()); ok {
		if oid, err := primitive.ObjectIDFromHex(identity.ID); err == nil {
			in.UserID = &oid
		}
	}

	order, err := c.checkout.PlaceOrder(r.Context(), in)
	if err != nil {
		c.rejectCheckout(w, err)
		return
	}
	response.Created(w, response.Payload{"order": order})
}

func (c *OrderController) rejectCheckout(w http.ResponseWriter, err error) {
	var iv services.ErrInvalidCheckout
	var nf services.ErrProductNotFound
	var is services.ErrInsufficientStock
	switch {
	case errors.As(err, &iv):
		response.BadRequest(w, iv.Reason)
	case errors.As(err, &nf):
		response.NotFound(w, "Product not found")
	case errors.As(err, &is):
		msg := fmt.Sprintf("Insufficient stock for %s: %d available", is.Name, is.Available)
		if is.Size != "" {
			msg = fmt.Sprintf("Insufficient stock for %s (size %s): %d available",
				is.Name, is.Size, is.Available)
		}
		response.BadRequest(w, msg)
	default:
		logger.Error("orders: checkout failed", "error", err)
		response.Internal(w)
	}
}

// Index handles GET /api/admin/orders.
func (c *OrderController) Index(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := atoiDefault(q.Get("limit"), 20)
	if limit > 100 {
		limit = 20
	}
	orders, total, err := c.orders.List(r.Context(),
		q.Get("status"), atoiDefault(q.Get("page"), 1), limit)
	if err != nil {
		var us services.ErrUnknownStatus
		if errors.As(err, &us) {
			response.BadRequest(w, us.Error())
			return
		}
		logger.Error("orders: list failed", "error", err)
		response.Internal(w)
		return
	}
	response.OK(w, response.Payload{
		"orders":     orders,
		"totalCount": total,
		"totalPages": pageCount(total, limit),
	})
}

// Mine handles GET /api/orders/mine for the signed-in customer.
func (c *OrderController) Mine(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.FromCtx(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}
	oid, err := primitive.ObjectIDFromHex(identity.ID)
	if err != nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	q := r.URL.Query()
	limit := atoiDefault(q.Get("limit"), 20)
	if limit > 100 {
		limit = 20
	}
	orders, total, err := c.orders.ListForUser(r.Context(), oid,
		atoiDefault(q.Get("page"), 1), limit)
	if err != nil {
		logger.Error("orders: list mine failed", "user", identity.ID, "error", err)
		response.Internal(w)
		return
	}
	response.OK(w, response.Payload{
		"orders":     orders,
		"totalCount": total,
		"totalPages": pageCount(total, limit),
	})
}

// Show handles GET /api/orders/{id}. Admins see any order; customers
// only their own.
func (c *OrderController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}
	order, err := c.orders.Get(r.Context(), id)
	if err != nil {
		c.rejectOrder(w, id, err)
		return
	}

	identity, ok := middleware.FromCtx(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}
	if identity.Role != models.RoleAdmin {
		if order.UserID == nil || order.UserID.Hex() != identity.ID {
			// Report not-found rather than confirming the order exists.
			response.NotFound(w, "Order not found")
			return
		}
	}
	response.OK(w, response.Payload{"order": order})
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateStatus handles PATCH /api/admin/orders/{id}/status.
func (c *OrderController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}
	var req updateStatusRequest
	if errs, err := bind.JSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	} else if errs != nil {
		response.ValidationFail(w, errs)
		return
	}

	order, err := c.orders.UpdateStatus(r.Context(), id, req.Status, actorFrom(r))
	if err != nil {
		var us services.ErrUnknownStatus
		var it services.ErrInvalidTransition
		switch {
		case errors.As(err, &us):
			response.BadRequest(w, us.Error())
		case errors.As(err, &it):
			response.BadRequest(w, it.Error())
		default:
			c.rejectOrder(w, id, err)
		}
		return
	}
	response.OK(w, response.Payload{"order": order})
}

// Destroy handles DELETE /api/admin/orders/{id}.
func (c *OrderController) Destroy(w http.ResponseWriter, r *http.Request) {
	id, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}
	if err := c.orders.Delete(r.Context(), id, actorFrom(r)); err != nil {
		c.rejectOrder(w, id, err)
		return
	}
	response.OK(w, response.Payload{"message": "Order deleted"})
}

func (c *OrderController) rejectOrder(w http.ResponseWriter, id primitive.ObjectID, err error) {
	var nf services.ErrOrderNotFound
	if errors.As(err, &nf) {
		response.NotFound(w, "Order not found")
		return
	}
	logger.Error("orders: operation failed", "id", id.Hex(), "error", err)
	response.Internal(w)
}

func actorFrom(r *http.Request) string {
	if identity, ok := middleware.FromCtx(r.Context()); ok {
		return identity.ID
	}
	return "unknown"
}
