package controllers

import (
	"net/http"

	"github.com/vastrahub/vastra/app/services"
	"github.com/vastrahub/vastra/pkg/logger"
	"github.com/vastrahub/vastra/pkg/response"
	"github.com/vastrahub/vastra/pkg/ws"
)

// DashboardController serves the admin overview and the live order feed.
type DashboardController struct {
	dashboard *services.DashboardService
}

// NewDashboardController wires the controller.
func NewDashboardController(dashboard *services.DashboardService) *DashboardController {
	return &DashboardController{dashboard: dashboard}
}

// Stats handles GET /api/admin/dashboard.
func (c *DashboardController) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.dashboard.Stats(r.Context())
	if err != nil {
		logger.Error("dashboard: stats failed", "error", err)
		response.Internal(w)
		return
	}
	response.OK(w, response.Payload{"stats": stats})
}

// Stream handles GET /api/admin/orders/stream, upgrading to a
// websocket fed by order events.
func (c *DashboardController) Stream(w http.ResponseWriter, r *http.Request) {
	ws.Upgrade(w, r, ws.OrderFeed)
}
