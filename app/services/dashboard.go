package services

import (
	"context"

	"github.com/vastrahub/vastra/app/models"
)

// DashboardOrderStore is what the dashboard needs from order storage.
type DashboardOrderStore interface {
	StatusCounts(ctx context.Context) (map[string]int64, error)
	Revenue(ctx context.Context) (float64, error)
	Recent(ctx context.Context, n int) ([]models.Order, error)
}

// Counter reports a collection's document count.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// ProductCounter also reports how many products are fully sold out.
type ProductCounter interface {
	Counter
	OutOfStockCount(ctx context.Context) (int64, error)
}

// DashboardStats is the admin overview payload.
type DashboardStats struct {
	TotalProducts int64            `json:"totalProducts"`
	OutOfStock    int64            `json:"outOfStock"`
	TotalUsers    int64            `json:"totalUsers"`
	TotalOrders   int64            `json:"totalOrders"`
	Revenue       float64          `json:"revenue"`
	StatusCounts  map[string]int64 `json:"statusCounts"`
	RecentOrders  []models.Order   `json:"recentOrders"`
}

// DashboardService aggregates store-wide numbers for the admin UI.
type DashboardService struct {
	orders   DashboardOrderStore
	products ProductCounter
	users    Counter
}

// NewDashboardService wires the dashboard.
func NewDashboardService(orders DashboardOrderStore, products ProductCounter, users Counter) *DashboardService {
	return &DashboardService{orders: orders, products: products, users: users}
}

// Stats builds the overview. The status map always carries every known
// status so the UI can render zeroes without special cases.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	counts, err := s.orders.StatusCounts(ctx)
	if err != nil {
		return nil, err
	}
	for _, status := range models.OrderStatuses {
		if _, ok := counts[status]; !ok {
			counts[status] = 0
		}
	}

	var totalOrders int64
	for _, n := range counts {
		totalOrders += n
	}

	revenue, err := s.orders.Revenue(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.orders.Recent(ctx, 5)
	if err != nil {
		return nil, err
	}
	totalProducts, err := s.products.Count(ctx)
	if err != nil {
		return nil, err
	}
	outOfStock, err := s.products.OutOfStockCount(ctx)
	if err != nil {
		return nil, err
	}
	totalUsers, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		TotalProducts: totalProducts,
		OutOfStock:    outOfStock,
		TotalUsers:    totalUsers,
		TotalOrders:   totalOrders,
		Revenue:       revenue,
		StatusCounts:  counts,
		RecentOrders:  recent,
	}, nil
}
