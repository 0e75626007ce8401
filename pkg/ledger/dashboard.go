package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/hamidsetar/gestiondestock/pkg/models"
	"github.com/shopspring/decimal"
)

const (
	lowStockThreshold = 5
	recentSalesWindow = 30 * 24 * time.Hour
)

// BuildDashboard computes the headline figures of the shop as of now.
func BuildDashboard(now time.Time, sales []models.Sale, rentals []models.Rental, products []models.Product) models.Dashboard {
	d := models.Dashboard{
		SalesRevenue:   decimal.Zero,
		Profit:         decimal.Zero,
		ProfitMargin:   decimal.Zero,
		RentalsRevenue: decimal.Zero,
		LowStock:       []models.Product{},
	}

	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
		if p.Stock < lowStockThreshold {
			d.LowStock = append(d.LowStock, p)
		}
	}

	since := now.Add(-recentSalesWindow)
	for _, s := range sales {
		d.SalesRevenue = d.SalesRevenue.Add(s.TotalAmount)
		if p, ok := byID[s.ProductID]; ok {
			margin := s.UnitPrice.Sub(p.PurchasePrice).Mul(decimal.NewFromInt(int64(s.Quantity)))
			d.Profit = d.Profit.Add(margin)
		}
		if s.CreatedAt.After(since) {
			d.RecentSales++
		}
	}
	if !d.SalesRevenue.IsZero() {
		d.ProfitMargin = d.Profit.Div(d.SalesRevenue).Mul(hundred)
	}

	for _, r := range rentals {
		d.RentalsRevenue = d.RentalsRevenue.Add(r.TotalAmount)
		if r.Status == models.RentalStatusActive || r.Status == models.RentalStatusOverdue {
			d.ActiveRentals++
		}
		if IsOverdue(r, now) {
			d.OverdueRentals++
		}
	}
	return d
}
