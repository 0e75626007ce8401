package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hamidsetar/gestiondestock/pkg/models"
	"github.com/shopspring/decimal"
)

// NewSale prices a sale of qty units of product at the product's current
// price and records the amount paid up front.
func NewSale(client models.Client, product models.Product, qty int, discount, paid decimal.Decimal, author string, at time.Time) (models.Sale, error) {
	if err := checkStock(product, qty); err != nil {
		return models.Sale{}, err
	}
	if discount.IsNegative() {
		return models.Sale{}, fmt.Errorf("%w: discount cannot be negative", ErrInvalidAmount)
	}

	total := product.Price.Mul(decimal.NewFromInt(int64(qty))).Sub(discount)
	if total.IsNegative() {
		return models.Sale{}, fmt.Errorf("%w: discount %s exceeds sale value", ErrInvalidAmount, discount.StringFixed(2))
	}
	if err := checkUpfront(total, paid); err != nil {
		return models.Sale{}, err
	}

	sale := models.Sale{
		Transaction: models.Transaction{
			ID:          uuid.New(),
			Kind:        models.KindSale,
			ClientID:    client.ID,
			ProductID:   product.ID,
			Quantity:    qty,
			TotalAmount: total,
			PaidAmount:  paid,
			CreatedBy:   author,
			CreatedAt:   at,
		},
		UnitPrice: product.Price,
		Discount:  discount,
	}
	settle(&sale.Transaction)
	return sale, nil
}

// RentalDays counts calendar days from start to end, both included.
func RentalDays(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours()/24) + 1
}

// NewRental prices a rental at the product's daily rate over the inclusive
// date range. A rental starting after at is reserved rather than active.
func NewRental(client models.Client, product models.Product, qty int, start, end time.Time, deposit, paid decimal.Decimal, author string, at time.Time) (models.Rental, error) {
	if err := checkStock(product, qty); err != nil {
		return models.Rental{}, err
	}
	if end.Before(start) {
		return models.Rental{}, fmt.Errorf("%w: end date %s is before start date %s", ErrInvalidPeriod, end.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	if deposit.IsNegative() {
		return models.Rental{}, fmt.Errorf("%w: deposit cannot be negative", ErrInvalidAmount)
	}

	days := RentalDays(start, end)
	total := product.RentalPrice.Mul(decimal.NewFromInt(int64(qty))).Mul(decimal.NewFromInt(int64(days)))
	if err := checkUpfront(total, paid); err != nil {
		return models.Rental{}, err
	}

	// Reservation is decided on the calendar of the start date's zone.
	status := models.RentalStatusActive
	if RentalDays(at.In(start.Location()), start) > 1 {
		status = models.RentalStatusReserved
	}

	rental := models.Rental{
		Transaction: models.Transaction{
			ID:          uuid.New(),
			Kind:        models.KindRental,
			ClientID:    client.ID,
			ProductID:   product.ID,
			Quantity:    qty,
			TotalAmount: total,
			PaidAmount:  paid,
			CreatedBy:   author,
			CreatedAt:   at,
		},
		DailyRate: product.RentalPrice,
		Deposit:   deposit,
		StartDate: start,
		EndDate:   end,
		Status:    status,
	}
	settle(&rental.Transaction)
	return rental, nil
}

// IsOverdue reports whether an outstanding rental is past its end date at
// now, counting days on now's calendar.
func IsOverdue(r models.Rental, now time.Time) bool {
	if r.Status != models.RentalStatusActive && r.Status != models.RentalStatusOverdue {
		return false
	}
	return RentalDays(r.EndDate.In(now.Location()), now) > 1
}

func checkStock(product models.Product, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidQuantity, qty)
	}
	if qty > product.Stock {
		return fmt.Errorf("%w: %s has %d in stock, %d requested", ErrInsufficientStock, product.Name, product.Stock, qty)
	}
	return nil
}

func checkUpfront(total, paid decimal.Decimal) error {
	if paid.IsNegative() {
		return fmt.Errorf("%w: paid amount cannot be negative", ErrInvalidAmount)
	}
	if paid.GreaterThan(total) {
		return fmt.Errorf("%w: paid %s exceeds total %s", ErrInvalidAmount, paid.StringFixed(2), total.StringFixed(2))
	}
	return nil
}
