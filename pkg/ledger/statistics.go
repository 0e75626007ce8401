package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hamidsetar/gestiondestock/pkg/models"
	"github.com/shopspring/decimal"
)

type PeriodKind string

const (
	PeriodCurrentYear  PeriodKind = "current-year"
	PeriodLastYear     PeriodKind = "last-year"
	PeriodCurrentMonth PeriodKind = "current-month"
	PeriodLastMonth    PeriodKind = "last-month"
	PeriodCustom       PeriodKind = "custom"
)

const topN = 10

// ResolvePeriod turns a named period into an interval relative to now. For a
// custom period a missing bound falls back to the current year's bound, and
// the end date covers its whole day.
func ResolvePeriod(kind PeriodKind, now time.Time, loc *time.Location, from, to *time.Time) (Interval, error) {
	now = now.In(loc)
	switch kind {
	case PeriodCurrentYear, "":
		return YearInterval(now.Year(), loc), nil
	case PeriodLastYear:
		return YearInterval(now.Year()-1, loc), nil
	case PeriodCurrentMonth:
		return MonthInterval(now.Year(), now.Month(), loc), nil
	case PeriodLastMonth:
		prev := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc).AddDate(0, -1, 0)
		return MonthInterval(prev.Year(), prev.Month(), loc), nil
	case PeriodCustom:
		iv := YearInterval(now.Year(), loc)
		if from != nil {
			f := from.In(loc)
			iv.Start = time.Date(f.Year(), f.Month(), f.Day(), 0, 0, 0, 0, loc)
		}
		if to != nil {
			t := to.In(loc)
			iv.End = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		if iv.End.Before(iv.Start) {
			return Interval{}, fmt.Errorf("%w: %s is after %s", ErrInvalidPeriod, iv.Start.Format("2006-01-02"), iv.End.Format("2006-01-02"))
		}
		return iv, nil
	default:
		return Interval{}, fmt.Errorf("%w: unknown period %q", ErrInvalidPeriod, kind)
	}
}

// Statistics summarises the sales and rentals created within iv. Rankings
// only include products and clients that still exist.
func Statistics(iv Interval, loc *time.Location, sales []models.Sale, rentals []models.Rental, products []models.Product, clients []models.Client) models.PeriodStatistics {
	st := models.PeriodStatistics{
		From:           iv.Start,
		To:             iv.End,
		SalesRevenue:   decimal.Zero,
		SalesPaid:      decimal.Zero,
		RentalsRevenue: decimal.Zero,
		RentalsPaid:    decimal.Zero,
	}

	knownProducts := make(map[uuid.UUID]bool, len(products))
	for _, p := range products {
		knownProducts[p.ID] = true
	}
	knownClients := make(map[uuid.UUID]bool, len(clients))
	for _, c := range clients {
		knownClients[c.ID] = true
	}

	var monthly [12]models.MonthlyPoint
	for i := range monthly {
		monthly[i] = models.MonthlyPoint{Month: MonthLabel(time.Month(i + 1)), Sales: decimal.Zero, Rentals: decimal.Zero}
	}

	var productTxns, clientTxns []models.Transaction
	for _, s := range sales {
		if !iv.Contains(s.CreatedAt) {
			continue
		}
		st.SalesRevenue = st.SalesRevenue.Add(s.TotalAmount)
		st.SalesPaid = st.SalesPaid.Add(s.PaidAmount)
		st.SalesCount++
		m := s.CreatedAt.In(loc).Month() - 1
		monthly[m].Sales = monthly[m].Sales.Add(s.TotalAmount)
		if knownProducts[s.ProductID] {
			productTxns = append(productTxns, s.Transaction)
		}
		if knownClients[s.ClientID] {
			clientTxns = append(clientTxns, s.Transaction)
		}
	}
	for _, r := range rentals {
		if !iv.Contains(r.CreatedAt) {
			continue
		}
		st.RentalsRevenue = st.RentalsRevenue.Add(r.TotalAmount)
		st.RentalsPaid = st.RentalsPaid.Add(r.PaidAmount)
		st.RentalsCount++
		m := r.CreatedAt.In(loc).Month() - 1
		monthly[m].Rentals = monthly[m].Rentals.Add(r.TotalAmount)
		if knownClients[r.ClientID] {
			clientTxns = append(clientTxns, r.Transaction)
		}
	}

	st.SalesRemaining = st.SalesRevenue.Sub(st.SalesPaid)
	st.RentalsRemaining = st.RentalsRevenue.Sub(st.RentalsPaid)
	st.TotalRevenue = st.SalesRevenue.Add(st.RentalsRevenue)
	st.TotalPaid = st.SalesPaid.Add(st.RentalsPaid)
	st.TotalRemaining = st.SalesRemaining.Add(st.RentalsRemaining)
	st.TotalTransactions = st.SalesCount + st.RentalsCount
	st.TopProducts = TopByRevenue(productTxns, ByProduct, topN)
	st.TopClients = TopByRevenue(clientTxns, ByClient, topN)
	st.Monthly = monthly[:]
	return st
}

// InInterval keeps the sales and rentals created within iv.
func InInterval(iv Interval, sales []models.Sale, rentals []models.Rental) ([]models.Sale, []models.Rental) {
	outSales := []models.Sale{}
	for _, s := range sales {
		if iv.Contains(s.CreatedAt) {
			outSales = append(outSales, s)
		}
	}
	outRentals := []models.Rental{}
	for _, r := range rentals {
		if iv.Contains(r.CreatedAt) {
			outRentals = append(outRentals, r)
		}
	}
	return outSales, outRentals
}
