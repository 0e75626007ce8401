package ledger

import (
	"slices"
	"time"

	"github.com/hamidsetar/gestiondestock/pkg/models"
	"github.com/shopspring/decimal"
)

var (
	monthsInYear = decimal.NewFromInt(12)
	hundred      = decimal.NewFromInt(100)
)

// Interval is a closed time range; both ends are included.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies in [Start, End].
func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && !t.After(iv.End)
}

// MonthInterval spans the first to the last nanosecond of month in loc.
func MonthInterval(year int, month time.Month, loc *time.Location) Interval {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return Interval{Start: start, End: start.AddDate(0, 1, 0).Add(-time.Nanosecond)}
}

// YearInterval spans the first to the last nanosecond of year in loc.
func YearInterval(year int, loc *time.Location) Interval {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	return Interval{Start: start, End: start.AddDate(1, 0, 0).Add(-time.Nanosecond)}
}

// MonthLabel returns the three-letter English abbreviation, e.g. "Jan".
func MonthLabel(m time.Month) string {
	return m.String()[:3]
}

// bucket accumulates revenue and counts over one interval.
type bucket struct {
	salesRevenue   decimal.Decimal
	rentalsRevenue decimal.Decimal
	salesCount     int
	rentalsCount   int
	newClients     int
}

func collect(iv Interval, sales []models.Sale, rentals []models.Rental, clients []models.Client) bucket {
	b := bucket{salesRevenue: decimal.Zero, rentalsRevenue: decimal.Zero}
	for _, s := range sales {
		if iv.Contains(s.CreatedAt) {
			b.salesRevenue = b.salesRevenue.Add(s.TotalAmount)
			b.salesCount++
		}
	}
	for _, r := range rentals {
		if iv.Contains(r.CreatedAt) {
			b.rentalsRevenue = b.rentalsRevenue.Add(r.TotalAmount)
			b.rentalsCount++
		}
	}
	for _, c := range clients {
		if iv.Contains(c.CreatedAt) {
			b.newClients++
		}
	}
	return b
}

func (b bucket) total() decimal.Decimal {
	return b.salesRevenue.Add(b.rentalsRevenue)
}

// averageOf divides sum by n, yielding zero when n is zero.
func averageOf(sum decimal.Decimal, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(int64(n)))
}

// MonthlyReport breaks year down into its twelve calendar months in loc.
// Months without activity are present with zero values.
func MonthlyReport(year int, loc *time.Location, sales []models.Sale, rentals []models.Rental, clients []models.Client) [12]models.MonthlyData {
	var months [12]models.MonthlyData
	for i := range months {
		m := time.Month(i + 1)
		b := collect(MonthInterval(year, m, loc), sales, rentals, clients)
		total := b.total()
		months[i] = models.MonthlyData{
			Month:             MonthLabel(m),
			Year:              year,
			MonthNumber:       int(m),
			SalesRevenue:      b.salesRevenue,
			RentalsRevenue:    b.rentalsRevenue,
			TotalRevenue:      total,
			SalesCount:        b.salesCount,
			RentalsCount:      b.rentalsCount,
			NewClients:        b.newClients,
			AverageOrderValue: averageOf(total, b.salesCount+b.rentalsCount),
		}
	}
	return months
}

// Years lists the distinct years in which sales or rentals were recorded,
// most recent first.
func Years(loc *time.Location, sales []models.Sale, rentals []models.Rental) []int {
	seen := make(map[int]bool)
	var years []int
	add := func(t time.Time) {
		y := t.In(loc).Year()
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	for _, s := range sales {
		add(s.CreatedAt)
	}
	for _, r := range rentals {
		add(r.CreatedAt)
	}
	slices.SortFunc(years, func(a, b int) int { return b - a })
	return years
}

// YearlyReport produces one entry per year with activity, most recent first.
// Each entry carries its growth against the entry that follows it.
func YearlyReport(loc *time.Location, sales []models.Sale, rentals []models.Rental, clients []models.Client) []models.YearlyData {
	years := Years(loc, sales, rentals)
	out := make([]models.YearlyData, 0, len(years))
	for _, year := range years {
		b := collect(YearInterval(year, loc), sales, rentals, clients)
		total := b.total()
		best, worst := bestAndWorst(MonthlyReport(year, loc, sales, rentals, clients))
		out = append(out, models.YearlyData{
			Year:                  year,
			SalesRevenue:          b.salesRevenue,
			RentalsRevenue:        b.rentalsRevenue,
			TotalRevenue:          total,
			TotalTransactions:     b.salesCount + b.rentalsCount,
			SalesCount:            b.salesCount,
			RentalsCount:          b.rentalsCount,
			NewClients:            b.newClients,
			AverageMonthlyRevenue: total.Div(monthsInYear),
			BestMonth:             best,
			WorstMonth:            worst,
		})
	}
	for i := 0; i+1 < len(out); i++ {
		if g, ok := GrowthPercent(out[i].TotalRevenue, out[i+1].TotalRevenue); ok {
			out[i].GrowthPercent = &g
		}
	}
	return out
}

// bestAndWorst picks the labels of the highest and lowest revenue months.
// Strict comparisons keep the earliest month on ties.
func bestAndWorst(months [12]models.MonthlyData) (best, worst string) {
	b, w := months[0], months[0]
	for _, m := range months[1:] {
		if m.TotalRevenue.GreaterThan(b.TotalRevenue) {
			b = m
		}
		if m.TotalRevenue.LessThan(w.TotalRevenue) {
			w = m
		}
	}
	return b.Month, w.Month
}

// GrowthPercent returns (current - previous) / previous * 100. ok is false
// when previous is zero and the ratio is not computable.
func GrowthPercent(current, previous decimal.Decimal) (decimal.Decimal, bool) {
	if previous.IsZero() {
		return decimal.Zero, false
	}
	return current.Sub(previous).Div(previous).Mul(hundred), true
}
