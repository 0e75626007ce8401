package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hamidsetar/gestiondestock/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saleAt(at time.Time, total int64) models.Sale {
	return models.Sale{Transaction: txn(models.KindSale, uuid.New(), total, 0, at)}
}

func rentalAt(at time.Time, total int64) models.Rental {
	return models.Rental{Transaction: txn(models.KindRental, uuid.New(), total, 0, at)}
}

func TestMonthInterval(t *testing.T) {
	iv := MonthInterval(2024, time.February, time.UTC)
	assert.True(t, iv.Contains(time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC)))
	assert.False(t, iv.Contains(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, iv.Contains(iv.Start))
	assert.True(t, iv.Contains(iv.End))
}

func TestMonthlyReportEmptyYear(t *testing.T) {
	months := MonthlyReport(2023, time.UTC, nil, nil, nil)
	for i, m := range months {
		assert.Equal(t, i+1, m.MonthNumber)
		assert.Equal(t, 2023, m.Year)
		assert.True(t, m.TotalRevenue.IsZero())
		assert.True(t, m.AverageOrderValue.IsZero())
		assert.Zero(t, m.SalesCount)
	}
	assert.Equal(t, "Jan", months[0].Month)
	assert.Equal(t, "Dec", months[11].Month)
}

func TestMonthlyReport(t *testing.T) {
	sales := []models.Sale{
		saleAt(time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC), 300),
		saleAt(time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC), 100),
		saleAt(time.Date(2023, 1, 20, 10, 0, 0, 0, time.UTC), 999),
	}
	rentals := []models.Rental{
		rentalAt(time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC), 200),
		rentalAt(time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC), 50),
	}
	clients := []models.Client{
		{ID: uuid.New(), CreatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
	}

	months := MonthlyReport(2024, time.UTC, sales, rentals, clients)

	jan := months[0]
	assert.True(t, jan.SalesRevenue.Equal(decimal.NewFromInt(400)))
	assert.True(t, jan.RentalsRevenue.Equal(decimal.NewFromInt(200)))
	assert.True(t, jan.TotalRevenue.Equal(decimal.NewFromInt(600)))
	assert.Equal(t, 2, jan.SalesCount)
	assert.Equal(t, 1, jan.RentalsCount)
	assert.Equal(t, 1, jan.NewClients)
	assert.True(t, jan.AverageOrderValue.Equal(decimal.NewFromInt(200)))

	assert.True(t, months[1].TotalRevenue.IsZero())
	assert.True(t, months[2].RentalsRevenue.Equal(decimal.NewFromInt(50)))
}

func TestMonthlyReportFollowsLocation(t *testing.T) {
	algiers := time.FixedZone("CET", 60*60)
	// 23:30 UTC on 31 Jan is already February in Algiers.
	sales := []models.Sale{saleAt(time.Date(2024, 1, 31, 23, 30, 0, 0, time.UTC), 100)}

	utc := MonthlyReport(2024, time.UTC, sales, nil, nil)
	local := MonthlyReport(2024, algiers, sales, nil, nil)

	assert.Equal(t, 1, utc[0].SalesCount)
	assert.Equal(t, 0, local[0].SalesCount)
	assert.Equal(t, 1, local[1].SalesCount)
}

func TestYearlyReport(t *testing.T) {
	sales := []models.Sale{
		saleAt(time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC), 1000),
		saleAt(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), 600),
		saleAt(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), 600),
	}

	years := YearlyReport(time.UTC, sales, nil, nil)
	require.Len(t, years, 2)

	current, previous := years[0], years[1]
	assert.Equal(t, 2024, current.Year)
	assert.Equal(t, 2023, previous.Year)
	assert.True(t, current.TotalRevenue.Equal(decimal.NewFromInt(1200)))
	assert.True(t, current.AverageMonthlyRevenue.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 2, current.TotalTransactions)

	// February and July tie; the earlier month wins.
	assert.Equal(t, "Feb", current.BestMonth)
	assert.Equal(t, "Jan", current.WorstMonth)

	require.NotNil(t, current.GrowthPercent)
	assert.True(t, current.GrowthPercent.Equal(decimal.NewFromInt(20)))
	assert.Nil(t, previous.GrowthPercent)
}

func TestYearlyReportZeroPreviousRevenue(t *testing.T) {
	sales := []models.Sale{
		saleAt(time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC), 0),
		saleAt(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), 500),
	}

	years := YearlyReport(time.UTC, sales, nil, nil)
	require.Len(t, years, 2)
	assert.Nil(t, years[0].GrowthPercent)
}

func TestGrowthPercent(t *testing.T) {
	g, ok := GrowthPercent(decimal.NewFromInt(50), decimal.NewFromInt(100))
	assert.True(t, ok)
	assert.True(t, g.Equal(decimal.NewFromInt(-50)))

	_, ok = GrowthPercent(decimal.NewFromInt(50), decimal.Zero)
	assert.False(t, ok)
}
