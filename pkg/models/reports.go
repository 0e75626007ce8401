package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DebtSummary is derived from the live transaction set and never stored.
type DebtSummary struct {
	Client           Client          `json:"client"`
	Sales            []Transaction   `json:"sales"`
	Rentals          []Transaction   `json:"rentals"`
	SalesDebt        decimal.Decimal `json:"sales_debt"`
	RentalsDebt      decimal.Decimal `json:"rentals_debt"`
	TotalDebt        decimal.Decimal `json:"total_debt"`
	TransactionCount int             `json:"transaction_count"`
	LastTransaction  time.Time       `json:"last_transaction"`
}

type DebtTotals struct {
	Clients     int             `json:"clients"`
	SalesDebt   decimal.Decimal `json:"sales_debt"`
	RentalsDebt decimal.Decimal `json:"rentals_debt"`
	TotalDebt   decimal.Decimal `json:"total_debt"`
}

type MonthlyData struct {
	Month             string          `json:"month"` // "Jan" .. "Dec"
	Year              int             `json:"year"`
	MonthNumber       int             `json:"month_number"` // 1 .. 12
	SalesRevenue      decimal.Decimal `json:"sales_revenue"`
	RentalsRevenue    decimal.Decimal `json:"rentals_revenue"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	SalesCount        int             `json:"sales_count"`
	RentalsCount      int             `json:"rentals_count"`
	NewClients        int             `json:"new_clients"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
}

type YearlyData struct {
	Year                  int              `json:"year"`
	SalesRevenue          decimal.Decimal  `json:"sales_revenue"`
	RentalsRevenue        decimal.Decimal  `json:"rentals_revenue"`
	TotalRevenue          decimal.Decimal  `json:"total_revenue"`
	TotalTransactions     int              `json:"total_transactions"`
	SalesCount            int              `json:"sales_count"`
	RentalsCount          int              `json:"rentals_count"`
	NewClients            int              `json:"new_clients"`
	AverageMonthlyRevenue decimal.Decimal  `json:"average_monthly_revenue"`
	BestMonth             string           `json:"best_month"`
	WorstMonth            string           `json:"worst_month"`
	GrowthPercent         *decimal.Decimal `json:"growth_percent"` // nil when not computable
}

type RankedEntry struct {
	Key          uuid.UUID       `json:"key"`
	Quantity     int             `json:"quantity"`
	Transactions int             `json:"transactions"`
	Revenue      decimal.Decimal `json:"revenue"`
}

type MonthlyPoint struct {
	Month   string          `json:"month"`
	Sales   decimal.Decimal `json:"sales"`
	Rentals decimal.Decimal `json:"rentals"`
}

type PeriodStatistics struct {
	From              time.Time       `json:"from"`
	To                time.Time       `json:"to"`
	SalesRevenue      decimal.Decimal `json:"sales_revenue"`
	SalesPaid         decimal.Decimal `json:"sales_paid"`
	SalesRemaining    decimal.Decimal `json:"sales_remaining"`
	RentalsRevenue    decimal.Decimal `json:"rentals_revenue"`
	RentalsPaid       decimal.Decimal `json:"rentals_paid"`
	RentalsRemaining  decimal.Decimal `json:"rentals_remaining"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalPaid         decimal.Decimal `json:"total_paid"`
	TotalRemaining    decimal.Decimal `json:"total_remaining"`
	SalesCount        int             `json:"sales_count"`
	RentalsCount      int             `json:"rentals_count"`
	TotalTransactions int             `json:"total_transactions"`
	TopProducts       []RankedEntry   `json:"top_products"`
	TopClients        []RankedEntry   `json:"top_clients"`
	Monthly           []MonthlyPoint  `json:"monthly"`
}

type Dashboard struct {
	SalesRevenue   decimal.Decimal `json:"sales_revenue"`
	Profit         decimal.Decimal `json:"profit"`
	ProfitMargin   decimal.Decimal `json:"profit_margin"`
	RentalsRevenue decimal.Decimal `json:"rentals_revenue"`
	ActiveRentals  int             `json:"active_rentals"`
	OverdueRentals int             `json:"overdue_rentals"`
	RecentSales    int             `json:"recent_sales"`
	LowStock       []Product       `json:"low_stock"`
}

// AccountingReport is the statistics of a period together with the rows
// they were computed from, keyed lookups included for printing names.
type AccountingReport struct {
	Statistics  PeriodStatistics
	Sales       []Sale
	Rentals     []Rental
	Clients     map[uuid.UUID]Client
	Products    map[uuid.UUID]Product
	GeneratedAt time.Time
}
