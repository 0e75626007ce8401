package export

import (
	"fmt"

	"github.com/hamidsetar/gestiondestock/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const dateLayout = "2006-01-02"

// MonthlyWorkbook lays out a year's twelve months with a totals row.
func MonthlyWorkbook(year int, months [12]models.MonthlyData) (*excelize.File, error) {
	headers := []string{"Month", "Sales revenue", "Rentals revenue", "Total revenue", "Sales", "Rentals", "New clients", "Average order"}
	rows := make([][]any, 0, len(months)+1)

	sales, rentals, total := decimal.Zero, decimal.Zero, decimal.Zero
	var salesCount, rentalsCount, newClients int
	for _, m := range months {
		rows = append(rows, []any{
			m.Month,
			money(m.SalesRevenue),
			money(m.RentalsRevenue),
			money(m.TotalRevenue),
			m.SalesCount,
			m.RentalsCount,
			m.NewClients,
			money(m.AverageOrderValue),
		})
		sales = sales.Add(m.SalesRevenue)
		rentals = rentals.Add(m.RentalsRevenue)
		total = total.Add(m.TotalRevenue)
		salesCount += m.SalesCount
		rentalsCount += m.RentalsCount
		newClients += m.NewClients
	}
	rows = append(rows, []any{"Total", money(sales), money(rentals), money(total), salesCount, rentalsCount, newClients, nil})

	return workbook(fmt.Sprintf("Monthly %d", year), headers, rows)
}

// YearlyWorkbook has one row per year, most recent first.
func YearlyWorkbook(years []models.YearlyData) (*excelize.File, error) {
	headers := []string{"Year", "Sales revenue", "Rentals revenue", "Total revenue", "Transactions", "New clients", "Monthly average", "Best month", "Worst month", "Growth %"}
	rows := make([][]any, 0, len(years))
	for _, y := range years {
		var growth any
		if y.GrowthPercent != nil {
			growth = money(*y.GrowthPercent)
		}
		rows = append(rows, []any{
			y.Year,
			money(y.SalesRevenue),
			money(y.RentalsRevenue),
			money(y.TotalRevenue),
			y.TotalTransactions,
			y.NewClients,
			money(y.AverageMonthlyRevenue),
			y.BestMonth,
			y.WorstMonth,
			growth,
		})
	}
	return workbook("Yearly", headers, rows)
}

// DebtsWorkbook lists every indebted client followed by the grand totals.
func DebtsWorkbook(debts []models.DebtSummary, totals models.DebtTotals) (*excelize.File, error) {
	headers := []string{"Client", "Phone", "Sales debt", "Rentals debt", "Total debt", "Transactions", "Last transaction"}
	rows := make([][]any, 0, len(debts)+1)
	for _, d := range debts {
		rows = append(rows, []any{
			d.Client.FullName(),
			d.Client.Phone,
			money(d.SalesDebt),
			money(d.RentalsDebt),
			money(d.TotalDebt),
			d.TransactionCount,
			d.LastTransaction.Format(dateLayout),
		})
	}
	rows = append(rows, []any{
		fmt.Sprintf("Total (%d clients)", totals.Clients),
		nil,
		money(totals.SalesDebt),
		money(totals.RentalsDebt),
		money(totals.TotalDebt),
		nil,
		nil,
	})
	return workbook("Debts", headers, rows)
}

// money keeps two decimals and stores the cell as a number.
func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func workbook(sheet string, headers []string, rows [][]any) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, err
	}
	if err := fillSheet(f, sheet, headers, rows); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// fillSheet writes a bold header row followed by rows.
func fillSheet(f *excelize.File, sheet string, headers []string, rows [][]any) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	return nil
}
