package export

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/hamidsetar/gestiondestock/pkg/models"
	"github.com/xuri/excelize/v2"
)

// AccountingWorkbook is the accountant's view of a period: a financial
// summary, the top products and clients, and every transaction behind them.
// Dates are shown in loc.
func AccountingWorkbook(report *models.AccountingReport, loc *time.Location) (*excelize.File, error) {
	if loc == nil {
		loc = time.UTC
	}
	st := report.Statistics

	summary := [][]any{
		{"Period", fmt.Sprintf("%s - %s", st.From.In(loc).Format(dateLayout), st.To.In(loc).Format(dateLayout))},
		{"Generated", report.GeneratedAt.In(loc).Format("2006-01-02 15:04")},
		{"Total revenue", money(st.TotalRevenue)},
		{"Collected", money(st.TotalPaid)},
		{"Outstanding", money(st.TotalRemaining)},
		{"Transactions", st.TotalTransactions},
		{"Sales", st.SalesCount},
		{"Sales revenue", money(st.SalesRevenue)},
		{"Rentals", st.RentalsCount},
		{"Rentals revenue", money(st.RentalsRevenue)},
	}

	products := make([][]any, 0, len(st.TopProducts))
	for i, e := range st.TopProducts {
		products = append(products, []any{i + 1, report.Products[e.Key].Name, money(e.Revenue), e.Quantity})
	}
	clients := make([][]any, 0, len(st.TopClients))
	for i, e := range st.TopClients {
		c := report.Clients[e.Key]
		clients = append(clients, []any{i + 1, c.FullName(), money(e.Revenue), e.Transactions})
	}

	txns := make([]models.Transaction, 0, len(report.Sales)+len(report.Rentals))
	for _, s := range report.Sales {
		txns = append(txns, s.Transaction)
	}
	for _, r := range report.Rentals {
		txns = append(txns, r.Transaction)
	}
	slices.SortStableFunc(txns, func(a, b models.Transaction) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	detail := make([][]any, 0, len(txns))
	for _, t := range txns {
		detail = append(detail, []any{
			t.CreatedAt.In(loc).Format(dateLayout),
			string(t.Kind),
			clientName(report.Clients, t.ClientID),
			report.Products[t.ProductID].Name,
			t.Quantity,
			money(t.TotalAmount),
			money(t.PaidAmount),
			money(t.RemainingAmount),
			string(t.PaymentStatus),
		})
	}

	f, err := workbook("Summary", []string{"Item", "Value"}, summary)
	if err != nil {
		return nil, err
	}
	sheets := []struct {
		name    string
		headers []string
		rows    [][]any
	}{
		{"Top products", []string{"Rank", "Product", "Revenue", "Quantity"}, products},
		{"Top clients", []string{"Rank", "Client", "Revenue", "Transactions"}, clients},
		{"Transactions", []string{"Date", "Type", "Client", "Product", "Quantity", "Total", "Paid", "Remaining", "Status"}, detail},
	}
	for _, sh := range sheets {
		if _, err := f.NewSheet(sh.name); err != nil {
			f.Close()
			return nil, err
		}
		if err := fillSheet(f, sh.name, sh.headers, sh.rows); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func clientName(clients map[uuid.UUID]models.Client, id uuid.UUID) string {
	c, ok := clients[id]
	if !ok {
		return ""
	}
	return c.FullName()
}
