package ledger

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hamidsetar/gestiondestock/pkg/models"
	"github.com/shopspring/decimal"
)

// AggregateClientDebts groups the outstanding transactions by client. Clients
// without any outstanding balance do not appear. Transactions pointing at a
// client missing from clients, or carrying an unknown kind, are skipped and
// counted in skipped. The result is ordered by total debt, largest first.
func AggregateClientDebts(txns []models.Transaction, clients []models.Client) (summaries []models.DebtSummary, skipped int) {
	byID := make(map[uuid.UUID]models.Client, len(clients))
	for _, c := range clients {
		byID[c.ID] = c
	}

	index := make(map[uuid.UUID]int)
	for _, t := range txns {
		if !t.RemainingAmount.IsPositive() {
			continue
		}
		client, ok := byID[t.ClientID]
		if !ok {
			skipped++
			continue
		}
		if t.Kind != models.KindSale && t.Kind != models.KindRental {
			skipped++
			continue
		}

		i, seen := index[t.ClientID]
		if !seen {
			i = len(summaries)
			index[t.ClientID] = i
			summaries = append(summaries, models.DebtSummary{
				Client:          client,
				Sales:           []models.Transaction{},
				Rentals:         []models.Transaction{},
				SalesDebt:       decimal.Zero,
				RentalsDebt:     decimal.Zero,
				TotalDebt:       decimal.Zero,
				LastTransaction: t.CreatedAt,
			})
		}
		s := &summaries[i]

		switch t.Kind {
		case models.KindSale:
			s.Sales = append(s.Sales, t)
			s.SalesDebt = s.SalesDebt.Add(t.RemainingAmount)
		case models.KindRental:
			s.Rentals = append(s.Rentals, t)
			s.RentalsDebt = s.RentalsDebt.Add(t.RemainingAmount)
		}
		s.TotalDebt = s.TotalDebt.Add(t.RemainingAmount)
		s.TransactionCount++
		if t.CreatedAt.After(s.LastTransaction) {
			s.LastTransaction = t.CreatedAt
		}
	}

	slices.SortStableFunc(summaries, func(a, b models.DebtSummary) int {
		return b.TotalDebt.Cmp(a.TotalDebt)
	})
	return summaries, skipped
}

// FilterDebts keeps the summaries whose last transaction falls within
// [from, to]. A nil bound leaves that side open.
func FilterDebts(summaries []models.DebtSummary, from, to *time.Time) []models.DebtSummary {
	out := make([]models.DebtSummary, 0, len(summaries))
	for _, s := range summaries {
		if from != nil && s.LastTransaction.Before(*from) {
			continue
		}
		if to != nil && s.LastTransaction.After(*to) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// SearchDebts keeps the summaries whose client matches term: names and email
// case-insensitively, phone as typed. A blank term keeps everything.
func SearchDebts(summaries []models.DebtSummary, term string) []models.DebtSummary {
	term = strings.TrimSpace(term)
	if term == "" {
		return summaries
	}
	lower := strings.ToLower(term)
	out := make([]models.DebtSummary, 0, len(summaries))
	for _, s := range summaries {
		c := s.Client
		if strings.Contains(strings.ToLower(c.FirstName), lower) ||
			strings.Contains(strings.ToLower(c.LastName), lower) ||
			strings.Contains(c.Phone, term) ||
			(c.Email != "" && strings.Contains(strings.ToLower(c.Email), lower)) {
			out = append(out, s)
		}
	}
	return out
}

func TotalOutstanding(summaries []models.DebtSummary) models.DebtTotals {
	totals := models.DebtTotals{
		Clients:     len(summaries),
		SalesDebt:   decimal.Zero,
		RentalsDebt: decimal.Zero,
		TotalDebt:   decimal.Zero,
	}
	for _, s := range summaries {
		totals.SalesDebt = totals.SalesDebt.Add(s.SalesDebt)
		totals.RentalsDebt = totals.RentalsDebt.Add(s.RentalsDebt)
		totals.TotalDebt = totals.TotalDebt.Add(s.TotalDebt)
	}
	return totals
}

// Transactions flattens sales and rentals into the common transaction view
// used by the aggregators.
func Transactions(sales []models.Sale, rentals []models.Rental) []models.Transaction {
	txns := make([]models.Transaction, 0, len(sales)+len(rentals))
	for _, s := range sales {
		txns = append(txns, s.Transaction)
	}
	for _, r := range rentals {
		txns = append(txns, r.Transaction)
	}
	return txns
}
