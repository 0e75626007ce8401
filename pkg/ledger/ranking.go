package ledger

import (
	"slices"

	"github.com/google/uuid"
	"github.com/hamidsetar/gestiondestock/pkg/models"
	"github.com/shopspring/decimal"
)

type Dimension string

const (
	ByProduct Dimension = "product"
	ByClient  Dimension = "client"
)

func (d Dimension) key(t models.Transaction) uuid.UUID {
	if d == ByClient {
		return t.ClientID
	}
	return t.ProductID
}

// TopByRevenue groups txns along dim and returns the n groups with the highest
// summed total amount. Groups with equal revenue keep the order in which they
// were first seen. n <= 0 returns every group.
func TopByRevenue(txns []models.Transaction, dim Dimension, n int) []models.RankedEntry {
	index := make(map[uuid.UUID]int)
	entries := []models.RankedEntry{}
	for _, t := range txns {
		k := dim.key(t)
		i, ok := index[k]
		if !ok {
			i = len(entries)
			index[k] = i
			entries = append(entries, models.RankedEntry{Key: k, Revenue: decimal.Zero})
		}
		entries[i].Quantity += t.Quantity
		entries[i].Transactions++
		entries[i].Revenue = entries[i].Revenue.Add(t.TotalAmount)
	}

	slices.SortStableFunc(entries, func(a, b models.RankedEntry) int {
		return b.Revenue.Cmp(a.Revenue)
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
