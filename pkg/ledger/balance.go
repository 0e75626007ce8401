package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hamidsetar/gestiondestock/pkg/models"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInvalidPaymentMethod   = errors.New("invalid payment method")
	ErrInvalidTransactionKind = errors.New("invalid transaction kind")
	ErrInvalidQuantity        = errors.New("quantity must be positive")
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrInvalidPeriod          = errors.New("invalid period")
	ErrFinancialHistory       = errors.New("financial history on record")
)

// DeriveBalance computes the outstanding balance and payment status for a
// total and a paid amount. An overpaid transaction keeps its negative
// remainder; callers that must refuse overpayment do so before calling.
func DeriveBalance(total, paid decimal.Decimal) (decimal.Decimal, models.PaymentStatus) {
	remaining := total.Sub(paid)
	switch {
	case remaining.LessThanOrEqual(decimal.Zero):
		return remaining, models.PaymentStatusPaid
	case paid.GreaterThan(decimal.Zero):
		return remaining, models.PaymentStatusPartial
	default:
		return remaining, models.PaymentStatusPending
	}
}

// settle recomputes the derived balance fields of t in place.
func settle(t *models.Transaction) {
	t.RemainingAmount, t.PaymentStatus = DeriveBalance(t.TotalAmount, t.PaidAmount)
}

// ApplyPayment validates amount against the transaction's remaining balance
// and returns the updated transaction together with the payment record that
// must be committed alongside it. txn itself is left untouched.
func ApplyPayment(txn models.Transaction, amount decimal.Decimal, method models.PaymentMethod, author string, at time.Time) (models.Transaction, models.Payment, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return txn, models.Payment{}, fmt.Errorf("%w: payment must be positive, got %s", ErrInvalidAmount, amount.StringFixed(2))
	}
	if amount.GreaterThan(txn.RemainingAmount) {
		return txn, models.Payment{}, fmt.Errorf("%w: payment %s exceeds remaining %s", ErrInvalidAmount, amount.StringFixed(2), txn.RemainingAmount.StringFixed(2))
	}
	if !method.Valid() {
		return txn, models.Payment{}, fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, method)
	}

	updated := txn
	updated.PaidAmount = txn.PaidAmount.Add(amount)
	settle(&updated)

	payment := models.Payment{
		ID:              uuid.New(),
		TransactionID:   txn.ID,
		TransactionKind: txn.Kind,
		Amount:          amount,
		Method:          method,
		CreatedBy:       author,
		CreatedAt:       at,
	}
	return updated, payment, nil
}

// RemainingAfter returns what was left to pay on txn right after payment,
// given the transaction's current balance and its payment history.
func RemainingAfter(txn models.Transaction, history []models.Payment, payment models.Payment) decimal.Decimal {
	remaining := txn.RemainingAmount
	for _, p := range history {
		if p.ID != payment.ID && p.CreatedAt.After(payment.CreatedAt) {
			remaining = remaining.Add(p.Amount)
		}
	}
	return remaining
}
