package receipt

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hamidsetar/gestiondestock/pkg/models"
	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindSale    Kind = "sale"
	KindRental  Kind = "rental"
	KindPayment Kind = "payment"
)

// Shop is the letterhead printed at the top of every receipt.
type Shop struct {
	Name     string
	Address  string
	Phone    string
	Currency string
}

type Item struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
}

// RentalTerms are printed on rental receipts only.
type RentalTerms struct {
	Start   time.Time
	End     time.Time
	Return  time.Time
	Days    int
	Deposit decimal.Decimal
}

// Receipt holds every value a printed receipt shows. All amounts are
// computed before rendering; templates only format them.
type Receipt struct {
	ID            uuid.UUID
	Kind          Kind
	TransactionID uuid.UUID
	ClientName    string
	ClientPhone   string
	Items         []Item
	Discount      decimal.Decimal
	Total         decimal.Decimal
	Paid          decimal.Decimal
	Remaining     decimal.Decimal
	Method        models.PaymentMethod
	Rental        *RentalTerms
	CreatedBy     string
	CreatedAt     time.Time
}

// Number is the short reference printed on the receipt.
func (r Receipt) Number() string {
	return strings.ToUpper(r.ID.String()[:8])
}

// Filename is the suggested download name for the PDF.
func (r Receipt) Filename() string {
	prefix := map[Kind]string{KindSale: "recu-vente", KindRental: "recu-location", KindPayment: "recu-paiement"}[r.Kind]
	return fmt.Sprintf("%s-%s.pdf", prefix, strings.ToLower(r.Number()))
}

// SettledInFull reports whether nothing remains to be paid.
func (r Receipt) SettledInFull() bool {
	return !r.Remaining.IsPositive()
}

func FromSale(s models.Sale, client models.Client, product models.Product) Receipt {
	return Receipt{
		ID:            s.ID,
		Kind:          KindSale,
		TransactionID: s.ID,
		ClientName:    client.FullName(),
		ClientPhone:   client.Phone,
		Items: []Item{{
			Name:      product.Name,
			Quantity:  s.Quantity,
			UnitPrice: s.UnitPrice,
			Total:     s.UnitPrice.Mul(decimal.NewFromInt(int64(s.Quantity))),
		}},
		Discount:  s.Discount,
		Total:     s.TotalAmount,
		Paid:      s.PaidAmount,
		Remaining: s.RemainingAmount,
		CreatedBy: s.CreatedBy,
		CreatedAt: s.CreatedAt,
	}
}

// FromRental lists the product once, with the rental duration in its name
// and the per-item price covering the whole duration.
func FromRental(r models.Rental, days int, client models.Client, product models.Product) Receipt {
	unit := r.DailyRate.Mul(decimal.NewFromInt(int64(days)))
	return Receipt{
		ID:            r.ID,
		Kind:          KindRental,
		TransactionID: r.ID,
		ClientName:    client.FullName(),
		ClientPhone:   client.Phone,
		Items: []Item{{
			Name:      fmt.Sprintf("%s (%s)", product.Name, dayCount(days)),
			Quantity:  r.Quantity,
			UnitPrice: unit,
			Total:     r.TotalAmount,
		}},
		Discount:  decimal.Zero,
		Total:     r.TotalAmount,
		Paid:      r.PaidAmount,
		Remaining: r.RemainingAmount,
		Rental: &RentalTerms{
			Start:   r.StartDate,
			End:     r.EndDate,
			Return:  r.EndDate.AddDate(0, 0, 1),
			Days:    days,
			Deposit: r.Deposit,
		},
		CreatedBy: r.CreatedBy,
		CreatedAt: r.CreatedAt,
	}
}

// FromPayment acknowledges a single payment. remainingAfter is the balance
// left on the transaction right after this payment.
func FromPayment(p models.Payment, client models.Client, product models.Product, remainingAfter decimal.Decimal) Receipt {
	return Receipt{
		ID:            p.ID,
		Kind:          KindPayment,
		TransactionID: p.TransactionID,
		ClientName:    client.FullName(),
		ClientPhone:   client.Phone,
		Items: []Item{{
			Name:      "Paiement - " + product.Name,
			Quantity:  1,
			UnitPrice: p.Amount,
			Total:     p.Amount,
		}},
		Discount:  decimal.Zero,
		Total:     p.Amount,
		Paid:      p.Amount,
		Remaining: remainingAfter,
		Method:    p.Method,
		CreatedBy: p.CreatedBy,
		CreatedAt: p.CreatedAt,
	}
}

func dayCount(days int) string {
	if days > 1 {
		return fmt.Sprintf("%d jours", days)
	}
	return fmt.Sprintf("%d jour", days)
}
