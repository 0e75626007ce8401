package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleAgent Role = "agent"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// FullName is what gets recorded as the author of sales, rentals and payments.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

type Client struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (c Client) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

type Product struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Size          string          `json:"size"`
	Color         string          `json:"color"`
	Barcode       string          `json:"barcode"`
	Price         decimal.Decimal `json:"price"`          // Sale price per unit
	RentalPrice   decimal.Decimal `json:"rental_price"`   // Daily rate per unit
	PurchasePrice decimal.Decimal `json:"purchase_price"` // Used for profit figures
	Stock         int             `json:"stock"`
	CreatedAt     time.Time       `json:"created_at"`
}

type TransactionKind string

const (
	KindSale   TransactionKind = "sale"
	KindRental TransactionKind = "rental"
)

type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPending PaymentStatus = "pending"
)

// Transaction holds the fields shared by sales and rentals. Kind tells which
// one it is; aggregation code switches on it rather than on field presence.
type Transaction struct {
	ID              uuid.UUID       `json:"id"`
	Kind            TransactionKind `json:"kind"`
	ClientID        uuid.UUID       `json:"client_id"`
	ProductID       uuid.UUID       `json:"product_id"`
	Quantity        int             `json:"quantity"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"` // Always TotalAmount - PaidAmount
	PaymentStatus   PaymentStatus   `json:"payment_status"`
	CreatedBy       string          `json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
}

type Sale struct {
	Transaction
	UnitPrice decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal `json:"discount"`
}

type RentalStatus string

const (
	RentalStatusReserved RentalStatus = "reserved"
	RentalStatusActive   RentalStatus = "active"
	RentalStatusReturned RentalStatus = "returned"
	RentalStatusOverdue  RentalStatus = "overdue"
)

type Rental struct {
	Transaction
	DailyRate decimal.Decimal `json:"daily_rate"`
	Deposit   decimal.Decimal `json:"deposit"`
	StartDate time.Time       `json:"start_date"`
	EndDate   time.Time       `json:"end_date"`
	Status    RentalStatus    `json:"status"` // Lifecycle, independent of PaymentStatus
}

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer"
)

// Valid reports whether m is one of the accepted payment methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer:
		return true
	}
	return false
}

type Payment struct {
	ID              uuid.UUID       `json:"id"`
	TransactionID   uuid.UUID       `json:"transaction_id"`
	TransactionKind TransactionKind `json:"transaction_kind"`
	Amount          decimal.Decimal `json:"amount"`
	Method          PaymentMethod   `json:"method"`
	CreatedBy       string          `json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
}
