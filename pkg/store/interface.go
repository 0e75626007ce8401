package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hamidsetar/gestiondestock/pkg/models"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrConcurrentUpdate means a row changed between read and write: a
	// payment raced another payment, or stock moved under a sale or rental.
	ErrConcurrentUpdate = errors.New("concurrent update")
)

// Storage defines the record store the ledger service works against.
type Storage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)

	CreateClient(ctx context.Context, client *models.Client) error
	GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error)
	ListClients(ctx context.Context) ([]models.Client, error)
	UpdateClient(ctx context.Context, client *models.Client) error
	DeleteClient(ctx context.Context, id uuid.UUID) error
	ClientHasTransactions(ctx context.Context, id uuid.UUID) (bool, error)

	CreateProduct(ctx context.Context, product *models.Product) error
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	ListProductsByBarcode(ctx context.Context, barcode string) ([]models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	// CreateSale inserts the sale and takes its quantity out of stock in one
	// database transaction.
	CreateSale(ctx context.Context, sale *models.Sale) error
	GetSale(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	ListSales(ctx context.Context) ([]models.Sale, error)
	// DeleteSale removes the sale and puts its quantity back in stock.
	DeleteSale(ctx context.Context, id uuid.UUID) error

	CreateRental(ctx context.Context, rental *models.Rental) error
	GetRental(ctx context.Context, id uuid.UUID) (*models.Rental, error)
	ListRentals(ctx context.Context) ([]models.Rental, error)
	SetRentalStatus(ctx context.Context, id uuid.UUID, status models.RentalStatus) error
	// ReturnRental marks the rental returned and restocks its quantity.
	ReturnRental(ctx context.Context, id uuid.UUID) error
	DeleteRental(ctx context.Context, id uuid.UUID) error

	// CommitPayment stores the payment and the transaction's new balance
	// together. The balance is only written if the stored paid amount still
	// equals previousPaid; otherwise nothing is written and
	// ErrConcurrentUpdate is returned.
	CommitPayment(ctx context.Context, txn models.Transaction, previousPaid decimal.Decimal, payment *models.Payment) error
	GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	ListPayments(ctx context.Context) ([]models.Payment, error)
	ListPaymentsForTransaction(ctx context.Context, transactionID uuid.UUID) ([]models.Payment, error)

	Close() error
}
