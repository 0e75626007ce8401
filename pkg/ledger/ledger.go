package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hamidsetar/gestiondestock/pkg/models"
	"github.com/hamidsetar/gestiondestock/pkg/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Ledger handles the business logic for sales, rentals and payments on top
// of a Storage. The calculations themselves live in the pure functions of
// this package; Ledger loads their inputs and commits their outputs.
type Ledger struct {
	storage  store.Storage
	logger   *zap.Logger
	location *time.Location
	now      func() time.Time
}

type Option func(*Ledger)

// WithLocation sets the time zone that month and year boundaries follow.
func WithLocation(loc *time.Location) Option {
	return func(l *Ledger) { l.location = loc }
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// NewLedger creates a new Ledger with a given Storage implementation.
func NewLedger(s store.Storage, logger *zap.Logger, opts ...Option) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Ledger{
		storage:  s,
		logger:   logger.Named("ledger"),
		location: time.UTC,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) Location() *time.Location {
	return l.location
}

// CreateSale prices and stores a sale, taking its quantity out of stock.
func (l *Ledger) CreateSale(ctx context.Context, clientID, productID uuid.UUID, qty int, discount, paid decimal.Decimal, author string) (*models.Sale, error) {
	client, product, err := l.loadParties(ctx, clientID, productID)
	if err != nil {
		return nil, err
	}

	sale, err := NewSale(*client, *product, qty, discount, paid, author, l.now())
	if err != nil {
		return nil, err
	}
	if err := l.storage.CreateSale(ctx, &sale); err != nil {
		return nil, fmt.Errorf("failed to store sale: %w", err)
	}

	l.logger.Info("sale recorded",
		zap.String("sale_id", sale.ID.String()),
		zap.String("client_id", clientID.String()),
		zap.String("total", sale.TotalAmount.StringFixed(2)),
		zap.String("status", string(sale.PaymentStatus)),
	)
	return &sale, nil
}

// CreateRental prices and stores a rental, taking its quantity out of stock.
func (l *Ledger) CreateRental(ctx context.Context, clientID, productID uuid.UUID, qty int, start, end time.Time, deposit, paid decimal.Decimal, author string) (*models.Rental, error) {
	client, product, err := l.loadParties(ctx, clientID, productID)
	if err != nil {
		return nil, err
	}

	rental, err := NewRental(*client, *product, qty, start, end, deposit, paid, author, l.now().In(l.location))
	if err != nil {
		return nil, err
	}
	if err := l.storage.CreateRental(ctx, &rental); err != nil {
		return nil, fmt.Errorf("failed to store rental: %w", err)
	}

	l.logger.Info("rental recorded",
		zap.String("rental_id", rental.ID.String()),
		zap.String("client_id", clientID.String()),
		zap.Int("days", RentalDays(start, end)),
		zap.String("total", rental.TotalAmount.StringFixed(2)),
	)
	return &rental, nil
}

func (l *Ledger) loadParties(ctx context.Context, clientID, productID uuid.UUID) (*models.Client, *models.Product, error) {
	client, err := l.storage.GetClient(ctx, clientID)
	if err != nil {
		return nil, nil, err
	}
	product, err := l.storage.GetProduct(ctx, productID)
	if err != nil {
		return nil, nil, err
	}
	return client, product, nil
}

// ReturnRental closes a rental and puts its items back in stock.
func (l *Ledger) ReturnRental(ctx context.Context, id uuid.UUID) (*models.Rental, error) {
	if err := l.storage.ReturnRental(ctx, id); err != nil {
		return nil, err
	}
	l.logger.Info("rental returned", zap.String("rental_id", id.String()))
	return l.storage.GetRental(ctx, id)
}

// RecordPayment applies amount to the sale or rental identified by kind and
// id. The payment and the new balance are committed together; a payment
// that raced another one on the same transaction fails with
// store.ErrConcurrentUpdate and changes nothing.
func (l *Ledger) RecordPayment(ctx context.Context, kind models.TransactionKind, id uuid.UUID, amount decimal.Decimal, method models.PaymentMethod, author string) (*models.Payment, *models.Transaction, error) {
	txn, err := l.Transaction(ctx, kind, id)
	if err != nil {
		return nil, nil, err
	}

	updated, payment, err := ApplyPayment(*txn, amount, method, author, l.now())
	if err != nil {
		return nil, nil, err
	}
	if err := l.storage.CommitPayment(ctx, updated, txn.PaidAmount, &payment); err != nil {
		return nil, nil, fmt.Errorf("failed to store payment: %w", err)
	}

	l.logger.Info("payment recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("transaction_id", id.String()),
		zap.String("kind", string(kind)),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("remaining", updated.RemainingAmount.StringFixed(2)),
	)
	return &payment, &updated, nil
}

// Transaction loads the common view of the sale or rental identified by
// kind and id.
func (l *Ledger) Transaction(ctx context.Context, kind models.TransactionKind, id uuid.UUID) (*models.Transaction, error) {
	switch kind {
	case models.KindSale:
		sale, err := l.storage.GetSale(ctx, id)
		if err != nil {
			return nil, err
		}
		return &sale.Transaction, nil
	case models.KindRental:
		rental, err := l.storage.GetRental(ctx, id)
		if err != nil {
			return nil, err
		}
		return &rental.Transaction, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidTransactionKind, kind)
}

// PaymentBalance loads a payment with its transaction and the balance that
// was left right after it was applied.
func (l *Ledger) PaymentBalance(ctx context.Context, id uuid.UUID) (*models.Payment, *models.Transaction, decimal.Decimal, error) {
	payment, err := l.storage.GetPayment(ctx, id)
	if err != nil {
		return nil, nil, decimal.Zero, err
	}
	txn, err := l.Transaction(ctx, payment.TransactionKind, payment.TransactionID)
	if err != nil {
		return nil, nil, decimal.Zero, err
	}
	history, err := l.storage.ListPaymentsForTransaction(ctx, txn.ID)
	if err != nil {
		return nil, nil, decimal.Zero, err
	}
	return payment, txn, RemainingAfter(*txn, history, *payment), nil
}

// DeleteClient removes a client that no sale or rental refers to.
func (l *Ledger) DeleteClient(ctx context.Context, id uuid.UUID) error {
	has, err := l.storage.ClientHasTransactions(ctx, id)
	if err != nil {
		return err
	}
	if has {
		return fmt.Errorf("client %s: %w", id, ErrFinancialHistory)
	}
	if err := l.storage.DeleteClient(ctx, id); err != nil {
		return err
	}
	l.logger.Info("client deleted", zap.String("client_id", id.String()))
	return nil
}

// ProductByBarcode finds a product carrying barcode that still has stock.
func (l *Ledger) ProductByBarcode(ctx context.Context, barcode string) (*models.Product, error) {
	products, err := l.storage.ListProductsByBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("barcode %q: %w", barcode, store.ErrNotFound)
	}
	for i := range products {
		if products[i].Stock > 0 {
			return &products[i], nil
		}
	}
	return nil, fmt.Errorf("%w: barcode %q is out of stock", ErrInsufficientStock, barcode)
}

// DeleteSale removes a sale that has no recorded payments.
func (l *Ledger) DeleteSale(ctx context.Context, id uuid.UUID) error {
	sale, err := l.storage.GetSale(ctx, id)
	if err != nil {
		return err
	}
	if !sale.PaidAmount.IsZero() {
		return fmt.Errorf("sale %s: %w", id, ErrFinancialHistory)
	}
	return l.storage.DeleteSale(ctx, id)
}

// DeleteRental removes a rental that has no recorded payments.
func (l *Ledger) DeleteRental(ctx context.Context, id uuid.UUID) error {
	rental, err := l.storage.GetRental(ctx, id)
	if err != nil {
		return err
	}
	if !rental.PaidAmount.IsZero() {
		return fmt.Errorf("rental %s: %w", id, ErrFinancialHistory)
	}
	return l.storage.DeleteRental(ctx, id)
}

// SweepRentals moves reserved rentals whose start date has arrived to
// active, and flags active rentals whose end date has passed as overdue.
func (l *Ledger) SweepRentals(ctx context.Context) (activated, overdue int, err error) {
	rentals, err := l.storage.ListRentals(ctx)
	if err != nil {
		return 0, 0, err
	}

	now := l.now().In(l.location)
	for _, r := range rentals {
		var next models.RentalStatus
		switch {
		case r.Status == models.RentalStatusReserved && RentalDays(r.StartDate.In(now.Location()), now) >= 1:
			next = models.RentalStatusActive
		case r.Status == models.RentalStatusActive && IsOverdue(r, now):
			next = models.RentalStatusOverdue
		default:
			continue
		}
		if err := l.storage.SetRentalStatus(ctx, r.ID, next); err != nil {
			l.logger.Error("failed to update rental status",
				zap.String("rental_id", r.ID.String()),
				zap.String("status", string(next)),
				zap.Error(err),
			)
			continue
		}
		if next == models.RentalStatusActive {
			activated++
		} else {
			overdue++
		}
	}
	if activated+overdue > 0 {
		l.logger.Info("rental statuses swept", zap.Int("activated", activated), zap.Int("overdue", overdue))
	}
	return activated, overdue, nil
}

// snapshot is everything the reports read.
type snapshot struct {
	sales    []models.Sale
	rentals  []models.Rental
	clients  []models.Client
	products []models.Product
}

func (l *Ledger) load(ctx context.Context, withProducts bool) (*snapshot, error) {
	var snap snapshot
	var err error
	if snap.sales, err = l.storage.ListSales(ctx); err != nil {
		return nil, err
	}
	if snap.rentals, err = l.storage.ListRentals(ctx); err != nil {
		return nil, err
	}
	if snap.clients, err = l.storage.ListClients(ctx); err != nil {
		return nil, err
	}
	if withProducts {
		if snap.products, err = l.storage.ListProducts(ctx); err != nil {
			return nil, err
		}
	}
	return &snap, nil
}

// ClientDebts lists clients with an outstanding balance, optionally limited
// to those whose last transaction falls within [from, to].
func (l *Ledger) ClientDebts(ctx context.Context, from, to *time.Time) ([]models.DebtSummary, error) {
	snap, err := l.load(ctx, false)
	if err != nil {
		return nil, err
	}
	summaries, skipped := AggregateClientDebts(Transactions(snap.sales, snap.rentals), snap.clients)
	if skipped > 0 {
		l.logger.Warn("transactions skipped during debt aggregation", zap.Int("skipped", skipped))
	}
	if summaries == nil {
		summaries = []models.DebtSummary{}
	}
	return FilterDebts(summaries, from, to), nil
}

func (l *Ledger) MonthlyReport(ctx context.Context, year int) ([12]models.MonthlyData, error) {
	snap, err := l.load(ctx, false)
	if err != nil {
		return [12]models.MonthlyData{}, err
	}
	return MonthlyReport(year, l.location, snap.sales, snap.rentals, snap.clients), nil
}

func (l *Ledger) YearlyReport(ctx context.Context) ([]models.YearlyData, error) {
	snap, err := l.load(ctx, false)
	if err != nil {
		return nil, err
	}
	return YearlyReport(l.location, snap.sales, snap.rentals, snap.clients), nil
}

func (l *Ledger) Statistics(ctx context.Context, period PeriodKind, from, to *time.Time) (models.PeriodStatistics, error) {
	iv, err := ResolvePeriod(period, l.now(), l.location, from, to)
	if err != nil {
		return models.PeriodStatistics{}, err
	}
	snap, err := l.load(ctx, true)
	if err != nil {
		return models.PeriodStatistics{}, err
	}
	return Statistics(iv, l.location, snap.sales, snap.rentals, snap.products, snap.clients), nil
}

// AccountingReport gathers the statistics of a period together with the
// sales and rentals behind them.
func (l *Ledger) AccountingReport(ctx context.Context, period PeriodKind, from, to *time.Time) (*models.AccountingReport, error) {
	iv, err := ResolvePeriod(period, l.now(), l.location, from, to)
	if err != nil {
		return nil, err
	}
	snap, err := l.load(ctx, true)
	if err != nil {
		return nil, err
	}
	sales, rentals := InInterval(iv, snap.sales, snap.rentals)
	report := &models.AccountingReport{
		Statistics:  Statistics(iv, l.location, snap.sales, snap.rentals, snap.products, snap.clients),
		Sales:       sales,
		Rentals:     rentals,
		Clients:     make(map[uuid.UUID]models.Client, len(snap.clients)),
		Products:    make(map[uuid.UUID]models.Product, len(snap.products)),
		GeneratedAt: l.now().In(l.location),
	}
	for _, c := range snap.clients {
		report.Clients[c.ID] = c
	}
	for _, p := range snap.products {
		report.Products[p.ID] = p
	}
	return report, nil
}

func (l *Ledger) Dashboard(ctx context.Context) (models.Dashboard, error) {
	snap, err := l.load(ctx, true)
	if err != nil {
		return models.Dashboard{}, err
	}
	return BuildDashboard(l.now().In(l.location), snap.sales, snap.rentals, snap.products), nil
}
