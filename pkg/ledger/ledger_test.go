package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hamidsetar/gestiondestock/pkg/models"
	"github.com/hamidsetar/gestiondestock/pkg/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockStore is a simple in-memory implementation of the Storage interface for testing.
type MockStore struct {
	users    map[uuid.UUID]*models.User
	clients  map[uuid.UUID]*models.Client
	products map[uuid.UUID]*models.Product
	sales    map[uuid.UUID]*models.Sale
	rentals  map[uuid.UUID]*models.Rental
	payments []*models.Payment

	// commitHook runs before CommitPayment checks the stored balance.
	commitHook func()
}

func NewMockStore() *MockStore {
	return &MockStore{
		users:    make(map[uuid.UUID]*models.User),
		clients:  make(map[uuid.UUID]*models.Client),
		products: make(map[uuid.UUID]*models.Product),
		sales:    make(map[uuid.UUID]*models.Sale),
		rentals:  make(map[uuid.UUID]*models.Rental),
	}
}

func missing(what string) error {
	return fmt.Errorf("%s: %w", what, store.ErrNotFound)
}

func (m *MockStore) CreateUser(_ context.Context, u *models.User) error {
	c := *u
	m.users[u.ID] = &c
	return nil
}

func (m *MockStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			c := *u
			return &c, nil
		}
	}
	return nil, missing("user")
}

func (m *MockStore) ListUsers(_ context.Context) ([]models.User, error) {
	out := []models.User{}
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *MockStore) CreateClient(_ context.Context, c *models.Client) error {
	cp := *c
	m.clients[c.ID] = &cp
	return nil
}

func (m *MockStore) GetClient(_ context.Context, id uuid.UUID) (*models.Client, error) {
	c, ok := m.clients[id]
	if !ok {
		return nil, missing("client")
	}
	cp := *c
	return &cp, nil
}

func (m *MockStore) ListClients(_ context.Context) ([]models.Client, error) {
	out := []models.Client{}
	for _, c := range m.clients {
		out = append(out, *c)
	}
	return out, nil
}

func (m *MockStore) UpdateClient(_ context.Context, c *models.Client) error {
	if _, ok := m.clients[c.ID]; !ok {
		return missing("client")
	}
	cp := *c
	m.clients[c.ID] = &cp
	return nil
}

func (m *MockStore) ClientHasTransactions(_ context.Context, id uuid.UUID) (bool, error) {
	for _, s := range m.sales {
		if s.ClientID == id {
			return true, nil
		}
	}
	for _, r := range m.rentals {
		if r.ClientID == id {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockStore) DeleteClient(_ context.Context, id uuid.UUID) error {
	delete(m.clients, id)
	return nil
}

func (m *MockStore) CreateProduct(_ context.Context, p *models.Product) error {
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *MockStore) GetProduct(_ context.Context, id uuid.UUID) (*models.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, missing("product")
	}
	cp := *p
	return &cp, nil
}

func (m *MockStore) ListProducts(_ context.Context) ([]models.Product, error) {
	out := []models.Product{}
	for _, p := range m.products {
		out = append(out, *p)
	}
	return out, nil
}

func (m *MockStore) ListProductsByBarcode(_ context.Context, barcode string) ([]models.Product, error) {
	out := []models.Product{}
	for _, p := range m.products {
		if p.Barcode == barcode {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *MockStore) UpdateProduct(_ context.Context, p *models.Product) error {
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *MockStore) DeleteProduct(_ context.Context, id uuid.UUID) error {
	delete(m.products, id)
	return nil
}

func (m *MockStore) takeStock(productID uuid.UUID, qty int) error {
	p, ok := m.products[productID]
	if !ok || p.Stock < qty {
		return store.ErrConcurrentUpdate
	}
	p.Stock -= qty
	return nil
}

func (m *MockStore) CreateSale(_ context.Context, s *models.Sale) error {
	if err := m.takeStock(s.ProductID, s.Quantity); err != nil {
		return err
	}
	cp := *s
	m.sales[s.ID] = &cp
	return nil
}

func (m *MockStore) GetSale(_ context.Context, id uuid.UUID) (*models.Sale, error) {
	s, ok := m.sales[id]
	if !ok {
		return nil, missing("sale")
	}
	cp := *s
	return &cp, nil
}

func (m *MockStore) ListSales(_ context.Context) ([]models.Sale, error) {
	out := []models.Sale{}
	for _, s := range m.sales {
		out = append(out, *s)
	}
	return out, nil
}

func (m *MockStore) DeleteSale(_ context.Context, id uuid.UUID) error {
	s, ok := m.sales[id]
	if !ok {
		return missing("sale")
	}
	m.products[s.ProductID].Stock += s.Quantity
	delete(m.sales, id)
	return nil
}

func (m *MockStore) CreateRental(_ context.Context, r *models.Rental) error {
	if err := m.takeStock(r.ProductID, r.Quantity); err != nil {
		return err
	}
	cp := *r
	m.rentals[r.ID] = &cp
	return nil
}

func (m *MockStore) GetRental(_ context.Context, id uuid.UUID) (*models.Rental, error) {
	r, ok := m.rentals[id]
	if !ok {
		return nil, missing("rental")
	}
	cp := *r
	return &cp, nil
}

func (m *MockStore) ListRentals(_ context.Context) ([]models.Rental, error) {
	out := []models.Rental{}
	for _, r := range m.rentals {
		out = append(out, *r)
	}
	return out, nil
}

func (m *MockStore) SetRentalStatus(_ context.Context, id uuid.UUID, status models.RentalStatus) error {
	r, ok := m.rentals[id]
	if !ok {
		return missing("rental")
	}
	r.Status = status
	return nil
}

func (m *MockStore) ReturnRental(_ context.Context, id uuid.UUID) error {
	r, ok := m.rentals[id]
	if !ok || r.Status == models.RentalStatusReturned {
		return missing("outstanding rental")
	}
	r.Status = models.RentalStatusReturned
	m.products[r.ProductID].Stock += r.Quantity
	return nil
}

func (m *MockStore) DeleteRental(_ context.Context, id uuid.UUID) error {
	delete(m.rentals, id)
	return nil
}

func (m *MockStore) CommitPayment(_ context.Context, txn models.Transaction, previousPaid decimal.Decimal, p *models.Payment) error {
	if m.commitHook != nil {
		m.commitHook()
	}
	var stored *models.Transaction
	switch txn.Kind {
	case models.KindSale:
		if s, ok := m.sales[txn.ID]; ok {
			stored = &s.Transaction
		}
	case models.KindRental:
		if r, ok := m.rentals[txn.ID]; ok {
			stored = &r.Transaction
		}
	}
	if stored == nil || !stored.PaidAmount.Equal(previousPaid) {
		return store.ErrConcurrentUpdate
	}
	stored.PaidAmount = txn.PaidAmount
	stored.RemainingAmount = txn.RemainingAmount
	stored.PaymentStatus = txn.PaymentStatus
	m.payments = append(m.payments, p)
	return nil
}

func (m *MockStore) GetPayment(_ context.Context, id uuid.UUID) (*models.Payment, error) {
	for _, p := range m.payments {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, missing("payment")
}

func (m *MockStore) ListPayments(_ context.Context) ([]models.Payment, error) {
	out := []models.Payment{}
	for _, p := range m.payments {
		out = append(out, *p)
	}
	return out, nil
}

func (m *MockStore) ListPaymentsForTransaction(_ context.Context, id uuid.UUID) ([]models.Payment, error) {
	out := []models.Payment{}
	for _, p := range m.payments {
		if p.TransactionID == id {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *MockStore) Close() error {
	return nil
}

var fixedNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func newTestLedger(t *testing.T) (*Ledger, *MockStore, models.Client, models.Product) {
	t.Helper()
	ms := NewMockStore()
	client := models.Client{ID: uuid.New(), FirstName: "Amina", LastName: "Benali", CreatedAt: fixedNow}
	product := models.Product{
		ID:            uuid.New(),
		Name:          "Caftan",
		Price:         decimal.NewFromInt(500),
		RentalPrice:   decimal.NewFromInt(40),
		PurchasePrice: decimal.NewFromInt(300),
		Stock:         5,
	}
	require.NoError(t, ms.CreateClient(context.Background(), &client))
	require.NoError(t, ms.CreateProduct(context.Background(), &product))
	l := NewLedger(ms, nil, WithClock(func() time.Time { return fixedNow }))
	return l, ms, client, product
}

func TestLedger_CreateSale(t *testing.T) {
	l, ms, client, product := newTestLedger(t)

	sale, err := l.CreateSale(context.Background(), client.ID, product.ID, 2, decimal.NewFromInt(100), decimal.NewFromInt(200), "Hamid Setar")
	require.NoError(t, err)

	assert.True(t, sale.TotalAmount.Equal(decimal.NewFromInt(900)))
	assert.True(t, sale.RemainingAmount.Equal(decimal.NewFromInt(700)))
	assert.Equal(t, models.PaymentStatusPartial, sale.PaymentStatus)
	assert.Equal(t, 3, ms.products[product.ID].Stock)
}

func TestLedger_CreateSaleUnknownClient(t *testing.T) {
	l, _, _, product := newTestLedger(t)

	_, err := l.CreateSale(context.Background(), uuid.New(), product.ID, 1, decimal.Zero, decimal.Zero, "Hamid Setar")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestLedger_CreateRental(t *testing.T) {
	l, ms, client, product := newTestLedger(t)

	start := fixedNow
	end := fixedNow.AddDate(0, 0, 2)
	rental, err := l.CreateRental(context.Background(), client.ID, product.ID, 1, start, end, decimal.NewFromInt(500), decimal.Zero, "Hamid Setar")
	require.NoError(t, err)

	// Three days at 40.
	assert.True(t, rental.TotalAmount.Equal(decimal.NewFromInt(120)))
	assert.Equal(t, models.PaymentStatusPending, rental.PaymentStatus)
	assert.Equal(t, models.RentalStatusActive, rental.Status)
	assert.Equal(t, 4, ms.products[product.ID].Stock)

	returned, err := l.ReturnRental(context.Background(), rental.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RentalStatusReturned, returned.Status)
	assert.Equal(t, 5, ms.products[product.ID].Stock)
}

func TestLedger_CreateRentalInShopTimezone(t *testing.T) {
	_, ms, client, product := newTestLedger(t)
	algiers := time.FixedZone("CET", 3600)
	late := time.Date(2024, 1, 1, 23, 30, 0, 0, time.UTC)
	l := NewLedger(ms, nil, WithLocation(algiers), WithClock(func() time.Time { return late }))

	start := time.Date(2024, 1, 2, 0, 0, 0, 0, algiers)
	rental, err := l.CreateRental(context.Background(), client.ID, product.ID, 1, start, start.AddDate(0, 0, 2), decimal.Zero, decimal.Zero, "Hamid Setar")
	require.NoError(t, err)
	assert.Equal(t, models.RentalStatusActive, rental.Status)

	d, err := l.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, d.ActiveRentals)
}

func TestLedger_RecordPayment(t *testing.T) {
	l, ms, client, product := newTestLedger(t)
	ctx := context.Background()

	sale, err := l.CreateSale(ctx, client.ID, product.ID, 1, decimal.Zero, decimal.NewFromInt(200), "Hamid Setar")
	require.NoError(t, err)

	_, _, err = l.RecordPayment(ctx, models.KindSale, sale.ID, decimal.NewFromInt(301), models.PaymentMethodCash, "Hamid Setar")
	assert.True(t, errors.Is(err, ErrInvalidAmount))
	assert.Empty(t, ms.payments)

	payment, updated, err := l.RecordPayment(ctx, models.KindSale, sale.ID, decimal.NewFromInt(300), models.PaymentMethodCard, "Hamid Setar")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, updated.PaymentStatus)
	assert.True(t, updated.RemainingAmount.IsZero())
	assert.Equal(t, sale.ID, payment.TransactionID)
	assert.Equal(t, fixedNow, payment.CreatedAt)

	stored := ms.sales[sale.ID]
	assert.Equal(t, models.PaymentStatusPaid, stored.PaymentStatus)
	assert.Len(t, ms.payments, 1)
}

func TestLedger_RecordPaymentLosesRace(t *testing.T) {
	l, ms, client, product := newTestLedger(t)
	ctx := context.Background()

	sale, err := l.CreateSale(ctx, client.ID, product.ID, 1, decimal.Zero, decimal.Zero, "Hamid Setar")
	require.NoError(t, err)

	// Another payment lands between our read and our write.
	ms.commitHook = func() {
		ms.sales[sale.ID].PaidAmount = decimal.NewFromInt(450)
		ms.commitHook = nil
	}
	_, _, err = l.RecordPayment(ctx, models.KindSale, sale.ID, decimal.NewFromInt(100), models.PaymentMethodCash, "Hamid Setar")
	assert.True(t, errors.Is(err, store.ErrConcurrentUpdate))
	assert.Empty(t, ms.payments)
}

func TestLedger_RecordPaymentUnknownKind(t *testing.T) {
	l, _, _, _ := newTestLedger(t)

	_, _, err := l.RecordPayment(context.Background(), "lease", uuid.New(), decimal.NewFromInt(1), models.PaymentMethodCash, "x")
	assert.True(t, errors.Is(err, ErrInvalidTransactionKind))
}

func TestLedger_DeleteSaleWithPaymentsRefused(t *testing.T) {
	l, ms, client, product := newTestLedger(t)
	ctx := context.Background()

	paid, err := l.CreateSale(ctx, client.ID, product.ID, 1, decimal.Zero, decimal.NewFromInt(50), "Hamid Setar")
	require.NoError(t, err)
	err = l.DeleteSale(ctx, paid.ID)
	assert.True(t, errors.Is(err, ErrFinancialHistory))

	unpaid, err := l.CreateSale(ctx, client.ID, product.ID, 1, decimal.Zero, decimal.Zero, "Hamid Setar")
	require.NoError(t, err)
	require.NoError(t, l.DeleteSale(ctx, unpaid.ID))
	_, ok := ms.sales[unpaid.ID]
	assert.False(t, ok)
}

func TestLedger_SweepRentals(t *testing.T) {
	l, ms, client, product := newTestLedger(t)
	ctx := context.Background()

	late, err := l.CreateRental(ctx, client.ID, product.ID, 1, fixedNow.AddDate(0, 0, -5), fixedNow.AddDate(0, 0, -1), decimal.Zero, decimal.Zero, "Hamid Setar")
	require.NoError(t, err)
	onTime, err := l.CreateRental(ctx, client.ID, product.ID, 1, fixedNow, fixedNow.AddDate(0, 0, 3), decimal.Zero, decimal.Zero, "Hamid Setar")
	require.NoError(t, err)
	upcoming, err := l.CreateRental(ctx, client.ID, product.ID, 1, fixedNow.AddDate(0, 0, 2), fixedNow.AddDate(0, 0, 4), decimal.Zero, decimal.Zero, "Hamid Setar")
	require.NoError(t, err)
	require.Equal(t, models.RentalStatusReserved, upcoming.Status)

	activated, overdue, err := l.SweepRentals(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, activated)
	assert.Equal(t, 1, overdue)
	assert.Equal(t, models.RentalStatusOverdue, ms.rentals[late.ID].Status)
	assert.Equal(t, models.RentalStatusActive, ms.rentals[onTime.ID].Status)

	// Two days later the reservation starts.
	later := fixedNow.AddDate(0, 0, 2)
	l.now = func() time.Time { return later }
	activated, _, err = l.SweepRentals(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, activated)
	assert.Equal(t, models.RentalStatusActive, ms.rentals[upcoming.ID].Status)
}

func TestLedger_ClientDebts(t *testing.T) {
	l, _, client, product := newTestLedger(t)
	ctx := context.Background()

	_, err := l.CreateSale(ctx, client.ID, product.ID, 1, decimal.Zero, decimal.NewFromInt(450), "Hamid Setar")
	require.NoError(t, err)
	_, err = l.CreateRental(ctx, client.ID, product.ID, 1, fixedNow, fixedNow, decimal.Zero, decimal.NewFromInt(15), "Hamid Setar")
	require.NoError(t, err)

	debts, err := l.ClientDebts(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, debts, 1)
	assert.True(t, debts[0].SalesDebt.Equal(decimal.NewFromInt(50)))
	assert.True(t, debts[0].RentalsDebt.Equal(decimal.NewFromInt(25)))
	assert.True(t, debts[0].TotalDebt.Equal(decimal.NewFromInt(75)))

	after := fixedNow.Add(time.Hour)
	debts, err = l.ClientDebts(ctx, &after, nil)
	require.NoError(t, err)
	assert.Empty(t, debts)
}

func TestLedger_StatisticsUnknownPeriod(t *testing.T) {
	l, _, _, _ := newTestLedger(t)

	_, err := l.Statistics(context.Background(), "fortnight", nil, nil)
	assert.True(t, errors.Is(err, ErrInvalidPeriod))
}

func TestLedger_Dashboard(t *testing.T) {
	l, _, client, product := newTestLedger(t)
	ctx := context.Background()

	_, err := l.CreateSale(ctx, client.ID, product.ID, 2, decimal.Zero, decimal.Zero, "Hamid Setar")
	require.NoError(t, err)

	d, err := l.Dashboard(ctx)
	require.NoError(t, err)
	assert.True(t, d.SalesRevenue.Equal(decimal.NewFromInt(1000)))
	assert.True(t, d.Profit.Equal(decimal.NewFromInt(400)))
	assert.True(t, d.ProfitMargin.Equal(decimal.NewFromInt(40)))
	assert.Equal(t, 1, d.RecentSales)
	// Five in stock, two sold.
	assert.Len(t, d.LowStock, 1)
}

func TestLedger_PaymentBalance(t *testing.T) {
	l, _, client, product := newTestLedger(t)
	ctx := context.Background()

	sale, err := l.CreateSale(ctx, client.ID, product.ID, 1, decimal.Zero, decimal.Zero, "Hamid Setar")
	require.NoError(t, err)

	first, _, err := l.RecordPayment(ctx, models.KindSale, sale.ID, decimal.NewFromInt(100), models.PaymentMethodCash, "Hamid Setar")
	require.NoError(t, err)
	l.now = func() time.Time { return fixedNow.Add(time.Hour) }
	second, _, err := l.RecordPayment(ctx, models.KindSale, sale.ID, decimal.NewFromInt(150), models.PaymentMethodCash, "Hamid Setar")
	require.NoError(t, err)

	_, txn, remaining, err := l.PaymentBalance(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, sale.ID, txn.ID)
	assert.True(t, remaining.Equal(decimal.NewFromInt(400)))

	_, _, remaining, err = l.PaymentBalance(ctx, second.ID)
	require.NoError(t, err)
	assert.True(t, remaining.Equal(decimal.NewFromInt(250)))

	_, _, _, err = l.PaymentBalance(ctx, uuid.New())
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestLedger_DeleteClient(t *testing.T) {
	l, ms, client, product := newTestLedger(t)
	ctx := context.Background()

	_, err := l.CreateSale(ctx, client.ID, product.ID, 1, decimal.Zero, decimal.Zero, "Hamid Setar")
	require.NoError(t, err)

	err = l.DeleteClient(ctx, client.ID)
	assert.True(t, errors.Is(err, ErrFinancialHistory))
	assert.Contains(t, ms.clients, client.ID)

	idle := models.Client{ID: uuid.New(), FirstName: "Karim", LastName: "Haddad"}
	require.NoError(t, ms.CreateClient(ctx, &idle))
	require.NoError(t, l.DeleteClient(ctx, idle.ID))
	assert.NotContains(t, ms.clients, idle.ID)
}

func TestLedger_ProductByBarcode(t *testing.T) {
	l, ms, _, product := newTestLedger(t)
	ctx := context.Background()

	soldOut := models.Product{ID: uuid.New(), Name: "Karakou", Barcode: "6130000000024", Stock: 0}
	require.NoError(t, ms.CreateProduct(ctx, &soldOut))
	product.Barcode = "6130000000017"
	require.NoError(t, ms.UpdateProduct(ctx, &product))

	found, err := l.ProductByBarcode(ctx, "6130000000017")
	require.NoError(t, err)
	assert.Equal(t, product.ID, found.ID)

	_, err = l.ProductByBarcode(ctx, "6130000000024")
	assert.True(t, errors.Is(err, ErrInsufficientStock))

	_, err = l.ProductByBarcode(ctx, "0000")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestLedger_AccountingReport(t *testing.T) {
	l, _, client, product := newTestLedger(t)
	ctx := context.Background()

	_, err := l.CreateSale(ctx, client.ID, product.ID, 1, decimal.Zero, decimal.NewFromInt(100), "Hamid Setar")
	require.NoError(t, err)
	_, err = l.CreateRental(ctx, client.ID, product.ID, 1, fixedNow, fixedNow, decimal.Zero, decimal.Zero, "Hamid Setar")
	require.NoError(t, err)

	report, err := l.AccountingReport(ctx, PeriodCurrentMonth, nil, nil)
	require.NoError(t, err)
	assert.Len(t, report.Sales, 1)
	assert.Len(t, report.Rentals, 1)
	assert.Equal(t, 2, report.Statistics.TotalTransactions)
	assert.True(t, report.Statistics.TotalRemaining.Equal(decimal.NewFromInt(440)))
	assert.Equal(t, "Amina", report.Clients[client.ID].FirstName)
	assert.Equal(t, "Caftan", report.Products[product.ID].Name)

	report, err = l.AccountingReport(ctx, PeriodLastYear, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, report.Sales)
	assert.Empty(t, report.Rentals)
}
