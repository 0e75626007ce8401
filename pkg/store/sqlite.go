package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hamidsetar/gestiondestock/pkg/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore manages the database connection and operations for SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore opens dataSourceName and makes sure the schema exists.
func NewSQLiteStore(dataSourceName string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	// Manually enable foreign keys and WAL mode
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	s := NewSQLiteStoreWithDB(db, logger)
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("could not initialize schema: %w", err)
	}
	s.logger.Info("database ready", zap.String("dsn", dataSourceName))
	return s, nil
}

// NewSQLiteStoreWithDB wraps an already opened database without touching
// its schema.
func NewSQLiteStoreWithDB(db *sql.DB, logger *zap.Logger) *SQLiteStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLiteStore{db: db, logger: logger.Named("store")}
}

// initSchema creates the tables if they don't already exist.
// Money is kept as TEXT so no precision is lost.
func (s *SQLiteStore) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS clients (
		id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		phone TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		size TEXT NOT NULL DEFAULT '',
		color TEXT NOT NULL DEFAULT '',
		barcode TEXT NOT NULL DEFAULT '',
		price TEXT NOT NULL,
		rental_price TEXT NOT NULL,
		purchase_price TEXT NOT NULL,
		stock INTEGER NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS sales (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL,
		product_id TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		total_amount TEXT NOT NULL,
		paid_amount TEXT NOT NULL,
		remaining_amount TEXT NOT NULL,
		payment_status TEXT NOT NULL,
		created_by TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		unit_price TEXT NOT NULL,
		discount TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS rentals (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL,
		product_id TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		total_amount TEXT NOT NULL,
		paid_amount TEXT NOT NULL,
		remaining_amount TEXT NOT NULL,
		payment_status TEXT NOT NULL,
		created_by TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		daily_rate TEXT NOT NULL,
		deposit TEXT NOT NULL,
		start_date DATETIME NOT NULL,
		end_date DATETIME NOT NULL,
		status TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		transaction_id TEXT NOT NULL,
		transaction_kind TEXT NOT NULL,
		amount TEXT NOT NULL,
		method TEXT NOT NULL,
		created_by TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_payments_transaction ON payments(transaction_id);
	CREATE INDEX IF NOT EXISTS idx_products_barcode ON products(barcode);
	CREATE INDEX IF NOT EXISTS idx_sales_client ON sales(client_id);
	CREATE INDEX IF NOT EXISTS idx_rentals_client ON rentals(client_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}

func checkAffected(result sql.Result, what string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}

// Users

const userColumns = `id, username, password_hash, role, first_name, last_name, created_at`

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	var id string
	err := row.Scan(&id, &u.Username, &u.PasswordHash, &u.Role, &u.FirstName, &u.LastName, &u.CreatedAt)
	if err != nil {
		return u, err
	}
	u.ID, err = uuid.Parse(id)
	return u, err
}

func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID.String(), user.Username, user.PasswordHash, user.Role, user.FirstName, user.LastName, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
	if err != nil {
		return nil, notFound(err, "user")
	}
	return &u, nil
}

func (s *SQLiteStore) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()
	return scanAll(rows, scanUser)
}

// Clients

const clientColumns = `id, first_name, last_name, phone, email, address, created_at`

func scanClient(row rowScanner) (models.Client, error) {
	var c models.Client
	var id string
	err := row.Scan(&id, &c.FirstName, &c.LastName, &c.Phone, &c.Email, &c.Address, &c.CreatedAt)
	if err != nil {
		return c, err
	}
	c.ID, err = uuid.Parse(id)
	return c, err
}

func (s *SQLiteStore) CreateClient(ctx context.Context, client *models.Client) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO clients (`+clientColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		client.ID.String(), client.FirstName, client.LastName, client.Phone, client.Email, client.Address, client.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	c, err := scanClient(s.db.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = ?`, id.String()))
	if err != nil {
		return nil, notFound(err, "client")
	}
	return &c, nil
}

func (s *SQLiteStore) ListClients(ctx context.Context) ([]models.Client, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()
	return scanAll(rows, scanClient)
}

func (s *SQLiteStore) UpdateClient(ctx context.Context, client *models.Client) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE clients SET first_name = ?, last_name = ?, phone = ?, email = ?, address = ? WHERE id = ?`,
		client.FirstName, client.LastName, client.Phone, client.Email, client.Address, client.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	return checkAffected(result, "client")
}

// ClientHasTransactions reports whether any sale or rental references the client.
func (s *SQLiteStore) ClientHasTransactions(ctx context.Context, id uuid.UUID) (bool, error) {
	var found bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM sales WHERE client_id = ?) OR EXISTS(SELECT 1 FROM rentals WHERE client_id = ?)`,
		id.String(), id.String(),
	).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("failed to check transactions of client %s: %w", id, err)
	}
	return found, nil
}

func (s *SQLiteStore) DeleteClient(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return checkAffected(result, "client")
}

// Products

const productColumns = `id, name, category, size, color, barcode, price, rental_price, purchase_price, stock, created_at`

func scanProduct(row rowScanner) (models.Product, error) {
	var p models.Product
	var id string
	err := row.Scan(&id, &p.Name, &p.Category, &p.Size, &p.Color, &p.Barcode, &p.Price, &p.RentalPrice, &p.PurchasePrice, &p.Stock, &p.CreatedAt)
	if err != nil {
		return p, err
	}
	p.ID, err = uuid.Parse(id)
	return p, err
}

func (s *SQLiteStore) CreateProduct(ctx context.Context, product *models.Product) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO products (`+productColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID.String(), product.Name, product.Category, product.Size, product.Color, product.Barcode,
		product.Price, product.RentalPrice, product.PurchasePrice, product.Stock, product.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id.String()))
	if err != nil {
		return nil, notFound(err, "product")
	}
	return &p, nil
}

func (s *SQLiteStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()
	return scanAll(rows, scanProduct)
}

// ListProductsByBarcode returns the products carrying barcode, most stocked first.
func (s *SQLiteStore) ListProductsByBarcode(ctx context.Context, barcode string) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products WHERE barcode = ? ORDER BY stock DESC, name`, barcode)
	if err != nil {
		return nil, fmt.Errorf("failed to look up barcode %q: %w", barcode, err)
	}
	defer rows.Close()
	return scanAll(rows, scanProduct)
}

func (s *SQLiteStore) UpdateProduct(ctx context.Context, product *models.Product) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE products SET name = ?, category = ?, size = ?, color = ?, barcode = ?, price = ?, rental_price = ?, purchase_price = ?, stock = ? WHERE id = ?`,
		product.Name, product.Category, product.Size, product.Color, product.Barcode,
		product.Price, product.RentalPrice, product.PurchasePrice, product.Stock, product.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return checkAffected(result, "product")
}

func (s *SQLiteStore) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return checkAffected(result, "product")
}

// Sales and rentals share the leading transaction columns.

const txnColumns = `id, client_id, product_id, quantity, total_amount, paid_amount, remaining_amount, payment_status, created_by, created_at`

func txnDest(t *models.Transaction, id, clientID, productID *string) []any {
	return []any{id, clientID, productID, &t.Quantity, &t.TotalAmount, &t.PaidAmount, &t.RemainingAmount, &t.PaymentStatus, &t.CreatedBy, &t.CreatedAt}
}

func txnArgs(t models.Transaction) []any {
	return []any{t.ID.String(), t.ClientID.String(), t.ProductID.String(), t.Quantity, t.TotalAmount, t.PaidAmount, t.RemainingAmount, t.PaymentStatus, t.CreatedBy, t.CreatedAt}
}

func parseTxnIDs(t *models.Transaction, id, clientID, productID string) error {
	var err error
	if t.ID, err = uuid.Parse(id); err != nil {
		return err
	}
	if t.ClientID, err = uuid.Parse(clientID); err != nil {
		return err
	}
	t.ProductID, err = uuid.Parse(productID)
	return err
}

const saleColumns = txnColumns + `, unit_price, discount`

func scanSale(row rowScanner) (models.Sale, error) {
	var sale models.Sale
	var id, clientID, productID string
	dest := append(txnDest(&sale.Transaction, &id, &clientID, &productID), &sale.UnitPrice, &sale.Discount)
	if err := row.Scan(dest...); err != nil {
		return sale, err
	}
	sale.Kind = models.KindSale
	return sale, parseTxnIDs(&sale.Transaction, id, clientID, productID)
}

// takeStock removes qty units of productID inside tx, failing when the
// product does not have enough left.
func takeStock(ctx context.Context, tx *sql.Tx, productID uuid.UUID, qty int) error {
	result, err := tx.ExecContext(ctx, `UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?`, qty, productID.String(), qty)
	if err != nil {
		return fmt.Errorf("failed to update stock: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("stock of product %s: %w", productID, ErrConcurrentUpdate)
	}
	return nil
}

func putStock(ctx context.Context, tx *sql.Tx, productID uuid.UUID, qty int) error {
	if _, err := tx.ExecContext(ctx, `UPDATE products SET stock = stock + ? WHERE id = ?`, qty, productID.String()); err != nil {
		return fmt.Errorf("failed to restore stock: %w", err)
	}
	return nil
}

func (s *SQLiteStore) CreateSale(ctx context.Context, sale *models.Sale) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := takeStock(ctx, tx, sale.ProductID, sale.Quantity); err != nil {
		return err
	}
	args := append(txnArgs(sale.Transaction), sale.UnitPrice, sale.Discount)
	if _, err := tx.ExecContext(ctx, `INSERT INTO sales (`+saleColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...); err != nil {
		return fmt.Errorf("failed to create sale: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetSale(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	sale, err := scanSale(s.db.QueryRowContext(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = ?`, id.String()))
	if err != nil {
		return nil, notFound(err, "sale")
	}
	return &sale, nil
}

func (s *SQLiteStore) ListSales(ctx context.Context) ([]models.Sale, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+saleColumns+` FROM sales ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	defer rows.Close()
	return scanAll(rows, scanSale)
}

func (s *SQLiteStore) DeleteSale(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var productID string
	var qty int
	err = tx.QueryRowContext(ctx, `SELECT product_id, quantity FROM sales WHERE id = ?`, id.String()).Scan(&productID, &qty)
	if err != nil {
		return notFound(err, "sale")
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sales WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete sale: %w", err)
	}
	pid, err := uuid.Parse(productID)
	if err != nil {
		return fmt.Errorf("corrupt product id on sale %s: %w", id, err)
	}
	if err := putStock(ctx, tx, pid, qty); err != nil {
		return err
	}
	return tx.Commit()
}

const rentalColumns = txnColumns + `, daily_rate, deposit, start_date, end_date, status`

func scanRental(row rowScanner) (models.Rental, error) {
	var r models.Rental
	var id, clientID, productID string
	dest := append(txnDest(&r.Transaction, &id, &clientID, &productID), &r.DailyRate, &r.Deposit, &r.StartDate, &r.EndDate, &r.Status)
	if err := row.Scan(dest...); err != nil {
		return r, err
	}
	r.Kind = models.KindRental
	return r, parseTxnIDs(&r.Transaction, id, clientID, productID)
}

func (s *SQLiteStore) CreateRental(ctx context.Context, rental *models.Rental) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := takeStock(ctx, tx, rental.ProductID, rental.Quantity); err != nil {
		return err
	}
	args := append(txnArgs(rental.Transaction), rental.DailyRate, rental.Deposit, rental.StartDate, rental.EndDate, rental.Status)
	if _, err := tx.ExecContext(ctx, `INSERT INTO rentals (`+rentalColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...); err != nil {
		return fmt.Errorf("failed to create rental: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetRental(ctx context.Context, id uuid.UUID) (*models.Rental, error) {
	r, err := scanRental(s.db.QueryRowContext(ctx, `SELECT `+rentalColumns+` FROM rentals WHERE id = ?`, id.String()))
	if err != nil {
		return nil, notFound(err, "rental")
	}
	return &r, nil
}

func (s *SQLiteStore) ListRentals(ctx context.Context) ([]models.Rental, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+rentalColumns+` FROM rentals ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list rentals: %w", err)
	}
	defer rows.Close()
	return scanAll(rows, scanRental)
}

func (s *SQLiteStore) SetRentalStatus(ctx context.Context, id uuid.UUID, status models.RentalStatus) error {
	result, err := s.db.ExecContext(ctx, `UPDATE rentals SET status = ? WHERE id = ?`, status, id.String())
	if err != nil {
		return fmt.Errorf("failed to update rental status: %w", err)
	}
	return checkAffected(result, "rental")
}

func (s *SQLiteStore) ReturnRental(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var productID string
	var qty int
	err = tx.QueryRowContext(ctx, `SELECT product_id, quantity FROM rentals WHERE id = ? AND status != ?`, id.String(), models.RentalStatusReturned).Scan(&productID, &qty)
	if err != nil {
		return notFound(err, "outstanding rental")
	}
	if _, err := tx.ExecContext(ctx, `UPDATE rentals SET status = ? WHERE id = ?`, models.RentalStatusReturned, id.String()); err != nil {
		return fmt.Errorf("failed to return rental: %w", err)
	}
	pid, err := uuid.Parse(productID)
	if err != nil {
		return fmt.Errorf("corrupt product id on rental %s: %w", id, err)
	}
	if err := putStock(ctx, tx, pid, qty); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) DeleteRental(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var productID string
	var qty int
	var status models.RentalStatus
	err = tx.QueryRowContext(ctx, `SELECT product_id, quantity, status FROM rentals WHERE id = ?`, id.String()).Scan(&productID, &qty, &status)
	if err != nil {
		return notFound(err, "rental")
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM rentals WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete rental: %w", err)
	}
	if status != models.RentalStatusReturned {
		pid, err := uuid.Parse(productID)
		if err != nil {
			return fmt.Errorf("corrupt product id on rental %s: %w", id, err)
		}
		if err := putStock(ctx, tx, pid, qty); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Payments

const paymentColumns = `id, transaction_id, transaction_kind, amount, method, created_by, created_at`

func scanPayment(row rowScanner) (models.Payment, error) {
	var p models.Payment
	var id, txnID string
	err := row.Scan(&id, &txnID, &p.TransactionKind, &p.Amount, &p.Method, &p.CreatedBy, &p.CreatedAt)
	if err != nil {
		return p, err
	}
	if p.ID, err = uuid.Parse(id); err != nil {
		return p, err
	}
	p.TransactionID, err = uuid.Parse(txnID)
	return p, err
}

func tableFor(kind models.TransactionKind) (string, error) {
	switch kind {
	case models.KindSale:
		return "sales", nil
	case models.KindRental:
		return "rentals", nil
	}
	return "", fmt.Errorf("unknown transaction kind %q", kind)
}

func (s *SQLiteStore) CommitPayment(ctx context.Context, txn models.Transaction, previousPaid decimal.Decimal, payment *models.Payment) error {
	table, err := tableFor(txn.Kind)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE `+table+` SET paid_amount = ?, remaining_amount = ?, payment_status = ? WHERE id = ? AND paid_amount = ?`,
		txn.PaidAmount, txn.RemainingAmount, txn.PaymentStatus, txn.ID.String(), previousPaid,
	)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", strings.TrimSuffix(table, "s"), txn.ID, ErrConcurrentUpdate)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO payments (`+paymentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		payment.ID.String(), payment.TransactionID.String(), payment.TransactionKind, payment.Amount, payment.Method, payment.CreatedBy, payment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit payment: %w", err)
	}
	s.logger.Debug("payment committed",
		zap.String("transaction_id", txn.ID.String()),
		zap.String("amount", payment.Amount.String()),
	)
	return nil
}

func (s *SQLiteStore) GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	p, err := scanPayment(s.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = ?`, id.String()))
	if err != nil {
		return nil, notFound(err, "payment")
	}
	return &p, nil
}

func (s *SQLiteStore) ListPayments(ctx context.Context) ([]models.Payment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+paymentColumns+` FROM payments ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()
	return scanAll(rows, scanPayment)
}

func (s *SQLiteStore) ListPaymentsForTransaction(ctx context.Context, transactionID uuid.UUID) ([]models.Payment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE transaction_id = ? ORDER BY created_at ASC`, transactionID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get payments for transaction %s: %w", transactionID, err)
	}
	defer rows.Close()
	return scanAll(rows, scanPayment)
}

func scanAll[T any](rows *sql.Rows, scan func(rowScanner) (T, error)) ([]T, error) {
	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return out, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
