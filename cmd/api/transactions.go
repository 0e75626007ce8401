package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hamidsetar/gestiondestock/pkg/auth"
	"github.com/hamidsetar/gestiondestock/pkg/ledger"
	"github.com/hamidsetar/gestiondestock/pkg/models"
	"github.com/hamidsetar/gestiondestock/pkg/receipt"
	"github.com/hamidsetar/gestiondestock/pkg/store"
	"github.com/shopspring/decimal"
)

func (s *Server) createSaleHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClientID   uuid.UUID       `json:"client_id"`
		ProductID  uuid.UUID       `json:"product_id"`
		Quantity   int             `json:"quantity"`
		Discount   decimal.Decimal `json:"discount"`
		PaidAmount decimal.Decimal `json:"paid_amount"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	sale, err := s.ledger.CreateSale(r.Context(), req.ClientID, req.ProductID, req.Quantity, req.Discount, req.PaidAmount, auth.Author(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sale)
}

func (s *Server) getSaleHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sale, err := s.storage.GetSale(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sale)
}

func (s *Server) listSalesHandler(w http.ResponseWriter, r *http.Request) {
	sales, err := s.storage.ListSales(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sales)
}

func (s *Server) deleteSaleHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.ledger.DeleteSale(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) createRentalHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClientID   uuid.UUID       `json:"client_id"`
		ProductID  uuid.UUID       `json:"product_id"`
		Quantity   int             `json:"quantity"`
		StartDate  string          `json:"start_date"`
		EndDate    string          `json:"end_date"`
		Deposit    decimal.Decimal `json:"deposit"`
		PaidAmount decimal.Decimal `json:"paid_amount"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	loc := s.ledger.Location()
	start, err := time.ParseInLocation("2006-01-02", req.StartDate, loc)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: start_date must be YYYY-MM-DD", errBadRequest))
		return
	}
	end, err := time.ParseInLocation("2006-01-02", req.EndDate, loc)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: end_date must be YYYY-MM-DD", errBadRequest))
		return
	}

	rental, err := s.ledger.CreateRental(r.Context(), req.ClientID, req.ProductID, req.Quantity, start, end, req.Deposit, req.PaidAmount, auth.Author(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rental)
}

func (s *Server) getRentalHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rental, err := s.storage.GetRental(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (s *Server) listRentalsHandler(w http.ResponseWriter, r *http.Request) {
	rentals, err := s.storage.ListRentals(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rentals)
}

func (s *Server) returnRentalHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rental, err := s.ledger.ReturnRental(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (s *Server) deleteRentalHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.ledger.DeleteRental(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) recordPaymentHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TransactionID   uuid.UUID              `json:"transaction_id"`
		TransactionKind models.TransactionKind `json:"transaction_kind"`
		Amount          decimal.Decimal        `json:"amount"`
		Method          models.PaymentMethod   `json:"method"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	payment, txn, err := s.ledger.RecordPayment(r.Context(), req.TransactionKind, req.TransactionID, req.Amount, req.Method, auth.Author(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"payment":     payment,
		"transaction": txn,
	})
}

func (s *Server) listPaymentsHandler(w http.ResponseWriter, r *http.Request) {
	var (
		payments []models.Payment
		err      error
	)
	if raw := r.URL.Query().Get("transaction_id"); raw != "" {
		id, perr := uuid.Parse(raw)
		if perr != nil {
			s.writeError(w, r, fmt.Errorf("%w: invalid transaction_id", errBadRequest))
			return
		}
		payments, err = s.storage.ListPaymentsForTransaction(r.Context(), id)
	} else {
		payments, err = s.storage.ListPayments(r.Context())
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payments)
}

func (s *Server) saleReceiptHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sale, err := s.storage.GetSale(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	client, product, err := s.parties(r.Context(), sale.Transaction)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.sendReceipt(w, r, receipt.FromSale(*sale, client, product))
}

func (s *Server) rentalReceiptHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rental, err := s.storage.GetRental(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	client, product, err := s.parties(r.Context(), rental.Transaction)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	loc := s.ledger.Location()
	days := ledger.RentalDays(rental.StartDate.In(loc), rental.EndDate.In(loc))
	s.sendReceipt(w, r, receipt.FromRental(*rental, days, client, product))
}

func (s *Server) paymentReceiptHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	payment, txn, remaining, err := s.ledger.PaymentBalance(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	client, product, err := s.parties(r.Context(), *txn)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.sendReceipt(w, r, receipt.FromPayment(*payment, client, product, remaining))
}

func (s *Server) rentalContractHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rental, err := s.storage.GetRental(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	client, product, err := s.parties(r.Context(), rental.Transaction)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	loc := s.ledger.Location()
	days := ledger.RentalDays(rental.StartDate.In(loc), rental.EndDate.In(loc))
	contract := receipt.NewContract(*rental, days, client, product)

	var buf bytes.Buffer
	if err := receipt.RenderContractHTML(&buf, s.shop, contract, loc); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.sendDocument(w, r, buf.Bytes(), contract.Filename())
}

// parties loads the client and product a receipt names. Records deleted
// since the transaction print as blanks rather than failing the receipt.
func (s *Server) parties(ctx context.Context, txn models.Transaction) (models.Client, models.Product, error) {
	var client models.Client
	var product models.Product
	c, err := s.storage.GetClient(ctx, txn.ClientID)
	switch {
	case err == nil:
		client = *c
	case !errors.Is(err, store.ErrNotFound):
		return client, product, err
	}
	p, err := s.storage.GetProduct(ctx, txn.ProductID)
	switch {
	case err == nil:
		product = *p
	case !errors.Is(err, store.ErrNotFound):
		return client, product, err
	}
	return client, product, nil
}

// sendReceipt answers with the PDF, or with the HTML when ?format=html is
// given or no PDF renderer is configured.
func (s *Server) sendReceipt(w http.ResponseWriter, r *http.Request, rc receipt.Receipt) {
	var buf bytes.Buffer
	if err := receipt.RenderHTML(&buf, s.shop, rc, s.ledger.Location()); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.sendDocument(w, r, buf.Bytes(), rc.Filename())
}

func (s *Server) sendDocument(w http.ResponseWriter, r *http.Request, html []byte, filename string) {
	if r.URL.Query().Get("format") == "html" || s.renderer == nil {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(html)
		return
	}

	pdf, err := s.renderer.Render(r.Context(), string(html))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	attachment(w, "application/pdf", filename)
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}
