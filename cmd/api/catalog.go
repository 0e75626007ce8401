package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/hamidsetar/gestiondestock/pkg/auth"
	"github.com/hamidsetar/gestiondestock/pkg/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := auth.Authenticate(r.Context(), s.storage, req.Username, req.Password)
	if err != nil {
		s.logger.Warn("login refused", zap.String("username", req.Username))
		s.writeError(w, r, err)
		return
	}
	token, expires, err := s.tokens.Issue(user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"expires_at": expires,
		"user":       user,
	})
}

type clientRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Address   string `json:"address"`
}

func (req clientRequest) validate() error {
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		return fmt.Errorf("%w: first and last name are required", errBadRequest)
	}
	if strings.TrimSpace(req.Phone) == "" {
		return fmt.Errorf("%w: phone is required", errBadRequest)
	}
	return nil
}

func (req clientRequest) apply(c *models.Client) {
	c.FirstName = strings.TrimSpace(req.FirstName)
	c.LastName = strings.TrimSpace(req.LastName)
	c.Phone = strings.TrimSpace(req.Phone)
	c.Email = strings.TrimSpace(req.Email)
	c.Address = strings.TrimSpace(req.Address)
}

func (s *Server) createClientHandler(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	client := models.Client{ID: uuid.New(), CreatedAt: time.Now()}
	req.apply(&client)
	if err := s.storage.CreateClient(r.Context(), &client); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, client)
}

func (s *Server) getClientHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	client, err := s.storage.GetClient(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

func (s *Server) listClientsHandler(w http.ResponseWriter, r *http.Request) {
	clients, err := s.storage.ListClients(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, clients)
}

func (s *Server) updateClientHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req clientRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	client, err := s.storage.GetClient(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	req.apply(client)
	if err := s.storage.UpdateClient(r.Context(), client); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

func (s *Server) deleteClientHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.ledger.DeleteClient(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type productRequest struct {
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Size          string          `json:"size"`
	Color         string          `json:"color"`
	Barcode       string          `json:"barcode"`
	Price         decimal.Decimal `json:"price"`
	RentalPrice   decimal.Decimal `json:"rental_price"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	Stock         int             `json:"stock"`
}

func (req productRequest) validate() error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: name is required", errBadRequest)
	}
	if req.Price.IsNegative() || req.RentalPrice.IsNegative() || req.PurchasePrice.IsNegative() {
		return fmt.Errorf("%w: prices cannot be negative", errBadRequest)
	}
	if req.Stock < 0 {
		return fmt.Errorf("%w: stock cannot be negative", errBadRequest)
	}
	return nil
}

func (req productRequest) apply(p *models.Product) {
	p.Name = strings.TrimSpace(req.Name)
	p.Category = req.Category
	p.Size = req.Size
	p.Color = req.Color
	p.Barcode = req.Barcode
	p.Price = req.Price
	p.RentalPrice = req.RentalPrice
	p.PurchasePrice = req.PurchasePrice
	p.Stock = req.Stock
}

func (s *Server) createProductHandler(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	product := models.Product{ID: uuid.New(), CreatedAt: time.Now()}
	req.apply(&product)
	if err := s.storage.CreateProduct(r.Context(), &product); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (s *Server) getProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	product, err := s.storage.GetProduct(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// productByBarcodeHandler serves the checkout scanner. Only products with
// stock left are returned.
func (s *Server) productByBarcodeHandler(w http.ResponseWriter, r *http.Request) {
	barcode := strings.TrimSpace(mux.Vars(r)["barcode"])
	if barcode == "" {
		s.writeError(w, r, fmt.Errorf("%w: empty barcode", errBadRequest))
		return
	}
	product, err := s.ledger.ProductByBarcode(r.Context(), barcode)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *Server) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	products, err := s.storage.ListProducts(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *Server) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	product, err := s.storage.GetProduct(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	req.apply(product)
	if err := s.storage.UpdateProduct(r.Context(), product); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *Server) deleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.storage.DeleteProduct(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
