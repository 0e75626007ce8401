package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/hamidsetar/gestiondestock/pkg/auth"
	"github.com/hamidsetar/gestiondestock/pkg/config"
	"github.com/hamidsetar/gestiondestock/pkg/ledger"
	"github.com/hamidsetar/gestiondestock/pkg/logger"
	"github.com/hamidsetar/gestiondestock/pkg/receipt"
	"github.com/hamidsetar/gestiondestock/pkg/scheduler"
	"github.com/hamidsetar/gestiondestock/pkg/store"
	"go.uber.org/zap"
)

// Server holds the ledger instance and everything the handlers print with.
type Server struct {
	ledger   *ledger.Ledger
	storage  store.Storage // Keep a reference to the storage to close it
	tokens   *auth.Tokens
	renderer receipt.Renderer
	shop     receipt.Shop
	logger   *zap.Logger
}

func NewServer(s store.Storage, cfg *config.Config, renderer receipt.Renderer, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		ledger:   ledger.NewLedger(s, log, ledger.WithLocation(cfg.Location())),
		storage:  s,
		tokens:   auth.NewTokens(cfg.Auth.JWTSecret, cfg.TokenTTL()),
		renderer: renderer,
		shop: receipt.Shop{
			Name:     cfg.Shop.Name,
			Address:  cfg.Shop.Address,
			Phone:    cfg.Shop.Phone,
			Currency: cfg.Shop.Currency,
		},
		logger: log.Named("api"),
	}
}

// Router wires every route. Everything except login and health needs a
// bearer token.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/health", s.healthHandler).Methods("GET")
	router.HandleFunc("/login", s.loginHandler).Methods("POST")

	api := router.PathPrefix("/").Subrouter()
	api.Use(s.tokens.Middleware(s.writeError))

	api.HandleFunc("/clients", s.listClientsHandler).Methods("GET")
	api.HandleFunc("/clients", s.createClientHandler).Methods("POST")
	api.HandleFunc("/clients/{id}", s.getClientHandler).Methods("GET")
	api.HandleFunc("/clients/{id}", s.updateClientHandler).Methods("PUT")
	api.HandleFunc("/clients/{id}", s.deleteClientHandler).Methods("DELETE")

	api.HandleFunc("/products", s.listProductsHandler).Methods("GET")
	api.HandleFunc("/products", s.createProductHandler).Methods("POST")
	api.HandleFunc("/products/{id}", s.getProductHandler).Methods("GET")
	api.HandleFunc("/products/barcode/{barcode}", s.productByBarcodeHandler).Methods("GET")
	api.HandleFunc("/products/{id}", s.updateProductHandler).Methods("PUT")
	api.HandleFunc("/products/{id}", s.deleteProductHandler).Methods("DELETE")

	api.HandleFunc("/sales", s.listSalesHandler).Methods("GET")
	api.HandleFunc("/sales", s.createSaleHandler).Methods("POST")
	api.HandleFunc("/sales/{id}", s.getSaleHandler).Methods("GET")
	api.HandleFunc("/sales/{id}", s.deleteSaleHandler).Methods("DELETE")
	api.HandleFunc("/sales/{id}/receipt", s.saleReceiptHandler).Methods("GET")

	api.HandleFunc("/rentals", s.listRentalsHandler).Methods("GET")
	api.HandleFunc("/rentals", s.createRentalHandler).Methods("POST")
	api.HandleFunc("/rentals/{id}", s.getRentalHandler).Methods("GET")
	api.HandleFunc("/rentals/{id}", s.deleteRentalHandler).Methods("DELETE")
	api.HandleFunc("/rentals/{id}/return", s.returnRentalHandler).Methods("POST")
	api.HandleFunc("/rentals/{id}/receipt", s.rentalReceiptHandler).Methods("GET")
	api.HandleFunc("/rentals/{id}/contract", s.rentalContractHandler).Methods("GET")

	api.HandleFunc("/payments", s.listPaymentsHandler).Methods("GET")
	api.HandleFunc("/payments", s.recordPaymentHandler).Methods("POST")
	api.HandleFunc("/payments/{id}/receipt", s.paymentReceiptHandler).Methods("GET")

	api.HandleFunc("/debts", s.debtsHandler).Methods("GET")
	api.HandleFunc("/debts/export", s.exportDebtsHandler).Methods("GET")

	api.HandleFunc("/reports/monthly/{year:[0-9]{4}}", s.monthlyReportHandler).Methods("GET")
	api.HandleFunc("/reports/monthly/{year:[0-9]{4}}/export", s.exportMonthlyHandler).Methods("GET")
	api.HandleFunc("/reports/yearly", s.yearlyReportHandler).Methods("GET")
	api.HandleFunc("/reports/yearly/export", s.exportYearlyHandler).Methods("GET")
	api.HandleFunc("/reports/statistics", s.statisticsHandler).Methods("GET")
	api.HandleFunc("/reports/statistics/export", s.exportStatisticsHandler).Methods("GET")

	api.HandleFunc("/dashboard", s.dashboardHandler).Methods("GET")
	return router
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file; defaults and environment variables apply when it does not exist")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		// No logger yet; fall back to a console one to report the failure.
		boot, _ := logger.New(logger.DefaultConfig())
		boot.Fatal("failed to load configuration", zap.String("path", *configPath), zap.Error(err))
	}

	log, err := logger.New(logger.ForSettings(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output))
	if err != nil {
		boot, _ := logger.New(logger.DefaultConfig())
		boot.Fatal("failed to create logger", zap.Error(err))
	}
	defer log.Sync()

	sqliteStore, err := store.NewSQLiteStore(cfg.Database.Path, log)
	if err != nil {
		log.Fatal("failed to initialize SQLite store", zap.String("path", cfg.Database.Path), zap.Error(err))
	}
	defer sqliteStore.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	created, err := auth.EnsureAdmin(ctx, sqliteStore, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword)
	if err != nil {
		log.Fatal("failed to bootstrap admin account", zap.Error(err))
	}
	if created {
		log.Info("created initial admin account", zap.String("username", cfg.Auth.AdminUsername))
	}

	renderer := receipt.NewPDFRenderer(receipt.PDFConfig{
		RemoteURL: cfg.Printing.RemoteURL,
		Timeout:   cfg.PrintTimeout(),
		NoSandbox: os.Geteuid() == 0,
		Logger:    log,
	})
	defer renderer.Close()

	server := NewServer(sqliteStore, cfg, renderer, log)

	sched, err := scheduler.New(cfg.Scheduler.SweepRentals, cfg.Location(), server.ledger, log)
	if err != nil {
		log.Fatal("failed to create scheduler", zap.Error(err))
	}
	// Catch up on anything that changed while the server was down.
	if err := sched.RunSweep(ctx); err != nil {
		log.Error("initial rental sweep failed", zap.Error(err))
	}
	sched.Start()
	defer sched.Stop()

	httpServer := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("server starting", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped unexpectedly", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	log.Info("server stopped")
}
