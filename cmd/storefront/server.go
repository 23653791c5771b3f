package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/antonminaichev/storefront-orders/internal/admin"
	"github.com/antonminaichev/storefront-orders/internal/catalog"
	"github.com/antonminaichev/storefront-orders/internal/checkout"
	"github.com/antonminaichev/storefront-orders/internal/email"
	"github.com/antonminaichev/storefront-orders/internal/logger"
	"github.com/antonminaichev/storefront-orders/internal/order"
	"github.com/antonminaichev/storefront-orders/internal/payment"
	"github.com/antonminaichev/storefront-orders/internal/router"
	storage "github.com/antonminaichev/storefront-orders/internal/storage/postgres"
	"github.com/antonminaichev/storefront-orders/internal/webhook"
)

func main() {
	if err := run(); err != nil {
		panic(err)
	}
}

func run() error {
	cfg, err := NewConfig()
	if err != nil {
		log.Fatal(err)
	}
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := storage.NewPostgresStorage(cfg.DatabaseConnection)
	if err != nil {
		log.Fatalf("Failed to initialize Postgres storage: %v", err)
	}
	if err := store.Ping(ctx); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("Warning: failed to close storage: %v", err)
		}
	}()

	adminSvc := admin.NewService(store, []byte(cfg.JWTSecret), cfg.JWTTTL)
	if err := adminSvc.EnsureOperator(ctx, cfg.AdminLogin, cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to ensure operator account: %v", err)
	}
	adminHandler := admin.NewHandler(adminSvc)

	payments := payment.New(cfg.StripeSecretKey)

	httpClient := &http.Client{
		Timeout: 10 * time.Second,
	}
	mailer := &email.HTTPClient{
		Client:  httpClient,
		BaseURL: cfg.EmailAPIURL,
		APIKey:  cfg.EmailAPIKey,
	}

	catalogSvc := catalog.NewService(store)
	catalogHandler := catalog.NewHandler(catalogSvc)

	orderSvc := order.NewService(store, catalogSvc)
	orderHandler := order.NewHandler(orderSvc)
	fulfiller := order.NewFulfiller(store, catalogSvc, mailer, cfg.EmailFrom, cfg.AdminEmail, cfg.OutboundTimeout)

	checkoutSvc := checkout.NewService(payments, store, cfg.Currency, cfg.SuccessURL, cfg.CancelURL)
	checkoutHandler := checkout.NewHandler(checkoutSvc)

	dispatcher := webhook.NewDispatcher(payments, orderSvc, fulfiller)
	webhookHandler := webhook.NewHandler(cfg.StripeWebhookSecret, dispatcher)

	r := router.NewRouter(webhookHandler, checkoutHandler, catalogHandler, orderHandler, adminHandler, []byte(cfg.JWTSecret), store)

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
	return nil
}
