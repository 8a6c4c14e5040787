package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"petstore-backend/internal/client"
	"petstore-backend/internal/clock"
	"petstore-backend/internal/config"
	"petstore-backend/internal/handler"
	"petstore-backend/internal/logger"
	"petstore-backend/internal/metrics"
	"petstore-backend/internal/repository"
	"petstore-backend/internal/server"
	"petstore-backend/internal/service"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log, cfg.Environment)
	if err != nil {
		fmt.Printf("Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Pool lifecycle lives here; everything downstream gets the handle
	// injected instead of reaching for process-wide state.
	db := client.InitMysqlClient(cfg.DatabaseURL)
	stripeClient := client.NewStripeClient(&cfg.Stripe)

	clk := clock.NewSystem()
	verifier := client.NewWebhookVerifier(cfg.Stripe.WebhookSecret, clk)
	m := metrics.New()

	petRepo := repository.NewPetRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	txnRepo := repository.NewTransactionRepository(db)

	checkoutService := service.NewCheckoutService(stripeClient, cfg.FrontendURL, log)
	fulfillmentService := service.NewFulfillmentService(db, petRepo, orderRepo, txnRepo, m, log)
	orderService := service.NewOrderService(db, petRepo, orderRepo, txnRepo, log)
	petService := service.NewPetService(petRepo)

	checkoutHandler := handler.NewCheckoutHandler(checkoutService, fulfillmentService, verifier, log)
	orderHandler := handler.NewOrderHandler(orderService)
	petHandler := handler.NewPetHandler(petService)

	srv := server.NewServer(cfg.JWTSecret, m, log, checkoutHandler, orderHandler, petHandler)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info("starting HTTP server", zap.String("addr", serverAddr))
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Info("signal received, starting graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("HTTP server shutdown error", zap.Error(err))
	}
}
