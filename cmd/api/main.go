package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/events"
	"storefront/internal/httpserver"
	cartrepo "storefront/internal/repository/cart"
	checkoutrepo "storefront/internal/repository/checkout"
	orderrepo "storefront/internal/repository/order"
	productrepo "storefront/internal/repository/product"
	subscriberrepo "storefront/internal/repository/subscriber"
	userrepo "storefront/internal/repository/user"
	cartsvc "storefront/internal/service/cart"
	checkoutsvc "storefront/internal/service/checkout"
	guestsvc "storefront/internal/service/guest"
	ordersvc "storefront/internal/service/order"
	"storefront/internal/service/payment"
	productsvc "storefront/internal/service/product"
	subscribersvc "storefront/internal/service/subscriber"
	usersvc "storefront/internal/service/user"
	"storefront/internal/storage"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	publisher := events.New(cfg.KafkaBrokers, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Printf("close event publisher: %v", err)
		}
	}()

	images, err := storage.NewLocal(cfg.UploadDir, cfg.FileURLHost, logger)
	if err != nil {
		logger.Fatalf("init upload store: %v", err)
	}

	userRepo := userrepo.NewPostgres(dbpool, logger)
	productRepo := productrepo.NewPostgres(dbpool, logger)
	cartRepo := cartrepo.NewPostgres(dbpool, logger)
	checkoutRepo := checkoutrepo.NewPostgres(dbpool, logger)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	subscriberRepo := subscriberrepo.NewPostgres(dbpool, logger)

	guests := guestsvc.New()
	userService := usersvc.New(userRepo, []byte(cfg.JWTSecret), cfg.TokenTTL, logger)
	productService := productsvc.New(productRepo, logger)
	cartService := cartsvc.New(cartRepo, productRepo, guests, publisher, logger)
	verifier := payment.New(cfg.StripeSecretKey, cfg.PaymentCurrency, logger)
	checkoutService := checkoutsvc.New(checkoutRepo, orderRepo, cartService, verifier, publisher, logger)
	orderService := ordersvc.New(orderRepo, publisher, logger)
	subscriberService := subscribersvc.New(subscriberRepo, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		UserSvc:       userService,
		ProductSvc:    productService,
		CartSvc:       cartService,
		CheckoutSvc:   checkoutService,
		OrderSvc:      orderService,
		SubscriberSvc: subscriberService,
		Guests:        guests,
		Images:        images,
	}, httpserver.Settings{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		UploadDir:          images.Dir(),
		MaxUploadBytes:     cfg.UploadMaxBytes,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
