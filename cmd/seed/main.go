package main

import (
	"context"
	"log"
	"os"

	"storefront/internal/config"
	"storefront/internal/db"
	productrepo "storefront/internal/repository/product"
	userrepo "storefront/internal/repository/user"
	"storefront/internal/seed"
	usersvc "storefront/internal/service/user"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	users := usersvc.New(userrepo.NewPostgres(pool, logger), []byte(cfg.JWTSecret), cfg.TokenTTL, logger)
	products := productrepo.NewPostgres(pool, logger)

	admin := seed.Admin{Email: cfg.SeedAdminEmail, Password: cfg.SeedAdminPassword}
	if err := seed.Apply(ctx, users, products, admin, logger); err != nil {
		logger.Fatalf("seed apply: %v", err)
	}

	logger.Println("seed applied")
}
