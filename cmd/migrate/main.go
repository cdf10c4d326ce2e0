package main

import (
	"context"
	"flag"
	"log"
	"os"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/migrate"
)

func main() {
	down := flag.Int("down", 0, "roll back this many migrations instead of applying")
	flag.Parse()

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[migrate] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if *down > 0 {
		if err := migrate.Down(ctx, pool, *down); err != nil {
			logger.Fatalf("roll back migrations: %v", err)
		}
		logger.Printf("rolled back %d migrations", *down)
		return
	}

	if err := migrate.Apply(ctx, pool, logger); err != nil {
		logger.Fatalf("apply migrations: %v", err)
	}

	logger.Println("migrations applied")
}
