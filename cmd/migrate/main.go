package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"storefront/internal/logger"
	"storefront/internal/storage"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	mode := flag.String("mode", "up", "migration mode: up or down")
	flag.Parse()

	if err := logger.Init(logger.Config{Debug: true}); err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if err := run(context.Background(), os.Getenv("SESSION_STORE"), *mode); err != nil {
		log.Fatal(err)
	}
}

// run migrates the session table behind a postgres:// session store location.
func run(ctx context.Context, dsn, mode string) error {
	if dsn == "" {
		return fmt.Errorf("SESSION_STORE not set in environment")
	}
	if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		return fmt.Errorf("SESSION_STORE must be a postgres:// DSN, got %q", dsn)
	}

	db, err := storage.OpenPostgres(dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := storage.Migrate(ctx, db, storage.Direction(mode)); err != nil {
		return err
	}
	fmt.Printf("session store migrated %s\n", mode)
	return nil
}
