// Prunes activity feed entries older than the retention window. Intended to
// run from cron.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/openboard/openboard/internal/config"
	"github.com/openboard/openboard/internal/store/postgres"
)

func main() {
	retention := flag.Duration("retention", 90*24*time.Hour, "delete activity entries older than this")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, postgres.Config{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Database:     cfg.Database.Database,
		SSLMode:      cfg.Database.SSLMode,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	cutoff := time.Now().Add(-*retention)
	deleted, err := postgres.NewActivityRepository(db).DeleteOlderThan(ctx, cutoff)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cleanup failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Deleted %d activity entries older than %s.\n", deleted, cutoff.Format(time.RFC3339))
}
