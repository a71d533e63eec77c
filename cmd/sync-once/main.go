// sync-once runs a single branch reconciliation pass and exits. Useful for
// debugging merge behavior against the live Eclipse API without the server.
//
// Usage:
//
//	DB_USER=... ECLIPSE_URL=... ECLIPSE_USER=... ECLIPSE_PASS=... go run ./cmd/sync-once
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/tjwells85/whs_backend/config"
	"github.com/tjwells85/whs_backend/models"
	"github.com/tjwells85/whs_backend/whsync"
)

func main() {
	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	config.ConnectRedisWithRetry()
	models.MigrateTable()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	worker := whsync.NewWorker(config.GetLogger())
	if err := worker.SyncAllBranches(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "sync failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("sync complete")
}
