// Package main prints the revoked tokens held by the badger revocation backend.
//
// The server holds an exclusive lock on the directory, so run this while it
// is stopped.
//
// Usage:
//
//	DATA_PATH=~/CatalogServer/data go run ./cmd/dbinspect
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/catalogd/catalog-server/internal/revocation"
)

func main() {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/CatalogServer/data")
	}
	path := filepath.Join(dataPath, "revocations")

	set, err := revocation.OpenBadgerSet(path)
	if err != nil {
		log.Fatalf("Failed to open revocation set: %v", err)
	}
	defer set.Close()

	records, err := set.List()
	if err != nil {
		log.Fatalf("Failed to list revocations: %v", err)
	}

	fmt.Println("=== Revoked Tokens ===")
	fmt.Println()

	now := time.Now()
	perUser := make(map[string]int)
	for _, rec := range records {
		perUser[rec.UserID]++
		fmt.Printf("Token: %s\n", rec.TokenID)
		fmt.Printf("  User:       %s\n", rec.UserID)
		fmt.Printf("  Revoked at: %s\n", rec.RevokedAt.Format(time.RFC3339))
		fmt.Printf("  Expires in: %s\n", rec.ExpiresAt.Sub(now).Round(time.Second))
		fmt.Println()
	}

	fmt.Println("=== Summary ===")
	fmt.Printf("Total revoked tokens: %d\n", len(records))
	for userID, n := range perUser {
		fmt.Printf("  %s: %d\n", userID, n)
	}
}
