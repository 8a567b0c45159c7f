// seed-admin is a one-shot tool to bootstrap the first store and its admin
// user. Run it once against a fresh database, then log in and create the rest
// of the chain through the API.
//
// Usage: go run ./cmd/seed-admin <username> <password>
package main

import (
	"context"
	"log"
	"os"

	"varejo-backoffice/internal/db"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 3 {
		log.Fatal("usage: seed-admin <username> <password>")
	}
	username, password := os.Args[1], os.Args[2]

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	log.Println("Ensuring head-office store...")
	var storeID int
	err = tx.QueryRow(ctx, `
		INSERT INTO stores (code, name, city, is_active)
		VALUES ('MATRIZ', 'Matriz', '', true)
		ON CONFLICT (code) DO UPDATE SET is_active = true
		RETURNING id`,
	).Scan(&storeID)
	if err != nil {
		log.Fatalf("Failed to create store: %v", err)
	}

	log.Printf("Creating admin user %q...", username)
	_, err = tx.Exec(ctx, `
		INSERT INTO users (store_id, username, password_hash, role, is_active)
		VALUES ($1, $2, $3, 'admin', true)
		ON CONFLICT (username) DO UPDATE
		  SET password_hash = EXCLUDED.password_hash,
		      role = 'admin',
		      is_active = true`,
		storeID, username, string(hash),
	)
	if err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}
	log.Println("Done.")
}
