package main

import (
	"context"
	"log"
	"net/http"
	"os"

	webAdapter "varejo-backoffice/internal/adapters/web"
	"varejo-backoffice/internal/app"
	"varejo-backoffice/internal/core"
	"varejo-backoffice/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	storeService := core.NewStoreService(pool)
	userService := core.NewUserService(pool)
	orderService := core.NewOrderService(pool)
	reconciliationStore := core.NewReconciliationStore(pool)
	engine := core.NewReconciliationEngine(orderService, reconciliationStore)
	inventoryService := core.NewInventoryService(pool)
	registerService := core.NewRegisterService(pool)
	employeeService := core.NewEmployeeService(pool)
	benchmarkService := core.NewBenchmarkService(pool)

	svc := app.NewApplicationService(
		storeService, userService, orderService, engine, reconciliationStore,
		inventoryService, registerService, employeeService, benchmarkService,
	)

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins, jwtSecret)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
