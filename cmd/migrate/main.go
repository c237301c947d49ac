package main

import (
	"os"

	"shophub/config"
	customersmigrate "shophub/internal/customers/migrate"
	ordersmigrate "shophub/internal/orders/migrate"
	"shophub/internal/pkg/database"
	"shophub/internal/pkg/logger"

	"github.com/joho/godotenv"
)

// Прогоняет миграции обеих схем. Какую именно — выбирается
// аргументом: customers, orders или all (по умолчанию).
func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}
	defer logger.Sync()

	log := logger.L()

	target := "all"
	if len(os.Args) > 1 {
		target = os.Args[1]
	}

	if target == "customers" || target == "all" {
		cfg := config.LoadCustomersDB(log)
		db := database.ConnectDB(&cfg, log)
		customersmigrate.Run(db, log)
		database.CloseDB(db, log)
	}

	if target == "orders" || target == "all" {
		cfg := config.LoadOrdersDB(log)
		db := database.ConnectDB(&cfg, log)
		ordersmigrate.Run(db, log)
		database.CloseDB(db, log)
	}
}
