package main

import (
	"os"

	"shophub/config"
	"shophub/internal/clients"
	"shophub/internal/orchestrator/saga"
	orchhttp "shophub/internal/orchestrator/transport/http"
	"shophub/internal/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}
	defer logger.Sync()

	log := logger.L()

	cfg := config.LoadOrchestrator(log)

	customers := clients.NewCustomersClient(cfg.CustomersAPIBase, cfg.ServiceToken)
	orders := clients.NewOrdersClient(cfg.OrdersAPIBase, cfg.ServiceToken)

	sg := saga.New(customers, orders, log)
	h := orchhttp.NewPlaceOrderHandler(sg, log)
	r := orchhttp.Router(h)

	log.Info("Starting orchestrator HTTP server", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("HTTP server failed", zap.Error(err))
	}
}
