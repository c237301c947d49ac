package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shophub/config"
	"shophub/internal/clients"
	"shophub/internal/orders/events"
	"shophub/internal/orders/repository"
	"shophub/internal/orders/service"
	ordershttp "shophub/internal/orders/transport/http"
	"shophub/internal/pkg/database"
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

	cfg := config.LoadOrders(log)
	db := database.ConnectDB(&cfg.DB, log)
	defer database.CloseDB(db, log)

	repo := repository.New(db)

	var bus service.EventBus
	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.Topic != "" {
		producer := events.NewOrderProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		bus = producer
		log.Info("Kafka producer enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	customers := clients.NewCustomersClient(cfg.CustomersAPIBase, cfg.Auth.ServiceToken)

	orderSvc := service.NewOrderService(repo, bus, log)
	productSvc := service.NewProductService(repo, log)

	orderH := ordershttp.NewOrderHandler(orderSvc, customers, log)
	productH := ordershttp.NewProductHandler(productSvc, log)
	r := ordershttp.Router(orderH, productH, cfg.Auth.JWTSecret, cfg.Auth.ServiceToken)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("Starting orders HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-quit
	log.Info("Shutting down orders HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Orders HTTP server stopped gracefully")
}
