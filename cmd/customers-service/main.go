package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shophub/config"
	"shophub/internal/customers/cache"
	"shophub/internal/customers/repository"
	"shophub/internal/customers/service"
	customershttp "shophub/internal/customers/transport/http"
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

	cfg := config.LoadCustomers(log)
	db := database.ConnectDB(&cfg.DB, log)
	defer database.CloseDB(db, log)

	var rc *cache.RedisClient
	if cfg.Redis.Enabled {
		var err error
		rc, err = cache.NewRedisClient(
			cfg.Redis.Addr,
			cfg.Redis.Password,
			cfg.Redis.DB,
			time.Duration(cfg.Redis.TTLSeconds)*time.Second,
			log,
		)
		if err != nil {
			log.Fatal("Не удалось подключиться к Redis", zap.Error(err))
		}
		defer rc.Close()
	}

	repo := repository.NewCustomerRepo(db)
	svc := service.NewCustomerService(repo, rc, log)

	h := customershttp.NewCustomerHandler(svc, cfg.Auth.JWTSecret, log)
	r := customershttp.Router(h, cfg.Auth.JWTSecret, cfg.Auth.ServiceToken)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("Starting customers HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-quit
	log.Info("Shutting down customers HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Customers HTTP server stopped gracefully")
}
