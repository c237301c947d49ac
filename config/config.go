package config

import (
	"os"
	"strconv"
	"strings"

	"shophub/internal/pkg/database"

	"go.uber.org/zap"
)

type Auth struct {
	JWTSecret    string
	ServiceToken string
}

type Redis struct {
	Enabled    bool
	Addr       string
	Password   string
	DB         int
	TTLSeconds int
}

type Kafka struct {
	Brokers []string
	Topic   string
}

type Customers struct {
	Port  string
	DB    database.Config
	Auth  Auth
	Redis Redis
}

type Orders struct {
	Port             string
	DB               database.Config
	Auth             Auth
	CustomersAPIBase string
	Kafka            Kafka
}

type Orchestrator struct {
	Port             string
	CustomersAPIBase string
	OrdersAPIBase    string
	ServiceToken     string
}

func LoadCustomers(log *zap.Logger) *Customers {
	return &Customers{
		Port: getEnv("CUSTOMERS_APP_PORT", log),
		DB:   loadDB("CUSTOMERS", log),
		Auth: loadAuth(log),
		Redis: Redis{
			Enabled:    os.Getenv("REDIS_ENABLED") == "true",
			Addr:       os.Getenv("REDIS_ADDR"),
			Password:   os.Getenv("REDIS_PASSWORD"),
			DB:         atoiDefault(os.Getenv("REDIS_DB"), 0),
			TTLSeconds: atoiDefault(os.Getenv("CACHE_TTL_SECONDS"), 60),
		},
	}
}

func LoadOrders(log *zap.Logger) *Orders {
	return &Orders{
		Port:             getEnv("ORDERS_APP_PORT", log),
		DB:               loadDB("ORDERS", log),
		Auth:             loadAuth(log),
		CustomersAPIBase: getEnv("CUSTOMERS_API_BASE", log),
		Kafka: Kafka{
			Brokers: splitAndTrim(os.Getenv("KAFKA_BROKERS")),
			Topic:   os.Getenv("KAFKA_TOPIC_ORDERS"),
		},
	}
}

func LoadOrchestrator(log *zap.Logger) *Orchestrator {
	return &Orchestrator{
		Port:             getEnv("ORCHESTRATOR_APP_PORT", log),
		CustomersAPIBase: getEnv("CUSTOMERS_API_BASE", log),
		OrdersAPIBase:    getEnv("ORDERS_API_BASE", log),
		ServiceToken:     getEnv("SERVICE_TOKEN", log),
	}
}

// LoadCustomersDB и LoadOrdersDB дают только настройки базы:
// мигратору не нужны секреты и адреса соседних сервисов.
func LoadCustomersDB(log *zap.Logger) database.Config {
	return loadDB("CUSTOMERS", log)
}

func LoadOrdersDB(log *zap.Logger) database.Config {
	return loadDB("ORDERS", log)
}

func loadAuth(log *zap.Logger) Auth {
	return Auth{
		JWTSecret:    getEnv("JWT_SECRET", log),
		ServiceToken: getEnv("SERVICE_TOKEN", log),
	}
}

func loadDB(prefix string, log *zap.Logger) database.Config {
	return database.Config{
		Host:     getEnv(prefix+"_DB_HOST", log),
		Port:     getEnv(prefix+"_DB_PORT", log),
		User:     getEnv(prefix+"_DB_USER", log),
		Password: getEnv(prefix+"_DB_PASSWORD", log),
		Name:     getEnv(prefix+"_DB_NAME", log),
		SSLMode:  getEnv(prefix+"_DB_SSLMODE", log),
	}
}

func getEnv(key string, log *zap.Logger) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	log.Error("Обязательная переменная окружения не установлена", zap.String("key", key))
	panic("missing required environment variable: " + key)
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := []string{}
	for _, p := range strings.Split(s, ",") {
		pt := strings.TrimSpace(p)
		if pt != "" {
			parts = append(parts, pt)
		}
	}
	return parts
}
