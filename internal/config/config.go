package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string

	AppPort    string
	AppEnv     string
	CORSOrigin string

	JWTSecret    string
	JWTExpiresIn time.Duration

	StripeSecretKey   string
	InternalSecretKey string

	RedisAddr       string
	KafkaBrokers    []string
	KafkaOrderTopic string

	OrderTxTimeout    time.Duration
	ReconcileInterval time.Duration
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     getenv("DB_PORT", "5432"),
		DBSSLMode:  getenv("DB_SSLMODE", "disable"),

		AppPort:    getenv("APP_PORT", "8080"),
		AppEnv:     os.Getenv("APP_ENV"),
		CORSOrigin: getenv("CORS_ORIGIN", "http://localhost:3000"),

		JWTSecret:    os.Getenv("JWT_SECRET"),
		JWTExpiresIn: getduration("JWT_EXPIRES_IN", 7*24*time.Hour),

		StripeSecretKey:   os.Getenv("STRIPE_SECRET_KEY"),
		InternalSecretKey: os.Getenv("INTERNAL_SECRET_KEY"),

		RedisAddr:       os.Getenv("REDIS_ADDR"),
		KafkaBrokers:    splitCSV(os.Getenv("KAFKA_BROKERS")),
		KafkaOrderTopic: getenv("KAFKA_ORDER_TOPIC", "orders.events"),

		OrderTxTimeout:    getduration("ORDER_TX_TIMEOUT", 10*time.Second),
		ReconcileInterval: getduration("RECONCILE_INTERVAL", time.Minute),
	}

	if cfg.DBHost == "" || cfg.JWTSecret == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("invalid duration for %s=%q, using %s", k, v, def)
		return def
	}
	return d
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
