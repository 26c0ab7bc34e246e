package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPPort        string
	GRPCPort        string
	Environment     string
	LogLevel        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	Mongo           MongoConfig
	Redis           RedisConfig
	Kafka           KafkaConfig
	Razorpay        RazorpayConfig
	Auth            AuthConfig
	Checkout        CheckoutConfig
}

type MongoConfig struct {
	URI    string
	DBName string
}

type RedisConfig struct {
	Addr     string
	Password string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

type RazorpayConfig struct {
	KeyID     string
	KeySecret string
	BaseURL   string
	Currency  string
	Timeout   time.Duration
}

type AuthConfig struct {
	JWTSecret string
}

type CheckoutConfig struct {
	TotalsHintTTL     time.Duration
	StalePendingAfter time.Duration
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	viper.SetDefault("HTTP_PORT", "8080")
	viper.SetDefault("GRPC_PORT", "9090")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("REQUEST_TIMEOUT", "5s")
	viper.SetDefault("SHUTDOWN_TIMEOUT", "30s")
	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DB_NAME", "storefront")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("KAFKA_BROKERS", "localhost:9092")
	viper.SetDefault("KAFKA_TOPIC", "order-events")
	viper.SetDefault("KAFKA_GROUP_ID", "storefront-totals")
	viper.SetDefault("RAZORPAY_BASE_URL", "https://api.razorpay.com")
	viper.SetDefault("PAYMENT_CURRENCY", "INR")
	viper.SetDefault("GATEWAY_TIMEOUT", "10s")
	viper.SetDefault("TOTALS_HINT_TTL", "30m")
	viper.SetDefault("STALE_PENDING_AFTER", "30m")

	viper.AutomaticEnv()

	// .env is optional
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		HTTPPort:        viper.GetString("HTTP_PORT"),
		GRPCPort:        viper.GetString("GRPC_PORT"),
		Environment:     viper.GetString("APP_ENV"),
		LogLevel:        viper.GetString("LOG_LEVEL"),
		RequestTimeout:  viper.GetDuration("REQUEST_TIMEOUT"),
		ShutdownTimeout: viper.GetDuration("SHUTDOWN_TIMEOUT"),
		Mongo: MongoConfig{
			URI:    viper.GetString("MONGO_URI"),
			DBName: viper.GetString("MONGO_DB_NAME"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(viper.GetString("KAFKA_BROKERS")),
			Topic:   viper.GetString("KAFKA_TOPIC"),
			GroupID: viper.GetString("KAFKA_GROUP_ID"),
		},
		Razorpay: RazorpayConfig{
			KeyID:     viper.GetString("RAZORPAY_KEY_ID"),
			KeySecret: viper.GetString("RAZORPAY_KEY_SECRET"),
			BaseURL:   viper.GetString("RAZORPAY_BASE_URL"),
			Currency:  viper.GetString("PAYMENT_CURRENCY"),
			Timeout:   viper.GetDuration("GATEWAY_TIMEOUT"),
		},
		Auth: AuthConfig{
			JWTSecret: viper.GetString("JWT_SECRET"),
		},
		Checkout: CheckoutConfig{
			TotalsHintTTL:     viper.GetDuration("TOTALS_HINT_TTL"),
			StalePendingAfter: viper.GetDuration("STALE_PENDING_AFTER"),
		},
	}

	if cfg.Razorpay.KeyID == "" || cfg.Razorpay.KeySecret == "" {
		return nil, fmt.Errorf("RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET are required")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.RequestTimeout <= 0 || cfg.Razorpay.Timeout <= 0 {
		return nil, fmt.Errorf("REQUEST_TIMEOUT and GATEWAY_TIMEOUT must be positive")
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
