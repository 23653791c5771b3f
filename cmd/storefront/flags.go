package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env"
)

type Config struct {
	Address             string        `env:"RUN_ADDRESS" envDefault:"localhost:8080"`
	LogLevel            string        `env:"LOG_LEVEL" envDefault:"INFO"`
	DatabaseConnection  string        `env:"DATABASE_URI"`
	StripeSecretKey     string        `env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string        `env:"STRIPE_WEBHOOK_SECRET"`
	EmailAPIURL         string        `env:"EMAIL_API_URL" envDefault:"https://api.resend.com"`
	EmailAPIKey         string        `env:"EMAIL_API_KEY"`
	EmailFrom           string        `env:"EMAIL_FROM" envDefault:"orders@example.com"`
	AdminEmail          string        `env:"ADMIN_EMAIL"`
	AdminLogin          string        `env:"ADMIN_LOGIN" envDefault:"admin"`
	AdminPassword       string        `env:"ADMIN_PASSWORD"`
	JWTSecret           string        `env:"JWT_SECRET" envDefault:"dontexposethis"`
	JWTTTL              time.Duration `env:"JWT_TTL" envDefault:"24h"`
	Currency            string        `env:"CURRENCY" envDefault:"eur"`
	SuccessURL          string        `env:"CHECKOUT_SUCCESS_URL" envDefault:"http://localhost:3000/checkout/success"`
	CancelURL           string        `env:"CHECKOUT_CANCEL_URL" envDefault:"http://localhost:3000/checkout/cancel"`
	OutboundTimeout     time.Duration `env:"OUTBOUND_TIMEOUT" envDefault:"5s"`
}

func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	address := flag.String("a", cfg.Address, "{Host:port} for server")
	loglevel := flag.String("l", cfg.LogLevel, "Log level for server")
	databaseConnection := flag.String("d", cfg.DatabaseConnection, "Database connection string")
	outboundTimeout := flag.Duration("t", cfg.OutboundTimeout, "Timeout for outbound provider calls")

	flag.Parse()

	cfg.Address = *address
	cfg.LogLevel = *loglevel
	cfg.DatabaseConnection = *databaseConnection
	cfg.OutboundTimeout = *outboundTimeout

	if cfg.StripeSecretKey == "" {
		return nil, fmt.Errorf("ENV STRIPE_SECRET_KEY must be set")
	}
	if cfg.StripeWebhookSecret == "" {
		return nil, fmt.Errorf("ENV STRIPE_WEBHOOK_SECRET must be set")
	}
	if cfg.AdminEmail == "" {
		return nil, fmt.Errorf("ENV ADMIN_EMAIL must be set")
	}

	return cfg, nil
}
