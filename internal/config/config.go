package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// SMTPConfig configures the SMTP mailer.
type SMTPConfig struct {
	Host          string
	Port          string
	User          string
	Pass          string
	TLSMode       string // "", "starttls", "tls"
	SkipVerifyTLS bool
}

// Config is the full application configuration, resolved once at startup.
// Gateway credentials are carried explicitly instead of being read from the
// environment at call sites.
type Config struct {
	HTTPAddr string
	DBDSN    string

	FrontendURL string // payer-facing redirect pages
	BackendURL  string // base for the ITN notify URL

	PayFast PayFast

	// FNB accounts used for the 70/30 fund split.
	OwnerAccount   string
	ReserveAccount string

	AdminEmail    string
	EmailFrom     string
	EmailFromName string
	SMTP          SMTPConfig

	// Sweep interval for completed-but-undistributed payments.
	DistributionInterval time.Duration

	SessionCookie string
	SecureCookies bool
}

// PayFast holds the gateway credentials and environment-selected endpoints.
type PayFast struct {
	MerchantID  string
	MerchantKey string
	Passphrase  string
	ProcessURL  string
	ValidateURL string
}

func FromEnv() (Config, error) {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		return Config{}, fmt.Errorf("DB_DSN environment variable is required")
	}

	pf := PayFast{
		MerchantID:  os.Getenv("PAYFAST_MERCHANT_ID"),
		MerchantKey: os.Getenv("PAYFAST_MERCHANT_KEY"),
		Passphrase:  os.Getenv("PAYFAST_PASSPHRASE"),
		ProcessURL:  "https://sandbox.payfast.co.za/eng/process",
		ValidateURL: "https://sandbox.payfast.co.za/eng/query/validate",
	}
	if os.Getenv("APP_ENV") == "production" {
		pf.ProcessURL = "https://www.payfast.co.za/eng/process"
		pf.ValidateURL = "https://www.payfast.co.za/eng/query/validate"
	}
	if pf.MerchantID == "" || pf.MerchantKey == "" {
		return Config{}, fmt.Errorf("PAYFAST_MERCHANT_ID and PAYFAST_MERCHANT_KEY are required")
	}

	cfg := Config{
		HTTPAddr:    envOr("HTTP_ADDR", ":8080"),
		DBDSN:       dsn,
		FrontendURL: envOr("FRONTEND_URL", "http://localhost:3000"),
		BackendURL:  envOr("BACKEND_URL", "http://localhost:8080"),
		PayFast:     pf,

		OwnerAccount:   os.Getenv("FNB_OWNER_ACCOUNT"),
		ReserveAccount: os.Getenv("FNB_RESERVE_ACCOUNT"),

		AdminEmail:    envOr("ADMIN_EMAIL", "admin@westcoastdigital.co.za"),
		EmailFrom:     envOr("EMAIL_FROM", "no-reply@westcoastdigital.co.za"),
		EmailFromName: envOr("EMAIL_FROM_NAME", "West Coast Digital"),
		SMTP: SMTPConfig{
			Host:          os.Getenv("SMTP_HOST"),
			Port:          envOr("SMTP_PORT", "587"),
			User:          os.Getenv("SMTP_USER"),
			Pass:          os.Getenv("SMTP_PASS"),
			TLSMode:       envOr("SMTP_TLS_MODE", "starttls"),
			SkipVerifyTLS: envOr("SMTP_SKIP_VERIFY_TLS", "") == "true",
		},

		DistributionInterval: envDuration("DISTRIBUTION_SWEEP_INTERVAL", 5*time.Minute),

		SessionCookie: envOr("SESSION_COOKIE", "wcd_session"),
		SecureCookies: os.Getenv("APP_ENV") == "production",
	}

	return cfg, nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return def
}
