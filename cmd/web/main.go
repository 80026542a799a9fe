package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"westcoastdigital.co.za/app/internal/config"
	apphttp "westcoastdigital.co.za/app/internal/http"
	"westcoastdigital.co.za/app/internal/http/handlers"
	"westcoastdigital.co.za/app/internal/modules/admin"
	"westcoastdigital.co.za/app/internal/modules/businesses"
	"westcoastdigital.co.za/app/internal/modules/email"
	"westcoastdigital.co.za/app/internal/modules/notify"
	"westcoastdigital.co.za/app/internal/modules/payfast"
	"westcoastdigital.co.za/app/internal/modules/payments"
	"westcoastdigital.co.za/app/internal/modules/subscriptions"
	"westcoastdigital.co.za/app/internal/modules/transfer"
	"westcoastdigital.co.za/app/internal/modules/users"
	"westcoastdigital.co.za/app/internal/storage"
)

func main() {
	// Load .env file (ignore error if not found - prod uses real env vars)
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := gorm.Open(mysql.Open(cfg.DBDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.FromEnv(ctx)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	logger.Info("storage ready", "driver", store.Driver)

	gwCfg := payfast.Config{
		MerchantID:  cfg.PayFast.MerchantID,
		MerchantKey: cfg.PayFast.MerchantKey,
		Passphrase:  cfg.PayFast.Passphrase,
		ProcessURL:  cfg.PayFast.ProcessURL,
		ValidateURL: cfg.PayFast.ValidateURL,
	}

	ledger := payments.NewRepo(db)
	bizRepo := businesses.NewRepo(db)
	bizSvc := businesses.NewService(bizRepo, store.Storage)
	subsRepo := subscriptions.NewRepo(db)
	userRepo := users.NewRepo(db)

	emails := email.NewFromEnv(cfg)
	dispatcher := notify.NewDispatcher(emails, userRepo, bizRepo, cfg.AdminEmail, logger)

	bank := transfer.NewFNBClient(transfer.Config{
		BaseURL: os.Getenv("FNB_API_URL"),
		APIKey:  os.Getenv("FNB_API_KEY"),
	}, logger)

	engine := payments.NewEngine(ledger, bizRepo, payments.NewSubscriptionAdapter(subsRepo), bank, dispatcher, payments.EngineConfig{
		OwnerAccount:   cfg.OwnerAccount,
		ReserveAccount: cfg.ReserveAccount,
		Logger:         logger,
	})

	paySvc := payments.NewService(ledger, bizRepo, payments.ServiceConfig{
		Gateway:     gwCfg,
		FrontendURL: cfg.FrontendURL,
		BackendURL:  cfg.BackendURL,
	}, logger)
	refunds := payments.NewRefundService(ledger, bizRepo, payments.NewSubscriptionAdapter(subsRepo), logger)

	sched := payments.NewScheduler(engine, ledger, cfg.DistributionInterval, logger)
	go sched.Run(ctx)

	verifier := payfast.NewVerifier(gwCfg, logger)

	r := apphttp.NewRouter(logger, db, cfg, apphttp.Deps{
		ITN:        handlers.NewITNHandler(logger, verifier, engine),
		Payments:   handlers.NewPaymentsHandler(paySvc, ledger, refunds),
		Businesses: handlers.NewBusinessesHandler(bizSvc, bizRepo),
		Admin:      handlers.NewAdminHandler(admin.NewReports(db), bizRepo),
	})

	logger.Info("listening", "addr", cfg.HTTPAddr)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
