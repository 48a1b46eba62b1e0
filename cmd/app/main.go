package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/parkinglot/api"
	"github.com/Domenick1991/parkinglot/config"
	"github.com/Domenick1991/parkinglot/internal/bootstrap"
	"github.com/Domenick1991/parkinglot/internal/service/auth"
	"github.com/Domenick1991/parkinglot/internal/service/fee"
	"github.com/Domenick1991/parkinglot/internal/service/reports"
	"github.com/Domenick1991/parkinglot/internal/service/sessions"
	"github.com/Domenick1991/parkinglot/internal/service/spaces"
	"github.com/Domenick1991/parkinglot/internal/service/vehicles"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalf("open storage: %v", err)
	}
	defer closeStore()

	sharedCache, closeCache, err := bootstrap.NewCache(ctx, cfg.Redis)
	if err != nil {
		log.Fatalf("open cache: %v", err)
	}
	defer closeCache()

	publisher, closePublisher := bootstrap.NewPublisher(ctx, cfg.Kafka)
	defer closePublisher()

	calculator, err := fee.NewCalculator(cfg.Billing)
	if err != nil {
		log.Fatalf("billing: %v", err)
	}

	authService := auth.NewAuthService(
		store.Users,
		sharedCache,
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute,
	)
	if cfg.Auth.AdminUsername != "" {
		if err := authService.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
			log.Fatalf("seed admin: %v", err)
		}
	}

	sessionService := sessions.NewSessionService(
		store.Sessions,
		calculator,
		sessions.WithLocker(sharedCache, time.Duration(cfg.Billing.ExitLockSec)*time.Second),
		sessions.WithEvents(publisher),
	)

	services := api.Services{
		Auth:         authService,
		Users:        authService,
		Spaces:       spaces.NewSpaceService(store.Spaces, publisher),
		Sessions:     sessionService,
		Vehicles:     vehicles.NewVehicleService(store.Vehicles),
		Reports:      reports.NewReportService(store, calculator),
		CookieSecure: cfg.Auth.CookieSecure,
	}

	if err := bootstrap.Run(ctx, cfg, services); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
