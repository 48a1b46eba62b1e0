package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/parkinglot/config"
	"github.com/Domenick1991/parkinglot/internal/bootstrap"
	"github.com/Domenick1991/parkinglot/internal/kafka"
	"github.com/Domenick1991/parkinglot/internal/notify"
	"github.com/Domenick1991/parkinglot/internal/service/fee"
	"github.com/Domenick1991/parkinglot/internal/service/sessions"
	"github.com/robfig/cron/v3"
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
	if err := cfg.ValidateWorker(); err != nil {
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

	sessionService := sessions.NewSessionService(store.Sessions, calculator)
	sweeper := sessions.NewLongStaySweeper(
		sessionService,
		sharedCache,
		publisher,
		time.Duration(cfg.Worker.LongStayHours)*time.Hour,
	)

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Worker.LongStaySchedule, func() {
		alerted, err := sweeper.Sweep(ctx)
		if err != nil {
			log.Printf("long stay sweep error: %v", err)
			return
		}
		if len(alerted) > 0 {
			log.Printf("raised %d long stay alerts", len(alerted))
		}
	}); err != nil {
		log.Fatalf("schedule long stay sweep %q: %v", cfg.Worker.LongStaySchedule, err)
	}
	scheduler.Start()
	defer func() {
		<-scheduler.Stop().Done()
	}()

	if len(cfg.Kafka.Brokers) > 0 {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
		defer consumer.Close()

		go func() {
			if err := consumer.Consume(ctx, notify.Handler(notify.NewSender())); err != nil && ctx.Err() == nil {
				log.Printf("consumer stopped: %v", err)
			}
		}()
	} else {
		log.Printf("kafka: no brokers configured, notifications disabled")
	}

	log.Printf("worker started, long stay schedule %q", cfg.Worker.LongStaySchedule)
	<-ctx.Done()
	log.Printf("shutting down")
}
