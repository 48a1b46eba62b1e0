package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Domenick1991/parkinglot/config"
	"github.com/Domenick1991/parkinglot/internal/cache"
	"github.com/Domenick1991/parkinglot/internal/kafka"
	"github.com/Domenick1991/parkinglot/internal/repository"
	"github.com/Domenick1991/parkinglot/internal/service/auth"
	"github.com/Domenick1991/parkinglot/internal/service/sessions"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Cache is the shared key-value state used by the services: exit locks,
// revoked tokens and long-stay alert markers.
type Cache interface {
	sessions.Locker
	sessions.AlertMarker
	auth.TokenStore
}

// OpenStore connects the configured ledger backend. The returned func
// releases it.
func OpenStore(ctx context.Context, cfg *config.Config) (*repository.Store, func(), error) {
	if cfg.Storage.Driver == "memory" {
		log.Printf("storage: using in-memory ledger, data is lost on restart")
		return repository.NewMemoryStore().Store(), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}
	if cfg.Database.Migrate {
		if err := repository.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return repository.NewPGStore(pool), pool.Close, nil
}

// NewCache returns Redis when an address is configured and a process-local
// cache otherwise.
func NewCache(ctx context.Context, cfg config.RedisConfig) (Cache, func(), error) {
	if cfg.Addr == "" {
		return cache.NewMemoryCache(), func() {}, nil
	}
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(ctx); err != nil {
		_ = redisCache.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}
	return redisCache, func() { _ = redisCache.Close() }, nil
}

// NewPublisher returns nil when no brokers are configured; a nil Publisher
// drops every event. An unreachable broker is logged, not fatal: events are
// best effort.
func NewPublisher(ctx context.Context, cfg config.KafkaConfig) (*kafka.Publisher, func()) {
	if len(cfg.Brokers) == 0 {
		return nil, func() {}
	}
	producer := kafka.NewProducer(cfg.Brokers)

	checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := producer.CheckConnection(checkCtx); err != nil {
		log.Printf("WARNING: kafka: %v", err)
	}
	publisher := kafka.NewPublisher(producer, cfg.ParkingTopic, kafka.WithNotificationsTopic(cfg.NotificationsTopic))
	return publisher, func() {
		if err := producer.Close(); err != nil {
			log.Printf("kafka: close producer: %v", err)
		}
	}
}
