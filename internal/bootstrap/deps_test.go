package bootstrap

import (
	"context"
	"testing"

	"github.com/Domenick1991/parkinglot/config"
	"github.com/Domenick1991/parkinglot/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore_Memory(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = "memory"

	store, closeFn, err := OpenStore(context.Background(), cfg)
	require.NoError(t, err)
	defer closeFn()

	assert.NotNil(t, store.Spaces)
	assert.NotNil(t, store.Sessions)
	assert.NotNil(t, store.Users)
}

func TestNewCache_FallsBackToMemory(t *testing.T) {
	c, closeFn, err := NewCache(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	defer closeFn()

	assert.IsType(t, &cache.MemoryCache{}, c)
}

func TestNewPublisher_DisabledWithoutBrokers(t *testing.T) {
	publisher, closeFn := NewPublisher(context.Background(), config.KafkaConfig{ParkingTopic: "parking-events"})
	defer closeFn()

	assert.Nil(t, publisher)
}

func TestNewPublisher_WithBrokers(t *testing.T) {
	publisher, closeFn := NewPublisher(context.Background(), config.KafkaConfig{Brokers: []string{"127.0.0.1:1"}, ParkingTopic: "parking-events"})
	defer closeFn()

	assert.NotNil(t, publisher)
}
