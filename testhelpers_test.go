//go:build integration

package main_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/stayhaven/service-booking/internal/application"
	"github.com/stayhaven/service-booking/internal/cache"
	"github.com/stayhaven/service-booking/internal/database"
	"github.com/stayhaven/service-booking/internal/kafka"
	"github.com/stayhaven/service-booking/internal/repository"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// bookingStack holds wired-up service components backed by real infrastructure.
type bookingStack struct {
	Bookings *application.BookingService
	Rooms    *application.RoomService
	Cache    *cache.Store
	Producer *kafka.Producer
}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a
// connected GORM DB with the schema and booking constraints installed.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_booking",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_booking sslmode=disable",
		host, port.Port())
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&repository.RoomModel{},
		&repository.BookingModel{},
		&repository.UserModel{},
	))
	require.NoError(t, database.EnsureBookingConstraints(db))

	kafkaC, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.6.1")
	require.NoError(t, err)
	brokers, err := kafkaC.Brokers(ctx)
	require.NoError(t, err)

	return &testInfra{
		DB:           db,
		KafkaBrokers: brokers,
		Cleanup: func() {
			_ = kafkaC.Terminate(ctx)
			_ = pgC.Terminate(ctx)
		},
	}
}

// setupBookingStack wires the services against the container-backed database,
// a miniredis cache and a real Kafka producer.
func setupBookingStack(t *testing.T, infra *testInfra) *bookingStack {
	t.Helper()
	log := zap.NewNop()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cacheStore := cache.NewStore(client, time.Minute, 100, log)

	producer := kafka.NewProducer(infra.KafkaBrokers, log)
	t.Cleanup(func() { _ = producer.Close() })

	roomRepo := repository.NewGormRoomRepository(infra.DB)
	bookingRepo := repository.NewGormBookingRepository(infra.DB)
	txManager := repository.NewTxManager(infra.DB)

	return &bookingStack{
		Bookings: application.NewBookingService(txManager, bookingRepo, roomRepo, cacheStore, producer, log),
		Rooms:    application.NewRoomService(roomRepo, cacheStore, producer, log),
		Cache:    cacheStore,
		Producer: producer,
	}
}

// consumeOneEvent reads messages from a topic until one with the given type
// arrives or the timeout elapses.
func consumeOneEvent(t *testing.T, brokers []string, topic, eventType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     fmt.Sprintf("test-%s-%d", eventType, time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
	})
	defer func() { _ = reader.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for {
		msg, err := reader.ReadMessage(ctx)
		require.NoError(t, err, "no %s event on %s within %s", eventType, topic, timeout)

		var ce kafka.CloudEvent
		require.NoError(t, json.Unmarshal(msg.Value, &ce))
		if ce.Type == eventType {
			return ce
		}
	}
}
