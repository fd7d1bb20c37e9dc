package config

import (
	"context"
	"log"

	"github.com/go-chi/chi/v5"
	"github.com/minio/minio-go/v7"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Bootstrap struct {
	Router         *chi.Mux
	MongoDB        *mongo.Client
	Redis          *redis.Client
	Logger         *zap.Logger
	RabbitMQ       *amqp091.Connection
	Minio          *minio.Client
	InternalConfig *InternalConfig
	DriverConfig   *DriverConfig
	// WorkerStops are called during Shutdown to gracefully stop background workers
	WorkerStops []func()
	// TracerShutdown flushes pending spans
	TracerShutdown func(context.Context) error
}

func (b *Bootstrap) Shutdown(ctx context.Context) error {
	for _, stop := range b.WorkerStops {
		stop()
	}
	if len(b.WorkerStops) > 0 {
		log.Println("Successfully stopped background workers")
	}

	if b.TracerShutdown != nil {
		if err := b.TracerShutdown(ctx); err != nil {
			return err
		}
		log.Println("Successfully flushing tracer")
	}

	if b.RabbitMQ != nil {
		if err := b.RabbitMQ.Close(); err != nil {
			return err
		}
		log.Println("Successfully closing RabbitMQ")
	}

	if b.Redis != nil {
		if err := b.Redis.Close(); err != nil {
			return err
		}
		log.Println("Successfully closing Redis")
	}

	if b.MongoDB != nil {
		if err := b.MongoDB.Disconnect(ctx); err != nil {
			return err
		}
		log.Println("Successfully disconnecting MongoDB")
	}

	if b.Logger != nil {
		// stdout sync returns EINVAL on some platforms
		_ = b.Logger.Sync()
		log.Println("Successfully closing Logger")
	}

	return nil
}
