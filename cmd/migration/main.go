package main

import (
	"ambica-diagnostic-service/internal/app/config"
	"ambica-diagnostic-service/internal/app/drivers/database"
	"ambica-diagnostic-service/internal/app/drivers/storage"
	"ambica-diagnostic-service/internal/app/services/core/appointments"
	"ambica-diagnostic-service/internal/app/services/core/payments"
	"ambica-diagnostic-service/internal/app/services/core/slot"
	"context"
	"log"
	"time"
)

// Creates the collection indexes and the report bucket ahead of a deploy.
// The HTTP service runs the same steps on boot; both are idempotent.
func main() {
	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()

	mongoDB := database.NewMongoDB(driverConfig)
	defer mongoDB.Disconnect(context.Background())

	// NewMinio creates the report bucket when it is missing
	storage.NewMinio(driverConfig, internalConfig)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	dbName := driverConfig.MongoDB.DbName
	steps := []struct {
		name string
		run  func(context.Context) error
	}{
		{"slot_buckets", slot.NewSlotMongoRepository(mongoDB, dbName).EnsureIndexes},
		{"appointments", appointments.NewAppointmentMongoRepository(mongoDB, dbName).EnsureIndexes},
		{"payments", payments.NewPaymentMongoRepository(mongoDB, dbName).EnsureIndexes},
	}

	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			log.Fatalf("Error creating %s indexes: %v", step.name, err)
		}
		log.Printf("Applied %s indexes", step.name)
	}
}
