package database

import (
	"ambica-diagnostic-service/internal/app/config"
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

func NewMongoDB(driverConfig *config.DriverConfig) *mongo.Client {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(driverConfig.MongoDB.ConnectTimeoutSeconds)*time.Second)
	defer cancel()

	dbOptions := options.Client().
		ApplyURI(buildMongoConnectionString(driverConfig.MongoDB)).
		SetReadConcern(readconcern.Majority()).
		SetWriteConcern(writeconcern.Majority())
	client, err := mongo.Connect(ctx, dbOptions)
	if err != nil {
		log.Fatalf("Failed to connect to mongo database: %s", err.Error())
	}
	err = client.Ping(ctx, nil)
	if err != nil {
		log.Fatalf("Failed to ping or test the connection to mongo database: %s", err.Error())
	}
	log.Println("Successfully connected to mongo database")
	return client
}

func buildMongoConnectionString(mongoConfig config.MongoDB) string {
	if mongoConfig.URI != "" {
		return mongoConfig.URI
	}
	if mongoConfig.Username == "" {
		return fmt.Sprintf("mongodb://%s:%s", mongoConfig.Host, mongoConfig.Port)
	}
	return fmt.Sprintf(
		"mongodb://%s:%s@%s:%s",
		mongoConfig.Username,
		mongoConfig.Password,
		mongoConfig.Host,
		mongoConfig.Port,
	)
}
