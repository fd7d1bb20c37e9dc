package main

import (
	"ambica-diagnostic-service/internal/app/config"
	"ambica-diagnostic-service/internal/app/contracts"
	"ambica-diagnostic-service/internal/app/delivery/http/controllers"
	"ambica-diagnostic-service/internal/app/delivery/http/middlewares"
	"ambica-diagnostic-service/internal/app/delivery/http/routers"
	"ambica-diagnostic-service/internal/app/drivers/database"
	"ambica-diagnostic-service/internal/app/drivers/logger"
	"ambica-diagnostic-service/internal/app/drivers/messaging"
	"ambica-diagnostic-service/internal/app/drivers/storage"
	"ambica-diagnostic-service/internal/app/drivers/telemetry"
	"ambica-diagnostic-service/internal/app/services/core/appointments"
	"ambica-diagnostic-service/internal/app/services/core/payments"
	"ambica-diagnostic-service/internal/app/services/core/slot"
	"ambica-diagnostic-service/internal/app/services/shared/locker"
	paymentGateway "ambica-diagnostic-service/internal/app/services/shared/payment_gateway"
	"ambica-diagnostic-service/internal/app/services/shared/publisher"
	"ambica-diagnostic-service/internal/app/services/shared/ratelimiter"
	redisRepository "ambica-diagnostic-service/internal/app/services/shared/redis"
	"ambica-diagnostic-service/internal/app/services/shared/scheduler"
	reportStorage "ambica-diagnostic-service/internal/app/services/shared/storage"
	"ambica-diagnostic-service/internal/pkg/clock"
	"ambica-diagnostic-service/internal/pkg/constvars"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Version sets the default build version
var Version = "develop"

// Tag sets the default latest commit tag
var Tag = "0.0.1-rc"

func main() {
	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()

	log := logger.NewZapLogger(driverConfig, internalConfig)
	log.Info("Starting service",
		zap.String("version", Version),
		zap.String("tag", Tag),
		zap.String("env", internalConfig.App.Env),
	)

	location, err := time.LoadLocation(internalConfig.App.Timezone)
	if err != nil {
		log.Fatal("Error loading location", zap.Error(err))
	}
	time.Local = location

	tracerShutdown := telemetry.NewTracerProvider(context.Background(), driverConfig, internalConfig)
	mongoDB := database.NewMongoDB(driverConfig)
	redis := database.NewRedisClient(driverConfig)
	rabbitMQ := messaging.NewRabbitMQ(driverConfig)
	minio := storage.NewMinio(driverConfig, internalConfig)
	chiRouter := chi.NewRouter()

	bootstrap := &config.Bootstrap{
		Router:         chiRouter,
		MongoDB:        mongoDB,
		Redis:          redis,
		Logger:         log,
		RabbitMQ:       rabbitMQ,
		Minio:          minio,
		InternalConfig: internalConfig,
		DriverConfig:   driverConfig,
		TracerShutdown: tracerShutdown,
	}

	err = bootstrapingTheApp(bootstrap)
	if err != nil {
		log.Fatal("Failed to bootstrap the app", zap.Error(err))
	}

	server := &http.Server{
		Addr:              internalConfig.App.Port,
		Handler:           otelhttp.NewHandler(chiRouter, constvars.AppName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c

	log.Info("Waiting for pending requests that already received by server to be processed..")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Second*time.Duration(internalConfig.App.ShutdownTimeoutInSeconds),
	)
	defer cancel()

	err = server.Shutdown(shutdownCtx)
	if err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	err = bootstrap.Shutdown(shutdownCtx)
	if err != nil {
		log.Error("Failed to release resources", zap.Error(err))
	}

	log.Info("Server exiting")
}

func bootstrapingTheApp(bootstrap *config.Bootstrap) error {
	ctx := context.Background()
	log := bootstrap.Logger
	dbName := bootstrap.DriverConfig.MongoDB.DbName
	realClock := clock.NewRealClock()

	// Redis
	redisRepo := redisRepository.NewRedisRepository(bootstrap.Redis)
	lockerService := locker.NewLockService(redisRepo, log)
	resourceLimiter := ratelimiter.NewResourceLimiter(redisRepo, realClock, log)

	// Events
	var eventPublisher contracts.EventPublisher
	eventPublisher, err := publisher.NewRabbitMQPublisher(bootstrap.RabbitMQ, bootstrap.InternalConfig.RabbitMQ.EventsExchange, log)
	if err != nil {
		log.Warn("RabbitMQ publisher unavailable, events will only be logged", zap.Error(err))
		eventPublisher = publisher.NewLogPublisher(log)
	}

	// Repositories
	slotMongoRepository := slot.NewSlotMongoRepository(bootstrap.MongoDB, dbName)
	appointmentMongoRepository := appointments.NewAppointmentMongoRepository(bootstrap.MongoDB, dbName)
	paymentMongoRepository := payments.NewPaymentMongoRepository(bootstrap.MongoDB, dbName)

	indexCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	for _, repo := range []interface{ EnsureIndexes(context.Context) error }{
		slotMongoRepository,
		appointmentMongoRepository,
		paymentMongoRepository,
	} {
		if err := repo.EnsureIndexes(indexCtx); err != nil {
			return err
		}
	}

	// Slot
	slotUsecase, err := slot.NewSlotUsecase(slotMongoRepository, appointmentMongoRepository, bootstrap.InternalConfig, realClock, log)
	if err != nil {
		return err
	}

	// Appointment
	minioReportStorage := reportStorage.NewMinioReportStorage(bootstrap.Minio, bootstrap.InternalConfig.Minio.ReportBucketName, log)
	appointmentUsecase := appointments.NewAppointmentUsecase(appointmentMongoRepository, slotUsecase, minioReportStorage, eventPublisher, realClock, log)

	// Payment
	gatewayConfig := bootstrap.InternalConfig.PaymentGateway
	razorpayService := paymentGateway.NewRazorpayService(
		gatewayConfig.BaseUrl,
		gatewayConfig.KeyID,
		gatewayConfig.KeySecret,
		gatewayConfig.RequestsPerSecond,
		gatewayConfig.Burst,
		log,
	)
	paymentUsecase := payments.NewPaymentUsecase(paymentMongoRepository, appointmentUsecase, razorpayService, eventPublisher, realClock, bootstrap.InternalConfig, log)

	// Workers
	for _, worker := range []*scheduler.LeaderCron{
		slot.NewWorker(log, bootstrap.InternalConfig, lockerService, slotUsecase),
		payments.NewWorker(log, bootstrap.InternalConfig, lockerService, paymentUsecase),
	} {
		if err := worker.Start(ctx); err != nil {
			return err
		}
		bootstrap.WorkerStops = append(bootstrap.WorkerStops, worker.Stop)
	}

	// HTTP
	middlewares := middlewares.NewMiddlewares(log, resourceLimiter, bootstrap.InternalConfig)
	appointmentController := controllers.NewAppointmentController(log, appointmentUsecase, slotUsecase, bootstrap.InternalConfig)
	paymentController := controllers.NewPaymentController(log, paymentUsecase, bootstrap.InternalConfig)

	routers.SetupRoutes(bootstrap.Router, bootstrap.InternalConfig, middlewares, appointmentController, paymentController)
	return nil
}
