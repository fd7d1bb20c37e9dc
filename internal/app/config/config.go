package config

import (
	"ambica-diagnostic-service/internal/pkg/utils"

	"github.com/joho/godotenv"
)

func init() {
	godotenv.Load()
}

func NewDriverConfig() *DriverConfig {
	return &DriverConfig{
		MongoDB: MongoDB{
			Port:                  utils.GetEnvString("MONGODB_PORT", "27017"),
			Host:                  utils.GetEnvString("MONGODB_HOST", "localhost"),
			DbName:                utils.GetEnvString("MONGODB_DB_NAME", "ambica_diagnostic"),
			Username:              utils.GetEnvString("MONGODB_USERNAME", ""),
			Password:              utils.GetEnvString("MONGODB_PASSWORD", ""),
			URI:                   utils.GetEnvString("MONGODB_URI", ""),
			ConnectTimeoutSeconds: utils.GetEnvInt("MONGODB_CONNECT_TIMEOUT_SECONDS", 10),
		},
		Redis: Redis{
			Host:     utils.GetEnvString("REDIS_HOST", "localhost"),
			Port:     utils.GetEnvString("REDIS_PORT", "6379"),
			Password: utils.GetEnvString("REDIS_PASSWORD", ""),
			DB:       utils.GetEnvInt("REDIS_DB", 0),
		},
		Logger: Logger{
			Level:               utils.GetEnvString("LOGGER_LEVEL", "debug"),
			OutputFileName:      utils.GetEnvString("LOGGER_OUTPUT_FILENAME", "logger.log"),
			OutputErrorFileName: utils.GetEnvString("LOGGER_OUTPUT_ERROR_FILENAME", "logger_error.log"),
		},
		RabbitMQ: RabbitMQ{
			Port:     utils.GetEnvString("RABBITMQ_PORT", "5672"),
			Host:     utils.GetEnvString("RABBITMQ_HOST", "localhost"),
			Username: utils.GetEnvString("RABBITMQ_USERNAME", "guest"),
			Password: utils.GetEnvString("RABBITMQ_PASSWORD", "guest"),
		},
		Minio: Minio{
			Port:     utils.GetEnvString("MINIO_PORT", "9000"),
			Host:     utils.GetEnvString("MINIO_HOST", "localhost"),
			Username: utils.GetEnvString("MINIO_USERNAME", "minioadmin"),
			Password: utils.GetEnvString("MINIO_PASSWORD", "minioadmin"),
			UseSSL:   utils.GetEnvBool("MINIO_USE_SSL", false),
		},
		Otel: Otel{
			Enabled:      utils.GetEnvBool("OTEL_ENABLED", false),
			OTLPEndpoint: utils.GetEnvString("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			SampleRatio:  utils.GetEnvFloat("OTEL_SAMPLING_RATIO", 1),
		},
	}
}

func NewInternalConfig() *InternalConfig {
	return &InternalConfig{
		App: App{
			Env:                                   utils.GetEnvString("APP_ENV", "development"),
			Port:                                  utils.GetEnvString("APP_PORT", ":8001"),
			Version:                               utils.GetEnvString("APP_VERSION", "v1"),
			Address:                               utils.GetEnvString("APP_ADDRESS", "localhost"),
			Timezone:                              utils.GetEnvString("APP_TIMEZONE", "Asia/Kolkata"),
			EndpointPrefix:                        utils.GetEnvString("APP_ENDPOINT_PREFIX", "api"),
			AllowedOrigins:                        utils.GetEnvStringSlice("APP_CORS_ALLOWED_ORIGINS", []string{"*"}),
			MaxRequests:                           utils.GetEnvInt("APP_MAX_REQUEST", 20),
			ShutdownTimeoutInSeconds:              utils.GetEnvInt("APP_SHUTDOWN_TIMEOUT", 10),
			RequestTimeoutInSeconds:               utils.GetEnvInt("APP_REQUEST_TIMEOUT_IN_SECONDS", 10),
			PaymentExpiredTimeInMinutes:           utils.GetEnvInt("APP_PAYMENT_EXPIRED_TIME_IN_MINUTES", 30),
			PaymentGatewayRequestTimeoutInSeconds: utils.GetEnvInt("APP_PAYMENT_GATEWAY_REQUEST_TIMEOUT_IN_SECONDS", 8),
			PaymentRateLimitPerMinute:             utils.GetEnvInt("APP_PAYMENT_RATE_LIMIT_PER_MINUTE", 10),
		},
		JWT: AppJWT{
			Secret: utils.GetEnvString("JWT_SECRET", "ambica-diagnostic-secret-key-2024"),
		},
		Slot: AppSlot{
			Capacity:          utils.GetEnvInt("SLOT_CAPACITY", 3),
			StartTime:         utils.GetEnvString("SLOT_START_TIME", "06:00"),
			EndTime:           utils.GetEnvString("SLOT_END_TIME", "08:30"),
			IntervalInMinutes: utils.GetEnvInt("SLOT_INTERVAL_IN_MINUTES", 15),
		},
		PaymentGateway: AppPaymentGateway{
			BaseUrl:           utils.GetEnvString("PAYMENT_GATEWAY_BASE_URL", "https://api.razorpay.com/v1"),
			KeyID:             utils.GetEnvString("RAZORPAY_KEY_ID", ""),
			KeySecret:         utils.GetEnvString("RAZORPAY_KEY_SECRET", ""),
			Currency:          utils.GetEnvString("PAYMENT_GATEWAY_CURRENCY", "INR"),
			RequestsPerSecond: utils.GetEnvFloat("PAYMENT_GATEWAY_REQUESTS_PER_SECOND", 10),
			Burst:             utils.GetEnvInt("PAYMENT_GATEWAY_BURST", 5),
		},
		RabbitMQ: AppRabbitMQ{
			EventsExchange: utils.GetEnvString("APP_RABBITMQ_EVENTS_EXCHANGE", "ambica.events"),
		},
		Minio: AppMinio{
			ReportBucketName: utils.GetEnvString("APP_MINIO_REPORT_BUCKET_NAME", "reports"),
		},
		Worker: AppWorker{
			SlotSweeperCronSpec:              utils.GetEnvString("WORKER_SLOT_SWEEPER_CRON_SPEC", "@every 5m"),
			SlotGrantGracePeriodInMinutes:    utils.GetEnvInt("WORKER_SLOT_GRANT_GRACE_PERIOD_IN_MINUTES", 10),
			PaymentExpiryCronSpec:            utils.GetEnvString("WORKER_PAYMENT_EXPIRY_CRON_SPEC", "@every 1m"),
			LeaderLockTTLInSeconds:           utils.GetEnvInt("WORKER_LEADER_LOCK_TTL_IN_SECONDS", 120),
			ReconcileConfirmMaxAttempts:      utils.GetEnvInt("WORKER_RECONCILE_CONFIRM_MAX_ATTEMPTS", 4),
			ReconcileConfirmInitialDelayInMs: utils.GetEnvInt("WORKER_RECONCILE_CONFIRM_INITIAL_DELAY_IN_MS", 50),
		},
	}
}
