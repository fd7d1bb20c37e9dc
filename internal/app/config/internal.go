package config

import "time"

type InternalConfig struct {
	App            App               `mapstructure:"app"`
	JWT            AppJWT            `mapstructure:"jwt"`
	Slot           AppSlot           `mapstructure:"slot"`
	PaymentGateway AppPaymentGateway `mapstructure:"payment_gateway"`
	RabbitMQ       AppRabbitMQ       `mapstructure:"rabbitmq"`
	Minio          AppMinio          `mapstructure:"minio"`
	Worker         AppWorker         `mapstructure:"worker"`
}

type App struct {
	Env                                   string `mapstructure:"env"`
	Port                                  string `mapstructure:"port"`
	Version                               string `mapstructure:"version"`
	Address                               string `mapstructure:"address"`
	Timezone                              string `mapstructure:"timezone"`
	EndpointPrefix                        string `mapstructure:"endpoint_prefix"`
	AllowedOrigins                        []string
	MaxRequests                           int `mapstructure:"max_requests"`
	ShutdownTimeoutInSeconds              int `mapstructure:"shutdown_timeout_in_seconds"`
	RequestTimeoutInSeconds               int `mapstructure:"request_timeout_in_seconds"`
	PaymentExpiredTimeInMinutes           int `mapstructure:"payment_expired_time_in_minutes"`
	PaymentGatewayRequestTimeoutInSeconds int `mapstructure:"payment_gateway_request_timeout_in_seconds"`
	PaymentRateLimitPerMinute             int `mapstructure:"payment_rate_limit_per_minute"`
}

type AppJWT struct {
	Secret string `mapstructure:"secret"`
}

// AppSlot is the reservation policy: the daily schedule and per slot capacity.
type AppSlot struct {
	Capacity          int    `mapstructure:"capacity"`
	StartTime         string `mapstructure:"start_time"`
	EndTime           string `mapstructure:"end_time"`
	IntervalInMinutes int    `mapstructure:"interval_in_minutes"`
}

type AppPaymentGateway struct {
	BaseUrl           string  `mapstructure:"base_url"`
	KeyID             string  `mapstructure:"key_id"`
	KeySecret         string  `mapstructure:"key_secret"`
	Currency          string  `mapstructure:"currency"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type AppRabbitMQ struct {
	EventsExchange string `mapstructure:"events_exchange"`
}

type AppMinio struct {
	ReportBucketName string `mapstructure:"report_bucket_name"`
}

// AppWorker configures the background sweepers. Empty cron specs disable a worker.
type AppWorker struct {
	SlotSweeperCronSpec              string `mapstructure:"slot_sweeper_cron_spec"`
	SlotGrantGracePeriodInMinutes    int    `mapstructure:"slot_grant_grace_period_in_minutes"`
	PaymentExpiryCronSpec            string `mapstructure:"payment_expiry_cron_spec"`
	LeaderLockTTLInSeconds           int    `mapstructure:"leader_lock_ttl_in_seconds"`
	ReconcileConfirmMaxAttempts      int    `mapstructure:"reconcile_confirm_max_attempts"`
	ReconcileConfirmInitialDelayInMs int    `mapstructure:"reconcile_confirm_initial_delay_in_ms"`
}

func (a App) RequestTimeout() time.Duration {
	return time.Duration(a.RequestTimeoutInSeconds) * time.Second
}

func (a App) PaymentGatewayTimeout() time.Duration {
	return time.Duration(a.PaymentGatewayRequestTimeoutInSeconds) * time.Second
}

func (a App) PaymentExpiry() time.Duration {
	return time.Duration(a.PaymentExpiredTimeInMinutes) * time.Minute
}

func (w AppWorker) SlotGrantGracePeriod() time.Duration {
	return time.Duration(w.SlotGrantGracePeriodInMinutes) * time.Minute
}

func (w AppWorker) LeaderLockTTL() time.Duration {
	return time.Duration(w.LeaderLockTTLInSeconds) * time.Second
}
