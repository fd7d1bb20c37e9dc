package config

type (
	DriverConfig struct {
		MongoDB  MongoDB
		Redis    Redis
		Logger   Logger
		RabbitMQ RabbitMQ
		Minio    Minio
		Otel     Otel
	}
	MongoDB struct {
		Port                  string
		Host                  string
		Username              string
		Password              string
		DbName                string
		URI                   string
		ConnectTimeoutSeconds int
	}
	Redis struct {
		Host     string
		Port     string
		Password string
		DB       int
	}
	Logger struct {
		Level               string
		OutputFileName      string
		OutputErrorFileName string
	}
	RabbitMQ struct {
		Port     string
		Host     string
		Username string
		Password string
	}
	Minio struct {
		Port     string
		Host     string
		Username string
		Password string
		UseSSL   bool
	}
	Otel struct {
		Enabled      bool
		OTLPEndpoint string
		SampleRatio  float64
	}
)
