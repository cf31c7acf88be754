package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

const DefaultAPIBaseURL = "https://minhhungcar.xyz"

type Config struct {
	ServiceName string
	LoggerLevel string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	PartnerBotToken string

	APIBaseURL       string
	APITimeout       time.Duration
	MetadataCacheTTL time.Duration
	CarsPageSize     int

	// PartnerToken is only read by partnerctl.
	PartnerToken string
}

func (c Config) PostgresURL() string {
	return "postgres://" + c.PostgresUser + ":" + c.PostgresPassword + "@" +
		c.PostgresHost + ":" + c.PostgresPort + "/" + c.PostgresDB + "?sslmode=disable"
}

func (c Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func Load() Config {
	_ = godotenv.Load(".env")

	cfg := Config{}

	cfg.ServiceName = cast.ToString(getOrReturnDefault("SERVICE_NAME", "partnerbot"))
	cfg.LoggerLevel = cast.ToString(getOrReturnDefault("LOGGER_LEVEL", "debug"))

	cfg.PostgresHost = cast.ToString(getOrReturnDefault("POSTGRES_HOST", "localhost"))
	cfg.PostgresPort = cast.ToString(getOrReturnDefault("POSTGRES_PORT", "5432"))
	cfg.PostgresUser = cast.ToString(getOrReturnDefault("POSTGRES_USER", "postgres"))
	cfg.PostgresPassword = cast.ToString(getOrReturnDefault("POSTGRES_PASSWORD", "1234"))
	cfg.PostgresDB = cast.ToString(getOrReturnDefault("POSTGRES_DB", "partnerbot"))

	cfg.RedisHost = cast.ToString(getOrReturnDefault("REDIS_HOST", "localhost"))
	cfg.RedisPort = cast.ToString(getOrReturnDefault("REDIS_PORT", "6379"))
	cfg.RedisPassword = cast.ToString(getOrReturnDefault("REDIS_PASSWORD", ""))

	cfg.PartnerBotToken = cast.ToString(getOrReturnDefault("PARTNER_BOT_TOKEN", ""))

	cfg.APIBaseURL = cast.ToString(getOrReturnDefault("API_BASE_URL", DefaultAPIBaseURL))
	cfg.APITimeout = time.Duration(cast.ToInt(getOrReturnDefault("API_TIMEOUT_SECONDS", 30))) * time.Second
	cfg.MetadataCacheTTL = time.Duration(cast.ToInt(getOrReturnDefault("METADATA_CACHE_TTL_SECONDS", 600))) * time.Second
	cfg.CarsPageSize = cast.ToInt(getOrReturnDefault("CARS_PAGE_SIZE", 10))

	cfg.PartnerToken = cast.ToString(getOrReturnDefault("PARTNER_TOKEN", ""))

	return cfg
}

func getOrReturnDefault(key string, defaultValue interface{}) interface{} {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}
