package cfg

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

type ViatorClientConfig struct {
	BaseURL string
	// APIKey may be empty: search then degrades at request time instead of
	// failing startup.
	APIKey    string
	PartnerID string
}

type PostgresConfig struct {
	DSN string
}

type Config struct {
	AppEnv                 string
	AppPort                string
	RedisConfig            RedisConfig
	PostgresConfig         PostgresConfig
	ViatorClientConfig     ViatorClientConfig
	CacheTTLMinutes        int
	ProviderTimeoutSeconds int
	SnowflakeNodeID        int64
}

func Load() (*Config, error) {
	var errs []error

	// A missing .env is fine in deployed environments, vars come from the
	// process environment there.
	_ = godotenv.Load()

	appEnv := mustEnv("APP_ENV", &errs)
	appPort := mustEnv("APP_PORT", &errs)
	redisHost := mustEnv("REDIS_HOST", &errs)
	redisPort := mustEnv("REDIS_PORT", &errs)
	redisPassword := optEnv("REDIS_PASSWORD", "")

	postgresDSN := mustEnv("POSTGRES_DSN", &errs)

	viatorBaseURL := mustEnv("VIATOR_BASE_URL", &errs)
	viatorAPIKey := optEnv("VIATOR_API_KEY", "")
	viatorPartnerID := optEnv("VIATOR_PARTNER_ID", "P00056432")

	cacheTTLMinutes := mustEnvInt("CACHE_TTL_MINUTES", &errs)
	providerTimeoutSeconds := mustEnvInt("PROVIDER_TIMEOUT_SECONDS", &errs)
	snowflakeNodeID := mustEnvInt("SNOWFLAKE_NODE_ID", &errs)

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return &Config{
		AppEnv:  appEnv,
		AppPort: appPort,
		RedisConfig: RedisConfig{
			Host:     redisHost,
			Port:     redisPort,
			Password: redisPassword,
		},
		PostgresConfig: PostgresConfig{
			DSN: postgresDSN,
		},
		ViatorClientConfig: ViatorClientConfig{
			BaseURL:   viatorBaseURL,
			APIKey:    viatorAPIKey,
			PartnerID: viatorPartnerID,
		},
		CacheTTLMinutes:        cacheTTLMinutes,
		ProviderTimeoutSeconds: providerTimeoutSeconds,
		SnowflakeNodeID:        int64(snowflakeNodeID),
	}, nil
}

func mustEnv(key string, errs *[]error) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		*errs = append(*errs, errors.New("missing env: "+key))
	}
	return value
}

func mustEnvInt(key string, errs *[]error) int {
	value := mustEnv(key, errs)
	if value == "" {
		return 0
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, errors.New("conversion failed env: "+key))
	}
	return n
}

func optEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	return value
}
