package main

import (
	"fmt"
	"log"
	"net/http"
	"time"
	"tripscout/cfg"
	"tripscout/internal/excursion"
	"tripscout/internal/saved"
	"tripscout/internal/trip"
	"tripscout/pkg/cache"
	"tripscout/pkg/db"
	"tripscout/pkg/excursionclient"
	"tripscout/pkg/idgen"
	"tripscout/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	// ============
	// config
	// ============
	config, errCfg := cfg.Load()
	if errCfg != nil {
		log.Fatal(errCfg)
	}

	// ============
	// logger
	// ============
	zlogger := logger.NewZeroLog(config.AppEnv)

	// ============
	// cache
	// ============
	redisAddr := config.RedisConfig.Host + ":" + config.RedisConfig.Port
	redis := cache.NewRedisCache(redisAddr, config.RedisConfig.Password)

	// ============
	// database
	// ============
	sqlClient, err := db.NewPostgresClient(config.PostgresConfig.DSN)
	if err != nil {
		log.Fatalf("Failed to connect to postgres: %v", err)
	}

	idGenerator, err := idgen.NewSnowflakeGenerator(config.SnowflakeNodeID)
	if err != nil {
		log.Fatalf("Failed to init id generator: %v", err)
	}

	// ============
	// external services
	// ============
	providerTimeout := time.Duration(config.ProviderTimeoutSeconds) * time.Second
	httpClient := &http.Client{
		Timeout: providerTimeout,
	}
	viatorClient := excursionclient.NewViatorClient(
		httpClient,
		config.ViatorClientConfig.BaseURL,
		config.ViatorClientConfig.APIKey,
		config.ViatorClientConfig.PartnerID,
		zlogger,
	)
	manager := excursionclient.NewManager(
		[]excursionclient.Provider{viatorClient},
		providerTimeout,
		zlogger,
	)

	// ============
	// internal services
	// ============
	excursionSvc := excursion.NewService(manager, redis, config.CacheTTLMinutes, zlogger)
	excursionHandler := excursion.NewHandler(excursionSvc)

	tripSvc := trip.NewService(trip.NewStore(sqlClient), idGenerator, zlogger)
	tripHandler := trip.NewHandler(tripSvc)

	savedSvc := saved.NewService(saved.NewStore(sqlClient), idGenerator, zlogger)
	savedHandler := saved.NewHandler(savedSvc)

	// ============
	// HTTP
	// ============
	r := gin.Default()

	excursionHandler.RegisterRoutes(r)
	tripHandler.RegisterRoutes(r)
	savedHandler.RegisterRoutes(r)

	addr := fmt.Sprintf(":%s", config.AppPort)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
