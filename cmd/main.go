package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"partnerbot/config"
	"partnerbot/pkg/bot"
	"partnerbot/pkg/logger"
	"partnerbot/pkg/partnerapi"
	"partnerbot/pkg/registration"
	"partnerbot/service"
	"partnerbot/storage/postgres"
	"partnerbot/storage/redis"
)

func main() {
	// 1. Load Config
	cfg := config.Load()

	// 2. Initialize Logger
	log := logger.New(cfg.ServiceName, cfg.LoggerLevel)

	// 3. Initialize Storage (Postgres sessions, Redis metadata cache)
	pgStore, err := postgres.New(context.Background(), cfg, log)
	if err != nil {
		log.Error("Failed to connect to postgres", logger.Error(err))
		os.Exit(1)
	}
	defer pgStore.Close()

	cache := redis.New(cfg.RedisAddr(), cfg.RedisPassword)
	defer cache.Close()

	// 4. Backend client and registration workflow
	api := partnerapi.New(cfg.APIBaseURL, cfg.APITimeout)
	workflow := registration.NewWorkflow(api, cache, cfg.MetadataCacheTTL, log.With(logger.String("component", "registration")))
	svc := service.New(pgStore, api, workflow, log)

	// 5. Initialize Partner Bot
	partnerBot, err := bot.New(&cfg, svc, log)
	if err != nil {
		log.Error("Failed to initialize partner bot", logger.Error(err))
		os.Exit(1)
	}

	go partnerBot.Start()

	log.Info("🚀 Partner bot is running", logger.String("api", cfg.APIBaseURL))

	// 6. Graceful Shutdown listener
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Stopping bot and shutting down...")
	partnerBot.Stop()
}
