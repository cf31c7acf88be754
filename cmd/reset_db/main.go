package main

import (
	"context"
	"fmt"

	"partnerbot/config"
	"partnerbot/pkg/logger"
	"partnerbot/storage/postgres"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.ServiceName, cfg.LoggerLevel)
	pg, err := postgres.New(context.Background(), cfg, log)

	if err != nil {
		panic(err)
	}
	defer pg.Close()

	// Partners sign in again after this; the backend keeps every car.
	_, err = pg.GetPool().Exec(context.Background(), "TRUNCATE TABLE partner_sessions")
	if err != nil {
		log.Error(fmt.Sprintf("Failed to truncate tables: %v", err))
	} else {
		log.Info("Successfully truncated partner_sessions table.")
	}
}
