package main

import (
	"fmt"
	"os"

	"partnerbot/config"
	"partnerbot/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.ServiceName+"-ctl", cfg.LoggerLevel)

	if err := newRootCmd(cfg, log).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
