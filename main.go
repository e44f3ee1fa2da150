package main

import (
	"BaiXe/Config"
	"BaiXe/CronJobs"
	"BaiXe/FiberConfig"
	"BaiXe/Models"
	"BaiXe/middleware"
	"log"
)

func main() {
	cfg, err := Config.Load()
	if err != nil {
		log.Fatal("config: ", err)
	}

	logger := middleware.NewLogger(cfg.LogLevel)

	db, err := Models.Connect(cfg)
	if err != nil {
		logger.Fatalf("database: %v", err)
	}

	janitor := CronJobs.NewSessionJanitor(db, logger, cfg.StaleSessionTTL)
	if err := janitor.Start(); err != nil {
		logger.Fatalf("cron: %v", err)
	}
	defer janitor.Stop()

	if err := FiberConfig.Run(db, cfg, logger); err != nil {
		logger.Fatalf("server: %v", err)
	}
}
