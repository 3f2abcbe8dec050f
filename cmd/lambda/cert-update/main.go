// Certificate update Lambda entry point
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"listener-certificate-updater/internal/config"
	"listener-certificate-updater/internal/handlers"
	"listener-certificate-updater/internal/utils"
)

func main() {
	// Config first so LOG_LEVEL from .env is honoured
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := utils.InitLogger(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer utils.Sync()

	handler, err := handlers.NewCertUpdateHandler(context.Background(), cfg)
	if err != nil {
		panic("Failed to create handler: " + err.Error())
	}

	lambda.Start(handler.Handle)
}
