// Command invoke_local runs the certificate update handler once against real
// AWS using an event read from disk.
//
//	go run ./scripts [path/to/event.json]
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"listener-certificate-updater/internal/config"
	"listener-certificate-updater/internal/handlers"
	"listener-certificate-updater/internal/utils"
)

func main() {
	fmt.Println("=== Listener Certificate Updater - Local Invoke ===")
	fmt.Println()

	if err := godotenv.Load(); err != nil {
		fmt.Printf("⚠️  Warning: Could not load .env file: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}

	_ = utils.InitLogger(cfg.LogLevel)
	defer utils.Sync()

	path := "testdata/certificate_event.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("❌ Failed to read event: %v\n", err)
		os.Exit(1)
	}

	var event events.CloudWatchEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		fmt.Printf("❌ Failed to parse event: %v\n", err)
		os.Exit(1)
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	fmt.Printf("📖 Loaded event %s from %s\n", event.ID, path)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	handler, err := handlers.NewCertUpdateHandler(ctx, cfg)
	if err != nil {
		fmt.Printf("❌ Failed to create handler: %v\n", err)
		os.Exit(1)
	}

	resp, err := handler.Handle(ctx, event)
	if err != nil {
		fmt.Printf("❌ Invocation failed: %v\n", err)
		os.Exit(1)
	}

	out, _ := json.MarshalIndent(resp, "", "  ")
	fmt.Printf("✅ %s\n", out)
}
