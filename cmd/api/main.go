package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/dianoite/quiz-analytics/internal/app"
	"github.com/dianoite/quiz-analytics/internal/config"
)

func main() {
	// Local development reads configs/.env; deployed environments inject
	// everything through the process environment.
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load("configs/.env"); err != nil {
			log.Printf("no .env file loaded: %v", err)
		}
	}

	loadCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	cfg, err := config.Load(loadCtx)
	cancel()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	instance, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	if err := instance.Run(ctx); err != nil {
		log.Fatalf("run: %v", err)
	}
}
