package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/shroombros/shroom-api/internal/app/api"
)

func main() {
	if err := api.LoadDotEnv(); err != nil {
		log.Fatal(err)
	}
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := api.Run(ctx, cfg); err != nil {
		log.Fatalf("api exited: %v", err)
	}
}
