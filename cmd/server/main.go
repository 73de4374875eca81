// Command server runs the lost-and-found matching backend.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/campusfind/lostfound-backend/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
}
