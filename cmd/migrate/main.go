// Command migrate applies the service schema: go run ./cmd/migrate -direction up
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/shandysiswandi/smsauth/internal/db/migrate"
	"github.com/shandysiswandi/smsauth/internal/pkg/config"
)

func main() {
	direction := flag.String("direction", migrate.DirectionUp, "migration direction: up or down")
	flag.Parse()

	if arg := flag.Arg(0); arg != "" {
		*direction = arg
	}

	if err := config.LoadDotEnv(); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	if err := migrate.Run(os.Getenv("DATABASE_URL"), *direction); err != nil {
		slog.Error("failed to migrate database", "direction", *direction, "error", err)
		os.Exit(1)
	}

	slog.Info("database migrated", "direction", *direction)
}
