// cmd/seed/main.go
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/CabinDesk/internal/config"
	"github.com/codr1/CabinDesk/internal/db"
	"github.com/codr1/CabinDesk/internal/models"
	"github.com/codr1/CabinDesk/internal/seed"
)

func main() {
	configPath := flag.String("config", "config/app.yaml", "Path to the application config file")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	database, err := db.NewFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	ctx = log.Logger.WithContext(ctx)

	if _, err := seed.Run(ctx, database, models.NewPricing(cfg.Bookings.BreakfastPrice), time.Now(), cfg.Location()); err != nil {
		database.Close()
		log.Fatal().Err(err).Msg("Failed to load sample data")
	}
}
