package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/app"
	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/config"
	httpHandlers "github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/http"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("service wiring failed")
	}
	defer a.Close()

	server := fiber.New(fiber.Config{DisableStartupMessage: true})
	server.Use(recover.New())
	httpHandlers.Register(server, a.Services, a.Metrics, a.Registry)

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		if err := server.Shutdown(); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}()

	addr := config.APIAddr()
	log.Info().Str("addr", addr).Msg("api listening")
	if err := server.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("server exit")
	}
}
