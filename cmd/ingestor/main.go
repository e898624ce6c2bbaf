package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/app"
	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/config"
	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/domain"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

func main() {
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

	sess, err := a.Services.Sessions.Login(ctx, config.IngestEmail(), config.IngestPassword())
	if err != nil {
		log.Fatal().Err(err).Msg("ingest account sign-in failed")
	}

	opts := mqtt.NewClientOptions().
		AddBroker(config.MQTTBroker()).
		SetClientID("growth-ingestor").
		SetAutoReconnect(true)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatal().Err(token.Error()).Msg("mqtt connect")
	}
	defer client.Disconnect(250)

	handler := func(_ mqtt.Client, msg mqtt.Message) {
		current := sess
		if !current.Valid(time.Now()) {
			renewed, err := a.Services.Sessions.Login(ctx, config.IngestEmail(), config.IngestPassword())
			if err != nil {
				log.Error().Err(err).Msg("session renewal failed, dropping message")
				return
			}
			sess, current = renewed, renewed
		}
		rec, err := a.Services.Growth.FromMQTT(ctx, current, msg.Topic(), msg.Payload())
		if err != nil {
			log.Error().Err(err).Str("topic", msg.Topic()).Msg("ingest failed")
			return
		}
		log.Info().Int64("id", rec.ID).Str("date", rec.Date.Format(domain.DateLayout)).Msg("entry ingested")
	}

	// handlers run sequentially while OrderMatters is true (the default), so sess needs no lock
	if token := client.Subscribe(config.MQTTTopic(), 1, handler); token.Wait() && token.Error() != nil {
		log.Fatal().Err(token.Error()).Msg("subscribe failed")
	}

	log.Info().Str("topic", config.MQTTTopic()).Msg("ingestor running; Ctrl+C to stop")
	<-ctx.Done()
}
