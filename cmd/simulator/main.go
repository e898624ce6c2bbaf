package main

import (
	"encoding/json"
	"flag"
	"math/rand"
	"time"

	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/config"
	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/domain"
	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/service"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

// entry builds a plausible daily entry for a baby aged ageDays.
func entry(rng *rand.Rand, day time.Time, ageDays int) service.EntryInput {
	months := float64(ageDays) / 30
	return service.EntryInput{
		Date:          day.Format(domain.DateLayout),
		HeightCM:      round1(49.9 + 3.2*months - 0.08*months*months + rng.Float64()*0.4),
		WeightKG:      round1(3.3 + 0.8*months - 0.025*months*months + rng.Float64()*0.2),
		SleepHours:    round1(15 - months*0.25 + rng.Float64()*1.5),
		FormulaML:     10 * (50 + rng.Intn(30) + int(months)*5),
		DiaperChanges: 6 + rng.Intn(4),
	}
}

func round1(v float64) float64 { return float64(int(v*10+0.5)) / 10 }

func main() {
	days := flag.Int("days", 30, "number of daily entries to publish")
	interval := flag.Duration("interval", 500*time.Millisecond, "delay between messages")
	flag.Parse()

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	birth, err := config.BirthDate()
	if err != nil {
		log.Fatal().Err(err).Msg("birth date")
	}

	opts := mqtt.NewClientOptions().AddBroker(config.MQTTBroker()).SetClientID("growth-simulator")
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatal().Err(token.Error()).Msg("mqtt connect")
	}
	defer client.Disconnect(250)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := 0; i < *days; i++ {
		day := birth.AddDate(0, 0, i)
		payload, _ := json.Marshal(entry(rng, day, i))
		token := client.Publish(config.MQTTTopic(), 1, false, payload)
		if token.Wait() && token.Error() != nil {
			log.Error().Err(token.Error()).Str("date", day.Format(domain.DateLayout)).Msg("publish failed")
		}
		time.Sleep(*interval)
	}
	log.Info().Int("entries", *days).Msg("simulation done")
}
