// Package app wires the configured collaborators into the dashboard services.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/auth"
	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/cloud"
	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/config"
	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/database"
	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/growth"
	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/metrics"
	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/repository"
	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/service"
	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/textgen"
)

const (
	BackendPostgres = "postgres"
	BackendDynamoDB = "dynamodb"
	BackendMemory   = "memory"
)

// App holds the built services and what must be released on shutdown.
type App struct {
	Services *service.Services
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry
	closers  []func() error
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Warn().Err(err).Msg("shutdown")
		}
	}
}

// Build constructs the services from the loaded configuration.
func Build(ctx context.Context) (*App, error) {
	a := &App{Registry: prometheus.NewRegistry()}
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	birth, err := config.BirthDate()
	if err != nil {
		return nil, err
	}
	policy, err := growth.ParseUpdatePolicy(config.UpdatePolicy())
	if err != nil {
		return nil, err
	}
	refs, err := growth.LoadReferences(config.ReferenceFile())
	if err != nil {
		return nil, err
	}

	store, err := a.store(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	gen, err := textgen.New(ctx, config.TextGenProvider(), generatorKey(), config.OpenAIBaseURL(), textgen.Settings{
		Model:       config.TextGenModel(),
		MaxTokens:   config.TextGenMaxTokens(),
		Temperature: config.TextGenTemperature(),
		Timeout:     config.TextGenTimeout(),
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	authn, err := authenticator()
	if err != nil {
		a.Close()
		return nil, err
	}

	sessions := auth.NewSessionStore(10 * time.Minute)
	a.Metrics, err = metrics.New(a.Registry, sessions.Count)
	if err != nil {
		a.Close()
		return nil, err
	}

	deps := service.Deps{
		Store:         store,
		Generator:     gen,
		Authenticator: authn,
		SessionStore:  sessions,
		References:    refs,
		Birth:         birth,
		Policy:        policy,
		Metrics:       a.Metrics,
	}
	if config.UseCloudServices() {
		if err := cloudDeps(ctx, &deps); err != nil {
			a.Close()
			return nil, err
		}
	}

	a.Services = service.New(deps)
	log.Info().
		Str("store", config.StoreBackend()).
		Str("textgen", config.TextGenProvider()).
		Str("policy", string(policy)).
		Bool("cloud", config.UseCloudServices()).
		Msg("services ready")
	return a, nil
}

func (a *App) store(ctx context.Context) (repository.RecordStore, error) {
	switch strings.ToLower(config.StoreBackend()) {
	case BackendPostgres:
		db, err := database.Connect()
		if err != nil {
			return nil, fmt.Errorf("db connect: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		if err := database.EnsureSchema(ctx, db, config.GrowthTable()); err != nil {
			return nil, err
		}
		return repository.New(db, config.GrowthTable())
	case BackendDynamoDB:
		return cloud.NewDynamoStore(ctx, config.AWSRegion(), config.GrowthTable())
	case BackendMemory:
		log.Warn().Msg("using the in-memory store, records are lost on exit")
		return repository.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", config.StoreBackend())
	}
}

func generatorKey() string {
	if strings.EqualFold(config.TextGenProvider(), textgen.ProviderGemini) {
		return config.GeminiAPIKey()
	}
	return config.OpenAIAPIKey()
}

func authenticator() (auth.Authenticator, error) {
	if config.AuthURL() != "" {
		return auth.NewSupabase(config.AuthURL(), config.AuthAPIKey(), config.SessionTTL()), nil
	}
	if config.DevEmail() != "" {
		log.Warn().Str("email", config.DevEmail()).Msg("AUTH_URL not set, using the static development account")
		return auth.NewStatic(config.DevEmail(), config.DevPasswordHash(), config.SessionTTL())
	}
	return nil, fmt.Errorf("no authenticator configured: set AUTH_URL or DEV_EMAIL and DEV_PASSWORD_HASH")
}

func cloudDeps(ctx context.Context, d *service.Deps) error {
	if bucket := config.S3Bucket(); bucket != "" {
		s3c, err := cloud.NewS3Client(ctx, config.AWSRegion(), bucket)
		if err != nil {
			return err
		}
		d.Uploader = s3c
	}
	if arn := config.SNSTopicArn(); arn != "" {
		snsc, err := cloud.NewSNSClient(ctx, config.AWSRegion(), arn)
		if err != nil {
			return err
		}
		d.Notifier = snsc
	}
	return nil
}
