package service

import (
	"context"
	"time"

	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/auth"
	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/growth"
	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/metrics"
	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/repository"
	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/textgen"
)

// Uploader hosts export files and returns a download link.
type Uploader interface {
	UploadExport(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Notifier distributes generated weekly reports.
type Notifier interface {
	PublishWeeklyReport(ctx context.Context, from, to time.Time, summary string) error
}

type Services struct {
	Store    repository.RecordStore
	Growth   *GrowthService
	Sessions *SessionService
}

// Deps are the collaborators wired by the commands. Uploader, Notifier and
// Metrics are optional.
type Deps struct {
	Store         repository.RecordStore
	Generator     textgen.Generator
	Authenticator auth.Authenticator
	SessionStore  *auth.SessionStore
	References    growth.References
	Birth         time.Time
	Policy        growth.UpdatePolicy
	Uploader      Uploader
	Notifier      Notifier
	Metrics       *metrics.Metrics
}

func New(d Deps) *Services {
	return &Services{
		Store: d.Store,
		Growth: &GrowthService{
			store:    d.Store,
			gen:      d.Generator,
			refs:     d.References,
			birth:    d.Birth,
			policy:   d.Policy,
			uploader: d.Uploader,
			notifier: d.Notifier,
			metrics:  d.Metrics,
			now:      time.Now,
		},
		Sessions: &SessionService{
			auth:     d.Authenticator,
			sessions: d.SessionStore,
			metrics:  d.Metrics,
		},
	}
}
