package watch

import (
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	ferrors "github.com/NicolasDP/git/internal/foundation/errors"
)

// scheduler runs the periodic rescan.
type scheduler struct {
	s gocron.Scheduler
}

func newScheduler() (*scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRuntime, "create scheduler").Build()
	}
	return &scheduler{s: s}, nil
}

// every schedules fn at interval.
func (s *scheduler) every(name string, interval time.Duration, fn func()) error {
	if interval <= 0 {
		return ferrors.ValidationError("rescan interval must be positive").
			WithContext("interval", interval.String()).Build()
	}
	job, err := s.s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(fn),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "schedule rescan").
			WithContext("interval", interval.String()).Build()
	}
	slog.Debug("Scheduled periodic rescan", slog.String("job_id", job.ID().String()), slog.Duration("interval", interval))
	return nil
}

func (s *scheduler) start() { s.s.Start() }

func (s *scheduler) stop() error { return s.s.Shutdown() }
