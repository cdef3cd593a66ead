package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Retrier redelivers whatever is still pending and reports how many went out.
type Retrier interface {
	RetryPending(ctx context.Context) (int, error)
}

// Scheduler runs background jobs on cron schedules in the shop's time zone.
type Scheduler struct {
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
}

func NewScheduler(loc *time.Location, timeout time.Duration) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		ctx:     ctx,
		cancel:  cancel,
		timeout: timeout,
	}
}

// RegisterSheetSync schedules the spreadsheet outbox retry.
func (s *Scheduler) RegisterSheetSync(spec string, r Retrier) error {
	_, err := s.cron.AddFunc(spec, func() { s.runSheetSync(r) })
	if err != nil {
		return fmt.Errorf("failed to register sheet sync job %q: %w", spec, err)
	}
	return nil
}

func (s *Scheduler) runSheetSync(r Retrier) {
	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	delivered, err := r.RetryPending(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Sheet sync job failed")
		return
	}
	if delivered > 0 {
		log.Info().Int("delivered", delivered).Msg("Sheet sync job delivered pending bookings")
	}
}

func (s *Scheduler) Start() {
	log.Info().Int("jobs", len(s.cron.Entries())).Msg("Starting cron scheduler")
	s.cron.Start()
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	log.Info().Msg("Cron scheduler stopped")
}

func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
