package reminder

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler sweeps the store once a minute and delivers due reminders.
type Scheduler struct {
	service *Service
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewScheduler creates the sweep scheduler.
func NewScheduler(service *Service) *Scheduler {
	return &Scheduler{
		service: service,
		cron:    cron.New(),
		logger:  slog.Default(),
	}
}

// Start registers the minute sweep and launches the cron loop. The sweep
// runs until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc("* * * * *", func() {
		sent, err := s.service.ProcessDue(ctx)
		if err != nil {
			s.logger.Error("reminder sweep failed", "err", err)
			return
		}
		if sent > 0 {
			s.logger.Info("reminders delivered", "count", sent)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	go func() {
		<-ctx.Done()
		s.cron.Stop()
	}()

	s.logger.Info("reminder scheduler started")
	return nil
}

// Stop halts the cron loop and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("reminder scheduler stopped")
}
