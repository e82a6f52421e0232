package scheduler

import (
	"context"

	"github.com/Bharathreddy-142/wheather/internal/services"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs the batch weather update on a cron spec inside the API
// process. It is optional; the same work can be triggered out of band via
// cmd/updater.
type Scheduler struct {
	cron    *cron.Cron
	updater *services.UpdaterService
	spec    string
	logger  *zap.Logger
}

func New(updater *services.UpdaterService, spec string, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		updater: updater,
		spec:    spec,
		logger:  logger,
	}
}

func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.logger.Info("Scheduled weather update starting")
		s.updater.UpdateAll(context.Background())
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("Scheduler started", zap.String("spec", s.spec))
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Scheduler stopped")
}
