package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"example.com/pos-scanner/internal/usecase/report"
)

type Reporter interface {
	DailySummary(ctx context.Context, day time.Time) (report.DailySummary, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	reporter Reporter
	now      func() time.Time
	logger   *zap.Logger
}

func NewScheduler(schedule string, reporter Reporter, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:     cron.New(),
		schedule: schedule,
		reporter: reporter,
		now:      time.Now,
		logger:   logger,
	}
}

// Start registers the daily sales summary and starts the cron runner.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("report_cron", s.schedule))

	if _, err := s.cron.AddFunc(s.schedule, s.logDailySummary); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) logDailySummary() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	summary, err := s.reporter.DailySummary(ctx, s.now())
	if err != nil {
		s.logger.Error("failed to build daily sales summary", zap.Error(err))
		return
	}

	s.logger.Info("daily sales summary",
		zap.String("day", summary.Day.Format("2006-01-02")),
		zap.Int("orders", summary.OrderCount),
		zap.Int64("items", summary.ItemCount),
		zap.String("revenue", summary.Revenue.StringFixed(2)),
	)
}
