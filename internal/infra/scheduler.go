package infra

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"tradedesk/internal/realtime"
	"tradedesk/internal/usecase"
)

// Scheduler runs the periodic mark-to-market job: every minute the
// unrealized P&L of all open trades is recomputed against the relay's
// last-price cache and the resulting wallet deltas are pushed out.
type Scheduler struct {
	cron   *cron.Cron
	ledger *usecase.LedgerService
	prices *realtime.PriceCache
	logger *zap.Logger
}

// NewScheduler creates a new Scheduler
func NewScheduler(ledger *usecase.LedgerService, prices *realtime.PriceCache, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		ledger: ledger,
		prices: prices,
		logger: logger,
	}
}

// Start registers the jobs and starts the scheduler
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("*/1 * * * *", func() {
		ctx := context.Background()
		if err := s.ledger.MarkToMarket(ctx, s.prices.Snapshot()); err != nil {
			s.logger.Error("mark-to-market run failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("mark_to_market", "*/1 * * * *"))
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
}
