package app

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dkelsall/piefolio/internal/common"
	"github.com/dkelsall/piefolio/internal/interfaces"
)

// reloadTimeout bounds one catalogue reload; the instrument list is a single
// large response, so this is generous.
const reloadTimeout = 2 * time.Minute

// scheduler reloads the instrument catalogue on a cron schedule so that
// refresh cycles rarely pay the cost of a cold catalogue fetch.
type scheduler struct {
	cron      *cron.Cron
	portfolio interfaces.PortfolioService
	logger    *common.Logger
}

func newScheduler(spec string, portfolio interfaces.PortfolioService, logger *common.Logger) (*scheduler, error) {
	s := &scheduler{
		cron:      cron.New(),
		portfolio: portfolio,
		logger:    logger,
	}

	if _, err := s.cron.AddFunc(spec, s.reloadCatalogue); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *scheduler) start() {
	s.cron.Start()
	s.logger.Info().Msg("Catalogue scheduler started")
}

// stop halts the cron loop and waits for a running job to finish.
func (s *scheduler) stop() {
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Catalogue scheduler stopped")
}

func (s *scheduler) reloadCatalogue() {
	ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
	defer cancel()

	start := time.Now()
	// Empty userID selects the config-level broker key.
	if err := s.portfolio.ReloadCatalogue(ctx, ""); err != nil {
		s.logger.Warn().Err(err).Msg("Scheduled catalogue reload failed")
		return
	}

	s.logger.Info().Dur("elapsed", time.Since(start)).Msg("Scheduled catalogue reload complete")
}
