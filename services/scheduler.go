package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// MaturityScheduler runs the maturity sweep on a cron spec such as "@every 1h".
type MaturityScheduler struct {
	cron        *cron.Cron
	investments *InvestmentService
	log         *logrus.Logger
}

func NewMaturityScheduler(spec string, investments *InvestmentService, log *logrus.Logger) (*MaturityScheduler, error) {
	s := &MaturityScheduler{
		cron:        cron.New(),
		investments: investments,
		log:         log,
	}
	if _, err := s.cron.AddFunc(spec, s.Sweep); err != nil {
		return nil, err
	}
	return s, nil
}

// Sweep marks matured investments once.
func (s *MaturityScheduler) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := s.investments.MarkMatured(ctx, time.Now()); err != nil {
		s.log.WithError(err).Error("maturity sweep failed")
	}
}

func (s *MaturityScheduler) Start() {
	s.cron.Start()
}

// Stop waits for a running sweep to finish.
func (s *MaturityScheduler) Stop() {
	<-s.cron.Stop().Done()
}
