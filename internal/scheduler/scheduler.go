package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ykvlv/pr-reminder-bot/internal/clock"
	"github.com/ykvlv/pr-reminder-bot/internal/domain"
)

// Scheduler fires once a day at a fixed local wall-clock time.
// It does no work itself: fire instants are delivered on C so the app loop
// can run reconciliation on the same goroutine that handles messages.
type Scheduler struct {
	log   *zap.Logger
	clock clock.Clock
	loc   *time.Location
	at    int // minutes from midnight
	fires chan time.Time
}

// New creates a Scheduler firing every day at minuteOfDay in loc.
func New(log *zap.Logger, clk clock.Clock, loc *time.Location, minuteOfDay int) *Scheduler {
	return &Scheduler{
		log:   log,
		clock: clk,
		loc:   loc,
		at:    minuteOfDay,
		fires: make(chan time.Time),
	}
}

// C delivers the scheduled instant each time the daily timer fires.
func (s *Scheduler) C() <-chan time.Time {
	return s.fires
}

// Next returns the next fire time after now.
func (s *Scheduler) Next() time.Time {
	return domain.NextDailyRun(s.clock.Now(), s.loc, s.at)
}

// Run starts the loop until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	next := s.Next()
	for {
		wait := next.Sub(s.clock.Now())
		if wait < 0 {
			wait = 0
		}
		s.log.Info("next reconciliation scheduled",
			zap.Time("at", next),
			zap.Duration("in", wait),
		)

		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping")
			return
		case <-s.clock.After(wait):
		}

		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping")
			return
		case s.fires <- next:
		}

		// Never fire the same slot twice, even if the timer woke up early.
		from := s.clock.Now()
		if from.Before(next) {
			from = next
		}
		next = domain.NextDailyRun(from, s.loc, s.at)
	}
}
