package account

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ChallengeSweeper periodically removes consumed and expired otp challenges.
// The collection's TTL index catches anything the sweeper misses, an hour
// later.
type ChallengeSweeper struct {
	otpService OtpService
	interval   time.Duration
	logger     zerolog.Logger

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewChallengeSweeper(otpService OtpService, interval time.Duration, logger zerolog.Logger) *ChallengeSweeper {
	if interval <= 0 {
		interval = ChallengeSweepInterval
	}

	return &ChallengeSweeper{
		otpService: otpService,
		interval:   interval,
		logger:     logger,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start launches the sweep loop. It runs one sweep immediately, then one per
// interval until Stop is called or the context is cancelled.
func (s *ChallengeSweeper) Start(ctx context.Context) {
	go func() {
		defer close(s.done)

		s.sweep(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.sweep(ctx)
			case <-s.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts the loop and waits for an in-flight sweep to finish.
func (s *ChallengeSweeper) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	<-s.done
}

func (s *ChallengeSweeper) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	deleted, err := s.otpService.Sweep(sweepCtx)
	if err != nil {
		s.logger.Error().Err(err).Msg("otp challenge sweep failed")
		return
	}

	if deleted > 0 {
		s.logger.Info().Int64("deleted", deleted).Msg("swept otp challenges")
	}
}
