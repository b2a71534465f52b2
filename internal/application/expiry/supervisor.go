package expiry

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/snapmatch/snapmatch/internal/application/broker"
	"github.com/snapmatch/snapmatch/internal/domain/request"
)

// Supervisor periodically cancels requests left PENDING past the expiry
// threshold. Cancellation runs through the broker as the system actor, so
// the state machine's own guards make a request that was accepted moments
// earlier a benign no-op rather than a failure.
type Supervisor struct {
	requests  request.Repository
	broker    *broker.Service
	interval  time.Duration
	threshold time.Duration
	limit     int
	logger    zerolog.Logger
}

// NewSupervisor creates an expiry supervisor.
func NewSupervisor(
	requests request.Repository,
	brokerSvc *broker.Service,
	interval time.Duration,
	threshold time.Duration,
	limit int,
	logger zerolog.Logger,
) *Supervisor {
	if limit <= 0 {
		limit = 100
	}
	return &Supervisor{
		requests:  requests,
		broker:    brokerSvc,
		interval:  interval,
		threshold: threshold,
		limit:     limit,
		logger:    logger.With().Str("service", "expiry").Logger(),
	}
}

// Run sweeps on a fixed interval until the context ends.
func (s *Supervisor) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("expiry sweep failed")
			}
		}
	}
}

// Sweep cancels stale pending requests and returns how many it cancelled.
func (s *Supervisor) Sweep(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-s.threshold)
	stale, err := s.requests.ListExpiredPending(ctx, cutoff, s.limit)
	if err != nil {
		return 0, err
	}
	cancelled := 0
	for _, req := range stale {
		if _, err := s.broker.Cancel(ctx, req.RequestID, broker.System); err != nil {
			if errors.Is(err, request.ErrInvalidState) || errors.Is(err, request.ErrNotFound) {
				// The request left PENDING between the scan and the cancel.
				s.logger.Debug().
					Str("request_id", req.RequestID.String()).
					Msg("request resolved before expiry cancel")
				continue
			}
			s.logger.Warn().Err(err).
				Str("request_id", req.RequestID.String()).
				Msg("failed to cancel expired request")
			continue
		}
		cancelled++
	}
	return cancelled, nil
}
