package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/ut4master/internal/auth/store"
	"github.com/aussiebroadwan/ut4master/pkg/slogx"
)

// DefaultHousekeepingInterval is used when no positive interval is given.
const DefaultHousekeepingInterval = time.Hour

// HousekeepingService removes codes past their expiry and sessions whose
// refresh token has expired. Neither can be redeemed again, so a sweep only
// bounds table growth and never changes what a caller observes.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration
	Clock    Clock

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewHousekeepingService(st store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = DefaultHousekeepingInterval
	}
	return &HousekeepingService{Store: st, Logger: logger, Interval: interval}
}

// Start sweeps once right away and then every Interval until Stop.
func (s *HousekeepingService) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop(ctx)
	}()
	s.Logger.Info("housekeeping started", slog.Duration("interval", s.Interval))
}

// Stop cancels the loop and waits for an in-flight sweep to return.
func (s *HousekeepingService) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.wg.Wait()
	s.Logger.Info("housekeeping stopped")
}

func (s *HousekeepingService) loop(ctx context.Context) {
	t := time.NewTicker(s.Interval)
	defer t.Stop()

	for {
		s.Sweep(ctx)
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

// Sweep runs one pass over both tables. A failure on one does not skip the
// other; the counts are zero for a table that failed.
func (s *HousekeepingService) Sweep(ctx context.Context) (codes, sessions int64) {
	now := s.Clock.Now()
	sweep := func(kind string, del func(context.Context, time.Time) (int64, error)) int64 {
		n, err := del(ctx, now)
		if err != nil {
			if ctx.Err() == nil {
				slogx.LogError(s.Logger, "housekeeping sweep failed", err, slog.String("table", kind))
			}
			return 0
		}
		housekeepingDeletedTotal.WithLabelValues(kind).Add(float64(n))
		return n
	}

	codes = sweep("code", s.Store.Codes().DeleteExpiredCodes)
	sessions = sweep("session", s.Store.Sessions().DeleteExpiredSessions)

	if codes > 0 || sessions > 0 {
		s.Logger.Info("housekeeping removed expired rows",
			slog.Int64("codes", codes),
			slog.Int64("sessions", sessions),
		)
	}
	return codes, sessions
}
