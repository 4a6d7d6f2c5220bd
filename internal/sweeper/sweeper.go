// Package sweeper closes resolved complaints whose filer never left feedback.
package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"actionflow/backend/internal/config"
	"actionflow/backend/internal/lifecycle"
	"actionflow/backend/internal/models"

	"go.uber.org/zap"
)

// ErrGracePeriodUnset is returned by RunOnce when no grace period is
// configured. The sweep never falls back to zero.
var ErrGracePeriodUnset = errors.New("sweeper: auto-close grace period is not configured")

type Storage interface {
	ListStaleResolved(ctx context.Context, cutoff time.Time) ([]models.Complaint, error)
	ApplyTransition(ctx context.Context, id uint, t lifecycle.Transition, at time.Time) (bool, error)
	PublishEvent(ctx context.Context, ev models.ComplaintEvent) error
}

// Sweeper runs the auto-close pass on a fixed interval.
type Sweeper struct {
	Storage  Storage
	Logger   *zap.Logger
	Grace    time.Duration
	Interval time.Duration
	Now      func() time.Time

	stopCh   chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func New(s Storage, logger *zap.Logger, grace, interval time.Duration) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = config.DefaultAutoCloseInterval
	}
	return &Sweeper{
		Storage:  s,
		Logger:   logger,
		Grace:    grace,
		Interval: interval,
		Now:      func() time.Time { return time.Now().UTC() },
		stopCh:   make(chan struct{}),
	}
}

// Start runs one sweep right away and then one per interval until ctx is
// done or Stop is called.
func (s *Sweeper) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.run(ctx)
	s.Logger.Info("auto-close sweeper started",
		zap.Duration("interval", s.Interval),
		zap.Duration("grace", s.Grace))
}

// Stop waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
	s.Logger.Info("auto-close sweeper stopped")
}

func (s *Sweeper) run(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ticker.C:
			s.tick(ctx)
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Sweeper) tick(ctx context.Context) {
	// errors are already logged by RunOnce
	_, _ = s.RunOnce(ctx, s.Now(), s.Grace)
}

// RunOnce closes every resolved complaint last updated at or before
// now-grace. Each complaint is committed on its own, so one failing row does
// not hold back the rest; failures are joined into the returned error. A
// complaint that changed concurrently is skipped.
func (s *Sweeper) RunOnce(ctx context.Context, now time.Time, grace time.Duration) (int, error) {
	if grace <= 0 {
		s.Logger.Warn("auto-close sweep skipped: AUTO_CLOSE_AFTER is not set")
		return 0, ErrGracePeriodUnset
	}
	cutoff := now.Add(-grace)
	s.Logger.Debug("auto-close sweep started", zap.Time("cutoff", cutoff))

	stale, err := s.Storage.ListStaleResolved(ctx, cutoff)
	if err != nil {
		s.Logger.Error("auto-close sweep failed", zap.Error(err))
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}

	t := lifecycle.AutoClose()
	closed := 0
	var errs []error
	for i := range stale {
		c := &stale[i]
		ok, err := s.Storage.ApplyTransition(ctx, c.ID, t, now)
		if err != nil {
			errs = append(errs, fmt.Errorf("complaint %s: %w", c.ComplaintID, err))
			continue
		}
		if !ok {
			s.Logger.Debug("complaint changed during sweep", zap.String("complaint_id", c.ComplaintID))
			continue
		}
		closed++
		t.Apply(c, now)
		if err := s.Storage.PublishEvent(ctx, models.NewComplaintEvent(t.EventType(), c, now)); err != nil {
			s.Logger.Warn("complaint event not published", zap.String("complaint_id", c.ComplaintID), zap.Error(err))
		}
	}

	err = errors.Join(errs...)
	if err != nil {
		s.Logger.Error("auto-close sweep finished with errors",
			zap.Int("closed", closed),
			zap.Int("failed", len(errs)),
			zap.Error(err))
	} else {
		s.Logger.Info("auto-close sweep finished", zap.Int("closed", closed))
	}
	return closed, err
}
