// Package complaint implements the complaint lifecycle operations: filing
// with auto-assignment, manual assignment, resolution and feedback.
//
// Every operation receives the acting Actor explicitly and only touches
// entities of the actor's organization. Transitions are applied as
// conditional updates; a writer that loses a race gets an InvalidState (or
// AlreadyProvided) error instead of overwriting the winner.
package complaint

import (
	"context"
	"time"

	"actionflow/backend/internal/lifecycle"
	"actionflow/backend/internal/models"
	"actionflow/backend/internal/storage"

	"go.uber.org/zap"
)

// Notifier delivers notifications off the request path. Notify must not
// block on delivery and never reports failures to the caller.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification)
}

// Service handles the business logic for complaints.
type Service struct {
	Storage  storage.Storage
	Notifier Notifier
	Logger   *zap.Logger
	Now      func() time.Time
}

// NewService creates a new complaint service.
func NewService(s storage.Storage, n Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		Storage:  s,
		Notifier: n,
		Logger:   logger,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

// transition applies t to c through st and mirrors the result onto c. When
// the conditional update matches nothing the complaint is re-read so the
// caller learns why.
func (s *Service) transition(ctx context.Context, st storage.Storage, c *models.Complaint, t lifecycle.Transition, at time.Time) error {
	if err := t.Check(c); err != nil {
		return err
	}
	ok, err := st.ApplyTransition(ctx, c.ID, t, at)
	if err != nil {
		return err
	}
	if !ok {
		cur, err := st.GetComplaint(ctx, c.OrgID, c.ID)
		if err != nil {
			return err
		}
		if err := t.Check(cur); err != nil {
			return err
		}
		return t.Stale(cur)
	}
	t.Apply(c, at)
	return nil
}

func (s *Service) publish(ctx context.Context, typ models.EventType, c *models.Complaint, at time.Time) {
	if err := s.Storage.PublishEvent(ctx, models.NewComplaintEvent(typ, c, at)); err != nil {
		s.Logger.Warn("complaint event not published",
			zap.String("complaint_id", c.ComplaintID),
			zap.String("event", string(typ)),
			zap.Error(err))
	}
}

func (s *Service) notify(ctx context.Context, n models.Notification) {
	if s.Notifier == nil || n.Recipient == "" {
		return
	}
	s.Notifier.Notify(ctx, n)
}
