package complaint

import (
	"context"

	"actionflow/backend/internal/apperr"
	"actionflow/backend/internal/lifecycle"
	"actionflow/backend/internal/models"
	"actionflow/backend/internal/rating"
	"actionflow/backend/internal/storage"

	"go.uber.org/zap"
)

// Assign hands a pending complaint to an active resolver of the admin's
// organization. Re-assignment is rejected.
func (s *Service) Assign(ctx context.Context, actor models.Actor, complaintID, resolverID uint) (*models.Complaint, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Unauthorized()
	}
	t, err := lifecycle.Assign(resolverID)
	if err != nil {
		return nil, err
	}

	c, err := s.Storage.GetComplaint(ctx, actor.OrgID, complaintID)
	if err != nil {
		return nil, err
	}
	r, err := s.Storage.GetResolver(ctx, actor.OrgID, resolverID)
	if err != nil {
		return nil, err
	}
	if r.Status != models.ResolverActive {
		return nil, apperr.Validation("resolver %s is not active", r.Name)
	}

	at := s.Now()
	if err := s.transition(ctx, s.Storage, c, t, at); err != nil {
		return nil, err
	}
	s.publish(ctx, t.EventType(), c, at)
	return c, nil
}

// Resolve marks an in-progress complaint resolved. proofImage is the path of
// an already stored image; the caller removes it when Resolve fails.
func (s *Service) Resolve(ctx context.Context, actor models.Actor, complaintID uint, note, proofImage string) (*models.Complaint, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Unauthorized()
	}
	t, err := lifecycle.Resolve(note, proofImage)
	if err != nil {
		return nil, err
	}

	c, err := s.Storage.GetComplaint(ctx, actor.OrgID, complaintID)
	if err != nil {
		return nil, err
	}

	at := s.Now()
	if err := s.transition(ctx, s.Storage, c, t, at); err != nil {
		return nil, err
	}
	s.publish(ctx, t.EventType(), c, at)
	s.notifyResolved(ctx, actor, c)
	return c, nil
}

func (s *Service) notifyResolved(ctx context.Context, actor models.Actor, c *models.Complaint) {
	user, err := s.Storage.GetUser(ctx, c.OrgID, c.UserID)
	if err != nil {
		s.Logger.Warn("filer lookup failed", zap.String("complaint_id", c.ComplaintID), zap.Error(err))
		return
	}
	resolvedBy := "your administrator"
	if admin, err := s.Storage.GetAdmin(ctx, actor.OrgID, actor.SubjectID); err == nil {
		resolvedBy = admin.FullName
	}
	s.notify(ctx, models.Notification{
		Recipient: user.Email,
		Kind:      models.NotifyComplaintResolved,
		Payload: map[string]string{
			"complaint_id": c.ComplaintID,
			"resolved_by":  resolvedBy,
		},
	})
}

// SubmitFeedback closes a resolved complaint with the filer's rating and
// recomputes the resolver's rating in the same transaction. Feedback is
// accepted once.
func (s *Service) SubmitFeedback(ctx context.Context, actor models.Actor, complaintID uint, score int, comment string) (*models.Complaint, error) {
	if !actor.IsUser() {
		return nil, apperr.Unauthorized()
	}
	t, err := lifecycle.Feedback(score, comment)
	if err != nil {
		return nil, err
	}

	c, err := s.Storage.GetComplaint(ctx, actor.OrgID, complaintID)
	if err != nil {
		return nil, err
	}
	if c.UserID != actor.SubjectID {
		return nil, apperr.Unauthorized()
	}

	at := s.Now()
	err = s.Storage.Transaction(ctx, func(tx storage.Storage) error {
		if err := s.transition(ctx, tx, c, t, at); err != nil {
			return err
		}
		if c.ResolverID == nil {
			return nil
		}
		_, err := rating.Recompute(ctx, tx, *c.ResolverID, c.ID, score)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, t.EventType(), c, at)
	return c, nil
}
