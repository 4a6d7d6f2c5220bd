package complaint

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"actionflow/backend/internal/apperr"
	"actionflow/backend/internal/assignment"
	"actionflow/backend/internal/config"
	"actionflow/backend/internal/ids"
	"actionflow/backend/internal/lifecycle"
	"actionflow/backend/internal/models"
	"actionflow/backend/internal/storage"

	"go.uber.org/zap"
)

type FileRequest struct {
	Category string
	// OtherCategory replaces Category when Category is "other".
	OtherCategory string
	Description   string
	Priority      string
	// ImagePath is the stored complaint image, empty when none was uploaded.
	ImagePath string
}

// NormalizePriority lower-cases p; empty means medium.
func NormalizePriority(p string) (models.Priority, error) {
	p = strings.ToLower(strings.TrimSpace(p))
	if p == "" {
		return config.DefaultPriority, nil
	}
	if !models.Priority(p).Valid() {
		return "", apperr.Validation("invalid priority %q", p)
	}
	return models.Priority(p), nil
}

// NormalizeCategory expands "other" into the free-text category. The result
// is at most config.MaxCategoryLength characters.
func NormalizeCategory(category, other string) (string, error) {
	category = strings.TrimSpace(category)
	if strings.EqualFold(category, config.OtherCategory) {
		if other = strings.TrimSpace(other); other != "" {
			category = other
		}
	}
	if category == "" {
		return "", apperr.Validation("category is required")
	}
	if utf8.RuneCountInString(category) > config.MaxCategoryLength {
		return "", apperr.Validation("category is longer than %d characters", config.MaxCategoryLength)
	}
	return category, nil
}

// FileComplaint records a new complaint for the acting user. A high-priority
// complaint is assigned to the least-loaded active resolver of its category
// in the same transaction; without one it stays pending.
func (s *Service) FileComplaint(ctx context.Context, actor models.Actor, req FileRequest) (*models.Complaint, error) {
	if !actor.IsUser() {
		return nil, apperr.Unauthorized()
	}
	category, err := NormalizeCategory(req.Category, req.OtherCategory)
	if err != nil {
		return nil, err
	}
	priority, err := NormalizePriority(req.Priority)
	if err != nil {
		return nil, err
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, apperr.Validation("description is required")
	}

	user, err := s.Storage.GetUser(ctx, actor.OrgID, actor.SubjectID)
	if err != nil {
		return nil, err
	}
	if user.Status == models.UserInactive {
		return nil, apperr.Unauthorized()
	}
	org, err := s.Storage.GetOrganization(ctx, actor.OrgID)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	c := &models.Complaint{
		OrgID:          actor.OrgID,
		UserID:         actor.SubjectID,
		Category:       category,
		Description:    description,
		Priority:       priority,
		Status:         models.StatusPending,
		ComplaintImage: req.ImagePath,
		CreatedAt:      now,
	}
	var assigned *models.Resolver

	err = s.Storage.Transaction(ctx, func(tx storage.Storage) error {
		_, err := ids.Generate(config.IDGenerationAttempts,
			func() string { return ids.NewComplaintID(org.OrgUniqueID) },
			func(id string) error {
				c.ComplaintID = id
				return tx.CreateComplaint(ctx, c)
			},
			storage.IsConflict)
		if errors.Is(err, ids.ErrExhausted) {
			return apperr.Infrastructure("generate complaint id", err)
		}
		if err != nil {
			return err
		}

		if !assignment.ShouldAutoAssign(priority) {
			return nil
		}
		r, err := assignment.SelectResolver(ctx, tx, actor.OrgID, category)
		if err != nil || r == nil {
			return err
		}
		t, err := lifecycle.Assign(r.ID)
		if err != nil {
			return err
		}
		if err := s.transition(ctx, tx, c, t, now); err != nil {
			return err
		}
		assigned = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, models.EventFiled, c, now)
	if assigned != nil {
		s.Logger.Info("complaint auto-assigned",
			zap.String("complaint_id", c.ComplaintID),
			zap.Uint("resolver_id", assigned.ID),
			zap.String("category", category))
		s.publish(ctx, models.EventAssigned, c, now)
		s.notifyAutoAssigned(ctx, org, c, assigned)
	}
	return c, nil
}

func (s *Service) notifyAutoAssigned(ctx context.Context, org *models.Organization, c *models.Complaint, r *models.Resolver) {
	admin, err := s.Storage.GetPrimaryAdmin(ctx, org.ID)
	if err != nil {
		s.Logger.Warn("primary admin lookup failed", zap.Uint("org_id", org.ID), zap.Error(err))
		return
	}
	if admin == nil {
		return
	}
	s.notify(ctx, models.Notification{
		Recipient: admin.Email,
		Kind:      models.NotifyAutoAssigned,
		Payload: map[string]string{
			"complaint_id":  c.ComplaintID,
			"resolver_name": r.Name,
			"category":      c.Category,
			"org_name":      org.OrgName,
		},
	})
}
