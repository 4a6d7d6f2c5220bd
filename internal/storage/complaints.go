package storage

import (
	"context"
	"time"

	"actionflow/backend/internal/apperr"
	"actionflow/backend/internal/lifecycle"
	"actionflow/backend/internal/models"

	"gorm.io/gorm"
)

// CreateComplaint inserts c inside a nested transaction, so a uniqueness
// conflict only rolls back to the savepoint and the caller can retry with a
// new complaint id.
func (s *Service) CreateComplaint(ctx context.Context, c *models.Complaint) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(c).Error
	})
	if err != nil {
		c.ID = 0
		return apperr.Infrastructure("create complaint", err)
	}
	return nil
}

func (s *Service) GetComplaint(ctx context.Context, orgID, id uint) (*models.Complaint, error) {
	var c models.Complaint
	if err := s.DB.WithContext(ctx).Where("org_id = ?", orgID).First(&c, id).Error; err != nil {
		return nil, notFound(err, "complaint")
	}
	return &c, nil
}

func (s *Service) GetComplaintByCode(ctx context.Context, orgID uint, complaintID string) (*models.Complaint, error) {
	var c models.Complaint
	err := s.DB.WithContext(ctx).
		Where("org_id = ? AND complaint_id = ?", orgID, complaintID).
		First(&c).Error
	if err != nil {
		return nil, notFound(err, "complaint")
	}
	return &c, nil
}

// ListComplaints повертає скарги, новіші першими
func (s *Service) ListComplaints(ctx context.Context, f ComplaintFilter) ([]models.Complaint, error) {
	q := s.DB.WithContext(ctx).Where("org_id = ?", f.OrgID)
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.ResolverID != 0 {
		q = q.Where("resolver_id = ?", f.ResolverID)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", statusStrings(f.Statuses))
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", string(f.Priority))
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var out []models.Complaint
	if err := q.Order("created_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, apperr.Infrastructure("list complaints", err)
	}
	return out, nil
}

func (s *Service) ListCategories(ctx context.Context, orgID uint) ([]string, error) {
	var cats []string
	err := s.DB.WithContext(ctx).Model(&models.Complaint{}).
		Where("org_id = ?", orgID).
		Distinct("category").
		Order("category").
		Pluck("category", &cats).Error
	if err != nil {
		return nil, apperr.Infrastructure("list categories", err)
	}
	return cats, nil
}

func (s *Service) CountComplaints(ctx context.Context, orgID uint) (models.ComplaintStats, error) {
	var stats models.ComplaintStats
	var rows []struct {
		Status string
		N      int64
	}
	err := s.DB.WithContext(ctx).Model(&models.Complaint{}).
		Select("status, COUNT(*) AS n").
		Where("org_id = ?", orgID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return stats, apperr.Infrastructure("count complaints", err)
	}
	for _, r := range rows {
		stats.Total += r.N
		switch models.ComplaintStatus(r.Status) {
		case models.StatusPending:
			stats.Pending = r.N
		case models.StatusInProgress:
			stats.InProgress = r.N
		case models.StatusResolved:
			stats.Resolved = r.N
		case models.StatusClosed:
			stats.Closed = r.N
		}
	}

	err = s.DB.WithContext(ctx).Model(&models.Complaint{}).
		Where("org_id = ? AND priority = ? AND status IN ?", orgID, string(models.PriorityHigh), statusStrings(models.OpenStatuses)).
		Count(&stats.OpenHighPriority).Error
	if err != nil {
		return stats, apperr.Infrastructure("count complaints", err)
	}
	return stats, nil
}

func (s *Service) ApplyTransition(ctx context.Context, id uint, t lifecycle.Transition, at time.Time) (bool, error) {
	q := s.DB.WithContext(ctx).Model(&models.Complaint{}).
		Where("id = ? AND status = ?", id, string(t.From))
	if t.RequireUnrated {
		q = q.Where("rating IS NULL")
	}
	res := q.Updates(t.Columns(at))
	if res.Error != nil {
		return false, apperr.Infrastructure(t.Name+" complaint", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *Service) ListStaleResolved(ctx context.Context, cutoff time.Time) ([]models.Complaint, error) {
	var out []models.Complaint
	err := s.DB.WithContext(ctx).
		Where("status = ? AND rating IS NULL", string(models.StatusResolved)).
		Where("updated_at IS NOT NULL AND updated_at <= ?", cutoff).
		Order("updated_at, id").
		Find(&out).Error
	if err != nil {
		return nil, apperr.Infrastructure("list stale complaints", err)
	}
	return out, nil
}

func statusStrings(in []models.ComplaintStatus) []string {
	out := make([]string, len(in))
	for i, st := range in {
		out[i] = string(st)
	}
	return out
}
