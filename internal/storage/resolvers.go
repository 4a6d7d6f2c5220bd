package storage

import (
	"context"
	"strings"

	"actionflow/backend/internal/apperr"
	"actionflow/backend/internal/models"

	"gorm.io/gorm/clause"
)

func (s *Service) CreateResolver(ctx context.Context, r *models.Resolver) error {
	if err := s.DB.WithContext(ctx).Create(r).Error; err != nil {
		return apperr.Infrastructure("create resolver", err)
	}
	return nil
}

func (s *Service) GetResolver(ctx context.Context, orgID, id uint) (*models.Resolver, error) {
	var r models.Resolver
	if err := s.DB.WithContext(ctx).Where("org_id = ?", orgID).First(&r, id).Error; err != nil {
		return nil, notFound(err, "resolver")
	}
	return &r, nil
}

func (s *Service) ListResolvers(ctx context.Context, orgID uint) ([]models.Resolver, error) {
	var out []models.Resolver
	err := s.DB.WithContext(ctx).Where("org_id = ?", orgID).Order("id ASC").Find(&out).Error
	if err != nil {
		return nil, apperr.Infrastructure("list resolvers", err)
	}
	return out, nil
}

// ListActiveResolvers returns candidates in ascending id order; the
// assignment tie-break depends on it.
func (s *Service) ListActiveResolvers(ctx context.Context, orgID uint, category string) ([]models.Resolver, error) {
	q := s.DB.WithContext(ctx).
		Where("org_id = ? AND status = ?", orgID, string(models.ResolverActive))
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var out []models.Resolver
	if err := q.Order("id ASC").Find(&out).Error; err != nil {
		return nil, apperr.Infrastructure("list resolvers", err)
	}
	return out, nil
}

// UpdateResolver writes the name, email and category of r, scoped to
// r.OrgID.
func (s *Service) UpdateResolver(ctx context.Context, r *models.Resolver) error {
	res := s.DB.WithContext(ctx).Model(&models.Resolver{}).
		Where("id = ? AND org_id = ?", r.ID, r.OrgID).
		Updates(map[string]interface{}{
			"name":     r.Name,
			"email":    r.Email,
			"category": r.Category,
		})
	if res.Error != nil {
		return apperr.Infrastructure("update resolver", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := s.GetResolver(ctx, r.OrgID, r.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) SetResolverStatus(ctx context.Context, orgID, id uint, status models.ResolverStatus) error {
	res := s.DB.WithContext(ctx).Model(&models.Resolver{}).
		Where("id = ? AND org_id = ?", id, orgID).
		Update("status", string(status))
	if res.Error != nil {
		return apperr.Infrastructure("update resolver", res.Error)
	}
	if res.RowsAffected == 0 {
		// same status is not a miss
		if _, err := s.GetResolver(ctx, orgID, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) CountOpenWorkload(ctx context.Context, resolverIDs []uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(resolverIDs))
	if len(resolverIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		ResolverID uint
		N          int64
	}
	err := s.DB.WithContext(ctx).Model(&models.Complaint{}).
		Select("resolver_id, COUNT(*) AS n").
		Where("resolver_id IN ? AND status IN ?", resolverIDs, statusStrings(models.OpenStatuses)).
		Group("resolver_id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Infrastructure("count workload", err)
	}
	for _, r := range rows {
		out[r.ResolverID] = r.N
	}
	return out, nil
}

// LockResolver takes SELECT ... FOR UPDATE on the resolver row. Outside a
// transaction the lock is released immediately.
func (s *Service) LockResolver(ctx context.Context, resolverID uint) error {
	var r models.Resolver
	err := s.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&r, resolverID).Error
	if err != nil {
		return notFound(err, "resolver")
	}
	return nil
}

func (s *Service) ListResolverRatings(ctx context.Context, resolverID, excludeID uint) ([]int, error) {
	var ratings []int
	err := s.DB.WithContext(ctx).Model(&models.Complaint{}).
		Where("resolver_id = ? AND status = ? AND rating IS NOT NULL AND id <> ?",
			resolverID, string(models.StatusClosed), excludeID).
		Order("id").
		Pluck("rating", &ratings).Error
	if err != nil {
		return nil, apperr.Infrastructure("list resolver ratings", err)
	}
	return ratings, nil
}

func (s *Service) SetResolverRating(ctx context.Context, resolverID uint, rating float64) error {
	err := s.DB.WithContext(ctx).Model(&models.Resolver{}).
		Where("id = ?", resolverID).
		Update("rating", rating).Error
	if err != nil {
		return apperr.Infrastructure("update resolver rating", err)
	}
	return nil
}

func (s *Service) EmailInUse(ctx context.Context, orgID uint, email string) (bool, error) {
	return s.EmailInUseExcept(ctx, orgID, email, 0)
}

func (s *Service) EmailInUseExcept(ctx context.Context, orgID uint, email string, resolverID uint) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, m := range []interface{}{&models.Resolver{}, &models.User{}, &models.Admin{}} {
		var n int64
		q := s.DB.WithContext(ctx).Model(m).
			Where("org_id = ? AND LOWER(email) = ?", orgID, email)
		if _, ok := m.(*models.Resolver); ok && resolverID != 0 {
			q = q.Where("id <> ?", resolverID)
		}
		if err := q.Count(&n).Error; err != nil {
			return false, apperr.Infrastructure("check email", err)
		}
		if n > 0 {
			return true, nil
		}
	}
	return false, nil
}
