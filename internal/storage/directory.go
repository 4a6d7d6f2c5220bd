package storage

import (
	"context"
	"errors"

	"actionflow/backend/internal/apperr"
	"actionflow/backend/internal/models"

	"gorm.io/gorm"
)

// CreateOrganization inserts o in a nested transaction; see CreateComplaint.
func (s *Service) CreateOrganization(ctx context.Context, o *models.Organization) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(o).Error
	})
	if err != nil {
		o.ID = 0
		return apperr.Infrastructure("create organization", err)
	}
	return nil
}

func (s *Service) GetOrganization(ctx context.Context, id uint) (*models.Organization, error) {
	var o models.Organization
	if err := s.DB.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, notFound(err, "organization")
	}
	return &o, nil
}

func (s *Service) GetOrganizationByCode(ctx context.Context, orgUniqueID string) (*models.Organization, error) {
	var o models.Organization
	if err := s.DB.WithContext(ctx).Where("org_unique_id = ?", orgUniqueID).First(&o).Error; err != nil {
		return nil, notFound(err, "organization")
	}
	return &o, nil
}

func (s *Service) CreateAdmin(ctx context.Context, a *models.Admin) error {
	if err := s.DB.WithContext(ctx).Create(a).Error; err != nil {
		return apperr.Infrastructure("create admin", err)
	}
	return nil
}

func (s *Service) CreateUser(ctx context.Context, u *models.User) error {
	if err := s.DB.WithContext(ctx).Create(u).Error; err != nil {
		return apperr.Infrastructure("create user", err)
	}
	return nil
}

func (s *Service) GetUser(ctx context.Context, orgID, id uint) (*models.User, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).Where("org_id = ?", orgID).First(&u, id).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &u, nil
}

// ListUsers returns the organization's users, newest first.
func (s *Service) ListUsers(ctx context.Context, orgID uint) ([]models.User, error) {
	var out []models.User
	err := s.DB.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	if err != nil {
		return nil, apperr.Infrastructure("list users", err)
	}
	return out, nil
}

func (s *Service) SetUserStatus(ctx context.Context, orgID, id uint, status models.UserStatus) error {
	res := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND org_id = ?", id, orgID).
		Update("status", string(status))
	if res.Error != nil {
		return apperr.Infrastructure("update user", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := s.GetUser(ctx, orgID, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) GetAdmin(ctx context.Context, orgID, id uint) (*models.Admin, error) {
	var a models.Admin
	if err := s.DB.WithContext(ctx).Where("org_id = ?", orgID).First(&a, id).Error; err != nil {
		return nil, notFound(err, "admin")
	}
	return &a, nil
}

func (s *Service) GetPrimaryAdmin(ctx context.Context, orgID uint) (*models.Admin, error) {
	var a models.Admin
	err := s.DB.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("created_at ASC, id ASC").
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Infrastructure("load primary admin", err)
	}
	return &a, nil
}
