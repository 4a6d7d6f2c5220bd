// Package organization registers tenants.
package organization

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"actionflow/backend/internal/apperr"
	"actionflow/backend/internal/config"
	"actionflow/backend/internal/ids"
	"actionflow/backend/internal/models"
	"actionflow/backend/internal/storage"

	"go.uber.org/zap"
)

type Notifier interface {
	Notify(ctx context.Context, n models.Notification)
}

// Registration describes a new organization and, optionally, its first
// admin.
type Registration struct {
	OrgName      string
	Category     string
	Website      string
	ContactEmail string
	Phone        string
	Address      string

	AdminName  string
	AdminEmail string
}

type Registrar struct {
	Storage  storage.Storage
	Notifier Notifier
	Logger   *zap.Logger
	NewID    func() string
}

func NewRegistrar(s storage.Storage, n Notifier, logger *zap.Logger) *Registrar {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registrar{Storage: s, Notifier: n, Logger: logger, NewID: ids.NewOrganizationID}
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func (r Registration) normalize() (Registration, error) {
	r.OrgName = strings.TrimSpace(r.OrgName)
	r.Category = strings.TrimSpace(r.Category)
	r.ContactEmail = strings.ToLower(strings.TrimSpace(r.ContactEmail))
	r.AdminName = strings.TrimSpace(r.AdminName)
	r.AdminEmail = strings.ToLower(strings.TrimSpace(r.AdminEmail))

	if r.OrgName == "" || r.Category == "" || r.ContactEmail == "" {
		return r, apperr.Validation("organization name, category and contact email are required")
	}
	if !validEmail(r.ContactEmail) {
		return r, apperr.Validation("invalid contact email %q", r.ContactEmail)
	}
	if (r.AdminName == "") != (r.AdminEmail == "") {
		return r, apperr.Validation("admin name and admin email go together")
	}
	if r.AdminEmail != "" && !validEmail(r.AdminEmail) {
		return r, apperr.Validation("invalid admin email %q", r.AdminEmail)
	}
	return r, nil
}

// Register creates the organization under a fresh ORG-XXXXXXXX id, retrying
// on id collisions, and sends the registration notice to the contact email
// once committed.
func (g *Registrar) Register(ctx context.Context, req Registration) (*models.Organization, *models.Admin, error) {
	req, err := req.normalize()
	if err != nil {
		return nil, nil, err
	}

	org := &models.Organization{
		OrgName:      req.OrgName,
		Category:     req.Category,
		Website:      strings.TrimSpace(req.Website),
		ContactEmail: req.ContactEmail,
		Phone:        strings.TrimSpace(req.Phone),
		Address:      strings.TrimSpace(req.Address),
		Status:       "active",
	}
	var admin *models.Admin

	err = g.Storage.Transaction(ctx, func(tx storage.Storage) error {
		_, err := ids.Generate(config.IDGenerationAttempts, g.NewID,
			func(id string) error {
				org.OrgUniqueID = id
				return tx.CreateOrganization(ctx, org)
			},
			storage.IsConflict)
		if errors.Is(err, ids.ErrExhausted) {
			return apperr.Infrastructure("generate organization id", err)
		}
		if err != nil {
			return err
		}

		if req.AdminEmail == "" {
			return nil
		}
		admin = &models.Admin{OrgID: org.ID, FullName: req.AdminName, Email: req.AdminEmail}
		if err := tx.CreateAdmin(ctx, admin); err != nil {
			if storage.IsConflict(err) {
				return apperr.Validation("email %s is already registered", req.AdminEmail)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	g.Logger.Info("organization registered",
		zap.String("org_unique_id", org.OrgUniqueID),
		zap.Uint("org_id", org.ID))

	if g.Notifier != nil {
		g.Notifier.Notify(ctx, models.Notification{
			Recipient: org.ContactEmail,
			Kind:      models.NotifyOrganizationRegistered,
			Payload: map[string]string{
				"org_name":      org.OrgName,
				"org_unique_id": org.OrgUniqueID,
			},
		})
	}
	return org, admin, nil
}
