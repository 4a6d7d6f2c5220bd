package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"actionflow/backend/internal/apperr"
	"actionflow/backend/internal/config"
	"actionflow/backend/internal/lifecycle"
	"actionflow/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Storage is the persistence port of the complaint core. Every lookup is
// scoped by organization; an entity of another organization is reported as
// not found.
type Storage interface {
	// Transaction runs fn against a store bound to one database transaction.
	Transaction(ctx context.Context, fn func(tx Storage) error) error

	CreateComplaint(ctx context.Context, c *models.Complaint) error
	GetComplaint(ctx context.Context, orgID, id uint) (*models.Complaint, error)
	GetComplaintByCode(ctx context.Context, orgID uint, complaintID string) (*models.Complaint, error)
	ListComplaints(ctx context.Context, f ComplaintFilter) ([]models.Complaint, error)
	ListCategories(ctx context.Context, orgID uint) ([]string, error)
	CountComplaints(ctx context.Context, orgID uint) (models.ComplaintStats, error)
	// ApplyTransition writes t as one conditional update guarded by t.From
	// (and an unset rating when t requires it). It reports whether the row
	// matched.
	ApplyTransition(ctx context.Context, id uint, t lifecycle.Transition, at time.Time) (bool, error)
	// ListStaleResolved returns resolved, unrated complaints last updated at
	// or before cutoff, oldest first.
	ListStaleResolved(ctx context.Context, cutoff time.Time) ([]models.Complaint, error)

	CreateResolver(ctx context.Context, r *models.Resolver) error
	GetResolver(ctx context.Context, orgID, id uint) (*models.Resolver, error)
	ListResolvers(ctx context.Context, orgID uint) ([]models.Resolver, error)
	ListActiveResolvers(ctx context.Context, orgID uint, category string) ([]models.Resolver, error)
	UpdateResolver(ctx context.Context, r *models.Resolver) error
	SetResolverStatus(ctx context.Context, orgID, id uint, status models.ResolverStatus) error
	CountOpenWorkload(ctx context.Context, resolverIDs []uint) (map[uint]int64, error)
	LockResolver(ctx context.Context, resolverID uint) error
	ListResolverRatings(ctx context.Context, resolverID, excludeID uint) ([]int, error)
	SetResolverRating(ctx context.Context, resolverID uint, rating float64) error
	// EmailInUse reports whether email belongs to a resolver, user or admin
	// of the organization.
	EmailInUse(ctx context.Context, orgID uint, email string) (bool, error)
	// EmailInUseExcept is EmailInUse ignoring the resolver with resolverID.
	EmailInUseExcept(ctx context.Context, orgID uint, email string, resolverID uint) (bool, error)

	CreateOrganization(ctx context.Context, o *models.Organization) error
	GetOrganization(ctx context.Context, id uint) (*models.Organization, error)
	GetOrganizationByCode(ctx context.Context, orgUniqueID string) (*models.Organization, error)
	CreateAdmin(ctx context.Context, a *models.Admin) error
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, orgID, id uint) (*models.User, error)
	ListUsers(ctx context.Context, orgID uint) ([]models.User, error)
	SetUserStatus(ctx context.Context, orgID, id uint, status models.UserStatus) error
	GetAdmin(ctx context.Context, orgID, id uint) (*models.Admin, error)
	// GetPrimaryAdmin returns the earliest created admin, or nil when the
	// organization has none.
	GetPrimaryAdmin(ctx context.Context, orgID uint) (*models.Admin, error)

	PublishEvent(ctx context.Context, ev models.ComplaintEvent) error
}

// ComplaintFilter narrows ListComplaints. Zero fields do not filter.
type ComplaintFilter struct {
	OrgID      uint
	UserID     uint
	ResolverID uint
	Statuses   []models.ComplaintStatus
	Priority   models.Priority
	Category   string
	Limit      int
	Offset     int
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// NewStorageService Constructor. rdb may be nil, events are then dropped.
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
	}
}

func (s *Service) Transaction(ctx context.Context, fn func(tx Storage) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Service{DB: tx, Redis: s.Redis})
	})
}

// PublishEvent публікує подію скарги в Redis Pub/Sub
func (s *Service) PublishEvent(ctx context.Context, ev models.ComplaintEvent) error {
	if s.Redis == nil {
		return nil
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := s.Redis.Publish(ctx, config.ComplaintEventsChannel, b).Err(); err != nil {
		return apperr.Infrastructure("publish complaint event", err)
	}
	return nil
}

// IsConflict reports whether err is a uniqueness violation. The gorm
// connection must be opened with TranslateError.
func IsConflict(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(what)
	}
	return apperr.Infrastructure("load "+what, err)
}
