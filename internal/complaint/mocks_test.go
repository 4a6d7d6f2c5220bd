package complaint_test

import (
	"context"
	"sync"
	"time"

	"actionflow/backend/internal/lifecycle"
	"actionflow/backend/internal/models"
	"actionflow/backend/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

// Transaction runs fn against the mock itself.
func (m *MockStorage) Transaction(ctx context.Context, fn func(tx storage.Storage) error) error {
	if err := m.Called().Error(0); err != nil {
		return err
	}
	return fn(m)
}

func (m *MockStorage) CreateComplaint(ctx context.Context, c *models.Complaint) error {
	args := m.Called(c)
	if args.Error(0) == nil && c.ID == 0 {
		c.ID = 1
	}
	return args.Error(0)
}

func (m *MockStorage) GetComplaint(ctx context.Context, orgID, id uint) (*models.Complaint, error) {
	args := m.Called(orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// hand out a copy so the service cannot mutate the fixture
	c := *args.Get(0).(*models.Complaint)
	return &c, args.Error(1)
}

func (m *MockStorage) GetComplaintByCode(ctx context.Context, orgID uint, complaintID string) (*models.Complaint, error) {
	args := m.Called(orgID, complaintID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Complaint), args.Error(1)
}

func (m *MockStorage) ListComplaints(ctx context.Context, f storage.ComplaintFilter) ([]models.Complaint, error) {
	args := m.Called(f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Complaint), args.Error(1)
}

func (m *MockStorage) ListCategories(ctx context.Context, orgID uint) ([]string, error) {
	args := m.Called(orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStorage) CountComplaints(ctx context.Context, orgID uint) (models.ComplaintStats, error) {
	args := m.Called(orgID)
	return args.Get(0).(models.ComplaintStats), args.Error(1)
}

func (m *MockStorage) ApplyTransition(ctx context.Context, id uint, t lifecycle.Transition, at time.Time) (bool, error) {
	args := m.Called(id, t.Name)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) ListStaleResolved(ctx context.Context, cutoff time.Time) ([]models.Complaint, error) {
	args := m.Called(cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Complaint), args.Error(1)
}

func (m *MockStorage) CreateResolver(ctx context.Context, r *models.Resolver) error {
	return m.Called(r).Error(0)
}

func (m *MockStorage) GetResolver(ctx context.Context, orgID, id uint) (*models.Resolver, error) {
	args := m.Called(orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Resolver), args.Error(1)
}

func (m *MockStorage) ListResolvers(ctx context.Context, orgID uint) ([]models.Resolver, error) {
	args := m.Called(orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Resolver), args.Error(1)
}

func (m *MockStorage) ListActiveResolvers(ctx context.Context, orgID uint, category string) ([]models.Resolver, error) {
	args := m.Called(orgID, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Resolver), args.Error(1)
}

func (m *MockStorage) SetResolverStatus(ctx context.Context, orgID, id uint, status models.ResolverStatus) error {
	return m.Called(orgID, id, status).Error(0)
}

func (m *MockStorage) CountOpenWorkload(ctx context.Context, resolverIDs []uint) (map[uint]int64, error) {
	args := m.Called(resolverIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uint]int64), args.Error(1)
}

func (m *MockStorage) LockResolver(ctx context.Context, resolverID uint) error {
	return m.Called(resolverID).Error(0)
}

func (m *MockStorage) ListResolverRatings(ctx context.Context, resolverID, excludeID uint) ([]int, error) {
	args := m.Called(resolverID, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockStorage) SetResolverRating(ctx context.Context, resolverID uint, rating float64) error {
	return m.Called(resolverID, rating).Error(0)
}

func (m *MockStorage) EmailInUse(ctx context.Context, orgID uint, email string) (bool, error) {
	args := m.Called(orgID, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) EmailInUseExcept(ctx context.Context, orgID uint, email string, resolverID uint) (bool, error) {
	args := m.Called(orgID, email, resolverID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) UpdateResolver(ctx context.Context, r *models.Resolver) error {
	return m.Called(r).Error(0)
}

func (m *MockStorage) ListUsers(ctx context.Context, orgID uint) ([]models.User, error) {
	args := m.Called(orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockStorage) SetUserStatus(ctx context.Context, orgID, id uint, status models.UserStatus) error {
	return m.Called(orgID, id, status).Error(0)
}

func (m *MockStorage) CreateOrganization(ctx context.Context, o *models.Organization) error {
	return m.Called(o).Error(0)
}

func (m *MockStorage) CreateAdmin(ctx context.Context, a *models.Admin) error {
	return m.Called(a).Error(0)
}

func (m *MockStorage) CreateUser(ctx context.Context, u *models.User) error {
	return m.Called(u).Error(0)
}

func (m *MockStorage) GetOrganization(ctx context.Context, id uint) (*models.Organization, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Organization), args.Error(1)
}

func (m *MockStorage) GetOrganizationByCode(ctx context.Context, orgUniqueID string) (*models.Organization, error) {
	args := m.Called(orgUniqueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Organization), args.Error(1)
}

func (m *MockStorage) GetUser(ctx context.Context, orgID, id uint) (*models.User, error) {
	args := m.Called(orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) GetAdmin(ctx context.Context, orgID, id uint) (*models.Admin, error) {
	args := m.Called(orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Admin), args.Error(1)
}

func (m *MockStorage) GetPrimaryAdmin(ctx context.Context, orgID uint) (*models.Admin, error) {
	args := m.Called(orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Admin), args.Error(1)
}

func (m *MockStorage) PublishEvent(ctx context.Context, ev models.ComplaintEvent) error {
	return m.Called(ev.Type).Error(0)
}

// RecordingNotifier collects notifications instead of sending them.
type RecordingNotifier struct {
	mu   sync.Mutex
	Sent []models.Notification
}

func (n *RecordingNotifier) Notify(ctx context.Context, msg models.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Sent = append(n.Sent, msg)
}

func (n *RecordingNotifier) Kinds() []models.NotificationKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []models.NotificationKind
	for _, msg := range n.Sent {
		out = append(out, msg.Kind)
	}
	return out
}
