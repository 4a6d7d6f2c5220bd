// Package storagetest opens a migrated in-memory sqlite database for tests
// that exercise the real gorm adapter.
package storagetest

import (
	"strconv"
	"testing"
	"time"

	"actionflow/backend/internal/database"
	"actionflow/backend/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := database.GormConfig()
	cfg.NowFunc = func() time.Time { return time.Now().UTC() }
	db, err := gorm.Open(sqlite.Open(":memory:"), cfg)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection would get its own :memory: database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// Fixture is one organization with an admin and a user.
type Fixture struct {
	Org   models.Organization
	Admin models.Admin
	User  models.User
}

func Seed(t testing.TB, db *gorm.DB, orgCode string) Fixture {
	t.Helper()
	f := Fixture{
		Org: models.Organization{OrgUniqueID: orgCode, OrgName: "Org " + orgCode, Category: "IT", ContactEmail: orgCode + "@example.com"},
	}
	require.NoError(t, db.Create(&f.Org).Error)
	f.Admin = models.Admin{OrgID: f.Org.ID, FullName: "Admin", Email: "admin-" + orgCode + "@example.com"}
	require.NoError(t, db.Create(&f.Admin).Error)
	f.User = models.User{OrgID: f.Org.ID, FullName: "User", Email: "user-" + orgCode + "@example.com"}
	require.NoError(t, db.Create(&f.User).Error)
	return f
}

func AddResolver(t testing.TB, db *gorm.DB, orgID uint, name, category string, status models.ResolverStatus) models.Resolver {
	t.Helper()
	r := models.Resolver{OrgID: orgID, Name: name, Email: name + "@example.com", Category: category, Status: status}
	require.NoError(t, db.Create(&r).Error)
	return r
}

// AddComplaint inserts c as given, filling the identity columns when empty.
func AddComplaint(t testing.TB, db *gorm.DB, f Fixture, c models.Complaint) models.Complaint {
	t.Helper()
	c.OrgID = f.Org.ID
	if c.UserID == 0 {
		c.UserID = f.User.ID
	}
	if c.ComplaintID == "" {
		var n int64
		db.Model(&models.Complaint{}).Count(&n)
		c.ComplaintID = "CMP-TEST-" + strconv.FormatInt(n+1, 10)
	}
	if c.Category == "" {
		c.Category = "Network"
	}
	if c.Description == "" {
		c.Description = "printer on fire"
	}
	if c.Priority == "" {
		c.Priority = models.PriorityMedium
	}
	if c.Status == "" {
		c.Status = models.StatusPending
	}
	require.NoError(t, db.Create(&c).Error)
	return c
}
