package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"actionflow/backend/internal/api/middleware"
	"actionflow/backend/internal/config"
	"actionflow/backend/internal/models"
	"actionflow/backend/internal/storage/storagetest"
	"actionflow/backend/internal/sweeper"

	"github.com/alicebob/miniredis/v2"
	"github.com/fatih/color"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var now = time.Date(2026, 6, 10, 8, 0, 0, 0, time.UTC)

type harness struct {
	app *app
	db  *gorm.DB
	mr  *miniredis.Miniredis
	out *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	color.NoColor = true

	db := storagetest.NewDB(t)
	mr := miniredis.RunT(t)
	out := &bytes.Buffer{}
	h := &harness{db: db, mr: mr, out: out}
	h.app = &app{
		cfg: config.Config{JWTSecret: "cli-secret", AutoCloseAfter: config.DefaultAutoCloseAfter},
		log: zap.NewNop(),
		out: out,
		openDB: func() (*gorm.DB, error) {
			return db, nil
		},
		openRedis: func(ctx context.Context) (*redis.Client, error) {
			return redis.NewClient(&redis.Options{Addr: mr.Addr()}), nil
		},
		now: func() time.Time { return now },
	}
	return h
}

func (h *harness) run(t *testing.T, args ...string) error {
	t.Helper()
	h.out.Reset()
	root := newRootCmd(h.app)
	root.SetArgs(args)
	root.SetOut(h.out)
	root.SetErr(h.out)
	return root.ExecuteContext(context.Background())
}

func TestOrgCreate(t *testing.T) {
	h := newHarness(t)
	err := h.run(t, "org", "create", "--name", "Acme", "--category", "IT", "--email", "ops@acme.io",
		"--admin-name", "Ada", "--admin-email", "ada@acme.io")
	require.NoError(t, err)
	assert.Contains(t, h.out.String(), "registered Acme (ORG-")
	assert.Contains(t, h.out.String(), "admin ada@acme.io id=1")

	queued, err := h.mr.List(config.NotificationQueueKey)
	require.NoError(t, err)
	require.Len(t, queued, 1)
	assert.Contains(t, queued[0], `"kind":"organization_registered"`)
	assert.Contains(t, queued[0], `"recipient":"ops@acme.io"`)
}

func TestOrgCreate_WithoutRedis(t *testing.T) {
	h := newHarness(t)
	h.app.openRedis = func(context.Context) (*redis.Client, error) {
		return nil, errors.New("connection refused")
	}
	require.NoError(t, h.run(t, "org", "create", "--name", "Acme", "--category", "IT", "--email", "ops@acme.io"))
	assert.Contains(t, h.out.String(), "notifications disabled: connection refused")
	assert.Contains(t, h.out.String(), "registered Acme")

	assert.Error(t, h.run(t, "org", "create", "--name", "Acme"))
}

func TestUserAddAndToken(t *testing.T) {
	h := newHarness(t)
	fx := storagetest.Seed(t, h.db, "ORG-1A2BAB12")

	require.NoError(t, h.run(t, "user", "add", "--org", "ORG-1A2BAB12", "--name", "Bo", "--email", "bo@acme.io"))
	assert.Contains(t, h.out.String(), "added user bo@acme.io")
	assert.Error(t, h.run(t, "user", "add", "--org", "ORG-1A2BAB12", "--name", "Bo", "--email", "BO@acme.io"))

	require.NoError(t, h.run(t, "token", "--org", "ORG-1A2BAB12", "--role", "admin", "--id", strconv.Itoa(int(fx.Admin.ID))))
	tok := strings.TrimSpace(h.out.String())
	actor, err := middleware.ParseToken([]byte("cli-secret"), tok)
	require.NoError(t, err)
	assert.Equal(t, models.Actor{OrgID: fx.Org.ID, Role: models.RoleAdmin, SubjectID: fx.Admin.ID}, actor)

	assert.Error(t, h.run(t, "token", "--org", "ORG-1A2BAB12", "--role", "resolver", "--id", "1"))
	assert.Error(t, h.run(t, "token", "--org", "ORG-1A2BAB12", "--role", "user", "--id", "999"))
	assert.Error(t, h.run(t, "token", "--role", "admin", "--id", "1"))
}

func TestSweep(t *testing.T) {
	h := newHarness(t)
	fx := storagetest.Seed(t, h.db, "ORG-1A2BAB12")
	r := storagetest.AddResolver(t, h.db, fx.Org.ID, "ann", "Network", models.ResolverActive)
	stale := now.Add(-96 * time.Hour)
	storagetest.AddComplaint(t, h.db, fx, models.Complaint{Status: models.StatusResolved, ResolverID: &r.ID, UpdatedAt: &stale})

	require.NoError(t, h.run(t, "sweep"))
	assert.Equal(t, "auto-closed 1 complaint(s)\n", h.out.String())

	require.NoError(t, h.run(t, "sweep"))
	assert.Equal(t, "auto-closed 0 complaint(s)\n", h.out.String())

	err := h.run(t, "sweep", "--grace", "0s")
	assert.ErrorIs(t, err, sweeper.ErrGracePeriodUnset)
}

func TestExport(t *testing.T) {
	h := newHarness(t)
	fx := storagetest.Seed(t, h.db, "ORG-1A2BAB12")
	storagetest.AddComplaint(t, h.db, fx, models.Complaint{})

	out := filepath.Join(t.TempDir(), "c.xlsx")
	require.NoError(t, h.run(t, "export", "--org", "ORG-1A2BAB12", "-o", out))
	assert.Contains(t, h.out.String(), "exported 1 complaint(s)")

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	assert.Error(t, h.run(t, "export", "--org", "ORG-FFFFFFFF", "-o", out))
}

func TestAssign(t *testing.T) {
	h := newHarness(t)
	fx := storagetest.Seed(t, h.db, "ORG-1A2BAB12")
	r := storagetest.AddResolver(t, h.db, fx.Org.ID, "ann", "Network", models.ResolverActive)
	c := storagetest.AddComplaint(t, h.db, fx, models.Complaint{})

	admin := strconv.Itoa(int(fx.Admin.ID))
	resolver := strconv.Itoa(int(r.ID))

	require.NoError(t, h.run(t, "assign", "--org", "ORG-1A2BAB12", "--admin", admin, c.ComplaintID, resolver))
	assert.Equal(t, "assigned "+c.ComplaintID+" -> resolver "+resolver+"\n", h.out.String())

	// only pending complaints can be assigned
	assert.Error(t, h.run(t, "assign", "--org", "ORG-1A2BAB12", "--admin", admin, c.ComplaintID, resolver))
	assert.Error(t, h.run(t, "assign", "--org", "ORG-1A2BAB12", "--admin", "999", c.ComplaintID, resolver))
	assert.Error(t, h.run(t, "assign", "--org", "ORG-1A2BAB12", c.ComplaintID))
}
