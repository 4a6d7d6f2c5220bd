package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"actionflow/backend/internal/config"
	"actionflow/backend/internal/models"
	"actionflow/backend/internal/notify"
	"actionflow/backend/internal/storage"

	"github.com/fatih/color"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app holds what every command needs. Connections are opened per command so
// that --help and token-only commands work without a database.
type app struct {
	cfg       config.Config
	log       *zap.Logger
	out       io.Writer
	openDB    func() (*gorm.DB, error)
	openRedis func(ctx context.Context) (*redis.Client, error)
	now       func() time.Time
}

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	idColor   = color.New(color.FgCyan)
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "actionflow-admin",
		Short:         "ActionFlow operations CLI",
		Long:          "Operations tooling for the ActionFlow complaint service: schema bootstrap, auto-close sweeps, tenant onboarding, tokens and exports.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		migrateCmd(a),
		sweepCmd(a),
		orgCmd(a),
		userCmd(a),
		tokenCmd(a),
		exportCmd(a),
		assignCmd(a),
	)
	return root
}

func (a *app) storage() (*storage.Service, error) {
	db, err := a.openDB()
	if err != nil {
		return nil, err
	}
	return storage.NewStorageService(db, nil), nil
}

// notifier returns a Redis-backed queue, or nil with a warning when Redis is
// unreachable. The returned func waits for pending pushes and closes the
// client.
func (a *app) notifier(ctx context.Context) (*notify.Queue, func()) {
	rdb, err := a.openRedis(ctx)
	if err != nil {
		fmt.Fprintln(a.out, warnColor.Sprintf("notifications disabled: %v", err))
		return nil, func() {}
	}
	q := notify.NewQueue(rdb, a.log)
	return q, func() {
		q.Wait()
		rdb.Close()
	}
}

// orgByCode resolves an ORG-XXXXXXXX flag value.
func orgByCode(cmd *cobra.Command, s storage.Storage, code string) (*models.Organization, error) {
	if code == "" {
		return nil, fmt.Errorf("--org is required")
	}
	return s.GetOrganizationByCode(cmd.Context(), code)
}
