package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"actionflow/backend/internal/api/middleware"
	"actionflow/backend/internal/complaint"
	"actionflow/backend/internal/database"
	"actionflow/backend/internal/models"
	"actionflow/backend/internal/organization"
	"actionflow/backend/internal/report"
	"actionflow/backend/internal/storage"
	"actionflow/backend/internal/sweeper"

	"github.com/spf13/cobra"
)

func migrateCmd(a *app) *cobra.Command {
	var skipCreate bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the database if missing and migrate the schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !skipCreate {
				created, err := database.Bootstrap(cmd.Context(), a.cfg.DBURL)
				if err != nil {
					return err
				}
				if created {
					fmt.Fprintln(a.out, okColor.Sprint("database created"))
				}
			}
			db, err := a.openDB()
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			fmt.Fprintln(a.out, okColor.Sprint("schema up to date"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipCreate, "skip-create", false, "do not try to create the database")
	return cmd
}

func sweepCmd(a *app) *cobra.Command {
	var grace time.Duration
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Close resolved complaints that got no feedback within the grace period",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.storage()
			if err != nil {
				return err
			}
			sw := sweeper.New(s, a.log, grace, 0)
			n, err := sw.RunOnce(cmd.Context(), a.now(), grace)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s %d complaint(s)\n", okColor.Sprint("auto-closed"), n)
			return nil
		},
	}
	cmd.Flags().DurationVar(&grace, "grace", a.cfg.AutoCloseAfter, "grace period after resolution")
	return cmd
}

func orgCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "org",
		Short: "Manage organizations",
	}

	var req organization.Registration
	create := &cobra.Command{
		Use:   "create",
		Short: "Register an organization and optionally its first admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.storage()
			if err != nil {
				return err
			}
			q, done := a.notifier(cmd.Context())
			defer done()

			var n organization.Notifier
			if q != nil {
				n = q
			}
			org, admin, err := organization.NewRegistrar(s, n, a.log).Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s %s (%s)\n", okColor.Sprint("registered"), org.OrgName, idColor.Sprint(org.OrgUniqueID))
			if admin != nil {
				fmt.Fprintf(a.out, "admin %s id=%d\n", admin.Email, admin.ID)
			}
			return nil
		},
	}
	f := create.Flags()
	f.StringVar(&req.OrgName, "name", "", "organization name")
	f.StringVar(&req.Category, "category", "", "organization category")
	f.StringVar(&req.ContactEmail, "email", "", "contact email")
	f.StringVar(&req.Website, "website", "", "website")
	f.StringVar(&req.Phone, "phone", "", "phone")
	f.StringVar(&req.Address, "address", "", "address")
	f.StringVar(&req.AdminName, "admin-name", "", "first admin's full name")
	f.StringVar(&req.AdminEmail, "admin-email", "", "first admin's email")

	cmd.AddCommand(create)
	return cmd
}

func userCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	var orgCode, name, email string
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a user to an organization",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.storage()
			if err != nil {
				return err
			}
			org, err := orgByCode(cmd, s, orgCode)
			if err != nil {
				return err
			}
			u := &models.User{OrgID: org.ID, FullName: strings.TrimSpace(name), Email: email, Status: models.UserActive}
			if u.FullName == "" || strings.TrimSpace(email) == "" {
				return fmt.Errorf("--name and --email are required")
			}
			if err := s.CreateUser(cmd.Context(), u); err != nil {
				if storage.IsConflict(err) {
					return fmt.Errorf("email %s is already registered", u.Email)
				}
				return err
			}
			fmt.Fprintf(a.out, "%s user %s id=%d\n", okColor.Sprint("added"), u.Email, u.ID)
			return nil
		},
	}
	add.Flags().StringVar(&orgCode, "org", "", "organization unique id (ORG-XXXXXXXX)")
	add.Flags().StringVar(&name, "name", "", "full name")
	add.Flags().StringVar(&email, "email", "", "email")

	cmd.AddCommand(add)
	return cmd
}

func tokenCmd(a *app) *cobra.Command {
	var (
		orgCode string
		role    string
		id      uint
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API token for an existing admin or user",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.storage()
			if err != nil {
				return err
			}
			org, err := orgByCode(cmd, s, orgCode)
			if err != nil {
				return err
			}
			actor := models.Actor{OrgID: org.ID, Role: models.Role(role), SubjectID: id}
			switch {
			case actor.IsAdmin():
				_, err = s.GetAdmin(cmd.Context(), org.ID, id)
			case actor.IsUser():
				_, err = s.GetUser(cmd.Context(), org.ID, id)
			default:
				return fmt.Errorf("--role must be admin or user")
			}
			if err != nil {
				return err
			}

			tok, err := middleware.IssueToken([]byte(a.cfg.JWTSecret), actor, ttl, a.now())
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&orgCode, "org", "", "organization unique id")
	cmd.Flags().StringVar(&role, "role", string(models.RoleAdmin), "admin or user")
	cmd.Flags().UintVar(&id, "id", 0, "admin or user id")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}

func exportCmd(a *app) *cobra.Command {
	var orgCode, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write an organization's complaints to an XLSX file",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.storage()
			if err != nil {
				return err
			}
			org, err := orgByCode(cmd, s, orgCode)
			if err != nil {
				return err
			}
			if out == "" {
				out = strings.ToLower(org.OrgUniqueID) + "-complaints.xlsx"
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			n, err := report.ExportComplaints(cmd.Context(), s, org.ID, f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				os.Remove(out)
				return err
			}
			fmt.Fprintf(a.out, "%s %d complaint(s) to %s\n", okColor.Sprint("exported"), n, out)
			return nil
		},
	}
	cmd.Flags().StringVar(&orgCode, "org", "", "organization unique id")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default <org>-complaints.xlsx)")
	return cmd
}

func assignCmd(a *app) *cobra.Command {
	var (
		orgCode string
		adminID uint
	)
	cmd := &cobra.Command{
		Use:   "assign <complaint-id> <resolver-id>",
		Short: "Assign a pending complaint to a resolver on behalf of an admin",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolverID, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid resolver id %q", args[1])
			}
			s, err := a.storage()
			if err != nil {
				return err
			}
			org, err := orgByCode(cmd, s, orgCode)
			if err != nil {
				return err
			}
			if _, err := s.GetAdmin(cmd.Context(), org.ID, adminID); err != nil {
				return err
			}
			c, err := s.GetComplaintByCode(cmd.Context(), org.ID, args[0])
			if err != nil {
				return err
			}

			q, done := a.notifier(cmd.Context())
			defer done()
			var n complaint.Notifier
			if q != nil {
				n = q
			}
			svc := complaint.NewService(s, n, a.log)
			actor := models.Actor{OrgID: org.ID, Role: models.RoleAdmin, SubjectID: adminID}
			c, err = svc.Assign(cmd.Context(), actor, c.ID, uint(resolverID))
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s %s -> resolver %d\n", okColor.Sprint("assigned"), idColor.Sprint(c.ComplaintID), *c.ResolverID)
			return nil
		},
	}
	cmd.Flags().StringVar(&orgCode, "org", "", "organization unique id")
	cmd.Flags().UintVar(&adminID, "admin", 0, "acting admin id")
	return cmd
}
