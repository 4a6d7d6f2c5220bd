package complaint

import (
	"context"
	"net/mail"
	"strings"
	"unicode/utf8"

	"actionflow/backend/internal/apperr"
	"actionflow/backend/internal/config"
	"actionflow/backend/internal/models"
	"actionflow/backend/internal/storage"

	"go.uber.org/zap"
)

type ListRequest struct {
	Statuses []string
	Priority string
	Category string
	Limit    int
	Offset   int
}

// expandStatuses validates the requested statuses. Asking for resolved
// complaints also returns closed ones.
func expandStatuses(in []string) ([]models.ComplaintStatus, error) {
	var out []models.ComplaintStatus
	seen := map[models.ComplaintStatus]bool{}
	add := func(st models.ComplaintStatus) {
		if !seen[st] {
			seen[st] = true
			out = append(out, st)
		}
	}
	for _, raw := range in {
		raw = strings.ToLower(strings.TrimSpace(raw))
		if raw == "" || raw == "all" {
			continue
		}
		st := models.ComplaintStatus(raw)
		if !st.Valid() {
			return nil, apperr.Validation("invalid status %q", raw)
		}
		add(st)
		if st == models.StatusResolved {
			add(models.StatusClosed)
		}
	}
	return out, nil
}

// List returns the organization's complaints to an admin and the actor's
// own complaints to a user, newest first.
func (s *Service) List(ctx context.Context, actor models.Actor, req ListRequest) ([]models.Complaint, error) {
	statuses, err := expandStatuses(req.Statuses)
	if err != nil {
		return nil, err
	}
	f := storage.ComplaintFilter{
		OrgID:    actor.OrgID,
		Statuses: statuses,
		Category: strings.TrimSpace(req.Category),
		Limit:    req.Limit,
		Offset:   req.Offset,
	}
	if p := strings.ToLower(strings.TrimSpace(req.Priority)); p != "" && p != "all" {
		if !models.Priority(p).Valid() {
			return nil, apperr.Validation("invalid priority %q", p)
		}
		f.Priority = models.Priority(p)
	}

	switch {
	case actor.IsAdmin():
	case actor.IsUser():
		f.UserID = actor.SubjectID
	default:
		return nil, apperr.Unauthorized()
	}
	return s.Storage.ListComplaints(ctx, f)
}

// Get returns one complaint. Users only see their own.
func (s *Service) Get(ctx context.Context, actor models.Actor, id uint) (*models.Complaint, error) {
	if !actor.IsAdmin() && !actor.IsUser() {
		return nil, apperr.Unauthorized()
	}
	c, err := s.Storage.GetComplaint(ctx, actor.OrgID, id)
	if err != nil {
		return nil, err
	}
	if actor.IsUser() && c.UserID != actor.SubjectID {
		return nil, apperr.Unauthorized()
	}
	return c, nil
}

func (s *Service) Categories(ctx context.Context, actor models.Actor) ([]string, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Unauthorized()
	}
	return s.Storage.ListCategories(ctx, actor.OrgID)
}

func (s *Service) Dashboard(ctx context.Context, actor models.Actor) (models.ComplaintStats, error) {
	if !actor.IsAdmin() {
		return models.ComplaintStats{}, apperr.Unauthorized()
	}
	return s.Storage.CountComplaints(ctx, actor.OrgID)
}

type NewResolver struct {
	Name     string
	Email    string
	Category string
}

func (req NewResolver) normalize() (name, email, category string, err error) {
	name = strings.TrimSpace(req.Name)
	category = strings.TrimSpace(req.Category)
	email = strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" || category == "" || email == "" {
		return "", "", "", apperr.Validation("name, email and category are required")
	}
	if addr, perr := mail.ParseAddress(email); perr != nil || addr.Address != email {
		return "", "", "", apperr.Validation("invalid email %q", req.Email)
	}
	if utf8.RuneCountInString(category) > config.MaxCategoryLength {
		return "", "", "", apperr.Validation("category is longer than %d characters", config.MaxCategoryLength)
	}
	return name, email, category, nil
}

// CreateResolver adds an active resolver. The email must not belong to any
// resolver, user or admin of the organization.
func (s *Service) CreateResolver(ctx context.Context, actor models.Actor, req NewResolver) (*models.Resolver, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Unauthorized()
	}
	name, email, category, err := req.normalize()
	if err != nil {
		return nil, err
	}

	used, err := s.Storage.EmailInUse(ctx, actor.OrgID, email)
	if err != nil {
		return nil, err
	}
	if used {
		return nil, apperr.Validation("email %s is already registered in this organization", email)
	}

	r := &models.Resolver{
		OrgID:    actor.OrgID,
		Name:     name,
		Email:    email,
		Category: category,
		Status:   models.ResolverActive,
	}
	if err := s.Storage.CreateResolver(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// UpdateResolver edits a resolver's name, email and category. The new email
// must not belong to another resolver or to any user or admin of the
// organization. Status and rating are left alone.
func (s *Service) UpdateResolver(ctx context.Context, actor models.Actor, id uint, req NewResolver) (*models.Resolver, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Unauthorized()
	}
	name, email, category, err := req.normalize()
	if err != nil {
		return nil, err
	}
	r, err := s.Storage.GetResolver(ctx, actor.OrgID, id)
	if err != nil {
		return nil, err
	}
	if email != strings.ToLower(r.Email) {
		used, err := s.Storage.EmailInUseExcept(ctx, actor.OrgID, email, r.ID)
		if err != nil {
			return nil, err
		}
		if used {
			return nil, apperr.Validation("email %s is already registered in this organization", email)
		}
	}

	r.Name, r.Email, r.Category = name, email, category
	if err := s.Storage.UpdateResolver(ctx, r); err != nil {
		return nil, err
	}
	s.Logger.Info("resolver updated",
		zap.Uint("org_id", actor.OrgID),
		zap.Uint("resolver_id", r.ID),
		zap.String("category", category))
	return r, nil
}

func (s *Service) SetResolverStatus(ctx context.Context, actor models.Actor, id uint, active bool) error {
	if !actor.IsAdmin() {
		return apperr.Unauthorized()
	}
	status := models.ResolverInactive
	if active {
		status = models.ResolverActive
	}
	return s.Storage.SetResolverStatus(ctx, actor.OrgID, id, status)
}

// ActiveResolvers lists active resolvers, optionally of one category, in
// ascending id order.
func (s *Service) ActiveResolvers(ctx context.Context, actor models.Actor, category string) ([]models.Resolver, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Unauthorized()
	}
	return s.Storage.ListActiveResolvers(ctx, actor.OrgID, strings.TrimSpace(category))
}

func (s *Service) Resolvers(ctx context.Context, actor models.Actor) ([]models.Resolver, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Unauthorized()
	}
	return s.Storage.ListResolvers(ctx, actor.OrgID)
}

// Users lists the organization's users, newest first.
func (s *Service) Users(ctx context.Context, actor models.Actor) ([]models.User, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Unauthorized()
	}
	return s.Storage.ListUsers(ctx, actor.OrgID)
}

// SetUserStatus activates or deactivates a user. Complaints the user already
// filed are unaffected.
func (s *Service) SetUserStatus(ctx context.Context, actor models.Actor, id uint, active bool) error {
	if !actor.IsAdmin() {
		return apperr.Unauthorized()
	}
	status := models.UserInactive
	if active {
		status = models.UserActive
	}
	return s.Storage.SetUserStatus(ctx, actor.OrgID, id, status)
}
