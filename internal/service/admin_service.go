package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/helpdesk-kit/ticketing/internal/auth"
	"github.com/helpdesk-kit/ticketing/internal/cache"
	"github.com/helpdesk-kit/ticketing/internal/domain"
	"github.com/helpdesk-kit/ticketing/internal/repository"
	"github.com/helpdesk-kit/ticketing/internal/stats"
	"github.com/helpdesk-kit/ticketing/internal/ticketview"
	apperrors "github.com/helpdesk-kit/ticketing/pkg/util"
)

// AdminService backs the admin panel: account management, the assignable
// agent roster and the server-computed dashboard summary. Routes using it
// are gated to ADMIN.
type AdminService struct {
	users      repository.UserRepository
	tickets    repository.TicketRepository
	cache      *cache.TicketCache
	bcryptCost int
}

// AdminDependencies bundles collaborators for the admin service.
type AdminDependencies struct {
	UserRepo   repository.UserRepository
	TicketRepo repository.TicketRepository
	Cache      *cache.TicketCache
	BcryptCost int
}

// UserInput describes admin-side account creation and update payloads.
// Password is required on create and optional on update; Role defaults to
// USER when empty.
type UserInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      domain.Role
}

// NewAdminService constructs the service.
func NewAdminService(deps AdminDependencies) *AdminService {
	return &AdminService{
		users:      deps.UserRepo,
		tickets:    deps.TicketRepo,
		cache:      deps.Cache,
		bcryptCost: deps.BcryptCost,
	}
}

// ListUsers returns every account.
func (s *AdminService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// ListAssignableAgents returns accounts eligible for ticket assignment,
// support agents and admins both. The role query and the policy predicate
// must agree; the candidate filter is the authority.
func (s *AdminService) ListAssignableAgents(ctx context.Context) ([]domain.User, error) {
	agents, err := s.users.ListByRoles(ctx, []domain.Role{domain.RoleSupportAgent, domain.RoleAdmin})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticketview.AssignmentCandidates(agents), nil
}

// CreateUser provisions an account with an arbitrary role.
func (s *AdminService) CreateUser(ctx context.Context, input UserInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if username == "" || email == "" || input.Password == "" {
		return nil, apperrors.NewValidationError("username, email and password required", nil)
	}
	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}
	if _, ok := domain.ParseRole(string(role)); !ok {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": role})
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, apperrors.NewConflict("username already taken", map[string]any{"username": username})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Role:         role,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.cache.InvalidateAdminSummary(ctx)
	return user, nil
}

// UpdateUser edits an account. Empty fields keep their current value;
// an empty password leaves the credential untouched.
func (s *AdminService) UpdateUser(ctx context.Context, id int64, input UserInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
		}
		return nil, apperrors.MapError(err)
	}

	if username := strings.TrimSpace(input.Username); username != "" {
		user.Username = username
	}
	if email := strings.TrimSpace(strings.ToLower(input.Email)); email != "" {
		user.Email = email
	}
	if first := strings.TrimSpace(input.FirstName); first != "" {
		user.FirstName = first
	}
	if last := strings.TrimSpace(input.LastName); last != "" {
		user.LastName = last
	}
	if input.Role != "" {
		role, ok := domain.ParseRole(string(input.Role))
		if !ok {
			return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": input.Role})
		}
		user.Role = role
	}
	if input.Password != "" {
		hash, err := auth.HashPassword(input.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.cache.InvalidateAdminSummary(ctx)
	return user, nil
}

// DeleteUser removes an account.
func (s *AdminService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"user_id": id})
		}
		return apperrors.MapError(err)
	}
	s.cache.InvalidateAdminSummary(ctx)
	return nil
}

// Stats computes the admin dashboard summary, cache-first.
func (s *AdminService) Stats(ctx context.Context) (stats.AdminSummary, error) {
	if cached := s.cache.GetAdminSummary(ctx); cached != nil {
		return *cached, nil
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return stats.AdminSummary{}, apperrors.MapError(err)
	}
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{})
	if err != nil {
		return stats.AdminSummary{}, apperrors.MapError(err)
	}

	summary := stats.BuildAdminSummary(users, tickets)
	s.cache.SetAdminSummary(ctx, summary)
	return summary, nil
}
