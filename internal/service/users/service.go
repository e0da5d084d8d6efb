// Package users manages employee accounts: login, CRUD with role rules, and the
// manager hierarchy.
package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/dexhub/hr-portal/internal/auth"
	"github.com/dexhub/hr-portal/internal/metrics"
	"github.com/dexhub/hr-portal/internal/models"
	"github.com/dexhub/hr-portal/internal/repository"
	"github.com/dexhub/hr-portal/internal/service/requests"
	"github.com/dexhub/hr-portal/pkg/logger"
)

// Errors returned by the user service.
var (
	ErrValidation         = requests.ErrValidation
	ErrNotFound           = requests.ErrNotFound
	ErrForbidden          = requests.ErrForbidden
	ErrEmailTaken         = errors.New("the user with this email already exists in the system")
	ErrSelfDelete         = errors.New("you cannot delete yourself")
	ErrManagerCycle       = errors.New("manager assignment would create a cycle")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrInactive           = errors.New("inactive user")
)

// Repository interface for user storage.
type Repository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, page repository.Page) ([]models.User, error)
	ListByManager(ctx context.Context, managerID uint, page repository.Page) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) error
}

// StatsInvalidator drops cached dashboard counts after a write.
type StatsInvalidator interface {
	InvalidateStats(ctx context.Context) error
}

// CreateInput holds the fields of a new user.
type CreateInput struct {
	Email       string
	Password    string
	FullName    string
	Role        models.Role
	Designation string
	DOB         *models.Date
	PhoneNumber string
	JoinDate    *models.Date
	ManagerID   *uint
	IsActive    *bool
}

// UpdateInput holds a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Email       *string
	Password    *string
	FullName    *string
	Role        *models.Role
	Designation *string
	DOB         *models.Date
	PhoneNumber *string
	JoinDate    *models.Date
	ManagerID   *uint
	IsActive    *bool
	// ClearManager detaches the user from their manager. ManagerID wins when both are set.
	ClearManager bool
}

// Service handles user accounts.
type Service struct {
	repo   Repository
	hasher PasswordHasher
	stats  StatsInvalidator
	log    *logger.Logger
}

// NewService creates a new user service with concrete dependencies.
func NewService(repo *repository.UserRepository, hasher *auth.PasswordHasher, log *logger.Logger) *Service {
	return NewServiceWithInterfaces(repo, hasher, log)
}

// NewServiceWithInterfaces creates a new user service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(repo Repository, hasher PasswordHasher, log *logger.Logger) *Service {
	return &Service{repo: repo, hasher: hasher, log: log.Component("users")}
}

// SetStatsInvalidator registers the dashboard cache to drop after writes.
func (s *Service) SetStatsInvalidator(inv StatsInvalidator) {
	s.stats = inv
}

// Authenticate checks credentials and returns the active user they belong to.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.RecordLogin("failure")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if err := s.hasher.Verify(user.PasswordHash, password); err != nil {
		metrics.RecordLogin("failure")
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		metrics.RecordLogin("inactive")
		return nil, ErrInactive
	}
	metrics.RecordLogin("success")
	return user, nil
}

// Get returns a user by ID.
func (s *Service) Get(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("user %d", id))
	}
	return user, nil
}

// List returns all users.
func (s *Service) List(ctx context.Context, page requests.Page) ([]models.User, error) {
	users, err := s.repo.List(ctx, toRepoPage(page))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Team returns the direct reports of actor.
func (s *Service) Team(ctx context.Context, actor requests.Actor, page requests.Page) ([]models.User, error) {
	users, err := s.repo.ListByManager(ctx, actor.ID, toRepoPage(page))
	if err != nil {
		return nil, fmt.Errorf("failed to list team: %w", err)
	}
	return users, nil
}

// Create adds a user. Only admins may create admins.
func (s *Service) Create(ctx context.Context, actor requests.Actor, in CreateInput) (*models.User, error) {
	if in.Role == "" {
		in.Role = models.RoleEmployee
	}
	if !in.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, in.Role)
	}
	if in.Role == models.RoleAdmin && !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins can create other admins", ErrForbidden)
	}

	email := normalizeEmail(in.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.FullName) == "" {
		return nil, fmt.Errorf("%w: full name is required", ErrValidation)
	}
	if err := s.ensureEmailFree(ctx, email, 0); err != nil {
		return nil, err
	}
	if in.ManagerID != nil {
		if _, err := s.repo.GetByID(ctx, *in.ManagerID); err != nil {
			return nil, mapErr(err, fmt.Sprintf("manager %d", *in.ManagerID))
		}
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(in.FullName),
		Role:         in.Role,
		Designation:  in.Designation,
		DOB:          in.DOB,
		PhoneNumber:  in.PhoneNumber,
		JoinDate:     in.JoinDate,
		ManagerID:    in.ManagerID,
		IsActive:     active,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info().
		Uint("user_id", user.ID).
		Str("role", string(user.Role)).
		Uint("created_by", actor.ID).
		Msg("User created")
	s.invalidate(ctx)
	return user, nil
}

// Update applies a partial update to user id.
func (s *Service) Update(ctx context.Context, actor requests.Actor, id uint, in UpdateInput) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("user %d", id))
	}

	if !actor.IsAdmin() {
		if user.Role == models.RoleAdmin {
			return nil, fmt.Errorf("%w: only admins can modify admins", ErrForbidden)
		}
		if in.Role != nil && *in.Role == models.RoleAdmin {
			return nil, fmt.Errorf("%w: only admins can grant the admin role", ErrForbidden)
		}
	}

	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		if email != user.Email {
			if err := s.ensureEmailFree(ctx, email, user.ID); err != nil {
				return nil, err
			}
		}
		user.Email = email
	}
	if in.Password != nil {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		user.PasswordHash = hash
	}
	if in.FullName != nil {
		if strings.TrimSpace(*in.FullName) == "" {
			return nil, fmt.Errorf("%w: full name must not be blank", ErrValidation)
		}
		user.FullName = strings.TrimSpace(*in.FullName)
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, *in.Role)
		}
		user.Role = *in.Role
	}
	if in.Designation != nil {
		user.Designation = *in.Designation
	}
	if in.DOB != nil {
		user.DOB = in.DOB
	}
	if in.PhoneNumber != nil {
		user.PhoneNumber = *in.PhoneNumber
	}
	if in.JoinDate != nil {
		user.JoinDate = in.JoinDate
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	if in.ManagerID != nil {
		if err := s.checkManager(ctx, user.ID, *in.ManagerID); err != nil {
			return nil, err
		}
		managerID := *in.ManagerID
		user.ManagerID = &managerID
		user.Manager = nil
	} else if in.ClearManager {
		user.ManagerID = nil
		user.Manager = nil
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.log.Info().
		Uint("user_id", user.ID).
		Uint("updated_by", actor.ID).
		Msg("User updated")
	s.invalidate(ctx)
	return user, nil
}

// Delete removes user id and everything they own. Only admins may delete, and
// never themselves.
func (s *Service) Delete(ctx context.Context, actor requests.Actor, id uint) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins can delete users", ErrForbidden)
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("user %d", id))
	}
	if user.ID == actor.ID {
		return nil, ErrSelfDelete
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, mapErr(err, fmt.Sprintf("user %d", id))
	}

	s.log.Info().
		Uint("user_id", id).
		Uint("deleted_by", actor.ID).
		Msg("User deleted")
	s.invalidate(ctx)
	return user, nil
}

// ResetPassword sets a new password for the user with email.
func (s *Service) ResetPassword(ctx context.Context, email, password string) error {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return mapErr(err, "user "+email)
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	user.PasswordHash = hash
	if err := s.repo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}
	s.log.Info().Uint("user_id", user.ID).Msg("Password reset")
	return nil
}

// LinkManager makes the user with managerEmail the manager of the user with
// employeeEmail.
func (s *Service) LinkManager(ctx context.Context, employeeEmail, managerEmail string) (*models.User, error) {
	employee, err := s.repo.GetByEmail(ctx, normalizeEmail(employeeEmail))
	if err != nil {
		return nil, mapErr(err, "user "+employeeEmail)
	}
	manager, err := s.repo.GetByEmail(ctx, normalizeEmail(managerEmail))
	if err != nil {
		return nil, mapErr(err, "manager "+managerEmail)
	}
	if err := s.checkManager(ctx, employee.ID, manager.ID); err != nil {
		return nil, err
	}

	employee.ManagerID = &manager.ID
	if err := s.repo.Update(ctx, employee); err != nil {
		return nil, fmt.Errorf("failed to link manager: %w", err)
	}
	s.log.Info().
		Uint("user_id", employee.ID).
		Uint("manager_id", manager.ID).
		Msg("Manager linked")
	s.invalidate(ctx)
	return employee, nil
}

// checkManager verifies managerID exists and that walking up from it never
// reaches userID.
func (s *Service) checkManager(ctx context.Context, userID, managerID uint) error {
	if managerID == userID {
		return fmt.Errorf("%w: a user cannot manage themselves", ErrManagerCycle)
	}

	seen := map[uint]bool{userID: true}
	next := &managerID
	for next != nil {
		if seen[*next] {
			return fmt.Errorf("%w: user %d is already above %d", ErrManagerCycle, userID, managerID)
		}
		seen[*next] = true

		u, err := s.repo.GetByID(ctx, *next)
		if err != nil {
			return mapErr(err, fmt.Sprintf("manager %d", *next))
		}
		next = u.ManagerID
	}
	return nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email string, selfID uint) error {
	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("failed to check email: %w", err)
	case existing.ID != selfID:
		return ErrEmailTaken
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.stats == nil {
		return
	}
	if err := s.stats.InvalidateStats(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Failed to invalidate dashboard stats")
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: %q is not a valid email address", ErrValidation, email)
	}
	return nil
}

func mapErr(err error, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}

func toRepoPage(p requests.Page) repository.Page {
	limit := p.Limit
	if limit <= 0 {
		limit = requests.DefaultPolicy().DefaultLimit
	}
	skip := p.Skip
	if skip < 0 {
		skip = 0
	}
	return repository.Page{Offset: skip, Limit: limit}
}
