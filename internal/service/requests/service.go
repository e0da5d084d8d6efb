// Package requests implements the leave and overtime request lifecycle: submission,
// listing, pending approval queues and decisions, together with the rule deciding
// who may approve what.
package requests

import (
	"context"
	"errors"
	"fmt"

	"github.com/dexhub/hr-portal/internal/models"
	"github.com/dexhub/hr-portal/internal/repository"
	"github.com/dexhub/hr-portal/pkg/logger"
)

// LeaveRepository interface for leave request storage.
type LeaveRepository interface {
	Create(ctx context.Context, req *models.LeaveRequest) error
	GetByID(ctx context.Context, id uint) (*models.LeaveRequest, error)
	List(ctx context.Context, ownerID *uint, page repository.Page) ([]models.LeaveRequest, error)
	ListPending(ctx context.Context, managerID *uint, page repository.Page) ([]models.LeaveRequest, error)
	UpdateDecision(ctx context.Context, id uint, d repository.Decision) error
}

// OvertimeRepository interface for overtime request storage.
type OvertimeRepository interface {
	Create(ctx context.Context, req *models.OvertimeRequest) error
	GetByID(ctx context.Context, id uint) (*models.OvertimeRequest, error)
	List(ctx context.Context, ownerID *uint, page repository.Page) ([]models.OvertimeRequest, error)
	ListPending(ctx context.Context, managerID *uint, page repository.Page) ([]models.OvertimeRequest, error)
	UpdateDecision(ctx context.Context, id uint, d repository.Decision) error
}

// LeaveTypeRepository interface for leave type lookups.
type LeaveTypeRepository interface {
	GetLeaveType(ctx context.Context, id uint) (*models.LeaveType, error)
}

// Event describes a submission or decision for notification sinks.
type Event struct {
	Kind      models.RequestKind
	RequestID uint
	OwnerID   uint
	// Owner is set when already loaded; submissions carry only OwnerID.
	Owner   *models.User
	ActorID uint
	Status  models.RequestStatus
	Summary string
	Comment string
}

// Notifier receives lifecycle events. Failures are logged and never fail the operation.
type Notifier interface {
	RequestSubmitted(ctx context.Context, ev Event) error
	RequestDecided(ctx context.Context, ev Event) error
}

// StatsInvalidator drops cached dashboard counts after a write.
type StatsInvalidator interface {
	InvalidateStats(ctx context.Context) error
}

// Policy holds the configurable parts of the lifecycle.
type Policy struct {
	// AllowRedecide lets an approver overwrite an earlier decision.
	AllowRedecide bool
	DefaultLimit  int
	MaxLimit      int
}

// DefaultPolicy returns the policy used when none is configured.
func DefaultPolicy() Policy {
	return Policy{AllowRedecide: true, DefaultLimit: 100, MaxLimit: 1000}
}

// Page is a skip/limit window over a list.
type Page struct {
	Skip  int
	Limit int
}

// Decision is an approver's verdict on a request.
type Decision struct {
	Status  models.RequestStatus
	Comment *string
}

// Service handles the request lifecycle.
type Service struct {
	leaves     LeaveRepository
	overtime   OvertimeRepository
	leaveTypes LeaveTypeRepository
	notifier   Notifier
	stats      StatsInvalidator
	policy     Policy
	log        *logger.Logger
}

// NewService creates a new request service with concrete repository types.
func NewService(
	leaves *repository.LeaveRepository,
	overtime *repository.OvertimeRepository,
	catalog *repository.CatalogRepository,
	policy Policy,
	log *logger.Logger,
) *Service {
	return NewServiceWithInterfaces(leaves, overtime, catalog, policy, log)
}

// NewServiceWithInterfaces creates a new request service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	leaves LeaveRepository,
	overtime OvertimeRepository,
	leaveTypes LeaveTypeRepository,
	policy Policy,
	log *logger.Logger,
) *Service {
	if policy.DefaultLimit <= 0 {
		policy.DefaultLimit = DefaultPolicy().DefaultLimit
	}
	if policy.MaxLimit < policy.DefaultLimit {
		policy.MaxLimit = policy.DefaultLimit
	}
	return &Service{
		leaves:     leaves,
		overtime:   overtime,
		leaveTypes: leaveTypes,
		policy:     policy,
		log:        log.Component("requests"),
	}
}

// SetNotifier registers the sink for lifecycle events.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// SetStatsInvalidator registers the dashboard cache to drop after writes.
func (s *Service) SetStatsInvalidator(inv StatsInvalidator) {
	s.stats = inv
}

// Policy returns the active lifecycle policy.
func (s *Service) Policy() Policy {
	return s.policy
}

// window converts a Page into a repository window, applying defaults and the cap.
func (s *Service) window(p Page) (repository.Page, error) {
	if p.Skip < 0 || p.Limit < 0 {
		return repository.Page{}, fmt.Errorf("%w: skip and limit must not be negative", ErrValidation)
	}
	limit := p.Limit
	if limit == 0 {
		limit = s.policy.DefaultLimit
	}
	if limit > s.policy.MaxLimit {
		limit = s.policy.MaxLimit
	}
	return repository.Page{Offset: p.Skip, Limit: limit}, nil
}

// listScope returns the owner filter for a list: nil for admins, the actor otherwise.
func listScope(actor Actor) *uint {
	if actor.IsAdmin() {
		return nil
	}
	id := actor.ID
	return &id
}

// pendingScope returns the manager filter for an approval queue and whether the
// actor has a queue at all.
func pendingScope(actor Actor) (*uint, bool) {
	switch actor.Role {
	case models.RoleAdmin:
		return nil, true
	case models.RoleManager:
		id := actor.ID
		return &id, true
	}
	return nil, false
}

// checkDecision validates a decision before the request is loaded.
func checkDecision(kind models.RequestKind, d Decision) error {
	if !d.Status.IsTerminalFor(kind) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, d.Status)
	}
	return nil
}

// authorize applies CanDecide and the redecide policy to a loaded request.
func (s *Service) authorize(actor Actor, kind models.RequestKind, owner *models.User, current models.RequestStatus) error {
	if !CanDecide(actor, owner) {
		s.denied(kind, "forbidden")
		return ErrForbidden
	}
	if !s.policy.AllowRedecide && !current.IsPendingLike() {
		s.denied(kind, "already_decided")
		return fmt.Errorf("%w: status is %s", ErrAlreadyDecided, current)
	}
	return nil
}

// storageErr maps repository sentinels onto service errors.
func storageErr(err error, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}

// afterWrite runs the best-effort side effects of a successful write.
func (s *Service) afterWrite(ctx context.Context, ev Event, decided bool) {
	if s.stats != nil {
		if err := s.stats.InvalidateStats(ctx); err != nil {
			s.log.Warn().Err(err).Msg("Failed to invalidate dashboard stats")
		}
	}
	if s.notifier == nil {
		return
	}

	var err error
	if decided {
		err = s.notifier.RequestDecided(ctx, ev)
	} else {
		err = s.notifier.RequestSubmitted(ctx, ev)
	}
	if err != nil {
		s.log.Warn().
			Err(err).
			Str("kind", string(ev.Kind)).
			Uint("request_id", ev.RequestID).
			Msg("Failed to send notification")
	}
}
