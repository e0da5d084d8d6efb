// Package dashboard computes the role-scoped counts shown on the HR dashboard.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dexhub/hr-portal/internal/cache"
	"github.com/dexhub/hr-portal/internal/metrics"
	"github.com/dexhub/hr-portal/internal/models"
	"github.com/dexhub/hr-portal/internal/repository"
	"github.com/dexhub/hr-portal/internal/service/requests"
	"github.com/dexhub/hr-portal/pkg/logger"
)

const keyPrefix = "dashboard:stats:"

// UserCounter interface for headcount queries.
type UserCounter interface {
	Count(ctx context.Context) (int64, error)
	CountByManager(ctx context.Context, managerID uint) (int64, error)
}

// LeaveCounter interface for leave queries.
type LeaveCounter interface {
	CountPending(ctx context.Context, managerID *uint) (int64, error)
	CountOnLeave(ctx context.Context, day models.Date, managerID *uint) (int64, error)
}

// OvertimeCounter interface for overtime queries.
type OvertimeCounter interface {
	CountPending(ctx context.Context, managerID *uint) (int64, error)
}

// Stats are the dashboard counters. For managers every count is limited to
// their direct reports.
type Stats struct {
	TotalEmployees int64 `json:"total_employees"`
	PendingLeaves  int64 `json:"pending_leaves"`
	PendingOT      int64 `json:"pending_ot"`
	OnLeaveToday   int64 `json:"on_leave_today"`
}

// Service computes dashboard stats, optionally caching them.
type Service struct {
	users    UserCounter
	leaves   LeaveCounter
	overtime OvertimeCounter
	cache    cache.Cache
	ttl      time.Duration
	today    func() models.Date
	log      *logger.Logger
}

// NewService creates a new dashboard service with concrete repository types.
// A nil cache or zero ttl disables caching.
func NewService(
	users *repository.UserRepository,
	leaves *repository.LeaveRepository,
	overtime *repository.OvertimeRepository,
	c cache.Cache,
	ttl time.Duration,
	log *logger.Logger,
) *Service {
	return NewServiceWithInterfaces(users, leaves, overtime, c, ttl, log)
}

// NewServiceWithInterfaces creates a new dashboard service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	users UserCounter,
	leaves LeaveCounter,
	overtime OvertimeCounter,
	c cache.Cache,
	ttl time.Duration,
	log *logger.Logger,
) *Service {
	return &Service{
		users:    users,
		leaves:   leaves,
		overtime: overtime,
		cache:    c,
		ttl:      ttl,
		today:    models.Today,
		log:      log.Component("dashboard"),
	}
}

// GetStats returns the counts visible to actor: global for admins, direct
// reports for managers. Employees have no dashboard.
func (s *Service) GetStats(ctx context.Context, actor requests.Actor) (*Stats, error) {
	var managerID *uint
	key := keyPrefix + "global"
	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleManager:
		id := actor.ID
		managerID = &id
		key = fmt.Sprintf("%smanager:%d", keyPrefix, actor.ID)
	default:
		return nil, requests.ErrForbidden
	}

	if cached := s.fromCache(ctx, key); cached != nil {
		return cached, nil
	}

	stats, err := s.compute(ctx, managerID)
	if err != nil {
		return nil, err
	}

	s.toCache(ctx, key, stats)
	return stats, nil
}

// InvalidateStats drops every cached stats entry.
func (s *Service) InvalidateStats(ctx context.Context) error {
	if !s.cachingEnabled() {
		return nil
	}
	if err := s.cache.DelPrefix(ctx, keyPrefix); err != nil {
		return fmt.Errorf("failed to invalidate dashboard stats: %w", err)
	}
	return nil
}

func (s *Service) compute(ctx context.Context, managerID *uint) (*Stats, error) {
	var (
		stats Stats
		err   error
	)

	if managerID == nil {
		stats.TotalEmployees, err = s.users.Count(ctx)
	} else {
		stats.TotalEmployees, err = s.users.CountByManager(ctx, *managerID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to count employees: %w", err)
	}

	if stats.PendingLeaves, err = s.leaves.CountPending(ctx, managerID); err != nil {
		return nil, fmt.Errorf("failed to count pending leaves: %w", err)
	}
	if stats.PendingOT, err = s.overtime.CountPending(ctx, managerID); err != nil {
		return nil, fmt.Errorf("failed to count pending overtime: %w", err)
	}
	if stats.OnLeaveToday, err = s.leaves.CountOnLeave(ctx, s.today(), managerID); err != nil {
		return nil, fmt.Errorf("failed to count leave today: %w", err)
	}
	return &stats, nil
}

func (s *Service) cachingEnabled() bool {
	return s.cache != nil && s.ttl > 0
}

func (s *Service) fromCache(ctx context.Context, key string) *Stats {
	if !s.cachingEnabled() {
		return nil
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		metrics.RecordDashboardCache("error")
		s.log.Warn().Err(err).Str("key", key).Msg("Failed to read stats cache")
		return nil
	}
	if raw == "" {
		metrics.RecordDashboardCache("miss")
		return nil
	}

	var stats Stats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		metrics.RecordDashboardCache("error")
		s.log.Warn().Err(err).Str("key", key).Msg("Discarding corrupt stats cache entry")
		return nil
	}
	metrics.RecordDashboardCache("hit")
	return &stats
}

func (s *Service) toCache(ctx context.Context, key string, stats *Stats) {
	if !s.cachingEnabled() {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(raw), s.ttl); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Failed to write stats cache")
	}
}
