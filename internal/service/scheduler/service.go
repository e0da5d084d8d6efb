// Package scheduler provides the daily reminder about leave and overtime requests
// still waiting for a decision.
package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dexhub/hr-portal/internal/config"
	"github.com/dexhub/hr-portal/internal/mattermost"
	prommetrics "github.com/dexhub/hr-portal/internal/metrics"
	"github.com/dexhub/hr-portal/internal/models"
	"github.com/dexhub/hr-portal/internal/repository"
	"github.com/dexhub/hr-portal/pkg/logger"
)

// PendingLeaveSource lists undecided leave requests.
type PendingLeaveSource interface {
	ListPending(ctx context.Context, managerID *uint, page repository.Page) ([]models.LeaveRequest, error)
}

// PendingOvertimeSource lists undecided overtime requests.
type PendingOvertimeSource interface {
	ListPending(ctx context.Context, managerID *uint, page repository.Page) ([]models.OvertimeRequest, error)
}

// UserLookup resolves approver names.
type UserLookup interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// Reminder delivers the pending list.
type Reminder interface {
	SendPendingReminder(ctx context.Context, items []mattermost.PendingItem, now time.Time) error
}

// Service handles daily reminder scheduling.
type Service struct {
	config   *config.Config
	leaves   PendingLeaveSource
	overtime PendingOvertimeSource
	users    UserLookup
	reminder Reminder
	now      func() time.Time
	log      *logger.Logger
	cron     *cron.Cron
}

// NewService creates a new scheduler service.
func NewService(
	cfg *config.Config,
	leaves *repository.LeaveRepository,
	overtime *repository.OvertimeRepository,
	users *repository.UserRepository,
	client *mattermost.Client,
	log *logger.Logger,
) *Service {
	return NewServiceWithInterfaces(cfg, leaves, overtime, users, client, log)
}

// NewServiceWithInterfaces creates a new scheduler service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	cfg *config.Config,
	leaves PendingLeaveSource,
	overtime PendingOvertimeSource,
	users UserLookup,
	reminder Reminder,
	log *logger.Logger,
) *Service {
	return &Service{
		config:   cfg,
		leaves:   leaves,
		overtime: overtime,
		users:    users,
		reminder: reminder,
		now:      time.Now,
		log:      log.Component("scheduler"),
	}
}

// Start initializes and starts the cron scheduler.
func (s *Service) Start() error {
	if !s.config.Scheduler.Enabled {
		s.log.Info().Msg("Scheduler is disabled in configuration")
		return nil
	}

	location, err := s.config.Scheduler.GetLocation()
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", s.config.Scheduler.Timezone, err)
	}

	s.cron = cron.New(cron.WithLocation(location))

	cronExpr, err := s.buildCronExpression()
	if err != nil {
		return fmt.Errorf("failed to build cron expression: %w", err)
	}

	_, err = s.cron.AddFunc(cronExpr, func() {
		s.RunPendingReminder(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to register pending reminder job: %w", err)
	}

	s.cron.Start()

	entries := s.cron.Entries()
	nextRun := ""
	if len(entries) > 0 {
		nextRun = entries[0].Next.Format(time.RFC3339)
	}

	s.log.Info().
		Str("schedule", cronExpr).
		Str("timezone", s.config.Scheduler.Timezone).
		Str("time", s.config.Scheduler.Time).
		Bool("skip_weekends", s.config.Scheduler.SkipWeekends).
		Str("next_run", nextRun).
		Msg("Scheduler started successfully")

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Service) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.log.Info().Msg("Scheduler stopped")
	}
}

// buildCronExpression generates a cron expression from config.
func (s *Service) buildCronExpression() (string, error) {
	// Parse time string (format: "HH:MM")
	parts := strings.Split(s.config.Scheduler.Time, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time format %q, expected HH:MM", s.config.Scheduler.Time)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour %q", parts[0])
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute %q", parts[1])
	}

	// Format: "minute hour day month weekday"
	if s.config.Scheduler.SkipWeekends {
		return fmt.Sprintf("%d %d * * 1-5", minute, hour), nil
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}

// RunPendingReminder collects every undecided request, refreshes the pending gauges
// and posts the ones older than the configured minimum age.
func (s *Service) RunPendingReminder(ctx context.Context) {
	start := time.Now()

	defer func() {
		prommetrics.ObserveSchedulerJobDuration(time.Since(start).Seconds())
		prommetrics.SetSchedulerLastRun()
	}()

	s.log.Info().Msg("Running pending reminder job")

	leaves, err := s.leaves.ListPending(ctx, nil, repository.Page{})
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list pending leave requests")
		prommetrics.RecordSchedulerJobRun("error")
		prommetrics.RecordSchedulerNotificationFailed("query_error")
		return
	}

	overtime, err := s.overtime.ListPending(ctx, nil, repository.Page{})
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list pending overtime requests")
		prommetrics.RecordSchedulerJobRun("error")
		prommetrics.RecordSchedulerNotificationFailed("query_error")
		return
	}

	prommetrics.SetPendingRequests(string(models.KindLeave), len(leaves))
	prommetrics.SetPendingRequests(string(models.KindOvertime), len(overtime))

	now := s.now()
	items := buildPendingItems(leaves, overtime, s.managerNames(ctx))
	minAge := time.Duration(s.config.Scheduler.MinAgeHours) * time.Hour
	filtered := filterRecent(items, now, minAge)

	s.log.Info().
		Int("leaves", len(leaves)).
		Int("overtime", len(overtime)).
		Int("reminded", len(filtered)).
		Msg("Collected pending requests")

	if len(filtered) == 0 {
		prommetrics.RecordSchedulerJobRun("success")
		return
	}

	if err := s.reminder.SendPendingReminder(ctx, filtered, now); err != nil {
		s.log.Error().Err(err).Msg("Failed to send pending reminder")
		prommetrics.RecordSchedulerJobRun("error")
		prommetrics.RecordSchedulerNotificationFailed("mattermost_error")
		return
	}

	prommetrics.RecordSchedulerJobRun("success")
	prommetrics.RecordSchedulerNotificationSent()

	s.log.Info().
		Int("request_count", len(filtered)).
		Dur("total_duration", time.Since(start)).
		Msg("Successfully sent pending reminder")
}

// managerNames returns a memoizing resolver for approver names.
func (s *Service) managerNames(ctx context.Context) func(id uint) string {
	names := map[uint]string{}
	return func(id uint) string {
		if name, ok := names[id]; ok {
			return name
		}
		name := ""
		if s.users != nil {
			if u, err := s.users.GetByID(ctx, id); err == nil {
				name = u.FullName
			} else {
				s.log.Debug().Err(err).Uint("user_id", id).Msg("Could not resolve manager")
			}
		}
		names[id] = name
		return name
	}
}
