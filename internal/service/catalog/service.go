// Package catalog manages leave types and the holiday calendar.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dexhub/hr-portal/internal/models"
	"github.com/dexhub/hr-portal/internal/repository"
	"github.com/dexhub/hr-portal/internal/service/requests"
	"github.com/dexhub/hr-portal/pkg/logger"
)

// Errors returned by the catalog service.
var (
	ErrValidation = requests.ErrValidation
	ErrNotFound   = requests.ErrNotFound
	ErrConflict   = errors.New("already exists")
)

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Repository interface for catalog storage.
type Repository interface {
	CreateLeaveType(ctx context.Context, lt *models.LeaveType) error
	GetLeaveType(ctx context.Context, id uint) (*models.LeaveType, error)
	GetLeaveTypeByName(ctx context.Context, name string) (*models.LeaveType, error)
	ListLeaveTypes(ctx context.Context) ([]models.LeaveType, error)
	UpdateLeaveType(ctx context.Context, lt *models.LeaveType) error
	DeleteLeaveType(ctx context.Context, id uint) error
	CreateHoliday(ctx context.Context, h *models.Holiday) error
	GetHolidayByDate(ctx context.Context, day models.Date) (*models.Holiday, error)
	ListHolidays(ctx context.Context) ([]models.Holiday, error)
	DeleteHoliday(ctx context.Context, id uint) error
}

// LeaveTypeInput holds the fields of a leave type.
type LeaveTypeInput struct {
	Name               string
	DefaultDaysPerYear int
	CarryForward       bool
	ColorHex           string
}

// HolidayInput holds the fields of a holiday. Type defaults to PUBLIC.
type HolidayInput struct {
	Date        models.Date
	Name        string
	Type        models.HolidayType
	IsRecurring bool
}

// Service handles leave types and holidays.
type Service struct {
	repo  Repository
	stats StatsInvalidator
	log   *logger.Logger
}

// StatsInvalidator drops cached dashboard counts after a write.
type StatsInvalidator interface {
	InvalidateStats(ctx context.Context) error
}

// NewService creates a new catalog service.
func NewService(repo *repository.CatalogRepository, log *logger.Logger) *Service {
	return NewServiceWithInterfaces(repo, log)
}

// NewServiceWithInterfaces creates a new catalog service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(repo Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log.Component("catalog")}
}

// SetStatsInvalidator registers the dashboard cache to drop when requests disappear.
func (s *Service) SetStatsInvalidator(inv StatsInvalidator) {
	s.stats = inv
}

// ListLeaveTypes returns all leave types.
func (s *Service) ListLeaveTypes(ctx context.Context) ([]models.LeaveType, error) {
	types, err := s.repo.ListLeaveTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave types: %w", err)
	}
	return types, nil
}

// CreateLeaveType adds a leave type with a unique name.
func (s *Service) CreateLeaveType(ctx context.Context, in LeaveTypeInput) (*models.LeaveType, error) {
	if err := validateLeaveType(&in); err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, in.Name, 0); err != nil {
		return nil, err
	}

	lt := &models.LeaveType{
		Name:               in.Name,
		DefaultDaysPerYear: in.DefaultDaysPerYear,
		CarryForward:       in.CarryForward,
		ColorHex:           in.ColorHex,
	}
	if err := s.repo.CreateLeaveType(ctx, lt); err != nil {
		return nil, fmt.Errorf("failed to create leave type: %w", err)
	}
	s.log.Info().Uint("leave_type_id", lt.ID).Str("name", lt.Name).Msg("Leave type created")
	return lt, nil
}

// UpdateLeaveType replaces every field of leave type id.
func (s *Service) UpdateLeaveType(ctx context.Context, id uint, in LeaveTypeInput) (*models.LeaveType, error) {
	if err := validateLeaveType(&in); err != nil {
		return nil, err
	}
	lt, err := s.repo.GetLeaveType(ctx, id)
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("leave type %d", id))
	}
	if err := s.ensureNameFree(ctx, in.Name, id); err != nil {
		return nil, err
	}

	lt.Name = in.Name
	lt.DefaultDaysPerYear = in.DefaultDaysPerYear
	lt.CarryForward = in.CarryForward
	lt.ColorHex = in.ColorHex
	if err := s.repo.UpdateLeaveType(ctx, lt); err != nil {
		return nil, fmt.Errorf("failed to update leave type: %w", err)
	}
	return lt, nil
}

// DeleteLeaveType removes leave type id together with the requests filed under it.
func (s *Service) DeleteLeaveType(ctx context.Context, id uint) (*models.LeaveType, error) {
	lt, err := s.repo.GetLeaveType(ctx, id)
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("leave type %d", id))
	}
	if err := s.repo.DeleteLeaveType(ctx, id); err != nil {
		return nil, mapErr(err, fmt.Sprintf("leave type %d", id))
	}
	s.log.Warn().Uint("leave_type_id", id).Str("name", lt.Name).Msg("Leave type deleted with its requests")
	if s.stats != nil {
		if err := s.stats.InvalidateStats(ctx); err != nil {
			s.log.Warn().Err(err).Msg("Failed to invalidate dashboard stats")
		}
	}
	return lt, nil
}

// ListHolidays returns the holiday calendar in date order.
func (s *Service) ListHolidays(ctx context.Context) ([]models.Holiday, error) {
	holidays, err := s.repo.ListHolidays(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	return holidays, nil
}

// CreateHoliday adds a holiday; at most one per date.
func (s *Service) CreateHoliday(ctx context.Context, in HolidayInput) (*models.Holiday, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Type == "" {
		in.Type = models.HolidayPublic
	}
	switch {
	case in.Date.IsZero():
		return nil, fmt.Errorf("%w: date is required", ErrValidation)
	case in.Name == "":
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	case !in.Type.Valid():
		return nil, fmt.Errorf("%w: unknown holiday type %q", ErrValidation, in.Type)
	}

	_, err := s.repo.GetHolidayByDate(ctx, in.Date)
	if err == nil {
		return nil, fmt.Errorf("%w: holiday on %s", ErrConflict, in.Date)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check holiday: %w", err)
	}

	h := &models.Holiday{Date: in.Date, Name: in.Name, Type: in.Type, IsRecurring: in.IsRecurring}
	if err := s.repo.CreateHoliday(ctx, h); err != nil {
		return nil, fmt.Errorf("failed to create holiday: %w", err)
	}
	s.log.Info().Uint("holiday_id", h.ID).Str("date", h.Date.String()).Msg("Holiday created")
	return h, nil
}

// DeleteHoliday removes holiday id.
func (s *Service) DeleteHoliday(ctx context.Context, id uint) error {
	if err := s.repo.DeleteHoliday(ctx, id); err != nil {
		return mapErr(err, fmt.Sprintf("holiday %d", id))
	}
	return nil
}

func (s *Service) ensureNameFree(ctx context.Context, name string, selfID uint) error {
	existing, err := s.repo.GetLeaveTypeByName(ctx, name)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("failed to check leave type name: %w", err)
	case existing.ID != selfID:
		return fmt.Errorf("%w: leave type %q", ErrConflict, name)
	}
	return nil
}

func validateLeaveType(in *LeaveTypeInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.ColorHex = strings.ToUpper(strings.TrimSpace(in.ColorHex))
	switch {
	case in.Name == "":
		return fmt.Errorf("%w: name is required", ErrValidation)
	case in.DefaultDaysPerYear < 0:
		return fmt.Errorf("%w: default days per year must not be negative", ErrValidation)
	case !colorPattern.MatchString(in.ColorHex):
		return fmt.Errorf("%w: color must look like #RRGGBB", ErrValidation)
	}
	return nil
}

func mapErr(err error, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}
