// Package seed loads reference data (the first admin, leave types and holidays)
// from a YAML file and inserts whatever is missing.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dexhub/hr-portal/internal/models"
	"github.com/dexhub/hr-portal/internal/repository"
	"github.com/dexhub/hr-portal/pkg/logger"
)

// File is the seed document.
type File struct {
	Admin      *AdminSeed      `yaml:"admin"`
	LeaveTypes []LeaveTypeSeed `yaml:"leave_types"`
	Holidays   []HolidaySeed   `yaml:"holidays"`
}

// AdminSeed describes the bootstrap administrator. PasswordEnv names an
// environment variable that overrides Password.
type AdminSeed struct {
	Email       string `yaml:"email"`
	FullName    string `yaml:"full_name"`
	Password    string `yaml:"password"`
	PasswordEnv string `yaml:"password_env"`
}

// LeaveTypeSeed describes one leave type.
type LeaveTypeSeed struct {
	Name               string `yaml:"name"`
	DefaultDaysPerYear int    `yaml:"default_days_per_year"`
	CarryForward       bool   `yaml:"carry_forward"`
	ColorHex           string `yaml:"color_hex"`
}

// HolidaySeed describes one holiday. Dates are YYYY-MM-DD.
type HolidaySeed struct {
	Date        string `yaml:"date"`
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	IsRecurring *bool  `yaml:"is_recurring"`
}

// Load reads and parses a seed file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a seed document.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &f, nil
}

// DefaultLeaveTypes is the standard leave catalog.
func DefaultLeaveTypes() []LeaveTypeSeed {
	return []LeaveTypeSeed{
		{Name: "Sick Leave", DefaultDaysPerYear: 12, ColorHex: "#FFAB00"},
		{Name: "Week Off", DefaultDaysPerYear: 104, ColorHex: "#2962FF"},
		{Name: "Annual Leave", DefaultDaysPerYear: 20, CarryForward: true, ColorHex: "#00C853"},
		{Name: "Leave in OT", DefaultDaysPerYear: 0, ColorHex: "#AA00FF"},
		{Name: "Work From Home", DefaultDaysPerYear: 365, ColorHex: "#00E5FF"},
	}
}

// UserStore is the user storage the seeder needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// CatalogStore is the catalog storage the seeder needs.
type CatalogStore interface {
	GetLeaveTypeByName(ctx context.Context, name string) (*models.LeaveType, error)
	CreateLeaveType(ctx context.Context, lt *models.LeaveType) error
	GetHolidayByDate(ctx context.Context, day models.Date) (*models.Holiday, error)
	CreateHoliday(ctx context.Context, h *models.Holiday) error
}

// Hasher hashes the admin password.
type Hasher interface {
	Hash(password string) (string, error)
}

// Result counts what a run inserted and skipped.
type Result struct {
	AdminCreated      bool
	LeaveTypesCreated int
	HolidaysCreated   int
	Skipped           int
}

// Seeder inserts missing seed records. Existing rows are matched by admin email,
// leave type name and holiday date and are never modified.
type Seeder struct {
	users   UserStore
	catalog CatalogStore
	hasher  Hasher
	log     *logger.Logger
}

// NewSeeder creates a seeder.
func NewSeeder(users UserStore, catalog CatalogStore, hasher Hasher, log *logger.Logger) *Seeder {
	return &Seeder{users: users, catalog: catalog, hasher: hasher, log: log.Component("seed")}
}

// Run applies f.
func (s *Seeder) Run(ctx context.Context, f *File) (*Result, error) {
	res := &Result{}

	if f.Admin != nil {
		created, err := s.seedAdmin(ctx, f.Admin)
		if err != nil {
			return res, err
		}
		res.AdminCreated = created
		if !created {
			res.Skipped++
		}
	}

	for _, lt := range f.LeaveTypes {
		created, err := s.seedLeaveType(ctx, lt)
		if err != nil {
			return res, err
		}
		if created {
			res.LeaveTypesCreated++
		} else {
			res.Skipped++
		}
	}

	for _, h := range f.Holidays {
		created, err := s.seedHoliday(ctx, h)
		if err != nil {
			return res, err
		}
		if created {
			res.HolidaysCreated++
		} else {
			res.Skipped++
		}
	}

	s.log.Info().
		Bool("admin_created", res.AdminCreated).
		Int("leave_types_created", res.LeaveTypesCreated).
		Int("holidays_created", res.HolidaysCreated).
		Int("skipped", res.Skipped).
		Msg("Seed complete")
	return res, nil
}

func (s *Seeder) seedAdmin(ctx context.Context, a *AdminSeed) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(a.Email))
	if email == "" {
		return false, errors.New("admin.email is required")
	}

	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		s.log.Debug().Str("email", email).Msg("Admin already exists")
		return false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, fmt.Errorf("failed to look up admin: %w", err)
	}

	password := a.Password
	if a.PasswordEnv != "" {
		if v := os.Getenv(a.PasswordEnv); v != "" {
			password = v
		}
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return false, fmt.Errorf("invalid admin password: %w", err)
	}

	fullName := strings.TrimSpace(a.FullName)
	if fullName == "" {
		fullName = "Super Admin"
	}
	if err := s.users.Create(ctx, &models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		Role:         models.RoleAdmin,
		IsActive:     true,
	}); err != nil {
		return false, fmt.Errorf("failed to create admin: %w", err)
	}
	s.log.Info().Str("email", email).Msg("Admin user created")
	return true, nil
}

func (s *Seeder) seedLeaveType(ctx context.Context, in LeaveTypeSeed) (bool, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return false, errors.New("leave type name is required")
	}

	_, err := s.catalog.GetLeaveTypeByName(ctx, name)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, fmt.Errorf("failed to look up leave type %q: %w", name, err)
	}

	color := strings.ToUpper(in.ColorHex)
	if color == "" {
		color = "#9E9E9E"
	}
	if err := s.catalog.CreateLeaveType(ctx, &models.LeaveType{
		Name:               name,
		DefaultDaysPerYear: in.DefaultDaysPerYear,
		CarryForward:       in.CarryForward,
		ColorHex:           color,
	}); err != nil {
		return false, fmt.Errorf("failed to create leave type %q: %w", name, err)
	}
	return true, nil
}

func (s *Seeder) seedHoliday(ctx context.Context, in HolidaySeed) (bool, error) {
	day, err := models.ParseDate(in.Date)
	if err != nil {
		return false, fmt.Errorf("holiday %q: %w", in.Name, err)
	}

	_, err = s.catalog.GetHolidayByDate(ctx, day)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, fmt.Errorf("failed to look up holiday %s: %w", day, err)
	}

	kind := models.HolidayType(strings.ToUpper(in.Type))
	if kind == "" {
		kind = models.HolidayPublic
	}
	if !kind.Valid() {
		return false, fmt.Errorf("holiday %q: unknown type %q", in.Name, in.Type)
	}
	recurring := true
	if in.IsRecurring != nil {
		recurring = *in.IsRecurring
	}

	if err := s.catalog.CreateHoliday(ctx, &models.Holiday{
		Date:        day,
		Name:        strings.TrimSpace(in.Name),
		Type:        kind,
		IsRecurring: recurring,
	}); err != nil {
		return false, fmt.Errorf("failed to create holiday %s: %w", day, err)
	}
	return true, nil
}
