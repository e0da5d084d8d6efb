package repository

import (
	"context"
	"fmt"

	"github.com/dexhub/hr-portal/internal/models"
)

// CatalogRepository handles leave types and holidays.
type CatalogRepository struct {
	db *DB
}

// NewCatalogRepository creates a new catalog repository.
func NewCatalogRepository(db *DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// CreateLeaveType inserts a leave type.
func (r *CatalogRepository) CreateLeaveType(ctx context.Context, lt *models.LeaveType) error {
	if err := r.db.WithContext(ctx).Create(lt).Error; err != nil {
		return fmt.Errorf("failed to create leave type %s: %w", lt.Name, err)
	}
	return nil
}

// GetLeaveType retrieves a leave type by ID.
func (r *CatalogRepository) GetLeaveType(ctx context.Context, id uint) (*models.LeaveType, error) {
	var lt models.LeaveType
	if err := r.db.WithContext(ctx).First(&lt, id).Error; err != nil {
		return nil, notFound(err, "leave type %d", id)
	}
	return &lt, nil
}

// GetLeaveTypeByName retrieves a leave type by its unique name.
func (r *CatalogRepository) GetLeaveTypeByName(ctx context.Context, name string) (*models.LeaveType, error) {
	var lt models.LeaveType
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&lt).Error; err != nil {
		return nil, notFound(err, "leave type %s", name)
	}
	return &lt, nil
}

// ListLeaveTypes retrieves all leave types ordered by ID.
func (r *CatalogRepository) ListLeaveTypes(ctx context.Context) ([]models.LeaveType, error) {
	var types []models.LeaveType
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&types).Error; err != nil {
		return nil, fmt.Errorf("failed to list leave types: %w", err)
	}
	return types, nil
}

// UpdateLeaveType saves all fields of a leave type.
func (r *CatalogRepository) UpdateLeaveType(ctx context.Context, lt *models.LeaveType) error {
	if err := r.db.WithContext(ctx).Save(lt).Error; err != nil {
		return fmt.Errorf("failed to update leave type %d: %w", lt.ID, err)
	}
	return nil
}

// DeleteLeaveType removes a leave type and the leave requests filed under it.
func (r *CatalogRepository) DeleteLeaveType(ctx context.Context, id uint) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer tx.Rollback()

	if err := tx.Where("leave_type_id = ?", id).Delete(&models.LeaveRequest{}).Error; err != nil {
		return fmt.Errorf("failed to delete leave requests of type %d: %w", id, err)
	}
	result := tx.Delete(&models.LeaveType{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete leave type %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("leave type %d: %w", id, ErrNotFound)
	}
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit leave type deletion: %w", err)
	}
	return nil
}

// CreateHoliday inserts a holiday.
func (r *CatalogRepository) CreateHoliday(ctx context.Context, h *models.Holiday) error {
	if err := r.db.WithContext(ctx).Create(h).Error; err != nil {
		return fmt.Errorf("failed to create holiday %s: %w", h.Date, err)
	}
	return nil
}

// GetHolidayByDate retrieves the holiday on a date.
func (r *CatalogRepository) GetHolidayByDate(ctx context.Context, day models.Date) (*models.Holiday, error) {
	var h models.Holiday
	if err := r.db.WithContext(ctx).Where("date = ?", day).First(&h).Error; err != nil {
		return nil, notFound(err, "holiday %s", day)
	}
	return &h, nil
}

// ListHolidays retrieves all holidays in calendar order.
func (r *CatalogRepository) ListHolidays(ctx context.Context) ([]models.Holiday, error) {
	var holidays []models.Holiday
	if err := r.db.WithContext(ctx).Order("date ASC").Find(&holidays).Error; err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	return holidays, nil
}

// DeleteHoliday removes a holiday.
func (r *CatalogRepository) DeleteHoliday(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Holiday{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete holiday %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("holiday %d: %w", id, ErrNotFound)
	}
	return nil
}
