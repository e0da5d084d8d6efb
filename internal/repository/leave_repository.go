package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/dexhub/hr-portal/internal/models"
)

// Decision is the set of columns written when a request is decided.
type Decision struct {
	Status     models.RequestStatus
	Comment    *string
	ApproverID uint
}

// LeaveRepository handles leave request database operations.
type LeaveRepository struct {
	db *DB
}

// NewLeaveRepository creates a new leave repository.
func NewLeaveRepository(db *DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

// Create inserts a leave request.
func (r *LeaveRepository) Create(ctx context.Context, req *models.LeaveRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return fmt.Errorf("failed to create leave request for user %d: %w", req.UserID, err)
	}
	return nil
}

// GetByID retrieves a leave request with its owner and leave type.
func (r *LeaveRepository) GetByID(ctx context.Context, id uint) (*models.LeaveRequest, error) {
	var req models.LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("LeaveType").
		First(&req, id).Error
	if err != nil {
		return nil, notFound(err, "leave request %d", id)
	}
	return &req, nil
}

// List retrieves leave requests newest first. A nil ownerID lists every request.
func (r *LeaveRepository) List(ctx context.Context, ownerID *uint, page Page) ([]models.LeaveRequest, error) {
	q := r.db.WithContext(ctx).
		Preload("User").
		Preload("LeaveType").
		Order("created_at DESC").
		Order("id DESC")
	if ownerID != nil {
		q = q.Where("user_id = ?", *ownerID)
	}

	var reqs []models.LeaveRequest
	if err := page.apply(q).Find(&reqs).Error; err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	return reqs, nil
}

// ListPending retrieves undecided leave requests oldest first. A non-nil managerID
// restricts the result to requests owned by that manager's direct reports.
func (r *LeaveRepository) ListPending(ctx context.Context, managerID *uint, page Page) ([]models.LeaveRequest, error) {
	q := pendingScope(r.db.WithContext(ctx), "leave_requests", managerID).
		Preload("User").
		Preload("LeaveType").
		Order("leave_requests.created_at ASC").
		Order("leave_requests.id ASC")

	var reqs []models.LeaveRequest
	if err := page.apply(q).Find(&reqs).Error; err != nil {
		return nil, fmt.Errorf("failed to list pending leave requests: %w", err)
	}
	return reqs, nil
}

// UpdateDecision writes status, comment and approver in a single statement.
func (r *LeaveRepository) UpdateDecision(ctx context.Context, id uint, d Decision) error {
	result := r.db.WithContext(ctx).Model(&models.LeaveRequest{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":          d.Status,
			"manager_comment": d.Comment,
			"approver_id":     d.ApproverID,
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update leave request %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("leave request %d: %w", id, ErrNotFound)
	}
	return nil
}

// CountPending counts undecided leave requests, optionally scoped to a manager's reports.
func (r *LeaveRepository) CountPending(ctx context.Context, managerID *uint) (int64, error) {
	var count int64
	err := pendingScope(r.db.WithContext(ctx).Model(&models.LeaveRequest{}), "leave_requests", managerID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count pending leave requests: %w", err)
	}
	return count, nil
}

// CountOnLeave counts approved leave requests covering day, optionally scoped to a
// manager's reports.
func (r *LeaveRepository) CountOnLeave(ctx context.Context, day models.Date, managerID *uint) (int64, error) {
	q := r.db.WithContext(ctx).Model(&models.LeaveRequest{}).
		Where("leave_requests.status = ?", models.StatusApproved).
		Where("leave_requests.start_date <= ? AND leave_requests.end_date >= ?", day, day)
	if managerID != nil {
		q = q.Joins("JOIN users ON users.id = leave_requests.user_id").
			Where("users.manager_id = ?", *managerID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count leave on %s: %w", day, err)
	}
	return count, nil
}

// pendingScope filters table to pending-like rows, joining owners when scoped to a manager.
func pendingScope(q *gorm.DB, table string, managerID *uint) *gorm.DB {
	q = q.Where(table+".status IN ?", models.PendingLikeStatuses())
	if managerID != nil {
		q = q.Joins("JOIN users ON users.id = "+table+".user_id").
			Where("users.manager_id = ?", *managerID)
	}
	return q
}
