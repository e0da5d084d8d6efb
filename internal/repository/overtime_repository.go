package repository

import (
	"context"
	"fmt"

	"github.com/dexhub/hr-portal/internal/models"
)

// OvertimeRepository handles overtime request database operations.
type OvertimeRepository struct {
	db *DB
}

// NewOvertimeRepository creates a new overtime repository.
func NewOvertimeRepository(db *DB) *OvertimeRepository {
	return &OvertimeRepository{db: db}
}

// Create inserts an overtime request.
func (r *OvertimeRepository) Create(ctx context.Context, req *models.OvertimeRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return fmt.Errorf("failed to create overtime request for user %d: %w", req.UserID, err)
	}
	return nil
}

// GetByID retrieves an overtime request with its owner.
func (r *OvertimeRepository) GetByID(ctx context.Context, id uint) (*models.OvertimeRequest, error) {
	var req models.OvertimeRequest
	if err := r.db.WithContext(ctx).Preload("User").First(&req, id).Error; err != nil {
		return nil, notFound(err, "overtime request %d", id)
	}
	return &req, nil
}

// List retrieves overtime requests newest first. A nil ownerID lists every request.
func (r *OvertimeRepository) List(ctx context.Context, ownerID *uint, page Page) ([]models.OvertimeRequest, error) {
	q := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Order("id DESC")
	if ownerID != nil {
		q = q.Where("user_id = ?", *ownerID)
	}

	var reqs []models.OvertimeRequest
	if err := page.apply(q).Find(&reqs).Error; err != nil {
		return nil, fmt.Errorf("failed to list overtime requests: %w", err)
	}
	return reqs, nil
}

// ListPending retrieves undecided overtime requests oldest first, optionally scoped
// to a manager's direct reports.
func (r *OvertimeRepository) ListPending(ctx context.Context, managerID *uint, page Page) ([]models.OvertimeRequest, error) {
	q := pendingScope(r.db.WithContext(ctx), "overtime_requests", managerID).
		Preload("User").
		Order("overtime_requests.created_at ASC").
		Order("overtime_requests.id ASC")

	var reqs []models.OvertimeRequest
	if err := page.apply(q).Find(&reqs).Error; err != nil {
		return nil, fmt.Errorf("failed to list pending overtime requests: %w", err)
	}
	return reqs, nil
}

// UpdateDecision writes status, comment and approver in a single statement.
func (r *OvertimeRepository) UpdateDecision(ctx context.Context, id uint, d Decision) error {
	result := r.db.WithContext(ctx).Model(&models.OvertimeRequest{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":          d.Status,
			"manager_comment": d.Comment,
			"approver_id":     d.ApproverID,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update overtime request %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("overtime request %d: %w", id, ErrNotFound)
	}
	return nil
}

// CountPending counts undecided overtime requests, optionally scoped to a manager's reports.
func (r *OvertimeRepository) CountPending(ctx context.Context, managerID *uint) (int64, error) {
	var count int64
	err := pendingScope(r.db.WithContext(ctx).Model(&models.OvertimeRequest{}), "overtime_requests", managerID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count pending overtime requests: %w", err)
	}
	return count, nil
}
