package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/dexhub/hr-portal/internal/models"
)

// UserRepository handles user-related database operations.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user %s: %w", user.Email, err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, "user %d", id)
	}
	return &user, nil
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err, "user %s", email)
	}
	return &user, nil
}

// List retrieves users ordered by ID.
func (r *UserRepository) List(ctx context.Context, page Page) ([]models.User, error) {
	var users []models.User
	if err := page.apply(r.db.WithContext(ctx).Order("id ASC")).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// ListByManager retrieves the direct reports of a manager.
func (r *UserRepository) ListByManager(ctx context.Context, managerID uint, page Page) ([]models.User, error) {
	var users []models.User
	q := r.db.WithContext(ctx).Where("manager_id = ?", managerID).Order("id ASC")
	if err := page.apply(q).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list reports of manager %d: %w", managerID, err)
	}
	return users, nil
}

// Update saves all fields of a user.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("failed to update user %d: %w", user.ID, err)
	}
	return nil
}

// Count returns the number of users.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// CountByManager returns the number of direct reports of a manager.
func (r *UserRepository) CountByManager(ctx context.Context, managerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("manager_id = ?", managerID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count reports of manager %d: %w", managerID, err)
	}
	return count, nil
}

// Delete removes a user together with every request they own. Approver and manager
// references to the user are cleared. The foreign keys declare the same behaviour;
// doing it explicitly keeps databases without enforced constraints consistent.
func (r *UserRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.LeaveRequest{}).Error; err != nil {
			return fmt.Errorf("failed to delete leave requests of user %d: %w", id, err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.OvertimeRequest{}).Error; err != nil {
			return fmt.Errorf("failed to delete overtime requests of user %d: %w", id, err)
		}
		if err := tx.Model(&models.LeaveRequest{}).Where("approver_id = ?", id).
			Update("approver_id", nil).Error; err != nil {
			return fmt.Errorf("failed to clear leave approver %d: %w", id, err)
		}
		if err := tx.Model(&models.OvertimeRequest{}).Where("approver_id = ?", id).
			Update("approver_id", nil).Error; err != nil {
			return fmt.Errorf("failed to clear overtime approver %d: %w", id, err)
		}
		if err := tx.Model(&models.User{}).Where("manager_id = ?", id).
			Update("manager_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach reports of user %d: %w", id, err)
		}

		result := tx.Delete(&models.User{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete user %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("user %d: %w", id, ErrNotFound)
		}
		return nil
	})
}
